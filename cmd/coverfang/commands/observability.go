// Package commands implements CLI command handlers for coverfang.
package commands

import (
	"log/slog"
	"os"

	"github.com/Sumatoshi-tech/coverfang/pkg/observability"
	"github.com/Sumatoshi-tech/coverfang/pkg/version"
)

// observabilityConfig builds the observability settings shared by all commands.
// --debug lowers the log level and samples every trace.
func observabilityConfig(mode observability.AppMode, level slog.Level, logJSON, debug bool) observability.Config {
	if debug {
		level = slog.LevelDebug
	}

	return observability.Config{
		Mode:      mode,
		Version:   version.Version,
		OTLP:      observability.OTLPFromEnv(os.Getenv),
		SampleAll: debug,
		LogLevel:  level,
		LogJSON:   logJSON,
	}
}
