// Package config provides configuration loading and validation for coverfang.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/coverfang/pkg/filter"
	"github.com/Sumatoshi-tech/coverfang/pkg/hotspots"
	"github.com/Sumatoshi-tech/coverfang/pkg/model"
)

// Sentinel validation errors.
var (
	ErrInvalidWorkers   = errors.New("parsing workers must not be negative")
	ErrInvalidThreshold = errors.New("risk hotspot thresholds must not be negative")
	ErrInvalidMaxSize   = errors.New("invalid max report size")
	ErrInvalidLogLevel  = errors.New("invalid log level")
)

// EnvPrefix prefixes every environment override, e.g. COVERFANG_PARSING_WORKERS.
const EnvPrefix = "COVERFANG"

// Config holds all configuration for coverfang.
type Config struct {
	Filters      FiltersConfig      `mapstructure:"filters"`
	RiskHotspots RiskHotspotsConfig `mapstructure:"risk_hotspots"`
	Parsing      ParsingConfig      `mapstructure:"parsing"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// FiltersConfig holds "+pattern"/"-pattern" rules per name kind.
type FiltersConfig struct {
	Assemblies []string `mapstructure:"assemblies"`
	Classes    []string `mapstructure:"classes"`
	Files      []string `mapstructure:"files"`
}

// RiskHotspotsConfig controls the risk hotspot analysis.
type RiskHotspotsConfig struct {
	Thresholds ThresholdsConfig `mapstructure:"thresholds"`
	Disabled   bool             `mapstructure:"disabled"`
}

// ThresholdsConfig holds one threshold per code quality metric.
type ThresholdsConfig struct {
	CyclomaticComplexity float64 `mapstructure:"cyclomatic_complexity"`
	NPathComplexity      float64 `mapstructure:"npath_complexity"`
	CrapScore            float64 `mapstructure:"crap_score"`
}

// ParsingConfig holds parser settings.
type ParsingConfig struct {
	MaxReportSize string `mapstructure:"max_report_size"`
	Workers       int    `mapstructure:"workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// LoadConfig loads configuration from file and environment variables.
// An empty configPath searches the default locations; a missing file there is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("coverfang")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/coverfang")
	}

	viperCfg.SetEnvPrefix(EnvPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Default returns the configuration used when no file or environment overrides exist.
func Default() *Config {
	return &Config{
		RiskHotspots: RiskHotspotsConfig{
			Disabled: DefaultRiskHotspotsDisabled,
			Thresholds: ThresholdsConfig{
				CyclomaticComplexity: DefaultCyclomaticComplexity,
				NPathComplexity:      DefaultNPathComplexity,
				CrapScore:            DefaultCrapScore,
			},
		},
		Parsing: ParsingConfig{
			Workers:       DefaultParsingWorkers,
			MaxReportSize: DefaultParsingMaxReportSize,
		},
		Logging: LoggingConfig{
			Level: DefaultLoggingLevel,
			JSON:  DefaultLoggingJSON,
		},
	}
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	// Filter defaults.
	viperCfg.SetDefault("filters.assemblies", []string{})
	viperCfg.SetDefault("filters.classes", []string{})
	viperCfg.SetDefault("filters.files", []string{})

	// Risk hotspot defaults.
	viperCfg.SetDefault("risk_hotspots.disabled", DefaultRiskHotspotsDisabled)
	viperCfg.SetDefault("risk_hotspots.thresholds.cyclomatic_complexity", DefaultCyclomaticComplexity)
	viperCfg.SetDefault("risk_hotspots.thresholds.npath_complexity", DefaultNPathComplexity)
	viperCfg.SetDefault("risk_hotspots.thresholds.crap_score", DefaultCrapScore)

	// Parsing defaults.
	viperCfg.SetDefault("parsing.workers", DefaultParsingWorkers)
	viperCfg.SetDefault("parsing.max_report_size", DefaultParsingMaxReportSize)

	// Logging defaults.
	viperCfg.SetDefault("logging.level", DefaultLoggingLevel)
	viperCfg.SetDefault("logging.json", DefaultLoggingJSON)
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	if config.Parsing.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, config.Parsing.Workers)
	}

	thresholds := config.RiskHotspots.Thresholds
	if thresholds.CyclomaticComplexity < 0 || thresholds.NPathComplexity < 0 || thresholds.CrapScore < 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidThreshold, thresholds)
	}

	_, sizeErr := config.MaxReportBytes()
	if sizeErr != nil {
		return sizeErr
	}

	_, levelErr := config.LogLevel()
	if levelErr != nil {
		return levelErr
	}

	return nil
}

// MaxReportBytes returns the report size limit in bytes; zero means unlimited.
func (c *Config) MaxReportBytes() (uint64, error) {
	raw := strings.TrimSpace(c.Parsing.MaxReportSize)
	if raw == "" || raw == "0" {
		return 0, nil
	}

	size, err := humanize.ParseBytes(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidMaxSize, raw, err)
	}

	return size, nil
}

// LogLevel parses the configured log level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(c.Logging.Level))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	return level, nil
}

// Thresholds maps the configured thresholds to canonical metric names.
func (c *Config) Thresholds() hotspots.Thresholds {
	t := c.RiskHotspots.Thresholds

	return hotspots.Thresholds{
		model.MetricCyclomaticComplexity: t.CyclomaticComplexity,
		model.MetricNPathComplexity:      t.NPathComplexity,
		model.MetricCrapScore:            t.CrapScore,
	}
}

// BuildFilters builds the assembly, class, and file filters.
func (c *Config) BuildFilters() (assemblies, classes, files *filter.DefaultFilter, err error) {
	assemblies, err = filter.New(c.Filters.Assemblies)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("assembly filters: %w", err)
	}

	classes, err = filter.New(c.Filters.Classes)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("class filters: %w", err)
	}

	files, err = filter.NewPathFilter(c.Filters.Files)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("file filters: %w", err)
	}

	return assemblies, classes, files, nil
}
