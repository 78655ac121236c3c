package config

// Risk hotspot defaults.
const (
	DefaultRiskHotspotsDisabled = false
	DefaultCyclomaticComplexity = 15
	DefaultNPathComplexity      = 200
	DefaultCrapScore            = 15
)

// Parsing defaults.
const (
	DefaultParsingWorkers       = 0
	DefaultParsingMaxReportSize = "50MB"
)

// Logging defaults.
const (
	DefaultLoggingLevel = "info"
	DefaultLoggingJSON  = false
)
