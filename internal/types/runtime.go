package types

// RunMode is the mode the process runs in
type RunMode string

const (
	// ModeServer serves the HTTP API
	ModeServer RunMode = "server"
	// ModeCron runs the batch jobs once and exits
	ModeCron RunMode = "cron"
	// ModeLocal is for local development and scripts
	ModeLocal RunMode = "local"
)

// LogLevel is the logging verbosity
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
