package logging

// Log levels
const (
	DEBUG = "DEBUG" // Diagnostic information when verbose flag is passed
	INFO  = "INFO"  // Generally useful information (service start/stop, configuration assumptions)
	WARN  = "WARN"  // Recoverable issues (failed page, skipped record) - no alerts
	ERROR = "ERROR" // Operation-fatal errors requiring user intervention - triggers alerts/Sentry
	FATAL = "FATAL" // Service-fatal errors that crash the application to prevent data loss
)

const (
	Error = "error"
	Fatal = "fatal"
	Warn  = "warn"
	Info  = "info"
	Debug = "debug"
)
