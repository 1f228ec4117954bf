package logger

// Level controls the minimum severity that is emitted.
type Level string

const (
	Debug   Level = "debug"
	Info    Level = "info"
	Warning Level = "warning"
	Error   Level = "error"
)

// Config holds the logger configuration.
type Config struct {
	// Level is the minimum log level. Defaults to Info when empty.
	Level Level

	// ServiceName is attached to every log entry as the "service" field.
	ServiceName string
}
