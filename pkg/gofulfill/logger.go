package gofulfill

// Field is a key/value pair attached to a log entry, such as the intent
// name or the storage error behind a fallback message.
type Field struct {
	Key   string
	Value interface{}
}

// Logger receives the manager's diagnostics. Storage failures and rejected
// input go to Error, unhandled intents and empty query results to Warn,
// completed plan upgrades to Info.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// NoopLogger discards everything. NewManager uses it when Config.Logger is nil.
type NoopLogger struct{}

func (n *NoopLogger) Debug(msg string, fields ...Field) {}
func (n *NoopLogger) Info(msg string, fields ...Field)  {}
func (n *NoopLogger) Warn(msg string, fields ...Field)  {}
func (n *NoopLogger) Error(msg string, fields ...Field) {}
