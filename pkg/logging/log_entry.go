package logging

// LogEntry represents a structured log record.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Run correlation
	RunID string // Identifier of the optimization run, if any

	// General structured data
	Fields map[string]interface{}
}
