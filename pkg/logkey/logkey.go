package logkey

// Common keys for structured log attributes, so every package logs with the
// same field names.
const (
	TraceID = "Trace ID"
	ERROR   = "Error"
)
