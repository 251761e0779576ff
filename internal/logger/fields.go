package logger

// Standard field names for structured logging. Use these instead of raw
// strings so log queries stay stable across packages.
const (
	FieldRequestID = "request_id"
	FieldComponent = "component"
	FieldTransport = "transport"

	FieldSourceLanguage = "source_language"
	FieldTargetLanguage = "target_language"
	FieldLanguage       = "language"

	FieldBackend = "backend"
	FieldModel   = "model"
	FieldAttempt = "attempt"
	FieldStatus  = "status"
	FieldBackoff = "backoff"

	FieldBinary = "binary"
	FieldPath   = "path"
	FieldPort   = "port"

	FieldDurationMS = "duration_ms"
	FieldSize       = "size"
	FieldError      = "error"
)
