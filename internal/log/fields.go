package log

// Canonical field name constants for structured logging.
const (
	FieldComponent = "component"
	FieldEvent     = "event"

	// Server fields
	FieldHost    = "host"
	FieldPort    = "port"
	FieldMailbox = "mailbox"

	// Message fields
	FieldUID         = "uid"
	FieldUIDValidity = "uid_validity"
	FieldSubject     = "subject"
	FieldFrom        = "from"
	FieldCount       = "count"

	// Config / filesystem fields
	FieldKey    = "key"
	FieldSource = "source"
	FieldPath   = "path"
)
