package skillgap

import "fmt"

// DecodeError reports that text is not a complete, well-formed document.
// It never leaves the engine; extraction falls through to the text scanners.
type DecodeError struct {
	Message string
	Cause   error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decode error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("decode error: %s", e.Message)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// MalformedField reports a recognized field whose value could not be segmented.
// The field is skipped and scanning continues with the next occurrence.
type MalformedField struct {
	Field   string
	Offset  int
	Message string
}

func (e *MalformedField) Error() string {
	return fmt.Sprintf("malformed field %q at offset %d: %s", e.Field, e.Offset, e.Message)
}
