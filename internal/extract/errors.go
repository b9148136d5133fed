package extract

import "fmt"

// ParseError reports that a response could not be turned into a record.
// Callers log it and continue with the fallback record.
type ParseError struct {
	Shape   string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %s: %v", e.Shape, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Shape, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
