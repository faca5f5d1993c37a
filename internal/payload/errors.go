package payload

import (
	"errors"
	"fmt"
)

// ErrNoPayload is returned when a query carries neither the inline
// parameter nor the legacy original/corrections pair.
var ErrNoPayload = errors.New("no correction payload in query")

// DecodeError reports a value that is not valid base64 or does not decode to
// UTF-8 text. Callers usually fall back to treating the value as raw JSON.
type DecodeError struct {
	Input string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid base64 payload: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ParseError reports an outer payload that is not the expected JSON shape.
// Message is meant for display.
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ParseError) Unwrap() error { return e.Err }
