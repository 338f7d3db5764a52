package parser

import (
	"errors"
	"fmt"
)

// ErrNoFeedRoot is returned when the input contains no recognizable
// feed document (unknown XML root, not a JSON Feed, or neither XML
// nor JSON at all).
var ErrNoFeedRoot = errors.New("no recognizable feed root")

// UnknownMimeTypeError is returned when a text or content element
// declares a MIME type that does not parse. The whole parse is
// aborted: an unreadable declared type means the document cannot be
// interpreted safely.
type UnknownMimeTypeError struct {
	Value string
}

func (e *UnknownMimeTypeError) Error() string {
	return fmt.Sprintf("unknown MIME type: %q", e.Value)
}

// MissingContentError is returned when an element whose body is
// mandatory carries none. Field names the offending slot, e.g.
// "content.text".
type MissingContentError struct {
	Field string
}

func (e *MissingContentError) Error() string {
	return fmt.Sprintf("missing required content: %s", e.Field)
}

// InvalidDateTimeError is returned when a non-empty timestamp value
// cannot be reconciled with any accepted format.
type InvalidDateTimeError struct {
	Value string
	Err   error
}

func (e *InvalidDateTimeError) Error() string {
	return fmt.Sprintf("invalid date/time %q: %v", e.Value, e.Err)
}

func (e *InvalidDateTimeError) Unwrap() error {
	return e.Err
}
