package text

import (
	"errors"
	"fmt"
)

var (
	// ErrTooManyColumns is reported when a row has more cells than maxColumns.
	ErrTooManyColumns = errors.New("too many columns")
	// ErrColumnTooLong is reported when a cell exceeds maxCharsPerColumn.
	ErrColumnTooLong = errors.New("column exceeds maximum length")
	// ErrUnterminatedQuote is reported when a quoted CSV field never closes.
	ErrUnterminatedQuote = errors.New("unterminated quoted field")
)

// ParseError describes malformed input found while reading a blob.
type ParseError struct {
	Blob   string
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %v", e.Blob, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("parse error in %s at line %d: %v", e.Blob, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
