package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a source cell whose numeric prefix could not be parsed.
// Row and Year locate the cell in the wide table for diagnostics.
type ParseError struct {
	Row  int
	Year int
	Raw  string
	Err  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse cell row=%d year=%d %q: %v", e.Row, e.Year, e.Raw, e.Err)
}

// Unwrap returns the underlying strconv error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Normalize extracts the numeric rate from a raw source cell. Cells in the
// published table carry the rate followed by an optional parenthetical
// annotation, e.g. "23.4 (22.9-23.9)". Everything from the first opening
// parenthesis onward is discarded, including a preceding space; the remainder
// must parse as a float. There is no coercion: an unparseable remainder is an
// error, never zero or NaN.
func Normalize(raw string) (float64, error) {
	s := raw
	if i := strings.Index(s, "("); i >= 0 {
		s = s[:i]
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("normalize value: %w", err)
	}
	return v, nil
}
