package palette

import "fmt"

// ReadError reports that the palette file could not be read or was not
// valid UTF-8 text.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading palette %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ParseError reports a structural problem with the document: a syntax
// error, a missing slot, or a slot that is not a string.
type ParseError struct {
	// Field is the offending slot, empty for syntax errors.
	Field  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("parsing palette: field %q: %s", e.Field, e.Reason)
	}

	return "parsing palette: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError names the first slot whose value is not a hex color.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid color for %s: %q is not a hex color (#rgb, #rgba, #rrggbb or #rrggbbaa)", e.Field, e.Value)
}
