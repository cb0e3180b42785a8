package model

import (
	"fmt"
	"strings"
)

// ParseError marks input that could not be read as a table at all,
// such as malformed CSV or an unreadable workbook. Cell-level problems
// never produce a ParseError; they null the value and show up in
// Diagnostics.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "parse: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SchemaError marks a table that parsed but whose header row maps none
// of its columns onto a required canonical field. Missing holds the
// canonical field names; Present holds the headers actually seen, so
// the message tells the operator what the file contained.
type SchemaError struct {
	Missing []string
	Present []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: no source column for required field(s) %s (columns present: %s)",
		strings.Join(e.Missing, ", "), strings.Join(e.Present, ", "))
}
