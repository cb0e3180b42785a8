package model

import (
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaErrorMessage(t *testing.T) {
	t.Parallel()

	err := &SchemaError{
		Missing: []string{"price"},
		Present: []string{"console-name", "product-name", "release-date"},
	}

	msg := err.Error()
	assert.Contains(t, msg, "price")
	assert.Contains(t, msg, "console-name, product-name, release-date")
}

func TestSchemaErrorMatchesThroughWrap(t *testing.T) {
	t.Parallel()

	inner := &SchemaError{Missing: []string{"price"}, Present: []string{"a", "b"}}
	wrapped := eris.Wrap(inner, "ingest: load")

	var schemaErr *SchemaError
	require.True(t, errors.As(wrapped, &schemaErr))
	assert.Equal(t, []string{"price"}, schemaErr.Missing)
}

func TestParseErrorUnwrap(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("bad quoting")
	perr := &ParseError{Err: sentinel}

	assert.Contains(t, perr.Error(), "bad quoting")
	assert.ErrorIs(t, perr, sentinel)

	wrapped := eris.Wrap(perr, "source: decode csv")
	var parseErr *ParseError
	assert.True(t, errors.As(wrapped, &parseErr))
}
