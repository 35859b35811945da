package query

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryError_Error(t *testing.T) {
	err := errAt(KindWhereMustBeObject, "todos.$.where", "expected a where mapping, got a list")
	assert.Equal(t, "WhereMustBeObject: expected a where mapping, got a list (at todos.$.where)", err.Error())

	rootErr := errAt(KindQueryMustBeObject, "", "query must be a mapping")
	assert.Equal(t, "QueryMustBeObject: query must be a mapping", rootErr.Error())
}

func TestAsQueryError_UnwrapsWrappedErrors(t *testing.T) {
	inner := errAt(KindInvalidOperatorObject, "todos.$.where.x", "bad operator")
	wrapped := fmt.Errorf("load document: %w", inner)

	qe, ok := AsQueryError(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindInvalidOperatorObject, qe.Kind)
	assert.True(t, IsKind(wrapped, KindInvalidOperatorObject))
	assert.False(t, IsKind(wrapped, KindWhereMustBeObject))
}

func TestAsQueryError_NonQueryError(t *testing.T) {
	_, ok := AsQueryError(fmt.Errorf("plain error"))
	assert.False(t, ok)
}
