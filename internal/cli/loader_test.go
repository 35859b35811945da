package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/facet/query"
)

func TestLoadDocument_JSON(t *testing.T) {
	file := writeTestFile(t, t.TempDir(), "q.json", `{"todos": {"$": {"limit": 10}}}`)

	v, err := LoadDocument(file)
	require.NoError(t, err)

	obj, ok := v.(*query.Object)
	require.True(t, ok)
	assert.Equal(t, []string{"todos"}, obj.Keys())
}

func TestLoadDocument_YAML(t *testing.T) {
	file := writeTestFile(t, t.TempDir(), "q.yaml", `
todos:
  $:
    where:
      done: false
`)
	v, err := LoadDocument(file)
	require.NoError(t, err)

	obj, ok := v.(*query.Object)
	require.True(t, ok)
	assert.Equal(t, []string{"todos"}, obj.Keys())
}

func TestLoadDocument_CUE(t *testing.T) {
	file := writeTestFile(t, t.TempDir(), "q.cue", `
goals: "$": {
	where: priority: "high"
	limit: 10
}
`)
	v, err := LoadDocument(file)
	require.NoError(t, err)

	res, verr := query.Validate(v)
	require.NoError(t, verr)
	require.False(t, res.Deferred)

	ns := res.Query.Namespaces[0]
	assert.Equal(t, "goals", ns.Name)
	require.True(t, ns.Clause.Options.Limit.Set)
	assert.Equal(t, int64(10), ns.Clause.Options.Limit.Value)
}

func TestLoadDocument_CUEPreservesFieldOrder(t *testing.T) {
	file := writeTestFile(t, t.TempDir(), "q.cue", `
zebra: {}
alpha: {}
`)
	v, err := LoadDocument(file)
	require.NoError(t, err)

	obj, ok := v.(*query.Object)
	require.True(t, ok)
	assert.Equal(t, []string{"zebra", "alpha"}, obj.Keys())
}

func TestLoadDocument_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		path     string
		wantCode string
	}{
		{
			name:     "unsupported extension",
			path:     writeTestFile(t, dir, "q.txt", "{}"),
			wantCode: ErrCodeBadExt,
		},
		{
			name:     "missing file",
			path:     filepath.Join(dir, "absent.json"),
			wantCode: ErrCodeNotFound,
		},
		{
			name:     "bad json",
			path:     writeTestFile(t, dir, "bad.json", `{"todos":`),
			wantCode: ErrCodeParseFailed,
		},
		{
			name:     "bad yaml",
			path:     writeTestFile(t, dir, "bad.yaml", "todos: [\n"),
			wantCode: ErrCodeParseFailed,
		},
		{
			name:     "bad cue",
			path:     writeTestFile(t, dir, "bad.cue", "todos: {"),
			wantCode: ErrCodeCUEBuild,
		},
		{
			name:     "non-concrete cue",
			path:     writeTestFile(t, dir, "open.cue", "todos: limit: int"),
			wantCode: ErrCodeCUEValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDocument(tt.path)
			require.Error(t, err)
			loadErr, ok := err.(*LoadError)
			require.True(t, ok, "want *LoadError, got %T", err)
			assert.Equal(t, tt.wantCode, loadErr.Code)
		})
	}
}

func TestMapKindToErrorCode(t *testing.T) {
	assert.Equal(t, "E101", MapKindToErrorCode(query.KindQueryMustBeObject))
	assert.Equal(t, "E103", MapKindToErrorCode(query.KindArrayWhereObjectExpected))
	assert.Equal(t, "E108", MapKindToErrorCode(query.KindPaginationOnNestedNamespace))
	assert.Equal(t, "E113", MapKindToErrorCode(query.KindLogicalOperatorExpectsArray))
	assert.Equal(t, "E116", MapKindToErrorCode(query.KindUnsupportedLiteralValue))
	assert.Equal(t, ErrCodeValidation, MapKindToErrorCode(query.ErrorKind("Unknown")))
}
