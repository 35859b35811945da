package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t, `
name: sample
description: "a sample scenario"
query:
  todos:
    $:
      limit: 10
expect:
  golden: sample
`)
	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "sample", scenario.Name)
	assert.Equal(t, "sample", scenario.Expect.Golden)
	assert.NotEqual(t, 0, int(scenario.Query.Kind))
}

func TestLoadScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name: "unknown field",
			doc: `
name: x
description: "d"
expects:
  deferred: true
`,
			wantErr: "field expects not found",
		},
		{
			name: "missing name",
			doc: `
description: "d"
expect:
  deferred: true
`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			doc: `
name: x
expect:
  deferred: true
`,
			wantErr: "description is required",
		},
		{
			name: "no expectation",
			doc: `
name: x
description: "d"
expect: {}
`,
			wantErr: "exactly one of",
		},
		{
			name: "two expectations",
			doc: `
name: x
description: "d"
expect:
  deferred: true
  golden: x
`,
			wantErr: "exactly one of",
		},
		{
			name: "error without kind",
			doc: `
name: x
description: "d"
expect:
  error:
    path: todos
`,
			wantErr: "kind is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, tt.doc)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read scenario file")
}
