package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/facet/query"
)

func TestHash_SingleFile(t *testing.T) {
	doc := `{"goals": {"$": {"where": {"id": "goal-1"}}}}`
	file := writeTestFile(t, t.TempDir(), "q.json", doc)

	out, err := executeCommand(t, "hash", file)
	require.NoError(t, err)

	res, verr := query.ValidateJSON([]byte(doc))
	require.NoError(t, verr)
	want, herr := query.Hash(res.Query)
	require.NoError(t, herr)
	assert.Equal(t, want+"\n", out)
	assert.Len(t, strings.TrimSpace(out), 64)
}

func TestHash_KeyOrderInsensitive(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.json", `{"todos": {"$": {"limit": 10, "offset": 5}}}`)
	b := writeTestFile(t, dir, "b.json", `{"todos": {"$": {"offset": 5, "limit": 10}}}`)

	outA, err := executeCommand(t, "hash", a)
	require.NoError(t, err)
	outB, err := executeCommand(t, "hash", b)
	require.NoError(t, err)
	assert.Equal(t, outA, outB)
}

func TestHash_MultipleFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.json", `{"todos": {}}`)
	b := writeTestFile(t, dir, "b.json", `{"goals": {}}`)

	out, err := executeCommand(t, "hash", a, b)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], a)
	assert.Contains(t, lines[1], b)
}

func TestHash_JSONFormat(t *testing.T) {
	file := writeTestFile(t, t.TempDir(), "q.json", `{"todos": {}}`)

	out, err := executeCommand(t, "--format", "json", "hash", file)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHash_DeferredRejected(t *testing.T) {
	file := writeTestFile(t, t.TempDir(), "q.json", `null`)

	_, err := executeCommand(t, "hash", file)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "deferred")
}
