package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const processCards = `
cards:
  - id: echo
    command: cat
    signature:
      inputs: [{name: in, type: any}]
      outputs: [{name: out, type: any}]
`

const patch = `
id: patch
nodes:
  - id: a
    cardId: echo
  - id: b
    cardId: echo
edges:
  - {id: e1, source: a, sourcePort: out, target: b, targetPort: in}
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func fixtures(t *testing.T) (cards, graph string) {
	t.Helper()
	dir := t.TempDir()
	cards = filepath.Join(dir, "cards.yaml")
	graph = filepath.Join(dir, "patch.yaml")
	require.NoError(t, os.WriteFile(cards, []byte(processCards), 0644))
	require.NoError(t, os.WriteFile(graph, []byte(patch), 0644))
	return cards, graph
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "cardflow version "))
}

func TestValidate(t *testing.T) {
	cards, graph := fixtures(t)

	out, err := execute(t, "validate", graph, "--process-cards", cards, "--json", "--strict")
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	assert.Equal(t, true, report["ok"])

	// Without the process cards both nodes are unresolved.
	_, err = execute(t, "validate", graph, "--process-cards", "", "--json", "--strict")
	assert.ErrorIs(t, err, errInvalidGraph)
}

func TestCompileAndRun(t *testing.T) {
	cards, graph := fixtures(t)

	out, err := execute(t, "compile", graph, "--process-cards", cards)
	require.NoError(t, err)
	assert.Contains(t, out, `"levels"`)

	out, err = execute(t, "run", graph, "--process-cards", cards, "--input", `{"note": 60}`)
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	assert.Equal(t, map[string]any{"note": 60.0}, report["output"])

	_, err = execute(t, "run", graph, "--process-cards", cards, "--input", "{")
	assert.Error(t, err)
}

func TestGraphAndLayout(t *testing.T) {
	cards, graph := fixtures(t)

	out, err := execute(t, "graph", graph, "--process-cards", cards)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph LR"))

	out, err = execute(t, "layout", graph, "--process-cards", cards, "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "position:")
}
