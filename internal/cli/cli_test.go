package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/cardflow/internal/logging"
	"github.com/aretw0/cardflow/internal/validator"
	"github.com/aretw0/cardflow/pkg/graph"
	"github.com/aretw0/cardflow/pkg/observability"
	"github.com/aretw0/cardflow/pkg/ports"
	"github.com/aretw0/cardflow/pkg/runner"
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

const echoGraph = `{
  "id": "g",
  "nodes": [{"id": "a", "cardId": "echo"}]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewEngine(t *testing.T) {
	logger := logging.NewNop()

	t.Run("Empty", func(t *testing.T) {
		eng, err := NewEngine(Options{}, logger)
		require.NoError(t, err)
		assert.Empty(t, eng.CardIDs())
	})

	t.Run("ProcessCards", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "cards.yaml", processCards)

		metrics := observability.NewMetrics(nil)
		eng, err := NewEngine(Options{ProcessCards: path, Debug: true, Metrics: metrics}, logger)
		require.NoError(t, err)
		assert.Equal(t, []string{"echo"}, eng.CardIDs())

		g, err := eng.Parse([]byte(echoGraph), "json")
		require.NoError(t, err)
		report, err := eng.Run(context.Background(), g, runner.Request{Input: map[string]any{"x": 1.0}})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"x": 1.0}, report.Output)
	})

	t.Run("BadProcessCards", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "cards.yaml", "cards:\n  - id: broken\n")
		_, err := NewEngine(Options{ProcessCards: path}, logger)
		assert.Error(t, err)
	})
}

func TestNewSessionManager(t *testing.T) {
	logger := logging.NewNop()
	key := strings.Repeat("ab", 32)

	backends := map[string]StoreOptions{
		"Memory": {Backend: StoreMemory},
		"File":   {Backend: StoreFile, Path: t.TempDir(), Redact: []string{"(?i)secret"}},
		"Redis":  {Backend: StoreRedis, RedisAddr: miniredis.RunT(t).Addr(), EncryptionKeys: []string{key}},
	}
	for name, opts := range backends {
		t.Run(name, func(t *testing.T) {
			mgr, err := NewSessionManager(opts, nil, logger)
			require.NoError(t, err)

			ctx := context.Background()
			_, err = mgr.LoadOrStart(ctx, "s1", nil)
			require.NoError(t, err)
			_, err = mgr.Apply(ctx, "s1", func(g *graph.Graph) (*graph.Graph, error) {
				return g.AddNode(graph.Node{ID: "a", CardID: "osc", Data: map[string]any{"secret": "x"}})
			})
			require.NoError(t, err)

			g, err := mgr.Load(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, 1, g.NodeCount())
		})
	}

	t.Run("Errors", func(t *testing.T) {
		cases := []StoreOptions{
			{Backend: "etcd"},
			{Backend: StoreFile},
			{Backend: StoreRedis},
			{Backend: StoreMemory, EncryptionKeys: []string{"zz"}},
			{Backend: StoreMemory, EncryptionKeys: []string{"abcd"}},
			{Backend: StoreMemory, Redact: []string{"("}},
		}
		for _, opts := range cases {
			_, err := NewSessionManager(opts, nil, logger)
			assert.Error(t, err, "%+v", opts)
		}
	})
}

func TestLoadGraph(t *testing.T) {
	eng, err := NewEngine(Options{}, logging.NewNop())
	require.NoError(t, err)

	t.Run("Stdin", func(t *testing.T) {
		g, err := LoadGraph(eng, "-", "", strings.NewReader(echoGraph))
		require.NoError(t, err)
		assert.Equal(t, "g", g.ID())
	})

	t.Run("ExtensionDetection", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "patch.yaml", "id: y\nnodes:\n  - id: a\n    cardId: osc\n")
		g, err := LoadGraph(eng, path, "", nil)
		require.NoError(t, err)
		assert.Equal(t, "y", g.ID())
	})

	t.Run("FormatOverride", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "patch.txt", echoGraph)
		g, err := LoadGraph(eng, path, "json", nil)
		require.NoError(t, err)
		assert.Equal(t, "g", g.ID())
	})
}

func TestPrintDocument(t *testing.T) {
	g, err := graph.New(graph.WithID("p")).AddNode(graph.Node{ID: "a", CardID: "osc"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, PrintDocument(&buf, g, "yaml"))
	assert.Contains(t, buf.String(), "cardId: osc")

	buf.Reset()
	require.NoError(t, PrintDocument(&buf, g, "json"))
	assert.Contains(t, buf.String(), `"cardId": "osc"`)

	assert.Error(t, PrintDocument(&buf, g, "hcl"))
}

func TestWatch_Unsupported(t *testing.T) {
	path := writeFile(t, t.TempDir(), "patch.json", echoGraph)

	var reports []validator.Report
	err := Watch(context.Background(), Options{}, path, "", false, logging.NewNop(), func(r validator.Report) {
		reports = append(reports, r)
	})
	assert.ErrorIs(t, err, ports.ErrWatchUnsupported)
	require.Len(t, reports, 1)
	assert.Equal(t, []string{"a"}, reports[0].Unresolved)
	assert.True(t, reports[0].OK())
}

func TestSignalContext(t *testing.T) {
	sc := NewSignalContext(context.Background())
	assert.Nil(t, sc.Signal())
	sc.Cancel()
	<-sc.Done()
	assert.Nil(t, sc.Signal())
}
