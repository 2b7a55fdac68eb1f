package loam

import (
	"context"
	"testing"

	"github.com/aretw0/cardflow/internal/testutils"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/loam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lowpass = `---
id: lowpass
name: Low-pass filter
category: Filters
version: 1.2.0
inputs:
  - {name: in, type: audio}
outputs:
  - {name: out, type: audio}
parameters:
  - {name: cutoff, type: number, min: 20, max: 20000, default: 1000}
---
Attenuates frequencies above the cutoff.`

func newCatalog(t *testing.T, files map[string]string) *Catalog {
	t.Helper()
	dir, repo := testutils.SetupTestRepo(t, loam.WithVersioning(false))
	testutils.WriteFiles(t, dir, files)
	return New(loam.NewTypedRepository[CardDescriptor](repo))
}

func TestCatalog_LoadCards(t *testing.T) {
	cat := newCatalog(t, map[string]string{
		"filters/lowpass.md": lowpass,
		"gain.json": `{
  "id": "gain.json",
  "category": "effects",
  "inputs": [{"name": "in", "type": "any"}],
  "outputs": [{"name": "out", "type": "any"}]
}`,
	})
	ctx := context.Background()

	ids, err := cat.ListCards(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"lowpass", "gain"}, ids)

	reg, err := cat.Registry(ctx)
	require.NoError(t, err)

	lp, err := reg.Get("lowpass")
	require.NoError(t, err)
	meta := lp.Meta()
	assert.Equal(t, "Low-pass filter", meta.Name)
	assert.Equal(t, domain.CategoryFilters, meta.Category)
	assert.Equal(t, "Attenuates frequencies above the cutoff.", meta.Description)

	sig := lp.Signature()
	in, ok := sig.Input("in")
	require.True(t, ok)
	assert.Equal(t, domain.PortAudio, in.Type)
	require.Len(t, sig.Parameters, 1)
	require.NotNil(t, sig.Parameters[0].Max)
	assert.Equal(t, 20000.0, *sig.Parameters[0].Max)

	// Descriptor cards pass their input through.
	res := lp.Process(0.5, domain.CardContext{}, lp.InitialState())
	assert.Equal(t, 0.5, res.Output)

	gain, err := reg.Get("gain")
	require.NoError(t, err)
	assert.Equal(t, "gain", gain.Meta().Name)
}

func TestCatalog_Card(t *testing.T) {
	cat := newCatalog(t, map[string]string{"lowpass.md": lowpass})

	c, err := cat.Card(context.Background(), "lowpass")
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", c.Meta().Version)

	_, err = cat.Card(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrCardNotFound)
}

func TestCatalog_InvalidVersion(t *testing.T) {
	cat := newCatalog(t, map[string]string{"bad.md": "---\nid: bad\nversion: one\n---\n"})

	_, err := cat.LoadCards(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidVersion)
}

func TestCatalog_DuplicatePort(t *testing.T) {
	cat := newCatalog(t, map[string]string{"dup.md": "---\nid: dup\ninputs:\n  - {name: in, type: audio}\n  - {name: in, type: midi}\n---\n"})

	_, err := cat.LoadCards(context.Background())
	assert.ErrorIs(t, err, domain.ErrDuplicatePort)
}

func TestCatalog_DetectsCollisions(t *testing.T) {
	cat := newCatalog(t, map[string]string{
		"foo.md":   "---\nid: foo\n---\n",
		"foo.json": `{"id": "foo"}`,
	})

	_, err := cat.ListCards(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")

	_, err = cat.LoadCards(context.Background())
	assert.Error(t, err)
}

func TestCatalog_UnknownCategoryIsCustom(t *testing.T) {
	d := CardDescriptor{ID: "x", Category: "weird"}
	meta, err := d.Meta()
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryCustom, meta.Category)
	assert.Equal(t, "x", meta.Name)
}
