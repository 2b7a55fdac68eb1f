package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/cardflow/internal/presentation/tui"
	"github.com/aretw0/cardflow/internal/validator"
	"github.com/aretw0/cardflow/pkg/dsl"
	"github.com/stretchr/testify/assert"
)

func TestMarkdownReport(t *testing.T) {
	b := dsl.New()
	b.Add("a").To("ghost")
	b.Add("b")

	md := tui.MarkdownReport(validator.Check(b.MustBuild(), nil))
	assert.Contains(t, md, ": invalid")
	assert.Contains(t, md, "## Errors")
	assert.Contains(t, md, "**missing_node**")
	assert.Contains(t, md, "## Warnings")
	assert.Contains(t, md, "| a | a _(unresolved)_ | - | - | 1 |")
	assert.Contains(t, md, "| unchecked |")
}

func TestMarkdownReport_Clean(t *testing.T) {
	b := dsl.New()
	b.Add("x").To("y")
	b.Add("y")
	md := tui.MarkdownReport(validator.Check(b.MustBuild(), nil))
	assert.Contains(t, md, ": valid")
	assert.NotContains(t, md, "## Errors")
}

func TestBannerAndStatus(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|_|")

	assert.Contains(t, tui.Status(true, "ok"), "ok")
	assert.Contains(t, tui.Status(false, "bad"), "✘")
}

func TestRenderer(t *testing.T) {
	out, err := tui.NewRenderer()("# Title")
	assert.NoError(t, err)
	assert.Contains(t, out, "Title")
}
