package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChainApply(t *testing.T) {
	t.Run("empty chain is identity", func(t *testing.T) {
		var c Chain[string]
		assert.Equal(t, "x", c.Apply("x", HookContext{}))
		assert.Equal(t, 0, c.Len())
	})

	t.Run("nil chain is identity", func(t *testing.T) {
		var c *Chain[float64]
		assert.Equal(t, 1.5, c.Apply(1.5, HookContext{}))
	})

	t.Run("registration order", func(t *testing.T) {
		var c Chain[string]
		c.Register(func(s string, _ HookContext) string { return s + "a" })
		c.Register(nil)
		c.Register(func(s string, _ HookContext) string { return s + "b" })

		assert.Equal(t, "xab", c.Apply("x", HookContext{}))
		assert.Equal(t, 2, c.Len())
	})
}

func TestNilHooks(t *testing.T) {
	var h *Hooks
	hc := HookContext{PostID: 1}

	assert.Equal(t, LayoutGraph, h.ApplyLayout(LayoutGraph, hc))
	assert.Equal(t, "r", h.ApplyRating("r", hc))
	assert.Equal(t, "a", h.ApplyFormattedAverage("a", hc))
	assert.Equal(t, "html", h.ApplyRender("html", hc))
}

func TestHooksSetPoint(t *testing.T) {
	h := &Hooks{}
	var seen []string
	h.Layout.Register(func(l Layout, hc HookContext) Layout {
		seen = append(seen, hc.Point)
		return LayoutVerticalGraph
	})
	h.Render.Register(func(s string, hc HookContext) string {
		seen = append(seen, hc.Point)
		return "<section>" + s + "</section>"
	})

	assert.Equal(t, LayoutVerticalGraph, h.ApplyLayout(LayoutTable, HookContext{}))
	assert.Equal(t, "<section>x</section>", h.ApplyRender("x", HookContext{}))
	assert.Equal(t, []string{PointLayout, PointRender}, seen)
}
