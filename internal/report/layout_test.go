package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() AggregateResult {
	return AggregateResult{
		Records: []RatingRecord{
			{Category: Category{Key: "plot", Name: "Plot"}, Rating: 4.5, Description: "Twisty & tight"},
			{Category: Category{Key: "cover", Name: "Cover"}, Rating: 3},
		},
		Average: 3.75,
	}
}

func TestCardBuild(t *testing.T) {
	t.Run("formats records and average", func(t *testing.T) {
		card := Card{Config: DefaultDisplayConfig(), Layout: LayoutTable, Options: DefaultLayoutOptions()}

		in, err := card.Build(sampleResult())

		require.NoError(t, err)
		require.Len(t, in.Ratings, 2)
		assert.Equal(t, "4.5", in.Ratings[0].Formatted)
		assert.Equal(t, "3", in.Ratings[1].Formatted)
		assert.Equal(t, "3.75", in.FormattedAverage)
		assert.Equal(t, 5.0, in.MaximumRating)
	})

	t.Run("rounds single ratings when half stars are off", func(t *testing.T) {
		cfg := DefaultDisplayConfig()
		cfg.RatingType = DisplayIcons

		in, err := Card{Config: cfg, Layout: LayoutTable}.Build(sampleResult())

		require.NoError(t, err)
		assert.Contains(t, in.Ratings[0].Formatted, "5 star rating")
	})

	t.Run("rating hooks run with context", func(t *testing.T) {
		hooks := &Hooks{}
		hooks.Rating.Register(func(s string, hc HookContext) string {
			assert.Equal(t, PointRating, hc.Point)
			assert.Equal(t, int64(7), hc.PostID)
			return "[" + s + "]"
		})
		hooks.FormattedAverage.Register(func(s string, hc HookContext) string {
			return s + "!"
		})

		in, err := Card{Config: DefaultDisplayConfig(), Layout: LayoutTable, Hooks: hooks, PostID: 7}.Build(sampleResult())

		require.NoError(t, err)
		assert.Equal(t, "[4.5]", in.Ratings[0].Formatted)
		assert.Equal(t, "3.75!", in.FormattedAverage)
	})

	t.Run("unsupported rating type", func(t *testing.T) {
		cfg := DefaultDisplayConfig()
		cfg.RatingType = "graphics"

		_, err := Card{Config: cfg}.Build(sampleResult())

		assert.ErrorIs(t, err, ErrUnsupportedDisplayType)
	})
}

func TestRendererRender(t *testing.T) {
	r := NewRenderer()
	card := Card{Config: DefaultDisplayConfig(), Options: DefaultLayoutOptions()}

	t.Run("table", func(t *testing.T) {
		card := card
		card.Layout = LayoutTable
		in, err := card.Build(sampleResult())
		require.NoError(t, err)

		out, err := r.Render(in)

		require.NoError(t, err)
		assert.Contains(t, out, `<table class="rating-report rating-report-table">`)
		assert.Contains(t, out, "Rating Report")
		assert.Contains(t, out, `rating-report-rating-4-5`)
		assert.Contains(t, out, "Twisty &amp; tight")
		assert.Contains(t, out, `<td class="rating-report-overall-rating">3.75</td>`)
		assert.Less(t, strings.Index(out, "Plot"), strings.Index(out, "Cover"))
	})

	t.Run("horizontal graph", func(t *testing.T) {
		card := card
		card.Layout = LayoutGraph
		in, err := card.Build(sampleResult())
		require.NoError(t, err)

		out, err := r.Render(in)

		require.NoError(t, err)
		assert.Contains(t, out, "rating-report-graph-horizontal")
		assert.Contains(t, out, "width: 90%")
		assert.Contains(t, out, "width: 60%")
	})

	t.Run("vertical graph", func(t *testing.T) {
		card := card
		card.Layout = LayoutVerticalGraph
		in, err := card.Build(sampleResult())
		require.NoError(t, err)

		out, err := r.Render(in)

		require.NoError(t, err)
		assert.Contains(t, out, "rating-report-graph-vertical")
		assert.Contains(t, out, "height: 90%")
	})

	t.Run("star markup is not escaped", func(t *testing.T) {
		card := card
		card.Layout = LayoutTable
		card.Config.RatingType = DisplayIcons
		in, err := card.Build(sampleResult())
		require.NoError(t, err)

		out, err := r.Render(in)

		require.NoError(t, err)
		assert.Contains(t, out, `<i class="fa fa-star" aria-hidden="true"></i>`)
	})

	t.Run("unsupported layout", func(t *testing.T) {
		_, err := r.Render(RenderInput{Layout: "carousel"})

		assert.ErrorIs(t, err, ErrUnsupportedLayout)
	})
}

func TestRenderEmpty(t *testing.T) {
	out, err := NewRenderer().RenderEmpty(LayoutOptions{NoRatingsText: "Nothing <yet>"})

	require.NoError(t, err)
	assert.Equal(t, `<div class="rating-report rating-report-empty">Nothing &lt;yet&gt;</div>`, out)
}

func TestParseLayout(t *testing.T) {
	for in, want := range map[string]Layout{
		"table":          LayoutTable,
		"graph":          LayoutGraph,
		"horizontal":     LayoutGraph,
		"vertical-graph": LayoutVerticalGraph,
		" Vertical ":     LayoutVerticalGraph,
	} {
		got, err := ParseLayout(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseLayout("pie")
	assert.ErrorIs(t, err, ErrUnsupportedLayout)
}

func TestRatingClassAndBarPercent(t *testing.T) {
	assert.Equal(t, "4-5", RatingClass(4.5))
	assert.Equal(t, "3", RatingClass(3))

	assert.Equal(t, 90.0, BarPercent(4.5, 5))
	assert.Equal(t, 100.0, BarPercent(7, 5))
	assert.Equal(t, 0.0, BarPercent(-1, 5))
	assert.Equal(t, 50.0, BarPercent(2.5, 0))
}
