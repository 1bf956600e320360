package report

// Hook point names passed in HookContext.Point.
const (
	PointRaw              = "raw"
	PointRecords          = "records"
	PointAverage          = "average"
	PointLayout           = "layout"
	PointRating           = "rating"
	PointFormattedAverage = "formatted_average"
	PointRender           = "render"
)

// HookContext describes where a filter is being applied.
type HookContext struct {
	Point       string
	PostID      int64
	Layout      Layout
	DisplayType DisplayType
	Value       float64
}

// Filter transforms a value at an extension point.
type Filter[T any] func(value T, hc HookContext) T

// Chain is an ordered list of filters. The zero value is an identity chain.
type Chain[T any] struct {
	filters []Filter[T]
}

// Register appends f; filters run in registration order.
func (c *Chain[T]) Register(f Filter[T]) {
	if f == nil {
		return
	}
	c.filters = append(c.filters, f)
}

// Len reports how many filters are registered.
func (c *Chain[T]) Len() int {
	if c == nil {
		return 0
	}
	return len(c.filters)
}

// Apply runs every registered filter over value.
func (c *Chain[T]) Apply(value T, hc HookContext) T {
	if c == nil {
		return value
	}
	for _, f := range c.filters {
		value = f(value, hc)
	}
	return value
}

// Hooks groups the chains for every extension point of a render. A nil *Hooks
// behaves as identity everywhere.
type Hooks struct {
	Raw              Chain[RawRatings]
	Records          Chain[[]RatingRecord]
	Average          Chain[float64]
	Layout           Chain[Layout]
	Rating           Chain[string]
	FormattedAverage Chain[string]
	Render           Chain[string]
}

func (h *Hooks) raw() *Chain[RawRatings] {
	if h == nil {
		return nil
	}
	return &h.Raw
}

func (h *Hooks) records() *Chain[[]RatingRecord] {
	if h == nil {
		return nil
	}
	return &h.Records
}

func (h *Hooks) average() *Chain[float64] {
	if h == nil {
		return nil
	}
	return &h.Average
}

// ApplyLayout runs the layout chain.
func (h *Hooks) ApplyLayout(l Layout, hc HookContext) Layout {
	if h == nil {
		return l
	}
	hc.Point = PointLayout
	return h.Layout.Apply(l, hc)
}

// ApplyRating runs the chain for a single formatted category rating.
func (h *Hooks) ApplyRating(s string, hc HookContext) string {
	if h == nil {
		return s
	}
	hc.Point = PointRating
	return h.Rating.Apply(s, hc)
}

// ApplyFormattedAverage runs the chain for the formatted overall rating.
func (h *Hooks) ApplyFormattedAverage(s string, hc HookContext) string {
	if h == nil {
		return s
	}
	hc.Point = PointFormattedAverage
	return h.FormattedAverage.Apply(s, hc)
}

// ApplyRender runs the chain over the final markup.
func (h *Hooks) ApplyRender(s string, hc HookContext) string {
	if h == nil {
		return s
	}
	hc.Point = PointRender
	return h.Render.Apply(s, hc)
}
