package report

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// RawRatings is the stored category key -> value map, before validation.
type RawRatings map[string]any

// RatingRecord is one category's score.
type RatingRecord struct {
	Category    Category
	Rating      float64
	Description string
}

// AggregateResult holds the records in category order and their rounded mean.
type AggregateResult struct {
	Records []RatingRecord
	Average float64
}

type aggregateOptions struct {
	maximum float64
	hooks   *Hooks
	postID  int64
}

type AggregateOption func(*aggregateOptions)

// WithMaximumRating rejects values above max. Zero disables the upper bound.
func WithMaximumRating(max float64) AggregateOption {
	return func(o *aggregateOptions) { o.maximum = max }
}

// WithHooks enables the Raw, Records and Average chains.
func WithHooks(h *Hooks) AggregateOption {
	return func(o *aggregateOptions) { o.hooks = h }
}

// WithPostID is passed through to hook contexts.
func WithPostID(id int64) AggregateOption {
	return func(o *aggregateOptions) { o.postID = id }
}

// Aggregate joins raw values against the configured categories. Categories
// missing from raw are dropped, raw keys without a category are ignored. The
// average is computed over the records left after the Records chain and is
// rounded to two places.
func Aggregate(raw RawRatings, descriptions map[string]string, categories []Category, opts ...AggregateOption) (AggregateResult, error) {
	options := &aggregateOptions{}
	for _, opt := range opts {
		opt(options)
	}

	hc := HookContext{PostID: options.postID}

	hc.Point = PointRaw
	raw = options.hooks.raw().Apply(raw, hc)

	records := make([]RatingRecord, 0, len(categories))
	for _, cat := range categories {
		v, ok := raw[cat.Key]
		if !ok {
			continue
		}

		rating, err := ParseRating(v)
		if err != nil {
			return AggregateResult{}, fmt.Errorf("%w: category %q: %v", ErrInvalidRatingValue, cat.Key, err)
		}
		if options.maximum > 0 && rating > options.maximum {
			return AggregateResult{}, fmt.Errorf("%w: category %q: %v exceeds maximum %v", ErrInvalidRatingValue, cat.Key, rating, options.maximum)
		}

		records = append(records, RatingRecord{
			Category:    cat,
			Rating:      rating,
			Description: descriptions[cat.Key],
		})
	}

	hc.Point = PointRecords
	records = options.hooks.records().Apply(records, hc)

	if len(records) == 0 {
		return AggregateResult{}, ErrNoRatingsAvailable
	}

	total := decimal.Zero
	for _, r := range records {
		total = total.Add(decimal.NewFromFloat(r.Rating))
	}
	average, _ := total.Div(decimal.NewFromInt(int64(len(records)))).Round(2).Float64()

	hc.Point = PointAverage
	hc.Value, _ = total.Float64()
	average = options.hooks.average().Apply(average, hc)

	return AggregateResult{Records: records, Average: average}, nil
}

// ParseRating validates a stored rating value and converts it to float64.
func ParseRating(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n.String())
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %v", f)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative rating %v", f)
	}
	return f, nil
}
