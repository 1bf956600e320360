package report

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
)

const numberPlaceholder = "%s"

// FormatValue renders a rating in its shortest decimal form: 4, 4.5, 3.75.
func FormatValue(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// FormatNumber substitutes value into the template's placeholder.
func FormatNumber(value float64, template string) string {
	if template == "" {
		template = numberPlaceholder
	}
	return strings.Replace(template, numberPlaceholder, FormatValue(value), 1)
}

// IconSequence is the star rendering of a rating: an accessible label plus the
// full, half and empty glyphs in display order.
type IconSequence struct {
	Label  string
	Glyphs []string
}

// Tokens returns the label followed by every glyph.
func (s IconSequence) Tokens() []string {
	out := make([]string, 0, len(s.Glyphs)+1)
	out = append(out, s.Label)
	return append(out, s.Glyphs...)
}

// String concatenates the glyphs without the label.
func (s IconSequence) String() string {
	return strings.Join(s.Glyphs, "")
}

// FormatIconRating converts value into floor(value) full glyphs, one half glyph
// when any fractional part remains, and empty glyphs up to maximumRating. The
// half-star policy belongs to the caller; this only counts.
func FormatIconRating(value, maximumRating float64, full, half, empty string) IconSequence {
	fullCount := math.Floor(value)
	halfCount := math.Ceil(value - fullCount)
	emptyCount := math.Max(0, maximumRating-fullCount-halfCount)

	seq := IconSequence{
		Label:  FormatValue(value) + " star rating",
		Glyphs: make([]string, 0, glyphCapacity(fullCount, full)+glyphCapacity(halfCount, half)+glyphCapacity(emptyCount, empty)),
	}
	seq.Glyphs = appendRepeated(seq.Glyphs, full, fullCount)
	seq.Glyphs = appendRepeated(seq.Glyphs, half, halfCount)
	seq.Glyphs = appendRepeated(seq.Glyphs, empty, emptyCount)
	return seq
}

// maxPrealloc caps the glyph slice preallocated for one token kind.
const maxPrealloc = 64

func glyphCapacity(count float64, token string) int {
	if token == "" || !(count > 0) {
		return 0
	}
	return int(math.Min(count, maxPrealloc))
}

func appendRepeated(dst []string, token string, count float64) []string {
	if token == "" || count <= 0 {
		return dst
	}
	for i := 0; i < int(count); i++ {
		dst = append(dst, token)
	}
	return dst
}

// FormatRating renders value in the given display mode.
func FormatRating(value float64, displayType DisplayType, cfg DisplayConfig) (string, error) {
	switch displayType {
	case DisplayNumbers:
		return FormatNumber(value, cfg.NumberTemplate), nil
	case DisplayIcons:
		return renderStars(value, cfg, cfg.Icons, iconMarkup), nil
	case DisplayImages:
		return renderStars(value, cfg, cfg.Images, imageMarkup), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDisplayType, string(displayType))
	}
}

// FormatAverage renders the overall rating with cfg.OverallRatingType. Star
// modes round first: to the nearest half when half stars are enabled,
// otherwise to the nearest whole.
func FormatAverage(average float64, cfg DisplayConfig) (string, error) {
	if cfg.OverallRatingType == DisplayNumbers {
		return FormatNumber(average, cfg.NumberTemplate), nil
	}
	return FormatRating(RoundForStars(average, cfg.HalfStars), cfg.OverallRatingType, cfg)
}

// RoundForStars rounds to the nearest half or whole star.
func RoundForStars(value float64, halfStars bool) float64 {
	if halfStars {
		return math.Round(value*2) / 2
	}
	return math.Round(value)
}

// PrepareRating applies the half-star policy to a single category rating
// before it is handed to FormatRating.
func PrepareRating(value float64, cfg DisplayConfig) float64 {
	if cfg.RatingType == DisplayNumbers || cfg.HalfStars {
		return value
	}
	return math.Round(value)
}

func renderStars(value float64, cfg DisplayConfig, set IconSet, markup func(string) string) string {
	max := cfg.MaximumRating
	if max <= 0 {
		max = DefaultMaximumRating
	}

	emptyAsset := set.Empty
	if !cfg.FillEmpty {
		emptyAsset = ""
	}

	seq := FormatIconRating(value, max, markup(set.Full), markup(set.Half), markup(emptyAsset))

	var b strings.Builder
	b.WriteString(`<span class="screen-reader-text">`)
	b.WriteString(html.EscapeString(seq.Label))
	b.WriteString(`</span>`)
	b.WriteString(seq.String())
	return b.String()
}

func iconMarkup(class string) string {
	if strings.TrimSpace(class) == "" {
		return ""
	}
	return `<i class="` + html.EscapeString(class) + `" aria-hidden="true"></i>`
}

func imageMarkup(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	return `<img class="rating-report-star" src="` + html.EscapeString(src) + `" alt="">`
}
