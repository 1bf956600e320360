package report

import (
	"regexp"
	"strings"
)

const (
	DefaultBarColor      = "#3CB2D2"
	DefaultBarBackground = "#eeeeee"
)

// StyleOptions control the generated inline stylesheet.
type StyleOptions struct {
	Disabled      bool
	BarColor      string
	BarBackground string
}

func DefaultStyleOptions() StyleOptions {
	return StyleOptions{
		BarColor:      DefaultBarColor,
		BarBackground: DefaultBarBackground,
	}
}

var cssColor = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]+|rgba?\([0-9.,%\s]+\)|hsla?\([0-9.,%\s]+\))$`)

// GenerateCSS builds the bar colour rules. Blank or malformed colours are
// skipped.
func GenerateCSS(opts StyleOptions) string {
	if opts.Disabled {
		return ""
	}

	var b strings.Builder
	if c := strings.TrimSpace(opts.BarColor); c != "" && cssColor.MatchString(c) {
		b.WriteString(".rating-report-bar { background: " + c + " }")
	}
	if c := strings.TrimSpace(opts.BarBackground); c != "" && cssColor.MatchString(c) {
		b.WriteString(".rating-report-graph-values .rating-report-category, .rating-report-bar-wrap { background: " + c + " }")
	}
	return b.String()
}
