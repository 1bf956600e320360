package report

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Layout is the overall shape of the rendered report.
type Layout string

const (
	LayoutTable         Layout = "table"
	LayoutGraph         Layout = "graph"
	LayoutVerticalGraph Layout = "vertical-graph"
)

// ParseLayout accepts the stored layout names plus a couple of aliases.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table":
		return LayoutTable, nil
	case "graph", "horizontal-graph", "horizontal":
		return LayoutGraph, nil
	case "vertical-graph", "vertical":
		return LayoutVerticalGraph, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLayout, s)
	}
}

// LayoutOptions are the admin-configurable labels of a report.
type LayoutOptions struct {
	Title         string
	OverallLabel  string
	NoRatingsText string
}

func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{
		Title:         "Rating Report",
		OverallLabel:  "Overall",
		NoRatingsText: "No ratings yet.",
	}
}

// FormattedRating is a record together with its display markup.
type FormattedRating struct {
	Category    Category
	Rating      float64
	Description string
	Formatted   string
}

// RenderInput is everything a layout template needs.
type RenderInput struct {
	Layout           Layout
	Ratings          []FormattedRating
	Average          float64
	FormattedAverage string
	MaximumRating    float64
	Options          LayoutOptions
}

// Card binds the per-render settings used to format an AggregateResult.
type Card struct {
	Config  DisplayConfig
	Layout  Layout
	Options LayoutOptions
	Hooks   *Hooks
	PostID  int64
}

// Build formats every record and the average.
func (c Card) Build(result AggregateResult) (RenderInput, error) {
	hc := HookContext{PostID: c.PostID, Layout: c.Layout, DisplayType: c.Config.RatingType}

	ratings := make([]FormattedRating, 0, len(result.Records))
	for _, rec := range result.Records {
		formatted, err := FormatRating(PrepareRating(rec.Rating, c.Config), c.Config.RatingType, c.Config)
		if err != nil {
			return RenderInput{}, err
		}
		hc.Value = rec.Rating
		ratings = append(ratings, FormattedRating{
			Category:    rec.Category,
			Rating:      rec.Rating,
			Description: rec.Description,
			Formatted:   c.Hooks.ApplyRating(formatted, hc),
		})
	}

	avg, err := FormatAverage(result.Average, c.Config)
	if err != nil {
		return RenderInput{}, err
	}
	hc.DisplayType = c.Config.OverallRatingType
	hc.Value = result.Average

	return RenderInput{
		Layout:           c.Layout,
		Ratings:          ratings,
		Average:          result.Average,
		FormattedAverage: c.Hooks.ApplyFormattedAverage(avg, hc),
		MaximumRating:    c.Config.MaximumRating,
		Options:          c.Options,
	}, nil
}

type ratingView struct {
	FormattedRating
	Markup template.HTML
}

type layoutView struct {
	RenderInput
	Rows          []ratingView
	AverageMarkup template.HTML
}

// Renderer turns a RenderInput into HTML. It is safe for concurrent use.
type Renderer struct {
	templates map[Layout]*template.Template
	empty     *template.Template
}

func NewRenderer() *Renderer {
	funcs := template.FuncMap{
		"ratingClass": RatingClass,
		"barStyle":    barStyle,
	}
	return &Renderer{
		templates: map[Layout]*template.Template{
			LayoutTable:         template.Must(template.New("table").Funcs(funcs).Parse(tableTemplate)),
			LayoutGraph:         template.Must(template.New("graph").Funcs(funcs).Parse(graphTemplate)),
			LayoutVerticalGraph: template.Must(template.New("vertical-graph").Funcs(funcs).Parse(verticalGraphTemplate)),
		},
		empty: template.Must(template.New("empty").Parse(emptyTemplate)),
	}
}

// Render executes the template for in.Layout.
func (r *Renderer) Render(in RenderInput) (string, error) {
	tmpl, ok := r.templates[in.Layout]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLayout, string(in.Layout))
	}

	if in.MaximumRating <= 0 {
		in.MaximumRating = DefaultMaximumRating
	}
	view := layoutView{
		RenderInput:   in,
		Rows:          make([]ratingView, len(in.Ratings)),
		AverageMarkup: template.HTML(in.FormattedAverage),
	}
	for i, fr := range in.Ratings {
		view.Rows[i] = ratingView{FormattedRating: fr, Markup: template.HTML(fr.Formatted)}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render %s: %w", in.Layout, err)
	}
	return buf.String(), nil
}

// RenderEmpty renders the fallback shown when a post has no ratings.
func (r *Renderer) RenderEmpty(opts LayoutOptions) (string, error) {
	var buf bytes.Buffer
	if err := r.empty.Execute(&buf, opts); err != nil {
		return "", fmt.Errorf("render empty: %w", err)
	}
	return buf.String(), nil
}

// RatingClass builds the CSS class suffix for a rating: 4.5 -> "4-5".
func RatingClass(rating float64) string {
	s := strings.ReplaceAll(FormatValue(rating), ".", "-")
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return -1
		}
	}, s)
}

// BarPercent is rating as a share of max, clamped to [0, 100].
func BarPercent(rating, max float64) float64 {
	if max <= 0 {
		max = DefaultMaximumRating
	}
	pct := rating / max * 100
	pct = math.Min(100, math.Max(0, pct))
	return math.Round(pct*100) / 100
}

func barStyle(property string, rating, max float64) template.CSS {
	return template.CSS(property + ": " + FormatValue(BarPercent(rating, max)) + "%")
}

const tableTemplate = `<table class="rating-report rating-report-table">
	<thead>
	<tr>
		<th colspan="2">{{.Options.Title}}</th>
	</tr>
	</thead>
	<tbody>
	{{- range .Rows}}
	<tr>
		<td class="rating-report-category">{{.Category.Name}}{{if .Description}}<span class="rating-report-description">{{.Description}}</span>{{end}}</td>
		<td class="rating-report-rating rating-report-rating-{{ratingClass .Rating}}">{{.Markup}}</td>
	</tr>
	{{- end}}
	</tbody>
	<tfoot>
	<tr class="rating-report-overall">
		<td class="rating-report-overall-label">{{.Options.OverallLabel}}</td>
		<td class="rating-report-overall-rating">{{.AverageMarkup}}</td>
	</tr>
	</tfoot>
</table>`

const graphTemplate = `<div class="rating-report rating-report-graph rating-report-graph-horizontal">
	<div class="rating-report-title">{{.Options.Title}}</div>
	<div class="rating-report-graph-values">
	{{- range .Rows}}
		<div class="rating-report-graph-row">
			<span class="rating-report-category">{{.Category.Name}}</span>
			<div class="rating-report-bar-wrap"><div class="rating-report-bar" style="{{barStyle "width" .Rating $.MaximumRating}}"></div></div>
			<span class="rating-report-rating rating-report-rating-{{ratingClass .Rating}}">{{.Markup}}</span>
			{{- if .Description}}
			<span class="rating-report-description">{{.Description}}</span>
			{{- end}}
		</div>
	{{- end}}
	</div>
	<div class="rating-report-overall">
		<span class="rating-report-overall-label">{{.Options.OverallLabel}}</span>
		<span class="rating-report-overall-rating">{{.AverageMarkup}}</span>
	</div>
</div>`

const verticalGraphTemplate = `<div class="rating-report rating-report-graph rating-report-graph-vertical">
	<div class="rating-report-title">{{.Options.Title}}</div>
	<div class="rating-report-graph-values">
	{{- range .Rows}}
		<div class="rating-report-graph-column">
			<div class="rating-report-bar-wrap"><div class="rating-report-bar" style="{{barStyle "height" .Rating $.MaximumRating}}"></div></div>
			<span class="rating-report-rating rating-report-rating-{{ratingClass .Rating}}">{{.Markup}}</span>
			<span class="rating-report-category">{{.Category.Name}}</span>
		</div>
	{{- end}}
	</div>
	<div class="rating-report-overall">
		<span class="rating-report-overall-label">{{.Options.OverallLabel}}</span>
		<span class="rating-report-overall-rating">{{.AverageMarkup}}</span>
	</div>
</div>`

const emptyTemplate = `<div class="rating-report rating-report-empty">{{.NoRatingsText}}</div>`
