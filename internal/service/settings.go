package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/godilite/rating-report/internal/report"
	"github.com/godilite/rating-report/internal/repository/models"
)

// Settings is the resolved, read-only view of the options table for one render.
type Settings struct {
	Display    report.DisplayConfig
	Categories []report.Category
	Layout     report.Layout
	Labels     report.LayoutOptions
	Style      report.StyleOptions
}

// maxRatingLimit bounds max_rating. Icon modes render one glyph per unit.
const maxRatingLimit = 100

// ResolveSettings applies defaults to the stored options and validates them.
func ResolveSettings(opts models.Options) (Settings, error) {
	s := Settings{
		Display:    report.DefaultDisplayConfig(),
		Categories: report.DefaultCategories(),
		Layout:     report.LayoutTable,
		Labels:     report.DefaultLayoutOptions(),
		Style:      report.DefaultStyleOptions(),
	}

	var err error
	if v, ok := optString(opts, "rating_type"); ok {
		if s.Display.RatingType, err = report.ParseDisplayType(v); err != nil {
			return Settings{}, fmt.Errorf("rating_type: %w", err)
		}
	}
	if v, ok := optString(opts, "rating_type_overall"); ok {
		if s.Display.OverallRatingType, err = report.ParseDisplayType(v); err != nil {
			return Settings{}, fmt.Errorf("rating_type_overall: %w", err)
		}
	}
	if v, ok := opts["max_rating"]; ok {
		max, err := decodeFloat(v)
		if err != nil || !(max > 0 && max <= maxRatingLimit) {
			return Settings{}, fmt.Errorf("%w: max_rating %s", ErrInvalidSettings, string(v))
		}
		s.Display.MaximumRating = max
	}
	if v, ok := opts["half_stars"]; ok {
		s.Display.HalfStars = decodeBool(v)
	}
	if v, ok := opts["fill_empty_stars"]; ok {
		s.Display.FillEmpty = decodeBool(v)
	}
	if v, ok := optString(opts, "number_template"); ok {
		if !strings.Contains(v, "%s") {
			return Settings{}, fmt.Errorf("%w: number_template %q has no %%s placeholder", ErrInvalidSettings, v)
		}
		s.Display.NumberTemplate = v
	}

	s.Display.Icons.Full = optStringOr(opts, "full_star_icon", s.Display.Icons.Full)
	s.Display.Icons.Half = optStringOr(opts, "half_star_icon", s.Display.Icons.Half)
	s.Display.Icons.Empty = optStringOr(opts, "empty_star_icon", s.Display.Icons.Empty)
	s.Display.Images.Full = optStringOr(opts, "full_star_image", "")
	s.Display.Images.Half = optStringOr(opts, "half_star_image", "")
	s.Display.Images.Empty = optStringOr(opts, "empty_star_image", "")

	if v, ok := opts["categories"]; ok {
		cats, err := decodeCategories(v)
		if err != nil {
			return Settings{}, fmt.Errorf("%w: categories: %v", ErrInvalidSettings, err)
		}
		s.Categories = cats
	}

	if v, ok := optString(opts, "display_type"); ok {
		if s.Layout, err = report.ParseLayout(v); err != nil {
			return Settings{}, fmt.Errorf("display_type: %w", err)
		}
	}

	s.Labels.Title = optStringOr(opts, "table_title", s.Labels.Title)
	s.Labels.OverallLabel = optStringOr(opts, "table_overall_label", s.Labels.OverallLabel)
	s.Labels.NoRatingsText = optStringOr(opts, "no_ratings_text", s.Labels.NoRatingsText)

	if v, ok := opts["disable_styles"]; ok {
		s.Style.Disabled = decodeBool(v)
	}
	s.Style.BarColor = optStringOr(opts, "bar_color", s.Style.BarColor)
	s.Style.BarBackground = optStringOr(opts, "bar_bg", s.Style.BarBackground)

	return s, nil
}

// optString returns a non-empty string option.
func optString(opts models.Options, name string) (string, bool) {
	v, ok := opts[name]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		s = strings.Trim(string(v), `"`)
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func optStringOr(opts models.Options, name, fallback string) string {
	if v, ok := optString(opts, name); ok {
		return v
	}
	return fallback
}

func decodeFloat(v json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(v, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// decodeBool accepts true/false, numbers and the "1"/"on"/"yes" strings
// checkbox settings are saved as.
func decodeBool(v json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return b
	}
	var f float64
	if err := json.Unmarshal(v, &f); err == nil {
		return f != 0
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "1", "true", "on", "yes":
			return true
		}
	}
	return false
}

// decodeCategories accepts either an array of {key, name} or an object of
// key -> name. Object member order is kept.
func decodeCategories(v json.RawMessage) ([]report.Category, error) {
	trimmed := bytes.TrimSpace(v)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty value")
	}

	var cats []report.Category
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &cats); err != nil {
			return nil, err
		}
	case '{':
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := tok.(string)
			var name string
			if err := dec.Decode(&name); err != nil {
				return nil, fmt.Errorf("category %q: %w", key, err)
			}
			cats = append(cats, report.Category{Key: key, Name: name})
		}
	default:
		return nil, fmt.Errorf("expected array or object")
	}

	seen := make(map[string]bool, len(cats))
	for _, c := range cats {
		if c.Key == "" {
			return nil, fmt.Errorf("category with empty key")
		}
		if seen[c.Key] {
			return nil, fmt.Errorf("duplicate category %q", c.Key)
		}
		seen[c.Key] = true
	}
	return cats, nil
}
