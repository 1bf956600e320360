package report

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoRatingsAvailable     = errors.New("no ratings available")
	ErrInvalidRatingValue     = errors.New("invalid rating value")
	ErrUnsupportedDisplayType = errors.New("unsupported display type")
	ErrUnsupportedLayout      = errors.New("unsupported layout")
)

// DisplayType selects how a numeric rating is turned into display markup.
type DisplayType string

const (
	DisplayNumbers DisplayType = "numbers"
	DisplayImages  DisplayType = "images"
	DisplayIcons   DisplayType = "icons"
)

// ParseDisplayType maps a stored setting onto a DisplayType. "font_awesome" is
// the name older installs saved for icon mode.
func ParseDisplayType(s string) (DisplayType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "numbers":
		return DisplayNumbers, nil
	case "images":
		return DisplayImages, nil
	case "icons", "font_awesome":
		return DisplayIcons, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDisplayType, s)
	}
}

const (
	DefaultMaximumRating  = 5.0
	DefaultNumberTemplate = "%s"

	DefaultFullStarIcon  = "fa fa-star"
	DefaultHalfStarIcon  = "fa fa-star-half-full"
	DefaultEmptyStarIcon = "fa fa-star-o"
)

// IconSet holds the three star assets. For icon mode they are CSS classes, for
// image mode they are image URLs. Any of them may be empty.
type IconSet struct {
	Full  string
	Half  string
	Empty string
}

// DisplayConfig is resolved once per render and not mutated afterwards.
type DisplayConfig struct {
	RatingType        DisplayType
	OverallRatingType DisplayType
	MaximumRating     float64
	HalfStars         bool
	NumberTemplate    string
	Icons             IconSet
	Images            IconSet
	FillEmpty         bool
}

// DefaultDisplayConfig returns the settings used when nothing is configured.
func DefaultDisplayConfig() DisplayConfig {
	return DisplayConfig{
		RatingType:        DisplayNumbers,
		OverallRatingType: DisplayNumbers,
		MaximumRating:     DefaultMaximumRating,
		NumberTemplate:    DefaultNumberTemplate,
		Icons: IconSet{
			Full:  DefaultFullStarIcon,
			Half:  DefaultHalfStarIcon,
			Empty: DefaultEmptyStarIcon,
		},
		FillEmpty: true,
	}
}

// Category is one rated dimension, e.g. "Plot".
type Category struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// DefaultCategories is the category list used before an admin configures one.
func DefaultCategories() []Category {
	return []Category{
		{Key: "plot", Name: "Plot"},
		{Key: "characters", Name: "Characters"},
		{Key: "writing", Name: "Writing"},
		{Key: "pacing", Name: "Pacing"},
		{Key: "cover", Name: "Cover"},
	}
}
