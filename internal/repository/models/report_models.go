package models

import "encoding/json"

// Meta keys used in post_meta.
const (
	MetaKeyRatings      = "rating_report"
	MetaKeyDescriptions = "rating_report_descriptions"
	MetaKeyMigrated     = "rating_report_migrated"

	// LegacyMetaPrefix prefixes the one-row-per-category keys of the old schema.
	LegacyMetaPrefix = "_rating_report_"
)

// LegacyRating is one category value stored under the old schema.
type LegacyRating struct {
	CategoryKey string
	Value       string
}

// Options maps option names to their raw JSON values.
type Options map[string]json.RawMessage
