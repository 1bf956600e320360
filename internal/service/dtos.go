package service

type SummaryRecord struct {
	Key         string  `json:"key"`
	Category    string  `json:"category"`
	Rating      float64 `json:"rating"`
	Description string  `json:"description"`
	Formatted   string  `json:"formatted"`
}

// ReportSummary is the aggregated and formatted ratings of one post.
type ReportSummary struct {
	PostID           int64           `json:"post_id"`
	Records          []SummaryRecord `json:"records"`
	Average          float64         `json:"average"`
	FormattedAverage string          `json:"formatted_average"`
}

// MigrationStep is the response to one migration batch. Step is the next step
// number, or StepDone once every candidate has been processed.
type MigrationStep struct {
	Step       string `json:"step"`
	Percentage int    `json:"percentage"`
	Message    string `json:"message"`
}

const StepDone = "done"
