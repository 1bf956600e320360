package httpapi

import (
	"context"

	"github.com/godilite/rating-report/internal/service"
)

type ReportService interface {
	Render(ctx context.Context, postID int64, layout string) (string, error)
	Aggregate(ctx context.Context, postID int64) (service.ReportSummary, error)
	Stylesheet(ctx context.Context) (string, error)
}

type MigrationService interface {
	ProcessStep(ctx context.Context, step int, deleteOldData bool) (service.MigrationStep, error)
}

// CacheInvalidator drops cached reports after stored ratings change.
type CacheInvalidator interface {
	InvalidateReports(ctx context.Context)
}
