package grpc

import (
	"context"
	"time"

	"github.com/godilite/rating-report/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Invalidator is implemented by caches that can drop keys by pattern.
type Invalidator interface {
	DeleteMatching(ctx context.Context, pattern string) (int, error)
}

type ReportService interface {
	Render(ctx context.Context, postID int64, layout string) (string, error)
	Aggregate(ctx context.Context, postID int64) (service.ReportSummary, error)
}

type MigrationService interface {
	ProcessStep(ctx context.Context, step int, deleteOldData bool) (service.MigrationStep, error)
}
