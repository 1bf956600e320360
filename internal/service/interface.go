package service

import (
	"context"

	"github.com/godilite/rating-report/internal/repository/models"
)

// RatingMetaRepository reads a post's stored ratings.
type RatingMetaRepository interface {
	GetRatings(ctx context.Context, postID int64) (map[string]any, error)
	GetDescriptions(ctx context.Context, postID int64) (map[string]string, error)
}

// SettingsRepository reads plugin options.
type SettingsRepository interface {
	GetOptions(ctx context.Context) (models.Options, error)
}

// MigrationRepository moves ratings from the legacy schema.
type MigrationRepository interface {
	GetRatings(ctx context.Context, postID int64) (map[string]any, error)
	CountMigrationCandidates(ctx context.Context) (int, error)
	ListMigrationCandidates(ctx context.Context, limit, offset int) ([]int64, error)
	GetLegacyRatings(ctx context.Context, postID int64) ([]models.LegacyRating, error)
	ApplyMigration(ctx context.Context, postID int64, ratings map[string]any, deleteKeys []string) error
}
