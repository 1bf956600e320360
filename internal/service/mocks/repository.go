package mocks

import (
	"context"
	"errors"

	"github.com/godilite/rating-report/internal/repository/models"
)

// MockPostMetaRepository is a mock implementation of the RatingMetaRepository
// and MigrationRepository interfaces for testing the service layer.
type MockPostMetaRepository struct {
	GetRatingsFunc               func(ctx context.Context, postID int64) (map[string]any, error)
	GetDescriptionsFunc          func(ctx context.Context, postID int64) (map[string]string, error)
	CountMigrationCandidatesFunc func(ctx context.Context) (int, error)
	ListMigrationCandidatesFunc  func(ctx context.Context, limit, offset int) ([]int64, error)
	GetLegacyRatingsFunc         func(ctx context.Context, postID int64) ([]models.LegacyRating, error)
	ApplyMigrationFunc           func(ctx context.Context, postID int64, ratings map[string]any, deleteKeys []string) error
}

func (m *MockPostMetaRepository) GetRatings(ctx context.Context, postID int64) (map[string]any, error) {
	if m.GetRatingsFunc != nil {
		return m.GetRatingsFunc(ctx, postID)
	}
	return nil, errors.New("GetRatingsFunc not implemented")
}

// GetDescriptions returns no descriptions unless overridden.
func (m *MockPostMetaRepository) GetDescriptions(ctx context.Context, postID int64) (map[string]string, error) {
	if m.GetDescriptionsFunc != nil {
		return m.GetDescriptionsFunc(ctx, postID)
	}
	return map[string]string{}, nil
}

func (m *MockPostMetaRepository) CountMigrationCandidates(ctx context.Context) (int, error) {
	if m.CountMigrationCandidatesFunc != nil {
		return m.CountMigrationCandidatesFunc(ctx)
	}
	return 0, errors.New("CountMigrationCandidatesFunc not implemented")
}

func (m *MockPostMetaRepository) ListMigrationCandidates(ctx context.Context, limit, offset int) ([]int64, error) {
	if m.ListMigrationCandidatesFunc != nil {
		return m.ListMigrationCandidatesFunc(ctx, limit, offset)
	}
	return nil, errors.New("ListMigrationCandidatesFunc not implemented")
}

func (m *MockPostMetaRepository) GetLegacyRatings(ctx context.Context, postID int64) ([]models.LegacyRating, error) {
	if m.GetLegacyRatingsFunc != nil {
		return m.GetLegacyRatingsFunc(ctx, postID)
	}
	return nil, errors.New("GetLegacyRatingsFunc not implemented")
}

func (m *MockPostMetaRepository) ApplyMigration(ctx context.Context, postID int64, ratings map[string]any, deleteKeys []string) error {
	if m.ApplyMigrationFunc != nil {
		return m.ApplyMigrationFunc(ctx, postID, ratings, deleteKeys)
	}
	return errors.New("ApplyMigrationFunc not implemented")
}

// MockSettingsRepository returns Options, or Err when set.
type MockSettingsRepository struct {
	Options models.Options
	Err     error
	Calls   int
}

func (m *MockSettingsRepository) GetOptions(ctx context.Context) (models.Options, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Options == nil {
		return models.Options{}, nil
	}
	return m.Options, nil
}
