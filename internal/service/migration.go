package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/godilite/rating-report/internal/metrics"
	"github.com/godilite/rating-report/internal/report"
)

const DefaultMigrationBatchSize = 20

var ErrInvalidStep = errors.New("invalid migration step")

// MigrationService moves ratings stored one row per category into the
// single ratings blob, one batch of posts per step.
type MigrationService struct {
	repo      MigrationRepository
	batchSize int
	logger    *zap.Logger
}

// NewMigrationService creates a new MigrationService. A batch size below one
// uses DefaultMigrationBatchSize.
func NewMigrationService(repo MigrationRepository, batchSize int, logger *zap.Logger) *MigrationService {
	if repo == nil {
		panic("migration repository must not be nil")
	}
	if batchSize < 1 {
		batchSize = DefaultMigrationBatchSize
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &MigrationService{
		repo:      repo,
		batchSize: batchSize,
		logger:    logger,
	}
}

// ProcessStep migrates the posts of batch step. Steps are stable across runs:
// migrated posts stay in the candidate set, so repeating or resuming a step
// processes the same posts again and leaves their data unchanged.
func (s *MigrationService) ProcessStep(ctx context.Context, step int, deleteOldData bool) (MigrationStep, error) {
	if step < 0 {
		return MigrationStep{}, fmt.Errorf("%w: %d", ErrInvalidStep, step)
	}

	total, err := s.repo.CountMigrationCandidates(ctx)
	if err != nil {
		return MigrationStep{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	offset := step * s.batchSize
	if offset >= total {
		metrics.MigrationProgressPercent.Set(100)
		s.logger.Info("rating migration finished", zap.Int("posts", total))
		return MigrationStep{
			Step:       StepDone,
			Percentage: 100,
			Message:    fmt.Sprintf("Migration complete. %d posts processed.", total),
		}, nil
	}

	ids, err := s.repo.ListMigrationCandidates(ctx, s.batchSize, offset)
	if err != nil {
		return MigrationStep{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	var notes []string
	for _, id := range ids {
		skipped, err := s.migratePost(ctx, id, deleteOldData)
		if err != nil {
			metrics.MigrationPostsTotal.WithLabelValues("error").Inc()
			return MigrationStep{}, err
		}
		metrics.MigrationPostsTotal.WithLabelValues("ok").Inc()
		if len(skipped) > 0 {
			notes = append(notes, fmt.Sprintf("Post %d: skipped non-numeric ratings for %s.", id, strings.Join(skipped, ", ")))
		}
	}

	processed := offset + len(ids)
	percentage := min(100, processed*100/total)
	metrics.MigrationProgressPercent.Set(float64(percentage))

	s.logger.Info("processed rating migration step",
		zap.Int("step", step),
		zap.Int("posts", len(ids)),
		zap.Int("processed", processed),
		zap.Int("total", total),
		zap.Bool("delete_old_data", deleteOldData))

	return MigrationStep{
		Step:       strconv.Itoa(step + 1),
		Percentage: percentage,
		Message:    strings.Join(notes, " "),
	}, nil
}

// migratePost merges the legacy rows of one post into its ratings blob.
// Values already present in the blob win. It returns the category keys whose
// legacy value was not numeric; their legacy rows are never deleted.
func (s *MigrationService) migratePost(ctx context.Context, postID int64, deleteOldData bool) ([]string, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	legacy, err := s.repo.GetLegacyRatings(dbCtx, postID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	current, err := s.repo.GetRatings(dbCtx, postID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	merged := make(map[string]any, len(current)+len(legacy))
	for k, v := range current {
		merged[k] = v
	}

	var skipped, settled []string
	for _, row := range legacy {
		if _, ok := merged[row.CategoryKey]; ok {
			settled = append(settled, row.CategoryKey)
			continue
		}
		value, err := report.ParseRating(row.Value)
		if err != nil {
			skipped = append(skipped, row.CategoryKey)
			continue
		}
		merged[row.CategoryKey] = value
		settled = append(settled, row.CategoryKey)
	}

	var deleteKeys []string
	if deleteOldData {
		deleteKeys = settled
	}

	if err := s.repo.ApplyMigration(dbCtx, postID, merged, deleteKeys); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return skipped, nil
}
