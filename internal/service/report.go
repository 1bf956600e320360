package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/godilite/rating-report/internal/metrics"
	"github.com/godilite/rating-report/internal/report"
)

const (
	dbTimeout = 1 * time.Second
)

var (
	ErrStorageFailure  = errors.New("storage failure")
	ErrInvalidSettings = errors.New("invalid settings")
)

// ReportService loads a post's ratings and the plugin settings and turns them
// into report markup or a summary.
type ReportService struct {
	meta     RatingMetaRepository
	settings SettingsRepository
	renderer *report.Renderer
	hooks    *report.Hooks
	logger   *zap.Logger
}

// ReportOption configures a ReportService.
type ReportOption func(*ReportService)

// WithHooks installs transform chains applied during every render.
func WithHooks(h *report.Hooks) ReportOption {
	return func(s *ReportService) {
		s.hooks = h
	}
}

// NewReportService creates a new ReportService instance.
func NewReportService(meta RatingMetaRepository, settings SettingsRepository, logger *zap.Logger, opts ...ReportOption) *ReportService {
	if meta == nil {
		panic("meta repository must not be nil")
	}
	if settings == nil {
		panic("settings repository must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	s := &ReportService{
		meta:     meta,
		settings: settings,
		renderer: report.NewRenderer(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ReportService) loadSettings(ctx context.Context) (Settings, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	opts, err := s.settings.GetOptions(dbCtx)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return ResolveSettings(opts)
}

func (s *ReportService) loadRatings(ctx context.Context, postID int64) (report.RawRatings, map[string]string, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	raw, err := s.meta.GetRatings(dbCtx, postID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	descriptions, err := s.meta.GetDescriptions(dbCtx, postID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return raw, descriptions, nil
}

func (s *ReportService) aggregate(ctx context.Context, postID int64, settings Settings) (report.AggregateResult, error) {
	raw, descriptions, err := s.loadRatings(ctx, postID)
	if err != nil {
		return report.AggregateResult{}, err
	}
	return report.Aggregate(raw, descriptions, settings.Categories,
		report.WithMaximumRating(settings.Display.MaximumRating),
		report.WithHooks(s.hooks),
		report.WithPostID(postID),
	)
}

// Render returns the report markup of a post. An empty layout means the
// configured one. A post without ratings renders the no-ratings text.
func (s *ReportService) Render(ctx context.Context, postID int64, layout string) (string, error) {
	start := time.Now()

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return "", err
	}

	lay := settings.Layout
	if layout != "" {
		if lay, err = report.ParseLayout(layout); err != nil {
			return "", err
		}
	}
	hc := report.HookContext{PostID: postID, DisplayType: settings.Display.RatingType}
	lay = s.hooks.ApplyLayout(lay, hc)
	hc.Layout = lay

	result, err := s.aggregate(ctx, postID, settings)
	if errors.Is(err, report.ErrNoRatingsAvailable) {
		html, err := s.renderer.RenderEmpty(settings.Labels)
		if err != nil {
			return "", err
		}
		metrics.RendersTotal.WithLabelValues(string(lay), "empty").Inc()
		return s.hooks.ApplyRender(html, hc), nil
	}
	if err != nil {
		metrics.RendersTotal.WithLabelValues(string(lay), "error").Inc()
		return "", err
	}

	input, err := report.Card{
		Config:  settings.Display,
		Layout:  lay,
		Options: settings.Labels,
		Hooks:   s.hooks,
		PostID:  postID,
	}.Build(result)
	if err != nil {
		metrics.RendersTotal.WithLabelValues(string(lay), "error").Inc()
		return "", err
	}

	html, err := s.renderer.Render(input)
	if err != nil {
		metrics.RendersTotal.WithLabelValues(string(lay), "error").Inc()
		return "", err
	}
	html = s.hooks.ApplyRender(html, hc)

	metrics.RendersTotal.WithLabelValues(string(lay), "ok").Inc()
	metrics.RenderDurationSeconds.WithLabelValues(string(lay)).Observe(time.Since(start).Seconds())

	s.logger.Debug("rendered rating report",
		zap.Int64("post_id", postID),
		zap.String("layout", string(lay)),
		zap.Int("records", len(result.Records)),
		zap.Duration("duration", time.Since(start)))

	return html, nil
}

// Aggregate returns the records of a post with their formatted ratings and
// the overall average.
func (s *ReportService) Aggregate(ctx context.Context, postID int64) (ReportSummary, error) {
	settings, err := s.loadSettings(ctx)
	if err != nil {
		return ReportSummary{}, err
	}

	result, err := s.aggregate(ctx, postID, settings)
	if err != nil {
		return ReportSummary{}, err
	}

	input, err := report.Card{
		Config:  settings.Display,
		Layout:  settings.Layout,
		Options: settings.Labels,
		Hooks:   s.hooks,
		PostID:  postID,
	}.Build(result)
	if err != nil {
		return ReportSummary{}, err
	}

	summary := ReportSummary{
		PostID:           postID,
		Records:          make([]SummaryRecord, 0, len(input.Ratings)),
		Average:          input.Average,
		FormattedAverage: input.FormattedAverage,
	}
	for _, r := range input.Ratings {
		summary.Records = append(summary.Records, SummaryRecord{
			Key:         r.Category.Key,
			Category:    r.Category.Name,
			Rating:      r.Rating,
			Description: r.Description,
			Formatted:   r.Formatted,
		})
	}

	s.logger.Info("aggregated ratings",
		zap.Int64("post_id", postID),
		zap.Int("records", len(summary.Records)),
		zap.Float64("average", summary.Average))

	return summary, nil
}

// Stylesheet returns the CSS generated from the bar colour settings. It is
// empty when styles are disabled.
func (s *ReportService) Stylesheet(ctx context.Context) (string, error) {
	settings, err := s.loadSettings(ctx)
	if err != nil {
		return "", err
	}
	return report.GenerateCSS(settings.Style), nil
}
