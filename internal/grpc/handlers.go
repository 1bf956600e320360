package grpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	pb "github.com/godilite/rating-report/api/v1"
	"github.com/godilite/rating-report/internal/report"
	"github.com/godilite/rating-report/internal/service"
)

const (
	defaultCacheDuration = 10 * time.Minute
	defaultGRPCTimeout   = 10 * time.Second
	migrateStepTimeout   = 2 * time.Minute
)

type CacheKeyType string

const (
	cacheKeyReport    CacheKeyType = "grpc:report"
	cacheKeyAggregate CacheKeyType = "grpc:aggregate"
)

type GRPCHandlers struct {
	pb.UnimplementedRatingReportServer
	reports    ReportService
	migrations MigrationService
	cache      Cacher
	logger     *zap.Logger
	sfGroup    singleflight.Group
	cacheTTL   time.Duration
}

// NewGRPCHandlers initializes the gRPC handlers. cache may be nil to serve
// every request from storage.
func NewGRPCHandlers(reports ReportService, migrations MigrationService, cache Cacher, logger *zap.Logger, ttl time.Duration) *GRPCHandlers {
	if reports == nil {
		panic("nil ReportService provided to NewGRPCHandlers")
	}
	if migrations == nil {
		panic("nil MigrationService provided to NewGRPCHandlers")
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCHandlers{
		reports:    reports,
		migrations: migrations,
		cache:      cache,
		logger:     logger.Named("grpc-handler"),
		cacheTTL:   ttl,
	}
}

func decodeRequest(in *structpb.Struct, dest any) error {
	if err := pb.Decode(in, dest); err != nil {
		return status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
	}
	return nil
}

func encodeResponse(v any) (*structpb.Struct, error) {
	out, err := pb.Encode(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func validatePostID(id int64) error {
	if id <= 0 {
		return status.Error(codes.InvalidArgument, "post_id must be a positive integer")
	}
	return nil
}

func reportKey(postID int64, layout string) string {
	if layout == "" {
		layout = "default"
	}
	return fmt.Sprintf("%s:%d:%s", cacheKeyReport, postID, layout)
}

func aggregateKey(postID int64) string {
	return fmt.Sprintf("%s:%d", cacheKeyAggregate, postID)
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, report.ErrNoRatingsAvailable):
		s.logger.Info("no ratings found", zap.String("op", op))
		return status.Error(codes.NotFound, "no ratings available for the post")
	case errors.Is(err, report.ErrUnsupportedLayout):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrInvalidStep):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, report.ErrUnsupportedDisplayType),
		errors.Is(err, report.ErrInvalidRatingValue),
		errors.Is(err, service.ErrInvalidSettings):
		s.logger.Warn("unusable stored data", zap.String("op", op), zap.Error(err))
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *GRPCHandlers) RenderReport(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req pb.RenderReportRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}
	if err := validatePostID(req.PostID); err != nil {
		return nil, err
	}
	if req.Layout != "" {
		if _, err := report.ParseLayout(req.Layout); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	entry := cacheEntry{key: reportKey(req.PostID, req.Layout), endpoint: "render", ttl: s.cacheTTL}
	html, err := FindAndCache(ctx, s.cache, &s.sfGroup, entry, s.logger, func(fetchCtx context.Context) (string, error) {
		return s.reports.Render(fetchCtx, req.PostID, req.Layout)
	})
	if err != nil {
		return nil, s.handleError(ctx, "RenderReport", err)
	}

	return encodeResponse(pb.RenderReportResponse{HTML: html})
}

func (s *GRPCHandlers) GetAggregate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req pb.GetAggregateRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}
	if err := validatePostID(req.PostID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	entry := cacheEntry{key: aggregateKey(req.PostID), endpoint: "aggregate", ttl: s.cacheTTL}
	summary, err := FindAndCache(ctx, s.cache, &s.sfGroup, entry, s.logger, func(fetchCtx context.Context) (service.ReportSummary, error) {
		return s.reports.Aggregate(fetchCtx, req.PostID)
	})
	if err != nil {
		return nil, s.handleError(ctx, "GetAggregate", err)
	}

	return encodeResponse(mapToProtoAggregate(summary))
}

// InvalidateReports drops every cached report and aggregate after a
// migration batch rewrote stored ratings.
func (s *GRPCHandlers) InvalidateReports(ctx context.Context) {
	inv, ok := s.cache.(Invalidator)
	if !ok {
		return
	}
	for _, prefix := range []CacheKeyType{cacheKeyReport, cacheKeyAggregate} {
		if _, err := inv.DeleteMatching(ctx, string(prefix)+":*"); err != nil {
			s.logger.Warn("failed to invalidate cached reports", zap.String("prefix", string(prefix)), zap.Error(err))
		}
	}
}

func mapToProtoAggregate(summary service.ReportSummary) pb.GetAggregateResponse {
	records := make([]pb.AggregateRecord, len(summary.Records))
	for i, r := range summary.Records {
		records[i] = pb.AggregateRecord{
			Key:         r.Key,
			Category:    r.Category,
			Rating:      r.Rating,
			Description: r.Description,
			Formatted:   r.Formatted,
		}
	}
	return pb.GetAggregateResponse{
		PostID:           summary.PostID,
		Records:          records,
		Average:          summary.Average,
		FormattedAverage: summary.FormattedAverage,
	}
}

// MigrateStep is never cached: every call writes.
func (s *GRPCHandlers) MigrateStep(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req pb.MigrateStepRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, migrateStepTimeout)
	defer cancel()

	res, err := s.migrations.ProcessStep(ctx, req.Step, req.DeleteOldData)
	if err != nil {
		return nil, s.handleError(ctx, "MigrateStep", err)
	}
	if res.Step != service.StepDone {
		s.InvalidateReports(ctx)
	}

	return encodeResponse(pb.MigrateStepResponse{
		Step:       res.Step,
		Percentage: res.Percentage,
		Message:    res.Message,
	})
}
