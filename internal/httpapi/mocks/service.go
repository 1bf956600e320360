package mocks

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/godilite/rating-report/internal/service"
)

type MockReportService struct {
	RenderFunc     func(ctx context.Context, postID int64, layout string) (string, error)
	AggregateFunc  func(ctx context.Context, postID int64) (service.ReportSummary, error)
	StylesheetFunc func(ctx context.Context) (string, error)
}

func (m *MockReportService) Render(ctx context.Context, postID int64, layout string) (string, error) {
	if m.RenderFunc != nil {
		return m.RenderFunc(ctx, postID, layout)
	}
	return "", errors.New("RenderFunc not implemented")
}

func (m *MockReportService) Aggregate(ctx context.Context, postID int64) (service.ReportSummary, error) {
	if m.AggregateFunc != nil {
		return m.AggregateFunc(ctx, postID)
	}
	return service.ReportSummary{}, errors.New("AggregateFunc not implemented")
}

func (m *MockReportService) Stylesheet(ctx context.Context) (string, error) {
	if m.StylesheetFunc != nil {
		return m.StylesheetFunc(ctx)
	}
	return "", errors.New("StylesheetFunc not implemented")
}

type MockMigrationService struct {
	ProcessStepFunc func(ctx context.Context, step int, deleteOldData bool) (service.MigrationStep, error)
}

func (m *MockMigrationService) ProcessStep(ctx context.Context, step int, deleteOldData bool) (service.MigrationStep, error) {
	if m.ProcessStepFunc != nil {
		return m.ProcessStepFunc(ctx, step, deleteOldData)
	}
	return service.MigrationStep{}, errors.New("ProcessStepFunc not implemented")
}

// RecordingInvalidator counts InvalidateReports calls.
type RecordingInvalidator struct {
	Calls atomic.Int64
}

func (r *RecordingInvalidator) InvalidateReports(context.Context) {
	r.Calls.Add(1)
}
