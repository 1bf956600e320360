package mocks

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/godilite/rating-report/internal/service"
)

// MockReportService is a mock implementation of the ReportService interface
// for testing the handler layer.
type MockReportService struct {
	RenderFunc    func(ctx context.Context, postID int64, layout string) (string, error)
	AggregateFunc func(ctx context.Context, postID int64) (service.ReportSummary, error)

	RenderCalls atomic.Int64
}

func (m *MockReportService) Render(ctx context.Context, postID int64, layout string) (string, error) {
	m.RenderCalls.Add(1)
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

// MockMigrationService is a mock implementation of the MigrationService interface.
type MockMigrationService struct {
	ProcessStepFunc func(ctx context.Context, step int, deleteOldData bool) (service.MigrationStep, error)
}

func (m *MockMigrationService) ProcessStep(ctx context.Context, step int, deleteOldData bool) (service.MigrationStep, error) {
	if m.ProcessStepFunc != nil {
		return m.ProcessStepFunc(ctx, step, deleteOldData)
	}
	return service.MigrationStep{}, errors.New("ProcessStepFunc not implemented")
}
