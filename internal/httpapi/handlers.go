package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/godilite/rating-report/internal/report"
	"github.com/godilite/rating-report/internal/service"
)

const (
	requestTimeout     = 10 * time.Second
	migrateStepTimeout = 2 * time.Minute
)

type Handlers struct {
	reports     ReportService
	migrations  MigrationService
	invalidator CacheInvalidator
	logger      *zap.Logger
}

// NewHandlers builds the HTTP handlers. invalidator may be nil.
func NewHandlers(reports ReportService, migrations MigrationService, invalidator CacheInvalidator, logger *zap.Logger) *Handlers {
	if reports == nil {
		panic("nil ReportService provided to NewHandlers")
	}
	if migrations == nil {
		panic("nil MigrationService provided to NewHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		reports:     reports,
		migrations:  migrations,
		invalidator: invalidator,
		logger:      logger.Named("http-handler"),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type migrateRequest struct {
	Step          int  `form:"step" json:"step"`
	DeleteOldData bool `form:"delete_old_data" json:"delete_old_data"`
}

type migrateResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "rating-report",
	})
}

func parsePostID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "post id must be a positive integer"})
		return 0, false
	}
	return id, true
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(ctx context.Context, err error) (int, string) {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return http.StatusGatewayTimeout, "request timed out"
	case context.Canceled:
		return 499, "request canceled"
	}

	switch {
	case errors.Is(err, report.ErrNoRatingsAvailable):
		return http.StatusNotFound, "no ratings available for the post"
	case errors.Is(err, report.ErrUnsupportedLayout), errors.Is(err, service.ErrInvalidStep):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, report.ErrUnsupportedDisplayType),
		errors.Is(err, report.ErrInvalidRatingValue),
		errors.Is(err, service.ErrInvalidSettings):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, service.ErrStorageFailure):
		return http.StatusInternalServerError, "database error"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (h *Handlers) fail(ctx context.Context, c *gin.Context, op string, err error) {
	code, msg := statusFor(ctx, err)
	if code >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("op", op), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(code, errorResponse{Error: msg})
}

// RenderReport serves the report fragment for a post as HTML.
func (h *Handlers) RenderReport(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	html, err := h.reports.Render(ctx, postID, c.Query("layout"))
	if err != nil {
		h.fail(ctx, c, "RenderReport", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (h *Handlers) GetAggregate(c *gin.Context) {
	postID, ok := parsePostID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	summary, err := h.reports.Aggregate(ctx, postID)
	if err != nil {
		h.fail(ctx, c, "GetAggregate", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handlers) Stylesheet(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	css, err := h.reports.Stylesheet(ctx)
	if err != nil {
		h.fail(ctx, c, "Stylesheet", err)
		return
	}
	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, "text/css; charset=utf-8", []byte(css))
}

// MigrateStep runs one migration batch. Both failures and successes use the
// {"success": bool, "data": {...}} envelope expected by the admin page.
func (h *Handlers) MigrateStep(c *gin.Context) {
	var req migrateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, migrateResponse{
			Success: false,
			Data:    gin.H{"message": "malformed migration request: " + err.Error()},
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), migrateStepTimeout)
	defer cancel()

	res, err := h.migrations.ProcessStep(ctx, req.Step, req.DeleteOldData)
	if err != nil {
		code, msg := statusFor(ctx, err)
		if code >= http.StatusInternalServerError {
			h.logger.Error("migration step failed", zap.Int("step", req.Step), zap.Error(err))
		}
		_ = c.Error(err)
		c.JSON(code, migrateResponse{Success: false, Data: gin.H{"message": msg}})
		return
	}
	if res.Step != service.StepDone && h.invalidator != nil {
		h.invalidator.InvalidateReports(ctx)
	}

	c.JSON(http.StatusOK, migrateResponse{Success: true, Data: res})
}
