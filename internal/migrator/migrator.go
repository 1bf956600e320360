// Package migrator drives a legacy ratings migration to completion by
// requesting batches until the server reports "done".
package migrator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/godilite/rating-report/api/v1"
)

const stepDone = "done"

var ErrUnexpectedStep = errors.New("unexpected step in migration response")

// Stepper runs one migration batch.
type Stepper interface {
	MigrateStep(ctx context.Context, step int, deleteOldData bool) (Progress, error)
}

// Progress is one batch response.
type Progress struct {
	Step       string
	Percentage int
	Message    string
}

func (p Progress) Done() bool {
	return p.Step == stepDone
}

// Result summarises a finished run.
type Result struct {
	Steps    int
	Retries  int
	Messages []string
	Final    Progress
}

type Options struct {
	DeleteOldData bool
	MaxRetries    int
	RetryDelay    time.Duration
	OnProgress    func(Progress)
	Logger        *zap.Logger
}

type Option func(*Options)

func WithDeleteOldData(del bool) Option {
	return func(o *Options) {
		o.DeleteOldData = del
	}
}

// WithRetries sets how many times a failed step is retried. The delay grows
// linearly: delay, 2*delay, 3*delay and so on.
func WithRetries(n int, delay time.Duration) Option {
	return func(o *Options) {
		o.MaxRetries = n
		o.RetryDelay = delay
	}
}

func WithProgress(fn func(Progress)) Option {
	return func(o *Options) {
		o.OnProgress = fn
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// Run starts at step 0 and follows the step numbers the server returns.
func Run(ctx context.Context, stepper Stepper, opts ...Option) (Result, error) {
	options := &Options{
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	logger := options.Logger.Named("migrator")

	var res Result
	step := 0
	for {
		progress, retries, err := runStep(ctx, stepper, step, options, logger)
		res.Retries += retries
		if err != nil {
			return res, fmt.Errorf("step %d: %w", step, err)
		}
		res.Steps++
		res.Final = progress
		if progress.Message != "" {
			res.Messages = append(res.Messages, progress.Message)
		}
		if options.OnProgress != nil {
			options.OnProgress(progress)
		}
		if progress.Done() {
			logger.Info("migration finished", zap.Int("steps", res.Steps), zap.Int("retries", res.Retries))
			return res, nil
		}

		next, err := strconv.Atoi(progress.Step)
		if err != nil {
			return res, fmt.Errorf("%w: %q", ErrUnexpectedStep, progress.Step)
		}
		step = next
	}
}

func runStep(ctx context.Context, stepper Stepper, step int, options *Options, logger *zap.Logger) (Progress, int, error) {
	var lastErr error
	for attempt := 0; attempt <= options.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * options.RetryDelay
			logger.Warn("retrying migration step",
				zap.Int("step", step),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(lastErr))

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return Progress{}, attempt - 1, ctx.Err()
			case <-timer.C:
			}
		}

		progress, err := stepper.MigrateStep(ctx, step, options.DeleteOldData)
		if err == nil {
			return progress, attempt, nil
		}
		if ctx.Err() != nil {
			return Progress{}, attempt, ctx.Err()
		}
		if !retryable(err) {
			return Progress{}, attempt, err
		}
		lastErr = err
	}
	return Progress{}, options.MaxRetries, fmt.Errorf("giving up after %d retries: %w", options.MaxRetries, lastErr)
}

// retryable reports whether a failed step may succeed when sent again.
func retryable(err error) bool {
	switch status.Code(err) {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.Unauthenticated, codes.PermissionDenied, codes.Unimplemented:
		return false
	}
	return true
}

// GRPCStepper runs steps through the RatingReport gRPC service.
type GRPCStepper struct {
	client *pb.Client
}

func NewGRPCStepper(client *pb.Client) *GRPCStepper {
	return &GRPCStepper{client: client}
}

func (s *GRPCStepper) MigrateStep(ctx context.Context, step int, deleteOldData bool) (Progress, error) {
	resp, err := s.client.MigrateStep(ctx, pb.MigrateStepRequest{Step: step, DeleteOldData: deleteOldData})
	if err != nil {
		return Progress{}, err
	}
	return Progress{Step: resp.Step, Percentage: resp.Percentage, Message: resp.Message}, nil
}
