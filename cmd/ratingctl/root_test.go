package main

import (
	"bytes"
	"context"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	pb "github.com/godilite/rating-report/api/v1"
	handlers "github.com/godilite/rating-report/internal/grpc"
	"github.com/godilite/rating-report/internal/grpc/mocks"
	"github.com/godilite/rating-report/internal/report"
	"github.com/godilite/rating-report/internal/service"
)

// bufDialer serves handlers over an in-memory listener and records the
// address each command dialed.
func bufDialer(t *testing.T, reports *mocks.MockReportService, migrations *mocks.MockMigrationService, dialed *string) dialFunc {
	t.Helper()
	if reports == nil {
		reports = &mocks.MockReportService{}
	}
	if migrations == nil {
		migrations = &mocks.MockMigrationService{}
	}

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	pb.RegisterRatingReportServer(srv, handlers.NewGRPCHandlers(reports, migrations, nil, nil, time.Minute))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	return func(addr string) (*pb.Client, func() error, error) {
		if dialed != nil {
			*dialed = addr
		}
		conn, err := grpc.NewClient("passthrough:///bufnet",
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
			grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, nil, err
		}
		return pb.NewClient(conn), conn.Close, nil
	}
}

func execute(t *testing.T, dial dialFunc, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmdWithDialer(dial)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {
	var gotLayout string
	reports := &mocks.MockReportService{
		RenderFunc: func(_ context.Context, postID int64, layout string) (string, error) {
			gotLayout = layout
			return "<table>post " + strconv.FormatInt(postID, 10) + "</table>", nil
		},
	}
	var dialed string

	out, err := execute(t, bufDialer(t, reports, nil, &dialed), "render", "12", "--layout", "graph", "--addr", "ratings:9000")

	require.NoError(t, err)
	assert.Equal(t, "<table>post 12</table>\n", out)
	assert.Equal(t, "graph", gotLayout)
	assert.Equal(t, "ratings:9000", dialed)
}

func TestRenderCommand_InvalidPostID(t *testing.T) {
	_, err := execute(t, bufDialer(t, nil, nil, nil), "render", "abc")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "positive integer")
}

func TestAddrFromEnv(t *testing.T) {
	t.Setenv("RATINGCTL_ADDR", "from-env:1234")
	reports := &mocks.MockReportService{
		RenderFunc: func(context.Context, int64, string) (string, error) { return "ok", nil },
	}
	var dialed string

	_, err := execute(t, bufDialer(t, reports, nil, &dialed), "render", "1")

	require.NoError(t, err)
	assert.Equal(t, "from-env:1234", dialed)
}

func TestAggregateCommand(t *testing.T) {
	reports := &mocks.MockReportService{
		AggregateFunc: func(_ context.Context, postID int64) (service.ReportSummary, error) {
			return service.ReportSummary{
				PostID: postID,
				Records: []service.SummaryRecord{
					{Key: "plot", Category: "Plot", Rating: 4, Formatted: "4", Description: "Twisty"},
					{Key: "cover", Category: "Cover", Rating: 5, Formatted: "5"},
				},
				Average:          4.5,
				FormattedAverage: "4.5",
			}, nil
		},
	}

	out, err := execute(t, bufDialer(t, reports, nil, nil), "aggregate", "3")

	require.NoError(t, err)
	assert.Contains(t, out, "Post 3")
	assert.Contains(t, out, "Plot")
	assert.Contains(t, out, "Twisty")
	assert.Contains(t, out, "4.5")
	assert.Less(t, strings.Index(out, "Plot"), strings.Index(out, "Cover"))
}

func TestAggregateCommand_NotFound(t *testing.T) {
	reports := &mocks.MockReportService{
		AggregateFunc: func(context.Context, int64) (service.ReportSummary, error) {
			return service.ReportSummary{}, report.ErrNoRatingsAvailable
		},
	}

	_, err := execute(t, bufDialer(t, reports, nil, nil), "aggregate", "3")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no ratings available")
}

func TestMigrateCommand(t *testing.T) {
	var deleteFlags []bool
	migrations := &mocks.MockMigrationService{
		ProcessStepFunc: func(_ context.Context, step int, del bool) (service.MigrationStep, error) {
			deleteFlags = append(deleteFlags, del)
			switch step {
			case 0:
				return service.MigrationStep{Step: "1", Percentage: 50, Message: "Post 4: skipped non-numeric ratings for cover."}, nil
			case 1:
				return service.MigrationStep{Step: "2", Percentage: 100}, nil
			default:
				return service.MigrationStep{Step: service.StepDone, Percentage: 100, Message: "Migration complete. 2 posts processed."}, nil
			}
		},
	}

	out, err := execute(t, bufDialer(t, nil, migrations, nil), "migrate", "--delete-old-data", "--retry-delay", "1ms")

	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true}, deleteFlags)
	assert.Contains(t, out, "Post 4: skipped non-numeric ratings for cover.")
	assert.Contains(t, out, " 50%")
	assert.Contains(t, out, "Migration complete. 2 posts processed.")
}

func TestMigrateCommand_Failure(t *testing.T) {
	migrations := &mocks.MockMigrationService{
		ProcessStepFunc: func(context.Context, int, bool) (service.MigrationStep, error) {
			return service.MigrationStep{}, service.ErrStorageFailure
		},
	}

	_, err := execute(t, bufDialer(t, nil, migrations, nil), "migrate", "--retries", "1", "--retry-delay", "1ms")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration failed after 0 steps")
}

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		pct    int
		filled int
		label  string
	}{
		{0, 0, "  0%"},
		{1, 1, "  1%"},
		{50, 15, " 50%"},
		{100, 30, "100%"},
		{140, 30, "100%"},
	}
	for _, tt := range tests {
		bar := renderProgressBar(tt.pct)
		assert.Equal(t, tt.filled, strings.Count(bar, "█"), tt.pct)
		assert.Equal(t, barWidth-tt.filled, strings.Count(bar, "░"), tt.pct)
		assert.True(t, strings.HasSuffix(bar, tt.label), tt.pct)
	}
}
