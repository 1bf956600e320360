package app

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	pb "github.com/godilite/rating-report/api/v1"
	"github.com/godilite/rating-report/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:             "test",
		DBPath:             ":memory:",
		DBDriver:           "sqlite3",
		CacheEnabled:       false,
		CacheTTL:           time.Minute,
		GRPCPort:           0,
		HTTPPort:           0,
		MigrationBatchSize: 20,
	}
}

func TestNewApp(t *testing.T) {
	t.Run("serves grpc without a cache", func(t *testing.T) {
		a, err := NewApp(context.Background(), testConfig(), zaptest.NewLogger(t))
		require.NoError(t, err)
		a.Start()

		port := a.grpcServer.Addr().(*net.TCPAddr).Port
		conn, err := grpc.NewClient(fmt.Sprintf("localhost:%d", port), grpc.WithTransportCredentials(insecure.NewCredentials()))
		require.NoError(t, err)
		defer conn.Close()
		client := pb.NewClient(conn)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		resp, err := client.RenderReport(ctx, pb.RenderReportRequest{PostID: 1}, grpc.WaitForReady(true))
		require.NoError(t, err)
		assert.Contains(t, resp.HTML, "No ratings yet.")

		_, err = client.GetAggregate(ctx, pb.GetAggregateRequest{PostID: 1})
		assert.Equal(t, codes.NotFound, status.Code(err))

		step, err := client.MigrateStep(ctx, pb.MigrateStepRequest{Step: 0})
		require.NoError(t, err)
		assert.Equal(t, "done", step.Step)
		assert.Equal(t, 100, step.Percentage)

		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		assert.NoError(t, a.Shutdown(shutdownCtx))
	})

	t.Run("unreachable redis fails startup", func(t *testing.T) {
		cfg := testConfig()
		cfg.CacheEnabled = true
		cfg.RedisAddr = "127.0.0.1:1"

		_, err := NewApp(context.Background(), cfg, zaptest.NewLogger(t))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "cache init failed")
	})

}
