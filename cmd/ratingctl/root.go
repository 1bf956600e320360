package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	pb "github.com/godilite/rating-report/api/v1"
)

// dialFunc opens the client used by every subcommand. Tests replace it.
type dialFunc func(addr string) (*pb.Client, func() error, error)

func dialGRPC(addr string) (*pb.Client, func() error, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return pb.NewClient(conn), conn.Close, nil
}

type rootOptions struct {
	v    *viper.Viper
	dial dialFunc
}

func newRootCmd() *cobra.Command {
	return newRootCmdWithDialer(dialGRPC)
}

func newRootCmdWithDialer(dial dialFunc) *cobra.Command {
	opts := &rootOptions{v: viper.New(), dial: dial}
	opts.v.SetEnvPrefix("RATINGCTL")
	opts.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	opts.v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "ratingctl",
		Short: "Operate a rating report server",
		Long: `ratingctl talks to a rating report server over gRPC.

It renders reports, prints aggregated ratings and drives the legacy
ratings migration to completion.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("addr", "localhost:50051", "gRPC address of the rating report server")
	cmd.PersistentFlags().Duration("timeout", 30*time.Second, "Timeout for each request")
	_ = opts.v.BindPFlag("addr", cmd.PersistentFlags().Lookup("addr"))
	_ = opts.v.BindPFlag("timeout", cmd.PersistentFlags().Lookup("timeout"))

	cmd.AddCommand(
		newMigrateCmd(opts),
		newRenderCmd(opts),
		newAggregateCmd(opts),
	)
	return cmd
}

// client dials the configured address and returns a request context.
func (o *rootOptions) client(parent context.Context) (*pb.Client, context.Context, func(), error) {
	client, closeConn, err := o.dial(o.v.GetString("addr"))
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, cancel := context.WithTimeout(parent, o.v.GetDuration("timeout"))
	return client, ctx, func() {
		cancel()
		_ = closeConn()
	}, nil
}
