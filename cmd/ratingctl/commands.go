package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	pb "github.com/godilite/rating-report/api/v1"
	"github.com/godilite/rating-report/internal/migrator"
)

func parsePostID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("post id must be a positive integer, got %q", arg)
	}
	return id, nil
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate legacy per-category ratings into the current format",
		Long: `Migrate requests batches from the server, starting at step 0, until the
server reports the migration as done. Failed batches are retried.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, closeConn, err := opts.dial(opts.v.GetString("addr"))
			if err != nil {
				return err
			}
			defer func() { _ = closeConn() }()

			out := cmd.OutOrStdout()
			res, err := migrator.Run(cmd.Context(), migrator.NewGRPCStepper(client),
				migrator.WithDeleteOldData(opts.v.GetBool("delete-old-data")),
				migrator.WithRetries(opts.v.GetInt("retries"), opts.v.GetDuration("retry-delay")),
				migrator.WithProgress(func(p migrator.Progress) {
					if p.Message != "" && !p.Done() {
						fmt.Fprintln(out, messageStyle.Render(p.Message))
					}
					fmt.Fprintln(out, renderProgressBar(p.Percentage))
				}),
			)
			if err != nil {
				return fmt.Errorf("migration failed after %d steps: %w", res.Steps, err)
			}

			fmt.Fprintln(out, doneStyle.Render(res.Final.Message))
			return nil
		},
	}

	cmd.Flags().Bool("delete-old-data", false, "Delete legacy rows once a post is migrated")
	cmd.Flags().Int("retries", 3, "Retries per failed step")
	cmd.Flags().Duration("retry-delay", time.Second, "Base delay between retries, multiplied by the attempt number")
	_ = opts.v.BindPFlag("delete-old-data", cmd.Flags().Lookup("delete-old-data"))
	_ = opts.v.BindPFlag("retries", cmd.Flags().Lookup("retries"))
	_ = opts.v.BindPFlag("retry-delay", cmd.Flags().Lookup("retry-delay"))
	return cmd
}

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var layout string
	cmd := &cobra.Command{
		Use:   "render <post-id>",
		Short: "Print the rating report markup of a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := parsePostID(args[0])
			if err != nil {
				return err
			}
			client, ctx, done, err := opts.client(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			resp, err := client.RenderReport(ctx, pb.RenderReportRequest{PostID: postID, Layout: layout})
			if err != nil {
				return fmt.Errorf("render post %d: %w", postID, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.HTML)
			return nil
		},
	}
	cmd.Flags().StringVar(&layout, "layout", "", "Layout override: table, graph or vertical-graph")
	return cmd
}

func newAggregateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "aggregate <post-id>",
		Short: "Print the aggregated ratings of a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := parsePostID(args[0])
			if err != nil {
				return err
			}
			client, ctx, done, err := opts.client(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			resp, err := client.GetAggregate(ctx, pb.GetAggregateRequest{PostID: postID})
			if err != nil {
				return fmt.Errorf("aggregate post %d: %w", postID, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Post %d", resp.PostID)))
			for _, r := range resp.Records {
				line := fmt.Sprintf("  %-20s %s", r.Category, r.Formatted)
				if r.Description != "" {
					line += " " + dimStyle.Render(r.Description)
				}
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "  %-20s %s\n", "Overall", resp.FormattedAverage)
			return nil
		},
	}
}
