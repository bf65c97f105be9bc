package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/cloo-solutions/plantrec/internal/service"
	"github.com/cloo-solutions/plantrec/internal/storage"
)

func RequestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Inspect and export the recommendation request log",
	}
	cmd.AddCommand(requestsExportCmd())
	cmd.AddCommand(requestsShowCmd())
	return cmd
}

func requestsExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export logged requests to S3 as JSON Lines",
		Long: `Export logged requests created since a point in time to the configured
S3 bucket. --since accepts a duration such as 24h or an RFC 3339 timestamp.`,
		RunE: runRequestsExport,
	}
	cmd.Flags().String("since", "24h", "Start of the export window (duration or RFC 3339)")
	cmd.Flags().Bool("link", false, "Print a presigned download link")
	return cmd
}

func runRequestsExport(cmd *cobra.Command, args []string) error {
	raw, _ := cmd.Flags().GetString("since")
	since, err := parseSince(raw, time.Now())
	if err != nil {
		return err
	}

	ctx := context.Background()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg := rt.cfg
	if !cfg.HasS3() {
		return fmt.Errorf("S3 is not configured: set PLANTREC_S3_ENDPOINT, PLANTREC_S3_ACCESS_KEY_ID and PLANTREC_S3_SECRET_ACCESS_KEY")
	}
	store, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
		UsePathStyle:    true,
	})
	if err != nil {
		return fmt.Errorf("failed to create S3 client: %w", err)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return err
	}

	res, err := service.NewRequestExporter(rt.requests, store).Export(ctx, since)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "exported %d requests to s3://%s/%s\n", res.Count, store.Bucket(), res.Key)
	if link, _ := cmd.Flags().GetBool("link"); link {
		url, err := store.DownloadURL(ctx, res.Key)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, url)
	}
	return nil
}

func requestsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one logged request as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			req, err := rt.requests.Get(ctx, args[0])
			if err != nil {
				return err
			}

			b, err := json.MarshalIndent(service.NewRequestRecord(req), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
}

// parseSince accepts a Go duration measured back from now, or an RFC 3339
// timestamp.
func parseSince(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("--since is required")
	}
	if d, err := time.ParseDuration(raw); err == nil {
		if d < 0 {
			return time.Time{}, fmt.Errorf("--since duration must be positive")
		}
		return now.Add(-d), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: want a duration like 24h or an RFC 3339 time", raw)
	}
	return t, nil
}
