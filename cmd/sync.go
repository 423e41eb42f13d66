package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tradewatch/internal/bootstrap"
	"tradewatch/internal/bootstrap/logging"
	"tradewatch/internal/domain/disclosure"
	"tradewatch/internal/errs"
	"tradewatch/internal/metrics"
	"tradewatch/internal/usecase/alerts"
	syncuc "tradewatch/internal/usecase/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync trade disclosures from the configured provider",
}

var syncRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a sync for one source type, or all of them sequentially",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, syncSvc *syncuc.Service, _ *alerts.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		sources, err := resolveSources(cmd)
		if err != nil {
			return err
		}

		pageSize, _ := cmd.Flags().GetInt("page-size")
		maxPages, _ := cmd.Flags().GetInt("max-pages")
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		forceUpdate, _ := cmd.Flags().GetBool("force-update")
		noCheckpoints, _ := cmd.Flags().GetBool("no-checkpoints")
		quiet, _ := cmd.Flags().GetBool("quiet")

		if addr := app.Config.Metrics.Listen; addr != "" {
			go func() {
				if err := metrics.Serve(ctx, addr); err != nil {
					logging.Warn(ctx, "metrics listener stopped", slog.Any("err", errs.Loggable(err)))
				}
			}()
		}

		opts := syncuc.Options{
			PageSize:       pageSize,
			MaxPages:       maxPages,
			BatchSize:      batchSize,
			ForceUpdate:    forceUpdate,
			UseCheckpoints: !noCheckpoints,
		}
		if !quiet {
			opts.OnProgress = func(p syncuc.ProgressUpdate) {
				fmt.Fprintf(cmd.OutOrStdout(), "\r%s: %d/%d", p.SourceLabel, p.Current, p.Total)
			}
		}

		// Source types run sequentially on purpose; each owns its checkpoint
		// row and the sync service does not tolerate concurrent runs of the
		// same source.
		for _, source := range sources {
			result, err := syncSvc.Run(ctx, source, opts)
			if !quiet {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			if err != nil {
				logging.Error(ctx, "sync run failed",
					slog.String("source", string(source)),
					slog.Any("err", errs.Loggable(err)),
				)
				return errs.Wrapf(err, "sync %s", source)
			}

			if _, err := fmt.Fprintf(
				cmd.OutOrStdout(),
				"%s: processed=%s created=%s updated=%s skipped=%s errors=%d in %s\n",
				source.Label(),
				humanize.Comma(int64(result.Processed)),
				humanize.Comma(int64(result.Created)),
				humanize.Comma(int64(result.Updated)),
				humanize.Comma(int64(result.Skipped)),
				len(result.Errors),
				result.Duration.Round(time.Millisecond),
			); err != nil {
				return errs.Wrap(err, "write sync summary")
			}
			for _, recordErr := range result.Errors {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "  record %d: %s\n", recordErr.Index, recordErr.Message); err != nil {
					return errs.Wrap(err, "write sync record error")
				}
			}
		}
		return nil
	}),
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show checkpoint status for every source type",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, syncSvc *syncuc.Service, _ *alerts.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		rows, err := syncSvc.Status(ctx)
		if err != nil {
			logging.Error(ctx, "load sync status failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "load sync status")
		}
		if len(rows) == 0 {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "no sync runs recorded"); err != nil {
				return errs.Wrap(err, "write status output")
			}
			return nil
		}

		for _, row := range rows {
			completed := "-"
			if row.CompletedAt != nil {
				completed = humanize.Time(*row.CompletedAt)
			}
			if _, err := fmt.Fprintf(
				cmd.OutOrStdout(),
				"%-10s %-12s index=%d/%d created=%d updated=%d skipped=%d errors=%d completed=%s\n",
				row.SourceType,
				row.Status,
				row.LastProcessedIndex,
				row.TotalRecords,
				row.CreatedCount,
				row.UpdatedCount,
				row.SkippedCount,
				row.ErrorCount,
				completed,
			); err != nil {
				return errs.Wrap(err, "write status row")
			}
		}
		return nil
	}),
}

var syncResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the checkpoint so the next run starts from record zero",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, syncSvc *syncuc.Service, _ *alerts.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		sources, err := resolveSources(cmd)
		if err != nil {
			return err
		}
		for _, source := range sources {
			if err := syncSvc.Reset(ctx, source); err != nil {
				logging.Error(ctx, "reset checkpoint failed",
					slog.String("source", string(source)),
					slog.Any("err", errs.Loggable(err)),
				)
				return errs.Wrapf(err, "reset %s", source)
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "checkpoint cleared: %s\n", source); err != nil {
				return errs.Wrap(err, "write reset output")
			}
		}
		return nil
	}),
}

func resolveSources(cmd *cobra.Command) ([]disclosure.SourceType, error) {
	raw, _ := cmd.Flags().GetString("source")
	if raw == "all" {
		return disclosure.AllSourceTypes(), nil
	}
	source, err := disclosure.ParseSourceType(raw)
	if err != nil {
		return nil, err
	}
	return []disclosure.SourceType{source}, nil
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(syncRunCmd)
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncResetCmd)

	syncRunCmd.Flags().String("source", "all", "Source type to sync (senate|house|insiders|all)")
	syncRunCmd.Flags().Int("page-size", 0, "Records per provider page (0 = config default)")
	syncRunCmd.Flags().Int("max-pages", 0, "Page cap per run (0 = config default)")
	syncRunCmd.Flags().Int("batch-size", 0, "Records between checkpoint flushes (0 = config default)")
	syncRunCmd.Flags().Bool("force-update", false, "Refresh enrichment fields of already-known trades")
	syncRunCmd.Flags().Bool("no-checkpoints", false, "Ignore and skip checkpointing, always start from record zero")
	syncRunCmd.Flags().Bool("quiet", false, "Suppress per-record progress output")

	syncResetCmd.Flags().String("source", "all", "Source type to reset (senate|house|insiders|all)")
}
