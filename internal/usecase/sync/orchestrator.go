package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tradewatch/internal/bootstrap/logging"
	"tradewatch/internal/domain/disclosure"
	"tradewatch/internal/errs"
	"tradewatch/internal/metrics"
	"tradewatch/internal/ports"
)

// Run executes one sync of the given source type.
//
// State machine per source type: pending -> in_progress -> completed|failed.
// A completed checkpoint short-circuits to a no-op success with the cached
// counts until the caller resets progress. A failed run keeps the last
// flushed index so the next call resumes from there. Per-record failures are
// collected and never abort the run; only fetch/setup/checkpoint failures do.
func (s *Service) Run(ctx context.Context, source disclosure.SourceType, opts Options) (Result, error) {
	start := time.Now()
	if !source.Valid() {
		return Result{}, fmt.Errorf("%w: %q", disclosure.ErrUnknownSourceType, source)
	}
	opts = s.withDefaults(opts)

	ctx = logging.WithAttrs(ctx,
		slog.String("component", "usecase.sync"),
		slog.String("source", string(source)),
	)

	progress := ports.SyncProgress{
		SourceType: source,
		Status:     ports.SyncPending,
		StartedAt:  time.Now().UTC(),
	}
	if opts.UseCheckpoints {
		existing, err := s.checkpoints.Get(ctx, source)
		switch {
		case err == nil:
			if existing.Status == ports.SyncCompleted {
				logging.Info(ctx, "sync already completed, short-circuiting",
					slog.Int("total_records", existing.TotalRecords),
				)
				return resultFromProgress(source, existing, time.Since(start)), nil
			}
			// Resume: carry index and counts forward.
			progress = existing
		case errors.Is(err, ports.ErrCheckpointNotFound):
			// First attempt for this source type.
		default:
			return Result{}, errs.Wrap(err, "load checkpoint")
		}
	}

	records, err := s.fetchAll(ctx, source, opts)
	if err != nil {
		s.markFailed(ctx, opts, progress)
		return Result{}, errs.Wrap(err, "fetch source records")
	}

	// TotalRecords is recorded on the first run only so resume arithmetic
	// stays stable across retries.
	if progress.TotalRecords == 0 {
		progress.TotalRecords = len(records)
	}
	progress.Status = ports.SyncInProgress
	if opts.UseCheckpoints {
		if err := s.checkpoints.Upsert(ctx, progress); err != nil {
			return Result{}, errs.Wrap(err, "mark sync in progress")
		}
	}

	startIndex := 0
	if opts.UseCheckpoints {
		startIndex = progress.LastProcessedIndex
	}
	logging.Info(ctx, "sync run started",
		slog.Int("records", len(records)),
		slog.Int("start_index", startIndex),
		slog.Bool("force_update", opts.ForceUpdate),
	)

	result := Result{SourceType: source}
	sinceFlush := 0
	for i := startIndex; i < len(records); i++ {
		if err := ctx.Err(); err != nil {
			s.markFailed(ctx, opts, progress)
			return result, errs.Wrap(err, "sync cancelled")
		}

		action, recordErr := s.processRecord(ctx, source, records[i], opts.ForceUpdate)
		result.Processed++
		metrics.RecordsProcessed.WithLabelValues(string(source)).Inc()

		if recordErr != nil {
			// A single malformed record must not block the rest of the batch.
			result.Errors = append(result.Errors, RecordError{Index: i, Message: recordErr.Error()})
			progress.ErrorCount++
			metrics.RecordErrors.WithLabelValues(string(source)).Inc()
			logging.Warn(ctx, "record processing failed",
				slog.Int("index", i),
				slog.Any("err", errs.Loggable(recordErr)),
			)
		} else {
			switch action {
			case actionCreated:
				result.Created++
				progress.CreatedCount++
			case actionUpdated:
				result.Updated++
				progress.UpdatedCount++
			case actionSkipped:
				result.Skipped++
				progress.SkippedCount++
			}
			metrics.TradeOutcomes.WithLabelValues(string(source), string(action)).Inc()
		}

		progress.LastProcessedIndex = i + 1
		if opts.OnProgress != nil {
			opts.OnProgress(ProgressUpdate{
				Current:     i + 1,
				Total:       progress.TotalRecords,
				SourceLabel: source.Label(),
			})
		}

		sinceFlush++
		if opts.UseCheckpoints && sinceFlush >= opts.BatchSize {
			// Unit of resumability: a crash between flushes re-processes at
			// most BatchSize records, which the dedupe check absorbs.
			if err := s.checkpoints.Upsert(ctx, progress); err != nil {
				return result, errs.Wrap(err, "flush checkpoint")
			}
			sinceFlush = 0
		}
	}

	now := time.Now().UTC()
	progress.Status = ports.SyncCompleted
	progress.CompletedAt = &now
	// completed implies last index == total; reconcile if the source shrank
	// between the first run and a resume.
	if progress.TotalRecords != progress.LastProcessedIndex {
		progress.TotalRecords = progress.LastProcessedIndex
	}
	if opts.UseCheckpoints {
		if err := s.checkpoints.Upsert(ctx, progress); err != nil {
			return result, errs.Wrap(err, "flush final checkpoint")
		}
	}

	result.Duration = time.Since(start)
	logging.Info(ctx, "sync run completed",
		slog.Int("processed", result.Processed),
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("skipped", result.Skipped),
		slog.Int("errors", len(result.Errors)),
		slog.Duration("duration", result.Duration),
	)
	return result, nil
}

// Reset clears the checkpoint so the next run starts from scratch.
func (s *Service) Reset(ctx context.Context, source disclosure.SourceType) error {
	if !source.Valid() {
		return fmt.Errorf("%w: %q", disclosure.ErrUnknownSourceType, source)
	}
	return s.checkpoints.Reset(ctx, source)
}

// Status returns all checkpoint rows.
func (s *Service) Status(ctx context.Context) ([]ports.SyncProgress, error) {
	return s.checkpoints.List(ctx)
}

func (s *Service) fetchAll(ctx context.Context, source disclosure.SourceType, opts Options) ([]ports.RawRecord, error) {
	out := make([]ports.RawRecord, 0, opts.PageSize)
	for page := 0; page < opts.MaxPages; page++ {
		batch, err := s.source.FetchPage(ctx, source, page, opts.PageSize)
		if err != nil {
			return nil, errs.Wrapf(err, "fetch page %d", page)
		}
		out = append(out, batch...)
		if len(batch) < opts.PageSize {
			break
		}
	}
	return out, nil
}

// markFailed flushes a failed status without advancing LastProcessedIndex
// past the last successful flush.
func (s *Service) markFailed(ctx context.Context, opts Options, progress ports.SyncProgress) {
	if !opts.UseCheckpoints {
		return
	}
	progress.Status = ports.SyncFailed
	if err := s.checkpoints.Upsert(ctx, progress); err != nil {
		logging.Error(ctx, "flush failed-status checkpoint", slog.Any("err", errs.Loggable(err)))
	}
}

func resultFromProgress(source disclosure.SourceType, p ports.SyncProgress, elapsed time.Duration) Result {
	return Result{
		SourceType: source,
		Processed:  p.LastProcessedIndex,
		Created:    p.CreatedCount,
		Updated:    p.UpdatedCount,
		Skipped:    p.SkippedCount,
		Duration:   elapsed,
	}
}
