// Package sync drives the disclosure ingestion pipeline: paged fetch,
// entity resolution, deduplicated trade writes and crash-resumable
// checkpointing, one run per source type.
package sync

import (
	"context"
	"time"

	"tradewatch/internal/domain/disclosure"
	"tradewatch/internal/ports"
)

// TradeObserver is notified synchronously, exactly once, for each newly
// created trade. Updated and skipped trades are not re-announced.
type TradeObserver interface {
	TradeCreated(ctx context.Context, trade ports.Trade)
}

// Defaults are the config-supplied fallbacks for zero-valued run options.
type Defaults struct {
	PageSize         int
	MaxPages         int
	BatchSize        int
	ResolverCacheTTL time.Duration
}

// Options tunes a single sync run. Zero values fall back to Defaults.
type Options struct {
	PageSize  int
	MaxPages  int
	BatchSize int

	// ForceUpdate refreshes the enrichment fields of already-known trades
	// instead of skipping them.
	ForceUpdate bool

	// UseCheckpoints loads and flushes durable SyncProgress. Disabled runs
	// always start from record 0 and rely on dedupe alone.
	UseCheckpoints bool

	// OnProgress is invoked after every processed record. Purely advisory.
	OnProgress func(ProgressUpdate)
}

type ProgressUpdate struct {
	Current     int
	Total       int
	SourceLabel string
}

// RecordError is one absorbed per-record failure.
type RecordError struct {
	Index   int
	Message string
}

type Result struct {
	SourceType disclosure.SourceType
	Processed  int
	Created    int
	Updated    int
	Skipped    int
	Errors     []RecordError
	Duration   time.Duration
}

// Service orchestrates sync runs.
//
// Precondition: callers must not run two syncs of the same source type
// concurrently; the checkpoint row is not guarded by a distributed lock and
// interleaved flushes would corrupt the resume index. cmd/sync runs source
// types sequentially in one process.
type Service struct {
	source      ports.DisclosureSource
	trades      ports.TradeRepository
	refs        ports.ReferenceRepository
	checkpoints ports.CheckpointStore
	cache       ports.Cache
	observer    TradeObserver
	defaults    Defaults
}

func NewService(
	source ports.DisclosureSource,
	trades ports.TradeRepository,
	refs ports.ReferenceRepository,
	checkpoints ports.CheckpointStore,
	cache ports.Cache,
	observer TradeObserver,
	defaults Defaults,
) *Service {
	return &Service{
		source:      source,
		trades:      trades,
		refs:        refs,
		checkpoints: checkpoints,
		cache:       cache,
		observer:    observer,
		defaults:    defaults,
	}
}

func (s *Service) withDefaults(opts Options) Options {
	if opts.PageSize <= 0 {
		opts.PageSize = s.defaults.PageSize
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = s.defaults.MaxPages
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = s.defaults.BatchSize
	}
	return opts
}
