package ports

import (
	"context"
	"errors"
	"time"

	"tradewatch/internal/domain/disclosure"
)

var ErrCheckpointNotFound = errors.New("sync checkpoint not found")

type SyncStatus string

const (
	SyncPending    SyncStatus = "pending"
	SyncInProgress SyncStatus = "in_progress"
	SyncCompleted  SyncStatus = "completed"
	SyncFailed     SyncStatus = "failed"
)

// SyncProgress is the durable checkpoint of one source type's sync run.
// LastProcessedIndex means "records with index < N have been durably
// processed"; it is monotonically non-decreasing within a run.
type SyncProgress struct {
	SourceType         disclosure.SourceType
	LastProcessedIndex int
	TotalRecords       int
	CreatedCount       int
	UpdatedCount       int
	SkippedCount       int
	ErrorCount         int
	Status             SyncStatus
	StartedAt          time.Time
	UpdatedAt          time.Time
	CompletedAt        *time.Time
}

// CheckpointStore keeps one SyncProgress row per source type. Upsert
// overwrites the row atomically; rows are never deleted by the pipeline,
// only Reset on explicit operator request.
type CheckpointStore interface {
	Get(ctx context.Context, source disclosure.SourceType) (SyncProgress, error)
	Upsert(ctx context.Context, progress SyncProgress) error
	Reset(ctx context.Context, source disclosure.SourceType) error
	List(ctx context.Context) ([]SyncProgress, error)
}
