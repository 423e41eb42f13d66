package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradewatch/internal/domain/disclosure"
	"tradewatch/internal/errs"
	"tradewatch/internal/infrastructure/persistence/sql/model"
	"tradewatch/internal/ports"
)

// CheckpointRepository implements ports.CheckpointStore on the sync_progress
// table, one row per source type.
type CheckpointRepository struct {
	db *gorm.DB
}

var _ ports.CheckpointStore = (*CheckpointRepository)(nil)

func NewCheckpointRepository(db *gorm.DB) *CheckpointRepository {
	return &CheckpointRepository{db: db}
}

func (r *CheckpointRepository) Get(ctx context.Context, source disclosure.SourceType) (ports.SyncProgress, error) {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return ports.SyncProgress{}, err
	}

	var row model.SyncProgress
	if err := db.Where("source_type = ?", string(source)).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.SyncProgress{}, ports.ErrCheckpointNotFound
		}
		return ports.SyncProgress{}, errs.Wrap(err, "query sync progress")
	}

	return mapSyncProgress(row), nil
}

func (r *CheckpointRepository) Upsert(ctx context.Context, progress ports.SyncProgress) error {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return err
	}
	if !progress.SourceType.Valid() {
		return errs.Wrapf(disclosure.ErrUnknownSourceType, "upsert sync progress %q", progress.SourceType)
	}

	now := time.Now().UTC()
	row := model.SyncProgress{
		SourceType:         string(progress.SourceType),
		LastProcessedIndex: progress.LastProcessedIndex,
		TotalRecords:       progress.TotalRecords,
		CreatedCount:       progress.CreatedCount,
		UpdatedCount:       progress.UpdatedCount,
		SkippedCount:       progress.SkippedCount,
		ErrorCount:         progress.ErrorCount,
		Status:             string(progress.Status),
		StartedAt:          progress.StartedAt,
		UpdatedAt:          now,
		CompletedAt:        progress.CompletedAt,
	}

	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "source_type"}},
		DoUpdates: clause.Assignments(map[string]any{
			"last_processed_index": row.LastProcessedIndex,
			"total_records":        row.TotalRecords,
			"created_count":        row.CreatedCount,
			"updated_count":        row.UpdatedCount,
			"skipped_count":        row.SkippedCount,
			"error_count":          row.ErrorCount,
			"status":               row.Status,
			"started_at":           row.StartedAt,
			"updated_at":           row.UpdatedAt,
			"completed_at":         row.CompletedAt,
		}),
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "upsert sync progress")
	}

	return nil
}

func (r *CheckpointRepository) Reset(ctx context.Context, source disclosure.SourceType) error {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return err
	}

	if err := db.Where("source_type = ?", string(source)).Delete(&model.SyncProgress{}).Error; err != nil {
		return errs.Wrap(err, "reset sync progress")
	}
	return nil
}

func (r *CheckpointRepository) List(ctx context.Context) ([]ports.SyncProgress, error) {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.SyncProgress
	if err := db.Order("source_type asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "list sync progress")
	}

	out := make([]ports.SyncProgress, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapSyncProgress(row))
	}
	return out, nil
}

func mapSyncProgress(row model.SyncProgress) ports.SyncProgress {
	return ports.SyncProgress{
		SourceType:         disclosure.SourceType(row.SourceType),
		LastProcessedIndex: row.LastProcessedIndex,
		TotalRecords:       row.TotalRecords,
		CreatedCount:       row.CreatedCount,
		UpdatedCount:       row.UpdatedCount,
		SkippedCount:       row.SkippedCount,
		ErrorCount:         row.ErrorCount,
		Status:             ports.SyncStatus(row.Status),
		StartedAt:          row.StartedAt,
		UpdatedAt:          row.UpdatedAt,
		CompletedAt:        row.CompletedAt,
	}
}
