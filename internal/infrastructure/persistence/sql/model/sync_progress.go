package model

import "time"

type SyncProgress struct {
	ID                 uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	SourceType         string     `gorm:"column:source_type;type:text;not null;uniqueIndex"`
	LastProcessedIndex int        `gorm:"column:last_processed_index;not null;default:0"`
	TotalRecords       int        `gorm:"column:total_records;not null;default:0"`
	CreatedCount       int        `gorm:"column:created_count;not null;default:0"`
	UpdatedCount       int        `gorm:"column:updated_count;not null;default:0"`
	SkippedCount       int        `gorm:"column:skipped_count;not null;default:0"`
	ErrorCount         int        `gorm:"column:error_count;not null;default:0"`
	Status             string     `gorm:"column:status;type:text;not null;default:'pending'"`
	StartedAt          time.Time  `gorm:"column:started_at;not null"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;not null"`
	CompletedAt        *time.Time `gorm:"column:completed_at"`
}

func (SyncProgress) TableName() string {
	return "sync_progress"
}
