package model

import "time"

// UserAlert stores the tagged criteria in sparse columns: exactly one of
// politician_id, ticker_symbol, pattern_json is populated, selected by
// alert_type.
type UserAlert struct {
	ID              uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	PublicID        string     `gorm:"column:public_id;type:text;not null;uniqueIndex"`
	UserID          string     `gorm:"column:user_id;type:text;not null;index"`
	AlertType       string     `gorm:"column:alert_type;type:text;not null"`
	Status          string     `gorm:"column:status;type:text;not null;default:'active';index"`
	PoliticianID    *uint64    `gorm:"column:politician_id;index"`
	TickerSymbol    *string    `gorm:"column:ticker_symbol;type:text;index"`
	PatternJSON     *string    `gorm:"column:pattern_json;type:text"`
	LastTriggeredAt *time.Time `gorm:"column:last_triggered_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;not null"`
}

func (UserAlert) TableName() string {
	return "user_alerts"
}
