package model

import "time"

// AlertNotification is unique per (alert_id, trade_id); the composite index
// is what makes triggering idempotent under re-evaluation.
type AlertNotification struct {
	ID             uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	PublicID       string     `gorm:"column:public_id;type:text;not null;uniqueIndex"`
	AlertID        uint64     `gorm:"column:alert_id;not null;uniqueIndex:idx_notifications_alert_trade"`
	TradeID        uint64     `gorm:"column:trade_id;not null;uniqueIndex:idx_notifications_alert_trade"`
	UserID         string     `gorm:"column:user_id;type:text;not null;index"`
	Message        string     `gorm:"column:message;type:text;not null"`
	DeliveryStatus string     `gorm:"column:delivery_status;type:text;not null;default:'pending'"`
	CreatedAt      time.Time  `gorm:"column:created_at;not null"`
	ReadAt         *time.Time `gorm:"column:read_at"`
}

func (AlertNotification) TableName() string {
	return "alert_notifications"
}
