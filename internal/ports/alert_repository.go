package ports

import (
	"context"
	"errors"
	"time"

	"tradewatch/internal/domain/alert"
)

var ErrNotificationNotFound = errors.New("notification not found")

type Alert struct {
	ID              uint64
	PublicID        string
	UserID          string
	Criteria        alert.Criteria
	Status          alert.Status
	LastTriggeredAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type AlertCreate struct {
	PublicID string
	UserID   string
	Criteria alert.Criteria
}

// AlertRepository persists user alerts and answers the candidate-selection
// queries of the evaluation engine. "Active" queries exclude paused and
// deleted alerts.
type AlertRepository interface {
	Create(ctx context.Context, input AlertCreate) (Alert, error)
	GetByPublicID(ctx context.Context, userID, publicID string) (Alert, error)
	ListByUser(ctx context.Context, userID string, includeDeleted bool) ([]Alert, error)
	ListByUserAndType(ctx context.Context, userID string, t alert.Type) ([]Alert, error)
	CountNonDeletedByUser(ctx context.Context, userID string) (int64, error)

	UpdateStatus(ctx context.Context, id uint64, status alert.Status, updatedAt time.Time) error
	UpdatePattern(ctx context.Context, id uint64, pattern alert.Pattern, updatedAt time.Time) error
	TouchLastTriggered(ctx context.Context, id uint64, at time.Time) error

	ListActiveByPolitician(ctx context.Context, politicianID uint64) ([]Alert, error)
	ListActiveByTicker(ctx context.Context, symbol string) ([]Alert, error)
	ListActivePatterns(ctx context.Context) ([]Alert, error)
}

type Notification struct {
	ID             uint64
	PublicID       string
	AlertID        uint64
	UserID         string
	TradeID        uint64
	Message        string
	DeliveryStatus string
	CreatedAt      time.Time
	ReadAt         *time.Time
}

type NotificationCreate struct {
	PublicID string
	AlertID  uint64
	UserID   string
	TradeID  uint64
	Message  string
}

// NotificationRepository records that a notification is due. Delivery is an
// external collaborator's concern. Create is idempotent on (alert, trade):
// a unique composite index makes the second attempt a no-op.
type NotificationRepository interface {
	Create(ctx context.Context, input NotificationCreate) (inserted bool, err error)
	ListByUser(ctx context.Context, userID string, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, userID, publicID string, at time.Time) error
	CountForAlert(ctx context.Context, alertID uint64) (int64, error)
}
