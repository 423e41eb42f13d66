package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradewatch/internal/errs"
	"tradewatch/internal/infrastructure/persistence/sql/model"
	"tradewatch/internal/ports"
)

type NotificationRepository struct {
	db *gorm.DB
}

var _ ports.NotificationRepository = (*NotificationRepository)(nil)

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, input ports.NotificationCreate) (bool, error) {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return false, err
	}

	if strings.TrimSpace(input.PublicID) == "" {
		return false, errors.New("public id is required")
	}
	if input.AlertID == 0 || input.TradeID == 0 {
		return false, errors.New("alert id and trade id are required")
	}

	row := model.AlertNotification{
		PublicID:       input.PublicID,
		AlertID:        input.AlertID,
		TradeID:        input.TradeID,
		UserID:         input.UserID,
		Message:        input.Message,
		DeliveryStatus: "pending",
		CreatedAt:      time.Now().UTC(),
	}

	// At most one notification per (alert, trade), even under re-evaluation.
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "alert_id"}, {Name: "trade_id"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return false, errs.Wrap(result.Error, "insert notification")
	}

	return result.RowsAffected > 0, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]ports.Notification, error) {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := db.Where("user_id = ?", userID).Order("id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.AlertNotification
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "list notifications")
	}

	out := make([]ports.Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapNotification(row))
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, publicID string, at time.Time) error {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Model(&model.AlertNotification{}).
		Where("user_id = ? AND public_id = ? AND read_at IS NULL", userID, publicID).
		Update("read_at", at.UTC())
	if result.Error != nil {
		return errs.Wrap(result.Error, "mark notification read")
	}
	if result.RowsAffected == 0 {
		// Distinguish missing from already-read.
		var count int64
		if err := db.Model(&model.AlertNotification{}).
			Where("user_id = ? AND public_id = ?", userID, publicID).
			Count(&count).Error; err != nil {
			return errs.Wrap(err, "check notification")
		}
		if count == 0 {
			return ports.ErrNotificationNotFound
		}
	}
	return nil
}

func (r *NotificationRepository) CountForAlert(ctx context.Context, alertID uint64) (int64, error) {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.AlertNotification{}).
		Where("alert_id = ?", alertID).
		Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count notifications for alert")
	}
	return count, nil
}

func mapNotification(row model.AlertNotification) ports.Notification {
	return ports.Notification{
		ID:             row.ID,
		PublicID:       row.PublicID,
		AlertID:        row.AlertID,
		TradeID:        row.TradeID,
		UserID:         row.UserID,
		Message:        row.Message,
		DeliveryStatus: row.DeliveryStatus,
		CreatedAt:      row.CreatedAt,
		ReadAt:         row.ReadAt,
	}
}
