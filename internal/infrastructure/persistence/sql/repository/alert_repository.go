package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"tradewatch/internal/domain/alert"
	"tradewatch/internal/domain/disclosure"
	"tradewatch/internal/errs"
	"tradewatch/internal/infrastructure/persistence/sql/model"
	"tradewatch/internal/ports"
)

type AlertRepository struct {
	db *gorm.DB
}

var _ ports.AlertRepository = (*AlertRepository)(nil)

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(ctx context.Context, input ports.AlertCreate) (ports.Alert, error) {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return ports.Alert{}, err
	}

	if strings.TrimSpace(input.UserID) == "" {
		return ports.Alert{}, errors.New("user id is required")
	}
	if strings.TrimSpace(input.PublicID) == "" {
		return ports.Alert{}, errors.New("public id is required")
	}
	if err := input.Criteria.Validate(); err != nil {
		return ports.Alert{}, err
	}

	now := time.Now().UTC()
	row := model.UserAlert{
		PublicID:  input.PublicID,
		UserID:    input.UserID,
		AlertType: string(input.Criteria.Type),
		Status:    string(alert.StatusActive),
		CreatedAt: now,
		UpdatedAt: now,
	}

	switch input.Criteria.Type {
	case alert.TypePolitician:
		row.PoliticianID = input.Criteria.PoliticianID
	case alert.TypeStock:
		row.TickerSymbol = input.Criteria.TickerSymbol
	case alert.TypePattern:
		encoded, err := json.Marshal(input.Criteria.Pattern)
		if err != nil {
			return ports.Alert{}, errs.Wrap(err, "marshal pattern")
		}
		s := string(encoded)
		row.PatternJSON = &s
	}

	if err := db.Create(&row).Error; err != nil {
		return ports.Alert{}, errs.Wrap(err, "insert alert")
	}

	return mapAlert(row)
}

func (r *AlertRepository) GetByPublicID(ctx context.Context, userID, publicID string) (ports.Alert, error) {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return ports.Alert{}, err
	}

	var row model.UserAlert
	if err := db.Where("user_id = ? AND public_id = ?", userID, publicID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Alert{}, alert.ErrNotFound
		}
		return ports.Alert{}, errs.Wrap(err, "query alert")
	}
	return mapAlert(row)
}

func (r *AlertRepository) ListByUser(ctx context.Context, userID string, includeDeleted bool) ([]ports.Alert, error) {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := db.Where("user_id = ?", userID)
	if !includeDeleted {
		query = query.Where("status <> ?", string(alert.StatusDeleted))
	}

	var rows []model.UserAlert
	if err := query.Order("id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "list alerts by user")
	}
	return mapAlerts(rows)
}

func (r *AlertRepository) ListByUserAndType(ctx context.Context, userID string, t alert.Type) ([]ports.Alert, error) {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.UserAlert
	if err := db.
		Where("user_id = ? AND alert_type = ? AND status <> ?", userID, string(t), string(alert.StatusDeleted)).
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "list alerts by user and type")
	}
	return mapAlerts(rows)
}

func (r *AlertRepository) CountNonDeletedByUser(ctx context.Context, userID string) (int64, error) {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.UserAlert{}).
		Where("user_id = ? AND status <> ?", userID, string(alert.StatusDeleted)).
		Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count alerts by user")
	}
	return count, nil
}

func (r *AlertRepository) UpdateStatus(ctx context.Context, id uint64, status alert.Status, updatedAt time.Time) error {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Model(&model.UserAlert{}).Where("id = ?", id).Updates(map[string]any{
		"status":     string(status),
		"updated_at": updatedAt.UTC(),
	})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update alert status")
	}
	if result.RowsAffected == 0 {
		return alert.ErrNotFound
	}
	return nil
}

func (r *AlertRepository) UpdatePattern(ctx context.Context, id uint64, pattern alert.Pattern, updatedAt time.Time) error {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(pattern)
	if err != nil {
		return errs.Wrap(err, "marshal pattern")
	}

	result := db.Model(&model.UserAlert{}).
		Where("id = ? AND alert_type = ?", id, string(alert.TypePattern)).
		Updates(map[string]any{
			"pattern_json": string(encoded),
			"updated_at":   updatedAt.UTC(),
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update alert pattern")
	}
	if result.RowsAffected == 0 {
		return alert.ErrNotFound
	}
	return nil
}

func (r *AlertRepository) TouchLastTriggered(ctx context.Context, id uint64, at time.Time) error {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Model(&model.UserAlert{}).Where("id = ?", id).Updates(map[string]any{
		"last_triggered_at": at.UTC(),
		"updated_at":        at.UTC(),
	})
	if result.Error != nil {
		return errs.Wrap(result.Error, "touch alert last triggered")
	}
	if result.RowsAffected == 0 {
		return alert.ErrNotFound
	}
	return nil
}

func (r *AlertRepository) ListActiveByPolitician(ctx context.Context, politicianID uint64) ([]ports.Alert, error) {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.UserAlert
	if err := db.
		Where("alert_type = ? AND status = ? AND politician_id = ?",
			string(alert.TypePolitician), string(alert.StatusActive), politicianID).
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "list active politician alerts")
	}
	return mapAlerts(rows)
}

func (r *AlertRepository) ListActiveByTicker(ctx context.Context, symbol string) ([]ports.Alert, error) {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.UserAlert
	if err := db.
		Where("alert_type = ? AND status = ? AND ticker_symbol = ?",
			string(alert.TypeStock), string(alert.StatusActive), disclosure.NormalizeSymbol(symbol)).
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "list active stock alerts")
	}
	return mapAlerts(rows)
}

func (r *AlertRepository) ListActivePatterns(ctx context.Context) ([]ports.Alert, error) {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.UserAlert
	if err := db.
		Where("alert_type = ? AND status = ?", string(alert.TypePattern), string(alert.StatusActive)).
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "list active pattern alerts")
	}
	return mapAlerts(rows)
}

func mapAlerts(rows []model.UserAlert) ([]ports.Alert, error) {
	out := make([]ports.Alert, 0, len(rows))
	for _, row := range rows {
		mapped, err := mapAlert(row)
		if err != nil {
			return nil, err
		}
		out = append(out, mapped)
	}
	return out, nil
}

func mapAlert(row model.UserAlert) (ports.Alert, error) {
	criteria := alert.Criteria{Type: alert.Type(row.AlertType)}
	switch criteria.Type {
	case alert.TypePolitician:
		criteria.PoliticianID = row.PoliticianID
	case alert.TypeStock:
		criteria.TickerSymbol = row.TickerSymbol
	case alert.TypePattern:
		if row.PatternJSON != nil {
			var p alert.Pattern
			if err := json.Unmarshal([]byte(*row.PatternJSON), &p); err != nil {
				return ports.Alert{}, errs.Wrapf(err, "unmarshal pattern for alert %d", row.ID)
			}
			criteria.Pattern = &p
		}
	}

	return ports.Alert{
		ID:              row.ID,
		PublicID:        row.PublicID,
		UserID:          row.UserID,
		Criteria:        criteria,
		Status:          alert.Status(row.Status),
		LastTriggeredAt: row.LastTriggeredAt,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}, nil
}
