// Package alerts owns the user-alert lifecycle and the matching engine that
// turns freshly persisted trades into notifications.
package alerts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"tradewatch/internal/domain/alert"
	"tradewatch/internal/ports"
)

// Quotas maps subscription tier to the maximum number of non-deleted alerts
// a user may hold.
type Quotas map[string]int

const fallbackTier = "free"

type Service struct {
	alerts        ports.AlertRepository
	notifications ports.NotificationRepository
	refs          ports.ReferenceRepository
	uow           ports.UnitOfWork
	quotas        Quotas

	now func() time.Time
}

func NewService(
	alerts ports.AlertRepository,
	notifications ports.NotificationRepository,
	refs ports.ReferenceRepository,
	uow ports.UnitOfWork,
	quotas Quotas,
) *Service {
	return &Service{
		alerts:        alerts,
		notifications: notifications,
		refs:          refs,
		uow:           uow,
		quotas:        quotas,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

type CreateInput struct {
	UserID   string
	Tier     string
	Criteria alert.Criteria
}

// Create validates and persists a new alert. It rejects invalid criteria,
// references to entities that do not exist, quota overruns and duplicates
// (structural equality for pattern alerts). The quota and duplicate checks
// run inside one transaction with the insert.
func (s *Service) Create(ctx context.Context, input CreateInput) (ports.Alert, error) {
	if ctx == nil {
		return ports.Alert{}, errors.New("context is required")
	}
	if strings.TrimSpace(input.UserID) == "" {
		return ports.Alert{}, errors.New("user id is required")
	}
	if err := input.Criteria.Validate(); err != nil {
		return ports.Alert{}, err
	}

	// Referenced entities must exist; a dangling alert would never match.
	switch input.Criteria.Type {
	case alert.TypePolitician:
		if _, err := s.refs.GetLegislator(ctx, *input.Criteria.PoliticianID); err != nil {
			return ports.Alert{}, err
		}
	case alert.TypeStock:
		if _, err := s.refs.GetTicker(ctx, *input.Criteria.TickerSymbol); err != nil {
			return ports.Alert{}, err
		}
	}

	var created ports.Alert
	err := s.uow.WithTx(ctx, func(ctx context.Context) error {
		count, err := s.alerts.CountNonDeletedByUser(ctx, input.UserID)
		if err != nil {
			return err
		}
		if count >= int64(s.quotaFor(input.Tier)) {
			return alert.ErrQuotaExceeded
		}

		siblings, err := s.alerts.ListByUserAndType(ctx, input.UserID, input.Criteria.Type)
		if err != nil {
			return err
		}
		for _, sibling := range siblings {
			if sibling.Criteria.Equal(input.Criteria) {
				return alert.ErrDuplicate
			}
		}

		created, err = s.alerts.Create(ctx, ports.AlertCreate{
			PublicID: uuid.NewString(),
			UserID:   input.UserID,
			Criteria: input.Criteria,
		})
		return err
	})
	if err != nil {
		return ports.Alert{}, err
	}
	return created, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]ports.Alert, error) {
	return s.alerts.ListByUser(ctx, userID, false)
}

func (s *Service) Get(ctx context.Context, userID, publicID string) (ports.Alert, error) {
	return s.alerts.GetByPublicID(ctx, userID, publicID)
}

// Pause and Resume toggle active<->paused. Deleted is terminal.
func (s *Service) Pause(ctx context.Context, userID, publicID string) error {
	return s.setStatus(ctx, userID, publicID, alert.StatusPaused)
}

func (s *Service) Resume(ctx context.Context, userID, publicID string) error {
	return s.setStatus(ctx, userID, publicID, alert.StatusActive)
}

// Delete soft-deletes the alert; it stays excluded from candidate selection
// permanently. Deleting twice is a no-op.
func (s *Service) Delete(ctx context.Context, userID, publicID string) error {
	existing, err := s.alerts.GetByPublicID(ctx, userID, publicID)
	if err != nil {
		return err
	}
	if existing.Status == alert.StatusDeleted {
		return nil
	}
	return s.alerts.UpdateStatus(ctx, existing.ID, alert.StatusDeleted, s.now())
}

func (s *Service) setStatus(ctx context.Context, userID, publicID string, status alert.Status) error {
	existing, err := s.alerts.GetByPublicID(ctx, userID, publicID)
	if err != nil {
		return err
	}
	if existing.Status == alert.StatusDeleted {
		return alert.ErrDeleted
	}
	if existing.Status == status {
		return nil
	}
	return s.alerts.UpdateStatus(ctx, existing.ID, status, s.now())
}

// UpdatePattern replaces the pattern of a pattern alert after re-validation.
func (s *Service) UpdatePattern(ctx context.Context, userID, publicID string, pattern alert.Pattern) error {
	existing, err := s.alerts.GetByPublicID(ctx, userID, publicID)
	if err != nil {
		return err
	}
	if existing.Status == alert.StatusDeleted {
		return alert.ErrDeleted
	}
	if existing.Criteria.Type != alert.TypePattern {
		return alert.ErrNotPatternType
	}
	if err := pattern.Validate(); err != nil {
		return err
	}
	return s.alerts.UpdatePattern(ctx, existing.ID, pattern, s.now())
}

func (s *Service) Notifications(ctx context.Context, userID string, limit int) ([]ports.Notification, error) {
	return s.notifications.ListByUser(ctx, userID, limit)
}

func (s *Service) MarkNotificationRead(ctx context.Context, userID, publicID string) error {
	return s.notifications.MarkRead(ctx, userID, publicID, s.now())
}

func (s *Service) quotaFor(tier string) int {
	normalized := strings.ToLower(strings.TrimSpace(tier))
	if quota, ok := s.quotas[normalized]; ok {
		return quota
	}
	if quota, ok := s.quotas[fallbackTier]; ok {
		return quota
	}
	return 1
}
