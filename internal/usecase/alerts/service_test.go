package alerts

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"tradewatch/internal/domain/alert"
	"tradewatch/internal/domain/disclosure"
	"tradewatch/internal/infrastructure/persistence/sql/model"
	sqlrepo "tradewatch/internal/infrastructure/persistence/sql/repository"
	sqluow "tradewatch/internal/infrastructure/persistence/sql/uow"
	"tradewatch/internal/ports"
)

type fixture struct {
	svc           *Service
	db            *gorm.DB
	refs          ports.ReferenceRepository
	trades        ports.TradeRepository
	alerts        ports.AlertRepository
	notifications ports.NotificationRepository
}

func setupFixture(t *testing.T, quotas Quotas) *fixture {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "alerts.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(
		&model.Legislator{},
		&model.Insider{},
		&model.Ticker{},
		&model.Trade{},
		&model.SyncProgress{},
		&model.UserAlert{},
		&model.AlertNotification{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	if quotas == nil {
		quotas = Quotas{"free": 3, "pro": 20, "premium": 100}
	}

	alertRepo := sqlrepo.NewAlertRepository(db)
	notificationRepo := sqlrepo.NewNotificationRepository(db)
	refs := sqlrepo.NewReferenceRepository(db)
	svc := NewService(alertRepo, notificationRepo, refs, sqluow.NewUnitOfWork(db), quotas)

	return &fixture{
		svc:           svc,
		db:            db,
		refs:          refs,
		trades:        sqlrepo.NewTradeRepository(db),
		alerts:        alertRepo,
		notifications: notificationRepo,
	}
}

func (f *fixture) seedLegislator(t *testing.T) ports.Legislator {
	t.Helper()
	legislator, err := f.refs.FindOrCreateLegislator(context.Background(), ports.LegislatorCreate{
		FullName: "Jane Doe",
		Chamber:  disclosure.SourceSenate,
		State:    "CA",
	})
	if err != nil {
		t.Fatalf("seed legislator: %v", err)
	}
	return legislator
}

func (f *fixture) seedTicker(t *testing.T, symbol string) ports.Ticker {
	t.Helper()
	ticker, err := f.refs.FindOrCreateTicker(context.Background(), symbol, "")
	if err != nil {
		t.Fatalf("seed ticker %s: %v", symbol, err)
	}
	return ticker
}

func TestCreateChecksReferencedEntities(t *testing.T) {
	fx := setupFixture(t, nil)
	ctx := context.Background()

	if _, err := fx.svc.Create(ctx, CreateInput{
		UserID:   "u1",
		Criteria: alert.PoliticianCriteria(999),
	}); !errors.Is(err, ports.ErrLegislatorNotFound) {
		t.Fatalf("Create() error = %v, want ErrLegislatorNotFound", err)
	}

	if _, err := fx.svc.Create(ctx, CreateInput{
		UserID:   "u1",
		Criteria: alert.StockCriteria("NOPE"),
	}); !errors.Is(err, ports.ErrTickerNotFound) {
		t.Fatalf("Create() error = %v, want ErrTickerNotFound", err)
	}

	legislator := fx.seedLegislator(t)
	created, err := fx.svc.Create(ctx, CreateInput{
		UserID:   "u1",
		Criteria: alert.PoliticianCriteria(legislator.ID),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.PublicID == "" || created.Status != alert.StatusActive {
		t.Fatalf("Create() = %+v", created)
	}
}

func TestCreateEnforcesTierQuota(t *testing.T) {
	fx := setupFixture(t, Quotas{"free": 2, "pro": 3})
	ctx := context.Background()
	fx.seedTicker(t, "AAPL")
	fx.seedTicker(t, "MSFT")
	fx.seedTicker(t, "NVDA")

	for _, symbol := range []string{"AAPL", "MSFT"} {
		if _, err := fx.svc.Create(ctx, CreateInput{
			UserID:   "u1",
			Tier:     "free",
			Criteria: alert.StockCriteria(symbol),
		}); err != nil {
			t.Fatalf("Create(%s) error = %v", symbol, err)
		}
	}

	_, err := fx.svc.Create(ctx, CreateInput{
		UserID:   "u1",
		Tier:     "free",
		Criteria: alert.StockCriteria("NVDA"),
	})
	if !errors.Is(err, alert.ErrQuotaExceeded) {
		t.Fatalf("Create() error = %v, want ErrQuotaExceeded", err)
	}

	// A pro user still has room.
	if _, err := fx.svc.Create(ctx, CreateInput{
		UserID:   "u2",
		Tier:     "pro",
		Criteria: alert.StockCriteria("NVDA"),
	}); err != nil {
		t.Fatalf("Create(pro) error = %v", err)
	}

	// Deleting frees quota.
	mine, err := fx.svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if err := fx.svc.Delete(ctx, "u1", mine[0].PublicID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := fx.svc.Create(ctx, CreateInput{
		UserID:   "u1",
		Tier:     "free",
		Criteria: alert.StockCriteria("NVDA"),
	}); err != nil {
		t.Fatalf("Create() after delete error = %v", err)
	}
}

func TestCreateRejectsDuplicateCriteria(t *testing.T) {
	fx := setupFixture(t, nil)
	ctx := context.Background()
	fx.seedTicker(t, "AAPL")

	input := CreateInput{UserID: "u1", Criteria: alert.StockCriteria("AAPL")}
	if _, err := fx.svc.Create(ctx, input); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := fx.svc.Create(ctx, input); !errors.Is(err, alert.ErrDuplicate) {
		t.Fatalf("duplicate Create() error = %v, want ErrDuplicate", err)
	}

	// Another user may hold the same criteria.
	if _, err := fx.svc.Create(ctx, CreateInput{UserID: "u2", Criteria: alert.StockCriteria("AAPL")}); err != nil {
		t.Fatalf("Create(other user) error = %v", err)
	}

	// Structural pattern equality, not pointer identity.
	minValue := 10000.0
	pattern := CreateInput{UserID: "u1", Criteria: alert.PatternCriteria(alert.Pattern{MinValue: &minValue})}
	if _, err := fx.svc.Create(ctx, pattern); err != nil {
		t.Fatalf("Create(pattern) error = %v", err)
	}
	other := 10000.0
	dup := CreateInput{UserID: "u1", Criteria: alert.PatternCriteria(alert.Pattern{MinValue: &other})}
	if _, err := fx.svc.Create(ctx, dup); !errors.Is(err, alert.ErrDuplicate) {
		t.Fatalf("duplicate pattern Create() error = %v, want ErrDuplicate", err)
	}
}

func TestPauseResumeDeleteLifecycle(t *testing.T) {
	fx := setupFixture(t, nil)
	ctx := context.Background()
	fx.seedTicker(t, "AAPL")

	created, err := fx.svc.Create(ctx, CreateInput{UserID: "u1", Criteria: alert.StockCriteria("AAPL")})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := fx.svc.Pause(ctx, "u1", created.PublicID); err != nil {
		t.Fatalf("Pause() error = %v", err)
	}
	got, err := fx.svc.Get(ctx, "u1", created.PublicID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != alert.StatusPaused {
		t.Fatalf("status after pause = %q", got.Status)
	}

	// Pausing twice is a no-op.
	if err := fx.svc.Pause(ctx, "u1", created.PublicID); err != nil {
		t.Fatalf("second Pause() error = %v", err)
	}

	if err := fx.svc.Resume(ctx, "u1", created.PublicID); err != nil {
		t.Fatalf("Resume() error = %v", err)
	}

	if err := fx.svc.Delete(ctx, "u1", created.PublicID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	// Deleted is terminal.
	if err := fx.svc.Resume(ctx, "u1", created.PublicID); !errors.Is(err, alert.ErrDeleted) {
		t.Fatalf("Resume(deleted) error = %v, want ErrDeleted", err)
	}
	if err := fx.svc.Delete(ctx, "u1", created.PublicID); err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}

	// Operating on another user's alert looks like a missing alert.
	if err := fx.svc.Pause(ctx, "u2", created.PublicID); !errors.Is(err, alert.ErrNotFound) {
		t.Fatalf("Pause(other user) error = %v, want ErrNotFound", err)
	}
}

func TestUpdatePatternGuards(t *testing.T) {
	fx := setupFixture(t, nil)
	ctx := context.Background()
	fx.seedTicker(t, "AAPL")

	stock, err := fx.svc.Create(ctx, CreateInput{UserID: "u1", Criteria: alert.StockCriteria("AAPL")})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := fx.svc.UpdatePattern(ctx, "u1", stock.PublicID, alert.Pattern{}); !errors.Is(err, alert.ErrNotPatternType) {
		t.Fatalf("UpdatePattern(stock) error = %v, want ErrNotPatternType", err)
	}

	pattern, err := fx.svc.Create(ctx, CreateInput{UserID: "u1", Criteria: alert.PatternCriteria(alert.Pattern{})})
	if err != nil {
		t.Fatalf("Create(pattern) error = %v", err)
	}

	minValue, maxValue := 50000.0, 10000.0
	err = fx.svc.UpdatePattern(ctx, "u1", pattern.PublicID, alert.Pattern{MinValue: &minValue, MaxValue: &maxValue})
	if !errors.Is(err, alert.ErrMinAboveMax) {
		t.Fatalf("UpdatePattern(invalid) error = %v, want ErrMinAboveMax", err)
	}

	valid := 10000.0
	if err := fx.svc.UpdatePattern(ctx, "u1", pattern.PublicID, alert.Pattern{MinValue: &valid}); err != nil {
		t.Fatalf("UpdatePattern() error = %v", err)
	}
	got, err := fx.svc.Get(ctx, "u1", pattern.PublicID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Criteria.Pattern.MinValue == nil || *got.Criteria.Pattern.MinValue != 10000 {
		t.Fatalf("pattern not updated: %+v", got.Criteria.Pattern)
	}
}
