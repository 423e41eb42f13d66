package alerts

import (
	"context"
	"strings"
	"testing"
	"time"

	"tradewatch/internal/domain/alert"
	"tradewatch/internal/domain/disclosure"
	sqlrepo "tradewatch/internal/infrastructure/persistence/sql/repository"
	"tradewatch/internal/ports"
	syncuc "tradewatch/internal/usecase/sync"
)

func (f *fixture) insertTrade(t *testing.T, candidate disclosure.TradeCandidate) ports.Trade {
	t.Helper()
	trade, inserted, err := f.trades.Insert(context.Background(), candidate)
	if err != nil || !inserted {
		t.Fatalf("insert trade = (%v, %t)", err, inserted)
	}
	return trade
}

func buyCandidate(traderID uint64, symbol string, value float64, date time.Time) disclosure.TradeCandidate {
	return disclosure.TradeCandidate{
		TraderKind:      disclosure.TraderLegislator,
		TraderID:        traderID,
		TickerSymbol:    symbol,
		TransactionDate: date,
		TransactionType: disclosure.TxBuy,
		EstimatedValue:  &value,
	}
}

func TestEvaluateTradeTriggersMatchingAlertsOnce(t *testing.T) {
	fx := setupFixture(t, nil)
	ctx := context.Background()
	legislator := fx.seedLegislator(t)
	fx.seedTicker(t, "AAPL")

	stockAlert, err := fx.svc.Create(ctx, CreateInput{UserID: "u1", Criteria: alert.StockCriteria("AAPL")})
	if err != nil {
		t.Fatalf("Create(stock) error = %v", err)
	}
	if _, err := fx.svc.Create(ctx, CreateInput{UserID: "u1", Criteria: alert.PoliticianCriteria(legislator.ID)}); err != nil {
		t.Fatalf("Create(politician) error = %v", err)
	}

	trade := fx.insertTrade(t, buyCandidate(legislator.ID, "AAPL", 25000, time.Now().UTC()))

	triggered, err := fx.svc.EvaluateTrade(ctx, trade)
	if err != nil {
		t.Fatalf("EvaluateTrade() error = %v", err)
	}
	if triggered != 2 {
		t.Fatalf("EvaluateTrade() triggered = %d, want 2", triggered)
	}

	// Re-evaluation is absorbed by the (alert, trade) unique index.
	triggered, err = fx.svc.EvaluateTrade(ctx, trade)
	if err != nil {
		t.Fatalf("second EvaluateTrade() error = %v", err)
	}
	if triggered != 0 {
		t.Fatalf("second EvaluateTrade() triggered = %d, want 0", triggered)
	}

	items, err := fx.svc.Notifications(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("Notifications() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Notifications() len = %d, want 2", len(items))
	}

	got, err := fx.svc.Get(ctx, "u1", stockAlert.PublicID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.LastTriggeredAt == nil {
		t.Fatalf("triggered alert must record last_triggered_at")
	}
}

func TestEvaluateTradeSkipsPausedAndMismatched(t *testing.T) {
	fx := setupFixture(t, nil)
	ctx := context.Background()
	legislator := fx.seedLegislator(t)
	fx.seedTicker(t, "AAPL")
	fx.seedTicker(t, "TSLA")

	paused, err := fx.svc.Create(ctx, CreateInput{UserID: "u1", Criteria: alert.StockCriteria("AAPL")})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := fx.svc.Pause(ctx, "u1", paused.PublicID); err != nil {
		t.Fatalf("Pause() error = %v", err)
	}
	if _, err := fx.svc.Create(ctx, CreateInput{UserID: "u1", Criteria: alert.StockCriteria("TSLA")}); err != nil {
		t.Fatalf("Create(TSLA) error = %v", err)
	}

	trade := fx.insertTrade(t, buyCandidate(legislator.ID, "AAPL", 25000, time.Now().UTC()))

	triggered, err := fx.svc.EvaluateTrade(ctx, trade)
	if err != nil {
		t.Fatalf("EvaluateTrade() error = %v", err)
	}
	if triggered != 0 {
		t.Fatalf("EvaluateTrade() triggered = %d, want 0", triggered)
	}
}

func TestEvaluateTradePatternFilters(t *testing.T) {
	fx := setupFixture(t, nil)
	ctx := context.Background()
	legislator := fx.seedLegislator(t)

	minValue := 10000.0
	buy := disclosure.TxBuy
	if _, err := fx.svc.Create(ctx, CreateInput{
		UserID:   "u1",
		Criteria: alert.PatternCriteria(alert.Pattern{MinValue: &minValue, TransactionType: &buy}),
	}); err != nil {
		t.Fatalf("Create(pattern) error = %v", err)
	}

	small := fx.insertTrade(t, buyCandidate(legislator.ID, "AAPL", 5000, time.Now().UTC()))
	if triggered, err := fx.svc.EvaluateTrade(ctx, small); err != nil || triggered != 0 {
		t.Fatalf("EvaluateTrade(small) = (%d, %v), want no trigger", triggered, err)
	}

	large := fx.insertTrade(t, buyCandidate(legislator.ID, "MSFT", 50000, time.Now().UTC()))
	if triggered, err := fx.svc.EvaluateTrade(ctx, large); err != nil || triggered != 1 {
		t.Fatalf("EvaluateTrade(large) = (%d, %v), want one trigger", triggered, err)
	}
}

type staticSource struct {
	records []ports.RawRecord
}

func (s *staticSource) FetchPage(_ context.Context, _ disclosure.SourceType, page, pageSize int) ([]ports.RawRecord, error) {
	start := page * pageSize
	if start >= len(s.records) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(s.records) {
		end = len(s.records)
	}
	return s.records[start:end], nil
}

// End-to-end: an ingested trade lands a notification via the observer hook.
func TestSyncTriggersAlertNotifications(t *testing.T) {
	fx := setupFixture(t, nil)
	ctx := context.Background()
	fx.seedTicker(t, "AAPL")

	if _, err := fx.svc.Create(ctx, CreateInput{UserID: "u1", Criteria: alert.StockCriteria("AAPL")}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	source := &staticSource{records: []ports.RawRecord{
		{
			TraderName:      "Jane Doe",
			DistrictField:   "CA",
			TickerSymbol:    "AAPL",
			TransactionDate: "2026-01-02",
			TransactionType: "Purchase",
			AmountRange:     "$15,001 - $50,000",
		},
	}}
	syncSvc := syncuc.NewService(
		source,
		fx.trades,
		fx.refs,
		sqlrepo.NewCheckpointRepository(fx.db),
		nil,
		fx.svc,
		syncuc.Defaults{PageSize: 100, MaxPages: 10, BatchSize: 50, ResolverCacheTTL: time.Hour},
	)

	result, err := syncSvc.Run(ctx, disclosure.SourceSenate, syncuc.Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("Run() created = %d, want 1", result.Created)
	}

	items, err := fx.svc.Notifications(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("Notifications() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Notifications() len = %d, want 1", len(items))
	}
	message := items[0].Message
	if !strings.Contains(message, "Sen. Jane Doe (CA)") || !strings.Contains(message, "bought AAPL") {
		t.Fatalf("notification message = %q", message)
	}
	if !strings.Contains(message, "2026-01-02") {
		t.Fatalf("notification message missing trade date: %q", message)
	}

	// Running the sync again must not duplicate the notification.
	if _, err := syncSvc.Run(ctx, disclosure.SourceSenate, syncuc.Options{}); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	items, err = fx.svc.Notifications(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("Notifications() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Notifications() after second run len = %d, want 1", len(items))
	}
}
