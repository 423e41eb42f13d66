package alert

import (
	"testing"
	"time"

	"tradewatch/internal/domain/disclosure"
)

func tradeFacts(value *float64, age time.Duration, now time.Time) TradeFacts {
	return TradeFacts{
		TraderKind:      disclosure.TraderLegislator,
		TraderID:        7,
		TickerSymbol:    "AAPL",
		TransactionType: disclosure.TxBuy,
		TransactionDate: now.Add(-age),
		EstimatedValue:  value,
	}
}

func TestCriteriaMatchesIdentity(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	facts := tradeFacts(floatPtr(25000), time.Hour, now)

	if !PoliticianCriteria(7).Matches(facts, now) {
		t.Fatalf("politician alert on trader 7 must match")
	}
	if PoliticianCriteria(8).Matches(facts, now) {
		t.Fatalf("politician alert on trader 8 must not match")
	}

	insiderFacts := facts
	insiderFacts.TraderKind = disclosure.TraderInsider
	if PoliticianCriteria(7).Matches(insiderFacts, now) {
		t.Fatalf("politician alert must never match insider trades")
	}

	if !StockCriteria("aapl").Matches(facts, now) {
		t.Fatalf("stock alert must match symbol case-insensitively")
	}
	if StockCriteria("TSLA").Matches(facts, now) {
		t.Fatalf("stock alert on another symbol must not match")
	}
}

func TestPatternMatchesValueBounds(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	buy := disclosure.TxBuy
	p := Pattern{MinValue: floatPtr(10000), MaxValue: floatPtr(50000), TransactionType: &buy}

	if !p.Matches(tradeFacts(floatPtr(25000), time.Hour, now), now) {
		t.Fatalf("in-range buy must match")
	}
	if !p.Matches(tradeFacts(floatPtr(10000), time.Hour, now), now) {
		t.Fatalf("value equal to min must match")
	}
	if !p.Matches(tradeFacts(floatPtr(50000), time.Hour, now), now) {
		t.Fatalf("value equal to max must match")
	}
	if p.Matches(tradeFacts(floatPtr(9999), time.Hour, now), now) {
		t.Fatalf("value below min must not match")
	}
	if p.Matches(tradeFacts(floatPtr(50001), time.Hour, now), now) {
		t.Fatalf("value above max must not match")
	}

	sellFacts := tradeFacts(floatPtr(25000), time.Hour, now)
	sellFacts.TransactionType = disclosure.TxSell
	if p.Matches(sellFacts, now) {
		t.Fatalf("sell must not match a buy-only pattern")
	}
}

func TestPatternMatchesMissingEstimatedValue(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	p := Pattern{MinValue: floatPtr(10000), MaxValue: floatPtr(50000)}

	// A trade without an estimated value passes the value filter vacuously.
	if !p.Matches(tradeFacts(nil, time.Hour, now), now) {
		t.Fatalf("nil estimated value must pass value bounds")
	}
}

func TestPatternMatchesTimeFrameBoundary(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	frame := TimeFrameDay
	p := Pattern{TimeFrame: &frame}

	if !p.Matches(tradeFacts(nil, 23*time.Hour, now), now) {
		t.Fatalf("trade 23h old must match a 24h frame")
	}
	if !p.Matches(tradeFacts(nil, 24*time.Hour, now), now) {
		t.Fatalf("trade exactly 24h old must match a 24h frame, window is inclusive")
	}
	if p.Matches(tradeFacts(nil, 25*time.Hour, now), now) {
		t.Fatalf("trade 25h old must not match a 24h frame")
	}
	if p.Matches(tradeFacts(nil, -time.Hour, now), now) {
		t.Fatalf("a future-dated trade must not match a time-framed pattern")
	}
}

func TestPatternMatchesAllWildcards(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	if !(Pattern{}).Matches(tradeFacts(nil, 1000*time.Hour, now), now) {
		t.Fatalf("all-wildcard pattern must match any trade")
	}
}
