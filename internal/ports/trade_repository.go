package ports

import (
	"context"
	"errors"
	"time"

	"tradewatch/internal/domain/disclosure"
)

var ErrTradeNotFound = errors.New("trade not found")

type Trade struct {
	ID              uint64
	TraderKind      disclosure.TraderKind
	TraderID        uint64
	TickerSymbol    string
	TransactionDate time.Time
	TransactionType disclosure.TransactionType
	AmountRangeText string
	EstimatedValue  *float64
	Quantity        *float64
	FilingDate      *time.Time
	RawPayload      string
	CreatedAt       time.Time
}

// TradeNaturalKey identifies a trade for dedupe purposes.
type TradeNaturalKey struct {
	TraderKind      disclosure.TraderKind
	TraderID        uint64
	TickerSymbol    string
	TransactionDate time.Time
	TransactionType disclosure.TransactionType
}

func (t Trade) NaturalKey() TradeNaturalKey {
	return TradeNaturalKey{
		TraderKind:      t.TraderKind,
		TraderID:        t.TraderID,
		TickerSymbol:    t.TickerSymbol,
		TransactionDate: t.TransactionDate,
		TransactionType: t.TransactionType,
	}
}

// TradeRepository persists trades under the natural-key uniqueness
// invariant. Insert relies on a composite unique index with
// insert-on-conflict-do-nothing semantics, so the check-then-act in the
// writer has a database-level backstop.
type TradeRepository interface {
	FindByNaturalKey(ctx context.Context, key TradeNaturalKey) (Trade, error)
	// Insert writes a validated candidate. inserted=false means the unique
	// index absorbed a concurrent duplicate; the existing row is returned.
	Insert(ctx context.Context, candidate disclosure.TradeCandidate) (trade Trade, inserted bool, err error)
	// UpdateEnrichment overwrites the mutable enrichment fields only.
	UpdateEnrichment(ctx context.Context, id uint64, candidate disclosure.TradeCandidate) (Trade, error)
	Count(ctx context.Context) (int64, error)
}
