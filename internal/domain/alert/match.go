package alert

import (
	"time"

	"tradewatch/internal/domain/disclosure"
)

// TradeFacts is the view of a persisted trade that predicates evaluate
// against.
type TradeFacts struct {
	TraderKind      disclosure.TraderKind
	TraderID        uint64
	TickerSymbol    string
	TransactionType disclosure.TransactionType
	TransactionDate time.Time
	EstimatedValue  *float64
}

// Matches applies the type-specific predicate. Identity matches for
// politician and stock alerts are re-checked here even though candidate
// selection already filters on them.
func (c Criteria) Matches(t TradeFacts, now time.Time) bool {
	switch c.Type {
	case TypePolitician:
		return c.PoliticianID != nil &&
			t.TraderKind == disclosure.TraderLegislator &&
			t.TraderID == *c.PoliticianID
	case TypeStock:
		return c.TickerSymbol != nil &&
			disclosure.NormalizeSymbol(t.TickerSymbol) == *c.TickerSymbol
	case TypePattern:
		return c.Pattern != nil && c.Pattern.Matches(t, now)
	default:
		return false
	}
}

// Matches evaluates the conjunctive pattern predicate. Absent fields are
// wildcards. A trade with no estimated value vacuously passes the value
// filter. The time-frame window is inclusive at both ends, so a trade exactly
// 24h old still matches a 24h frame.
func (p Pattern) Matches(t TradeFacts, now time.Time) bool {
	if p.TransactionType != nil && t.TransactionType != *p.TransactionType {
		return false
	}

	if t.EstimatedValue != nil {
		if p.MinValue != nil && *t.EstimatedValue < *p.MinValue {
			return false
		}
		if p.MaxValue != nil && *t.EstimatedValue > *p.MaxValue {
			return false
		}
	}

	if p.TimeFrame != nil {
		cutoff := now.Add(-p.TimeFrame.Duration())
		if t.TransactionDate.Before(cutoff) || t.TransactionDate.After(now) {
			return false
		}
	}

	return true
}
