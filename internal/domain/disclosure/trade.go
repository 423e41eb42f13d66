package disclosure

import (
	"fmt"
	"strings"
	"time"
)

type TraderKind string

const (
	TraderLegislator TraderKind = "legislator"
	TraderInsider    TraderKind = "insider"
)

func ParseTraderKind(raw string) (TraderKind, error) {
	switch TraderKind(strings.ToLower(strings.TrimSpace(raw))) {
	case TraderLegislator:
		return TraderLegislator, nil
	case TraderInsider:
		return TraderInsider, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTraderKind, raw)
	}
}

type TransactionType string

const (
	TxBuy      TransactionType = "buy"
	TxSell     TransactionType = "sell"
	TxExchange TransactionType = "exchange"
)

// ParseTransactionType normalizes the provider vocabulary ("Purchase",
// "Sale (Full)", ...) onto the three canonical transaction types.
func ParseTransactionType(raw string) (TransactionType, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case normalized == "buy" || strings.HasPrefix(normalized, "purchase"):
		return TxBuy, nil
	case normalized == "sell" || strings.HasPrefix(normalized, "sale"):
		return TxSell, nil
	case strings.HasPrefix(normalized, "exchange"):
		return TxExchange, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTransactionType, raw)
	}
}

// NormalizeSymbol upper-cases and trims a ticker symbol so natural keys and
// alert lookups compare case-insensitively.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// TradeCandidate is a fully resolved trade ready to be written. TraderID
// references the resolved legislator or insider row depending on TraderKind.
type TradeCandidate struct {
	TraderKind      TraderKind
	TraderID        uint64
	TickerSymbol    string
	TransactionDate time.Time
	TransactionType TransactionType

	// Enrichment fields, mutable under force-update only.
	AmountRangeText string
	EstimatedValue  *float64
	Quantity        *float64
	FilingDate      *time.Time
	RawPayload      string
}

// Validate checks field constraints before insert. Natural-key fields must be
// present; numeric enrichment fields must be non-negative; a filing can never
// precede its transaction.
func (c TradeCandidate) Validate() error {
	if _, err := ParseTraderKind(string(c.TraderKind)); err != nil {
		return err
	}
	if c.TraderID == 0 {
		return ErrMissingTrader
	}
	if strings.TrimSpace(c.TickerSymbol) == "" {
		return ErrMissingTicker
	}
	if c.TransactionDate.IsZero() {
		return ErrMissingTransactionDate
	}
	if _, err := ParseTransactionType(string(c.TransactionType)); err != nil {
		return err
	}
	if c.EstimatedValue != nil && *c.EstimatedValue < 0 {
		return ErrNegativeEstimatedValue
	}
	if c.Quantity != nil && *c.Quantity < 0 {
		return ErrNegativeQuantity
	}
	if c.FilingDate != nil && c.FilingDate.Before(c.TransactionDate) {
		return ErrFilingBeforeTransaction
	}
	return nil
}

// NaturalKey is the string form of the uniqueness key, used for cache keys
// and log lines. Dedupe itself is enforced by a composite unique index.
func (c TradeCandidate) NaturalKey() string {
	return fmt.Sprintf("%s:%d:%s:%s:%s",
		c.TraderKind,
		c.TraderID,
		NormalizeSymbol(c.TickerSymbol),
		c.TransactionDate.UTC().Format("2006-01-02"),
		c.TransactionType,
	)
}
