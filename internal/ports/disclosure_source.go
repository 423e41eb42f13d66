package ports

import (
	"context"

	"tradewatch/internal/domain/disclosure"
)

// RawRecord is one disclosure record as delivered by the external provider,
// before entity resolution. String fields carry the provider's raw values.
type RawRecord struct {
	TraderName string `json:"trader_name"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`

	// Legislative streams only: two-letter state code, with the numeric
	// district appended for House filings.
	DistrictField string `json:"district"`

	// Insider stream only.
	InsiderRole string `json:"insider_role"`

	TickerSymbol    string   `json:"ticker_symbol"`
	CompanyName     string   `json:"company_name"`
	TransactionDate string   `json:"transaction_date"`
	TransactionType string   `json:"transaction_type"`
	AmountRange     string   `json:"amount_range"`
	EstimatedValue  *float64 `json:"estimated_value"`
	Quantity        *float64 `json:"quantity"`
	FilingDate      string   `json:"filing_date"`

	// Raw provider payload, persisted verbatim alongside the trade.
	Payload string `json:"payload"`
}

// DisclosureSource is the paged-fetch capability of the external data
// provider. Implementations are expected to handle retries/backoff
// themselves; the sync orchestrator treats the multi-page result as a single
// ordered sequence indexed from 0. An empty page signals the end of the
// stream.
type DisclosureSource interface {
	FetchPage(ctx context.Context, source disclosure.SourceType, page, pageSize int) ([]RawRecord, error)
}
