package model

import "time"

// Trade rows are unique on the natural key; the composite index is the
// backstop for the writer's check-then-act dedupe.
type Trade struct {
	ID              uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	TraderKind      string    `gorm:"column:trader_kind;type:text;not null;uniqueIndex:idx_trades_natural_key"`
	TraderID        uint64    `gorm:"column:trader_id;not null;uniqueIndex:idx_trades_natural_key"`
	TickerSymbol    string    `gorm:"column:ticker_symbol;type:text;not null;uniqueIndex:idx_trades_natural_key;index"`
	TransactionDate time.Time `gorm:"column:transaction_date;not null;uniqueIndex:idx_trades_natural_key"`
	TransactionType string    `gorm:"column:transaction_type;type:text;not null;uniqueIndex:idx_trades_natural_key"`

	AmountRangeText string     `gorm:"column:amount_range_text;type:text;not null;default:''"`
	EstimatedValue  *float64   `gorm:"column:estimated_value"`
	Quantity        *float64   `gorm:"column:quantity"`
	FilingDate      *time.Time `gorm:"column:filing_date"`
	RawPayload      string     `gorm:"column:raw_payload;type:text;not null;default:''"`
	CreatedAt       time.Time  `gorm:"column:created_at;not null"`
}

func (Trade) TableName() string {
	return "trades"
}
