package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradewatch/internal/domain/disclosure"
	"tradewatch/internal/errs"
	"tradewatch/internal/infrastructure/persistence/sql/model"
	"tradewatch/internal/ports"
)

type TradeRepository struct {
	db *gorm.DB
}

var _ ports.TradeRepository = (*TradeRepository)(nil)

func NewTradeRepository(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

func (r *TradeRepository) FindByNaturalKey(ctx context.Context, key ports.TradeNaturalKey) (ports.Trade, error) {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return ports.Trade{}, err
	}

	var row model.Trade
	if err := db.
		Where("trader_kind = ? AND trader_id = ? AND ticker_symbol = ? AND transaction_date = ? AND transaction_type = ?",
			string(key.TraderKind),
			key.TraderID,
			disclosure.NormalizeSymbol(key.TickerSymbol),
			normalizeDate(key.TransactionDate),
			string(key.TransactionType),
		).
		Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Trade{}, ports.ErrTradeNotFound
		}
		return ports.Trade{}, errs.Wrap(err, "query trade by natural key")
	}

	return mapTrade(row), nil
}

func (r *TradeRepository) Insert(ctx context.Context, candidate disclosure.TradeCandidate) (ports.Trade, bool, error) {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return ports.Trade{}, false, err
	}

	row := model.Trade{
		TraderKind:      string(candidate.TraderKind),
		TraderID:        candidate.TraderID,
		TickerSymbol:    disclosure.NormalizeSymbol(candidate.TickerSymbol),
		TransactionDate: normalizeDate(candidate.TransactionDate),
		TransactionType: string(candidate.TransactionType),
		AmountRangeText: candidate.AmountRangeText,
		EstimatedValue:  candidate.EstimatedValue,
		Quantity:        candidate.Quantity,
		FilingDate:      normalizeDatePtr(candidate.FilingDate),
		RawPayload:      candidate.RawPayload,
		CreatedAt:       time.Now().UTC(),
	}

	result := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "trader_kind"}, {Name: "trader_id"}, {Name: "ticker_symbol"},
			{Name: "transaction_date"}, {Name: "transaction_type"},
		},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return ports.Trade{}, false, errs.Wrap(result.Error, "insert trade")
	}

	if result.RowsAffected == 0 {
		// The unique index absorbed a concurrent duplicate; hand the caller
		// the row that won.
		existing, err := r.FindByNaturalKey(ctx, ports.TradeNaturalKey{
			TraderKind:      candidate.TraderKind,
			TraderID:        candidate.TraderID,
			TickerSymbol:    candidate.TickerSymbol,
			TransactionDate: candidate.TransactionDate,
			TransactionType: candidate.TransactionType,
		})
		if err != nil {
			return ports.Trade{}, false, err
		}
		return existing, false, nil
	}

	return mapTrade(row), true, nil
}

func (r *TradeRepository) UpdateEnrichment(ctx context.Context, id uint64, candidate disclosure.TradeCandidate) (ports.Trade, error) {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return ports.Trade{}, err
	}

	updates := map[string]any{
		"amount_range_text": candidate.AmountRangeText,
		"estimated_value":   candidate.EstimatedValue,
		"quantity":          candidate.Quantity,
		"filing_date":       normalizeDatePtr(candidate.FilingDate),
		"raw_payload":       candidate.RawPayload,
	}

	result := db.Model(&model.Trade{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return ports.Trade{}, errs.Wrap(result.Error, "update trade enrichment")
	}
	if result.RowsAffected == 0 {
		return ports.Trade{}, ports.ErrTradeNotFound
	}

	var row model.Trade
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		return ports.Trade{}, errs.Wrap(err, "reload trade")
	}
	return mapTrade(row), nil
}

func (r *TradeRepository) Count(ctx context.Context) (int64, error) {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.Trade{}).Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count trades")
	}
	return count, nil
}

// normalizeDate collapses a timestamp to its UTC calendar day so natural-key
// equality is insensitive to the provider's time-of-day noise.
func normalizeDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func normalizeDatePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	n := normalizeDate(*t)
	return &n
}

func mapTrade(row model.Trade) ports.Trade {
	return ports.Trade{
		ID:              row.ID,
		TraderKind:      disclosure.TraderKind(row.TraderKind),
		TraderID:        row.TraderID,
		TickerSymbol:    row.TickerSymbol,
		TransactionDate: row.TransactionDate,
		TransactionType: disclosure.TransactionType(row.TransactionType),
		AmountRangeText: row.AmountRangeText,
		EstimatedValue:  row.EstimatedValue,
		Quantity:        row.Quantity,
		FilingDate:      row.FilingDate,
		RawPayload:      row.RawPayload,
		CreatedAt:       row.CreatedAt,
	}
}
