package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradewatch/internal/domain/disclosure"
	"tradewatch/internal/errs"
	"tradewatch/internal/infrastructure/persistence/sql/model"
	"tradewatch/internal/ports"
)

type ReferenceRepository struct {
	db *gorm.DB
}

var _ ports.ReferenceRepository = (*ReferenceRepository)(nil)

func NewReferenceRepository(db *gorm.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) FindOrCreateLegislator(ctx context.Context, input ports.LegislatorCreate) (ports.Legislator, error) {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return ports.Legislator{}, err
	}

	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return ports.Legislator{}, errors.New("legislator full name is required")
	}
	if input.Chamber != disclosure.SourceSenate && input.Chamber != disclosure.SourceHouse {
		return ports.Legislator{}, fmt.Errorf("%w: %q", disclosure.ErrUnknownSourceType, input.Chamber)
	}

	districtCode := legislatorDistrictCode(input.State, input.District)

	row := model.Legislator{
		FullName:     fullName,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Chamber:      string(input.Chamber),
		DistrictCode: districtCode,
		State:        strings.ToUpper(strings.TrimSpace(input.State)),
		District:     input.District,
		CreatedAt:    time.Now().UTC(),
	}

	// Insert-or-ignore on the natural key, then read back: the unique index
	// closes the find/create race window.
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "full_name"}, {Name: "chamber"}, {Name: "district_code"}},
		DoNothing: true,
	}).Create(&row).Error; err != nil {
		return ports.Legislator{}, errs.Wrap(err, "insert legislator")
	}

	var found model.Legislator
	if err := db.
		Where("full_name = ? AND chamber = ? AND district_code = ?", fullName, string(input.Chamber), districtCode).
		Take(&found).Error; err != nil {
		return ports.Legislator{}, errs.Wrap(err, "query legislator by natural key")
	}

	return mapLegislator(found), nil
}

func (r *ReferenceRepository) FindOrCreateInsider(ctx context.Context, input ports.InsiderCreate) (ports.Insider, error) {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return ports.Insider{}, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return ports.Insider{}, errors.New("insider name is required")
	}
	symbol := disclosure.NormalizeSymbol(input.TickerSymbol)
	if symbol == "" {
		return ports.Insider{}, errors.New("insider ticker symbol is required")
	}

	row := model.Insider{
		Name:         name,
		TickerSymbol: symbol,
		Role:         strings.TrimSpace(input.Role),
		CreatedAt:    time.Now().UTC(),
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "ticker_symbol"}},
		DoNothing: true,
	}).Create(&row).Error; err != nil {
		return ports.Insider{}, errs.Wrap(err, "insert insider")
	}

	var found model.Insider
	if err := db.Where("name = ? AND ticker_symbol = ?", name, symbol).Take(&found).Error; err != nil {
		return ports.Insider{}, errs.Wrap(err, "query insider by natural key")
	}

	return mapInsider(found), nil
}

func (r *ReferenceRepository) FindOrCreateTicker(ctx context.Context, symbol, displayName string) (ports.Ticker, error) {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return ports.Ticker{}, err
	}

	normalized := disclosure.NormalizeSymbol(symbol)
	if normalized == "" {
		return ports.Ticker{}, errors.New("ticker symbol is required")
	}

	row := model.Ticker{
		Symbol:      normalized,
		DisplayName: strings.TrimSpace(displayName),
		CreatedAt:   time.Now().UTC(),
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoNothing: true,
	}).Create(&row).Error; err != nil {
		return ports.Ticker{}, errs.Wrap(err, "insert ticker")
	}

	var found model.Ticker
	if err := db.Where("symbol = ?", normalized).Take(&found).Error; err != nil {
		return ports.Ticker{}, errs.Wrap(err, "query ticker by symbol")
	}

	return mapTicker(found), nil
}

func (r *ReferenceRepository) GetLegislator(ctx context.Context, id uint64) (ports.Legislator, error) {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return ports.Legislator{}, err
	}

	var row model.Legislator
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Legislator{}, ports.ErrLegislatorNotFound
		}
		return ports.Legislator{}, errs.Wrap(err, "query legislator")
	}
	return mapLegislator(row), nil
}

func (r *ReferenceRepository) GetInsider(ctx context.Context, id uint64) (ports.Insider, error) {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return ports.Insider{}, err
	}

	var row model.Insider
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Insider{}, ports.ErrInsiderNotFound
		}
		return ports.Insider{}, errs.Wrap(err, "query insider")
	}
	return mapInsider(row), nil
}

func (r *ReferenceRepository) GetTicker(ctx context.Context, symbol string) (ports.Ticker, error) {
	db, err := dbFor(ctx, r.db)
	if err != nil {
		return ports.Ticker{}, err
	}

	var row model.Ticker
	if err := db.Where("symbol = ?", disclosure.NormalizeSymbol(symbol)).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Ticker{}, ports.ErrTickerNotFound
		}
		return ports.Ticker{}, errs.Wrap(err, "query ticker")
	}
	return mapTicker(row), nil
}

func legislatorDistrictCode(state string, district *int) string {
	code := strings.ToUpper(strings.TrimSpace(state))
	if district != nil {
		code = fmt.Sprintf("%s%d", code, *district)
	}
	return code
}

func mapLegislator(row model.Legislator) ports.Legislator {
	return ports.Legislator{
		ID:        row.ID,
		FullName:  row.FullName,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Chamber:   disclosure.SourceType(row.Chamber),
		State:     row.State,
		District:  row.District,
		CreatedAt: row.CreatedAt,
	}
}

func mapInsider(row model.Insider) ports.Insider {
	return ports.Insider{
		ID:           row.ID,
		Name:         row.Name,
		TickerSymbol: row.TickerSymbol,
		Role:         row.Role,
		CreatedAt:    row.CreatedAt,
	}
}

func mapTicker(row model.Ticker) ports.Ticker {
	return ports.Ticker{
		ID:          row.ID,
		Symbol:      row.Symbol,
		DisplayName: row.DisplayName,
		CreatedAt:   row.CreatedAt,
	}
}
