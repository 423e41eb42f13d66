package repository

import (
	"context"
	"errors"
	"testing"

	"tradewatch/internal/domain/disclosure"
	"tradewatch/internal/ports"
)

func TestFindOrCreateLegislatorIsIdempotent(t *testing.T) {
	repo := NewReferenceRepository(setupDB(t))
	ctx := context.Background()

	district := 12
	input := ports.LegislatorCreate{
		FullName: "Jane Doe",
		Chamber:  disclosure.SourceHouse,
		State:    "CA",
		District: &district,
	}

	first, err := repo.FindOrCreateLegislator(ctx, input)
	if err != nil {
		t.Fatalf("FindOrCreateLegislator() error = %v", err)
	}
	second, err := repo.FindOrCreateLegislator(ctx, input)
	if err != nil {
		t.Fatalf("second FindOrCreateLegislator() error = %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("find-or-create produced two rows: %d, %d", first.ID, second.ID)
	}

	// Same name in another chamber is a different person record.
	senator, err := repo.FindOrCreateLegislator(ctx, ports.LegislatorCreate{
		FullName: "Jane Doe",
		Chamber:  disclosure.SourceSenate,
		State:    "CA",
	})
	if err != nil {
		t.Fatalf("FindOrCreateLegislator(senate) error = %v", err)
	}
	if senator.ID == first.ID {
		t.Fatalf("chamber must be part of the natural key")
	}

	got, err := repo.GetLegislator(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetLegislator() error = %v", err)
	}
	if got.FullName != "Jane Doe" || got.State != "CA" || got.District == nil || *got.District != 12 {
		t.Fatalf("GetLegislator() = %+v", got)
	}

	if _, err := repo.GetLegislator(ctx, 9999); !errors.Is(err, ports.ErrLegislatorNotFound) {
		t.Fatalf("GetLegislator(missing) error = %v, want ErrLegislatorNotFound", err)
	}
}

func TestFindOrCreateInsiderScopedByTicker(t *testing.T) {
	repo := NewReferenceRepository(setupDB(t))
	ctx := context.Background()

	first, err := repo.FindOrCreateInsider(ctx, ports.InsiderCreate{
		Name:         "John Smith",
		TickerSymbol: "aapl",
		Role:         "CFO",
	})
	if err != nil {
		t.Fatalf("FindOrCreateInsider() error = %v", err)
	}
	if first.TickerSymbol != "AAPL" {
		t.Fatalf("FindOrCreateInsider() symbol = %q, want normalized AAPL", first.TickerSymbol)
	}

	same, err := repo.FindOrCreateInsider(ctx, ports.InsiderCreate{
		Name:         "John Smith",
		TickerSymbol: "AAPL",
	})
	if err != nil {
		t.Fatalf("second FindOrCreateInsider() error = %v", err)
	}
	if same.ID != first.ID {
		t.Fatalf("find-or-create produced two rows: %d, %d", first.ID, same.ID)
	}

	// Same name at another company is a different insider.
	other, err := repo.FindOrCreateInsider(ctx, ports.InsiderCreate{
		Name:         "John Smith",
		TickerSymbol: "MSFT",
	})
	if err != nil {
		t.Fatalf("FindOrCreateInsider(MSFT) error = %v", err)
	}
	if other.ID == first.ID {
		t.Fatalf("ticker must be part of the insider natural key")
	}
}

func TestFindOrCreateTickerNormalizesSymbol(t *testing.T) {
	repo := NewReferenceRepository(setupDB(t))
	ctx := context.Background()

	first, err := repo.FindOrCreateTicker(ctx, " aapl ", "Apple Inc.")
	if err != nil {
		t.Fatalf("FindOrCreateTicker() error = %v", err)
	}
	if first.Symbol != "AAPL" {
		t.Fatalf("FindOrCreateTicker() symbol = %q", first.Symbol)
	}

	same, err := repo.FindOrCreateTicker(ctx, "AAPL", "")
	if err != nil {
		t.Fatalf("second FindOrCreateTicker() error = %v", err)
	}
	if same.ID != first.ID {
		t.Fatalf("find-or-create produced two rows: %d, %d", first.ID, same.ID)
	}

	got, err := repo.GetTicker(ctx, "aapl")
	if err != nil {
		t.Fatalf("GetTicker() error = %v", err)
	}
	if got.DisplayName != "Apple Inc." {
		t.Fatalf("GetTicker() display name = %q", got.DisplayName)
	}

	if _, err := repo.GetTicker(ctx, "NOPE"); !errors.Is(err, ports.ErrTickerNotFound) {
		t.Fatalf("GetTicker(missing) error = %v, want ErrTickerNotFound", err)
	}
}
