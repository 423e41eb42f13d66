package ports

import (
	"context"
	"errors"
	"time"

	"tradewatch/internal/domain/disclosure"
)

var (
	ErrLegislatorNotFound = errors.New("legislator not found")
	ErrInsiderNotFound    = errors.New("insider not found")
	ErrTickerNotFound     = errors.New("ticker not found")
)

type Legislator struct {
	ID        uint64
	FullName  string
	FirstName string
	LastName  string
	Chamber   disclosure.SourceType
	State     string
	District  *int
	CreatedAt time.Time
}

type LegislatorCreate struct {
	FullName  string
	FirstName string
	LastName  string
	Chamber   disclosure.SourceType
	State     string
	District  *int
}

type Insider struct {
	ID           uint64
	Name         string
	TickerSymbol string
	Role         string
	CreatedAt    time.Time
}

type InsiderCreate struct {
	Name         string
	TickerSymbol string
	Role         string
}

type Ticker struct {
	ID          uint64
	Symbol      string
	DisplayName string
	CreatedAt   time.Time
}

// ReferenceRepository resolves normalized reference entities by natural key,
// creating them lazily on first observation. Find-or-create must never
// produce duplicate rows for the same natural key.
type ReferenceRepository interface {
	FindOrCreateLegislator(ctx context.Context, input LegislatorCreate) (Legislator, error)
	FindOrCreateInsider(ctx context.Context, input InsiderCreate) (Insider, error)
	FindOrCreateTicker(ctx context.Context, symbol, displayName string) (Ticker, error)

	GetLegislator(ctx context.Context, id uint64) (Legislator, error)
	GetInsider(ctx context.Context, id uint64) (Insider, error)
	GetTicker(ctx context.Context, symbol string) (Ticker, error)
}
