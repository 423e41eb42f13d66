package alert

import (
	"fmt"
	"strings"
	"time"

	"tradewatch/internal/domain/disclosure"
)

type Type string

const (
	TypePolitician Type = "politician"
	TypeStock      Type = "stock"
	TypePattern    Type = "pattern"
)

func ParseType(raw string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(raw))) {
	case TypePolitician:
		return TypePolitician, nil
	case TypeStock:
		return TypeStock, nil
	case TypePattern:
		return TypePattern, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, raw)
	}
}

type Status string

const (
	StatusActive  Status = "active"
	StatusPaused  Status = "paused"
	StatusDeleted Status = "deleted"
)

func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusActive:
		return StatusActive, nil
	case StatusPaused:
		return StatusPaused, nil
	case StatusDeleted:
		return StatusDeleted, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
}

type TimeFrame string

const (
	TimeFrameHour  TimeFrame = "1h"
	TimeFrameDay   TimeFrame = "24h"
	TimeFrameWeek  TimeFrame = "7d"
	TimeFrameMonth TimeFrame = "30d"
)

func ParseTimeFrame(raw string) (TimeFrame, error) {
	switch TimeFrame(strings.ToLower(strings.TrimSpace(raw))) {
	case TimeFrameHour:
		return TimeFrameHour, nil
	case TimeFrameDay:
		return TimeFrameDay, nil
	case TimeFrameWeek:
		return TimeFrameWeek, nil
	case TimeFrameMonth:
		return TimeFrameMonth, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTimeFrame, raw)
	}
}

func (f TimeFrame) Duration() time.Duration {
	switch f {
	case TimeFrameHour:
		return time.Hour
	case TimeFrameDay:
		return 24 * time.Hour
	case TimeFrameWeek:
		return 7 * 24 * time.Hour
	case TimeFrameMonth:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// Pattern is the multi-field predicate of a pattern alert. A nil field is a
// wildcard and always passes.
type Pattern struct {
	MinValue        *float64                    `json:"min_value,omitempty"`
	MaxValue        *float64                    `json:"max_value,omitempty"`
	TransactionType *disclosure.TransactionType `json:"transaction_type,omitempty"`
	TimeFrame       *TimeFrame                  `json:"time_frame,omitempty"`
}

func (p Pattern) Validate() error {
	if p.MinValue != nil && *p.MinValue < 0 {
		return ErrNegativePatternValue
	}
	if p.MaxValue != nil && *p.MaxValue < 0 {
		return ErrNegativePatternValue
	}
	if p.MinValue != nil && p.MaxValue != nil && *p.MinValue > *p.MaxValue {
		return ErrMinAboveMax
	}
	if p.TransactionType != nil {
		if _, err := disclosure.ParseTransactionType(string(*p.TransactionType)); err != nil {
			return err
		}
	}
	if p.TimeFrame != nil {
		if _, err := ParseTimeFrame(string(*p.TimeFrame)); err != nil {
			return err
		}
	}
	return nil
}

func (p Pattern) Equal(other Pattern) bool {
	return equalFloatPtr(p.MinValue, other.MinValue) &&
		equalFloatPtr(p.MaxValue, other.MaxValue) &&
		equalPtr(p.TransactionType, other.TransactionType) &&
		equalPtr(p.TimeFrame, other.TimeFrame)
}

// Criteria is the tagged target of an alert: exactly one of PoliticianID,
// TickerSymbol or Pattern is set, selected by Type.
type Criteria struct {
	Type         Type
	PoliticianID *uint64
	TickerSymbol *string
	Pattern      *Pattern
}

func PoliticianCriteria(politicianID uint64) Criteria {
	return Criteria{Type: TypePolitician, PoliticianID: &politicianID}
}

func StockCriteria(symbol string) Criteria {
	normalized := disclosure.NormalizeSymbol(symbol)
	return Criteria{Type: TypeStock, TickerSymbol: &normalized}
}

func PatternCriteria(p Pattern) Criteria {
	return Criteria{Type: TypePattern, Pattern: &p}
}

func (c Criteria) Validate() error {
	if _, err := ParseType(string(c.Type)); err != nil {
		return err
	}

	set := 0
	if c.PoliticianID != nil {
		set++
	}
	if c.TickerSymbol != nil {
		set++
	}
	if c.Pattern != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("%w: exactly one target must be set, got %d", ErrCriteriaTargetMismatch, set)
	}

	switch c.Type {
	case TypePolitician:
		if c.PoliticianID == nil || *c.PoliticianID == 0 {
			return fmt.Errorf("%w: politician alert requires a politician id", ErrCriteriaTargetMismatch)
		}
	case TypeStock:
		if c.TickerSymbol == nil || strings.TrimSpace(*c.TickerSymbol) == "" {
			return fmt.Errorf("%w: stock alert requires a ticker symbol", ErrCriteriaTargetMismatch)
		}
	case TypePattern:
		if c.Pattern == nil {
			return fmt.Errorf("%w: pattern alert requires a pattern", ErrCriteriaTargetMismatch)
		}
		if err := c.Pattern.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Equal compares criteria structurally; used for duplicate suppression at
// alert creation.
func (c Criteria) Equal(other Criteria) bool {
	if c.Type != other.Type {
		return false
	}
	switch c.Type {
	case TypePolitician:
		return equalPtr(c.PoliticianID, other.PoliticianID)
	case TypeStock:
		return equalPtr(c.TickerSymbol, other.TickerSymbol)
	case TypePattern:
		if c.Pattern == nil || other.Pattern == nil {
			return c.Pattern == other.Pattern
		}
		return c.Pattern.Equal(*other.Pattern)
	default:
		return false
	}
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalFloatPtr(a, b *float64) bool {
	return equalPtr(a, b)
}
