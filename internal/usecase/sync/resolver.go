package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"tradewatch/internal/bootstrap/logging"
	"tradewatch/internal/domain/disclosure"
	"tradewatch/internal/errs"
	"tradewatch/internal/ports"
)

// resolveCandidate turns one raw provider record into a write-ready trade
// candidate: parses enums and dates, then finds-or-creates the referenced
// ticker and trader rows.
func (s *Service) resolveCandidate(ctx context.Context, source disclosure.SourceType, raw ports.RawRecord) (disclosure.TradeCandidate, error) {
	txType, err := disclosure.ParseTransactionType(raw.TransactionType)
	if err != nil {
		return disclosure.TradeCandidate{}, err
	}

	txDate, err := parseProviderDate(raw.TransactionDate)
	if err != nil {
		return disclosure.TradeCandidate{}, errs.Wrap(err, "parse transaction date")
	}

	var filingDate *time.Time
	if strings.TrimSpace(raw.FilingDate) != "" {
		parsed, err := parseProviderDate(raw.FilingDate)
		if err != nil {
			return disclosure.TradeCandidate{}, errs.Wrap(err, "parse filing date")
		}
		filingDate = &parsed
	}

	symbol := disclosure.NormalizeSymbol(raw.TickerSymbol)
	if symbol == "" {
		return disclosure.TradeCandidate{}, disclosure.ErrMissingTicker
	}
	if _, err := s.resolveTicker(ctx, symbol, raw.CompanyName); err != nil {
		return disclosure.TradeCandidate{}, err
	}

	var traderID uint64
	kind := source.TraderKind()
	if kind == disclosure.TraderLegislator {
		traderID, err = s.resolveLegislator(ctx, source, raw)
	} else {
		traderID, err = s.resolveInsider(ctx, raw, symbol)
	}
	if err != nil {
		return disclosure.TradeCandidate{}, err
	}

	return disclosure.TradeCandidate{
		TraderKind:      kind,
		TraderID:        traderID,
		TickerSymbol:    symbol,
		TransactionDate: txDate,
		TransactionType: txType,
		AmountRangeText: strings.TrimSpace(raw.AmountRange),
		EstimatedValue:  raw.EstimatedValue,
		Quantity:        raw.Quantity,
		FilingDate:      filingDate,
		RawPayload:      raw.Payload,
	}, nil
}

func (s *Service) resolveTicker(ctx context.Context, symbol, displayName string) (uint64, error) {
	return s.cachedID(ctx, "resolve:ticker:"+symbol, func(ctx context.Context) (uint64, error) {
		ticker, err := s.refs.FindOrCreateTicker(ctx, symbol, displayName)
		if err != nil {
			return 0, errs.Wrap(err, "resolve ticker")
		}
		return ticker.ID, nil
	})
}

func (s *Service) resolveLegislator(ctx context.Context, source disclosure.SourceType, raw ports.RawRecord) (uint64, error) {
	fullName := strings.TrimSpace(raw.TraderName)
	if fullName == "" {
		fullName = strings.TrimSpace(strings.TrimSpace(raw.FirstName) + " " + strings.TrimSpace(raw.LastName))
	}
	if fullName == "" {
		return 0, disclosure.ErrMissingTrader
	}

	district, err := disclosure.ParseDistrictField(source, raw.DistrictField)
	if err != nil {
		return 0, err
	}

	key := fmt.Sprintf("resolve:legislator:%s:%s:%s", source, district, fullName)
	return s.cachedID(ctx, key, func(ctx context.Context) (uint64, error) {
		legislator, err := s.refs.FindOrCreateLegislator(ctx, ports.LegislatorCreate{
			FullName:  fullName,
			FirstName: strings.TrimSpace(raw.FirstName),
			LastName:  strings.TrimSpace(raw.LastName),
			Chamber:   source,
			State:     district.State,
			District:  district.Number,
		})
		if err != nil {
			return 0, errs.Wrap(err, "resolve legislator")
		}
		return legislator.ID, nil
	})
}

func (s *Service) resolveInsider(ctx context.Context, raw ports.RawRecord, symbol string) (uint64, error) {
	name := strings.TrimSpace(raw.TraderName)
	if name == "" {
		return 0, disclosure.ErrMissingTrader
	}

	key := fmt.Sprintf("resolve:insider:%s:%s", symbol, name)
	return s.cachedID(ctx, key, func(ctx context.Context) (uint64, error) {
		insider, err := s.refs.FindOrCreateInsider(ctx, ports.InsiderCreate{
			Name:         name,
			TickerSymbol: symbol,
			Role:         strings.TrimSpace(raw.InsiderRole),
		})
		if err != nil {
			return 0, errs.Wrap(err, "resolve insider")
		}
		return insider.ID, nil
	})
}

// cachedID memoizes a natural-key resolution. Cache failures degrade to the
// underlying lookup; they never fail the record.
func (s *Service) cachedID(ctx context.Context, key string, miss func(ctx context.Context) (uint64, error)) (uint64, error) {
	if s.cache != nil {
		value, found, err := s.cache.Get(ctx, key)
		if err != nil {
			logging.Warn(ctx, "resolver cache read failed", slog.String("key", key), slog.Any("err", errs.Loggable(err)))
		} else if found {
			id, parseErr := strconv.ParseUint(value, 10, 64)
			if parseErr == nil && id > 0 {
				return id, nil
			}
		}
	}

	id, err := miss(ctx)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, strconv.FormatUint(id, 10), s.defaults.ResolverCacheTTL); err != nil {
			logging.Warn(ctx, "resolver cache write failed", slog.String("key", key), slog.Any("err", errs.Loggable(err)))
		}
	}
	return id, nil
}

func parseProviderDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, errors.New("empty date")
	}

	for _, layout := range []string{"2006-01-02", time.RFC3339, "01/02/2006"} {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}
