package sync

import (
	"context"
	"errors"

	"tradewatch/internal/domain/disclosure"
	"tradewatch/internal/errs"
	"tradewatch/internal/ports"
)

type writeAction string

const (
	actionCreated writeAction = "created"
	actionUpdated writeAction = "updated"
	actionSkipped writeAction = "skipped"
)

// processRecord resolves one raw record and writes it, classifying the
// outcome as created, updated or skipped.
func (s *Service) processRecord(ctx context.Context, source disclosure.SourceType, raw ports.RawRecord, forceUpdate bool) (writeAction, error) {
	candidate, err := s.resolveCandidate(ctx, source, raw)
	if err != nil {
		return "", err
	}
	return s.writeTrade(ctx, candidate, forceUpdate)
}

// writeTrade enforces the natural-key dedupe invariant. The pre-check keeps
// the common duplicate path cheap; the unique index behind
// TradeRepository.Insert closes the check-then-act window.
func (s *Service) writeTrade(ctx context.Context, candidate disclosure.TradeCandidate, forceUpdate bool) (writeAction, error) {
	existing, err := s.trades.FindByNaturalKey(ctx, ports.TradeNaturalKey{
		TraderKind:      candidate.TraderKind,
		TraderID:        candidate.TraderID,
		TickerSymbol:    candidate.TickerSymbol,
		TransactionDate: candidate.TransactionDate,
		TransactionType: candidate.TransactionType,
	})
	switch {
	case err == nil:
		if !forceUpdate {
			return actionSkipped, nil
		}
		return s.updateEnrichment(ctx, existing.ID, candidate)
	case errors.Is(err, ports.ErrTradeNotFound):
		// fall through to insert
	default:
		return "", errs.Wrap(err, "lookup trade")
	}

	if err := candidate.Validate(); err != nil {
		return "", err
	}

	trade, inserted, err := s.trades.Insert(ctx, candidate)
	if err != nil {
		return "", errs.Wrap(err, "insert trade")
	}
	if !inserted {
		// Lost a race with a concurrent writer; treat like the found path.
		if !forceUpdate {
			return actionSkipped, nil
		}
		return s.updateEnrichment(ctx, trade.ID, candidate)
	}

	// Trigger point for alert evaluation: once, synchronously, only for
	// newly created trades.
	if s.observer != nil {
		s.observer.TradeCreated(ctx, trade)
	}
	return actionCreated, nil
}

func (s *Service) updateEnrichment(ctx context.Context, id uint64, candidate disclosure.TradeCandidate) (writeAction, error) {
	if err := candidate.Validate(); err != nil {
		return "", err
	}
	if _, err := s.trades.UpdateEnrichment(ctx, id, candidate); err != nil {
		return "", errs.Wrap(err, "update trade enrichment")
	}
	return actionUpdated, nil
}
