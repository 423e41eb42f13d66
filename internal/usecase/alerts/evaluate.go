package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"tradewatch/internal/bootstrap/logging"
	"tradewatch/internal/domain/alert"
	"tradewatch/internal/domain/disclosure"
	"tradewatch/internal/errs"
	"tradewatch/internal/metrics"
	"tradewatch/internal/ports"
)

// TradeCreated satisfies the ingestion pipeline's observer hook. Evaluation
// failures are logged and absorbed; a broken alert must never fail the sync
// run that produced the trade.
func (s *Service) TradeCreated(ctx context.Context, trade ports.Trade) {
	if _, err := s.EvaluateTrade(ctx, trade); err != nil {
		logging.Error(ctx, "alert evaluation failed",
			slog.Uint64("trade_id", trade.ID),
			slog.Any("err", errs.Loggable(err)),
		)
	}
}

// EvaluateTrade matches one newly created trade against every active alert
// whose candidate set can contain it and records a notification per match.
// The (alert, trade) unique index makes re-evaluation idempotent: an alert
// triggers at most once per trade. Per-alert failures are isolated so one
// broken alert cannot starve the rest. Returns the number of alerts that
// actually triggered.
func (s *Service) EvaluateTrade(ctx context.Context, trade ports.Trade) (int, error) {
	ctx = logging.WithAttrs(ctx,
		slog.String("component", "usecase.alerts"),
		slog.Uint64("trade_id", trade.ID),
	)

	candidates, err := s.selectCandidates(ctx, trade)
	if err != nil {
		return 0, err
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	facts := alert.TradeFacts{
		TraderKind:      trade.TraderKind,
		TraderID:        trade.TraderID,
		TickerSymbol:    trade.TickerSymbol,
		TransactionType: trade.TransactionType,
		TransactionDate: trade.TransactionDate,
		EstimatedValue:  trade.EstimatedValue,
	}
	now := s.now()

	var message string
	triggered := 0
	for _, candidate := range candidates {
		// Candidate queries already filter on status, but re-check in case a
		// pause landed between selection and evaluation.
		if candidate.Status != alert.StatusActive {
			continue
		}
		if !candidate.Criteria.Matches(facts, now) {
			continue
		}

		// Built lazily so a trade matching nothing costs no reference lookups.
		if message == "" {
			message = s.buildMessage(ctx, trade)
		}
		if err := s.trigger(ctx, candidate, trade, message); err != nil {
			logging.Warn(ctx, "alert trigger failed",
				slog.String("alert_id", candidate.PublicID),
				slog.Any("err", errs.Loggable(err)),
			)
			continue
		}
		triggered++
	}
	return triggered, nil
}

// selectCandidates unions the three candidate sets: politician alerts on the
// trader (legislator trades only), stock alerts on the ticker, and every
// active pattern alert.
func (s *Service) selectCandidates(ctx context.Context, trade ports.Trade) ([]ports.Alert, error) {
	var out []ports.Alert

	if trade.TraderKind == disclosure.TraderLegislator {
		byPolitician, err := s.alerts.ListActiveByPolitician(ctx, trade.TraderID)
		if err != nil {
			return nil, errs.Wrap(err, "select politician alerts")
		}
		out = append(out, byPolitician...)
	}

	byTicker, err := s.alerts.ListActiveByTicker(ctx, disclosure.NormalizeSymbol(trade.TickerSymbol))
	if err != nil {
		return nil, errs.Wrap(err, "select stock alerts")
	}
	out = append(out, byTicker...)

	patterns, err := s.alerts.ListActivePatterns(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "select pattern alerts")
	}
	out = append(out, patterns...)

	return out, nil
}

func (s *Service) trigger(ctx context.Context, candidate ports.Alert, trade ports.Trade, message string) error {
	var inserted bool
	err := s.uow.WithTx(ctx, func(ctx context.Context) error {
		var err error
		inserted, err = s.notifications.Create(ctx, ports.NotificationCreate{
			PublicID: uuid.NewString(),
			AlertID:  candidate.ID,
			UserID:   candidate.UserID,
			TradeID:  trade.ID,
			Message:  message,
		})
		if err != nil {
			return errs.Wrap(err, "create notification")
		}
		if !inserted {
			// Already triggered for this trade on an earlier evaluation.
			return nil
		}
		return s.alerts.TouchLastTriggered(ctx, candidate.ID, s.now())
	})
	if err != nil {
		return err
	}
	if inserted {
		metrics.AlertsTriggered.WithLabelValues(string(candidate.Criteria.Type)).Inc()
		logging.Info(ctx, "alert triggered",
			slog.String("alert_id", candidate.PublicID),
			slog.String("alert_type", string(candidate.Criteria.Type)),
		)
	}
	return nil
}

// buildMessage renders a human-readable notification line, e.g.
// "Rep. Jane Doe (CA-12) bought AAPL (~$25,000) on 2026-01-02".
func (s *Service) buildMessage(ctx context.Context, trade ports.Trade) string {
	var b strings.Builder
	b.WriteString(s.traderLabel(ctx, trade))
	b.WriteByte(' ')
	b.WriteString(transactionVerb(trade.TransactionType))
	b.WriteByte(' ')
	b.WriteString(disclosure.NormalizeSymbol(trade.TickerSymbol))

	switch {
	case trade.EstimatedValue != nil:
		fmt.Fprintf(&b, " (~$%s)", humanize.Commaf(*trade.EstimatedValue))
	case strings.TrimSpace(trade.AmountRangeText) != "":
		fmt.Fprintf(&b, " (%s)", strings.TrimSpace(trade.AmountRangeText))
	}

	fmt.Fprintf(&b, " on %s", trade.TransactionDate.UTC().Format("2006-01-02"))
	return b.String()
}

func (s *Service) traderLabel(ctx context.Context, trade ports.Trade) string {
	if trade.TraderKind == disclosure.TraderLegislator {
		legislator, err := s.refs.GetLegislator(ctx, trade.TraderID)
		if err != nil {
			return fmt.Sprintf("Legislator #%d", trade.TraderID)
		}
		district := disclosure.District{State: legislator.State, Number: legislator.District}
		if legislator.Chamber == disclosure.SourceSenate {
			return fmt.Sprintf("Sen. %s (%s)", legislator.FullName, district)
		}
		return fmt.Sprintf("Rep. %s (%s)", legislator.FullName, district)
	}

	insider, err := s.refs.GetInsider(ctx, trade.TraderID)
	if err != nil {
		return fmt.Sprintf("Insider #%d", trade.TraderID)
	}
	if insider.Role != "" {
		return fmt.Sprintf("%s (%s)", insider.Name, insider.Role)
	}
	return insider.Name
}

func transactionVerb(t disclosure.TransactionType) string {
	switch t {
	case disclosure.TxBuy:
		return "bought"
	case disclosure.TxSell:
		return "sold"
	case disclosure.TxExchange:
		return "exchanged"
	default:
		return "traded"
	}
}
