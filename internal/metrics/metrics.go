// Package metrics exposes the pipeline's Prometheus counters and an
// optional exposition listener.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tradewatch/internal/bootstrap/logging"
)

var (
	RecordsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tradewatch",
		Subsystem: "sync",
		Name:      "records_processed_total",
		Help:      "Disclosure records handled by the sync pipeline.",
	}, []string{"source"})

	TradeOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tradewatch",
		Subsystem: "sync",
		Name:      "trade_outcomes_total",
		Help:      "Trade write outcomes (created, updated, skipped).",
	}, []string{"source", "outcome"})

	RecordErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tradewatch",
		Subsystem: "sync",
		Name:      "record_errors_total",
		Help:      "Per-record processing errors absorbed by the pipeline.",
	}, []string{"source"})

	AlertsTriggered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tradewatch",
		Subsystem: "alerts",
		Name:      "triggered_total",
		Help:      "Notifications recorded per alert type.",
	}, []string{"alert_type"})
)

// Serve exposes /metrics on addr until ctx is cancelled. It blocks.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logging.Info(ctx, "metrics listener started", slog.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
