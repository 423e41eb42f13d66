package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"tradewatch/internal/bootstrap"
	"tradewatch/internal/bootstrap/logging"
	"tradewatch/internal/domain/alert"
	"tradewatch/internal/domain/disclosure"
	"tradewatch/internal/errs"
	"tradewatch/internal/usecase/alerts"
	syncuc "tradewatch/internal/usecase/sync"
)

var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Manage user trade alerts",
}

var alertCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a politician, stock or pattern alert",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, _ *syncuc.Service, alertSvc *alerts.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		userID, _ := cmd.Flags().GetString("user")
		tier, _ := cmd.Flags().GetString("tier")

		criteria, err := resolveCriteria(cmd)
		if err != nil {
			return err
		}

		created, err := alertSvc.Create(ctx, alerts.CreateInput{
			UserID:   userID,
			Tier:     tier,
			Criteria: criteria,
		})
		if err != nil {
			logging.Error(ctx, "create alert failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "create alert")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "created alert: %s\n", created.PublicID); err != nil {
			return errs.Wrap(err, "write create output")
		}
		return nil
	}),
}

var alertListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's alerts",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, _ *syncuc.Service, alertSvc *alerts.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		userID, _ := cmd.Flags().GetString("user")
		items, err := alertSvc.List(ctx, userID)
		if err != nil {
			logging.Error(ctx, "list alerts failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list alerts")
		}

		if len(items) == 0 {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), "no alerts"); err != nil {
				return errs.Wrap(err, "write list output")
			}
			return nil
		}

		for _, item := range items {
			triggered := "-"
			if item.LastTriggeredAt != nil {
				triggered = item.LastTriggeredAt.Format("2006-01-02 15:04")
			}
			if _, err := fmt.Fprintf(
				cmd.OutOrStdout(),
				"%s [%s] %s criteria=%s last_triggered=%s\n",
				item.PublicID,
				item.Status,
				item.Criteria.Type,
				describeCriteria(item.Criteria),
				triggered,
			); err != nil {
				return errs.Wrap(err, "write list item")
			}
		}
		return nil
	}),
}

var alertPauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause an alert",
	RunE:  alertStatusRunE("pause", (*alerts.Service).Pause),
}

var alertResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a paused alert",
	RunE:  alertStatusRunE("resume", (*alerts.Service).Resume),
}

var alertDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Soft-delete an alert",
	RunE:  alertStatusRunE("delete", (*alerts.Service).Delete),
}

var alertUpdatePatternCmd = &cobra.Command{
	Use:   "update-pattern",
	Short: "Replace the pattern of a pattern alert",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, _ *syncuc.Service, alertSvc *alerts.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		userID, _ := cmd.Flags().GetString("user")
		publicID, _ := cmd.Flags().GetString("alert")
		pattern, err := resolvePattern(cmd)
		if err != nil {
			return err
		}

		if err := alertSvc.UpdatePattern(ctx, userID, publicID, pattern); err != nil {
			logging.Error(ctx, "update alert pattern failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "update alert pattern")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "updated alert: %s\n", publicID); err != nil {
			return errs.Wrap(err, "write update output")
		}
		return nil
	}),
}

// alertStatusRunE shares the pause/resume/delete shape: one method on the
// alert service keyed by (user, alert id).
func alertStatusRunE(verb string, op func(*alerts.Service, context.Context, string, string) error) func(cmd *cobra.Command, args []string) error {
	return withApp(func(cmd *cobra.Command, _ *bootstrap.App, _ *syncuc.Service, alertSvc *alerts.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		userID, _ := cmd.Flags().GetString("user")
		publicID, _ := cmd.Flags().GetString("alert")

		if err := op(alertSvc, ctx, userID, publicID); err != nil {
			logging.Error(ctx, verb+" alert failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrapf(err, "%s alert", verb)
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%sd alert: %s\n", verb, publicID); err != nil {
			return errs.Wrapf(err, "write %s output", verb)
		}
		return nil
	})
}

func resolveCriteria(cmd *cobra.Command) (alert.Criteria, error) {
	rawType, _ := cmd.Flags().GetString("type")
	alertType, err := alert.ParseType(rawType)
	if err != nil {
		return alert.Criteria{}, err
	}

	switch alertType {
	case alert.TypePolitician:
		politicianID, _ := cmd.Flags().GetUint64("politician-id")
		if politicianID == 0 {
			return alert.Criteria{}, errors.New("--politician-id is required for politician alerts")
		}
		return alert.PoliticianCriteria(politicianID), nil
	case alert.TypeStock:
		ticker, _ := cmd.Flags().GetString("ticker")
		if strings.TrimSpace(ticker) == "" {
			return alert.Criteria{}, errors.New("--ticker is required for stock alerts")
		}
		return alert.StockCriteria(disclosure.NormalizeSymbol(ticker)), nil
	case alert.TypePattern:
		pattern, err := resolvePattern(cmd)
		if err != nil {
			return alert.Criteria{}, err
		}
		return alert.PatternCriteria(pattern), nil
	default:
		return alert.Criteria{}, fmt.Errorf("%w: %q", alert.ErrUnknownType, rawType)
	}
}

func resolvePattern(cmd *cobra.Command) (alert.Pattern, error) {
	var pattern alert.Pattern

	if cmd.Flags().Changed("min-value") {
		minValue, _ := cmd.Flags().GetFloat64("min-value")
		pattern.MinValue = &minValue
	}
	if cmd.Flags().Changed("max-value") {
		maxValue, _ := cmd.Flags().GetFloat64("max-value")
		pattern.MaxValue = &maxValue
	}
	if cmd.Flags().Changed("tx-type") {
		raw, _ := cmd.Flags().GetString("tx-type")
		txType, err := disclosure.ParseTransactionType(raw)
		if err != nil {
			return alert.Pattern{}, err
		}
		pattern.TransactionType = &txType
	}
	if cmd.Flags().Changed("time-frame") {
		raw, _ := cmd.Flags().GetString("time-frame")
		frame, err := alert.ParseTimeFrame(raw)
		if err != nil {
			return alert.Pattern{}, err
		}
		pattern.TimeFrame = &frame
	}

	return pattern, nil
}

func describeCriteria(c alert.Criteria) string {
	switch c.Type {
	case alert.TypePolitician:
		return fmt.Sprintf("politician_id=%d", *c.PoliticianID)
	case alert.TypeStock:
		return *c.TickerSymbol
	case alert.TypePattern:
		parts := make([]string, 0, 4)
		if c.Pattern.MinValue != nil {
			parts = append(parts, fmt.Sprintf("min=%.0f", *c.Pattern.MinValue))
		}
		if c.Pattern.MaxValue != nil {
			parts = append(parts, fmt.Sprintf("max=%.0f", *c.Pattern.MaxValue))
		}
		if c.Pattern.TransactionType != nil {
			parts = append(parts, string(*c.Pattern.TransactionType))
		}
		if c.Pattern.TimeFrame != nil {
			parts = append(parts, string(*c.Pattern.TimeFrame))
		}
		if len(parts) == 0 {
			return "any"
		}
		return strings.Join(parts, ",")
	default:
		return string(c.Type)
	}
}

func init() {
	rootCmd.AddCommand(alertCmd)
	alertCmd.AddCommand(alertCreateCmd)
	alertCmd.AddCommand(alertListCmd)
	alertCmd.AddCommand(alertPauseCmd)
	alertCmd.AddCommand(alertResumeCmd)
	alertCmd.AddCommand(alertDeleteCmd)
	alertCmd.AddCommand(alertUpdatePatternCmd)

	alertCmd.PersistentFlags().String("user", "", "User id")
	_ = alertCmd.MarkPersistentFlagRequired("user")

	alertCreateCmd.Flags().String("tier", "free", "Subscription tier (free|pro|premium)")
	alertCreateCmd.Flags().String("type", "", "Alert type (politician|stock|pattern)")
	alertCreateCmd.Flags().Uint64("politician-id", 0, "Legislator id for politician alerts")
	alertCreateCmd.Flags().String("ticker", "", "Ticker symbol for stock alerts")
	_ = alertCreateCmd.MarkFlagRequired("type")

	for _, c := range []*cobra.Command{alertCreateCmd, alertUpdatePatternCmd} {
		c.Flags().Float64("min-value", 0, "Minimum estimated trade value")
		c.Flags().Float64("max-value", 0, "Maximum estimated trade value")
		c.Flags().String("tx-type", "", "Transaction type filter (buy|sell|exchange)")
		c.Flags().String("time-frame", "", "Recency window (1h|24h|7d|30d)")
	}

	for _, c := range []*cobra.Command{alertPauseCmd, alertResumeCmd, alertDeleteCmd, alertUpdatePatternCmd} {
		c.Flags().String("alert", "", "Alert id")
		_ = c.MarkFlagRequired("alert")
	}
}
