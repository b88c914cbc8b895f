package notifier

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iho/blazeledger/internal/domain"
)

// LoggerNotifier implements usecase.Notifier by writing each notification
// to the structured log.
type LoggerNotifier struct {
	logger zerolog.Logger
}

// NewLoggerNotifier creates a new LoggerNotifier.
func NewLoggerNotifier(logger zerolog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger.With().Str("component", "notifier").Logger()}
}

// Notify logs msg.
func (n *LoggerNotifier) Notify(_ context.Context, msg domain.Notification) error {
	n.logger.Info().
		Str("kind", string(msg.Kind)).
		Str("account_id", msg.AccountID).
		Str("destination", msg.Destination).
		Str("txn_id", msg.TransactionID).
		Int64("amount", msg.Amount).
		Str("currency", string(msg.Currency)).
		Msg("notification")
	return nil
}
