// Package notify delivers trade alerts.
//
// SMTPNotifier sends mail, SlackNotifier posts to an incoming webhook, and
// LogNotifier writes the message to the log when no transport is configured.
package notify

import (
	"context"
	"errors"
	"log/slog"
)

// ErrNotificationFailure wraps every delivery failure.
var ErrNotificationFailure = errors.New("notification failed")

// Notifier delivers one message.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// LogNotifier logs messages instead of sending them.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger uses slog.Default().
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, subject, body string) error {
	n.logger.Info("notification not sent, no transport configured",
		"subject", subject,
		"body", body,
	)
	return nil
}
