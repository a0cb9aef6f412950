package notifier

import (
	"context"
	"log/slog"
)

// Notifier dispatches notifications (invitation emails, budget alerts) to an
// external delivery service. Dispatch is fire-and-forget: failures are logged
// and never block or roll back a core mutation.
type Notifier interface {
	Send(ctx context.Context, recipient, templateID string, data map[string]string) error
}

// LogNotifier writes notification attempts to the structured log. It stands in
// for a real delivery backend; the core only depends on the interface.
type LogNotifier struct {
	Logger *slog.Logger
}

// NewLogNotifier creates a Notifier that records dispatches in the log.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, recipient, templateID string, data map[string]string) error {
	attrs := make([]any, 0, len(data)+2)
	attrs = append(attrs, slog.String("recipient", recipient), slog.String("template_id", templateID))
	for k, v := range data {
		attrs = append(attrs, slog.String(k, v))
	}
	n.Logger.Info("Notification dispatched", attrs...)
	return nil
}
