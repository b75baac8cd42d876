package notifier

import (
	"context"

	"github.com/permflow/engine/internal/logger"
)

// LogChannel delivers notifications to the structured logger. It is always
// wired in alongside any configured delivery channel, so an operator
// reading logs never misses an alert even if SMTP is unreachable.
type LogChannel struct{}

// Send implements Channel.
func (LogChannel) Send(ctx context.Context, n Notification) error {
	logger.Error("admin notification",
		"error_type", n.ErrorType,
		"service", n.ServiceName,
		"count", n.Count,
		"first_seen", n.FirstSeen,
		"last_seen", n.LastSeen,
		"message", n.Message,
	)
	return nil
}
