// Package notifier implements C4: a deduplicated alert sink for failures
// that need a human's attention (exhausted task retries, directory
// unreachable, workflow-engine authentication failures). Every alert is
// identified by a content fingerprint so the same underlying problem does
// not page an admin once per retry.
package notifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/permflow/engine/internal/logger"
	"github.com/permflow/engine/pkg/catalogue/models"
	"github.com/permflow/engine/pkg/catalogue/store"
	"github.com/permflow/engine/pkg/metrics"
)

const defaultCooldown = 24 * time.Hour
const maxMessageRunes = 500

// Channel delivers a rendered notification somewhere a human will see it.
type Channel interface {
	Send(ctx context.Context, n Notification) error
}

// Notification is the rendered content handed to a Channel.
type Notification struct {
	ErrorType   string
	ServiceName string
	Message     string
	Count       int
	FirstSeen   time.Time
	LastSeen    time.Time
}

// Notifier implements C4's fingerprint/cooldown/dedup contract over the
// AdminNotification table.
type Notifier struct {
	store    store.NotificationStore
	channels []Channel
	cooldown time.Duration
	metrics  metrics.NotifierMetrics
}

// New constructs a Notifier. At least one channel should be supplied;
// channels are tried in order and a failure in one does not stop the
// others (§4.4 is silent on multi-channel delivery, so each channel's
// failure is independently logged and swallowed rather than surfaced as a
// notifier-wide error).
func New(s store.NotificationStore, cooldown time.Duration, channels ...Channel) *Notifier {
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	return &Notifier{store: s, channels: channels, cooldown: cooldown, metrics: metrics.NewNotifierMetrics()}
}

// Fingerprint computes SHA-256(error-type:service-name:message[:500]) per
// §3/§4.4.
func Fingerprint(errorType, serviceName, message string) string {
	runes := []rune(message)
	if len(runes) > maxMessageRunes {
		runes = runes[:maxMessageRunes]
	}
	h := sha256.New()
	h.Write([]byte(errorType))
	h.Write([]byte(":"))
	h.Write([]byte(serviceName))
	h.Write([]byte(":"))
	h.Write([]byte(string(runes)))
	return hex.EncodeToString(h.Sum(nil))
}

// Notify records an occurrence of (errorType, serviceName, message) and
// emits through every channel iff this fingerprint has never been sent, or
// its cooldown has elapsed, and it is not marked resolved (§4.4).
func (n *Notifier) Notify(ctx context.Context, errorType, serviceName, message string) error {
	fp := Fingerprint(errorType, serviceName, message)
	now := time.Now().UTC()

	rec, err := n.store.GetNotificationByFingerprint(ctx, fp)
	switch {
	case err == models.ErrNotificationNotFound:
		rec = &models.AdminNotification{
			Fingerprint:     fp,
			ErrorType:       errorType,
			ServiceName:     serviceName,
			Message:         message,
			FirstOccurrence: now,
			LastOccurrence:  now,
			Count:           1,
		}
		if _, err := n.store.CreateNotification(ctx, rec); err != nil {
			return err
		}
		n.emit(ctx, rec, now)
		rec.Sent = true
		rec.SentAt = &now
		return n.store.UpdateNotification(ctx, rec)

	case err != nil:
		return err

	default:
		rec.LastOccurrence = now
		rec.Count++
		shouldEmit := !rec.Resolved && (!rec.Sent || rec.SentAt == nil || rec.SentAt.Add(n.cooldown).Before(now) || rec.SentAt.Add(n.cooldown).Equal(now))
		if shouldEmit {
			n.emit(ctx, rec, now)
			rec.Sent = true
			rec.SentAt = &now
		} else if n.metrics != nil {
			n.metrics.RecordSuppressed(fp)
		}
		return n.store.UpdateNotification(ctx, rec)
	}
}

func (n *Notifier) emit(ctx context.Context, rec *models.AdminNotification, now time.Time) {
	notif := Notification{
		ErrorType:   rec.ErrorType,
		ServiceName: rec.ServiceName,
		Message:     rec.Message,
		Count:       rec.Count,
		FirstSeen:   rec.FirstOccurrence,
		LastSeen:    now,
	}
	for _, ch := range n.channels {
		name := fmt.Sprintf("%T", ch)
		if err := ch.Send(ctx, notif); err != nil {
			logger.Error("notification channel delivery failed", "error", err, "fingerprint", rec.Fingerprint)
			if n.metrics != nil {
				n.metrics.RecordDeliveryError(name)
			}
			continue
		}
		if n.metrics != nil {
			n.metrics.RecordSent(name)
		}
	}
}

// MarkResolved marks a fingerprint resolved. Notify keeps counting later
// occurrences of a resolved fingerprint but emits nothing for them (§4.4).
func (n *Notifier) MarkResolved(ctx context.Context, fingerprint string) error {
	rec, err := n.store.GetNotificationByFingerprint(ctx, fingerprint)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	rec.Resolved = true
	rec.ResolvedAt = &now
	return n.store.UpdateNotification(ctx, rec)
}

// PurgeResolvedOlderThan deletes resolved notifications older than the
// retention window, invoked by the periodic driver (§4.4, §4.9).
func (n *Notifier) PurgeResolvedOlderThan(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	return n.store.PurgeResolvedOlderThan(ctx, cutoff)
}
