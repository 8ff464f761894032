package mailbox

import (
	"context"
	"time"

	"github.com/elecmate/commsdesk/internal/models"
	"github.com/elecmate/commsdesk/internal/repository"
	"go.uber.org/zap"
)

// Refresher stands in for a pull from an upstream feed: it waits a fixed
// delay, then tells the viewer the mailbox is current.
type Refresher struct {
	delay    time.Duration
	notifier Notifier
}

func NewRefresher(delay time.Duration, notifier Notifier) *Refresher {
	return &Refresher{delay: delay, notifier: notifier}
}

// Refresh blocks for the configured delay. It returns ctx.Err() without
// notifying if ctx ends first.
func (r *Refresher) Refresh(ctx context.Context, viewerID string) error {
	timer := time.NewTimer(r.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	r.notifier.Notify(ctx, viewerID, Notification{
		Title:       "Messages refreshed",
		Description: "Your inbox is up to date",
		Variant:     VariantDefault,
	})
	return nil
}

// Dispatcher releases scheduled messages once their delivery time passes.
type Dispatcher struct {
	messages repository.MessageRepository
	notifier Notifier
	logger   *zap.Logger
}

func NewDispatcher(messages repository.MessageRepository, notifier Notifier, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{messages: messages, notifier: notifier, logger: logger}
}

// ReleaseDue publishes every scheduled message due at or before now and
// notifies its recipients. It returns the released messages.
func (d *Dispatcher) ReleaseDue(ctx context.Context, now time.Time) ([]models.Message, error) {
	released, err := d.messages.ReleaseDue(ctx, now)
	if err != nil {
		return nil, transportError("release scheduled messages", err)
	}
	for i := range released {
		msg := &released[i]
		d.logger.Info("scheduled message released",
			zap.String("message_id", msg.ID),
			zap.Int("recipients", len(msg.Recipients)),
		)
		notifyRecipients(ctx, d.notifier, msg, "")
	}
	return released, nil
}
