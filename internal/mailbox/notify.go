package mailbox

import (
	"context"

	"go.uber.org/zap"
)

// Variant selects how a client renders a notification.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a toast-style message for one viewer.
type Notification struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Variant     Variant `json:"variant,omitempty"`
}

// Notifier delivers notifications. Delivery is fire-and-forget: there is no
// result and a failed delivery never fails the operation that caused it.
type Notifier interface {
	Notify(ctx context.Context, viewerID string, n Notification)
}

// LogNotifier writes notifications to the log. It is the fallback when no
// viewer connection is open.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, viewerID string, note Notification) {
	n.logger.Info("notification",
		zap.String("viewer_id", viewerID),
		zap.String("title", note.Title),
		zap.String("description", note.Description),
		zap.String("variant", string(note.Variant)),
	)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, viewerID string, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, viewerID string, n Notification) {
	f(ctx, viewerID, n)
}
