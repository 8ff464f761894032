package mailbox

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/elecmate/commsdesk/internal/models"
	"github.com/elecmate/commsdesk/internal/observ"
	"github.com/elecmate/commsdesk/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecipientMode is how the compose form picks recipients.
type RecipientMode string

const (
	RecipientsAll        RecipientMode = "all"
	RecipientsByJob      RecipientMode = "job"
	RecipientsIndividual RecipientMode = "individual"
)

// Draft is the compose form.
type Draft struct {
	Title              string             `json:"title"`
	Body               string             `json:"message"`
	Type               models.MessageType `json:"type"`
	Priority           models.Priority    `json:"priority"`
	RecipientMode      RecipientMode      `json:"recipient_mode"`
	SelectedRecipients []string           `json:"recipients"`
	JobID              string             `json:"job_id"`
	IsScheduled        bool               `json:"is_scheduled"`
	ScheduleDate       string             `json:"schedule_date"`
	ScheduleTime       string             `json:"schedule_time"`
	Pinned             bool               `json:"pinned"`

	// RequestID is a client-generated key that makes Send safe to retry.
	RequestID string `json:"-"`
}

// NewDraft returns a draft with the form defaults.
func NewDraft() *Draft {
	d := &Draft{}
	d.Reset()
	return d
}

// Reset restores the form defaults after a successful send.
func (d *Draft) Reset() {
	*d = Draft{
		Type:               models.TypeTeamBroadcast,
		Priority:           models.PriorityNormal,
		RecipientMode:      RecipientsAll,
		SelectedRecipients: []string{},
	}
}

// ComposerDeps groups what Composer needs.
type ComposerDeps struct {
	Store       *Store
	Employees   repository.EmployeeRepository
	Jobs        repository.JobRepository
	Idempotency repository.IdempotencyStore
	Notifier    Notifier
	Logger      *zap.Logger
}

// Composer validates drafts and turns them into messages.
type Composer struct {
	deps     ComposerDeps
	location *time.Location
	now      func() time.Time
	newID    func() string
}

func NewComposer(deps ComposerDeps, location *time.Location) *Composer {
	if location == nil {
		location = time.UTC
	}
	return &Composer{
		deps:     deps,
		location: location,
		now:      time.Now,
		newID:    func() string { return "COMM-" + uuid.NewString() },
	}
}

// Send validates d, inserts the message and notifies the sender. On success
// d is reset to defaults. On any error d is left untouched and nothing is
// emitted.
func (c *Composer) Send(ctx context.Context, viewerID string, d *Draft) (*models.Message, error) {
	title := strings.TrimSpace(d.Title)
	body := strings.TrimSpace(d.Body)
	if title == "" || body == "" {
		return nil, validationError(CodeMissingInfo, ErrMissingInfo, "")
	}

	msgType := d.Type
	if msgType == "" {
		msgType = models.TypeTeamBroadcast
	}
	if !msgType.Valid() {
		return nil, validationError(CodeInvalidDraft, ErrInvalidDraft, "unknown message type %q", d.Type)
	}
	priority := d.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}
	if !priority.Valid() {
		return nil, validationError(CodeInvalidDraft, ErrInvalidDraft, "unknown priority %q", d.Priority)
	}

	recipients, err := c.resolveRecipients(ctx, d)
	if err != nil {
		return nil, err
	}

	now := c.now().In(c.location)
	msg := &models.Message{
		ID:         c.newID(),
		Type:       msgType,
		Title:      title,
		Body:       body,
		Sender:     c.senderName(ctx, viewerID),
		Recipients: recipients,
		Date:       now.Format(models.DateLayout),
		Time:       now.Format(models.TimeLayout),
		ReadBy:     []string{},
		Priority:   priority,
		Status:     models.StatusSent,
	}

	if d.JobID != "" {
		job, err := c.deps.Jobs.GetByID(ctx, d.JobID)
		if err != nil {
			return nil, transportError("get job", err)
		}
		if job == nil {
			return nil, validationError(CodeInvalidDraft, ErrInvalidDraft, "unknown job %q", d.JobID)
		}
		msg.Job = &job.Title
	}

	if d.IsScheduled {
		at, err := c.parseSchedule(d, now)
		if err != nil {
			return nil, err
		}
		msg.Status = models.StatusScheduled
		msg.DeliverAt = &at
		msg.Date = at.Format(models.DateLayout)
		msg.Time = at.Format(models.TimeLayout)
	}

	if d.RequestID != "" && c.deps.Idempotency != nil {
		key := viewerID + ":" + d.RequestID
		existing, fresh, err := c.deps.Idempotency.Reserve(ctx, key, msg.ID)
		if err != nil {
			return nil, transportError("reserve request id", err)
		}
		if !fresh {
			return c.replay(ctx, existing, d)
		}
		if err := c.deps.Store.Append(ctx, msg); err != nil {
			if relErr := c.deps.Idempotency.Release(ctx, key); relErr != nil {
				c.deps.Logger.Warn("release request id", zap.String("key", key), zap.Error(relErr))
			}
			return nil, err
		}
	} else if err := c.deps.Store.Append(ctx, msg); err != nil {
		return nil, err
	}

	if d.Pinned {
		if err := c.deps.Store.Pin(ctx, viewerID, msg.ID); err != nil {
			c.deps.Logger.Warn("pin composed message", zap.String("message_id", msg.ID), zap.Error(err))
		}
	}

	observ.MessagesComposed.WithLabelValues(string(msg.Status)).Inc()
	c.deps.Logger.Info("message composed",
		zap.String("message_id", msg.ID),
		zap.String("viewer_id", viewerID),
		zap.String("status", string(msg.Status)),
		zap.Int("recipients", len(recipients)),
	)

	c.deps.Notifier.Notify(ctx, viewerID, composeNotification(msg))
	if msg.Status == models.StatusSent {
		notifyRecipients(ctx, c.deps.Notifier, msg, viewerID)
	}
	d.Reset()
	return msg, nil
}

// replay answers a retried send with the message the first attempt created.
func (c *Composer) replay(ctx context.Context, messageID string, d *Draft) (*models.Message, error) {
	msg, err := c.deps.Store.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, transportError("get message", err)
	}
	if msg == nil {
		return nil, &Error{
			Kind:    KindConflict,
			Code:    CodeConflict,
			Message: "a send with this request id is still in progress",
			Err:     ErrConflict,
		}
	}
	d.Reset()
	return msg, nil
}

func (c *Composer) resolveRecipients(ctx context.Context, d *Draft) ([]string, error) {
	employees, err := c.deps.Employees.List(ctx)
	if err != nil {
		return nil, transportError("list employees", err)
	}

	if d.RecipientMode == RecipientsAll || d.RecipientMode == "" {
		ids := make([]string, 0, len(employees))
		for _, e := range employees {
			ids = append(ids, e.ID)
		}
		if len(ids) == 0 {
			return nil, validationError(CodeNoRecipients, ErrNoRecipients, "")
		}
		return ids, nil
	}
	if d.RecipientMode != RecipientsByJob && d.RecipientMode != RecipientsIndividual {
		return nil, validationError(CodeInvalidDraft, ErrInvalidDraft, "unknown recipient mode %q", d.RecipientMode)
	}

	known := make(map[string]struct{}, len(employees))
	for _, e := range employees {
		known[e.ID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(d.SelectedRecipients))
	ids := make([]string, 0, len(d.SelectedRecipients))
	for _, id := range d.SelectedRecipients {
		if _, dup := seen[id]; dup {
			continue
		}
		if _, ok := known[id]; !ok {
			return nil, validationError(CodeUnknownRecipient, ErrUnknownRecipient, "unknown recipient %q", id)
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, validationError(CodeNoRecipients, ErrNoRecipients, "")
	}
	return ids, nil
}

func (c *Composer) parseSchedule(d *Draft, now time.Time) (time.Time, error) {
	if d.ScheduleDate == "" || d.ScheduleTime == "" {
		return time.Time{}, validationError(CodeInvalidSchedule, ErrInvalidSchedule, "schedule date and time are required")
	}
	at, err := time.ParseInLocation(models.DateLayout+" "+models.TimeLayout, d.ScheduleDate+" "+d.ScheduleTime, c.location)
	if err != nil {
		return time.Time{}, validationError(CodeInvalidSchedule, ErrInvalidSchedule, "invalid schedule %s %s", d.ScheduleDate, d.ScheduleTime)
	}
	if !at.After(now) {
		return time.Time{}, validationError(CodeInvalidSchedule, ErrInvalidSchedule, "schedule must be in the future")
	}
	return at, nil
}

func (c *Composer) senderName(ctx context.Context, viewerID string) string {
	e, err := c.deps.Employees.GetByID(ctx, viewerID)
	if err != nil || e == nil {
		return viewerID
	}
	return e.Name
}

func recipientCount(n int) string {
	if n == 1 {
		return "1 recipient"
	}
	return humanize.Comma(int64(n)) + " recipients"
}

func composeNotification(msg *models.Message) Notification {
	if msg.Status == models.StatusScheduled && msg.DeliverAt != nil {
		return Notification{
			Title: "Message scheduled",
			Description: fmt.Sprintf("Scheduled for %s at %s for %s",
				msg.DeliverAt.Format("2 January 2006"), msg.DeliverAt.Format(models.TimeLayout), recipientCount(len(msg.Recipients))),
			Variant: VariantDefault,
		}
	}
	return Notification{
		Title:       "Message sent",
		Description: "Sent to " + recipientCount(len(msg.Recipients)),
		Variant:     VariantDefault,
	}
}

// notifyRecipients tells every recipient except skip that a message has
// arrived.
func notifyRecipients(ctx context.Context, n Notifier, msg *models.Message, skip string) {
	variant := VariantDefault
	if msg.Priority == models.PriorityHigh {
		variant = VariantDestructive
	}
	for _, r := range msg.Recipients {
		if r == skip {
			continue
		}
		n.Notify(ctx, r, Notification{
			Title:       string(msg.Type),
			Description: msg.Title,
			Variant:     variant,
		})
	}
}
