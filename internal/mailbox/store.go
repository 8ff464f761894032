package mailbox

import (
	"context"
	"errors"
	"sync"

	"github.com/elecmate/commsdesk/internal/models"
	"github.com/elecmate/commsdesk/internal/observ"
	"github.com/elecmate/commsdesk/internal/repository"
	"go.uber.org/zap"
)

// Store is the message list plus each viewer's overlay. Every operation is
// scoped to an explicit viewer id.
type Store struct {
	messages repository.MessageRepository
	overlays repository.OverlayRepository
	logger   *zap.Logger

	// mu serialises read-modify-write toggles within this process.
	mu sync.Mutex
}

func NewStore(messages repository.MessageRepository, overlays repository.OverlayRepository, logger *zap.Logger) *Store {
	return &Store{messages: messages, overlays: overlays, logger: logger}
}

// Snapshot returns the viewer's active messages together with the overlay
// they were filtered against.
func (s *Store) Snapshot(ctx context.Context, viewerID string) ([]models.Message, *models.Overlay, error) {
	all, err := s.messages.List(ctx)
	if err != nil {
		return nil, nil, transportError("list messages", err)
	}
	ov, err := s.overlays.Load(ctx, viewerID)
	if err != nil {
		return nil, nil, transportError("load overlay", err)
	}
	return activeOf(all, ov), ov, nil
}

// ActiveMessages returns every sent message the viewer has not deleted, in
// canonical order.
func (s *Store) ActiveMessages(ctx context.Context, viewerID string) ([]models.Message, error) {
	active, _, err := s.Snapshot(ctx, viewerID)
	return active, err
}

func activeOf(all []models.Message, ov *models.Overlay) []models.Message {
	active := make([]models.Message, 0, len(all))
	for _, m := range all {
		if ov.IsDeleted(m.ID) {
			continue
		}
		active = append(active, m)
	}
	return active
}

// Overlay returns the viewer's overlay.
func (s *Store) Overlay(ctx context.Context, viewerID string) (*models.Overlay, error) {
	ov, err := s.overlays.Load(ctx, viewerID)
	if err != nil {
		return nil, transportError("load overlay", err)
	}
	return ov, nil
}

// Get returns one active message.
func (s *Store) Get(ctx context.Context, viewerID, id string) (*models.Message, error) {
	msg, _, err := s.lookup(ctx, viewerID, id)
	return msg, err
}

// Detail returns one active message with the viewer's flags for it.
func (s *Store) Detail(ctx context.Context, viewerID, id string) (*models.Message, RowFlags, error) {
	msg, ov, err := s.lookup(ctx, viewerID, id)
	if err != nil {
		return nil, RowFlags{}, err
	}
	return msg, FlagsOf(ov, id), nil
}

// lookup resolves id to a sent message that the viewer has not deleted.
func (s *Store) lookup(ctx context.Context, viewerID, id string) (*models.Message, *models.Overlay, error) {
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return nil, nil, transportError("get message", err)
	}
	if msg == nil || msg.Status == models.StatusScheduled {
		return nil, nil, notFound(id)
	}
	ov, err := s.overlays.Load(ctx, viewerID)
	if err != nil {
		return nil, nil, transportError("load overlay", err)
	}
	if ov.IsDeleted(id) {
		return nil, nil, notFound(id)
	}
	return msg, ov, nil
}

func (s *Store) setFlag(ctx context.Context, viewerID, id string, flag models.Flag, on bool) error {
	if err := s.overlays.SetFlag(ctx, viewerID, id, flag, on); err != nil {
		return transportError("set "+string(flag), err)
	}
	return nil
}

// TogglePin flips the pinned flag and returns the new state.
func (s *Store) TogglePin(ctx context.Context, viewerID, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ov, err := s.lookup(ctx, viewerID, id)
	if err != nil {
		return false, err
	}
	pinned := !ov.IsPinned(id)
	if err := s.setFlag(ctx, viewerID, id, models.FlagPinned, pinned); err != nil {
		return false, err
	}
	observ.MailboxActions.WithLabelValues("pin").Inc()
	return pinned, nil
}

// ToggleRead flips the read flag and returns the new state. Marking a
// message read also records a read receipt when the viewer is a recipient.
// Marking it unread leaves the receipt in place.
func (s *Store) ToggleRead(ctx context.Context, viewerID, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ov, err := s.lookup(ctx, viewerID, id)
	if err != nil {
		return false, err
	}
	read := !ov.IsRead(id)
	if err := s.setFlag(ctx, viewerID, id, models.FlagRead, read); err != nil {
		return false, err
	}
	if read && msg.HasRecipient(viewerID) {
		if err := s.messages.AddReceipt(ctx, id, viewerID, models.ReceiptRead); err != nil {
			return false, transportError("add read receipt", err)
		}
	}
	observ.MailboxActions.WithLabelValues("read").Inc()
	return read, nil
}

// SignOff acknowledges a Mandatory Reading message. It is add-only: signing
// off twice is a no-op. Signing off also marks the message read.
func (s *Store) SignOff(ctx context.Context, viewerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ov, err := s.lookup(ctx, viewerID, id)
	if err != nil {
		return err
	}
	if !msg.Type.RequiresSignOff() {
		return validationError(CodeNotSignable, ErrNotSignable, "")
	}
	if ov.IsSignedOff(id) {
		return nil
	}
	if err := s.setFlag(ctx, viewerID, id, models.FlagSignedOff, true); err != nil {
		return err
	}
	if err := s.setFlag(ctx, viewerID, id, models.FlagRead, true); err != nil {
		return err
	}
	if msg.HasRecipient(viewerID) {
		for _, kind := range []models.ReceiptKind{models.ReceiptRead, models.ReceiptSignedOff} {
			if err := s.messages.AddReceipt(ctx, id, viewerID, kind); err != nil {
				return transportError("add receipt", err)
			}
		}
	}
	observ.MailboxActions.WithLabelValues("sign_off").Inc()
	return nil
}

// Delete soft-deletes a message for the viewer. Deleting an already deleted
// message is a no-op; deleting an unknown id is NotFound.
func (s *Store) Delete(ctx context.Context, viewerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return transportError("get message", err)
	}
	if msg == nil || msg.Status == models.StatusScheduled {
		return notFound(id)
	}
	if err := s.setFlag(ctx, viewerID, id, models.FlagDeleted, true); err != nil {
		return err
	}
	observ.MailboxActions.WithLabelValues("delete").Inc()
	return nil
}

// Append inserts msg at the end of the canonical list.
func (s *Store) Append(ctx context.Context, msg *models.Message) error {
	if err := s.messages.Create(ctx, msg); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return &Error{Kind: KindConflict, Code: CodeConflict, Message: "message already exists", Err: errors.Join(ErrConflict, err)}
		}
		return transportError("insert message", err)
	}
	s.logger.Debug("message appended", zap.String("message_id", msg.ID), zap.String("status", string(msg.Status)))
	return nil
}

// Pin sets the pinned flag without toggling. Used by compose.
func (s *Store) Pin(ctx context.Context, viewerID, id string) error {
	return s.setFlag(ctx, viewerID, id, models.FlagPinned, true)
}
