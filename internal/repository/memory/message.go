// Package memory implements the repository interfaces in process memory.
// It backs the server when no DATABASE_URL is configured and every test that
// doesn't need a real database. State resets when the process restarts.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/elecmate/commsdesk/internal/models"
	"github.com/elecmate/commsdesk/internal/repository"
)

type MessageStore struct {
	mu       sync.RWMutex
	messages []models.Message
	index    map[string]int
}

// NewMessageStore seeds the store with msgs in the given order.
func NewMessageStore(msgs ...models.Message) (*MessageStore, error) {
	s := &MessageStore{index: make(map[string]int, len(msgs))}
	for i := range msgs {
		if err := s.Create(context.Background(), &msgs[i]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *MessageStore) List(ctx context.Context) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, 0, len(s.messages))
	for _, m := range s.messages {
		if m.Status == models.StatusScheduled {
			continue
		}
		out = append(out, m.Clone())
	}
	return out, nil
}

func (s *MessageStore) GetByID(ctx context.Context, id string) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return nil, nil
	}
	m := s.messages[i].Clone()
	return &m, nil
}

func (s *MessageStore) Create(ctx context.Context, msg *models.Message) error {
	if msg.Status == "" {
		msg.Status = models.StatusSent
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[msg.ID]; exists {
		return fmt.Errorf("insert message %s: %w", msg.ID, repository.ErrDuplicate)
	}
	s.index[msg.ID] = len(s.messages)
	s.messages = append(s.messages, msg.Clone())
	return nil
}

func (s *MessageStore) AddReceipt(ctx context.Context, messageID, userID string, kind models.ReceiptKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[messageID]
	if !ok {
		return fmt.Errorf("add receipt: message %s does not exist", messageID)
	}
	m := &s.messages[i]
	if !m.HasRecipient(userID) {
		return fmt.Errorf("add receipt: %w: %s", models.ErrReceiptNotRecipient, userID)
	}

	switch kind {
	case models.ReceiptRead:
		m.ReadBy = appendUnique(m.ReadBy, userID)
	case models.ReceiptSignedOff:
		m.SignedOffBy = appendUnique(m.SignedOffBy, userID)
	default:
		return fmt.Errorf("add receipt: unknown kind %q", kind)
	}
	return nil
}

func (s *MessageStore) ReleaseDue(ctx context.Context, now time.Time) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	released := make([]models.Message, 0)
	for i := range s.messages {
		m := &s.messages[i]
		if m.Status != models.StatusScheduled || m.DeliverAt == nil || m.DeliverAt.After(now) {
			continue
		}
		at := m.DeliverAt.In(now.Location())
		m.Status = models.StatusSent
		m.Date = at.Format(models.DateLayout)
		m.Time = at.Format(models.TimeLayout)
		released = append(released, m.Clone())
	}
	return released, nil
}

func appendUnique(list []string, id string) []string {
	for _, v := range list {
		if v == id {
			return list
		}
	}
	return append(list, id)
}
