package mailbox

import (
	"context"
	"sync"
	"testing"

	"github.com/elecmate/commsdesk/internal/models"
	"github.com/elecmate/commsdesk/internal/repository/memory"
	"go.uber.org/zap"
)

func testMessage(id string, typ models.MessageType, date string) models.Message {
	return models.Message{
		ID:         id,
		Type:       typ,
		Title:      "Title " + id,
		Body:       "Body " + id,
		Sender:     "Lisa Parker",
		Recipients: []string{"1", "2", "6"},
		Date:       date,
		Time:       "09:00",
		ReadBy:     []string{},
		Priority:   models.PriorityNormal,
		Status:     models.StatusSent,
	}
}

func newTestStore(t *testing.T, msgs ...models.Message) (*Store, *memory.MessageStore) {
	t.Helper()
	repo, err := memory.NewMessageStore(msgs...)
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return NewStore(repo, memory.NewOverlayStore(), zap.NewNop()), repo
}

// recorder collects notifications per viewer.
type recorder struct {
	mu    sync.Mutex
	notes map[string][]Notification
}

func newRecorder() *recorder {
	return &recorder{notes: make(map[string][]Notification)}
}

func (r *recorder) Notify(ctx context.Context, viewerID string, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes[viewerID] = append(r.notes[viewerID], n)
}

func (r *recorder) For(viewerID string) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notes[viewerID]...)
}

func (r *recorder) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, notes := range r.notes {
		n += len(notes)
	}
	return n
}

func ids(msgs []models.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func equalIDs(got []models.Message, want ...string) bool {
	g := ids(got)
	if len(g) != len(want) {
		return false
	}
	for i := range g {
		if g[i] != want[i] {
			return false
		}
	}
	return true
}
