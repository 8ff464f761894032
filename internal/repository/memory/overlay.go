package memory

import (
	"context"
	"sync"

	"github.com/elecmate/commsdesk/internal/models"
)

// OverlayStore keeps one overlay per viewer.
type OverlayStore struct {
	mu       sync.RWMutex
	overlays map[string]*models.Overlay
}

func NewOverlayStore() *OverlayStore {
	return &OverlayStore{overlays: make(map[string]*models.Overlay)}
}

// Load returns a copy of the viewer's overlay so callers can read it without
// holding the lock.
func (s *OverlayStore) Load(ctx context.Context, viewerID string) (*models.Overlay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.overlays[viewerID]
	if !ok {
		return models.NewOverlay(viewerID), nil
	}
	return o.Clone(), nil
}

func (s *OverlayStore) SetFlag(ctx context.Context, viewerID, messageID string, flag models.Flag, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.overlays[viewerID]
	if !ok {
		o = models.NewOverlay(viewerID)
		s.overlays[viewerID] = o
	}
	o.Set(flag, messageID, on)
	return nil
}
