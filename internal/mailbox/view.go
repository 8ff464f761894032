package mailbox

import (
	"context"
	"time"

	"github.com/elecmate/commsdesk/internal/models"
)

// RowFlags is the viewer's overlay for one message in a view.
type RowFlags struct {
	Pinned    bool `json:"pinned"`
	Read      bool `json:"read"`
	SignedOff bool `json:"signed_off"`
}

// FlagsOf reads the viewer's flags for id.
func FlagsOf(ov *models.Overlay, id string) RowFlags {
	return RowFlags{
		Pinned:    ov.IsPinned(id),
		Read:      ov.IsRead(id),
		SignedOff: ov.IsSignedOff(id),
	}
}

// View is everything a mailbox screen renders for one query.
type View struct {
	Tab Tab `json:"tab"`
	Grouping
	Flags        map[string]RowFlags `json:"flags"`
	UnreadCounts map[Tab]int         `json:"unread_counts"`
	Total        int                 `json:"total"`
}

// View runs the pipeline store → filter → grouping for viewerID at now.
func (s *Store) View(ctx context.Context, viewerID string, q Query, now time.Time, opts GroupOptions) (*View, error) {
	active, ov, err := s.Snapshot(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if q.Tab == "" {
		q.Tab = TabInbox
	}
	filtered := Filter(active, ov, q)

	flags := make(map[string]RowFlags, len(filtered))
	for _, m := range filtered {
		flags[m.ID] = FlagsOf(ov, m.ID)
	}
	return &View{
		Tab:          q.Tab,
		Grouping:     GroupMessages(filtered, ov, q.Tab, now, opts),
		Flags:        flags,
		UnreadCounts: UnreadCounts(active, ov),
		Total:        len(filtered),
	}, nil
}
