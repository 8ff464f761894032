package mailbox

import (
	"strings"

	"github.com/elecmate/commsdesk/internal/models"
)

// Tab is a mailbox view over the feed.
type Tab string

const (
	TabInbox     Tab = "inbox"
	TabBriefs    Tab = "briefs"
	TabSafety    Tab = "safety"
	TabMandatory Tab = "mandatory"
)

// Tabs lists every tab in display order.
var Tabs = []Tab{TabInbox, TabBriefs, TabSafety, TabMandatory}

// ParseTab maps a query value to a Tab. Empty means inbox.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return TabInbox, nil
	case TabInbox, TabBriefs, TabSafety, TabMandatory:
		return t, nil
	}
	return "", validationError(CodeInvalidTab, ErrInvalidTab, "unknown tab %q", s)
}

// Matches is the tab predicate.
func (t Tab) Matches(m models.Message) bool {
	switch t {
	case TabInbox:
		return true
	case TabBriefs:
		return m.Type == models.TypeTeamBroadcast
	case TabSafety:
		return m.Type == models.TypeSafetyWarning
	case TabMandatory:
		return m.Type == models.TypeMandatoryReading
	}
	return false
}

// Query is the current view selection.
type Query struct {
	Tab        Tab
	Text       string
	UnreadOnly bool
}

// MatchesText is the search predicate: case-insensitive substring of the
// title or body. An empty query matches everything.
func MatchesText(m models.Message, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(m.Title), q) ||
		strings.Contains(strings.ToLower(m.Body), q)
}

// Filter returns the ordered subsequence of msgs that passes the tab, text
// and unread predicates. It does not modify msgs.
func Filter(msgs []models.Message, ov *models.Overlay, q Query) []models.Message {
	out := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		if !q.Tab.Matches(m) {
			continue
		}
		if !MatchesText(m, q.Text) {
			continue
		}
		if q.UnreadOnly && ov.IsRead(m.ID) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// UnreadCounts returns the number of unread messages on each tab.
func UnreadCounts(msgs []models.Message, ov *models.Overlay) map[Tab]int {
	counts := make(map[Tab]int, len(Tabs))
	for _, t := range Tabs {
		counts[t] = 0
	}
	for _, m := range msgs {
		if ov.IsRead(m.ID) {
			continue
		}
		for _, t := range Tabs {
			if t.Matches(m) {
				counts[t]++
			}
		}
	}
	return counts
}
