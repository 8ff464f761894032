package mailbox

import (
	"testing"

	"github.com/elecmate/commsdesk/internal/models"
)

func TestMatchesText(t *testing.T) {
	wet := testMessage("A", models.TypeSafetyWarning, "2024-02-13")
	wet.Title = "Safety Warning: Wet Floor"
	lunch := testMessage("B", models.TypeTeamBroadcast, "2024-02-13")
	lunch.Title = "Team Lunch"
	lunch.Body = "Pizza on Friday"

	tests := []struct {
		query string
		msg   models.Message
		want  bool
	}{
		{query: "safety", msg: wet, want: true},
		{query: "safety", msg: lunch, want: false},
		{query: "WET", msg: wet, want: true},
		{query: "pizza", msg: lunch, want: true},
		{query: "", msg: lunch, want: true},
	}
	for _, tt := range tests {
		if got := MatchesText(tt.msg, tt.query); got != tt.want {
			t.Errorf("MatchesText(%q, %q) = %v, want %v", tt.msg.Title, tt.query, got, tt.want)
		}
	}
}

func TestFilterIsConjunction(t *testing.T) {
	msgs := []models.Message{
		testMessage("JM", models.TypeJobMessage, "2024-02-13"),
		testMessage("SW1", models.TypeSafetyWarning, "2024-02-13"),
		testMessage("SW2", models.TypeSafetyWarning, "2024-02-12"),
		testMessage("TB", models.TypeTeamBroadcast, "2024-02-12"),
		testMessage("MR", models.TypeMandatoryReading, "2024-02-11"),
	}
	msgs[2].Title = "Scaffold inspection"

	ov := models.NewOverlay("1")
	ov.Set(models.FlagRead, "SW1", true)

	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{name: "inbox keeps everything", q: Query{Tab: TabInbox}, want: []string{"JM", "SW1", "SW2", "TB", "MR"}},
		{name: "safety tab", q: Query{Tab: TabSafety}, want: []string{"SW1", "SW2"}},
		{name: "briefs tab", q: Query{Tab: TabBriefs}, want: []string{"TB"}},
		{name: "mandatory tab", q: Query{Tab: TabMandatory}, want: []string{"MR"}},
		{name: "safety unread", q: Query{Tab: TabSafety, UnreadOnly: true}, want: []string{"SW2"}},
		{name: "safety text", q: Query{Tab: TabSafety, Text: "scaffold"}, want: []string{"SW2"}},
		{name: "text on wrong tab", q: Query{Tab: TabBriefs, Text: "scaffold"}, want: []string{}},
		{name: "inbox unread", q: Query{Tab: TabInbox, UnreadOnly: true}, want: []string{"JM", "SW2", "TB", "MR"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(msgs, ov, tt.q)
			if !equalIDs(got, tt.want...) {
				t.Fatalf("got %v want %v", ids(got), tt.want)
			}
		})
	}

	if len(msgs) != 5 || msgs[0].ID != "JM" {
		t.Fatal("Filter must not modify its input")
	}
}

func TestParseTab(t *testing.T) {
	tests := []struct {
		in      string
		want    Tab
		wantErr bool
	}{
		{in: "", want: TabInbox},
		{in: "inbox", want: TabInbox},
		{in: "Safety", want: TabSafety},
		{in: " briefs ", want: TabBriefs},
		{in: "mandatory", want: TabMandatory},
		{in: "archive", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseTab(tt.in)
		if tt.wantErr {
			if !IsValidation(err) {
				t.Errorf("ParseTab(%q): expected validation error, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseTab(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestUnreadCounts(t *testing.T) {
	msgs := []models.Message{
		testMessage("JM", models.TypeJobMessage, "2024-02-13"),
		testMessage("SW", models.TypeSafetyWarning, "2024-02-13"),
		testMessage("MR", models.TypeMandatoryReading, "2024-02-11"),
	}
	ov := models.NewOverlay("1")
	ov.Set(models.FlagRead, "JM", true)

	counts := UnreadCounts(msgs, ov)
	want := map[Tab]int{TabInbox: 2, TabSafety: 1, TabMandatory: 1, TabBriefs: 0}
	for tab, n := range want {
		if counts[tab] != n {
			t.Errorf("tab %s: got %d want %d", tab, counts[tab], n)
		}
	}
}
