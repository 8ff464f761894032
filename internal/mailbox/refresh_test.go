package mailbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/elecmate/commsdesk/internal/models"
	"go.uber.org/zap"
)

func TestRefreshNotifiesAfterDelay(t *testing.T) {
	notes := newRecorder()
	r := NewRefresher(10*time.Millisecond, notes)

	if err := r.Refresh(context.Background(), "2"); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	got := notes.For("2")
	if len(got) != 1 || got[0].Title != "Messages refreshed" {
		t.Fatalf("unexpected notifications: %+v", got)
	}
}

func TestRefreshHonoursCancellation(t *testing.T) {
	notes := newRecorder()
	r := NewRefresher(time.Hour, notes)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Refresh(ctx, "2"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if notes.Total() != 0 {
		t.Fatal("cancelled refresh must not notify")
	}
}

func TestViewCombinesPipeline(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t,
		testMessage("M1", models.TypeSafetyWarning, "2024-02-13"),
		testMessage("M2", models.TypeSafetyWarning, "2024-02-12"),
		testMessage("M3", models.TypeTeamBroadcast, "2024-02-01"),
	)
	if _, err := store.TogglePin(ctx, "1", "M2"); err != nil {
		t.Fatalf("pin: %v", err)
	}
	if _, err := store.ToggleRead(ctx, "1", "M1"); err != nil {
		t.Fatalf("read: %v", err)
	}

	v, err := store.View(ctx, "1", Query{}, groupNow, GroupOptions{})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if v.Tab != TabInbox || v.Total != 3 {
		t.Fatalf("unexpected view header: tab=%s total=%d", v.Tab, v.Total)
	}
	if !equalIDs(v.Pinned, "M2") {
		t.Fatalf("expected pinned [M2], got %v", ids(v.Pinned))
	}
	if len(v.Groups) != 2 || v.Groups[0].Bucket != BucketToday || v.Groups[1].Bucket != BucketEarlier {
		t.Fatalf("unexpected groups: %+v", v.Groups)
	}
	if !v.Flags["M1"].Read || !v.Flags["M2"].Pinned || v.Flags["M3"].Read {
		t.Fatalf("unexpected flags: %+v", v.Flags)
	}
	if v.UnreadCounts[TabSafety] != 1 || v.UnreadCounts[TabInbox] != 2 {
		t.Fatalf("unexpected unread counts: %+v", v.UnreadCounts)
	}

	v, err = store.View(ctx, "1", Query{Tab: TabSafety, UnreadOnly: true}, groupNow, GroupOptions{})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if v.Total != 1 || len(v.Pinned) != 0 || !equalIDs(v.Groups[0].Messages, "M2") {
		t.Fatalf("unexpected safety view: %+v", v)
	}
}

func TestLogNotifierDoesNotPanic(t *testing.T) {
	n := NewLogNotifier(zap.NewNop())
	n.Notify(context.Background(), "1", Notification{Title: "t"})

	called := false
	NotifierFunc(func(ctx context.Context, viewerID string, note Notification) { called = true }).
		Notify(context.Background(), "1", Notification{})
	if !called {
		t.Fatal("expected NotifierFunc to be called")
	}
}
