package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/elecmate/commsdesk/internal/db"
	"github.com/elecmate/commsdesk/internal/models"
	"github.com/elecmate/commsdesk/internal/repository"
	"github.com/elecmate/commsdesk/internal/seed"
	"go.uber.org/zap"
)

// newTestDB needs a disposable database in TEST_DATABASE_URL; every table
// is truncated.
func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := db.New(ctx, url, zap.NewNop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(database.Close)

	if err := database.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := database.Pool().Exec(ctx,
		`TRUNCATE viewer_flags, message_receipts, messages, jobs, employees`); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	today := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)
	if err := Seed(ctx, database.Pool(), seed.Employees(""), seed.Jobs(), seed.Messages(today)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return database
}

func TestMessageStoreRoundTrip(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	store := NewMessageStore(database.Pool())

	msgs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 5 || msgs[0].ID != "COMM-001" || msgs[4].ID != "COMM-005" {
		t.Fatalf("unexpected seed order: %+v", msgs)
	}
	if got := msgs[3].SignedOffBy; len(got) != 1 || got[0] != "1" {
		t.Fatalf("COMM-004 signed off: got %v", got)
	}

	if err := store.Create(ctx, &msgs[0]); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	if err := store.AddReceipt(ctx, "COMM-001", "5", models.ReceiptRead); err != nil {
		t.Fatalf("add receipt: %v", err)
	}
	// Not a recipient: silently ignored.
	if err := store.AddReceipt(ctx, "COMM-001", "3", models.ReceiptRead); err != nil {
		t.Fatalf("add receipt: %v", err)
	}
	got, err := store.GetByID(ctx, "COMM-001")
	if err != nil || got == nil {
		t.Fatalf("get: %v %v", got, err)
	}
	if len(got.ReadBy) != 3 {
		t.Fatalf("read by: got %v", got.ReadBy)
	}

	missing, err := store.GetByID(ctx, "COMM-404")
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for missing id, got %v %v", missing, err)
	}
}

func TestReleaseDue(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	store := NewMessageStore(database.Pool())

	at := time.Date(2026, time.October, 18, 9, 30, 0, 0, time.UTC)
	msg := &models.Message{
		ID: "COMM-sched", Type: models.TypeTeamBroadcast, Title: "Toolbox talk", Body: "Ladders",
		Sender: "Lisa Parker", Recipients: []string{"1"}, Date: "2026-10-18", Time: "09:30",
		Priority: models.PriorityNormal, Status: models.StatusScheduled, DeliverAt: &at,
	}
	if err := store.Create(ctx, msg); err != nil {
		t.Fatalf("create: %v", err)
	}

	released, err := store.ReleaseDue(ctx, at.Add(-time.Minute))
	if err != nil || len(released) != 0 {
		t.Fatalf("nothing should be due yet: %v %v", released, err)
	}
	released, err = store.ReleaseDue(ctx, at)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if len(released) != 1 || released[0].Status != models.StatusSent {
		t.Fatalf("unexpected release: %+v", released)
	}
}

func TestOverlayStore(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	overlays := NewOverlayStore(database.Pool())

	for i := 0; i < 2; i++ {
		if err := overlays.SetFlag(ctx, "6", "COMM-002", models.FlagPinned, true); err != nil {
			t.Fatalf("set flag: %v", err)
		}
	}
	ov, err := overlays.Load(ctx, "6")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ov.IsPinned("COMM-002") {
		t.Fatal("expected pinned")
	}

	if err := overlays.SetFlag(ctx, "6", "COMM-002", models.FlagPinned, false); err != nil {
		t.Fatalf("clear flag: %v", err)
	}
	ov, err = overlays.Load(ctx, "6")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ov.IsPinned("COMM-002") {
		t.Fatal("expected unpinned")
	}
}

func TestEmployeeLookup(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	employees := NewEmployeeStore(database.Pool())

	e, err := employees.GetByEmail(ctx, "LISA.PARKER@example.com")
	if err != nil || e == nil || e.ID != "6" {
		t.Fatalf("get by email: %+v %v", e, err)
	}
	all, err := employees.List(ctx)
	if err != nil || len(all) != 6 {
		t.Fatalf("list: %d %v", len(all), err)
	}
}
