package mailbox

import (
	"context"
	"math"
)

// Swipe tuning, in pixels.
const (
	ScrollCancelPx    = 10.0
	ResistanceStartPx = 80.0
	ResistanceFactor  = 0.3
	MaxOffsetPx       = 120.0
	CommitThresholdPx = 70.0
)

// Point is a touch coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Action is what a finished swipe does to its row.
type Action string

const (
	ActionNone       Action = "none"
	ActionToggleRead Action = "toggle_read"
	ActionDelete     Action = "delete"
)

// Commit is the outcome of End.
type Commit struct {
	RowID  string  `json:"row_id"`
	Action Action  `json:"action"`
	Offset float64 `json:"offset"`
}

// Gesture tracks the single horizontal drag a viewer may have in progress.
// The zero value is Idle. Gesture is not safe for concurrent use; each
// connection owns one.
type Gesture struct {
	dragging bool
	rowID    string
	start    Point
	offset   float64
}

// Dragging reports the active row, if any.
func (g *Gesture) Dragging() (rowID string, ok bool) {
	return g.rowID, g.dragging
}

// Offset is the current clamped row offset. It is 0 when idle.
func (g *Gesture) Offset() float64 {
	return g.offset
}

// Start begins a drag on rowID. A drag already in progress on any row is
// cancelled without committing.
func (g *Gesture) Start(rowID string, p Point) {
	g.reset()
	g.dragging = true
	g.rowID = rowID
	g.start = p
}

// Move updates the offset from a new touch point. It returns cancelled=true
// when the movement is a vertical scroll; the gesture is then Idle. Move on
// an idle gesture is a no-op.
func (g *Gesture) Move(p Point) (offset float64, cancelled bool) {
	if !g.dragging {
		return 0, false
	}
	dx := p.X - g.start.X
	dy := p.Y - g.start.Y

	if math.Abs(dy) > math.Abs(dx) && math.Abs(dy) > ScrollCancelPx {
		g.reset()
		return 0, true
	}

	g.offset = SwipeOffset(dx)
	return g.offset, false
}

// End commits the drag and returns to Idle.
func (g *Gesture) End() Commit {
	if !g.dragging {
		return Commit{Action: ActionNone}
	}
	c := Commit{RowID: g.rowID, Offset: g.offset, Action: CommitAction(g.offset)}
	g.reset()
	return c
}

// Cancel abandons any drag in progress.
func (g *Gesture) Cancel() {
	g.reset()
}

func (g *Gesture) reset() {
	*g = Gesture{}
}

// SwipeOffset converts a raw horizontal delta to a row offset: movement
// beyond ResistanceStartPx is damped by ResistanceFactor and the result is
// clamped to ±MaxOffsetPx.
func SwipeOffset(dx float64) float64 {
	abs := math.Abs(dx)
	if abs > ResistanceStartPx {
		abs = ResistanceStartPx + (abs-ResistanceStartPx)*ResistanceFactor
	}
	abs = math.Min(abs, MaxOffsetPx)
	return math.Copysign(abs, dx)
}

// CommitAction maps a final offset to an action. Both thresholds are strict.
func CommitAction(offset float64) Action {
	switch {
	case offset > CommitThresholdPx:
		return ActionToggleRead
	case offset < -CommitThresholdPx:
		return ActionDelete
	}
	return ActionNone
}

// ApplyCommit runs a committed swipe against the store.
func ApplyCommit(ctx context.Context, store *Store, viewerID string, c Commit) error {
	switch c.Action {
	case ActionToggleRead:
		_, err := store.ToggleRead(ctx, viewerID, c.RowID)
		return err
	case ActionDelete:
		return store.Delete(ctx, viewerID, c.RowID)
	}
	return nil
}
