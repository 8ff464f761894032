package realtime

import "github.com/elecmate/commsdesk/internal/mailbox"

// Inbound touch frame types.
const (
	TouchStart = "touchstart"
	TouchMove  = "touchmove"
	TouchEnd   = "touchend"
)

// TouchFrame is a touch event forwarded by the client for one mailbox row.
type TouchFrame struct {
	Type  string  `json:"type"`
	RowID string  `json:"row_id,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

func (f TouchFrame) Point() mailbox.Point {
	return mailbox.Point{X: f.X, Y: f.Y}
}

// Outbound frame types.
const (
	FrameOffset       = "offset"
	FrameCancelled    = "cancelled"
	FrameCommit       = "commit"
	FrameNotification = "notification"
	FrameError        = "error"
)

// Frame is everything the server writes to a stream.
type Frame struct {
	Type         string                `json:"type"`
	RowID        string                `json:"row_id,omitempty"`
	Offset       *float64              `json:"offset,omitempty"`
	Action       mailbox.Action        `json:"action,omitempty"`
	Notification *mailbox.Notification `json:"notification,omitempty"`
	Error        string                `json:"error,omitempty"`
	Code         string                `json:"code,omitempty"`
}

func OffsetFrame(rowID string, offset float64) Frame {
	return Frame{Type: FrameOffset, RowID: rowID, Offset: &offset}
}

func CancelledFrame(rowID string) Frame {
	return Frame{Type: FrameCancelled, RowID: rowID}
}

func CommitFrame(c mailbox.Commit) Frame {
	offset := c.Offset
	return Frame{Type: FrameCommit, RowID: c.RowID, Action: c.Action, Offset: &offset}
}

func NotificationFrame(n mailbox.Notification) Frame {
	return Frame{Type: FrameNotification, Notification: &n}
}

func ErrorFrame(code, msg string) Frame {
	return Frame{Type: FrameError, Code: code, Error: msg}
}
