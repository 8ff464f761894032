package models

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the ISO date format used for Message.Date. Bucket boundaries
// are compared lexically against it, so every stored date must use it.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// MessageType decides the icon, colour and whether sign-off is available.
type MessageType string

const (
	TypeJobMessage       MessageType = "Job Message"
	TypeSafetyWarning    MessageType = "Safety Warning"
	TypeTeamBroadcast    MessageType = "Team Broadcast"
	TypeMandatoryReading MessageType = "Mandatory Reading"
)

// Valid reports whether t is one of the four known message types.
func (t MessageType) Valid() bool {
	switch t {
	case TypeJobMessage, TypeSafetyWarning, TypeTeamBroadcast, TypeMandatoryReading:
		return true
	}
	return false
}

// RequiresSignOff is true only for Mandatory Reading.
func (t MessageType) RequiresSignOff() bool {
	return t == TypeMandatoryReading
}

type Priority string

const (
	PriorityNormal Priority = "Normal"
	PriorityHigh   Priority = "High"
)

func (p Priority) Valid() bool {
	return p == PriorityNormal || p == PriorityHigh
}

// MessageStatus separates delivered messages from ones waiting on the
// delivery scheduler. Only sent messages are part of a viewer's feed.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusScheduled MessageStatus = "scheduled"
)

// Message is a single communication sent by the employer to a set of
// employees.
//
// ReadBy and SignedOffBy are recipient receipts. They are separate from the
// per-viewer Overlay: an employer browsing the panel marks messages read for
// themselves without becoming a recipient.
type Message struct {
	ID          string        `json:"id"`
	Type        MessageType   `json:"type"`
	Title       string        `json:"title"`
	Body        string        `json:"message"`
	Sender      string        `json:"sender"`
	Recipients  []string      `json:"recipients"`
	Job         *string       `json:"job"`
	Date        string        `json:"date"`
	Time        string        `json:"time"`
	ReadBy      []string      `json:"read"`
	SignedOffBy []string      `json:"signed_off,omitempty"`
	Priority    Priority      `json:"priority"`
	Status      MessageStatus `json:"status"`
	DeliverAt   *time.Time    `json:"deliver_at,omitempty"`
}

var (
	ErrDuplicateRecipient  = errors.New("duplicate recipient")
	ErrReceiptNotRecipient = errors.New("receipt from non-recipient")
)

// Validate checks the structural invariants of a message record.
func (m *Message) Validate() error {
	if m.ID == "" {
		return errors.New("message id is empty")
	}
	if !m.Type.Valid() {
		return fmt.Errorf("unknown message type %q", m.Type)
	}
	if !m.Priority.Valid() {
		return fmt.Errorf("unknown priority %q", m.Priority)
	}
	if _, err := time.Parse(DateLayout, m.Date); err != nil {
		return fmt.Errorf("parse date %q: %w", m.Date, err)
	}
	if m.Time != "" {
		if _, err := time.Parse(TimeLayout, m.Time); err != nil {
			return fmt.Errorf("parse time %q: %w", m.Time, err)
		}
	}

	recipients := make(map[string]struct{}, len(m.Recipients))
	for _, r := range m.Recipients {
		if _, dup := recipients[r]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateRecipient, r)
		}
		recipients[r] = struct{}{}
	}
	for _, list := range [][]string{m.ReadBy, m.SignedOffBy} {
		for _, id := range list {
			if _, ok := recipients[id]; !ok {
				return fmt.Errorf("%w: %s", ErrReceiptNotRecipient, id)
			}
		}
	}
	return nil
}

// HasRecipient reports whether userID is one of the message recipients.
func (m *Message) HasRecipient(userID string) bool {
	for _, r := range m.Recipients {
		if r == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can't mutate repository state.
func (m Message) Clone() Message {
	out := m
	out.Recipients = append([]string(nil), m.Recipients...)
	out.ReadBy = append([]string{}, m.ReadBy...)
	if m.SignedOffBy != nil {
		out.SignedOffBy = append([]string{}, m.SignedOffBy...)
	}
	if m.Job != nil {
		job := *m.Job
		out.Job = &job
	}
	if m.DeliverAt != nil {
		at := *m.DeliverAt
		out.DeliverAt = &at
	}
	return out
}

// Flag names one of the per-viewer overlay sets.
type Flag string

const (
	FlagPinned    Flag = "pinned"
	FlagRead      Flag = "read"
	FlagSignedOff Flag = "signed_off"
	FlagDeleted   Flag = "deleted"
)

// ReceiptKind is a recipient acknowledgement stored with the message.
type ReceiptKind string

const (
	ReceiptRead      ReceiptKind = "read"
	ReceiptSignedOff ReceiptKind = "signed_off"
)

// Overlay is one viewer's annotations over the shared feed. Each set is
// keyed by message id.
type Overlay struct {
	ViewerID  string
	Pinned    map[string]struct{}
	Read      map[string]struct{}
	SignedOff map[string]struct{}
	Deleted   map[string]struct{}
}

func NewOverlay(viewerID string) *Overlay {
	return &Overlay{
		ViewerID:  viewerID,
		Pinned:    map[string]struct{}{},
		Read:      map[string]struct{}{},
		SignedOff: map[string]struct{}{},
		Deleted:   map[string]struct{}{},
	}
}

func (o *Overlay) set(flag Flag) map[string]struct{} {
	switch flag {
	case FlagPinned:
		return o.Pinned
	case FlagRead:
		return o.Read
	case FlagSignedOff:
		return o.SignedOff
	case FlagDeleted:
		return o.Deleted
	}
	return nil
}

// Has reports whether messageID is in the flag's set. A nil overlay has
// nothing set.
func (o *Overlay) Has(flag Flag, messageID string) bool {
	if o == nil {
		return false
	}
	_, ok := o.set(flag)[messageID]
	return ok
}

// Set adds or removes messageID from the flag's set.
func (o *Overlay) Set(flag Flag, messageID string, on bool) {
	s := o.set(flag)
	if s == nil {
		return
	}
	if on {
		s[messageID] = struct{}{}
	} else {
		delete(s, messageID)
	}
}

// Clone returns an independent copy of the overlay.
func (o *Overlay) Clone() *Overlay {
	out := NewOverlay(o.ViewerID)
	for _, flag := range []Flag{FlagPinned, FlagRead, FlagSignedOff, FlagDeleted} {
		for id := range o.set(flag) {
			out.Set(flag, id, true)
		}
	}
	return out
}

func (o *Overlay) IsPinned(id string) bool    { return o.Has(FlagPinned, id) }
func (o *Overlay) IsRead(id string) bool      { return o.Has(FlagRead, id) }
func (o *Overlay) IsSignedOff(id string) bool { return o.Has(FlagSignedOff, id) }
func (o *Overlay) IsDeleted(id string) bool   { return o.Has(FlagDeleted, id) }

// TeamRole is the employee's role inside the employer's team.
type TeamRole string

const (
	RoleQS             TeamRole = "QS"
	RoleSupervisor     TeamRole = "Supervisor"
	RoleOperative      TeamRole = "Operative"
	RoleApprentice     TeamRole = "Apprentice"
	RoleProjectManager TeamRole = "Project Manager"
)

// Employee is a person on the employer's team and a possible recipient.
type Employee struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	TeamRole     TeamRole `json:"team_role"`
	Status       string   `json:"status"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"-"`
}

// Job is an external job the employer runs. Job messages reference it by title.
type Job struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Client string `json:"client"`
	Status string `json:"status"`
}
