package repository

import (
	"context"
	"errors"
	"time"

	"github.com/elecmate/commsdesk/internal/models"
)

// Every method takes ctx first: the Postgres and Redis implementations do
// network I/O and must stop when the request is cancelled.
//
// Lookups return nil, nil when the row does not exist. Callers translate
// that into a not-found error at the service layer.

// ErrDuplicate is wrapped by Create when the id already exists.
var ErrDuplicate = errors.New("duplicate key")

// MessageRepository holds the canonical message list.
type MessageRepository interface {
	// List returns all sent messages in canonical (insertion) order.
	// Scheduled messages are excluded until released.
	List(ctx context.Context) ([]models.Message, error)

	// GetByID returns a single message, sent or scheduled.
	GetByID(ctx context.Context, id string) (*models.Message, error)

	// Create appends msg to the end of the canonical list.
	Create(ctx context.Context, msg *models.Message) error

	// AddReceipt records that userID read or signed off a message.
	// Adding an existing receipt is a no-op.
	AddReceipt(ctx context.Context, messageID, userID string, kind models.ReceiptKind) error

	// ReleaseDue marks scheduled messages with DeliverAt <= now as sent and
	// returns them with their Date/Time set to the delivery instant.
	ReleaseDue(ctx context.Context, now time.Time) ([]models.Message, error)
}

// OverlayRepository stores per-viewer annotations keyed by
// (viewer, message, flag).
type OverlayRepository interface {
	// Load returns the viewer's overlay. Never nil on success.
	Load(ctx context.Context, viewerID string) (*models.Overlay, error)

	// SetFlag adds (on=true) or removes the flag. Both are idempotent.
	SetFlag(ctx context.Context, viewerID, messageID string, flag models.Flag, on bool) error
}

// EmployeeRepository is the recipient directory.
type EmployeeRepository interface {
	List(ctx context.Context) ([]models.Employee, error)
	GetByID(ctx context.Context, id string) (*models.Employee, error)

	// GetByEmail is used for login.
	GetByEmail(ctx context.Context, email string) (*models.Employee, error)
}

// JobRepository lists the jobs a Job Message can reference.
type JobRepository interface {
	List(ctx context.Context) ([]models.Job, error)
	GetByID(ctx context.Context, id string) (*models.Job, error)
}

// IdempotencyStore maps client request ids to the message they created so a
// retried send returns the original message instead of inserting twice.
type IdempotencyStore interface {
	// Reserve claims key for messageID. If key was already claimed it returns
	// the earlier message id and fresh=false.
	Reserve(ctx context.Context, key, messageID string) (existing string, fresh bool, err error)

	// Release drops a claim whose insert failed, so a retry can succeed.
	Release(ctx context.Context, key string) error
}
