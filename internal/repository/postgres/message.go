package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/elecmate/commsdesk/internal/models"
	"github.com/elecmate/commsdesk/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type MessageStore struct {
	pool *pgxpool.Pool
}

func NewMessageStore(pool *pgxpool.Pool) *MessageStore {
	return &MessageStore{pool: pool}
}

// selectMessage folds receipts into arrays so one row is one message.
// ARRAY(subquery) yields '{}' rather than NULL when there are no receipts.
const selectMessage = `
	SELECT m.id, m.type, m.title, m.body, m.sender, m.recipients, m.job,
	       m.date, m.time, m.priority, m.status, m.deliver_at,
	       ARRAY(SELECT r.user_id FROM message_receipts r
	             WHERE r.message_id = m.id AND r.kind = 'read' ORDER BY r.created_at, r.user_id),
	       ARRAY(SELECT r.user_id FROM message_receipts r
	             WHERE r.message_id = m.id AND r.kind = 'signed_off' ORDER BY r.created_at, r.user_id)
	FROM messages m`

func scanMessage(row pgx.Row) (*models.Message, error) {
	var (
		m                         models.Message
		msgType, priority, status string
		readBy, signedOffBy       []string
	)
	if err := row.Scan(
		&m.ID,
		&msgType,
		&m.Title,
		&m.Body,
		&m.Sender,
		&m.Recipients,
		&m.Job,
		&m.Date,
		&m.Time,
		&priority,
		&status,
		&m.DeliverAt,
		&readBy,
		&signedOffBy,
	); err != nil {
		return nil, err
	}
	m.Type = models.MessageType(msgType)
	m.Priority = models.Priority(priority)
	m.Status = models.MessageStatus(status)
	m.ReadBy = readBy
	if len(signedOffBy) > 0 {
		m.SignedOffBy = signedOffBy
	}
	return &m, nil
}

func (s *MessageStore) List(ctx context.Context) ([]models.Message, error) {
	query := selectMessage + `
	WHERE m.status = 'sent'
	ORDER BY m.seq`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

func (s *MessageStore) GetByID(ctx context.Context, id string) (*models.Message, error) {
	msg, err := scanMessage(s.pool.QueryRow(ctx, selectMessage+` WHERE m.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get message: %w", err)
	}
	return msg, nil
}

// Create inserts the message and any receipts it already carries in one
// transaction. seq (bigserial) fixes its place at the end of the list.
func (s *MessageStore) Create(ctx context.Context, msg *models.Message) error {
	if msg.Status == "" {
		msg.Status = models.StatusSent
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO messages (id, type, title, body, sender, recipients, job, date, time, priority, status, deliver_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			msg.ID, string(msg.Type), msg.Title, msg.Body, msg.Sender, msg.Recipients, msg.Job,
			msg.Date, msg.Time, string(msg.Priority), string(msg.Status), msg.DeliverAt,
		)
		if err != nil {
			return err
		}
		for kind, users := range map[models.ReceiptKind][]string{
			models.ReceiptRead:      msg.ReadBy,
			models.ReceiptSignedOff: msg.SignedOffBy,
		} {
			for _, u := range users {
				if _, err := tx.Exec(ctx, `
					INSERT INTO message_receipts (message_id, user_id, kind)
					VALUES ($1, $2, $3)
					ON CONFLICT DO NOTHING`, msg.ID, u, string(kind)); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert message %s: %w", msg.ID, repository.ErrDuplicate)
		}
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// AddReceipt only inserts when userID is a recipient, which keeps
// receipts a subset of recipients at the database level.
func (s *MessageStore) AddReceipt(ctx context.Context, messageID, userID string, kind models.ReceiptKind) error {
	query := `
		INSERT INTO message_receipts (message_id, user_id, kind)
		SELECT id, $2, $3 FROM messages
		WHERE id = $1 AND $2 = ANY(recipients)
		ON CONFLICT (message_id, user_id, kind) DO NOTHING`

	if _, err := s.pool.Exec(ctx, query, messageID, userID, string(kind)); err != nil {
		return fmt.Errorf("add receipt: %w", err)
	}
	return nil
}

func (s *MessageStore) ReleaseDue(ctx context.Context, now time.Time) ([]models.Message, error) {
	var ids []string
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT id, deliver_at FROM messages
			WHERE status = 'scheduled' AND deliver_at <= $1
			ORDER BY deliver_at, seq
			FOR UPDATE SKIP LOCKED`, now)
		if err != nil {
			return err
		}
		type due struct {
			id string
			at time.Time
		}
		var batch []due
		for rows.Next() {
			var d due
			if err := rows.Scan(&d.id, &d.at); err != nil {
				rows.Close()
				return err
			}
			batch = append(batch, d)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, d := range batch {
			at := d.at.In(now.Location())
			if _, err := tx.Exec(ctx, `
				UPDATE messages SET status = 'sent', date = $2, time = $3
				WHERE id = $1`, d.id, at.Format(models.DateLayout), at.Format(models.TimeLayout)); err != nil {
				return err
			}
			ids = append(ids, d.id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("release scheduled messages: %w", err)
	}

	released := make([]models.Message, 0, len(ids))
	for _, id := range ids {
		msg, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if msg != nil {
			released = append(released, *msg)
		}
	}
	return released, nil
}
