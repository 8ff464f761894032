package postgres

import (
	"context"
	"fmt"

	"github.com/elecmate/commsdesk/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OverlayStore persists viewer flags as one row per (viewer, message, flag).
type OverlayStore struct {
	pool *pgxpool.Pool
}

func NewOverlayStore(pool *pgxpool.Pool) *OverlayStore {
	return &OverlayStore{pool: pool}
}

func (s *OverlayStore) Load(ctx context.Context, viewerID string) (*models.Overlay, error) {
	query := `
		SELECT message_id, flag
		FROM viewer_flags
		WHERE viewer_id = $1`

	rows, err := s.pool.Query(ctx, query, viewerID)
	if err != nil {
		return nil, fmt.Errorf("load overlay: %w", err)
	}
	defer rows.Close()

	ov := models.NewOverlay(viewerID)
	for rows.Next() {
		var messageID, flag string
		if err := rows.Scan(&messageID, &flag); err != nil {
			return nil, fmt.Errorf("scan flag: %w", err)
		}
		ov.Set(models.Flag(flag), messageID, true)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flags: %w", err)
	}
	return ov, nil
}

// SetFlag is idempotent both ways: inserting an existing flag does nothing
// and deleting a missing one deletes zero rows.
func (s *OverlayStore) SetFlag(ctx context.Context, viewerID, messageID string, flag models.Flag, on bool) error {
	var query string
	if on {
		query = `
			INSERT INTO viewer_flags (viewer_id, message_id, flag)
			VALUES ($1, $2, $3)
			ON CONFLICT (viewer_id, message_id, flag) DO NOTHING`
	} else {
		query = `
			DELETE FROM viewer_flags
			WHERE viewer_id = $1 AND message_id = $2 AND flag = $3`
	}

	if _, err := s.pool.Exec(ctx, query, viewerID, messageID, string(flag)); err != nil {
		return fmt.Errorf("set %s flag: %w", flag, err)
	}
	return nil
}
