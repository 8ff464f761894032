package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/elecmate/commsdesk/internal/models"
	"github.com/elecmate/commsdesk/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed inserts the demo dataset. Rows that already exist are left alone,
// so running it twice is safe.
func Seed(ctx context.Context, pool *pgxpool.Pool, employees []models.Employee, jobs []models.Job, messages []models.Message) error {
	for _, e := range employees {
		_, err := pool.Exec(ctx, `
			INSERT INTO employees (id, name, role, team_role, status, email, password_hash)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO NOTHING`,
			e.ID, e.Name, e.Role, string(e.TeamRole), e.Status, e.Email, e.PasswordHash)
		if err != nil {
			return fmt.Errorf("seed employee %s: %w", e.ID, err)
		}
	}

	for _, j := range jobs {
		_, err := pool.Exec(ctx, `
			INSERT INTO jobs (id, title, client, status)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING`,
			j.ID, j.Title, j.Client, j.Status)
		if err != nil {
			return fmt.Errorf("seed job %s: %w", j.ID, err)
		}
	}

	store := NewMessageStore(pool)
	for i := range messages {
		if err := store.Create(ctx, &messages[i]); err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("seed message %s: %w", messages[i].ID, err)
		}
	}
	return nil
}
