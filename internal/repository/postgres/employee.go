package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/elecmate/commsdesk/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EmployeeStore struct {
	pool *pgxpool.Pool
}

func NewEmployeeStore(pool *pgxpool.Pool) *EmployeeStore {
	return &EmployeeStore{pool: pool}
}

const selectEmployee = `
	SELECT id, name, role, team_role, status, email, password_hash
	FROM employees`

func scanEmployee(row pgx.Row) (*models.Employee, error) {
	var (
		e        models.Employee
		teamRole string
	)
	if err := row.Scan(&e.ID, &e.Name, &e.Role, &teamRole, &e.Status, &e.Email, &e.PasswordHash); err != nil {
		return nil, err
	}
	e.TeamRole = models.TeamRole(teamRole)
	return &e, nil
}

func (s *EmployeeStore) List(ctx context.Context) ([]models.Employee, error) {
	rows, err := s.pool.Query(ctx, selectEmployee+` ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	employees := make([]models.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	return employees, nil
}

func (s *EmployeeStore) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	e, err := scanEmployee(s.pool.QueryRow(ctx, selectEmployee+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return e, nil
}

// GetByEmail matches case-insensitively.
func (s *EmployeeStore) GetByEmail(ctx context.Context, email string) (*models.Employee, error) {
	e, err := scanEmployee(s.pool.QueryRow(ctx, selectEmployee+` WHERE lower(email) = lower($1)`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee by email: %w", err)
	}
	return e, nil
}

type JobStore struct {
	pool *pgxpool.Pool
}

func NewJobStore(pool *pgxpool.Pool) *JobStore {
	return &JobStore{pool: pool}
}

func (s *JobStore) List(ctx context.Context) ([]models.Job, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, client, status
		FROM jobs
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]models.Job, 0)
	for rows.Next() {
		var j models.Job
		if err := rows.Scan(&j.ID, &j.Title, &j.Client, &j.Status); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

func (s *JobStore) GetByID(ctx context.Context, id string) (*models.Job, error) {
	var j models.Job
	err := s.pool.QueryRow(ctx, `
		SELECT id, title, client, status
		FROM jobs
		WHERE id = $1`, id).Scan(&j.ID, &j.Title, &j.Client, &j.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}
