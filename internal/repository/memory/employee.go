package memory

import (
	"context"
	"strings"

	"github.com/elecmate/commsdesk/internal/models"
)

// EmployeeStore is a read-only directory.
type EmployeeStore struct {
	employees []models.Employee
}

func NewEmployeeStore(employees ...models.Employee) *EmployeeStore {
	return &EmployeeStore{employees: append([]models.Employee(nil), employees...)}
}

func (s *EmployeeStore) List(ctx context.Context) ([]models.Employee, error) {
	return append(make([]models.Employee, 0, len(s.employees)), s.employees...), nil
}

func (s *EmployeeStore) GetByID(ctx context.Context, id string) (*models.Employee, error) {
	for _, e := range s.employees {
		if e.ID == id {
			e := e
			return &e, nil
		}
	}
	return nil, nil
}

func (s *EmployeeStore) GetByEmail(ctx context.Context, email string) (*models.Employee, error) {
	for _, e := range s.employees {
		if strings.EqualFold(e.Email, email) {
			e := e
			return &e, nil
		}
	}
	return nil, nil
}

type JobStore struct {
	jobs []models.Job
}

func NewJobStore(jobs ...models.Job) *JobStore {
	return &JobStore{jobs: append([]models.Job(nil), jobs...)}
}

func (s *JobStore) List(ctx context.Context) ([]models.Job, error) {
	return append(make([]models.Job, 0, len(s.jobs)), s.jobs...), nil
}

func (s *JobStore) GetByID(ctx context.Context, id string) (*models.Job, error) {
	for _, j := range s.jobs {
		if j.ID == id {
			j := j
			return &j, nil
		}
	}
	return nil, nil
}
