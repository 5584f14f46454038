package compliance

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuadm/first-step-greet/internal/domain/client"
	"github.com/yuadm/first-step-greet/internal/domain/compliance"
	"github.com/yuadm/first-step-greet/internal/domain/employee"
)

type subjectSource struct {
	employeeRepo employee.EmployeeRepository
	clientRepo   client.ClientRepository
}

// NewSubjectSource reads compliance subjects from the employee and client tables.
func NewSubjectSource(employeeRepo employee.EmployeeRepository, clientRepo client.ClientRepository) compliance.SubjectSource {
	return &subjectSource{
		employeeRepo: employeeRepo,
		clientRepo:   clientRepo,
	}
}

func (s *subjectSource) ListSubjects(ctx context.Context, target compliance.TargetTable, filter compliance.SubjectFilter) ([]compliance.Subject, error) {
	switch target {
	case compliance.TargetEmployees:
		employees, err := s.employeeRepo.List(ctx, employee.Filter{BranchID: filter.BranchID, ActiveOnly: filter.ActiveOnly})
		if err != nil {
			return nil, fmt.Errorf("failed to list employees: %w", err)
		}
		subjects := make([]compliance.Subject, 0, len(employees))
		for _, e := range employees {
			subjects = append(subjects, compliance.Subject{
				ID:       e.ID,
				Name:     e.FullName,
				BranchID: e.BranchID,
				Kind:     compliance.SubjectEmployee,
			})
		}
		return subjects, nil

	case compliance.TargetClients:
		clients, err := s.clientRepo.List(ctx, client.Filter{BranchID: filter.BranchID, ActiveOnly: filter.ActiveOnly})
		if err != nil {
			return nil, fmt.Errorf("failed to list clients: %w", err)
		}
		subjects := make([]compliance.Subject, 0, len(clients))
		for _, c := range clients {
			subjects = append(subjects, compliance.Subject{
				ID:       c.ID,
				Name:     c.FullName,
				BranchID: c.BranchID,
				Kind:     compliance.SubjectClient,
			})
		}
		return subjects, nil
	}

	return nil, fmt.Errorf("unknown compliance target %q", target)
}

func (s *subjectSource) SubjectExists(ctx context.Context, target compliance.TargetTable, id string) (bool, error) {
	var err error
	switch target {
	case compliance.TargetEmployees:
		_, err = s.employeeRepo.GetByID(ctx, id)
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return false, nil
		}
	case compliance.TargetClients:
		_, err = s.clientRepo.GetByID(ctx, id)
		if errors.Is(err, client.ErrClientNotFound) {
			return false, nil
		}
	default:
		return false, fmt.Errorf("unknown compliance target %q", target)
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func subjectIDs(subjects []compliance.Subject) []string {
	ids := make([]string, 0, len(subjects))
	for _, s := range subjects {
		ids = append(ids, s.ID)
	}
	return ids
}
