package postgresql

import (
	"context"
	"fmt"

	"github.com/yuadm/first-step-greet/internal/domain/employee"
	"github.com/yuadm/first-step-greet/internal/pkg/database"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `id, branch_id, employee_code, full_name, email, phone_number, job_title,
	employment_type, employment_status, hire_date, leaving_date, created_at, updated_at`

func scanEmployee(row interface{ Scan(...any) error }) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID,
		&e.BranchID,
		&e.EmployeeCode,
		&e.FullName,
		&e.Email,
		&e.PhoneNumber,
		&e.JobTitle,
		&e.EmploymentType,
		&e.EmploymentStatus,
		&e.HireDate,
		&e.LeavingDate,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	e, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

// List implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) List(ctx context.Context, filter employee.Filter) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.BranchID != nil {
		query += fmt.Sprintf(" AND branch_id = $%d", argIdx)
		args = append(args, *filter.BranchID)
		argIdx++
	}

	if filter.ActiveOnly {
		query += fmt.Sprintf(" AND employment_status <> $%d", argIdx)
		args = append(args, employee.EmploymentStatusInactive)
	}

	query += " ORDER BY full_name ASC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return employees, nil
}
