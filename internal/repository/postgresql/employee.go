package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.Directory {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) GetActiveEmployees(ctx context.Context, month, year int) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	periodStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, -1)

	query := `
		SELECT id, employee_code, full_name, department, designation,
			   join_date, exit_date, is_active, created_at, updated_at
		FROM employees
		WHERE is_active = true
		  AND join_date <= $1
		  AND (exit_date IS NULL OR exit_date >= $2)
		ORDER BY employee_code
	`

	rows, err := q.Query(ctx, query, periodEnd, periodStart)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		var e employee.Employee
		if err := rows.Scan(
			&e.ID, &e.EmployeeCode, &e.FullName, &e.Department, &e.Designation,
			&e.JoinDate, &e.ExitDate, &e.IsActive, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}

	return employees, nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_code, full_name, department, designation,
			   join_date, exit_date, is_active, created_at, updated_at
		FROM employees
		WHERE id = $1
	`

	var e employee.Employee
	err := q.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.EmployeeCode, &e.FullName, &e.Department, &e.Designation,
		&e.JoinDate, &e.ExitDate, &e.IsActive, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return e, nil
}

func (r *employeeRepository) GetSnapshot(ctx context.Context, id string) (employee.Snapshot, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_code, full_name, department, designation
		FROM employees
		WHERE id = $1
	`

	var s employee.Snapshot
	err := q.QueryRow(ctx, query, id).Scan(
		&s.EmployeeID, &s.EmployeeCode, &s.FullName, &s.Department, &s.Designation,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.Snapshot{}, employee.ErrEmployeeNotFound
		}
		return employee.Snapshot{}, fmt.Errorf("failed to get employee snapshot: %w", err)
	}

	return s, nil
}
