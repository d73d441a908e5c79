package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

const summaryColumns = `
	id, employee_id, month, year, total_working_days, present_days,
	absent_days, paid_leave, unpaid_leave, half_days, overtime_hours,
	status, approved_by, approved_at, created_at, updated_at
`

func scanSummary(row pgx.Row) (attendance.Summary, error) {
	var s attendance.Summary
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.Month, &s.Year, &s.TotalWorkingDays,
		&s.PresentDays, &s.AbsentDays, &s.PaidLeave, &s.UnpaidLeave,
		&s.HalfDays, &s.OvertimeHours, &s.Status, &s.ApprovedBy, &s.ApprovedAt,
		&s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r *attendanceRepository) Upsert(ctx context.Context, summary attendance.Summary) (attendance.Summary, error) {
	q := GetQuerier(ctx, r.db)

	// The WHERE guard on the conflict branch keeps approved summaries
	// immutable: an upsert against one matches no row and returns no rows.
	query := `
		INSERT INTO attendance_summaries (
			id, employee_id, month, year, total_working_days, present_days,
			absent_days, paid_leave, unpaid_leave, half_days, overtime_hours, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'unapproved')
		ON CONFLICT (employee_id, month, year) DO UPDATE SET
			total_working_days = EXCLUDED.total_working_days,
			present_days = EXCLUDED.present_days,
			absent_days = EXCLUDED.absent_days,
			paid_leave = EXCLUDED.paid_leave,
			unpaid_leave = EXCLUDED.unpaid_leave,
			half_days = EXCLUDED.half_days,
			overtime_hours = EXCLUDED.overtime_hours,
			updated_at = NOW()
		WHERE attendance_summaries.status = 'unapproved'
		RETURNING ` + summaryColumns + `
	`

	s, err := scanSummary(q.QueryRow(ctx, query,
		summary.ID, summary.EmployeeID, summary.Month, summary.Year,
		summary.TotalWorkingDays, summary.PresentDays, summary.AbsentDays,
		summary.PaidLeave, summary.UnpaidLeave, summary.HalfDays, summary.OvertimeHours,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Summary{}, attendance.ErrSummaryImmutable
		}
		return attendance.Summary{}, fmt.Errorf("failed to upsert attendance summary: %w", err)
	}

	return s, nil
}

func (r *attendanceRepository) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (attendance.Summary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + summaryColumns + `
		FROM attendance_summaries
		WHERE employee_id = $1 AND month = $2 AND year = $3
	`

	s, err := scanSummary(q.QueryRow(ctx, query, employeeID, month, year))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Summary{}, attendance.ErrSummaryNotFound
		}
		return attendance.Summary{}, fmt.Errorf("failed to get attendance summary: %w", err)
	}

	return s, nil
}

func (r *attendanceRepository) GetApproved(ctx context.Context, employeeID string, month, year int) (attendance.Summary, error) {
	s, err := r.GetByEmployeePeriod(ctx, employeeID, month, year)
	if err != nil {
		return attendance.Summary{}, err
	}
	if !s.IsApproved() {
		return attendance.Summary{}, attendance.ErrNotApproved
	}
	return s, nil
}

func (r *attendanceRepository) Approve(ctx context.Context, employeeID string, month, year int, approverID string) (attendance.Summary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_summaries
		SET status = 'approved', approved_by = $4, approved_at = NOW(), updated_at = NOW()
		WHERE employee_id = $1 AND month = $2 AND year = $3 AND status = 'unapproved'
		RETURNING ` + summaryColumns + `
	`

	s, err := scanSummary(q.QueryRow(ctx, query, employeeID, month, year, approverID))
	if err != nil {
		if err == pgx.ErrNoRows {
			// Either absent or already approved; disambiguate for the caller.
			if _, getErr := r.GetByEmployeePeriod(ctx, employeeID, month, year); getErr != nil {
				return attendance.Summary{}, getErr
			}
			return attendance.Summary{}, attendance.ErrAlreadyApproved
		}
		return attendance.Summary{}, fmt.Errorf("failed to approve attendance summary: %w", err)
	}

	return s, nil
}

func (r *attendanceRepository) Reopen(ctx context.Context, employeeID string, month, year int) (attendance.Summary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_summaries
		SET status = 'unapproved', approved_by = NULL, approved_at = NULL, updated_at = NOW()
		WHERE employee_id = $1 AND month = $2 AND year = $3 AND status = 'approved'
		RETURNING ` + summaryColumns + `
	`

	s, err := scanSummary(q.QueryRow(ctx, query, employeeID, month, year))
	if err != nil {
		if err == pgx.ErrNoRows {
			if _, getErr := r.GetByEmployeePeriod(ctx, employeeID, month, year); getErr != nil {
				return attendance.Summary{}, getErr
			}
			return attendance.Summary{}, attendance.ErrNotApproved
		}
		return attendance.Summary{}, fmt.Errorf("failed to reopen attendance summary: %w", err)
	}

	return s, nil
}

func (r *attendanceRepository) ListByPeriod(ctx context.Context, month, year int) ([]attendance.Summary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + summaryColumns + `
		FROM attendance_summaries
		WHERE month = $1 AND year = $2
		ORDER BY employee_id
	`

	rows, err := q.Query(ctx, query, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance summaries: %w", err)
	}
	defer rows.Close()

	var summaries []attendance.Summary
	for rows.Next() {
		var s attendance.Summary
		if err := rows.Scan(
			&s.ID, &s.EmployeeID, &s.Month, &s.Year, &s.TotalWorkingDays,
			&s.PresentDays, &s.AbsentDays, &s.PaidLeave, &s.UnpaidLeave,
			&s.HalfDays, &s.OvertimeHours, &s.Status, &s.ApprovedBy, &s.ApprovedAt,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, nil
}
