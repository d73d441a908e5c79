package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payslip"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type payslipRepository struct {
	db *database.DB
}

func NewPayslipRepository(db *database.DB) payslip.Repository {
	return &payslipRepository{db: db}
}

const payslipColumns = `
	id, payslip_number, pay_run_id, record_id, employee_id, month, year,
	employee_name, employee_code, department, designation, payment_mode,
	gross_salary, loss_of_pay_amount, pf, esi, professional_tax, tds,
	advance_deduction, loan_deduction, total_deductions, net_pay,
	payment_date, sent, sent_at, download_count, created_at, updated_at
`

func scanPayslip(row pgx.Row) (payslip.Payslip, error) {
	var s payslip.Payslip
	err := row.Scan(
		&s.ID, &s.PayslipNumber, &s.PayRunID, &s.RecordID, &s.EmployeeID,
		&s.Month, &s.Year, &s.EmployeeName, &s.EmployeeCode, &s.Department,
		&s.Designation, &s.PaymentMode, &s.GrossSalary, &s.LossOfPayAmount,
		&s.PF, &s.ESI, &s.ProfessionalTax, &s.TDS, &s.AdvanceDeduction,
		&s.LoanDeduction, &s.TotalDeductions, &s.NetPay, &s.PaymentDate,
		&s.Sent, &s.SentAt, &s.DownloadCount, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r *payslipRepository) Create(ctx context.Context, slip payslip.Payslip) (payslip.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payslips (
			id, payslip_number, pay_run_id, record_id, employee_id, month, year,
			employee_name, employee_code, department, designation, payment_mode,
			gross_salary, loss_of_pay_amount, pf, esi, professional_tax, tds,
			advance_deduction, loan_deduction, total_deductions, net_pay,
			payment_date
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23
		)
		RETURNING ` + payslipColumns + `
	`

	created, err := scanPayslip(q.QueryRow(ctx, query,
		slip.ID, slip.PayslipNumber, slip.PayRunID, slip.RecordID,
		slip.EmployeeID, slip.Month, slip.Year, slip.EmployeeName,
		slip.EmployeeCode, slip.Department, slip.Designation, slip.PaymentMode,
		slip.GrossSalary, slip.LossOfPayAmount, slip.PF, slip.ESI,
		slip.ProfessionalTax, slip.TDS, slip.AdvanceDeduction,
		slip.LoanDeduction, slip.TotalDeductions, slip.NetPay, slip.PaymentDate,
	))
	if err != nil {
		if violatesUnique(err, "uk_payslip_employee_period") {
			return payslip.Payslip{}, payslip.ErrDuplicatePayslip
		}
		return payslip.Payslip{}, fmt.Errorf("failed to create payslip: %w", err)
	}

	return created, nil
}

func (r *payslipRepository) GetByID(ctx context.Context, id string) (payslip.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	slip, err := scanPayslip(q.QueryRow(ctx,
		`SELECT `+payslipColumns+` FROM payslips WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payslip.Payslip{}, payslip.ErrPayslipNotFound
		}
		return payslip.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}

	return slip, nil
}

func (r *payslipRepository) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (payslip.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	slip, err := scanPayslip(q.QueryRow(ctx,
		`SELECT `+payslipColumns+` FROM payslips WHERE employee_id = $1 AND month = $2 AND year = $3`,
		employeeID, month, year))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payslip.Payslip{}, payslip.ErrPayslipNotFound
		}
		return payslip.Payslip{}, fmt.Errorf("failed to get payslip by period: %w", err)
	}

	return slip, nil
}

func (r *payslipRepository) ListByPayRun(ctx context.Context, payRunID string) ([]payslip.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx,
		`SELECT `+payslipColumns+` FROM payslips WHERE pay_run_id = $1 ORDER BY employee_code`,
		payRunID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	var slips []payslip.Payslip
	for rows.Next() {
		slip, err := scanPayslip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payslip: %w", err)
		}
		slips = append(slips, slip)
	}

	return slips, nil
}

func (r *payslipRepository) NextNumber(ctx context.Context, numberType payslip.NumberType, year, month int) (int, error) {
	q := GetQuerier(ctx, r.db)

	// Atomic upsert-increment keeps the sequence gap-free per scope even
	// when two processors allocate concurrently.
	query := `
		INSERT INTO payslip_counters (number_type, year, month, value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (number_type, year, month)
		DO UPDATE SET value = payslip_counters.value + 1
		RETURNING value
	`

	var value int
	if err := q.QueryRow(ctx, query, numberType, year, month).Scan(&value); err != nil {
		return 0, fmt.Errorf("failed to allocate payslip number: %w", err)
	}

	return value, nil
}

func (r *payslipRepository) MarkSent(ctx context.Context, id string) (payslip.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payslips
		SET sent = TRUE, sent_at = COALESCE(sent_at, NOW()), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + payslipColumns

	slip, err := scanPayslip(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payslip.Payslip{}, payslip.ErrPayslipNotFound
		}
		return payslip.Payslip{}, fmt.Errorf("failed to mark payslip sent: %w", err)
	}

	return slip, nil
}

func (r *payslipRepository) IncrementDownloadCount(ctx context.Context, id string) (payslip.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payslips
		SET download_count = download_count + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + payslipColumns

	slip, err := scanPayslip(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payslip.Payslip{}, payslip.ErrPayslipNotFound
		}
		return payslip.Payslip{}, fmt.Errorf("failed to increment download count: %w", err)
	}

	return slip, nil
}
