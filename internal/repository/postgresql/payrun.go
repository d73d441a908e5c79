package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payrun"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type payrunRepository struct {
	db *database.DB
}

func NewPayRunRepository(db *database.DB) payrun.Repository {
	return &payrunRepository{db: db}
}

// payRunPeriodLockClass namespaces the advisory lock taken while generating a
// run, keyed with year*100+month.
const payRunPeriodLockClass = 7201

const payRunColumns = `
	id, month, year, status, total_gross, total_deductions, total_net_pay,
	total_employees, warnings, requested_by, approved_by, approved_at,
	processed_by, processed_at, payment_date, cancel_reason, created_at, updated_at
`

func scanPayRun(row pgx.Row) (payrun.PayRun, error) {
	var run payrun.PayRun
	var warningsBytes []byte
	err := row.Scan(
		&run.ID, &run.Month, &run.Year, &run.Status, &run.TotalGross,
		&run.TotalDeductions, &run.TotalNetPay, &run.TotalEmployees,
		&warningsBytes, &run.RequestedBy, &run.ApprovedBy, &run.ApprovedAt,
		&run.ProcessedBy, &run.ProcessedAt, &run.PaymentDate, &run.CancelReason,
		&run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		return payrun.PayRun{}, err
	}
	_ = json.Unmarshal(warningsBytes, &run.Warnings)
	return run, nil
}

func (r *payrunRepository) CreateWithRecords(ctx context.Context, run payrun.PayRun, records []payrun.EmployeeRecord) (payrun.PayRun, error) {
	var created payrun.PayRun

	err := WithTransaction(ctx, r.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, r.db)

		// A locking read matches nothing when no run exists yet, so the
		// existence check alone cannot serialize two first-time generations.
		// The advisory lock holds the period until commit.
		if _, err := q.Exec(txCtx,
			`SELECT pg_advisory_xact_lock($1, $2)`,
			payRunPeriodLockClass, run.Year*100+run.Month,
		); err != nil {
			return fmt.Errorf("failed to lock pay run period: %w", err)
		}

		var existingID string
		err := q.QueryRow(txCtx,
			`SELECT id FROM pay_runs
			 WHERE month = $1 AND year = $2 AND status <> 'cancelled'
			 LIMIT 1`,
			run.Month, run.Year,
		).Scan(&existingID)
		if err == nil {
			return payrun.ErrDuplicatePeriod
		}
		if err != pgx.ErrNoRows {
			return fmt.Errorf("failed to check period uniqueness: %w", err)
		}

		warningsJSON, _ := json.Marshal(run.Warnings)

		insertRun := `
			INSERT INTO pay_runs (
				id, month, year, status, total_gross, total_deductions,
				total_net_pay, total_employees, warnings, requested_by
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING ` + payRunColumns + `
		`

		created, err = scanPayRun(q.QueryRow(txCtx, insertRun,
			run.ID, run.Month, run.Year, run.Status, run.TotalGross,
			run.TotalDeductions, run.TotalNetPay, run.TotalEmployees,
			warningsJSON, run.RequestedBy,
		))
		if err != nil {
			if violatesUnique(err, "uk_pay_run_period") {
				return payrun.ErrDuplicatePeriod
			}
			return fmt.Errorf("failed to create pay run: %w", err)
		}

		for _, rec := range records {
			if err := r.insertRecord(txCtx, rec); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return payrun.PayRun{}, err
	}

	return created, nil
}

func (r *payrunRepository) insertRecord(ctx context.Context, rec payrun.EmployeeRecord) error {
	q := GetQuerier(ctx, r.db)

	advanceJSON, _ := json.Marshal(decimalMapToStringMap(rec.AdvanceDetail))
	loanJSON, _ := json.Marshal(decimalMapToStringMap(rec.LoanDetail))

	query := `
		INSERT INTO pay_run_employee_records (
			id, pay_run_id, employee_id, gross_salary, loss_of_pay_amount,
			payable_days, loss_of_pay_days, pf, esi, professional_tax, tds,
			advance_deduction, loan_deduction, total_deductions, net_pay,
			advance_detail, loan_detail
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := q.Exec(ctx, query,
		rec.ID, rec.PayRunID, rec.EmployeeID, rec.GrossSalary, rec.LossOfPayAmount,
		rec.PayableDays, rec.LossOfPayDays, rec.PF, rec.ESI, rec.ProfessionalTax,
		rec.TDS, rec.AdvanceDeduction, rec.LoanDeduction, rec.TotalDeductions,
		rec.NetPay, advanceJSON, loanJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pay run employee record for %s: %w", rec.EmployeeID, err)
	}

	return nil
}

func (r *payrunRepository) GetByID(ctx context.Context, id string) (payrun.PayRun, error) {
	return r.getByID(ctx, id, false)
}

func (r *payrunRepository) GetByIDForUpdate(ctx context.Context, id string) (payrun.PayRun, error) {
	return r.getByID(ctx, id, true)
}

func (r *payrunRepository) getByID(ctx context.Context, id string, forUpdate bool) (payrun.PayRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payRunColumns + ` FROM pay_runs WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	run, err := scanPayRun(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payrun.PayRun{}, payrun.ErrPayRunNotFound
		}
		return payrun.PayRun{}, fmt.Errorf("failed to get pay run: %w", err)
	}

	return run, nil
}

func (r *payrunRepository) List(ctx context.Context, filter payrun.Filter) ([]payrun.PayRun, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := ` FROM pay_runs WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.Month != nil {
		baseQuery += fmt.Sprintf(" AND month = $%d", argIdx)
		args = append(args, *filter.Month)
		argIdx++
	}
	if filter.Year != nil {
		baseQuery += fmt.Sprintf(" AND year = $%d", argIdx)
		args = append(args, *filter.Year)
		argIdx++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count pay runs: %w", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(
		"SELECT "+payRunColumns+baseQuery+" ORDER BY year DESC, month DESC LIMIT $%d OFFSET $%d",
		argIdx, argIdx+1,
	)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pay runs: %w", err)
	}
	defer rows.Close()

	var runs []payrun.PayRun
	for rows.Next() {
		var run payrun.PayRun
		var warningsBytes []byte
		if err := rows.Scan(
			&run.ID, &run.Month, &run.Year, &run.Status, &run.TotalGross,
			&run.TotalDeductions, &run.TotalNetPay, &run.TotalEmployees,
			&warningsBytes, &run.RequestedBy, &run.ApprovedBy, &run.ApprovedAt,
			&run.ProcessedBy, &run.ProcessedAt, &run.PaymentDate, &run.CancelReason,
			&run.CreatedAt, &run.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan pay run: %w", err)
		}
		_ = json.Unmarshal(warningsBytes, &run.Warnings)
		runs = append(runs, run)
	}

	return runs, totalCount, nil
}

func (r *payrunRepository) UpdateStatus(ctx context.Context, id string, from, to payrun.Status, actorID string, paymentDate *time.Time, cancelReason *string) (payrun.PayRun, error) {
	q := GetQuerier(ctx, r.db)

	var query string
	args := []interface{}{id, from, to}

	switch to {
	case payrun.StatusApproved:
		query = `
			UPDATE pay_runs
			SET status = $3, approved_by = $4, approved_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND status = $2
			RETURNING ` + payRunColumns
		args = append(args, actorID)
	case payrun.StatusProcessed:
		query = `
			UPDATE pay_runs
			SET status = $3, processed_by = $4, processed_at = NOW(), payment_date = $5, updated_at = NOW()
			WHERE id = $1 AND status = $2
			RETURNING ` + payRunColumns
		args = append(args, actorID, paymentDate)
	case payrun.StatusCancelled:
		query = `
			UPDATE pay_runs
			SET status = $3, cancel_reason = $4, updated_at = NOW()
			WHERE id = $1 AND status = $2
			RETURNING ` + payRunColumns
		args = append(args, cancelReason)
	default:
		return payrun.PayRun{}, payrun.ErrInvalidTransition
	}

	run, err := scanPayRun(q.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return payrun.PayRun{}, getErr
			}
			return payrun.PayRun{}, payrun.ErrInvalidTransition
		}
		return payrun.PayRun{}, fmt.Errorf("failed to update pay run status: %w", err)
	}

	return run, nil
}

const recordColumns = `
	r.id, r.pay_run_id, r.employee_id, r.gross_salary, r.loss_of_pay_amount,
	r.payable_days, r.loss_of_pay_days, r.pf, r.esi, r.professional_tax, r.tds,
	r.advance_deduction, r.loan_deduction, r.total_deductions, r.net_pay,
	r.advance_detail, r.loan_detail, r.created_at, r.updated_at,
	e.full_name, e.employee_code
`

func (r *payrunRepository) GetRecords(ctx context.Context, payRunID string) ([]payrun.EmployeeRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `
		FROM pay_run_employee_records r
		JOIN employees e ON r.employee_id = e.id
		WHERE r.pay_run_id = $1
		ORDER BY e.employee_code
	`

	rows, err := q.Query(ctx, query, payRunID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pay run records: %w", err)
	}
	defer rows.Close()

	var records []payrun.EmployeeRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, nil
}

func (r *payrunRepository) GetRecordByEmployee(ctx context.Context, payRunID, employeeID string) (payrun.EmployeeRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `
		FROM pay_run_employee_records r
		JOIN employees e ON r.employee_id = e.id
		WHERE r.pay_run_id = $1 AND r.employee_id = $2
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, payRunID, employeeID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payrun.EmployeeRecord{}, payrun.ErrRecordNotFound
		}
		return payrun.EmployeeRecord{}, fmt.Errorf("failed to get pay run record: %w", err)
	}

	return rec, nil
}

func scanRecord(row pgx.Row) (payrun.EmployeeRecord, error) {
	var rec payrun.EmployeeRecord
	var advanceBytes, loanBytes []byte
	err := row.Scan(
		&rec.ID, &rec.PayRunID, &rec.EmployeeID, &rec.GrossSalary,
		&rec.LossOfPayAmount, &rec.PayableDays, &rec.LossOfPayDays,
		&rec.PF, &rec.ESI, &rec.ProfessionalTax, &rec.TDS,
		&rec.AdvanceDeduction, &rec.LoanDeduction, &rec.TotalDeductions,
		&rec.NetPay, &advanceBytes, &loanBytes, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.EmployeeName, &rec.EmployeeCode,
	)
	if err != nil {
		return payrun.EmployeeRecord{}, err
	}
	rec.AdvanceDetail = stringMapToDecimalMap(advanceBytes)
	rec.LoanDetail = stringMapToDecimalMap(loanBytes)
	return rec, nil
}

func (r *payrunRepository) RecomputeTotals(ctx context.Context, payRunID string) (decimal.Decimal, decimal.Decimal, decimal.Decimal, int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE pay_runs p
		SET total_gross = t.gross, total_deductions = t.deductions,
			total_net_pay = t.net, total_employees = t.employees, updated_at = NOW()
		FROM (
			SELECT COALESCE(SUM(gross_salary), 0) AS gross,
				   COALESCE(SUM(total_deductions), 0) AS deductions,
				   COALESCE(SUM(net_pay), 0) AS net,
				   COUNT(*) AS employees
			FROM pay_run_employee_records
			WHERE pay_run_id = $1
		) t
		WHERE p.id = $1
		RETURNING t.gross, t.deductions, t.net, t.employees
	`

	var gross, deductions, net decimal.Decimal
	var employees int
	err := q.QueryRow(ctx, query, payRunID).Scan(&gross, &deductions, &net, &employees)
	if err != nil {
		if err == pgx.ErrNoRows {
			return decimal.Zero, decimal.Zero, decimal.Zero, 0, payrun.ErrPayRunNotFound
		}
		return decimal.Zero, decimal.Zero, decimal.Zero, 0, fmt.Errorf("failed to recompute pay run totals: %w", err)
	}

	return gross, deductions, net, employees, nil
}

// JSONB detail maps are stored with string amounts so decimal precision
// survives the round trip.
func decimalMapToStringMap(m map[string]decimal.Decimal) map[string]string {
	result := make(map[string]string, len(m))
	for k, v := range m {
		result[k] = v.String()
	}
	return result
}

func stringMapToDecimalMap(data []byte) map[string]decimal.Decimal {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	result := make(map[string]decimal.Decimal, len(raw))
	for k, v := range raw {
		d, err := decimal.NewFromString(v)
		if err != nil {
			continue
		}
		result[k] = d
	}
	return result
}
