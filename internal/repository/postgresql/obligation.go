package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/obligation"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type obligationRepository struct {
	db *database.DB
}

func NewObligationRepository(db *database.DB) obligation.Repository {
	return &obligationRepository{db: db}
}

// ========== ADVANCES ==========

const advanceColumns = `
	id, employee_id, paid_amount, installments, per_installment,
	amount_deducted, remaining_amount, status, reason, granted_by, granted_at,
	created_at, updated_at
`

func scanAdvance(row pgx.Row) (obligation.Advance, error) {
	var a obligation.Advance
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.PaidAmount, &a.Installments, &a.PerInstallment,
		&a.AmountDeducted, &a.RemainingAmount, &a.Status, &a.Reason,
		&a.GrantedBy, &a.GrantedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

func (r *obligationRepository) CreateAdvance(ctx context.Context, advance obligation.Advance) (obligation.Advance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO advances (
			id, employee_id, paid_amount, installments, per_installment,
			amount_deducted, remaining_amount, status, reason, granted_by, granted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING ` + advanceColumns + `
	`

	a, err := scanAdvance(q.QueryRow(ctx, query,
		advance.ID, advance.EmployeeID, advance.PaidAmount, advance.Installments,
		advance.PerInstallment, advance.AmountDeducted, advance.RemainingAmount,
		advance.Status, advance.Reason, advance.GrantedBy,
	))
	if err != nil {
		return obligation.Advance{}, fmt.Errorf("failed to create advance: %w", err)
	}

	return a, nil
}

func (r *obligationRepository) GetAdvanceByID(ctx context.Context, id string) (obligation.Advance, error) {
	return r.getAdvance(ctx, id, false)
}

func (r *obligationRepository) GetAdvanceForUpdate(ctx context.Context, id string) (obligation.Advance, error) {
	return r.getAdvance(ctx, id, true)
}

func (r *obligationRepository) getAdvance(ctx context.Context, id string, forUpdate bool) (obligation.Advance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + advanceColumns + ` FROM advances WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	a, err := scanAdvance(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return obligation.Advance{}, obligation.ErrAdvanceNotFound
		}
		return obligation.Advance{}, fmt.Errorf("failed to get advance: %w", err)
	}

	return a, nil
}

func (r *obligationRepository) ListAdvancesByEmployee(ctx context.Context, employeeID string) ([]obligation.Advance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + advanceColumns + `
		FROM advances
		WHERE employee_id = $1
		ORDER BY granted_at DESC
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list advances: %w", err)
	}
	defer rows.Close()

	var advances []obligation.Advance
	for rows.Next() {
		var a obligation.Advance
		if err := rows.Scan(
			&a.ID, &a.EmployeeID, &a.PaidAmount, &a.Installments, &a.PerInstallment,
			&a.AmountDeducted, &a.RemainingAmount, &a.Status, &a.Reason,
			&a.GrantedBy, &a.GrantedAt, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan advance: %w", err)
		}
		advances = append(advances, a)
	}

	return advances, nil
}

func (r *obligationRepository) UpdateAdvanceDeduction(ctx context.Context, id string, amountDeducted, remainingAmount decimal.Decimal, status obligation.AdvanceStatus) (obligation.Advance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE advances
		SET amount_deducted = $2, remaining_amount = $3, status = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + advanceColumns + `
	`

	a, err := scanAdvance(q.QueryRow(ctx, query, id, amountDeducted, remainingAmount, status))
	if err != nil {
		if err == pgx.ErrNoRows {
			return obligation.Advance{}, obligation.ErrAdvanceNotFound
		}
		return obligation.Advance{}, fmt.Errorf("failed to update advance deduction: %w", err)
	}

	return a, nil
}

func (r *obligationRepository) UpdateAdvanceStatus(ctx context.Context, id string, from, to obligation.AdvanceStatus) (obligation.Advance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE advances
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + advanceColumns + `
	`

	a, err := scanAdvance(q.QueryRow(ctx, query, id, from, to))
	if err != nil {
		if err == pgx.ErrNoRows {
			if _, getErr := r.GetAdvanceByID(ctx, id); getErr != nil {
				return obligation.Advance{}, getErr
			}
			return obligation.Advance{}, obligation.ErrInvalidTransition
		}
		return obligation.Advance{}, fmt.Errorf("failed to update advance status: %w", err)
	}

	return a, nil
}

// ========== LOANS ==========

const loanColumns = `
	id, employee_id, principal, interest_rate, interest_amount, total_amount,
	number_of_emis, emi_amount, total_paid_emis, remaining_balance, status,
	reason, approved_by, approved_at, created_at, updated_at
`

func scanLoan(row pgx.Row) (obligation.Loan, error) {
	var l obligation.Loan
	err := row.Scan(
		&l.ID, &l.EmployeeID, &l.Principal, &l.InterestRate, &l.InterestAmount,
		&l.TotalAmount, &l.NumberOfEMIs, &l.EMIAmount, &l.TotalPaidEMIs,
		&l.RemainingBalance, &l.Status, &l.Reason, &l.ApprovedBy, &l.ApprovedAt,
		&l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

func (r *obligationRepository) CreateLoan(ctx context.Context, loan obligation.Loan) (obligation.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO loans (
			id, employee_id, principal, interest_rate, interest_amount,
			total_amount, number_of_emis, emi_amount, total_paid_emis,
			remaining_balance, status, reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + loanColumns + `
	`

	l, err := scanLoan(q.QueryRow(ctx, query,
		loan.ID, loan.EmployeeID, loan.Principal, loan.InterestRate,
		loan.InterestAmount, loan.TotalAmount, loan.NumberOfEMIs, loan.EMIAmount,
		loan.TotalPaidEMIs, loan.RemainingBalance, loan.Status, loan.Reason,
	))
	if err != nil {
		return obligation.Loan{}, fmt.Errorf("failed to create loan: %w", err)
	}

	return l, nil
}

func (r *obligationRepository) GetLoanByID(ctx context.Context, id string) (obligation.Loan, error) {
	return r.getLoan(ctx, id, false)
}

func (r *obligationRepository) GetLoanForUpdate(ctx context.Context, id string) (obligation.Loan, error) {
	return r.getLoan(ctx, id, true)
}

func (r *obligationRepository) getLoan(ctx context.Context, id string, forUpdate bool) (obligation.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	l, err := scanLoan(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return obligation.Loan{}, obligation.ErrLoanNotFound
		}
		return obligation.Loan{}, fmt.Errorf("failed to get loan: %w", err)
	}

	return l, nil
}

func (r *obligationRepository) ListLoansByEmployee(ctx context.Context, employeeID string) ([]obligation.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE employee_id = $1
		ORDER BY created_at DESC
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []obligation.Loan
	for rows.Next() {
		var l obligation.Loan
		if err := rows.Scan(
			&l.ID, &l.EmployeeID, &l.Principal, &l.InterestRate, &l.InterestAmount,
			&l.TotalAmount, &l.NumberOfEMIs, &l.EMIAmount, &l.TotalPaidEMIs,
			&l.RemainingBalance, &l.Status, &l.Reason, &l.ApprovedBy, &l.ApprovedAt,
			&l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}

	return loans, nil
}

func (r *obligationRepository) UpdateLoanRepayment(ctx context.Context, id string, totalPaidEMIs int, remainingBalance decimal.Decimal, status obligation.LoanStatus) (obligation.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE loans
		SET total_paid_emis = $2, remaining_balance = $3, status = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + loanColumns + `
	`

	l, err := scanLoan(q.QueryRow(ctx, query, id, totalPaidEMIs, remainingBalance, status))
	if err != nil {
		if err == pgx.ErrNoRows {
			return obligation.Loan{}, obligation.ErrLoanNotFound
		}
		return obligation.Loan{}, fmt.Errorf("failed to update loan repayment: %w", err)
	}

	return l, nil
}

func (r *obligationRepository) UpdateLoanStatus(ctx context.Context, id string, from, to obligation.LoanStatus, approverID *string) (obligation.Loan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE loans
		SET status = $3,
			approved_by = COALESCE($4, approved_by),
			approved_at = CASE WHEN $4 IS NULL THEN approved_at ELSE NOW() END,
			updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + loanColumns + `
	`

	l, err := scanLoan(q.QueryRow(ctx, query, id, from, to, approverID))
	if err != nil {
		if err == pgx.ErrNoRows {
			if _, getErr := r.GetLoanByID(ctx, id); getErr != nil {
				return obligation.Loan{}, getErr
			}
			return obligation.Loan{}, obligation.ErrInvalidTransition
		}
		return obligation.Loan{}, fmt.Errorf("failed to update loan status: %w", err)
	}

	return l, nil
}

// ========== EMI LEDGER ==========

func (r *obligationRepository) AppendEMI(ctx context.Context, emi obligation.EMI) (obligation.EMI, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO loan_emis (id, loan_id, sequence, month, year, amount, pay_run_id, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, loan_id, sequence, month, year, amount, pay_run_id, paid_at, created_at
	`

	var e obligation.EMI
	err := q.QueryRow(ctx, query,
		emi.ID, emi.LoanID, emi.Sequence, emi.Month, emi.Year, emi.Amount, emi.PayRunID,
	).Scan(
		&e.ID, &e.LoanID, &e.Sequence, &e.Month, &e.Year, &e.Amount,
		&e.PayRunID, &e.PaidAt, &e.CreatedAt,
	)
	if err != nil {
		if violatesUnique(err, "uk_loan_emi_period") {
			return obligation.EMI{}, obligation.ErrEMIAlreadyPaid
		}
		return obligation.EMI{}, fmt.Errorf("failed to append loan EMI: %w", err)
	}

	return e, nil
}

func (r *obligationRepository) ListEMIs(ctx context.Context, loanID string) ([]obligation.EMI, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, loan_id, sequence, month, year, amount, pay_run_id, paid_at, created_at
		FROM loan_emis
		WHERE loan_id = $1
		ORDER BY sequence
	`

	rows, err := q.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list loan EMIs: %w", err)
	}
	defer rows.Close()

	var emis []obligation.EMI
	for rows.Next() {
		var e obligation.EMI
		if err := rows.Scan(
			&e.ID, &e.LoanID, &e.Sequence, &e.Month, &e.Year, &e.Amount,
			&e.PayRunID, &e.PaidAt, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan loan EMI: %w", err)
		}
		emis = append(emis, e)
	}

	return emis, nil
}

func (r *obligationRepository) EMIExists(ctx context.Context, loanID string, month, year int) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM loan_emis WHERE loan_id = $1 AND month = $2 AND year = $3)`,
		loanID, month, year,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check loan EMI existence: %w", err)
	}

	return exists, nil
}

// ========== DUE QUERY ==========

func (r *obligationRepository) GetDueForPeriod(ctx context.Context, employeeID string, month, year int) (obligation.Due, error) {
	q := GetQuerier(ctx, r.db)

	var due obligation.Due

	advanceQuery := `
		SELECT ` + advanceColumns + `
		FROM advances
		WHERE employee_id = $1
		  AND status IN ('pending', 'partial')
		  AND remaining_amount > 0
		ORDER BY granted_at
	`

	rows, err := q.Query(ctx, advanceQuery, employeeID)
	if err != nil {
		return obligation.Due{}, fmt.Errorf("failed to query due advances: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a obligation.Advance
		if err := rows.Scan(
			&a.ID, &a.EmployeeID, &a.PaidAmount, &a.Installments, &a.PerInstallment,
			&a.AmountDeducted, &a.RemainingAmount, &a.Status, &a.Reason,
			&a.GrantedBy, &a.GrantedAt, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return obligation.Due{}, fmt.Errorf("failed to scan due advance: %w", err)
		}
		due.Advances = append(due.Advances, a)
	}
	rows.Close()

	// Loans already holding an EMI row for the period are excluded so
	// re-running a settlement never schedules a second EMI.
	loanQuery := `
		SELECT ` + loanColumns + `
		FROM loans l
		WHERE l.employee_id = $1
		  AND l.status = 'active'
		  AND l.total_paid_emis < l.number_of_emis
		  AND NOT EXISTS (
			SELECT 1 FROM loan_emis e
			WHERE e.loan_id = l.id AND e.month = $2 AND e.year = $3
		  )
		ORDER BY l.created_at
	`

	loanRows, err := q.Query(ctx, loanQuery, employeeID, month, year)
	if err != nil {
		return obligation.Due{}, fmt.Errorf("failed to query due loans: %w", err)
	}
	defer loanRows.Close()

	for loanRows.Next() {
		var l obligation.Loan
		if err := loanRows.Scan(
			&l.ID, &l.EmployeeID, &l.Principal, &l.InterestRate, &l.InterestAmount,
			&l.TotalAmount, &l.NumberOfEMIs, &l.EMIAmount, &l.TotalPaidEMIs,
			&l.RemainingBalance, &l.Status, &l.Reason, &l.ApprovedBy, &l.ApprovedAt,
			&l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return obligation.Due{}, fmt.Errorf("failed to scan due loan: %w", err)
		}
		due.Loans = append(due.Loans, l)
	}

	return due, nil
}
