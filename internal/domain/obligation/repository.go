package obligation

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	CreateAdvance(ctx context.Context, advance Advance) (Advance, error)
	GetAdvanceByID(ctx context.Context, id string) (Advance, error)
	ListAdvancesByEmployee(ctx context.Context, employeeID string) ([]Advance, error)

	// GetAdvanceForUpdate reads the advance with a row-level lock. Must run
	// inside a transaction.
	GetAdvanceForUpdate(ctx context.Context, id string) (Advance, error)

	// UpdateAdvanceDeduction applies one installment's bookkeeping: the new
	// deducted/remaining amounts and status in a single statement.
	UpdateAdvanceDeduction(ctx context.Context, id string, amountDeducted, remainingAmount decimal.Decimal, status AdvanceStatus) (Advance, error)

	UpdateAdvanceStatus(ctx context.Context, id string, from, to AdvanceStatus) (Advance, error)

	CreateLoan(ctx context.Context, loan Loan) (Loan, error)
	GetLoanByID(ctx context.Context, id string) (Loan, error)
	ListLoansByEmployee(ctx context.Context, employeeID string) ([]Loan, error)
	GetLoanForUpdate(ctx context.Context, id string) (Loan, error)

	// UpdateLoanRepayment records one EMI's effect on the loan row.
	UpdateLoanRepayment(ctx context.Context, id string, totalPaidEMIs int, remainingBalance decimal.Decimal, status LoanStatus) (Loan, error)

	UpdateLoanStatus(ctx context.Context, id string, from, to LoanStatus, approverID *string) (Loan, error)

	// AppendEMI writes the append-only repayment row. ErrEMIAlreadyPaid when
	// an EMI for (loan, month, year) already exists.
	AppendEMI(ctx context.Context, emi EMI) (EMI, error)
	ListEMIs(ctx context.Context, loanID string) ([]EMI, error)
	EMIExists(ctx context.Context, loanID string, month, year int) (bool, error)

	// GetDueForPeriod returns advances in pending/partial with a positive
	// remaining amount and active loans with remaining EMIs, excluding loans
	// that already hold an EMI row for the period.
	GetDueForPeriod(ctx context.Context, employeeID string, month, year int) (Due, error)
}
