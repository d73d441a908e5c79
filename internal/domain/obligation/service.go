package obligation

import (
	"context"

	"github.com/shopspring/decimal"
)

// Service is the credit-obligation ledger: amortized deduction bookkeeping
// for advances and loans, and safe application of a single period's
// deduction. Applications against the same obligation are serialized; two
// payroll processes can never double-deduct one obligation.
type Service interface {
	CreateAdvance(ctx context.Context, req CreateAdvanceRequest, grantedBy string) (AdvanceResponse, error)
	GetAdvance(ctx context.Context, id string) (AdvanceResponse, error)
	ListAdvances(ctx context.Context, employeeID string) ([]AdvanceResponse, error)
	CancelAdvance(ctx context.Context, id string) (AdvanceResponse, error)

	CreateLoan(ctx context.Context, req CreateLoanRequest) (LoanResponse, error)
	GetLoan(ctx context.Context, id string) (LoanResponse, error)
	ListLoans(ctx context.Context, employeeID string) ([]LoanResponse, error)
	ApproveLoan(ctx context.Context, id, approverID string) (LoanResponse, error)
	CancelLoan(ctx context.Context, id string) (LoanResponse, error)
	MarkLoanDefaulted(ctx context.Context, id string) (LoanResponse, error)

	// ApplyAdvanceInstallment deducts amount from the advance. payRunID is
	// empty for manual repayments.
	ApplyAdvanceInstallment(ctx context.Context, advanceID string, amount decimal.Decimal, payRunID, actorID string) (Advance, error)

	// ApplyLoanEMI records one EMI for (month, year) against the loan. A
	// positive scheduled amount pins the commit to a previously computed
	// figure; ErrEMIAmountMismatch when the loan's due amount has since
	// moved. Zero commits whatever is currently due, the manual repayment
	// path.
	ApplyLoanEMI(ctx context.Context, loanID string, month, year int, scheduled decimal.Decimal, payRunID, actorID string) (Loan, error)

	// GetDueObligations is the read-only query feeding the calculator and the
	// processing commit step.
	GetDueObligations(ctx context.Context, employeeID string, month, year int) (Due, error)
}
