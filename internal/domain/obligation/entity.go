package obligation

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdvanceStatus enum
type AdvanceStatus string

const (
	AdvanceStatusPending   AdvanceStatus = "pending"
	AdvanceStatusPartial   AdvanceStatus = "partial"
	AdvanceStatusDeducted  AdvanceStatus = "deducted"
	AdvanceStatusCancelled AdvanceStatus = "cancelled"
)

// LoanStatus enum
type LoanStatus string

const (
	LoanStatusPending   LoanStatus = "pending"
	LoanStatusActive    LoanStatus = "active"
	LoanStatusCompleted LoanStatus = "completed"
	LoanStatusCancelled LoanStatus = "cancelled"
	LoanStatusDefaulted LoanStatus = "defaulted"
)

// Advance is an interest-free salary advance recovered over a fixed number of
// equal installments. amountDeducted + remainingAmount == paidAmount holds at
// all times; a violation is a data-integrity bug, not a runtime condition.
type Advance struct {
	ID             string
	EmployeeID     string
	PaidAmount     decimal.Decimal
	Installments   int
	PerInstallment decimal.Decimal
	AmountDeducted decimal.Decimal
	RemainingAmount decimal.Decimal
	Status          AdvanceStatus
	Reason          *string
	GrantedBy       string
	GrantedAt       time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Deductible returns how much the next installment may take: the fixed
// installment amount, capped by what is still outstanding. A sub-unit
// residue left by installment rounding is absorbed into the final
// installment so the advance closes at exactly zero.
func (a Advance) Deductible() decimal.Decimal {
	if a.PerInstallment.GreaterThan(a.RemainingAmount) {
		return a.RemainingAmount
	}
	residual := a.RemainingAmount.Sub(a.PerInstallment)
	if residual.IsPositive() && residual.LessThan(decimal.NewFromInt(1)) {
		return a.RemainingAmount
	}
	return a.PerInstallment
}

// Open reports whether the advance can still receive deductions.
func (a Advance) Open() bool {
	return (a.Status == AdvanceStatusPending || a.Status == AdvanceStatusPartial) &&
		a.RemainingAmount.IsPositive()
}

// Loan is an interest-bearing loan amortized over equated monthly
// installments. Interest is flat: interestAmount = principal * rate / 100.
type Loan struct {
	ID             string
	EmployeeID     string
	Principal      decimal.Decimal
	InterestRate   decimal.Decimal
	InterestAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	NumberOfEMIs   int
	EMIAmount      decimal.Decimal
	TotalPaidEMIs  int
	RemainingBalance decimal.Decimal
	Status           LoanStatus
	Reason           *string
	ApprovedBy       *string
	ApprovedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// RemainingEMIs is always derived, never stored.
func (l Loan) RemainingEMIs() int {
	return l.NumberOfEMIs - l.TotalPaidEMIs
}

// CompletionPercent reports repayment progress.
func (l Loan) CompletionPercent() decimal.Decimal {
	if l.NumberOfEMIs == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(l.TotalPaidEMIs)).
		Div(decimal.NewFromInt(int64(l.NumberOfEMIs))).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

// Deductible returns the EMI for the next period. The final EMI settles the
// whole remaining balance so accumulated rounding never strands a residue.
func (l Loan) Deductible() decimal.Decimal {
	if l.RemainingEMIs() <= 1 || l.EMIAmount.GreaterThan(l.RemainingBalance) {
		return l.RemainingBalance
	}
	return l.EMIAmount
}

// EMI is one append-only repayment ledger row, written exactly once per
// (loan, month, year).
type EMI struct {
	ID        string
	LoanID    string
	Sequence  int
	Month     int
	Year      int
	Amount    decimal.Decimal
	PayRunID  *string
	PaidAt    time.Time
	CreatedAt time.Time
}

// Due is the set of obligations with an outstanding balance payable in a
// period, read by the calculator and committed by the orchestrator.
type Due struct {
	Advances []Advance
	Loans    []Loan
}
