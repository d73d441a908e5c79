package payslip

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payslip is the immutable, employee-facing record of one period's computed
// pay, generated from exactly one pay-run employee record at processing time.
// Everything is denormalized at generation: the employee's name, department
// and designation are copied as of that moment so later org changes cannot
// rewrite history. Only the delivery-tracking fields may change afterwards.
type Payslip struct {
	ID            string
	PayslipNumber string
	PayRunID      string
	RecordID      string
	EmployeeID    string
	Month         int
	Year          int

	// Snapshot fields
	EmployeeName string
	EmployeeCode string
	Department   string
	Designation  string
	PaymentMode  string

	GrossSalary      decimal.Decimal
	LossOfPayAmount  decimal.Decimal
	PF               decimal.Decimal
	ESI              decimal.Decimal
	ProfessionalTax  decimal.Decimal
	TDS              decimal.Decimal
	AdvanceDeduction decimal.Decimal
	LoanDeduction    decimal.Decimal
	TotalDeductions  decimal.Decimal
	NetPay           decimal.Decimal

	PaymentDate time.Time

	// Delivery tracking, mutable via the narrow delivery interface.
	Sent          bool
	SentAt        *time.Time
	DownloadCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NumberType scopes payslip number sequences. Regular monthly payslips and
// full-and-final settlements number independently.
type NumberType string

const (
	NumberTypeMonthly NumberType = "PS"
	NumberTypeFinal   NumberType = "FF"
)
