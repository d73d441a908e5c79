package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status enum
type Status string

const (
	StatusUnapproved Status = "unapproved"
	StatusApproved   Status = "approved"
)

// Summary is one employee's attendance aggregate for one payroll period,
// unique per (employee, month, year). The payable/loss-of-pay figures are
// always recomputed from the stored base fields, never trusted from input.
type Summary struct {
	ID               string
	EmployeeID       string
	Month            int
	Year             int
	TotalWorkingDays int
	PresentDays      int
	AbsentDays       int
	PaidLeave        int
	UnpaidLeave      int
	HalfDays         int
	OvertimeHours    decimal.Decimal
	Status           Status
	ApprovedBy       *string
	ApprovedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

var two = decimal.NewFromInt(2)

// PayableDays = presentDays + paidLeave + halfDays/2.
func (s Summary) PayableDays() decimal.Decimal {
	return decimal.NewFromInt(int64(s.PresentDays + s.PaidLeave)).
		Add(decimal.NewFromInt(int64(s.HalfDays)).Div(two))
}

// LossOfPayDays = unpaidLeave + absentDays - halfDays/2, floored at zero.
// Half days are half-paid, so they reduce the unpaid side.
func (s Summary) LossOfPayDays() decimal.Decimal {
	lop := decimal.NewFromInt(int64(s.UnpaidLeave + s.AbsentDays)).
		Sub(decimal.NewFromInt(int64(s.HalfDays)).Div(two))
	if lop.IsNegative() {
		return decimal.Zero
	}
	return lop
}

// AttendancePercentage = (presentDays + paidLeave) / totalWorkingDays * 100.
func (s Summary) AttendancePercentage() decimal.Decimal {
	if s.TotalWorkingDays == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(s.PresentDays + s.PaidLeave)).
		Div(decimal.NewFromInt(int64(s.TotalWorkingDays))).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

func (s Summary) IsApproved() bool {
	return s.Status == StatusApproved
}
