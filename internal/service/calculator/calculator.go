// Package calculator computes one employee's pay for one period. It is a
// pure function over its inputs: it never reads or writes storage, so the
// orchestrator can run it concurrently across employees.
package calculator

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/obligation"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/statutory"
	"github.com/shopspring/decimal"
)

var (
	// ErrMissingAttendance means no approved attendance summary exists for
	// the period. The orchestrator treats it as skip-and-warn, not fatal.
	ErrMissingAttendance = errors.New("no approved attendance summary for this period")
)

// Computation is the full per-employee result. totalDeductions includes the
// loss-of-pay amount, so netPay == grossSalary - totalDeductions holds
// exactly alongside netPay == adjustedGross - (statutory + credit
// deductions).
type Computation struct {
	GrossSalary      decimal.Decimal
	LossOfPayAmount  decimal.Decimal
	AdjustedGross    decimal.Decimal
	PayableDays      decimal.Decimal
	LossOfPayDays    decimal.Decimal
	PF               decimal.Decimal
	ESI              decimal.Decimal
	ProfessionalTax  decimal.Decimal
	TDS              decimal.Decimal
	AdvanceDeduction decimal.Decimal
	LoanDeduction    decimal.Decimal
	TotalDeductions  decimal.Decimal
	NetPay           decimal.Decimal

	// Per-obligation amounts keyed by obligation ID; the orchestrator commits
	// exactly these at processing time.
	AdvanceDetail map[string]decimal.Decimal
	LoanDetail    map[string]decimal.Decimal
}

// Compute settles one employee's pay for one period.
func Compute(
	profile compensation.Profile,
	summary attendance.Summary,
	due obligation.Due,
	rates statutory.Config,
) (Computation, error) {
	if !summary.IsApproved() || summary.TotalWorkingDays == 0 {
		return Computation{}, ErrMissingAttendance
	}
	if err := profile.Validate(); err != nil {
		return Computation{}, fmt.Errorf("%w: %v", compensation.ErrInvalidCompensation, err)
	}

	gross := profile.Gross()
	lopDays := summary.LossOfPayDays()

	lopAmount := gross.
		Div(decimal.NewFromInt(int64(summary.TotalWorkingDays))).
		Mul(lopDays).
		Round(2)
	adjustedGross := gross.Sub(lopAmount)

	var pf, esi decimal.Decimal
	if profile.IncludePF {
		pf = rates.PF(adjustedGross)
	}
	if profile.IncludeESI {
		esi = rates.ESI(adjustedGross)
	}
	professionalTax := rates.ProfessionalTax(adjustedGross)
	tds := profile.TDSMonthly

	advanceDeduction := decimal.Zero
	advanceDetail := make(map[string]decimal.Decimal, len(due.Advances))
	for _, adv := range due.Advances {
		if !adv.Open() {
			continue
		}
		amount := adv.Deductible()
		if !amount.IsPositive() {
			continue
		}
		advanceDetail[adv.ID] = amount
		advanceDeduction = advanceDeduction.Add(amount)
	}

	loanDeduction := decimal.Zero
	loanDetail := make(map[string]decimal.Decimal, len(due.Loans))
	for _, loan := range due.Loans {
		if loan.Status != obligation.LoanStatusActive || loan.RemainingEMIs() <= 0 {
			continue
		}
		amount := loan.Deductible()
		if !amount.IsPositive() {
			continue
		}
		loanDetail[loan.ID] = amount
		loanDeduction = loanDeduction.Add(amount)
	}

	otherDeductions := pf.
		Add(esi).
		Add(professionalTax).
		Add(tds).
		Add(advanceDeduction).
		Add(loanDeduction)

	return Computation{
		GrossSalary:      gross,
		LossOfPayAmount:  lopAmount,
		AdjustedGross:    adjustedGross,
		PayableDays:      summary.PayableDays(),
		LossOfPayDays:    lopDays,
		PF:               pf,
		ESI:              esi,
		ProfessionalTax:  professionalTax,
		TDS:              tds,
		AdvanceDeduction: advanceDeduction,
		LoanDeduction:    loanDeduction,
		TotalDeductions:  lopAmount.Add(otherDeductions),
		NetPay:           adjustedGross.Sub(otherDeductions),
		AdvanceDetail:    advanceDetail,
		LoanDetail:       loanDetail,
	}, nil
}
