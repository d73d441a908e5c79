package compensation

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// PaymentMode enum
type PaymentMode string

const (
	PaymentModeBankTransfer PaymentMode = "bank_transfer"
	PaymentModeCheque       PaymentMode = "cheque"
	PaymentModeCash         PaymentMode = "cash"
)

// Tolerance allowed on derived monetary fields. Upstream systems round
// components independently, so equality is checked within one currency unit.
var Tolerance = decimal.NewFromInt(1)

// Profile is an employee's salary structure. Basic is pegged at half of the
// annual CTC spread over twelve months; the remaining components are fixed
// monthly amounts. A profile row is immutable once written: salary changes go
// through Service.Revise, which retires the current row and writes a new
// effective-dated one.
type Profile struct {
	ID          string
	EmployeeID  string
	AnnualCTC   decimal.Decimal
	Basic       decimal.Decimal
	HRAPercent  decimal.Decimal
	HRA         decimal.Decimal
	Conveyance  decimal.Decimal
	Telephone   decimal.Decimal
	Medical     decimal.Decimal
	Special     decimal.Decimal
	IncludePF   bool
	IncludeESI  bool
	TDSMonthly  decimal.Decimal
	PaymentMode PaymentMode
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Gross is the monthly gross salary, always derived from the stored
// components (generated-column rule: never stored independently).
func (p Profile) Gross() decimal.Decimal {
	return p.Basic.
		Add(p.HRA).
		Add(p.Conveyance).
		Add(p.Telephone).
		Add(p.Medical).
		Add(p.Special)
}

// ExpectedBasic is the basic derivable from the annual CTC.
func (p Profile) ExpectedBasic() decimal.Decimal {
	return p.AnnualCTC.Mul(decimal.NewFromFloat(0.5)).Div(decimal.NewFromInt(12))
}

// Validate checks the structural invariants of the salary structure.
func (p Profile) Validate() error {
	var errs validator.ValidationErrors

	if !p.AnnualCTC.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "annual_ctc", Message: "must be positive"})
	}
	for field, v := range map[string]decimal.Decimal{
		"basic":       p.Basic,
		"hra":         p.HRA,
		"conveyance":  p.Conveyance,
		"telephone":   p.Telephone,
		"medical":     p.Medical,
		"special":     p.Special,
		"tds_monthly": p.TDSMonthly,
	} {
		if v.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field, Message: "must be non-negative"})
		}
	}
	if p.PaymentMode != PaymentModeBankTransfer && p.PaymentMode != PaymentModeCheque && p.PaymentMode != PaymentModeCash {
		errs = append(errs, validator.ValidationError{Field: "payment_mode", Message: "must be bank_transfer, cheque or cash"})
	}

	if p.AnnualCTC.IsPositive() && !validator.WithinTolerance(p.Basic, p.ExpectedBasic(), Tolerance) {
		errs = append(errs, validator.ValidationError{Field: "basic", Message: "must equal annual CTC * 0.5 / 12"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
