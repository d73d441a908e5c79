package compensation

import (
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ReviseRequest is a controlled salary revision: a full replacement structure,
// never a partial field write.
type ReviseRequest struct {
	EmployeeID    string          `json:"-"`
	AnnualCTC     decimal.Decimal `json:"annual_ctc"`
	HRAPercent    decimal.Decimal `json:"hra_percent"`
	Conveyance    decimal.Decimal `json:"conveyance"`
	Telephone     decimal.Decimal `json:"telephone"`
	Medical       decimal.Decimal `json:"medical"`
	Special       decimal.Decimal `json:"special"`
	IncludePF     bool            `json:"include_pf"`
	IncludeESI    bool            `json:"include_esi"`
	TDSMonthly    decimal.Decimal `json:"tds_monthly"`
	PaymentMode   string          `json:"payment_mode"`
	EffectiveFrom string          `json:"effective_from"` // YYYY-MM-DD
}

func (r *ReviseRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.AnnualCTC.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "annual_ctc", Message: "must be positive"})
	}
	if r.HRAPercent.IsNegative() || r.HRAPercent.GreaterThan(decimal.NewFromInt(100)) {
		errs = append(errs, validator.ValidationError{Field: "hra_percent", Message: "must be between 0 and 100"})
	}
	for field, v := range map[string]decimal.Decimal{
		"conveyance":  r.Conveyance,
		"telephone":   r.Telephone,
		"medical":     r.Medical,
		"special":     r.Special,
		"tds_monthly": r.TDSMonthly,
	} {
		if v.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field, Message: "must be non-negative"})
		}
	}
	if !validator.IsInSlice(r.PaymentMode, []string{string(PaymentModeBankTransfer), string(PaymentModeCheque), string(PaymentModeCash)}) {
		errs = append(errs, validator.ValidationError{Field: "payment_mode", Message: "must be bank_transfer, cheque or cash"})
	}
	if _, ok := validator.IsValidDate(r.EffectiveFrom); !ok {
		errs = append(errs, validator.ValidationError{Field: "effective_from", Message: "must be a valid date (YYYY-MM-DD)"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ProfileResponse struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employee_id"`
	AnnualCTC     decimal.Decimal `json:"annual_ctc"`
	Basic         decimal.Decimal `json:"basic"`
	HRAPercent    decimal.Decimal `json:"hra_percent"`
	HRA           decimal.Decimal `json:"hra"`
	Conveyance    decimal.Decimal `json:"conveyance"`
	Telephone     decimal.Decimal `json:"telephone"`
	Medical       decimal.Decimal `json:"medical"`
	Special       decimal.Decimal `json:"special"`
	Gross         decimal.Decimal `json:"gross"`
	IncludePF     bool            `json:"include_pf"`
	IncludeESI    bool            `json:"include_esi"`
	TDSMonthly    decimal.Decimal `json:"tds_monthly"`
	PaymentMode   string          `json:"payment_mode"`
	EffectiveFrom string          `json:"effective_from"`
	EffectiveTo   *string         `json:"effective_to,omitempty"`
	IsActive      bool            `json:"is_active"`
}
