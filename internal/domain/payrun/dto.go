package payrun

import (
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type GenerateRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r *GenerateRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if r.Year < 2000 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be 2000 or later"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ProcessRequest struct {
	PaymentDate string `json:"payment_date"` // YYYY-MM-DD
}

func (r *ProcessRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.PaymentDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "payment_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

func (r *CancelRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayRunResponse struct {
	ID              string          `json:"id"`
	Month           int             `json:"month"`
	Year            int             `json:"year"`
	Status          string          `json:"status"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNetPay     decimal.Decimal `json:"total_net_pay"`
	TotalEmployees  int             `json:"total_employees"`
	Warnings        []Warning       `json:"warnings,omitempty"`
	RequestedBy     string          `json:"requested_by"`
	ApprovedBy      *string         `json:"approved_by,omitempty"`
	ProcessedBy     *string         `json:"processed_by,omitempty"`
	PaymentDate     *string         `json:"payment_date,omitempty"`
	CancelReason    *string         `json:"cancel_reason,omitempty"`
}

type EmployeeRecordResponse struct {
	ID               string          `json:"id"`
	PayRunID         string          `json:"pay_run_id"`
	EmployeeID       string          `json:"employee_id"`
	EmployeeName     string          `json:"employee_name,omitempty"`
	EmployeeCode     string          `json:"employee_code,omitempty"`
	GrossSalary      decimal.Decimal `json:"gross_salary"`
	LossOfPayAmount  decimal.Decimal `json:"loss_of_pay_amount"`
	PayableDays      decimal.Decimal `json:"payable_days"`
	LossOfPayDays    decimal.Decimal `json:"loss_of_pay_days"`
	PF               decimal.Decimal `json:"pf"`
	ESI              decimal.Decimal `json:"esi"`
	ProfessionalTax  decimal.Decimal `json:"professional_tax"`
	TDS              decimal.Decimal `json:"tds"`
	AdvanceDeduction decimal.Decimal `json:"advance_deduction"`
	LoanDeduction    decimal.Decimal `json:"loan_deduction"`
	TotalDeductions  decimal.Decimal `json:"total_deductions"`
	NetPay           decimal.Decimal `json:"net_pay"`
}

type Filter struct {
	Month  *int    `json:"month,omitempty"`
	Year   *int    `json:"year,omitempty"`
	Status *string `json:"status,omitempty"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}

type ListPayRunResponse struct {
	Data       []PayRunResponse `json:"data"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}
