package obligation

import (
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateAdvanceRequest struct {
	EmployeeID   string          `json:"employee_id"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	Installments int             `json:"installments"`
	Reason       *string         `json:"reason,omitempty"`
}

func (r *CreateAdvanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if !r.PaidAmount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "paid_amount", Message: "must be positive"})
	}
	if r.Installments < 1 {
		errs = append(errs, validator.ValidationError{Field: "installments", Message: "must be at least 1"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CreateLoanRequest struct {
	EmployeeID   string          `json:"employee_id"`
	Principal    decimal.Decimal `json:"principal"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	NumberOfEMIs int             `json:"number_of_emis"`
	Reason       *string         `json:"reason,omitempty"`
}

func (r *CreateLoanRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if !r.Principal.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "principal", Message: "must be positive"})
	}
	if r.InterestRate.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "interest_rate", Message: "must be non-negative"})
	}
	if r.NumberOfEMIs < 1 {
		errs = append(errs, validator.ValidationError{Field: "number_of_emis", Message: "must be at least 1"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AdvanceResponse struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	Installments    int             `json:"installments"`
	PerInstallment  decimal.Decimal `json:"per_installment"`
	AmountDeducted  decimal.Decimal `json:"amount_deducted"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Status          string          `json:"status"`
	Reason          *string         `json:"reason,omitempty"`
}

type LoanResponse struct {
	ID                string          `json:"id"`
	EmployeeID        string          `json:"employee_id"`
	Principal         decimal.Decimal `json:"principal"`
	InterestRate      decimal.Decimal `json:"interest_rate"`
	InterestAmount    decimal.Decimal `json:"interest_amount"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	NumberOfEMIs      int             `json:"number_of_emis"`
	EMIAmount         decimal.Decimal `json:"emi_amount"`
	TotalPaidEMIs     int             `json:"total_paid_emis"`
	RemainingEMIs     int             `json:"remaining_emis"`
	RemainingBalance  decimal.Decimal `json:"remaining_balance"`
	CompletionPercent decimal.Decimal `json:"completion_percent"`
	Status            string          `json:"status"`
	Reason            *string         `json:"reason,omitempty"`
}
