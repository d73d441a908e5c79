package payslip

import "github.com/shopspring/decimal"

type Response struct {
	ID               string          `json:"id"`
	PayslipNumber    string          `json:"payslip_number"`
	PayRunID         string          `json:"pay_run_id"`
	EmployeeID       string          `json:"employee_id"`
	Month            int             `json:"month"`
	Year             int             `json:"year"`
	EmployeeName     string          `json:"employee_name"`
	EmployeeCode     string          `json:"employee_code"`
	Department       string          `json:"department"`
	Designation      string          `json:"designation"`
	PaymentMode      string          `json:"payment_mode"`
	GrossSalary      decimal.Decimal `json:"gross_salary"`
	LossOfPayAmount  decimal.Decimal `json:"loss_of_pay_amount"`
	PF               decimal.Decimal `json:"pf"`
	ESI              decimal.Decimal `json:"esi"`
	ProfessionalTax  decimal.Decimal `json:"professional_tax"`
	TDS              decimal.Decimal `json:"tds"`
	AdvanceDeduction decimal.Decimal `json:"advance_deduction"`
	LoanDeduction    decimal.Decimal `json:"loan_deduction"`
	TotalDeductions  decimal.Decimal `json:"total_deductions"`
	NetPay           decimal.Decimal `json:"net_pay"`
	PaymentDate      string          `json:"payment_date"`
	Sent             bool            `json:"sent"`
	DownloadCount    int             `json:"download_count"`
}
