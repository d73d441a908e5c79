package payslip

import "errors"

var (
	ErrPayslipNotFound  = errors.New("payslip not found")
	ErrDuplicatePayslip = errors.New("payslip already exists for this employee and period")
)
