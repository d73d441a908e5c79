package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/obligation"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payrun"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payslip"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/statutory"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Not found
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, compensation.ErrProfileNotFound):
		NotFound(w, "Compensation profile not found")
	case errors.Is(err, attendance.ErrSummaryNotFound):
		NotFound(w, "Attendance summary not found")
	case errors.Is(err, payrun.ErrPayRunNotFound):
		NotFound(w, "Pay run not found")
	case errors.Is(err, payrun.ErrRecordNotFound):
		NotFound(w, "Pay run record not found")
	case errors.Is(err, payslip.ErrPayslipNotFound):
		NotFound(w, "Payslip not found")
	case errors.Is(err, obligation.ErrAdvanceNotFound):
		NotFound(w, "Advance not found")
	case errors.Is(err, obligation.ErrLoanNotFound):
		NotFound(w, "Loan not found")

	// Conflicts
	case errors.Is(err, payrun.ErrDuplicatePeriod):
		Conflict(w, "A pay run already exists for this period")
	case errors.Is(err, payrun.ErrInvalidTransition):
		Conflict(w, "Pay run status does not permit this operation")
	case errors.Is(err, payslip.ErrDuplicatePayslip):
		Conflict(w, "Payslip already exists for this employee and period")
	case errors.Is(err, attendance.ErrAlreadyApproved):
		Conflict(w, "Attendance summary is already approved")
	case errors.Is(err, attendance.ErrSummaryImmutable):
		Conflict(w, "Approved attendance summaries are immutable")
	case errors.Is(err, obligation.ErrInvalidTransition):
		Conflict(w, "Obligation status does not permit this operation")
	case errors.Is(err, obligation.ErrEMIAlreadyPaid):
		Conflict(w, "An EMI is already recorded for this period")
	case errors.Is(err, obligation.ErrEMIAmountMismatch):
		Conflict(w, "Scheduled EMI amount no longer matches the loan's due amount")

	// Bad requests
	case errors.Is(err, payrun.ErrNoEligibleEmployees):
		BadRequest(w, "No eligible employees for this period", nil)
	case errors.Is(err, payrun.ErrApproverRequired):
		BadRequest(w, "Approver identity is required", nil)
	case errors.Is(err, attendance.ErrApproverRequired):
		BadRequest(w, "Approver identity is required", nil)
	case errors.Is(err, attendance.ErrNotApproved):
		BadRequest(w, "Attendance summary is not approved", nil)
	case errors.Is(err, obligation.ErrObligationNotActive):
		BadRequest(w, "Obligation is not in a deductible state", nil)
	case errors.Is(err, obligation.ErrOverDeduction):
		BadRequest(w, "Deduction exceeds the remaining amount", nil)
	case errors.Is(err, obligation.ErrNoRemainingEMIs):
		BadRequest(w, "Loan has no remaining EMIs", nil)
	case errors.Is(err, compensation.ErrInvalidCompensation):
		BadRequest(w, "Compensation profile invariants do not hold", nil)
	case errors.Is(err, statutory.ErrNoRatesForPeriod):
		BadRequest(w, "No statutory rates configured for this period", nil)

	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
