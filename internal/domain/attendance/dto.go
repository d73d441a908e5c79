package attendance

import (
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type UpsertSummaryRequest struct {
	EmployeeID       string          `json:"employee_id"`
	Month            int             `json:"month"`
	Year             int             `json:"year"`
	TotalWorkingDays int             `json:"total_working_days"`
	PresentDays      int             `json:"present_days"`
	AbsentDays       int             `json:"absent_days"`
	PaidLeave        int             `json:"paid_leave"`
	UnpaidLeave      int             `json:"unpaid_leave"`
	HalfDays         int             `json:"half_days"`
	OvertimeHours    decimal.Decimal `json:"overtime_hours"`
}

func (r *UpsertSummaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if !validator.IsValidPeriod(r.Month, r.Year) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "period is invalid"})
	}
	if r.TotalWorkingDays < 1 || r.TotalWorkingDays > 31 {
		errs = append(errs, validator.ValidationError{Field: "total_working_days", Message: "must be between 1 and 31"})
	}
	for field, v := range map[string]int{
		"present_days": r.PresentDays,
		"absent_days":  r.AbsentDays,
		"paid_leave":   r.PaidLeave,
		"unpaid_leave": r.UnpaidLeave,
		"half_days":    r.HalfDays,
	} {
		if v < 0 {
			errs = append(errs, validator.ValidationError{Field: field, Message: "must be non-negative"})
		}
	}
	if r.OvertimeHours.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "overtime_hours", Message: "must be non-negative"})
	}
	if r.PresentDays+r.PaidLeave+r.UnpaidLeave+r.AbsentDays > r.TotalWorkingDays {
		errs = append(errs, validator.ValidationError{Field: "present_days", Message: "accounted days exceed total working days"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SummaryResponse struct {
	ID                   string          `json:"id"`
	EmployeeID           string          `json:"employee_id"`
	Month                int             `json:"month"`
	Year                 int             `json:"year"`
	TotalWorkingDays     int             `json:"total_working_days"`
	PresentDays          int             `json:"present_days"`
	AbsentDays           int             `json:"absent_days"`
	PaidLeave            int             `json:"paid_leave"`
	UnpaidLeave          int             `json:"unpaid_leave"`
	HalfDays             int             `json:"half_days"`
	OvertimeHours        decimal.Decimal `json:"overtime_hours"`
	PayableDays          decimal.Decimal `json:"payable_days"`
	LossOfPayDays        decimal.Decimal `json:"loss_of_pay_days"`
	AttendancePercentage decimal.Decimal `json:"attendance_percentage"`
	Status               string          `json:"status"`
	ApprovedBy           *string         `json:"approved_by,omitempty"`
}
