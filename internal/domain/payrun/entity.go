package payrun

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status enum
type Status string

const (
	StatusDraft     Status = "draft"
	StatusApproved  Status = "approved"
	StatusProcessed Status = "processed"
	StatusCancelled Status = "cancelled"
)

// CanTransition encodes the run state machine: draft -> approved -> processed,
// cancelled reachable from draft or approved. Nothing leaves processed or
// cancelled.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusDraft:
		return to == StatusApproved || to == StatusCancelled
	case StatusApproved:
		return to == StatusProcessed || to == StatusCancelled
	default:
		return false
	}
}

// PayRun is one month's settlement batch. The aggregate totals are derived
// sums over the employee records, recomputed whenever records are written.
type PayRun struct {
	ID              string
	Month           int
	Year            int
	Status          Status
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNetPay     decimal.Decimal
	TotalEmployees  int
	Warnings        []Warning
	RequestedBy     string
	ApprovedBy      *string
	ApprovedAt      *time.Time
	ProcessedBy     *string
	ProcessedAt     *time.Time
	PaymentDate     *time.Time
	CancelReason    *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Warning records an employee skipped during generation, typically for a
// missing approved attendance summary.
type Warning struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

// EmployeeRecord is the per-employee snapshot computed at generation time.
// netPay == grossSalary - totalDeductions within a cent; immutable once the
// run is processed.
type EmployeeRecord struct {
	ID               string
	PayRunID         string
	EmployeeID       string
	GrossSalary      decimal.Decimal
	LossOfPayAmount  decimal.Decimal
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

	// Per-obligation breakdown keyed by obligation ID, persisted so that
	// process commits exactly what generate computed.
	AdvanceDetail map[string]decimal.Decimal
	LoanDetail    map[string]decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}

// ProcessingReport is the per-employee outcome breakdown of a process call.
// Processing is best-effort across employees: one failure never blocks the
// rest, it is surfaced here so operators can retry the failed subset.
type ProcessingReport struct {
	PayRunID  string            `json:"pay_run_id"`
	Succeeded []string          `json:"succeeded"`
	Failed    []ProcessFailure  `json:"failed"`
}

type ProcessFailure struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}
