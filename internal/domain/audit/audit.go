// Package audit defines the fire-and-forget audit event contract. The
// settlement engine emits events on every state transition; storage,
// partitioning and retention belong to the platform's audit service.
package audit

import (
	"context"
	"time"
)

type Action string

const (
	ActionPayRunGenerated    Action = "pay_run.generated"
	ActionPayRunApproved     Action = "pay_run.approved"
	ActionPayRunProcessed    Action = "pay_run.processed"
	ActionPayRunCancelled    Action = "pay_run.cancelled"
	ActionAdvanceDeducted    Action = "advance.installment_deducted"
	ActionLoanEMIPaid        Action = "loan.emi_paid"
	ActionPayslipFinalized   Action = "payslip.finalized"
	ActionAttendanceApproved Action = "attendance.approved"
	ActionAttendanceReopened Action = "attendance.reopened"
	ActionSalaryRevised      Action = "compensation.revised"
)

type Event struct {
	Action     Action
	EntityID   string
	ActorID    string
	OccurredAt time.Time
	Detail     map[string]any
}

// Sink receives audit events. Implementations must never fail the business
// operation: errors are swallowed or logged by the sink itself.
type Sink interface {
	Record(ctx context.Context, event Event)
}
