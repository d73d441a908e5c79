package payrun

import "context"

// Service is the pay-run orchestrator: it drives the draft -> approved ->
// processed state machine and the per-employee settlement pipeline.
type Service interface {
	// Generate creates the run for (month, year) and computes every eligible
	// employee's record atomically. ErrDuplicatePeriod when a non-cancelled
	// run already exists for the period.
	Generate(ctx context.Context, req GenerateRequest, requestedBy string) (PayRunResponse, error)

	// Approve transitions draft -> approved, recording the approver.
	Approve(ctx context.Context, payRunID, approverID string) (PayRunResponse, error)

	// Process settles an approved run: per employee record it finalizes the
	// payslip and commits the obligation deductions atomically, reporting
	// per-employee outcomes. Safe to re-run for a partially failed run.
	Process(ctx context.Context, payRunID, processorID string, req ProcessRequest) (ProcessingReport, error)

	// Cancel is legal from draft or approved only.
	Cancel(ctx context.Context, payRunID string, req CancelRequest, actorID string) (PayRunResponse, error)

	Get(ctx context.Context, payRunID string) (PayRunResponse, error)
	List(ctx context.Context, filter Filter) (ListPayRunResponse, error)
	Records(ctx context.Context, payRunID string) ([]EmployeeRecordResponse, error)

	// Record returns one employee's record within the run.
	// ErrRecordNotFound when the employee was not part of it.
	Record(ctx context.Context, payRunID, employeeID string) (EmployeeRecordResponse, error)
}
