package attendance

import "context"

type Repository interface {
	// Upsert creates or replaces the summary for (employee, month, year).
	// Fails with ErrSummaryImmutable when the stored summary is approved.
	Upsert(ctx context.Context, summary Summary) (Summary, error)

	GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (Summary, error)

	// GetApproved returns the summary only if it is in the approved state;
	// ErrSummaryNotFound when absent, ErrNotApproved when still unapproved.
	GetApproved(ctx context.Context, employeeID string, month, year int) (Summary, error)

	// Approve transitions unapproved -> approved exactly once, recording the
	// approver. ErrAlreadyApproved on a second attempt.
	Approve(ctx context.Context, employeeID string, month, year int, approverID string) (Summary, error)

	// Reopen is the administrative correction path: approved -> unapproved,
	// clearing the approval record.
	Reopen(ctx context.Context, employeeID string, month, year int) (Summary, error)

	ListByPeriod(ctx context.Context, month, year int) ([]Summary, error)
}
