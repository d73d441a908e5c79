package attendance

import "context"

type Service interface {
	// Upsert records or replaces an unapproved summary. Approved summaries
	// are immutable; they must be reopened first.
	Upsert(ctx context.Context, req UpsertSummaryRequest) (SummaryResponse, error)

	Get(ctx context.Context, employeeID string, month, year int) (SummaryResponse, error)

	// Approve locks the summary for payroll, exactly once per summary.
	Approve(ctx context.Context, employeeID string, month, year int, approverID string) (SummaryResponse, error)

	// Reopen is the administrative correction flow: it re-opens approval so
	// the summary can be corrected and approved again.
	Reopen(ctx context.Context, employeeID string, month, year int, actorID string) (SummaryResponse, error)

	ListByPeriod(ctx context.Context, month, year int) ([]SummaryResponse, error)
}
