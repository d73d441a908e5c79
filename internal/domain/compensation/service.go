package compensation

import "context"

type Service interface {
	// Revise replaces the employee's salary structure: derives the component
	// amounts from the requested CTC, validates the structural invariants,
	// retires the current profile and writes the new one in one transaction.
	Revise(ctx context.Context, req ReviseRequest, revisedBy string) (ProfileResponse, error)

	GetActive(ctx context.Context, employeeID string) (ProfileResponse, error)
	ListRevisions(ctx context.Context, employeeID string) ([]ProfileResponse, error)
}
