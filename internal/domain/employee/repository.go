package employee

import "context"

// Directory is the read-only contract against the platform's employee
// management. The settlement engine never writes employee rows.
type Directory interface {
	// GetActiveEmployees returns employees whose tenure overlaps the period.
	GetActiveEmployees(ctx context.Context, month, year int) ([]Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)
	GetSnapshot(ctx context.Context, id string) (Snapshot, error)
}
