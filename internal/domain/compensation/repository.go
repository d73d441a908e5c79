package compensation

import (
	"context"
	"time"
)

type Repository interface {
	GetActiveByEmployeeID(ctx context.Context, employeeID string) (Profile, error)
	GetByID(ctx context.Context, id string) (Profile, error)
	ListRevisions(ctx context.Context, employeeID string) ([]Profile, error)

	// Create inserts a new profile row. Used only inside the revision
	// transaction together with RetireActive.
	Create(ctx context.Context, profile Profile) (Profile, error)

	// RetireActive closes the currently active profile for the employee,
	// setting effective_to and clearing the active flag. Returns
	// ErrProfileNotFound if the employee has no active profile.
	RetireActive(ctx context.Context, employeeID string, effectiveTo time.Time) error
}
