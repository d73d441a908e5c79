package payrun

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Repository interface {
	// CreateWithRecords atomically inserts the run, all employee records and
	// the derived totals in one transaction. The period-uniqueness check runs
	// inside the same transaction; ErrDuplicatePeriod when a non-cancelled
	// run already holds (month, year).
	CreateWithRecords(ctx context.Context, run PayRun, records []EmployeeRecord) (PayRun, error)

	GetByID(ctx context.Context, id string) (PayRun, error)

	// GetByIDForUpdate reads the run with a row lock so concurrent status
	// transitions serialize on the run row. Must run inside a transaction.
	GetByIDForUpdate(ctx context.Context, id string) (PayRun, error)

	List(ctx context.Context, filter Filter) ([]PayRun, int64, error)

	// UpdateStatus performs a guarded transition: the UPDATE matches the
	// expected current status, ErrInvalidTransition when no row matched.
	UpdateStatus(ctx context.Context, id string, from, to Status, actorID string, paymentDate *time.Time, cancelReason *string) (PayRun, error)

	GetRecords(ctx context.Context, payRunID string) ([]EmployeeRecord, error)
	GetRecordByEmployee(ctx context.Context, payRunID, employeeID string) (EmployeeRecord, error)

	// RecomputeTotals re-derives the aggregate totals as sums over the run's
	// records. Totals are never entered independently.
	RecomputeTotals(ctx context.Context, payRunID string) (totalGross, totalDeductions, totalNet decimal.Decimal, totalEmployees int, err error)
}
