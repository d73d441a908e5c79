package payslip

import "context"

type Repository interface {
	// Create inserts the payslip; ErrDuplicatePayslip when one already exists
	// for (employee, month, year).
	Create(ctx context.Context, slip Payslip) (Payslip, error)

	GetByID(ctx context.Context, id string) (Payslip, error)
	GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (Payslip, error)
	ListByPayRun(ctx context.Context, payRunID string) ([]Payslip, error)

	// NextNumber allocates the next monotonically increasing sequence value
	// scoped by (type, year, month). Safe under concurrency: implementations
	// increment a counter row atomically.
	NextNumber(ctx context.Context, numberType NumberType, year, month int) (int, error)

	// Delivery tracking: the only mutations permitted after creation.
	MarkSent(ctx context.Context, id string) (Payslip, error)
	IncrementDownloadCount(ctx context.Context, id string) (Payslip, error)
}
