package payslip

import (
	"context"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payrun"
)

// FinalizeOptions controls the idempotence behavior of Finalize.
type FinalizeOptions struct {
	// IdempotentRetry makes Finalize return the existing payslip instead of
	// ErrDuplicatePayslip, which is what makes re-processing a partially
	// failed run safe.
	IdempotentRetry bool
}

// Service converts an approved pay-run employee record into the immutable
// payslip snapshot.
type Service interface {
	Finalize(ctx context.Context, record payrun.EmployeeRecord, snapshot employee.Snapshot, paymentMode string, month, year int, paymentDate time.Time, opts FinalizeOptions) (Payslip, error)

	Get(ctx context.Context, id string) (Response, error)
	GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (Response, error)
	ListByPayRun(ctx context.Context, payRunID string) ([]Response, error)

	MarkSent(ctx context.Context, id string) (Response, error)
	RecordDownload(ctx context.Context, id string) (Response, error)
}
