package payslip

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payrun"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payslip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	mu       sync.Mutex
	slips    map[string]payslip.Payslip
	counters map[string]int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		slips:    make(map[string]payslip.Payslip),
		counters: make(map[string]int),
	}
}

func (r *fakeRepository) Create(_ context.Context, slip payslip.Payslip) (payslip.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.slips {
		if existing.EmployeeID == slip.EmployeeID && existing.Month == slip.Month && existing.Year == slip.Year {
			return payslip.Payslip{}, payslip.ErrDuplicatePayslip
		}
	}
	r.slips[slip.ID] = slip
	return slip, nil
}

func (r *fakeRepository) GetByID(_ context.Context, id string) (payslip.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slip, ok := r.slips[id]
	if !ok {
		return payslip.Payslip{}, payslip.ErrPayslipNotFound
	}
	return slip, nil
}

func (r *fakeRepository) GetByEmployeePeriod(_ context.Context, employeeID string, month, year int) (payslip.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, slip := range r.slips {
		if slip.EmployeeID == employeeID && slip.Month == month && slip.Year == year {
			return slip, nil
		}
	}
	return payslip.Payslip{}, payslip.ErrPayslipNotFound
}

func (r *fakeRepository) ListByPayRun(_ context.Context, payRunID string) ([]payslip.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []payslip.Payslip
	for _, slip := range r.slips {
		if slip.PayRunID == payRunID {
			result = append(result, slip)
		}
	}
	return result, nil
}

func (r *fakeRepository) NextNumber(_ context.Context, numberType payslip.NumberType, year, month int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := fmt.Sprintf("%s/%d/%d", numberType, year, month)
	r.counters[key]++
	return r.counters[key], nil
}

func (r *fakeRepository) MarkSent(_ context.Context, id string) (payslip.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slip, ok := r.slips[id]
	if !ok {
		return payslip.Payslip{}, payslip.ErrPayslipNotFound
	}
	if !slip.Sent {
		now := time.Now()
		slip.Sent = true
		slip.SentAt = &now
	}
	r.slips[id] = slip
	return slip, nil
}

func (r *fakeRepository) IncrementDownloadCount(_ context.Context, id string) (payslip.Payslip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slip, ok := r.slips[id]
	if !ok {
		return payslip.Payslip{}, payslip.ErrPayslipNotFound
	}
	slip.DownloadCount++
	r.slips[id] = slip
	return slip, nil
}

type noopSink struct{}

func (noopSink) Record(context.Context, audit.Event) {}

type noopNotifier struct{}

func (noopNotifier) PayslipReady(context.Context, payslip.Payslip) error { return nil }

func newTestService(repo *fakeRepository) payslip.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, noopSink{}, noopNotifier{}, logger)
}

func testRecord(employeeID string) payrun.EmployeeRecord {
	return payrun.EmployeeRecord{
		ID:              "rec-" + employeeID,
		PayRunID:        "run-1",
		EmployeeID:      employeeID,
		GrossSalary:     decimal.NewFromInt(60000),
		TotalDeductions: decimal.NewFromInt(4500),
		NetPay:          decimal.NewFromInt(55500),
	}
}

func testSnapshot(employeeID string) employee.Snapshot {
	return employee.Snapshot{
		EmployeeID:   employeeID,
		EmployeeCode: "E001",
		FullName:     "Asha Rao",
		Department:   "Engineering",
		Designation:  "Engineer",
	}
}

func TestFinalize_NumberFormat(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(newFakeRepository())
	paymentDate := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	slip, err := svc.Finalize(ctx, testRecord("emp-1"), testSnapshot("emp-1"), "bank_transfer", 7, 2026, paymentDate, payslip.FinalizeOptions{})
	require.NoError(t, err)

	assert.Equal(t, "PS/2026/07/00001", slip.PayslipNumber)
	assert.Equal(t, "Asha Rao", slip.EmployeeName)
	assert.Equal(t, "bank_transfer", slip.PaymentMode)
	assert.True(t, slip.NetPay.Equal(decimal.NewFromInt(55500)))

	slip2, err := svc.Finalize(ctx, testRecord("emp-2"), testSnapshot("emp-2"), "bank_transfer", 7, 2026, paymentDate, payslip.FinalizeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "PS/2026/07/00002", slip2.PayslipNumber)
}

func TestFinalize_SequencesScopedByPeriod(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(newFakeRepository())
	paymentDate := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	_, err := svc.Finalize(ctx, testRecord("emp-1"), testSnapshot("emp-1"), "bank_transfer", 7, 2026, paymentDate, payslip.FinalizeOptions{})
	require.NoError(t, err)

	slip, err := svc.Finalize(ctx, testRecord("emp-1"), testSnapshot("emp-1"), "bank_transfer", 8, 2026, paymentDate, payslip.FinalizeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "PS/2026/08/00001", slip.PayslipNumber)
}

func TestFinalize_DuplicateRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(newFakeRepository())
	paymentDate := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	_, err := svc.Finalize(ctx, testRecord("emp-1"), testSnapshot("emp-1"), "bank_transfer", 7, 2026, paymentDate, payslip.FinalizeOptions{})
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, testRecord("emp-1"), testSnapshot("emp-1"), "bank_transfer", 7, 2026, paymentDate, payslip.FinalizeOptions{})
	assert.ErrorIs(t, err, payslip.ErrDuplicatePayslip)
}

func TestFinalize_IdempotentRetryReturnsExisting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(newFakeRepository())
	paymentDate := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	first, err := svc.Finalize(ctx, testRecord("emp-1"), testSnapshot("emp-1"), "bank_transfer", 7, 2026, paymentDate, payslip.FinalizeOptions{})
	require.NoError(t, err)

	retried, err := svc.Finalize(ctx, testRecord("emp-1"), testSnapshot("emp-1"), "bank_transfer", 7, 2026, paymentDate, payslip.FinalizeOptions{IdempotentRetry: true})
	require.NoError(t, err)
	assert.Equal(t, first.ID, retried.ID)
	assert.Equal(t, first.PayslipNumber, retried.PayslipNumber)
}

func TestMarkSent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newFakeRepository()
	svc := newTestService(repo)
	paymentDate := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	slip, err := svc.Finalize(ctx, testRecord("emp-1"), testSnapshot("emp-1"), "bank_transfer", 7, 2026, paymentDate, payslip.FinalizeOptions{})
	require.NoError(t, err)

	sent, err := svc.MarkSent(ctx, slip.ID)
	require.NoError(t, err)
	assert.True(t, sent.Sent)

	_, err = svc.MarkSent(ctx, "missing")
	assert.ErrorIs(t, err, payslip.ErrPayslipNotFound)
}

func TestRecordDownload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(newFakeRepository())
	paymentDate := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	slip, err := svc.Finalize(ctx, testRecord("emp-1"), testSnapshot("emp-1"), "bank_transfer", 7, 2026, paymentDate, payslip.FinalizeOptions{})
	require.NoError(t, err)

	first, err := svc.RecordDownload(ctx, slip.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.DownloadCount)

	second, err := svc.RecordDownload(ctx, slip.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.DownloadCount)
}

func TestListByPayRun(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(newFakeRepository())
	paymentDate := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)

	_, err := svc.Finalize(ctx, testRecord("emp-1"), testSnapshot("emp-1"), "bank_transfer", 7, 2026, paymentDate, payslip.FinalizeOptions{})
	require.NoError(t, err)
	_, err = svc.Finalize(ctx, testRecord("emp-2"), testSnapshot("emp-2"), "bank_transfer", 7, 2026, paymentDate, payslip.FinalizeOptions{})
	require.NoError(t, err)

	slips, err := svc.ListByPayRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, slips, 2)

	slips, err = svc.ListByPayRun(ctx, "run-2")
	require.NoError(t, err)
	assert.Empty(t, slips)
}
