package compensation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type fakeRepository struct {
	mu       sync.Mutex
	profiles []compensation.Profile
}

func (r *fakeRepository) GetActiveByEmployeeID(_ context.Context, employeeID string) (compensation.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.EmployeeID == employeeID && p.IsActive {
			return p, nil
		}
	}
	return compensation.Profile{}, compensation.ErrProfileNotFound
}

func (r *fakeRepository) GetByID(_ context.Context, id string) (compensation.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return compensation.Profile{}, compensation.ErrProfileNotFound
}

func (r *fakeRepository) ListRevisions(_ context.Context, employeeID string) ([]compensation.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []compensation.Profile
	for _, p := range r.profiles {
		if p.EmployeeID == employeeID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (r *fakeRepository) Create(_ context.Context, profile compensation.Profile) (compensation.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles = append(r.profiles, profile)
	return profile, nil
}

func (r *fakeRepository) RetireActive(_ context.Context, employeeID string, effectiveTo time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.profiles {
		if p.EmployeeID == employeeID && p.IsActive {
			r.profiles[i].IsActive = false
			r.profiles[i].EffectiveTo = &effectiveTo
			return nil
		}
	}
	return compensation.ErrProfileNotFound
}

type fakeDirectory struct{}

func (fakeDirectory) GetActiveEmployees(_ context.Context, _, _ int) ([]employee.Employee, error) {
	return nil, nil
}

func (fakeDirectory) GetByID(_ context.Context, id string) (employee.Employee, error) {
	if id != "emp-1" {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return employee.Employee{ID: id, IsActive: true}, nil
}

func (fakeDirectory) GetSnapshot(_ context.Context, id string) (employee.Snapshot, error) {
	return employee.Snapshot{EmployeeID: id}, nil
}

type fakeTxManager struct{}

func (fakeTxManager) WithTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type noopSink struct{}

func (noopSink) Record(context.Context, audit.Event) {}

func newTestService(repo *fakeRepository) compensation.Service {
	return NewService(repo, fakeDirectory{}, fakeTxManager{}, noopSink{})
}

func reviseRequest() compensation.ReviseRequest {
	return compensation.ReviseRequest{
		EmployeeID:    "emp-1",
		AnnualCTC:     dec("1200000"),
		HRAPercent:    dec("20"),
		PaymentMode:   string(compensation.PaymentModeBankTransfer),
		EffectiveFrom: "2026-04-01",
	}
}

func TestRevise_DerivesComponents(t *testing.T) {
	t.Parallel()
	svc := newTestService(&fakeRepository{})

	resp, err := svc.Revise(context.Background(), reviseRequest(), "hr-1")
	require.NoError(t, err)

	assert.True(t, resp.Basic.Equal(dec("50000")), "basic = %s", resp.Basic)
	assert.True(t, resp.HRA.Equal(dec("10000")), "hra = %s", resp.HRA)
	assert.True(t, resp.Gross.Equal(dec("60000")), "gross = %s", resp.Gross)
	assert.True(t, resp.IsActive)
}

func TestRevise_RetiresPreviousProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := &fakeRepository{}
	svc := newTestService(repo)

	first, err := svc.Revise(ctx, reviseRequest(), "hr-1")
	require.NoError(t, err)

	raise := reviseRequest()
	raise.AnnualCTC = dec("1500000")
	raise.EffectiveFrom = "2026-07-01"

	second, err := svc.Revise(ctx, raise, "hr-1")
	require.NoError(t, err)
	assert.True(t, second.Basic.Equal(dec("62500")), "basic = %s", second.Basic)

	active, err := svc.GetActive(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
	assert.NotEqual(t, first.ID, active.ID)

	revisions, err := svc.ListRevisions(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, revisions, 2)
}

func TestRevise_UnknownEmployee(t *testing.T) {
	t.Parallel()
	svc := newTestService(&fakeRepository{})

	req := reviseRequest()
	req.EmployeeID = "ghost"
	_, err := svc.Revise(context.Background(), req, "hr-1")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestRevise_Validation(t *testing.T) {
	t.Parallel()
	svc := newTestService(&fakeRepository{})

	req := reviseRequest()
	req.AnnualCTC = dec("-1")
	_, err := svc.Revise(context.Background(), req, "hr-1")
	assert.Error(t, err)

	req = reviseRequest()
	req.PaymentMode = "barter"
	_, err = svc.Revise(context.Background(), req, "hr-1")
	assert.Error(t, err)

	req = reviseRequest()
	req.EffectiveFrom = "not-a-date"
	_, err = svc.Revise(context.Background(), req, "hr-1")
	assert.Error(t, err)
}

func TestGetActive_NotFound(t *testing.T) {
	t.Parallel()
	svc := newTestService(&fakeRepository{})

	_, err := svc.GetActive(context.Background(), "emp-1")
	assert.ErrorIs(t, err, compensation.ErrProfileNotFound)
}
