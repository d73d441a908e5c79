package obligation

import (
	"context"
	"sync"
	"testing"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/obligation"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/keylock"
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

// fakeRepository is an in-memory obligation store with the same guarded
// update semantics as the postgresql implementation.
type fakeRepository struct {
	mu       sync.Mutex
	advances map[string]obligation.Advance
	loans    map[string]obligation.Loan
	emis     []obligation.EMI
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		advances: make(map[string]obligation.Advance),
		loans:    make(map[string]obligation.Loan),
	}
}

func (r *fakeRepository) CreateAdvance(_ context.Context, a obligation.Advance) (obligation.Advance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advances[a.ID] = a
	return a, nil
}

func (r *fakeRepository) GetAdvanceByID(_ context.Context, id string) (obligation.Advance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.advances[id]
	if !ok {
		return obligation.Advance{}, obligation.ErrAdvanceNotFound
	}
	return a, nil
}

func (r *fakeRepository) GetAdvanceForUpdate(ctx context.Context, id string) (obligation.Advance, error) {
	return r.GetAdvanceByID(ctx, id)
}

func (r *fakeRepository) ListAdvancesByEmployee(_ context.Context, employeeID string) ([]obligation.Advance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []obligation.Advance
	for _, a := range r.advances {
		if a.EmployeeID == employeeID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *fakeRepository) UpdateAdvanceDeduction(_ context.Context, id string, amountDeducted, remainingAmount decimal.Decimal, status obligation.AdvanceStatus) (obligation.Advance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.advances[id]
	if !ok {
		return obligation.Advance{}, obligation.ErrAdvanceNotFound
	}
	a.AmountDeducted = amountDeducted
	a.RemainingAmount = remainingAmount
	a.Status = status
	r.advances[id] = a
	return a, nil
}

func (r *fakeRepository) UpdateAdvanceStatus(_ context.Context, id string, from, to obligation.AdvanceStatus) (obligation.Advance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.advances[id]
	if !ok {
		return obligation.Advance{}, obligation.ErrAdvanceNotFound
	}
	if a.Status != from {
		return obligation.Advance{}, obligation.ErrInvalidTransition
	}
	a.Status = to
	r.advances[id] = a
	return a, nil
}

func (r *fakeRepository) CreateLoan(_ context.Context, l obligation.Loan) (obligation.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loans[l.ID] = l
	return l, nil
}

func (r *fakeRepository) GetLoanByID(_ context.Context, id string) (obligation.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loans[id]
	if !ok {
		return obligation.Loan{}, obligation.ErrLoanNotFound
	}
	return l, nil
}

func (r *fakeRepository) GetLoanForUpdate(ctx context.Context, id string) (obligation.Loan, error) {
	return r.GetLoanByID(ctx, id)
}

func (r *fakeRepository) ListLoansByEmployee(_ context.Context, employeeID string) ([]obligation.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []obligation.Loan
	for _, l := range r.loans {
		if l.EmployeeID == employeeID {
			result = append(result, l)
		}
	}
	return result, nil
}

func (r *fakeRepository) UpdateLoanRepayment(_ context.Context, id string, totalPaidEMIs int, remainingBalance decimal.Decimal, status obligation.LoanStatus) (obligation.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loans[id]
	if !ok {
		return obligation.Loan{}, obligation.ErrLoanNotFound
	}
	l.TotalPaidEMIs = totalPaidEMIs
	l.RemainingBalance = remainingBalance
	l.Status = status
	r.loans[id] = l
	return l, nil
}

func (r *fakeRepository) UpdateLoanStatus(_ context.Context, id string, from, to obligation.LoanStatus, approverID *string) (obligation.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loans[id]
	if !ok {
		return obligation.Loan{}, obligation.ErrLoanNotFound
	}
	if l.Status != from {
		return obligation.Loan{}, obligation.ErrInvalidTransition
	}
	l.Status = to
	if approverID != nil {
		l.ApprovedBy = approverID
	}
	r.loans[id] = l
	return l, nil
}

func (r *fakeRepository) AppendEMI(_ context.Context, emi obligation.EMI) (obligation.EMI, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.emis {
		if existing.LoanID == emi.LoanID && existing.Month == emi.Month && existing.Year == emi.Year {
			return obligation.EMI{}, obligation.ErrEMIAlreadyPaid
		}
	}
	r.emis = append(r.emis, emi)
	return emi, nil
}

func (r *fakeRepository) ListEMIs(_ context.Context, loanID string) ([]obligation.EMI, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []obligation.EMI
	for _, emi := range r.emis {
		if emi.LoanID == loanID {
			result = append(result, emi)
		}
	}
	return result, nil
}

func (r *fakeRepository) EMIExists(_ context.Context, loanID string, month, year int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, emi := range r.emis {
		if emi.LoanID == loanID && emi.Month == month && emi.Year == year {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepository) GetDueForPeriod(ctx context.Context, employeeID string, month, year int) (obligation.Due, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due obligation.Due
	for _, a := range r.advances {
		if a.EmployeeID == employeeID && a.Open() {
			due.Advances = append(due.Advances, a)
		}
	}
	for _, l := range r.loans {
		if l.EmployeeID != employeeID || l.Status != obligation.LoanStatusActive {
			continue
		}
		paid := false
		for _, emi := range r.emis {
			if emi.LoanID == l.ID && emi.Month == month && emi.Year == year {
				paid = true
				break
			}
		}
		if !paid {
			due.Loans = append(due.Loans, l)
		}
	}
	return due, nil
}

type fakeDirectory struct {
	employees map[string]employee.Employee
}

func (d *fakeDirectory) GetActiveEmployees(_ context.Context, _, _ int) ([]employee.Employee, error) {
	var result []employee.Employee
	for _, e := range d.employees {
		result = append(result, e)
	}
	return result, nil
}

func (d *fakeDirectory) GetByID(_ context.Context, id string) (employee.Employee, error) {
	e, ok := d.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (d *fakeDirectory) GetSnapshot(_ context.Context, id string) (employee.Snapshot, error) {
	e, ok := d.employees[id]
	if !ok {
		return employee.Snapshot{}, employee.ErrEmployeeNotFound
	}
	return employee.Snapshot{
		EmployeeID:   e.ID,
		EmployeeCode: e.EmployeeCode,
		FullName:     e.FullName,
		Department:   e.Department,
		Designation:  e.Designation,
	}, nil
}

type fakeTxManager struct{}

func (fakeTxManager) WithTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type captureSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *captureSink) Record(_ context.Context, event audit.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func newTestService(repo *fakeRepository) obligation.Service {
	directory := &fakeDirectory{employees: map[string]employee.Employee{
		"emp-1": {ID: "emp-1", EmployeeCode: "E001", FullName: "Asha Rao", IsActive: true},
	}}
	return NewService(repo, directory, fakeTxManager{}, keylock.New(), &captureSink{})
}

func TestCreateAdvance(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newFakeRepository()
	svc := newTestService(repo)

	result, err := svc.CreateAdvance(ctx, obligation.CreateAdvanceRequest{
		EmployeeID:   "emp-1",
		PaidAmount:   dec("10000"),
		Installments: 3,
	}, "mgr-1")
	require.NoError(t, err)

	assert.Equal(t, string(obligation.AdvanceStatusPending), result.Status)
	assert.True(t, result.PerInstallment.Equal(dec("3333.33")), "perInstallment = %s", result.PerInstallment)
	assert.True(t, result.RemainingAmount.Equal(dec("10000")))
	assert.True(t, result.AmountDeducted.IsZero())
}

func TestCreateAdvance_Validation(t *testing.T) {
	t.Parallel()
	svc := newTestService(newFakeRepository())

	_, err := svc.CreateAdvance(context.Background(), obligation.CreateAdvanceRequest{
		EmployeeID:   "emp-1",
		PaidAmount:   dec("-100"),
		Installments: 0,
	}, "mgr-1")
	assert.Error(t, err)
}

func TestCreateAdvance_UnknownEmployee(t *testing.T) {
	t.Parallel()
	svc := newTestService(newFakeRepository())

	_, err := svc.CreateAdvance(context.Background(), obligation.CreateAdvanceRequest{
		EmployeeID:   "ghost",
		PaidAmount:   dec("100"),
		Installments: 1,
	}, "mgr-1")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestCreateLoan_Amortization(t *testing.T) {
	t.Parallel()
	svc := newTestService(newFakeRepository())

	result, err := svc.CreateLoan(context.Background(), obligation.CreateLoanRequest{
		EmployeeID:   "emp-1",
		Principal:    dec("100000"),
		InterestRate: dec("12"),
		NumberOfEMIs: 12,
	})
	require.NoError(t, err)

	assert.True(t, result.InterestAmount.Equal(dec("12000")), "interest = %s", result.InterestAmount)
	assert.True(t, result.TotalAmount.Equal(dec("112000")), "total = %s", result.TotalAmount)
	assert.True(t, result.EMIAmount.Equal(dec("9333.33")), "emi = %s", result.EMIAmount)
	assert.True(t, result.RemainingBalance.Equal(dec("112000")))
	assert.Equal(t, 12, result.RemainingEMIs)
	assert.Equal(t, string(obligation.LoanStatusPending), result.Status)
}

func TestApproveLoan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(newFakeRepository())

	loan, err := svc.CreateLoan(ctx, obligation.CreateLoanRequest{
		EmployeeID: "emp-1", Principal: dec("100000"), InterestRate: dec("12"), NumberOfEMIs: 12,
	})
	require.NoError(t, err)

	approved, err := svc.ApproveLoan(ctx, loan.ID, "mgr-1")
	require.NoError(t, err)
	assert.Equal(t, string(obligation.LoanStatusActive), approved.Status)

	_, err = svc.ApproveLoan(ctx, loan.ID, "mgr-1")
	assert.ErrorIs(t, err, obligation.ErrInvalidTransition)
}

func TestApplyLoanEMI(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newFakeRepository()
	svc := newTestService(repo)

	created, err := svc.CreateLoan(ctx, obligation.CreateLoanRequest{
		EmployeeID: "emp-1", Principal: dec("100000"), InterestRate: dec("12"), NumberOfEMIs: 12,
	})
	require.NoError(t, err)
	_, err = svc.ApproveLoan(ctx, created.ID, "mgr-1")
	require.NoError(t, err)

	loan, err := svc.ApplyLoanEMI(ctx, created.ID, 7, 2026, decimal.Zero, "run-1", "proc-1")
	require.NoError(t, err)

	assert.Equal(t, 1, loan.TotalPaidEMIs)
	assert.Equal(t, 11, loan.RemainingEMIs())
	assert.True(t, loan.RemainingBalance.Equal(dec("102666.67")), "remainingBalance = %s", loan.RemainingBalance)

	emis, err := repo.ListEMIs(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, emis, 1)
	assert.Equal(t, 1, emis[0].Sequence)
	assert.True(t, emis[0].Amount.Equal(dec("9333.33")))
}

func TestApplyLoanEMI_SamePeriodTwice(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(newFakeRepository())

	created, err := svc.CreateLoan(ctx, obligation.CreateLoanRequest{
		EmployeeID: "emp-1", Principal: dec("100000"), InterestRate: dec("12"), NumberOfEMIs: 12,
	})
	require.NoError(t, err)
	_, err = svc.ApproveLoan(ctx, created.ID, "mgr-1")
	require.NoError(t, err)

	_, err = svc.ApplyLoanEMI(ctx, created.ID, 7, 2026, decimal.Zero, "run-1", "proc-1")
	require.NoError(t, err)

	_, err = svc.ApplyLoanEMI(ctx, created.ID, 7, 2026, decimal.Zero, "run-1-retry", "proc-1")
	assert.ErrorIs(t, err, obligation.ErrEMIAlreadyPaid)
}

func TestApplyLoanEMI_StaleScheduledAmount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newFakeRepository()
	svc := newTestService(repo)

	// 10,000 at 12% flat over 3 EMIs: total 11,200, EMI 3,733.33 and a final
	// EMI of 3,733.34 absorbing the residue.
	created, err := svc.CreateLoan(ctx, obligation.CreateLoanRequest{
		EmployeeID: "emp-1", Principal: dec("10000"), InterestRate: dec("12"), NumberOfEMIs: 3,
	})
	require.NoError(t, err)
	_, err = svc.ApproveLoan(ctx, created.ID, "mgr-1")
	require.NoError(t, err)

	_, err = svc.ApplyLoanEMI(ctx, created.ID, 5, 2026, decimal.Zero, "", "proc-1")
	require.NoError(t, err)
	_, err = svc.ApplyLoanEMI(ctx, created.ID, 6, 2026, decimal.Zero, "", "proc-1")
	require.NoError(t, err)

	// A schedule computed while two EMIs were left carries 3,733.33, but the
	// last EMI is now due at 3,733.34. The stale figure must be rejected,
	// not silently replaced.
	_, err = svc.ApplyLoanEMI(ctx, created.ID, 7, 2026, dec("3733.33"), "run-1", "proc-1")
	assert.ErrorIs(t, err, obligation.ErrEMIAmountMismatch)

	loan, err := repo.GetLoanByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, loan.TotalPaidEMIs)
	assert.True(t, loan.RemainingBalance.Equal(dec("3733.34")), "remainingBalance = %s", loan.RemainingBalance)

	emis, err := repo.ListEMIs(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, emis, 2)
}

func TestApplyLoanEMI_PendingLoan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(newFakeRepository())

	created, err := svc.CreateLoan(ctx, obligation.CreateLoanRequest{
		EmployeeID: "emp-1", Principal: dec("100000"), InterestRate: dec("12"), NumberOfEMIs: 12,
	})
	require.NoError(t, err)

	_, err = svc.ApplyLoanEMI(ctx, created.ID, 7, 2026, decimal.Zero, "run-1", "proc-1")
	assert.ErrorIs(t, err, obligation.ErrObligationNotActive)
}

func TestApplyLoanEMI_RunsToCompletion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(newFakeRepository())

	created, err := svc.CreateLoan(ctx, obligation.CreateLoanRequest{
		EmployeeID: "emp-1", Principal: dec("100000"), InterestRate: dec("12"), NumberOfEMIs: 12,
	})
	require.NoError(t, err)
	_, err = svc.ApproveLoan(ctx, created.ID, "mgr-1")
	require.NoError(t, err)

	var loan obligation.Loan
	for month := 1; month <= 12; month++ {
		loan, err = svc.ApplyLoanEMI(ctx, created.ID, month, 2026, decimal.Zero, "", "proc-1")
		require.NoError(t, err)
	}

	// The final EMI absorbs the rounding residue, closing at exactly zero.
	assert.True(t, loan.RemainingBalance.IsZero(), "remainingBalance = %s", loan.RemainingBalance)
	assert.Equal(t, obligation.LoanStatusCompleted, loan.Status)
	assert.Equal(t, 0, loan.RemainingEMIs())

	_, err = svc.ApplyLoanEMI(ctx, created.ID, 1, 2027, decimal.Zero, "", "proc-1")
	assert.ErrorIs(t, err, obligation.ErrObligationNotActive)
}

func TestApplyAdvanceInstallment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(newFakeRepository())

	created, err := svc.CreateAdvance(ctx, obligation.CreateAdvanceRequest{
		EmployeeID: "emp-1", PaidAmount: dec("10000"), Installments: 3,
	}, "mgr-1")
	require.NoError(t, err)

	advance, err := svc.ApplyAdvanceInstallment(ctx, created.ID, dec("3333.33"), "run-1", "proc-1")
	require.NoError(t, err)

	assert.Equal(t, obligation.AdvanceStatusPartial, advance.Status)
	assert.True(t, advance.AmountDeducted.Add(advance.RemainingAmount).Equal(advance.PaidAmount),
		"deducted %s + remaining %s != paid %s", advance.AmountDeducted, advance.RemainingAmount, advance.PaidAmount)
}

func TestApplyAdvanceInstallment_OverDeduction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(newFakeRepository())

	created, err := svc.CreateAdvance(ctx, obligation.CreateAdvanceRequest{
		EmployeeID: "emp-1", PaidAmount: dec("1000"), Installments: 1,
	}, "mgr-1")
	require.NoError(t, err)

	_, err = svc.ApplyAdvanceInstallment(ctx, created.ID, dec("1000.01"), "", "proc-1")
	assert.ErrorIs(t, err, obligation.ErrOverDeduction)

	// Failed application leaves state unchanged.
	after, err := svc.GetAdvance(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, after.RemainingAmount.Equal(dec("1000")))
}

func TestApplyAdvanceInstallment_RunsToCompletion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(newFakeRepository())

	created, err := svc.CreateAdvance(ctx, obligation.CreateAdvanceRequest{
		EmployeeID: "emp-1", PaidAmount: dec("10000"), Installments: 3,
	}, "mgr-1")
	require.NoError(t, err)

	var advance obligation.Advance
	for i := 0; i < 3; i++ {
		current, err := svc.GetAdvance(ctx, created.ID)
		require.NoError(t, err)

		next := obligation.Advance{
			PerInstallment:  current.PerInstallment,
			RemainingAmount: current.RemainingAmount,
		}.Deductible()

		advance, err = svc.ApplyAdvanceInstallment(ctx, created.ID, next, "", "proc-1")
		require.NoError(t, err)
	}

	assert.Equal(t, obligation.AdvanceStatusDeducted, advance.Status)
	assert.True(t, advance.RemainingAmount.IsZero(), "remaining = %s", advance.RemainingAmount)
	assert.True(t, advance.AmountDeducted.Equal(dec("10000")))

	_, err = svc.ApplyAdvanceInstallment(ctx, created.ID, dec("1"), "", "proc-1")
	assert.ErrorIs(t, err, obligation.ErrObligationNotActive)
}

func TestApplyAdvanceInstallment_Concurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(newFakeRepository())

	created, err := svc.CreateAdvance(ctx, obligation.CreateAdvanceRequest{
		EmployeeID: "emp-1", PaidAmount: dec("10000"), Installments: 10,
	}, "mgr-1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ApplyAdvanceInstallment(ctx, created.ID, dec("1000"), "", "proc-1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	after, err := svc.GetAdvance(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, after.AmountDeducted.Equal(dec("10000")), "deducted = %s", after.AmountDeducted)
	assert.True(t, after.RemainingAmount.IsZero())
	assert.Equal(t, string(obligation.AdvanceStatusDeducted), after.Status)
}

func TestCancelAdvance_AfterDeductionRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(newFakeRepository())

	created, err := svc.CreateAdvance(ctx, obligation.CreateAdvanceRequest{
		EmployeeID: "emp-1", PaidAmount: dec("10000"), Installments: 3,
	}, "mgr-1")
	require.NoError(t, err)

	_, err = svc.ApplyAdvanceInstallment(ctx, created.ID, dec("3333.33"), "", "proc-1")
	require.NoError(t, err)

	_, err = svc.CancelAdvance(ctx, created.ID)
	assert.ErrorIs(t, err, obligation.ErrInvalidTransition)
}

func TestGetDueObligations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(newFakeRepository())

	advance, err := svc.CreateAdvance(ctx, obligation.CreateAdvanceRequest{
		EmployeeID: "emp-1", PaidAmount: dec("6000"), Installments: 3,
	}, "mgr-1")
	require.NoError(t, err)

	loan, err := svc.CreateLoan(ctx, obligation.CreateLoanRequest{
		EmployeeID: "emp-1", Principal: dec("100000"), InterestRate: dec("12"), NumberOfEMIs: 12,
	})
	require.NoError(t, err)
	_, err = svc.ApproveLoan(ctx, loan.ID, "mgr-1")
	require.NoError(t, err)

	due, err := svc.GetDueObligations(ctx, "emp-1", 7, 2026)
	require.NoError(t, err)
	require.Len(t, due.Advances, 1)
	require.Len(t, due.Loans, 1)
	assert.Equal(t, advance.ID, due.Advances[0].ID)

	// A loan with an EMI already recorded for the period is no longer due.
	_, err = svc.ApplyLoanEMI(ctx, loan.ID, 7, 2026, decimal.Zero, "run-1", "proc-1")
	require.NoError(t, err)

	due, err = svc.GetDueObligations(ctx, "emp-1", 7, 2026)
	require.NoError(t, err)
	assert.Empty(t, due.Loans)
}
