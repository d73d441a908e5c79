package obligation

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/obligation"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/keylock"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// service is the credit-obligation ledger. Deduction applications take a
// per-obligation key lock before opening the transaction, then re-read the
// row FOR UPDATE inside it, so concurrent payroll processes serialize on
// each obligation at both layers.
type service struct {
	repo      obligation.Repository
	employees employee.Directory
	tx        postgresql.TxManager
	locks     *keylock.KeyLock
	auditor   audit.Sink
}

func NewService(repo obligation.Repository, employees employee.Directory, tx postgresql.TxManager, locks *keylock.KeyLock, auditor audit.Sink) obligation.Service {
	return &service{
		repo:      repo,
		employees: employees,
		tx:        tx,
		locks:     locks,
		auditor:   auditor,
	}
}

func (s *service) CreateAdvance(ctx context.Context, req obligation.CreateAdvanceRequest, grantedBy string) (obligation.AdvanceResponse, error) {
	if err := req.Validate(); err != nil {
		return obligation.AdvanceResponse{}, err
	}

	if _, err := s.employees.GetByID(ctx, req.EmployeeID); err != nil {
		return obligation.AdvanceResponse{}, err
	}

	perInstallment := req.PaidAmount.
		Div(decimal.NewFromInt(int64(req.Installments))).
		Round(2)

	advance := obligation.Advance{
		ID:              uuid.New().String(),
		EmployeeID:      req.EmployeeID,
		PaidAmount:      req.PaidAmount,
		Installments:    req.Installments,
		PerInstallment:  perInstallment,
		AmountDeducted:  decimal.Zero,
		RemainingAmount: req.PaidAmount,
		Status:          obligation.AdvanceStatusPending,
		Reason:          req.Reason,
		GrantedBy:       grantedBy,
		GrantedAt:       time.Now(),
	}

	created, err := s.repo.CreateAdvance(ctx, advance)
	if err != nil {
		return obligation.AdvanceResponse{}, fmt.Errorf("failed to create advance: %w", err)
	}

	return toAdvanceResponse(created), nil
}

func (s *service) GetAdvance(ctx context.Context, id string) (obligation.AdvanceResponse, error) {
	advance, err := s.repo.GetAdvanceByID(ctx, id)
	if err != nil {
		return obligation.AdvanceResponse{}, err
	}
	return toAdvanceResponse(advance), nil
}

func (s *service) ListAdvances(ctx context.Context, employeeID string) ([]obligation.AdvanceResponse, error) {
	advances, err := s.repo.ListAdvancesByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	responses := make([]obligation.AdvanceResponse, 0, len(advances))
	for _, a := range advances {
		responses = append(responses, toAdvanceResponse(a))
	}
	return responses, nil
}

func (s *service) CancelAdvance(ctx context.Context, id string) (obligation.AdvanceResponse, error) {
	advance, err := s.repo.GetAdvanceByID(ctx, id)
	if err != nil {
		return obligation.AdvanceResponse{}, err
	}

	// Only untouched advances can be cancelled. Once money has been
	// recovered the ledger rows must stay consistent.
	if advance.Status != obligation.AdvanceStatusPending || !advance.AmountDeducted.IsZero() {
		return obligation.AdvanceResponse{}, obligation.ErrInvalidTransition
	}

	cancelled, err := s.repo.UpdateAdvanceStatus(ctx, id, obligation.AdvanceStatusPending, obligation.AdvanceStatusCancelled)
	if err != nil {
		return obligation.AdvanceResponse{}, err
	}

	return toAdvanceResponse(cancelled), nil
}

func (s *service) CreateLoan(ctx context.Context, req obligation.CreateLoanRequest) (obligation.LoanResponse, error) {
	if err := req.Validate(); err != nil {
		return obligation.LoanResponse{}, err
	}

	if _, err := s.employees.GetByID(ctx, req.EmployeeID); err != nil {
		return obligation.LoanResponse{}, err
	}

	// Flat interest over the whole term.
	interestAmount := req.Principal.
		Mul(req.InterestRate).
		Div(decimal.NewFromInt(100)).
		Round(2)
	totalAmount := req.Principal.Add(interestAmount)
	emiAmount := totalAmount.
		Div(decimal.NewFromInt(int64(req.NumberOfEMIs))).
		Round(2)

	loan := obligation.Loan{
		ID:               uuid.New().String(),
		EmployeeID:       req.EmployeeID,
		Principal:        req.Principal,
		InterestRate:     req.InterestRate,
		InterestAmount:   interestAmount,
		TotalAmount:      totalAmount,
		NumberOfEMIs:     req.NumberOfEMIs,
		EMIAmount:        emiAmount,
		TotalPaidEMIs:    0,
		RemainingBalance: totalAmount,
		Status:           obligation.LoanStatusPending,
		Reason:           req.Reason,
	}

	created, err := s.repo.CreateLoan(ctx, loan)
	if err != nil {
		return obligation.LoanResponse{}, fmt.Errorf("failed to create loan: %w", err)
	}

	return toLoanResponse(created), nil
}

func (s *service) GetLoan(ctx context.Context, id string) (obligation.LoanResponse, error) {
	loan, err := s.repo.GetLoanByID(ctx, id)
	if err != nil {
		return obligation.LoanResponse{}, err
	}
	return toLoanResponse(loan), nil
}

func (s *service) ListLoans(ctx context.Context, employeeID string) ([]obligation.LoanResponse, error) {
	loans, err := s.repo.ListLoansByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	responses := make([]obligation.LoanResponse, 0, len(loans))
	for _, l := range loans {
		responses = append(responses, toLoanResponse(l))
	}
	return responses, nil
}

func (s *service) ApproveLoan(ctx context.Context, id, approverID string) (obligation.LoanResponse, error) {
	loan, err := s.repo.UpdateLoanStatus(ctx, id, obligation.LoanStatusPending, obligation.LoanStatusActive, &approverID)
	if err != nil {
		return obligation.LoanResponse{}, err
	}
	return toLoanResponse(loan), nil
}

func (s *service) CancelLoan(ctx context.Context, id string) (obligation.LoanResponse, error) {
	loan, err := s.repo.GetLoanByID(ctx, id)
	if err != nil {
		return obligation.LoanResponse{}, err
	}
	if loan.Status != obligation.LoanStatusPending || loan.TotalPaidEMIs > 0 {
		return obligation.LoanResponse{}, obligation.ErrInvalidTransition
	}

	cancelled, err := s.repo.UpdateLoanStatus(ctx, id, obligation.LoanStatusPending, obligation.LoanStatusCancelled, nil)
	if err != nil {
		return obligation.LoanResponse{}, err
	}
	return toLoanResponse(cancelled), nil
}

func (s *service) MarkLoanDefaulted(ctx context.Context, id string) (obligation.LoanResponse, error) {
	loan, err := s.repo.UpdateLoanStatus(ctx, id, obligation.LoanStatusActive, obligation.LoanStatusDefaulted, nil)
	if err != nil {
		return obligation.LoanResponse{}, err
	}
	return toLoanResponse(loan), nil
}

func (s *service) ApplyAdvanceInstallment(ctx context.Context, advanceID string, amount decimal.Decimal, payRunID, actorID string) (obligation.Advance, error) {
	if !amount.IsPositive() {
		return obligation.Advance{}, obligation.ErrOverDeduction
	}

	s.locks.Lock("advance:" + advanceID)
	defer s.locks.Unlock("advance:" + advanceID)

	var updated obligation.Advance

	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		advance, err := s.repo.GetAdvanceForUpdate(txCtx, advanceID)
		if err != nil {
			return err
		}

		if !advance.Open() {
			return obligation.ErrObligationNotActive
		}
		if amount.GreaterThan(advance.RemainingAmount) {
			return obligation.ErrOverDeduction
		}

		newDeducted := advance.AmountDeducted.Add(amount)
		newRemaining := advance.RemainingAmount.Sub(amount)

		status := obligation.AdvanceStatusPartial
		if newRemaining.IsZero() {
			status = obligation.AdvanceStatusDeducted
		}

		updated, err = s.repo.UpdateAdvanceDeduction(txCtx, advanceID, newDeducted, newRemaining, status)
		if err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return obligation.Advance{}, err
	}

	s.auditor.Record(ctx, audit.Event{
		Action:     audit.ActionAdvanceDeducted,
		EntityID:   advanceID,
		ActorID:    actorID,
		OccurredAt: time.Now(),
		Detail: map[string]any{
			"amount":           amount.String(),
			"remaining_amount": updated.RemainingAmount.String(),
			"pay_run_id":       payRunID,
		},
	})

	return updated, nil
}

func (s *service) ApplyLoanEMI(ctx context.Context, loanID string, month, year int, scheduled decimal.Decimal, payRunID string, actorID string) (obligation.Loan, error) {
	s.locks.Lock("loan:" + loanID)
	defer s.locks.Unlock("loan:" + loanID)

	var updated obligation.Loan
	var paid decimal.Decimal

	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		loan, err := s.repo.GetLoanForUpdate(txCtx, loanID)
		if err != nil {
			return err
		}

		if loan.Status != obligation.LoanStatusActive {
			return obligation.ErrObligationNotActive
		}
		if loan.RemainingEMIs() <= 0 {
			return obligation.ErrNoRemainingEMIs
		}

		exists, err := s.repo.EMIExists(txCtx, loanID, month, year)
		if err != nil {
			return err
		}
		if exists {
			return obligation.ErrEMIAlreadyPaid
		}

		paid = loan.Deductible()

		// A scheduled amount came from an earlier computation over this
		// loan. If repayments have moved the loan since, committing either
		// figure would desynchronize the ledger from what was reported.
		if !scheduled.IsZero() && !scheduled.Equal(paid) {
			return fmt.Errorf("%w: scheduled %s, due %s", obligation.ErrEMIAmountMismatch, scheduled, paid)
		}

		var runRef *string
		if payRunID != "" {
			runRef = &payRunID
		}

		// The unique (loan, month, year) index backstops the existence
		// check above for writers outside this transaction.
		_, err = s.repo.AppendEMI(txCtx, obligation.EMI{
			ID:       uuid.New().String(),
			LoanID:   loanID,
			Sequence: loan.TotalPaidEMIs + 1,
			Month:    month,
			Year:     year,
			Amount:   paid,
			PayRunID: runRef,
			PaidAt:   time.Now(),
		})
		if err != nil {
			return err
		}

		newPaidEMIs := loan.TotalPaidEMIs + 1
		newBalance := loan.RemainingBalance.Sub(paid)

		status := obligation.LoanStatusActive
		if newPaidEMIs >= loan.NumberOfEMIs || newBalance.IsZero() {
			status = obligation.LoanStatusCompleted
		}

		updated, err = s.repo.UpdateLoanRepayment(txCtx, loanID, newPaidEMIs, newBalance, status)
		if err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return obligation.Loan{}, err
	}

	s.auditor.Record(ctx, audit.Event{
		Action:     audit.ActionLoanEMIPaid,
		EntityID:   loanID,
		ActorID:    actorID,
		OccurredAt: time.Now(),
		Detail: map[string]any{
			"amount":            paid.String(),
			"month":             month,
			"year":              year,
			"total_paid_emis":   updated.TotalPaidEMIs,
			"remaining_balance": updated.RemainingBalance.String(),
			"pay_run_id":        payRunID,
		},
	})

	return updated, nil
}

func (s *service) GetDueObligations(ctx context.Context, employeeID string, month, year int) (obligation.Due, error) {
	return s.repo.GetDueForPeriod(ctx, employeeID, month, year)
}

func toAdvanceResponse(a obligation.Advance) obligation.AdvanceResponse {
	return obligation.AdvanceResponse{
		ID:              a.ID,
		EmployeeID:      a.EmployeeID,
		PaidAmount:      a.PaidAmount,
		Installments:    a.Installments,
		PerInstallment:  a.PerInstallment,
		AmountDeducted:  a.AmountDeducted,
		RemainingAmount: a.RemainingAmount,
		Status:          string(a.Status),
		Reason:          a.Reason,
	}
}

func toLoanResponse(l obligation.Loan) obligation.LoanResponse {
	return obligation.LoanResponse{
		ID:                l.ID,
		EmployeeID:        l.EmployeeID,
		Principal:         l.Principal,
		InterestRate:      l.InterestRate,
		InterestAmount:    l.InterestAmount,
		TotalAmount:       l.TotalAmount,
		NumberOfEMIs:      l.NumberOfEMIs,
		EMIAmount:         l.EMIAmount,
		TotalPaidEMIs:     l.TotalPaidEMIs,
		RemainingEMIs:     l.RemainingEMIs(),
		RemainingBalance:  l.RemainingBalance,
		CompletionPercent: l.CompletionPercent(),
		Status:            string(l.Status),
		Reason:            l.Reason,
	}
}
