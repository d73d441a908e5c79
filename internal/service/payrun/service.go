package payrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/obligation"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payrun"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payslip"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/statutory"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/payroll-engine-go/internal/service/calculator"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// computeConcurrency bounds the per-employee calculator fan-out during
// generation.
const computeConcurrency = 8

type service struct {
	runs         payrun.Repository
	employees    employee.Directory
	compensation compensation.Repository
	attendance   attendance.Repository
	obligations  obligation.Service
	statutory    statutory.Provider
	payslips     payslip.Service
	tx           postgresql.TxManager
	auditor      audit.Sink
	logger       *slog.Logger
}

func NewService(
	runs payrun.Repository,
	employees employee.Directory,
	compensationRepo compensation.Repository,
	attendanceRepo attendance.Repository,
	obligations obligation.Service,
	statutoryProvider statutory.Provider,
	payslips payslip.Service,
	tx postgresql.TxManager,
	auditor audit.Sink,
	logger *slog.Logger,
) payrun.Service {
	return &service{
		runs:         runs,
		employees:    employees,
		compensation: compensationRepo,
		attendance:   attendanceRepo,
		obligations:  obligations,
		statutory:    statutoryProvider,
		payslips:     payslips,
		tx:           tx,
		auditor:      auditor,
		logger:       logger,
	}
}

// computeResult is one employee's generation outcome: either a record or a
// warning explaining the skip.
type computeResult struct {
	record  *payrun.EmployeeRecord
	warning *payrun.Warning
}

func (s *service) Generate(ctx context.Context, req payrun.GenerateRequest, requestedBy string) (payrun.PayRunResponse, error) {
	if err := req.Validate(); err != nil {
		return payrun.PayRunResponse{}, err
	}
	if validator.IsEmpty(requestedBy) {
		return payrun.PayRunResponse{}, payrun.ErrApproverRequired
	}

	employees, err := s.employees.GetActiveEmployees(ctx, req.Month, req.Year)
	if err != nil {
		return payrun.PayRunResponse{}, fmt.Errorf("failed to load eligible employees: %w", err)
	}
	if len(employees) == 0 {
		return payrun.PayRunResponse{}, payrun.ErrNoEligibleEmployees
	}

	rates, err := s.statutory.Rates(ctx, req.Month, req.Year)
	if err != nil {
		return payrun.PayRunResponse{}, err
	}

	runID := uuid.New().String()

	results := make([]computeResult, len(employees))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(computeConcurrency)
	for i, emp := range employees {
		i, emp := i, emp
		g.Go(func() error {
			result, err := s.computeEmployee(gctx, runID, emp, req.Month, req.Year, rates)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Atomic generation: any hard failure aborts the run before anything
		// is persisted.
		return payrun.PayRunResponse{}, err
	}

	var records []payrun.EmployeeRecord
	var warnings []payrun.Warning
	for _, result := range results {
		if result.record != nil {
			records = append(records, *result.record)
		}
		if result.warning != nil {
			warnings = append(warnings, *result.warning)
		}
	}

	if len(records) == 0 {
		return payrun.PayRunResponse{}, payrun.ErrNoEligibleEmployees
	}

	run := payrun.PayRun{
		ID:          runID,
		Month:       req.Month,
		Year:        req.Year,
		Status:      payrun.StatusDraft,
		Warnings:    warnings,
		RequestedBy: requestedBy,
	}
	for _, rec := range records {
		run.TotalGross = run.TotalGross.Add(rec.GrossSalary)
		run.TotalDeductions = run.TotalDeductions.Add(rec.TotalDeductions)
		run.TotalNetPay = run.TotalNetPay.Add(rec.NetPay)
	}
	run.TotalEmployees = len(records)

	created, err := s.runs.CreateWithRecords(ctx, run, records)
	if err != nil {
		return payrun.PayRunResponse{}, err
	}

	// The persisted records are the source of truth for the aggregates.
	gross, deductions, net, count, err := s.runs.RecomputeTotals(ctx, created.ID)
	if err != nil {
		return payrun.PayRunResponse{}, err
	}
	created.TotalGross = gross
	created.TotalDeductions = deductions
	created.TotalNetPay = net
	created.TotalEmployees = count

	s.auditor.Record(ctx, audit.Event{
		Action:     audit.ActionPayRunGenerated,
		EntityID:   created.ID,
		ActorID:    requestedBy,
		OccurredAt: time.Now(),
		Detail: map[string]any{
			"month":           created.Month,
			"year":            created.Year,
			"total_employees": created.TotalEmployees,
			"skipped":         len(warnings),
		},
	})

	s.logger.InfoContext(ctx, "pay run generated",
		slog.String("pay_run_id", created.ID),
		slog.Int("month", created.Month),
		slog.Int("year", created.Year),
		slog.Int("employees", created.TotalEmployees),
		slog.Int("skipped", len(warnings)),
	)

	return toResponse(created), nil
}

func (s *service) computeEmployee(ctx context.Context, runID string, emp employee.Employee, month, year int, rates statutory.Config) (computeResult, error) {
	if err := ctx.Err(); err != nil {
		return computeResult{}, err
	}

	profile, err := s.compensation.GetActiveByEmployeeID(ctx, emp.ID)
	if err != nil {
		if errors.Is(err, compensation.ErrProfileNotFound) {
			return computeResult{warning: &payrun.Warning{
				EmployeeID: emp.ID,
				Reason:     "no active compensation profile",
			}}, nil
		}
		return computeResult{}, err
	}

	summary, err := s.attendance.GetApproved(ctx, emp.ID, month, year)
	if err != nil {
		if errors.Is(err, attendance.ErrSummaryNotFound) || errors.Is(err, attendance.ErrNotApproved) {
			return computeResult{warning: &payrun.Warning{
				EmployeeID: emp.ID,
				Reason:     "no approved attendance summary",
			}}, nil
		}
		return computeResult{}, err
	}

	due, err := s.obligations.GetDueObligations(ctx, emp.ID, month, year)
	if err != nil {
		return computeResult{}, err
	}

	comp, err := calculator.Compute(profile, summary, due, rates)
	if err != nil {
		if errors.Is(err, calculator.ErrMissingAttendance) {
			return computeResult{warning: &payrun.Warning{
				EmployeeID: emp.ID,
				Reason:     "no approved attendance summary",
			}}, nil
		}
		return computeResult{}, fmt.Errorf("failed to compute pay for employee %s: %w", emp.ID, err)
	}

	return computeResult{record: &payrun.EmployeeRecord{
		ID:               uuid.New().String(),
		PayRunID:         runID,
		EmployeeID:       emp.ID,
		GrossSalary:      comp.GrossSalary,
		LossOfPayAmount:  comp.LossOfPayAmount,
		PayableDays:      comp.PayableDays,
		LossOfPayDays:    comp.LossOfPayDays,
		PF:               comp.PF,
		ESI:              comp.ESI,
		ProfessionalTax:  comp.ProfessionalTax,
		TDS:              comp.TDS,
		AdvanceDeduction: comp.AdvanceDeduction,
		LoanDeduction:    comp.LoanDeduction,
		TotalDeductions:  comp.TotalDeductions,
		NetPay:           comp.NetPay,
		AdvanceDetail:    comp.AdvanceDetail,
		LoanDetail:       comp.LoanDetail,
	}}, nil
}

func (s *service) Approve(ctx context.Context, payRunID, approverID string) (payrun.PayRunResponse, error) {
	if validator.IsEmpty(approverID) {
		return payrun.PayRunResponse{}, payrun.ErrApproverRequired
	}

	updated, err := s.runs.UpdateStatus(ctx, payRunID, payrun.StatusDraft, payrun.StatusApproved, approverID, nil, nil)
	if err != nil {
		return payrun.PayRunResponse{}, err
	}

	s.auditor.Record(ctx, audit.Event{
		Action:     audit.ActionPayRunApproved,
		EntityID:   payRunID,
		ActorID:    approverID,
		OccurredAt: time.Now(),
	})

	return toResponse(updated), nil
}

func (s *service) Process(ctx context.Context, payRunID, processorID string, req payrun.ProcessRequest) (payrun.ProcessingReport, error) {
	if validator.IsEmpty(processorID) {
		return payrun.ProcessingReport{}, payrun.ErrApproverRequired
	}
	if err := req.Validate(); err != nil {
		return payrun.ProcessingReport{}, err
	}
	paymentDate, _ := validator.IsValidDate(req.PaymentDate)

	run, err := s.runs.GetByID(ctx, payRunID)
	if err != nil {
		return payrun.ProcessingReport{}, err
	}
	if !run.Status.CanTransition(payrun.StatusProcessed) {
		return payrun.ProcessingReport{}, payrun.ErrInvalidTransition
	}

	records, err := s.runs.GetRecords(ctx, payRunID)
	if err != nil {
		return payrun.ProcessingReport{}, err
	}

	report := payrun.ProcessingReport{PayRunID: payRunID}

	for _, record := range records {
		if err := s.processRecord(ctx, run, record, processorID, paymentDate); err != nil {
			report.Failed = append(report.Failed, payrun.ProcessFailure{
				EmployeeID: record.EmployeeID,
				Reason:     err.Error(),
			})
			s.logger.ErrorContext(ctx, "employee settlement failed",
				slog.String("pay_run_id", payRunID),
				slog.String("employee_id", record.EmployeeID),
				slog.String("error", err.Error()),
			)
			continue
		}
		report.Succeeded = append(report.Succeeded, record.EmployeeID)
	}

	// The run closes only when every employee settled. A partial run stays
	// approved so the operator can re-process; settled employees are
	// idempotently skipped on the retry. The close re-reads the run under a
	// row lock so a cancel issued while records were settling cannot be
	// overwritten.
	if len(report.Failed) == 0 {
		err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
			locked, err := s.runs.GetByIDForUpdate(txCtx, payRunID)
			if err != nil {
				return err
			}
			if locked.Status != payrun.StatusApproved {
				return payrun.ErrInvalidTransition
			}
			_, err = s.runs.UpdateStatus(txCtx, payRunID, payrun.StatusApproved, payrun.StatusProcessed, processorID, &paymentDate, nil)
			return err
		})
		if err != nil {
			return report, err
		}

		s.auditor.Record(ctx, audit.Event{
			Action:     audit.ActionPayRunProcessed,
			EntityID:   payRunID,
			ActorID:    processorID,
			OccurredAt: time.Now(),
			Detail: map[string]any{
				"succeeded": len(report.Succeeded),
			},
		})
	}

	return report, nil
}

// processRecord settles one employee: payslip creation and obligation
// deductions commit in one transaction, so a crash can never pay an employee
// without recording the recovery or vice versa.
func (s *service) processRecord(ctx context.Context, run payrun.PayRun, record payrun.EmployeeRecord, processorID string, paymentDate time.Time) error {
	// Settled on a previous attempt.
	if _, err := s.payslips.GetByEmployeePeriod(ctx, record.EmployeeID, run.Month, run.Year); err == nil {
		return nil
	} else if !errors.Is(err, payslip.ErrPayslipNotFound) {
		return err
	}

	snapshot, err := s.employees.GetSnapshot(ctx, record.EmployeeID)
	if err != nil {
		return err
	}

	paymentMode := string(compensation.PaymentModeBankTransfer)
	if profile, err := s.compensation.GetActiveByEmployeeID(ctx, record.EmployeeID); err == nil {
		paymentMode = string(profile.PaymentMode)
	}

	return s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		_, err := s.payslips.Finalize(txCtx, record, snapshot, paymentMode, run.Month, run.Year, paymentDate, payslip.FinalizeOptions{IdempotentRetry: true})
		if err != nil {
			return err
		}

		for advanceID, amount := range record.AdvanceDetail {
			if _, err := s.obligations.ApplyAdvanceInstallment(txCtx, advanceID, amount, run.ID, processorID); err != nil {
				return err
			}
		}
		// The ledger commits the snapshotted amounts from the record, never a
		// recomputed figure, so the payslip and the ledger always agree.
		for loanID, amount := range record.LoanDetail {
			if _, err := s.obligations.ApplyLoanEMI(txCtx, loanID, run.Month, run.Year, amount, run.ID, processorID); err != nil {
				return err
			}
		}

		return nil
	})
}

func (s *service) Cancel(ctx context.Context, payRunID string, req payrun.CancelRequest, actorID string) (payrun.PayRunResponse, error) {
	if err := req.Validate(); err != nil {
		return payrun.PayRunResponse{}, err
	}

	run, err := s.runs.GetByID(ctx, payRunID)
	if err != nil {
		return payrun.PayRunResponse{}, err
	}
	if !run.Status.CanTransition(payrun.StatusCancelled) {
		return payrun.PayRunResponse{}, payrun.ErrInvalidTransition
	}

	updated, err := s.runs.UpdateStatus(ctx, payRunID, run.Status, payrun.StatusCancelled, actorID, nil, &req.Reason)
	if err != nil {
		return payrun.PayRunResponse{}, err
	}

	s.auditor.Record(ctx, audit.Event{
		Action:     audit.ActionPayRunCancelled,
		EntityID:   payRunID,
		ActorID:    actorID,
		OccurredAt: time.Now(),
		Detail:     map[string]any{"reason": req.Reason},
	})

	return toResponse(updated), nil
}

func (s *service) Get(ctx context.Context, payRunID string) (payrun.PayRunResponse, error) {
	run, err := s.runs.GetByID(ctx, payRunID)
	if err != nil {
		return payrun.PayRunResponse{}, err
	}
	return toResponse(run), nil
}

func (s *service) List(ctx context.Context, filter payrun.Filter) (payrun.ListPayRunResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	runs, totalCount, err := s.runs.List(ctx, filter)
	if err != nil {
		return payrun.ListPayRunResponse{}, err
	}

	data := make([]payrun.PayRunResponse, 0, len(runs))
	for _, run := range runs {
		data = append(data, toResponse(run))
	}

	return payrun.ListPayRunResponse{
		Data:       data,
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *service) Records(ctx context.Context, payRunID string) ([]payrun.EmployeeRecordResponse, error) {
	if _, err := s.runs.GetByID(ctx, payRunID); err != nil {
		return nil, err
	}

	records, err := s.runs.GetRecords(ctx, payRunID)
	if err != nil {
		return nil, err
	}

	responses := make([]payrun.EmployeeRecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, toRecordResponse(rec))
	}
	return responses, nil
}

func (s *service) Record(ctx context.Context, payRunID, employeeID string) (payrun.EmployeeRecordResponse, error) {
	if _, err := s.runs.GetByID(ctx, payRunID); err != nil {
		return payrun.EmployeeRecordResponse{}, err
	}

	rec, err := s.runs.GetRecordByEmployee(ctx, payRunID, employeeID)
	if err != nil {
		return payrun.EmployeeRecordResponse{}, err
	}
	return toRecordResponse(rec), nil
}

func toResponse(run payrun.PayRun) payrun.PayRunResponse {
	resp := payrun.PayRunResponse{
		ID:              run.ID,
		Month:           run.Month,
		Year:            run.Year,
		Status:          string(run.Status),
		TotalGross:      run.TotalGross,
		TotalDeductions: run.TotalDeductions,
		TotalNetPay:     run.TotalNetPay,
		TotalEmployees:  run.TotalEmployees,
		Warnings:        run.Warnings,
		RequestedBy:     run.RequestedBy,
		ApprovedBy:      run.ApprovedBy,
		ProcessedBy:     run.ProcessedBy,
		CancelReason:    run.CancelReason,
	}
	if run.PaymentDate != nil {
		formatted := run.PaymentDate.Format("2006-01-02")
		resp.PaymentDate = &formatted
	}
	return resp
}

func toRecordResponse(rec payrun.EmployeeRecord) payrun.EmployeeRecordResponse {
	resp := payrun.EmployeeRecordResponse{
		ID:               rec.ID,
		PayRunID:         rec.PayRunID,
		EmployeeID:       rec.EmployeeID,
		GrossSalary:      rec.GrossSalary,
		LossOfPayAmount:  rec.LossOfPayAmount,
		PayableDays:      rec.PayableDays,
		LossOfPayDays:    rec.LossOfPayDays,
		PF:               rec.PF,
		ESI:              rec.ESI,
		ProfessionalTax:  rec.ProfessionalTax,
		TDS:              rec.TDS,
		AdvanceDeduction: rec.AdvanceDeduction,
		LoanDeduction:    rec.LoanDeduction,
		TotalDeductions:  rec.TotalDeductions,
		NetPay:           rec.NetPay,
	}
	if rec.EmployeeName != nil {
		resp.EmployeeName = *rec.EmployeeName
	}
	if rec.EmployeeCode != nil {
		resp.EmployeeCode = *rec.EmployeeCode
	}
	return resp
}
