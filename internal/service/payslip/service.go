package payslip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/notification"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payrun"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payslip"
	"github.com/google/uuid"
)

type service struct {
	repo     payslip.Repository
	auditor  audit.Sink
	notifier notification.Service
	logger   *slog.Logger
}

func NewService(repo payslip.Repository, auditor audit.Sink, notifier notification.Service, logger *slog.Logger) payslip.Service {
	return &service{
		repo:     repo,
		auditor:  auditor,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *service) Finalize(ctx context.Context, record payrun.EmployeeRecord, snapshot employee.Snapshot, paymentMode string, month, year int, paymentDate time.Time, opts payslip.FinalizeOptions) (payslip.Payslip, error) {
	if existing, err := s.repo.GetByEmployeePeriod(ctx, record.EmployeeID, month, year); err == nil {
		if opts.IdempotentRetry {
			return existing, nil
		}
		return payslip.Payslip{}, payslip.ErrDuplicatePayslip
	} else if !errors.Is(err, payslip.ErrPayslipNotFound) {
		return payslip.Payslip{}, err
	}

	sequence, err := s.repo.NextNumber(ctx, payslip.NumberTypeMonthly, year, month)
	if err != nil {
		return payslip.Payslip{}, err
	}
	number := fmt.Sprintf("%s/%04d/%02d/%05d", payslip.NumberTypeMonthly, year, month, sequence)

	slip := payslip.Payslip{
		ID:            uuid.New().String(),
		PayslipNumber: number,
		PayRunID:      record.PayRunID,
		RecordID:      record.ID,
		EmployeeID:    record.EmployeeID,
		Month:         month,
		Year:          year,

		EmployeeName: snapshot.FullName,
		EmployeeCode: snapshot.EmployeeCode,
		Department:   snapshot.Department,
		Designation:  snapshot.Designation,
		PaymentMode:  paymentMode,

		GrossSalary:      record.GrossSalary,
		LossOfPayAmount:  record.LossOfPayAmount,
		PF:               record.PF,
		ESI:              record.ESI,
		ProfessionalTax:  record.ProfessionalTax,
		TDS:              record.TDS,
		AdvanceDeduction: record.AdvanceDeduction,
		LoanDeduction:    record.LoanDeduction,
		TotalDeductions:  record.TotalDeductions,
		NetPay:           record.NetPay,

		PaymentDate: paymentDate,
	}

	created, err := s.repo.Create(ctx, slip)
	if err != nil {
		// Lost the race to a concurrent processor. The unique index is the
		// source of truth, the pre-check above is only a fast path.
		if errors.Is(err, payslip.ErrDuplicatePayslip) && opts.IdempotentRetry {
			return s.repo.GetByEmployeePeriod(ctx, record.EmployeeID, month, year)
		}
		return payslip.Payslip{}, err
	}

	s.auditor.Record(ctx, audit.Event{
		Action:     audit.ActionPayslipFinalized,
		EntityID:   created.ID,
		ActorID:    "",
		OccurredAt: time.Now(),
		Detail: map[string]any{
			"payslip_number": created.PayslipNumber,
			"employee_id":    created.EmployeeID,
			"pay_run_id":     created.PayRunID,
			"net_pay":        created.NetPay.String(),
		},
	})

	if err := s.notifier.PayslipReady(ctx, created); err != nil {
		s.logger.WarnContext(ctx, "payslip notification failed",
			slog.String("payslip_id", created.ID),
			slog.String("error", err.Error()),
		)
	}

	return created, nil
}

func (s *service) Get(ctx context.Context, id string) (payslip.Response, error) {
	slip, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return payslip.Response{}, err
	}
	return toResponse(slip), nil
}

func (s *service) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (payslip.Response, error) {
	slip, err := s.repo.GetByEmployeePeriod(ctx, employeeID, month, year)
	if err != nil {
		return payslip.Response{}, err
	}
	return toResponse(slip), nil
}

func (s *service) ListByPayRun(ctx context.Context, payRunID string) ([]payslip.Response, error) {
	slips, err := s.repo.ListByPayRun(ctx, payRunID)
	if err != nil {
		return nil, err
	}

	responses := make([]payslip.Response, 0, len(slips))
	for _, slip := range slips {
		responses = append(responses, toResponse(slip))
	}
	return responses, nil
}

func (s *service) MarkSent(ctx context.Context, id string) (payslip.Response, error) {
	slip, err := s.repo.MarkSent(ctx, id)
	if err != nil {
		return payslip.Response{}, err
	}
	return toResponse(slip), nil
}

func (s *service) RecordDownload(ctx context.Context, id string) (payslip.Response, error) {
	slip, err := s.repo.IncrementDownloadCount(ctx, id)
	if err != nil {
		return payslip.Response{}, err
	}
	return toResponse(slip), nil
}

func toResponse(s payslip.Payslip) payslip.Response {
	return payslip.Response{
		ID:               s.ID,
		PayslipNumber:    s.PayslipNumber,
		PayRunID:         s.PayRunID,
		EmployeeID:       s.EmployeeID,
		Month:            s.Month,
		Year:             s.Year,
		EmployeeName:     s.EmployeeName,
		EmployeeCode:     s.EmployeeCode,
		Department:       s.Department,
		Designation:      s.Designation,
		PaymentMode:      s.PaymentMode,
		GrossSalary:      s.GrossSalary,
		LossOfPayAmount:  s.LossOfPayAmount,
		PF:               s.PF,
		ESI:              s.ESI,
		ProfessionalTax:  s.ProfessionalTax,
		TDS:              s.TDS,
		AdvanceDeduction: s.AdvanceDeduction,
		LoanDeduction:    s.LoanDeduction,
		TotalDeductions:  s.TotalDeductions,
		NetPay:           s.NetPay,
		PaymentDate:      s.PaymentDate.Format("2006-01-02"),
		Sent:             s.Sent,
		DownloadCount:    s.DownloadCount,
	}
}
