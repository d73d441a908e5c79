package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/google/uuid"
)

type service struct {
	repo      attendance.Repository
	employees employee.Directory
	auditor   audit.Sink
}

func NewService(repo attendance.Repository, employees employee.Directory, auditor audit.Sink) attendance.Service {
	return &service{
		repo:      repo,
		employees: employees,
		auditor:   auditor,
	}
}

func (s *service) Upsert(ctx context.Context, req attendance.UpsertSummaryRequest) (attendance.SummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.SummaryResponse{}, err
	}

	if _, err := s.employees.GetByID(ctx, req.EmployeeID); err != nil {
		return attendance.SummaryResponse{}, err
	}

	summary := attendance.Summary{
		ID:               uuid.New().String(),
		EmployeeID:       req.EmployeeID,
		Month:            req.Month,
		Year:             req.Year,
		TotalWorkingDays: req.TotalWorkingDays,
		PresentDays:      req.PresentDays,
		AbsentDays:       req.AbsentDays,
		PaidLeave:        req.PaidLeave,
		UnpaidLeave:      req.UnpaidLeave,
		HalfDays:         req.HalfDays,
		OvertimeHours:    req.OvertimeHours,
		Status:           attendance.StatusUnapproved,
	}

	stored, err := s.repo.Upsert(ctx, summary)
	if err != nil {
		return attendance.SummaryResponse{}, err
	}

	return toResponse(stored), nil
}

func (s *service) Get(ctx context.Context, employeeID string, month, year int) (attendance.SummaryResponse, error) {
	summary, err := s.repo.GetByEmployeePeriod(ctx, employeeID, month, year)
	if err != nil {
		return attendance.SummaryResponse{}, err
	}
	return toResponse(summary), nil
}

func (s *service) Approve(ctx context.Context, employeeID string, month, year int, approverID string) (attendance.SummaryResponse, error) {
	if validator.IsEmpty(approverID) {
		return attendance.SummaryResponse{}, attendance.ErrApproverRequired
	}

	summary, err := s.repo.Approve(ctx, employeeID, month, year, approverID)
	if err != nil {
		return attendance.SummaryResponse{}, err
	}

	s.auditor.Record(ctx, audit.Event{
		Action:     audit.ActionAttendanceApproved,
		EntityID:   summary.ID,
		ActorID:    approverID,
		OccurredAt: time.Now(),
		Detail: map[string]any{
			"employee_id": employeeID,
			"month":       month,
			"year":        year,
		},
	})

	return toResponse(summary), nil
}

func (s *service) Reopen(ctx context.Context, employeeID string, month, year int, actorID string) (attendance.SummaryResponse, error) {
	summary, err := s.repo.Reopen(ctx, employeeID, month, year)
	if err != nil {
		return attendance.SummaryResponse{}, err
	}

	s.auditor.Record(ctx, audit.Event{
		Action:     audit.ActionAttendanceReopened,
		EntityID:   summary.ID,
		ActorID:    actorID,
		OccurredAt: time.Now(),
		Detail: map[string]any{
			"employee_id": employeeID,
			"month":       month,
			"year":        year,
		},
	})

	return toResponse(summary), nil
}

func (s *service) ListByPeriod(ctx context.Context, month, year int) ([]attendance.SummaryResponse, error) {
	summaries, err := s.repo.ListByPeriod(ctx, month, year)
	if err != nil {
		return nil, err
	}

	responses := make([]attendance.SummaryResponse, 0, len(summaries))
	for _, summary := range summaries {
		responses = append(responses, toResponse(summary))
	}
	return responses, nil
}

func toResponse(s attendance.Summary) attendance.SummaryResponse {
	return attendance.SummaryResponse{
		ID:                   s.ID,
		EmployeeID:           s.EmployeeID,
		Month:                s.Month,
		Year:                 s.Year,
		TotalWorkingDays:     s.TotalWorkingDays,
		PresentDays:          s.PresentDays,
		AbsentDays:           s.AbsentDays,
		PaidLeave:            s.PaidLeave,
		UnpaidLeave:          s.UnpaidLeave,
		HalfDays:             s.HalfDays,
		OvertimeHours:        s.OvertimeHours,
		PayableDays:          s.PayableDays(),
		LossOfPayDays:        s.LossOfPayDays(),
		AttendancePercentage: s.AttendancePercentage(),
		Status:               string(s.Status),
		ApprovedBy:           s.ApprovedBy,
	}
}
