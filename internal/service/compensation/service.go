package compensation

import (
	"context"
	"errors"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type service struct {
	repo      compensation.Repository
	employees employee.Directory
	tx        postgresql.TxManager
	auditor   audit.Sink
}

func NewService(repo compensation.Repository, employees employee.Directory, tx postgresql.TxManager, auditor audit.Sink) compensation.Service {
	return &service{
		repo:      repo,
		employees: employees,
		tx:        tx,
		auditor:   auditor,
	}
}

func (s *service) Revise(ctx context.Context, req compensation.ReviseRequest, revisedBy string) (compensation.ProfileResponse, error) {
	if err := req.Validate(); err != nil {
		return compensation.ProfileResponse{}, err
	}

	if _, err := s.employees.GetByID(ctx, req.EmployeeID); err != nil {
		return compensation.ProfileResponse{}, err
	}

	effectiveFrom, _ := validator.IsValidDate(req.EffectiveFrom)

	// Component amounts derive from the CTC, never from the caller: basic is
	// half the annual CTC monthly, HRA a percentage of basic.
	basic := decimal.NewFromFloat(0.5).
		Mul(req.AnnualCTC).
		Div(decimal.NewFromInt(12)).
		Round(2)
	hra := basic.Mul(req.HRAPercent).Div(decimal.NewFromInt(100)).Round(2)

	profile := compensation.Profile{
		ID:            uuid.New().String(),
		EmployeeID:    req.EmployeeID,
		AnnualCTC:     req.AnnualCTC,
		Basic:         basic,
		HRAPercent:    req.HRAPercent,
		HRA:           hra,
		Conveyance:    req.Conveyance,
		Telephone:     req.Telephone,
		Medical:       req.Medical,
		Special:       req.Special,
		IncludePF:     req.IncludePF,
		IncludeESI:    req.IncludeESI,
		TDSMonthly:    req.TDSMonthly,
		PaymentMode:   compensation.PaymentMode(req.PaymentMode),
		EffectiveFrom: effectiveFrom,
		IsActive:      true,
	}
	if err := profile.Validate(); err != nil {
		return compensation.ProfileResponse{}, err
	}

	var created compensation.Profile

	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		err := s.repo.RetireActive(txCtx, req.EmployeeID, effectiveFrom)
		if err != nil && !errors.Is(err, compensation.ErrProfileNotFound) {
			return err
		}

		created, err = s.repo.Create(txCtx, profile)
		return err
	})
	if err != nil {
		return compensation.ProfileResponse{}, err
	}

	s.auditor.Record(ctx, audit.Event{
		Action:     audit.ActionSalaryRevised,
		EntityID:   created.ID,
		ActorID:    revisedBy,
		OccurredAt: time.Now(),
		Detail: map[string]any{
			"employee_id":    created.EmployeeID,
			"annual_ctc":     created.AnnualCTC.String(),
			"effective_from": req.EffectiveFrom,
		},
	})

	return toResponse(created), nil
}

func (s *service) GetActive(ctx context.Context, employeeID string) (compensation.ProfileResponse, error) {
	profile, err := s.repo.GetActiveByEmployeeID(ctx, employeeID)
	if err != nil {
		return compensation.ProfileResponse{}, err
	}
	return toResponse(profile), nil
}

func (s *service) ListRevisions(ctx context.Context, employeeID string) ([]compensation.ProfileResponse, error) {
	profiles, err := s.repo.ListRevisions(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	responses := make([]compensation.ProfileResponse, 0, len(profiles))
	for _, profile := range profiles {
		responses = append(responses, toResponse(profile))
	}
	return responses, nil
}

func toResponse(p compensation.Profile) compensation.ProfileResponse {
	resp := compensation.ProfileResponse{
		ID:            p.ID,
		EmployeeID:    p.EmployeeID,
		AnnualCTC:     p.AnnualCTC,
		Basic:         p.Basic,
		HRAPercent:    p.HRAPercent,
		HRA:           p.HRA,
		Conveyance:    p.Conveyance,
		Telephone:     p.Telephone,
		Medical:       p.Medical,
		Special:       p.Special,
		Gross:         p.Gross(),
		IncludePF:     p.IncludePF,
		IncludeESI:    p.IncludeESI,
		TDSMonthly:    p.TDSMonthly,
		PaymentMode:   string(p.PaymentMode),
		EffectiveFrom: p.EffectiveFrom.Format("2006-01-02"),
		IsActive:      p.IsActive,
	}
	if p.EffectiveTo != nil {
		formatted := p.EffectiveTo.Format("2006-01-02")
		resp.EffectiveTo = &formatted
	}
	return resp
}
