package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type compensationRepository struct {
	db *database.DB
}

func NewCompensationRepository(db *database.DB) compensation.Repository {
	return &compensationRepository{db: db}
}

const compensationColumns = `
	id, employee_id, annual_ctc, basic, hra_percent, hra, conveyance,
	telephone, medical, special, include_pf, include_esi, tds_monthly,
	payment_mode, effective_from, effective_to, is_active, created_at, updated_at
`

func scanProfile(row pgx.Row) (compensation.Profile, error) {
	var p compensation.Profile
	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.AnnualCTC, &p.Basic, &p.HRAPercent, &p.HRA,
		&p.Conveyance, &p.Telephone, &p.Medical, &p.Special,
		&p.IncludePF, &p.IncludeESI, &p.TDSMonthly,
		&p.PaymentMode, &p.EffectiveFrom, &p.EffectiveTo, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *compensationRepository) GetActiveByEmployeeID(ctx context.Context, employeeID string) (compensation.Profile, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + compensationColumns + `
		FROM compensation_profiles
		WHERE employee_id = $1 AND is_active = true
	`

	p, err := scanProfile(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return compensation.Profile{}, compensation.ErrProfileNotFound
		}
		return compensation.Profile{}, fmt.Errorf("failed to get active compensation profile: %w", err)
	}

	return p, nil
}

func (r *compensationRepository) GetByID(ctx context.Context, id string) (compensation.Profile, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + compensationColumns + `
		FROM compensation_profiles
		WHERE id = $1
	`

	p, err := scanProfile(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return compensation.Profile{}, compensation.ErrProfileNotFound
		}
		return compensation.Profile{}, fmt.Errorf("failed to get compensation profile: %w", err)
	}

	return p, nil
}

func (r *compensationRepository) ListRevisions(ctx context.Context, employeeID string) ([]compensation.Profile, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + compensationColumns + `
		FROM compensation_profiles
		WHERE employee_id = $1
		ORDER BY effective_from DESC
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list compensation revisions: %w", err)
	}
	defer rows.Close()

	var profiles []compensation.Profile
	for rows.Next() {
		var p compensation.Profile
		if err := rows.Scan(
			&p.ID, &p.EmployeeID, &p.AnnualCTC, &p.Basic, &p.HRAPercent, &p.HRA,
			&p.Conveyance, &p.Telephone, &p.Medical, &p.Special,
			&p.IncludePF, &p.IncludeESI, &p.TDSMonthly,
			&p.PaymentMode, &p.EffectiveFrom, &p.EffectiveTo, &p.IsActive,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan compensation profile: %w", err)
		}
		profiles = append(profiles, p)
	}

	return profiles, nil
}

func (r *compensationRepository) Create(ctx context.Context, profile compensation.Profile) (compensation.Profile, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO compensation_profiles (
			id, employee_id, annual_ctc, basic, hra_percent, hra, conveyance,
			telephone, medical, special, include_pf, include_esi, tds_monthly,
			payment_mode, effective_from, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, true)
		RETURNING ` + compensationColumns + `
	`

	p, err := scanProfile(q.QueryRow(ctx, query,
		profile.ID, profile.EmployeeID, profile.AnnualCTC, profile.Basic,
		profile.HRAPercent, profile.HRA, profile.Conveyance, profile.Telephone,
		profile.Medical, profile.Special, profile.IncludePF, profile.IncludeESI,
		profile.TDSMonthly, profile.PaymentMode, profile.EffectiveFrom,
	))
	if err != nil {
		return compensation.Profile{}, fmt.Errorf("failed to create compensation profile: %w", err)
	}

	return p, nil
}

func (r *compensationRepository) RetireActive(ctx context.Context, employeeID string, effectiveTo time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE compensation_profiles
		SET is_active = false, effective_to = $2, updated_at = NOW()
		WHERE employee_id = $1 AND is_active = true
		RETURNING id
	`

	var retiredID string
	err := q.QueryRow(ctx, query, employeeID, effectiveTo).Scan(&retiredID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return compensation.ErrProfileNotFound
		}
		return fmt.Errorf("failed to retire compensation profile: %w", err)
	}

	return nil
}
