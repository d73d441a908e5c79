package statutory

import (
	"context"
	"errors"
)

var ErrNoRatesForPeriod = errors.New("no statutory rates effective for this period")

// Provider supplies the statutory configuration effective for a payroll
// period. Rates are versioned: the provider picks the latest config whose
// effective date is on or before the period start.
type Provider interface {
	Rates(ctx context.Context, month, year int) (Config, error)
}
