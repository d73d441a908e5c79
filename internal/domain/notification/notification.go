// Package notification defines the payslip delivery contract. Delivery
// failures are non-fatal to payroll: callers log and move on, retries happen
// in the delivery service.
package notification

import (
	"context"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payslip"
)

type Service interface {
	PayslipReady(ctx context.Context, slip payslip.Payslip) error
}
