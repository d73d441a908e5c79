// Package notification is the payslip delivery adapter. The real delivery
// channel lives in the platform's notification service; this adapter logs
// the handoff.
package notification

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/notification"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payslip"
)

type logNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) notification.Service {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) PayslipReady(ctx context.Context, slip payslip.Payslip) error {
	n.logger.InfoContext(ctx, "payslip ready for delivery",
		slog.String("payslip_id", slip.ID),
		slog.String("payslip_number", slip.PayslipNumber),
		slog.String("employee_id", slip.EmployeeID),
		slog.Int("month", slip.Month),
		slog.Int("year", slip.Year),
	)
	return nil
}
