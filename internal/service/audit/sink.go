// Package audit emits audit events to the structured log. The platform's
// audit pipeline ingests these from log shipping; the engine itself never
// stores them.
package audit

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/audit"
)

type logSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) audit.Sink {
	return &logSink{logger: logger.With(slog.String("channel", "audit"))}
}

func (s *logSink) Record(ctx context.Context, event audit.Event) {
	s.logger.InfoContext(ctx, string(event.Action),
		slog.String("entity_id", event.EntityID),
		slog.String("actor_id", event.ActorID),
		slog.Time("occurred_at", event.OccurredAt),
		slog.Any("detail", event.Detail),
	)
}
