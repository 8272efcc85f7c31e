// Package audit records an activity trail of domain events. Every
// event published on the bus is written as a structured log line so
// that tenant activity can be reconstructed from the log stream.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/invoicehub/backend/internal/domain/shared"
)

// TrailHandler implements shared.EventHandler and logs every event
type TrailHandler struct {
	logger *zap.Logger
}

// NewTrailHandler creates a trail handler writing to a named logger
func NewTrailHandler(logger *zap.Logger) *TrailHandler {
	return &TrailHandler{
		logger: logger.Named("audit"),
	}
}

// EventTypes returns nil, subscribing the handler to every event type
func (h *TrailHandler) EventTypes() []string {
	return nil
}

// Handle writes one audit line for the event
func (h *TrailHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.logger.Info("domain event",
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.String("tenant_id", event.TenantID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

var _ shared.EventHandler = (*TrailHandler)(nil)
