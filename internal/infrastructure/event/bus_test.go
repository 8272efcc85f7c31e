package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/invoicehub/backend/internal/domain/shared"
)

type recordingHandler struct {
	types    []string
	received []shared.DomainEvent
	fail     error
}

func (h *recordingHandler) Handle(_ context.Context, evt shared.DomainEvent) error {
	if h.fail != nil {
		return h.fail
	}
	h.received = append(h.received, evt)
	return nil
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func newTestEvent(eventType string) shared.DomainEvent {
	evt := shared.NewBaseDomainEvent(eventType, "invoice", uuid.New(), uuid.New())
	return &evt
}

func TestInMemoryEventBus_PublishToSubscribedHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{"invoice.sent"}}
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("invoice.sent"))
	require.NoError(t, err)

	require.Len(t, handler.received, 1)
	assert.Equal(t, "invoice.sent", handler.received[0].EventType())
}

func TestInMemoryEventBus_IgnoresUnsubscribedTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{"invoice.sent"}}
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("quote.accepted"))
	require.NoError(t, err)

	assert.Empty(t, handler.received)
}

func TestInMemoryEventBus_WildcardHandlerReceivesAll(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{}
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(),
		newTestEvent("invoice.sent"),
		newTestEvent("payment.recorded"),
	)
	require.NoError(t, err)

	assert.Len(t, handler.received, 2)
}

func TestInMemoryEventBus_FailingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := &recordingHandler{types: []string{"invoice.sent"}, fail: errors.New("boom")}
	healthy := &recordingHandler{types: []string{"invoice.sent"}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("invoice.sent"))
	require.NoError(t, err)

	assert.Len(t, healthy.received, 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{"invoice.sent"}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent("invoice.sent"))
	require.NoError(t, err)

	assert.Empty(t, handler.received)
}
