package order

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/cache"
	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/messaging"
	ordersvc "github.com/Additional-Code/orderdesk/internal/service/order"
)

type deletedKeys struct {
	keys []string
}

func (d *deletedKeys) Get(context.Context, string) ([]byte, error) { return nil, cache.ErrCacheMiss }
func (d *deletedKeys) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}
func (d *deletedKeys) Delete(_ context.Context, keys ...string) error {
	d.keys = append(d.keys, keys...)
	return nil
}

func message(t *testing.T, event ordersvc.OrderEvent) messaging.Message {
	t.Helper()

	body, err := json.Marshal(event)
	require.NoError(t, err)
	return messaging.Message{
		Topic:   "orders.events",
		Value:   body,
		Headers: map[string]string{messaging.HeaderEventType: event.Type},
	}
}

func TestHandleEvictsMutatedOrders(t *testing.T) {
	store := &deletedKeys{}
	h := NewEventHandler(zap.NewNop(), store)

	err := h.Handle(context.Background(), message(t, ordersvc.OrderEvent{
		ID:       "evt-1",
		Type:     ordersvc.EventOrdersStatusUpdated,
		OrderIDs: []int64{4, 7},
		Status:   "completed",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"orders:4", "orders:7"}, store.keys)
}

func TestHandleLeavesCacheForCreations(t *testing.T) {
	store := &deletedKeys{}
	h := NewEventHandler(zap.NewNop(), store)

	for _, typ := range []string{ordersvc.EventOrderCreated, ordersvc.EventOrdersDuplicated} {
		err := h.Handle(context.Background(), message(t, ordersvc.OrderEvent{Type: typ, OrderIDs: []int64{1}}))
		require.NoError(t, err)
	}
	assert.Empty(t, store.keys)
}

func TestHandleRejectsMalformedPayload(t *testing.T) {
	h := NewEventHandler(zap.NewNop(), &deletedKeys{})

	err := h.Handle(context.Background(), messaging.Message{Topic: "orders.events", Value: []byte("{")})
	assert.Error(t, err)
}

func TestRegistrationsCoverEveryEventType(t *testing.T) {
	cfg := config.Config{Messaging: config.Messaging{Kafka: config.Kafka{Topic: "orders.events"}}}
	regs := Registrations(NewEventHandler(zap.NewNop(), &deletedKeys{}), cfg)

	types := make([]string, 0, len(regs))
	for _, r := range regs {
		assert.Equal(t, "orders.events", r.Topic)
		assert.NotNil(t, r.Handler)
		types = append(types, r.EventType)
	}
	assert.ElementsMatch(t, []string{
		ordersvc.EventOrderCreated,
		ordersvc.EventOrderUpdated,
		ordersvc.EventOrderDeleted,
		ordersvc.EventOrdersStatusUpdated,
		ordersvc.EventOrdersDuplicated,
		ordersvc.EventOrdersDeleted,
	}, types)
}
