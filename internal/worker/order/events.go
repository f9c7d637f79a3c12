package order

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/cache"
	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/messaging"
	ordersvc "github.com/Additional-Code/orderdesk/internal/service/order"
	"github.com/Additional-Code/orderdesk/internal/worker"
)

var workerTracer = otel.Tracer("github.com/Additional-Code/orderdesk/worker/order")

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		NewEventHandler,
		fx.Annotate(
			Registrations,
			fx.ResultTags(`group:"worker.handlers,flatten"`),
		),
	),
)

// evicting lists event types after which cached copies of the affected
// orders are stale.
var evicting = map[string]bool{
	ordersvc.EventOrderUpdated:        true,
	ordersvc.EventOrderDeleted:        true,
	ordersvc.EventOrdersStatusUpdated: true,
	ordersvc.EventOrdersDeleted:       true,
}

// EventHandler consumes order events. It logs every event and evicts cache
// entries other instances may still hold for mutated orders.
type EventHandler struct {
	logger *zap.Logger
	cache  cache.Store
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(logger *zap.Logger, store cache.Store) *EventHandler {
	return &EventHandler{logger: logger, cache: store}
}

// Registrations binds the handler to every order event type on the configured topic.
func Registrations(h *EventHandler, cfg config.Config) []worker.HandlerRegistration {
	types := []string{
		ordersvc.EventOrderCreated,
		ordersvc.EventOrderUpdated,
		ordersvc.EventOrderDeleted,
		ordersvc.EventOrdersStatusUpdated,
		ordersvc.EventOrdersDuplicated,
		ordersvc.EventOrdersDeleted,
	}
	regs := make([]worker.HandlerRegistration, 0, len(types))
	for _, t := range types {
		regs = append(regs, worker.HandlerRegistration{
			Topic:     cfg.Messaging.Kafka.Topic,
			EventType: t,
			Handler:   h.Handle,
		})
	}
	return regs
}

// Handle processes one order event.
func (h *EventHandler) Handle(ctx context.Context, msg messaging.Message) error {
	ctx, span := workerTracer.Start(ctx, "worker.orders.process", trace.WithAttributes(
		attribute.String("messaging.topic", msg.Topic),
		attribute.String("messaging.event_type", msg.Headers[messaging.HeaderEventType]),
	))
	defer span.End()

	var event ordersvc.OrderEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		h.logger.Error("failed to decode order event", zap.Error(err))

		span.RecordError(err)
		span.SetStatus(codes.Error, "decode error")
		return err
	}

	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("type", event.Type),
		zap.Int64s("order_ids", event.OrderIDs),
		zap.Time("occurred_at", event.OccurredAt),
	}
	if event.Order != nil {
		fields = append(fields, zap.String("number", event.Order.OrderNumber), zap.String("status", string(event.Order.Status)))
	}
	if event.Status != "" {
		fields = append(fields, zap.String("status", event.Status))
	}
	h.logger.Info("order event processed", fields...)

	if !evicting[event.Type] || len(event.OrderIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(event.OrderIDs))
	for _, id := range event.OrderIDs {
		keys = append(keys, ordersvc.CacheKey(id))
	}
	if err := h.cache.Delete(ctx, keys...); err != nil {
		h.logger.Warn("evict cached orders", zap.Int64s("order_ids", event.OrderIDs), zap.Error(err))
	}
	return nil
}
