package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/cache"
	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/entity"
	"github.com/Additional-Code/orderdesk/internal/messaging"
	"github.com/Additional-Code/orderdesk/internal/observability"
	repo "github.com/Additional-Code/orderdesk/internal/repository/order"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/orderdesk/service/order")

// Service encapsulates business logic around orders.
type Service struct {
	repo       *repo.Repository
	cache      cache.Store
	cacheTTL   time.Duration
	logger     *zap.Logger
	publisher  messaging.Client
	messaging  messagingConfig
	operations metric.Int64Counter
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository    *repo.Repository
	Cache         cache.Store
	Config        config.Config
	Logger        *zap.Logger
	Publisher     messaging.Client
	Observability *observability.Manager `optional:"true"`
}

// NewService wires a new Service instance.
func NewService(p Params) (*Service, error) {
	operations, err := p.Observability.Meter("github.com/Additional-Code/orderdesk/service/order").Int64Counter(
		"orders.operations",
		metric.WithDescription("Order operations by name and outcome."),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders.operations counter: %w", err)
	}

	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		repo:       p.Repository,
		cache:      p.Cache,
		cacheTTL:   p.Config.Cache.DefaultTTL,
		logger:     logger,
		publisher:  p.Publisher,
		operations: operations,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
	}, nil
}

// ListQuery holds raw listing parameters. Status accepts "all", "overdue",
// "ongoing" or an order status.
type ListQuery struct {
	Status string
	Page   int
	Limit  int
}

// List returns a filtered page of orders.
func (s *Service) List(ctx context.Context, q ListQuery) (*repo.Page, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List", trace.WithAttributes(attribute.String("orders.filter", q.Status)))
	defer span.End()

	filter, err := repo.ParseFilter(q.Status)
	if err != nil {
		return nil, s.fail(ctx, span, "list", err)
	}

	page, err := s.repo.List(ctx, repo.ListParams{Filter: filter, Page: q.Page, Limit: q.Limit})
	if err != nil {
		return nil, s.fail(ctx, span, "list", err)
	}
	s.record(ctx, "list", nil)
	return page, nil
}

// Stats returns order counts. The counts cover all time; callers that label
// them "this month" are mislabelling them.
func (s *Service) Stats(ctx context.Context) (*repo.Stats, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Stats")
	defer span.End()

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, "stats", err)
	}
	s.record(ctx, "stats", nil)
	return stats, nil
}

// Get retrieves an order by id, consulting cache when available.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if order, err := s.getFromCache(ctx, id); err == nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return order, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("orders cache read failed", zap.Int64("id", id), zap.Error(err))
	}

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, "get", err)
	}

	s.storeInCache(ctx, order)
	s.record(ctx, "get", nil)
	return order, nil
}

// Create persists a new order and announces it. Request shape (amount sign,
// date format) is checked by the transport layer before in reaches here.
func (s *Service) Create(ctx context.Context, in repo.CreateInput) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Create")
	defer span.End()

	order, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, s.fail(ctx, span, "create", err)
	}
	span.SetAttributes(attribute.Int64("order.id", order.ID), attribute.String("order.number", order.OrderNumber))

	s.storeInCache(ctx, order)
	s.publish(ctx, OrderEvent{Type: EventOrderCreated, OrderIDs: []int64{order.ID}, Order: order})
	s.record(ctx, "create", nil)
	return order, nil
}

// Update applies a partial update to an order.
func (s *Service) Update(ctx context.Context, id int64, in repo.UpdateInput) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Update", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return nil, s.fail(ctx, span, "update", err)
	}

	s.storeInCache(ctx, order)
	if !in.IsEmpty() {
		s.publish(ctx, OrderEvent{Type: EventOrderUpdated, OrderIDs: []int64{id}, Order: order})
	}
	s.record(ctx, "update", nil)
	return order, nil
}

// Delete removes an order.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.fail(ctx, span, "delete", err)
	}

	s.invalidate(ctx, id)
	s.publish(ctx, OrderEvent{Type: EventOrderDeleted, OrderIDs: []int64{id}})
	s.record(ctx, "delete", nil)
	return nil
}

// BulkUpdateStatus changes the status of every listed order or of none.
func (s *Service) BulkUpdateStatus(ctx context.Context, ids []int64, status entity.OrderStatus) (*repo.BulkStatusResult, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.BulkUpdateStatus", trace.WithAttributes(
		attribute.Int("orders.count", len(ids)),
		attribute.String("order.status", string(status)),
	))
	defer span.End()

	res, err := s.repo.BulkUpdateStatus(ctx, ids, status)
	if err != nil {
		return nil, s.fail(ctx, span, "bulk_update_status", err)
	}

	updated := make([]int64, 0, len(res.Orders))
	for _, change := range res.Orders {
		updated = append(updated, change.ID)
	}
	s.invalidate(ctx, updated...)
	if len(updated) > 0 {
		s.publish(ctx, OrderEvent{Type: EventOrdersStatusUpdated, OrderIDs: updated, Status: string(status)})
	}
	s.record(ctx, "bulk_update_status", nil)
	return res, nil
}

// BulkDuplicate copies every listed order under new order numbers, or none.
func (s *Service) BulkDuplicate(ctx context.Context, ids []int64) (*repo.BulkDuplicateResult, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.BulkDuplicate", trace.WithAttributes(attribute.Int("orders.count", len(ids))))
	defer span.End()

	res, err := s.repo.BulkDuplicate(ctx, ids)
	if err != nil {
		return nil, s.fail(ctx, span, "bulk_duplicate", err)
	}

	if len(res.NewOrders) > 0 {
		created := make([]int64, 0, len(res.NewOrders))
		for _, dup := range res.NewOrders {
			created = append(created, dup.ID)
		}
		s.publish(ctx, OrderEvent{Type: EventOrdersDuplicated, OrderIDs: created})
	}
	s.record(ctx, "bulk_duplicate", nil)
	return res, nil
}

// BulkDelete removes every listed order, or none.
func (s *Service) BulkDelete(ctx context.Context, ids []int64) (*repo.BulkDeleteResult, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.BulkDelete", trace.WithAttributes(attribute.Int("orders.count", len(ids))))
	defer span.End()

	res, err := s.repo.BulkDelete(ctx, ids)
	if err != nil {
		return nil, s.fail(ctx, span, "bulk_delete", err)
	}

	s.invalidate(ctx, res.DeletedIDs...)
	if len(res.DeletedIDs) > 0 {
		s.publish(ctx, OrderEvent{Type: EventOrdersDeleted, OrderIDs: res.DeletedIDs})
	}
	s.record(ctx, "bulk_delete", nil)
	return res, nil
}

// fail converts a repository error into an AppError. Expected conditions map
// onto client-facing kinds; anything else is logged and hidden behind an
// internal error.
func (s *Service) fail(ctx context.Context, span trace.Span, op string, err error) error {
	var (
		missing *repo.MissingOrdersError
		invalid *repo.InvalidValueError
		appErr  *errorbank.AppError
	)

	switch {
	case errors.Is(err, repo.ErrNotFound):
		appErr = errorbank.NotFound("order not found")
	case errors.As(err, &missing):
		appErr = errorbank.NotFound("orders not found", errorbank.WithDetail("missing_ids", missing.IDs))
	case errors.As(err, &invalid):
		appErr = errorbank.BadRequest(fmt.Sprintf("invalid %s value", invalid.Field),
			errorbank.WithDetail("field", invalid.Field),
			errorbank.WithDetail("value", invalid.Value),
		)
	case errors.Is(err, repo.ErrNumberConflict):
		s.logger.Warn("order number allocation exhausted retries", zap.String("operation", op), zap.Error(err))
		appErr = errorbank.Conflict("order number conflict; retry the request",
			errorbank.WithDetail("retryable", true),
			errorbank.WithCause(err),
		)
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		s.logger.Error("order operation failed", zap.String("operation", op), zap.Error(err))
		appErr = errorbank.Internal(fmt.Sprintf("failed to %s order", humanize(op)), errorbank.WithCause(err))
	}

	s.record(ctx, op, appErr)
	return appErr
}

func (s *Service) record(ctx context.Context, op string, appErr *errorbank.AppError) {
	outcome := "ok"
	if appErr != nil {
		outcome = string(appErr.Kind())
	}
	s.operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}

func (s *Service) publish(ctx context.Context, event OrderEvent) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	event.ID = uuid.NewString()
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal order event", zap.String("type", event.Type), zap.Error(err))
		return
	}

	key := "orders-bulk"
	if len(event.OrderIDs) == 1 {
		key = "order-" + strconv.FormatInt(event.OrderIDs[0], 10)
	}
	headers := map[string]string{messaging.HeaderEventType: event.Type}
	if err := s.publisher.Publish(ctx, []byte(key), payload, headers); err != nil {
		s.logger.Error("publish order event", zap.String("type", event.Type), zap.String("topic", s.messaging.topic), zap.Error(err))
	}
}

// CacheKey names the cache entry holding order id.
func CacheKey(id int64) string {
	return fmt.Sprintf("orders:%d", id)
}

func (s *Service) getFromCache(ctx context.Context, id int64) (*entity.Order, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, CacheKey(id))
	if err != nil {
		return nil, err
	}
	var order entity.Order
	if err := json.Unmarshal(bytes, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) {
	if s.cache == nil || order == nil {
		return
	}
	bytes, err := json.Marshal(order)
	if err == nil {
		err = s.cache.Set(ctx, CacheKey(order.ID), bytes, s.cacheTTL)
	}
	if err != nil {
		s.logger.Warn("orders cache write failed", zap.Int64("id", order.ID), zap.Error(err))
	}
}

func (s *Service) invalidate(ctx context.Context, ids ...int64) {
	if s.cache == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, CacheKey(id))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("orders cache invalidation failed", zap.Int64s("ids", ids), zap.Error(err))
	}
}

var operationNames = map[string]string{
	"bulk_update_status": "update status of",
	"bulk_duplicate":     "duplicate",
	"bulk_delete":        "delete",
}

func humanize(op string) string {
	if name, ok := operationNames[op]; ok {
		return name
	}
	return op
}
