package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/database"
	"github.com/Additional-Code/orderdesk/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/orderdesk/repository/order")

// Repository encapsulates read/write access for orders.
type Repository struct {
	writer        *bun.DB
	reader        *bun.DB
	numberRetries int
	defaultLimit  int
	now           func() time.Time
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections, cfg config.Config) *Repository {
	limit := cfg.Orders.DefaultPageSize
	if limit <= 0 {
		limit = 10
	}
	return &Repository{
		writer:        conns.Writer,
		reader:        conns.Reader,
		numberRetries: cfg.Orders.NumberRetries,
		defaultLimit:  limit,
		now:           time.Now,
	}
}

// WithClock returns a copy of the repository that reads the current time
// from now. It decides both timestamps and "today" for date filters.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	cp := *r
	cp.now = now
	return &cp
}

// ListParams selects one page of orders.
type ListParams struct {
	Filter Filter
	Page   int
	Limit  int
}

// Page is one page of a filtered listing.
type Page struct {
	Orders     []entity.Order
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// Stats holds order counts over the whole table.
type Stats struct {
	Total     int
	Pending   int
	Completed int
	Refunded  int
}

// CreateInput describes a new order. Customer takes precedence over the flat
// CustomerName/CustomerEmail fields.
type CreateInput struct {
	Customer      *entity.Customer
	CustomerName  *string
	CustomerEmail *string
	OrderDate     string
	Status        entity.OrderStatus
	PaymentStatus entity.PaymentStatus
	TotalAmount   decimal.Decimal
}

// UpdateInput is a sparse patch; nil fields are left untouched.
type UpdateInput struct {
	CustomerName   *string
	CustomerEmail  *string
	CustomerAvatar *string
	OrderDate      *string
	Status         *entity.OrderStatus
	TotalAmount    *decimal.Decimal
	PaymentStatus  *entity.PaymentStatus
}

// IsEmpty reports whether the patch assigns no field.
func (in UpdateInput) IsEmpty() bool {
	return in.CustomerName == nil && in.CustomerEmail == nil && in.CustomerAvatar == nil &&
		in.OrderDate == nil && in.Status == nil && in.TotalAmount == nil && in.PaymentStatus == nil
}

func (in UpdateInput) validate() error {
	if in.Status != nil && !in.Status.Valid() {
		return &InvalidValueError{Field: "status", Value: string(*in.Status)}
	}
	if in.PaymentStatus != nil && !in.PaymentStatus.Valid() {
		return &InvalidValueError{Field: "payment_status", Value: string(*in.PaymentStatus)}
	}
	return nil
}

func (in UpdateInput) apply(q *bun.UpdateQuery) *bun.UpdateQuery {
	if in.CustomerName != nil {
		q = q.Set("customer_name = ?", *in.CustomerName)
	}
	if in.CustomerEmail != nil {
		q = q.Set("customer_email = ?", *in.CustomerEmail)
	}
	if in.CustomerAvatar != nil {
		q = q.Set("customer_avatar = ?", *in.CustomerAvatar)
	}
	if in.OrderDate != nil {
		q = q.Set("order_date = ?", *in.OrderDate)
	}
	if in.Status != nil {
		q = q.Set("status = ?", *in.Status)
	}
	if in.TotalAmount != nil {
		q = q.Set("total_amount = ?", *in.TotalAmount)
	}
	if in.PaymentStatus != nil {
		q = q.Set("payment_status = ?", *in.PaymentStatus)
	}
	return q
}

// List returns one page of orders matching the filter, newest first.
func (r *Repository) List(ctx context.Context, params ListParams) (*Page, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.List", trace.WithAttributes(
		attribute.String("orders.filter", params.Filter.String()),
		attribute.Int("orders.page", params.Page),
		attribute.Int("orders.limit", params.Limit),
	))
	defer span.End()

	if err := params.Filter.validate(); err != nil {
		return nil, err
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = r.defaultLimit
	}
	today := r.today()

	total, err := params.Filter.apply(r.reader.NewSelect().Model((*entity.Order)(nil)), today).Count(ctx)
	if err != nil {
		recordFailure(span, err, "count failed")
		return nil, err
	}

	orders := make([]entity.Order, 0)
	err = params.Filter.apply(r.reader.NewSelect().Model(&orders), today).
		OrderExpr("id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Scan(ctx)
	if err != nil {
		recordFailure(span, err, "select failed")
		return nil, err
	}

	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	return &Page{
		Orders:     orders,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// Stats counts all orders and orders per status. No date window applies.
func (r *Repository) Stats(ctx context.Context) (*Stats, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Stats")
	defer span.End()

	var stats Stats
	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int, status entity.OrderStatus) {
		g.Go(func() error {
			q := r.reader.NewSelect().Model((*entity.Order)(nil))
			if status != "" {
				q = q.Where("status = ?", status)
			}
			n, err := q.Count(gctx)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	count(&stats.Total, "")
	count(&stats.Pending, entity.OrderStatusPending)
	count(&stats.Completed, entity.OrderStatusCompleted)
	count(&stats.Refunded, entity.OrderStatusRefunded)

	if err := g.Wait(); err != nil {
		recordFailure(span, err, "count failed")
		return nil, err
	}
	return &stats, nil
}

// GetByID fetches an order by primary key using the read replica when available.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := r.fetch(ctx, r.reader, id)
	if err != nil {
		recordFailure(span, err, "select failed")
		return nil, err
	}
	return order, nil
}

// Create persists a new order under a freshly allocated order number.
func (r *Repository) Create(ctx context.Context, in CreateInput) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create")
	defer span.End()

	if in.Status == "" {
		in.Status = entity.OrderStatusPending
	}
	if in.PaymentStatus == "" {
		in.PaymentStatus = entity.PaymentStatusUnpaid
	}
	if !in.Status.Valid() {
		return nil, &InvalidValueError{Field: "status", Value: string(in.Status)}
	}
	if !in.PaymentStatus.Valid() {
		return nil, &InvalidValueError{Field: "payment_status", Value: string(in.PaymentStatus)}
	}

	now := r.timestamp()
	order := &entity.Order{
		Customer:      customerFrom(in),
		OrderDate:     in.OrderDate,
		Status:        in.Status,
		TotalAmount:   in.TotalAmount,
		PaymentStatus: in.PaymentStatus,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if order.OrderDate == "" {
		order.OrderDate = r.today()
	}

	var created *entity.Order
	err := r.runNumbered(ctx, func(ctx context.Context, tx bun.Tx) error {
		number, err := r.nextOrderNumber(ctx, tx)
		if err != nil {
			return err
		}
		order.ID = 0
		order.OrderNumber = number
		if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
			return err
		}
		created, err = r.fetch(ctx, tx, order.ID)
		return err
	})
	if err != nil {
		recordFailure(span, err, "insert failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int64("order.id", created.ID), attribute.String("order.number", created.OrderNumber))
	return created, nil
}

// Update applies a sparse patch. An empty patch returns the stored order
// without refreshing updated_at.
func (r *Repository) Update(ctx context.Context, id int64, in UpdateInput) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Update", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if err := in.validate(); err != nil {
		return nil, err
	}

	var updated *entity.Order
	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		current, err := r.fetch(ctx, tx, id)
		if err != nil {
			return err
		}
		if in.IsEmpty() {
			updated = current
			return nil
		}

		q := tx.NewUpdate().Model((*entity.Order)(nil)).Where("id = ?", id)
		q = in.apply(q).Set("updated_at = ?", r.timestamp())
		if _, err := q.Exec(ctx); err != nil {
			return err
		}

		updated, err = r.fetch(ctx, tx, id)
		return err
	})
	if err != nil {
		recordFailure(span, err, "update failed")
		return nil, err
	}
	return updated, nil
}

// Delete removes an order permanently.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*entity.Order)(nil)).Where("id = ?", id).Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		_, err = tx.NewDelete().Model((*entity.Order)(nil)).Where("id = ?", id).Exec(ctx)
		return err
	})
	if err != nil {
		recordFailure(span, err, "delete failed")
		return err
	}
	return nil
}

func (r *Repository) fetch(ctx context.Context, db bun.IDB, id int64) (*entity.Order, error) {
	order := new(entity.Order)
	err := db.NewSelect().Model(order).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *Repository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

func (r *Repository) today() string {
	return r.now().Format(entity.DateLayout)
}

func customerFrom(in CreateInput) entity.Customer {
	if in.Customer != nil {
		return *in.Customer
	}
	var c entity.Customer
	if in.CustomerName != nil {
		c.Name = *in.CustomerName
	}
	if in.CustomerEmail != nil {
		c.Email = *in.CustomerEmail
	}
	return c
}

func recordFailure(span trace.Span, err error, msg string) {
	if errors.Is(err, ErrNotFound) {
		span.SetStatus(codes.Error, "not found")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
}
