package order

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/orderdesk/internal/config"
	"github.com/Additional-Code/orderdesk/internal/dto"
	"github.com/Additional-Code/orderdesk/internal/entity"
	"github.com/Additional-Code/orderdesk/internal/presentation/http/response"
	service "github.com/Additional-Code/orderdesk/internal/service/order"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/orderdesk/transport/http/order")

// Handler exposes order endpoints over HTTP.
type Handler struct {
	svc         *service.Service
	maxPageSize int
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service, cfg config.Config) *Handler {
	return &Handler{svc: svc, maxPageSize: cfg.Orders.MaxPageSize}
}

// Register routes with provided Echo group. Static paths are registered
// alongside :id routes; echo prefers static segments.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/orders")
	g.GET("", h.list)
	g.GET("/stats", h.stats)
	g.PUT("/bulk/status", h.bulkUpdateStatus)
	g.POST("/bulk/duplicate", h.bulkDuplicate)
	g.DELETE("/bulk", h.bulkDelete)
	g.GET("/:id", h.getByID)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	query := service.ListQuery{Status: c.QueryParam("status")}
	err := echo.QueryParamsBinder(c).
		Int("page", &query.Page).
		Int("limit", &query.Limit).
		BindError()
	if err != nil {
		return b.WithError(errorbank.BadRequest("page and limit must be integers", errorbank.WithCause(err))).Build()
	}
	if c.QueryParam("page") != "" && query.Page < 1 {
		return b.WithError(errorbank.BadRequest("page must be at least 1")).Build()
	}
	if c.QueryParam("limit") != "" && (query.Limit < 1 || query.Limit > h.maxPageSize) {
		return b.WithError(errorbank.BadRequest("limit out of range", errorbank.WithDetail("max", h.maxPageSize))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list", trace.WithAttributes(attribute.String("orders.filter", query.Status)))
	defer span.End()

	page, err := h.svc.List(ctx, query)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewOrderListResponse(page)).Build()
}

func (h *Handler) stats(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.stats")
	defer span.End()

	stats, err := h.svc.Stats(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewOrderStatsResponse(stats)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.NewOrderResponse(order)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload dto.CreateOrderRequest
	if err := bindBody(c, &payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := payload.Validate(); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.create")
	defer span.End()

	order, err := h.svc.Create(ctx, payload.Input())
	if err != nil {
		return b.WithError(err).Build()
	}
	span.SetAttributes(attribute.String("order.number", order.OrderNumber))

	return b.WithStatus(http.StatusCreated).WithData(dto.NewOrderResponse(order)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload dto.UpdateOrderRequest
	if err := bindBody(c, &payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := payload.Validate(); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.update", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.Update(ctx, id, payload.Input())
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewOrderResponse(order)).Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func (h *Handler) bulkUpdateStatus(c echo.Context) error {
	b := response.New(c)

	var payload dto.BulkStatusRequest
	if err := bindBody(c, &payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := payload.Validate(); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.bulkUpdateStatus", trace.WithAttributes(attribute.Int("orders.count", len(payload.OrderIDs))))
	defer span.End()

	res, err := h.svc.BulkUpdateStatus(ctx, payload.OrderIDs, entity.OrderStatus(payload.Status))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewBulkStatusResponse(res)).Build()
}

func (h *Handler) bulkDuplicate(c echo.Context) error {
	b := response.New(c)

	var payload dto.BulkIDsRequest
	if err := bindBody(c, &payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := payload.Validate(); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.bulkDuplicate", trace.WithAttributes(attribute.Int("orders.count", len(payload.OrderIDs))))
	defer span.End()

	res, err := h.svc.BulkDuplicate(ctx, payload.OrderIDs)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(dto.NewBulkDuplicateResponse(res)).Build()
}

func (h *Handler) bulkDelete(c echo.Context) error {
	b := response.New(c)

	var payload dto.BulkIDsRequest
	if err := bindBody(c, &payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := payload.Validate(); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.bulkDelete", trace.WithAttributes(attribute.Int("orders.count", len(payload.OrderIDs))))
	defer span.End()

	res, err := h.svc.BulkDelete(ctx, payload.OrderIDs)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewBulkDeleteResponse(res)).Build()
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errorbank.BadRequest("invalid id", errorbank.WithDetail("value", c.Param("id")))
	}
	return id, nil
}

// bindBody decodes only the JSON body; path and query values never leak into
// request payloads.
func bindBody(c echo.Context, payload any) error {
	return (&echo.DefaultBinder{}).BindBody(c, payload)
}
