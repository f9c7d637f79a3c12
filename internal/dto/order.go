package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Additional-Code/orderdesk/internal/entity"
	repo "github.com/Additional-Code/orderdesk/internal/repository/order"
	"github.com/Additional-Code/orderdesk/pkg/errorbank"
)

// CustomerPayload is the nested customer object accepted and returned by the API.
type CustomerPayload struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID            int64           `json:"id,string"`
	OrderNumber   string          `json:"order_number"`
	Customer      CustomerPayload `json:"customer"`
	OrderDate     string          `json:"order_date"`
	Status        string          `json:"status"`
	TotalAmount   float64         `json:"total_amount"`
	PaymentStatus string          `json:"payment_status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewOrderResponse maps an entity onto its wire representation.
func NewOrderResponse(order *entity.Order) OrderResponse {
	return OrderResponse{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		Customer: CustomerPayload{
			Name:   order.Customer.Name,
			Email:  order.Customer.Email,
			Avatar: order.Customer.Avatar,
		},
		OrderDate:     order.OrderDate,
		Status:        string(order.Status),
		TotalAmount:   order.TotalAmount.InexactFloat64(),
		PaymentStatus: string(order.PaymentStatus),
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

// OrderListResponse is one page of orders.
type OrderListResponse struct {
	Orders     []OrderResponse `json:"orders"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// NewOrderListResponse maps a repository page.
func NewOrderListResponse(page *repo.Page) OrderListResponse {
	orders := make([]OrderResponse, 0, len(page.Orders))
	for i := range page.Orders {
		orders = append(orders, NewOrderResponse(&page.Orders[i]))
	}
	return OrderListResponse{
		Orders:     orders,
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages,
	}
}

// OrderStatsResponse keeps the field names clients already consume. The
// totals are not restricted to the current month.
type OrderStatsResponse struct {
	TotalOrdersThisMonth int `json:"total_orders_this_month"`
	PendingOrders        int `json:"pending_orders"`
	ShippedOrders        int `json:"shipped_orders"`
	RefundedOrders       int `json:"refunded_orders"`
}

// NewOrderStatsResponse maps repository stats.
func NewOrderStatsResponse(stats *repo.Stats) OrderStatsResponse {
	return OrderStatsResponse{
		TotalOrdersThisMonth: stats.Total,
		PendingOrders:        stats.Pending,
		ShippedOrders:        stats.Completed,
		RefundedOrders:       stats.Refunded,
	}
}

// CreateOrderRequest accepts either a nested customer or flat customer fields.
type CreateOrderRequest struct {
	Customer      *CustomerPayload `json:"customer"`
	CustomerName  *string          `json:"customer_name"`
	CustomerEmail *string          `json:"customer_email"`
	TotalAmount   *decimal.Decimal `json:"total_amount"`
	Status        string           `json:"status"`
	PaymentStatus string           `json:"payment_status"`
	OrderDate     string           `json:"order_date"`
}

// Validate checks the request shape.
func (r CreateOrderRequest) Validate() error {
	if r.TotalAmount == nil {
		return errorbank.BadRequest("total_amount is required")
	}
	if r.TotalAmount.IsNegative() {
		return errorbank.BadRequest("total_amount must not be negative")
	}
	if r.OrderDate != "" {
		return validateDate(r.OrderDate)
	}
	return nil
}

// Input converts the request into repository input.
func (r CreateOrderRequest) Input() repo.CreateInput {
	in := repo.CreateInput{
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		OrderDate:     r.OrderDate,
		Status:        entity.OrderStatus(r.Status),
		PaymentStatus: entity.PaymentStatus(r.PaymentStatus),
	}
	if r.TotalAmount != nil {
		in.TotalAmount = *r.TotalAmount
	}
	if r.Customer != nil {
		in.Customer = &entity.Customer{Name: r.Customer.Name, Email: r.Customer.Email, Avatar: r.Customer.Avatar}
	}
	return in
}

// UpdateOrderRequest is a sparse patch; absent fields are left untouched.
type UpdateOrderRequest struct {
	CustomerName   *string          `json:"customer_name"`
	CustomerEmail  *string          `json:"customer_email"`
	CustomerAvatar *string          `json:"customer_avatar"`
	OrderDate      *string          `json:"order_date"`
	Status         *string          `json:"status"`
	TotalAmount    *decimal.Decimal `json:"total_amount"`
	PaymentStatus  *string          `json:"payment_status"`
}

// Validate checks the request shape.
func (r UpdateOrderRequest) Validate() error {
	if r.TotalAmount != nil && r.TotalAmount.IsNegative() {
		return errorbank.BadRequest("total_amount must not be negative")
	}
	if r.OrderDate != nil {
		return validateDate(*r.OrderDate)
	}
	return nil
}

// Input converts the request into repository input.
func (r UpdateOrderRequest) Input() repo.UpdateInput {
	in := repo.UpdateInput{
		CustomerName:   r.CustomerName,
		CustomerEmail:  r.CustomerEmail,
		CustomerAvatar: r.CustomerAvatar,
		OrderDate:      r.OrderDate,
		TotalAmount:    r.TotalAmount,
	}
	if r.Status != nil {
		status := entity.OrderStatus(*r.Status)
		in.Status = &status
	}
	if r.PaymentStatus != nil {
		payment := entity.PaymentStatus(*r.PaymentStatus)
		in.PaymentStatus = &payment
	}
	return in
}

// BulkIDsRequest names the orders a bulk operation targets.
type BulkIDsRequest struct {
	OrderIDs []int64 `json:"order_ids"`
}

// Validate checks the request shape.
func (r BulkIDsRequest) Validate() error {
	return validateIDs(r.OrderIDs)
}

// BulkStatusRequest sets one status on many orders.
type BulkStatusRequest struct {
	OrderIDs []int64 `json:"order_ids"`
	Status   string  `json:"status"`
}

// Validate checks the request shape.
func (r BulkStatusRequest) Validate() error {
	if err := validateIDs(r.OrderIDs); err != nil {
		return err
	}
	if !entity.OrderStatus(r.Status).Valid() {
		return errorbank.BadRequest("invalid status value", errorbank.WithDetail("value", r.Status))
	}
	return nil
}

// StatusChangeResponse reports the new status of one order.
type StatusChangeResponse struct {
	ID     int64  `json:"id,string"`
	Status string `json:"status"`
}

// BulkStatusResponse is returned by the bulk status endpoint.
type BulkStatusResponse struct {
	UpdatedCount int                    `json:"updated_count"`
	Orders       []StatusChangeResponse `json:"orders"`
}

// NewBulkStatusResponse maps the repository result.
func NewBulkStatusResponse(res *repo.BulkStatusResult) BulkStatusResponse {
	orders := make([]StatusChangeResponse, 0, len(res.Orders))
	for _, change := range res.Orders {
		orders = append(orders, StatusChangeResponse{ID: change.ID, Status: string(change.Status)})
	}
	return BulkStatusResponse{UpdatedCount: res.UpdatedCount, Orders: orders}
}

// DuplicateResponse describes one copied order.
type DuplicateResponse struct {
	ID              int64  `json:"id,string"`
	OrderNumber     string `json:"order_number"`
	OriginalOrderID int64  `json:"original_order_id,string"`
}

// BulkDuplicateResponse is returned by the bulk duplicate endpoint.
type BulkDuplicateResponse struct {
	DuplicatedCount int                 `json:"duplicated_count"`
	NewOrders       []DuplicateResponse `json:"new_orders"`
}

// NewBulkDuplicateResponse maps the repository result.
func NewBulkDuplicateResponse(res *repo.BulkDuplicateResult) BulkDuplicateResponse {
	orders := make([]DuplicateResponse, 0, len(res.NewOrders))
	for _, dup := range res.NewOrders {
		orders = append(orders, DuplicateResponse{ID: dup.ID, OrderNumber: dup.OrderNumber, OriginalOrderID: dup.OriginalID})
	}
	return BulkDuplicateResponse{DuplicatedCount: res.DuplicatedCount, NewOrders: orders}
}

// BulkDeleteResponse is returned by the bulk delete endpoint.
type BulkDeleteResponse struct {
	DeletedCount int      `json:"deleted_count"`
	DeletedIDs   []string `json:"deleted_ids"`
}

// NewBulkDeleteResponse maps the repository result.
func NewBulkDeleteResponse(res *repo.BulkDeleteResult) BulkDeleteResponse {
	ids := make([]string, 0, len(res.DeletedIDs))
	for _, id := range res.DeletedIDs {
		ids = append(ids, formatID(id))
	}
	return BulkDeleteResponse{DeletedCount: res.DeletedCount, DeletedIDs: ids}
}
