package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// DateLayout is the calendar format used for order dates.
const DateLayout = "2006-01-02"

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// OrderStatuses lists every accepted order status.
var OrderStatuses = []OrderStatus{OrderStatusPending, OrderStatusCompleted, OrderStatusRefunded}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusRefunded:
		return true
	}
	return false
}

// PaymentStatus tracks whether an order has been paid.
type PaymentStatus string

const (
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusUnpaid PaymentStatus = "unpaid"
)

// Valid reports whether s is one of the known payment statuses.
func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusPaid || s == PaymentStatusUnpaid
}

// Customer is the buyer snapshot stored inline with each order. It is copied
// by value, never shared between orders.
type Customer struct {
	Name   string `bun:"name" json:"name"`
	Email  string `bun:"email" json:"email"`
	Avatar string `bun:"avatar" json:"avatar"`
}

// Order represents a purchase order stored in the relational database.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID            int64           `bun:",pk,autoincrement" json:"id"`
	OrderNumber   string          `bun:"order_number" json:"order_number"`
	Customer      Customer        `bun:"embed:customer_" json:"customer"`
	OrderDate     string          `bun:"order_date" json:"order_date"`
	Status        OrderStatus     `bun:"status" json:"status"`
	TotalAmount   decimal.Decimal `bun:"total_amount" json:"total_amount"`
	PaymentStatus PaymentStatus   `bun:"payment_status" json:"payment_status"`
	CreatedAt     time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}
