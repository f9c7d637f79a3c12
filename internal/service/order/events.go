package order

import (
	"time"

	"github.com/Additional-Code/orderdesk/internal/entity"
)

// Event types published after successful mutations.
const (
	EventOrderCreated        = "order.created"
	EventOrderUpdated        = "order.updated"
	EventOrderDeleted        = "order.deleted"
	EventOrdersStatusUpdated = "orders.status_updated"
	EventOrdersDuplicated    = "orders.duplicated"
	EventOrdersDeleted       = "orders.deleted"
)

// OrderEvent is the message body emitted for order mutations. Order is set
// for single-order creates and updates.
type OrderEvent struct {
	ID         string        `json:"id"`
	Type       string        `json:"type"`
	OrderIDs   []int64       `json:"order_ids"`
	Status     string        `json:"status,omitempty"`
	Order      *entity.Order `json:"order,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}
