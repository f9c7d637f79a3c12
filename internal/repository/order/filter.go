package order

import (
	"github.com/uptrace/bun"

	"github.com/Additional-Code/orderdesk/internal/entity"
)

type filterKind uint8

const (
	filterAll filterKind = iota
	filterOngoing
	filterOverdue
	filterStatus
)

// Filter selects which orders a listing returns. The zero value matches all
// orders.
type Filter struct {
	kind   filterKind
	status entity.OrderStatus
}

// FilterAll matches every order.
func FilterAll() Filter { return Filter{kind: filterAll} }

// FilterOngoing matches pending orders dated today or later.
func FilterOngoing() Filter { return Filter{kind: filterOngoing} }

// FilterOverdue matches pending orders dated before today.
func FilterOverdue() Filter { return Filter{kind: filterOverdue} }

// FilterStatus matches orders with exactly the given status.
func FilterStatus(status entity.OrderStatus) Filter {
	return Filter{kind: filterStatus, status: status}
}

// ParseFilter maps the listing keyword onto a Filter. An empty keyword means
// "all".
func ParseFilter(raw string) (Filter, error) {
	switch raw {
	case "", "all":
		return FilterAll(), nil
	case "ongoing":
		return FilterOngoing(), nil
	case "overdue":
		return FilterOverdue(), nil
	}
	f := FilterStatus(entity.OrderStatus(raw))
	if err := f.validate(); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func (f Filter) String() string {
	switch f.kind {
	case filterOngoing:
		return "ongoing"
	case filterOverdue:
		return "overdue"
	case filterStatus:
		return string(f.status)
	default:
		return "all"
	}
}

func (f Filter) validate() error {
	if f.kind == filterStatus && !f.status.Valid() {
		return &InvalidValueError{Field: "status", Value: string(f.status)}
	}
	return nil
}

// apply narrows q to the filter's predicate. today is an ISO date; ISO dates
// compare correctly as strings.
func (f Filter) apply(q *bun.SelectQuery, today string) *bun.SelectQuery {
	switch f.kind {
	case filterOngoing:
		return q.Where("status = ?", entity.OrderStatusPending).Where("order_date >= ?", today)
	case filterOverdue:
		return q.Where("status = ?", entity.OrderStatusPending).Where("order_date < ?", today)
	case filterStatus:
		return q.Where("status = ?", f.status)
	default:
		return q
	}
}
