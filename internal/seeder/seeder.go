package seeder

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdesk/internal/database"
	"github.com/Additional-Code/orderdesk/internal/entity"
)

// Module provides the Seeder to Fx.
var Module = fx.Provide(New)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger}
}

type sample struct {
	number, name, email, date string
	status                    entity.OrderStatus
	amount                    string
	payment                   entity.PaymentStatus
}

var samples = []sample{
	{"#ORD1008", "Esther Kiehn", "esther@example.com", "2024-12-17", entity.OrderStatusPending, "10.50", entity.PaymentStatusUnpaid},
	{"#ORD1007", "Denise Kuhn", "denise@example.com", "2024-12-16", entity.OrderStatusPending, "100.50", entity.PaymentStatusUnpaid},
	{"#ORD1006", "Clint Hoppe", "clint@example.com", "2024-12-16", entity.OrderStatusCompleted, "60.56", entity.PaymentStatusPaid},
	{"#ORD1005", "Darin Deckow", "darin@example.com", "2024-12-16", entity.OrderStatusRefunded, "640.50", entity.PaymentStatusPaid},
	{"#ORD1004", "Jacquelyn Robel", "jacquelyn@example.com", "2024-12-15", entity.OrderStatusCompleted, "39.50", entity.PaymentStatusPaid},
	{"#ORD1003", "Clint Hoppe", "clint@example.com", "2024-12-16", entity.OrderStatusCompleted, "29.50", entity.PaymentStatusPaid},
	{"#ORD1002", "Erin Bins", "erin@example.com", "2024-12-16", entity.OrderStatusCompleted, "120.35", entity.PaymentStatusPaid},
	{"#ORD1001", "Gretchen Quigley", "gretchen@example.com", "2024-12-14", entity.OrderStatusRefunded, "123.50", entity.PaymentStatusPaid},
	{"#ORD1000", "Stewart Kulas", "stewart@example.com", "2024-12-13", entity.OrderStatusCompleted, "85.00", entity.PaymentStatusPaid},
	{"#ORD0999", "Amanda Rice", "amanda@example.com", "2024-12-13", entity.OrderStatusPending, "45.00", entity.PaymentStatusUnpaid},
}

// SampleOrderNumbers lists the order numbers Orders inserts.
func SampleOrderNumbers() []string {
	numbers := make([]string, 0, len(samples))
	for _, s := range samples {
		numbers = append(numbers, s.number)
	}
	return numbers
}

// Orders seeds the sample orders, skipping any whose order number already
// exists. It returns the number of rows inserted.
func (s *Seeder) Orders(ctx context.Context) (int, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	orders := make([]entity.Order, 0, len(samples))
	for _, sm := range samples {
		orders = append(orders, entity.Order{
			OrderNumber:   sm.number,
			Customer:      entity.Customer{Name: sm.name, Email: sm.email},
			OrderDate:     sm.date,
			Status:        sm.status,
			TotalAmount:   decimal.RequireFromString(sm.amount),
			PaymentStatus: sm.payment,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	res, err := s.db.NewInsert().Model(&orders).Ignore().Exec(ctx)
	if err != nil {
		return 0, err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if s.logger != nil {
		s.logger.Info("seeded orders", zap.Int64("inserted", inserted), zap.Int("samples", len(samples)))
	}
	return int(inserted), nil
}

// Revert removes the sample orders.
func (s *Seeder) Revert(ctx context.Context) (int, error) {
	res, err := s.db.NewDelete().
		Model((*entity.Order)(nil)).
		Where("order_number IN (?)", bun.In(SampleOrderNumbers())).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if s.logger != nil {
		s.logger.Info("removed seeded orders", zap.Int64("removed", removed))
	}
	return int(removed), nil
}
