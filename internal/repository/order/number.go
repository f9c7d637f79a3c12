package order

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/Additional-Code/orderdesk/internal/database"
	"github.com/Additional-Code/orderdesk/internal/entity"
)

// OrderNumberPrefix precedes the numeric suffix of every order number.
const OrderNumberPrefix = "#ORD"

// emptyStoreMax is the suffix assumed when no order exists yet, so the first
// allocated number is #ORD1000.
const emptyStoreMax = 999

// FormatOrderNumber renders a numeric suffix as an order number.
func FormatOrderNumber(n int64) string {
	return OrderNumberPrefix + strconv.FormatInt(n, 10)
}

// nextOrderNumber derives the next number from the highest suffix visible to
// db. It must run on the transaction that performs the insert so a batch sees
// its own earlier inserts.
func (r *Repository) nextOrderNumber(ctx context.Context, db bun.IDB) (string, error) {
	var highest sql.NullInt64
	err := db.NewSelect().
		Model((*entity.Order)(nil)).
		ColumnExpr("MAX(CAST(SUBSTR(order_number, ?) AS ?))", len(OrderNumberPrefix)+1, bun.Safe(r.integerType())).
		Scan(ctx, &highest)
	if err != nil {
		return "", fmt.Errorf("read highest order number: %w", err)
	}

	next := int64(emptyStoreMax) + 1
	if highest.Valid {
		next = highest.Int64 + 1
	}
	return FormatOrderNumber(next), nil
}

func (r *Repository) integerType() string {
	if r.writer.Dialect().Name() == dialect.MySQL {
		return "SIGNED"
	}
	return "INTEGER"
}

// runNumbered executes fn in a write transaction and replays the whole
// transaction when an insert collides on order_number.
func (r *Repository) runNumbered(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	attempts := r.numberRetries + 1
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = r.writer.RunInTx(ctx, nil, fn)
		if !database.IsUniqueViolation(err) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrNumberConflict, attempts, err)
}
