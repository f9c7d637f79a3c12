package order

import (
	"context"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/orderdesk/internal/entity"
)

// StatusChange reports the status an order holds after a bulk update.
type StatusChange struct {
	ID     int64
	Status entity.OrderStatus
}

// BulkStatusResult is the outcome of BulkUpdateStatus.
type BulkStatusResult struct {
	UpdatedCount int
	Orders       []StatusChange
}

// Duplicate describes one order created by BulkDuplicate.
type Duplicate struct {
	ID          int64
	OrderNumber string
	OriginalID  int64
}

// BulkDuplicateResult is the outcome of BulkDuplicate.
type BulkDuplicateResult struct {
	DuplicatedCount int
	NewOrders       []Duplicate
}

// BulkDeleteResult is the outcome of BulkDelete.
type BulkDeleteResult struct {
	DeletedCount int
	DeletedIDs   []int64
}

// BulkUpdateStatus sets status on every requested order, or on none of them
// when any id is missing.
func (r *Repository) BulkUpdateStatus(ctx context.Context, ids []int64, status entity.OrderStatus) (*BulkStatusResult, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.BulkUpdateStatus", trace.WithAttributes(
		attribute.Int("orders.count", len(ids)),
		attribute.String("order.status", string(status)),
	))
	defer span.End()

	if !status.Valid() {
		return nil, &InvalidValueError{Field: "status", Value: string(status)}
	}

	ids = uniqueIDs(ids)
	result := &BulkStatusResult{Orders: make([]StatusChange, 0, len(ids))}
	if len(ids) == 0 {
		return result, nil
	}

	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := ensureExist(ctx, tx, ids); err != nil {
			return err
		}
		_, err := tx.NewUpdate().
			Model((*entity.Order)(nil)).
			Set("status = ?", status).
			Set("updated_at = ?", r.timestamp()).
			Where("id IN (?)", bun.In(ids)).
			Exec(ctx)
		return err
	})
	if err != nil {
		recordFailure(span, err, "bulk update failed")
		return nil, err
	}

	// Every id passed the existence gate, so every id matched. Drivers that
	// report changed rows only (MySQL without CLIENT_FOUND_ROWS) would
	// undercount rows that already held status.
	result.UpdatedCount = len(ids)
	for _, id := range ids {
		result.Orders = append(result.Orders, StatusChange{ID: id, Status: status})
	}
	return result, nil
}

// BulkDuplicate copies every requested order under a new order number. Ids
// are processed in request order; a repeated id is copied once per
// occurrence.
func (r *Repository) BulkDuplicate(ctx context.Context, ids []int64) (*BulkDuplicateResult, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.BulkDuplicate", trace.WithAttributes(attribute.Int("orders.count", len(ids))))
	defer span.End()

	if len(ids) == 0 {
		return &BulkDuplicateResult{NewOrders: []Duplicate{}}, nil
	}

	var created []Duplicate
	err := r.runNumbered(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := ensureExist(ctx, tx, uniqueIDs(ids)); err != nil {
			return err
		}

		now := r.timestamp()
		batch := make([]Duplicate, 0, len(ids))
		for _, id := range ids {
			src, err := r.fetch(ctx, tx, id)
			if err != nil {
				return err
			}
			number, err := r.nextOrderNumber(ctx, tx)
			if err != nil {
				return err
			}
			dup := &entity.Order{
				OrderNumber:   number,
				Customer:      src.Customer,
				OrderDate:     src.OrderDate,
				Status:        src.Status,
				TotalAmount:   src.TotalAmount,
				PaymentStatus: src.PaymentStatus,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if _, err := tx.NewInsert().Model(dup).Exec(ctx); err != nil {
				return err
			}
			batch = append(batch, Duplicate{ID: dup.ID, OrderNumber: number, OriginalID: id})
		}
		created = batch
		return nil
	})
	if err != nil {
		recordFailure(span, err, "bulk duplicate failed")
		return nil, err
	}

	return &BulkDuplicateResult{DuplicatedCount: len(created), NewOrders: created}, nil
}

// BulkDelete removes every requested order, or none of them when any id is
// missing.
func (r *Repository) BulkDelete(ctx context.Context, ids []int64) (*BulkDeleteResult, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.BulkDelete", trace.WithAttributes(attribute.Int("orders.count", len(ids))))
	defer span.End()

	ids = uniqueIDs(ids)
	result := &BulkDeleteResult{DeletedIDs: ids}
	if len(ids) == 0 {
		result.DeletedIDs = []int64{}
		return result, nil
	}

	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := ensureExist(ctx, tx, ids); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*entity.Order)(nil)).Where("id IN (?)", bun.In(ids)).Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		result.DeletedCount = int(affected)
		return nil
	})
	if err != nil {
		recordFailure(span, err, "bulk delete failed")
		return nil, err
	}
	return result, nil
}

// ensureExist is the gate in front of every bulk mutation: it fails with the
// missing ids, in request order, unless all of ids are present.
func ensureExist(ctx context.Context, db bun.IDB, ids []int64) error {
	var found []int64
	err := db.NewSelect().
		Model((*entity.Order)(nil)).
		Column("id").
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx, &found)
	if err != nil {
		return err
	}

	present := make(map[int64]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return &MissingOrdersError{IDs: missing}
	}
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
