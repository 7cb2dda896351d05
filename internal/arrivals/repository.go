// Package arrivals keeps a log of orders the dashboard announced as new.
package arrivals

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/tableorder/internal/order"
)

type Arrival struct {
	OrderID     string          `json:"orderId"`
	BranchID    string          `json:"branchId"`
	TableNumber string          `json:"tableNumber"`
	Total       decimal.Decimal `json:"total"`
	Status      string          `json:"status"`
	ArrivedAt   time.Time       `json:"arrivedAt"`
}

type Repository interface {
	Record(ctx context.Context, a Arrival) (bool, error)
	Recent(ctx context.Context, branchID string, limit int) ([]Arrival, error)
}

type PostgresRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, now: time.Now}
}

// Record inserts a; a second arrival of the same order is ignored and
// reported as false.
func (r *PostgresRepository) Record(ctx context.Context, a Arrival) (bool, error) {
	if a.ArrivedAt.IsZero() {
		a.ArrivedAt = r.now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO order_arrivals (order_id, branch_id, table_number, total, status, arrived_at)
         VALUES ($1, $2, $3, $4, $5, $6)
         ON CONFLICT (branch_id, order_id) DO NOTHING`,
		a.OrderID, a.BranchID, a.TableNumber, a.Total.String(), a.Status, a.ArrivedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert arrival: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert arrival: %w", err)
	}
	return n > 0, nil
}

// RecordArrival adapts Record to the poller's arrival hook.
func (r *PostgresRepository) RecordArrival(ctx context.Context, branchID string, o order.Normalized) error {
	_, err := r.Record(ctx, Arrival{
		OrderID:     o.ID,
		BranchID:    branchID,
		TableNumber: o.TableNumber,
		Total:       o.TotalAmount,
		Status:      o.Status.String(),
	})
	return err
}

// Recent returns up to limit arrivals, newest first.
func (r *PostgresRepository) Recent(ctx context.Context, branchID string, limit int) ([]Arrival, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT order_id, branch_id, table_number, total::text, status, arrived_at
         FROM order_arrivals WHERE branch_id = $1
         ORDER BY arrived_at DESC LIMIT $2`,
		branchID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select arrivals: %w", err)
	}
	defer rows.Close()

	var out []Arrival
	for rows.Next() {
		var (
			a     Arrival
			total string
		)
		if err := rows.Scan(&a.OrderID, &a.BranchID, &a.TableNumber, &total, &a.Status, &a.ArrivedAt); err != nil {
			return nil, fmt.Errorf("scan arrival: %w", err)
		}
		if a.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("arrival %s total: %w", a.OrderID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
