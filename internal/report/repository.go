package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type Repository interface {
	UpsertDaily(ctx context.Context, rows []DailyRevenue) error
	ListRange(ctx context.Context, branchID, from, to string) ([]DailyRevenue, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const upsertDailySQL = `
		INSERT INTO daily_revenue(branch_id, business_date, order_count, cancelled_count, revenue, updated_at)
		VALUES($1, $2, $3, $4, $5::numeric, now())
		ON CONFLICT (branch_id, business_date) DO UPDATE SET
			order_count=EXCLUDED.order_count,
			cancelled_count=EXCLUDED.cancelled_count,
			revenue=EXCLUDED.revenue,
			updated_at=now()
	`

// UpsertDaily writes all rows in one transaction.
func (r *PostgresRepository) UpsertDaily(ctx context.Context, rows []DailyRevenue) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, row := range rows {
		day, err := time.Parse(dateLayout, row.BusinessDate)
		if err != nil {
			return fmt.Errorf("business date %q: %w", row.BusinessDate, err)
		}
		if _, err := tx.Exec(ctx, upsertDailySQL,
			row.BranchID, day, row.Orders, row.Cancelled, row.Revenue.String(),
		); err != nil {
			return fmt.Errorf("upsert %s: %w", row.BusinessDate, err)
		}
	}

	return tx.Commit(ctx)
}

const listRangeSQL = `
		SELECT branch_id, business_date, order_count, cancelled_count, revenue::text, updated_at
		FROM daily_revenue
		WHERE branch_id=$1 AND business_date BETWEEN $2 AND $3
		ORDER BY business_date
	`

// ListRange returns stored rows for from..to inclusive (YYYY-MM-DD).
func (r *PostgresRepository) ListRange(ctx context.Context, branchID, from, to string) ([]DailyRevenue, error) {
	fromDay, err := time.Parse(dateLayout, from)
	if err != nil {
		return nil, fmt.Errorf("from date %q: %w", from, err)
	}
	toDay, err := time.Parse(dateLayout, to)
	if err != nil {
		return nil, fmt.Errorf("to date %q: %w", to, err)
	}

	rows, err := r.pool.Query(ctx, listRangeSQL, branchID, fromDay, toDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DailyRevenue
	for rows.Next() {
		var (
			d       DailyRevenue
			day     time.Time
			revenue string
		)
		if err := rows.Scan(&d.BranchID, &day, &d.Orders, &d.Cancelled, &revenue, &d.UpdatedAt); err != nil {
			return nil, err
		}
		d.BusinessDate = day.Format(dateLayout)
		if d.Revenue, err = decimal.NewFromString(revenue); err != nil {
			return nil, fmt.Errorf("revenue for %s: %w", d.BusinessDate, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
