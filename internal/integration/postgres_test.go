//go:build integration

package integration

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/tableorder/internal/arrivals"
	"github.com/andreasstove999/tableorder/internal/db"
	"github.com/andreasstove999/tableorder/internal/order"
	"github.com/andreasstove999/tableorder/internal/report"
	"github.com/andreasstove999/tableorder/internal/testutil"
)

func TestRevenueRepository_Postgres(t *testing.T) {
	dsn := testutil.StartPostgres(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	svc := report.NewService(report.NewPostgresRepository(pool), log.New(io.Discard, "", 0))
	now := time.Date(2024, 1, 15, 19, 0, 0, 0, time.UTC)

	require.NoError(t, svc.Record(ctx, "b1", []order.DaySummary{
		{Date: "2024-01-15", Orders: 2, Cancelled: 0, Revenue: decimal.RequireFromString("50.105")},
		{Date: "2024-01-16", Orders: 1, Cancelled: 1, Revenue: decimal.Zero},
	}))
	// second write for the same day replaces the first
	require.NoError(t, svc.Record(ctx, "b1", []order.DaySummary{
		{Date: "2024-01-16", Orders: 3, Cancelled: 1, Revenue: decimal.RequireFromString("99.99")},
	}))

	rows, err := svc.History(ctx, "b1", now, 7, order.NepalOffsetMinutes)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-01-15", rows[0].BusinessDate)
	assert.Equal(t, "50.105", rows[0].Revenue.String())
	assert.Equal(t, 3, rows[1].Orders)
	assert.Equal(t, "99.99", rows[1].Revenue.String())
}

func TestArrivalRepository_Postgres(t *testing.T) {
	dsn := testutil.StartPostgres(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sqlDB, err := db.Open(ctx, dsn)
	require.NoError(t, err)
	defer sqlDB.Close()

	repo := arrivals.NewRepository(sqlDB)
	o := order.Normalized{ID: "42", TableNumber: "5", TotalAmount: decimal.RequireFromString("99.99"), Status: order.StatusPending}

	require.NoError(t, repo.RecordArrival(ctx, "b1", o))
	inserted, err := repo.Record(ctx, arrivals.Arrival{OrderID: "42", BranchID: "b1"})
	require.NoError(t, err)
	assert.False(t, inserted, "duplicate arrival ignored")

	_, err = repo.Record(ctx, arrivals.Arrival{OrderID: "43", BranchID: "b1", TableNumber: "2", ArrivedAt: time.Now().Add(time.Minute)})
	require.NoError(t, err)

	list, err := repo.Recent(ctx, "b1", 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "43", list[0].OrderID)
	assert.Equal(t, "99.99", list[1].Total.String())
}
