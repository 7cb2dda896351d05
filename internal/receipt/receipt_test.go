package receipt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/tableorder/internal/money"
	"github.com/andreasstove999/tableorder/internal/order"
)

func TestRender(t *testing.T) {
	o := order.Normalized{
		ID:          "42",
		TableNumber: "5",
		Status:      order.StatusReady,
		CreatedAt:   time.Date(2024, 1, 15, 19, 0, 0, 0, time.UTC),
		TotalAmount: money.MustParse("139.99"),
		Items: []order.Item{
			{Name: "Momo", Quantity: 3, Unit: "plate", Price: money.MustParse("33.33"), Total: money.MustParse("99.99")},
			{Name: "Tea", Quantity: 1, Unit: "cup", Price: money.MustParse("40")},
		},
	}

	var b strings.Builder
	require.NoError(t, Render(&b, o, order.NepalOffsetMinutes))
	out := b.String()

	assert.Contains(t, out, "Order #42")
	assert.Contains(t, out, "Table 5")
	assert.Contains(t, out, "2024-01-16 00:45")
	assert.Contains(t, out, "Status: Ready")
	assert.Contains(t, out, "Rs. 99.99")
	assert.Contains(t, out, "Rs. 40.00", "line total derived from price when absent")
	assert.True(t, strings.HasSuffix(out, "Total: Rs. 139.99\n"))
}
