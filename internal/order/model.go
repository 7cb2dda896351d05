package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/tableorder/internal/menu"
)

type Item struct {
	MenuID   menu.ID         `json:"menu,omitempty"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Unit     string          `json:"unit"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

// Order is the backend's view of an order as returned by the listing
// endpoint. Status holds the backend vocabulary verbatim.
type Order struct {
	ID          menu.ID         `json:"id"`
	TableID     menu.ID         `json:"table"`
	TableNumber menu.ID         `json:"table_number"`
	Items       []Item          `json:"items"`
	TotalAmount decimal.Decimal `json:"total_price"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Normalized is the read-only projection the dashboards work with.
type Normalized struct {
	ID          string          `json:"id"`
	TableID     string          `json:"tableId"`
	TableNumber string          `json:"tableNumber"`
	Items       []Item          `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      Status          `json:"status"`
	RawStatus   string          `json:"rawStatus"`
	CreatedAt   time.Time       `json:"createdAt"`
	LocalDate   string          `json:"localDate"`
}

// Normalize projects o into the display vocabulary and business-local date.
func Normalize(o Order, offsetMinutes int) Normalized {
	items := make([]Item, len(o.Items))
	copy(items, o.Items)
	return Normalized{
		ID:          o.ID.String(),
		TableID:     o.TableID.String(),
		TableNumber: o.TableNumber.String(),
		Items:       items,
		TotalAmount: o.TotalAmount,
		Status:      NormalizeStatus(o.Status),
		RawStatus:   o.Status,
		CreatedAt:   o.CreatedAt.UTC(),
		LocalDate:   LocalDate(o.CreatedAt, offsetMinutes),
	}
}
