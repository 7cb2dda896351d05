package clients

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/tableorder/internal/menu"
	"github.com/andreasstove999/tableorder/internal/order"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type CreateOrderItem struct {
	MenuID   menu.ID         `json:"menu"`
	Name     string          `json:"name"`
	Unit     string          `json:"unit"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

type CreateOrderRequest struct {
	Table         string            `json:"table"`
	TableNumber   int               `json:"table_number"`
	Items         []CreateOrderItem `json:"items"`
	TotalPrice    decimal.Decimal   `json:"total_price"`
	Status        string            `json:"status"`
	SessionToken  string            `json:"session_token"`
	CustomerPhone string            `json:"customer_phone,omitempty"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type OrderClient struct{ c *Client }

func NewOrderClient(c *Client) *OrderClient { return &OrderClient{c: c} }

// List returns every order of a branch as the backend reports it.
func (oc *OrderClient) List(ctx context.Context, branchID string) ([]order.Order, error) {
	q := url.Values{}
	q.Set("branch", branchID)

	var orders list[order.Order]
	if err := oc.c.doJSON(ctx, "list orders", http.MethodGet, "/api/orders/", q.Encode(), nil, &orders, nil); err != nil {
		return nil, err
	}
	return orders, nil
}

// Create submits a new order. idempotencyKey lets the backend drop a
// duplicate submission of the same cart. The returned order is zero when the
// backend answers without a body.
func (oc *OrderClient) Create(ctx context.Context, req CreateOrderRequest, idempotencyKey string) (order.Order, error) {
	h := http.Header{}
	if idempotencyKey != "" {
		h.Set(HeaderIdempotencyKey, idempotencyKey)
	}

	var created order.Order
	if err := oc.c.doJSON(ctx, "create order", http.MethodPost, "/api/orders/", "", req, &created, h); err != nil {
		return order.Order{}, err
	}
	return created, nil
}

// UpdateStatus writes a status change for one order.
func (oc *OrderClient) UpdateStatus(ctx context.Context, orderID string, status order.Status) error {
	path := "/api/orders/" + orderID + "/"
	body := updateStatusRequest{Status: status.BackendValue()}
	return oc.c.doJSON(ctx, "update order status", http.MethodPatch, path, "", body, nil, nil)
}
