package clients

import (
	"context"
	"net/http"
	"net/url"

	"github.com/andreasstove999/tableorder/internal/menu"
)

type MenuClient struct{ c *Client }

func NewMenuClient(c *Client) *MenuClient { return &MenuClient{c: c} }

// List loads the menu visible to a table session.
func (mc *MenuClient) List(ctx context.Context, sessionToken string) ([]menu.Item, error) {
	q := url.Values{}
	q.Set("session", sessionToken)

	var items list[menu.Item]
	if err := mc.c.doJSON(ctx, "list menu", http.MethodGet, "/api/menu/", q.Encode(), nil, &items, nil); err != nil {
		return nil, err
	}
	return items, nil
}
