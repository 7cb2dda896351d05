package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andreasstove999/tableorder/internal/cart"
	"github.com/andreasstove999/tableorder/internal/menu"
)

type pick struct {
	id  menu.ID
	qty int
}

// parsePicks reads "id[:qty],id[:qty]". A missing quantity means 1.
func parsePicks(s string) ([]pick, error) {
	var out []pick
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, qtyStr, hasQty := strings.Cut(part, ":")
		p := pick{id: menu.ID(strings.TrimSpace(id)), qty: 1}
		if p.id == "" {
			return nil, fmt.Errorf("pick %q: missing item id", part)
		}
		if hasQty {
			n, err := strconv.Atoi(strings.TrimSpace(qtyStr))
			if err != nil || n < 0 {
				return nil, fmt.Errorf("pick %q: quantity must be a non-negative integer", part)
			}
			p.qty = n
		}
		out = append(out, p)
	}
	return out, nil
}

// applyPicks adds each pick to c. Ids missing from the catalog are returned.
func applyPicks(c *cart.Cart, catalog *menu.Catalog, picks []pick) []menu.ID {
	var unknown []menu.ID
	for _, p := range picks {
		item, ok := catalog.Get(p.id)
		if !ok {
			unknown = append(unknown, p.id)
			continue
		}
		if p.qty == 0 {
			continue
		}
		c.AddItem(item)
		c.SetQuantity(item.ID, c.Quantity(item.ID)+p.qty-1)
	}
	return unknown
}
