package menu

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ID is a backend identifier. The backend sends ids either as JSON numbers or
// as strings; both decode to the same value.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Item is one entry of a restaurant menu.
type Item struct {
	ID    ID              `json:"id"`
	Name  string          `json:"name"`
	Unit  string          `json:"unit"`
	Price decimal.Decimal `json:"price"`
}

// Catalog indexes menu items by id, keeping backend order for listing.
type Catalog struct {
	items []Item
	byID  map[ID]int
}

func NewCatalog(items []Item) *Catalog {
	c := &Catalog{items: make([]Item, 0, len(items)), byID: make(map[ID]int, len(items))}
	for _, it := range items {
		if _, dup := c.byID[it.ID]; dup {
			continue
		}
		c.byID[it.ID] = len(c.items)
		c.items = append(c.items, it)
	}
	return c
}

func (c *Catalog) Get(id ID) (Item, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) Len() int { return len(c.items) }
