// Package cart aggregates the menu items a customer intends to order for one
// table session. A Cart has a single owner and is not safe for concurrent use.
package cart

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/tableorder/internal/menu"
	"github.com/andreasstove999/tableorder/internal/money"
	"github.com/andreasstove999/tableorder/internal/notify"
)

type Line struct {
	Item     menu.Item
	Quantity int
}

// Total is quantity x unit price, unrounded.
func (l Line) Total() decimal.Decimal {
	return money.LineTotal(l.Item.Price, l.Quantity)
}

type Cart struct {
	lines    []Line
	notifier notify.Notifier
}

func New(notifier notify.Notifier) *Cart {
	return &Cart{notifier: notifier}
}

func (c *Cart) index(id menu.ID) int {
	for i := range c.lines {
		if c.lines[i].Item.ID == id {
			return i
		}
	}
	return -1
}

// AddItem increments the line for item or appends a new line with quantity 1.
func (c *Cart) AddItem(item menu.Item) {
	if i := c.index(item.ID); i >= 0 {
		c.lines[i].Quantity++
	} else {
		c.lines = append(c.lines, Line{Item: item, Quantity: 1})
	}
	notify.Send(context.Background(), c.notifier, notify.Notice{
		Kind:    notify.KindItemAdded,
		Message: fmt.Sprintf("%s added to cart", item.Name),
	})
}

// SetQuantity sets the line quantity to max(0, qty). A line that ends at zero
// is pruned. Unknown ids are ignored.
func (c *Cart) SetQuantity(id menu.ID, qty int) {
	i := c.index(id)
	if i < 0 {
		return
	}
	if qty <= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return
	}
	c.lines[i].Quantity = qty
}

func (c *Cart) Increment(id menu.ID) { c.SetQuantity(id, c.Quantity(id)+1) }

func (c *Cart) Decrement(id menu.ID) { c.SetQuantity(id, c.Quantity(id)-1) }

// RemoveItem deletes the line for id if present.
func (c *Cart) RemoveItem(id menu.ID) {
	i := c.index(id)
	if i < 0 {
		return
	}
	name := c.lines[i].Item.Name
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	notify.Send(context.Background(), c.notifier, notify.Notice{
		Kind:    notify.KindItemRemoved,
		Message: fmt.Sprintf("%s removed from cart", name),
	})
}

func (c *Cart) Clear() { c.lines = nil }

// Quantity returns the quantity for id, 0 when absent.
func (c *Cart) Quantity(id menu.ID) int {
	if i := c.index(id); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

func (c *Cart) TotalItems() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// TotalPrice is exact; round with money.Display for output only.
func (c *Cart) TotalPrice() decimal.Decimal {
	totals := make([]decimal.Decimal, len(c.lines))
	for i, l := range c.lines {
		totals[i] = l.Total()
	}
	return money.Sum(totals...)
}

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Lines returns a copy in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}
