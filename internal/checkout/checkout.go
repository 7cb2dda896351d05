// Package checkout turns a cart into a backend order.
package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/andreasstove999/tableorder/internal/cart"
	"github.com/andreasstove999/tableorder/internal/clients"
	"github.com/andreasstove999/tableorder/internal/notify"
	"github.com/andreasstove999/tableorder/internal/order"
	"github.com/andreasstove999/tableorder/internal/session"
)

// ValidationError lists everything wrong with a submission. It is returned
// before any request is made.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid order: " + strings.Join(e.Problems, "; ")
}

type OrderCreator interface {
	Create(ctx context.Context, req clients.CreateOrderRequest, idempotencyKey string) (order.Order, error)
}

type Option func(*submission)

type submission struct {
	phone string
}

// WithCustomerPhone attaches a contact number; it must be exactly 10 digits.
func WithCustomerPhone(phone string) Option {
	return func(s *submission) { s.phone = strings.TrimSpace(phone) }
}

type Service struct {
	orders   OrderCreator
	notifier notify.Notifier
	newKey   func() string
}

func New(orders OrderCreator, notifier notify.Notifier) *Service {
	return &Service{orders: orders, notifier: notifier, newKey: uuid.NewString}
}

// Submit validates the cart, posts it as a pending order and clears the cart
// on success. On any failure the cart is left exactly as it was.
func (s *Service) Submit(ctx context.Context, c *cart.Cart, sess session.Session, opts ...Option) (order.Order, error) {
	var sub submission
	for _, o := range opts {
		o(&sub)
	}

	req, err := buildRequest(c, sess, sub)
	if err != nil {
		return order.Order{}, err
	}

	created, err := s.orders.Create(ctx, req, s.newKey())
	if err != nil {
		notify.Send(ctx, s.notifier, notify.Notice{
			Kind:        notify.KindError,
			Message:     "Could not place order, please try again",
			TableNumber: sess.TableNumber,
		})
		return order.Order{}, fmt.Errorf("submit order: %w", err)
	}

	c.Clear()
	notify.Send(ctx, s.notifier, notify.Notice{
		Kind:        notify.KindOrderPlaced,
		Message:     fmt.Sprintf("Order placed for table %s", sess.TableNumber),
		OrderID:     created.ID.String(),
		TableNumber: sess.TableNumber,
		Status:      order.StatusPending.String(),
	})
	return created, nil
}

func buildRequest(c *cart.Cart, sess session.Session, sub submission) (clients.CreateOrderRequest, error) {
	var problems []string
	if c == nil || c.IsEmpty() {
		problems = append(problems, "cart is empty")
	}
	tableNum, err := sess.TableNumberInt()
	if err != nil {
		problems = append(problems, "table number must be a positive integer")
	}
	if strings.TrimSpace(sess.TableID) == "" {
		problems = append(problems, "table id is required")
	}
	if strings.TrimSpace(sess.SessionToken) == "" {
		problems = append(problems, "table session token is required")
	}
	if sub.phone != "" && !validPhone(sub.phone) {
		problems = append(problems, "phone number must be 10 digits")
	}

	var items []clients.CreateOrderItem
	if c != nil {
		for _, l := range c.Lines() {
			if l.Item.ID == "" {
				problems = append(problems, fmt.Sprintf("%q has no menu id", l.Item.Name))
				continue
			}
			items = append(items, clients.CreateOrderItem{
				MenuID:   l.Item.ID,
				Name:     l.Item.Name,
				Unit:     l.Item.Unit,
				Quantity: l.Quantity,
				Price:    l.Item.Price,
				Total:    l.Total(),
			})
		}
	}
	if len(problems) > 0 {
		return clients.CreateOrderRequest{}, &ValidationError{Problems: problems}
	}

	return clients.CreateOrderRequest{
		Table:         sess.TableID,
		TableNumber:   tableNum,
		Items:         items,
		TotalPrice:    c.TotalPrice(),
		Status:        order.StatusPending.BackendValue(),
		SessionToken:  sess.SessionToken,
		CustomerPhone: sub.phone,
	}, nil
}

func validPhone(p string) bool {
	if len(p) != 10 {
		return false
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
