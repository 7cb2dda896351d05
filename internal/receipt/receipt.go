// Package receipt renders a printable plain-text receipt for one order.
package receipt

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/andreasstove999/tableorder/internal/money"
	"github.com/andreasstove999/tableorder/internal/order"
)

const timeLayout = "2006-01-02 15:04"

// Render writes o as a receipt with its timestamp in the business offset.
func Render(w io.Writer, o order.Normalized, offsetMinutes int) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Order #%s\n", o.ID)
	fmt.Fprintf(&b, "Table %s\n", o.TableNumber)
	fmt.Fprintf(&b, "%s\n", o.CreatedAt.In(order.Zone(offsetMinutes)).Format(timeLayout))
	fmt.Fprintf(&b, "Status: %s\n", o.Status)
	b.WriteString(strings.Repeat("-", 32) + "\n")

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, it := range o.Items {
		total := it.Total
		if total.IsZero() {
			total = money.LineTotal(it.Price, it.Quantity)
		}
		unit := it.Unit
		if unit != "" {
			unit = " " + unit
		}
		fmt.Fprintf(tw, "%s\tx%d%s\t%s\n", it.Name, it.Quantity, unit, money.Format(total))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	b.WriteString(strings.Repeat("-", 32) + "\n")
	fmt.Fprintf(&b, "Total: %s\n", money.Format(o.TotalAmount))

	_, err := io.WriteString(w, b.String())
	return err
}
