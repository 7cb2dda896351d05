package order

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// NepalOffsetMinutes is UTC+5:45.
const NepalOffsetMinutes = 5*60 + 45

// Zone returns a fixed zone for offsetMinutes east of UTC.
func Zone(offsetMinutes int) *time.Location {
	return time.FixedZone("business", offsetMinutes*60)
}

// LocalDate formats the calendar date of t in the fixed business offset.
func LocalDate(t time.Time, offsetMinutes int) string {
	return t.In(Zone(offsetMinutes)).Format(dateLayout)
}

// BucketByLocalDate groups orders by their business-local calendar date.
func BucketByLocalDate(orders []Normalized, offsetMinutes int) map[string][]Normalized {
	out := make(map[string][]Normalized)
	for _, o := range orders {
		d := LocalDate(o.CreatedAt, offsetMinutes)
		out[d] = append(out[d], o)
	}
	return out
}

// Revenue sums order totals, skipping cancelled orders.
func Revenue(orders []Normalized) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		if o.Status == StatusCancelled {
			continue
		}
		total = total.Add(o.TotalAmount)
	}
	return total
}

// TrailingDates returns the n local dates ending with the date of now, oldest
// first.
func TrailingDates(now time.Time, n, offsetMinutes int) []string {
	if n <= 0 {
		return nil
	}
	local := now.In(Zone(offsetMinutes))
	day := time.Date(local.Year(), local.Month(), local.Day(), 12, 0, 0, 0, local.Location())
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[n-1-i] = day.AddDate(0, 0, -i).Format(dateLayout)
	}
	return out
}

// DaySummary is one row of a revenue report.
type DaySummary struct {
	Date      string          `json:"date"`
	Orders    int             `json:"orders"`
	Cancelled int             `json:"cancelled"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// Summarize builds one row per trailing date, including empty days.
func Summarize(orders []Normalized, now time.Time, days, offsetMinutes int) []DaySummary {
	buckets := BucketByLocalDate(orders, offsetMinutes)
	dates := TrailingDates(now, days, offsetMinutes)
	out := make([]DaySummary, 0, len(dates))
	for _, d := range dates {
		b := buckets[d]
		row := DaySummary{Date: d, Orders: len(b), Revenue: Revenue(b)}
		for _, o := range b {
			if o.Status == StatusCancelled {
				row.Cancelled++
			}
		}
		out = append(out, row)
	}
	return out
}

// SortNewestFirst orders by creation time descending, id descending on ties.
func SortNewestFirst(orders []Normalized) {
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return lessID(orders[j].ID, orders[i].ID)
	})
}

// lessID compares numeric ids numerically and everything else lexically.
func lessID(a, b string) bool {
	if len(a) != len(b) && isDigits(a) && isDigits(b) {
		return len(a) < len(b)
	}
	return a < b
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
