package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyRevenue is the persisted rollup of one branch's business day.
type DailyRevenue struct {
	BranchID     string          `json:"branchId"`
	BusinessDate string          `json:"date"`
	Orders       int             `json:"orders"`
	Cancelled    int             `json:"cancelled"`
	Revenue      decimal.Decimal `json:"revenue"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}
