package report

import (
	"context"
	"log"
	"time"

	"github.com/andreasstove999/tableorder/internal/order"
)

type Service struct {
	repo   Repository
	logger *log.Logger
}

func NewService(repo Repository, logger *log.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record stores the per-day summaries of a branch.
func (s *Service) Record(ctx context.Context, branchID string, days []order.DaySummary) error {
	rows := make([]DailyRevenue, 0, len(days))
	for _, d := range days {
		rows = append(rows, DailyRevenue{
			BranchID:     branchID,
			BusinessDate: d.Date,
			Orders:       d.Orders,
			Cancelled:    d.Cancelled,
			Revenue:      d.Revenue,
		})
	}
	if err := s.repo.UpsertDaily(ctx, rows); err != nil {
		return err
	}
	s.logger.Printf("revenue: stored %d day(s) for branch %s", len(rows), branchID)
	return nil
}

// History returns stored rollups for the n business days ending at now.
func (s *Service) History(ctx context.Context, branchID string, now time.Time, n, offsetMinutes int) ([]DailyRevenue, error) {
	dates := order.TrailingDates(now, n, offsetMinutes)
	if len(dates) == 0 {
		return nil, nil
	}
	return s.repo.ListRange(ctx, branchID, dates[0], dates[len(dates)-1])
}
