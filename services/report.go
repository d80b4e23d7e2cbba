package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ray-remotestate/dinein/models"
)

const dateLayout = "2006-01-02"

type ReportService struct {
	reports ReportRepository
	now     Clock
}

func NewReportService(reports ReportRepository) *ReportService {
	return &ReportService{reports: reports, now: time.Now}
}

// Daily reports the given day and the month containing it. An empty date
// means today. Days and months are UTC.
func (s *ReportService) Daily(ctx context.Context, restaurantID uuid.UUID, date string) (*models.Report, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	day := s.now().UTC().Truncate(24 * time.Hour)
	if date != "" {
		parsed, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, invalid("date must be formatted as %s", dateLayout)
		}
		day = parsed
	}
	monthStart := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)

	daily, err := s.reports.Totals(ctx, restaurantID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	monthly, err := s.reports.Totals(ctx, restaurantID, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, fmt.Errorf("monthly totals: %w", err)
	}
	return &models.Report{
		Date:    day.Format(dateLayout),
		Month:   monthStart.Format("2006-01"),
		Daily:   daily,
		Monthly: monthly,
	}, nil
}
