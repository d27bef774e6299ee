package reports

import (
	"context"
	"fmt"
	"time"
)

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

// maxDailyHours caps a single day's report; a day has 24 hours.
const maxDailyHours = 24

func (s *Service) Submit(ctx context.Context, orgID string, report WorkReport) (string, error) {
	if report.UserID == "" {
		return "", fmt.Errorf("%w: user is required", ErrValidation)
	}
	if report.WorkDate.IsZero() {
		return "", fmt.Errorf("%w: date is required", ErrValidation)
	}
	if report.Hours < 0 || report.Hours > maxDailyHours {
		return "", fmt.Errorf("%w: hours must be between 0 and %d", ErrValidation, maxDailyHours)
	}
	report.WorkDate = report.WorkDate.Truncate(24 * time.Hour)
	return s.Store.Upsert(ctx, orgID, report)
}

func (s *Service) List(ctx context.Context, orgID string, filter RangeFilter) ([]WorkReport, error) {
	if err := validateRange(&filter); err != nil {
		return nil, err
	}
	return s.Store.ListByRange(ctx, orgID, filter)
}

func (s *Service) Delete(ctx context.Context, orgID, userID, reportID string) error {
	return s.Store.Delete(ctx, orgID, userID, reportID)
}

func (s *Service) Statistics(ctx context.Context, orgID string, filter RangeFilter) ([]Statistic, error) {
	if err := validateRange(&filter); err != nil {
		return nil, err
	}
	return s.Store.Statistics(ctx, orgID, filter)
}

// validateRange fills a missing range with the current month and rejects
// an inverted one. To stays exclusive.
func validateRange(filter *RangeFilter) error {
	if filter.From.IsZero() && filter.To.IsZero() {
		now := time.Now().UTC()
		filter.From = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		filter.To = filter.From.AddDate(0, 1, 0)
		return nil
	}
	if filter.From.IsZero() || filter.To.IsZero() {
		return fmt.Errorf("%w: both ends of the range are required", ErrValidation)
	}
	if filter.To.Before(filter.From) {
		return fmt.Errorf("%w: range end before start", ErrValidation)
	}
	return nil
}
