package planner

import (
	"context"
	"time"

	"rota/internal/domain/schedule"
)

type StoreAPI interface {
	Records(ctx context.Context, orgID string, from, to time.Time, status, userID string) ([]Record, error)
	Extent(ctx context.Context, orgID, status, userID string) (time.Time, time.Time, bool, error)
}

type Service struct {
	Store StoreAPI
	Now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store, Now: time.Now}
}

// Matrix builds the planner grid. Archived assignments are excluded unless
// the status filter names them; an open window is bounded to the records'
// extent, falling back to the current week when nothing matches.
func (s *Service) Matrix(ctx context.Context, orgID string, params Params) (Matrix, error) {
	return s.matrix(ctx, orgID, "", params)
}

// Personal is the mini-planner for one employee, grouped by workplace.
func (s *Service) Personal(ctx context.Context, orgID, userID string, params Params) (Matrix, error) {
	params.Mode = ModeByWorkplace
	return s.matrix(ctx, orgID, userID, params)
}

func (s *Service) matrix(ctx context.Context, orgID, userID string, params Params) (Matrix, error) {
	if params.Mode == "" {
		params.Mode = ModeByEmployee
	}
	status := params.Status
	if status == "" {
		status = schedule.StatusActive
	}

	if params.From.IsZero() || params.To.IsZero() {
		from, to, ok, err := s.Store.Extent(ctx, orgID, status, userID)
		if err != nil {
			return Matrix{}, err
		}
		if !ok {
			from, to = currentWeek(s.Now().UTC())
		}
		if params.From.IsZero() {
			params.From = from
		}
		if params.To.IsZero() {
			params.To = to
		}
	}

	records, err := s.Store.Records(ctx, orgID, params.From, params.To, status, userID)
	if err != nil {
		return Matrix{}, err
	}
	return Assemble(records, params), nil
}

func currentWeek(now time.Time) (time.Time, time.Time) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(midnight.Weekday()) + 6) % 7 // Monday start
	weekStart := midnight.AddDate(0, 0, -offset)
	return weekStart, weekStart.AddDate(0, 0, 7)
}
