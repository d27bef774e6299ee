package requests

import (
	"context"
	"fmt"
	"time"

	"rota/internal/domain/schedule"
)

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

func validateProposal(proposed []DayProposal) error {
	for _, dayProposal := range proposed {
		if _, err := time.Parse("2006-01-02", dayProposal.Date); err != nil {
			return fmt.Errorf("%w: bad date %q", ErrValidation, dayProposal.Date)
		}
		for _, interval := range dayProposal.Intervals {
			if interval.End.Before(interval.Start) {
				return fmt.Errorf("%w: interval end before start on %s", ErrValidation, dayProposal.Date)
			}
			if interval.Kind != "" {
				known := false
				for _, kind := range schedule.ShiftKinds {
					if interval.Kind == kind {
						known = true
						break
					}
				}
				if !known {
					return fmt.Errorf("%w: unknown shift kind %q", ErrValidation, interval.Kind)
				}
			}
		}
	}
	return nil
}

func (s *Service) SubmitAdjustment(ctx context.Context, orgID string, req AdjustmentRequest) (string, error) {
	if req.AssignmentID == "" {
		return "", fmt.Errorf("%w: assignment is required", ErrValidation)
	}
	if len(req.ProposedDays) == 0 {
		return "", fmt.Errorf("%w: a proposal needs at least one day", ErrValidation)
	}
	if err := validateProposal(req.ProposedDays); err != nil {
		return "", err
	}
	return s.Store.CreateAdjustment(ctx, orgID, req)
}

func (s *Service) GetAdjustment(ctx context.Context, orgID, requestID string) (*AdjustmentRequest, error) {
	return s.Store.GetAdjustment(ctx, orgID, requestID)
}

func (s *Service) ListAdjustments(ctx context.Context, orgID string, filter ListFilter) (AdjustmentList, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.Store.ListAdjustments(ctx, orgID, filter)
}

func (s *Service) DecideAdjustment(ctx context.Context, orgID, requestID string, decision Decision) error {
	return s.Store.DecideAdjustment(ctx, orgID, requestID, decision)
}

func (s *Service) SubmitAssignmentRequest(ctx context.Context, orgID string, req AssignmentRequest) (string, error) {
	if req.WorkplaceID == "" {
		return "", fmt.Errorf("%w: workplace is required", ErrValidation)
	}
	if req.StartAt.IsZero() {
		return "", fmt.Errorf("%w: start is required", ErrValidation)
	}
	if req.EndAt != nil && req.EndAt.Before(req.StartAt) {
		return "", fmt.Errorf("%w: end before start", ErrValidation)
	}
	if err := validateProposal(req.ProposedDays); err != nil {
		return "", err
	}
	return s.Store.CreateAssignmentRequest(ctx, orgID, req)
}

func (s *Service) GetAssignmentRequest(ctx context.Context, orgID, requestID string) (*AssignmentRequest, error) {
	return s.Store.GetAssignmentRequest(ctx, orgID, requestID)
}

func (s *Service) ListAssignmentRequests(ctx context.Context, orgID string, filter ListFilter) (AssignmentList, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.Store.ListAssignmentRequests(ctx, orgID, filter)
}

// DecideAssignmentRequest returns the created assignment ID on approval.
func (s *Service) DecideAssignmentRequest(ctx context.Context, orgID, requestID string, decision Decision) (string, error) {
	return s.Store.DecideAssignmentRequest(ctx, orgID, requestID, decision)
}
