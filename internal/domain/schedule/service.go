package schedule

import (
	"context"
	"fmt"
)

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

// CreateResult carries the new assignment ID plus the advisory count of
// ACTIVE assignments the employee already held before this one.
type CreateResult struct {
	ID          string `json:"id"`
	ActiveCount int    `json:"activeCount"`
}

func validateAssignment(a Assignment) error {
	if a.UserID == "" || a.WorkplaceID == "" {
		return fmt.Errorf("%w: employee and workplace are required", ErrValidation)
	}
	if a.Status != StatusActive && a.Status != StatusArchived {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, a.Status)
	}
	if a.StartAt.IsZero() {
		return fmt.Errorf("%w: start is required", ErrValidation)
	}
	if a.EndAt != nil && a.EndAt.Before(a.StartAt) {
		return fmt.Errorf("%w: end before start", ErrValidation)
	}
	for _, sh := range a.Shifts {
		if err := validateShift(sh); err != nil {
			return err
		}
	}
	return nil
}

func validateShift(sh Shift) error {
	if sh.EndAt.Before(sh.StartAt) {
		return fmt.Errorf("%w: shift end before start", ErrValidation)
	}
	known := false
	for _, kind := range ShiftKinds {
		if sh.Kind == kind {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: unknown shift kind %q", ErrValidation, sh.Kind)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, orgID, assignmentID string) (*Assignment, error) {
	return s.Store.Get(ctx, orgID, assignmentID)
}

func (s *Service) List(ctx context.Context, orgID string, filter ListFilter) (ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.Store.List(ctx, orgID, filter)
}

func (s *Service) Create(ctx context.Context, orgID string, a Assignment) (CreateResult, error) {
	if a.Status == "" {
		a.Status = StatusActive
	}
	if err := validateAssignment(a); err != nil {
		return CreateResult{}, err
	}
	id, activeCount, err := s.Store.Create(ctx, orgID, a)
	if err != nil {
		return CreateResult{}, err
	}
	return CreateResult{ID: id, ActiveCount: activeCount}, nil
}

func (s *Service) Update(ctx context.Context, orgID string, a Assignment) error {
	if a.ID == "" {
		return fmt.Errorf("%w: assignment id is required", ErrValidation)
	}
	if err := validateAssignment(a); err != nil {
		return err
	}
	return s.Store.Update(ctx, orgID, a)
}

func (s *Service) Complete(ctx context.Context, orgID, assignmentID string) error {
	return s.Store.Complete(ctx, orgID, assignmentID)
}

func (s *Service) Trash(ctx context.Context, orgID, assignmentID string) error {
	return s.Store.Trash(ctx, orgID, assignmentID)
}

func (s *Service) Restore(ctx context.Context, orgID, assignmentID string) error {
	return s.Store.Restore(ctx, orgID, assignmentID)
}

func (s *Service) HardDelete(ctx context.Context, orgID, assignmentID string) error {
	return s.Store.HardDelete(ctx, orgID, assignmentID)
}
