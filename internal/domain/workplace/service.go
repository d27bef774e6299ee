package workplace

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

func normalize(wp *Workplace) error {
	wp.Code = strings.ToUpper(strings.TrimSpace(wp.Code))
	wp.Name = strings.TrimSpace(wp.Name)
	if wp.Code == "" {
		return fmt.Errorf("%w: code is required", ErrValidation)
	}
	if len(wp.Code) > 16 {
		return fmt.Errorf("%w: code must be at most 16 characters", ErrValidation)
	}
	if wp.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if wp.Color != "" && !validColor(wp.Color) {
		return fmt.Errorf("%w: color must be a hex value like #5B8DEF", ErrValidation)
	}
	return nil
}

func validColor(color string) bool {
	if len(color) != 7 || color[0] != '#' {
		return false
	}
	for _, c := range color[1:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

func (s *Service) Get(ctx context.Context, orgID, workplaceID string) (*Workplace, error) {
	return s.Store.Get(ctx, orgID, workplaceID)
}

func (s *Service) List(ctx context.Context, orgID string, filter ListFilter) (ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.Store.List(ctx, orgID, filter)
}

func (s *Service) Create(ctx context.Context, orgID string, wp Workplace) (string, error) {
	if err := normalize(&wp); err != nil {
		return "", err
	}
	return s.Store.Create(ctx, orgID, wp)
}

func (s *Service) Update(ctx context.Context, orgID string, wp Workplace) error {
	if wp.ID == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	if err := normalize(&wp); err != nil {
		return err
	}
	return s.Store.Update(ctx, orgID, wp)
}

func (s *Service) Archive(ctx context.Context, orgID, workplaceID string) error {
	return s.Store.Archive(ctx, orgID, workplaceID)
}

func (s *Service) Restore(ctx context.Context, orgID, workplaceID string) error {
	return s.Store.Restore(ctx, orgID, workplaceID)
}

func (s *Service) Delete(ctx context.Context, orgID, workplaceID string) error {
	return s.Store.Delete(ctx, orgID, workplaceID)
}
