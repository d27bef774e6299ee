package workplace

import (
	"context"
	"errors"
	"testing"
)

type stubWorkplaceStore struct {
	byCode  map[string]string
	byID    map[string]Workplace
	nextID  int
	lastGot Workplace
}

func newStubWorkplaceStore() *stubWorkplaceStore {
	return &stubWorkplaceStore{byCode: map[string]string{}, byID: map[string]Workplace{}}
}

func (s *stubWorkplaceStore) Get(ctx context.Context, orgID, workplaceID string) (*Workplace, error) {
	wp, ok := s.byID[workplaceID]
	if !ok {
		return nil, ErrNotFound
	}
	return &wp, nil
}

func (s *stubWorkplaceStore) List(ctx context.Context, orgID string, filter ListFilter) (ListResult, error) {
	result := ListResult{}
	for _, wp := range s.byID {
		if !filter.IncludeArchived && !wp.Active {
			continue
		}
		result.Workplaces = append(result.Workplaces, wp)
	}
	result.Total = len(result.Workplaces)
	return result, nil
}

func (s *stubWorkplaceStore) Create(ctx context.Context, orgID string, wp Workplace) (string, error) {
	if _, exists := s.byCode[wp.Code]; exists {
		return "", ErrDuplicateCode
	}
	s.nextID++
	id := string(rune('a' + s.nextID))
	wp.ID = id
	wp.Active = true
	s.byCode[wp.Code] = id
	s.byID[id] = wp
	s.lastGot = wp
	return id, nil
}

func (s *stubWorkplaceStore) Update(ctx context.Context, orgID string, wp Workplace) error {
	if _, ok := s.byID[wp.ID]; !ok {
		return ErrNotFound
	}
	s.byID[wp.ID] = wp
	return nil
}

func (s *stubWorkplaceStore) Archive(ctx context.Context, orgID, workplaceID string) error {
	wp, ok := s.byID[workplaceID]
	if !ok {
		return ErrNotFound
	}
	wp.Active = false
	s.byID[workplaceID] = wp
	return nil
}

func (s *stubWorkplaceStore) Restore(ctx context.Context, orgID, workplaceID string) error {
	wp, ok := s.byID[workplaceID]
	if !ok {
		return ErrNotFound
	}
	wp.Active = true
	s.byID[workplaceID] = wp
	return nil
}

func (s *stubWorkplaceStore) Delete(ctx context.Context, orgID, workplaceID string) error {
	if _, ok := s.byID[workplaceID]; !ok {
		return ErrNotFound
	}
	delete(s.byID, workplaceID)
	return nil
}

func TestCreateNormalizesCode(t *testing.T) {
	store := newStubWorkplaceStore()
	svc := NewService(store)

	if _, err := svc.Create(context.Background(), "org", Workplace{Code: "  hq ", Name: "Headquarters"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if store.lastGot.Code != "HQ" {
		t.Fatalf("code must be trimmed and uppercased, got %q", store.lastGot.Code)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newStubWorkplaceStore())

	cases := []Workplace{
		{Name: "No Code"},
		{Code: "HQ"},
		{Code: "HQ", Name: "Bad Color", Color: "blue"},
		{Code: "THISCODEISWAYTOOLONG", Name: "Long"},
	}
	for _, wp := range cases {
		if _, err := svc.Create(context.Background(), "org", wp); !errors.Is(err, ErrValidation) {
			t.Fatalf("workplace %+v must fail validation, got %v", wp, err)
		}
	}

	if _, err := svc.Create(context.Background(), "org", Workplace{Code: "HQ", Name: "OK", Color: "#5B8DEF"}); err != nil {
		t.Fatalf("valid hex color rejected: %v", err)
	}
}

func TestCreateDuplicateCode(t *testing.T) {
	svc := NewService(newStubWorkplaceStore())

	if _, err := svc.Create(context.Background(), "org", Workplace{Code: "HQ", Name: "First"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err := svc.Create(context.Background(), "org", Workplace{Code: "hq", Name: "Second"})
	if !errors.Is(err, ErrDuplicateCode) {
		t.Fatalf("duplicate code must be rejected, got %v", err)
	}
}

func TestArchiveHidesFromDefaultList(t *testing.T) {
	store := newStubWorkplaceStore()
	svc := NewService(store)

	id, err := svc.Create(context.Background(), "org", Workplace{Code: "WH1", Name: "Warehouse"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Archive(context.Background(), "org", id); err != nil {
		t.Fatalf("archive failed: %v", err)
	}

	visible, err := svc.List(context.Background(), "org", ListFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if visible.Total != 0 {
		t.Fatalf("archived workplace must be hidden by default, got %d", visible.Total)
	}

	all, err := svc.List(context.Background(), "org", ListFilter{IncludeArchived: true})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if all.Total != 1 {
		t.Fatalf("archived workplace must appear with IncludeArchived, got %d", all.Total)
	}

	if err := svc.Restore(context.Background(), "org", id); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	visible, _ = svc.List(context.Background(), "org", ListFilter{})
	if visible.Total != 1 {
		t.Fatalf("restored workplace must be visible again, got %d", visible.Total)
	}
}
