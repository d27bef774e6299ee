package workplace

import "context"

type StoreAPI interface {
	Get(ctx context.Context, orgID, workplaceID string) (*Workplace, error)
	List(ctx context.Context, orgID string, filter ListFilter) (ListResult, error)
	Create(ctx context.Context, orgID string, wp Workplace) (string, error)
	Update(ctx context.Context, orgID string, wp Workplace) error
	Archive(ctx context.Context, orgID, workplaceID string) error
	Restore(ctx context.Context, orgID, workplaceID string) error
	Delete(ctx context.Context, orgID, workplaceID string) error
}
