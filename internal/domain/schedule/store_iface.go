package schedule

import "context"

type StoreAPI interface {
	Get(ctx context.Context, orgID, assignmentID string) (*Assignment, error)
	List(ctx context.Context, orgID string, filter ListFilter) (ListResult, error)
	Create(ctx context.Context, orgID string, a Assignment) (string, int, error)
	Update(ctx context.Context, orgID string, a Assignment) error
	Complete(ctx context.Context, orgID, assignmentID string) error
	Trash(ctx context.Context, orgID, assignmentID string) error
	Restore(ctx context.Context, orgID, assignmentID string) error
	HardDelete(ctx context.Context, orgID, assignmentID string) error
}
