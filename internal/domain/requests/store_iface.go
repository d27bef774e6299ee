package requests

import "context"

type StoreAPI interface {
	CreateAdjustment(ctx context.Context, orgID string, req AdjustmentRequest) (string, error)
	GetAdjustment(ctx context.Context, orgID, requestID string) (*AdjustmentRequest, error)
	ListAdjustments(ctx context.Context, orgID string, filter ListFilter) (AdjustmentList, error)
	DecideAdjustment(ctx context.Context, orgID, requestID string, decision Decision) error

	CreateAssignmentRequest(ctx context.Context, orgID string, req AssignmentRequest) (string, error)
	GetAssignmentRequest(ctx context.Context, orgID, requestID string) (*AssignmentRequest, error)
	ListAssignmentRequests(ctx context.Context, orgID string, filter ListFilter) (AssignmentList, error)
	DecideAssignmentRequest(ctx context.Context, orgID, requestID string, decision Decision) (string, error)
}
