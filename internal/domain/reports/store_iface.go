package reports

import "context"

type StoreAPI interface {
	Upsert(ctx context.Context, orgID string, report WorkReport) (string, error)
	ListByRange(ctx context.Context, orgID string, filter RangeFilter) ([]WorkReport, error)
	Delete(ctx context.Context, orgID, userID, reportID string) error
	Statistics(ctx context.Context, orgID string, filter RangeFilter) ([]Statistic, error)
	ExportRows(ctx context.Context, orgID string, filter RangeFilter) ([]ExportRow, error)
}
