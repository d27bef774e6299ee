package notifications

import "context"

type StoreAPI interface {
	CreateNotification(ctx context.Context, orgID, userID, ntype, title, body string) error
	UserEmail(ctx context.Context, orgID, userID string) (string, error)
	ListNotifications(ctx context.Context, orgID, userID string, limit, offset int) ([]Notification, error)
	CountUnread(ctx context.Context, orgID, userID string) (int, error)
	MarkRead(ctx context.Context, orgID, userID, notificationID string) error
	MarkAllRead(ctx context.Context, orgID, userID string) error
	EmailSettings(ctx context.Context, orgID string) (bool, string, error)
	UpdateSettings(ctx context.Context, orgID string, enabled bool, from string) error
}
