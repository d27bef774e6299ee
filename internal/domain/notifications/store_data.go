package notifications

import "context"

func (s *Store) CreateNotification(ctx context.Context, orgID, userID, ntype, title, body string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO notifications (org_id, user_id, type, title, body)
    VALUES ($1,$2,$3,$4,$5)
  `, orgID, userID, ntype, title, body)
	return err
}

func (s *Store) UserEmail(ctx context.Context, orgID, userID string) (string, error) {
	var email string
	if err := s.DB.QueryRow(ctx, "SELECT email FROM users WHERE org_id = $1 AND id = $2", orgID, userID).Scan(&email); err != nil {
		return "", err
	}
	return email, nil
}

func (s *Store) ListNotifications(ctx context.Context, orgID, userID string, limit, offset int) ([]Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, type, title, COALESCE(body, ''), read_at, created_at
    FROM notifications
    WHERE org_id = $1 AND user_id = $2
    ORDER BY created_at DESC
    LIMIT $3 OFFSET $4
  `, orgID, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) CountUnread(ctx context.Context, orgID, userID string) (int, error) {
	var total int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM notifications
    WHERE org_id = $1 AND user_id = $2 AND read_at IS NULL
  `, orgID, userID).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) MarkRead(ctx context.Context, orgID, userID, notificationID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read_at = now()
    WHERE org_id = $1 AND user_id = $2 AND id = $3 AND read_at IS NULL
  `, orgID, userID, notificationID)
	return err
}

func (s *Store) MarkAllRead(ctx context.Context, orgID, userID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read_at = now()
    WHERE org_id = $1 AND user_id = $2 AND read_at IS NULL
  `, orgID, userID)
	return err
}

func (s *Store) EmailSettings(ctx context.Context, orgID string) (bool, string, error) {
	var enabled bool
	var from string
	if err := s.DB.QueryRow(ctx, `
    SELECT email_notifications_enabled, COALESCE(email_from, '')
    FROM org_settings
    WHERE org_id = $1
  `, orgID).Scan(&enabled, &from); err != nil {
		return false, "", err
	}
	return enabled, from, nil
}

func (s *Store) UpdateSettings(ctx context.Context, orgID string, enabled bool, from string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO org_settings (org_id, email_notifications_enabled, email_from)
    VALUES ($1,$2,$3)
    ON CONFLICT (org_id) DO UPDATE
      SET email_notifications_enabled = EXCLUDED.email_notifications_enabled,
          email_from = EXCLUDED.email_from,
          updated_at = now()
  `, orgID, enabled, nullIfEmpty(from))
	return err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
