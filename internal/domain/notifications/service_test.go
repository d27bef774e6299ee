package notifications

import (
	"context"
	"errors"
	"testing"
)

type stubNotifStore struct {
	created      []Notification
	emailEnabled bool
	emailFrom    string
	userEmail    string
}

func (s *stubNotifStore) CreateNotification(ctx context.Context, orgID, userID, ntype, title, body string) error {
	s.created = append(s.created, Notification{Type: ntype, Title: title, Body: body})
	return nil
}

func (s *stubNotifStore) UserEmail(ctx context.Context, orgID, userID string) (string, error) {
	return s.userEmail, nil
}

func (s *stubNotifStore) ListNotifications(ctx context.Context, orgID, userID string, limit, offset int) ([]Notification, error) {
	return s.created, nil
}

func (s *stubNotifStore) CountUnread(ctx context.Context, orgID, userID string) (int, error) {
	return len(s.created), nil
}

func (s *stubNotifStore) MarkRead(ctx context.Context, orgID, userID, notificationID string) error {
	return nil
}

func (s *stubNotifStore) MarkAllRead(ctx context.Context, orgID, userID string) error {
	return nil
}

func (s *stubNotifStore) EmailSettings(ctx context.Context, orgID string) (bool, string, error) {
	return s.emailEnabled, s.emailFrom, nil
}

func (s *stubNotifStore) UpdateSettings(ctx context.Context, orgID string, enabled bool, from string) error {
	s.emailEnabled, s.emailFrom = enabled, from
	return nil
}

type stubMailer struct {
	sent []string
	err  error
}

func (m *stubMailer) Send(ctx context.Context, from, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

func TestCreateSendsEmailWhenEnabled(t *testing.T) {
	store := &stubNotifStore{emailEnabled: true, userEmail: "alice@example.com"}
	mailer := &stubMailer{}
	svc := New(store, mailer)

	if err := svc.Create(context.Background(), "org", "u1", TypeRequestApproved, "Approved", "Your request was approved"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected 1 stored notification, got %d", len(store.created))
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "alice@example.com" {
		t.Fatalf("expected email to alice, got %v", mailer.sent)
	}
}

func TestCreateSkipsEmailWhenDisabled(t *testing.T) {
	store := &stubNotifStore{emailEnabled: false, userEmail: "alice@example.com"}
	mailer := &stubMailer{}
	svc := New(store, mailer)

	if err := svc.Create(context.Background(), "org", "u1", TypeRequestSubmitted, "New request", ""); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("no email expected, got %v", mailer.sent)
	}
}

func TestCreateSwallowsMailerFailure(t *testing.T) {
	store := &stubNotifStore{emailEnabled: true, userEmail: "alice@example.com"}
	mailer := &stubMailer{err: errors.New("smtp down")}
	svc := New(store, mailer)

	if err := svc.Create(context.Background(), "org", "u1", TypeRequestRejected, "Rejected", ""); err != nil {
		t.Fatalf("mailer failure must not surface, got %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("notification must still be stored, got %d", len(store.created))
	}
}
