package auth

import (
	"context"
	"time"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	return s.Store.FindActiveUserByEmail(ctx, email)
}

func (s *Service) UserByID(ctx context.Context, userID string) (AuthUser, error) {
	return s.Store.UserByID(ctx, userID)
}

func (s *Service) CreateSession(ctx context.Context, userID, refreshTokenHash string, expires time.Time) error {
	return s.Store.CreateSession(ctx, userID, refreshTokenHash, expires)
}

func (s *Service) UpdateLastLogin(ctx context.Context, userID string) error {
	return s.Store.UpdateLastLogin(ctx, userID)
}

func (s *Service) RevokeSession(ctx context.Context, userID, refreshTokenHash string) error {
	return s.Store.RevokeSession(ctx, userID, refreshTokenHash)
}

func (s *Service) SessionValid(ctx context.Context, userID, refreshTokenHash string) (bool, error) {
	return s.Store.SessionValid(ctx, userID, refreshTokenHash)
}

func (s *Service) SessionUserID(ctx context.Context, refreshTokenHash string) (string, error) {
	return s.Store.SessionUserID(ctx, refreshTokenHash)
}

func (s *Service) RotateSession(ctx context.Context, userID, oldHash, newHash string, expires time.Time) error {
	return s.Store.RotateSession(ctx, userID, oldHash, newHash, expires)
}

func (s *Service) SetTOTPSecret(ctx context.Context, userID, secret string) error {
	return s.Store.SetTOTPSecret(ctx, userID, secret)
}

func (s *Service) EnableTOTP(ctx context.Context, userID string) error {
	return s.Store.EnableTOTP(ctx, userID)
}

func (s *Service) UserIDByEmail(ctx context.Context, email string) (string, error) {
	return s.Store.UserIDByEmail(ctx, email)
}

func (s *Service) CreatePasswordReset(ctx context.Context, userID, tokenHash string, expires time.Time) error {
	return s.Store.CreatePasswordReset(ctx, userID, tokenHash, expires)
}

func (s *Service) PasswordResetUserID(ctx context.Context, tokenHash string) (string, error) {
	return s.Store.PasswordResetUserID(ctx, tokenHash)
}

func (s *Service) UpdateUserPassword(ctx context.Context, userID, hash string) error {
	return s.Store.UpdateUserPassword(ctx, userID, hash)
}

func (s *Service) MarkPasswordResetUsed(ctx context.Context, tokenHash string) error {
	return s.Store.MarkPasswordResetUsed(ctx, tokenHash)
}

func (s *Service) ListUsers(ctx context.Context, orgID string, limit, offset int) ([]User, int, error) {
	return s.Store.ListUsers(ctx, orgID, limit, offset)
}

func (s *Service) CreateUser(ctx context.Context, orgID string, u User, passwordHash string) (string, error) {
	return s.Store.CreateUser(ctx, orgID, u, passwordHash)
}

func (s *Service) UpdateUser(ctx context.Context, orgID, userID string, u User) error {
	return s.Store.UpdateUser(ctx, orgID, userID, u)
}
