package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type AuthUser struct {
	ID         string
	OrgID      string
	Role       string
	FullName   string
	Password   string
	TOTPSecret string
	TOTPActive bool
}

func (s *Store) FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var out AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT id, org_id, role, full_name, password_hash,
           COALESCE(totp_secret, ''), totp_enabled
    FROM users
    WHERE email = $1 AND active
  `, email).Scan(&out.ID, &out.OrgID, &out.Role, &out.FullName, &out.Password, &out.TOTPSecret, &out.TOTPActive)
	return out, err
}

func (s *Store) CreateSession(ctx context.Context, userID, refreshTokenHash string, expires time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO sessions (user_id, refresh_token, expires_at)
    VALUES ($1,$2,$3)
  `, userID, refreshTokenHash, expires)
	return err
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", userID)
	return err
}

func (s *Store) RevokeSession(ctx context.Context, userID, refreshTokenHash string) error {
	_, err := s.DB.Exec(ctx, "UPDATE sessions SET revoked_at = now() WHERE user_id = $1 AND refresh_token = $2", userID, refreshTokenHash)
	return err
}

func (s *Store) SessionValid(ctx context.Context, userID, refreshTokenHash string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM sessions
    WHERE user_id = $1 AND refresh_token = $2 AND expires_at > now() AND revoked_at IS NULL
  `, userID, refreshTokenHash).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// SessionUserID resolves a live session to its user. Used by the refresh
// flow, where the access token may already be expired.
func (s *Store) SessionUserID(ctx context.Context, refreshTokenHash string) (string, error) {
	var userID string
	err := s.DB.QueryRow(ctx, `
    SELECT user_id
    FROM sessions
    WHERE refresh_token = $1 AND expires_at > now() AND revoked_at IS NULL
  `, refreshTokenHash).Scan(&userID)
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *Store) RotateSession(ctx context.Context, userID, oldHash, newHash string, expires time.Time) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE sessions
    SET refresh_token = $1, expires_at = $2, rotated_at = now()
    WHERE user_id = $3 AND refresh_token = $4
  `, newHash, expires, userID, oldHash)
	return err
}

func (s *Store) UserByID(ctx context.Context, userID string) (AuthUser, error) {
	var out AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT id, org_id, role, full_name, password_hash,
           COALESCE(totp_secret, ''), totp_enabled
    FROM users
    WHERE id = $1 AND active
  `, userID).Scan(&out.ID, &out.OrgID, &out.Role, &out.FullName, &out.Password, &out.TOTPSecret, &out.TOTPActive)
	return out, err
}

func (s *Store) SetTOTPSecret(ctx context.Context, userID, secret string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET totp_secret = $1, totp_enabled = FALSE WHERE id = $2", secret, userID)
	return err
}

func (s *Store) EnableTOTP(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET totp_enabled = TRUE WHERE id = $1", userID)
	return err
}

func (s *Store) UserIDByEmail(ctx context.Context, email string) (string, error) {
	var userID string
	if err := s.DB.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&userID); err != nil {
		return "", err
	}
	return userID, nil
}

func (s *Store) CreatePasswordReset(ctx context.Context, userID, tokenHash string, expires time.Time) error {
	_, err := s.DB.Exec(ctx, "INSERT INTO password_resets (user_id, token, expires_at) VALUES ($1, $2, $3)", userID, tokenHash, expires)
	return err
}

func (s *Store) PasswordResetUserID(ctx context.Context, tokenHash string) (string, error) {
	var userID string
	err := s.DB.QueryRow(ctx, `
    SELECT user_id
    FROM password_resets
    WHERE token = $1 AND expires_at > now() AND used_at IS NULL
  `, tokenHash).Scan(&userID)
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, userID, hash string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET password_hash = $1 WHERE id = $2", hash, userID)
	return err
}

func (s *Store) MarkPasswordResetUsed(ctx context.Context, tokenHash string) error {
	_, err := s.DB.Exec(ctx, "UPDATE password_resets SET used_at = now() WHERE token = $1", tokenHash)
	return err
}

func (s *Store) ListUsers(ctx context.Context, orgID string, limit, offset int) ([]User, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE org_id = $1", orgID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT id, org_id, full_name, email, role, active, created_at
    FROM users
    WHERE org_id = $1
    ORDER BY full_name, email
    LIMIT $2 OFFSET $3
  `, orgID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.OrgID, &u.FullName, &u.Email, &u.Role, &u.Active, &u.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, orgID string, u User, passwordHash string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (org_id, full_name, email, role, password_hash, active)
    VALUES ($1,$2,$3,$4,$5,TRUE)
    RETURNING id
  `, orgID, u.FullName, u.Email, u.Role, passwordHash).Scan(&id)
	return id, err
}

func (s *Store) UpdateUser(ctx context.Context, orgID, userID string, u User) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE users
    SET full_name = $1, role = $2, active = $3
    WHERE org_id = $4 AND id = $5
  `, u.FullName, u.Role, u.Active, orgID, userID)
	return err
}
