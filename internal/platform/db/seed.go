package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"rota/internal/domain/auth"
	"rota/internal/platform/config"
)

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	orgID, err := ensureOrganization(ctx, pool, cfg.SeedOrgName)
	if err != nil {
		return err
	}

	if err := ensureAdminUser(ctx, pool, orgID, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		return err
	}

	if cfg.SeedDemoWorkplaces {
		if err := ensureDemoWorkplaces(ctx, pool, orgID); err != nil {
			return err
		}
	}

	return nil
}

func ensureOrganization(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM organizations WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}

	err = pool.QueryRow(ctx, "INSERT INTO organizations (name) VALUES ($1) RETURNING id", name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, orgID, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE org_id = $1 AND email = $2", orgID, email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	return pool.QueryRow(ctx, `
    INSERT INTO users (org_id, email, full_name, password_hash, role)
    VALUES ($1, $2, 'Administrator', $3, $4)
    RETURNING id
  `, orgID, email, hash, auth.RoleSuperAdmin).Scan(&id)
}

func ensureDemoWorkplaces(ctx context.Context, pool *pgxpool.Pool, orgID string) error {
	demo := []struct {
		code  string
		name  string
		color string
	}{
		{"HQ", "Headquarters", "#2563eb"},
		{"WH1", "Warehouse One", "#16a34a"},
		{"RMT", "Remote", "#9333ea"},
	}
	for _, wp := range demo {
		_, err := pool.Exec(ctx, `
      INSERT INTO workplaces (org_id, code, name, color, active)
      VALUES ($1, $2, $3, $4, TRUE)
      ON CONFLICT (org_id, code) DO NOTHING
    `, orgID, wp.code, wp.name, wp.color)
		if err != nil {
			return err
		}
	}
	return nil
}
