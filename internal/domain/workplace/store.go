package workplace

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const workplaceColumns = `
    id, org_id, code, name,
    COALESCE(color, ''),
    COALESCE(address, ''),
    active, created_at, updated_at`

func scanWorkplace(row pgx.Row) (*Workplace, error) {
	var wp Workplace
	err := row.Scan(
		&wp.ID, &wp.OrgID, &wp.Code, &wp.Name,
		&wp.Color, &wp.Address,
		&wp.Active, &wp.CreatedAt, &wp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &wp, nil
}

func (s *Store) Get(ctx context.Context, orgID, workplaceID string) (*Workplace, error) {
	wp, err := scanWorkplace(s.DB.QueryRow(ctx, `
    SELECT `+workplaceColumns+`
    FROM workplaces
    WHERE org_id = $1 AND id = $2
  `, orgID, workplaceID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return wp, err
}

func (s *Store) List(ctx context.Context, orgID string, filter ListFilter) (ListResult, error) {
	where := []string{"org_id = $1"}
	args := []any{orgID}
	if !filter.IncludeArchived {
		where = append(where, "active = TRUE")
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		idx := strconv.Itoa(len(args))
		where = append(where, "(LOWER(code) LIKE $"+idx+" OR LOWER(name) LIKE $"+idx+")")
	}
	cond := strings.Join(where, " AND ")

	result := ListResult{Workplaces: []Workplace{}}
	err := s.DB.QueryRow(ctx, `SELECT COUNT(1) FROM workplaces WHERE `+cond, args...).Scan(&result.Total)
	if err != nil {
		return result, err
	}

	limitIdx := strconv.Itoa(len(args) + 1)
	offsetIdx := strconv.Itoa(len(args) + 2)
	args = append(args, filter.Limit, filter.Offset)
	rows, err := s.DB.Query(ctx, `
    SELECT `+workplaceColumns+`
    FROM workplaces
    WHERE `+cond+`
    ORDER BY code
    LIMIT $`+limitIdx+` OFFSET $`+offsetIdx,
		args...)
	if err != nil {
		return result, err
	}
	defer rows.Close()

	for rows.Next() {
		wp, err := scanWorkplace(rows)
		if err != nil {
			return result, err
		}
		result.Workplaces = append(result.Workplaces, *wp)
	}
	return result, rows.Err()
}

func (s *Store) Create(ctx context.Context, orgID string, wp Workplace) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO workplaces (org_id, code, name, color, address, active)
    VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), TRUE)
    RETURNING id
  `, orgID, wp.Code, wp.Name, wp.Color, wp.Address).Scan(&id)
	if err != nil {
		return "", translateUnique(err)
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, orgID string, wp Workplace) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE workplaces
    SET code = $3, name = $4, color = NULLIF($5, ''), address = NULLIF($6, ''), updated_at = NOW()
    WHERE org_id = $1 AND id = $2
  `, orgID, wp.ID, wp.Code, wp.Name, wp.Color, wp.Address)
	if err != nil {
		return translateUnique(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Archive(ctx context.Context, orgID, workplaceID string) error {
	return s.setActive(ctx, orgID, workplaceID, false)
}

func (s *Store) Restore(ctx context.Context, orgID, workplaceID string) error {
	return s.setActive(ctx, orgID, workplaceID, true)
}

func (s *Store) setActive(ctx context.Context, orgID, workplaceID string, active bool) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE workplaces
    SET active = $3, updated_at = NOW()
    WHERE org_id = $1 AND id = $2
  `, orgID, workplaceID, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a workplace that no assignment references.
func (s *Store) Delete(ctx context.Context, orgID, workplaceID string) error {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM assignments WHERE org_id = $1 AND workplace_id = $2
  `, orgID, workplaceID).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrInUse
	}
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM workplaces WHERE org_id = $1 AND id = $2
  `, orgID, workplaceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateCode
	}
	return err
}
