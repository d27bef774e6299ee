package planner

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

// Records returns shift records joined with assignment, employee and
// workplace for the window. Trashed assignments never appear; userID narrows
// to one employee when set.
func (s *Store) Records(ctx context.Context, orgID string, from, to time.Time, status, userID string) ([]Record, error) {
	query := `
    SELECT sh.id, a.id, a.status,
           u.id, u.full_name,
           w.id, w.code, w.name, w.color,
           sh.kind, sh.start_at, sh.end_at
    FROM shifts sh
    JOIN assignments a ON sh.assignment_id = a.id
    JOIN users u ON a.user_id = u.id
    JOIN workplaces w ON a.workplace_id = w.id
    WHERE a.org_id = $1
      AND a.trashed_at IS NULL
      AND a.status = $2
      AND sh.start_at < $4
      AND sh.end_at > $3`
	args := []any{orgID, status, from, to}
	if userID != "" {
		query += " AND a.user_id = $5"
		args = append(args, userID)
	}
	query += " ORDER BY sh.start_at, sh.id"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.SlotID, &rec.AssignmentID, &rec.AssignmentStatus,
			&rec.UserID, &rec.UserName,
			&rec.WorkplaceID, &rec.WorkplaceCode, &rec.WorkplaceName, &rec.WorkplaceColor,
			&rec.Kind, &rec.Start, &rec.End,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Extent reports the earliest shift start and latest shift end among matching
// records, used to bound an unbounded planner query.
func (s *Store) Extent(ctx context.Context, orgID, status, userID string) (time.Time, time.Time, bool, error) {
	query := `
    SELECT MIN(sh.start_at), MAX(GREATEST(sh.end_at, sh.start_at))
    FROM shifts sh
    JOIN assignments a ON sh.assignment_id = a.id
    WHERE a.org_id = $1 AND a.trashed_at IS NULL AND a.status = $2`
	args := []any{orgID, status}
	if userID != "" {
		query += " AND a.user_id = $3"
		args = append(args, userID)
	}

	var from, to *time.Time
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&from, &to); err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	if from == nil || to == nil {
		return time.Time{}, time.Time{}, false, nil
	}
	return *from, *to, true, nil
}
