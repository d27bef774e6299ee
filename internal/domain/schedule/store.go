package schedule

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const assignmentColumns = `
  a.id, a.org_id, a.user_id, u.full_name, a.workplace_id, w.code, w.name,
  a.status, a.start_at, a.end_at, a.trashed_at, a.created_at, a.updated_at`

func scanAssignment(row pgx.Row) (Assignment, error) {
	var a Assignment
	err := row.Scan(
		&a.ID, &a.OrgID, &a.UserID, &a.UserName, &a.WorkplaceID, &a.WorkplaceCode, &a.WorkplaceName,
		&a.Status, &a.StartAt, &a.EndAt, &a.TrashedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

func (s *Store) Get(ctx context.Context, orgID, assignmentID string) (*Assignment, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+assignmentColumns+`
    FROM assignments a
    JOIN users u ON a.user_id = u.id
    JOIN workplaces w ON a.workplace_id = w.id
    WHERE a.org_id = $1 AND a.id = $2
  `, orgID, assignmentID)

	a, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	shifts, err := s.listShifts(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	a.Shifts = shifts
	return &a, nil
}

func (s *Store) List(ctx context.Context, orgID string, filter ListFilter) (ListResult, error) {
	where := "a.org_id = $1"
	args := []any{orgID}
	if filter.Trashed {
		where += " AND a.trashed_at IS NOT NULL"
	} else {
		where += " AND a.trashed_at IS NULL"
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += " AND a.status = $" + strconv.Itoa(len(args))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		where += " AND a.user_id = $" + strconv.Itoa(len(args))
	}
	if filter.WorkplaceID != "" {
		args = append(args, filter.WorkplaceID)
		where += " AND a.workplace_id = $" + strconv.Itoa(len(args))
	}

	var result ListResult
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM assignments a WHERE "+where, args...).Scan(&result.Total); err != nil {
		return ListResult{}, err
	}

	args = append(args, filter.Limit, filter.Offset)
	rows, err := s.DB.Query(ctx, `
    SELECT `+assignmentColumns+`
    FROM assignments a
    JOIN users u ON a.user_id = u.id
    JOIN workplaces w ON a.workplace_id = w.id
    WHERE `+where+`
    ORDER BY a.start_at DESC, a.id
    LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)),
		args...)
	if err != nil {
		return ListResult{}, err
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return ListResult{}, err
		}
		result.Assignments = append(result.Assignments, a)
	}
	return result, rows.Err()
}

// Create inserts the assignment and its shifts after running the overlap
// check against the employee's other assignments. Load, check and insert
// happen inside one transaction so two concurrent creates for the same
// employee cannot both pass the check.
func (s *Store) Create(ctx context.Context, orgID string, a Assignment) (string, int, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback(ctx)

	existing, err := lockEmployeeAssignments(ctx, tx, orgID, a.UserID)
	if err != nil {
		return "", 0, err
	}
	if err := CheckConflict(a, existing); err != nil {
		return "", 0, err
	}
	activeCount := CountActive(a.UserID, existing)

	var id string
	if err := tx.QueryRow(ctx, `
    INSERT INTO assignments (org_id, user_id, workplace_id, status, start_at, end_at)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, orgID, a.UserID, a.WorkplaceID, a.Status, a.StartAt, a.EndAt).Scan(&id); err != nil {
		return "", 0, err
	}

	if err := insertShifts(ctx, tx, id, a.Shifts); err != nil {
		return "", 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", 0, err
	}
	return id, activeCount, nil
}

// Update rewrites the assignment row and replaces its shifts, re-running the
// overlap check with the edited assignment excluded.
func (s *Store) Update(ctx context.Context, orgID string, a Assignment) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	existing, err := lockEmployeeAssignments(ctx, tx, orgID, a.UserID)
	if err != nil {
		return err
	}
	if err := CheckConflict(a, existing); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
    UPDATE assignments
    SET user_id = $1, workplace_id = $2, status = $3, start_at = $4, end_at = $5, updated_at = now()
    WHERE org_id = $6 AND id = $7 AND trashed_at IS NULL
  `, a.UserID, a.WorkplaceID, a.Status, a.StartAt, a.EndAt, orgID, a.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, "DELETE FROM shifts WHERE assignment_id = $1", a.ID); err != nil {
		return err
	}
	if err := insertShifts(ctx, tx, a.ID, a.Shifts); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) Complete(ctx context.Context, orgID, assignmentID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE assignments
    SET status = $1, updated_at = now()
    WHERE org_id = $2 AND id = $3 AND status = $4 AND trashed_at IS NULL
  `, StatusArchived, orgID, assignmentID, StatusActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidState
	}
	return nil
}

func (s *Store) Trash(ctx context.Context, orgID, assignmentID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE assignments
    SET trashed_at = now(), updated_at = now()
    WHERE org_id = $1 AND id = $2 AND trashed_at IS NULL
  `, orgID, assignmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Restore brings an assignment back from trash. The overlap check runs again:
// the trashed interval may have been reoccupied while it was invisible.
func (s *Store) Restore(ctx context.Context, orgID, assignmentID string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
    SELECT `+assignmentColumns+`
    FROM assignments a
    JOIN users u ON a.user_id = u.id
    JOIN workplaces w ON a.workplace_id = w.id
    WHERE a.org_id = $1 AND a.id = $2 AND a.trashed_at IS NOT NULL
  `, orgID, assignmentID)
	a, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	existing, err := lockEmployeeAssignments(ctx, tx, orgID, a.UserID)
	if err != nil {
		return err
	}
	a.TrashedAt = nil
	if err := CheckConflict(a, existing); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
    UPDATE assignments SET trashed_at = NULL, updated_at = now()
    WHERE org_id = $1 AND id = $2
  `, orgID, assignmentID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// HardDelete removes a trashed assignment and its shifts for good.
func (s *Store) HardDelete(ctx context.Context, orgID, assignmentID string) error {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM assignments
    WHERE org_id = $1 AND id = $2 AND trashed_at IS NOT NULL
  `, orgID, assignmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidState
	}
	return nil
}

func (s *Store) listShifts(ctx context.Context, assignmentID string) ([]Shift, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, assignment_id, work_date, start_at, end_at, kind
    FROM shifts
    WHERE assignment_id = $1
    ORDER BY work_date, start_at
  `, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Shift
	for rows.Next() {
		var sh Shift
		if err := rows.Scan(&sh.ID, &sh.AssignmentID, &sh.WorkDate, &sh.StartAt, &sh.EndAt, &sh.Kind); err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

func insertShifts(ctx context.Context, tx pgx.Tx, assignmentID string, shifts []Shift) error {
	for _, sh := range shifts {
		if _, err := tx.Exec(ctx, `
      INSERT INTO shifts (assignment_id, work_date, start_at, end_at, kind)
      VALUES ($1,$2,$3,$4,$5)
    `, assignmentID, sh.WorkDate, sh.StartAt, sh.EndAt, sh.Kind); err != nil {
			return err
		}
	}
	return nil
}

// lockEmployeeAssignments reads the employee's assignments under FOR UPDATE
// so concurrent writers for the same employee serialize on the check.
func lockEmployeeAssignments(ctx context.Context, tx pgx.Tx, orgID, userID string) ([]Assignment, error) {
	rows, err := tx.Query(ctx, `
    SELECT id, user_id, status, start_at, end_at, trashed_at
    FROM assignments
    WHERE org_id = $1 AND user_id = $2
    FOR UPDATE
  `, orgID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.UserID, &a.Status, &a.StartAt, &a.EndAt, &a.TrashedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

