package requests

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rota/internal/domain/schedule"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateAdjustment(ctx context.Context, orgID string, req AdjustmentRequest) (string, error) {
	proposed, err := json.Marshal(req.ProposedDays)
	if err != nil {
		return "", err
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO adjustment_requests (org_id, assignment_id, requester_id, proposed_days, comment, status)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, orgID, req.AssignmentID, req.RequesterID, proposed, req.Comment, StatusPending).Scan(&id)
	return id, err
}

func (s *Store) GetAdjustment(ctx context.Context, orgID, requestID string) (*AdjustmentRequest, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT r.id, r.org_id, r.assignment_id, r.requester_id, u.full_name,
           r.proposed_days, r.comment, r.status,
           COALESCE(r.manager_comment, ''), COALESCE(r.decided_by::text, ''), r.decided_at, r.created_at
    FROM adjustment_requests r
    JOIN users u ON r.requester_id = u.id
    WHERE r.org_id = $1 AND r.id = $2
  `, orgID, requestID)
	req, err := scanAdjustment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (s *Store) ListAdjustments(ctx context.Context, orgID string, filter ListFilter) (AdjustmentList, error) {
	where, args := requestFilter(orgID, filter)

	var result AdjustmentList
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM adjustment_requests r WHERE "+where, args...).Scan(&result.Total); err != nil {
		return AdjustmentList{}, err
	}

	args = append(args, filter.Limit, filter.Offset)
	rows, err := s.DB.Query(ctx, `
    SELECT r.id, r.org_id, r.assignment_id, r.requester_id, u.full_name,
           r.proposed_days, r.comment, r.status,
           COALESCE(r.manager_comment, ''), COALESCE(r.decided_by::text, ''), r.decided_at, r.created_at
    FROM adjustment_requests r
    JOIN users u ON r.requester_id = u.id
    WHERE `+where+`
    ORDER BY r.created_at DESC, r.id
    LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)),
		args...)
	if err != nil {
		return AdjustmentList{}, err
	}
	defer rows.Close()

	for rows.Next() {
		req, err := scanAdjustment(rows)
		if err != nil {
			return AdjustmentList{}, err
		}
		result.Requests = append(result.Requests, *req)
	}
	return result, rows.Err()
}

// DecideAdjustment flips a PENDING request to its terminal status and, on
// approval, replaces the target assignment's shifts from the proposal. The
// status flip is a conditional update, so a second concurrent decision sees
// zero rows and reports ErrAlreadyProcessed instead of double-applying.
func (s *Store) DecideAdjustment(ctx context.Context, orgID, requestID string, decision Decision) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	status := StatusRejected
	if decision.Approve {
		status = StatusApproved
	}

	var assignmentID string
	var proposedRaw []byte
	err = tx.QueryRow(ctx, `
    UPDATE adjustment_requests
    SET status = $1, manager_comment = $2, decided_by = $3, decided_at = now()
    WHERE org_id = $4 AND id = $5 AND status = $6
    RETURNING assignment_id, proposed_days
  `, status, decision.Comment, decision.DeciderID, orgID, requestID, StatusPending).Scan(&assignmentID, &proposedRaw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.decisionConflict(ctx, "adjustment_requests", orgID, requestID)
		}
		return err
	}

	if decision.Approve {
		var proposed []DayProposal
		if err := json.Unmarshal(proposedRaw, &proposed); err != nil {
			return err
		}
		if err := replaceShifts(ctx, tx, assignmentID, proposed); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) CreateAssignmentRequest(ctx context.Context, orgID string, req AssignmentRequest) (string, error) {
	proposed, err := json.Marshal(req.ProposedDays)
	if err != nil {
		return "", err
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO assignment_requests (org_id, workplace_id, requester_id, start_at, end_at, proposed_days, comment, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, orgID, req.WorkplaceID, req.RequesterID, req.StartAt, req.EndAt, proposed, req.Comment, StatusPending).Scan(&id)
	return id, err
}

func (s *Store) GetAssignmentRequest(ctx context.Context, orgID, requestID string) (*AssignmentRequest, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT r.id, r.org_id, r.workplace_id, r.requester_id, u.full_name,
           r.start_at, r.end_at, r.proposed_days, r.comment, r.status,
           COALESCE(r.manager_comment, ''), COALESCE(r.decided_by::text, ''), r.decided_at, r.created_at
    FROM assignment_requests r
    JOIN users u ON r.requester_id = u.id
    WHERE r.org_id = $1 AND r.id = $2
  `, orgID, requestID)
	req, err := scanAssignmentRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (s *Store) ListAssignmentRequests(ctx context.Context, orgID string, filter ListFilter) (AssignmentList, error) {
	where, args := requestFilter(orgID, filter)

	var result AssignmentList
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM assignment_requests r WHERE "+where, args...).Scan(&result.Total); err != nil {
		return AssignmentList{}, err
	}

	args = append(args, filter.Limit, filter.Offset)
	rows, err := s.DB.Query(ctx, `
    SELECT r.id, r.org_id, r.workplace_id, r.requester_id, u.full_name,
           r.start_at, r.end_at, r.proposed_days, r.comment, r.status,
           COALESCE(r.manager_comment, ''), COALESCE(r.decided_by::text, ''), r.decided_at, r.created_at
    FROM assignment_requests r
    JOIN users u ON r.requester_id = u.id
    WHERE `+where+`
    ORDER BY r.created_at DESC, r.id
    LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)),
		args...)
	if err != nil {
		return AssignmentList{}, err
	}
	defer rows.Close()

	for rows.Next() {
		req, err := scanAssignmentRequest(rows)
		if err != nil {
			return AssignmentList{}, err
		}
		result.Requests = append(result.Requests, *req)
	}
	return result, rows.Err()
}

// DecideAssignmentRequest resolves a PENDING assignment request. Approval
// creates the assignment (with proposed shifts) in the same transaction,
// running the overlap check against the requester's other assignments; an
// overlap rolls everything back and leaves the request PENDING for the
// manager to adjust.
func (s *Store) DecideAssignmentRequest(ctx context.Context, orgID, requestID string, decision Decision) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	status := StatusRejected
	if decision.Approve {
		status = StatusApproved
	}

	var (
		workplaceID string
		requesterID string
		startAt     time.Time
		endAt       *time.Time
		proposedRaw []byte
	)
	err = tx.QueryRow(ctx, `
    UPDATE assignment_requests
    SET status = $1, manager_comment = $2, decided_by = $3, decided_at = now()
    WHERE org_id = $4 AND id = $5 AND status = $6
    RETURNING workplace_id, requester_id, start_at, end_at, proposed_days
  `, status, decision.Comment, decision.DeciderID, orgID, requestID, StatusPending).
		Scan(&workplaceID, &requesterID, &startAt, &endAt, &proposedRaw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", s.decisionConflict(ctx, "assignment_requests", orgID, requestID)
		}
		return "", err
	}

	if !decision.Approve {
		return "", tx.Commit(ctx)
	}

	existing, err := lockEmployeeAssignments(ctx, tx, orgID, requesterID)
	if err != nil {
		return "", err
	}
	candidate := schedule.Assignment{
		UserID:  requesterID,
		Status:  schedule.StatusActive,
		StartAt: startAt,
		EndAt:   endAt,
	}
	if err := schedule.CheckConflict(candidate, existing); err != nil {
		return "", err
	}

	var assignmentID string
	if err := tx.QueryRow(ctx, `
    INSERT INTO assignments (org_id, user_id, workplace_id, status, start_at, end_at)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, orgID, requesterID, workplaceID, schedule.StatusActive, startAt, endAt).Scan(&assignmentID); err != nil {
		return "", err
	}

	var proposed []DayProposal
	if err := json.Unmarshal(proposedRaw, &proposed); err != nil {
		return "", err
	}
	if err := replaceShifts(ctx, tx, assignmentID, proposed); err != nil {
		return "", err
	}

	return assignmentID, tx.Commit(ctx)
}

// decisionConflict disambiguates a zero-row conditional update: the request
// is either gone or already decided.
func (s *Store) decisionConflict(ctx context.Context, table, orgID, requestID string) error {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM "+table+" WHERE org_id = $1 AND id = $2", orgID, requestID).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrAlreadyProcessed
}

func replaceShifts(ctx context.Context, tx pgx.Tx, assignmentID string, proposed []DayProposal) error {
	if _, err := tx.Exec(ctx, "DELETE FROM shifts WHERE assignment_id = $1", assignmentID); err != nil {
		return err
	}
	for _, dayProposal := range proposed {
		workDate, err := time.Parse("2006-01-02", dayProposal.Date)
		if err != nil {
			return err
		}
		for _, interval := range dayProposal.Intervals {
			kind := interval.Kind
			if kind == "" {
				kind = schedule.ShiftKindDefault
			}
			if _, err := tx.Exec(ctx, `
        INSERT INTO shifts (assignment_id, work_date, start_at, end_at, kind)
        VALUES ($1,$2,$3,$4,$5)
      `, assignmentID, workDate, interval.Start, interval.End, kind); err != nil {
				return err
			}
		}
	}
	return nil
}

func lockEmployeeAssignments(ctx context.Context, tx pgx.Tx, orgID, userID string) ([]schedule.Assignment, error) {
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

	var out []schedule.Assignment
	for rows.Next() {
		var a schedule.Assignment
		if err := rows.Scan(&a.ID, &a.UserID, &a.Status, &a.StartAt, &a.EndAt, &a.TrashedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func requestFilter(orgID string, filter ListFilter) (string, []any) {
	where := "r.org_id = $1"
	args := []any{orgID}
	if filter.RequesterID != "" {
		args = append(args, filter.RequesterID)
		where += " AND r.requester_id = $" + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += " AND r.status = $" + strconv.Itoa(len(args))
	}
	return where, args
}

func scanAdjustment(row pgx.Row) (*AdjustmentRequest, error) {
	var req AdjustmentRequest
	var proposedRaw []byte
	if err := row.Scan(
		&req.ID, &req.OrgID, &req.AssignmentID, &req.RequesterID, &req.RequesterName,
		&proposedRaw, &req.Comment, &req.Status,
		&req.ManagerComment, &req.DecidedBy, &req.DecidedAt, &req.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(proposedRaw) > 0 {
		if err := json.Unmarshal(proposedRaw, &req.ProposedDays); err != nil {
			return nil, err
		}
	}
	return &req, nil
}

func scanAssignmentRequest(row pgx.Row) (*AssignmentRequest, error) {
	var req AssignmentRequest
	var proposedRaw []byte
	if err := row.Scan(
		&req.ID, &req.OrgID, &req.WorkplaceID, &req.RequesterID, &req.RequesterName,
		&req.StartAt, &req.EndAt, &proposedRaw, &req.Comment, &req.Status,
		&req.ManagerComment, &req.DecidedBy, &req.DecidedAt, &req.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(proposedRaw) > 0 {
		if err := json.Unmarshal(proposedRaw, &req.ProposedDays); err != nil {
			return nil, err
		}
	}
	return &req, nil
}
