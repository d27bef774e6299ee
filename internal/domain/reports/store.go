package reports

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"rota/internal/domain/schedule"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Upsert(ctx context.Context, orgID string, report WorkReport) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO work_reports (org_id, user_id, work_date, hours, note)
    VALUES ($1, $2, $3, $4, NULLIF($5, ''))
    ON CONFLICT (org_id, user_id, work_date)
    DO UPDATE SET hours = EXCLUDED.hours, note = EXCLUDED.note, updated_at = NOW()
    RETURNING id
  `, orgID, report.UserID, report.WorkDate, report.Hours, report.Note).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ListByRange(ctx context.Context, orgID string, filter RangeFilter) ([]WorkReport, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT r.id, r.org_id, r.user_id, u.full_name, r.work_date, r.hours,
           COALESCE(r.note, ''), r.created_at, r.updated_at
    FROM work_reports r
    JOIN users u ON r.user_id = u.id
    WHERE r.org_id = $1
      AND r.work_date >= $2 AND r.work_date < $3
      AND ($4 = '' OR r.user_id::text = $4)
    ORDER BY r.work_date, u.full_name
  `, orgID, filter.From, filter.To, filter.UserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []WorkReport{}
	for rows.Next() {
		var report WorkReport
		err := rows.Scan(
			&report.ID, &report.OrgID, &report.UserID, &report.UserName,
			&report.WorkDate, &report.Hours, &report.Note,
			&report.CreatedAt, &report.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

func (s *Store) Delete(ctx context.Context, orgID, userID, reportID string) error {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM work_reports
    WHERE org_id = $1 AND id = $2 AND ($3 = '' OR user_id::text = $3)
  `, orgID, reportID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Statistics sums reported hours next to scheduled hours per employee.
// Scheduled hours come from shifts of non-trashed assignments; DAY_OFF
// shifts do not count as working time.
func (s *Store) Statistics(ctx context.Context, orgID string, filter RangeFilter) ([]Statistic, error) {
	rows, err := s.DB.Query(ctx, `
    WITH reported AS (
      SELECT user_id, SUM(hours) AS hours, COUNT(1) AS days
      FROM work_reports
      WHERE org_id = $1 AND work_date >= $2 AND work_date < $3
      GROUP BY user_id
    ), scheduled AS (
      SELECT a.user_id,
             SUM(EXTRACT(EPOCH FROM (sh.end_at - sh.start_at)) / 3600.0) AS hours
      FROM shifts sh
      JOIN assignments a ON sh.assignment_id = a.id
      WHERE a.org_id = $1
        AND a.trashed_at IS NULL
        AND sh.kind <> 'DAY_OFF'
        AND sh.work_date >= $2 AND sh.work_date < $3
      GROUP BY a.user_id
    )
    SELECT u.id, u.full_name,
           COALESCE(r.hours, 0), COALESCE(s.hours, 0), COALESCE(r.days, 0)
    FROM users u
    LEFT JOIN reported r ON r.user_id = u.id
    LEFT JOIN scheduled s ON s.user_id = u.id
    WHERE u.org_id = $1 AND (r.user_id IS NOT NULL OR s.user_id IS NOT NULL)
      AND ($4 = '' OR u.id::text = $4)
    ORDER BY u.full_name
  `, orgID, filter.From, filter.To, filter.UserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []Statistic{}
	for rows.Next() {
		var stat Statistic
		err := rows.Scan(&stat.UserID, &stat.UserName, &stat.ReportedHours, &stat.ScheduledHours, &stat.DaysReported)
		if err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

// ExportRows loads the shifts of a range joined with employee and
// workplace names, already ordered for export output.
func (s *Store) ExportRows(ctx context.Context, orgID string, filter RangeFilter) ([]ExportRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT sh.work_date, u.full_name, w.code, w.name, sh.kind, sh.start_at, sh.end_at
    FROM shifts sh
    JOIN assignments a ON sh.assignment_id = a.id
    JOIN users u ON a.user_id = u.id
    JOIN workplaces w ON a.workplace_id = w.id
    WHERE a.org_id = $1
      AND a.trashed_at IS NULL
      AND sh.work_date >= $2 AND sh.work_date < $3
      AND ($4 = '' OR a.user_id::text = $4)
    ORDER BY sh.work_date, u.full_name, sh.start_at
  `, orgID, filter.From, filter.To, filter.UserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	export := []ExportRow{}
	for rows.Next() {
		var row ExportRow
		err := rows.Scan(&row.Date, &row.EmployeeName, &row.WorkplaceCode, &row.WorkplaceName, &row.Kind, &row.StartAt, &row.EndAt)
		if err != nil {
			return nil, err
		}
		if row.EndAt.After(row.StartAt) && row.Kind != schedule.ShiftKindDayOff {
			row.Hours = row.EndAt.Sub(row.StartAt).Hours()
		}
		export = append(export, row)
	}
	return export, rows.Err()
}
