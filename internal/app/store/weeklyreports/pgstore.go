package weeklyreportstore

import (
	"context"
	"errors"

	"github.com/dalemusser/readinglog/internal/app/store/pgdb"
	"github.com/dalemusser/readinglog/internal/app/system/apperr"
	"github.com/dalemusser/readinglog/internal/domain/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reportColumns = `w.id, w.teacher_id, w.week_number, w.month_year, w.active_readers,
	w.students_needing_support, w.common_challenges, w.strategies_next_week, w.submitted_at, w.updated_at`

type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func scanReport(row pgx.Row, extra ...any) (models.WeeklyReport, error) {
	var r models.WeeklyReport
	dest := []any{&r.ID, &r.TeacherID, &r.WeekNumber, &r.MonthYear, &r.ActiveReaders,
		&r.StudentsNeedingSupport, &r.CommonChallenges, &r.StrategiesNextWeek, &r.SubmittedAt, &r.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.WeeklyReport{}, apperr.ErrNotFound
		}
		return models.WeeklyReport{}, err
	}
	return r, nil
}

// Upsert stores r keyed on (TeacherID, WeekNumber, MonthYear). An unknown
// teacher yields ErrNotFound.
func (s *PGStore) Upsert(ctx context.Context, r models.WeeklyReport) (models.WeeklyReport, error) {
	out, err := scanReport(s.pool.QueryRow(ctx, `
		INSERT INTO weekly_reports AS w
			(id, teacher_id, week_number, month_year, active_readers, students_needing_support,
			 common_challenges, strategies_next_week, submitted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (teacher_id, week_number, month_year) DO UPDATE SET
			active_readers           = EXCLUDED.active_readers,
			students_needing_support = EXCLUDED.students_needing_support,
			common_challenges        = EXCLUDED.common_challenges,
			strategies_next_week     = EXCLUDED.strategies_next_week,
			updated_at               = EXCLUDED.updated_at
		RETURNING `+reportColumns,
		r.ID, r.TeacherID, r.WeekNumber, r.MonthYear, r.ActiveReaders, r.StudentsNeedingSupport,
		r.CommonChallenges, r.StrategiesNextWeek, r.SubmittedAt, r.UpdatedAt))
	if pgdb.IsForeignKeyViolation(err) {
		return models.WeeklyReport{}, apperr.ErrNotFound
	}
	return out, err
}

func (s *PGStore) ListByTeacher(ctx context.Context, teacherID string, limit int64) ([]models.WeeklyReport, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+reportColumns+`
		FROM weekly_reports w
		WHERE w.teacher_id = $1
		ORDER BY w.submitted_at DESC
		LIMIT $2
	`, teacherID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.WeeklyReport{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PGStore) ListAll(ctx context.Context) ([]models.WeeklyReportRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+reportColumns+`, a.full_name, a.assigned_class
		FROM weekly_reports w
		JOIN accounts a ON a.id = w.teacher_id
		ORDER BY w.submitted_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.WeeklyReportRow{}
	for rows.Next() {
		var row models.WeeklyReportRow
		r, err := scanReport(rows, &row.TeacherName, &row.ClassName)
		if err != nil {
			return nil, err
		}
		row.WeeklyReport = r
		out = append(out, row)
	}
	return out, rows.Err()
}

