package dailyreportstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/readinglog/internal/app/store/pgdb"
	"github.com/dalemusser/readinglog/internal/app/system/apperr"
	"github.com/dalemusser/readinglog/internal/domain/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dateLayout = "2006-01-02"

const reportColumns = `d.id, d.teacher_id, d.report_date, d.materials_used, d.new_words, d.comments,
	d.week_number, d.month_year, d.created_at, d.updated_at`

// PGStore keeps daily reports in Postgres. report_date is a DATE column;
// it is exchanged as YYYY-MM-DD text with callers.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func scanReport(row pgx.Row, extra ...any) (models.DailyReport, error) {
	var (
		r    models.DailyReport
		date time.Time
	)
	dest := []any{&r.ID, &r.TeacherID, &date, &r.MaterialsUsed, &r.NewWords, &r.Comments,
		&r.WeekNumber, &r.MonthYear, &r.CreatedAt, &r.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.DailyReport{}, apperr.ErrNotFound
		}
		return models.DailyReport{}, err
	}
	r.ReportDate = date.Format(dateLayout)
	return r, nil
}

// Upsert stores r keyed on (TeacherID, ReportDate). An unknown teacher
// yields ErrNotFound.
func (s *PGStore) Upsert(ctx context.Context, r models.DailyReport) (models.DailyReport, error) {
	date, err := time.Parse(dateLayout, r.ReportDate)
	if err != nil {
		return models.DailyReport{}, apperr.Invalid("Report date must be a date in YYYY-MM-DD format.")
	}
	out, err := scanReport(s.pool.QueryRow(ctx, `
		INSERT INTO daily_reports AS d
			(id, teacher_id, report_date, materials_used, new_words, comments, week_number, month_year, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (teacher_id, report_date) DO UPDATE SET
			materials_used = EXCLUDED.materials_used,
			new_words      = EXCLUDED.new_words,
			comments       = EXCLUDED.comments,
			week_number    = EXCLUDED.week_number,
			month_year     = EXCLUDED.month_year,
			updated_at     = EXCLUDED.updated_at
		RETURNING `+reportColumns,
		r.ID, r.TeacherID, date, r.MaterialsUsed, r.NewWords, r.Comments,
		r.WeekNumber, r.MonthYear, r.CreatedAt, r.UpdatedAt))
	if pgdb.IsForeignKeyViolation(err) {
		return models.DailyReport{}, apperr.ErrNotFound
	}
	return out, err
}

func (s *PGStore) ListByTeacher(ctx context.Context, teacherID string, limit int64) ([]models.DailyReport, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+reportColumns+`
		FROM daily_reports d
		WHERE d.teacher_id = $1
		ORDER BY d.report_date DESC
		LIMIT $2
	`, teacherID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.DailyReport{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PGStore) ListAll(ctx context.Context) ([]models.DailyReportRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+reportColumns+`, a.full_name, a.assigned_class
		FROM daily_reports d
		JOIN accounts a ON a.id = d.teacher_id
		ORDER BY d.report_date DESC, d.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.DailyReportRow{}
	for rows.Next() {
		var row models.DailyReportRow
		r, err := scanReport(rows, &row.TeacherName, &row.ClassName)
		if err != nil {
			return nil, err
		}
		row.DailyReport = r
		out = append(out, row)
	}
	return out, rows.Err()
}

