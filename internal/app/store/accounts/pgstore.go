package accountstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/readinglog/internal/app/store/pgdb"
	"github.com/dalemusser/readinglog/internal/app/system/apperr"
	"github.com/dalemusser/readinglog/internal/domain/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `id, full_name, username, username_ci, password_hash, assigned_class, created_at, updated_at`

// PGStore keeps accounts in Postgres. Report rows cascade through the
// foreign keys declared in the schema.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func scanAccount(row pgx.Row) (models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.FullName, &a.Username, &a.UsernameCI, &a.PasswordHash,
		&a.AssignedClass, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Account{}, apperr.ErrNotFound
	}
	return a, err
}

func (s *PGStore) Create(ctx context.Context, a models.Account) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, a.ID, a.FullName, a.Username, a.UsernameCI, a.PasswordHash, a.AssignedClass, a.CreatedAt, a.UpdatedAt)
	if pgdb.IsUniqueViolation(err) {
		return apperr.ErrDuplicateUsername
	}
	return err
}

func (s *PGStore) GetByID(ctx context.Context, id string) (models.Account, error) {
	return scanAccount(s.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
}

func (s *PGStore) GetByUsername(ctx context.Context, usernameCI string) (models.Account, error) {
	return scanAccount(s.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username_ci = $1`, usernameCI))
}

func (s *PGStore) ListTeachers(ctx context.Context) ([]models.Account, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE assigned_class <> $1
		ORDER BY full_name, id
	`, models.AdminClass)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PGStore) UpdateTeacher(ctx context.Context, id string, ch models.AccountChanges) (models.Account, error) {
	sets := []string{"updated_at = $3"}
	args := []any{id, models.AdminClass, ch.UpdatedAt}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if ch.FullName != nil {
		add("full_name", *ch.FullName)
	}
	if ch.Username != nil {
		add("username", *ch.Username)
		add("username_ci", *ch.UsernameCI)
	}
	if ch.PasswordHash != nil {
		add("password_hash", *ch.PasswordHash)
	}
	if ch.AssignedClass != nil {
		add("assigned_class", *ch.AssignedClass)
	}

	a, err := scanAccount(s.pool.QueryRow(ctx, `
		UPDATE accounts SET `+strings.Join(sets, ", ")+`
		WHERE id = $1 AND assigned_class <> $2
		RETURNING `+accountColumns, args...))
	if pgdb.IsUniqueViolation(err) {
		return models.Account{}, apperr.ErrDuplicateUsername
	}
	return a, err
}

func (s *PGStore) SetPasswordHash(ctx context.Context, id, hash string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `UPDATE accounts SET password_hash = $2, updated_at = $3 WHERE id = $1`, id, hash, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *PGStore) DeleteTeacher(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1 AND assigned_class <> $2`, id, models.AdminClass)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *PGStore) UpsertAdmin(ctx context.Context, admin models.Account) (bool, error) {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	// xmax = 0 only on a freshly inserted row.
	var created bool
	err := s.pool.QueryRow(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (username_ci) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    assigned_class = EXCLUDED.assigned_class,
		    updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0)
	`, admin.ID, admin.FullName, admin.Username, admin.UsernameCI, admin.PasswordHash,
		models.AdminClass, admin.CreatedAt, admin.UpdatedAt).Scan(&created)
	return created, err
}
