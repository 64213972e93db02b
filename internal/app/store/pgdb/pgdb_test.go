package pgdb

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	if !IsUniqueViolation(dup) {
		t.Error("expected wrapped 23505 to be a unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("23503 is not a unique violation")
	}
	if IsUniqueViolation(errors.New("duplicate key")) {
		t.Error("plain errors are not unique violations")
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	if !IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("expected 23503 to be a foreign key violation")
	}
}

func TestSchema_DeclaresConstraints(t *testing.T) {
	s := Schema()
	for _, want := range []string{
		"UNIQUE (teacher_id, report_date)",
		"UNIQUE (teacher_id, week_number, month_year)",
		"ON DELETE CASCADE",
		"username_ci    VARCHAR(50)  NOT NULL UNIQUE",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("schema missing %q", want)
		}
	}
}
