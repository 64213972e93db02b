package accountstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	accountstore "github.com/dalemusser/readinglog/internal/app/store/accounts"
	"github.com/dalemusser/readinglog/internal/app/system/apperr"
	"github.com/dalemusser/readinglog/internal/app/system/indexes"
	"github.com/dalemusser/readinglog/internal/domain/models"
	"github.com/dalemusser/readinglog/internal/testutil"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
)

// store is the contract both backends implement.
type store interface {
	Create(ctx context.Context, a models.Account) error
	GetByID(ctx context.Context, id string) (models.Account, error)
	GetByUsername(ctx context.Context, usernameCI string) (models.Account, error)
	ListTeachers(ctx context.Context) ([]models.Account, error)
	UpdateTeacher(ctx context.Context, id string, ch models.AccountChanges) (models.Account, error)
	SetPasswordHash(ctx context.Context, id, hash string, at time.Time) error
	DeleteTeacher(ctx context.Context, id string) error
	UpsertAdmin(ctx context.Context, admin models.Account) (bool, error)
}

var (
	_ store = (*accountstore.MongoStore)(nil)
	_ store = (*accountstore.PGStore)(nil)
)

func newAccount(name, username, class string) models.Account {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return models.Account{
		ID:            uuid.NewString(),
		FullName:      name,
		Username:      username,
		UsernameCI:    text.Fold(username),
		PasswordHash:  "hash-" + username,
		AssignedClass: class,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func strp(s string) *string { return &s }

func exerciseStore(t *testing.T, s store) {
	ctx, cancel := testutil.TestContext()
	defer cancel()

	jane := newAccount("Jane Doe", "jane", "Grade 3")
	bob := newAccount("Bob Stone", "bob", "Grade 1")
	for _, a := range []models.Account{jane, bob} {
		if err := s.Create(ctx, a); err != nil {
			t.Fatalf("Create(%s) failed: %v", a.Username, err)
		}
	}
	if _, err := s.UpsertAdmin(ctx, newAccount("Administrator", "admin", models.AdminClass)); err != nil {
		t.Fatalf("UpsertAdmin failed: %v", err)
	}

	t.Run("duplicate username", func(t *testing.T) {
		err := s.Create(ctx, newAccount("Other Jane", "JANE", "Grade 2"))
		if !errors.Is(err, apperr.ErrDuplicateUsername) {
			t.Errorf("got %v, want ErrDuplicateUsername", err)
		}
	})

	t.Run("get by username", func(t *testing.T) {
		got, err := s.GetByUsername(ctx, text.Fold("Jane"))
		if err != nil {
			t.Fatalf("GetByUsername failed: %v", err)
		}
		if got.ID != jane.ID || got.PasswordHash != jane.PasswordHash {
			t.Errorf("got %+v, want jane", got)
		}
		if _, err := s.GetByUsername(ctx, "nobody"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("unknown user: got %v, want ErrNotFound", err)
		}
	})

	t.Run("list excludes admin", func(t *testing.T) {
		list, err := s.ListTeachers(ctx)
		if err != nil {
			t.Fatalf("ListTeachers failed: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("len: got %d, want 2", len(list))
		}
		if list[0].Username != "bob" || list[1].Username != "jane" {
			t.Errorf("order: got %s, %s; want bob, jane", list[0].Username, list[1].Username)
		}
		for _, a := range list {
			if a.Role().IsAdmin() {
				t.Errorf("admin %q returned by ListTeachers", a.Username)
			}
		}
	})

	t.Run("update teacher partial", func(t *testing.T) {
		got, err := s.UpdateTeacher(ctx, jane.ID, models.AccountChanges{
			AssignedClass: strp("Grade 4"),
			UpdatedAt:     time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("UpdateTeacher failed: %v", err)
		}
		if got.AssignedClass != "Grade 4" {
			t.Errorf("class: got %q, want %q", got.AssignedClass, "Grade 4")
		}
		if got.FullName != "Jane Doe" || got.PasswordHash != jane.PasswordHash {
			t.Errorf("untouched fields changed: %+v", got)
		}
	})

	t.Run("update to taken username", func(t *testing.T) {
		_, err := s.UpdateTeacher(ctx, jane.ID, models.AccountChanges{
			Username:   strp("bob"),
			UsernameCI: strp("bob"),
			UpdatedAt:  time.Now().UTC(),
		})
		if !errors.Is(err, apperr.ErrDuplicateUsername) {
			t.Errorf("got %v, want ErrDuplicateUsername", err)
		}
	})

	t.Run("admin never matched", func(t *testing.T) {
		admin, err := s.GetByUsername(ctx, "admin")
		if err != nil {
			t.Fatalf("GetByUsername(admin) failed: %v", err)
		}
		_, err = s.UpdateTeacher(ctx, admin.ID, models.AccountChanges{FullName: strp("Hacked"), UpdatedAt: time.Now()})
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("update admin: got %v, want ErrNotFound", err)
		}
		if err := s.DeleteTeacher(ctx, admin.ID); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("delete admin: got %v, want ErrNotFound", err)
		}
		still, err := s.GetByID(ctx, admin.ID)
		if err != nil || still.FullName != "Administrator" {
			t.Errorf("admin changed: %+v, %v", still, err)
		}
	})

	t.Run("set password hash", func(t *testing.T) {
		if err := s.SetPasswordHash(ctx, bob.ID, "new-hash", time.Now().UTC()); err != nil {
			t.Fatalf("SetPasswordHash failed: %v", err)
		}
		got, _ := s.GetByID(ctx, bob.ID)
		if got.PasswordHash != "new-hash" {
			t.Errorf("hash: got %q, want %q", got.PasswordHash, "new-hash")
		}
		if err := s.SetPasswordHash(ctx, uuid.NewString(), "x", time.Now()); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("unknown id: got %v, want ErrNotFound", err)
		}
	})

	t.Run("delete teacher", func(t *testing.T) {
		if err := s.DeleteTeacher(ctx, bob.ID); err != nil {
			t.Fatalf("DeleteTeacher failed: %v", err)
		}
		if _, err := s.GetByID(ctx, bob.ID); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("after delete: got %v, want ErrNotFound", err)
		}
		if err := s.DeleteTeacher(ctx, bob.ID); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("second delete: got %v, want ErrNotFound", err)
		}
	})

	t.Run("upsert admin resets password", func(t *testing.T) {
		before, _ := s.GetByUsername(ctx, "admin")
		again := newAccount("Ignored Name", "admin", models.AdminClass)
		again.PasswordHash = "rotated"
		created, err := s.UpsertAdmin(ctx, again)
		if err != nil {
			t.Fatalf("UpsertAdmin failed: %v", err)
		}
		if created {
			t.Error("expected existing admin to be updated, not created")
		}
		after, _ := s.GetByUsername(ctx, "admin")
		if after.ID != before.ID {
			t.Errorf("admin ID changed: %q -> %q", before.ID, after.ID)
		}
		if after.PasswordHash != "rotated" {
			t.Errorf("hash: got %q, want rotated", after.PasswordHash)
		}
		if after.FullName != "Administrator" {
			t.Errorf("name: got %q, want Administrator", after.FullName)
		}
	})
}

func TestMongoStore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	exerciseStore(t, accountstore.NewMongoStore(db))
}

func TestPGStore(t *testing.T) {
	pool := testutil.SetupTestPG(t)
	exerciseStore(t, accountstore.NewPGStore(pool))
}

func TestMongoStore_DeleteTeacherCascades(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := accountstore.NewMongoStore(db)
	jane := newAccount("Jane Doe", "jane", "Grade 3")
	if err := s.Create(ctx, jane); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, _ = db.Collection("daily_reports").InsertOne(ctx, models.DailyReport{ID: uuid.NewString(), TeacherID: jane.ID, ReportDate: "2024-03-05"})
	_, _ = db.Collection("weekly_reports").InsertOne(ctx, models.WeeklyReport{ID: uuid.NewString(), TeacherID: jane.ID, WeekNumber: 1})

	if err := s.DeleteTeacher(ctx, jane.ID); err != nil {
		t.Fatalf("DeleteTeacher failed: %v", err)
	}
	for _, coll := range []string{"daily_reports", "weekly_reports"} {
		n, err := db.Collection(coll).CountDocuments(ctx, map[string]string{"teacher_id": jane.ID})
		if err != nil {
			t.Fatalf("count %s: %v", coll, err)
		}
		if n != 0 {
			t.Errorf("%s left: got %d, want 0", coll, n)
		}
	}
}
