// Package accounts holds the credential logic: sign-in, teacher management,
// password changes and the bootstrap administrator.
package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/readinglog/internal/app/system/apperr"
	"github.com/dalemusser/readinglog/internal/app/system/auth"
	"github.com/dalemusser/readinglog/internal/app/system/authutil"
	"github.com/dalemusser/readinglog/internal/app/system/inputval"
	"github.com/dalemusser/readinglog/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is the persistence the service needs. accountstore.MongoStore and
// accountstore.PGStore implement it.
type Store interface {
	Create(ctx context.Context, a models.Account) error
	GetByID(ctx context.Context, id string) (models.Account, error)
	GetByUsername(ctx context.Context, usernameCI string) (models.Account, error)
	ListTeachers(ctx context.Context) ([]models.Account, error)
	UpdateTeacher(ctx context.Context, id string, ch models.AccountChanges) (models.Account, error)
	SetPasswordHash(ctx context.Context, id, hash string, at time.Time) error
	DeleteTeacher(ctx context.Context, id string) error
	UpsertAdmin(ctx context.Context, admin models.Account) (bool, error)
}

// SessionRevoker ends every session of an account.
type SessionRevoker interface {
	DeleteByAccount(ctx context.Context, accountID string) (int64, error)
}

type Service struct {
	store    Store
	sessions SessionRevoker
	cost     int
	log      *zap.Logger
	now      func() time.Time
}

// New builds a Service. sessions may be nil, in which case deleting an
// account leaves its sessions to expire; they still fail to resolve because
// the account is gone.
func New(store Store, sessions SessionRevoker, bcryptCost int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		sessions: sessions,
		cost:     bcryptCost,
		log:      logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Authenticate checks a username and password. Unknown usernames and wrong
// passwords both return apperr.ErrUnauthenticated.
func (s *Service) Authenticate(ctx context.Context, username, password string) (models.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		authutil.BurnCompare(password)
		return models.Account{}, apperr.ErrUnauthenticated
	}

	a, err := s.store.GetByUsername(ctx, text.Fold(username))
	if errors.Is(err, apperr.ErrNotFound) {
		authutil.BurnCompare(password)
		return models.Account{}, apperr.ErrUnauthenticated
	}
	if err != nil {
		return models.Account{}, apperr.Storage("accounts.authenticate", err)
	}
	if !authutil.CheckPassword(a.PasswordHash, password) {
		return models.Account{}, apperr.ErrUnauthenticated
	}
	return a, nil
}

// NewAccount is the input for creating a teacher.
type NewAccount struct {
	FullName      string `json:"fullName" validate:"required,max=100" label:"Full name"`
	Username      string `json:"username" validate:"required,max=50" label:"Username"`
	Password      string `json:"password" validate:"required" label:"Password"`
	AssignedClass string `json:"assignedClass" validate:"required,max=50,nefold=Admin" label:"Assigned class"`
}

func (in *NewAccount) normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Username = strings.TrimSpace(in.Username)
	in.AssignedClass = strings.TrimSpace(in.AssignedClass)
}

// CreateAccount creates a teacher account. The admin class cannot be
// assigned here.
func (s *Service) CreateAccount(ctx context.Context, in NewAccount) (models.Account, error) {
	in.normalize()
	if err := inputval.Validate(in).Err(); err != nil {
		return models.Account{}, err
	}
	if err := assignedPasswordRule(in.Password); err != nil {
		return models.Account{}, err
	}

	hash, err := authutil.HashPassword(in.Password, s.cost)
	if err != nil {
		return models.Account{}, apperr.Storage("accounts.hash", err)
	}
	now := s.now()
	a := models.Account{
		ID:            uuid.NewString(),
		FullName:      in.FullName,
		Username:      in.Username,
		UsernameCI:    text.Fold(in.Username),
		PasswordHash:  hash,
		AssignedClass: in.AssignedClass,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, a); err != nil {
		return models.Account{}, apperr.Storage("accounts.create", err)
	}
	s.log.Info("teacher account created", zap.String("account_id", a.ID), zap.String("username", a.Username))
	return a, nil
}

// AccountUpdate carries optional changes; nil fields are left as they are.
type AccountUpdate struct {
	FullName      *string `json:"fullName"`
	Username      *string `json:"username"`
	Password      *string `json:"password"`
	AssignedClass *string `json:"assignedClass"`
}

// updateCheck validates the fields present in an AccountUpdate.
type updateCheck struct {
	FullName      string `validate:"omitempty,max=100" label:"Full name"`
	Username      string `validate:"omitempty,max=50" label:"Username"`
	AssignedClass string `validate:"omitempty,max=50,nefold=Admin" label:"Assigned class"`
}

// UpdateAccount changes a teacher. Admin accounts are never matched.
func (s *Service) UpdateAccount(ctx context.Context, id string, in AccountUpdate) (models.Account, error) {
	var (
		ch    = models.AccountChanges{UpdatedAt: s.now()}
		check updateCheck
		msgs  []string
	)
	present := func(p *string, label string) (string, bool) {
		if p == nil {
			return "", false
		}
		v := strings.TrimSpace(*p)
		if v == "" {
			msgs = append(msgs, label+" is required.")
			return "", false
		}
		return v, true
	}

	if v, ok := present(in.FullName, "Full name"); ok {
		check.FullName = v
		ch.FullName = &v
	}
	if v, ok := present(in.Username, "Username"); ok {
		check.Username = v
		ci := text.Fold(v)
		ch.Username, ch.UsernameCI = &v, &ci
	}
	if v, ok := present(in.AssignedClass, "Assigned class"); ok {
		check.AssignedClass = v
		ch.AssignedClass = &v
	}
	if in.Password != nil && *in.Password != "" {
		if err := assignedPasswordRule(*in.Password); err != nil {
			return models.Account{}, err
		}
		hash, err := authutil.HashPassword(*in.Password, s.cost)
		if err != nil {
			return models.Account{}, apperr.Storage("accounts.hash", err)
		}
		ch.PasswordHash = &hash
	}

	res := inputval.Validate(check)
	for _, fe := range res.Errors {
		msgs = append(msgs, fe.Message)
	}
	if len(msgs) > 0 {
		return models.Account{}, apperr.Invalid(msgs...)
	}

	if ch.IsEmpty() {
		// Nothing to change; still report a missing or admin account.
		a, err := s.store.GetByID(ctx, id)
		if err != nil {
			return models.Account{}, apperr.Storage("accounts.get", err)
		}
		if a.Role().IsAdmin() {
			return models.Account{}, apperr.ErrNotFound
		}
		return a, nil
	}

	a, err := s.store.UpdateTeacher(ctx, id, ch)
	if err != nil {
		return models.Account{}, apperr.Storage("accounts.update", err)
	}
	s.log.Info("teacher account updated", zap.String("account_id", id))
	return a, nil
}

// DeleteAccount removes a teacher, their reports and their sessions.
func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	if err := s.store.DeleteTeacher(ctx, id); err != nil {
		return apperr.Storage("accounts.delete", err)
	}
	if s.sessions != nil {
		n, err := s.sessions.DeleteByAccount(ctx, id)
		if err != nil {
			// The account is gone, so the sessions can no longer resolve.
			s.log.Warn("revoke sessions failed", zap.String("account_id", id), zap.Error(err))
		} else if n > 0 {
			s.log.Info("sessions revoked", zap.String("account_id", id), zap.Int64("count", n))
		}
	}
	s.log.Info("teacher account deleted", zap.String("account_id", id))
	return nil
}

// ListTeachers returns every non-admin account ordered by full name.
func (s *Service) ListTeachers(ctx context.Context) ([]models.Account, error) {
	list, err := s.store.ListTeachers(ctx)
	if err != nil {
		return nil, apperr.Storage("accounts.list", err)
	}
	return list, nil
}

// Get returns one account of any role.
func (s *Service) Get(ctx context.Context, id string) (models.Account, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return models.Account{}, apperr.Storage("accounts.get", err)
	}
	return a, nil
}

// EnsureBootstrapAdmin creates the administrator account, or resets its
// password and class when it already exists.
func (s *Service) EnsureBootstrapAdmin(ctx context.Context, username, password, fullName string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return apperr.Invalid("Admin username and password are required.")
	}
	if fullName == "" {
		fullName = "Administrator"
	}
	hash, err := authutil.HashPassword(password, s.cost)
	if err != nil {
		return apperr.Storage("accounts.hash", err)
	}
	now := s.now()
	created, err := s.store.UpsertAdmin(ctx, models.Account{
		ID:            uuid.NewString(),
		FullName:      fullName,
		Username:      username,
		UsernameCI:    text.Fold(username),
		PasswordHash:  hash,
		AssignedClass: models.AdminClass,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return apperr.Storage("accounts.bootstrap_admin", err)
	}
	if created {
		s.log.Info("bootstrap admin created", zap.String("username", username))
	} else {
		s.log.Info("bootstrap admin password reset", zap.String("username", username))
	}
	return nil
}

// ChangePassword replaces the caller's own password after checking the
// current one.
func (s *Service) ChangePassword(ctx context.Context, id, current, next string) error {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return apperr.Storage("accounts.get", err)
	}
	if !authutil.CheckPassword(a.PasswordHash, current) {
		return apperr.Invalid("Current password is incorrect.")
	}
	if err := passwordRule(next); err != nil {
		return err
	}
	hash, err := authutil.HashPassword(next, s.cost)
	if err != nil {
		return apperr.Storage("accounts.hash", err)
	}
	if err := s.store.SetPasswordHash(ctx, id, hash, s.now()); err != nil {
		return apperr.Storage("accounts.set_password", err)
	}
	s.log.Info("password changed", zap.String("account_id", id))
	return nil
}

// FetchUser implements auth.UserFetcher.
func (s *Service) FetchUser(ctx context.Context, accountID string) *auth.SessionUser {
	a, err := s.store.GetByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			s.log.Warn("fetch session user failed", zap.String("account_id", accountID), zap.Error(err))
		}
		return nil
	}
	return &auth.SessionUser{
		ID:       a.ID,
		Name:     a.FullName,
		Username: a.Username,
		Role:     a.Role(),
	}
}

// assignedPasswordRule applies to passwords set by an administrator.
func assignedPasswordRule(pw string) error {
	if authutil.CheckPasswordLength(pw) != nil {
		return apperr.Invalid("Password must be at most 72 bytes.")
	}
	return nil
}

func passwordRule(pw string) error {
	switch authutil.CheckPasswordRules(pw) {
	case nil:
		return nil
	case authutil.ErrPasswordTooLong:
		return apperr.Invalid("Password must be at most 72 bytes.")
	default:
		return apperr.Invalid("Password must be at least 6 characters.")
	}
}
