// Package authz answers role questions about the current request.
package authz

import (
	"net/http"

	"github.com/dalemusser/readinglog/internal/app/system/apperr"
	"github.com/dalemusser/readinglog/internal/app/system/auth"
	"github.com/dalemusser/readinglog/internal/domain/models"
)

// UserCtx returns the user's role, name and account ID. For anonymous
// requests it returns "visitor", "", "", false.
func UserCtx(r *http.Request) (role string, name string, userID string, ok bool) {
	u, ok := auth.CurrentUser(r)
	if !ok || u.ID == "" {
		return "visitor", "", "", false
	}
	return u.Role.String(), u.Name, u.ID, true
}

// IsAdmin reports whether the request is from an administrator.
func IsAdmin(r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	return ok && u.Role.IsAdmin()
}

// IsTeacher reports whether the request is from a teacher.
func IsTeacher(r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	return ok && u.Role.IsTeacher()
}

// Require returns the signed-in user if their role kind is kind.
// Otherwise it returns apperr.ErrUnauthenticated or apperr.ErrForbidden.
func Require(r *http.Request, kind models.RoleKind) (*auth.SessionUser, error) {
	u, ok := auth.CurrentUser(r)
	if !ok || u.ID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	if u.Role.Kind != kind {
		return nil, apperr.ErrForbidden
	}
	return u, nil
}
