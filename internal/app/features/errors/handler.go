// internal/app/features/errors/handler.go
package errors

import (
	"net/http"

	"github.com/dalemusser/readinglog/internal/app/system/authz"
)

// Handler serves the landing targets of guard redirects.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

type pageData struct {
	Error    string `json:"error"`
	SignedIn bool   `json:"signedIn"`
	Role     string `json:"role,omitempty"`
	UserName string `json:"userName,omitempty"`
	BackURL  string `json:"backUrl"`
}

// Forbidden handles GET /forbidden.
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	role, name, _, signedIn := authz.UserCtx(r)
	WriteJSON(w, http.StatusForbidden, pageData{
		Error:    "Access denied",
		SignedIn: signedIn,
		Role:     role,
		UserName: name,
		BackURL:  "/",
	})
}

// Unauthorized handles GET /unauthorized.
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusUnauthorized, pageData{
		Error:   "Not signed in",
		BackURL: "/login",
	})
}
