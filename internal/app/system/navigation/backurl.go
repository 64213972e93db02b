// Package navigation picks safe redirect targets.
package navigation

import (
	"net/http"
	"strings"

	"github.com/dalemusser/readinglog/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// AfterLogin returns where a freshly signed-in user should go. A requested
// return path (the argument, else the "return" query parameter) is used
// only when it is a safe local path inside the role's own area; anything
// else falls back to the role's home.
func AfterLogin(r *http.Request, requested string, role models.Role) string {
	home := role.HomePath()
	ret := urlutil.SafeReturn(strings.TrimSpace(requested), "", "")
	if ret == "" {
		ret = urlutil.SafeReturn(query.Get(r, "return"), "", "")
	}
	if ret == "" {
		return home
	}
	if ret == home || strings.HasPrefix(ret, home+"/") || strings.HasPrefix(ret, home+"?") {
		return ret
	}
	return home
}
