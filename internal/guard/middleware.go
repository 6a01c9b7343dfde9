package guard

import (
	"log/slog"
	"net/http"

	"github.com/mediboard/mediboard/internal/shared"
)

// LoginPath is where denied requests are redirected.
const LoginPath = "/login"

// Middleware wires route guarding for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// RequireRoles denies the request unless the session carries a profile whose
// roles intersect the given set. Denials redirect to the login page; nothing
// is ever surfaced as an error body.
func (m Middleware) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil || !sess.Authenticated() {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			if !Decide(sess.Profile(), roles) {
				if m.Logger != nil {
					m.Logger.Warn("route denied", slog.String("path", r.URL.Path))
				}
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CurrentProfile extracts the parsed profile from the request session, nil
// when absent or malformed.
func CurrentProfile(r *http.Request) *Profile {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return nil
	}
	profile, err := Parse(sess.Profile())
	if err != nil {
		return nil
	}
	return profile
}
