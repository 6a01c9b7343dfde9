package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	activityhttp "github.com/mediboard/mediboard/internal/activity/http"
	"github.com/mediboard/mediboard/internal/auth"
	"github.com/mediboard/mediboard/internal/dashboard"
	"github.com/mediboard/mediboard/internal/guard"
	"github.com/mediboard/mediboard/internal/observability"
	"github.com/mediboard/mediboard/internal/platform/httpx"
	"github.com/mediboard/mediboard/internal/roles"
	"github.com/mediboard/mediboard/internal/shared"
	"github.com/mediboard/mediboard/internal/users"
	"github.com/mediboard/mediboard/jobs"
	"github.com/mediboard/mediboard/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	AuthHandler      *auth.Handler
	DashboardHandler *dashboard.Handler
	ActivityHandler  *activityhttp.Handler
	UsersHandler     *users.Handler
	RolesHandler     *roles.Handler
	JobHandler       *jobs.Handler
	Guard            guard.Middleware
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with Mediboard defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	params.DashboardHandler.MountRoutes(r)
	params.AuthHandler.MountRoutes(r)

	// The admin area carries the dashboard, the activity log and user and
	// role management.
	r.Route("/admin", func(r chi.Router) {
		r.Use(params.Guard.RequireRoles("admin"))
		params.DashboardHandler.MountAdmin(r)
		params.ActivityHandler.MountRoutes(r)
		params.UsersHandler.MountRoutes(r)
		params.RolesHandler.MountRoutes(r)
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	// Unknown paths fall back to the landing page rather than a 404 body.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers so
// assets are cached for an hour in browsers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
