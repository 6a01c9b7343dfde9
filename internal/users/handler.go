package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mediboard/mediboard/internal/guard"
	"github.com/mediboard/mediboard/internal/shared"
	"github.com/mediboard/mediboard/internal/view"
)

// Handler serves the user directory page.
type Handler struct {
	service *Service
	views   *view.Engine
	csrf    *shared.CSRFManager
	logger  *slog.Logger
}

// NewHandler constructs the users HTTP handler.
func NewHandler(service *Service, views *view.Engine, csrf *shared.CSRFManager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, views: views, csrf: csrf, logger: logger}
}

// MountRoutes registers the user routes on an already guarded router group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/users", h.list)
}

type listPage struct {
	Users []User
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())

	list, err := h.service.ListUsers(r.Context())
	flash := sess.PopFlash()
	if err != nil {
		h.logger.Warn("list users", slog.Any("error", err))
		if flash == nil {
			flash = &shared.FlashMessage{Kind: "error", Message: "The user directory is unavailable right now."}
		}
	}

	token, tokenErr := h.csrf.EnsureToken(r.Context(), sess)
	if tokenErr != nil {
		h.logger.Error("csrf token", slog.Any("error", tokenErr))
	}

	data := view.TemplateData{
		Title:       "Users",
		CSRFToken:   token,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		UserName:    userName(r),
		Data:        listPage{Users: list},
	}
	if err := h.views.Render(w, "pages/users.html", data); err != nil {
		h.logger.Error("render users", slog.Any("error", err))
	}
}

func userName(r *http.Request) string {
	if profile := guard.CurrentProfile(r); profile != nil {
		return profile.Name
	}
	return ""
}
