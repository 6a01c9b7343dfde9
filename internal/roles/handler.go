package roles

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mediboard/mediboard/internal/guard"
	"github.com/mediboard/mediboard/internal/shared"
	"github.com/mediboard/mediboard/internal/view"
)

// Handler serves the role management page.
type Handler struct {
	service  *Service
	views    *view.Engine
	csrf     *shared.CSRFManager
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler constructs the roles HTTP handler.
func NewHandler(service *Service, views *view.Engine, csrf *shared.CSRFManager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service:  service,
		views:    views,
		csrf:     csrf,
		validate: validator.New(),
		logger:   logger,
	}
}

// MountRoutes registers the role routes on an already guarded router group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/roles", h.list)
	r.Post("/roles", h.create)
	r.Post("/roles/{id}/delete", h.delete)
}

type listPage struct {
	Roles []Role
}

type createForm struct {
	Name string `validate:"required,min=2,max=64"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())

	list, err := h.service.ListRoles(r.Context())
	flash := sess.PopFlash()
	if err != nil {
		h.logger.Warn("list roles", slog.Any("error", err))
		if flash == nil {
			flash = &shared.FlashMessage{Kind: "error", Message: "The role list is unavailable right now."}
		}
	}

	token, tokenErr := h.csrf.EnsureToken(r.Context(), sess)
	if tokenErr != nil {
		h.logger.Error("csrf token", slog.Any("error", tokenErr))
	}

	data := view.TemplateData{
		Title:       "Roles",
		CSRFToken:   token,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		UserName:    currentUserName(r),
		Data:        listPage{Roles: list},
	}
	if err := h.views.Render(w, "pages/roles.html", data); err != nil {
		h.logger.Error("render roles", slog.Any("error", err))
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "Could not read the form."})
		http.Redirect(w, r, "/admin/roles", http.StatusSeeOther)
		return
	}

	form := createForm{Name: strings.TrimSpace(r.PostFormValue("name"))}
	if err := h.validate.Struct(form); err != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "Role names need between 2 and 64 characters."})
		http.Redirect(w, r, "/admin/roles", http.StatusSeeOther)
		return
	}

	role, err := h.service.CreateRole(r.Context(), form.Name)
	if err != nil {
		h.logger.Warn("create role", slog.Any("error", err))
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "Could not create the role. Try again later."})
	} else {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Role " + role.Name + " created."})
	}
	http.Redirect(w, r, "/admin/roles", http.StatusSeeOther)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "Unknown role."})
		http.Redirect(w, r, "/admin/roles", http.StatusSeeOther)
		return
	}

	if err := h.service.DeleteRole(r.Context(), id); err != nil {
		h.logger.Warn("delete role", slog.Int64("role_id", id), slog.Any("error", err))
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "Could not delete the role. Try again later."})
	} else {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Role deleted."})
	}
	http.Redirect(w, r, "/admin/roles", http.StatusSeeOther)
}

func currentUserName(r *http.Request) string {
	if profile := guard.CurrentProfile(r); profile != nil {
		return profile.Name
	}
	return ""
}
