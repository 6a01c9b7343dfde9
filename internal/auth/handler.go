package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mediboard/mediboard/internal/guard"
	"github.com/mediboard/mediboard/internal/shared"
	"github.com/mediboard/mediboard/internal/view"
)

// Handler serves the login and logout routes.
type Handler struct {
	service  *Service
	views    *view.Engine
	csrf     *shared.CSRFManager
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler constructs the auth HTTP handler.
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

// MountRoutes registers the auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.submitLogin)
	r.Post("/logout", h.logout)
}

type loginForm struct {
	Identifier string `validate:"required,min=2,max=120"`
}

type loginPage struct {
	Form   loginForm
	Errors map[string]string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())

	// Signed-in users go straight to their dashboard.
	if sess.Authenticated() {
		if profile, err := guard.Parse(sess.Profile()); err == nil {
			http.Redirect(w, r, profile.HomePath(), http.StatusSeeOther)
			return
		}
	}

	h.renderLogin(w, r, loginPage{})
}

func (h *Handler) submitLogin(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, loginPage{Errors: map[string]string{"general": "Could not read the form, please retry."}})
		return
	}

	form := loginForm{Identifier: r.PostFormValue("identifier")}
	if err := h.validate.Struct(form); err != nil {
		h.renderLogin(w, r, loginPage{Form: form, Errors: map[string]string{"Identifier": "Enter your practice identifier."}})
		return
	}

	profile, err := h.service.Login(r.Context(), sess, form.Identifier)
	if err != nil {
		h.logger.Warn("login rejected", slog.Any("error", err))
		h.renderLogin(w, r, loginPage{Form: form, Errors: map[string]string{"general": "Sign-in failed. Check the identifier or try again later."}})
		return
	}

	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Welcome back, " + profile.Name + "."})
	http.Redirect(w, r, profile.HomePath(), http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	h.service.Logout(r.Context(), sess)
	http.Redirect(w, r, guard.LoginPath, http.StatusSeeOther)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, page loginPage) {
	sess := shared.SessionFromContext(r.Context())
	token, err := h.csrf.EnsureToken(r.Context(), sess)
	if err != nil {
		h.logger.Error("csrf token", slog.Any("error", err))
	}
	data := view.TemplateData{
		Title:       "Sign in",
		CSRFToken:   token,
		Flash:       sess.PopFlash(),
		CurrentPath: r.URL.Path,
		Data:        page,
	}
	if err := h.views.Render(w, "pages/login.html", data); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
	}
}
