// Package dashboard serves the landing page and the role dashboards.
package dashboard

import (
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mediboard/mediboard/internal/activity"
	"github.com/mediboard/mediboard/internal/charts"
	"github.com/mediboard/mediboard/internal/commissions"
	"github.com/mediboard/mediboard/internal/guard"
	"github.com/mediboard/mediboard/internal/roles"
	"github.com/mediboard/mediboard/internal/shared"
	"github.com/mediboard/mediboard/internal/users"
	"github.com/mediboard/mediboard/internal/view"
)

// Handler renders the home page and the per-role dashboards.
type Handler struct {
	activity    *activity.Service
	users       *users.Service
	roles       *roles.Service
	commissions *commissions.Service
	views       *view.Engine
	csrf        *shared.CSRFManager
	guard       guard.Middleware
	logger      *slog.Logger
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(
	activitySvc *activity.Service,
	usersSvc *users.Service,
	rolesSvc *roles.Service,
	commissionsSvc *commissions.Service,
	views *view.Engine,
	csrf *shared.CSRFManager,
	guardMW guard.Middleware,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		activity:    activitySvc,
		users:       usersSvc,
		roles:       rolesSvc,
		commissions: commissionsSvc,
		views:       views,
		csrf:        csrf,
		guard:       guardMW,
		logger:      logger,
	}
}

// MountRoutes registers the landing page and the doctor and accountant
// dashboards. The admin dashboard mounts inside the guarded admin group via
// MountAdmin.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.home)
	r.With(h.guard.RequireRoles("doctor")).Get("/doctor", h.doctor)
	r.With(h.guard.RequireRoles("admin", "accountant")).Get("/accountant", h.accountant)
}

// MountAdmin registers the admin dashboard on an already guarded group.
func (h *Handler) MountAdmin(r chi.Router) {
	r.Get("/", h.admin)
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())

	// Signed-in visitors skip the landing page.
	if sess.Authenticated() {
		if profile, err := guard.Parse(sess.Profile()); err == nil {
			http.Redirect(w, r, profile.HomePath(), http.StatusSeeOther)
			return
		}
	}

	h.render(w, r, "pages/home.html", "Mediboard", nil)
}

type doctorPage struct {
	RecordCount  int
	CountryCount int
	HourlyChart  template.HTML
}

func (h *Handler) doctor(w http.ResponseWriter, r *http.Request) {
	snap, err := h.activity.Snapshot(r.Context())
	if err != nil {
		h.logger.Warn("doctor dashboard snapshot", slog.Any("error", err))
	}

	page := doctorPage{
		RecordCount:  len(snap.Records),
		CountryCount: len(activity.CountByCountry(snap.Records)),
		HourlyChart:  h.hourlyChart(snap.Records),
	}
	h.render(w, r, "pages/doctor.html", "Doctor dashboard", page)
}

type adminPage struct {
	UserCount    int
	RoleCount    int
	RecordCount  int
	CountryChart template.HTML
	MethodChart  template.HTML
}

func (h *Handler) admin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snap, err := h.activity.Snapshot(ctx)
	if err != nil {
		h.logger.Warn("admin dashboard snapshot", slog.Any("error", err))
	}
	userList, err := h.users.ListUsers(ctx)
	if err != nil {
		h.logger.Warn("admin dashboard users", slog.Any("error", err))
	}
	roleList, err := h.roles.ListRoles(ctx)
	if err != nil {
		h.logger.Warn("admin dashboard roles", slog.Any("error", err))
	}

	page := adminPage{
		UserCount:    len(userList),
		RoleCount:    len(roleList),
		RecordCount:  len(snap.Records),
		CountryChart: h.countryChart(snap.Records),
		MethodChart:  h.methodChart(snap.Records),
	}
	h.render(w, r, "pages/admin.html", "Admin dashboard", page)
}

type accountantPage struct {
	Summaries []commissions.PractitionerSummary
}

func (h *Handler) accountant(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.commissions.Report(r.Context())
	if err != nil {
		h.logger.Warn("accountant report", slog.Any("error", err))
	}
	h.render(w, r, "pages/accountant.html", "Commission report", accountantPage{Summaries: summaries})
}

func (h *Handler) hourlyChart(records []activity.Record) template.HTML {
	buckets := activity.HourlyUsage(records, time.Local)
	minutes := make([]float64, len(buckets))
	activeUsers := make([]float64, len(buckets))
	labels := make([]string, len(buckets))
	for i, bucket := range buckets {
		minutes[i] = float64(bucket.DurationMinutes)
		activeUsers[i] = float64(bucket.ActiveUsers)
		labels[i] = strconv.Itoa(bucket.Hour)
	}
	svg, err := charts.GroupedBars(charts.DefaultWidth, charts.DefaultHeight, minutes, activeUsers, labels, charts.BarOpts{
		Title:        "Session usage by hour",
		Description:  "Minutes of usage and distinct active users per hour of day",
		SeriesALabel: "Minutes",
		SeriesBLabel: "Active users",
	})
	if err != nil {
		h.logger.Error("hourly chart", slog.Any("error", err))
		return ""
	}
	return svg
}

func (h *Handler) countryChart(records []activity.Record) template.HTML {
	counts := activity.CountByCountry(records)
	if len(counts) == 0 {
		return ""
	}
	series := make([]float64, len(counts))
	labels := make([]string, len(counts))
	for i, c := range counts {
		series[i] = float64(c.Count)
		labels[i] = c.Country
		if labels[i] == "" {
			labels[i] = "unknown"
		}
	}
	svg, err := charts.Bars(charts.DefaultWidth, charts.DefaultHeight, series, labels, charts.BarOpts{
		Title:       "Requests by country",
		Description: "Record count per country of origin",
	})
	if err != nil {
		h.logger.Error("country chart", slog.Any("error", err))
		return ""
	}
	return svg
}

func (h *Handler) methodChart(records []activity.Record) template.HTML {
	counts := activity.CountByMethod(records)
	if len(counts) == 0 {
		return ""
	}
	series := make([]float64, len(counts))
	labels := make([]string, len(counts))
	for i, c := range counts {
		series[i] = float64(c.Count)
		labels[i] = c.Method
	}
	svg, err := charts.Bars(charts.DefaultWidth, charts.DefaultHeight, series, labels, charts.BarOpts{
		Title:       "Requests by method",
		Description: "Record count per HTTP method",
	})
	if err != nil {
		h.logger.Error("method chart", slog.Any("error", err))
		return ""
	}
	return svg
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name, title string, page any) {
	sess := shared.SessionFromContext(r.Context())
	token, err := h.csrf.EnsureToken(r.Context(), sess)
	if err != nil {
		h.logger.Error("csrf token", slog.Any("error", err))
	}
	data := view.TemplateData{
		Title:       title,
		CSRFToken:   token,
		Flash:       sess.PopFlash(),
		CurrentPath: r.URL.Path,
		Data:        page,
	}
	if profile := guard.CurrentProfile(r); profile != nil {
		data.UserName = profile.Name
	}
	if err := h.views.Render(w, name, data); err != nil {
		h.logger.Error("render dashboard", slog.String("template", name), slog.Any("error", err))
	}
}
