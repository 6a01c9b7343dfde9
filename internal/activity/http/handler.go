// Package activityhttp serves the activity log pages.
package activityhttp

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mediboard/mediboard/internal/activity"
	"github.com/mediboard/mediboard/internal/guard"
	"github.com/mediboard/mediboard/internal/shared"
	"github.com/mediboard/mediboard/internal/view"
)

const defaultPageSize = 20

// Handler renders the activity listing, export and delete-all routes.
type Handler struct {
	service *activity.Service
	views   *view.Engine
	csrf    *shared.CSRFManager
	logger  *slog.Logger
}

// NewHandler constructs the activity HTTP handler.
func NewHandler(service *activity.Service, views *view.Engine, csrf *shared.CSRFManager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, views: views, csrf: csrf, logger: logger}
}

// MountRoutes registers the activity routes on the given (already guarded)
// router group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/activity", h.list)
	r.Post("/activity/delete", h.deleteAll)
	r.Get("/activity/export", h.export)
}

type listPage struct {
	Stale     bool
	Query     activity.Query
	Methods   []string
	Countries []string
	Result    activity.Result
	Pager     view.Pager
	ExportURL string
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())

	snap, err := h.service.Snapshot(r.Context())
	stale := err != nil

	query := queryFromRequest(r)
	result := activity.Apply(snap.Records, query)

	page := listPage{
		Stale:     stale,
		Query:     query,
		Methods:   distinct(snap.Records, func(rec activity.Record) string { return rec.Method }),
		Countries: distinct(snap.Records, func(rec activity.Record) string { return rec.Country }),
		Result:    result,
		Pager:     view.NewPager(result.Paging, r.URL),
		ExportURL: exportURL(r),
	}

	token, tokenErr := h.csrf.EnsureToken(r.Context(), sess)
	if tokenErr != nil {
		h.logger.Error("csrf token", slog.Any("error", tokenErr))
	}

	flash := sess.PopFlash()
	if flash == nil && stale {
		flash = &shared.FlashMessage{Kind: "error", Message: "The records service is unavailable; showing the last known data."}
	}

	data := view.TemplateData{
		Title:       "Activity log",
		CSRFToken:   token,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		UserName:    currentUserName(r),
		Data:        page,
	}
	if err := h.views.Render(w, "pages/activity.html", data); err != nil {
		h.logger.Error("render activity", slog.Any("error", err))
	}
}

func (h *Handler) deleteAll(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())

	if err := h.service.DeleteAll(r.Context()); err != nil {
		h.logger.Warn("delete all activity", slog.Any("error", err))
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "Could not delete the activity records. Try again later."})
	} else {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "All activity records deleted."})
	}
	// The redirect carries no page parameter, so the listing restarts at page 1.
	http.Redirect(w, r, "/admin/activity", http.StatusSeeOther)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context())
	if err != nil && len(snap.Records) == 0 {
		sess := shared.SessionFromContext(r.Context())
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "Export unavailable: the records service is unreachable."})
		http.Redirect(w, r, "/admin/activity", http.StatusSeeOther)
		return
	}

	// The export honors the same filters as the listing, minus paging.
	records := activity.Filter(snap.Records, queryFromRequest(r))

	payload, err := activity.WriteCSV(records)
	if err != nil {
		h.logger.Error("export csv", slog.Any("error", err))
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("activity-%s.csv", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	_, _ = w.Write(payload)
}

func queryFromRequest(r *http.Request) activity.Query {
	values := r.URL.Query()
	page, _ := strconv.Atoi(values.Get("page"))
	return activity.Query{
		Search:   values.Get("q"),
		Method:   values.Get("method"),
		Country:  values.Get("country"),
		Page:     page,
		PageSize: defaultPageSize,
	}
}

// exportURL carries the active filters over to the CSV export link.
func exportURL(r *http.Request) string {
	u := "/admin/activity/export"
	if q := r.URL.RawQuery; q != "" {
		u += "?" + q
	}
	return u
}

// distinct collects non-empty field values in first-encounter order, for the
// filter dropdowns.
func distinct(records []activity.Record, field func(activity.Record) string) []string {
	seen := make(map[string]struct{}, len(records))
	out := make([]string, 0)
	for _, rec := range records {
		v := field(rec)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func currentUserName(r *http.Request) string {
	if profile := guard.CurrentProfile(r); profile != nil {
		return profile.Name
	}
	return ""
}
