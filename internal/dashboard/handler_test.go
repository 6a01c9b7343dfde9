package dashboard_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/mediboard/mediboard/internal/activity"
	"github.com/mediboard/mediboard/internal/commissions"
	"github.com/mediboard/mediboard/internal/dashboard"
	"github.com/mediboard/mediboard/internal/guard"
	"github.com/mediboard/mediboard/internal/roles"
	"github.com/mediboard/mediboard/internal/shared"
	"github.com/mediboard/mediboard/internal/users"
	"github.com/mediboard/mediboard/internal/view"
	_ "github.com/mediboard/mediboard/testing"
)

type stubBackend struct {
	records      []activity.Record
	users        []users.User
	roles        []roles.Role
	transactions []commissions.Transaction
}

func (s *stubBackend) ListActivity(ctx context.Context) ([]activity.Record, error) {
	return s.records, nil
}

func (s *stubBackend) EnrichUsers(ctx context.Context, records []activity.Record) []activity.Record {
	return records
}

func (s *stubBackend) DeleteAllActivity(ctx context.Context) error { return nil }

func (s *stubBackend) ListUsers(ctx context.Context) ([]users.User, error) { return s.users, nil }

func (s *stubBackend) GetUser(ctx context.Context, id int64) (*users.User, error) {
	return nil, shared.ErrNotFound
}

func (s *stubBackend) ListRoles(ctx context.Context) ([]roles.Role, error) { return s.roles, nil }

func (s *stubBackend) CreateRole(ctx context.Context, name string) (*roles.Role, error) {
	return &roles.Role{ID: 99, Name: name}, nil
}

func (s *stubBackend) DeleteRole(ctx context.Context, id int64) error { return nil }

func (s *stubBackend) ListTransactions(ctx context.Context) ([]commissions.Transaction, error) {
	return s.transactions, nil
}

func newDashboard(t *testing.T, backend *stubBackend) chi.Router {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	templates, err := view.NewEngine()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}

	activityService := activity.NewService(backend, activity.NewCache(client, time.Minute), nil)
	handler := dashboard.NewHandler(
		activityService,
		users.NewService(backend),
		roles.NewService(backend, backend),
		commissions.NewService(backend),
		templates,
		shared.NewCSRFManager("csrfsecret"),
		guard.Middleware{},
		nil,
	)

	r := chi.NewRouter()
	handler.MountRoutes(r)
	r.Route("/admin", func(r chi.Router) {
		r.Use(guard.Middleware{}.RequireRoles("admin"))
		handler.MountAdmin(r)
	})
	return r
}

func sessionWith(blob string) *shared.Session {
	sess := &shared.Session{}
	if blob != "" {
		sess.SetCredentials("tok", blob)
	}
	return sess
}

func serve(t *testing.T, router chi.Router, req *http.Request, sess *shared.Session) *httptest.ResponseRecorder {
	t.Helper()
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

const (
	adminBlob      = `{"id":1,"name":"Bea","roles":[{"id":1,"name":"admin"}]}`
	doctorBlob     = `{"id":2,"name":"Ann","roles":[{"id":3,"name":"doctor"}]}`
	accountantBlob = `{"id":3,"name":"Cas","roles":[{"id":2,"name":"accountant"}]}`
)

func TestHomeShowsLandingForAnonymous(t *testing.T) {
	router := newDashboard(t, &stubBackend{})
	res := serve(t, router, httptest.NewRequest(http.MethodGet, "/", nil), sessionWith(""))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Sign in") {
		t.Fatalf("expected sign-in link on landing page")
	}
}

func TestHomeRedirectsSignedInUsers(t *testing.T) {
	router := newDashboard(t, &stubBackend{})
	res := serve(t, router, httptest.NewRequest(http.MethodGet, "/", nil), sessionWith(doctorBlob))
	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", res.Code)
	}
	if loc := res.Header().Get("Location"); loc != "/doctor" {
		t.Fatalf("expected /doctor, got %s", loc)
	}
}

func TestDoctorDashboardRendersHourlyChart(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	backend := &stubBackend{records: []activity.Record{
		{ID: 1, Country: "FR", User: &activity.UserSnapshot{ID: 2}, LoginAt: &at, SessionDuration: 120},
	}}
	router := newDashboard(t, backend)

	res := serve(t, router, httptest.NewRequest(http.MethodGet, "/doctor", nil), sessionWith(doctorBlob))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "<svg") {
		t.Fatalf("expected hourly chart svg")
	}
}

func TestDoctorDashboardGuarded(t *testing.T) {
	router := newDashboard(t, &stubBackend{})
	res := serve(t, router, httptest.NewRequest(http.MethodGet, "/doctor", nil), sessionWith(accountantBlob))
	if res.Code != http.StatusSeeOther {
		t.Fatalf("accountant must not reach the doctor dashboard, got %d", res.Code)
	}
}

func TestAdminDashboardRendersCounts(t *testing.T) {
	backend := &stubBackend{
		records: []activity.Record{{ID: 1, Country: "FR", Method: "GET"}},
		users:   []users.User{{ID: 1}, {ID: 2}},
		roles:   []roles.Role{{ID: 1, Name: "admin"}},
	}
	router := newDashboard(t, backend)

	res := serve(t, router, httptest.NewRequest(http.MethodGet, "/admin", nil), sessionWith(adminBlob))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	body := res.Body.String()
	if !strings.Contains(body, "<svg") {
		t.Fatalf("expected charts in admin dashboard")
	}
	if !strings.Contains(body, "/admin/activity") {
		t.Fatalf("expected link to the activity log")
	}
}

func TestAccountantDashboardAllowsAdminToo(t *testing.T) {
	backend := &stubBackend{transactions: []commissions.Transaction{
		{ID: 1, PractitionerID: 1, PractitionerName: "Dr. Aarts", AmountCents: 12000, CommissionCents: 1200},
	}}
	router := newDashboard(t, backend)

	for _, blob := range []string{accountantBlob, adminBlob} {
		res := serve(t, router, httptest.NewRequest(http.MethodGet, "/accountant", nil), sessionWith(blob))
		if res.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", blob, res.Code)
		}
		if !strings.Contains(res.Body.String(), "Dr. Aarts") {
			t.Fatalf("expected commission row")
		}
	}
}
