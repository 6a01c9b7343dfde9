package activityhttp_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/mediboard/mediboard/internal/activity"
	activityhttp "github.com/mediboard/mediboard/internal/activity/http"
	"github.com/mediboard/mediboard/internal/shared"
	"github.com/mediboard/mediboard/internal/view"
	_ "github.com/mediboard/mediboard/testing"
)

type stubFetcher struct {
	records   []activity.Record
	listErr   error
	deleteErr error
	deleted   int
}

func (s *stubFetcher) ListActivity(ctx context.Context) ([]activity.Record, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.records, nil
}

func (s *stubFetcher) EnrichUsers(ctx context.Context, records []activity.Record) []activity.Record {
	return records
}

func (s *stubFetcher) DeleteAllActivity(ctx context.Context) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted++
	return nil
}

func newRouter(t *testing.T, fetcher *stubFetcher) chi.Router {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	templates, err := view.NewEngine()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	service := activity.NewService(fetcher, activity.NewCache(client, time.Minute), nil)
	handler := activityhttp.NewHandler(service, templates, shared.NewCSRFManager("csrfsecret"), nil)

	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func serve(t *testing.T, router chi.Router, req *http.Request, sess *shared.Session) *httptest.ResponseRecorder {
	t.Helper()
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func adminSession() *shared.Session {
	sess := &shared.Session{}
	sess.SetCredentials("tok", `{"id":1,"name":"Bea","roles":[{"id":1,"name":"admin"}]}`)
	return sess
}

func TestListRendersRecords(t *testing.T) {
	fetcher := &stubFetcher{records: []activity.Record{
		{ID: 1, IPAddress: "192.168.1.10", Country: "FR", City: "Paris", Method: "GET"},
		{ID: 2, IPAddress: "10.0.0.3", Country: "BE", City: "Brussels", Method: "POST"},
	}}
	router := newRouter(t, fetcher)

	res := serve(t, router, httptest.NewRequest(http.MethodGet, "/activity", nil), adminSession())
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	body := res.Body.String()
	if !strings.Contains(body, "192.168.1.10") || !strings.Contains(body, "10.0.0.3") {
		t.Fatalf("expected records in table")
	}
	// Both countries feed the filter dropdown.
	if !strings.Contains(body, "FR") || !strings.Contains(body, "BE") {
		t.Fatalf("expected filter options in markup")
	}
}

func TestListAppliesSearchFilter(t *testing.T) {
	fetcher := &stubFetcher{records: []activity.Record{
		{ID: 1, IPAddress: "192.168.1.10", City: "Paris", Method: "GET"},
		{ID: 2, IPAddress: "10.0.0.3", City: "Brussels", Method: "POST"},
	}}
	router := newRouter(t, fetcher)

	res := serve(t, router, httptest.NewRequest(http.MethodGet, "/activity?q=paris", nil), adminSession())
	body := res.Body.String()
	if !strings.Contains(body, "192.168.1.10") {
		t.Fatalf("expected matching record")
	}
	if strings.Contains(body, "10.0.0.3") {
		t.Fatalf("non-matching record must be filtered out")
	}
}

func TestListShowsStaleNoticeOnRemoteFailure(t *testing.T) {
	fetcher := &stubFetcher{listErr: errors.New("api down")}
	router := newRouter(t, fetcher)

	res := serve(t, router, httptest.NewRequest(http.MethodGet, "/activity", nil), adminSession())
	if res.Code != http.StatusOK {
		t.Fatalf("remote failure must still render, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "unavailable") {
		t.Fatalf("expected outage notice in body")
	}
}

func TestDeleteAllRedirectsToFirstPage(t *testing.T) {
	fetcher := &stubFetcher{records: []activity.Record{{ID: 1}}}
	router := newRouter(t, fetcher)
	sess := adminSession()

	res := serve(t, router, httptest.NewRequest(http.MethodPost, "/activity/delete", nil), sess)
	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", res.Code)
	}
	loc := res.Header().Get("Location")
	if loc != "/admin/activity" {
		t.Fatalf("expected redirect without page parameter, got %s", loc)
	}
	if fetcher.deleted != 1 {
		t.Fatalf("expected upstream delete call")
	}
	if flash := sess.PopFlash(); flash == nil || flash.Kind != "success" {
		t.Fatalf("expected success flash, got %+v", flash)
	}
}

func TestDeleteAllFailureKeepsRecordsAndFlashesError(t *testing.T) {
	fetcher := &stubFetcher{deleteErr: errors.New("boom")}
	router := newRouter(t, fetcher)
	sess := adminSession()

	res := serve(t, router, httptest.NewRequest(http.MethodPost, "/activity/delete", nil), sess)
	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", res.Code)
	}
	if flash := sess.PopFlash(); flash == nil || flash.Kind != "error" {
		t.Fatalf("expected error flash, got %+v", flash)
	}
}

func TestExportStreamsCSV(t *testing.T) {
	fetcher := &stubFetcher{records: []activity.Record{
		{ID: 5, IPAddress: "192.168.1.10", Method: "GET"},
	}}
	router := newRouter(t, fetcher)

	res := serve(t, router, httptest.NewRequest(http.MethodGet, "/activity/export", nil), adminSession())
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if ct := res.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := res.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Fatalf("expected attachment disposition, got %q", cd)
	}
	body := res.Body.String()
	if !strings.HasPrefix(body, "id,ip_address") {
		t.Fatalf("expected csv header, got %q", body[:40])
	}
	if !strings.Contains(body, "192.168.1.10") {
		t.Fatalf("expected record row in csv")
	}
}

func TestExportHonorsFilters(t *testing.T) {
	fetcher := &stubFetcher{records: []activity.Record{
		{ID: 1, IPAddress: "192.168.1.10", Method: "GET"},
		{ID: 2, IPAddress: "10.0.0.3", Method: "POST"},
	}}
	router := newRouter(t, fetcher)

	res := serve(t, router, httptest.NewRequest(http.MethodGet, "/activity/export?method=POST", nil), adminSession())
	body := res.Body.String()
	if !strings.Contains(body, "10.0.0.3") {
		t.Fatalf("expected matching record in csv")
	}
	if strings.Contains(body, "192.168.1.10") {
		t.Fatalf("filtered-out record must not be exported")
	}
}
