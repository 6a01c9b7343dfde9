package remote_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mediboard/mediboard/internal/activity"
	"github.com/mediboard/mediboard/internal/remote"
	_ "github.com/mediboard/mediboard/testing"
)

func TestEnrichUsersResolvesSnapshots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users/1":
			_, _ = w.Write([]byte(`{"data":{"id":1,"name":"Ann","email":"ann@clinic.test","roles":[{"id":3,"name":"doctor"}]}}`))
		case "/api/users/2":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := remote.NewClient(srv.URL, time.Second, nil)
	records := []activity.Record{
		{ID: 10, UserID: 1},
		{ID: 11, UserID: 2},
		{ID: 12, UserID: 0},
		{ID: 13, UserID: 1, User: &activity.UserSnapshot{ID: 99, Name: "Prefilled"}},
	}

	enriched := client.EnrichUsers(sessionContext("tok"), records)
	if len(enriched) != 4 {
		t.Fatalf("enrichment must never drop records, got %d", len(enriched))
	}

	if enriched[0].User == nil || enriched[0].User.Name != "Ann" {
		t.Fatalf("expected record 10 enriched, got %+v", enriched[0].User)
	}
	if len(enriched[0].User.Roles) != 1 || enriched[0].User.Roles[0].Name != "doctor" {
		t.Fatalf("expected roles carried over, got %+v", enriched[0].User.Roles)
	}

	// Failed lookup keeps the record, minus the snapshot.
	if enriched[1].User != nil {
		t.Fatalf("failed lookup must leave user empty, got %+v", enriched[1].User)
	}

	if enriched[2].User != nil {
		t.Fatalf("records without a user id must stay untouched")
	}
	if enriched[3].User == nil || enriched[3].User.Name != "Prefilled" {
		t.Fatalf("pre-resolved snapshots must not be overwritten")
	}
}

func TestEnrichUsersHonoursConcurrencyLimit(t *testing.T) {
	var current, peak int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&current, 1)
		for {
			p := atomic.LoadInt64(&peak)
			if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt64(&current, -1)
		_, _ = w.Write([]byte(`{"data":{"id":1,"name":"x","email":"x@y.z"}}`))
	}))
	defer srv.Close()

	client := remote.NewClient(srv.URL, 5*time.Second, nil, remote.WithEnrichLimit(2))
	records := make([]activity.Record, 10)
	for i := range records {
		records[i] = activity.Record{ID: int64(i), UserID: 1}
	}

	client.EnrichUsers(sessionContext("tok"), records)
	if p := atomic.LoadInt64(&peak); p > 2 {
		t.Fatalf("expected at most 2 concurrent lookups, observed %d", p)
	}
}
