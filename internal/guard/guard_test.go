package guard_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mediboard/mediboard/internal/guard"
	"github.com/mediboard/mediboard/internal/shared"
)

const doctorBlob = `{"id":7,"name":"Ann Cline","email":"ann@clinic.test","roles":[{"id":3,"name":"Doctor"}]}`

func TestParseRejectsBadBlobs(t *testing.T) {
	cases := map[string]string{
		"empty":      "",
		"whitespace": "   ",
		"malformed":  `{"id":`,
		"zero id":    `{"name":"ghost","roles":[]}`,
	}
	for name, blob := range cases {
		if _, err := guard.Parse(blob); err == nil {
			t.Fatalf("%s: expected parse error", name)
		}
	}
}

func TestParseAcceptsValidBlob(t *testing.T) {
	profile, err := guard.Parse(doctorBlob)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if profile.ID != 7 || profile.Name != "Ann Cline" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if len(profile.Roles) != 1 || profile.Roles[0].Name != "Doctor" {
		t.Fatalf("unexpected roles: %+v", profile.Roles)
	}
}

func TestHasAnyRoleCaseInsensitive(t *testing.T) {
	profile := &guard.Profile{ID: 1, Roles: []guard.Role{{ID: 1, Name: "ADMIN"}}}
	if !profile.HasAnyRole([]string{"admin"}) {
		t.Fatalf("expected admin to match case-insensitively")
	}
	if !profile.HasAnyRole([]string{"admin", "accountant"}) {
		t.Fatalf("expected intersection with wider permitted set")
	}
	if profile.HasAnyRole([]string{"doctor"}) {
		t.Fatalf("did not expect doctor to match")
	}

	var nobody *guard.Profile
	if nobody.HasAnyRole([]string{"admin"}) {
		t.Fatalf("nil profile must never match")
	}
}

func TestDecideFailsClosed(t *testing.T) {
	if guard.Decide("", []string{"admin"}) {
		t.Fatalf("empty blob must deny")
	}
	if guard.Decide(`{"id":0,"roles":[{"id":1,"name":"admin"}]}`, []string{"admin"}) {
		t.Fatalf("zero-id blob must deny")
	}
	if guard.Decide(doctorBlob, []string{"admin"}) {
		t.Fatalf("doctor must not reach admin routes")
	}
	if !guard.Decide(doctorBlob, []string{"doctor"}) {
		t.Fatalf("doctor must reach doctor routes")
	}
}

func TestHomePath(t *testing.T) {
	cases := []struct {
		roles []guard.Role
		want  string
	}{
		{[]guard.Role{{ID: 1, Name: "admin"}}, "/admin"},
		{[]guard.Role{{ID: 2, Name: "accountant"}}, "/accountant"},
		{[]guard.Role{{ID: 3, Name: "doctor"}}, "/doctor"},
		{[]guard.Role{{ID: 1, Name: "admin"}, {ID: 2, Name: "accountant"}}, "/admin"},
		{nil, "/login"},
	}
	for _, tc := range cases {
		profile := &guard.Profile{ID: 1, Roles: tc.roles}
		if got := profile.HomePath(); got != tc.want {
			t.Fatalf("roles %v: expected %s, got %s", tc.roles, tc.want, got)
		}
	}
}

func TestRequireRolesRedirectsAnonymous(t *testing.T) {
	mw := guard.Middleware{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	sess := &shared.Session{}
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	res := httptest.NewRecorder()
	mw.RequireRoles("admin")(next).ServeHTTP(res, req)

	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", res.Code)
	}
	if loc := res.Header().Get("Location"); loc != guard.LoginPath {
		t.Fatalf("expected redirect to %s, got %s", guard.LoginPath, loc)
	}
}

func TestRequireRolesDeniesWrongRole(t *testing.T) {
	mw := guard.Middleware{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	sess := &shared.Session{}
	sess.SetCredentials("token", doctorBlob)
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	res := httptest.NewRecorder()
	mw.RequireRoles("admin")(next).ServeHTTP(res, req)
	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect for doctor on admin route, got %d", res.Code)
	}

	res = httptest.NewRecorder()
	mw.RequireRoles("admin", "accountant")(next).ServeHTTP(res, req)
	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect for doctor on accountant route, got %d", res.Code)
	}

	res = httptest.NewRecorder()
	mw.RequireRoles("doctor")(next).ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected doctor to pass doctor gate, got %d", res.Code)
	}
}
