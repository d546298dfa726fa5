package middleware_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/mo-amir99/coursehub-server-go/internal/features/profile"
	"github.com/mo-amir99/coursehub-server-go/internal/testutil"
)

func TestRequireAdmin(t *testing.T) {
	srv := testutil.NewServer(t)

	cases := []struct {
		name   string
		token  func() string
		status int
	}{
		{"no token", func() string { return "" }, http.StatusUnauthorized},
		{"garbage token", func() string { return "not-a-jwt" }, http.StatusUnauthorized},
		{"non admin", func() string { return srv.UserToken(t, "student@example.com") }, http.StatusForbidden},
		{"admin", func() string { return srv.AdminToken(t) }, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := srv.Do(t, http.MethodGet, "/api/admin/courses", nil, tc.token())
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRequireAdminCreatesProfileLazily(t *testing.T) {
	srv := testutil.NewServer(t)

	adminID := uuid.New()
	rec := srv.Do(t, http.MethodGet, "/api/admin/courses", nil, testutil.Token(t, adminID, "Admin@Example.com"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected allow-listed caller to pass, got %d: %s", rec.Code, rec.Body.String())
	}

	p, err := profile.Get(srv.DB, adminID)
	if err != nil {
		t.Fatalf("profile not created: %v", err)
	}
	if !p.IsAdmin || p.Email != "admin@example.com" {
		t.Fatalf("unexpected profile: %+v", p)
	}

	otherID := uuid.New()
	rec = srv.Do(t, http.MethodGet, "/api/admin/courses", nil, testutil.Token(t, otherID, "someone@example.com"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	other, err := profile.Get(srv.DB, otherID)
	if err != nil {
		t.Fatalf("profile not created: %v", err)
	}
	if other.IsAdmin {
		t.Fatal("caller outside the allow-list must not be admin")
	}
}

func TestRequireAdminPageRedirects(t *testing.T) {
	srv := testutil.NewServer(t)

	rec := srv.Do(t, http.MethodGet, "/admin/session", nil, "")
	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/admin/login?redirect=") {
		t.Fatalf("unexpected location %q", loc)
	}

	rec = srv.Do(t, http.MethodGet, "/admin/session", nil, srv.AdminToken(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRequireUserAttachesProfile(t *testing.T) {
	srv := testutil.NewServer(t)

	rec := srv.Do(t, http.MethodGet, "/api/profile", nil, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = srv.Do(t, http.MethodGet, "/api/profile", nil, srv.UserToken(t, "learner@example.com"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Profile       profile.Profile `json:"profile"`
		HasFullAccess bool            `json:"hasFullAccess"`
	}
	testutil.Decode(t, rec, &body)
	if body.Profile.Email != "learner@example.com" {
		t.Fatalf("unexpected profile %+v", body.Profile)
	}
	if !body.HasFullAccess {
		t.Fatal("test mode should grant full access")
	}
}
