package debug_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/mo-amir99/coursehub-server-go/internal/testutil"
	"github.com/mo-amir99/coursehub-server-go/pkg/config"
)

func TestDebugCourseReportsDurationDrift(t *testing.T) {
	srv := testutil.NewServer(t)
	token := srv.AdminToken(t)
	draft := testutil.SeedCourse(t, srv.DB, "Draft", false)
	sec := testutil.SeedSection(t, srv.DB, draft.ID, "Intro", 1)
	testutil.SeedLesson(t, srv.DB, sec, "a", 1, 600, false)

	rec := srv.Do(t, http.MethodGet, "/api/debug/courses/"+draft.ID.String(), nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Counts struct {
			Sections        int   `json:"sections"`
			Lessons         int   `json:"lessons"`
			OrphanedLessons int64 `json:"orphanedLessons"`
			StoredMinutes   int   `json:"storedMinutes"`
			ComputedMinutes int   `json:"computedMinutes"`
			DurationInSync  bool  `json:"durationInSync"`
		} `json:"counts"`
	}
	testutil.Decode(t, rec, &body)
	if body.Counts.Sections != 1 || body.Counts.Lessons != 1 || body.Counts.OrphanedLessons != 0 {
		t.Fatalf("unexpected counts %+v", body.Counts)
	}
	if body.Counts.StoredMinutes != 0 || body.Counts.ComputedMinutes != 10 || body.Counts.DurationInSync {
		t.Fatalf("drift not reported: %+v", body.Counts)
	}
}

func TestDebugRoutesAreAdminOnly(t *testing.T) {
	srv := testutil.NewServer(t)

	rec := srv.Do(t, http.MethodGet, "/api/debug/db-stats", nil, srv.UserToken(t, "student@example.com"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	rec = srv.Do(t, http.MethodGet, "/api/debug/db-stats", nil, srv.AdminToken(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDebugRoutesHiddenWhenDisabled(t *testing.T) {
	srv := testutil.NewServer(t, testutil.WithFlags(config.ProductionDefaults()))

	rec := srv.Do(t, http.MethodGet, "/api/debug/db-stats", nil, srv.AdminToken(t))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDebugMediaProbe(t *testing.T) {
	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		w.Header().Set("Accept-Ranges", "bytes")
		w.WriteHeader(http.StatusOK)
	}))
	defer media.Close()

	srv := testutil.NewServer(t, testutil.WithMediaClient(media.Client()))
	token := srv.AdminToken(t)

	rec := srv.Do(t, http.MethodGet, "/api/debug/media?url="+url.QueryEscape(media.URL+"/lesson.mp4"), nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Status       int    `json:"status"`
		Reachable    bool   `json:"reachable"`
		ContentType  string `json:"contentType"`
		AcceptRanges string `json:"acceptRanges"`
	}
	testutil.Decode(t, rec, &body)
	if !body.Reachable || body.ContentType != "video/mp4" || body.AcceptRanges != "bytes" {
		t.Fatalf("unexpected probe %+v", body)
	}

	for _, target := range []string{"", "ftp://example.com/a.mp4", "/relative"} {
		rec = srv.Do(t, http.MethodGet, "/api/debug/media?url="+url.QueryEscape(target), nil, token)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%q: expected 400, got %d", target, rec.Code)
		}
	}
}
