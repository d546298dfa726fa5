package lesson_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/mo-amir99/coursehub-server-go/internal/features/course"
	"github.com/mo-amir99/coursehub-server-go/internal/features/lesson"
	"github.com/mo-amir99/coursehub-server-go/internal/testutil"
)

type lessonBody struct {
	Lesson lesson.Lesson `json:"lesson"`
	Error  string        `json:"error"`
}

func courseMinutes(t *testing.T, srv *testutil.Server, id uuid.UUID) int {
	t.Helper()
	c, err := course.Get(srv.DB, id)
	if err != nil {
		t.Fatalf("load course: %v", err)
	}
	return c.DurationMinutes
}

func TestCreateLessonRejectsInvalidInput(t *testing.T) {
	srv := testutil.NewServer(t)
	token := srv.AdminToken(t)
	c := testutil.SeedCourse(t, srv.DB, "Go", true)
	sec := testutil.SeedSection(t, srv.DB, c.ID, "Intro", 1)

	cases := []struct {
		name    string
		body    map[string]interface{}
		message string
	}{
		{"missing title", map[string]interface{}{"section_id": sec.ID, "video_url": "https://v/1"}, "title is required"},
		{"blank title", map[string]interface{}{"section_id": sec.ID, "title": "  ", "video_url": "https://v/1"}, "title is required"},
		{"missing video", map[string]interface{}{"section_id": sec.ID, "title": "One"}, "video_url is required"},
		{"bad section id", map[string]interface{}{"section_id": "nope", "title": "One", "video_url": "https://v/1"}, "section_id must be a valid id"},
		{"negative duration", map[string]interface{}{"section_id": sec.ID, "title": "One", "video_url": "https://v/1", "video_duration_seconds": -5}, "video_duration_seconds cannot be negative"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := srv.Do(t, http.MethodPost, "/api/admin/courses/"+c.ID.String()+"/lessons", tc.body, token)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			var body lessonBody
			testutil.Decode(t, rec, &body)
			if body.Error != tc.message {
				t.Fatalf("expected %q, got %q", tc.message, body.Error)
			}
		})
	}

	if n := testutil.CountRows(t, srv.DB, "course_lessons"); n != 0 {
		t.Fatalf("expected no lessons written, found %d", n)
	}
}

func TestCreateLessonChecksSectionOwnership(t *testing.T) {
	srv := testutil.NewServer(t)
	token := srv.AdminToken(t)
	first := testutil.SeedCourse(t, srv.DB, "First", true)
	second := testutil.SeedCourse(t, srv.DB, "Second", true)
	sec := testutil.SeedSection(t, srv.DB, second.ID, "Elsewhere", 1)

	body := map[string]interface{}{"section_id": sec.ID, "title": "One", "video_url": "https://v/1"}

	rec := srv.Do(t, http.MethodPost, "/api/admin/courses/"+first.ID.String()+"/lessons", body, token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a foreign section, got %d", rec.Code)
	}

	rec = srv.Do(t, http.MethodPost, "/api/admin/courses/"+uuid.NewString()+"/lessons", body, token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a missing course, got %d", rec.Code)
	}

	if n := testutil.CountRows(t, srv.DB, "course_lessons"); n != 0 {
		t.Fatalf("expected no lessons written, found %d", n)
	}
}

func TestLessonWritesKeepCourseDurationCurrent(t *testing.T) {
	srv := testutil.NewServer(t)
	token := srv.AdminToken(t)
	c := testutil.SeedCourse(t, srv.DB, "Go", true)
	sec := testutil.SeedSection(t, srv.DB, c.ID, "Intro", 1)

	rec := srv.Do(t, http.MethodPost, "/api/admin/courses/"+c.ID.String()+"/lessons", map[string]interface{}{
		"section_id":             sec.ID,
		"title":                  "Setup",
		"video_url":              "https://v/setup",
		"video_duration_seconds": 300,
	}, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var first lessonBody
	testutil.Decode(t, rec, &first)
	if first.Lesson.CourseID != c.ID || first.Lesson.SortOrder != 1 {
		t.Fatalf("unexpected lesson %+v", first.Lesson)
	}
	if got := courseMinutes(t, srv, c.ID); got != 5 {
		t.Fatalf("expected 5 minutes, got %d", got)
	}

	rec = srv.Do(t, http.MethodPost, "/api/admin/lessons", map[string]interface{}{
		"section_id":             sec.ID,
		"title":                  "Types",
		"video_url":              "https://v/types",
		"video_duration_seconds": 300,
	}, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var second lessonBody
	testutil.Decode(t, rec, &second)
	if second.Lesson.SortOrder != 2 {
		t.Fatalf("expected next sort slot 2, got %d", second.Lesson.SortOrder)
	}
	if got := courseMinutes(t, srv, c.ID); got != 10 {
		t.Fatalf("expected 10 minutes, got %d", got)
	}

	rec = srv.Do(t, http.MethodPut, "/api/admin/lessons/"+second.Lesson.ID.String(), map[string]interface{}{
		"video_duration_seconds": 90,
	}, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	// 390 seconds rounds to 7 minutes.
	if got := courseMinutes(t, srv, c.ID); got != 7 {
		t.Fatalf("expected 7 minutes, got %d", got)
	}

	rec = srv.Do(t, http.MethodDelete, "/api/admin/lessons/"+first.Lesson.ID.String(), nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := courseMinutes(t, srv, c.ID); got != 2 {
		t.Fatalf("expected 2 minutes, got %d", got)
	}
}

func TestUpdateLessonIsIdempotent(t *testing.T) {
	srv := testutil.NewServer(t)
	token := srv.AdminToken(t)
	c := testutil.SeedCourse(t, srv.DB, "Go", true)
	sec := testutil.SeedSection(t, srv.DB, c.ID, "Intro", 1)
	l := testutil.SeedLesson(t, srv.DB, sec, "one", 1, 120, false)

	update := map[string]interface{}{
		"title":      "Renamed",
		"is_preview": true,
		"resources":  []map[string]string{{"url": "https://files/notes.pdf"}},
	}

	var results [2]lessonBody
	for i := range results {
		rec := srv.Do(t, http.MethodPut, "/api/admin/lessons/"+l.ID.String(), update, token)
		if rec.Code != http.StatusOK {
			t.Fatalf("update %d: expected 200, got %d: %s", i, rec.Code, rec.Body.String())
		}
		testutil.Decode(t, rec, &results[i])
	}

	a, b := results[0].Lesson, results[1].Lesson
	if a.Title != "Renamed" || !a.IsPreview || a.Title != b.Title || a.IsPreview != b.IsPreview {
		t.Fatalf("updates diverged: %+v vs %+v", a, b)
	}
	if len(b.Resources) != 1 || b.Resources[0].Title != "https://files/notes.pdf" {
		t.Fatalf("unexpected resources %+v", b.Resources)
	}
	if got := courseMinutes(t, srv, c.ID); got != 2 {
		t.Fatalf("expected 2 minutes, got %d", got)
	}
}

func TestUpdateLessonRejectsBlankFields(t *testing.T) {
	srv := testutil.NewServer(t)
	token := srv.AdminToken(t)
	c := testutil.SeedCourse(t, srv.DB, "Go", true)
	sec := testutil.SeedSection(t, srv.DB, c.ID, "Intro", 1)
	l := testutil.SeedLesson(t, srv.DB, sec, "one", 1, 120, false)

	cases := []struct {
		name    string
		body    map[string]interface{}
		message string
	}{
		{"blank title", map[string]interface{}{"title": "   "}, "title is required"},
		{"empty title", map[string]interface{}{"title": "", "is_preview": true}, "title is required"},
		{"blank video", map[string]interface{}{"video_url": " \t"}, "video_url is required"},
		{"negative duration", map[string]interface{}{"title": "Two", "video_duration_seconds": -1}, "video_duration_seconds cannot be negative"},
		{"negative order", map[string]interface{}{"sort_order": -2}, "sort_order cannot be negative"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := srv.Do(t, http.MethodPut, "/api/admin/lessons/"+l.ID.String(), tc.body, token)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			var body lessonBody
			testutil.Decode(t, rec, &body)
			if body.Error != tc.message {
				t.Fatalf("expected %q, got %q", tc.message, body.Error)
			}
		})
	}

	stored, err := lesson.Get(srv.DB, l.ID)
	if err != nil {
		t.Fatalf("load lesson: %v", err)
	}
	if stored.Title != "one" || stored.VideoURL == nil || *stored.VideoURL != *l.VideoURL ||
		stored.IsPreview || stored.SortOrder != 1 || stored.VideoDurationSeconds != 120 {
		t.Fatalf("lesson changed by rejected updates: %+v", stored)
	}
}

func TestMoveLessonRecomputesBothCourses(t *testing.T) {
	srv := testutil.NewServer(t)
	token := srv.AdminToken(t)
	from := testutil.SeedCourse(t, srv.DB, "From", true)
	to := testutil.SeedCourse(t, srv.DB, "To", true)
	fromSec := testutil.SeedSection(t, srv.DB, from.ID, "A", 1)
	toSec := testutil.SeedSection(t, srv.DB, to.ID, "B", 1)
	l := testutil.SeedLesson(t, srv.DB, fromSec, "moving", 1, 600, false)

	rec := srv.Do(t, http.MethodPut, "/api/admin/lessons/"+l.ID.String(), map[string]interface{}{
		"section_id": toSec.ID,
	}, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body lessonBody
	testutil.Decode(t, rec, &body)
	if body.Lesson.CourseID != to.ID {
		t.Fatalf("course id did not follow the section: %s", body.Lesson.CourseID)
	}
	if got := courseMinutes(t, srv, to.ID); got != 10 {
		t.Fatalf("expected 10 minutes on target, got %d", got)
	}
	if got := courseMinutes(t, srv, from.ID); got != 0 {
		t.Fatalf("expected 0 minutes on source, got %d", got)
	}
}

func TestDeleteMissingLesson(t *testing.T) {
	srv := testutil.NewServer(t)

	rec := srv.Do(t, http.MethodDelete, "/api/admin/lessons/"+uuid.NewString(), nil, srv.AdminToken(t))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
