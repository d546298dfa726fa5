package category_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/mo-amir99/coursehub-server-go/internal/features/category"
	"github.com/mo-amir99/coursehub-server-go/internal/features/course"
	"github.com/mo-amir99/coursehub-server-go/internal/testutil"
)

type categoryBody struct {
	Category category.Category `json:"category"`
	Error    string            `json:"error"`
}

func TestCreateCategoryDerivesSlug(t *testing.T) {
	srv := testutil.NewServer(t)
	token := srv.AdminToken(t)

	rec := srv.Do(t, http.MethodPost, "/api/admin/categories", map[string]interface{}{"name": "Web Development"}, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var body categoryBody
	testutil.Decode(t, rec, &body)
	if body.Category.Slug == nil || *body.Category.Slug != "web-development" {
		t.Fatalf("unexpected slug %v", body.Category.Slug)
	}

	rec = srv.Do(t, http.MethodPost, "/api/admin/categories", map[string]interface{}{"name": "Web dev", "slug": "web-development"}, token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = srv.Do(t, http.MethodPost, "/api/admin/categories", map[string]interface{}{"name": "Bad", "slug": "Not A Slug"}, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = srv.Do(t, http.MethodPost, "/api/admin/categories", map[string]interface{}{"name": "  "}, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCategoryNameAndSlugLengths(t *testing.T) {
	srv := testutil.NewServer(t)
	token := srv.AdminToken(t)

	longName := strings.Repeat("Distributed Systems ", 6) // 119 characters once trimmed
	rec := srv.Do(t, http.MethodPost, "/api/admin/categories", map[string]interface{}{"name": longName}, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var body categoryBody
	testutil.Decode(t, rec, &body)
	if body.Category.Slug == nil || len(*body.Category.Slug) > 100 || strings.HasSuffix(*body.Category.Slug, "-") {
		t.Fatalf("derived slug not capped: %v", body.Category.Slug)
	}
	created := body.Category

	tooLong := strings.Repeat("x", 121)
	rec = srv.Do(t, http.MethodPost, "/api/admin/categories", map[string]interface{}{"name": tooLong}, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on create, got %d: %s", rec.Code, rec.Body.String())
	}
	testutil.Decode(t, rec, &body)
	if body.Error != "name must be at most 120 characters" {
		t.Fatalf("unexpected message %q", body.Error)
	}

	rec = srv.Do(t, http.MethodPut, "/api/admin/categories/"+created.ID.String(), map[string]interface{}{"name": tooLong}, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on update, got %d: %s", rec.Code, rec.Body.String())
	}

	if n := testutil.CountRows(t, srv.DB, "course_categories"); n != 1 {
		t.Fatalf("expected one category, found %d", n)
	}
	stored, err := category.Get(srv.DB, created.ID)
	if err != nil || stored.Name != strings.TrimSpace(longName) {
		t.Fatalf("category changed by rejected update: %+v (%v)", stored, err)
	}
}

func TestPublicCategoryListIsSortedAndRefreshed(t *testing.T) {
	srv := testutil.NewServer(t)
	token := srv.AdminToken(t)
	testutil.SeedCategory(t, srv.DB, "Zeta", "zeta")
	testutil.SeedCategory(t, srv.DB, "Alpha", "alpha")

	var list struct {
		Categories []category.Category `json:"categories"`
	}
	testutil.Decode(t, srv.Do(t, http.MethodGet, "/api/categories", nil, ""), &list)
	if len(list.Categories) != 2 || list.Categories[0].Name != "Alpha" {
		t.Fatalf("unexpected list %+v", list.Categories)
	}

	rec := srv.Do(t, http.MethodPost, "/api/admin/categories", map[string]interface{}{"name": "Middle"}, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	testutil.Decode(t, srv.Do(t, http.MethodGet, "/api/categories", nil, ""), &list)
	if len(list.Categories) != 3 || list.Categories[1].Name != "Middle" {
		t.Fatalf("cache not refreshed: %+v", list.Categories)
	}
}

func TestDeleteCategoryDetachesCourses(t *testing.T) {
	srv := testutil.NewServer(t)
	token := srv.AdminToken(t)
	cat := testutil.SeedCategory(t, srv.DB, "Backend", "backend")
	c := testutil.SeedCourse(t, srv.DB, "Go", true)
	if err := srv.DB.Model(&c).Update("category_id", cat.ID).Error; err != nil {
		t.Fatalf("tag course: %v", err)
	}

	rec := srv.Do(t, http.MethodDelete, "/api/admin/categories/"+cat.ID.String(), nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	got, err := course.Get(srv.DB, c.ID)
	if err != nil {
		t.Fatalf("course should survive: %v", err)
	}
	if got.CategoryID != nil {
		t.Fatalf("expected category cleared, got %v", got.CategoryID)
	}

	rec = srv.Do(t, http.MethodDelete, "/api/admin/categories/"+cat.ID.String(), nil, token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateCategoryClearsSlug(t *testing.T) {
	srv := testutil.NewServer(t)
	token := srv.AdminToken(t)
	cat := testutil.SeedCategory(t, srv.DB, "Data", "data")
	testutil.SeedCategory(t, srv.DB, "Other", "other")

	rec := srv.Do(t, http.MethodPut, "/api/admin/categories/"+cat.ID.String(), map[string]interface{}{"slug": "other"}, token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	rec = srv.Do(t, http.MethodPut, "/api/admin/categories/"+cat.ID.String(), map[string]interface{}{"slug": ""}, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body categoryBody
	testutil.Decode(t, rec, &body)
	if body.Category.Slug != nil {
		t.Fatalf("expected slug cleared, got %q", *body.Category.Slug)
	}
}
