// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/folioworks/folio-go/internal/model"
)

func TestListProjectsOrderedByPosition(t *testing.T) {
	db, h := testSetup(t)
	createTestProject(t, db, "Third", "third", "web", 3)
	createTestProject(t, db, "First", "first", "web", 1)
	createTestProject(t, db, "Second", "second", "design", 2)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	rec := httptest.NewRecorder()
	h.ListProjects(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Success bool            `json:"success"`
		Count   int             `json:"count"`
		Data    []model.Project `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 3 {
		t.Fatalf("expected count 3, got %d", resp.Count)
	}
	want := []string{"First", "Second", "Third"}
	for i, title := range want {
		if resp.Data[i].Title != title {
			t.Errorf("position %d: expected %q, got %q", i, title, resp.Data[i].Title)
		}
	}
}

func TestListProjectsCategoryFilter(t *testing.T) {
	db, h := testSetup(t)
	createTestProject(t, db, "Site", "site", "web", 1)
	createTestProject(t, db, "Logo", "logo", "design", 2)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects?category=design", nil)
	rec := httptest.NewRecorder()
	h.ListProjects(rec, req)

	var resp struct {
		Count int             `json:"count"`
		Data  []model.Project `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 || resp.Data[0].Slug != "logo" {
		t.Errorf("expected only the design project, got %+v", resp.Data)
	}

	// Unknown categories return an empty list, not an error.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/projects?category=nope", nil)
	rec = httptest.NewRecorder()
	h.ListProjects(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown category, got %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 0 {
		t.Errorf("expected empty list, got %d entries", resp.Count)
	}
}

func TestGetProjectBySlugRendersMarkdown(t *testing.T) {
	db, h := testSetup(t)
	if _, err := db.Exec(
		`INSERT INTO projects (title, slug, description, body, category, image_url) VALUES (?, ?, ?, ?, ?, '')`,
		"Docs", "docs", "desc", "# Heading\n\nSome **bold** text.", "web",
	); err != nil {
		t.Fatal(err)
	}

	req := requestWithURLParams(httptest.NewRequest(http.MethodGet, "/api/v1/projects/docs", nil),
		map[string]string{"slug": "docs"})
	rec := httptest.NewRecorder()
	h.GetProjectBySlug(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<h1") || !strings.Contains(body, "<strong>bold</strong>") {
		t.Errorf("expected rendered HTML body, got %s", body)
	}
}

func TestGetProjectBySlugNotFound(t *testing.T) {
	_, h := testSetup(t)

	req := requestWithURLParams(httptest.NewRequest(http.MethodGet, "/api/v1/projects/missing", nil),
		map[string]string{"slug": "missing"})
	rec := httptest.NewRecorder()
	h.GetProjectBySlug(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if resp := decodeResponse(t, rec); resp.Success {
		t.Error("expected success=false")
	}
}

func TestProjectCreateListDeleteRoundTrip(t *testing.T) {
	db, h := testSetup(t)
	admin := createTestUser(t, db, "admin@test.local", "pw-irrelevant", model.RoleAdmin, true)

	create := requestWithUser(newJSONRequest(t, http.MethodPost, "/api/v1/admin/projects",
		`{"title":"New Project","description":"Built for the round trip","category":"web","order":1,"tags":["go","chi"]}`,
		nil), admin)
	createRec := httptest.NewRecorder()
	h.CreateProject(createRec, create)

	if createRec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", createRec.Code, createRec.Body.String())
	}

	var created struct {
		Data model.Project `json:"data"`
	}
	if err := json.Unmarshal(createRec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Data.Slug != "new-project" {
		t.Errorf("expected derived slug %q, got %q", "new-project", created.Data.Slug)
	}

	list := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	listRec := httptest.NewRecorder()
	h.ListProjects(listRec, list)

	var listResp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(listRec.Body.Bytes(), &listResp); err != nil {
		t.Fatal(err)
	}
	if listResp.Count != 1 {
		t.Fatalf("expected the created project in the list, got count %d", listResp.Count)
	}

	del := requestWithUser(requestWithURLParams(
		httptest.NewRequest(http.MethodDelete, "/api/v1/admin/projects/1", nil),
		map[string]string{"id": fmt.Sprint(created.Data.ID)}), admin)
	delRec := httptest.NewRecorder()
	h.DeleteProject(delRec, del)

	if delRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", delRec.Code, delRec.Body.String())
	}

	// The deletion must invalidate the cached listing.
	listRec = httptest.NewRecorder()
	h.ListProjects(listRec, httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil))
	if err := json.Unmarshal(listRec.Body.Bytes(), &listResp); err != nil {
		t.Fatal(err)
	}
	if listResp.Count != 0 {
		t.Errorf("expected empty list after delete, got %d", listResp.Count)
	}
}

func TestCreateProjectDuplicateSlug(t *testing.T) {
	db, h := testSetup(t)
	admin := createTestUser(t, db, "admin@test.local", "pw-irrelevant", model.RoleAdmin, true)
	createTestProject(t, db, "Existing", "existing", "web", 1)

	req := requestWithUser(newJSONRequest(t, http.MethodPost, "/api/v1/admin/projects",
		`{"title":"Existing","description":"Clashes on slug","category":"web"}`, nil), admin)
	rec := httptest.NewRecorder()
	h.CreateProject(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUpdateProjectPartial(t *testing.T) {
	db, h := testSetup(t)
	admin := createTestUser(t, db, "admin@test.local", "pw-irrelevant", model.RoleAdmin, true)
	project := createTestProject(t, db, "Original", "original", "web", 1)

	req := requestWithUser(newJSONRequest(t, http.MethodPut, "/api/v1/admin/projects/1",
		`{"title":"Renamed","featured":true}`,
		map[string]string{"id": fmt.Sprint(project.ID)}), admin)
	rec := httptest.NewRecorder()
	h.UpdateProject(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data model.Project `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Title != "Renamed" {
		t.Errorf("expected updated title, got %q", resp.Data.Title)
	}
	if !resp.Data.Featured {
		t.Error("expected featured=true")
	}
	// Untouched fields keep their values.
	if resp.Data.Category != "web" || resp.Data.Slug != "original" {
		t.Errorf("unexpected change to untouched fields: %+v", resp.Data)
	}
}

func TestUpdateProjectNotFound(t *testing.T) {
	db, h := testSetup(t)
	admin := createTestUser(t, db, "admin@test.local", "pw-irrelevant", model.RoleAdmin, true)

	req := requestWithUser(newJSONRequest(t, http.MethodPut, "/api/v1/admin/projects/99",
		`{"title":"Ghost"}`, map[string]string{"id": "99"}), admin)
	rec := httptest.NewRecorder()
	h.UpdateProject(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListProjectsServedFromCache(t *testing.T) {
	db, h := testSetup(t)
	createTestProject(t, db, "Cached", "cached", "web", 1)

	first := httptest.NewRecorder()
	h.ListProjects(first, httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil))
	if got := first.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("expected first request to miss, got %q", got)
	}

	second := httptest.NewRecorder()
	h.ListProjects(second, httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil))
	if got := second.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("expected second request to hit, got %q", got)
	}
	if first.Body.String() != second.Body.String() {
		t.Error("cached response must match the original")
	}
}

func TestListProjectsPagination(t *testing.T) {
	db, h := testSetup(t)
	for i := 1; i <= 5; i++ {
		createTestProject(t, db, fmt.Sprintf("Project %d", i), fmt.Sprintf("project-%d", i), "web", int64(i))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects?limit=2&offset=2", nil)
	rec := httptest.NewRecorder()
	h.ListProjects(rec, req)

	var resp struct {
		Count int             `json:"count"`
		Data  []model.Project `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 2 {
		t.Fatalf("expected count 2, got %d", resp.Count)
	}
	if resp.Data[0].Title != "Project 3" || resp.Data[1].Title != "Project 4" {
		t.Errorf("unexpected page contents: %q, %q", resp.Data[0].Title, resp.Data[1].Title)
	}

	// Offset past the end yields an empty list, not an error.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/projects?limit=2&offset=50", nil)
	rec = httptest.NewRecorder()
	h.ListProjects(rec, req)

	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 0 {
		t.Errorf("expected empty page, got count %d", resp.Count)
	}
}

func TestAdminGetProjectReturnsRawBody(t *testing.T) {
	db, h := testSetup(t)
	res, err := db.Exec(
		`INSERT INTO projects (title, slug, description, body, category, image_url) VALUES (?, ?, ?, ?, ?, '')`,
		"Docs", "docs", "desc", "# Heading\n\nSome **bold** text.", "web",
	)
	if err != nil {
		t.Fatal(err)
	}
	id, _ := res.LastInsertId()

	req := requestWithURLParams(
		httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/admin/projects/%d", id), nil),
		map[string]string{"id": fmt.Sprint(id)})
	rec := httptest.NewRecorder()
	h.AdminGetProject(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data model.Project `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	// The admin read hands back the stored markdown, not rendered HTML.
	if resp.Data.Body != "# Heading\n\nSome **bold** text." {
		t.Errorf("expected raw markdown body, got %q", resp.Data.Body)
	}
}

func TestAdminListProjectsIncludesBody(t *testing.T) {
	db, h := testSetup(t)
	if _, err := db.Exec(
		`INSERT INTO projects (title, slug, description, body, category, image_url) VALUES (?, ?, ?, ?, ?, '')`,
		"Docs", "docs", "desc", "raw body", "web",
	); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	h.AdminListProjects(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/projects", nil))

	var resp struct {
		Count int             `json:"count"`
		Data  []model.Project `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 {
		t.Fatalf("expected count 1, got %d", resp.Count)
	}
	// Unlike the public listing, the admin listing keeps the body.
	if resp.Data[0].Body != "raw body" {
		t.Errorf("expected body preserved, got %q", resp.Data[0].Body)
	}
}
