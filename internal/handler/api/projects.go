// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/folioworks/folio-go/internal/middleware"
	"github.com/folioworks/folio-go/internal/model"
	"github.com/folioworks/folio-go/internal/store"
	"github.com/folioworks/folio-go/internal/util"

	"github.com/go-chi/chi/v5"
)

const projectCachePrefix = "projects:"

// ListProjects returns all projects ordered by position, optionally
// filtered by ?category=. An unknown category yields an empty list, not an
// error.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	limit, offset := listWindow(r)

	key := projectCachePrefix + "list"
	if category != "" {
		key += ":" + category
	}
	key = windowKey(key, limit, offset)
	if h.serveFromCache(w, r, key) {
		return
	}

	var (
		projects []model.Project
		err      error
	)
	if category != "" {
		projects, err = h.queries.ListProjectsByCategory(r.Context(), category)
	} else {
		projects, err = h.queries.ListProjects(r.Context())
	}
	if err != nil {
		slog.Error("failed to list projects", "error", err)
		WriteInternalError(w, "Failed to fetch projects")
		return
	}

	projects = window(projects, limit, offset)

	// Listings omit the body; the detail endpoint carries it.
	for i := range projects {
		projects[i].Body = ""
	}

	count := len(projects)
	h.respondAndCache(w, r, key, Response{Success: true, Count: &count, Data: projects})
}

// GetProjectBySlug returns a single project with its markdown body rendered
// to HTML.
func (h *Handler) GetProjectBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	key := projectCachePrefix + "slug:" + slug
	if h.serveFromCache(w, r, key) {
		return
	}

	project, err := h.queries.GetProjectBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Project not found")
			return
		}
		slog.Error("failed to fetch project", "slug", slug, "error", err)
		WriteInternalError(w, "Failed to fetch project")
		return
	}

	project.Body = h.renderMarkdown(project.Body)
	h.respondAndCache(w, r, key, Response{Success: true, Data: project})
}

// AdminListProjects returns projects with their raw fields, bypassing the
// public cache. Editor role or above.
func (h *Handler) AdminListProjects(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	var (
		projects []model.Project
		err      error
	)
	if category != "" {
		projects, err = h.queries.ListProjectsByCategory(r.Context(), category)
	} else {
		projects, err = h.queries.ListProjects(r.Context())
	}
	if err != nil {
		slog.Error("failed to list projects", "error", err)
		WriteInternalError(w, "Failed to fetch projects")
		return
	}

	limit, offset := listWindow(r)
	projects = window(projects, limit, offset)
	WriteList(w, len(projects), projects)
}

// AdminGetProject returns a single project by id with its raw markdown
// body, for editing. Editor role or above.
func (h *Handler) AdminGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid project ID")
		return
	}

	project, err := h.queries.GetProjectByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Project not found")
			return
		}
		slog.Error("failed to fetch project", "id", id, "error", err)
		WriteInternalError(w, "Failed to fetch project")
		return
	}
	WriteSuccess(w, project)
}

// ProjectRequest is the payload for creating a project. The slug is derived
// from the title when omitted.
type ProjectRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Slug        string   `json:"slug" validate:"omitempty,max=200"`
	Description string   `json:"description" validate:"required,max=500"`
	Body        string   `json:"body"`
	Category    string   `json:"category" validate:"required,max=100"`
	Tags        []string `json:"tags" validate:"omitempty,dive,max=50"`
	ImageURL    string   `json:"imageUrl" validate:"omitempty,max=500"`
	LiveURL     string   `json:"liveUrl" validate:"omitempty,url"`
	GithubURL   string   `json:"githubUrl" validate:"omitempty,url"`
	Featured    bool     `json:"featured"`
	Position    int64    `json:"order"`
}

// CreateProject adds a project. Editor role or above.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	slug, ok := h.resolveSlug(w, req.Slug, req.Title)
	if !ok {
		return
	}
	if _, err := h.queries.GetProjectBySlug(r.Context(), slug); err == nil {
		WriteBadRequest(w, "A project with this slug already exists")
		return
	}

	now := time.Now().UTC()
	project, err := h.queries.CreateProject(r.Context(), store.CreateProjectParams{
		Title:       req.Title,
		Slug:        slug,
		Description: req.Description,
		Body:        req.Body,
		Category:    req.Category,
		Tags:        req.Tags,
		ImageURL:    req.ImageURL,
		LiveURL:     req.LiveURL,
		GithubURL:   req.GithubURL,
		Featured:    req.Featured,
		Position:    req.Position,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		slog.Error("failed to create project", "error", err)
		WriteInternalError(w, "Failed to create project")
		return
	}

	h.invalidateCache(r, projectCachePrefix)
	h.logContentChange(r, "project created", project.ID, project.Title)
	WriteCreated(w, project)
}

// UpdateProjectRequest carries partial updates; nil fields keep their
// current value.
type UpdateProjectRequest struct {
	Title       *string   `json:"title" validate:"omitempty,max=200"`
	Slug        *string   `json:"slug" validate:"omitempty,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=500"`
	Body        *string   `json:"body"`
	Category    *string   `json:"category" validate:"omitempty,max=100"`
	Tags        *[]string `json:"tags" validate:"omitempty,dive,max=50"`
	ImageURL    *string   `json:"imageUrl" validate:"omitempty,max=500"`
	LiveURL     *string   `json:"liveUrl" validate:"omitempty,url"`
	GithubURL   *string   `json:"githubUrl" validate:"omitempty,url"`
	Featured    *bool     `json:"featured"`
	Position    *int64    `json:"order"`
}

// UpdateProject applies a partial update to a project. Editor role or above.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid project ID")
		return
	}

	var req UpdateProjectRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	project, err := h.queries.GetProjectByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Project not found")
			return
		}
		slog.Error("failed to fetch project", "id", id, "error", err)
		WriteInternalError(w, "Failed to update project")
		return
	}

	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Slug != nil && *req.Slug != project.Slug {
		slug, ok := h.resolveSlug(w, *req.Slug, project.Title)
		if !ok {
			return
		}
		if _, err := h.queries.GetProjectBySlug(r.Context(), slug); err == nil {
			WriteBadRequest(w, "A project with this slug already exists")
			return
		}
		project.Slug = slug
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Body != nil {
		project.Body = *req.Body
	}
	if req.Category != nil {
		project.Category = *req.Category
	}
	if req.Tags != nil {
		project.Tags = *req.Tags
	}
	if req.ImageURL != nil {
		project.ImageURL = *req.ImageURL
	}
	if req.LiveURL != nil {
		project.LiveURL = sql.NullString{String: *req.LiveURL, Valid: *req.LiveURL != ""}
	}
	if req.GithubURL != nil {
		project.GithubURL = sql.NullString{String: *req.GithubURL, Valid: *req.GithubURL != ""}
	}
	if req.Featured != nil {
		project.Featured = *req.Featured
	}
	if req.Position != nil {
		project.Position = *req.Position
	}

	updated, err := h.queries.UpdateProject(r.Context(), store.UpdateProjectParams{
		Title:       project.Title,
		Slug:        project.Slug,
		Description: project.Description,
		Body:        project.Body,
		Category:    project.Category,
		Tags:        project.Tags,
		ImageURL:    project.ImageURL,
		LiveURL:     project.LiveURL.String,
		GithubURL:   project.GithubURL.String,
		Featured:    project.Featured,
		Position:    project.Position,
		UpdatedAt:   time.Now().UTC(),
		ID:          id,
	})
	if err != nil {
		slog.Error("failed to update project", "id", id, "error", err)
		WriteInternalError(w, "Failed to update project")
		return
	}

	h.invalidateCache(r, projectCachePrefix)
	h.logContentChange(r, "project updated", updated.ID, updated.Title)
	WriteSuccess(w, updated)
}

// DeleteProject removes a project. Editor role or above.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid project ID")
		return
	}

	project, err := h.queries.GetProjectByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Project not found")
			return
		}
		slog.Error("failed to fetch project", "id", id, "error", err)
		WriteInternalError(w, "Failed to delete project")
		return
	}

	if err := h.queries.DeleteProject(r.Context(), id); err != nil {
		slog.Error("failed to delete project", "id", id, "error", err)
		WriteInternalError(w, "Failed to delete project")
		return
	}

	h.invalidateCache(r, projectCachePrefix)
	h.logContentChange(r, "project deleted", id, project.Title)
	WriteMessage(w, "Project deleted")
}

// resolveSlug validates an explicit slug or derives one from the title.
// On failure it writes the error response and reports false.
func (h *Handler) resolveSlug(w http.ResponseWriter, slug, title string) (string, bool) {
	if slug == "" {
		slug = util.Slugify(title)
	}
	if !util.IsValidSlug(slug) {
		WriteBadRequest(w, "Slug may only contain lowercase letters, digits and hyphens")
		return "", false
	}
	return slug, true
}

func (h *Handler) logContentChange(r *http.Request, message string, id int64, title string) {
	var userID *int64
	if user := middleware.GetUser(r); user != nil {
		userID = &user.ID
	}
	_ = h.events.LogContent(r, model.EventLevelInfo, message, userID, map[string]any{"id": id, "title": title})
}
