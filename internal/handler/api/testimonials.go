// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/folioworks/folio-go/internal/store"
)

const testimonialCachePrefix = "testimonials:"

// ListTestimonials returns all testimonials ordered by position.
func (h *Handler) ListTestimonials(w http.ResponseWriter, r *http.Request) {
	limit, offset := listWindow(r)
	key := windowKey(testimonialCachePrefix+"list", limit, offset)
	if h.serveFromCache(w, r, key) {
		return
	}

	testimonials, err := h.queries.ListTestimonials(r.Context())
	if err != nil {
		slog.Error("failed to list testimonials", "error", err)
		WriteInternalError(w, "Failed to fetch testimonials")
		return
	}

	testimonials = window(testimonials, limit, offset)
	count := len(testimonials)
	h.respondAndCache(w, r, key, Response{Success: true, Count: &count, Data: testimonials})
}

// AdminListTestimonials returns testimonials uncached. Editor role or above.
func (h *Handler) AdminListTestimonials(w http.ResponseWriter, r *http.Request) {
	testimonials, err := h.queries.ListTestimonials(r.Context())
	if err != nil {
		slog.Error("failed to list testimonials", "error", err)
		WriteInternalError(w, "Failed to fetch testimonials")
		return
	}
	limit, offset := listWindow(r)
	testimonials = window(testimonials, limit, offset)
	WriteList(w, len(testimonials), testimonials)
}

// AdminGetTestimonial returns a single testimonial by id. Editor role or above.
func (h *Handler) AdminGetTestimonial(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid testimonial ID")
		return
	}

	testimonial, err := h.queries.GetTestimonialByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Testimonial not found")
			return
		}
		slog.Error("failed to fetch testimonial", "id", id, "error", err)
		WriteInternalError(w, "Failed to fetch testimonial")
		return
	}
	WriteSuccess(w, testimonial)
}

// TestimonialRequest is the payload for creating a testimonial.
type TestimonialRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	Role      string `json:"role" validate:"omitempty,max=200"`
	Content   string `json:"content" validate:"required,max=2000"`
	AvatarURL string `json:"avatar" validate:"omitempty,max=500"`
	Rating    int64  `json:"rating" validate:"required,min=1,max=5"`
	Featured  bool   `json:"featured"`
	Position  int64  `json:"order"`
}

// CreateTestimonial adds a testimonial. Editor role or above.
func (h *Handler) CreateTestimonial(w http.ResponseWriter, r *http.Request) {
	var req TestimonialRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	now := time.Now().UTC()
	t, err := h.queries.CreateTestimonial(r.Context(), store.CreateTestimonialParams{
		Name:      req.Name,
		Role:      req.Role,
		Content:   req.Content,
		AvatarURL: req.AvatarURL,
		Rating:    req.Rating,
		Featured:  req.Featured,
		Position:  req.Position,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		slog.Error("failed to create testimonial", "error", err)
		WriteInternalError(w, "Failed to create testimonial")
		return
	}

	h.invalidateCache(r, testimonialCachePrefix)
	h.logContentChange(r, "testimonial created", t.ID, t.Name)
	WriteCreated(w, t)
}

// UpdateTestimonialRequest carries partial updates; nil fields keep their
// current value.
type UpdateTestimonialRequest struct {
	Name      *string `json:"name" validate:"omitempty,max=200"`
	Role      *string `json:"role" validate:"omitempty,max=200"`
	Content   *string `json:"content" validate:"omitempty,max=2000"`
	AvatarURL *string `json:"avatar" validate:"omitempty,max=500"`
	Rating    *int64  `json:"rating" validate:"omitempty,min=1,max=5"`
	Featured  *bool   `json:"featured"`
	Position  *int64  `json:"order"`
}

// UpdateTestimonial applies a partial update to a testimonial. Editor role
// or above.
func (h *Handler) UpdateTestimonial(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid testimonial ID")
		return
	}

	var req UpdateTestimonialRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	t, err := h.queries.GetTestimonialByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Testimonial not found")
			return
		}
		slog.Error("failed to fetch testimonial", "id", id, "error", err)
		WriteInternalError(w, "Failed to update testimonial")
		return
	}

	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Role != nil {
		t.Role = *req.Role
	}
	if req.Content != nil {
		t.Content = *req.Content
	}
	if req.AvatarURL != nil {
		t.AvatarURL = *req.AvatarURL
	}
	if req.Rating != nil {
		t.Rating = *req.Rating
	}
	if req.Featured != nil {
		t.Featured = *req.Featured
	}
	if req.Position != nil {
		t.Position = *req.Position
	}

	updated, err := h.queries.UpdateTestimonial(r.Context(), store.UpdateTestimonialParams{
		Name:      t.Name,
		Role:      t.Role,
		Content:   t.Content,
		AvatarURL: t.AvatarURL,
		Rating:    t.Rating,
		Featured:  t.Featured,
		Position:  t.Position,
		UpdatedAt: time.Now().UTC(),
		ID:        id,
	})
	if err != nil {
		slog.Error("failed to update testimonial", "id", id, "error", err)
		WriteInternalError(w, "Failed to update testimonial")
		return
	}

	h.invalidateCache(r, testimonialCachePrefix)
	h.logContentChange(r, "testimonial updated", updated.ID, updated.Name)
	WriteSuccess(w, updated)
}

// DeleteTestimonial removes a testimonial. Editor role or above.
func (h *Handler) DeleteTestimonial(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid testimonial ID")
		return
	}

	t, err := h.queries.GetTestimonialByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Testimonial not found")
			return
		}
		slog.Error("failed to fetch testimonial", "id", id, "error", err)
		WriteInternalError(w, "Failed to delete testimonial")
		return
	}

	if err := h.queries.DeleteTestimonial(r.Context(), id); err != nil {
		slog.Error("failed to delete testimonial", "id", id, "error", err)
		WriteInternalError(w, "Failed to delete testimonial")
		return
	}

	h.invalidateCache(r, testimonialCachePrefix)
	h.logContentChange(r, "testimonial deleted", id, t.Name)
	WriteMessage(w, "Testimonial deleted")
}
