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

const serviceCachePrefix = "services:"

// ListServices returns all services ordered by position.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	limit, offset := listWindow(r)
	key := windowKey(serviceCachePrefix+"list", limit, offset)
	if h.serveFromCache(w, r, key) {
		return
	}

	services, err := h.queries.ListServices(r.Context())
	if err != nil {
		slog.Error("failed to list services", "error", err)
		WriteInternalError(w, "Failed to fetch services")
		return
	}

	services = window(services, limit, offset)
	count := len(services)
	h.respondAndCache(w, r, key, Response{Success: true, Count: &count, Data: services})
}

// AdminListServices returns services uncached. Editor role or above.
func (h *Handler) AdminListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.queries.ListServices(r.Context())
	if err != nil {
		slog.Error("failed to list services", "error", err)
		WriteInternalError(w, "Failed to fetch services")
		return
	}
	limit, offset := listWindow(r)
	services = window(services, limit, offset)
	WriteList(w, len(services), services)
}

// AdminGetService returns a single service by id. Editor role or above.
func (h *Handler) AdminGetService(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid service ID")
		return
	}

	service, err := h.queries.GetServiceByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Service not found")
			return
		}
		slog.Error("failed to fetch service", "id", id, "error", err)
		WriteInternalError(w, "Failed to fetch service")
		return
	}
	WriteSuccess(w, service)
}

// ServiceRequest is the payload for creating a service.
type ServiceRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=500"`
	Icon        string   `json:"icon" validate:"omitempty,max=100"`
	Color       string   `json:"color" validate:"omitempty,max=100"`
	Features    []string `json:"features" validate:"omitempty,dive,max=100"`
	Featured    bool     `json:"featured"`
	Position    int64    `json:"order"`
}

// CreateService adds a service. Editor role or above.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req ServiceRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	now := time.Now().UTC()
	svc, err := h.queries.CreateService(r.Context(), store.CreateServiceParams{
		Title:       req.Title,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		Features:    req.Features,
		Featured:    req.Featured,
		Position:    req.Position,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		slog.Error("failed to create service", "error", err)
		WriteInternalError(w, "Failed to create service")
		return
	}

	h.invalidateCache(r, serviceCachePrefix)
	h.logContentChange(r, "service created", svc.ID, svc.Title)
	WriteCreated(w, svc)
}

// UpdateServiceRequest carries partial updates; nil fields keep their
// current value.
type UpdateServiceRequest struct {
	Title       *string   `json:"title" validate:"omitempty,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=500"`
	Icon        *string   `json:"icon" validate:"omitempty,max=100"`
	Color       *string   `json:"color" validate:"omitempty,max=100"`
	Features    *[]string `json:"features" validate:"omitempty,dive,max=100"`
	Featured    *bool     `json:"featured"`
	Position    *int64    `json:"order"`
}

// UpdateService applies a partial update to a service. Editor role or above.
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid service ID")
		return
	}

	var req UpdateServiceRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	svc, err := h.queries.GetServiceByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Service not found")
			return
		}
		slog.Error("failed to fetch service", "id", id, "error", err)
		WriteInternalError(w, "Failed to update service")
		return
	}

	if req.Title != nil {
		svc.Title = *req.Title
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.Icon != nil {
		svc.Icon = *req.Icon
	}
	if req.Color != nil {
		svc.Color = *req.Color
	}
	if req.Features != nil {
		svc.Features = *req.Features
	}
	if req.Featured != nil {
		svc.Featured = *req.Featured
	}
	if req.Position != nil {
		svc.Position = *req.Position
	}

	updated, err := h.queries.UpdateService(r.Context(), store.UpdateServiceParams{
		Title:       svc.Title,
		Description: svc.Description,
		Icon:        svc.Icon,
		Color:       svc.Color,
		Features:    svc.Features,
		Featured:    svc.Featured,
		Position:    svc.Position,
		UpdatedAt:   time.Now().UTC(),
		ID:          id,
	})
	if err != nil {
		slog.Error("failed to update service", "id", id, "error", err)
		WriteInternalError(w, "Failed to update service")
		return
	}

	h.invalidateCache(r, serviceCachePrefix)
	h.logContentChange(r, "service updated", updated.ID, updated.Title)
	WriteSuccess(w, updated)
}

// DeleteService removes a service. Editor role or above.
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid service ID")
		return
	}

	svc, err := h.queries.GetServiceByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Service not found")
			return
		}
		slog.Error("failed to fetch service", "id", id, "error", err)
		WriteInternalError(w, "Failed to delete service")
		return
	}

	if err := h.queries.DeleteService(r.Context(), id); err != nil {
		slog.Error("failed to delete service", "id", id, "error", err)
		WriteInternalError(w, "Failed to delete service")
		return
	}

	h.invalidateCache(r, serviceCachePrefix)
	h.logContentChange(r, "service deleted", id, svc.Title)
	WriteMessage(w, "Service deleted")
}
