// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/folioworks/folio-go/internal/middleware"
	"github.com/folioworks/folio-go/internal/model"
	"github.com/folioworks/folio-go/internal/store"
)

const settingsCachePrefix = "settings:"

// GetSettings returns the site settings. Public: the frontend checks
// maintenanceMode before rendering anything else.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	key := settingsCachePrefix + "site"
	if h.serveFromCache(w, r, key) {
		return
	}

	settings, err := h.queries.GetSettings(r.Context())
	if err != nil {
		slog.Error("failed to fetch settings", "error", err)
		WriteInternalError(w, "Failed to fetch settings")
		return
	}
	h.respondAndCache(w, r, key, Response{Success: true, Data: settings})
}

// UpdateSettingsRequest is the payload for a partial settings update.
// Absent fields keep their current value.
type UpdateSettingsRequest struct {
	SiteName        *string `json:"siteName" validate:"omitempty,max=200"`
	SiteDescription *string `json:"siteDescription" validate:"omitempty,max=500"`
	ContactEmail    *string `json:"contactEmail" validate:"omitempty,email"`
	MaintenanceMode *struct {
		Enabled bool   `json:"enabled"`
		Message string `json:"message" validate:"max=500"`
	} `json:"maintenanceMode"`
}

// UpdateSettings applies a partial update to the site settings. Admin only.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	settings, err := h.queries.GetSettings(r.Context())
	if err != nil {
		slog.Error("failed to fetch settings", "error", err)
		WriteInternalError(w, "Failed to update settings")
		return
	}

	if req.SiteName != nil {
		settings.SiteName = *req.SiteName
	}
	if req.SiteDescription != nil {
		settings.SiteDescription = *req.SiteDescription
	}
	if req.ContactEmail != nil {
		settings.ContactEmail = *req.ContactEmail
	}
	if req.MaintenanceMode != nil {
		settings.MaintenanceMode = model.MaintenanceMode{
			Enabled: req.MaintenanceMode.Enabled,
			Message: h.sanitizer.Sanitize(req.MaintenanceMode.Message),
		}
	}
	settings.UpdatedAt = time.Now().UTC()

	err = h.queries.UpdateSettings(r.Context(), store.UpdateSettingsParams{
		SiteName:           settings.SiteName,
		SiteDescription:    settings.SiteDescription,
		ContactEmail:       settings.ContactEmail,
		MaintenanceEnabled: settings.MaintenanceMode.Enabled,
		MaintenanceMessage: settings.MaintenanceMode.Message,
		UpdatedAt:          settings.UpdatedAt,
	})
	if err != nil {
		slog.Error("failed to update settings", "error", err)
		WriteInternalError(w, "Failed to update settings")
		return
	}

	h.invalidateCache(r, settingsCachePrefix)

	var actorID *int64
	if actor := middleware.GetUser(r); actor != nil {
		actorID = &actor.ID
	}
	metadata := map[string]any{"maintenance_enabled": settings.MaintenanceMode.Enabled}
	_ = h.events.LogRequest(r, model.EventLevelInfo, model.EventCategorySystem,
		"site settings updated", actorID, metadata)

	WriteSuccess(w, settings)
}
