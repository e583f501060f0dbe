// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// MaintenanceMode controls whether the public site shows a maintenance
// page instead of content.
type MaintenanceMode struct {
	Enabled bool   `json:"enabled"`
	Message string `json:"message"`
}

// Settings is the single-row site configuration, editable by admins and
// readable without authentication so the frontend can check maintenance
// state before rendering.
type Settings struct {
	SiteName        string          `json:"siteName"`
	SiteDescription string          `json:"siteDescription"`
	ContactEmail    string          `json:"contactEmail"`
	MaintenanceMode MaintenanceMode `json:"maintenanceMode"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
