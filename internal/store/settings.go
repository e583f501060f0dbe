// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/folioworks/folio-go/internal/model"
)

const settingsColumns = `site_name, site_description, contact_email, maintenance_enabled, maintenance_message, updated_at`

// GetSettings returns the single site settings row. The row is created by
// the migration, so it always exists.
func (q *Queries) GetSettings(ctx context.Context) (model.Settings, error) {
	var s model.Settings
	err := q.db.QueryRowContext(ctx,
		`SELECT `+settingsColumns+` FROM settings WHERE id = 1`).
		Scan(&s.SiteName, &s.SiteDescription, &s.ContactEmail,
			&s.MaintenanceMode.Enabled, &s.MaintenanceMode.Message, &s.UpdatedAt)
	return s, err
}

// UpdateSettingsParams holds the fields for a full settings update.
type UpdateSettingsParams struct {
	SiteName           string
	SiteDescription    string
	ContactEmail       string
	MaintenanceEnabled bool
	MaintenanceMessage string
	UpdatedAt          time.Time
}

// UpdateSettings replaces the settings row.
func (q *Queries) UpdateSettings(ctx context.Context, arg UpdateSettingsParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE settings
		SET site_name = ?, site_description = ?, contact_email = ?,
		    maintenance_enabled = ?, maintenance_message = ?, updated_at = ?
		WHERE id = 1`,
		arg.SiteName, arg.SiteDescription, arg.ContactEmail,
		arg.MaintenanceEnabled, arg.MaintenanceMessage, arg.UpdatedAt)
	return err
}
