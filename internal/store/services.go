// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/folioworks/folio-go/internal/model"
)

const serviceColumns = `id, title, description, icon, color, features, featured, position, created_at, updated_at`

func scanService(row interface{ Scan(...any) error }) (model.Service, error) {
	var s model.Service
	var features string
	err := row.Scan(&s.ID, &s.Title, &s.Description, &s.Icon, &s.Color,
		&features, &s.Featured, &s.Position, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return s, err
	}
	s.Features = model.DecodeStringList(features)
	return s, nil
}

// CreateServiceParams holds the fields for creating a service.
type CreateServiceParams struct {
	Title       string
	Description string
	Icon        string
	Color       string
	Features    []string
	Featured    bool
	Position    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateService inserts a new service and returns it.
func (q *Queries) CreateService(ctx context.Context, arg CreateServiceParams) (model.Service, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO services (title, description, icon, color, features, featured, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+serviceColumns,
		arg.Title, arg.Description, arg.Icon, arg.Color,
		model.EncodeStringList(arg.Features), arg.Featured, arg.Position,
		arg.CreatedAt, arg.UpdatedAt)
	return scanService(row)
}

// GetServiceByID returns a service by primary key.
func (q *Queries) GetServiceByID(ctx context.Context, id int64) (model.Service, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = ?`, id)
	return scanService(row)
}

// ListServices returns all services in display order.
func (q *Queries) ListServices(ctx context.Context) ([]model.Service, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+serviceColumns+` FROM services ORDER BY position ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := []model.Service{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// CountServices returns the total number of services.
func (q *Queries) CountServices(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM services`).Scan(&count)
	return count, err
}

// UpdateServiceParams holds the fields for a full service update.
type UpdateServiceParams struct {
	Title       string
	Description string
	Icon        string
	Color       string
	Features    []string
	Featured    bool
	Position    int64
	UpdatedAt   time.Time
	ID          int64
}

// UpdateService replaces all mutable fields of a service and returns the updated row.
func (q *Queries) UpdateService(ctx context.Context, arg UpdateServiceParams) (model.Service, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE services SET title = ?, description = ?, icon = ?, color = ?,
			features = ?, featured = ?, position = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+serviceColumns,
		arg.Title, arg.Description, arg.Icon, arg.Color,
		model.EncodeStringList(arg.Features), arg.Featured, arg.Position,
		arg.UpdatedAt, arg.ID)
	return scanService(row)
}

// DeleteService removes a service.
func (q *Queries) DeleteService(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id)
	return err
}
