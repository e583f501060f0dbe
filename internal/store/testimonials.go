// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/folioworks/folio-go/internal/model"
)

const testimonialColumns = `id, name, role, content, avatar_url, rating, featured, position, created_at, updated_at`

func scanTestimonial(row interface{ Scan(...any) error }) (model.Testimonial, error) {
	var t model.Testimonial
	err := row.Scan(&t.ID, &t.Name, &t.Role, &t.Content, &t.AvatarURL,
		&t.Rating, &t.Featured, &t.Position, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// CreateTestimonialParams holds the fields for creating a testimonial.
type CreateTestimonialParams struct {
	Name      string
	Role      string
	Content   string
	AvatarURL string
	Rating    int64
	Featured  bool
	Position  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateTestimonial inserts a new testimonial and returns it.
func (q *Queries) CreateTestimonial(ctx context.Context, arg CreateTestimonialParams) (model.Testimonial, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO testimonials (name, role, content, avatar_url, rating, featured, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+testimonialColumns,
		arg.Name, arg.Role, arg.Content, arg.AvatarURL, arg.Rating,
		arg.Featured, arg.Position, arg.CreatedAt, arg.UpdatedAt)
	return scanTestimonial(row)
}

// GetTestimonialByID returns a testimonial by primary key.
func (q *Queries) GetTestimonialByID(ctx context.Context, id int64) (model.Testimonial, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+testimonialColumns+` FROM testimonials WHERE id = ?`, id)
	return scanTestimonial(row)
}

// ListTestimonials returns all testimonials in display order.
func (q *Queries) ListTestimonials(ctx context.Context) ([]model.Testimonial, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+testimonialColumns+` FROM testimonials ORDER BY position ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	testimonials := []model.Testimonial{}
	for rows.Next() {
		t, err := scanTestimonial(rows)
		if err != nil {
			return nil, err
		}
		testimonials = append(testimonials, t)
	}
	return testimonials, rows.Err()
}

// CountTestimonials returns the total number of testimonials.
func (q *Queries) CountTestimonials(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM testimonials`).Scan(&count)
	return count, err
}

// UpdateTestimonialParams holds the fields for a full testimonial update.
type UpdateTestimonialParams struct {
	Name      string
	Role      string
	Content   string
	AvatarURL string
	Rating    int64
	Featured  bool
	Position  int64
	UpdatedAt time.Time
	ID        int64
}

// UpdateTestimonial replaces all mutable fields of a testimonial and returns the updated row.
func (q *Queries) UpdateTestimonial(ctx context.Context, arg UpdateTestimonialParams) (model.Testimonial, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE testimonials SET name = ?, role = ?, content = ?, avatar_url = ?,
			rating = ?, featured = ?, position = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+testimonialColumns,
		arg.Name, arg.Role, arg.Content, arg.AvatarURL, arg.Rating,
		arg.Featured, arg.Position, arg.UpdatedAt, arg.ID)
	return scanTestimonial(row)
}

// DeleteTestimonial removes a testimonial.
func (q *Queries) DeleteTestimonial(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM testimonials WHERE id = ?`, id)
	return err
}
