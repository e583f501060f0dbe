// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/folioworks/folio-go/internal/model"
)

const mediaColumns = `id, filename, path, thumb_path, mime_type, width, height, size, created_at`

// CreateMediaParams holds the fields for recording an upload.
type CreateMediaParams struct {
	Filename  string
	Path      string
	ThumbPath string
	MimeType  string
	Width     int64
	Height    int64
	Size      int64
	CreatedAt time.Time
}

// CreateMedia records an uploaded file and returns it.
func (q *Queries) CreateMedia(ctx context.Context, arg CreateMediaParams) (model.Media, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO media (filename, path, thumb_path, mime_type, width, height, size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+mediaColumns,
		arg.Filename, arg.Path, arg.ThumbPath, arg.MimeType,
		arg.Width, arg.Height, arg.Size, arg.CreatedAt)
	var m model.Media
	err := row.Scan(&m.ID, &m.Filename, &m.Path, &m.ThumbPath, &m.MimeType,
		&m.Width, &m.Height, &m.Size, &m.CreatedAt)
	return m, err
}

// GetMediaByID returns an upload record by primary key.
func (q *Queries) GetMediaByID(ctx context.Context, id int64) (model.Media, error) {
	var m model.Media
	err := q.db.QueryRowContext(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE id = ?`, id).
		Scan(&m.ID, &m.Filename, &m.Path, &m.ThumbPath, &m.MimeType,
			&m.Width, &m.Height, &m.Size, &m.CreatedAt)
	return m, err
}

// ListMedia returns all upload records, newest first.
func (q *Queries) ListMedia(ctx context.Context) ([]model.Media, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+mediaColumns+` FROM media ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	media := []model.Media{}
	for rows.Next() {
		var m model.Media
		if err := rows.Scan(&m.ID, &m.Filename, &m.Path, &m.ThumbPath, &m.MimeType,
			&m.Width, &m.Height, &m.Size, &m.CreatedAt); err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

// DeleteMedia removes an upload record.
func (q *Queries) DeleteMedia(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	return err
}
