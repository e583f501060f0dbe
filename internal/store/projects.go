// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/folioworks/folio-go/internal/model"
)

const projectColumns = `id, title, slug, description, body, category, tags, image_url,
	live_url, github_url, featured, position, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (model.Project, error) {
	var p model.Project
	var tags string
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.Body, &p.Category,
		&tags, &p.ImageURL, &p.LiveURL, &p.GithubURL, &p.Featured, &p.Position,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	p.Tags = model.DecodeStringList(tags)
	return p, nil
}

func collectProjects(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]model.Project, error) {
	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// CreateProjectParams holds the fields for creating a project.
type CreateProjectParams struct {
	Title       string
	Slug        string
	Description string
	Body        string
	Category    string
	Tags        []string
	ImageURL    string
	LiveURL     string
	GithubURL   string
	Featured    bool
	Position    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateProject inserts a new project and returns it.
func (q *Queries) CreateProject(ctx context.Context, arg CreateProjectParams) (model.Project, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO projects (title, slug, description, body, category, tags, image_url,
			live_url, github_url, featured, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+projectColumns,
		arg.Title, arg.Slug, arg.Description, arg.Body, arg.Category,
		model.EncodeStringList(arg.Tags), arg.ImageURL,
		nullString(arg.LiveURL), nullString(arg.GithubURL),
		arg.Featured, arg.Position, arg.CreatedAt, arg.UpdatedAt)
	return scanProject(row)
}

// GetProjectByID returns a project by primary key.
func (q *Queries) GetProjectByID(ctx context.Context, id int64) (model.Project, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

// GetProjectBySlug returns a project by its URL slug.
func (q *Queries) GetProjectBySlug(ctx context.Context, slug string) (model.Project, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE slug = ?`, slug)
	return scanProject(row)
}

// ListProjects returns all projects in display order.
func (q *Queries) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY position ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProjects(rows)
}

// ListProjectsByCategory returns projects in one category, in display order.
func (q *Queries) ListProjectsByCategory(ctx context.Context, category string) ([]model.Project, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE category = ? ORDER BY position ASC, id ASC`,
		category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProjects(rows)
}

// CountProjects returns the total number of projects.
func (q *Queries) CountProjects(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&count)
	return count, err
}

// UpdateProjectParams holds the fields for a full project update.
type UpdateProjectParams struct {
	Title       string
	Slug        string
	Description string
	Body        string
	Category    string
	Tags        []string
	ImageURL    string
	LiveURL     string
	GithubURL   string
	Featured    bool
	Position    int64
	UpdatedAt   time.Time
	ID          int64
}

// UpdateProject replaces all mutable fields of a project and returns the updated row.
func (q *Queries) UpdateProject(ctx context.Context, arg UpdateProjectParams) (model.Project, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE projects SET title = ?, slug = ?, description = ?, body = ?, category = ?,
			tags = ?, image_url = ?, live_url = ?, github_url = ?, featured = ?,
			position = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+projectColumns,
		arg.Title, arg.Slug, arg.Description, arg.Body, arg.Category,
		model.EncodeStringList(arg.Tags), arg.ImageURL,
		nullString(arg.LiveURL), nullString(arg.GithubURL),
		arg.Featured, arg.Position, arg.UpdatedAt, arg.ID)
	return scanProject(row)
}

// DeleteProject removes a project.
func (q *Queries) DeleteProject(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	return err
}
