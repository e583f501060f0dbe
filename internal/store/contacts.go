// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/folioworks/folio-go/internal/model"
)

const contactColumns = `id, first_name, last_name, email, phone, message, is_read,
	status, notes, submitted_at, created_at, updated_at`

func scanContact(row interface{ Scan(...any) error }) (model.Contact, error) {
	var c model.Contact
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.Message, &c.IsRead, &c.Status, &c.Notes,
		&c.SubmittedAt, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// CreateContactParams holds the fields for a contact form submission.
type CreateContactParams struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Message     string
	SubmittedAt time.Time
}

// CreateContact inserts a contact form submission and returns it.
// New submissions always start unread with status "new".
func (q *Queries) CreateContact(ctx context.Context, arg CreateContactParams) (model.Contact, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO contacts (first_name, last_name, email, phone, message, submitted_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+contactColumns,
		arg.FirstName, arg.LastName, arg.Email, nullString(arg.Phone),
		arg.Message, arg.SubmittedAt, arg.SubmittedAt, arg.SubmittedAt)
	return scanContact(row)
}

// GetContactByID returns a contact by primary key.
func (q *Queries) GetContactByID(ctx context.Context, id int64) (model.Contact, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id)
	return scanContact(row)
}

// ListContacts returns contacts newest first.
func (q *Queries) ListContacts(ctx context.Context) ([]model.Contact, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts ORDER BY submitted_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// CountContacts returns the total number of contact submissions.
func (q *Queries) CountContacts(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&count)
	return count, err
}

// CountUnreadContacts returns the number of unread contact submissions.
func (q *Queries) CountUnreadContacts(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts WHERE is_read = 0`).Scan(&count)
	return count, err
}

// SetContactReadParams holds the fields for toggling read state.
type SetContactReadParams struct {
	IsRead    bool
	UpdatedAt time.Time
	ID        int64
}

// SetContactRead marks a contact as read or unread and returns the updated row.
func (q *Queries) SetContactRead(ctx context.Context, arg SetContactReadParams) (model.Contact, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE contacts SET is_read = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+contactColumns,
		arg.IsRead, arg.UpdatedAt, arg.ID)
	return scanContact(row)
}

// UpdateContactTriageParams holds the editable triage fields.
type UpdateContactTriageParams struct {
	Status    string
	Notes     string
	UpdatedAt time.Time
	ID        int64
}

// UpdateContactTriage updates status and notes and returns the updated row.
func (q *Queries) UpdateContactTriage(ctx context.Context, arg UpdateContactTriageParams) (model.Contact, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE contacts SET status = ?, notes = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+contactColumns,
		arg.Status, arg.Notes, arg.UpdatedAt, arg.ID)
	return scanContact(row)
}

// DeleteContact removes a contact submission.
func (q *Queries) DeleteContact(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	return err
}
