// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Contact statuses track triage of an inbound message.
const (
	ContactStatusNew        = "new"
	ContactStatusInProgress = "in_progress"
	ContactStatusContacted  = "contacted"
	ContactStatusResolved   = "resolved"
)

// ValidContactStatus reports whether status is a known contact status.
func ValidContactStatus(status string) bool {
	switch status {
	case ContactStatusNew, ContactStatusInProgress, ContactStatusContacted, ContactStatusResolved:
		return true
	}
	return false
}

// Contact is a message submitted through the public contact form.
// Creation is the only unauthenticated write path in the API; every
// mutation afterwards requires an admin session.
type Contact struct {
	ID          int64          `json:"id"`
	FirstName   string         `json:"firstName"`
	LastName    string         `json:"lastName"`
	Email       string         `json:"email"`
	Phone       sql.NullString `json:"-"`
	Message     string         `json:"message"`
	IsRead      bool           `json:"isRead"`
	Status      string         `json:"status"`
	Notes       string         `json:"notes,omitempty"`
	SubmittedAt time.Time      `json:"submittedAt"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// MarshalJSON flattens the nullable phone column to a plain string, absent
// when unset.
func (c Contact) MarshalJSON() ([]byte, error) {
	type alias Contact
	return json.Marshal(struct {
		alias
		Phone string `json:"phone,omitempty"`
	}{
		alias: alias(c),
		Phone: c.Phone.String,
	})
}
