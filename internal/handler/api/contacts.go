// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/folioworks/folio-go/internal/model"
	"github.com/folioworks/folio-go/internal/store"
)

// contactSuccessMessage is the fixed reply to a public submission.
const contactSuccessMessage = "Thank you for your message! We will get back to you soon."

// ContactRequest is the public contact form payload.
type ContactRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,max=50"`
	Message   string `json:"message" validate:"required,min=10,max=5000"`
}

// SubmitContact accepts a contact form submission. This is the only
// unauthenticated write in the API; the router rate-limits it per IP.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	contact, err := h.queries.CreateContact(r.Context(), store.CreateContactParams{
		FirstName:   h.sanitizer.Sanitize(req.FirstName),
		LastName:    h.sanitizer.Sanitize(req.LastName),
		Email:       req.Email,
		Phone:       h.sanitizer.Sanitize(req.Phone),
		Message:     h.sanitizer.Sanitize(req.Message),
		SubmittedAt: time.Now().UTC(),
	})
	if err != nil {
		slog.Error("failed to store contact submission", "error", err)
		WriteInternalError(w, "Failed to submit message")
		return
	}

	_ = h.events.LogContact(r, model.EventLevelInfo, "contact form submitted",
		map[string]any{"id": contact.ID, "email": contact.Email})

	WriteJSON(w, http.StatusCreated, Response{Success: true, Message: contactSuccessMessage})
}

// ListContacts returns all submissions, newest first. Admin only.
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.queries.ListContacts(r.Context())
	if err != nil {
		slog.Error("failed to list contacts", "error", err)
		WriteInternalError(w, "Failed to fetch contacts")
		return
	}
	limit, offset := listWindow(r)
	contacts = window(contacts, limit, offset)
	WriteList(w, len(contacts), contacts)
}

// GetContact returns a single submission. Admin only.
func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid contact ID")
		return
	}

	contact, err := h.queries.GetContactByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Contact not found")
			return
		}
		slog.Error("failed to fetch contact", "id", id, "error", err)
		WriteInternalError(w, "Failed to fetch contact")
		return
	}
	WriteSuccess(w, contact)
}

// UpdateContactRequest carries triage updates; nil fields keep their
// current value.
type UpdateContactRequest struct {
	IsRead *bool   `json:"isRead"`
	Status *string `json:"status"`
	Notes  *string `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateContact updates read state, triage status, or notes. Admin only.
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid contact ID")
		return
	}

	var req UpdateContactRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Status != nil && !model.ValidContactStatus(*req.Status) {
		WriteBadRequest(w, "Invalid contact status")
		return
	}

	contact, err := h.queries.GetContactByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Contact not found")
			return
		}
		slog.Error("failed to fetch contact", "id", id, "error", err)
		WriteInternalError(w, "Failed to update contact")
		return
	}

	now := time.Now().UTC()
	if req.IsRead != nil {
		contact, err = h.queries.SetContactRead(r.Context(), store.SetContactReadParams{
			IsRead:    *req.IsRead,
			UpdatedAt: now,
			ID:        id,
		})
		if err != nil {
			slog.Error("failed to update contact read state", "id", id, "error", err)
			WriteInternalError(w, "Failed to update contact")
			return
		}
	}

	if req.Status != nil || req.Notes != nil {
		status := contact.Status
		if req.Status != nil {
			status = *req.Status
		}
		notes := contact.Notes
		if req.Notes != nil {
			notes = *req.Notes
		}
		contact, err = h.queries.UpdateContactTriage(r.Context(), store.UpdateContactTriageParams{
			Status:    status,
			Notes:     notes,
			UpdatedAt: now,
			ID:        id,
		})
		if err != nil {
			slog.Error("failed to update contact triage", "id", id, "error", err)
			WriteInternalError(w, "Failed to update contact")
			return
		}
	}

	WriteSuccess(w, contact)
}

// DeleteContact removes a submission. Admin only.
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid contact ID")
		return
	}

	if _, err := h.queries.GetContactByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Contact not found")
			return
		}
		slog.Error("failed to fetch contact", "id", id, "error", err)
		WriteInternalError(w, "Failed to delete contact")
		return
	}

	if err := h.queries.DeleteContact(r.Context(), id); err != nil {
		slog.Error("failed to delete contact", "id", id, "error", err)
		WriteInternalError(w, "Failed to delete contact")
		return
	}
	WriteMessage(w, "Contact deleted")
}
