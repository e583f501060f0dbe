// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
)

// Stats is the dashboard summary returned by GET /admin/stats.
type Stats struct {
	Projects       int64 `json:"projects"`
	Services       int64 `json:"services"`
	Testimonials   int64 `json:"testimonials"`
	Contacts       int64 `json:"contacts"`
	UnreadContacts int64 `json:"unreadContacts"`
	Users          int64 `json:"users"`
	Events         int64 `json:"events"`
}

// GetStats returns entity counts for the admin dashboard. The counts run
// concurrently; a failed count reports zero rather than failing the whole
// response.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	var (
		stats Stats
		wg    sync.WaitGroup
	)

	count := func(dst *int64, name string, fn func(context.Context) (int64, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := fn(r.Context())
			if err != nil {
				slog.Warn("stats count failed", "entity", name, "error", err)
				return
			}
			*dst = n
		}()
	}

	count(&stats.Projects, "projects", h.queries.CountProjects)
	count(&stats.Services, "services", h.queries.CountServices)
	count(&stats.Testimonials, "testimonials", h.queries.CountTestimonials)
	count(&stats.Contacts, "contacts", h.queries.CountContacts)
	count(&stats.UnreadContacts, "unread contacts", h.queries.CountUnreadContacts)
	count(&stats.Users, "users", h.queries.CountUsers)
	count(&stats.Events, "events", h.queries.CountEvents)
	wg.Wait()

	WriteSuccess(w, stats)
}
