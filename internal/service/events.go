// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides business logic above the store layer,
// including the audit event trail.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/mileusna/useragent"

	"github.com/folioworks/folio-go/internal/geoip"
	"github.com/folioworks/folio-go/internal/model"
	"github.com/folioworks/folio-go/internal/store"
	"github.com/folioworks/folio-go/internal/util"
)

// EventService records audit events. Admin actions and contact form
// submissions all pass through here.
type EventService struct {
	queries *store.Queries
	geo     *geoip.Lookup
}

// NewEventService creates an EventService. geo may be nil when GeoIP is not
// configured.
func NewEventService(db *sql.DB, geo *geoip.Lookup) *EventService {
	return &EventService{
		queries: store.New(db),
		geo:     geo,
	}
}

// Log creates an event log entry.
func (s *EventService) Log(ctx context.Context, level, category, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	var nullUserID sql.NullInt64
	if userID != nil {
		nullUserID = sql.NullInt64{Int64: *userID, Valid: true}
	}

	metadataJSON := "{}"
	if metadata != nil {
		if jsonBytes, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    nullUserID,
		IPAddress: ipAddress,
		Metadata:  metadataJSON,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		slog.Error("failed to log event", "error", err, "category", category)
		return err
	}
	return nil
}

// LogRequest records an event enriched with request context: client IP,
// country (when GeoIP is configured), and the parsed user agent.
func (s *EventService) LogRequest(r *http.Request, level, category, message string, userID *int64, metadata map[string]any) error {
	ip := util.ClientIP(r)

	if metadata == nil {
		metadata = make(map[string]any)
	}
	metadata["path"] = r.URL.Path

	if s.geo != nil {
		if country := s.geo.Country(ip); country != "" {
			metadata["country"] = country
		}
	}

	if uaString := r.UserAgent(); uaString != "" {
		ua := useragent.Parse(uaString)
		if ua.Name != "" {
			metadata["browser"] = ua.Name
		}
		if ua.OS != "" {
			metadata["os"] = ua.OS
		}
		switch {
		case ua.Bot:
			metadata["device"] = "bot"
		case ua.Mobile:
			metadata["device"] = "mobile"
		case ua.Tablet:
			metadata["device"] = "tablet"
		default:
			metadata["device"] = "desktop"
		}
	}

	return s.Log(r.Context(), level, category, message, userID, ip, metadata)
}

// LogAuth records an auth-category event with request context.
func (s *EventService) LogAuth(r *http.Request, level, message string, userID *int64, metadata map[string]any) error {
	return s.LogRequest(r, level, model.EventCategoryAuth, message, userID, metadata)
}

// LogContact records a contact-category event with request context.
func (s *EventService) LogContact(r *http.Request, level, message string, metadata map[string]any) error {
	return s.LogRequest(r, level, model.EventCategoryContact, message, nil, metadata)
}

// LogContent records a content-category event with request context.
func (s *EventService) LogContent(r *http.Request, level, message string, userID *int64, metadata map[string]any) error {
	return s.LogRequest(r, level, model.EventCategoryContent, message, userID, metadata)
}

// LogUser records a user-category event with request context.
func (s *EventService) LogUser(r *http.Request, level, message string, userID *int64, metadata map[string]any) error {
	return s.LogRequest(r, level, model.EventCategoryUser, message, userID, metadata)
}

// LogSystem records a system-category event without request context.
func (s *EventService) LogSystem(ctx context.Context, level, message string, metadata map[string]any) error {
	return s.Log(ctx, level, model.EventCategorySystem, message, nil, "", metadata)
}

// DeleteOldEvents removes events older than the given age. Returns the
// number of rows deleted.
func (s *EventService) DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	return s.queries.DeleteEventsBefore(ctx, cutoff)
}
