// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST API handlers: public content endpoints,
// authentication, and the admin panel CRUD surface.
package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/folioworks/folio-go/internal/auth"
	"github.com/folioworks/folio-go/internal/cache"
	"github.com/folioworks/folio-go/internal/config"
	"github.com/folioworks/folio-go/internal/imaging"
	"github.com/folioworks/folio-go/internal/service"
	"github.com/folioworks/folio-go/internal/store"
)

// maxBodySize bounds JSON request bodies (1 MB).
const maxBodySize = 1 << 20

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db        *sql.DB
	queries   *store.Queries
	cfg       *config.Config
	tokens    *auth.TokenService
	events    *service.EventService
	cache     cache.Cache
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
	markdown  goldmark.Markdown
	images    *imaging.Processor
	startedAt time.Time
}

// NewHandler creates the API handler with its full dependency set.
func NewHandler(db *sql.DB, cfg *config.Config, tokens *auth.TokenService, events *service.EventService, contentCache cache.Cache) *Handler {
	return &Handler{
		db:        db,
		queries:   store.New(db),
		cfg:       cfg,
		tokens:    tokens,
		events:    events,
		cache:     contentCache,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		sanitizer: bluemonday.StrictPolicy(),
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
		images:    imaging.NewProcessor(cfg.UploadsDir),
		startedAt: time.Now(),
	}
}

// Response is the uniform API envelope. Every endpoint, success or failure,
// returns this shape.
type Response struct {
	Success bool   `json:"success"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteSuccess writes a 200 envelope with data.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

// WriteList writes a 200 envelope with data and an item count.
func WriteList(w http.ResponseWriter, count int, data any) {
	WriteJSON(w, http.StatusOK, Response{Success: true, Count: &count, Data: data})
}

// WriteCreated writes a 201 envelope with data.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Success: true, Data: data})
}

// WriteMessage writes a 200 envelope with a human-readable message and no
// data payload.
func WriteMessage(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusOK, Response{Success: true, Message: message})
}

// WriteError writes an error envelope.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, Response{Success: false, Error: message})
}

// WriteBadRequest writes a 400 error.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

// WriteNotFound writes a 404 error.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

// WriteUnauthorized writes a 401 error.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message)
}

// WriteInternalError writes a 500 error. The message stays generic; details
// belong in the log, not the response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}

// WriteValidationError writes a 422 error from validator field errors.
func WriteValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		WriteError(w, http.StatusUnprocessableEntity, validationMessage(verrs[0]))
		return
	}
	WriteError(w, http.StatusUnprocessableEntity, "Validation failed")
}

// validationMessage maps a validator error onto a readable sentence.
func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Please provide " + fieldLabel(fe.Field())
	case "email":
		return "Please provide a valid email"
	case "min":
		return fieldLabel(fe.Field()) + " must be at least " + fe.Param() + " characters"
	case "max":
		return fieldLabel(fe.Field()) + " can not be more than " + fe.Param() + " characters"
	case "oneof":
		return fieldLabel(fe.Field()) + " must be one of: " + fe.Param()
	default:
		return fieldLabel(fe.Field()) + " is invalid"
	}
}

func fieldLabel(name string) string {
	switch name {
	case "FirstName":
		return "first name"
	case "LastName":
		return "last name"
	case "Email":
		return "email"
	case "Password":
		return "password"
	case "Message":
		return "message"
	case "Title":
		return "title"
	case "Description":
		return "description"
	case "Category":
		return "category"
	case "ImageURL":
		return "image"
	case "Name":
		return "name"
	case "Role":
		return "role"
	case "Content":
		return "content"
	case "Icon":
		return "icon"
	case "Rating":
		return "rating"
	case "Status":
		return "status"
	default:
		return name
	}
}

// decodeJSON decodes and validates a request body into dst. It writes the
// error response itself and reports whether decoding succeeded.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			WriteBadRequest(w, "Request body is required")
		} else {
			WriteBadRequest(w, "Invalid request body")
		}
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		WriteValidationError(w, err)
		return false
	}
	return true
}

// parseIDParam extracts the {id} chi URL parameter.
func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// maxListLimit caps ?limit= on listing endpoints.
const maxListLimit = 100

// listWindow parses optional ?limit= and ?offset= pagination parameters.
// A zero limit means no limit. Invalid or negative values are ignored.
func listWindow(r *http.Request) (limit, offset int) {
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = min(v, maxListLimit)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

// window applies a limit/offset pair to an already sorted slice.
func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// windowKey extends a cache key with pagination parameters so each page is
// cached independently.
func windowKey(key string, limit, offset int) string {
	if limit == 0 && offset == 0 {
		return key
	}
	return fmt.Sprintf("%s:l%d:o%d", key, limit, offset)
}

// serveFromCache writes a previously cached response body verbatim.
// It reports whether the key was a hit.
func (h *Handler) serveFromCache(w http.ResponseWriter, r *http.Request, key string) bool {
	body, err := h.cache.Get(r.Context(), key)
	if err != nil {
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "HIT")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
	return true
}

// respondAndCache writes a 200 envelope and stores the exact bytes under
// key using the cache's default TTL.
func (h *Handler) respondAndCache(w http.ResponseWriter, r *http.Request, key string, resp Response) {
	body, err := json.Marshal(resp)
	if err != nil {
		WriteInternalError(w, "Failed to encode response")
		return
	}
	_ = h.cache.Set(r.Context(), key, body, 0)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// invalidateCache drops every cached response for a content type. Fire and
// forget: a stale entry expires on TTL anyway.
func (h *Handler) invalidateCache(r *http.Request, prefix string) {
	if err := h.cache.DeleteByPrefix(r.Context(), prefix); err != nil {
		slog.Warn("cache invalidation failed", "prefix", prefix, "error", err)
	}
}

// renderMarkdown converts markdown body text to HTML for public responses.
func (h *Handler) renderMarkdown(src string) string {
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(src), &buf); err != nil {
		return ""
	}
	return buf.String()
}
