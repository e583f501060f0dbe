// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/folioworks/folio-go/internal/imaging"
	"github.com/folioworks/folio-go/internal/store"
)

// maxUploadSize bounds multipart uploads (10 MB).
const maxUploadSize = 10 << 20

// UploadMedia accepts a multipart image upload under the "file" field,
// stores the original plus a thumbnail on disk, and records it. Editor role
// or above.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteBadRequest(w, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteBadRequest(w, "A file is required")
		return
	}
	defer file.Close()

	// Sniff the real content type; the client header is not trusted.
	head := make([]byte, 512)
	n, _ := file.Read(head)
	mimeType := imaging.DetectMimeType(head[:n])
	if !imaging.IsImage(mimeType) {
		WriteBadRequest(w, "Only image uploads are supported")
		return
	}
	if _, err := file.Seek(0, 0); err != nil {
		slog.Error("failed to rewind upload", "error", err)
		WriteInternalError(w, "Failed to process upload")
		return
	}

	id := uuid.NewString()
	result, err := h.images.Process(file, id, header.Filename)
	if err != nil {
		slog.Warn("image processing failed", "filename", header.Filename, "error", err)
		WriteBadRequest(w, "Could not process image")
		return
	}

	media, err := h.queries.CreateMedia(r.Context(), store.CreateMediaParams{
		Filename:  header.Filename,
		Path:      result.Path,
		ThumbPath: result.ThumbPath,
		MimeType:  result.MimeType,
		Width:     int64(result.Width),
		Height:    int64(result.Height),
		Size:      result.Size,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		slog.Error("failed to record upload", "error", err)
		// Leave no orphaned files behind.
		if cleanupErr := h.images.Delete(id); cleanupErr != nil {
			slog.Warn("failed to clean up upload files", "id", id, "error", cleanupErr)
		}
		WriteInternalError(w, "Failed to save upload")
		return
	}

	h.logContentChange(r, "media uploaded", media.ID, media.Filename)
	WriteCreated(w, media)
}

// ListMedia returns all uploads, newest first. Editor role or above.
func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	media, err := h.queries.ListMedia(r.Context())
	if err != nil {
		slog.Error("failed to list media", "error", err)
		WriteInternalError(w, "Failed to fetch media")
		return
	}
	WriteList(w, len(media), media)
}

// DeleteMedia removes an upload record and its files. Editor role or above.
func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid media ID")
		return
	}

	media, err := h.queries.GetMediaByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, "Media not found")
			return
		}
		slog.Error("failed to fetch media", "id", id, "error", err)
		WriteInternalError(w, "Failed to delete media")
		return
	}

	if err := h.queries.DeleteMedia(r.Context(), id); err != nil {
		slog.Error("failed to delete media record", "id", id, "error", err)
		WriteInternalError(w, "Failed to delete media")
		return
	}

	// Stored paths look like originals/<uuid>/<file>; the uuid directory
	// groups the original with its thumbnail.
	if dir := mediaDirID(media.Path); dir != "" {
		if err := h.images.Delete(dir); err != nil {
			slog.Warn("failed to delete media files", "id", id, "error", err)
		}
	}

	h.logContentChange(r, "media deleted", id, media.Filename)
	WriteMessage(w, "Media deleted")
}

// mediaDirID extracts the id segment from a stored media path.
func mediaDirID(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
