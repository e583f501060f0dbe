// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Media is an uploaded image referenced by projects and testimonials.
type Media struct {
	ID        int64     `json:"id"`
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	ThumbPath string    `json:"thumbPath"`
	MimeType  string    `json:"mimeType"`
	Width     int64     `json:"width"`
	Height    int64     `json:"height"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}
