// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

// Package client is a Go SDK for the Folio REST API. Every call returns a
// uniform Result regardless of what went wrong: callers inspect Success
// and Error, never HTTP status codes or transport errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/folioworks/folio-go/internal/model"
)

const apiPrefix = "/api/v1/"

// Result is the uniform outcome of any API call. Non-2xx responses and
// network failures both land here as Success=false with a message.
type Result struct {
	Success bool            `json:"success"`
	Count   int             `json:"count,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Client calls the Folio API, attaching the bearer token from its session
// store when one is present.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions SessionStore
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Tests use this to
// point at a httptest.Server transport or shorten timeouts.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client for the API at baseURL. The session store may be
// shared with other clients; it is read and replaced whole on every use.
func New(baseURL string, sessions SessionStore, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 15 * time.Second},
		sessions: sessions,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs a versioned API request. The path is normalized: leading and
// trailing slashes are stripped and the API prefix is applied, so
// "auth/login", "/auth/login" and "auth/login/" all hit the same endpoint.
func (c *Client) do(ctx context.Context, method, path string, body any) Result {
	return c.doRaw(ctx, method, apiPrefix+strings.Trim(path, "/"), body)
}

// doRaw performs a request against an absolute server path, bypassing the
// version prefix. Health probes use this.
func (c *Client) doRaw(ctx context.Context, method, path string, body any) Result {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return failure(fmt.Sprintf("encoding request: %v", err))
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return failure(fmt.Sprintf("building request: %v", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session, ok := c.sessions.Load(); ok && session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return failure(fmt.Sprintf("request failed: %v", err))
	}
	defer resp.Body.Close()

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return failure(fmt.Sprintf("decoding response: %v", err))
		}
		return failure(fmt.Sprintf("server returned %s", resp.Status))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := result.Error
		if msg == "" {
			msg = fmt.Sprintf("server returned %s", resp.Status)
		}
		return failure(msg)
	}
	return result
}

func failure(msg string) Result {
	return Result{Success: false, Error: msg}
}

// decodeData unmarshals a successful result's data payload.
func decodeData[T any](result Result) (T, error) {
	var out T
	if !result.Success {
		return out, fmt.Errorf("%s", result.Error)
	}
	if len(result.Data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(result.Data, &out); err != nil {
		return out, fmt.Errorf("decoding payload: %w", err)
	}
	return out, nil
}

// Projects lists projects, optionally filtered by category.
func (c *Client) Projects(ctx context.Context, category string) ([]model.Project, error) {
	path := "projects"
	if category != "" {
		path += "?category=" + category
	}
	return decodeData[[]model.Project](c.do(ctx, http.MethodGet, path, nil))
}

// ProjectBySlug fetches a single project with its rendered body.
func (c *Client) ProjectBySlug(ctx context.Context, slug string) (model.Project, error) {
	return decodeData[model.Project](c.do(ctx, http.MethodGet, "projects/"+slug, nil))
}

// Services lists services.
func (c *Client) Services(ctx context.Context) ([]model.Service, error) {
	return decodeData[[]model.Service](c.do(ctx, http.MethodGet, "services", nil))
}

// Testimonials lists testimonials.
func (c *Client) Testimonials(ctx context.Context) ([]model.Testimonial, error) {
	return decodeData[[]model.Testimonial](c.do(ctx, http.MethodGet, "testimonials", nil))
}

// ContactSubmission is the public contact form payload.
type ContactSubmission struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Message   string `json:"message"`
}

// SubmitContact sends a contact form submission. The returned Result
// carries the server's confirmation message on success.
func (c *Client) SubmitContact(ctx context.Context, submission ContactSubmission) Result {
	return c.do(ctx, http.MethodPost, "contact", submission)
}

// Stats fetches the admin dashboard counts. Requires an admin session.
func (c *Client) Stats(ctx context.Context) Result {
	return c.do(ctx, http.MethodGet, "admin/stats", nil)
}

// Settings fetches the public site settings. The frontend checks
// maintenanceMode here before rendering content.
func (c *Client) Settings(ctx context.Context) (model.Settings, error) {
	return decodeData[model.Settings](c.do(ctx, http.MethodGet, "settings", nil))
}
