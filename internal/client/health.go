// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthResult is one connectivity probe outcome.
type HealthResult struct {
	Healthy bool
	Status  string
	Latency time.Duration
	Err     error
}

// CheckHealth probes GET /health once and measures round-trip latency.
func (c *Client) CheckHealth(ctx context.Context) HealthResult {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return HealthResult{Err: err}
	}

	resp, err := c.http.Do(req)
	latency := time.Since(start)
	if err != nil {
		return HealthResult{Latency: latency, Err: err}
	}
	defer resp.Body.Close()

	var body struct {
		Status string `json:"status"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)

	return HealthResult{
		Healthy: resp.StatusCode == http.StatusOK,
		Status:  body.Status,
		Latency: latency,
	}
}

// MonitorHealth probes the server on a fixed interval until ctx is
// cancelled, delivering each result to fn. The first probe fires
// immediately. There is no retry or backoff: a failed probe is simply
// reported and the ticker keeps its schedule.
func (c *Client) MonitorHealth(ctx context.Context, interval time.Duration, fn func(HealthResult)) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		fn(c.CheckHealth(ctx))
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(c.CheckHealth(ctx))
			}
		}
	}()
}
