// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package geoip

import "testing"

func TestCountryDisabled(t *testing.T) {
	g, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer g.Close()

	tests := []struct {
		ip   string
		want string
	}{
		{"127.0.0.1", "LOCAL"},
		{"10.1.2.3", "LOCAL"},
		{"192.168.1.1", "LOCAL"},
		{"::1", "LOCAL"},
		{"8.8.8.8", ""},  // no database loaded
		{"not-an-ip", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := g.Country(tt.ip); got != tt.want {
			t.Errorf("Country(%q) = %q, want %q", tt.ip, got, tt.want)
		}
	}
}

func TestNewMissingDatabase(t *testing.T) {
	g, err := New("/nonexistent/GeoLite2-Country.mmdb")
	if err == nil {
		t.Error("expected error for missing database")
	}
	if g == nil {
		t.Fatal("Lookup should still be usable")
	}
	defer g.Close()

	if got := g.Country("8.8.8.8"); got != "" {
		t.Errorf("Country = %q, want empty with no database", got)
	}
}
