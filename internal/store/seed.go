// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/folioworks/folio-go/internal/auth"
	"github.com/folioworks/folio-go/internal/model"
)

// Default admin credentials. Change the password immediately after the
// first login.
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "changeme"
	DefaultAdminName     = "Administrator"
)

// Seed creates the default admin user if no users exist yet.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	_, err := queries.GetUserByEmail(ctx, DefaultAdminEmail)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        DefaultAdminEmail,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		Name:         DefaultAdminName,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"email", user.Email,
		"password", DefaultAdminPassword,
	)

	return nil
}

// SeedContent creates sample portfolio content when the content tables are
// empty. Intended for local development.
func SeedContent(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	count, err := queries.CountProjects(ctx)
	if err != nil {
		return fmt.Errorf("counting projects: %w", err)
	}
	if count > 0 {
		slog.Info("content already present, skipping content seed")
		return nil
	}

	now := time.Now().UTC()

	projects := []CreateProjectParams{
		{
			Title:       "E-Commerce Platform",
			Slug:        "e-commerce-platform",
			Description: "A full-featured online store with cart, checkout and order tracking.",
			Body:        "## Overview\n\nBuilt for a retail client moving their catalog online.",
			Category:    "web",
			Tags:        []string{"go", "postgres", "stripe"},
			ImageURL:    "/uploads/projects/ecommerce.jpg",
			LiveURL:     "https://shop.example.com",
			Featured:    true,
			Position:    1,
		},
		{
			Title:       "Fitness Tracker App",
			Slug:        "fitness-tracker-app",
			Description: "Mobile companion app for logging workouts and tracking progress.",
			Body:        "## Overview\n\nCross-platform mobile app with offline sync.",
			Category:    "mobile",
			Tags:        []string{"mobile", "sqlite"},
			ImageURL:    "/uploads/projects/fitness.jpg",
			GithubURL:   "https://github.com/folioworks/fitness-demo",
			Featured:    true,
			Position:    2,
		},
		{
			Title:       "Brand Identity System",
			Slug:        "brand-identity-system",
			Description: "Logo, typography and design tokens for a startup rebrand.",
			Category:    "design",
			Tags:        []string{"branding", "figma"},
			ImageURL:    "/uploads/projects/brand.jpg",
			Position:    3,
		},
	}
	for _, p := range projects {
		p.CreatedAt, p.UpdatedAt = now, now
		if _, err := queries.CreateProject(ctx, p); err != nil {
			return fmt.Errorf("seeding project %q: %w", p.Slug, err)
		}
	}

	services := []CreateServiceParams{
		{
			Title:       "Web Development",
			Description: "Fast, accessible websites and web applications.",
			Icon:        "code",
			Color:       "#2563eb",
			Features:    []string{"Responsive design", "API integration", "Performance tuning"},
			Featured:    true,
			Position:    1,
		},
		{
			Title:       "Mobile Apps",
			Description: "Native-quality apps for iOS and Android.",
			Icon:        "smartphone",
			Color:       "#16a34a",
			Features:    []string{"Cross-platform", "Offline support", "Push notifications"},
			Position:    2,
		},
		{
			Title:       "UI/UX Design",
			Description: "Interfaces people actually enjoy using.",
			Icon:        "palette",
			Color:       "#9333ea",
			Features:    []string{"User research", "Prototyping", "Design systems"},
			Position:    3,
		},
	}
	for _, s := range services {
		s.CreatedAt, s.UpdatedAt = now, now
		if _, err := queries.CreateService(ctx, s); err != nil {
			return fmt.Errorf("seeding service %q: %w", s.Title, err)
		}
	}

	testimonials := []CreateTestimonialParams{
		{
			Name:     "Sarah Mitchell",
			Role:     "CEO, Retail Co",
			Content:  "The new store doubled our online revenue within three months.",
			Rating:   5,
			Featured: true,
			Position: 1,
		},
		{
			Name:     "James Okafor",
			Role:     "Founder, FitLife",
			Content:  "Professional, responsive and delivered ahead of schedule.",
			Rating:   5,
			Position: 2,
		},
	}
	for _, t := range testimonials {
		t.CreatedAt, t.UpdatedAt = now, now
		if _, err := queries.CreateTestimonial(ctx, t); err != nil {
			return fmt.Errorf("seeding testimonial %q: %w", t.Name, err)
		}
	}

	slog.Info("seeded sample content",
		"projects", len(projects),
		"services", len(services),
		"testimonials", len(testimonials),
	)

	return nil
}
