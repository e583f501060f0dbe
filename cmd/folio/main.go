// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/folioworks/folio-go/internal/auth"
	"github.com/folioworks/folio-go/internal/cache"
	"github.com/folioworks/folio-go/internal/config"
	"github.com/folioworks/folio-go/internal/geoip"
	"github.com/folioworks/folio-go/internal/handler/api"
	"github.com/folioworks/folio-go/internal/logging"
	"github.com/folioworks/folio-go/internal/middleware"
	"github.com/folioworks/folio-go/internal/scheduler"
	"github.com/folioworks/folio-go/internal/service"
	"github.com/folioworks/folio-go/internal/store"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Folio - portfolio site backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_JWT_SECRET       Token signing key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_DB_PATH          SQLite database path (default: ./data/folio.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_SERVER_PORT      Server port (default: 4000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_UPLOADS_DIR      Media uploads directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_CORS_ORIGINS     Comma-separated allowed browser origins\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_REDIS_URL        Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_GEOIP_DB_PATH    GeoLite2-Country.mmdb path (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FOLIO_DO_SEED          Seed sample content on startup (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("folio %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(textHandler))

	// Ensure data and uploads directories exist
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log
	slog.SetDefault(slog.New(logging.NewEventLogHandler(textHandler, db)))
	slog.Info("event log integration enabled", "min_level", "warn")

	// Seed default data
	ctx := context.Background()
	if err := store.Seed(ctx, db); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}
	if cfg.DoSeed {
		if err := store.SeedContent(ctx, db); err != nil {
			return fmt.Errorf("seeding sample content: %w", err)
		}
	}

	queries := store.New(db)

	// GeoIP country lookup for the event log (optional)
	geo, err := geoip.New(cfg.GeoIPDBPath)
	if err != nil {
		slog.Warn("geoip disabled", "error", err)
	} else if cfg.GeoIPEnabled() {
		slog.Info("geoip lookup enabled", "path", cfg.GeoIPDBPath)
	}

	events := service.NewEventService(db, geo)

	// Content cache: Redis when configured, in-memory otherwise
	contentCache := cache.New(cache.Options{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:    cfg.CacheMaxSize,
	})
	defer func() {
		if err := contentCache.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL)

	// Background maintenance: token cleanup, event log trimming, geoip reload
	sched := scheduler.New(db, geo, slog.Default())
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	h := api.NewHandler(db, cfg, tokens, events, contentCache)

	authenticate := middleware.Authenticate(tokens, queries)
	loginLimiter := middleware.NewIPRateLimiter(1, 5)
	contactLimiter := middleware.NewIPRateLimiter(0.2, 3)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Cache"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health probes live outside the API prefix so load balancers and the
	// client monitor can reach them without credentials.
	r.Get("/health", h.Health)
	r.Get("/health/live", h.Liveness)
	r.Get("/health/ready", h.Readiness)

	r.Route("/api/v1", func(r chi.Router) {
		// Public content
		r.Get("/projects", h.ListProjects)
		r.Get("/projects/{slug}", h.GetProjectBySlug)
		r.Get("/services", h.ListServices)
		r.Get("/testimonials", h.ListTestimonials)
		r.Get("/settings", h.GetSettings)

		// Public contact form, rate limited per IP
		r.With(contactLimiter.Middleware).Post("/contact", h.SubmitContact)

		r.Route("/auth", func(r chi.Router) {
			r.With(loginLimiter.Middleware).Post("/login", h.Login)
			r.With(loginLimiter.Middleware).Post("/forgotpassword", h.ForgotPassword)
			r.With(loginLimiter.Middleware).Put("/resetpassword/{token}", h.ResetPassword)
			r.Post("/refresh-token", h.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/logout", h.Logout)
				r.Get("/me", h.Me)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticate)

			// Content management requires at least the editor role.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireEditor())

				registerCRUD(r, "/projects", crudHandlers{
					List:   h.AdminListProjects,
					Get:    h.AdminGetProject,
					Create: h.CreateProject,
					Update: h.UpdateProject,
					Delete: h.DeleteProject,
				})
				registerCRUD(r, "/services", crudHandlers{
					List:   h.AdminListServices,
					Get:    h.AdminGetService,
					Create: h.CreateService,
					Update: h.UpdateService,
					Delete: h.DeleteService,
				})
				registerCRUD(r, "/testimonials", crudHandlers{
					List:   h.AdminListTestimonials,
					Get:    h.AdminGetTestimonial,
					Create: h.CreateTestimonial,
					Update: h.UpdateTestimonial,
					Delete: h.DeleteTestimonial,
				})

				r.Post("/media", h.UploadMedia)
				r.Get("/media", h.ListMedia)
				r.Delete("/media/{id}", h.DeleteMedia)
			})

			// User and message management is admin only.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin())

				registerCRUD(r, "/users", crudHandlers{
					List:   h.ListUsers,
					Get:    h.GetUser,
					Create: h.CreateUser,
					Update: h.UpdateUser,
					Delete: h.DeactivateUser,
				})

				r.Get("/messages", h.ListContacts)
				r.Get("/messages/{id}", h.GetContact)
				r.Patch("/messages/{id}", h.UpdateContact)
				r.Put("/messages/{id}", h.UpdateContact)
				r.Delete("/messages/{id}", h.DeleteContact)

				r.Patch("/settings", h.UpdateSettings)
				r.Put("/settings", h.UpdateSettings)

				r.Get("/stats", h.GetStats)
			})
		})
	})

	// Serve uploaded media (originals and thumbnails)
	registerUploads(r, cfg.UploadsDir)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Longer to allow for large uploads and slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// crudHandlers defines the standard CRUD handler methods for an admin
// resource. The admin reads serve raw fields, uncached, so editors see
// exactly what is stored.
type crudHandlers struct {
	List   http.HandlerFunc
	Get    http.HandlerFunc
	Create http.HandlerFunc
	Update http.HandlerFunc
	Delete http.HandlerFunc
}

// registerCRUD registers the routes for an admin resource.
// Routes: GET base, POST base, GET base/{id}, PATCH base/{id},
// PUT base/{id}, DELETE base/{id}
func registerCRUD(r chi.Router, base string, h crudHandlers) {
	baseID := base + "/{id}"
	r.Get(base, h.List)
	r.Post(base, h.Create)
	r.Get(baseID, h.Get)
	r.Patch(baseID, h.Update)
	r.Put(baseID, h.Update) // Some HTTP clients can't send PATCH
	r.Delete(baseID, h.Delete)
}

// registerUploads serves files from the uploads directory, rejecting any
// path that escapes it (CWE-22).
func registerUploads(r chi.Router, uploadsDir string) {
	absUploads, err := filepath.Abs(uploadsDir)
	if err != nil {
		slog.Error("resolving uploads directory", "error", err)
		return
	}

	r.Get("/uploads/*", func(w http.ResponseWriter, req *http.Request) {
		rel := chi.URLParam(req, "*")
		absFile, err := filepath.Abs(filepath.Join(absUploads, filepath.FromSlash(rel)))
		if err != nil {
			http.NotFound(w, req)
			return
		}

		// Verify containment using filepath.Rel
		contained, err := filepath.Rel(absUploads, absFile)
		if err != nil || strings.HasPrefix(contained, "..") || filepath.IsAbs(contained) {
			http.NotFound(w, req)
			return
		}

		http.ServeFile(w, req, absFile)
	})
}
