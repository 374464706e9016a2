// Copyright (c) 2025-2026 Oleg Ivanchenko
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
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/alrehab/agriexport-go/internal/analytics"
	"github.com/alrehab/agriexport-go/internal/cache"
	"github.com/alrehab/agriexport-go/internal/config"
	"github.com/alrehab/agriexport-go/internal/geoip"
	apihandler "github.com/alrehab/agriexport-go/internal/handler/api"
	"github.com/alrehab/agriexport-go/internal/logging"
	"github.com/alrehab/agriexport-go/internal/middleware"
	"github.com/alrehab/agriexport-go/internal/ratelimit"
	"github.com/alrehab/agriexport-go/internal/store"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "agriexport - Al Rehab export site backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AGRI_JWT_SECRET        Token signing key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AGRI_DB_PATH           SQLite database path (default: ./data/agriexport.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AGRI_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AGRI_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AGRI_UPLOADS_DIR       Uploaded media directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AGRI_REDIS_URL         Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  AGRI_GEOIP_DB_PATH     GeoLite2-Country.mmdb path (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Printf("agriexport %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
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

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data and upload directories exist
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

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
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	// GeoIP country lookup, optional
	geo := geoip.NewLookup()
	if cfg.GeoIPEnabled() {
		if err := geo.Init(cfg.GeoIPDBPath); err != nil {
			slog.Warn("GeoIP database unavailable, country tracking disabled",
				"path", cfg.GeoIPDBPath, "error", err)
		} else {
			defer func() { _ = geo.Close() }()
			slog.Info("GeoIP lookup initialized", "path", cfg.GeoIPDBPath)
		}
	}

	// Cache backend: Redis when configured, in-process memory otherwise
	cacher, err := cache.New(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() { _ = cacher.Close() }()
	if cfg.UseRedisCache() {
		slog.Info("cache initialized", "backend", "redis", "url", cfg.RedisURL)
	} else {
		slog.Info("cache initialized", "backend", "memory")
	}

	// Page view retention cron
	retention := analytics.NewRetention(db, cfg.AnalyticsRetentionDays)
	if err := retention.Start(); err != nil {
		return fmt.Errorf("starting analytics retention: %w", err)
	}
	defer retention.Stop()
	slog.Info("analytics retention scheduled", "days", cfg.AnalyticsRetentionDays)

	h := apihandler.NewHandler(apihandler.Config{
		DB:            db,
		JWTSecret:     []byte(cfg.JWTSecret),
		SecureCookies: !cfg.IsDevelopment(),
		UploadDir:     cfg.UploadsDir,
		Geo:           geo,
		Cache:         cacher,
	})

	// Rate limiters: DB-backed fixed windows for the API surface, an
	// in-process token bucket for the analytics dashboard.
	limiter := ratelimit.New(store.New(db))
	limitAPI := middleware.RateLimit(limiter, ratelimit.LimitAPI)
	limitContactForm := middleware.RateLimit(limiter, ratelimit.LimitContactForm)
	analyticsLimiter := middleware.NewIPRateLimiter(0.5, 5)

	adminAuth := middleware.AdminAuth([]byte(cfg.JWTSecret))

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))

	r.Get("/health", healthHandler(db))

	// Admin auth routes. Login throttling is the lockout state machine,
	// not the shared API window.
	r.Post("/api/admin/login", h.Login)
	r.Post("/api/admin/logout", h.Logout)
	r.Group(func(r chi.Router) {
		r.Use(adminAuth)
		r.Get("/api/admin/session", h.Session)
		r.Post("/api/admin/change-password", h.ChangePassword)
		r.Post("/api/upload", h.Upload)
		r.Delete("/api/upload/{uuid}", h.DeleteUpload)
	})

	// Public catalog reads and inquiry submission
	r.Group(func(r chi.Router) {
		r.Use(limitAPI)

		r.Get("/api/categories", h.ListCategories)
		r.Get("/api/categories/{id}", h.GetCategory)
		r.Get("/api/products", h.ListProducts)
		r.Get("/api/products/{id}", h.GetProduct)
		r.Get("/api/certificates", h.ListCertificates)
		r.Get("/api/certificates/{id}", h.GetCertificate)
		r.Get("/api/contact-info", h.GetContactInfo)

		r.Post("/api/export-requests", h.CreateExportRequest)
		r.Post("/api/analytics/track", h.Track)
	})

	r.With(limitContactForm).Post("/api/contact-form", h.ContactForm)
	r.With(analyticsLimiter.Middleware()).Get("/api/analytics", h.GetAnalytics)

	// Admin mutations
	r.Group(func(r chi.Router) {
		r.Use(adminAuth)
		r.Use(limitAPI)

		r.Post("/api/categories", h.CreateCategory)
		r.Put("/api/categories/{id}", h.UpdateCategory)
		r.Delete("/api/categories/{id}", h.DeleteCategory)

		r.Post("/api/products", h.CreateProduct)
		r.Put("/api/products/{id}", h.UpdateProduct)
		r.Put("/api/products/{id}/images", h.UpdateProductImages)
		r.Delete("/api/products/{id}", h.DeleteProduct)

		r.Post("/api/certificates", h.CreateCertificate)
		r.Put("/api/certificates/{id}", h.UpdateCertificate)
		r.Delete("/api/certificates/{id}", h.DeleteCertificate)

		r.Get("/api/export-requests", h.ListExportRequests)
		r.Put("/api/export-requests", h.BulkUpdateExportRequests)
		r.Get("/api/export-requests/{id}", h.GetExportRequest)
		r.Put("/api/export-requests/{id}", h.UpdateExportRequest)
		r.Delete("/api/export-requests/{id}", h.DeleteExportRequest)

		r.Post("/api/contact-info", h.UpsertContactInfo)
		r.Put("/api/contact-info", h.UpsertContactInfo)
	})

	// Uploaded media: cache for 1 week
	uploadsHandler := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir)))
	r.Handle("/uploads/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=604800")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		uploadsHandler.ServeHTTP(w, r)
	}))

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
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

// healthHandler reports process and database health.
func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
