package main

import (
	"context"
	"crypto/rand"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Simplici0/weddingquote/internal/config"
	"github.com/Simplici0/weddingquote/internal/db"
	"github.com/Simplici0/weddingquote/internal/gallery"
	"github.com/Simplici0/weddingquote/internal/lead"
	"github.com/Simplici0/weddingquote/internal/logging"
	"github.com/Simplici0/weddingquote/internal/metrics"
	"github.com/Simplici0/weddingquote/internal/migrations"
	"github.com/Simplici0/weddingquote/internal/render"
	"github.com/Simplici0/weddingquote/internal/seed"
	"github.com/Simplici0/weddingquote/internal/siteconfig"
	"github.com/Simplici0/weddingquote/internal/store"
)

const uploadsPrefix = "/uploads"

// pdfPrinter prints a page of this server to PDF.
type pdfPrinter interface {
	PrintURL(ctx context.Context, url string) ([]byte, error)
}

type server struct {
	store     *store.Store
	auth      *authService
	metrics   *metrics.Metrics
	logger    *slog.Logger
	leads     *lead.Cache
	pdf       pdfPrinter
	gallery   *gallery.Store
	baseURL   string
	uploadDir string
	now       func() time.Time
}

type baseViewData struct {
	ErrorMessage   string
	SuccessMessage string
}

type loginViewData struct {
	baseViewData
	Email string
}

func main() {
	cfg := config.Load()
	logging.Setup(logging.LevelFromString(cfg.LogLevel), cfg.IsDev())
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		logger.Error("failed to run database migrations", "error", err)
		os.Exit(1)
	}

	stats, err := seed.Run(ctx, database, seed.Config{AdminEmail: cfg.AdminEmail, AdminPassword: cfg.AdminPassword})
	if err != nil {
		logger.Error("failed to seed database", "error", err)
		os.Exit(1)
	}
	logger.Info("seed completed", "inserts", stats.Inserts, "updates", stats.Updates)

	secret := cfg.SessionSecret
	if secret == "" {
		secret = randomSecret()
		logger.Warn("using a random session secret; admin sessions end on restart")
	}

	srv := &server{
		store:     store.New(database),
		auth:      newAuthService(secret, sessionTTL),
		metrics:   metrics.New(),
		logger:    logger,
		leads:     lead.NewCache(lead.NewMemoryKV()),
		pdf:       render.NewPDFPrinter(cfg.ChromePath),
		gallery:   gallery.NewStore(cfg.UploadDir, uploadsPrefix),
		baseURL:   cfg.BaseURL,
		uploadDir: cfg.UploadDir,
		now:       time.Now,
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("listening", "addr", httpServer.Addr, "base_url", cfg.BaseURL, "env", cfg.Env)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Requests(s.logger))
	r.Use(s.metrics.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())
	r.Handle(uploadsPrefix+"/*", http.StripPrefix(uploadsPrefix+"/", http.FileServer(http.Dir(s.uploadDir))))

	r.Route("/api", func(r chi.Router) {
		r.Get("/config", s.handlePublicConfig)
		r.Get("/packages/{id}/quote", s.handlePackageQuote)
		r.Post("/quotes/custom", s.handleCustomQuote)
		r.Post("/leads", s.handleCreateLead)
	})

	r.Get("/quote/print", s.handleQuotePrint)
	r.Get("/quote/pdf", s.handleQuotePDF)

	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLoginSubmit)
	r.Post("/logout", s.handleLogout)

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.auth.requireAdmin)
		r.Get("/config", s.handleAdminConfig)
		r.Put("/config", s.handleAdminConfigUpdate)
		r.Get("/leads", s.handleAdminLeads)
		r.Get("/leads/{id}", s.handleAdminLead)
		r.Delete("/leads/{id}", s.handleAdminLeadDelete)
		r.Post("/gallery", s.handleAdminGalleryUpload)
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// siteConfig returns the stored configuration, or the built-in one when
// nothing usable is stored. Read-only paths only: never save its result.
func (s *server) siteConfig(ctx context.Context) *siteconfig.AppConfig {
	cfg, err := s.store.SiteConfig(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("falling back to built-in site config", "error", err)
		}
		return siteconfig.Default()
	}
	return cfg
}

// editableSiteConfig loads the stored configuration for a read-modify-write.
// Only a missing document falls back to the built-in one.
func (s *server) editableSiteConfig(ctx context.Context) (*siteconfig.AppConfig, error) {
	cfg, err := s.store.SiteConfig(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return siteconfig.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load site config: %w", err)
	}
	return cfg, nil
}

//go:embed templates/*.html
var templateFS embed.FS

var layoutTemplate = template.Must(template.ParseFS(templateFS, "templates/layout.html"))

func (s *server) renderTemplate(w http.ResponseWriter, status int, page string, data any) {
	t, err := layoutTemplate.Clone()
	if err == nil {
		_, err = t.ParseFS(templateFS, "templates/"+page)
	}
	if err != nil {
		http.Error(w, "failed to parse template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout.html", data); err != nil {
		s.logger.Error("failed to render template", "page", page, "error", err)
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
