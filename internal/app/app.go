package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"linkscraper/features/job"
	"linkscraper/features/page"
	"linkscraper/features/stats"
	"linkscraper/features/user"
	"linkscraper/internal/config"
	"linkscraper/internal/middleware"
	"linkscraper/internal/scrape"
	"linkscraper/internal/settings"
	"linkscraper/internal/worker"
)

type Publisher interface {
	Publish(topic string, body []byte) error
}

type App struct {
	Handler     http.Handler
	PageService *page.Service
	Populator   *worker.Populator

	addr string
}

func New(cfg *config.Config, db *sql.DB, pub Publisher) (*App, error) {
	// Feature: Settings
	settingsRepo := settings.NewPostgresRepo(db)
	settingsService := settings.NewService(settingsRepo)
	settingsHandler := settings.NewHandler(settingsService)

	// Fetch client: user agent follows the settings row so it can be
	// changed without a restart.
	fetcher := scrape.NewClient(func(ctx context.Context) string {
		set, err := settingsService.Get(ctx)
		if err != nil || set == nil {
			return ""
		}
		return set.UserAgent
	})

	// Feature: User (identity collaborator)
	userRepo := user.NewPostgresRepo(db)

	// Feature: Page
	pageRepo := page.NewPostgresRepo(db)
	linkRepo := page.NewPostgresLinkRepo(db)
	pageService := page.NewService(pageRepo, linkRepo, userRepo, fetcher, pub, settingsService, cfg.ItemsPerPage)
	pageHandler := page.NewHandler(pageService)

	// Feature: Job
	jobRepo := job.NewPostgresRepo(db)
	jobService := job.NewService(jobRepo, pub)
	jobHandler := job.NewHandler(jobService)

	// Feature: Stats
	statsHandler := stats.NewHandler(pageRepo, linkRepo, jobRepo)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /pages", middleware.CorrelationID(enableCORS(pageHandler.Create)))
	mux.Handle("GET /pages", middleware.CorrelationID(enableCORS(pageHandler.List)))
	mux.Handle("GET /pages/{id}", middleware.CorrelationID(enableCORS(pageHandler.Get)))
	mux.Handle("GET /pages/{id}/links", middleware.CorrelationID(enableCORS(pageHandler.Links)))
	mux.Handle("GET /pages/{id}/link-count", middleware.CorrelationID(enableCORS(pageHandler.LinkCount)))
	mux.Handle("DELETE /pages/{id}", middleware.CorrelationID(enableCORS(pageHandler.Delete)))

	mux.Handle("GET /settings", middleware.CorrelationID(enableCORS(settingsHandler.GetSettings)))
	mux.Handle("PUT /settings", middleware.CorrelationID(enableCORS(settingsHandler.UpdateSettings)))

	mux.Handle("GET /jobs/failed", middleware.CorrelationID(enableCORS(jobHandler.List)))
	mux.Handle("POST /jobs/{id}/retry", middleware.CorrelationID(enableCORS(jobHandler.Retry)))
	mux.Handle("DELETE /jobs/{id}", middleware.CorrelationID(enableCORS(jobHandler.Delete)))

	mux.Handle("GET /stats", middleware.CorrelationID(enableCORS(statsHandler.GetStats)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Worker (Populator) Setup
	populator := worker.NewPopulator(
		fetcher,
		userRepo,
		&pageResolverAdapter{repo: pageRepo},
		&linkWriterAdapter{repo: linkRepo},
		jobRepo,
	)

	return &App{
		Handler:     mux,
		PageService: pageService,
		Populator:   populator,
		addr:        fmt.Sprintf(":%d", cfg.ServerPort),
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    a.addr,
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "addr", a.addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Adapters between the worker's DTOs and the page feature's entities;
// the worker cannot import features/page without a cycle.

type pageResolverAdapter struct {
	repo page.Repository
}

func (a *pageResolverAdapter) ResolvePageID(ctx context.Context, userID, url string) (string, error) {
	p, err := a.repo.GetByUserAndURL(ctx, userID, url)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

type linkWriterAdapter struct {
	repo page.LinkRepository
}

func (a *linkWriterAdapter) BulkCreate(ctx context.Context, links []worker.LinkDTO) error {
	pageLinks := make([]page.Link, 0, len(links))
	for _, l := range links {
		pageLinks = append(pageLinks, page.Link{PageID: l.PageID, URL: l.URL, Name: l.Name})
	}
	return a.repo.BulkCreate(ctx, pageLinks)
}
