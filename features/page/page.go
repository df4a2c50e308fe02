package page

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"linkscraper/features/user"
	"linkscraper/internal/config"
	"linkscraper/internal/middleware"
	"linkscraper/internal/pagination"
	"linkscraper/internal/scrape"
	"linkscraper/internal/settings"
	"linkscraper/internal/worker"
)

const maxURLLen = 2000

var (
	ErrInvalidURL    = errors.New("invalid url")
	ErrDuplicatePage = errors.New("page already scraped for this user")
	ErrUnknownUser   = errors.New("unknown user")
)

// Page is a user-owned record of one scraped URL. The title is captured
// synchronously at creation time; links arrive later through the
// populate worker, so TotalLinks may read zero for a while.
type Page struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	TotalLinks int       `json:"total_links"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Link is one hyperlink discovered on a page. Link URLs are not unique
// within a page; the same target may appear twice with different anchor
// text.
type Link struct {
	ID        string    `json:"id"`
	PageID    string    `json:"page_id"`
	URL       string    `json:"url"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Repository interface {
	// Create surfaces ErrDuplicatePage on a (user_id, url) uniqueness
	// violation and ErrUnknownUser when the owner reference is broken.
	Create(ctx context.Context, p *Page) error
	GetByID(ctx context.Context, id string) (*Page, error)
	GetByUserAndURL(ctx context.Context, userID, url string) (*Page, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Page, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type LinkRepository interface {
	BulkCreate(ctx context.Context, links []Link) error
	ListByPage(ctx context.Context, pageID string, limit, offset int) ([]Link, error)
	CountByPage(ctx context.Context, pageID string) (int, error)
	Count(ctx context.Context) (int, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

type SettingsService interface {
	Get(ctx context.Context) (*settings.Settings, error)
}

type Service struct {
	repo     Repository
	links    LinkRepository
	users    user.Repository
	fetcher  Fetcher
	pub      EventPublisher
	settings SettingsService

	defaultPageSize int
}

func NewService(repo Repository, links LinkRepository, users user.Repository, fetcher Fetcher, pub EventPublisher, set SettingsService, defaultPageSize int) *Service {
	if defaultPageSize < 1 {
		defaultPageSize = 5
	}
	return &Service{
		repo:            repo,
		links:           links,
		users:           users,
		fetcher:         fetcher,
		pub:             pub,
		settings:        set,
		defaultPageSize: defaultPageSize,
	}
}

// Create is the synchronous half of the pipeline: validate, fetch the
// title inline, persist the page, then hand link extraction to the
// queue. The returned page is visible immediately with zero links.
func (s *Service) Create(ctx context.Context, rawURL, userID string) (*Page, error) {
	if !scrape.IsValidURL(rawURL) || len(rawURL) > maxURLLen {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	html, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	title := scrape.ExtractTitle(html)

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	p := &Page{UserID: userID, URL: rawURL, Title: title}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	// The job carries only the lookup pair, not the row: the consumer
	// runs later and re-resolves the page itself.
	payload, _ := json.Marshal(worker.PopulatePayload{
		URL:           rawURL,
		UserID:        userID,
		CorrelationID: middleware.GetCorrelationID(ctx),
	})
	if err := s.pub.Publish(config.TopicPopulate, payload); err != nil {
		slog.ErrorContext(ctx, "failed to publish populate job", "error", err, "url", rawURL)
	} else {
		slog.InfoContext(ctx, "published populate job", "url", rawURL, "page_id", p.ID)
	}

	return p, nil
}

// List returns one window of the user's pages, newest first, each
// annotated with its link count. Users with no pages get an empty page,
// never an error.
func (s *Service) List(ctx context.Context, userID string, number, size int) (pagination.Page[Page], error) {
	size = s.pageSize(ctx, size)

	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return pagination.Empty[Page](size), err
	}

	number = pagination.Clamp(number, pagination.TotalPages(total, size))
	items, err := s.repo.ListByUser(ctx, userID, size, pagination.Offset(number, size))
	if err != nil {
		return pagination.Empty[Page](size), err
	}

	return pagination.New(items, number, size, total), nil
}

// Links returns one window of a page's links together with the owning
// page. A missing page yields an empty window and a nil page, not an
// error; callers treat that as not-found.
func (s *Service) Links(ctx context.Context, pageID string, number, size int) (pagination.Page[Link], *Page, error) {
	size = s.pageSize(ctx, size)

	p, err := s.repo.GetByID(ctx, pageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pagination.Empty[Link](size), nil, nil
		}
		return pagination.Empty[Link](size), nil, err
	}

	total, err := s.links.CountByPage(ctx, pageID)
	if err != nil {
		return pagination.Empty[Link](size), p, err
	}

	number = pagination.Clamp(number, pagination.TotalPages(total, size))
	items, err := s.links.ListByPage(ctx, pageID, size, pagination.Offset(number, size))
	if err != nil {
		return pagination.Empty[Link](size), p, err
	}

	return pagination.New(items, number, size, total), p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Page, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) LinkCount(ctx context.Context, pageID string) (int, error) {
	return s.links.CountByPage(ctx, pageID)
}

// Delete removes the page; links go with it via the cascade constraint.
// An in-flight populate job for this page becomes a no-op.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) pageSize(ctx context.Context, size int) int {
	if size > 0 {
		return size
	}
	if s.settings != nil {
		if set, err := s.settings.Get(ctx); err == nil && set != nil && set.ItemsPerPage > 0 {
			return set.ItemsPerPage
		}
	}
	return s.defaultPageSize
}
