package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nsqio/go-nsq"

	"linkscraper/features/job"
	"linkscraper/features/user"
	"linkscraper/internal/middleware"
	"linkscraper/internal/scrape"
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type PageResolver interface {
	// ResolvePageID returns sql.ErrNoRows when no page exists for the pair.
	ResolvePageID(ctx context.Context, userID, url string) (string, error)
}

type LinkWriter interface {
	BulkCreate(ctx context.Context, links []LinkDTO) error
}

// Populator is the asynchronous half of the ingestion pipeline. It
// consumes populate jobs, re-fetches the page (only the URL and user id
// cross the queue), extracts links and persists them against the
// already-created page row.
type Populator struct {
	fetcher Fetcher
	users   user.Repository
	pages   PageResolver
	links   LinkWriter
	jobs    job.Repository
}

func NewPopulator(fetcher Fetcher, users user.Repository, pages PageResolver, links LinkWriter, jobs job.Repository) *Populator {
	return &Populator{
		fetcher: fetcher,
		users:   users,
		pages:   pages,
		links:   links,
		jobs:    jobs,
	}
}

func (p *Populator) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var payload PopulatePayload
	err := json.Unmarshal(m.Body, &payload)

	correlationID := payload.CorrelationID
	if correlationID == "" {
		correlationID = uuid.New().String()
	}

	ctx := middleware.WithCorrelationID(context.Background(), correlationID)

	if err != nil {
		slog.ErrorContext(ctx, "invalid message format", "error", err)
		return nil // Don't retry invalid messages
	}

	if payload.URL == "" || payload.UserID == "" {
		slog.ErrorContext(ctx, "missing required fields, dropping", "url", payload.URL, "user_id", payload.UserID)
		return nil
	}

	slog.InfoContext(ctx, "populating links", "url", payload.URL, "user_id", payload.UserID)

	// Fetch and extract failures terminate the job; the page stays
	// visible with zero links and the payload lands in failed_jobs for a
	// manual retry.
	html, err := p.fetcher.Fetch(ctx, payload.URL)
	if err != nil {
		slog.ErrorContext(ctx, "fetch failed", "url", payload.URL, "error", err)
		p.recordFailure(ctx, &payload, m.Body, err)
		return nil
	}

	extracted, err := scrape.ExtractLinks(payload.URL, html)
	if err != nil {
		slog.ErrorContext(ctx, "link extraction failed", "url", payload.URL, "error", err)
		p.recordFailure(ctx, &payload, m.Body, err)
		return nil
	}

	if _, err := p.users.GetByID(ctx, payload.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.ErrorContext(ctx, "owner no longer exists", "user_id", payload.UserID)
			p.recordFailure(ctx, &payload, m.Body, err)
			return nil
		}
		return err
	}

	pageID, err := p.pages.ResolvePageID(ctx, payload.UserID, payload.URL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Page deleted before the job ran; links must not be created
			// against a missing page.
			slog.InfoContext(ctx, "page gone, skipping link population", "url", payload.URL, "user_id", payload.UserID)
			return nil
		}
		return err
	}

	if len(extracted) == 0 {
		slog.InfoContext(ctx, "no links found", "url", payload.URL)
		return nil
	}

	links := make([]LinkDTO, 0, len(extracted))
	for _, l := range extracted {
		links = append(links, LinkDTO{PageID: pageID, URL: l.URL, Name: l.Name})
	}

	// Redelivered jobs re-insert links since no idempotency key exists on
	// scraped_links; transient insert failures are returned so NSQ
	// redelivers.
	if err := p.links.BulkCreate(ctx, links); err != nil {
		slog.ErrorContext(ctx, "failed to persist links", "url", payload.URL, "error", err)
		return err
	}

	slog.InfoContext(ctx, "links populated", "url", payload.URL, "count", len(links))
	return nil
}

func (p *Populator) recordFailure(ctx context.Context, payload *PopulatePayload, body []byte, cause error) {
	failed := &job.Job{
		URL:     payload.URL,
		UserID:  payload.UserID,
		Handler: "link-populator",
		Payload: json.RawMessage(body),
		Error:   cause.Error(),
	}
	if err := p.jobs.Save(ctx, failed); err != nil {
		slog.ErrorContext(ctx, "failed to save failed job", "error", err)
		return
	}
	slog.InfoContext(ctx, "saved failed job for retry", "job_id", failed.ID)
}
