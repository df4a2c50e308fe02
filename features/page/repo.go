package page

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// Postgres error codes surfaced as domain errors.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Create(ctx context.Context, p *Page) error {
	query := `INSERT INTO scraped_pages (user_id, url, title) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, p.UserID, p.URL, p.Title).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return ErrDuplicatePage
		case pqForeignKeyViolation:
			return ErrUnknownUser
		}
	}
	return err
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (*Page, error) {
	p := &Page{}
	query := `
		SELECT p.id, p.user_id, p.url, p.title, p.created_at, p.updated_at, COUNT(l.id)
		FROM scraped_pages p
		LEFT JOIN scraped_links l ON l.page_id = p.id
		WHERE p.id = $1
		GROUP BY p.id
	`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.UserID, &p.URL, &p.Title, &p.CreatedAt, &p.UpdatedAt, &p.TotalLinks)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepo) GetByUserAndURL(ctx context.Context, userID, url string) (*Page, error) {
	p := &Page{}
	query := `SELECT id, user_id, url, title, created_at, updated_at FROM scraped_pages WHERE user_id = $1 AND url = $2`
	err := r.db.QueryRowContext(ctx, query, userID, url).Scan(&p.ID, &p.UserID, &p.URL, &p.Title, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Page, error) {
	query := `
		SELECT p.id, p.user_id, p.url, p.title, p.created_at, p.updated_at, COUNT(l.id) AS total_links
		FROM scraped_pages p
		LEFT JOIN scraped_links l ON l.page_id = p.id
		WHERE p.user_id = $1
		GROUP BY p.id
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		var p Page
		if err := rows.Scan(&p.ID, &p.UserID, &p.URL, &p.Title, &p.CreatedAt, &p.UpdatedAt, &p.TotalLinks); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (r *PostgresRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM scraped_pages WHERE user_id = $1`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&count)
	return count, err
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM scraped_pages WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM scraped_pages`
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}
