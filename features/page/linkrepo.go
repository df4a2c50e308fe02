package page

import (
	"context"
	"database/sql"
)

type PostgresLinkRepo struct {
	db *sql.DB
}

func NewPostgresLinkRepo(db *sql.DB) *PostgresLinkRepo {
	return &PostgresLinkRepo{db: db}
}

// BulkCreate inserts links in extraction order inside one transaction.
// Duplicates are allowed; there is no uniqueness constraint on link URLs.
func (r *PostgresLinkRepo) BulkCreate(ctx context.Context, links []Link) error {
	if len(links) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO scraped_links (page_id, url, name) VALUES ($1, $2, $3)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range links {
		if _, err := stmt.ExecContext(ctx, l.PageID, l.URL, l.Name); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresLinkRepo) ListByPage(ctx context.Context, pageID string, limit, offset int) ([]Link, error) {
	query := `
		SELECT id, page_id, url, name, created_at, updated_at
		FROM scraped_links
		WHERE page_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, pageID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []Link
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.ID, &l.PageID, &l.URL, &l.Name, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *PostgresLinkRepo) CountByPage(ctx context.Context, pageID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM scraped_links WHERE page_id = $1`
	err := r.db.QueryRowContext(ctx, query, pageID).Scan(&count)
	return count, err
}

func (r *PostgresLinkRepo) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM scraped_links`
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}
