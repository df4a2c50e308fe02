package page_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkscraper/features/page"
)

func TestPostgresRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := page.NewPostgresRepo(db)

	t.Run("Success", func(t *testing.T) {
		p := &page.Page{UserID: "user-1", URL: "https://example.com", Title: "Example"}

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO scraped_pages (user_id, url, title) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at")).
			WithArgs(p.UserID, p.URL, p.Title).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("page-1", time.Now(), time.Now()))

		err := repo.Create(context.Background(), p)
		assert.NoError(t, err)
		assert.Equal(t, "page-1", p.ID)
	})

	t.Run("Duplicate", func(t *testing.T) {
		p := &page.Page{UserID: "user-1", URL: "https://example.com", Title: "Example"}

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO scraped_pages")).
			WithArgs(p.UserID, p.URL, p.Title).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(context.Background(), p)
		assert.ErrorIs(t, err, page.ErrDuplicatePage)
	})

	t.Run("Unknown user", func(t *testing.T) {
		p := &page.Page{UserID: "missing", URL: "https://example.com", Title: "Example"}

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO scraped_pages")).
			WithArgs(p.UserID, p.URL, p.Title).
			WillReturnError(&pq.Error{Code: "23503"})

		err := repo.Create(context.Background(), p)
		assert.ErrorIs(t, err, page.ErrUnknownUser)
	})
}

func TestPostgresRepo_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := page.NewPostgresRepo(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "url", "title", "created_at", "updated_at", "count"}).
		AddRow("page-1", "user-1", "https://example.com", "Example", time.Now(), time.Now(), 3)

	mock.ExpectQuery("SELECT p.id, p.user_id, p.url, p.title, p.created_at, p.updated_at, COUNT").
		WithArgs("page-1").
		WillReturnRows(rows)

	p, err := repo.GetByID(context.Background(), "page-1")
	require.NoError(t, err)
	assert.Equal(t, "page-1", p.ID)
	assert.Equal(t, 3, p.TotalLinks)
}

func TestPostgresRepo_GetByUserAndURL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := page.NewPostgresRepo(db)

	t.Run("Found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "user_id", "url", "title", "created_at", "updated_at"}).
			AddRow("page-1", "user-1", "https://example.com", "Example", time.Now(), time.Now())

		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, url, title, created_at, updated_at FROM scraped_pages WHERE user_id = $1 AND url = $2")).
			WithArgs("user-1", "https://example.com").
			WillReturnRows(rows)

		p, err := repo.GetByUserAndURL(context.Background(), "user-1", "https://example.com")
		require.NoError(t, err)
		assert.Equal(t, "page-1", p.ID)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, url, title, created_at, updated_at FROM scraped_pages WHERE user_id = $1 AND url = $2")).
			WithArgs("user-1", "https://gone.example.com").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByUserAndURL(context.Background(), "user-1", "https://gone.example.com")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestPostgresRepo_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := page.NewPostgresRepo(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "url", "title", "created_at", "updated_at", "total_links"}).
		AddRow("page-2", "user-1", "https://b.example.com", "B", time.Now(), time.Now(), 0).
		AddRow("page-1", "user-1", "https://a.example.com", "A", time.Now(), time.Now(), 5)

	mock.ExpectQuery("SELECT p.id, p.user_id, p.url, p.title, p.created_at, p.updated_at, COUNT").
		WithArgs("user-1", 5, 0).
		WillReturnRows(rows)

	pages, err := repo.ListByUser(context.Background(), "user-1", 5, 0)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 5, pages[1].TotalLinks)
}

func TestPostgresRepo_CountByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := page.NewPostgresRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM scraped_pages WHERE user_id = $1")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestPostgresRepo_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := page.NewPostgresRepo(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM scraped_pages WHERE id = $1")).
			WithArgs("page-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(context.Background(), "page-1")
		assert.NoError(t, err)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM scraped_pages WHERE id = $1")).
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), "missing")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestPostgresLinkRepo_BulkCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := page.NewPostgresLinkRepo(db)

	t.Run("Success", func(t *testing.T) {
		links := []page.Link{
			{PageID: "page-1", URL: "https://example.com/a", Name: "A"},
			{PageID: "page-1", URL: "https://example.com/b", Name: "B"},
		}

		mock.ExpectBegin()
		stmt := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO scraped_links"))
		stmt.ExpectExec().WithArgs("page-1", "https://example.com/a", "A").WillReturnResult(sqlmock.NewResult(0, 1))
		stmt.ExpectExec().WithArgs("page-1", "https://example.com/b", "B").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.BulkCreate(context.Background(), links)
		assert.NoError(t, err)
	})

	t.Run("Empty is a no-op", func(t *testing.T) {
		err := repo.BulkCreate(context.Background(), nil)
		assert.NoError(t, err)
	})
}

func TestPostgresLinkRepo_ListByPage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := page.NewPostgresLinkRepo(db)

	rows := sqlmock.NewRows([]string{"id", "page_id", "url", "name", "created_at", "updated_at"}).
		AddRow("link-1", "page-1", "https://example.com/a", "A", time.Now(), time.Now())

	mock.ExpectQuery("SELECT id, page_id, url, name, created_at, updated_at").
		WithArgs("page-1", 3, 9).
		WillReturnRows(rows)

	links, err := repo.ListByPage(context.Background(), "page-1", 3, 9)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "A", links[0].Name)
}

func TestPostgresLinkRepo_CountByPage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := page.NewPostgresLinkRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM scraped_links WHERE page_id = $1")).
		WithArgs("page-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))

	count, err := repo.CountByPage(context.Background(), "page-1")
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}
