package user

import (
	"context"
	"database/sql"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (*User, error) {
	u := &User{}
	query := `SELECT id, email, created_at, updated_at FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *PostgresRepo) Save(ctx context.Context, u *User) error {
	query := `INSERT INTO users (email) VALUES ($1) RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query, u.Email).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}
