package user

import (
	"context"
	"time"
)

// User is the identity record pages are owned by. Registration and
// authentication live outside this service; the scraper only ever
// resolves ids it is handed.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Repository interface {
	// GetByID returns sql.ErrNoRows when the id does not resolve.
	GetByID(ctx context.Context, id string) (*User, error)
	Save(ctx context.Context, u *User) error
}
