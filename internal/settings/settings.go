package settings

import (
	"context"
)

// Settings is the single-row scraper configuration editable at runtime.
type Settings struct {
	ID           int    `json:"-"`
	UserAgent    string `json:"user_agent"`
	ItemsPerPage int    `json:"items_per_page"`
}

type Repository interface {
	Get(ctx context.Context) (*Settings, error)
	Update(ctx context.Context, s *Settings) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context) (*Settings, error) {
	return s.repo.Get(ctx)
}

func (s *Service) Update(ctx context.Context, set *Settings) error {
	return s.repo.Update(ctx, set)
}
