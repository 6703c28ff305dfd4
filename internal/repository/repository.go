package repository

import (
	"context"

	"webofworlds/internal/domain"
)

// Repository defines the interface for catalog and run persistence
type Repository interface {
	// Star catalog
	ImportStars(ctx context.Context, stars []*domain.Star) (int, error)
	ListStars(ctx context.Context) ([]*domain.Star, error)
	CountStars(ctx context.Context) (int, error)

	// Runs. Getters return nil, nil when the run does not exist.
	CreateRun(ctx context.Context, fragment *domain.Fragment) error
	GetRun(ctx context.Context, id string) (*domain.Run, error)
	ListRuns(ctx context.Context) ([]domain.Run, error)
	GetRunFragment(ctx context.Context, id string) (*domain.Fragment, error)
	GetRunGraph(ctx context.Context, id string) (*domain.Graph, error)
	DeleteRun(ctx context.Context, id string) error

	// Close releases resources
	Close() error
}
