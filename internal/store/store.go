// Package store persists workflow run history.
package store

import (
	"context"

	"github.com/me/createtaxdb/pkg/model"
)

// Store defines the persistence layer for run records.
type Store interface {
	CreateRun(ctx context.Context, run *model.Run) error
	// GetRun returns nil, nil when no run has the given id.
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRuns(ctx context.Context, opts model.ListOptions) ([]*model.Run, int, error)
	UpdateRun(ctx context.Context, run *model.Run) error

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
