// internal/repository/schedule_repository.go
package repository

import (
	"context"
	"errors"

	"github.com/andresuchdata/reorder/internal/domain"
)

// ErrNotFound is returned when a requested item or schedule does not exist.
var ErrNotFound = errors.New("not found")

// ScheduleRepository is the collaborator-owned store mapping item
// identifiers to their ingested demand data, latest schedule run, and
// per-event completion flags. The simulation itself stays stateless
// between calls; everything durable lives here.
type ScheduleRepository interface {
	UpsertItems(ctx context.Context, items []domain.Item) error
	GetItems(ctx context.Context) ([]domain.Item, error)
	GetItem(ctx context.Context, sku string) (*domain.Item, error)

	SaveScheduleRun(ctx context.Context, run *domain.ScheduleRun) error
	GetLatestRun(ctx context.Context, sku string) (*domain.ScheduleRun, error)

	SetCompletion(ctx context.Context, key domain.CompletionKey, completed bool) error
	GetCompletions(ctx context.Context, sku string) (map[domain.CompletionKey]bool, error)
}
