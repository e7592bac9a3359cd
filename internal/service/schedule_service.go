package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/reorder/internal/cache"
	"github.com/andresuchdata/reorder/internal/config"
	"github.com/andresuchdata/reorder/internal/domain"
	"github.com/andresuchdata/reorder/internal/export"
	"github.com/andresuchdata/reorder/internal/ingest"
	"github.com/andresuchdata/reorder/internal/replan"
	"github.com/andresuchdata/reorder/internal/repository"
	"github.com/andresuchdata/reorder/internal/storage"
)

// maxConcurrentRuns bounds the fan-out when regenerating schedules for a
// whole catalog at once.
const maxConcurrentRuns = 8

// ScheduleService ties simulation, persistence, caching and export
// together. The simulation itself is pure; this layer owns everything
// that happens around a run.
type ScheduleService struct {
	repo      repository.ScheduleRepository
	cache     cache.ScheduleCache
	store     storage.ObjectStorage
	planner   config.PlannerConfig
	exportDir string
}

// NewScheduleService builds the service. store may be nil when object
// storage is disabled; exports then stay on local disk only.
func NewScheduleService(repo repository.ScheduleRepository, c cache.ScheduleCache, store storage.ObjectStorage, cfg *config.Config) *ScheduleService {
	return &ScheduleService{
		repo:      repo,
		cache:     c,
		store:     store,
		planner:   cfg.Planner,
		exportDir: cfg.App.ExportDir,
	}
}

// GenerateOptions overrides the configured planner defaults for a single
// run. Nil fields fall back to the defaults.
type GenerateOptions struct {
	LeadTimeDays     *int       `json:"lead_time_days,omitempty"`
	ShippingTimeDays *int       `json:"shipping_time_days,omitempty"`
	SafetyStockDays  *int       `json:"safety_stock_days,omitempty"`
	StartDate        *time.Time `json:"start_date,omitempty"`
	InTransitQty     *float64   `json:"in_transit_quantity,omitempty"`
	InTransitArrival *time.Time `json:"in_transit_arrival_date,omitempty"`
}

// InputsForItem expands an ingested item into full simulation inputs,
// applying planner defaults and any per-run overrides.
func (s *ScheduleService) InputsForItem(item *domain.Item, opts *GenerateOptions) domain.ReplenishmentInputs {
	inputs := domain.ReplenishmentInputs{
		ProductTitle:      item.ProductTitle,
		VariantTitle:      item.VariantTitle,
		VariantSKU:        item.VariantSKU,
		DailyDemand:       item.QtySoldPerDay,
		LeadTimeDays:      s.planner.LeadTimeDays,
		ShippingTimeDays:  s.planner.ShippingTimeDays,
		SafetyStockDays:   s.planner.SafetyStockDays,
		StartingInventory: item.EndingQty,
		StartDate:         time.Now().UTC(),
	}

	if opts == nil {
		return inputs
	}
	if opts.LeadTimeDays != nil {
		inputs.LeadTimeDays = *opts.LeadTimeDays
	}
	if opts.ShippingTimeDays != nil {
		inputs.ShippingTimeDays = *opts.ShippingTimeDays
	}
	if opts.SafetyStockDays != nil {
		inputs.SafetyStockDays = *opts.SafetyStockDays
	}
	if opts.StartDate != nil {
		inputs.StartDate = *opts.StartDate
	}
	if opts.InTransitQty != nil {
		inputs.InTransitQty = *opts.InTransitQty
	}
	if opts.InTransitArrival != nil {
		inputs.InTransitArrival = *opts.InTransitArrival
	}
	return inputs
}

// GenerateForSKU runs a fresh simulation for one item, persists the run,
// refreshes the cache and writes the CSV export. The returned run has
// any previously recorded completion flags applied.
func (s *ScheduleService) GenerateForSKU(ctx context.Context, sku string, opts *GenerateOptions) (*domain.ScheduleRun, error) {
	item, err := s.repo.GetItem(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("failed to load item %s: %w", sku, err)
	}

	inputs := s.InputsForItem(item, opts)
	return s.generate(ctx, inputs)
}

// GenerateFromInputs runs a simulation for inputs supplied directly,
// bypassing the item repository. Used for what-if runs from the API.
func (s *ScheduleService) GenerateFromInputs(ctx context.Context, inputs domain.ReplenishmentInputs) (*domain.ScheduleRun, error) {
	return s.generate(ctx, inputs)
}

func (s *ScheduleService) generate(ctx context.Context, inputs domain.ReplenishmentInputs) (*domain.ScheduleRun, error) {
	events, err := replan.Simulate(inputs)
	if err != nil {
		return nil, fmt.Errorf("simulation failed for %s: %w", inputs.VariantSKU, err)
	}

	// Identity is assigned here so every repository implementation stores
	// the same run the caller gets back.
	run := &domain.ScheduleRun{
		ID:          uuid.NewString(),
		SKU:         inputs.VariantSKU,
		Inputs:      inputs,
		Events:      events,
		GeneratedAt: time.Now().UTC(),
	}

	if err := s.repo.SaveScheduleRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to save schedule run: %w", err)
	}

	applied, err := s.applyCompletions(ctx, inputs.VariantSKU, events)
	if err != nil {
		return nil, err
	}
	run.Events = applied

	if err := s.cache.Set(ctx, run.SKU, run.Events); err != nil {
		log.Warn().Err(err).Str("sku", run.SKU).Msg("failed to cache schedule")
	}

	if err := s.exportRun(ctx, run); err != nil {
		log.Error().Err(err).Str("sku", run.SKU).Msg("failed to export schedule")
	}

	log.Info().
		Str("sku", run.SKU).
		Int("events", len(run.Events)).
		Msg("schedule generated")

	return run, nil
}

// GenerateAll regenerates schedules for every known item concurrently.
func (s *ScheduleService) GenerateAll(ctx context.Context, opts *GenerateOptions) ([]*domain.ScheduleRun, error) {
	items, err := s.repo.GetItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	runs := make([]*domain.ScheduleRun, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRuns)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			run, err := s.generate(ctx, s.InputsForItem(&item, opts))
			if err != nil {
				return err
			}
			runs[i] = run
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return runs, nil
}

// GetSchedule returns the latest schedule for an item with completion
// flags applied, serving from cache when possible.
func (s *ScheduleService) GetSchedule(ctx context.Context, sku string) ([]domain.ScheduleEvent, error) {
	if events, ok, err := s.cache.Get(ctx, sku); err == nil && ok {
		return events, nil
	} else if err != nil {
		log.Warn().Err(err).Str("sku", sku).Msg("schedule cache read failed")
	}

	run, err := s.repo.GetLatestRun(ctx, sku)
	if err != nil {
		return nil, err
	}

	applied, err := s.applyCompletions(ctx, sku, run.Events)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, sku, applied); err != nil {
		log.Warn().Err(err).Str("sku", sku).Msg("failed to cache schedule")
	}

	return applied, nil
}

// SetCompletion records whether an order arrived, keyed so the flag
// survives schedule regeneration.
func (s *ScheduleService) SetCompletion(ctx context.Context, key domain.CompletionKey, completed bool) error {
	if err := s.repo.SetCompletion(ctx, key, completed); err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}

	if err := s.cache.Invalidate(ctx, key.SKU); err != nil {
		log.Warn().Err(err).Str("sku", key.SKU).Msg("failed to invalidate schedule cache")
	}

	return nil
}

// ListItems returns every item available for scheduling.
func (s *ScheduleService) ListItems(ctx context.Context) ([]domain.Item, error) {
	return s.repo.GetItems(ctx)
}

// IngestDemand parses a demand report and stores its items. Cached
// schedules for the affected SKUs are dropped since their velocities
// may have changed.
func (s *ScheduleService) IngestDemand(ctx context.Context, r io.Reader) ([]domain.Item, error) {
	items, err := ingest.ReadDemandReport(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse demand report: %w", err)
	}

	if err := s.repo.UpsertItems(ctx, items); err != nil {
		return nil, fmt.Errorf("failed to store items: %w", err)
	}

	for _, item := range items {
		if err := s.cache.Invalidate(ctx, item.VariantSKU); err != nil {
			log.Warn().Err(err).Str("sku", item.VariantSKU).Msg("failed to invalidate schedule cache")
		}
	}

	return items, nil
}

func (s *ScheduleService) applyCompletions(ctx context.Context, sku string, events []domain.ScheduleEvent) ([]domain.ScheduleEvent, error) {
	completions, err := s.repo.GetCompletions(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("failed to load completions: %w", err)
	}

	overlay := replan.NewCompletionOverlay()
	for key, done := range completions {
		overlay.Set(key, done)
	}

	return overlay.Apply(events), nil
}

func (s *ScheduleService) exportRun(ctx context.Context, run *domain.ScheduleRun) error {
	filename := fmt.Sprintf("schedule_%s.csv", sanitizeSKU(run.SKU))
	path := filepath.Join(s.exportDir, filename)

	if err := export.WriteScheduleFile(path, run.Events); err != nil {
		return err
	}

	if s.store == nil {
		return nil
	}

	var buf strings.Builder
	if err := export.WriteSchedule(&buf, run.Events); err != nil {
		return err
	}

	key := fmt.Sprintf("schedules/%s", filename)
	if err := s.store.UploadObject(ctx, key, []byte(buf.String())); err != nil {
		return fmt.Errorf("failed to upload schedule export: %w", err)
	}

	return nil
}

func sanitizeSKU(sku string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, sku)
}
