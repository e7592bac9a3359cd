package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/reorder/internal/domain"
	"github.com/andresuchdata/reorder/internal/export"
	"github.com/andresuchdata/reorder/internal/replan"
)

func runExport(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	ctx := context.Background()

	var skus []string
	if sku := c.String("sku"); sku != "" {
		skus = []string{sku}
	} else {
		skus, err = listScheduledSKUs(ctx, db)
		if err != nil {
			return err
		}
	}
	if len(skus) == 0 {
		return fmt.Errorf("no stored schedules to export")
	}

	outDir := c.String("output")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, sku := range skus {
		events, err := loadLatestEvents(ctx, db, sku)
		if err != nil {
			return err
		}

		overlay, err := loadCompletions(ctx, db, sku)
		if err != nil {
			return err
		}
		events = overlay.Apply(events)

		path := filepath.Join(outDir, fmt.Sprintf("schedule_%s.csv", sku))
		if err := export.WriteScheduleFile(path, events); err != nil {
			return fmt.Errorf("failed to write schedule for %s: %w", sku, err)
		}
		log.Printf("Wrote %s (%d events)", path, len(events))
	}

	log.Printf("Exported %d schedules", len(skus))
	return nil
}

func listScheduledSKUs(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT DISTINCT sku FROM schedule_runs ORDER BY sku`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled skus: %w", err)
	}
	defer rows.Close()

	var skus []string
	for rows.Next() {
		var sku string
		if err := rows.Scan(&sku); err != nil {
			return nil, fmt.Errorf("failed to scan sku: %w", err)
		}
		skus = append(skus, sku)
	}
	return skus, rows.Err()
}

func loadLatestEvents(ctx context.Context, db *sql.DB, sku string) ([]domain.ScheduleEvent, error) {
	var runID string
	err := db.QueryRowContext(ctx, `
		SELECT id FROM schedule_runs
		WHERE sku = $1
		ORDER BY generated_at DESC
		LIMIT 1
	`, sku).Scan(&runID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no stored schedule for sku %s", sku)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule run for %s: %w", sku, err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT product_title, variant_title, variant_sku,
		       event, order_date, arrival_date, quantity
		FROM schedule_events
		WHERE run_id = $1
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.ScheduleEvent, 0)
	for rows.Next() {
		var ev domain.ScheduleEvent
		var kind string
		var orderDate sql.NullTime
		if err := rows.Scan(
			&ev.ProductTitle,
			&ev.VariantTitle,
			&ev.VariantSKU,
			&kind,
			&orderDate,
			&ev.ArrivalDate,
			&ev.Quantity,
		); err != nil {
			return nil, fmt.Errorf("failed to scan schedule event: %w", err)
		}
		ev.Kind = domain.EventKind(kind)
		if orderDate.Valid {
			ev.OrderDate = orderDate.Time
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func loadCompletions(ctx context.Context, db *sql.DB, sku string) (*replan.CompletionOverlay, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT arrival_date, event, completed
		FROM completions
		WHERE sku = $1
	`, sku)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completions for %s: %w", sku, err)
	}
	defer rows.Close()

	overlay := replan.NewCompletionOverlay()
	for rows.Next() {
		var key domain.CompletionKey
		var kind string
		var completed bool
		if err := rows.Scan(&key.ArrivalDate, &kind, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		key.SKU = sku
		key.Kind = domain.EventKind(kind)
		overlay.Set(key, completed)
	}
	return overlay, rows.Err()
}
