// internal/repository/postgres/schedule_repository.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/andresuchdata/reorder/internal/domain"
	"github.com/andresuchdata/reorder/internal/repository"
	"github.com/google/uuid"
)

type scheduleRepository struct {
	db *DB
}

func NewScheduleRepository(db *DB) repository.ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) UpsertItems(ctx context.Context, items []domain.Item) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO items (
				variant_sku, product_title, variant_title,
				ending_quantity, quantity_sold_per_day, updated_at
			) VALUES ($1, $2, $3, $4, $5, NOW())
			ON CONFLICT (variant_sku)
			DO UPDATE SET
				product_title = EXCLUDED.product_title,
				variant_title = EXCLUDED.variant_title,
				ending_quantity = EXCLUDED.ending_quantity,
				quantity_sold_per_day = EXCLUDED.quantity_sold_per_day,
				updated_at = NOW()
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, item := range items {
			if _, err := stmt.ExecContext(ctx,
				item.VariantSKU,
				item.ProductTitle,
				item.VariantTitle,
				item.EndingQty,
				item.QtySoldPerDay,
			); err != nil {
				return fmt.Errorf("failed to upsert item %s: %w", item.VariantSKU, err)
			}
		}

		return nil
	})
}

func (r *scheduleRepository) GetItems(ctx context.Context) ([]domain.Item, error) {
	query := `
		SELECT variant_sku, product_title, variant_title,
		       ending_quantity, quantity_sold_per_day
		FROM items
		ORDER BY product_title, variant_title
	`

	var items []domain.Item
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}
	return items, nil
}

func (r *scheduleRepository) GetItem(ctx context.Context, sku string) (*domain.Item, error) {
	query := `
		SELECT variant_sku, product_title, variant_title,
		       ending_quantity, quantity_sold_per_day
		FROM items
		WHERE variant_sku = $1
	`

	var item domain.Item
	err := r.db.GetContext(ctx, &item, query, sku)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch item %s: %w", sku, err)
	}
	return &item, nil
}

func (r *scheduleRepository) SaveScheduleRun(ctx context.Context, run *domain.ScheduleRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.GeneratedAt.IsZero() {
		run.GeneratedAt = time.Now().UTC()
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO schedule_runs (
				id, sku, daily_demand, lead_time_days, shipping_time_days,
				safety_stock_days, starting_inventory, start_date,
				in_transit_quantity, in_transit_arrival_date, generated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`,
			run.ID,
			run.SKU,
			run.Inputs.DailyDemand,
			run.Inputs.LeadTimeDays,
			run.Inputs.ShippingTimeDays,
			run.Inputs.SafetyStockDays,
			run.Inputs.StartingInventory,
			run.Inputs.StartDate,
			run.Inputs.InTransitQty,
			toNullTime(run.Inputs.InTransitArrival),
			run.GeneratedAt,
		); err != nil {
			return fmt.Errorf("failed to insert schedule run: %w", err)
		}

		query := `
			INSERT INTO schedule_events (
				run_id, product_title, variant_title, variant_sku,
				event, order_date, arrival_date, quantity, position
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for i, ev := range run.Events {
			if _, err := stmt.ExecContext(ctx,
				run.ID,
				ev.ProductTitle,
				ev.VariantTitle,
				ev.VariantSKU,
				string(ev.Kind),
				toNullTime(ev.OrderDate),
				ev.ArrivalDate,
				ev.Quantity,
				i,
			); err != nil {
				return fmt.Errorf("failed to insert schedule event: %w", err)
			}
		}

		return nil
	})
}

func (r *scheduleRepository) GetLatestRun(ctx context.Context, sku string) (*domain.ScheduleRun, error) {
	run := &domain.ScheduleRun{SKU: sku}

	var inTransitArrival sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT id, daily_demand, lead_time_days, shipping_time_days,
		       safety_stock_days, starting_inventory, start_date,
		       in_transit_quantity, in_transit_arrival_date, generated_at
		FROM schedule_runs
		WHERE sku = $1
		ORDER BY generated_at DESC
		LIMIT 1
	`, sku).Scan(
		&run.ID,
		&run.Inputs.DailyDemand,
		&run.Inputs.LeadTimeDays,
		&run.Inputs.ShippingTimeDays,
		&run.Inputs.SafetyStockDays,
		&run.Inputs.StartingInventory,
		&run.Inputs.StartDate,
		&run.Inputs.InTransitQty,
		&inTransitArrival,
		&run.GeneratedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule run for %s: %w", sku, err)
	}
	run.Inputs.VariantSKU = sku
	if inTransitArrival.Valid {
		run.Inputs.InTransitArrival = inTransitArrival.Time
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_title, variant_title, variant_sku,
		       event, order_date, arrival_date, quantity
		FROM schedule_events
		WHERE run_id = $1
		ORDER BY position
	`, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule events: %w", err)
	}
	defer rows.Close()

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
		run.Events = append(run.Events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read schedule events: %w", err)
	}

	run.Inputs.ProductTitle, run.Inputs.VariantTitle = eventIdentity(run.Events)

	return run, nil
}

func (r *scheduleRepository) SetCompletion(ctx context.Context, key domain.CompletionKey, completed bool) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO completions (sku, arrival_date, event, completed, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (sku, arrival_date, event)
		DO UPDATE SET completed = EXCLUDED.completed, updated_at = NOW()
	`, key.SKU, key.ArrivalDate, string(key.Kind), completed)
	if err != nil {
		return fmt.Errorf("failed to set completion for %s: %w", key.SKU, err)
	}
	return nil
}

func (r *scheduleRepository) GetCompletions(ctx context.Context, sku string) (map[domain.CompletionKey]bool, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT arrival_date, event, completed
		FROM completions
		WHERE sku = $1
	`, sku)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completions for %s: %w", sku, err)
	}
	defer rows.Close()

	completions := make(map[domain.CompletionKey]bool)
	for rows.Next() {
		var arrivalDate time.Time
		var kind string
		var completed bool
		if err := rows.Scan(&arrivalDate, &kind, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		completions[domain.CompletionKey{
			SKU:         sku,
			ArrivalDate: arrivalDate,
			Kind:        domain.EventKind(kind),
		}] = completed
	}
	return completions, rows.Err()
}

// eventIdentity pulls the product identity off the first event, if any.
func eventIdentity(events []domain.ScheduleEvent) (product, variant string) {
	if len(events) == 0 {
		return "", ""
	}
	return events[0].ProductTitle, events[0].VariantTitle
}

// toNullTime converts a zero time to NULL for SQL
func toNullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
