package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/urfave/cli/v2"
)

func runIngest(c *cli.Context) error {
	items, err := readDemandFile(c.String("input"))
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
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
	`)
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

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Ingested %d items from %s", len(items), c.String("input"))
	return nil
}
