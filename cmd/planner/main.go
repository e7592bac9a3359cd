package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/reorder/internal/domain"
	"github.com/andresuchdata/reorder/internal/export"
	"github.com/andresuchdata/reorder/internal/ingest"
	"github.com/andresuchdata/reorder/internal/replan"
)

const startDateLayout = "2006-01-02"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func plannerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "input",
			Usage:    "Demand report CSV to read",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "output",
			Usage: "Directory to write schedule CSVs to",
			Value: "./data/schedules",
		},
		&cli.StringFlag{
			Name:  "sku",
			Usage: "Only simulate this SKU",
		},
		&cli.StringFlag{
			Name:  "start-date",
			Usage: "Simulation start date (YYYY-MM-DD), defaults to today",
		},
		&cli.IntFlag{
			Name:    "lead-time-days",
			Usage:   "Supplier lead time in days",
			Value:   45,
			EnvVars: []string{"PLANNER_LEAD_TIME_DAYS"},
		},
		&cli.IntFlag{
			Name:    "shipping-time-days",
			Usage:   "Shipping time in days",
			Value:   45,
			EnvVars: []string{"PLANNER_SHIPPING_TIME_DAYS"},
		},
		&cli.IntFlag{
			Name:    "safety-stock-days",
			Usage:   "Safety stock buffer in days of demand",
			Value:   10,
			EnvVars: []string{"PLANNER_SAFETY_STOCK_DAYS"},
		},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "planner",
		Usage: "Generate purchase order schedules from demand reports",
		Commands: []*cli.Command{
			{
				Name:   "simulate",
				Usage:  "Simulate schedules from a demand CSV and write schedule CSVs",
				Flags:  plannerFlags(),
				Action: runSimulate,
			},
			{
				Name:  "ingest",
				Usage: "Load a demand CSV into the database",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:     "input",
						Usage:    "Demand report CSV to read",
						Required: true,
					},
				},
				Action: runIngest,
			},
			{
				Name:  "export",
				Usage: "Re-export stored schedules as CSV files",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:  "output",
						Usage: "Directory to write schedule CSVs to",
						Value: "./data/schedules",
					},
					&cli.StringFlag{
						Name:  "sku",
						Usage: "Only export this SKU",
					},
				},
				Action: runExport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runSimulate(c *cli.Context) error {
	items, err := readDemandFile(c.String("input"))
	if err != nil {
		return err
	}

	startDate := time.Now().UTC()
	if raw := c.String("start-date"); raw != "" {
		startDate, err = time.Parse(startDateLayout, raw)
		if err != nil {
			return fmt.Errorf("invalid start date %q: %w", raw, err)
		}
	}

	outDir := c.String("output")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	onlySKU := c.String("sku")
	written := 0
	for _, item := range items {
		if onlySKU != "" && item.VariantSKU != onlySKU {
			continue
		}

		inputs := domain.ReplenishmentInputs{
			ProductTitle:      item.ProductTitle,
			VariantTitle:      item.VariantTitle,
			VariantSKU:        item.VariantSKU,
			DailyDemand:       item.QtySoldPerDay,
			LeadTimeDays:      c.Int("lead-time-days"),
			ShippingTimeDays:  c.Int("shipping-time-days"),
			SafetyStockDays:   c.Int("safety-stock-days"),
			StartingInventory: item.EndingQty,
			StartDate:         startDate,
		}

		events, err := replan.Simulate(inputs)
		if err != nil {
			return fmt.Errorf("simulation failed for %s: %w", item.VariantSKU, err)
		}

		path := filepath.Join(outDir, fmt.Sprintf("schedule_%s.csv", item.VariantSKU))
		if err := export.WriteScheduleFile(path, events); err != nil {
			return fmt.Errorf("failed to write schedule for %s: %w", item.VariantSKU, err)
		}

		log.Printf("Wrote %s (%d events)", path, len(events))
		written++
	}

	if onlySKU != "" && written == 0 {
		return fmt.Errorf("sku %s not found in %s", onlySKU, c.String("input"))
	}

	log.Printf("Simulated %d schedules", written)
	return nil
}

func readDemandFile(path string) ([]domain.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open demand report: %w", err)
	}
	defer f.Close()

	items, err := ingest.ReadDemandReport(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse demand report: %w", err)
	}
	return items, nil
}
