// internal/domain/models.go
package domain

import "time"

// Item represents one sellable variant from an ingested demand report
type Item struct {
	ProductTitle  string  `json:"product_title" db:"product_title"`
	VariantTitle  string  `json:"variant_title" db:"variant_title"`
	VariantSKU    string  `json:"variant_sku" db:"variant_sku"`
	EndingQty     float64 `json:"ending_quantity" db:"ending_quantity"`
	QtySoldPerDay float64 `json:"quantity_sold_per_day" db:"quantity_sold_per_day"`
}

// ReplenishmentInputs is the immutable per-run record a simulation consumes.
// InTransitArrival is required whenever InTransitQty > 0.
type ReplenishmentInputs struct {
	ProductTitle      string    `json:"product_title"`
	VariantTitle      string    `json:"variant_title"`
	VariantSKU        string    `json:"variant_sku"`
	DailyDemand       float64   `json:"daily_demand"`
	LeadTimeDays      int       `json:"lead_time_days"`
	ShippingTimeDays  int       `json:"shipping_time_days"`
	SafetyStockDays   int       `json:"safety_stock_days"`
	StartingInventory float64   `json:"starting_inventory"`
	StartDate         time.Time `json:"start_date"`
	InTransitQty      float64   `json:"in_transit_quantity,omitempty"`
	InTransitArrival  time.Time `json:"in_transit_arrival_date,omitempty"`
}

// ReplenishmentParameters holds the derived constants for one run.
// ReorderPoint and OrderQuantity are computed with the identical formula,
// so placing one order restores inventory to roughly twice the reorder point.
type ReplenishmentParameters struct {
	TotalLeadTime int     `json:"total_lead_time"`
	SafetyStock   float64 `json:"safety_stock"`
	ReorderPoint  float64 `json:"reorder_point"`
	OrderQuantity float64 `json:"order_quantity"`
}

// EventKind distinguishes seeded in-transit arrivals from orders the
// simulation placed.
type EventKind string

const (
	EventInTransitArrival EventKind = "InTransitArrival"
	EventOrderPlaced      EventKind = "OrderPlaced"
)

// ScheduleEvent is one row of a generated order schedule. OrderDate is
// zero for in-transit arrivals. Completed is the only field mutated after
// assembly, and only by the collaborator layer.
type ScheduleEvent struct {
	ProductTitle string    `json:"product_title"`
	VariantTitle string    `json:"variant_title"`
	VariantSKU   string    `json:"variant_sku"`
	Kind         EventKind `json:"event"`
	OrderDate    time.Time `json:"order_date,omitempty"`
	ArrivalDate  time.Time `json:"arrival_date"`
	Quantity     float64   `json:"order_quantity"`
	Completed    bool      `json:"completed"`
}

// CompletionKey identifies a schedule event across regenerations, so that
// re-running a simulation does not corrupt unrelated completion flags.
type CompletionKey struct {
	SKU         string    `json:"sku"`
	ArrivalDate time.Time `json:"arrival_date"`
	Kind        EventKind `json:"event"`
}

// Key returns the stable completion identifier for an event.
func (e ScheduleEvent) Key() CompletionKey {
	return CompletionKey{SKU: e.VariantSKU, ArrivalDate: e.ArrivalDate, Kind: e.Kind}
}

// ScheduleRun is one persisted simulation result for an item.
type ScheduleRun struct {
	ID          string              `json:"id" db:"id"`
	SKU         string              `json:"sku" db:"sku"`
	Inputs      ReplenishmentInputs `json:"inputs"`
	Events      []ScheduleEvent     `json:"events"`
	GeneratedAt time.Time           `json:"generated_at" db:"generated_at"`
}
