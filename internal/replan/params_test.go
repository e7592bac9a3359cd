package replan

import (
	"errors"
	"testing"
)

func TestComputeParameters(t *testing.T) {
	tests := []struct {
		name            string
		dailyDemand     float64
		leadTimeDays    int
		shippingDays    int
		safetyStockDays int
		wantTotalLead   int
		wantSafetyStock float64
		wantReorder     float64
	}{
		{
			name:            "typical_item",
			dailyDemand:     10,
			leadTimeDays:    20,
			shippingDays:    10,
			safetyStockDays: 5,
			wantTotalLead:   30,
			wantSafetyStock: 50,
			wantReorder:     350,
		},
		{
			name:            "defaults_from_order_form",
			dailyDemand:     2.5,
			leadTimeDays:    45,
			shippingDays:    45,
			safetyStockDays: 10,
			wantTotalLead:   90,
			wantSafetyStock: 25,
			wantReorder:     250,
		},
		{
			name:          "zero_demand_yields_zero_quantities",
			dailyDemand:   0,
			leadTimeDays:  45,
			shippingDays:  45,
			wantTotalLead: 90,
		},
		{
			name: "all_zero_inputs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := ComputeParameters(tt.dailyDemand, tt.leadTimeDays, tt.shippingDays, tt.safetyStockDays)
			if err != nil {
				t.Fatalf("ComputeParameters failed: %v", err)
			}
			if params.TotalLeadTime != tt.wantTotalLead {
				t.Errorf("TotalLeadTime = %d, want %d", params.TotalLeadTime, tt.wantTotalLead)
			}
			if params.SafetyStock != tt.wantSafetyStock {
				t.Errorf("SafetyStock = %v, want %v", params.SafetyStock, tt.wantSafetyStock)
			}
			if params.ReorderPoint != tt.wantReorder {
				t.Errorf("ReorderPoint = %v, want %v", params.ReorderPoint, tt.wantReorder)
			}
			if params.OrderQuantity != params.ReorderPoint {
				t.Errorf("OrderQuantity = %v, want it equal to ReorderPoint %v", params.OrderQuantity, params.ReorderPoint)
			}
		})
	}
}

func TestComputeParameters_NegativeInputs(t *testing.T) {
	tests := []struct {
		name            string
		dailyDemand     float64
		leadTimeDays    int
		shippingDays    int
		safetyStockDays int
	}{
		{name: "negative_demand", dailyDemand: -1},
		{name: "negative_lead_time", leadTimeDays: -3},
		{name: "negative_shipping_time", shippingDays: -7},
		{name: "negative_safety_stock_days", safetyStockDays: -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeParameters(tt.dailyDemand, tt.leadTimeDays, tt.shippingDays, tt.safetyStockDays)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}
