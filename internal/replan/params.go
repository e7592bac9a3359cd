package replan

import (
	"errors"
	"fmt"

	"github.com/andresuchdata/reorder/internal/domain"
)

// ErrInvalidParameter is returned when a simulation input fails validation.
// No partial schedule is ever produced alongside it.
var ErrInvalidParameter = errors.New("invalid replenishment parameter")

// ComputeParameters derives the constants of a continuous-review policy
// from raw inputs. Reorder point and order quantity are intentionally the
// same expression: one order covers demand over the full lead time plus
// the safety buffer.
//
// All derived values are zero when dailyDemand is zero; callers must not
// divide by demand.
func ComputeParameters(dailyDemand float64, leadTimeDays, shippingTimeDays, safetyStockDays int) (domain.ReplenishmentParameters, error) {
	if dailyDemand < 0 {
		return domain.ReplenishmentParameters{}, fmt.Errorf("%w: daily demand %v is negative", ErrInvalidParameter, dailyDemand)
	}
	if leadTimeDays < 0 {
		return domain.ReplenishmentParameters{}, fmt.Errorf("%w: lead time %d is negative", ErrInvalidParameter, leadTimeDays)
	}
	if shippingTimeDays < 0 {
		return domain.ReplenishmentParameters{}, fmt.Errorf("%w: shipping time %d is negative", ErrInvalidParameter, shippingTimeDays)
	}
	if safetyStockDays < 0 {
		return domain.ReplenishmentParameters{}, fmt.Errorf("%w: safety stock days %d is negative", ErrInvalidParameter, safetyStockDays)
	}

	totalLeadTime := leadTimeDays + shippingTimeDays
	safetyStock := dailyDemand * float64(safetyStockDays)
	orderQuantity := dailyDemand*float64(totalLeadTime) + safetyStock

	return domain.ReplenishmentParameters{
		TotalLeadTime: totalLeadTime,
		SafetyStock:   safetyStock,
		ReorderPoint:  orderQuantity,
		OrderQuantity: orderQuantity,
	}, nil
}
