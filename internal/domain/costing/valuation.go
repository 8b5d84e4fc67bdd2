package costing

import (
	"github.com/shopspring/decimal"
)

// costScale is the scale at which persisted monetary values are rounded.
// Rounding is banker's (half-even) and is applied only to final persisted
// values, never to intermediate sums.
const costScale = 4

// Valuation is the result of valuing an ingredient's open batch set.
// Both costs are nil when no open batch exists; the average is additionally
// nil when the total remaining quantity is zero.
type Valuation struct {
	AverageUnitCost *decimal.Decimal
	FIFOUnitCost    *decimal.Decimal
	TotalQuantity   decimal.Decimal
}

// ValueBatches derives the weighted-average and FIFO unit costs from a set of
// batches. Closed batches are ignored. FIFO order is defined by batch creation
// time. A zero-batch input is a valid steady state, not an error.
func ValueBatches(batches []IngredientBatch) Valuation {
	totalQty := decimal.Zero
	totalValue := decimal.Zero
	var oldest *IngredientBatch

	for idx := range batches {
		b := &batches[idx]
		if !b.IsOpen() {
			continue
		}
		totalQty = totalQty.Add(b.RemainingQuantity)
		totalValue = totalValue.Add(b.RemainingValue())
		if oldest == nil || b.CreatedAt.Before(oldest.CreatedAt) {
			oldest = b
		}
	}

	v := Valuation{TotalQuantity: totalQty}
	if oldest == nil {
		return v
	}

	fifo := oldest.UnitCost
	v.FIFOUnitCost = &fifo

	if totalQty.GreaterThan(decimal.Zero) {
		avg := totalValue.Div(totalQty).RoundBank(costScale)
		v.AverageUnitCost = &avg
	}
	return v
}
