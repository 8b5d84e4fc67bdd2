package costing

import (
	"time"

	"github.com/google/uuid"
	"github.com/restoops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Ingredient is a raw material tracked in the cost ledger. Its unit costs are
// derived from the currently open stock batches and consumed by recipe costing.
type Ingredient struct {
	shared.BaseEntity
	OrganizationID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	Name             string           `gorm:"not null"`
	Unit             string           `gorm:"not null"` // kg, l, pcs, ...
	StockQuantity    decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	AverageUnitCost  *decimal.Decimal `gorm:"type:decimal(18,4)"` // weighted average over open batches
	FIFOUnitCost     *decimal.Decimal `gorm:"type:decimal(18,4)"` // unit cost of the oldest open batch
	ReorderThreshold decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Active           bool             `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Ingredient) TableName() string {
	return "ingredients"
}

// NewIngredient creates a new ingredient with no cost yet. Null costs are a
// valid steady state until the first batch is received.
func NewIngredient(organizationID uuid.UUID, name, unit string) (*Ingredient, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Ingredient name cannot be empty")
	}
	if unit == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Ingredient unit cannot be empty")
	}
	return &Ingredient{
		BaseEntity:     shared.NewBaseEntity(),
		OrganizationID: organizationID,
		Name:           name,
		Unit:           unit,
		StockQuantity:  decimal.Zero,
		Active:         true,
	}, nil
}

// EffectiveUnitCost returns the cost used by recipe costing:
// FIFO cost when present, otherwise the weighted average, otherwise zero.
func (i *Ingredient) EffectiveUnitCost() decimal.Decimal {
	if i.FIFOUnitCost != nil {
		return *i.FIFOUnitCost
	}
	if i.AverageUnitCost != nil {
		return *i.AverageUnitCost
	}
	return decimal.Zero
}

// HasCost reports whether any unit cost has been established.
func (i *Ingredient) HasCost() bool {
	return i.FIFOUnitCost != nil || i.AverageUnitCost != nil
}

// ApplyValuation persists a freshly computed valuation on the ingredient and
// reports whether either cost actually changed. Two nil costs compare equal.
func (i *Ingredient) ApplyValuation(v Valuation) bool {
	changed := !decimalPtrEqual(i.AverageUnitCost, v.AverageUnitCost) ||
		!decimalPtrEqual(i.FIFOUnitCost, v.FIFOUnitCost)
	if !changed {
		return false
	}
	i.AverageUnitCost = v.AverageUnitCost
	i.FIFOUnitCost = v.FIFOUnitCost
	i.StockQuantity = v.TotalQuantity
	i.UpdatedAt = time.Now()
	return true
}

// ApplyManualCost overrides both derived unit costs with an operator-entered
// value, rounded at the persisted scale. The next batch-driven revaluation
// recomputes from open batches and supersedes the override. Reports whether a
// persisted cost changed.
func (i *Ingredient) ApplyManualCost(unitCost decimal.Decimal) bool {
	rounded := unitCost.RoundBank(costScale)
	if decimalPtrEqual(i.FIFOUnitCost, &rounded) && decimalPtrEqual(i.AverageUnitCost, &rounded) {
		return false
	}
	i.FIFOUnitCost = &rounded
	i.AverageUnitCost = &rounded
	i.UpdatedAt = time.Now()
	return true
}

// BelowReorderThreshold reports whether stock has fallen under the configured
// reorder level.
func (i *Ingredient) BelowReorderThreshold() bool {
	return i.ReorderThreshold.GreaterThan(decimal.Zero) &&
		i.StockQuantity.LessThan(i.ReorderThreshold)
}

func decimalPtrEqual(a, b *decimal.Decimal) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Equal(*b)
}
