package costing

import (
	"github.com/google/uuid"
	"github.com/restoops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// IngredientBatch is a single stock receipt for an ingredient. The unit cost
// is immutable once set; CreatedAt defines the FIFO order. Consumption is
// performed by the inventory-movement side, the costing cascade only reads
// the open set.
type IngredientBatch struct {
	shared.BaseEntity
	IngredientID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RemainingQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Closed            bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (IngredientBatch) TableName() string {
	return "ingredient_batches"
}

// NewIngredientBatch creates a new open batch from a stock receipt.
func NewIngredientBatch(ingredientID uuid.UUID, unitCost, quantity decimal.Decimal) (*IngredientBatch, error) {
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Batch unit cost cannot be negative")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Batch quantity must be positive")
	}
	return &IngredientBatch{
		BaseEntity:        shared.NewBaseEntity(),
		IngredientID:      ingredientID,
		UnitCost:          unitCost,
		RemainingQuantity: quantity,
	}, nil
}

// IsOpen reports whether the batch still participates in valuation.
func (b *IngredientBatch) IsOpen() bool {
	return !b.Closed
}

// RemainingValue returns remaining quantity times unit cost.
func (b *IngredientBatch) RemainingValue() decimal.Decimal {
	return b.RemainingQuantity.Mul(b.UnitCost)
}
