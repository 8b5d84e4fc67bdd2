package costing

import (
	"time"

	"github.com/google/uuid"
	"github.com/restoops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Cost history reasons
const (
	CostReasonBatchChange = "batch_change"
	CostReasonManualEdit  = "manual_edit"
)

// IngredientCostHistory is an append-only audit row written whenever an
// ingredient's persisted unit cost changes. Rows are never mutated or deleted.
type IngredientCostHistory struct {
	shared.BaseEntity
	IngredientID uuid.UUID       `gorm:"type:uuid;not null;index"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reason       string          `gorm:"not null"`
	RecordedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (IngredientCostHistory) TableName() string {
	return "ingredient_cost_history"
}

// NewIngredientCostHistory records a unit cost change.
func NewIngredientCostHistory(ingredientID uuid.UUID, unitCost decimal.Decimal, reason string) *IngredientCostHistory {
	return &IngredientCostHistory{
		BaseEntity:   shared.NewBaseEntity(),
		IngredientID: ingredientID,
		UnitCost:     unitCost,
		Reason:       reason,
		RecordedAt:   time.Now(),
	}
}
