package costing

import (
	"time"

	"github.com/google/uuid"
	"github.com/restoops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Recipe is the aggregate root for recipe costing. TotalCost and
// CostPerPortion are derived from the ingredient lines; Version increments on
// every recompute so readers can detect staleness without locking.
type Recipe struct {
	shared.BaseEntity
	OrganizationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name           string          `gorm:"not null"`
	YieldQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCost      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CostPerPortion decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Version        int             `gorm:"not null;default:1"`
	Active         bool            `gorm:"not null;default:true"`

	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;references:ID"`
}

// TableName returns the table name for GORM
func (Recipe) TableName() string {
	return "recipes"
}

// RecipeIngredient is one line of a recipe: how much of an ingredient is used
// and the cost snapshot taken at the last recompute.
type RecipeIngredient struct {
	shared.BaseEntity
	RecipeID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	IngredientID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	QuantityUsed  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCostAtUse decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalCost     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

// NewRecipeIngredient creates a recipe line without a cost snapshot yet.
func NewRecipeIngredient(recipeID, ingredientID uuid.UUID, quantityUsed decimal.Decimal) (*RecipeIngredient, error) {
	if quantityUsed.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Ingredient quantity must be positive")
	}
	return &RecipeIngredient{
		BaseEntity:   shared.NewBaseEntity(),
		RecipeID:     recipeID,
		IngredientID: ingredientID,
		QuantityUsed: quantityUsed,
	}, nil
}

// NewRecipe creates a new recipe. Yield quantity is validated here, at the
// mutation edge; the recompute path assumes the invariant holds.
func NewRecipe(organizationID uuid.UUID, name string, yieldQuantity decimal.Decimal) (*Recipe, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Recipe name cannot be empty")
	}
	if yieldQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_YIELD", "Recipe yield quantity must be positive")
	}
	return &Recipe{
		BaseEntity:     shared.NewBaseEntity(),
		OrganizationID: organizationID,
		Name:           name,
		YieldQuantity:  yieldQuantity,
		TotalCost:      decimal.Zero,
		CostPerPortion: decimal.Zero,
		Version:        1,
		Active:         true,
	}, nil
}

// ReplaceIngredients swaps the full ingredient list (full-replace semantics,
// persisted in one transaction by the caller). A recipe must keep at least
// one line.
func (r *Recipe) ReplaceIngredients(lines []RecipeIngredient) error {
	if len(lines) == 0 {
		return shared.NewDomainError("INVALID_STATE", "Recipe must have at least one ingredient")
	}
	for idx := range lines {
		if lines[idx].QuantityUsed.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError("INVALID_QUANTITY", "Ingredient quantity must be positive")
		}
		lines[idx].RecipeID = r.ID
	}
	r.Ingredients = lines
	r.UpdatedAt = time.Now()
	return nil
}

// Recost snapshots the given per-ingredient unit costs onto every line, sums
// them into TotalCost, derives CostPerPortion and bumps Version.
//
// Line totals are rounded half-even at the persisted scale; TotalCost is the
// exact sum of persisted line totals so the sum invariant holds by
// construction.
func (r *Recipe) Recost(unitCosts map[uuid.UUID]decimal.Decimal) error {
	total := decimal.Zero
	for idx := range r.Ingredients {
		line := &r.Ingredients[idx]
		cost, ok := unitCosts[line.IngredientID]
		if !ok {
			return shared.ErrNotFound
		}
		line.UnitCostAtUse = cost
		line.TotalCost = line.QuantityUsed.Mul(cost).RoundBank(costScale)
		line.UpdatedAt = time.Now()
		total = total.Add(line.TotalCost)
	}
	r.TotalCost = total
	r.CostPerPortion = total.Div(r.YieldQuantity).RoundBank(costScale)
	r.Version++
	r.UpdatedAt = time.Now()
	return nil
}

// PortionCost returns the unrounded cost of a single yield unit. Menu costing
// scales this by the portion multiplier before rounding.
func (r *Recipe) PortionCost() decimal.Decimal {
	return r.TotalCost.Div(r.YieldQuantity)
}
