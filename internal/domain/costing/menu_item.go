package costing

import (
	"time"

	"github.com/google/uuid"
	"github.com/restoops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MenuItem is a sellable item. Items without a linked recipe are exempt from
// the cost cascade; ComputedCost and Margin stay nil until a recipe is linked
// and costed.
type MenuItem struct {
	shared.BaseEntity
	OrganizationID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	RecipeID          *uuid.UUID       `gorm:"type:uuid;index"`
	Name              string           `gorm:"not null"`
	BasePrice         decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	PortionMultiplier decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:1"`
	ComputedCost      *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Margin            *decimal.Decimal `gorm:"type:decimal(18,4)"` // fraction, not percent
	Active            bool             `gorm:"not null;default:true"`
	Approved          bool             `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (MenuItem) TableName() string {
	return "menu_items"
}

// NewMenuItem creates a menu item. A nil recipeID is allowed: such items are
// priced manually and skipped by the cascade.
func NewMenuItem(organizationID uuid.UUID, recipeID *uuid.UUID, name string, basePrice, portionMultiplier decimal.Decimal) (*MenuItem, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Menu item name cannot be empty")
	}
	if basePrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Base price cannot be negative")
	}
	if portionMultiplier.IsNegative() {
		return nil, shared.NewDomainError("INVALID_MULTIPLIER", "Portion multiplier cannot be negative")
	}
	return &MenuItem{
		BaseEntity:        shared.NewBaseEntity(),
		OrganizationID:    organizationID,
		RecipeID:          recipeID,
		Name:              name,
		BasePrice:         basePrice,
		PortionMultiplier: portionMultiplier,
		Active:            true,
	}, nil
}

// HasRecipe reports whether the item participates in the cost cascade.
func (m *MenuItem) HasRecipe() bool {
	return m.RecipeID != nil
}

// ApplyCost recomputes ComputedCost and Margin from the linked recipe's
// current cost:
//
//	computedCost = (recipe.totalCost / recipe.yieldQuantity) * portionMultiplier
//	margin       = (basePrice - computedCost) / basePrice   (nil when basePrice is zero)
//
// Rounding is half-even at the persisted scale, applied to the final values only.
func (m *MenuItem) ApplyCost(recipe *Recipe) {
	cost := recipe.PortionCost().Mul(m.PortionMultiplier).RoundBank(costScale)
	m.ComputedCost = &cost

	if m.BasePrice.GreaterThan(decimal.Zero) {
		margin := m.BasePrice.Sub(cost).Div(m.BasePrice).RoundBank(costScale)
		m.Margin = &margin
	} else {
		m.Margin = nil
	}
	m.UpdatedAt = time.Now()
}

// Approve marks the item as approved for sale.
func (m *MenuItem) Approve() {
	m.Approved = true
	m.UpdatedAt = time.Now()
}

// MarginBelowThreshold reports whether the current margin breaches the given
// organization target. A nil threshold or nil margin suppresses the signal.
func (m *MenuItem) MarginBelowThreshold(threshold *decimal.Decimal) bool {
	if threshold == nil || m.Margin == nil {
		return false
	}
	return m.Margin.LessThan(*threshold)
}
