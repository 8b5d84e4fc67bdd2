package costing

import (
	"github.com/google/uuid"
	"github.com/restoops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypeIngredientCostChanged = "costing.ingredient_cost_changed"
	EventTypeRecipeRecosted        = "costing.recipe_recosted"
	EventTypeMenuItemCostUpdated   = "costing.menu_item_cost_updated"
	EventTypeMarginBelowThreshold  = "costing.margin_below_threshold"
	EventTypeMenuItemApproved      = "costing.menu_item_approved"
)

// IngredientCostChangedEvent is emitted when an ingredient's persisted unit
// cost changed after revaluation.
type IngredientCostChangedEvent struct {
	shared.BaseDomainEvent
	IngredientID    uuid.UUID        `json:"ingredient_id"`
	AverageUnitCost *decimal.Decimal `json:"average_unit_cost"`
	FIFOUnitCost    *decimal.Decimal `json:"fifo_unit_cost"`
}

// NewIngredientCostChangedEvent creates an ingredient cost change event.
func NewIngredientCostChangedEvent(ing *Ingredient) *IngredientCostChangedEvent {
	return &IngredientCostChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeIngredientCostChanged, "Ingredient", ing.ID, ing.OrganizationID),
		IngredientID:    ing.ID,
		AverageUnitCost: ing.AverageUnitCost,
		FIFOUnitCost:    ing.FIFOUnitCost,
	}
}

// RecipeRecostedEvent is emitted after a recipe recompute transaction commits.
type RecipeRecostedEvent struct {
	shared.BaseDomainEvent
	RecipeID       uuid.UUID       `json:"recipe_id"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	CostPerPortion decimal.Decimal `json:"cost_per_portion"`
	Version        int             `json:"version"`
}

// NewRecipeRecostedEvent creates a recipe recost event.
func NewRecipeRecostedEvent(r *Recipe) *RecipeRecostedEvent {
	return &RecipeRecostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRecipeRecosted, "Recipe", r.ID, r.OrganizationID),
		RecipeID:        r.ID,
		TotalCost:       r.TotalCost,
		CostPerPortion:  r.CostPerPortion,
		Version:         r.Version,
	}
}

// MenuItemCostUpdatedEvent is emitted after a menu item's computed cost and
// margin were refreshed.
type MenuItemCostUpdatedEvent struct {
	shared.BaseDomainEvent
	MenuItemID   uuid.UUID        `json:"menu_item_id"`
	ComputedCost *decimal.Decimal `json:"computed_cost"`
	Margin       *decimal.Decimal `json:"margin"`
}

// NewMenuItemCostUpdatedEvent creates a menu item cost update event.
func NewMenuItemCostUpdatedEvent(m *MenuItem) *MenuItemCostUpdatedEvent {
	return &MenuItemCostUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMenuItemCostUpdated, "MenuItem", m.ID, m.OrganizationID),
		MenuItemID:      m.ID,
		ComputedCost:    m.ComputedCost,
		Margin:          m.Margin,
	}
}

// MarginBelowThresholdEvent signals that a freshly computed margin breached
// the organization's configured target. Notification delivery is a separate
// subscriber's concern.
type MarginBelowThresholdEvent struct {
	shared.BaseDomainEvent
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	Margin     decimal.Decimal `json:"margin"`
	Threshold  decimal.Decimal `json:"threshold"`
}

// NewMarginBelowThresholdEvent creates a margin breach event.
func NewMarginBelowThresholdEvent(m *MenuItem, threshold decimal.Decimal) *MarginBelowThresholdEvent {
	return &MarginBelowThresholdEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMarginBelowThreshold, "MenuItem", m.ID, m.OrganizationID),
		MenuItemID:      m.ID,
		Margin:          *m.Margin,
		Threshold:       threshold,
	}
}

// MenuItemApprovedEvent is emitted when a menu item is approved for sale.
type MenuItemApprovedEvent struct {
	shared.BaseDomainEvent
	MenuItemID uuid.UUID `json:"menu_item_id"`
}

// NewMenuItemApprovedEvent creates a menu item approval event.
func NewMenuItemApprovedEvent(m *MenuItem) *MenuItemApprovedEvent {
	return &MenuItemApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMenuItemApproved, "MenuItem", m.ID, m.OrganizationID),
		MenuItemID:      m.ID,
	}
}
