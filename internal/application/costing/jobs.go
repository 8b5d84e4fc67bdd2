package costing

import "github.com/google/uuid"

// Job types carried by the cascade queue. Payloads are id-only: every stage
// re-reads current persisted state at execution time, so redelivery of the
// same job is always safe.
const (
	JobInventoryBatchChange = "INVENTORY_BATCH_CHANGE"
	JobIngredientCostUpdate = "INGREDIENT_COST_UPDATE"
	JobRecipeCostUpdate     = "RECIPE_COST_UPDATE"
	JobMenuCostUpdate       = "MENU_COST_UPDATE"
	JobMenuCascade          = "MENU_CASCADE"
)

// InventoryBatchChangePayload is the entry point from the inventory-movement
// side: an ingredient's batch set changed and it must be revalued.
type InventoryBatchChangePayload struct {
	IngredientID uuid.UUID `json:"ingredientId"`
}

// IngredientCostUpdatePayload triggers the recipe fan-out for an ingredient
// whose persisted unit cost changed.
type IngredientCostUpdatePayload struct {
	IngredientID uuid.UUID `json:"ingredientId"`
}

// RecipeCostUpdatePayload triggers a recipe cost recompute.
type RecipeCostUpdatePayload struct {
	RecipeID uuid.UUID `json:"recipeId"`
}

// MenuCostUpdatePayload triggers a menu item cost and margin recompute.
type MenuCostUpdatePayload struct {
	MenuItemID uuid.UUID `json:"menuItemId"`
}

// MenuCascadePayload triggers the branch fan-out of an approved menu item.
type MenuCascadePayload struct {
	MenuItemID     uuid.UUID `json:"menuItemId"`
	OrganizationID uuid.UUID `json:"organizationId"`
}
