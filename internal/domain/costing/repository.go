package costing

import (
	"context"

	"github.com/google/uuid"
)

// IngredientRepository provides access to ingredients.
type IngredientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Ingredient, error)
	// FindByIDs loads a set of ingredients keyed by id. Missing ids are simply
	// absent from the result; the caller decides whether that is an error.
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Ingredient, error)
	Save(ctx context.Context, ingredient *Ingredient) error
}

// IngredientBatchRepository provides read access to the batch set and
// persistence for stock receipts.
type IngredientBatchRepository interface {
	FindOpenByIngredient(ctx context.Context, ingredientID uuid.UUID) ([]IngredientBatch, error)
	Save(ctx context.Context, batch *IngredientBatch) error
}

// IngredientCostHistoryRepository is append-only.
type IngredientCostHistoryRepository interface {
	Append(ctx context.Context, entry *IngredientCostHistory) error
	FindByIngredient(ctx context.Context, ingredientID uuid.UUID, limit int) ([]IngredientCostHistory, error)
}

// RecipeRepository provides access to recipes with their ingredient lines.
type RecipeRepository interface {
	// FindByID loads a recipe together with its ingredient lines.
	FindByID(ctx context.Context, id uuid.UUID) (*Recipe, error)
	// FindIDsByIngredient returns the distinct ids of active recipes that
	// reference the given ingredient.
	FindIDsByIngredient(ctx context.Context, ingredientID uuid.UUID) ([]uuid.UUID, error)
	// Save persists the recipe and its current ingredient lines.
	Save(ctx context.Context, recipe *Recipe) error
	// ReplaceIngredients deletes the recipe's existing lines and inserts the
	// given ones. Callers run this inside a transaction scope.
	ReplaceIngredients(ctx context.Context, recipeID uuid.UUID, lines []RecipeIngredient) error
}

// MenuItemRepository provides access to menu items.
type MenuItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	// FindActiveIDsByRecipe returns the ids of active menu items linked to the
	// given recipe.
	FindActiveIDsByRecipe(ctx context.Context, recipeID uuid.UUID) ([]uuid.UUID, error)
	Save(ctx context.Context, item *MenuItem) error
}

// BranchRepository provides access to organization branches.
type BranchRepository interface {
	FindActiveByOrganization(ctx context.Context, organizationID uuid.UUID) ([]Branch, error)
	Save(ctx context.Context, branch *Branch) error
}

// BranchMenuRepository persists branch menu assignments.
type BranchMenuRepository interface {
	// Insert inserts the row unless the (branch, menu item) pair already
	// exists. Returns true when a new row was created.
	Insert(ctx context.Context, bm *BranchMenu) (bool, error)
	FindByMenuItem(ctx context.Context, menuItemID uuid.UUID) ([]BranchMenu, error)
}

// CompanySettingsRepository provides read access to per-organization settings.
type CompanySettingsRepository interface {
	FindByOrganization(ctx context.Context, organizationID uuid.UUID) (*CompanySettings, error)
	Save(ctx context.Context, settings *CompanySettings) error
}
