package costing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/restoops/backend/internal/domain/costing"
	"github.com/restoops/backend/internal/infrastructure/logger"
	"github.com/restoops/backend/internal/infrastructure/queue"
	"go.uber.org/zap"
)

// CascadeDispatcher translates a lower-stage cost change into the next
// stage's recomputation jobs: ingredient change fans out to the recipes using
// it, recipe change fans out to the menu items built on it.
//
// If enumeration fails nothing is enqueued and the error propagates, so the
// queue retries the triggering job as a whole. Duplicate deliveries are
// harmless because every downstream job is an idempotent recompute.
type CascadeDispatcher struct {
	recipes   costing.RecipeRepository
	menuItems costing.MenuItemRepository
	queue     queue.Enqueuer
}

// NewCascadeDispatcher creates a dispatcher.
func NewCascadeDispatcher(
	recipes costing.RecipeRepository,
	menuItems costing.MenuItemRepository,
	q queue.Enqueuer,
) *CascadeDispatcher {
	return &CascadeDispatcher{
		recipes:   recipes,
		menuItems: menuItems,
		queue:     q,
	}
}

// IngredientCostChanged enqueues one recipe recompute job per distinct active
// recipe referencing the ingredient.
func (d *CascadeDispatcher) IngredientCostChanged(ctx context.Context, ingredientID uuid.UUID) error {
	recipeIDs, err := d.recipes.FindIDsByIngredient(ctx, ingredientID)
	if err != nil {
		return fmt.Errorf("failed to enumerate recipes for ingredient %s: %w", ingredientID, err)
	}

	for _, recipeID := range recipeIDs {
		payload := RecipeCostUpdatePayload{RecipeID: recipeID}
		if _, err := d.queue.Enqueue(ctx, JobRecipeCostUpdate, payload); err != nil {
			return fmt.Errorf("failed to enqueue recipe cost update for %s: %w", recipeID, err)
		}
	}

	logger.L(ctx).Debug("ingredient cascade dispatched",
		zap.String("ingredient_id", ingredientID.String()),
		zap.Int("recipes", len(recipeIDs)),
	)
	return nil
}

// RecipeCostChanged enqueues one menu recompute job per active menu item
// linked to the recipe.
func (d *CascadeDispatcher) RecipeCostChanged(ctx context.Context, recipeID uuid.UUID) error {
	itemIDs, err := d.menuItems.FindActiveIDsByRecipe(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("failed to enumerate menu items for recipe %s: %w", recipeID, err)
	}

	for _, itemID := range itemIDs {
		payload := MenuCostUpdatePayload{MenuItemID: itemID}
		if _, err := d.queue.Enqueue(ctx, JobMenuCostUpdate, payload); err != nil {
			return fmt.Errorf("failed to enqueue menu cost update for %s: %w", itemID, err)
		}
	}

	logger.L(ctx).Debug("recipe cascade dispatched",
		zap.String("recipe_id", recipeID.String()),
		zap.Int("menu_items", len(itemIDs)),
	)
	return nil
}
