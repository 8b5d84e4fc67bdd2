package costing

import (
	"context"

	"github.com/google/uuid"
	"github.com/restoops/backend/internal/domain/costing"
	"github.com/restoops/backend/internal/domain/shared"
	"github.com/restoops/backend/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecipeLineInput is one ingredient line of a recipe create or update.
type RecipeLineInput struct {
	IngredientID uuid.UUID
	Quantity     decimal.Decimal
}

// RecipeCostService owns recipe mutations and the recipe stage of the cost
// cascade. Every recompute runs in a single transaction covering the recipe
// row and all its ingredient lines; menu fan-out happens only after commit.
type RecipeCostService struct {
	tx         TransactionScope
	dispatcher *CascadeDispatcher
	publisher  shared.EventPublisher
}

// NewRecipeCostService creates a recipe cost service.
func NewRecipeCostService(tx TransactionScope, dispatcher *CascadeDispatcher, publisher shared.EventPublisher) *RecipeCostService {
	return &RecipeCostService{tx: tx, dispatcher: dispatcher, publisher: publisher}
}

// CreateRecipe validates and persists a new recipe with its ingredient lines
// and computes its initial cost in the same transaction. A recipe with zero
// ingredients or a non-positive yield is rejected here; the cascade never
// sees such a state.
func (s *RecipeCostService) CreateRecipe(ctx context.Context, organizationID uuid.UUID, name string, yieldQuantity decimal.Decimal, lines []RecipeLineInput) (*costing.Recipe, error) {
	recipe, err := costing.NewRecipe(organizationID, name, yieldQuantity)
	if err != nil {
		return nil, err
	}

	recipeLines, err := buildLines(recipe.ID, lines)
	if err != nil {
		return nil, err
	}
	if err := recipe.ReplaceIngredients(recipeLines); err != nil {
		return nil, err
	}

	err = s.tx.Execute(ctx, func(repos TransactionalRepositories) error {
		costs, err := s.loadUnitCosts(ctx, repos, recipe)
		if err != nil {
			return err
		}
		if err := recipe.Recost(costs); err != nil {
			return err
		}
		return repos.Recipes().Save(ctx, recipe)
	})
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// ReplaceIngredients swaps a recipe's full ingredient list: old lines are
// deleted and new ones inserted in one transaction, then the recipe is
// recosted and the menu fan-out dispatched.
func (s *RecipeCostService) ReplaceIngredients(ctx context.Context, recipeID uuid.UUID, lines []RecipeLineInput) (*costing.Recipe, error) {
	recipeLines, err := buildLines(recipeID, lines)
	if err != nil {
		return nil, err
	}

	var recipe *costing.Recipe
	err = s.tx.Execute(ctx, func(repos TransactionalRepositories) error {
		recipe, err = repos.Recipes().FindByID(ctx, recipeID)
		if err != nil {
			return err
		}
		if err := recipe.ReplaceIngredients(recipeLines); err != nil {
			return err
		}

		costs, err := s.loadUnitCosts(ctx, repos, recipe)
		if err != nil {
			return err
		}
		if err := recipe.Recost(costs); err != nil {
			return err
		}

		if err := repos.Recipes().ReplaceIngredients(ctx, recipeID, recipe.Ingredients); err != nil {
			return err
		}
		return repos.Recipes().Save(ctx, recipe)
	})
	if err != nil {
		return nil, err
	}

	if err := s.afterRecost(ctx, recipe); err != nil {
		return recipe, err
	}
	return recipe, nil
}

// RecalculateRecipeCost re-reads current ingredient costs, snapshots them on
// every line, updates the recipe totals and bumps its version, all in one
// transaction. After commit, one menu-update job is enqueued per active menu
// item referencing the recipe.
//
// A missing recipe or a missing referenced ingredient fails with
// shared.ErrNotFound; a dangling reference is corrupt data, not something to
// skip silently.
func (s *RecipeCostService) RecalculateRecipeCost(ctx context.Context, recipeID uuid.UUID) error {
	var recipe *costing.Recipe

	err := s.tx.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		recipe, err = repos.Recipes().FindByID(ctx, recipeID)
		if err != nil {
			return err
		}

		costs, err := s.loadUnitCosts(ctx, repos, recipe)
		if err != nil {
			return err
		}
		if err := recipe.Recost(costs); err != nil {
			return err
		}
		return repos.Recipes().Save(ctx, recipe)
	})
	if err != nil {
		return err
	}

	return s.afterRecost(ctx, recipe)
}

// RecalculateRecipeNow is the synchronous entry point for the user-triggered
// "recalculate recipe cost" action. The recompute runs inline; downstream
// menu updates remain asynchronous.
func (s *RecipeCostService) RecalculateRecipeNow(ctx context.Context, recipeID uuid.UUID) (*costing.Recipe, error) {
	if err := s.RecalculateRecipeCost(ctx, recipeID); err != nil {
		return nil, err
	}

	var recipe *costing.Recipe
	err := s.tx.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		recipe, err = repos.Recipes().FindByID(ctx, recipeID)
		return err
	})
	return recipe, err
}

// loadUnitCosts resolves the effective unit cost for every line's ingredient.
// Any missing ingredient row is a corrupt reference and fails the stage.
func (s *RecipeCostService) loadUnitCosts(ctx context.Context, repos TransactionalRepositories, recipe *costing.Recipe) (map[uuid.UUID]decimal.Decimal, error) {
	ids := make([]uuid.UUID, 0, len(recipe.Ingredients))
	for _, line := range recipe.Ingredients {
		ids = append(ids, line.IngredientID)
	}

	ingredients, err := repos.Ingredients().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	costs := make(map[uuid.UUID]decimal.Decimal, len(ids))
	for _, id := range ids {
		ingredient, ok := ingredients[id]
		if !ok {
			return nil, shared.ErrNotFound
		}
		costs[id] = ingredient.EffectiveUnitCost()
	}
	return costs, nil
}

// afterRecost dispatches the menu fan-out and publishes the recost event once
// the recipe transaction has committed.
func (s *RecipeCostService) afterRecost(ctx context.Context, recipe *costing.Recipe) error {
	if err := s.dispatcher.RecipeCostChanged(ctx, recipe.ID); err != nil {
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, costing.NewRecipeRecostedEvent(recipe)); err != nil {
			logger.L(ctx).Warn("failed to publish recipe recost",
				zap.String("recipe_id", recipe.ID.String()),
				zap.Error(err),
			)
		}
	}

	logger.L(ctx).Info("recipe recosted",
		zap.String("recipe_id", recipe.ID.String()),
		zap.String("total_cost", recipe.TotalCost.String()),
		zap.Int("version", recipe.Version),
	)
	return nil
}

func buildLines(recipeID uuid.UUID, lines []RecipeLineInput) ([]costing.RecipeIngredient, error) {
	result := make([]costing.RecipeIngredient, 0, len(lines))
	for _, input := range lines {
		line, err := costing.NewRecipeIngredient(recipeID, input.IngredientID, input.Quantity)
		if err != nil {
			return nil, err
		}
		result = append(result, *line)
	}
	return result, nil
}
