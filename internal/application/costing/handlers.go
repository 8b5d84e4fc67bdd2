package costing

import (
	"context"

	"github.com/restoops/backend/internal/infrastructure/queue"
)

// RegisterHandlers binds every cascade job type to its stage. Handlers carry
// identifiers only and re-read persisted state, so the queue's at-least-once
// delivery is safe for all of them.
func RegisterHandlers(
	reg queue.Registry,
	valuation *ValuationService,
	dispatcher *CascadeDispatcher,
	recipes *RecipeCostService,
	menus *MenuCostService,
	branches *BranchMenuService,
) {
	reg.Register(JobInventoryBatchChange, func(ctx context.Context, job queue.Job) error {
		var payload InventoryBatchChangePayload
		if err := job.DecodePayload(&payload); err != nil {
			return err
		}
		_, err := valuation.RevalueIngredient(ctx, payload.IngredientID)
		return err
	})

	reg.Register(JobIngredientCostUpdate, func(ctx context.Context, job queue.Job) error {
		var payload IngredientCostUpdatePayload
		if err := job.DecodePayload(&payload); err != nil {
			return err
		}
		return dispatcher.IngredientCostChanged(ctx, payload.IngredientID)
	})

	reg.Register(JobRecipeCostUpdate, func(ctx context.Context, job queue.Job) error {
		var payload RecipeCostUpdatePayload
		if err := job.DecodePayload(&payload); err != nil {
			return err
		}
		return recipes.RecalculateRecipeCost(ctx, payload.RecipeID)
	})

	reg.Register(JobMenuCostUpdate, func(ctx context.Context, job queue.Job) error {
		var payload MenuCostUpdatePayload
		if err := job.DecodePayload(&payload); err != nil {
			return err
		}
		_, err := menus.RecalculateMenuCost(ctx, payload.MenuItemID)
		return err
	})

	reg.Register(JobMenuCascade, func(ctx context.Context, job queue.Job) error {
		var payload MenuCascadePayload
		if err := job.DecodePayload(&payload); err != nil {
			return err
		}
		_, err := branches.PropagateMenuItem(ctx, payload.OrganizationID, payload.MenuItemID)
		return err
	})
}
