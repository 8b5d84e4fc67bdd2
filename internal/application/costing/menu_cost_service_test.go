package costing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/restoops/backend/internal/domain/costing"
	"github.com/restoops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecalculateMenuCost(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*cascadeEnv, *costing.MenuItem) {
		t.Helper()
		env := newCascadeEnv()
		orgID := uuid.New()
		ing := env.addIngredient(t, orgID, "Flour")
		cost := decimal.RequireFromString("2.00")
		ing.FIFOUnitCost = &cost

		recipe, err := env.recipeCosts.CreateRecipe(ctx, orgID, "Dough", decimal.NewFromInt(10), []RecipeLineInput{
			{IngredientID: ing.ID, Quantity: decimal.NewFromInt(5)},
		})
		require.NoError(t, err)
		item := env.addMenuItem(t, orgID, &recipe.ID, "Pizza", "5.00", "2")
		return env, item
	}

	t.Run("missing item fails with not found", func(t *testing.T) {
		env := newCascadeEnv()
		_, err := env.menuCosts.RecalculateMenuCost(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("item without recipe is skipped, not failed", func(t *testing.T) {
		env := newCascadeEnv()
		item := env.addMenuItem(t, uuid.New(), nil, "Soft drink", "2.00", "1")

		skipped, err := env.menuCosts.RecalculateMenuCost(ctx, item.ID)
		require.NoError(t, err)
		assert.True(t, skipped)

		got, err := env.menuItems.FindByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Nil(t, got.ComputedCost)
	})

	t.Run("updates cost and margin from the recipe", func(t *testing.T) {
		env, item := setup(t)
		skipped, err := env.menuCosts.RecalculateMenuCost(ctx, item.ID)
		require.NoError(t, err)
		assert.False(t, skipped)

		got, err := env.menuItems.FindByID(ctx, item.ID)
		require.NoError(t, err)
		require.NotNil(t, got.ComputedCost)
		require.NotNil(t, got.Margin)
		assert.True(t, got.ComputedCost.Equal(decimal.NewFromInt(2)))
		assert.True(t, got.Margin.Equal(decimal.RequireFromString("0.6")))
	})

	t.Run("redelivery computes identical values and leaves the recipe alone", func(t *testing.T) {
		env, item := setup(t)
		_, err := env.menuCosts.RecalculateMenuCost(ctx, item.ID)
		require.NoError(t, err)
		first, err := env.menuItems.FindByID(ctx, item.ID)
		require.NoError(t, err)
		cost, margin := *first.ComputedCost, *first.Margin

		recipeBefore, err := env.recipes.FindByID(ctx, *item.RecipeID)
		require.NoError(t, err)
		versionBefore := recipeBefore.Version

		_, err = env.menuCosts.RecalculateMenuCost(ctx, item.ID)
		require.NoError(t, err)
		second, err := env.menuItems.FindByID(ctx, item.ID)
		require.NoError(t, err)
		assert.True(t, second.ComputedCost.Equal(cost))
		assert.True(t, second.Margin.Equal(margin))

		recipeAfter, err := env.recipes.FindByID(ctx, *item.RecipeID)
		require.NoError(t, err)
		assert.Equal(t, versionBefore, recipeAfter.Version)
	})

	t.Run("no settings row means no margin alert", func(t *testing.T) {
		env, item := setup(t)
		// Margin will be 0.6; without settings even a 0.99 target cannot fire.
		_, err := env.menuCosts.RecalculateMenuCost(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, env.publisher.countByType(costing.EventTypeMarginBelowThreshold))
	})

	t.Run("alert fires when margin drops below target", func(t *testing.T) {
		env, item := setup(t)
		settings := costing.NewCompanySettings(item.OrganizationID)
		require.NoError(t, settings.SetTargetMargin(decimal.RequireFromString("0.75")))
		require.NoError(t, env.settings.Save(ctx, settings))

		_, err := env.menuCosts.RecalculateMenuCost(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, env.publisher.countByType(costing.EventTypeMarginBelowThreshold))
	})
}

func TestApproveMenuItem(t *testing.T) {
	ctx := context.Background()

	t.Run("approval without auto-propagation enqueues nothing", func(t *testing.T) {
		env := newCascadeEnv()
		item := env.addMenuItem(t, uuid.New(), nil, "Pizza", "5.00", "1")

		require.NoError(t, env.menuCosts.ApproveMenuItem(ctx, item.ID))

		got, err := env.menuItems.FindByID(ctx, item.ID)
		require.NoError(t, err)
		assert.True(t, got.Approved)
		assert.Equal(t, 0, env.queue.PendingCount())
	})

	t.Run("approval with auto-propagation reaches every active branch", func(t *testing.T) {
		env := newCascadeEnv()
		orgID := uuid.New()

		settings := costing.NewCompanySettings(orgID)
		settings.AutoPropagateApprovedMenus = true
		require.NoError(t, env.settings.Save(ctx, settings))

		for _, name := range []string{"Downtown", "Airport", "Harbor"} {
			branch, err := costing.NewBranch(orgID, name)
			require.NoError(t, err)
			require.NoError(t, env.branches.Save(ctx, branch))
		}
		closed, err := costing.NewBranch(orgID, "Closed")
		require.NoError(t, err)
		closed.Active = false
		require.NoError(t, env.branches.Save(ctx, closed))

		item := env.addMenuItem(t, orgID, nil, "Pizza", "5.00", "1")

		require.NoError(t, env.menuCosts.ApproveMenuItem(ctx, item.ID))
		require.NoError(t, env.queue.Drain(ctx))

		rows, err := env.branchMenus.FindByMenuItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Len(t, rows, 3)

		// Re-approving re-runs the fan-out without duplicating rows.
		require.NoError(t, env.menuCosts.ApproveMenuItem(ctx, item.ID))
		require.NoError(t, env.queue.Drain(ctx))
		rows, err = env.branchMenus.FindByMenuItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})
}

func TestPropagateMenuItem(t *testing.T) {
	ctx := context.Background()

	t.Run("counts created versus skipped pairs", func(t *testing.T) {
		env := newCascadeEnv()
		orgID := uuid.New()
		item := env.addMenuItem(t, orgID, nil, "Pizza", "5.00", "1")

		branch, err := costing.NewBranch(orgID, "Downtown")
		require.NoError(t, err)
		require.NoError(t, env.branches.Save(ctx, branch))

		result, err := env.branchMenu.PropagateMenuItem(ctx, orgID, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Created)
		assert.Equal(t, 1, result.Total)

		result, err = env.branchMenu.PropagateMenuItem(ctx, orgID, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Created)
		assert.Equal(t, 1, result.Total)
	})

	t.Run("organization mismatch reads as not found", func(t *testing.T) {
		env := newCascadeEnv()
		item := env.addMenuItem(t, uuid.New(), nil, "Pizza", "5.00", "1")

		_, err := env.branchMenu.PropagateMenuItem(ctx, uuid.New(), item.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("missing item reads as not found", func(t *testing.T) {
		env := newCascadeEnv()
		_, err := env.branchMenu.PropagateMenuItem(ctx, uuid.New(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
