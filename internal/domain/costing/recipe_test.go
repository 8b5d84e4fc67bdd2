package costing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recipeWithLines(t *testing.T, yield string, quantities ...string) (*Recipe, []uuid.UUID) {
	t.Helper()
	recipe, err := NewRecipe(uuid.New(), "Dough", decimal.RequireFromString(yield))
	require.NoError(t, err)

	ingredientIDs := make([]uuid.UUID, 0, len(quantities))
	lines := make([]RecipeIngredient, 0, len(quantities))
	for _, qty := range quantities {
		id := uuid.New()
		line, err := NewRecipeIngredient(recipe.ID, id, decimal.RequireFromString(qty))
		require.NoError(t, err)
		ingredientIDs = append(ingredientIDs, id)
		lines = append(lines, *line)
	}
	require.NoError(t, recipe.ReplaceIngredients(lines))
	return recipe, ingredientIDs
}

func TestNewRecipe(t *testing.T) {
	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewRecipe(uuid.New(), "", decimal.NewFromInt(10))
		assert.Error(t, err)
	})

	t.Run("rejects non-positive yield", func(t *testing.T) {
		_, err := NewRecipe(uuid.New(), "Dough", decimal.Zero)
		assert.Error(t, err)

		_, err = NewRecipe(uuid.New(), "Dough", decimal.NewFromInt(-1))
		assert.Error(t, err)
	})

	t.Run("starts at version 1 with zero cost", func(t *testing.T) {
		recipe, err := NewRecipe(uuid.New(), "Dough", decimal.NewFromInt(10))
		require.NoError(t, err)
		assert.Equal(t, 1, recipe.Version)
		assert.True(t, recipe.TotalCost.IsZero())
		assert.True(t, recipe.Active)
	})
}

func TestReplaceIngredients(t *testing.T) {
	t.Run("rejects empty line list", func(t *testing.T) {
		recipe, err := NewRecipe(uuid.New(), "Dough", decimal.NewFromInt(10))
		require.NoError(t, err)
		assert.Error(t, recipe.ReplaceIngredients(nil))
	})

	t.Run("rejects non-positive quantities", func(t *testing.T) {
		recipe, err := NewRecipe(uuid.New(), "Dough", decimal.NewFromInt(10))
		require.NoError(t, err)
		err = recipe.ReplaceIngredients([]RecipeIngredient{
			{IngredientID: uuid.New(), QuantityUsed: decimal.Zero},
		})
		assert.Error(t, err)
	})

	t.Run("rebinds lines to the recipe", func(t *testing.T) {
		recipe, _ := recipeWithLines(t, "10", "5")
		require.Len(t, recipe.Ingredients, 1)
		assert.Equal(t, recipe.ID, recipe.Ingredients[0].RecipeID)
	})
}

func TestRecost(t *testing.T) {
	t.Run("snapshots unit costs and computes totals", func(t *testing.T) {
		recipe, ids := recipeWithLines(t, "10", "5")
		err := recipe.Recost(map[uuid.UUID]decimal.Decimal{
			ids[0]: decimal.RequireFromString("2.00"),
		})
		require.NoError(t, err)

		assert.Equal(t, "10", recipe.TotalCost.String())
		assert.Equal(t, "1", recipe.CostPerPortion.String())
		assert.True(t, recipe.Ingredients[0].UnitCostAtUse.Equal(decimal.RequireFromString("2.00")))
		assert.Equal(t, "10", recipe.Ingredients[0].TotalCost.String())
	})

	t.Run("total cost equals the sum of rounded line totals", func(t *testing.T) {
		recipe, ids := recipeWithLines(t, "3", "0.3333", "0.3333", "0.3333")
		costs := make(map[uuid.UUID]decimal.Decimal, len(ids))
		for _, id := range ids {
			costs[id] = decimal.RequireFromString("1.9999")
		}
		require.NoError(t, recipe.Recost(costs))

		sum := decimal.Zero
		for _, line := range recipe.Ingredients {
			assert.True(t, line.TotalCost.Exponent() >= -4, "line totals are persisted at scale 4")
			sum = sum.Add(line.TotalCost)
		}
		assert.True(t, recipe.TotalCost.Equal(sum))
	})

	t.Run("line totals round half-even", func(t *testing.T) {
		recipe, ids := recipeWithLines(t, "1", "0.5")
		require.NoError(t, recipe.Recost(map[uuid.UUID]decimal.Decimal{
			// 0.5 * 0.1231 = 0.06155 -> banker's rounding to 0.0616
			ids[0]: decimal.RequireFromString("0.1231"),
		}))
		assert.Equal(t, "0.0616", recipe.Ingredients[0].TotalCost.String())
	})

	t.Run("version increments on every recompute", func(t *testing.T) {
		recipe, ids := recipeWithLines(t, "10", "5")
		costs := map[uuid.UUID]decimal.Decimal{ids[0]: decimal.NewFromInt(2)}

		require.NoError(t, recipe.Recost(costs))
		assert.Equal(t, 2, recipe.Version)
		require.NoError(t, recipe.Recost(costs))
		assert.Equal(t, 3, recipe.Version)
	})

	t.Run("recomputing with unchanged costs is idempotent on values", func(t *testing.T) {
		recipe, ids := recipeWithLines(t, "10", "5")
		costs := map[uuid.UUID]decimal.Decimal{ids[0]: decimal.RequireFromString("2.00")}

		require.NoError(t, recipe.Recost(costs))
		total, perPortion := recipe.TotalCost, recipe.CostPerPortion
		require.NoError(t, recipe.Recost(costs))
		assert.True(t, recipe.TotalCost.Equal(total))
		assert.True(t, recipe.CostPerPortion.Equal(perPortion))
	})

	t.Run("missing unit cost fails", func(t *testing.T) {
		recipe, _ := recipeWithLines(t, "10", "5")
		err := recipe.Recost(map[uuid.UUID]decimal.Decimal{})
		assert.Error(t, err)
	})
}

func TestPortionCost(t *testing.T) {
	recipe, ids := recipeWithLines(t, "3", "1")
	require.NoError(t, recipe.Recost(map[uuid.UUID]decimal.Decimal{
		ids[0]: decimal.NewFromInt(1),
	}))

	// Unrounded: 1/3, not 0.3333
	portion := recipe.PortionCost()
	assert.True(t, portion.Mul(decimal.NewFromInt(3)).Equal(recipe.TotalCost))
}
