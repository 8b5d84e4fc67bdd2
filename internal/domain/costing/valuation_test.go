package costing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchAt(t *testing.T, ingredientID uuid.UUID, unitCost, quantity string, createdAt time.Time) IngredientBatch {
	t.Helper()
	b, err := NewIngredientBatch(ingredientID, decimal.RequireFromString(unitCost), decimal.RequireFromString(quantity))
	require.NoError(t, err)
	b.CreatedAt = createdAt
	return *b
}

func TestValueBatches(t *testing.T) {
	ingredientID := uuid.New()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("no batches yields nil costs without error", func(t *testing.T) {
		v := ValueBatches(nil)
		assert.Nil(t, v.AverageUnitCost)
		assert.Nil(t, v.FIFOUnitCost)
		assert.True(t, v.TotalQuantity.IsZero())
	})

	t.Run("single batch sets both costs", func(t *testing.T) {
		v := ValueBatches([]IngredientBatch{
			batchAt(t, ingredientID, "2.00", "10", base),
		})
		require.NotNil(t, v.AverageUnitCost)
		require.NotNil(t, v.FIFOUnitCost)
		assert.True(t, v.AverageUnitCost.Equal(decimal.RequireFromString("2.00")))
		assert.True(t, v.FIFOUnitCost.Equal(decimal.RequireFromString("2.00")))
		assert.True(t, v.TotalQuantity.Equal(decimal.NewFromInt(10)))
	})

	t.Run("average is weighted by remaining quantity", func(t *testing.T) {
		v := ValueBatches([]IngredientBatch{
			batchAt(t, ingredientID, "2.00", "10", base),
			batchAt(t, ingredientID, "4.00", "30", base.Add(time.Hour)),
		})
		// (10*2 + 30*4) / 40 = 3.5
		require.NotNil(t, v.AverageUnitCost)
		assert.True(t, v.AverageUnitCost.Equal(decimal.RequireFromString("3.5")))
	})

	t.Run("FIFO cost comes from the oldest open batch", func(t *testing.T) {
		v := ValueBatches([]IngredientBatch{
			batchAt(t, ingredientID, "4.00", "30", base.Add(time.Hour)),
			batchAt(t, ingredientID, "2.00", "10", base),
		})
		require.NotNil(t, v.FIFOUnitCost)
		assert.True(t, v.FIFOUnitCost.Equal(decimal.RequireFromString("2.00")))
	})

	t.Run("closed batches are excluded", func(t *testing.T) {
		closed := batchAt(t, ingredientID, "2.00", "10", base)
		closed.Closed = true
		v := ValueBatches([]IngredientBatch{
			closed,
			batchAt(t, ingredientID, "4.00", "30", base.Add(time.Hour)),
		})
		require.NotNil(t, v.FIFOUnitCost)
		assert.True(t, v.FIFOUnitCost.Equal(decimal.RequireFromString("4.00")))
		assert.True(t, v.AverageUnitCost.Equal(decimal.RequireFromString("4.00")))
	})

	t.Run("all batches closed yields nil costs", func(t *testing.T) {
		closed := batchAt(t, ingredientID, "2.00", "10", base)
		closed.Closed = true
		v := ValueBatches([]IngredientBatch{closed})
		assert.Nil(t, v.AverageUnitCost)
		assert.Nil(t, v.FIFOUnitCost)
	})

	t.Run("open batch drained to zero keeps FIFO but not average", func(t *testing.T) {
		drained := batchAt(t, ingredientID, "2.00", "10", base)
		drained.RemainingQuantity = decimal.Zero
		v := ValueBatches([]IngredientBatch{drained})
		require.NotNil(t, v.FIFOUnitCost)
		assert.True(t, v.FIFOUnitCost.Equal(decimal.RequireFromString("2.00")))
		assert.Nil(t, v.AverageUnitCost)
	})

	t.Run("average rounds half-even at scale 4", func(t *testing.T) {
		v := ValueBatches([]IngredientBatch{
			batchAt(t, ingredientID, "1.00", "1", base),
			batchAt(t, ingredientID, "2.00", "2", base.Add(time.Hour)),
		})
		// (1 + 4) / 3 = 1.666... -> 1.6667
		require.NotNil(t, v.AverageUnitCost)
		assert.Equal(t, "1.6667", v.AverageUnitCost.String())
	})
}

func TestNewIngredientBatch(t *testing.T) {
	t.Run("rejects negative unit cost", func(t *testing.T) {
		_, err := NewIngredientBatch(uuid.New(), decimal.NewFromInt(-1), decimal.NewFromInt(5))
		assert.Error(t, err)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewIngredientBatch(uuid.New(), decimal.NewFromInt(1), decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("accepts zero unit cost", func(t *testing.T) {
		b, err := NewIngredientBatch(uuid.New(), decimal.Zero, decimal.NewFromInt(5))
		require.NoError(t, err)
		assert.True(t, b.IsOpen())
	})
}
