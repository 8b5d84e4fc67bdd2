package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/restoops/backend/internal/domain/costing"
	"github.com/restoops/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormRecipeRepository implements RecipeRepository using GORM
type GormRecipeRepository struct {
	db *gorm.DB
}

// NewGormRecipeRepository creates a new GormRecipeRepository
func NewGormRecipeRepository(db *gorm.DB) *GormRecipeRepository {
	return &GormRecipeRepository{db: db}
}

// FindByID loads a recipe together with its ingredient lines
func (r *GormRecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*costing.Recipe, error) {
	var recipe costing.Recipe
	if err := r.db.WithContext(ctx).
		Preload("Ingredients").
		First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// FindIDsByIngredient returns the distinct ids of active recipes referencing
// the ingredient
func (r *GormRecipeRepository) FindIDsByIngredient(ctx context.Context, ingredientID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&costing.RecipeIngredient{}).
		Distinct("recipe_ingredients.recipe_id").
		Joins("JOIN recipes ON recipes.id = recipe_ingredients.recipe_id").
		Where("recipe_ingredients.ingredient_id = ? AND recipes.active = ?", ingredientID, true).
		Pluck("recipe_ingredients.recipe_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Save persists the recipe and its current ingredient lines. Association
// saving leaves existing child rows untouched, which would lose the cost
// snapshots written by a recost, so each line is saved explicitly; Save falls
// back to an insert for lines that do not exist yet.
func (r *GormRecipeRepository) Save(ctx context.Context, recipe *costing.Recipe) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit("Ingredients").Save(recipe).Error; err != nil {
		return err
	}
	for i := range recipe.Ingredients {
		if err := db.Save(&recipe.Ingredients[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// ReplaceIngredients deletes the recipe's existing lines and inserts the
// given ones. Runs inside the caller's transaction scope, so the delete and
// insert commit or roll back together.
func (r *GormRecipeRepository) ReplaceIngredients(ctx context.Context, recipeID uuid.UUID, lines []costing.RecipeIngredient) error {
	if err := r.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Delete(&costing.RecipeIngredient{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

var _ costing.RecipeRepository = (*GormRecipeRepository)(nil)
