package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/restoops/backend/internal/domain/costing"
	"github.com/restoops/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormIngredientRepository implements IngredientRepository using GORM
type GormIngredientRepository struct {
	db *gorm.DB
}

// NewGormIngredientRepository creates a new GormIngredientRepository
func NewGormIngredientRepository(db *gorm.DB) *GormIngredientRepository {
	return &GormIngredientRepository{db: db}
}

// FindByID finds an ingredient by its ID
func (r *GormIngredientRepository) FindByID(ctx context.Context, id uuid.UUID) (*costing.Ingredient, error) {
	var ingredient costing.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ingredient, nil
}

// FindByIDs loads a set of ingredients keyed by id; missing ids are absent
// from the result
func (r *GormIngredientRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*costing.Ingredient, error) {
	result := make(map[uuid.UUID]*costing.Ingredient, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var ingredients []costing.Ingredient
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, err
	}
	for idx := range ingredients {
		result[ingredients[idx].ID] = &ingredients[idx]
	}
	return result, nil
}

// Save creates or updates an ingredient
func (r *GormIngredientRepository) Save(ctx context.Context, ingredient *costing.Ingredient) error {
	return r.db.WithContext(ctx).Save(ingredient).Error
}

// GormIngredientBatchRepository implements IngredientBatchRepository using GORM
type GormIngredientBatchRepository struct {
	db *gorm.DB
}

// NewGormIngredientBatchRepository creates a new GormIngredientBatchRepository
func NewGormIngredientBatchRepository(db *gorm.DB) *GormIngredientBatchRepository {
	return &GormIngredientBatchRepository{db: db}
}

// FindOpenByIngredient finds all open (non-closed) batches for an ingredient,
// oldest first
func (r *GormIngredientBatchRepository) FindOpenByIngredient(ctx context.Context, ingredientID uuid.UUID) ([]costing.IngredientBatch, error) {
	var batches []costing.IngredientBatch
	if err := r.db.WithContext(ctx).
		Where("ingredient_id = ? AND closed = ?", ingredientID, false).
		Order("created_at ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// Save creates or updates a batch
func (r *GormIngredientBatchRepository) Save(ctx context.Context, batch *costing.IngredientBatch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

// GormIngredientCostHistoryRepository implements the append-only cost history
type GormIngredientCostHistoryRepository struct {
	db *gorm.DB
}

// NewGormIngredientCostHistoryRepository creates a new GormIngredientCostHistoryRepository
func NewGormIngredientCostHistoryRepository(db *gorm.DB) *GormIngredientCostHistoryRepository {
	return &GormIngredientCostHistoryRepository{db: db}
}

// Append inserts a history row; rows are never updated or deleted
func (r *GormIngredientCostHistoryRepository) Append(ctx context.Context, entry *costing.IngredientCostHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByIngredient returns the most recent entries for an ingredient, newest
// first
func (r *GormIngredientCostHistoryRepository) FindByIngredient(ctx context.Context, ingredientID uuid.UUID, limit int) ([]costing.IngredientCostHistory, error) {
	var entries []costing.IngredientCostHistory
	query := r.db.WithContext(ctx).
		Where("ingredient_id = ?", ingredientID).
		Order("recorded_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

var (
	_ costing.IngredientRepository            = (*GormIngredientRepository)(nil)
	_ costing.IngredientBatchRepository       = (*GormIngredientBatchRepository)(nil)
	_ costing.IngredientCostHistoryRepository = (*GormIngredientCostHistoryRepository)(nil)
)
