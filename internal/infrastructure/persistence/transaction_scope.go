package persistence

import (
	"context"

	appcosting "github.com/restoops/backend/internal/application/costing"
	"github.com/restoops/backend/internal/domain/costing"
	"gorm.io/gorm"
)

// GormTransactionScope implements the application TransactionScope on a GORM
// database. Every Execute call opens one database transaction; the
// repositories handed to fn all share it.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a transaction scope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn inside a database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appcosting.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTxRepositories{tx: tx})
	})
}

type gormTxRepositories struct {
	tx *gorm.DB
}

func (r *gormTxRepositories) Ingredients() costing.IngredientRepository {
	return NewGormIngredientRepository(r.tx)
}

func (r *gormTxRepositories) Batches() costing.IngredientBatchRepository {
	return NewGormIngredientBatchRepository(r.tx)
}

func (r *gormTxRepositories) CostHistory() costing.IngredientCostHistoryRepository {
	return NewGormIngredientCostHistoryRepository(r.tx)
}

func (r *gormTxRepositories) Recipes() costing.RecipeRepository {
	return NewGormRecipeRepository(r.tx)
}

func (r *gormTxRepositories) MenuItems() costing.MenuItemRepository {
	return NewGormMenuItemRepository(r.tx)
}

var _ appcosting.TransactionScope = (*GormTransactionScope)(nil)
