package costing

import (
	"context"

	"github.com/restoops/backend/internal/domain/costing"
)

// TransactionScope provides transactional access to the cost-ledger
// repositories. Each cascade stage wraps its own entity's read-modify-write in
// one scope; there is deliberately no cross-stage transaction.
type TransactionScope interface {
	// Execute runs fn inside a database transaction. An error from fn rolls
	// the transaction back, otherwise it is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the cost-ledger repositories bound to the
// current transaction.
type TransactionalRepositories interface {
	Ingredients() costing.IngredientRepository
	Batches() costing.IngredientBatchRepository
	CostHistory() costing.IngredientCostHistoryRepository
	Recipes() costing.RecipeRepository
	MenuItems() costing.MenuItemRepository
}

// NoOpTransactionScope runs the function against plain repositories without a
// real transaction. Used in tests.
type NoOpTransactionScope struct {
	ingredients costing.IngredientRepository
	batches     costing.IngredientBatchRepository
	history     costing.IngredientCostHistoryRepository
	recipes     costing.RecipeRepository
	menuItems   costing.MenuItemRepository
}

// NewNoOpTransactionScope creates a scope over the given repositories.
func NewNoOpTransactionScope(
	ingredients costing.IngredientRepository,
	batches costing.IngredientBatchRepository,
	history costing.IngredientCostHistoryRepository,
	recipes costing.RecipeRepository,
	menuItems costing.MenuItemRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		ingredients: ingredients,
		batches:     batches,
		history:     history,
		recipes:     recipes,
		menuItems:   menuItems,
	}
}

// Execute runs fn without transactional guarantees.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Ingredients returns the ingredient repository.
func (s *NoOpTransactionScope) Ingredients() costing.IngredientRepository { return s.ingredients }

// Batches returns the batch repository.
func (s *NoOpTransactionScope) Batches() costing.IngredientBatchRepository { return s.batches }

// CostHistory returns the cost history repository.
func (s *NoOpTransactionScope) CostHistory() costing.IngredientCostHistoryRepository {
	return s.history
}

// Recipes returns the recipe repository.
func (s *NoOpTransactionScope) Recipes() costing.RecipeRepository { return s.recipes }

// MenuItems returns the menu item repository.
func (s *NoOpTransactionScope) MenuItems() costing.MenuItemRepository { return s.menuItems }
