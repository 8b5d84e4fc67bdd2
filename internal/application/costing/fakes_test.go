package costing

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/restoops/backend/internal/domain/costing"
	"github.com/restoops/backend/internal/domain/shared"
)

// In-memory repository fakes. They hold live pointers, which is enough for
// single-goroutine service tests.

type fakeIngredientRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*costing.Ingredient
}

func newFakeIngredientRepo() *fakeIngredientRepo {
	return &fakeIngredientRepo{items: make(map[uuid.UUID]*costing.Ingredient)}
}

func (r *fakeIngredientRepo) FindByID(_ context.Context, id uuid.UUID) (*costing.Ingredient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ing, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return ing, nil
}

func (r *fakeIngredientRepo) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*costing.Ingredient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make(map[uuid.UUID]*costing.Ingredient, len(ids))
	for _, id := range ids {
		if ing, ok := r.items[id]; ok {
			result[id] = ing
		}
	}
	return result, nil
}

func (r *fakeIngredientRepo) Save(_ context.Context, ingredient *costing.Ingredient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[ingredient.ID] = ingredient
	return nil
}

type fakeBatchRepo struct {
	mu      sync.Mutex
	batches map[uuid.UUID]*costing.IngredientBatch
}

func newFakeBatchRepo() *fakeBatchRepo {
	return &fakeBatchRepo{batches: make(map[uuid.UUID]*costing.IngredientBatch)}
}

func (r *fakeBatchRepo) FindOpenByIngredient(_ context.Context, ingredientID uuid.UUID) ([]costing.IngredientBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var open []costing.IngredientBatch
	for _, b := range r.batches {
		if b.IngredientID == ingredientID && b.IsOpen() {
			open = append(open, *b)
		}
	}
	return open, nil
}

func (r *fakeBatchRepo) Save(_ context.Context, batch *costing.IngredientBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[batch.ID] = batch
	return nil
}

func (r *fakeBatchRepo) close(batchID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.batches[batchID]; ok {
		b.Closed = true
	}
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []costing.IngredientCostHistory
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{}
}

func (r *fakeHistoryRepo) Append(_ context.Context, entry *costing.IngredientCostHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) FindByIngredient(_ context.Context, ingredientID uuid.UUID, limit int) ([]costing.IngredientCostHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []costing.IngredientCostHistory
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].IngredientID != ingredientID {
			continue
		}
		result = append(result, r.entries[i])
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (r *fakeHistoryRepo) count(ingredientID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.IngredientID == ingredientID {
			n++
		}
	}
	return n
}

type fakeRecipeRepo struct {
	mu      sync.Mutex
	recipes map[uuid.UUID]*costing.Recipe
}

func newFakeRecipeRepo() *fakeRecipeRepo {
	return &fakeRecipeRepo{recipes: make(map[uuid.UUID]*costing.Recipe)}
}

func (r *fakeRecipeRepo) FindByID(_ context.Context, id uuid.UUID) (*costing.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	recipe, ok := r.recipes[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return recipe, nil
}

func (r *fakeRecipeRepo) FindIDsByIngredient(_ context.Context, ingredientID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for _, recipe := range r.recipes {
		if !recipe.Active {
			continue
		}
		for _, line := range recipe.Ingredients {
			if line.IngredientID == ingredientID {
				ids = append(ids, recipe.ID)
				break
			}
		}
	}
	return ids, nil
}

func (r *fakeRecipeRepo) Save(_ context.Context, recipe *costing.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recipes[recipe.ID] = recipe
	return nil
}

func (r *fakeRecipeRepo) ReplaceIngredients(_ context.Context, recipeID uuid.UUID, lines []costing.RecipeIngredient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if recipe, ok := r.recipes[recipeID]; ok {
		recipe.Ingredients = lines
	}
	return nil
}

type fakeMenuItemRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*costing.MenuItem
}

func newFakeMenuItemRepo() *fakeMenuItemRepo {
	return &fakeMenuItemRepo{items: make(map[uuid.UUID]*costing.MenuItem)}
}

func (r *fakeMenuItemRepo) FindByID(_ context.Context, id uuid.UUID) (*costing.MenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

func (r *fakeMenuItemRepo) FindActiveIDsByRecipe(_ context.Context, recipeID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for _, item := range r.items {
		if item.Active && item.RecipeID != nil && *item.RecipeID == recipeID {
			ids = append(ids, item.ID)
		}
	}
	return ids, nil
}

func (r *fakeMenuItemRepo) Save(_ context.Context, item *costing.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item
	return nil
}

type fakeBranchRepo struct {
	mu       sync.Mutex
	branches map[uuid.UUID]*costing.Branch
}

func newFakeBranchRepo() *fakeBranchRepo {
	return &fakeBranchRepo{branches: make(map[uuid.UUID]*costing.Branch)}
}

func (r *fakeBranchRepo) FindActiveByOrganization(_ context.Context, organizationID uuid.UUID) ([]costing.Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []costing.Branch
	for _, b := range r.branches {
		if b.OrganizationID == organizationID && b.Active {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (r *fakeBranchRepo) Save(_ context.Context, branch *costing.Branch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.branches[branch.ID] = branch
	return nil
}

type branchMenuKey struct {
	branchID   uuid.UUID
	menuItemID uuid.UUID
}

type fakeBranchMenuRepo struct {
	mu   sync.Mutex
	rows map[branchMenuKey]*costing.BranchMenu
}

func newFakeBranchMenuRepo() *fakeBranchMenuRepo {
	return &fakeBranchMenuRepo{rows: make(map[branchMenuKey]*costing.BranchMenu)}
}

func (r *fakeBranchMenuRepo) Insert(_ context.Context, bm *costing.BranchMenu) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := branchMenuKey{branchID: bm.BranchID, menuItemID: bm.MenuItemID}
	if _, exists := r.rows[key]; exists {
		return false, nil
	}
	r.rows[key] = bm
	return true, nil
}

func (r *fakeBranchMenuRepo) FindByMenuItem(_ context.Context, menuItemID uuid.UUID) ([]costing.BranchMenu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []costing.BranchMenu
	for _, bm := range r.rows {
		if bm.MenuItemID == menuItemID {
			result = append(result, *bm)
		}
	}
	return result, nil
}

type fakeSettingsRepo struct {
	mu       sync.Mutex
	settings map[uuid.UUID]*costing.CompanySettings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: make(map[uuid.UUID]*costing.CompanySettings)}
}

func (r *fakeSettingsRepo) FindByOrganization(_ context.Context, organizationID uuid.UUID) (*costing.CompanySettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.settings[organizationID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return s, nil
}

func (r *fakeSettingsRepo) Save(_ context.Context, settings *costing.CompanySettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[settings.OrganizationID] = settings
	return nil
}

// recordingPublisher captures published domain events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) countByType(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, ev := range p.events {
		if ev.EventType() == eventType {
			n++
		}
	}
	return n
}

var (
	_ costing.IngredientRepository            = (*fakeIngredientRepo)(nil)
	_ costing.IngredientBatchRepository       = (*fakeBatchRepo)(nil)
	_ costing.IngredientCostHistoryRepository = (*fakeHistoryRepo)(nil)
	_ costing.RecipeRepository                = (*fakeRecipeRepo)(nil)
	_ costing.MenuItemRepository              = (*fakeMenuItemRepo)(nil)
	_ costing.BranchRepository                = (*fakeBranchRepo)(nil)
	_ costing.BranchMenuRepository            = (*fakeBranchMenuRepo)(nil)
	_ costing.CompanySettingsRepository       = (*fakeSettingsRepo)(nil)
	_ shared.EventPublisher                   = (*recordingPublisher)(nil)
)
