package costing

import (
	"context"

	"github.com/google/uuid"
	"github.com/restoops/backend/internal/domain/costing"
	"github.com/restoops/backend/internal/domain/shared"
	"github.com/restoops/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// PropagationResult reports how a branch fan-out went: how many branch menu
// rows were newly created versus the total number of active branches.
type PropagationResult struct {
	Created int
	Total   int
}

// BranchMenuService replicates an approved menu item into every active branch
// of its organization. Propagation is idempotent: existing branch/menu pairs
// are silently skipped, so re-running the fan-out never creates duplicates.
type BranchMenuService struct {
	menuItems   costing.MenuItemRepository
	branches    costing.BranchRepository
	branchMenus costing.BranchMenuRepository
}

// NewBranchMenuService creates a branch menu service.
func NewBranchMenuService(
	menuItems costing.MenuItemRepository,
	branches costing.BranchRepository,
	branchMenus costing.BranchMenuRepository,
) *BranchMenuService {
	return &BranchMenuService{
		menuItems:   menuItems,
		branches:    branches,
		branchMenus: branchMenus,
	}
}

// PropagateMenuItem builds one BranchMenu row per active branch for the menu
// item, skipping pairs that already exist.
func (s *BranchMenuService) PropagateMenuItem(ctx context.Context, organizationID, menuItemID uuid.UUID) (PropagationResult, error) {
	item, err := s.menuItems.FindByID(ctx, menuItemID)
	if err != nil {
		return PropagationResult{}, err
	}
	if item.OrganizationID != organizationID {
		return PropagationResult{}, shared.ErrNotFound
	}

	branches, err := s.branches.FindActiveByOrganization(ctx, organizationID)
	if err != nil {
		return PropagationResult{}, err
	}

	result := PropagationResult{Total: len(branches)}
	for _, branch := range branches {
		created, err := s.branchMenus.Insert(ctx, costing.NewBranchMenu(branch.ID, item.ID))
		if err != nil {
			return result, err
		}
		if created {
			result.Created++
		}
	}

	logger.L(ctx).Info("menu item propagated to branches",
		zap.String("menu_item_id", menuItemID.String()),
		zap.Int("created", result.Created),
		zap.Int("total", result.Total),
	)
	return result, nil
}
