package costing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/restoops/backend/internal/domain/costing"
	"github.com/restoops/backend/internal/domain/shared"
	"github.com/restoops/backend/internal/infrastructure/logger"
	"github.com/restoops/backend/internal/infrastructure/queue"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MenuCostService owns the menu stage of the cascade: computed cost and
// margin recomputation, threshold monitoring and the approval flow that can
// kick off branch propagation.
type MenuCostService struct {
	menuItems costing.MenuItemRepository
	recipes   costing.RecipeRepository
	settings  costing.CompanySettingsRepository
	monitor   *MarginMonitor
	queue     queue.Enqueuer
	publisher shared.EventPublisher
}

// NewMenuCostService creates a menu cost service.
func NewMenuCostService(
	menuItems costing.MenuItemRepository,
	recipes costing.RecipeRepository,
	settings costing.CompanySettingsRepository,
	monitor *MarginMonitor,
	q queue.Enqueuer,
	publisher shared.EventPublisher,
) *MenuCostService {
	return &MenuCostService{
		menuItems: menuItems,
		recipes:   recipes,
		settings:  settings,
		monitor:   monitor,
		queue:     q,
		publisher: publisher,
	}
}

// RecalculateMenuCost refreshes the item's computed cost and margin from its
// linked recipe's current totals and runs the margin monitor. An item without
// a recipe is skipped: that is a valid state, not an error. Re-running with
// unchanged data produces identical values, so redelivery is safe.
func (s *MenuCostService) RecalculateMenuCost(ctx context.Context, menuItemID uuid.UUID) (skipped bool, err error) {
	item, err := s.menuItems.FindByID(ctx, menuItemID)
	if err != nil {
		return false, err
	}
	if !item.HasRecipe() {
		logger.L(ctx).Debug("menu item has no recipe, skipping cost update",
			zap.String("menu_item_id", menuItemID.String()),
		)
		return true, nil
	}

	recipe, err := s.recipes.FindByID(ctx, *item.RecipeID)
	if err != nil {
		return false, err
	}

	item.ApplyCost(recipe)
	if err := s.menuItems.Save(ctx, item); err != nil {
		return false, err
	}

	s.monitor.Check(ctx, item, s.marginThreshold(ctx, item.OrganizationID))

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, costing.NewMenuItemCostUpdatedEvent(item)); err != nil {
			logger.L(ctx).Warn("failed to publish menu cost update",
				zap.String("menu_item_id", item.ID.String()),
				zap.Error(err),
			)
		}
	}
	return false, nil
}

// ApproveMenuItem marks the item as approved and, when the organization has
// auto-propagation enabled, enqueues the branch fan-out job.
func (s *MenuCostService) ApproveMenuItem(ctx context.Context, menuItemID uuid.UUID) error {
	item, err := s.menuItems.FindByID(ctx, menuItemID)
	if err != nil {
		return err
	}

	item.Approve()
	if err := s.menuItems.Save(ctx, item); err != nil {
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, costing.NewMenuItemApprovedEvent(item)); err != nil {
			logger.L(ctx).Warn("failed to publish menu item approval",
				zap.String("menu_item_id", item.ID.String()),
				zap.Error(err),
			)
		}
	}

	if !s.autoPropagateEnabled(ctx, item.OrganizationID) {
		return nil
	}

	payload := MenuCascadePayload{MenuItemID: item.ID, OrganizationID: item.OrganizationID}
	if _, err := s.queue.Enqueue(ctx, JobMenuCascade, payload); err != nil {
		return err
	}
	return nil
}

// marginThreshold returns the organization's target margin, or nil when no
// settings row or no threshold is configured.
func (s *MenuCostService) marginThreshold(ctx context.Context, organizationID uuid.UUID) *decimal.Decimal {
	settings, err := s.settings.FindByOrganization(ctx, organizationID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			logger.L(ctx).Warn("failed to load company settings",
				zap.String("organization_id", organizationID.String()),
				zap.Error(err),
			)
		}
		return nil
	}
	return settings.TargetMarginThreshold
}

func (s *MenuCostService) autoPropagateEnabled(ctx context.Context, organizationID uuid.UUID) bool {
	settings, err := s.settings.FindByOrganization(ctx, organizationID)
	if err != nil {
		return false
	}
	return settings.AutoPropagateApprovedMenus
}
