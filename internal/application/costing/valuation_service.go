package costing

import (
	"context"

	"github.com/google/uuid"
	"github.com/restoops/backend/internal/domain/costing"
	"github.com/restoops/backend/internal/domain/shared"
	"github.com/restoops/backend/internal/infrastructure/logger"
	"github.com/restoops/backend/internal/infrastructure/queue"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ValuationService derives an ingredient's weighted-average and FIFO unit
// costs from its open batch set and persists them. When a persisted cost
// changes it appends a cost history row and enqueues the ingredient fan-out
// job that drives the rest of the cascade.
type ValuationService struct {
	tx        TransactionScope
	queue     queue.Enqueuer
	publisher shared.EventPublisher
}

// NewValuationService creates a valuation service.
func NewValuationService(tx TransactionScope, q queue.Enqueuer, publisher shared.EventPublisher) *ValuationService {
	return &ValuationService{tx: tx, queue: q, publisher: publisher}
}

// RevalueIngredient recomputes and persists both unit costs for the
// ingredient. An ingredient with zero open batches is valid: both costs go to
// nil without error. Returns whether a persisted cost changed.
//
// The fan-out job is enqueued only after the valuation transaction commits,
// so downstream recipe recomputes always observe the new costs.
func (s *ValuationService) RevalueIngredient(ctx context.Context, ingredientID uuid.UUID) (bool, error) {
	var changed *costing.Ingredient

	err := s.tx.Execute(ctx, func(repos TransactionalRepositories) error {
		ingredient, err := repos.Ingredients().FindByID(ctx, ingredientID)
		if err != nil {
			return err
		}

		batches, err := repos.Batches().FindOpenByIngredient(ctx, ingredientID)
		if err != nil {
			return err
		}

		valuation := costing.ValueBatches(batches)
		if !ingredient.ApplyValuation(valuation) {
			return nil
		}

		if err := repos.Ingredients().Save(ctx, ingredient); err != nil {
			return err
		}

		entry := costing.NewIngredientCostHistory(
			ingredient.ID,
			ingredient.EffectiveUnitCost(),
			costing.CostReasonBatchChange,
		)
		if err := repos.CostHistory().Append(ctx, entry); err != nil {
			return err
		}

		changed = ingredient
		return nil
	})
	if err != nil {
		return false, err
	}
	if changed == nil {
		return false, nil
	}

	payload := IngredientCostUpdatePayload{IngredientID: changed.ID}
	if _, err := s.queue.Enqueue(ctx, JobIngredientCostUpdate, payload); err != nil {
		// The valuation is committed; returning the error lets the queue
		// retry the triggering job, which re-runs to the same state and
		// enqueues again.
		return true, err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, costing.NewIngredientCostChangedEvent(changed)); err != nil {
			logger.L(ctx).Warn("failed to publish ingredient cost change",
				zap.String("ingredient_id", changed.ID.String()),
				zap.Error(err),
			)
		}
	}

	logger.L(ctx).Info("ingredient revalued",
		zap.String("ingredient_id", changed.ID.String()),
		zap.String("effective_unit_cost", changed.EffectiveUnitCost().String()),
	)
	return true, nil
}

// SetManualCost records an operator-entered unit cost for the ingredient and
// drives the same fan-out as a batch-driven change. A no-op edit (same cost)
// appends no history and enqueues nothing.
func (s *ValuationService) SetManualCost(ctx context.Context, ingredientID uuid.UUID, unitCost decimal.Decimal) error {
	if unitCost.LessThan(decimal.Zero) {
		return shared.NewDomainError("INVALID_COST", "Manual unit cost cannot be negative")
	}

	var changed *costing.Ingredient
	err := s.tx.Execute(ctx, func(repos TransactionalRepositories) error {
		ingredient, err := repos.Ingredients().FindByID(ctx, ingredientID)
		if err != nil {
			return err
		}
		if !ingredient.ApplyManualCost(unitCost) {
			return nil
		}
		if err := repos.Ingredients().Save(ctx, ingredient); err != nil {
			return err
		}

		entry := costing.NewIngredientCostHistory(
			ingredient.ID,
			ingredient.EffectiveUnitCost(),
			costing.CostReasonManualEdit,
		)
		if err := repos.CostHistory().Append(ctx, entry); err != nil {
			return err
		}

		changed = ingredient
		return nil
	})
	if err != nil {
		return err
	}
	if changed == nil {
		return nil
	}

	payload := IngredientCostUpdatePayload{IngredientID: changed.ID}
	if _, err := s.queue.Enqueue(ctx, JobIngredientCostUpdate, payload); err != nil {
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, costing.NewIngredientCostChangedEvent(changed)); err != nil {
			logger.L(ctx).Warn("failed to publish ingredient cost change",
				zap.String("ingredient_id", changed.ID.String()),
				zap.Error(err),
			)
		}
	}

	logger.L(ctx).Info("ingredient cost manually set",
		zap.String("ingredient_id", changed.ID.String()),
		zap.String("unit_cost", changed.EffectiveUnitCost().String()),
	)
	return nil
}

// RecordStockReceipt opens a new batch for the ingredient and enqueues the
// batch-change job so the ingredient is revalued asynchronously.
func (s *ValuationService) RecordStockReceipt(ctx context.Context, ingredientID uuid.UUID, quantity, unitCost decimal.Decimal) (*costing.IngredientBatch, error) {
	batch, err := costing.NewIngredientBatch(ingredientID, unitCost, quantity)
	if err != nil {
		return nil, err
	}

	err = s.tx.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.Ingredients().FindByID(ctx, ingredientID); err != nil {
			return err
		}
		return repos.Batches().Save(ctx, batch)
	})
	if err != nil {
		return nil, err
	}

	payload := InventoryBatchChangePayload{IngredientID: ingredientID}
	if _, err := s.queue.Enqueue(ctx, JobInventoryBatchChange, payload); err != nil {
		return batch, err
	}
	return batch, nil
}

// CostHistory returns the most recent cost changes for an ingredient, newest
// first.
func (s *ValuationService) CostHistory(ctx context.Context, ingredientID uuid.UUID, limit int) ([]costing.IngredientCostHistory, error) {
	var history []costing.IngredientCostHistory
	err := s.tx.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		history, err = repos.CostHistory().FindByIngredient(ctx, ingredientID, limit)
		return err
	})
	return history, err
}
