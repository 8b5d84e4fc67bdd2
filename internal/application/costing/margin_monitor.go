package costing

import (
	"context"

	"github.com/restoops/backend/internal/domain/costing"
	"github.com/restoops/backend/internal/domain/shared"
	"github.com/restoops/backend/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MarginMonitor compares a freshly computed margin against the organization's
// configured target and raises a signal when it is breached. It does not
// deliver notifications itself; subscribers on the event bus do.
type MarginMonitor struct {
	publisher shared.EventPublisher
}

// NewMarginMonitor creates a margin monitor.
func NewMarginMonitor(publisher shared.EventPublisher) *MarginMonitor {
	return &MarginMonitor{publisher: publisher}
}

// Check emits a margin-below-threshold signal when the item's margin is below
// the target. A nil threshold or nil margin suppresses the signal without
// error. Returns whether a signal was raised.
func (m *MarginMonitor) Check(ctx context.Context, item *costing.MenuItem, threshold *decimal.Decimal) bool {
	if !item.MarginBelowThreshold(threshold) {
		return false
	}

	event := costing.NewMarginBelowThresholdEvent(item, *threshold)
	if m.publisher != nil {
		if err := m.publisher.Publish(ctx, event); err != nil {
			logger.L(ctx).Warn("failed to publish margin alert",
				zap.String("menu_item_id", item.ID.String()),
				zap.Error(err),
			)
		}
	}

	logger.L(ctx).Info("margin below threshold",
		zap.String("menu_item_id", item.ID.String()),
		zap.String("margin", item.Margin.String()),
		zap.String("threshold", threshold.String()),
	)
	return true
}
