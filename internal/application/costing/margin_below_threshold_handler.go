package costing

import (
	"context"

	"github.com/restoops/backend/internal/domain/costing"
	"github.com/restoops/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MarginAlert is the notification payload handed to the alert notifier when a
// menu item's margin breaches the organization target.
type MarginAlert struct {
	OrganizationID string `json:"organization_id"`
	MenuItemID     string `json:"menu_item_id"`
	Margin         string `json:"margin"`
	Threshold      string `json:"threshold"`
}

// MarginAlertNotifier delivers margin alerts. Implementations can support
// different channels (in-app, email, SMS); delivery itself lives outside this
// subsystem.
type MarginAlertNotifier interface {
	SendAlert(ctx context.Context, alert MarginAlert) error
}

// MarginBelowThresholdHandler subscribes to margin breach signals raised by
// the margin monitor and forwards them to the configured notifier.
type MarginBelowThresholdHandler struct {
	logger   *zap.Logger
	notifier MarginAlertNotifier
}

// NewMarginBelowThresholdHandler creates the handler. Without a notifier the
// breach is only logged.
func NewMarginBelowThresholdHandler(logger *zap.Logger) *MarginBelowThresholdHandler {
	return &MarginBelowThresholdHandler{logger: logger}
}

// WithNotifier sets the notifier for alert delivery.
func (h *MarginBelowThresholdHandler) WithNotifier(notifier MarginAlertNotifier) *MarginBelowThresholdHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *MarginBelowThresholdHandler) EventTypes() []string {
	return []string{costing.EventTypeMarginBelowThreshold}
}

// Handle processes a margin breach signal.
func (h *MarginBelowThresholdHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	breach, ok := event.(*costing.MarginBelowThresholdEvent)
	if !ok {
		return nil
	}

	h.logger.Warn("menu item margin below organization target",
		zap.String("menu_item_id", breach.MenuItemID.String()),
		zap.String("margin", breach.Margin.String()),
		zap.String("threshold", breach.Threshold.String()),
	)

	if h.notifier == nil {
		return nil
	}
	return h.notifier.SendAlert(ctx, MarginAlert{
		OrganizationID: breach.OrganizationID().String(),
		MenuItemID:     breach.MenuItemID.String(),
		Margin:         breach.Margin.String(),
		Threshold:      breach.Threshold.String(),
	})
}

var _ shared.EventHandler = (*MarginBelowThresholdHandler)(nil)
