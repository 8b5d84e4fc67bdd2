package costing

import (
	"github.com/google/uuid"
	"github.com/restoops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CompanySettings holds per-organization costing configuration. One row per
// organization.
type CompanySettings struct {
	shared.BaseEntity
	OrganizationID             uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex"`
	TargetMarginThreshold      *decimal.Decimal `gorm:"type:decimal(18,4)"` // fraction; nil disables margin alerts
	AutoPropagateApprovedMenus bool             `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (CompanySettings) TableName() string {
	return "company_settings"
}

// NewCompanySettings creates settings with margin alerts disabled.
func NewCompanySettings(organizationID uuid.UUID) *CompanySettings {
	return &CompanySettings{
		BaseEntity:     shared.NewBaseEntity(),
		OrganizationID: organizationID,
	}
}

// SetTargetMargin configures the margin alert threshold.
func (s *CompanySettings) SetTargetMargin(threshold decimal.Decimal) error {
	if threshold.IsNegative() || threshold.GreaterThan(decimal.NewFromInt(1)) {
		return shared.NewDomainError("INVALID_THRESHOLD", "Margin threshold must be a fraction between 0 and 1")
	}
	s.TargetMarginThreshold = &threshold
	return nil
}
