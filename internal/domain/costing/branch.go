package costing

import (
	"github.com/google/uuid"
	"github.com/restoops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Branch is a physical location of an organization. Approved menu items are
// fanned out to every active branch.
type Branch struct {
	shared.BaseEntity
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name           string    `gorm:"not null"`
	Active         bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Branch) TableName() string {
	return "branches"
}

// NewBranch creates a new active branch.
func NewBranch(organizationID uuid.UUID, name string) (*Branch, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Branch name cannot be empty")
	}
	return &Branch{
		BaseEntity:     shared.NewBaseEntity(),
		OrganizationID: organizationID,
		Name:           name,
		Active:         true,
	}, nil
}

// BranchMenu links a menu item to a branch with an optional per-branch price
// override. The (BranchID, MenuItemID) pair is unique; propagation inserts are
// idempotent and silently skip existing pairs.
type BranchMenu struct {
	shared.BaseEntity
	BranchID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_branch_menu_pair,priority:1"`
	MenuItemID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_branch_menu_pair,priority:2"`
	PriceOverride *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Available     bool             `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (BranchMenu) TableName() string {
	return "branch_menus"
}

// NewBranchMenu links a menu item to a branch at the organization base price.
func NewBranchMenu(branchID, menuItemID uuid.UUID) *BranchMenu {
	return &BranchMenu{
		BaseEntity: shared.NewBaseEntity(),
		BranchID:   branchID,
		MenuItemID: menuItemID,
		Available:  true,
	}
}
