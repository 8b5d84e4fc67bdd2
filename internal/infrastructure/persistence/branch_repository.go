package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/restoops/backend/internal/domain/costing"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBranchRepository implements BranchRepository using GORM
type GormBranchRepository struct {
	db *gorm.DB
}

// NewGormBranchRepository creates a new GormBranchRepository
func NewGormBranchRepository(db *gorm.DB) *GormBranchRepository {
	return &GormBranchRepository{db: db}
}

// FindActiveByOrganization returns all active branches of an organization
func (r *GormBranchRepository) FindActiveByOrganization(ctx context.Context, organizationID uuid.UUID) ([]costing.Branch, error) {
	var branches []costing.Branch
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND active = ?", organizationID, true).
		Order("created_at ASC").
		Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}

// Save creates or updates a branch
func (r *GormBranchRepository) Save(ctx context.Context, branch *costing.Branch) error {
	return r.db.WithContext(ctx).Save(branch).Error
}

// GormBranchMenuRepository implements BranchMenuRepository using GORM
type GormBranchMenuRepository struct {
	db *gorm.DB
}

// NewGormBranchMenuRepository creates a new GormBranchMenuRepository
func NewGormBranchMenuRepository(db *gorm.DB) *GormBranchMenuRepository {
	return &GormBranchMenuRepository{db: db}
}

// Insert inserts the row unless the (branch, menu item) pair already exists.
// Uses ON CONFLICT DO NOTHING so concurrent propagations of the same item
// stay idempotent.
func (r *GormBranchMenuRepository) Insert(ctx context.Context, bm *costing.BranchMenu) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "branch_id"}, {Name: "menu_item_id"}},
			DoNothing: true,
		}).
		Create(bm)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindByMenuItem returns all branch assignments of a menu item
func (r *GormBranchMenuRepository) FindByMenuItem(ctx context.Context, menuItemID uuid.UUID) ([]costing.BranchMenu, error) {
	var rows []costing.BranchMenu
	if err := r.db.WithContext(ctx).
		Where("menu_item_id = ?", menuItemID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

var (
	_ costing.BranchRepository     = (*GormBranchRepository)(nil)
	_ costing.BranchMenuRepository = (*GormBranchMenuRepository)(nil)
)
