package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/restoops/backend/internal/domain/costing"
	"github.com/restoops/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCompanySettingsRepository implements CompanySettingsRepository using GORM
type GormCompanySettingsRepository struct {
	db *gorm.DB
}

// NewGormCompanySettingsRepository creates a new GormCompanySettingsRepository
func NewGormCompanySettingsRepository(db *gorm.DB) *GormCompanySettingsRepository {
	return &GormCompanySettingsRepository{db: db}
}

// FindByOrganization returns the settings row of an organization
func (r *GormCompanySettingsRepository) FindByOrganization(ctx context.Context, organizationID uuid.UUID) (*costing.CompanySettings, error) {
	var settings costing.CompanySettings
	if err := r.db.WithContext(ctx).
		First(&settings, "organization_id = ?", organizationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &settings, nil
}

// Save creates or updates a settings row
func (r *GormCompanySettingsRepository) Save(ctx context.Context, settings *costing.CompanySettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}

var _ costing.CompanySettingsRepository = (*GormCompanySettingsRepository)(nil)
