package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/shared"
)

// CredentialModel is the persistence model for credential sets. Secret fields
// are stored together as a jsonb document; only one row exists per
// (organization, marketplace) pair.
type CredentialModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_credentials_org_marketplace,priority:1"`
	Marketplace    string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_credentials_org_marketplace,priority:2"`
	Fields         []byte    `gorm:"type:jsonb;not null"`
	IsActive       bool      `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName returns the table name for GORM
func (CredentialModel) TableName() string {
	return "api_credentials"
}

// ToDomain converts the persistence model to a domain credential set
func (m *CredentialModel) ToDomain() (*integration.CredentialSet, error) {
	var fields integration.CredentialFields
	if err := json.Unmarshal(m.Fields, &fields); err != nil {
		return nil, fmt.Errorf("decoding credential fields: %w", err)
	}
	return &integration.CredentialSet{
		OrganizationID: m.OrganizationID,
		Marketplace:    integration.Marketplace(m.Marketplace),
		Fields:         fields,
		IsActive:       m.IsActive,
		UpdatedAt:      m.UpdatedAt,
	}, nil
}

// credentialModelFromDomain converts a domain credential set to the
// persistence model
func credentialModelFromDomain(creds *integration.CredentialSet) (*CredentialModel, error) {
	fields, err := json.Marshal(creds.Fields)
	if err != nil {
		return nil, fmt.Errorf("encoding credential fields: %w", err)
	}
	now := time.Now()
	return &CredentialModel{
		ID:             uuid.New(),
		OrganizationID: creds.OrganizationID,
		Marketplace:    creds.Marketplace.String(),
		Fields:         fields,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// GormCredentialRepository implements integration.CredentialRepository using GORM
type GormCredentialRepository struct {
	db *gorm.DB
}

// NewGormCredentialRepository creates a new GormCredentialRepository
func NewGormCredentialRepository(db *gorm.DB) *GormCredentialRepository {
	return &GormCredentialRepository{db: db}
}

// FindActive returns the active credential set for the pair
func (r *GormCredentialRepository) FindActive(ctx context.Context, organizationID uuid.UUID, marketplace integration.Marketplace) (*integration.CredentialSet, error) {
	var model CredentialModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND marketplace = ? AND is_active = ?", organizationID, marketplace.String(), true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// ListByOrganization returns every credential set of an organization
func (r *GormCredentialRepository) ListByOrganization(ctx context.Context, organizationID uuid.UUID) ([]integration.CredentialSet, error) {
	var models []CredentialModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("marketplace ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	sets := make([]integration.CredentialSet, 0, len(models))
	for i := range models {
		creds, err := models[i].ToDomain()
		if err != nil {
			return nil, err
		}
		sets = append(sets, *creds)
	}
	return sets, nil
}

// Save inserts or replaces the credential set for its pair
func (r *GormCredentialRepository) Save(ctx context.Context, creds *integration.CredentialSet) error {
	model, err := credentialModelFromDomain(creds)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "organization_id"},
			{Name: "marketplace"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"fields", "is_active", "updated_at"}),
	}).Create(model).Error
}

// Delete removes the credential set for the pair
func (r *GormCredentialRepository) Delete(ctx context.Context, organizationID uuid.UUID, marketplace integration.Marketplace) error {
	result := r.db.WithContext(ctx).
		Where("organization_id = ? AND marketplace = ?", organizationID, marketplace.String()).
		Delete(&CredentialModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormCredentialRepository implements CredentialRepository interface
var _ integration.CredentialRepository = (*GormCredentialRepository)(nil)
