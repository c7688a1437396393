package repository

import (
	"gorm.io/gorm"

	"github.com/proserv/engagement-api/internal/models"
)

// GormOrganizationRepository is a GORM implementation of OrganizationRepository
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// Create creates a new organization
func (r *GormOrganizationRepository) Create(org *models.Organization) error {
	return r.db.Create(org).Error
}

// FindByID finds an organization by ID
func (r *GormOrganizationRepository) FindByID(id string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.First(&org, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// FindEarliest returns the earliest-created organization
func (r *GormOrganizationRepository) FindEarliest() (*models.Organization, error) {
	var org models.Organization
	if err := r.db.Order("created_at asc").First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}
