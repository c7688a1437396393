package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/proserv/engagement-api/internal/models"
)

// GormRoleRepository is a GORM implementation of RoleRepository
type GormRoleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new RoleRepository
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &GormRoleRepository{db: db}
}

// ListActive returns non-archived roles ordered by name
func (r *GormRoleRepository) ListActive(organizationID string) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.
		Where("organization_id = ? AND archived_at IS NULL", organizationID).
		Order("name asc").
		Find(&roles).Error
	return roles, err
}

// List returns roles, optionally including archived ones. With archived
// included, active roles sort first.
func (r *GormRoleRepository) List(organizationID string, includeArchived bool) ([]models.Role, error) {
	query := r.db.Where("organization_id = ?", organizationID)

	if includeArchived {
		query = query.Order("CASE WHEN archived_at IS NULL THEN 0 ELSE 1 END, name asc")
	} else {
		query = query.Where("archived_at IS NULL").Order("name asc")
	}

	var roles []models.Role
	err := query.Find(&roles).Error
	return roles, err
}

// CountByArchiveState counts active and archived roles
func (r *GormRoleRepository) CountByArchiveState(organizationID string) (int64, int64, error) {
	var active, archived int64

	if err := r.db.Model(&models.Role{}).
		Where("organization_id = ? AND archived_at IS NULL", organizationID).
		Count(&active).Error; err != nil {
		return 0, 0, err
	}

	if err := r.db.Model(&models.Role{}).
		Where("organization_id = ? AND archived_at IS NOT NULL", organizationID).
		Count(&archived).Error; err != nil {
		return 0, 0, err
	}

	return active, archived, nil
}

// FindByID finds a role scoped to the organization
func (r *GormRoleRepository) FindByID(organizationID, id string) (*models.Role, error) {
	var role models.Role
	if err := r.db.
		Where("id = ? AND organization_id = ?", id, organizationID).
		First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// Create creates a new role
func (r *GormRoleRepository) Create(role *models.Role) error {
	return r.db.Create(role).Error
}

// UpdateFields applies a partial update to a role
func (r *GormRoleRepository) UpdateFields(id string, fields map[string]interface{}) error {
	return r.db.Model(&models.Role{}).Where("id = ?", id).Updates(fields).Error
}

// Archive stamps the role's archived_at
func (r *GormRoleRepository) Archive(id string, archivedAt time.Time) error {
	return r.db.Model(&models.Role{}).
		Where("id = ?", id).
		Update("archived_at", archivedAt).Error
}
