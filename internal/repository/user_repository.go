package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/proserv/engagement-api/internal/models"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// FindByIdentity finds a user by id or email. The OR lookup tolerates
// identity-provider churn where a caller keeps their email but gets a new id.
func (r *GormUserRepository) FindByIdentity(id, email string) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Organization").
		Where("id = ? OR email = ?", id, email).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindInOrganization finds a user by id or email within one organization
func (r *GormUserRepository) FindInOrganization(organizationID, id, email string) (*models.User, error) {
	var user models.User
	if err := r.db.
		Where("organization_id = ?", organizationID).
		Where("id = ? OR email = ?", id, email).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Upsert creates the user or refreshes its identity fields by id
func (r *GormUserRepository) Upsert(user *models.User) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"email", "given_name", "family_name", "organization_id",
			}),
		}).
		Create(user).Error
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}
