package bootstrap

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/proserv/engagement-api/internal/logger"
	"github.com/proserv/engagement-api/internal/models"
)

const (
	defaultOrganizationName = "Primary Services Org"
	defaultOwnerID          = "engagement-lead"
	defaultOwnerEmail       = "engagement.lead@proserv.local"
	defaultRateCardName     = "Standard Delivery"
)

// EnsureSeedData provisions the single-tenant defaults on startup: the
// primary organization, an owner user, the built-in role catalog, and one
// rate card carrying the catalog rates. Every step is idempotent, so
// restarting the server never duplicates rows.
func EnsureSeedData(db *gorm.DB) error {
	org, err := ensureOrganization(db)
	if err != nil {
		return fmt.Errorf("failed to ensure organization: %w", err)
	}

	if err := ensureOwner(db, org.ID); err != nil {
		return fmt.Errorf("failed to ensure owner: %w", err)
	}

	roles, err := ensureDefaultRoles(db, org.ID)
	if err != nil {
		return fmt.Errorf("failed to ensure roles: %w", err)
	}

	if err := ensureRateCard(db, org, roles); err != nil {
		return fmt.Errorf("failed to ensure rate card: %w", err)
	}

	logger.Info().
		Str("organization_id", org.ID).
		Int("roles", len(roles)).
		Msg("seed data ensured")
	return nil
}

func ensureOrganization(db *gorm.DB) (*models.Organization, error) {
	var existing models.Organization
	err := db.Order("created_at asc").First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	org := models.Organization{
		Name:     defaultOrganizationName,
		Timezone: "UTC",
		Currency: "USD",
	}
	if err := db.Create(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func ensureOwner(db *gorm.DB, organizationID string) error {
	var existing models.User
	err := db.Where("organization_id = ? AND email = ?", organizationID, defaultOwnerEmail).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	owner := models.User{
		ID:             defaultOwnerID,
		OrganizationID: organizationID,
		Email:          defaultOwnerEmail,
		GivenName:      "Engagement",
		FamilyName:     "Lead",
	}
	return db.Create(&owner).Error
}

func ensureDefaultRoles(db *gorm.DB, organizationID string) ([]models.Role, error) {
	var existing []models.Role
	if err := db.Where("organization_id = ? AND archived_at IS NULL", organizationID).
		Find(&existing).Error; err != nil {
		return nil, err
	}

	byCode := make(map[string]bool, len(existing))
	for _, role := range existing {
		byCode[role.Code] = true
	}

	ensured := existing
	for _, def := range DefaultRoleDefinitions {
		if byCode[def.Code] {
			continue
		}
		description := def.Description
		role := models.Role{
			OrganizationID: organizationID,
			Code:           def.Code,
			Name:           def.Name,
			Description:    &description,
		}
		if err := db.Create(&role).Error; err != nil {
			return nil, err
		}
		ensured = append(ensured, role)
	}

	return ensured, nil
}

func ensureRateCard(db *gorm.DB, org *models.Organization, roles []models.Role) error {
	var count int64
	if err := db.Model(&models.RateCard{}).
		Where("organization_id = ?", org.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	card := models.RateCard{
		OrganizationID: org.ID,
		Name:           defaultRateCardName,
		Currency:       org.Currency,
	}
	entries := make([]models.RateCardEntry, 0, len(roles))
	for _, role := range roles {
		bill, cost, _ := DefaultRatesForCode(role.Code)
		entries = append(entries, models.RateCardEntry{
			RoleID:   role.ID,
			Currency: org.Currency,
			BillRate: bill,
			CostRate: cost,
		})
	}
	card.Entries = entries

	return db.Create(&card).Error
}
