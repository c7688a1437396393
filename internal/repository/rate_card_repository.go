package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/proserv/engagement-api/internal/models"
)

// GormRateCardRepository is a GORM implementation of RateCardRepository
type GormRateCardRepository struct {
	db *gorm.DB
}

// NewRateCardRepository creates a new RateCardRepository
func NewRateCardRepository(db *gorm.DB) RateCardRepository {
	return &GormRateCardRepository{db: db}
}

// ListByOrganization returns cards with entries and entry roles attached
func (r *GormRateCardRepository) ListByOrganization(organizationID string) ([]models.RateCard, error) {
	var cards []models.RateCard
	err := r.db.
		Where("organization_id = ?", organizationID).
		Order("created_at asc").
		Preload("Entries.Role").
		Find(&cards).Error
	return cards, err
}

// FindByID finds a card scoped to the organization, entries attached
func (r *GormRateCardRepository) FindByID(organizationID, id string) (*models.RateCard, error) {
	var card models.RateCard
	if err := r.db.
		Where("id = ? AND organization_id = ?", id, organizationID).
		Preload("Entries.Role").
		First(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// FindEarliest returns the organization's earliest-created card
func (r *GormRateCardRepository) FindEarliest(organizationID string) (*models.RateCard, error) {
	var card models.RateCard
	if err := r.db.
		Where("organization_id = ?", organizationID).
		Order("created_at asc").
		First(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// CreateWithEntries writes the card and all entries atomically via the
// association create
func (r *GormRateCardRepository) CreateWithEntries(card *models.RateCard) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(card).Error
	})
}

// UpdateFields applies a partial update to a card
func (r *GormRateCardRepository) UpdateFields(id string, fields map[string]interface{}) error {
	return r.db.Model(&models.RateCard{}).Where("id = ?", id).Updates(fields).Error
}

// ReplaceEntries deletes every entry of the card and recreates the given set
// in one transaction. Used on currency migration so a card never carries
// mixed-currency entries.
func (r *GormRateCardRepository) ReplaceEntries(rateCardID string, entries []models.RateCardEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("rate_card_id = ?", rateCardID).
			Delete(&models.RateCardEntry{}).Error; err != nil {
			return err
		}

		if len(entries) == 0 {
			return nil
		}
		return tx.Create(&entries).Error
	})
}

// UpsertEntry creates or updates one entry keyed by (card, role, currency)
func (r *GormRateCardRepository) UpsertEntry(entry *models.RateCardEntry) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "rate_card_id"}, {Name: "role_id"}, {Name: "currency"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"bill_rate", "cost_rate"}),
		}).
		Create(entry).Error
}

// CreateEntry creates a single entry
func (r *GormRateCardRepository) CreateEntry(entry *models.RateCardEntry) error {
	return r.db.Create(entry).Error
}

// DeleteEntriesForRole hard-deletes every entry referencing the role across
// the organization's cards
func (r *GormRateCardRepository) DeleteEntriesForRole(organizationID, roleID string) error {
	cardIDs := r.db.Model(&models.RateCard{}).
		Select("id").
		Where("organization_id = ?", organizationID)

	return r.db.
		Where("role_id = ? AND rate_card_id IN (?)", roleID, cardIDs).
		Delete(&models.RateCardEntry{}).Error
}
