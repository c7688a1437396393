package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RateCard groups per-role bill/cost rates for an organization. The validity
// window is optional; when both bounds are set, ValidFrom <= ValidTo.
type RateCard struct {
	ID             string     `gorm:"type:varchar(36);primarykey" json:"id"`
	OrganizationID string     `gorm:"type:varchar(36);not null;index" json:"organization_id"`
	Name           string     `gorm:"type:varchar(140);not null" json:"name"`
	Currency       string     `gorm:"type:varchar(3);not null" json:"currency"`
	ValidFrom      *time.Time `json:"valid_from"`
	ValidTo        *time.Time `json:"valid_to"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Organization Organization    `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Entries      []RateCardEntry `gorm:"foreignKey:RateCardID" json:"entries,omitempty"`
}

func (rc *RateCard) BeforeCreate(tx *gorm.DB) error {
	if rc.ID == "" {
		rc.ID = uuid.NewString()
	}
	return nil
}

// RateCardEntry holds the rates for one role on one card. The composite
// uniqueness on (rate_card_id, role_id, currency) is what the backfill
// operation repairs toward: one entry per active role at the card's currency.
type RateCardEntry struct {
	ID         string          `gorm:"type:varchar(36);primarykey" json:"id"`
	RateCardID string          `gorm:"type:varchar(36);not null;uniqueIndex:idx_entries_card_role_ccy,priority:1" json:"rate_card_id"`
	RoleID     string          `gorm:"type:varchar(36);not null;uniqueIndex:idx_entries_card_role_ccy,priority:2" json:"role_id"`
	Currency   string          `gorm:"type:varchar(3);not null;uniqueIndex:idx_entries_card_role_ccy,priority:3" json:"currency"`
	BillRate   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"bill_rate"`
	CostRate   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost_rate"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	// Relations
	RateCard RateCard `gorm:"foreignKey:RateCardID" json:"-"`
	Role     Role     `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

func (e *RateCardEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
