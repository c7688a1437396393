package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BillingModel string

const (
	BillingTimeAndMaterial BillingModel = "TIME_AND_MATERIAL"
	BillingFixedPrice      BillingModel = "FIXED_PRICE"
	BillingRetainer        BillingModel = "RETAINER"
	BillingManagedService  BillingModel = "MANAGED_SERVICE"
)

type ProjectStatus string

const (
	ProjectStatusDraft    ProjectStatus = "DRAFT"
	ProjectStatusActive   ProjectStatus = "ACTIVE"
	ProjectStatusArchived ProjectStatus = "ARCHIVED"
)

// Project is a consulting engagement. Archived projects stay in storage but
// are excluded from every read path.
type Project struct {
	ID                 string        `gorm:"type:varchar(36);primarykey" json:"id"`
	OrganizationID     string        `gorm:"type:varchar(36);not null;index" json:"organization_id"`
	Name               string        `gorm:"type:varchar(140);not null" json:"name"`
	ClientName         string        `gorm:"type:varchar(140);not null" json:"client_name"`
	CreatedByID        string        `gorm:"type:varchar(36);not null;index" json:"created_by_id"`
	BaseCurrency       string        `gorm:"type:varchar(3);not null" json:"base_currency"`
	BillingModel       BillingModel  `gorm:"type:varchar(20);not null" json:"billing_model"`
	Status             ProjectStatus `gorm:"type:varchar(10);not null;default:DRAFT;index" json:"status"`
	StartDate          time.Time     `gorm:"not null" json:"start_date"`
	EndDate            *time.Time    `json:"end_date"`
	BaselineRateCardID *string       `gorm:"type:varchar(36)" json:"baseline_rate_card_id"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `gorm:"index" json:"updated_at"`

	// Relations
	Organization     Organization      `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	CreatedBy        User              `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	BaselineRateCard *RateCard         `gorm:"foreignKey:BaselineRateCardID" json:"-"`
	Versions         []EstimateVersion `gorm:"foreignKey:ProjectID" json:"versions,omitempty"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
