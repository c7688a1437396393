package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Organization is the multi-tenancy boundary: every other entity carries
// an OrganizationID and every query predicate is scoped by it.
type Organization struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Currency  string    `gorm:"type:varchar(3);not null" json:"currency"`
	Timezone  string    `gorm:"type:varchar(64);not null;default:UTC" json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Users     []User     `gorm:"foreignKey:OrganizationID" json:"users,omitempty"`
	Roles     []Role     `gorm:"foreignKey:OrganizationID" json:"roles,omitempty"`
	RateCards []RateCard `gorm:"foreignKey:OrganizationID" json:"rate_cards,omitempty"`
	Projects  []Project  `gorm:"foreignKey:OrganizationID" json:"projects,omitempty"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
