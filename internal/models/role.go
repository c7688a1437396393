package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is a billable role in the organization's catalog. Roles are archived,
// never deleted: ArchivedAt marks the Active -> Archived transition, and only
// that transition cascades a hard delete of the role's rate card entries.
type Role struct {
	ID             string     `gorm:"type:varchar(36);primarykey" json:"id"`
	OrganizationID string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_roles_org_code,priority:1" json:"organization_id"`
	Code           string     `gorm:"type:varchar(20);not null;uniqueIndex:idx_roles_org_code,priority:2" json:"code"`
	Name           string     `gorm:"type:varchar(140);not null" json:"name"`
	Description    *string    `gorm:"type:varchar(280)" json:"description"`
	ArchivedAt     *time.Time `gorm:"index" json:"archived_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Organization Organization    `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Entries      []RateCardEntry `gorm:"foreignKey:RoleID" json:"-"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// IsArchived reports whether the role has left the active catalog.
func (r *Role) IsArchived() bool {
	return r.ArchivedAt != nil
}
