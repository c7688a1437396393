package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the member record for a caller. Identity resolution is external;
// rows here are provisioned lazily the first time a caller is seen, and are
// looked up by id OR email to tolerate identity-provider churn.
type User struct {
	ID             string    `gorm:"type:varchar(36);primarykey" json:"id"`
	OrganizationID string    `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_users_org_email,priority:1" json:"organization_id"`
	Email          string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_org_email,priority:2" json:"email"`
	GivenName      string    `gorm:"type:varchar(140)" json:"given_name"`
	FamilyName     string    `gorm:"type:varchar(140)" json:"family_name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Projects     []Project    `gorm:"foreignKey:CreatedByID" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// DisplayName resolves the human-readable owner label: name parts when either
// is present, else the email, else "Unassigned".
func (u *User) DisplayName() string {
	if u == nil {
		return "Unassigned"
	}
	if u.GivenName != "" || u.FamilyName != "" {
		name := u.GivenName
		if u.FamilyName != "" {
			if name != "" {
				name += " "
			}
			name += u.FamilyName
		}
		return name
	}
	if u.Email != "" {
		return u.Email
	}
	return "Unassigned"
}
