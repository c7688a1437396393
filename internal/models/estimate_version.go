package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EstimateVersionStatus string

const (
	VersionStatusDraft    EstimateVersionStatus = "DRAFT"
	VersionStatusInReview EstimateVersionStatus = "IN_REVIEW"
	VersionStatusApproved EstimateVersionStatus = "APPROVED"
	VersionStatusArchived EstimateVersionStatus = "ARCHIVED"
)

// BaselineVersionNumber identifies the version created together with its
// project. Version numbers are monotonically increasing and never reused.
const BaselineVersionNumber = 1

// EstimateVersion is one revision of a project's estimate. The "latest"
// version is the one with the highest VersionNumber.
type EstimateVersion struct {
	ID            string                `gorm:"type:varchar(36);primarykey" json:"id"`
	ProjectID     string                `gorm:"type:varchar(36);not null;uniqueIndex:idx_versions_project_number,priority:1" json:"project_id"`
	Name          string                `gorm:"type:varchar(140);not null" json:"name"`
	VersionNumber int                   `gorm:"not null;uniqueIndex:idx_versions_project_number,priority:2" json:"version_number"`
	Status        EstimateVersionStatus `gorm:"type:varchar(10);not null;default:DRAFT" json:"status"`
	RateCardID    *string               `gorm:"type:varchar(36)" json:"rate_card_id"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`

	// Relations
	Project   Project    `gorm:"foreignKey:ProjectID" json:"-"`
	RateCard  *RateCard  `gorm:"foreignKey:RateCardID" json:"rate_card,omitempty"`
	WorkItems []WorkItem `gorm:"foreignKey:VersionID" json:"work_items,omitempty"`
}

func (v *EstimateVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}
