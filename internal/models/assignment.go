package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AllocationModel string

const (
	AllocationHours      AllocationModel = "HOURS"
	AllocationPercentFTE AllocationModel = "PERCENT_FTE"
	AllocationFixedFee   AllocationModel = "FIXED_FEE"
)

// Assignment staffs a role onto a work item. Financial rollups sum the
// assignment's plan rows; nothing else in the core reads the staffing fields.
type Assignment struct {
	ID              string          `gorm:"type:varchar(36);primarykey" json:"id"`
	WorkItemID      string          `gorm:"type:varchar(36);not null;index" json:"work_item_id"`
	RoleID          string          `gorm:"type:varchar(36);not null" json:"role_id"`
	ResourceName    *string         `gorm:"type:varchar(140)" json:"resource_name"`
	AllocationModel AllocationModel `gorm:"type:varchar(12);not null;default:HOURS" json:"allocation_model"`
	Notes           *string         `gorm:"type:varchar(280)" json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// Relations
	WorkItem WorkItem         `gorm:"foreignKey:WorkItemID" json:"-"`
	Role     Role             `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Plans    []AssignmentPlan `gorm:"foreignKey:AssignmentID" json:"plans,omitempty"`
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// AssignmentPlan is one time-phased week of planned hours and money.
type AssignmentPlan struct {
	ID           string          `gorm:"type:varchar(36);primarykey" json:"id"`
	AssignmentID string          `gorm:"type:varchar(36);not null;index" json:"assignment_id"`
	WeekOf       time.Time       `gorm:"not null" json:"week_of"`
	Hours        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"hours"`
	Bill         decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"bill"`
	Cost         decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"cost"`
	CreatedAt    time.Time       `json:"created_at"`

	// Relations
	Assignment Assignment `gorm:"foreignKey:AssignmentID" json:"-"`
}

func (p *AssignmentPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
