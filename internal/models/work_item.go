package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkItemType string

const (
	WorkItemEpic       WorkItemType = "EPIC"
	WorkItemWorkstream WorkItemType = "WORKSTREAM"
	WorkItemTask       WorkItemType = "TASK"
	WorkItemMilestone  WorkItemType = "MILESTONE"
)

// WorkItem is a node in a version's delivery breakdown. The aggregation
// engine only uses it as the join between versions and assignments.
type WorkItem struct {
	ID        string       `gorm:"type:varchar(36);primarykey" json:"id"`
	VersionID string       `gorm:"type:varchar(36);not null;index" json:"version_id"`
	ParentID  *string      `gorm:"type:varchar(36)" json:"parent_id"`
	Name      string       `gorm:"type:varchar(140);not null" json:"name"`
	Type      WorkItemType `gorm:"type:varchar(12);not null" json:"type"`
	StartDate *time.Time   `json:"start_date"`
	EndDate   *time.Time   `json:"end_date"`
	Sequence  int          `json:"sequence"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	// Relations
	Version     EstimateVersion `gorm:"foreignKey:VersionID" json:"-"`
	Assignments []Assignment    `gorm:"foreignKey:WorkItemID" json:"assignments,omitempty"`
}

func (w *WorkItem) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}
