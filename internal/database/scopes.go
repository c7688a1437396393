package database

import (
	"gorm.io/gorm"
)

// Page applies offset/limit pagination to a GORM query.
func Page(offset, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(offset).Limit(limit)
	}
}

// NotArchivedProjects scopes a project query to rows still visible to read
// paths. Archived projects are retained but invisible to aggregation.
func NotArchivedProjects(db *gorm.DB) *gorm.DB {
	return db.Where("projects.status <> ?", "ARCHIVED")
}
