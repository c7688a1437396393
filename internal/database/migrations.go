package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/proserv/engagement-api/internal/logger"
)

// AddIndexes adds performance-critical indexes beyond what AutoMigrate
// derives from the model tags. Postgres only; the other drivers rely on the
// tag-derived indexes.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Listing is ordered by updated_at and always scoped by owner.
		{"projects", "idx_projects_owner_updated", "created_by_id, updated_at DESC"},

		// Pipeline predicates probe versions by project and review status.
		{"estimate_versions", "idx_versions_project_status", "project_id, status"},

		// Rollup join path: versions -> work items -> assignments -> plans.
		{"work_items", "idx_work_items_version", "version_id"},
		{"assignments", "idx_assignments_work_item", "work_item_id"},
		{"assignment_plans", "idx_plans_assignment", "assignment_id"},

		// Backfill scans entries per card; archive cascade deletes per role.
		{"rate_card_entries", "idx_entries_role", "role_id"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Scan(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		logger.Info().Str("index", idx.name).Str("table", idx.table).Msg("created index")
	}

	return nil
}
