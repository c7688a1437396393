package repository

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/proserv/engagement-api/internal/database"
	"github.com/proserv/engagement-api/internal/models"
)

// recentVersionsLimit is how many of a project's most recent versions the
// listing attaches; status derivation only inspects these.
const recentVersionsLimit = 5

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// apply builds the layered predicate: owner + not-archived always, then the
// search clause, then the pipeline-status clause mirroring the pure
// derivation as EXISTS subqueries.
func (r *GormProjectRepository) apply(filter ProjectFilter) *gorm.DB {
	query := r.db.Model(&models.Project{}).
		Scopes(database.NotArchivedProjects).
		Where("projects.created_by_id = ?", filter.OwnerID)

	if filter.ID != "" {
		query = query.Where("projects.id = ?", filter.ID)
	}

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		ownerSubQuery := r.db.Model(&models.User{}).
			Select("users.id").
			Where("LOWER(users.given_name) LIKE ? OR LOWER(users.family_name) LIKE ? OR LOWER(users.email) LIKE ?",
				like, like, like)
		query = query.Where(
			"(LOWER(projects.name) LIKE ? OR LOWER(projects.client_name) LIKE ? OR projects.created_by_id IN (?))",
			like, like, ownerSubQuery,
		)
	}

	if filter.Pipeline != nil {
		query = r.applyPipeline(query, *filter.Pipeline)
	}

	return query
}

func (r *GormProjectRepository) applyPipeline(query *gorm.DB, status models.PipelineStatus) *gorm.DB {
	reviewSubQuery := r.db.Model(&models.EstimateVersion{}).
		Select("1").
		Where("estimate_versions.project_id = projects.id").
		Where("estimate_versions.status IN ?", models.ReviewActiveStatuses)

	switch status {
	case models.PipelinePlanning:
		return query.
			Where("projects.status = ?", models.ProjectStatusDraft).
			Where("NOT EXISTS (?)", reviewSubQuery)
	case models.PipelineEstimating:
		return query.
			Where("projects.status = ?", models.ProjectStatusDraft).
			Where("EXISTS (?)", reviewSubQuery)
	case models.PipelineInFlight:
		return query.Where("projects.status = ?", models.ProjectStatusActive)
	default:
		return query
	}
}

// Count counts projects matching the filter
func (r *GormProjectRepository) Count(filter ProjectFilter) (int64, error) {
	var total int64
	err := r.apply(filter).Count(&total).Error
	return total, err
}

// ListPage returns one page ordered by updated_at desc with owners and the
// most recent versions attached
func (r *GormProjectRepository) ListPage(filter ProjectFilter, offset, limit int) ([]models.Project, error) {
	var projects []models.Project
	err := r.apply(filter).
		Order("projects.updated_at DESC").
		Scopes(database.Page(offset, limit)).
		Preload("CreatedBy").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}

	if err := r.attachRecentVersions(projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// FindOne returns the single project matching the filter
func (r *GormProjectRepository) FindOne(filter ProjectFilter) (*models.Project, error) {
	var project models.Project
	if err := r.apply(filter).
		Preload("CreatedBy").
		First(&project).Error; err != nil {
		return nil, err
	}

	page := []models.Project{project}
	if err := r.attachRecentVersions(page); err != nil {
		return nil, err
	}
	return &page[0], nil
}

// attachRecentVersions loads versions for the page in one query and keeps the
// newest recentVersionsLimit per project, ordered by version number
// descending. A preload with a limit would leak the limit across rows, so the
// trim happens here.
func (r *GormProjectRepository) attachRecentVersions(projects []models.Project) error {
	if len(projects) == 0 {
		return nil
	}

	ids := make([]string, len(projects))
	for i, project := range projects {
		ids[i] = project.ID
	}

	var versions []models.EstimateVersion
	if err := r.db.
		Where("project_id IN ?", ids).
		Order("version_number DESC").
		Find(&versions).Error; err != nil {
		return err
	}

	byProject := make(map[string][]models.EstimateVersion, len(projects))
	for _, version := range versions {
		if len(byProject[version.ProjectID]) < recentVersionsLimit {
			byProject[version.ProjectID] = append(byProject[version.ProjectID], version)
		}
	}

	for i := range projects {
		projects[i].Versions = byProject[projects[i].ID]
	}
	return nil
}

// LastUpdatedAt returns the freshest updated_at among matching projects.
// Issued as its own query rather than derived from the fetched page: the
// globally freshest row can fall outside the current page window.
func (r *GormProjectRepository) LastUpdatedAt(filter ProjectFilter) (*time.Time, error) {
	var project models.Project
	err := r.apply(filter).
		Order("projects.updated_at DESC").
		Select("projects.updated_at").
		First(&project).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &project.UpdatedAt, nil
}

// FindForUpdate returns an owned, non-archived project without relations
func (r *GormProjectRepository) FindForUpdate(ownerID, id string) (*models.Project, error) {
	var project models.Project
	if err := r.db.
		Scopes(database.NotArchivedProjects).
		Where("projects.id = ? AND projects.created_by_id = ?", id, ownerID).
		First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// CreateWithBaseline writes the project and its baseline version in one
// transaction
func (r *GormProjectRepository) CreateWithBaseline(project *models.Project, baseline *models.EstimateVersion) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}

		baseline.ProjectID = project.ID
		return tx.Create(baseline).Error
	})
}

// ApplyUpdate applies project field changes, the baseline version name, and
// the baseline rate card reference in a single transaction. Any step failing
// rolls back the whole update.
func (r *GormProjectRepository) ApplyUpdate(projectID string, fields map[string]interface{}, baselineName *string, setRateCard bool, rateCardID *string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if setRateCard {
			fields["baseline_rate_card_id"] = rateCardID
		}

		if len(fields) > 0 {
			if err := tx.Model(&models.Project{}).
				Where("id = ?", projectID).
				Updates(fields).Error; err != nil {
				return err
			}
		}

		if baselineName != nil {
			if err := tx.Model(&models.EstimateVersion{}).
				Where("project_id = ? AND version_number = ?", projectID, models.BaselineVersionNumber).
				Update("name", *baselineName).Error; err != nil {
				return err
			}
		}

		if setRateCard {
			if err := tx.Model(&models.EstimateVersion{}).
				Where("project_id = ? AND version_number = ?", projectID, models.BaselineVersionNumber).
				Update("rate_card_id", rateCardID).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// FindBaselineVersion loads version 1 with its rate card, entries, and roles
func (r *GormProjectRepository) FindBaselineVersion(projectID string) (*models.EstimateVersion, error) {
	var version models.EstimateVersion
	err := r.db.
		Where("project_id = ? AND version_number = ?", projectID, models.BaselineVersionNumber).
		Preload("RateCard").
		Preload("RateCard.Entries.Role").
		First(&version).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &version, nil
}

// CollectFinancials sums assignment plan bill/cost per version id. One query
// walks versions -> work items -> assignments -> plans; there is no per-row
// follow-up.
func (r *GormProjectRepository) CollectFinancials(versionIDs []string) (map[string]FinancialAggregate, error) {
	aggregates := make(map[string]FinancialAggregate)
	if len(versionIDs) == 0 {
		return aggregates, nil
	}

	var workItems []models.WorkItem
	if err := r.db.
		Where("version_id IN ?", versionIDs).
		Preload("Assignments.Plans").
		Find(&workItems).Error; err != nil {
		return nil, err
	}

	for _, item := range workItems {
		current, ok := aggregates[item.VersionID]
		if !ok {
			current = FinancialAggregate{Bill: decimal.Zero, Cost: decimal.Zero}
		}

		for _, assignment := range item.Assignments {
			current.AssignmentCount++
			for _, plan := range assignment.Plans {
				current.Bill = current.Bill.Add(plan.Bill)
				current.Cost = current.Cost.Add(plan.Cost)
			}
		}

		aggregates[item.VersionID] = current
	}

	return aggregates, nil
}
