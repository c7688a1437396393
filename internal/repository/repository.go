package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/proserv/engagement-api/internal/models"
)

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// Create creates a new organization
	Create(org *models.Organization) error

	// FindByID finds an organization by ID
	FindByID(id string) (*models.Organization, error)

	// FindEarliest returns the organization with the earliest creation time,
	// or gorm.ErrRecordNotFound when none exists (single-tenant bootstrap)
	FindEarliest() (*models.Organization, error)
}

// UserRepository defines the interface for member record data access
type UserRepository interface {
	// FindByIdentity finds a user by id or email, whichever matches first
	FindByIdentity(id, email string) (*models.User, error)

	// FindInOrganization finds a user by id or email within one organization
	FindInOrganization(organizationID, id, email string) (*models.User, error)

	// Upsert creates the user or refreshes its identity fields by id
	Upsert(user *models.User) error

	// Create creates a new user
	Create(user *models.User) error
}

// RoleRepository defines the interface for role catalog data access
type RoleRepository interface {
	// ListActive returns non-archived roles for the organization, by name
	ListActive(organizationID string) ([]models.Role, error)

	// List returns roles, optionally including archived ones (archived last)
	List(organizationID string, includeArchived bool) ([]models.Role, error)

	// CountByArchiveState counts active and archived roles
	CountByArchiveState(organizationID string) (active, archived int64, err error)

	// FindByID finds a role scoped to the organization
	FindByID(organizationID, id string) (*models.Role, error)

	// Create creates a new role
	Create(role *models.Role) error

	// UpdateFields applies a partial update to a role
	UpdateFields(id string, fields map[string]interface{}) error

	// Archive stamps the role's archived_at
	Archive(id string, archivedAt time.Time) error
}

// RateCardRepository defines the interface for rate card data access
type RateCardRepository interface {
	// ListByOrganization returns cards with entries and entry roles attached,
	// ordered by creation time
	ListByOrganization(organizationID string) ([]models.RateCard, error)

	// FindByID finds a card scoped to the organization, entries attached
	FindByID(organizationID, id string) (*models.RateCard, error)

	// FindEarliest returns the organization's earliest-created card, or
	// gorm.ErrRecordNotFound
	FindEarliest(organizationID string) (*models.RateCard, error)

	// CreateWithEntries writes the card and all entries atomically
	CreateWithEntries(card *models.RateCard) error

	// UpdateFields applies a partial update to a card
	UpdateFields(id string, fields map[string]interface{}) error

	// ReplaceEntries deletes every entry of the card and recreates the given
	// set in one transaction (currency migration)
	ReplaceEntries(rateCardID string, entries []models.RateCardEntry) error

	// UpsertEntry creates or updates one entry keyed by (card, role, currency)
	UpsertEntry(entry *models.RateCardEntry) error

	// CreateEntry creates a single entry
	CreateEntry(entry *models.RateCardEntry) error

	// DeleteEntriesForRole hard-deletes every entry referencing the role
	// across the organization (archive cascade)
	DeleteEntriesForRole(organizationID, roleID string) error
}

// ProjectFilter narrows project queries. Zero values mean "no constraint";
// the owner scope and the not-archived scope always apply.
type ProjectFilter struct {
	OwnerID  string
	ID       string
	Search   string
	Pipeline *models.PipelineStatus
}

// FinancialAggregate is the per-version rollup of assignment plan data.
type FinancialAggregate struct {
	Bill            decimal.Decimal
	Cost            decimal.Decimal
	AssignmentCount int
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Count counts projects matching the filter
	Count(filter ProjectFilter) (int64, error)

	// ListPage returns one page ordered by updated_at desc, each project
	// carrying its owner and its 5 most recent versions
	ListPage(filter ProjectFilter, offset, limit int) ([]models.Project, error)

	// FindOne returns the single project matching the filter with owner and
	// recent versions attached, or gorm.ErrRecordNotFound
	FindOne(filter ProjectFilter) (*models.Project, error)

	// LastUpdatedAt returns the freshest updated_at among matching projects,
	// nil when nothing matches
	LastUpdatedAt(filter ProjectFilter) (*time.Time, error)

	// FindForUpdate returns id and organization for an owned, non-archived
	// project without loading relations
	FindForUpdate(ownerID, id string) (*models.Project, error)

	// CreateWithBaseline writes the project and its baseline version in one
	// transaction
	CreateWithBaseline(project *models.Project, baseline *models.EstimateVersion) error

	// ApplyUpdate applies project field changes, the baseline version name,
	// and the baseline rate card reference in a single transaction
	ApplyUpdate(projectID string, fields map[string]interface{}, baselineName *string, setRateCard bool, rateCardID *string) error

	// FindBaselineVersion loads version 1 of a project with its rate card,
	// entries, and entry roles; nil when the project has no baseline
	FindBaselineVersion(projectID string) (*models.EstimateVersion, error)

	// CollectFinancials sums assignment plan bill/cost per version id
	CollectFinancials(versionIDs []string) (map[string]FinancialAggregate, error)
}
