package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/proserv/engagement-api/internal/dto"
	apperrors "github.com/proserv/engagement-api/internal/errors"
	"github.com/proserv/engagement-api/internal/models"
	"github.com/proserv/engagement-api/internal/repository"
)

const defaultBaselineName = "Baseline"

// ProjectService is the portfolio aggregation engine: project lifecycle,
// pipeline-status derivation, paginated listing with facet counts, and
// financial rollups built from assignment plan data.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	cardRepo    repository.RateCardRepository
	orgRepo     repository.OrganizationRepository
	userRepo    repository.UserRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, cardRepo repository.RateCardRepository, orgRepo repository.OrganizationRepository, userRepo repository.UserRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		cardRepo:    cardRepo,
		orgRepo:     orgRepo,
		userRepo:    userRepo,
	}
}

// ListProjectsInput narrows and pages the portfolio listing.
type ListProjectsInput struct {
	Page     int
	PageSize int
	Search   string
	Status   *models.PipelineStatus
}

// CreateProjectInput represents parameters to create a project.
type CreateProjectInput struct {
	Name                string
	ClientName          string
	BaseCurrency        string
	BillingModel        models.BillingModel
	StartDate           time.Time
	EndDate             *time.Time
	BaselineVersionName string
}

// UpdateProjectInput is a partial project update. The Set flags distinguish
// "leave unchanged" from "clear".
type UpdateProjectInput struct {
	Name                *string
	ClientName          *string
	BaseCurrency        *string
	BillingModel        *models.BillingModel
	StartDate           *time.Time
	EndDate             *time.Time
	EndDateSet          bool
	BaselineVersionName *string
	BaselineRateCardID  *string
	BaselineRateCardSet bool
}

// GetProjectSummaries returns one page of the caller's portfolio with
// filter-consistent facet counts. The six counts are independent reads and
// fire in parallel; they observe no common snapshot, so under concurrent
// writes the page and the counts can be momentarily skewed.
func (s *ProjectService) GetProjectSummaries(caller Identity, input ListProjectsInput) (*dto.ProjectListResult, error) {
	base := repository.ProjectFilter{OwnerID: caller.ID}

	search := base
	search.Search = input.Search

	list := search
	list.Pipeline = input.Status

	var (
		statusCounts [3]int64
		totalSearch  int64
		totalAll     int64
		totalItems   int64
	)

	var group errgroup.Group
	for i, status := range models.PipelineStatuses {
		i, status := i, status
		group.Go(func() error {
			filter := search
			filter.Pipeline = &status
			count, err := s.projectRepo.Count(filter)
			statusCounts[i] = count
			return err
		})
	}
	group.Go(func() error {
		count, err := s.projectRepo.Count(search)
		totalSearch = count
		return err
	})
	group.Go(func() error {
		count, err := s.projectRepo.Count(base)
		totalAll = count
		return err
	})
	group.Go(func() error {
		count, err := s.projectRepo.Count(list)
		totalItems = count
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}

	pageSize := input.PageSize
	totalPages := 0
	if totalItems > 0 {
		totalPages = int((totalItems + int64(pageSize) - 1) / int64(pageSize))
	}
	currentPage := 1
	if totalPages > 0 {
		currentPage = input.Page
		if currentPage > totalPages {
			currentPage = totalPages
		}
		if currentPage < 1 {
			currentPage = 1
		}
	}
	skip := (currentPage - 1) * pageSize
	if skip < 0 {
		skip = 0
	}

	projects, err := s.projectRepo.ListPage(list, skip, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	summaries, err := s.buildSummaries(projects)
	if err != nil {
		return nil, err
	}

	// Deliberately a separate query: the freshest matching row may sit
	// outside the current page window.
	lastUpdated, err := s.projectRepo.LastUpdatedAt(list)
	if err != nil {
		return nil, err
	}

	return &dto.ProjectListResult{
		Data: summaries,
		Meta: dto.ProjectListMeta{
			Page:                currentPage,
			PageSize:            pageSize,
			TotalItems:          totalItems,
			TotalPages:          totalPages,
			TotalMatchingSearch: totalSearch,
			TotalAll:            totalAll,
		},
		Counts: dto.PipelineCounts{
			Planning:   statusCounts[0],
			Estimating: statusCounts[1],
			InFlight:   statusCounts[2],
		},
		LastUpdated: lastUpdated,
	}, nil
}

// GetProjectSummary returns a single owned, non-archived project.
func (s *ProjectService) GetProjectSummary(caller Identity, projectID string) (*dto.ProjectSummary, error) {
	project, err := s.findOwned(caller, projectID)
	if err != nil {
		return nil, err
	}

	summaries, err := s.buildSummaries([]models.Project{*project})
	if err != nil {
		return nil, err
	}
	return &summaries[0], nil
}

// GetProjectWorkspace returns the summary plus the baseline version with its
// rate card and an independent rollup. Baseline and latest diverge once later
// versions exist, so the baseline gets its own financials.
func (s *ProjectService) GetProjectWorkspace(caller Identity, projectID string) (*dto.ProjectWorkspace, error) {
	project, err := s.findOwned(caller, projectID)
	if err != nil {
		return nil, err
	}

	summaries, err := s.buildSummaries([]models.Project{*project})
	if err != nil {
		return nil, err
	}
	summary := summaries[0]

	baseline, err := s.projectRepo.FindBaselineVersion(projectID)
	if err != nil {
		return nil, err
	}
	if baseline == nil {
		return &dto.ProjectWorkspace{Summary: summary, Baseline: nil}, nil
	}

	financials, err := s.projectRepo.CollectFinancials([]string{baseline.ID})
	if err != nil {
		return nil, err
	}
	aggregate := financials[baseline.ID]

	var rateCard *dto.RateCardDTO
	var rateCardName *string
	if baseline.RateCardID != nil && baseline.RateCard != nil {
		card := dto.ToRateCardDTO(*baseline.RateCard)
		rateCard = &card
		rateCardName = &baseline.RateCard.Name
	}

	return &dto.ProjectWorkspace{
		Summary: summary,
		Baseline: &dto.BaselineDTO{
			ID:              baseline.ID,
			Name:            baseline.Name,
			VersionNumber:   baseline.VersionNumber,
			Status:          baseline.Status,
			UpdatedAt:       baseline.UpdatedAt,
			RateCardID:      baseline.RateCardID,
			RateCardName:    rateCardName,
			RateCard:        rateCard,
			TotalValue:      aggregate.Bill.InexactFloat64(),
			TotalCost:       aggregate.Cost.InexactFloat64(),
			Margin:          marginOf(aggregate.Bill, aggregate.Cost),
			Currency:        summary.Currency,
			AssignmentCount: aggregate.AssignmentCount,
		},
	}, nil
}

// CreateProject provisions the organization and owner record if needed, then
// writes the project together with its baseline version and re-reads the
// summary so the response reflects derived fields rather than echoing input.
func (s *ProjectService) CreateProject(caller Identity, input CreateProjectInput) (*dto.ProjectSummary, error) {
	baseCurrency := strings.ToUpper(strings.TrimSpace(input.BaseCurrency))

	organizationID, err := s.ensurePrimaryOrganization(baseCurrency)
	if err != nil {
		return nil, err
	}

	ownerID, err := s.ensureOwnerRecord(caller, organizationID)
	if err != nil {
		return nil, err
	}

	baselineName := strings.TrimSpace(input.BaselineVersionName)
	if baselineName == "" {
		baselineName = defaultBaselineName
	}

	var baselineRateCardID *string
	defaultCard, err := s.cardRepo.FindEarliest(organizationID)
	if err == nil {
		baselineRateCardID = &defaultCard.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	project := &models.Project{
		OrganizationID:     organizationID,
		Name:               strings.TrimSpace(input.Name),
		ClientName:         strings.TrimSpace(input.ClientName),
		CreatedByID:        ownerID,
		BaseCurrency:       baseCurrency,
		BillingModel:       input.BillingModel,
		Status:             models.ProjectStatusDraft,
		StartDate:          input.StartDate,
		EndDate:            input.EndDate,
		BaselineRateCardID: baselineRateCardID,
	}
	baseline := &models.EstimateVersion{
		Name:          baselineName,
		VersionNumber: models.BaselineVersionNumber,
		Status:        models.VersionStatusDraft,
		RateCardID:    baselineRateCardID,
	}

	if err := s.projectRepo.CreateWithBaseline(project, baseline); err != nil {
		return nil, err
	}

	// The owner record may have been matched by email under a different id,
	// so the re-read scopes on the resolved owner, not the raw caller.
	owner := caller
	owner.ID = ownerID
	return s.GetProjectSummary(owner, project.ID)
}

// UpdateProject applies project field changes, a baseline rename, and a
// baseline rate card reassignment as one transactional unit. The rate card
// must resolve within the project's organization; that integrity check lives
// here, not in the store.
func (s *ProjectService) UpdateProject(caller Identity, projectID string, input UpdateProjectInput) (*dto.ProjectSummary, error) {
	fields := map[string]interface{}{}

	if input.Name != nil {
		fields["name"] = strings.TrimSpace(*input.Name)
	}
	if input.ClientName != nil {
		fields["client_name"] = strings.TrimSpace(*input.ClientName)
	}
	if input.BaseCurrency != nil {
		fields["base_currency"] = strings.ToUpper(strings.TrimSpace(*input.BaseCurrency))
	}
	if input.BillingModel != nil {
		fields["billing_model"] = *input.BillingModel
	}
	if input.StartDate != nil {
		fields["start_date"] = *input.StartDate
	}
	if input.EndDateSet {
		fields["end_date"] = input.EndDate
	}

	// An empty baseline name is treated as absent, never as a rename to "".
	baselineName := input.BaselineVersionName
	if baselineName != nil {
		trimmed := strings.TrimSpace(*baselineName)
		if trimmed == "" {
			baselineName = nil
		} else {
			baselineName = &trimmed
		}
	}

	wantsRateCardUpdate := input.BaselineRateCardSet

	if len(fields) == 0 && baselineName == nil && !wantsRateCardUpdate {
		return nil, apperrors.NewValidation("no fields provided to update")
	}

	existing, err := s.projectRepo.FindForUpdate(caller.ID, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("project not found")
		}
		return nil, err
	}

	var normalizedRateCardID *string
	if wantsRateCardUpdate && input.BaselineRateCardID != nil {
		if candidate := strings.TrimSpace(*input.BaselineRateCardID); candidate != "" {
			card, err := s.cardRepo.FindByID(existing.OrganizationID, candidate)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.NewValidation("rate card not found")
				}
				return nil, err
			}
			normalizedRateCardID = &card.ID
		}
	}

	if err := s.projectRepo.ApplyUpdate(projectID, fields, baselineName, wantsRateCardUpdate, normalizedRateCardID); err != nil {
		return nil, err
	}

	return s.GetProjectSummary(caller, projectID)
}

func (s *ProjectService) findOwned(caller Identity, projectID string) (*models.Project, error) {
	project, err := s.projectRepo.FindOne(repository.ProjectFilter{
		OwnerID: caller.ID,
		ID:      projectID,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("project not found")
		}
		return nil, err
	}
	return project, nil
}

// buildSummaries batches the financial rollup for the page's latest-version
// ids (never more) and derives each project's pipeline status from the
// versions already loaded.
func (s *ProjectService) buildSummaries(projects []models.Project) ([]dto.ProjectSummary, error) {
	if len(projects) == 0 {
		return []dto.ProjectSummary{}, nil
	}

	versionIDs := make([]string, 0, len(projects))
	for _, project := range projects {
		if len(project.Versions) > 0 {
			versionIDs = append(versionIDs, project.Versions[0].ID)
		}
	}

	financials, err := s.projectRepo.CollectFinancials(versionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to collect financials: %w", err)
	}

	summaries := make([]dto.ProjectSummary, len(projects))
	for i, project := range projects {
		var aggregate repository.FinancialAggregate
		var latestVersion *models.EstimateVersion
		if len(project.Versions) > 0 {
			latestVersion = &project.Versions[0]
			aggregate = financials[latestVersion.ID]
		}

		versionStatuses := make([]models.EstimateVersionStatus, len(project.Versions))
		for j, version := range project.Versions {
			versionStatuses[j] = version.Status
		}

		updatedAt := project.UpdatedAt
		if latestVersion != nil && latestVersion.UpdatedAt.After(updatedAt) {
			updatedAt = latestVersion.UpdatedAt
		}

		var endDate *string
		if project.EndDate != nil {
			formatted := dto.FormatDate(*project.EndDate)
			endDate = &formatted
		}

		summaries[i] = dto.ProjectSummary{
			ID:           project.ID,
			Name:         project.Name,
			Client:       project.ClientName,
			Owner:        project.CreatedBy.DisplayName(),
			Status:       models.DerivePipelineStatus(project.Status, versionStatuses),
			StartDate:    dto.FormatDate(project.StartDate),
			EndDate:      endDate,
			BillingModel: project.BillingModel,
			TotalValue:   aggregate.Bill.InexactFloat64(),
			Currency:     project.BaseCurrency,
			Margin:       marginOf(aggregate.Bill, aggregate.Cost),
			UpdatedAt:    updatedAt,
		}
	}

	return summaries, nil
}

// ensurePrimaryOrganization is the owner-path specialization of the context
// resolver: the bootstrap organization adopts the new project's currency.
func (s *ProjectService) ensurePrimaryOrganization(baseCurrency string) (string, error) {
	existing, err := s.orgRepo.FindEarliest()
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	org := &models.Organization{
		Name:     defaultOrganizationName,
		Timezone: "UTC",
		Currency: baseCurrency,
	}
	if err := s.orgRepo.Create(org); err != nil {
		return "", fmt.Errorf("failed to create organization: %w", err)
	}
	return org.ID, nil
}

func (s *ProjectService) ensureOwnerRecord(caller Identity, organizationID string) (string, error) {
	existing, err := s.userRepo.FindInOrganization(organizationID, caller.ID, caller.Email)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	givenName := strings.TrimSpace(caller.GivenName)
	if givenName == "" {
		givenName = defaultGivenName
	}
	familyName := strings.TrimSpace(caller.FamilyName)
	if familyName == "" {
		familyName = defaultFamilyName
	}

	owner := &models.User{
		ID:             caller.ID,
		OrganizationID: organizationID,
		Email:          caller.Email,
		GivenName:      givenName,
		FamilyName:     familyName,
	}
	if err := s.userRepo.Create(owner); err != nil {
		return "", fmt.Errorf("failed to create owner record: %w", err)
	}
	return owner.ID, nil
}

// marginOf guards the division: zero billed value reports zero margin rather
// than NaN or infinity.
func marginOf(bill, cost decimal.Decimal) float64 {
	if bill.IsPositive() {
		return bill.Sub(cost).Div(bill).InexactFloat64()
	}
	return 0
}
