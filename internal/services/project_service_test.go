package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	apperrors "github.com/proserv/engagement-api/internal/errors"
	"github.com/proserv/engagement-api/internal/models"
	"github.com/proserv/engagement-api/internal/repository"
)

type ProjectServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	projects *ProjectService
}

func (suite *ProjectServiceTestSuite) SetupTest() {
	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Role{},
		&models.RateCard{},
		&models.RateCardEntry{},
		&models.Project{},
		&models.EstimateVersion{},
		&models.WorkItem{},
		&models.Assignment{},
		&models.AssignmentPlan{},
	)
	suite.Require().NoError(err)

	suite.projects = NewProjectService(
		repository.NewProjectRepository(suite.db),
		repository.NewRateCardRepository(suite.db),
		repository.NewOrganizationRepository(suite.db),
		repository.NewUserRepository(suite.db),
	)
}

func (suite *ProjectServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *ProjectServiceTestSuite) caller() Identity {
	return Identity{
		ID:         "engagement-lead",
		Email:      "engagement.lead@proserv.local",
		GivenName:  "Jordan",
		FamilyName: "Blake",
	}
}

func (suite *ProjectServiceTestSuite) createProject(name, client string) string {
	summary, err := suite.projects.CreateProject(suite.caller(), CreateProjectInput{
		Name:         name,
		ClientName:   client,
		BaseCurrency: "USD",
		BillingModel: models.BillingTimeAndMaterial,
		StartDate:    time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	})
	suite.Require().NoError(err)
	return summary.ID
}

func (suite *ProjectServiceTestSuite) latestVersion(projectID string) *models.EstimateVersion {
	var version models.EstimateVersion
	suite.Require().NoError(suite.db.
		Where("project_id = ?", projectID).
		Order("version_number DESC").
		First(&version).Error)
	return &version
}

func (suite *ProjectServiceTestSuite) addFinancials(versionID string, bill, cost int64) {
	item := &models.WorkItem{
		VersionID: versionID,
		Name:      "Discovery",
		Type:      models.WorkItemWorkstream,
	}
	suite.Require().NoError(suite.db.Create(item).Error)

	assignment := &models.Assignment{
		WorkItemID:      item.ID,
		RoleID:          "role-arch",
		AllocationModel: models.AllocationHours,
	}
	suite.Require().NoError(suite.db.Create(assignment).Error)

	plan := &models.AssignmentPlan{
		AssignmentID: assignment.ID,
		WeekOf:       time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		Hours:        decimal.NewFromInt(40),
		Bill:         decimal.NewFromInt(bill),
		Cost:         decimal.NewFromInt(cost),
	}
	suite.Require().NoError(suite.db.Create(plan).Error)
}

func (suite *ProjectServiceTestSuite) TestCreateProject_BootstrapsAndAttachesBaseline() {
	id := suite.createProject("Atlas Rollout", "Globex")

	var org models.Organization
	suite.Require().NoError(suite.db.First(&org).Error)
	suite.Equal("Primary Services Org", org.Name)
	suite.Equal("USD", org.Currency)

	var owner models.User
	suite.Require().NoError(suite.db.First(&owner, "id = ?", "engagement-lead").Error)
	suite.Equal("Jordan", owner.GivenName)

	baseline := suite.latestVersion(id)
	suite.Equal(models.BaselineVersionNumber, baseline.VersionNumber)
	suite.Equal("Baseline", baseline.Name)
	suite.Equal(models.VersionStatusDraft, baseline.Status)

	summary, err := suite.projects.GetProjectSummary(suite.caller(), id)
	suite.Require().NoError(err)
	suite.Equal(models.PipelinePlanning, summary.Status)
	suite.Equal("Jordan Blake", summary.Owner)
	suite.Equal("2026-01-05", summary.StartDate)
}

func (suite *ProjectServiceTestSuite) TestCreateProject_AdoptsDefaultRateCard() {
	var org models.Organization
	suite.Require().NoError(suite.db.FirstOrCreate(&org, models.Organization{
		Name: "Primary Services Org", Currency: "USD", Timezone: "UTC",
	}).Error)
	card := &models.RateCard{OrganizationID: org.ID, Name: "Standard Delivery", Currency: "USD"}
	suite.Require().NoError(suite.db.Create(card).Error)

	id := suite.createProject("Atlas Rollout", "Globex")

	var project models.Project
	suite.Require().NoError(suite.db.First(&project, "id = ?", id).Error)
	suite.Require().NotNil(project.BaselineRateCardID)
	suite.Equal(card.ID, *project.BaselineRateCardID)

	baseline := suite.latestVersion(id)
	suite.Require().NotNil(baseline.RateCardID)
	suite.Equal(card.ID, *baseline.RateCardID)
}

func (suite *ProjectServiceTestSuite) TestPipelineDerivationAndFacetCounts() {
	planning := suite.createProject("Planning One", "Globex")
	estimating := suite.createProject("Estimating One", "Initech")
	inFlight := suite.createProject("Running One", "Umbrella")

	baseline := suite.latestVersion(estimating)
	suite.Require().NoError(suite.db.Model(baseline).
		Update("status", models.VersionStatusInReview).Error)
	suite.Require().NoError(suite.db.Model(&models.Project{}).
		Where("id = ?", inFlight).
		Update("status", models.ProjectStatusActive).Error)

	result, err := suite.projects.GetProjectSummaries(suite.caller(), ListProjectsInput{Page: 1, PageSize: 10})
	suite.Require().NoError(err)

	suite.Equal(int64(1), result.Counts.Planning)
	suite.Equal(int64(1), result.Counts.Estimating)
	suite.Equal(int64(1), result.Counts.InFlight)

	byID := map[string]models.PipelineStatus{}
	for _, summary := range result.Data {
		byID[summary.ID] = summary.Status
	}
	suite.Equal(models.PipelinePlanning, byID[planning])
	suite.Equal(models.PipelineEstimating, byID[estimating])
	suite.Equal(models.PipelineInFlight, byID[inFlight])

	// The status filter must agree with the derived labels.
	status := models.PipelineEstimating
	filtered, err := suite.projects.GetProjectSummaries(suite.caller(), ListProjectsInput{
		Page: 1, PageSize: 10, Status: &status,
	})
	suite.Require().NoError(err)
	suite.Require().Len(filtered.Data, 1)
	suite.Equal(estimating, filtered.Data[0].ID)
	suite.Equal(int64(1), filtered.Meta.TotalItems)
	suite.Equal(int64(3), filtered.Meta.TotalMatchingSearch)
	suite.Equal(int64(3), filtered.Meta.TotalAll)
}

func (suite *ProjectServiceTestSuite) TestPagination_EmptyResult() {
	result, err := suite.projects.GetProjectSummaries(suite.caller(), ListProjectsInput{Page: 4, PageSize: 6})
	suite.Require().NoError(err)

	suite.Empty(result.Data)
	suite.Equal(0, result.Meta.TotalPages)
	suite.Equal(1, result.Meta.Page)
	suite.Equal(int64(0), result.Meta.TotalItems)
	suite.Nil(result.LastUpdated)
}

func (suite *ProjectServiceTestSuite) TestPagination_ClampsOutOfRangePage() {
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		suite.createProject(name, "Globex")
	}

	result, err := suite.projects.GetProjectSummaries(suite.caller(), ListProjectsInput{Page: 9, PageSize: 2})
	suite.Require().NoError(err)

	suite.Equal(2, result.Meta.TotalPages)
	suite.Equal(2, result.Meta.Page)
	suite.Len(result.Data, 1)
	suite.NotNil(result.LastUpdated)
}

func (suite *ProjectServiceTestSuite) TestFinancialRollup() {
	id := suite.createProject("Atlas Rollout", "Globex")
	baseline := suite.latestVersion(id)
	suite.addFinancials(baseline.ID, 1000, 600)

	summary, err := suite.projects.GetProjectSummary(suite.caller(), id)
	suite.Require().NoError(err)
	suite.InDelta(1000, summary.TotalValue, 0.001)
	suite.InDelta(0.4, summary.Margin, 0.001)
}

func (suite *ProjectServiceTestSuite) TestFinancialRollup_ZeroBillMeansZeroMargin() {
	id := suite.createProject("Atlas Rollout", "Globex")

	summary, err := suite.projects.GetProjectSummary(suite.caller(), id)
	suite.Require().NoError(err)
	suite.Zero(summary.TotalValue)
	suite.Zero(summary.Margin)
}

func (suite *ProjectServiceTestSuite) TestSearch_MatchesNameClientAndOwner() {
	suite.createProject("Atlas Rollout", "Globex")
	suite.createProject("Beacon Upgrade", "Initech")

	byName, err := suite.projects.GetProjectSummaries(suite.caller(), ListProjectsInput{
		Page: 1, PageSize: 10, Search: "atlas",
	})
	suite.Require().NoError(err)
	suite.Len(byName.Data, 1)

	byClient, err := suite.projects.GetProjectSummaries(suite.caller(), ListProjectsInput{
		Page: 1, PageSize: 10, Search: "initech",
	})
	suite.Require().NoError(err)
	suite.Len(byClient.Data, 1)

	byOwner, err := suite.projects.GetProjectSummaries(suite.caller(), ListProjectsInput{
		Page: 1, PageSize: 10, Search: "blake",
	})
	suite.Require().NoError(err)
	suite.Len(byOwner.Data, 2)
	suite.Equal(int64(2), byOwner.Meta.TotalMatchingSearch)
}

func (suite *ProjectServiceTestSuite) TestArchivedProjectsExcluded() {
	id := suite.createProject("Atlas Rollout", "Globex")
	suite.Require().NoError(suite.db.Model(&models.Project{}).
		Where("id = ?", id).
		Update("status", models.ProjectStatusArchived).Error)

	result, err := suite.projects.GetProjectSummaries(suite.caller(), ListProjectsInput{Page: 1, PageSize: 10})
	suite.Require().NoError(err)
	suite.Empty(result.Data)
	suite.Equal(int64(0), result.Meta.TotalAll)

	_, err = suite.projects.GetProjectSummary(suite.caller(), id)
	var notFound *apperrors.NotFoundError
	suite.ErrorAs(err, &notFound)
}

func (suite *ProjectServiceTestSuite) TestGetProjectSummary_OtherOwnerNotFound() {
	id := suite.createProject("Atlas Rollout", "Globex")

	stranger := Identity{ID: "someone-else", Email: "else@example.com"}
	_, err := suite.projects.GetProjectSummary(stranger, id)
	suite.Require().Error(err)

	var notFound *apperrors.NotFoundError
	suite.ErrorAs(err, &notFound)
}

func (suite *ProjectServiceTestSuite) TestUpdateProject_EmptyPayloadRejected() {
	id := suite.createProject("Atlas Rollout", "Globex")

	_, err := suite.projects.UpdateProject(suite.caller(), id, UpdateProjectInput{})
	suite.Require().Error(err)

	var validation *apperrors.ValidationError
	suite.ErrorAs(err, &validation)
}

func (suite *ProjectServiceTestSuite) TestUpdateProject_BlankBaselineNameIsAbsent() {
	id := suite.createProject("Atlas Rollout", "Globex")

	blank := "   "
	_, err := suite.projects.UpdateProject(suite.caller(), id, UpdateProjectInput{
		BaselineVersionName: &blank,
	})
	suite.Require().Error(err)

	var validation *apperrors.ValidationError
	suite.ErrorAs(err, &validation)

	// Alongside a real field change, a blank name leaves the baseline alone.
	name := "Atlas Rollout Phase 2"
	_, err = suite.projects.UpdateProject(suite.caller(), id, UpdateProjectInput{
		Name:                &name,
		BaselineVersionName: &blank,
	})
	suite.Require().NoError(err)
	suite.Equal(defaultBaselineName, suite.latestVersion(id).Name)
}

func (suite *ProjectServiceTestSuite) TestUpdateProject_RenamesBaselineAndReassignsCard() {
	id := suite.createProject("Atlas Rollout", "Globex")

	var project models.Project
	suite.Require().NoError(suite.db.First(&project, "id = ?", id).Error)
	card := &models.RateCard{OrganizationID: project.OrganizationID, Name: "Premium", Currency: "USD"}
	suite.Require().NoError(suite.db.Create(card).Error)

	name := "Atlas Rollout Phase 2"
	baselineName := "Approved Baseline"
	summary, err := suite.projects.UpdateProject(suite.caller(), id, UpdateProjectInput{
		Name:                &name,
		BaselineVersionName: &baselineName,
		BaselineRateCardID:  &card.ID,
		BaselineRateCardSet: true,
	})
	suite.Require().NoError(err)
	suite.Equal("Atlas Rollout Phase 2", summary.Name)

	baseline := suite.latestVersion(id)
	suite.Equal("Approved Baseline", baseline.Name)
	suite.Require().NotNil(baseline.RateCardID)
	suite.Equal(card.ID, *baseline.RateCardID)

	suite.Require().NoError(suite.db.First(&project, "id = ?", id).Error)
	suite.Require().NotNil(project.BaselineRateCardID)
	suite.Equal(card.ID, *project.BaselineRateCardID)
}

func (suite *ProjectServiceTestSuite) TestUpdateProject_ClearsBaselineCard() {
	var org models.Organization
	suite.Require().NoError(suite.db.FirstOrCreate(&org, models.Organization{
		Name: "Primary Services Org", Currency: "USD", Timezone: "UTC",
	}).Error)
	card := &models.RateCard{OrganizationID: org.ID, Name: "Standard", Currency: "USD"}
	suite.Require().NoError(suite.db.Create(card).Error)

	id := suite.createProject("Atlas Rollout", "Globex")

	summary, err := suite.projects.UpdateProject(suite.caller(), id, UpdateProjectInput{
		BaselineRateCardSet: true,
	})
	suite.Require().NoError(err)
	suite.NotEmpty(summary.ID)

	var project models.Project
	suite.Require().NoError(suite.db.First(&project, "id = ?", id).Error)
	suite.Nil(project.BaselineRateCardID)
	suite.Nil(suite.latestVersion(id).RateCardID)
}

func (suite *ProjectServiceTestSuite) TestUpdateProject_ForeignRateCardRejected() {
	id := suite.createProject("Atlas Rollout", "Globex")

	other := &models.Organization{Name: "Other Org", Currency: "EUR", Timezone: "UTC"}
	suite.Require().NoError(suite.db.Create(other).Error)
	foreign := &models.RateCard{OrganizationID: other.ID, Name: "Foreign", Currency: "EUR"}
	suite.Require().NoError(suite.db.Create(foreign).Error)

	_, err := suite.projects.UpdateProject(suite.caller(), id, UpdateProjectInput{
		BaselineRateCardID:  &foreign.ID,
		BaselineRateCardSet: true,
	})
	suite.Require().Error(err)

	var validation *apperrors.ValidationError
	suite.ErrorAs(err, &validation)
}

func (suite *ProjectServiceTestSuite) TestGetProjectWorkspace_BaselineHasOwnRollup() {
	id := suite.createProject("Atlas Rollout", "Globex")
	baseline := suite.latestVersion(id)
	suite.addFinancials(baseline.ID, 2000, 800)

	workspace, err := suite.projects.GetProjectWorkspace(suite.caller(), id)
	suite.Require().NoError(err)
	suite.Require().NotNil(workspace.Baseline)
	suite.Equal(baseline.ID, workspace.Baseline.ID)
	suite.Equal(models.BaselineVersionNumber, workspace.Baseline.VersionNumber)
	suite.InDelta(2000, workspace.Baseline.TotalValue, 0.001)
	suite.InDelta(800, workspace.Baseline.TotalCost, 0.001)
	suite.InDelta(0.6, workspace.Baseline.Margin, 0.001)
	suite.Equal(1, workspace.Baseline.AssignmentCount)
}

func TestProjectServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectServiceTestSuite))
}
