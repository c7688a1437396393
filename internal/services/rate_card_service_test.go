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

type RateGovernanceTestSuite struct {
	suite.Suite
	db        *gorm.DB
	roles     *RoleService
	rateCards *RateCardService
}

func (suite *RateGovernanceTestSuite) SetupTest() {
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
	)
	suite.Require().NoError(err)

	orgRepo := repository.NewOrganizationRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)
	roleRepo := repository.NewRoleRepository(suite.db)
	cardRepo := repository.NewRateCardRepository(suite.db)

	orgContext := NewOrganizationContextService(orgRepo, userRepo)
	suite.rateCards = NewRateCardService(cardRepo, roleRepo, orgContext)
	suite.roles = NewRoleService(roleRepo, orgContext, suite.rateCards)
}

func (suite *RateGovernanceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *RateGovernanceTestSuite) caller() Identity {
	return Identity{ID: "engagement-lead", Email: "engagement.lead@proserv.local"}
}

func (suite *RateGovernanceTestSuite) createRole(code, name string) *models.Role {
	role, err := suite.roles.CreateRole(suite.caller(), CreateRoleInput{Code: code, Name: name})
	suite.Require().NoError(err)
	return role
}

func (suite *RateGovernanceTestSuite) entriesOf(cardID string) []models.RateCardEntry {
	var entries []models.RateCardEntry
	suite.Require().NoError(suite.db.Where("rate_card_id = ?", cardID).Find(&entries).Error)
	return entries
}

func (suite *RateGovernanceTestSuite) TestCreateRole_NormalizesAndBackfills() {
	card, err := suite.rateCards.CreateRateCard(suite.caller(), CreateRateCardInput{
		Name:     "Standard",
		Currency: "usd",
	})
	suite.Require().NoError(err)
	suite.Equal("USD", card.Currency)
	suite.Empty(suite.entriesOf(card.ID))

	description := "  Leads  delivery   teams "
	role, err := suite.roles.CreateRole(suite.caller(), CreateRoleInput{
		Code:        " arch ",
		Name:        "Solution Architect",
		Description: &description,
	})
	suite.Require().NoError(err)
	suite.Equal("ARCH", role.Code)
	suite.Require().NotNil(role.Description)
	suite.Equal("Leads delivery teams", *role.Description)

	entries := suite.entriesOf(card.ID)
	suite.Require().Len(entries, 1)
	suite.Equal(role.ID, entries[0].RoleID)
	suite.Equal("USD", entries[0].Currency)
	suite.True(entries[0].BillRate.Equal(decimal.NewFromInt(325)))
	suite.True(entries[0].CostRate.Equal(decimal.NewFromInt(165)))
}

func (suite *RateGovernanceTestSuite) TestCreateRole_DuplicateCodeConflicts() {
	suite.createRole("ARCH", "Solution Architect")

	_, err := suite.roles.CreateRole(suite.caller(), CreateRoleInput{
		Code: "arch",
		Name: "Another Architect",
	})
	suite.Require().Error(err)

	var conflict *apperrors.ConflictError
	suite.ErrorAs(err, &conflict)
}

func (suite *RateGovernanceTestSuite) TestUpdateRole_NoChangesIsNoOp() {
	role := suite.createRole("ANA", "Business Analyst")
	before := role.UpdatedAt

	same := "ANA"
	updated, err := suite.roles.UpdateRole(suite.caller(), role.ID, UpdateRoleInput{Code: &same})
	suite.Require().NoError(err)
	suite.WithinDuration(before, updated.UpdatedAt, time.Millisecond)
}

func (suite *RateGovernanceTestSuite) TestUpdateRole_NotFound() {
	_, err := suite.roles.UpdateRole(suite.caller(), "missing", UpdateRoleInput{})
	suite.Require().Error(err)

	var notFound *apperrors.NotFoundError
	suite.ErrorAs(err, &notFound)
}

func (suite *RateGovernanceTestSuite) TestArchiveRole_CascadesEntryDeletion() {
	role := suite.createRole("ENGM", "Engagement Manager")
	keep := suite.createRole("DEL", "Delivery Consultant")

	card, err := suite.rateCards.CreateRateCard(suite.caller(), CreateRateCardInput{
		Name:     "Standard",
		Currency: "USD",
	})
	suite.Require().NoError(err)
	suite.Len(suite.entriesOf(card.ID), 2)

	archived, err := suite.roles.ArchiveRole(suite.caller(), role.ID)
	suite.Require().NoError(err)
	suite.True(archived.IsArchived())

	entries := suite.entriesOf(card.ID)
	suite.Require().Len(entries, 1)
	suite.Equal(keep.ID, entries[0].RoleID)

	// Re-archiving keeps the original timestamp.
	again, err := suite.roles.ArchiveRole(suite.caller(), role.ID)
	suite.Require().NoError(err)
	suite.Equal(archived.ArchivedAt.Unix(), again.ArchivedAt.Unix())
}

func (suite *RateGovernanceTestSuite) TestCreateRateCard_OverridesBeatDefaults() {
	arch := suite.createRole("ARCH", "Solution Architect")
	suite.createRole("ANA", "Business Analyst")

	card, err := suite.rateCards.CreateRateCard(suite.caller(), CreateRateCardInput{
		Name:     "Premium",
		Currency: "USD",
		Entries: []EntryOverride{
			{RoleID: arch.ID, BillRate: decimal.NewFromInt(400), CostRate: decimal.NewFromInt(200)},
		},
	})
	suite.Require().NoError(err)

	byRole := map[string]models.RateCardEntry{}
	for _, entry := range suite.entriesOf(card.ID) {
		byRole[entry.RoleID] = entry
	}
	suite.Require().Len(byRole, 2)
	suite.True(byRole[arch.ID].BillRate.Equal(decimal.NewFromInt(400)))
	suite.True(byRole[arch.ID].CostRate.Equal(decimal.NewFromInt(200)))
}

func (suite *RateGovernanceTestSuite) TestCreateRateCard_UnknownCodeDefaultsToZero() {
	role := suite.createRole("QA", "Quality Analyst")

	card, err := suite.rateCards.CreateRateCard(suite.caller(), CreateRateCardInput{
		Name:     "Standard",
		Currency: "USD",
	})
	suite.Require().NoError(err)

	entries := suite.entriesOf(card.ID)
	suite.Require().Len(entries, 1)
	suite.Equal(role.ID, entries[0].RoleID)
	suite.True(entries[0].BillRate.IsZero())
	suite.True(entries[0].CostRate.IsZero())
}

func (suite *RateGovernanceTestSuite) TestCreateRateCard_InvalidWindow() {
	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := suite.rateCards.CreateRateCard(suite.caller(), CreateRateCardInput{
		Name:      "Standard",
		Currency:  "USD",
		ValidFrom: &from,
		ValidTo:   &to,
	})
	suite.Require().Error(err)

	var validation *apperrors.ValidationError
	suite.ErrorAs(err, &validation)
}

func (suite *RateGovernanceTestSuite) TestUpdateRateCard_WindowCheckUsesEffectiveBounds() {
	to := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	card, err := suite.rateCards.CreateRateCard(suite.caller(), CreateRateCardInput{
		Name:     "Standard",
		Currency: "USD",
		ValidTo:  &to,
	})
	suite.Require().NoError(err)

	// Incoming lower bound collides with the stored upper bound.
	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err = suite.rateCards.UpdateRateCard(suite.caller(), card.ID, UpdateRateCardInput{
		ValidFrom:    &from,
		ValidFromSet: true,
	})
	suite.Require().Error(err)

	var validation *apperrors.ValidationError
	suite.ErrorAs(err, &validation)
}

func (suite *RateGovernanceTestSuite) TestUpdateRateCard_CurrencyMigrationReplacesEntries() {
	arch := suite.createRole("ARCH", "Solution Architect")

	card, err := suite.rateCards.CreateRateCard(suite.caller(), CreateRateCardInput{
		Name:     "Standard",
		Currency: "USD",
	})
	suite.Require().NoError(err)

	eur := "eur"
	updated, err := suite.rateCards.UpdateRateCard(suite.caller(), card.ID, UpdateRateCardInput{
		Currency: &eur,
	})
	suite.Require().NoError(err)
	suite.Equal("EUR", updated.Currency)

	entries := suite.entriesOf(card.ID)
	suite.Require().Len(entries, 1)
	suite.Equal("EUR", entries[0].Currency)
	suite.Equal(arch.ID, entries[0].RoleID)
	// Values carry over; only the currency label changes.
	suite.True(entries[0].BillRate.Equal(decimal.NewFromInt(325)))
}

func (suite *RateGovernanceTestSuite) TestUpdateRateCard_OverrideChangesOnlyThatEntry() {
	qa := suite.createRole("QA", "Quality Analyst")
	arch := suite.createRole("ARCH", "Solution Architect")

	card, err := suite.rateCards.CreateRateCard(suite.caller(), CreateRateCardInput{
		Name:     "Standard",
		Currency: "USD",
	})
	suite.Require().NoError(err)

	_, err = suite.rateCards.UpdateRateCard(suite.caller(), card.ID, UpdateRateCardInput{
		Entries: []EntryOverride{
			{RoleID: qa.ID, BillRate: decimal.NewFromInt(150), CostRate: decimal.NewFromInt(80)},
		},
	})
	suite.Require().NoError(err)

	fetched, err := suite.rateCards.GetRateCard(suite.caller(), card.ID)
	suite.Require().NoError(err)

	byRole := map[string]models.RateCardEntry{}
	for _, entry := range fetched.Entries {
		byRole[entry.RoleID] = entry
	}
	suite.Require().Len(byRole, 2)
	suite.True(byRole[qa.ID].BillRate.Equal(decimal.NewFromInt(150)))
	suite.True(byRole[qa.ID].CostRate.Equal(decimal.NewFromInt(80)))
	suite.True(byRole[arch.ID].BillRate.Equal(decimal.NewFromInt(325)))
	suite.True(byRole[arch.ID].CostRate.Equal(decimal.NewFromInt(165)))
}

func (suite *RateGovernanceTestSuite) TestBackfill_Idempotent() {
	suite.createRole("ARCH", "Solution Architect")
	suite.createRole("ANA", "Business Analyst")

	card, err := suite.rateCards.CreateRateCard(suite.caller(), CreateRateCardInput{
		Name:     "Standard",
		Currency: "USD",
	})
	suite.Require().NoError(err)

	for i := 0; i < 3; i++ {
		_, _, err := suite.rateCards.ListRateCards(suite.caller())
		suite.Require().NoError(err)
	}

	suite.Len(suite.entriesOf(card.ID), 2)
}

func (suite *RateGovernanceTestSuite) TestGetRateCard_NotFound() {
	_, err := suite.rateCards.GetRateCard(suite.caller(), "missing")
	suite.Require().Error(err)

	var notFound *apperrors.NotFoundError
	suite.ErrorAs(err, &notFound)
}

func TestRateGovernanceTestSuite(t *testing.T) {
	suite.Run(t, new(RateGovernanceTestSuite))
}
