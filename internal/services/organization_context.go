package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/proserv/engagement-api/internal/models"
	"github.com/proserv/engagement-api/internal/repository"
)

const (
	defaultOrganizationName = "Primary Services Org"
	defaultGivenName        = "Engagement"
	defaultFamilyName       = "Lead"
)

// OrganizationContextService resolves (or lazily provisions) the organization
// and member record a caller belongs to. It is the leaf dependency of both
// engines: every inbound operation starts here.
type OrganizationContextService struct {
	orgRepo  repository.OrganizationRepository
	userRepo repository.UserRepository
}

// NewOrganizationContextService creates a new OrganizationContextService.
func NewOrganizationContextService(orgRepo repository.OrganizationRepository, userRepo repository.UserRepository) *OrganizationContextService {
	return &OrganizationContextService{
		orgRepo:  orgRepo,
		userRepo: userRepo,
	}
}

// Resolve maps a caller identity to its organization scope. Unknown callers
// are attached to the earliest-created organization; a completely empty
// deployment gets a default organization first. Repeated calls converge to
// the same member/organization pair.
func (s *OrganizationContextService) Resolve(caller Identity) (OrgContext, error) {
	existing, err := s.userRepo.FindByIdentity(caller.ID, caller.Email)
	if err == nil {
		currency := existing.Organization.Currency
		if currency == "" {
			currency = "USD"
		}
		return OrgContext{
			OrganizationID: existing.OrganizationID,
			Currency:       currency,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return OrgContext{}, fmt.Errorf("failed to look up member: %w", err)
	}

	org, err := s.orgRepo.FindEarliest()
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return OrgContext{}, fmt.Errorf("failed to look up organization: %w", err)
		}

		org = &models.Organization{
			Name:     defaultOrganizationName,
			Timezone: "UTC",
			Currency: "USD",
		}
		if err := s.orgRepo.Create(org); err != nil {
			return OrgContext{}, fmt.Errorf("failed to create organization: %w", err)
		}
	}

	if err := s.ensureMemberRecord(caller, org.ID); err != nil {
		return OrgContext{}, err
	}

	return OrgContext{OrganizationID: org.ID, Currency: org.Currency}, nil
}

func (s *OrganizationContextService) ensureMemberRecord(caller Identity, organizationID string) error {
	givenName := strings.TrimSpace(caller.GivenName)
	if givenName == "" {
		givenName = defaultGivenName
	}
	familyName := strings.TrimSpace(caller.FamilyName)
	if familyName == "" {
		familyName = defaultFamilyName
	}

	user := &models.User{
		ID:             caller.ID,
		OrganizationID: organizationID,
		Email:          caller.Email,
		GivenName:      givenName,
		FamilyName:     familyName,
	}

	if err := s.userRepo.Upsert(user); err != nil {
		return fmt.Errorf("failed to upsert member: %w", err)
	}
	return nil
}
