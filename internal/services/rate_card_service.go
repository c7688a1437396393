package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/proserv/engagement-api/internal/bootstrap"
	apperrors "github.com/proserv/engagement-api/internal/errors"
	"github.com/proserv/engagement-api/internal/logger"
	"github.com/proserv/engagement-api/internal/models"
	"github.com/proserv/engagement-api/internal/repository"
)

const invalidWindowMessage = "validFrom must be before the validTo date"

// EntryOverride is a caller-supplied rate for one role on a card.
type EntryOverride struct {
	RoleID   string
	BillRate decimal.Decimal
	CostRate decimal.Decimal
}

// CreateRateCardInput represents parameters to create a rate card.
type CreateRateCardInput struct {
	Name      string
	Currency  string
	ValidFrom *time.Time
	ValidTo   *time.Time
	Entries   []EntryOverride
}

// UpdateRateCardInput represents a partial rate card update. The Set flags
// distinguish "leave unchanged" from "clear the bound".
type UpdateRateCardInput struct {
	Name         *string
	Currency     *string
	ValidFrom    *time.Time
	ValidFromSet bool
	ValidTo      *time.Time
	ValidToSet   bool
	Entries      []EntryOverride
}

// RateCardService owns rate card consistency: card mutations and the entry
// backfill that keeps every card aligned with the active role catalog.
type RateCardService struct {
	cardRepo   repository.RateCardRepository
	roleRepo   repository.RoleRepository
	orgContext *OrganizationContextService
}

// NewRateCardService creates a new RateCardService.
func NewRateCardService(cardRepo repository.RateCardRepository, roleRepo repository.RoleRepository, orgContext *OrganizationContextService) *RateCardService {
	return &RateCardService{
		cardRepo:   cardRepo,
		roleRepo:   roleRepo,
		orgContext: orgContext,
	}
}

// ListRateCards backfills entries for the active catalog, then returns every
// card in the organization along with the catalog itself.
func (s *RateCardService) ListRateCards(caller Identity) ([]models.RateCard, []models.Role, error) {
	context, err := s.orgContext.Resolve(caller)
	if err != nil {
		return nil, nil, err
	}

	roles, err := s.roleRepo.ListActive(context.OrganizationID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list roles: %w", err)
	}

	if err := s.BackfillEntriesForRoles(context.OrganizationID, roles); err != nil {
		return nil, nil, err
	}

	cards, err := s.cardRepo.ListByOrganization(context.OrganizationID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list rate cards: %w", err)
	}

	return cards, roles, nil
}

// GetRateCard returns one card scoped to the caller's organization.
func (s *RateCardService) GetRateCard(caller Identity, id string) (*models.RateCard, error) {
	context, err := s.orgContext.Resolve(caller)
	if err != nil {
		return nil, err
	}

	roles, err := s.roleRepo.ListActive(context.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	if err := s.BackfillEntriesForRoles(context.OrganizationID, roles); err != nil {
		return nil, err
	}

	card, err := s.cardRepo.FindByID(context.OrganizationID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("rate card not found")
		}
		return nil, err
	}
	return card, nil
}

// CreateRateCard creates a card with one entry per active role: caller
// override first, then the default catalog, then zero. Card and entries are
// a single atomic write.
func (s *RateCardService) CreateRateCard(caller Identity, input CreateRateCardInput) (*models.RateCard, error) {
	context, err := s.orgContext.Resolve(caller)
	if err != nil {
		return nil, err
	}

	roles, err := s.roleRepo.ListActive(context.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))

	if input.ValidFrom != nil && input.ValidTo != nil && input.ValidFrom.After(*input.ValidTo) {
		return nil, apperrors.NewValidation(invalidWindowMessage)
	}

	overrides := overridesByRole(input.Entries)

	card := &models.RateCard{
		OrganizationID: context.OrganizationID,
		Name:           strings.TrimSpace(input.Name),
		Currency:       currency,
		ValidFrom:      input.ValidFrom,
		ValidTo:        input.ValidTo,
	}

	entries := make([]models.RateCardEntry, 0, len(roles))
	for _, role := range roles {
		bill, cost := s.ratesForRole(role, overrides)
		entries = append(entries, models.RateCardEntry{
			RoleID:   role.ID,
			Currency: currency,
			BillRate: bill,
			CostRate: cost,
		})
	}
	card.Entries = entries

	if err := s.cardRepo.CreateWithEntries(card); err != nil {
		return nil, err
	}

	return s.cardRepo.FindByID(context.OrganizationID, card.ID)
}

// UpdateRateCard applies a partial update. A currency change replaces every
// entry at the new currency (full replace, values carried over); otherwise
// entries are upserted per role with override > prior > default precedence.
// A final backfill pass covers roles created between read and write.
func (s *RateCardService) UpdateRateCard(caller Identity, id string, input UpdateRateCardInput) (*models.RateCard, error) {
	context, err := s.orgContext.Resolve(caller)
	if err != nil {
		return nil, err
	}

	roles, err := s.roleRepo.ListActive(context.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	existing, err := s.cardRepo.FindByID(context.OrganizationID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("rate card not found")
		}
		return nil, err
	}

	nextCurrency := existing.Currency
	if input.Currency != nil {
		nextCurrency = strings.ToUpper(strings.TrimSpace(*input.Currency))
	}

	// The window check runs against the effective bounds, mixing incoming
	// values with whatever the card already has.
	effectiveFrom := existing.ValidFrom
	if input.ValidFromSet {
		effectiveFrom = input.ValidFrom
	}
	effectiveTo := existing.ValidTo
	if input.ValidToSet {
		effectiveTo = input.ValidTo
	}
	if effectiveFrom != nil && effectiveTo != nil && effectiveFrom.After(*effectiveTo) {
		return nil, apperrors.NewValidation(invalidWindowMessage)
	}

	fields := map[string]interface{}{}
	if input.Name != nil {
		fields["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Currency != nil {
		fields["currency"] = nextCurrency
	}
	if input.ValidFromSet {
		fields["valid_from"] = input.ValidFrom
	}
	if input.ValidToSet {
		fields["valid_to"] = input.ValidTo
	}

	if len(fields) > 0 {
		if err := s.cardRepo.UpdateFields(existing.ID, fields); err != nil {
			return nil, err
		}
	}

	overrides := overridesByRole(input.Entries)
	priorEntries := make(map[string]models.RateCardEntry, len(existing.Entries))
	for _, entry := range existing.Entries {
		priorEntries[entry.RoleID] = entry
	}

	payload := make([]models.RateCardEntry, 0, len(roles))
	for _, role := range roles {
		var bill, cost decimal.Decimal
		if override, ok := overrides[role.ID]; ok {
			bill, cost = override.BillRate, override.CostRate
		} else if prior, ok := priorEntries[role.ID]; ok {
			bill, cost = prior.BillRate, prior.CostRate
		} else {
			bill, cost = s.ratesForRole(role, nil)
		}

		payload = append(payload, models.RateCardEntry{
			RateCardID: existing.ID,
			RoleID:     role.ID,
			Currency:   nextCurrency,
			BillRate:   bill,
			CostRate:   cost,
		})
	}

	if existing.Currency != nextCurrency {
		if err := s.cardRepo.ReplaceEntries(existing.ID, payload); err != nil {
			return nil, err
		}
	} else {
		for i := range payload {
			if err := s.cardRepo.UpsertEntry(&payload[i]); err != nil {
				return nil, err
			}
		}
	}

	if err := s.BackfillEntriesForRoles(context.OrganizationID, roles); err != nil {
		return nil, err
	}

	return s.cardRepo.FindByID(context.OrganizationID, existing.ID)
}

// BackfillEntriesForRoles is the consistency-repair primitive: for every card
// in the organization and every given role, ensure an entry exists at the
// card's currency. Idempotent, and a no-op for an empty role set. Interleaved
// archive cascades make this best-effort eventual consistency, not a
// transactional guarantee.
func (s *RateCardService) BackfillEntriesForRoles(organizationID string, roles []models.Role) error {
	if len(roles) == 0 {
		return nil
	}

	cards, err := s.cardRepo.ListByOrganization(organizationID)
	if err != nil {
		return fmt.Errorf("failed to list rate cards: %w", err)
	}

	for _, card := range cards {
		existingKeys := make(map[string]bool, len(card.Entries))
		for _, entry := range card.Entries {
			existingKeys[entry.RoleID+":"+entry.Currency] = true
		}

		for _, role := range roles {
			if existingKeys[role.ID+":"+card.Currency] {
				continue
			}

			bill, cost := s.ratesForRole(role, nil)
			entry := models.RateCardEntry{
				RateCardID: card.ID,
				RoleID:     role.ID,
				Currency:   card.Currency,
				BillRate:   bill,
				CostRate:   cost,
			}
			if err := s.cardRepo.CreateEntry(&entry); err != nil {
				return fmt.Errorf("failed to backfill entry: %w", err)
			}
		}
	}

	return nil
}

// DeleteEntriesForRole removes every entry referencing the role across the
// organization. Called by the role archive cascade.
func (s *RateCardService) DeleteEntriesForRole(organizationID, roleID string) error {
	return s.cardRepo.DeleteEntriesForRole(organizationID, roleID)
}

// DefaultRateCardID resolves the organization's earliest-created card, used
// as the baseline card for new projects. Empty string when none exists.
func (s *RateCardService) DefaultRateCardID(organizationID string) (string, error) {
	card, err := s.cardRepo.FindEarliest(organizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return card.ID, nil
}

// ratesForRole picks a rate pair with override > default catalog > zero
// precedence. Unknown codes default silently to zero, which is a data
// quality hazard, so it is at least logged.
func (s *RateCardService) ratesForRole(role models.Role, overrides map[string]EntryOverride) (decimal.Decimal, decimal.Decimal) {
	if override, ok := overrides[role.ID]; ok {
		return override.BillRate, override.CostRate
	}

	bill, cost, known := bootstrap.DefaultRatesForCode(role.Code)
	if !known {
		logger.Warn().
			Str("role_code", role.Code).
			Str("role_id", role.ID).
			Msg("no default rates for role code, defaulting to zero")
	}
	return bill, cost
}

func overridesByRole(entries []EntryOverride) map[string]EntryOverride {
	if len(entries) == 0 {
		return nil
	}
	byRole := make(map[string]EntryOverride, len(entries))
	for _, entry := range entries {
		byRole[entry.RoleID] = entry
	}
	return byRole
}
