package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/proserv/engagement-api/internal/dto"
	apperrors "github.com/proserv/engagement-api/internal/errors"
	"github.com/proserv/engagement-api/internal/models"
	"github.com/proserv/engagement-api/internal/repository"
)

const roleCodeConflictMessage = "a role with this code already exists for the organization"

// RoleService owns the role catalog half of rate governance: creating,
// updating, and archiving roles, and triggering entry backfills so every
// rate card stays consistent with the live catalog.
type RoleService struct {
	roleRepo   repository.RoleRepository
	orgContext *OrganizationContextService
	rateCards  *RateCardService
}

// NewRoleService creates a new RoleService.
func NewRoleService(roleRepo repository.RoleRepository, orgContext *OrganizationContextService, rateCards *RateCardService) *RoleService {
	return &RoleService{
		roleRepo:   roleRepo,
		orgContext: orgContext,
		rateCards:  rateCards,
	}
}

// CreateRoleInput represents parameters to create a role.
type CreateRoleInput struct {
	Code        string
	Name        string
	Description *string
}

// UpdateRoleInput represents a partial role update. Nil fields are left
// untouched.
type UpdateRoleInput struct {
	Code        *string
	Name        *string
	Description *string
}

// ListRoles returns the caller organization's roles with catalog counts.
func (s *RoleService) ListRoles(caller Identity, includeArchived bool) ([]models.Role, dto.RoleListMeta, error) {
	context, err := s.orgContext.Resolve(caller)
	if err != nil {
		return nil, dto.RoleListMeta{}, err
	}

	roles, err := s.roleRepo.List(context.OrganizationID, includeArchived)
	if err != nil {
		return nil, dto.RoleListMeta{}, fmt.Errorf("failed to list roles: %w", err)
	}

	active, archived, err := s.roleRepo.CountByArchiveState(context.OrganizationID)
	if err != nil {
		return nil, dto.RoleListMeta{}, fmt.Errorf("failed to count roles: %w", err)
	}

	return roles, dto.RoleListMeta{
		Total:         len(roles),
		ActiveCount:   active,
		ArchivedCount: archived,
	}, nil
}

// CreateRole creates a role and backfills its rate card entries. Uniqueness
// of (organization, code) is enforced by the store and translated to a
// conflict, not pre-checked.
func (s *RoleService) CreateRole(caller Identity, input CreateRoleInput) (*models.Role, error) {
	context, err := s.orgContext.Resolve(caller)
	if err != nil {
		return nil, err
	}

	role := &models.Role{
		OrganizationID: context.OrganizationID,
		Code:           normalizeRoleCode(input.Code),
		Name:           strings.TrimSpace(input.Name),
		Description:    normalizeDescription(input.Description),
	}

	if err := s.roleRepo.Create(role); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewConflict(roleCodeConflictMessage)
		}
		return nil, err
	}

	// Out-of-band consistency step: every card in the org gets an entry for
	// the new role. Best effort between here and the next backfill call.
	if err := s.rateCards.BackfillEntriesForRoles(context.OrganizationID, []models.Role{*role}); err != nil {
		return nil, err
	}

	return role, nil
}

// UpdateRole applies a partial update. Only fields that actually changed are
// written; an unchanged update is a no-op returning current state.
func (s *RoleService) UpdateRole(caller Identity, id string, input UpdateRoleInput) (*models.Role, error) {
	context, err := s.orgContext.Resolve(caller)
	if err != nil {
		return nil, err
	}

	existing, err := s.roleRepo.FindByID(context.OrganizationID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("role not found")
		}
		return nil, err
	}

	fields := map[string]interface{}{}

	if input.Code != nil {
		if code := normalizeRoleCode(*input.Code); code != "" && code != existing.Code {
			fields["code"] = code
		}
	}

	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" && name != existing.Name {
			fields["name"] = name
		}
	}

	if input.Description != nil {
		fields["description"] = normalizeDescription(input.Description)
	}

	if len(fields) == 0 {
		return existing, nil
	}

	if err := s.roleRepo.UpdateFields(existing.ID, fields); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewConflict(roleCodeConflictMessage)
		}
		return nil, err
	}

	return s.roleRepo.FindByID(context.OrganizationID, id)
}

// ArchiveRole marks a role archived and hard-deletes its rate card entries
// across the organization. Re-archiving is idempotent. The cascade is the one
// destructive operation in the system and is irreversible: a later backfill
// creates fresh default entries, never the prior rates.
func (s *RoleService) ArchiveRole(caller Identity, id string) (*models.Role, error) {
	context, err := s.orgContext.Resolve(caller)
	if err != nil {
		return nil, err
	}

	existing, err := s.roleRepo.FindByID(context.OrganizationID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("role not found")
		}
		return nil, err
	}

	if existing.IsArchived() {
		return existing, nil
	}

	if err := s.roleRepo.Archive(existing.ID, time.Now()); err != nil {
		return nil, err
	}

	if err := s.rateCards.DeleteEntriesForRole(context.OrganizationID, existing.ID); err != nil {
		return nil, err
	}

	return s.roleRepo.FindByID(context.OrganizationID, id)
}

func normalizeRoleCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// normalizeDescription trims and collapses inner whitespace; empty input
// stores NULL rather than an empty string.
func normalizeDescription(description *string) *string {
	if description == nil {
		return nil
	}
	collapsed := strings.Join(strings.Fields(*description), " ")
	if collapsed == "" {
		return nil
	}
	return &collapsed
}
