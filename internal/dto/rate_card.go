package dto

import (
	"sort"
	"time"

	"github.com/proserv/engagement-api/internal/models"
)

// RateCardEntryInput is a caller-supplied rate override for one role.
type RateCardEntryInput struct {
	RoleID   string  `json:"roleId" binding:"required"`
	BillRate float64 `json:"billRate" binding:"min=0"`
	CostRate float64 `json:"costRate" binding:"min=0"`
}

// CreateRateCardRequest is the payload for creating a rate card. Validity
// bounds are date strings; empty means unbounded.
type CreateRateCardRequest struct {
	Name      string               `json:"name" binding:"required,max=140"`
	Currency  string               `json:"currency" binding:"required,len=3"`
	ValidFrom *string              `json:"validFrom"`
	ValidTo   *string              `json:"validTo"`
	Entries   []RateCardEntryInput `json:"entries" binding:"omitempty,dive"`
}

// UpdateRateCardRequest is a partial rate card update. For the validity
// bounds, an absent field leaves the bound unchanged and an empty string
// clears it.
type UpdateRateCardRequest struct {
	Name      *string              `json:"name" binding:"omitempty,max=140"`
	Currency  *string              `json:"currency" binding:"omitempty,len=3"`
	ValidFrom *string              `json:"validFrom"`
	ValidTo   *string              `json:"validTo"`
	Entries   []RateCardEntryInput `json:"entries" binding:"omitempty,dive"`
}

// RoleRefDTO is the embedded role view on a rate card entry.
type RoleRefDTO struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// RateCardEntryDTO is the API shape of one rate card entry.
type RateCardEntryDTO struct {
	ID       string     `json:"id"`
	RoleID   string     `json:"roleId"`
	Currency string     `json:"currency"`
	BillRate float64    `json:"billRate"`
	CostRate float64    `json:"costRate"`
	Role     RoleRefDTO `json:"role"`
}

// RateCardDTO is the API shape of a rate card.
type RateCardDTO struct {
	ID             string             `json:"id"`
	OrganizationID string             `json:"organizationId"`
	Name           string             `json:"name"`
	Currency       string             `json:"currency"`
	ValidFrom      *time.Time         `json:"validFrom"`
	ValidTo        *time.Time         `json:"validTo"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
	Entries        []RateCardEntryDTO `json:"entries"`
}

// RateCardListResponse is the rate card listing envelope, carrying the
// active role catalog alongside the cards.
type RateCardListResponse struct {
	Data  []RateCardDTO `json:"data"`
	Roles []RoleRefDTO  `json:"roles"`
}

// ToRateCardDTO shapes a card for the API: entries whose role has been
// archived are filtered out (the archive cascade may not have caught up
// yet), the rest sort by role name, and stored decimals flatten to numbers.
func ToRateCardDTO(card models.RateCard) RateCardDTO {
	active := make([]models.RateCardEntry, 0, len(card.Entries))
	for _, entry := range card.Entries {
		if entry.Role.IsArchived() {
			continue
		}
		active = append(active, entry)
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].Role.Name < active[j].Role.Name
	})

	entries := make([]RateCardEntryDTO, len(active))
	for i, entry := range active {
		entries[i] = RateCardEntryDTO{
			ID:       entry.ID,
			RoleID:   entry.RoleID,
			Currency: entry.Currency,
			BillRate: entry.BillRate.InexactFloat64(),
			CostRate: entry.CostRate.InexactFloat64(),
			Role:     ToRoleRefDTO(entry.Role),
		}
	}

	return RateCardDTO{
		ID:             card.ID,
		OrganizationID: card.OrganizationID,
		Name:           card.Name,
		Currency:       card.Currency,
		ValidFrom:      card.ValidFrom,
		ValidTo:        card.ValidTo,
		CreatedAt:      card.CreatedAt,
		UpdatedAt:      card.UpdatedAt,
		Entries:        entries,
	}
}

// ToRateCardDTOs converts a slice of cards.
func ToRateCardDTOs(cards []models.RateCard) []RateCardDTO {
	dtos := make([]RateCardDTO, len(cards))
	for i, card := range cards {
		dtos[i] = ToRateCardDTO(card)
	}
	return dtos
}

// ToRoleRefDTO converts a role model to its embedded reference shape.
func ToRoleRefDTO(role models.Role) RoleRefDTO {
	return RoleRefDTO{
		ID:          role.ID,
		Code:        role.Code,
		Name:        role.Name,
		Description: role.Description,
	}
}

// ToRoleRefDTOs converts a slice of roles.
func ToRoleRefDTOs(roles []models.Role) []RoleRefDTO {
	refs := make([]RoleRefDTO, len(roles))
	for i, role := range roles {
		refs[i] = ToRoleRefDTO(role)
	}
	return refs
}
