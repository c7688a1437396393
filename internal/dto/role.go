package dto

import (
	"time"

	"github.com/proserv/engagement-api/internal/models"
)

// CreateRoleRequest is the payload for creating a catalog role.
type CreateRoleRequest struct {
	Code        string  `json:"code" binding:"required,min=2,max=20"`
	Name        string  `json:"name" binding:"required,max=140"`
	Description *string `json:"description" binding:"omitempty,max=280"`
}

// UpdateRoleRequest is a partial role update; nil fields are untouched.
type UpdateRoleRequest struct {
	Code        *string `json:"code" binding:"omitempty,min=2,max=20"`
	Name        *string `json:"name" binding:"omitempty,max=140"`
	Description *string `json:"description" binding:"omitempty,max=280"`
}

// RoleDTO is the API shape of a catalog role.
type RoleDTO struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organizationId"`
	Code           string     `json:"code"`
	Name           string     `json:"name"`
	Description    *string    `json:"description"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	ArchivedAt     *time.Time `json:"archivedAt"`
}

// RoleListMeta carries catalog counts alongside a role listing.
type RoleListMeta struct {
	Total         int   `json:"total"`
	ActiveCount   int64 `json:"activeCount"`
	ArchivedCount int64 `json:"archivedCount"`
}

// RoleListResponse is the role listing envelope.
type RoleListResponse struct {
	Data []RoleDTO    `json:"data"`
	Meta RoleListMeta `json:"meta"`
}

// ToRoleDTO converts a role model to its API shape.
func ToRoleDTO(role models.Role) RoleDTO {
	return RoleDTO{
		ID:             role.ID,
		OrganizationID: role.OrganizationID,
		Code:           role.Code,
		Name:           role.Name,
		Description:    role.Description,
		CreatedAt:      role.CreatedAt,
		UpdatedAt:      role.UpdatedAt,
		ArchivedAt:     role.ArchivedAt,
	}
}

// ToRoleDTOs converts a slice of role models.
func ToRoleDTOs(roles []models.Role) []RoleDTO {
	dtos := make([]RoleDTO, len(roles))
	for i, role := range roles {
		dtos[i] = ToRoleDTO(role)
	}
	return dtos
}
