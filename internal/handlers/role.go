package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/proserv/engagement-api/internal/dto"
	apperrors "github.com/proserv/engagement-api/internal/errors"
	"github.com/proserv/engagement-api/internal/middleware"
	"github.com/proserv/engagement-api/internal/services"
)

// RoleHandler serves the role catalog endpoints.
type RoleHandler struct {
	roles *services.RoleService
}

// NewRoleHandler creates a new RoleHandler.
func NewRoleHandler(roles *services.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

// ListRoles returns the caller organization's role catalog with counts.
// Archived roles are included only when includeArchived=true.
func (h *RoleHandler) ListRoles(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	includeArchived := c.Query("includeArchived") == "true"

	roles, meta, err := h.roles.ListRoles(caller, includeArchived)
	if err != nil {
		apperrors.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RoleListResponse{
		Data: dto.ToRoleDTOs(roles),
		Meta: meta,
	})
}

// CreateRole creates a catalog role and backfills rate card entries for it.
func (h *RoleHandler) CreateRole(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req dto.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, err.Error())
		return
	}

	role, err := h.roles.CreateRole(caller, services.CreateRoleInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		apperrors.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToRoleDTO(*role))
}

// UpdateRole applies a partial update to a role.
func (h *RoleHandler) UpdateRole(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, err.Error())
		return
	}

	role, err := h.roles.UpdateRole(caller, c.Param("id"), services.UpdateRoleInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		apperrors.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRoleDTO(*role))
}

// ArchiveRole archives a role and removes its rate card entries.
func (h *RoleHandler) ArchiveRole(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	role, err := h.roles.ArchiveRole(caller, c.Param("id"))
	if err != nil {
		apperrors.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRoleDTO(*role))
}
