package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/proserv/engagement-api/internal/dto"
	apperrors "github.com/proserv/engagement-api/internal/errors"
	"github.com/proserv/engagement-api/internal/middleware"
	"github.com/proserv/engagement-api/internal/models"
	"github.com/proserv/engagement-api/internal/services"
	"github.com/proserv/engagement-api/internal/utils"
)

// ProjectHandler serves the portfolio endpoints.
type ProjectHandler struct {
	projects *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projects *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// ListProjects returns one page of the caller's portfolio with pagination
// metadata, pipeline facet counts, and the freshest matching update time.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	query, err := utils.ParseListQuery(c)
	if err != nil {
		apperrors.RespondError(c, err)
		return
	}

	result, err := h.projects.GetProjectSummaries(caller, services.ListProjectsInput{
		Page:     query.Page,
		PageSize: query.PageSize,
		Search:   query.Search,
		Status:   query.Status,
	})
	if err != nil {
		apperrors.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetProject returns a single owned project summary.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	summary, err := h.projects.GetProjectSummary(caller, c.Param("id"))
	if err != nil {
		apperrors.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetProjectWorkspace returns the summary plus the baseline version block.
func (h *ProjectHandler) GetProjectWorkspace(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	workspace, err := h.projects.GetProjectWorkspace(caller, c.Param("id"))
	if err != nil {
		apperrors.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, workspace)
}

// CreateProject creates a project with its baseline version.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, err.Error())
		return
	}

	startDate, err := dto.ParseDate(req.StartDate)
	if err != nil {
		apperrors.BadRequest(c, err.Error())
		return
	}

	var endDate *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		parsed, err := dto.ParseDate(*req.EndDate)
		if err != nil {
			apperrors.BadRequest(c, err.Error())
			return
		}
		endDate = &parsed
	}

	baselineName := ""
	if req.BaselineVersionName != nil {
		baselineName = *req.BaselineVersionName
	}

	summary, err := h.projects.CreateProject(caller, services.CreateProjectInput{
		Name:                req.Name,
		ClientName:          req.ClientName,
		BaseCurrency:        req.BaseCurrency,
		BillingModel:        models.BillingModel(req.BillingModel),
		StartDate:           startDate,
		EndDate:             endDate,
		BaselineVersionName: baselineName,
	})
	if err != nil {
		apperrors.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, summary)
}

// UpdateProject applies a partial project update, including the baseline
// rename and baseline rate card reassignment, as one unit.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, err.Error())
		return
	}

	input := services.UpdateProjectInput{
		Name:                req.Name,
		ClientName:          req.ClientName,
		BaseCurrency:        req.BaseCurrency,
		BaselineVersionName: req.BaselineVersionName,
	}

	if req.BillingModel != nil {
		model := models.BillingModel(*req.BillingModel)
		input.BillingModel = &model
	}

	if req.StartDate != nil && *req.StartDate != "" {
		parsed, err := dto.ParseDate(*req.StartDate)
		if err != nil {
			apperrors.BadRequest(c, err.Error())
			return
		}
		input.StartDate = &parsed
	}

	if req.EndDate != nil {
		input.EndDateSet = true
		if *req.EndDate != "" {
			parsed, err := dto.ParseDate(*req.EndDate)
			if err != nil {
				apperrors.BadRequest(c, err.Error())
				return
			}
			input.EndDate = &parsed
		}
	}

	if req.BaselineRateCardID != nil {
		input.BaselineRateCardSet = true
		if *req.BaselineRateCardID != "" {
			input.BaselineRateCardID = req.BaselineRateCardID
		}
	}

	summary, err := h.projects.UpdateProject(caller, c.Param("id"), input)
	if err != nil {
		apperrors.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
