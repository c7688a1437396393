package utils

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/proserv/engagement-api/internal/constants"
	apperrors "github.com/proserv/engagement-api/internal/errors"
	"github.com/proserv/engagement-api/internal/models"
)

// ListQuery holds the parsed query parameters of the portfolio listing.
type ListQuery struct {
	Page     int
	PageSize int
	Search   string
	Status   *models.PipelineStatus
}

// ParseListQuery extracts and validates listing parameters from the request.
// Out-of-range page numbers are tolerated here and clamped against the real
// total downstream; an unknown status value is rejected outright.
func ParseListQuery(c *gin.Context) (ListQuery, error) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPage)))
	if page < constants.MinPage {
		page = constants.MinPage
	}

	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(constants.DefaultPageSize)))
	if pageSize < 1 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	query := ListQuery{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
	}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		if !models.ValidPipelineStatus(raw) {
			return ListQuery{}, apperrors.NewValidation("invalid status filter: " + raw)
		}
		status := models.PipelineStatus(raw)
		query.Status = &status
	}

	return query, nil
}
