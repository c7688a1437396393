package dto

import (
	"fmt"
	"time"

	"github.com/proserv/engagement-api/internal/models"
)

// DateLayout is the wire format for project start/end dates.
const DateLayout = "2006-01-02"

// CreateProjectRequest is the payload for creating a project with its
// baseline version.
type CreateProjectRequest struct {
	Name                string  `json:"name" binding:"required,max=140"`
	ClientName          string  `json:"clientName" binding:"required,max=140"`
	BaseCurrency        string  `json:"baseCurrency" binding:"required,len=3"`
	BillingModel        string  `json:"billingModel" binding:"required,oneof=TIME_AND_MATERIAL FIXED_PRICE RETAINER MANAGED_SERVICE"`
	StartDate           string  `json:"startDate" binding:"required"`
	EndDate             *string `json:"endDate"`
	BaselineVersionName *string `json:"baselineVersionName" binding:"omitempty,max=140"`
}

// UpdateProjectRequest is a partial project update. Absent fields are left
// untouched; for EndDate and BaselineRateCardId an empty string clears the
// value.
type UpdateProjectRequest struct {
	Name                *string `json:"name" binding:"omitempty,max=140"`
	ClientName          *string `json:"clientName" binding:"omitempty,max=140"`
	BaseCurrency        *string `json:"baseCurrency" binding:"omitempty,len=3"`
	BillingModel        *string `json:"billingModel" binding:"omitempty,oneof=TIME_AND_MATERIAL FIXED_PRICE RETAINER MANAGED_SERVICE"`
	StartDate           *string `json:"startDate"`
	EndDate             *string `json:"endDate"`
	BaselineVersionName *string `json:"baselineVersionName" binding:"omitempty,max=140"`
	BaselineRateCardID  *string `json:"baselineRateCardId"`
}

// ProjectSummary is one row of the portfolio listing.
type ProjectSummary struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Client       string                `json:"client"`
	Owner        string                `json:"owner"`
	Status       models.PipelineStatus `json:"status"`
	StartDate    string                `json:"startDate"`
	EndDate      *string               `json:"endDate,omitempty"`
	BillingModel models.BillingModel   `json:"billingModel"`
	TotalValue   float64               `json:"totalValue"`
	Currency     string                `json:"currency"`
	Margin       float64               `json:"margin"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// ProjectListMeta is the pagination envelope of the portfolio listing.
type ProjectListMeta struct {
	Page                int   `json:"page"`
	PageSize            int   `json:"pageSize"`
	TotalItems          int64 `json:"totalItems"`
	TotalPages          int   `json:"totalPages"`
	TotalMatchingSearch int64 `json:"totalMatchingSearch"`
	TotalAll            int64 `json:"totalAll"`
}

// PipelineCounts is the per-pipeline-status facet of the current search.
type PipelineCounts struct {
	Planning   int64 `json:"planning"`
	Estimating int64 `json:"estimating"`
	InFlight   int64 `json:"in-flight"`
}

// ProjectListResult is the full portfolio listing response.
type ProjectListResult struct {
	Data        []ProjectSummary `json:"data"`
	Meta        ProjectListMeta  `json:"meta"`
	Counts      PipelineCounts   `json:"counts"`
	LastUpdated *time.Time       `json:"lastUpdated"`
}

// BaselineDTO is the baseline version block of a project workspace.
type BaselineDTO struct {
	ID              string                       `json:"id"`
	Name            string                       `json:"name"`
	VersionNumber   int                          `json:"versionNumber"`
	Status          models.EstimateVersionStatus `json:"status"`
	UpdatedAt       time.Time                    `json:"updatedAt"`
	RateCardID      *string                      `json:"rateCardId"`
	RateCardName    *string                      `json:"rateCardName,omitempty"`
	RateCard        *RateCardDTO                 `json:"rateCard"`
	TotalValue      float64                      `json:"totalValue"`
	TotalCost       float64                      `json:"totalCost"`
	Margin          float64                      `json:"margin"`
	Currency        string                       `json:"currency"`
	AssignmentCount int                          `json:"assignmentCount"`
}

// ProjectWorkspace is the single-project read with its baseline attached.
type ProjectWorkspace struct {
	Summary  ProjectSummary `json:"summary"`
	Baseline *BaselineDTO   `json:"baseline"`
}

// ParseDate parses a wire date, accepting the date-only layout or RFC 3339.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return t, nil
}

// FormatDate renders a date in the wire layout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
