package models

// PipelineStatus is the derived three-state pipeline label for a project.
// It is recomputed on every read and never persisted, so the stored truth
// (project status + version review statuses) can never drift from it.
type PipelineStatus string

const (
	PipelinePlanning   PipelineStatus = "planning"
	PipelineEstimating PipelineStatus = "estimating"
	PipelineInFlight   PipelineStatus = "in-flight"
)

// PipelineStatuses lists every derived status in display order.
var PipelineStatuses = []PipelineStatus{
	PipelinePlanning,
	PipelineEstimating,
	PipelineInFlight,
}

// ReviewActiveStatuses is the set of version review states that move a draft
// project from planning to estimating. The repository's pipeline predicates
// use this same slice, keeping the query mirror in lock-step with
// DerivePipelineStatus.
var ReviewActiveStatuses = []EstimateVersionStatus{
	VersionStatusInReview,
	VersionStatusApproved,
}

// ValidPipelineStatus reports whether s names a derived pipeline status.
func ValidPipelineStatus(s string) bool {
	for _, status := range PipelineStatuses {
		if string(status) == s {
			return true
		}
	}
	return false
}

// DerivePipelineStatus computes the pipeline label from the two raw signals.
// Project activation wins outright; review progress only matters for drafts.
// Archived projects must be excluded before calling this.
func DerivePipelineStatus(status ProjectStatus, versionStatuses []EstimateVersionStatus) PipelineStatus {
	if status == ProjectStatusActive {
		return PipelineInFlight
	}

	for _, vs := range versionStatuses {
		for _, active := range ReviewActiveStatuses {
			if vs == active {
				return PipelineEstimating
			}
		}
	}

	return PipelinePlanning
}
