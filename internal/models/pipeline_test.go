package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivePipelineStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   ProjectStatus
		versions []EstimateVersionStatus
		want     PipelineStatus
	}{
		{
			name:     "active project is in-flight",
			status:   ProjectStatusActive,
			versions: nil,
			want:     PipelineInFlight,
		},
		{
			name:     "active wins over review progress",
			status:   ProjectStatusActive,
			versions: []EstimateVersionStatus{VersionStatusInReview},
			want:     PipelineInFlight,
		},
		{
			name:     "draft with no versions is planning",
			status:   ProjectStatusDraft,
			versions: nil,
			want:     PipelinePlanning,
		},
		{
			name:     "draft with only draft versions is planning",
			status:   ProjectStatusDraft,
			versions: []EstimateVersionStatus{VersionStatusDraft, VersionStatusDraft},
			want:     PipelinePlanning,
		},
		{
			name:     "draft with an in-review version is estimating",
			status:   ProjectStatusDraft,
			versions: []EstimateVersionStatus{VersionStatusDraft, VersionStatusInReview},
			want:     PipelineEstimating,
		},
		{
			name:     "draft with an approved version is estimating",
			status:   ProjectStatusDraft,
			versions: []EstimateVersionStatus{VersionStatusApproved},
			want:     PipelineEstimating,
		},
		{
			name:     "archived version statuses do not count",
			status:   ProjectStatusDraft,
			versions: []EstimateVersionStatus{VersionStatusArchived},
			want:     PipelinePlanning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DerivePipelineStatus(tt.status, tt.versions)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidPipelineStatus(t *testing.T) {
	assert.True(t, ValidPipelineStatus("planning"))
	assert.True(t, ValidPipelineStatus("estimating"))
	assert.True(t, ValidPipelineStatus("in-flight"))
	assert.False(t, ValidPipelineStatus("PLANNING"))
	assert.False(t, ValidPipelineStatus("shipped"))
	assert.False(t, ValidPipelineStatus(""))
}

func TestUserDisplayName(t *testing.T) {
	full := &User{GivenName: "Avery", FamilyName: "Reed", Email: "avery@example.com"}
	assert.Equal(t, "Avery Reed", full.DisplayName())

	givenOnly := &User{GivenName: "Avery"}
	assert.Equal(t, "Avery", givenOnly.DisplayName())

	familyOnly := &User{FamilyName: "Reed"}
	assert.Equal(t, "Reed", familyOnly.DisplayName())

	emailOnly := &User{Email: "avery@example.com"}
	assert.Equal(t, "avery@example.com", emailOnly.DisplayName())

	empty := &User{}
	assert.Equal(t, "Unassigned", empty.DisplayName())

	var nilUser *User
	assert.Equal(t, "Unassigned", nilUser.DisplayName())
}
