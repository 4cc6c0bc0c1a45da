package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalTemplateYAMLRoundTrips(t *testing.T) {
	mode := ModeMixed
	retry := 2
	policy := FailurePolicyAutoReplan
	tmpl := Template{
		TemplateID:           "review-fanout",
		Name:                 "Review Fanout",
		DefaultWorkerMode:    &mode,
		DefaultRetryLimit:    &retry,
		DefaultFailurePolicy: &policy,
		SpawnProfiles: []SpawnProfile{
			{Role: "reviewer", Provider: "openai", Model: "gpt-4o"},
		},
	}

	data, err := MarshalTemplateYAML(tmpl)
	require.NoError(t, err)
	assert.Contains(t, string(data), "templateId: review-fanout")

	got, err := UnmarshalTemplateYAML(data)
	require.NoError(t, err)
	assert.Equal(t, tmpl.TemplateID, got.TemplateID)
	assert.Equal(t, tmpl.Name, got.Name)
	require.NotNil(t, got.DefaultWorkerMode)
	assert.Equal(t, ModeMixed, *got.DefaultWorkerMode)
	require.Len(t, got.SpawnProfiles, 1)
	assert.Equal(t, "reviewer", got.SpawnProfiles[0].Role)
}

func TestUnmarshalTemplateYAMLRejectsMissingTemplateID(t *testing.T) {
	_, err := UnmarshalTemplateYAML([]byte("name: Untitled\n"))
	require.Error(t, err)
}
