package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoadmap_TolerantFields(t *testing.T) {
	raw := `{"skill_name":"Go","total_duration_months":6,"difficulty_level":null,
		"phases":[{"title":"Basics","topics":"syntax","duration_weeks":{"min":2},"resources":[{"title":"Tour","url":"https://go.dev/tour"}]}]}`

	var roadmap Roadmap
	require.NoError(t, json.Unmarshal([]byte(raw), &roadmap))

	assert.Equal(t, Text("Go"), roadmap.SkillName)
	assert.Equal(t, Text("6"), roadmap.TotalDurationMonths)
	assert.Equal(t, Text(""), roadmap.DifficultyLevel)
	require.Len(t, roadmap.Phases, 1)
	assert.Equal(t, []string{"syntax"}, roadmap.Phases[0].Topics.Strings())
	assert.Equal(t, Text(""), roadmap.Phases[0].DurationWeeks)
	assert.Equal(t, Text("https://go.dev/tour"), roadmap.Phases[0].Resources[0].URL)
}

func TestSkillValidation_ReasonsForms(t *testing.T) {
	var withObject SkillValidation
	require.NoError(t, json.Unmarshal([]byte(`{"is_valid":"true","reasons":{"pros":["jobs"],"cons":"crowded"}}`), &withObject))
	valid, known := withObject.IsValid.Bool()
	assert.True(t, known)
	assert.True(t, valid)
	assert.Equal(t, []string{"jobs"}, withObject.Reasons.Pros.Strings())
	assert.Equal(t, []string{"crowded"}, withObject.Reasons.Cons.Strings())

	var withList SkillValidation
	require.NoError(t, json.Unmarshal([]byte(`{"reasons":["a","b"],"confidence_score":87.5}`), &withList))
	assert.Equal(t, []string{"a", "b"}, withList.Reasons.Pros.Strings())
	assert.Empty(t, withList.Reasons.Cons)
	score, ok := withList.ConfidenceScore.Float()
	assert.True(t, ok)
	assert.Equal(t, 87.5, score)
	_, known = withList.IsValid.Bool()
	assert.False(t, known)
}
