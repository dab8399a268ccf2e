package terms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectSymptomAndDuration(t *testing.T) {
	detector, err := NewDetector(nil)
	require.NoError(t, err)

	result := detector.Detect("I have nausea for 3 days")

	require.Contains(t, result, "symptom")
	require.Contains(t, result, "duration")
	assert.Equal(t, []string{"nausea"}, result["symptom"])
	assert.Equal(t, []string{"3 days"}, result["duration"])
}

func TestDetectIsCaseInsensitive(t *testing.T) {
	detector, err := NewDetector(nil)
	require.NoError(t, err)

	result := detector.Detect("SEVERE Headache and Fever")

	assert.Equal(t, []string{"severe"}, result["severity"])
	assert.ElementsMatch(t, []string{"headache", "fever"}, result["symptom"])
}

func TestDetectOmitsEmptyCategories(t *testing.T) {
	detector, err := NewDetector(nil)
	require.NoError(t, err)

	result := detector.Detect("hello there, how are you?")

	assert.Empty(t, result)

	for category, matched := range result {
		assert.NotEmpty(t, matched, "category %q must not be present with an empty list", category)
	}
}

func TestDetectDeduplicatesKeepingFirstOccurrenceOrder(t *testing.T) {
	detector, err := NewDetector(nil)
	require.NoError(t, err)

	result := detector.Detect("fever, then pain, then fever again")

	assert.Equal(t, []string{"fever", "pain"}, result["symptom"])
}

func TestDetectWordBoundaries(t *testing.T) {
	detector, err := NewDetector(nil)
	require.NoError(t, err)

	// "painting" must not match "pain"
	result := detector.Detect("I enjoy painting")

	assert.NotContains(t, result, "symptom")
}

func TestNewDetectorCustomPatterns(t *testing.T) {
	detector, err := NewDetector(map[string]string{
		"medication": `\b(aspirin|ibuprofen)\b`,
	})
	require.NoError(t, err)

	result := detector.Detect("I took Aspirin this morning")

	assert.Equal(t, map[string][]string{"medication": {"aspirin"}}, result)
}

func TestNewDetectorRejectsBadPattern(t *testing.T) {
	_, err := NewDetector(map[string]string{"bad": `(`})
	require.Error(t, err)
}
