package memory

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "memory.jsonl"))
	require.NoError(t, err)

	return s
}

func TestAddAndReadFacts(t *testing.T) {
	s := newTestService(t)

	require.NoError(t, s.AddFacts("c1", []string{"symptom: nausea", "duration: 3 days"}))

	facts, err := s.Facts("c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"symptom: nausea", "duration: 3 days"}, facts)
}

func TestAddFactsDeduplicates(t *testing.T) {
	s := newTestService(t)

	require.NoError(t, s.AddFacts("c1", []string{"symptom: fever"}))
	require.NoError(t, s.AddFacts("c1", []string{"symptom: fever", "severity: mild"}))

	facts, err := s.Facts("c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"symptom: fever", "severity: mild"}, facts)
}

func TestConversationsAreIsolated(t *testing.T) {
	s := newTestService(t)

	require.NoError(t, s.AddFacts("c1", []string{"symptom: cough"}))
	require.NoError(t, s.AddFacts("c2", []string{"condition: asthma"}))

	facts, err := s.Facts("c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"symptom: cough"}, facts)
}

func TestFormatRendersBulletList(t *testing.T) {
	s := newTestService(t)

	require.NoError(t, s.AddFacts("c1", []string{"symptom: rash", "duration: 2 weeks"}))

	formatted, err := s.Format("c1")
	require.NoError(t, err)
	assert.Equal(t, "- symptom: rash\n- duration: 2 weeks\n", formatted)
}

func TestFormatEmptyWhenNothingKnown(t *testing.T) {
	s := newTestService(t)

	formatted, err := s.Format("unknown")
	require.NoError(t, err)
	assert.Empty(t, formatted)
}

func TestFactsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.jsonl")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.AddFacts("c1", []string{"symptom: fatigue"}))

	reopened, err := Open(path)
	require.NoError(t, err)

	facts, err := reopened.Facts("c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"symptom: fatigue"}, facts)
}
