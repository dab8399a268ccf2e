package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown() })

	return s
}

func TestAppendAndGetContext(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	turns := []Turn{
		{Role: RoleUser, Text: "I have a headache", Timestamp: base},
		{Role: RoleAssistant, Text: "How long has it lasted?", Timestamp: base.Add(time.Second)},
		{Role: RoleUser, Text: "About 3 days", Timestamp: base.Add(2 * time.Second)},
	}
	for _, turn := range turns {
		require.NoError(t, s.AppendTurn(ctx, "c1", turn))
	}

	got, err := s.GetContext(ctx, "c1", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// chronological order
	assert.Equal(t, "I have a headache", got[0].Text)
	assert.Equal(t, RoleUser, got[0].Role)
	assert.Equal(t, "About 3 days", got[2].Text)
}

func TestGetContextLimitKeepsMostRecent(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	for i, text := range []string{"first", "second", "third"} {
		require.NoError(t, s.AppendTurn(ctx, "c1", Turn{
			Role:      RoleUser,
			Text:      text,
			Timestamp: time.Now().Add(time.Duration(i) * time.Second),
		}))
	}

	got, err := s.GetContext(ctx, "c1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Text)
	assert.Equal(t, "third", got[1].Text)
}

func TestGetContextUnknownConversation(t *testing.T) {
	s := newTestService(t)

	got, err := s.GetContext(context.Background(), "missing", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestConversationsAreIsolated(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	require.NoError(t, s.AppendTurn(ctx, "c1", Turn{Role: RoleUser, Text: "one", Timestamp: time.Now()}))
	require.NoError(t, s.AppendTurn(ctx, "c2", Turn{Role: RoleUser, Text: "two", Timestamp: time.Now()}))

	got, err := s.GetContext(ctx, "c1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "one", got[0].Text)
}
