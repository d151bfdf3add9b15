package testsupport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ReminderStore {
	t.Helper()

	s, err := NewReminderStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create reminder store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestReminderStoreAddAndList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.Local)

	_, err := s.Add(ctx, "gym", base.Add(2*time.Hour))
	require.NoError(t, err)
	r, err := s.Add(ctx, "call mom", base)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-18 09:00:00", r.Time)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "call mom", list[0].Task)
	assert.Equal(t, "gym", list[1].Task)
	assert.Equal(t, "2026-10-18 11:00:00", list[1].Time)
}

func TestReminderStoreListEmpty(t *testing.T) {
	list, err := newTestStore(t).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestReminderStoreDeleteMatching(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now()

	_, err := s.Add(ctx, "call mom", now.Add(time.Hour))
	require.NoError(t, err)
	_, err = s.Add(ctx, "gym", now.Add(time.Hour))
	require.NoError(t, err)

	deleted, err := s.DeleteMatching(ctx, "delete reminder call mom")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteMatching(ctx, "delete reminder dentist")
	require.NoError(t, err)
	assert.False(t, deleted)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "gym", list[0].Task)
}

func TestReminderStoreTakeDue(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now()

	_, err := s.Add(ctx, "past", now.Add(-time.Minute))
	require.NoError(t, err)
	_, err = s.Add(ctx, "now", now)
	require.NoError(t, err)
	_, err = s.Add(ctx, "future", now.Add(time.Minute))
	require.NoError(t, err)

	due, err := s.TakeDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "past", due[0].Task)
	assert.Equal(t, "now", due[1].Task)

	due, err = s.TakeDue(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, due)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "future", list[0].Task)
}
