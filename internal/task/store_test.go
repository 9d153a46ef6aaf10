package task

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// fixedClock returns a clock that advances by one second on every call.
func fixedClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(time.Second)
		return now
	}
}

func TestStore_CreateAndList(t *testing.T) {
	s := newTestStore(t)
	s.now = fixedClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	first, err := s.Create(ctx, "  buy milk ")
	require.NoError(t, err)
	second, err := s.Create(ctx, "walk the dog")
	require.NoError(t, err)

	assert.Equal(t, "buy milk", first.Text)
	assert.False(t, first.Completed)
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	got, err := s.List(ctx)
	require.NoError(t, err)

	want := []Task{second, first}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_ListEmpty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStore_CreateEmptyText(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestStore_Toggle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "water plants")
	require.NoError(t, err)

	toggled, err := s.Toggle(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	toggled, err = s.Toggle(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)
}

func TestStore_ToggleStaleID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "temporary")
	require.NoError(t, err)
	require.NoError(t, s.Remove(ctx, created.ID))

	_, err = s.Toggle(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Remove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "remove me")
	require.NoError(t, err)

	require.NoError(t, s.Remove(ctx, created.ID))
	// removing twice is fine
	require.NoError(t, s.Remove(ctx, created.ID))

	got, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func Test_resolvePath(t *testing.T) {
	_, err := resolvePath("")
	assert.Error(t, err)

	p, err := resolvePath(":memory:")
	require.NoError(t, err)
	assert.Equal(t, ":memory:", p)

	p, err = resolvePath("/tmp/../tmp/tasks.db")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/tasks.db", p)
}
