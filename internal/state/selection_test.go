package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelection_InitialStateIsNone(t *testing.T) {
	var sel Selection

	_, ok := sel.Current()
	assert.False(t, ok)
	_, ok = sel.ID()
	assert.False(t, ok)
}

func TestSelection_SelectThenCurrentThenClear(t *testing.T) {
	var s RecordStore
	s.Load(records("a", "b"))

	var sel Selection
	require.NoError(t, sel.Select(&s, "b"))

	got, ok := sel.Current()
	require.True(t, ok)
	want, _ := s.Lookup("b")
	assert.Equal(t, want, got)

	id, ok := sel.ID()
	require.True(t, ok)
	assert.Equal(t, "b", id)

	sel.Clear()
	_, ok = sel.Current()
	assert.False(t, ok)
}

func TestSelection_DirectReselection(t *testing.T) {
	var s RecordStore
	s.Load(records("a", "b"))

	var sel Selection
	require.NoError(t, sel.Select(&s, "a"))
	require.NoError(t, sel.Select(&s, "b"))

	id, ok := sel.ID()
	require.True(t, ok)
	assert.Equal(t, "b", id)
}

func TestSelection_UnknownIDLeavesStateUnchanged(t *testing.T) {
	var s RecordStore
	s.Load(records("a"))

	var sel Selection
	err := sel.Select(&s, "missing")
	require.ErrorIs(t, err, ErrRecordNotFound)
	_, ok := sel.Current()
	assert.False(t, ok, "None must stay None")

	require.NoError(t, sel.Select(&s, "a"))
	err = sel.Select(&s, "missing")
	require.ErrorIs(t, err, ErrRecordNotFound)
	id, ok := sel.ID()
	require.True(t, ok)
	assert.Equal(t, "a", id, "Selected must stay on the previous record")
}

func TestSelection_EmptyStoreAndNilLookup(t *testing.T) {
	var s RecordStore
	var sel Selection

	require.ErrorIs(t, sel.Select(&s, "a"), ErrRecordNotFound)
	require.ErrorIs(t, sel.Select(nil, "a"), ErrRecordNotFound)
}

func TestSelection_HoldsSnapshotCopy(t *testing.T) {
	var s RecordStore
	s.Load(records("a"))

	var sel Selection
	require.NoError(t, sel.Select(&s, "a"))

	// Replacing the store does not reach into an existing selection.
	s.Load(records("z"))
	got, ok := sel.Current()
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)
}

func TestSelection_ClearIsUnconditional(t *testing.T) {
	var sel Selection
	sel.Clear()
	sel.Clear()
	_, ok := sel.Current()
	assert.False(t, ok)
}
