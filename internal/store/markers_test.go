package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkersRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seen, err := s.HasMarker(ctx, 7, "due_soon")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.SetMarker(ctx, 7, "due_soon"))

	seen, err = s.HasMarker(ctx, 7, "due_soon")
	require.NoError(t, err)
	assert.True(t, seen)

	// Same task, different kind is independent.
	seen, err = s.HasMarker(ctx, 7, "overdue")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestSetMarkerTwiceIsNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetMarker(ctx, 1, "overdue"))
	assert.NoError(t, s.SetMarker(ctx, 1, "overdue"))
}

func TestClearTaskMarkersRemovesAllKinds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetMarker(ctx, 3, "due_soon"))
	require.NoError(t, s.SetMarker(ctx, 3, "overdue"))
	require.NoError(t, s.SetMarker(ctx, 4, "overdue"))

	require.NoError(t, s.ClearTaskMarkers(ctx, 3))

	for _, kind := range []string{"due_soon", "overdue"} {
		seen, err := s.HasMarker(ctx, 3, kind)
		require.NoError(t, err)
		assert.False(t, seen, "marker %s should be cleared", kind)
	}

	seen, err := s.HasMarker(ctx, 4, "overdue")
	require.NoError(t, err)
	assert.True(t, seen, "other tasks' markers must survive")
}
