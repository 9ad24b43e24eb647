package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharkusmanch/modrinth-updater/internal/domain"
)

func TestQueue_FIFOAndDedup(t *testing.T) {
	q := NewQueue()

	assert.True(t, q.Push("a", "root"))
	assert.True(t, q.Push("b", "root"))
	assert.False(t, q.Push("a", "other"))
	assert.Equal(t, 2, q.Len())

	e, ok := q.Next()
	require.True(t, ok)
	assert.Equal(t, QueueEntry{ProjectID: "a", Origin: "root"}, e)

	// popped entries stay seen
	assert.False(t, q.Push("a", "again"))
	assert.False(t, q.Mark("a"))

	e, ok = q.Next()
	require.True(t, ok)
	assert.Equal(t, "b", e.ProjectID)

	_, ok = q.Next()
	assert.False(t, ok)
}

func TestQueue_MarkPreventsQueueing(t *testing.T) {
	q := NewQueue()

	assert.True(t, q.Mark("local"))
	assert.False(t, q.Mark("local"))
	assert.False(t, q.Push("local", "dep"))
	assert.False(t, q.Mark(""))
	assert.Equal(t, 0, q.Len())
}

func TestQueue_Expand(t *testing.T) {
	q := NewQueue()
	q.Mark("already-local")

	v := &domain.VersionRecord{Dependencies: []domain.Dependency{
		{ProjectID: "already-local", Type: domain.DependencyRequired},
		{ProjectID: "new-required", Type: domain.DependencyRequired},
		{ProjectID: "optional", Type: domain.DependencyOptional},
		{ProjectID: "embedded", Type: domain.DependencyEmbedded},
	}}

	queued := q.Expand(v, "origin")

	assert.Equal(t, []string{"new-required"}, queued)
	assert.Empty(t, q.Expand(v, "origin"))
	// optional dependencies are never marked
	assert.True(t, q.Mark("optional"))
}
