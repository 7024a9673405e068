package history_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stac-explorer/internal/history"
)

func TestPushAndCurrent(t *testing.T) {
	h := history.NewStack()
	assert.Equal(t, "", h.Current())
	assert.Equal(t, 1, h.Len())

	h.Push("c=sentinel-2-l2a")
	h.Push("c=sentinel-2-l2a&cc=50")

	assert.Equal(t, "c=sentinel-2-l2a&cc=50", h.Current())
	assert.Equal(t, 3, h.Len())
}

func TestPushDeduplicates(t *testing.T) {
	h := history.NewStack()
	h.Push("c=sentinel-2-l2a")
	h.Push("c=sentinel-2-l2a")
	assert.Equal(t, 2, h.Len())
}

func TestBackAndForward(t *testing.T) {
	h := history.NewStack()

	var visited []string
	h.SetOnNavigate(func(rawQuery string) {
		visited = append(visited, rawQuery)
	})

	h.Push("c=sentinel-2-l2a")
	h.Push("c=landsat-c2-l2")

	require.True(t, h.CanGoBack())
	assert.False(t, h.CanGoForward())

	require.True(t, h.Back())
	assert.Equal(t, "c=sentinel-2-l2a", h.Current())
	assert.True(t, h.CanGoForward())

	require.True(t, h.Forward())
	assert.Equal(t, "c=landsat-c2-l2", h.Current())

	assert.Equal(t, []string{"c=sentinel-2-l2a", "c=landsat-c2-l2"}, visited)
}

func TestBackAtOldestEntry(t *testing.T) {
	h := history.NewStack()

	fired := false
	h.SetOnNavigate(func(string) { fired = true })

	assert.False(t, h.Back())
	assert.False(t, h.Forward())
	assert.False(t, fired)
}

func TestPushTruncatesForwardEntries(t *testing.T) {
	h := history.NewStack()
	h.Push("c=a")
	h.Push("c=b")
	h.Push("c=c")

	h.Back()
	h.Back()
	assert.Equal(t, "c=a", h.Current())

	// Branching from the middle discards the forward entries
	h.Push("c=new-branch")
	assert.Equal(t, 3, h.Len())
	assert.False(t, h.CanGoForward())
	assert.Equal(t, "c=new-branch", h.Current())
}

func TestReplace(t *testing.T) {
	h := history.NewStack()
	h.Push("c=a")
	h.Replace("c=a&cc=50")

	assert.Equal(t, "c=a&cc=50", h.Current())
	assert.Equal(t, 2, h.Len())

	h.Back()
	assert.Equal(t, "", h.Current())
}
