package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	a, err := Hash("a: 1\n")
	require.NoError(t, err)
	b, err := Hash("a: 1\n")
	require.NoError(t, err)
	c, err := Hash("a: 2\n")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestCacheParse(t *testing.T) {
	c := NewCache(2)

	first, err := c.Parse("file:///conf/base/catalog.yml", _catalogText)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	// Mutating a returned tree does not affect later hits.
	first.Delete("companies")

	second, err := c.Parse("file:///conf/base/catalog.yml", _catalogText)
	require.NoError(t, err)
	assert.Equal(t, []string{"companies", "reviews"}, second.Keys)

	changed, err := c.Parse("file:///conf/base/catalog.yml", "other: {}\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"other"}, changed.Keys)
	assert.Equal(t, 1, c.Len())
}

func TestCacheParseError(t *testing.T) {
	c := NewCache(1)
	_, err := c.Parse("file:///a.yml", "- a\n")
	assert.Error(t, err)
	_, err = c.Parse("file:///a.yml", "- a\n")
	assert.Error(t, err)
}

func TestCacheEvictsAndInvalidates(t *testing.T) {
	c := NewCache(1)
	_, err := c.Parse("file:///a.yml", "a: 1\n")
	require.NoError(t, err)
	_, err = c.Parse("file:///b.yml", "b: 1\n")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	c.Invalidate("file:///b.yml")
	assert.Equal(t, 0, c.Len())

	assert.Equal(t, 1, NewCache(0).maxEntries)
}
