package parser

import (
	"sync"

	"github.com/kedro-org/kedro-lsp/src/catalog-lib/model"
	"github.com/minio/highwayhash"
)

var _hashKey = []byte("kedro-catalog-parse-cache-key-32")

// Hash returns the content hash used to key cached parses.
func Hash(text string) (uint64, error) {
	h, err := highwayhash.New64(_hashKey)
	if err != nil {
		return 0, err
	}
	_, err = h.Write([]byte(text))
	return h.Sum64(), err
}

// Cache memoizes Parse per document URI, keyed on a hash of the document text.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	maxEntries int
}

type cacheEntry struct {
	hash uint64
	tree *model.Mapping
	err  error
}

// NewCache creates a cache holding at most maxEntries documents.
func NewCache(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Cache{
		entries:    make(map[string]cacheEntry),
		maxEntries: maxEntries,
	}
}

// Parse returns the parse of text, reusing the previous result for uri when the text is unchanged.
// The returned tree is a copy owned by the caller.
func (c *Cache) Parse(uri string, text string) (*model.Mapping, error) {
	sum, err := Hash(text)
	if err != nil {
		return Parse(text)
	}

	c.mu.Lock()
	entry, ok := c.entries[uri]
	c.mu.Unlock()
	if ok && entry.hash == sum {
		if entry.err != nil {
			return nil, entry.err
		}
		return model.Clone(entry.tree), nil
	}

	tree, err := Parse(text)

	c.mu.Lock()
	if _, exists := c.entries[uri]; !exists && len(c.entries) >= c.maxEntries {
		for k := range c.entries {
			delete(c.entries, k)
			break
		}
	}
	c.entries[uri] = cacheEntry{hash: sum, tree: tree, err: err}
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return model.Clone(tree), nil
}

// Invalidate drops the cached parse for uri.
func (c *Cache) Invalidate(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, uri)
}

// Len returns the number of cached documents.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
