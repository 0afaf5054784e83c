package content

import (
	"slices"
	"sync"
)

// Collection is the append-only post list a build fills concurrently.
// Order is completion order; consumers sort at read time.
type Collection struct {
	mu    sync.Mutex
	posts []*Post
}

// Append adds p.
func (c *Collection) Append(p *Post) {
	c.mu.Lock()
	c.posts = append(c.posts, p)
	c.mu.Unlock()
}

// Upsert replaces the record rendered from the same source, or appends.
// It reports whether an existing record was replaced.
func (c *Collection) Upsert(p *Post) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.posts {
		if existing.Source == p.Source {
			c.posts[i] = p
			return true
		}
	}
	c.posts = append(c.posts, p)
	return false
}

// Remove drops the record rendered from source.
func (c *Collection) Remove(source string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.posts)
	c.posts = slices.DeleteFunc(c.posts, func(p *Post) bool { return p.Source == source })
	return len(c.posts) != n
}

// Get returns the record rendered from source.
func (c *Collection) Get(source string) (*Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.posts {
		if p.Source == source {
			return p, true
		}
	}
	return nil, false
}

// Snapshot returns a copy of the current records.
func (c *Collection) Snapshot() []*Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.posts)
}

// Len returns the number of records.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.posts)
}

// Reset empties the collection for a new build.
func (c *Collection) Reset() {
	c.mu.Lock()
	c.posts = nil
	c.mu.Unlock()
}
