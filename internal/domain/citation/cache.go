package citation

import "sync"

// Cache owns the citation tree of one corpus. The root is synthetic; its
// children are the depth-1 citations. Mutation is append-only.
type Cache struct {
	mu       sync.RWMutex
	corpusID string
	root     *Node
}

// Parent describes the node a lookup descends from.
type Parent struct {
	State FetchState
	// Segments are the URN path parts from the first depth down to this node (empty for the root).
	Segments []string
}

// NewCache creates an empty cache for a corpus.
func NewCache(corpusID string) *Cache {
	return &Cache{corpusID: corpusID, root: newRoot()}
}

// CorpusID returns the corpus the cache belongs to.
func (c *Cache) CorpusID() string { return c.corpusID }

// find walks path from the root. Caller holds the lock.
func (c *Cache) find(path []string) (*Node, []string, bool) {
	node := c.root
	segments := make([]string, 0, len(path))
	for _, label := range path {
		next, ok := node.children[label]
		if !ok {
			return nil, nil, false
		}
		node = next
		segments = append(segments, node.segment())
	}
	return node, segments, true
}

// Parent returns the fetch state and URN segments of the node at path.
func (c *Cache) Parent(path []string) (Parent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	node, segments, ok := c.find(path)
	if !ok {
		return Parent{}, false
	}
	return Parent{State: node.state, Segments: segments}, true
}

// Child returns the child label under the node at path.
func (c *Cache) Child(path []string, label string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	node, _, ok := c.find(path)
	if !ok {
		return Entry{}, false
	}
	child, ok := node.children[label]
	if !ok {
		return Entry{}, false
	}
	return child.entry(), true
}

// Children returns the children of the node at path in service order.
func (c *Cache) Children(path []string) ([]Entry, FetchState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	node, _, ok := c.find(path)
	if !ok {
		return nil, Unfetched, false
	}
	out := make([]Entry, len(node.order))
	for i, child := range node.order {
		out[i] = child.entry()
	}
	return out, node.state, true
}

// BeginFetch marks the node at path as Fetching unless it is already Fetched.
// It returns false when the node is missing or already fetched.
func (c *Cache) BeginFetch(path []string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, _, ok := c.find(path)
	if !ok || node.state == Fetched {
		return false
	}
	node.state = Fetching
	return true
}

// AbortFetch returns a Fetching node to Unfetched after a failed request.
func (c *Cache) AbortFetch(path []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, _, ok := c.find(path); ok && node.state == Fetching {
		node.state = Unfetched
	}
}

// Insert stores the children returned by one fetch under the node at path and
// marks it Fetched. If another fetch already completed for the node, its
// children are kept and labels is discarded. Returns false if path is unknown.
func (c *Cache) Insert(path []string, level string, labels []string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, _, ok := c.find(path)
	if !ok {
		return false
	}
	if node.state == Fetched {
		return true
	}
	for _, child := range newSiblings(level, labels) {
		node.children[child.label] = child
		node.order = append(node.order, child)
	}
	node.state = Fetched
	return true
}

// Caches holds one Cache per corpus. Entries are created lazily and never evicted.
type Caches struct {
	mu       sync.Mutex
	byCorpus map[string]*Cache
}

// NewCaches creates an empty registry.
func NewCaches() *Caches {
	return &Caches{byCorpus: map[string]*Cache{}}
}

// For returns the cache of a corpus, creating it on first access.
func (c *Caches) For(corpusID string) *Cache {
	c.mu.Lock()
	defer c.mu.Unlock()

	cache, ok := c.byCorpus[corpusID]
	if !ok {
		cache = NewCache(corpusID)
		c.byCorpus[corpusID] = cache
	}
	return cache
}

// Len returns the number of corpora with a cache.
func (c *Caches) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byCorpus)
}
