package depot

import "iter"

// Cursor iterates the entities matching a query, chunk by chunk. The world
// is locked for the duration of an iteration; matching chunks are cached and
// refreshed when the chunk index has grown.
type Cursor struct {
	query        *Query
	world        *World
	currentChunk *Chunk
	chunkIndex   int
	row          int
	remaining    int

	initialized   bool
	matched       []*Chunk
	matchedAtSize int
}

func newCursor(query *Query, world *World) *Cursor {
	return &Cursor{
		query: query,
		world: world,
	}
}

// Next advances to the next matching entity and reports whether one exists.
// When iteration completes, cursor state resets and the world lock drops.
func (c *Cursor) Next() bool {
	if c.row < c.remaining {
		c.row++
		return true
	}
	return c.advance()
}

func (c *Cursor) advance() bool {
	if !c.initialized {
		c.Initialize()
	}

	for c.chunkIndex < len(c.matched) {
		c.currentChunk = c.matched[c.chunkIndex]
		c.remaining = c.currentChunk.Count()
		if c.row < c.remaining {
			c.row++
			return true
		}
		c.chunkIndex++
		c.row = 0
	}

	c.Reset()
	return false
}

// Entities returns an iterator over matching entities and their chunks.
func (c *Cursor) Entities() iter.Seq2[EntityID, *Chunk] {
	return func(yield func(EntityID, *Chunk) bool) {
		c.Initialize()

		for c.chunkIndex < len(c.matched) {
			c.currentChunk = c.matched[c.chunkIndex]
			c.remaining = c.currentChunk.Count()

			for c.row < c.remaining {
				c.row++
				if !yield(c.currentChunk.EntityAt(c.row), c.currentChunk) {
					c.Reset()
					return
				}
			}

			c.row = 0
			c.chunkIndex++
		}

		c.Reset()
	}
}

// Initialize locks the world and collects matching chunks, reusing the
// cached match list while the chunk index hasn't grown.
func (c *Cursor) Initialize() {
	if c.initialized {
		return
	}

	c.world.pushCursorLock()

	if c.matched == nil || c.matchedAtSize != c.world.index.Size() {
		c.matched = c.matched[:0]
		for _, chunk := range c.world.index.Chunks() {
			if c.query.Matches(chunk) {
				c.matched = append(c.matched, chunk)
			}
		}
		c.matchedAtSize = c.world.index.Size()
	}

	if len(c.matched) > 0 {
		c.chunkIndex = 0
		c.currentChunk = c.matched[0]
		c.remaining = c.currentChunk.Count()
	}

	c.initialized = true
}

// Reset clears iteration state and releases the world lock. The cached
// match list is kept for the next iteration.
func (c *Cursor) Reset() {
	c.chunkIndex = 0
	c.row = 0
	c.remaining = 0
	c.initialized = false
	c.world.popCursorLock()
}

// CurrentEntity returns the entity at the cursor position.
func (c *Cursor) CurrentEntity() EntityID {
	return c.currentChunk.EntityAt(c.row)
}

// CurrentChunk returns the chunk at the cursor position.
func (c *Cursor) CurrentChunk() *Chunk {
	return c.currentChunk
}

// EntityIndex returns the current row within the current chunk.
func (c *Cursor) EntityIndex() int {
	return c.row
}

// RemainingInChunk returns the number of entities left in the current chunk.
func (c *Cursor) RemainingInChunk() int {
	return c.remaining - c.row
}

// TotalMatched returns the total number of entities matching the query.
func (c *Cursor) TotalMatched() int {
	if !c.initialized {
		c.Initialize()
	}

	total := 0
	for _, chunk := range c.matched {
		total += chunk.Count()
	}

	c.Reset()
	return total
}
