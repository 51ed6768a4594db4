package depot

// ChunkIndex maps Definitions to their chunks, creating chunks on demand.
// Chunks are never removed, so Size is monotonic and usable as a cheap
// invalidation key for cached query matches.
type ChunkIndex struct {
	schema *Schema
	byDef  map[Definition]*Chunk
	chunks []*Chunk
}

func newChunkIndex(schema *Schema) *ChunkIndex {
	return &ChunkIndex{
		schema: schema,
		byDef:  make(map[Definition]*Chunk),
	}
}

// Get returns the chunk for a Definition, creating it if needed.
func (ci *ChunkIndex) Get(def Definition) *Chunk {
	if c, ok := ci.byDef[def]; ok {
		return c
	}
	created := newChunk(ci.schema, def)
	ci.byDef[def] = created
	ci.chunks = append(ci.chunks, created)
	return created
}

// Lookup returns the chunk for a Definition without creating it.
func (ci *ChunkIndex) Lookup(def Definition) (*Chunk, bool) {
	c, ok := ci.byDef[def]
	return c, ok
}

// Size returns the number of chunks ever created.
func (ci *ChunkIndex) Size() int { return len(ci.chunks) }

// Chunks returns all chunks in creation order.
func (ci *ChunkIndex) Chunks() []*Chunk { return ci.chunks }
