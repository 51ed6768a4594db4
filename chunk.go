package depot

import (
	"unsafe"
)

// Chunk is the columnar store for every entity sharing one Definition. Rows
// are whole schema rows: each row spans the full registered row size, so
// component byte offsets are schema-global and unused columns are tolerated.
// Row index 0 is a reserved sentinel; live rows start at 1.
type Chunk struct {
	def      Definition
	schema   *Schema
	stride   uintptr
	entities []EntityID
	rows     []byte
	version  uint64
}

func newChunk(schema *Schema, def Definition) *Chunk {
	stride := schema.rowStride()
	c := &Chunk{
		def:      def,
		schema:   schema,
		stride:   stride,
		entities: make([]EntityID, 1, 8),
		rows:     make([]byte, stride),
	}
	return c
}

// Definition returns the chunk's signature.
func (c *Chunk) Definition() Definition { return c.def }

// Count returns the number of live entities in the chunk.
func (c *Chunk) Count() int { return len(c.entities) - 1 }

// Version returns the chunk's mutation counter. It is bumped on every entity
// add, remove, and row reallocation.
func (c *Chunk) Version() uint64 { return c.version }

// EntityAt returns the entity occupying a row.
func (c *Chunk) EntityAt(row int) EntityID { return c.entities[row] }

// Entities returns the live entity-id column.
func (c *Chunk) Entities() []EntityID { return c.entities[1:] }

// RowOf returns the row holding e, or 0 if e is not in this chunk.
func (c *Chunk) RowOf(e EntityID) int {
	for row := 1; row < len(c.entities); row++ {
		if c.entities[row] == e {
			return row
		}
	}
	return 0
}

// AddEntity appends e with a zeroed component row and returns the new row.
func (c *Chunk) AddEntity(e EntityID) int {
	c.ensureStride()
	c.entities = append(c.entities, e)
	if c.stride > 0 {
		need := len(c.rows) + int(c.stride)
		if cap(c.rows) < need {
			newCap := max(need, 2*cap(c.rows))
			grown := make([]byte, len(c.rows), newCap)
			copy(grown, c.rows)
			c.rows = grown
		}
		c.rows = c.rows[:need]
		clear(c.rows[need-int(c.stride):])
	}
	c.version++
	return len(c.entities) - 1
}

// RemoveEntity swap-removes a row. When the removed row was not the last,
// the last entity is moved into its place and returned so the caller can
// patch that entity's slot.
func (c *Chunk) RemoveEntity(row int) (moved EntityID, swapped bool) {
	last := c.Count()
	if row != last {
		moved = c.entities[last]
		swapped = true
		c.entities[row] = moved
		if c.stride > 0 {
			dst := c.rowBytes(row)
			src := c.rowBytes(last)
			copy(dst, src)
		}
	}
	c.entities = c.entities[:last]
	if c.stride > 0 {
		c.rows = c.rows[:uintptr(last)*c.stride]
	}
	c.version++
	return moved, swapped
}

// MoveTo migrates the entity at row into dst: a new row is appended there,
// bytes of every component present in both definitions are copied (offsets
// are schema-global, so source and destination offsets coincide), remaining
// destination columns stay zero, and the source row is swap-removed.
func (c *Chunk) MoveTo(row int, dst *Chunk) (newRow int, moved EntityID, swapped bool) {
	e := c.entities[row]
	newRow = dst.AddEntity(e)

	shared := c.def.components
	shared.And(dst.def.components)
	if !shared.IsEmpty() {
		src := c.rowBytes(row)
		target := dst.rowBytes(newRow)
		var indices [MaskCapacity]uint32
		for _, idx := range shared.Bits(indices[:0]) {
			off := c.schema.components[idx].offset
			size := c.schema.components[idx].size
			copy(target[off:off+size], src[off:off+size])
		}
	}

	moved, swapped = c.RemoveEntity(row)
	return newRow, moved, swapped
}

// ComponentPtr returns the address of a component column in a row. The
// pointer is invalidated by any mutation of the chunk.
func (c *Chunk) ComponentPtr(row int, ct ComponentType) unsafe.Pointer {
	return unsafe.Pointer(&c.rows[uintptr(row)*c.stride+ct.offset])
}

// SetComponentBytes overwrites a component column in place.
func (c *Chunk) SetComponentBytes(row int, ct ComponentType, data []byte) {
	base := uintptr(row)*c.stride + ct.offset
	copy(c.rows[base:base+ct.size], data)
}

// ComponentBytes returns the raw bytes of a component column.
func (c *Chunk) ComponentBytes(row int, ct ComponentType) []byte {
	base := uintptr(row)*c.stride + ct.offset
	return c.rows[base : base+ct.size]
}

// ComponentSpan returns a strided byte view over the component column for
// all live rows, starting at row 1, plus the stride between rows. The view
// is invalidated by any mutation of the chunk.
func (c *Chunk) ComponentSpan(ct ComponentType) (data []byte, stride int) {
	if c.Count() == 0 {
		return nil, int(c.stride)
	}
	return c.rows[c.stride+ct.offset:], int(c.stride)
}

func (c *Chunk) rowBytes(row int) []byte {
	base := uintptr(row) * c.stride
	return c.rows[base : base+c.stride]
}

// ensureStride widens row storage after the schema grew. Offsets are
// append-only, so existing columns keep their positions and new columns
// start out zero.
func (c *Chunk) ensureStride() {
	stride := c.schema.rowStride()
	if stride == c.stride {
		return
	}
	widened := make([]byte, uintptr(len(c.entities))*stride)
	for row := 0; row < len(c.entities); row++ {
		src := c.rowBytes(row)
		copy(widened[uintptr(row)*stride:], src)
	}
	c.rows = widened
	c.stride = stride
	c.version++
}

func memCopy(dst, src unsafe.Pointer, size uintptr) {
	copy(unsafe.Slice((*byte)(dst), size), unsafe.Slice((*byte)(src), size))
}
