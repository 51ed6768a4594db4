package depot

import (
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// Definition is the signature of an archetype: the set of component, array,
// and tag indices its entities carry. It is a plain comparable value; the
// empty Definition names the no-components archetype.
type Definition struct {
	components BitMask
	arrays     BitMask
	tags       BitMask
}

// Components returns the component mask.
func (d Definition) Components() BitMask { return d.components }

// Arrays returns the array mask.
func (d Definition) Arrays() BitMask { return d.arrays }

// Tags returns the tag mask.
func (d Definition) Tags() BitMask { return d.tags }

// HasComponent reports whether the component index is part of the signature.
func (d Definition) HasComponent(idx uint32) bool { return d.components.Contains(idx) }

// HasArray reports whether the array index is part of the signature.
func (d Definition) HasArray(idx uint32) bool { return d.arrays.Contains(idx) }

// HasTag reports whether the tag index is part of the signature.
func (d Definition) HasTag(idx uint32) bool { return d.tags.Contains(idx) }

// WithComponent returns a copy of d with the component index added.
func (d Definition) WithComponent(idx uint32) Definition {
	d.components.Set(idx)
	return d
}

// WithoutComponent returns a copy of d with the component index removed.
func (d Definition) WithoutComponent(idx uint32) Definition {
	d.components.Clear(idx)
	return d
}

// WithArray returns a copy of d with the array index added.
func (d Definition) WithArray(idx uint32) Definition {
	d.arrays.Set(idx)
	return d
}

// WithoutArray returns a copy of d with the array index removed.
func (d Definition) WithoutArray(idx uint32) Definition {
	d.arrays.Clear(idx)
	return d
}

// WithTag returns a copy of d with the tag index added.
func (d Definition) WithTag(idx uint32) Definition {
	d.tags.Set(idx)
	return d
}

// WithoutTag returns a copy of d with the tag index removed.
func (d Definition) WithoutTag(idx uint32) Definition {
	d.tags.Clear(idx)
	return d
}

// WithComponents returns a copy of d with every bit of the mask added.
func (d Definition) WithComponents(m BitMask) Definition {
	d.components.Or(m)
	return d
}

// ContainsAll reports whether d carries every index of other, across all
// three namespaces.
func (d Definition) ContainsAll(other Definition) bool {
	return d.components.ContainsAll(other.components) &&
		d.arrays.ContainsAll(other.arrays) &&
		d.tags.ContainsAll(other.tags)
}

// ComponentIndices appends the component indices to dst in ascending order.
func (d Definition) ComponentIndices(dst []uint32) []uint32 {
	return d.components.Bits(dst)
}

// ArrayIndices appends the array indices to dst in ascending order.
func (d Definition) ArrayIndices(dst []uint32) []uint32 {
	return d.arrays.Bits(dst)
}

// TagIndices appends the tag indices to dst in ascending order.
func (d Definition) TagIndices(dst []uint32) []uint32 {
	return d.tags.Bits(dst)
}

// Hash returns a content hash of the signature.
func (d Definition) Hash() uint64 {
	buf := (*[unsafe.Sizeof(d)]byte)(unsafe.Pointer(&d))
	return xxhash.Sum64(buf[:])
}
