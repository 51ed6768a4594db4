package depot

import "unsafe"

// AccessibleComponent extends a component handle with typed access into
// chunk rows. It provides methods to retrieve component values using
// different access patterns.
type AccessibleComponent[T any] struct {
	ComponentType
}

// Add adds the component to an entity with an initial value. Strict: fails
// when the component is already present.
func (c AccessibleComponent[T]) Add(w *World, e EntityID, v T) error {
	return w.AddComponent(e, c.ComponentType, unsafe.Pointer(&v))
}

// TryAdd adds the component if absent, overwriting the value otherwise.
func (c AccessibleComponent[T]) TryAdd(w *World, e EntityID, v T) error {
	return w.TryAddComponent(e, c.ComponentType, unsafe.Pointer(&v))
}

// Set overwrites the component value in place.
func (c AccessibleComponent[T]) Set(w *World, e EntityID, v T) error {
	return w.SetComponent(e, c.ComponentType, unsafe.Pointer(&v))
}

// Remove removes the component from the entity.
func (c AccessibleComponent[T]) Remove(w *World, e EntityID) error {
	return w.RemoveComponent(e, c.ComponentType)
}

// Check reports whether the entity carries the component.
func (c AccessibleComponent[T]) Check(w *World, e EntityID) bool {
	return w.HasComponent(e, c.ComponentType)
}

// GetFromEntity retrieves the component value for an entity. The pointer is
// invalidated by any world-mutating call.
func (c AccessibleComponent[T]) GetFromEntity(w *World, e EntityID) (*T, error) {
	p, err := w.GetComponent(e, c.ComponentType)
	if err != nil {
		return nil, err
	}
	return (*T)(p), nil
}

// GetFromCursor retrieves the component value for the entity at the cursor
// position.
func (c AccessibleComponent[T]) GetFromCursor(cursor *Cursor) *T {
	return (*T)(cursor.currentChunk.ComponentPtr(cursor.row, c.ComponentType))
}

// GetFromCursorSafe safely retrieves a component value, checking if the
// component exists in the cursor's current chunk.
func (c AccessibleComponent[T]) GetFromCursorSafe(cursor *Cursor) (bool, *T) {
	if !c.CheckCursor(cursor) {
		return false, nil
	}
	return true, c.GetFromCursor(cursor)
}

// CheckCursor determines if the component exists in the chunk at the cursor
// position.
func (c AccessibleComponent[T]) CheckCursor(cursor *Cursor) bool {
	return cursor.currentChunk.Definition().HasComponent(c.index)
}

// AccessibleArray extends an array handle with typed access to the
// per-entity side buffers.
type AccessibleArray[T any] struct {
	ArrayType
}

// Create attaches a zeroed array of n elements to the entity.
func (a AccessibleArray[T]) Create(w *World, e EntityID, n int) error {
	return w.CreateArray(e, a.ArrayType, n)
}

// Destroy frees the entity's array.
func (a AccessibleArray[T]) Destroy(w *World, e EntityID) error {
	return w.DestroyArray(e, a.ArrayType)
}

// Resize reallocates the entity's array to n elements.
func (a AccessibleArray[T]) Resize(w *World, e EntityID, n int) error {
	return w.ResizeArray(e, a.ArrayType, n)
}

// Len returns the entity's array element count.
func (a AccessibleArray[T]) Len(w *World, e EntityID) (int, error) {
	return w.ArrayLen(e, a.ArrayType)
}

// Check reports whether the entity carries the array.
func (a AccessibleArray[T]) Check(w *World, e EntityID) bool {
	return w.HasArray(e, a.ArrayType)
}

// SetElement overwrites one element.
func (a AccessibleArray[T]) SetElement(w *World, e EntityID, index int, v T) error {
	return w.SetArrayElement(e, a.ArrayType, index, unsafe.Pointer(&v))
}

// Slice returns the entity's array as a typed slice. The slice is
// invalidated by resize and destroy.
func (a AccessibleArray[T]) Slice(w *World, e EntityID) ([]T, error) {
	buf, err := w.ArrayBytes(e, a.ArrayType)
	if err != nil {
		return nil, err
	}
	if len(buf) == 0 || a.elemSize == 0 {
		return nil, nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&buf[0])), len(buf)/int(a.elemSize)), nil
}

// valueBytes views a value's memory as a byte slice for recording into an
// operation stream. The stream copies the bytes before the value goes out
// of scope.
func valueBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	if size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), size)
}

// sliceBytes views a packed element slice as bytes.
func sliceBytes[T any](vs []T) []byte {
	if len(vs) == 0 {
		return nil
	}
	size := unsafe.Sizeof(vs[0])
	return unsafe.Slice((*byte)(unsafe.Pointer(&vs[0])), uintptr(len(vs))*size)
}

// RecordAddComponent records a strict typed component add on the selection.
func RecordAddComponent[T any](op *Operation, c AccessibleComponent[T], v T) {
	op.AddComponent(c.ComponentType, valueBytes(&v))
}

// RecordSetComponent records a typed in-place component overwrite.
func RecordSetComponent[T any](op *Operation, c AccessibleComponent[T], v T) {
	op.SetComponent(c.ComponentType, valueBytes(&v))
}

// RecordAddOrSetComponent records the typed overwrite-or-migrate fast path.
func RecordAddOrSetComponent[T any](op *Operation, c AccessibleComponent[T], v T) {
	op.AddOrSetComponent(c.ComponentType, valueBytes(&v))
}

// RecordCreateAndInitializeArray records attaching an array initialized
// from vs.
func RecordCreateAndInitializeArray[T any](op *Operation, a AccessibleArray[T], vs []T) {
	op.CreateAndInitializeArray(a.ArrayType, uint32(len(vs)), sliceBytes(vs))
}

// RecordSetArrayElement records a typed single-element overwrite.
func RecordSetArrayElement[T any](op *Operation, a AccessibleArray[T], index int, v T) {
	op.SetArrayElement(a.ArrayType, uint32(index), valueBytes(&v))
}

// RecordSetArrayElements records a typed multi-element overwrite starting
// at index.
func RecordSetArrayElements[T any](op *Operation, a AccessibleArray[T], index int, vs []T) {
	op.SetArrayElements(a.ArrayType, uint32(index), uint32(len(vs)), sliceBytes(vs))
}

// RecordSetArray records replacing the array contents with vs.
func RecordSetArray[T any](op *Operation, a AccessibleArray[T], vs []T) {
	op.SetArray(a.ArrayType, uint32(len(vs)), sliceBytes(vs))
}

// RecordCreateOrSetArray records create-or-replace of the array contents.
func RecordCreateOrSetArray[T any](op *Operation, a AccessibleArray[T], vs []T) {
	op.CreateOrSetArray(a.ArrayType, uint32(len(vs)), sliceBytes(vs))
}
