package depot

import "unsafe"

// Array attachments are variable-length side buffers owned per entity and
// keyed by the schema's array namespace. Presence is part of the entity's
// Definition, so creating or destroying an array migrates the entity.

// HasArray reports whether the array is attached to a live entity.
func (w *World) HasArray(e EntityID, at ArrayType) bool {
	s, err := w.slotFor(e)
	if err != nil {
		return false
	}
	return s.chunk.def.HasArray(at.index)
}

// CreateArray attaches a zeroed array of the given element count and
// migrates the entity into a chunk whose Definition carries the array bit.
func (w *World) CreateArray(e EntityID, at ArrayType, length int) error {
	if w.Locked() {
		return LockedWorldError{}
	}
	s, err := w.slotFor(e)
	if err != nil {
		return err
	}
	if s.chunk.def.HasArray(at.index) {
		return TypeAlreadyPresentError{Entity: e, Index: at.index, Kind: "array"}
	}
	if length < 0 {
		return OutOfRangeError{Index: length, Length: 0}
	}
	buf := make([]byte, length*int(at.elemSize))
	w.migrate(s, s.chunk.def.WithArray(at.index))
	if s.arrays == nil {
		s.arrays = make(map[uint32][]byte)
	}
	s.arrays[at.index] = buf
	return nil
}

// ResizeArray reallocates the array to the new element count. Existing
// elements up to the shorter length are preserved; grown space is zero.
func (w *World) ResizeArray(e EntityID, at ArrayType, length int) error {
	s, buf, err := w.arrayFor(e, at)
	if err != nil {
		return err
	}
	if length < 0 {
		return OutOfRangeError{Index: length, Length: 0}
	}
	resized := make([]byte, length*int(at.elemSize))
	copy(resized, buf)
	s.arrays[at.index] = resized
	return nil
}

// DestroyArray frees the buffer and migrates the entity out of the array's
// Definition bit.
func (w *World) DestroyArray(e EntityID, at ArrayType) error {
	if w.Locked() {
		return LockedWorldError{}
	}
	s, _, err := w.arrayFor(e, at)
	if err != nil {
		return err
	}
	delete(s.arrays, at.index)
	w.migrate(s, s.chunk.def.WithoutArray(at.index))
	return nil
}

// ArrayLen returns the array's element count.
func (w *World) ArrayLen(e EntityID, at ArrayType) (int, error) {
	_, buf, err := w.arrayFor(e, at)
	if err != nil {
		return 0, err
	}
	if at.elemSize == 0 {
		return 0, nil
	}
	return len(buf) / int(at.elemSize), nil
}

// SetArrayElement overwrites one element.
func (w *World) SetArrayElement(e EntityID, at ArrayType, index int, src unsafe.Pointer) error {
	_, buf, err := w.arrayFor(e, at)
	if err != nil {
		return err
	}
	size := int(at.elemSize)
	if size == 0 {
		return nil
	}
	if index < 0 || (index+1)*size > len(buf) {
		return OutOfRangeError{Index: index, Length: len(buf) / size}
	}
	memCopy(unsafe.Pointer(&buf[index*size]), src, at.elemSize)
	return nil
}

// SetArrayElements overwrites count elements starting at index from a packed
// source buffer.
func (w *World) SetArrayElements(e EntityID, at ArrayType, index, count int, src unsafe.Pointer) error {
	_, buf, err := w.arrayFor(e, at)
	if err != nil {
		return err
	}
	size := int(at.elemSize)
	if size == 0 || count == 0 {
		return nil
	}
	if index < 0 || count < 0 || (index+count)*size > len(buf) {
		return OutOfRangeError{Index: index + count - 1, Length: len(buf) / size}
	}
	memCopy(unsafe.Pointer(&buf[index*size]), src, uintptr(count)*at.elemSize)
	return nil
}

// SetArray replaces the array's contents: the buffer is resized to count
// elements and filled from src.
func (w *World) SetArray(e EntityID, at ArrayType, count int, src unsafe.Pointer) error {
	if err := w.ResizeArray(e, at, count); err != nil {
		return err
	}
	if count == 0 || at.elemSize == 0 || src == nil {
		return nil
	}
	return w.SetArrayElements(e, at, 0, count, src)
}

// CreateOrSetArray creates the array when absent, then replaces its
// contents.
func (w *World) CreateOrSetArray(e EntityID, at ArrayType, count int, src unsafe.Pointer) error {
	if !w.HasArray(e, at) {
		if err := w.CreateArray(e, at, count); err != nil {
			return err
		}
		if count == 0 || at.elemSize == 0 || src == nil {
			return nil
		}
		return w.SetArrayElements(e, at, 0, count, src)
	}
	return w.SetArray(e, at, count, src)
}

// ArrayBytes returns the raw backing bytes of an array. The slice is
// invalidated by resize and destroy.
func (w *World) ArrayBytes(e EntityID, at ArrayType) ([]byte, error) {
	_, buf, err := w.arrayFor(e, at)
	return buf, err
}

// []byte entry points shared by replay.

func (w *World) setArrayElementsBytes(e EntityID, at ArrayType, index, count int, data []byte) error {
	if count == 0 {
		return nil
	}
	return w.SetArrayElements(e, at, index, count, bytesPtr(data))
}

func (w *World) setArrayBytes(e EntityID, at ArrayType, count int, data []byte) error {
	return w.SetArray(e, at, count, bytesPtr(data))
}

func (w *World) createOrSetArrayBytes(e EntityID, at ArrayType, count int, data []byte) error {
	return w.CreateOrSetArray(e, at, count, bytesPtr(data))
}

func (w *World) arrayFor(e EntityID, at ArrayType) (*slot, []byte, error) {
	s, err := w.slotFor(e)
	if err != nil {
		return nil, nil, err
	}
	if !s.chunk.def.HasArray(at.index) {
		return nil, nil, TypeMissingError{Entity: e, Index: at.index, Kind: "array"}
	}
	return s, s.arrays[at.index], nil
}
