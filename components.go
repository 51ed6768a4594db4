package depot

import "unsafe"

// HasComponent reports whether the component is present on a live entity.
func (w *World) HasComponent(e EntityID, ct ComponentType) bool {
	s, err := w.slotFor(e)
	if err != nil {
		return false
	}
	return s.chunk.def.HasComponent(ct.index)
}

// AddComponent adds a component to an entity, migrating it to the chunk for
// its widened Definition. The new column holds the bytes at src, or zeros
// when src is nil. Strict: a component already present is an error; use
// TryAddComponent or AddOrSetComponent for idempotent adds.
func (w *World) AddComponent(e EntityID, ct ComponentType, src unsafe.Pointer) error {
	if w.Locked() {
		return LockedWorldError{}
	}
	s, err := w.slotFor(e)
	if err != nil {
		return err
	}
	if s.chunk.def.HasComponent(ct.index) {
		return TypeAlreadyPresentError{Entity: e, Index: ct.index, Kind: "component"}
	}
	w.migrate(s, s.chunk.def.WithComponent(ct.index))
	if src != nil {
		memCopy(s.chunk.ComponentPtr(s.row, ct), src, ct.size)
	}
	if w.onComponentAdded != nil {
		w.onComponentAdded(e, ct.index)
	}
	return nil
}

// TryAddComponent adds a component if absent. When the component is already
// present it overwrites the column if src is given and is a no-op otherwise.
func (w *World) TryAddComponent(e EntityID, ct ComponentType, src unsafe.Pointer) error {
	if w.HasComponent(e, ct) {
		if src == nil {
			return nil
		}
		return w.SetComponent(e, ct, src)
	}
	return w.AddComponent(e, ct, src)
}

// AddOrSetComponent overwrites the component bytes when present, and
// migrates then writes when absent. This is the fast path for bulk edits
// that do not know the entity's current signature.
func (w *World) AddOrSetComponent(e EntityID, ct ComponentType, src unsafe.Pointer) error {
	if w.HasComponent(e, ct) {
		return w.SetComponent(e, ct, src)
	}
	return w.AddComponent(e, ct, src)
}

// SetComponent overwrites the component bytes in place. The component must
// be present; no migration happens.
func (w *World) SetComponent(e EntityID, ct ComponentType, src unsafe.Pointer) error {
	s, err := w.slotFor(e)
	if err != nil {
		return err
	}
	if !s.chunk.def.HasComponent(ct.index) {
		return TypeMissingError{Entity: e, Index: ct.index, Kind: "component"}
	}
	if src != nil && ct.size > 0 {
		memCopy(s.chunk.ComponentPtr(s.row, ct), src, ct.size)
	}
	return nil
}

// GetComponent returns the address of the component's bytes. The pointer is
// invalidated by any world-mutating call.
func (w *World) GetComponent(e EntityID, ct ComponentType) (unsafe.Pointer, error) {
	s, err := w.slotFor(e)
	if err != nil {
		return nil, err
	}
	if !s.chunk.def.HasComponent(ct.index) {
		return nil, TypeMissingError{Entity: e, Index: ct.index, Kind: "component"}
	}
	return s.chunk.ComponentPtr(s.row, ct), nil
}

// RemoveComponent removes a component, migrating the entity to the chunk
// for its narrowed Definition. The component must be present.
func (w *World) RemoveComponent(e EntityID, ct ComponentType) error {
	if w.Locked() {
		return LockedWorldError{}
	}
	s, err := w.slotFor(e)
	if err != nil {
		return err
	}
	if !s.chunk.def.HasComponent(ct.index) {
		return TypeMissingError{Entity: e, Index: ct.index, Kind: "component"}
	}
	w.migrate(s, s.chunk.def.WithoutComponent(ct.index))
	if w.onComponentRemoved != nil {
		w.onComponentRemoved(e, ct.index)
	}
	return nil
}

// HasTag reports whether the tag is present on a live entity.
func (w *World) HasTag(e EntityID, tt TagType) bool {
	s, err := w.slotFor(e)
	if err != nil {
		return false
	}
	return s.chunk.def.HasTag(tt.index)
}

// AddTag marks a tag on the entity, migrating it over the tag mask. Strict:
// a tag already present is an error.
func (w *World) AddTag(e EntityID, tt TagType) error {
	if w.Locked() {
		return LockedWorldError{}
	}
	s, err := w.slotFor(e)
	if err != nil {
		return err
	}
	if s.chunk.def.HasTag(tt.index) {
		return TypeAlreadyPresentError{Entity: e, Index: tt.index, Kind: "tag"}
	}
	w.migrate(s, s.chunk.def.WithTag(tt.index))
	return nil
}

// TryAddTag marks a tag, as a no-op when already present.
func (w *World) TryAddTag(e EntityID, tt TagType) error {
	if w.HasTag(e, tt) {
		return nil
	}
	return w.AddTag(e, tt)
}

// RemoveTag clears a tag, migrating the entity. The tag must be present.
func (w *World) RemoveTag(e EntityID, tt TagType) error {
	if w.Locked() {
		return LockedWorldError{}
	}
	s, err := w.slotFor(e)
	if err != nil {
		return err
	}
	if !s.chunk.def.HasTag(tt.index) {
		return TypeMissingError{Entity: e, Index: tt.index, Kind: "tag"}
	}
	w.migrate(s, s.chunk.def.WithoutTag(tt.index))
	return nil
}

// []byte entry points shared by replay and the enqueue path.

func (w *World) addComponentBytes(e EntityID, ct ComponentType, data []byte) error {
	return w.AddComponent(e, ct, bytesPtr(data))
}

func (w *World) setComponentBytes(e EntityID, ct ComponentType, data []byte) error {
	return w.SetComponent(e, ct, bytesPtr(data))
}

func (w *World) addOrSetComponentBytes(e EntityID, ct ComponentType, data []byte) error {
	return w.AddOrSetComponent(e, ct, bytesPtr(data))
}

func bytesPtr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Pointer(&data[0])
}
