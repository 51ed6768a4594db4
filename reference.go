package depot

// References are per-entity ordered slots of entity ids, addressed by a
// 1-based reference index (rint). A destroyed target zeroes every slot that
// pointed at it; the holders keep their slots, so later rints stay stable.

// AddReference appends a reference slot on from pointing at to, and returns
// the new slot's rint.
func (w *World) AddReference(from, to EntityID) (int, error) {
	s, err := w.slotFor(from)
	if err != nil {
		return 0, err
	}
	if _, err := w.slotFor(to); err != nil {
		return 0, err
	}
	s.refs = append(s.refs, to)
	w.refHolders[to] = append(w.refHolders[to], from)
	return len(s.refs), nil
}

// GetReference returns the entity a reference slot points at, or None for a
// tombstoned slot or a destroyed target.
func (w *World) GetReference(from EntityID, rint int) (EntityID, error) {
	s, err := w.slotFor(from)
	if err != nil {
		return None, err
	}
	if rint < 1 || rint > len(s.refs) {
		return None, OutOfRangeError{Index: rint, Length: len(s.refs)}
	}
	return s.refs[rint-1], nil
}

// ReferenceCount returns the number of reference slots on the entity,
// tombstones included.
func (w *World) ReferenceCount(from EntityID) (int, error) {
	s, err := w.slotFor(from)
	if err != nil {
		return 0, err
	}
	return len(s.refs), nil
}

// RemoveReference tombstones the reference slot at rint: the slot remains
// and reads as None, so every later rint keeps its meaning.
func (w *World) RemoveReference(from EntityID, rint int) error {
	s, err := w.slotFor(from)
	if err != nil {
		return err
	}
	if rint < 1 || rint > len(s.refs) {
		return OutOfRangeError{Index: rint, Length: len(s.refs)}
	}
	target := s.refs[rint-1]
	if target != None {
		w.dropHolder(target, from)
	}
	s.refs[rint-1] = None
	return nil
}

// RemoveReferenceTo removes the first reference slot on from that points at
// target, by swapping the last slot into its place, and returns the rint
// that was reassigned. When the removed slot was the last one no slot is
// reassigned and the returned rint is now out of range. Returns 0 when from
// holds no reference to target.
func (w *World) RemoveReferenceTo(from, target EntityID) (int, error) {
	s, err := w.slotFor(from)
	if err != nil {
		return 0, err
	}
	for i, candidate := range s.refs {
		if candidate != target {
			continue
		}
		w.dropHolder(target, from)
		last := len(s.refs) - 1
		s.refs[i] = s.refs[last]
		s.refs = s.refs[:last]
		return i + 1, nil
	}
	return 0, nil
}

// dropHolder removes one occurrence of holder from the incoming-reference
// list of target.
func (w *World) dropHolder(target, holder EntityID) {
	holders := w.refHolders[target]
	removeID(&holders, holder)
	if len(holders) == 0 {
		delete(w.refHolders, target)
	} else {
		w.refHolders[target] = holders
	}
}
