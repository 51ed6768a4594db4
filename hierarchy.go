package depot

// SetParent re-parents an entity. Passing None clears the parent. The child
// is removed from the old parent's child set and added to the new one; a
// relationship that would close a cycle is refused. The child's inherited
// enable state is recomputed against the new ancestry.
func (w *World) SetParent(e, p EntityID) error {
	s, err := w.slotFor(e)
	if err != nil {
		return err
	}
	if p != None {
		if _, err := w.slotFor(p); err != nil {
			return err
		}
		for cur := p; cur != None; cur = w.slots[cur].parent {
			if cur == e {
				return CycleDetectedError{Child: e, Parent: p}
			}
		}
	}
	if s.parent == p {
		return nil
	}
	if s.parent != None {
		removeID(&w.slots[s.parent].children, e)
	}
	s.parent = p
	if p != None {
		ps := &w.slots[p]
		ps.children = append(ps.children, e)
	}
	w.refreshInherited(e)
	return nil
}

// Parent returns the entity's parent, or None.
func (w *World) Parent(e EntityID) (EntityID, error) {
	s, err := w.slotFor(e)
	if err != nil {
		return None, err
	}
	return s.parent, nil
}

// Children returns the entity's child set. The slice is owned by the world;
// callers must not hold it across mutations.
func (w *World) Children(e EntityID) ([]EntityID, error) {
	s, err := w.slotFor(e)
	if err != nil {
		return nil, err
	}
	return s.children, nil
}

// State returns the entity's slot state. Free ids report SlotFree without
// error.
func (w *World) State(e EntityID) SlotState {
	if e == None || int(e) >= len(w.slots) {
		return SlotFree
	}
	return w.slots[e].state
}

// Enabled reports the observed enabled state: self-enabled with no disabled
// ancestor.
func (w *World) Enabled(e EntityID) bool {
	return w.State(e) == SlotEnabled
}

// SetEnabled enables or disables an entity and propagates the change through
// its descendants: an enabled child under a newly disabled ancestor becomes
// SlotDisabledInherited, and is restored when the ancestor re-enables. A
// child disabled directly keeps its own state through ancestor re-enables.
func (w *World) SetEnabled(e EntityID, on bool) error {
	s, err := w.slotFor(e)
	if err != nil {
		return err
	}
	if on {
		if s.state != SlotDisabled {
			return nil
		}
		if w.ancestorDisabled(e) {
			s.state = SlotDisabledInherited
			return nil
		}
		s.state = SlotEnabled
		w.propagateEnable(e)
		return nil
	}
	if s.state == SlotDisabled {
		return nil
	}
	was := s.state
	s.state = SlotDisabled
	if was == SlotEnabled {
		w.propagateDisable(e)
	}
	return nil
}

// ancestorDisabled reports whether any ancestor of e is disabled.
func (w *World) ancestorDisabled(e EntityID) bool {
	for cur := w.slots[e].parent; cur != None; cur = w.slots[cur].parent {
		switch w.slots[cur].state {
		case SlotDisabled, SlotDisabledInherited:
			return true
		}
	}
	return false
}

func (w *World) propagateDisable(e EntityID) {
	for _, child := range w.slots[e].children {
		cs := &w.slots[child]
		if cs.state == SlotEnabled {
			cs.state = SlotDisabledInherited
			w.propagateDisable(child)
		}
	}
}

func (w *World) propagateEnable(e EntityID) {
	for _, child := range w.slots[e].children {
		cs := &w.slots[child]
		if cs.state == SlotDisabledInherited {
			cs.state = SlotEnabled
			w.propagateEnable(child)
		}
	}
}

// refreshInherited reconciles an entity's inherited state after its ancestry
// changed.
func (w *World) refreshInherited(e EntityID) {
	s := &w.slots[e]
	blocked := w.ancestorDisabled(e)
	switch s.state {
	case SlotEnabled:
		if blocked {
			s.state = SlotDisabledInherited
			w.propagateDisable(e)
		}
	case SlotDisabledInherited:
		if !blocked {
			s.state = SlotEnabled
			w.propagateEnable(e)
		}
	}
}
