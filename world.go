package depot

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/mask"
)

// cursorLockBit is the lock bit reserved for cursor iteration. Application
// locks should use bits 1 and up.
const cursorLockBit uint32 = 0

// World owns the entity-id allocator, the slot table, the chunk index, and
// every structural mutation. It is a single-threaded resource: writers need
// exclusive access for the whole call, and pointers or spans obtained from
// chunks are invalidated by any mutating call.
type World struct {
	schema      *Schema
	index       *ChunkIndex
	slots       []slot
	free        []EntityID
	liveCount   int
	locks       mask.Mask256
	cursorLocks int
	pending     *Operation

	onComponentAdded   func(EntityID, uint32)
	onComponentRemoved func(EntityID, uint32)
	traceEnabled       bool

	// refHolders maps a referenced entity to the entities holding reference
	// slots on it, one occurrence per slot, so destruction can zero holders
	// without a full scan.
	refHolders map[EntityID][]EntityID
}

func newWorld(cfg WorldConfig) (*World, error) {
	if cfg.Schema == nil {
		return nil, fmt.Errorf("world requires a schema")
	}
	capacity := cfg.InitialSlotCapacity
	if capacity <= 0 {
		capacity = defaultSlotCapacity
	}
	w := &World{
		schema:             cfg.Schema,
		slots:              make([]slot, 1, capacity+1),
		onComponentAdded:   cfg.OnComponentAdded,
		onComponentRemoved: cfg.OnComponentRemoved,
		traceEnabled:       cfg.EnableCreationTrace,
		refHolders:         make(map[EntityID][]EntityID),
	}
	w.index = newChunkIndex(cfg.Schema)
	return w, nil
}

// Schema returns the world's shared schema.
func (w *World) Schema() *Schema { return w.schema }

// ChunkIndex returns the world's chunk index.
func (w *World) ChunkIndex() *ChunkIndex { return w.index }

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int { return w.liveCount }

// ChunkCount returns the number of chunks ever created.
func (w *World) ChunkCount() int { return w.index.Size() }

// CreateEntity allocates an id (recycled or fresh), places it in the empty
// Definition's chunk, and returns it enabled.
func (w *World) CreateEntity() (EntityID, error) {
	if w.Locked() {
		return None, LockedWorldError{}
	}
	id := w.allocID()
	empty := w.index.Get(Definition{})
	row := empty.AddEntity(id)
	s := &w.slots[id]
	*s = slot{state: SlotEnabled, chunk: empty, row: row}
	if creationTraceAvailable && w.traceEnabled {
		s.trace = captureCreationTrace()
	}
	w.liveCount++
	return id, nil
}

// CreateEntities creates n entities and returns their ids in creation order.
func (w *World) CreateEntities(n int) ([]EntityID, error) {
	if w.Locked() {
		return nil, LockedWorldError{}
	}
	ids := make([]EntityID, n)
	for i := range ids {
		id, err := w.CreateEntity()
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// DestroyEntity removes an entity: children are orphaned, attached arrays
// are freed, incoming references are zeroed, the chunk row is swap-removed,
// and the id is recycled. Component-removed callbacks fire for every
// component the entity held, after the world is back in a consistent state.
func (w *World) DestroyEntity(e EntityID) error {
	if w.Locked() {
		return LockedWorldError{}
	}
	s, err := w.slotFor(e)
	if err != nil {
		return err
	}

	var scratch [MaskCapacity]uint32
	held := s.chunk.def.ComponentIndices(scratch[:0])

	for _, child := range s.children {
		cs := &w.slots[child]
		cs.parent = None
		if cs.state == SlotDisabledInherited {
			cs.state = SlotEnabled
			w.propagateEnable(child)
		}
	}
	s.children = nil
	if s.parent != None {
		removeID(&w.slots[s.parent].children, e)
	}

	for _, target := range s.refs {
		if target != None {
			w.dropHolder(target, e)
		}
	}
	s.refs = nil
	for _, holder := range w.refHolders[e] {
		hs := &w.slots[holder]
		for i, target := range hs.refs {
			if target == e {
				hs.refs[i] = None
			}
		}
	}
	delete(w.refHolders, e)

	s.arrays = nil

	moved, swapped := s.chunk.RemoveEntity(s.row)
	if swapped {
		w.slots[moved].row = s.row
	}

	*s = slot{state: SlotFree}
	w.free = append(w.free, e)
	w.liveCount--

	if w.onComponentRemoved != nil {
		for _, idx := range held {
			w.onComponentRemoved(e, idx)
		}
	}
	return nil
}

// IsAlive reports whether e names a live entity.
func (w *World) IsAlive(e EntityID) bool {
	return e != None && int(e) < len(w.slots) && w.slots[e].state != SlotFree
}

// CreationTrace returns the stack captured at the entity's creation, or nil
// when tracing is disabled.
func (w *World) CreationTrace(e EntityID) []byte {
	if !w.IsAlive(e) {
		return nil
	}
	return w.slots[e].trace
}

// Locked reports whether any lock bit is held.
func (w *World) Locked() bool {
	return !w.locks.IsEmpty()
}

// AddLock marks a lock bit. While any bit is held, structural mutations fail
// with LockedWorldError and must go through the Enqueue methods.
func (w *World) AddLock(bit uint32) {
	w.locks.Mark(bit)
}

// RemoveLock releases a lock bit and drains queued operations once no locks
// remain.
func (w *World) RemoveLock(bit uint32) {
	w.locks.Unmark(bit)
	if w.locks.IsEmpty() {
		w.drainPending()
	}
}

func (w *World) pushCursorLock() {
	w.cursorLocks++
	w.locks.Mark(cursorLockBit)
}

func (w *World) popCursorLock() {
	if w.cursorLocks == 0 {
		return
	}
	w.cursorLocks--
	if w.cursorLocks == 0 {
		w.RemoveLock(cursorLockBit)
	}
}

// drainPending replays the internal deferred buffer. Queued mutations whose
// entities died before the drain are skipped, not errors.
func (w *World) drainPending() {
	if w.pending == nil || w.pending.Len() == 0 {
		return
	}
	op := w.pending
	w.pending = nil
	err := op.perform(w, true)
	op.Reset()
	w.pending = op
	if err != nil {
		panic(bark.AddTrace(fmt.Errorf("error processing queued operations: %w", err)))
	}
}

func (w *World) ensurePending() *Operation {
	if w.pending == nil {
		w.pending = newOperation()
	}
	return w.pending
}

// EnqueueCreateEntities creates entities immediately, or records the
// creation for the next full unlock when the world is locked.
func (w *World) EnqueueCreateEntities(n int) error {
	if !w.Locked() {
		_, err := w.CreateEntities(n)
		if err != nil {
			return fmt.Errorf("failed to create entities directly: %w", err)
		}
		return nil
	}
	w.ensurePending().CreateEntities(uint32(n))
	return nil
}

// EnqueueDestroyEntity destroys an entity immediately, or records the
// destruction for the next full unlock when the world is locked.
func (w *World) EnqueueDestroyEntity(e EntityID) error {
	if !w.Locked() {
		return w.DestroyEntity(e)
	}
	op := w.ensurePending()
	op.SetSelectedEntity(e)
	op.DestroySelected()
	return nil
}

// EnqueueAddComponent adds a component (idempotently, overwriting when
// already present) immediately, or records it when the world is locked.
func (w *World) EnqueueAddComponent(e EntityID, ct ComponentType, data []byte) error {
	if !w.Locked() {
		return w.addOrSetComponentBytes(e, ct, data)
	}
	op := w.ensurePending()
	op.SetSelectedEntity(e)
	if data != nil {
		op.AddOrSetComponent(ct, data)
	} else {
		op.TryAddComponentType(ct)
	}
	return nil
}

// EnqueueRemoveComponent removes a component (as a no-op when absent)
// immediately, or records it when the world is locked.
func (w *World) EnqueueRemoveComponent(e EntityID, ct ComponentType) error {
	if !w.Locked() {
		if !w.HasComponent(e, ct) {
			return nil
		}
		return w.RemoveComponent(e, ct)
	}
	op := w.ensurePending()
	op.SetSelectedEntity(e)
	op.RemoveComponentType(ct)
	return nil
}

// PeekIDs appends to dst the next n ids CreateEntity would allocate, without
// allocating them: recycled ids first (most recent first), then fresh ids.
func (w *World) PeekIDs(dst []EntityID, n int) []EntityID {
	next := len(w.slots)
	for i := 0; i < n; i++ {
		if i < len(w.free) {
			dst = append(dst, w.free[len(w.free)-1-i])
		} else {
			dst = append(dst, EntityID(next))
			next++
		}
	}
	return dst
}

func (w *World) allocID() EntityID {
	if n := len(w.free); n > 0 {
		id := w.free[n-1]
		w.free = w.free[:n-1]
		return id
	}
	w.slots = append(w.slots, slot{})
	return EntityID(len(w.slots) - 1)
}

func (w *World) slotFor(e EntityID) (*slot, error) {
	if e == None || int(e) >= len(w.slots) || w.slots[e].state == SlotFree {
		return nil, EntityNotFoundError{Entity: e}
	}
	return &w.slots[e], nil
}

// migrate moves an entity to the chunk for newDef and patches the slots of
// the entity and of the row swapped into its old position.
func (w *World) migrate(s *slot, newDef Definition) {
	dst := w.index.Get(newDef)
	newRow, moved, swapped := s.chunk.MoveTo(s.row, dst)
	if swapped {
		w.slots[moved].row = s.row
	}
	s.chunk = dst
	s.row = newRow
}

// removeID removes the first occurrence of id from the slice, swap-style.
func removeID(ids *[]EntityID, id EntityID) {
	list := *ids
	for i, candidate := range list {
		if candidate == id {
			last := len(list) - 1
			list[i] = list[last]
			*ids = list[:last]
			return
		}
	}
}
