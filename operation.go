package depot

import (
	"encoding/binary"

	"github.com/TheBitDrifter/bark"
)

// Opcodes for the recorded instruction stream. Each instruction is a 1-byte
// opcode followed by a fixed or length-prefixed payload, little-endian.
const (
	opCreateSingle byte = iota + 1
	opCreateSingleSelect
	opCreateMany
	opCreateManySelect
	opSetSelectedEntity
	opAppendEntityToSelection
	opAppendMultiple
	opSelectPreviouslyCreated
	opClearSelection
	opSetParent
	opSetParentToPreviouslyCreated
	opEnableSelected
	opDisableSelected
	opAddComponentType
	opTryAddComponentType
	opAddComponent
	opSetComponent
	opAddOrSetComponent
	opRemoveComponentType
	opCreateArray
	opCreateAndInitializeArray
	opResizeArray
	opSetArrayElement
	opSetArrayElements
	opSetArray
	opCreateOrSetArray
	opAddTag
	opRemoveTag
	opRemoveReference
	opAddReferenceToPreviouslyCreated
	opDestroySelected
	opEnd // sentinel, never recorded
)

// Operation is a recorded, replayable edit stream: a packed instruction
// buffer plus two working vectors rebuilt on every replay — the current
// selection that "selected" opcodes operate on, and the history of every
// entity created during the replay, addressed by reverse offset.
//
// A stream reads nothing from the world except through ids already in
// selection or history, so it can be replayed against any world whose
// schema assigns the same indices.
type Operation struct {
	stream    []byte
	selection []EntityID
	created   []EntityID
}

func newOperation() *Operation {
	return &Operation{}
}

// Len returns the instruction stream's size in bytes.
func (op *Operation) Len() int { return len(op.stream) }

// Reset clears the stream, selection, and history without deallocating.
func (op *Operation) Reset() {
	op.stream = op.stream[:0]
	op.selection = op.selection[:0]
	op.created = op.created[:0]
}

// Selection returns the selection as of the last replay.
func (op *Operation) Selection() []EntityID { return op.selection }

// CreatedEntities returns the entities created by the last replay, in
// creation order.
func (op *Operation) CreatedEntities() []EntityID { return op.created }

// CreateEntity records the creation of one entity.
func (op *Operation) CreateEntity() {
	op.writeOp(opCreateSingle)
}

// CreateEntityAndSelect records the creation of one entity that becomes the
// sole selection.
func (op *Operation) CreateEntityAndSelect() {
	op.writeOp(opCreateSingleSelect)
}

// CreateEntities records the creation of n entities.
func (op *Operation) CreateEntities(n uint32) {
	op.writeOp(opCreateMany)
	op.writeU32(n)
}

// CreateEntitiesAndSelect records the creation of n entities that replace
// the selection.
func (op *Operation) CreateEntitiesAndSelect(n uint32) {
	op.writeOp(opCreateManySelect)
	op.writeU32(n)
}

// SetSelectedEntity records replacing the selection with a single entity.
func (op *Operation) SetSelectedEntity(e EntityID) {
	op.writeOp(opSetSelectedEntity)
	op.writeU32(uint32(e))
}

// AppendToSelection records appending one entity to the selection.
func (op *Operation) AppendToSelection(e EntityID) {
	op.writeOp(opAppendEntityToSelection)
	op.writeU32(uint32(e))
}

// AppendManyToSelection records appending entities to the selection in
// order.
func (op *Operation) AppendManyToSelection(ids []EntityID) {
	op.writeOp(opAppendMultiple)
	op.writeU32(uint32(len(ids)))
	for _, id := range ids {
		op.writeU32(uint32(id))
	}
}

// SelectPreviouslyCreated records replacing the selection with the entity at
// reverse offset k in the creation history (0 = most recent).
func (op *Operation) SelectPreviouslyCreated(k uint32) {
	op.writeOp(opSelectPreviouslyCreated)
	op.writeU32(k)
}

// ClearSelection records emptying the selection.
func (op *Operation) ClearSelection() {
	op.writeOp(opClearSelection)
}

// SetParent records parenting every selected entity to p.
func (op *Operation) SetParent(p EntityID) {
	op.writeOp(opSetParent)
	op.writeU32(uint32(p))
}

// SetParentToPreviouslyCreated records parenting every selected entity to
// the entity at reverse offset k in the creation history.
func (op *Operation) SetParentToPreviouslyCreated(k uint32) {
	op.writeOp(opSetParentToPreviouslyCreated)
	op.writeU32(k)
}

// EnableSelected records enabling every selected entity.
func (op *Operation) EnableSelected() {
	op.writeOp(opEnableSelected)
}

// DisableSelected records disabling every selected entity.
func (op *Operation) DisableSelected() {
	op.writeOp(opDisableSelected)
}

// AddComponentType records a strict, zero-valued component add on every
// selected entity.
func (op *Operation) AddComponentType(ct ComponentType) {
	op.writeOp(opAddComponentType)
	op.writeU32(ct.index)
}

// TryAddComponentType records an idempotent, zero-valued component add.
func (op *Operation) TryAddComponentType(ct ComponentType) {
	op.writeOp(opTryAddComponentType)
	op.writeU32(ct.index)
}

// AddComponent records a strict component add carrying initial bytes.
func (op *Operation) AddComponent(ct ComponentType, data []byte) {
	op.writeComponentOp(opAddComponent, ct, data)
}

// SetComponent records an in-place component overwrite.
func (op *Operation) SetComponent(ct ComponentType, data []byte) {
	op.writeComponentOp(opSetComponent, ct, data)
}

// AddOrSetComponent records the overwrite-or-migrate fast path.
func (op *Operation) AddOrSetComponent(ct ComponentType, data []byte) {
	op.writeComponentOp(opAddOrSetComponent, ct, data)
}

// RemoveComponentType records a component removal.
func (op *Operation) RemoveComponentType(ct ComponentType) {
	op.writeOp(opRemoveComponentType)
	op.writeU32(ct.index)
}

// CreateArray records attaching a zeroed array of n elements.
func (op *Operation) CreateArray(at ArrayType, n uint32) {
	op.writeOp(opCreateArray)
	op.writeU32(at.index)
	op.writeU32(n)
}

// CreateAndInitializeArray records attaching an array filled from data,
// which must hold n packed elements.
func (op *Operation) CreateAndInitializeArray(at ArrayType, n uint32, data []byte) {
	op.writeOp(opCreateAndInitializeArray)
	op.writeU32(at.index)
	op.writeU32(uint32(at.elemSize))
	op.writeU32(n)
	op.writeBytes(data)
}

// ResizeArray records resizing the array to n elements.
func (op *Operation) ResizeArray(at ArrayType, n uint32) {
	op.writeOp(opResizeArray)
	op.writeU32(at.index)
	op.writeU32(n)
}

// SetArrayElement records overwriting one element.
func (op *Operation) SetArrayElement(at ArrayType, index uint32, data []byte) {
	op.writeOp(opSetArrayElement)
	op.writeU32(at.index)
	op.writeU32(uint32(at.elemSize))
	op.writeU32(index)
	op.writeBytes(data)
}

// SetArrayElements records overwriting n elements starting at index.
func (op *Operation) SetArrayElements(at ArrayType, index, n uint32, data []byte) {
	op.writeOp(opSetArrayElements)
	op.writeU32(at.index)
	op.writeU32(uint32(at.elemSize))
	op.writeU32(index)
	op.writeU32(n)
	op.writeBytes(data)
}

// SetArray records replacing the array's contents with n packed elements.
func (op *Operation) SetArray(at ArrayType, n uint32, data []byte) {
	op.writeOp(opSetArray)
	op.writeU32(at.index)
	op.writeU32(uint32(at.elemSize))
	op.writeU32(n)
	op.writeBytes(data)
}

// CreateOrSetArray records create-or-replace of the array's contents.
func (op *Operation) CreateOrSetArray(at ArrayType, n uint32, data []byte) {
	op.writeOp(opCreateOrSetArray)
	op.writeU32(at.index)
	op.writeU32(uint32(at.elemSize))
	op.writeU32(n)
	op.writeBytes(data)
}

// AddTag records marking a tag on every selected entity.
func (op *Operation) AddTag(tt TagType) {
	op.writeOp(opAddTag)
	op.writeU32(tt.index)
}

// RemoveTag records clearing a tag.
func (op *Operation) RemoveTag(tt TagType) {
	op.writeOp(opRemoveTag)
	op.writeU32(tt.index)
}

// RemoveReference records tombstoning the reference slot at rint on every
// selected entity.
func (op *Operation) RemoveReference(rint uint32) {
	op.writeOp(opRemoveReference)
	op.writeU32(rint)
}

// AddReferenceToPreviouslyCreated records adding, on every selected entity,
// a reference to the entity at reverse offset k in the creation history.
func (op *Operation) AddReferenceToPreviouslyCreated(k uint32) {
	op.writeOp(opAddReferenceToPreviouslyCreated)
	op.writeU32(k)
}

// DestroySelected records destroying every selected entity and clearing the
// selection.
func (op *Operation) DestroySelected() {
	op.writeOp(opDestroySelected)
}

// GetCreatedEntities predicts, without replaying, the ids the world would
// allocate for this stream's create instructions, appending them to dst in
// creation order.
func (op *Operation) GetCreatedEntities(w *World, dst []EntityID) ([]EntityID, error) {
	r := opReader{data: op.stream}
	n := 0
	for !r.done() {
		at := r.off
		code := r.opcode()
		switch code {
		case opCreateSingle, opCreateSingleSelect:
			n++
		case opCreateMany, opCreateManySelect:
			n += int(r.u32())
		default:
			if !r.skipPayload(code) {
				return dst, CorruptedStreamError{Offset: at, Opcode: code}
			}
		}
		if r.corrupt {
			return dst, CorruptedStreamError{Offset: at, Opcode: code}
		}
	}
	return w.PeekIDs(dst, n), nil
}

// Perform replays the stream against a world front to back. Replay is
// fire-and-forget: an error aborts at the failing instruction and effects
// already applied stay applied.
func (op *Operation) Perform(w *World) error {
	return op.perform(w, false)
}

// perform replays the stream. In lenient mode, per-entity effects whose
// entity died before the replay — and adds/removes already satisfied — are
// skipped instead of failing; the internal deferred queue drains this way.
func (op *Operation) perform(w *World, lenient bool) error {
	op.selection = op.selection[:0]
	op.created = op.created[:0]

	r := opReader{data: op.stream}
	for !r.done() {
		at := r.off
		code := r.opcode()
		if err := op.apply(w, &r, code, lenient); err != nil {
			return err
		}
		if r.corrupt {
			panic(bark.AddTrace(CorruptedStreamError{Offset: at, Opcode: code}))
		}
	}
	return nil
}

func (op *Operation) apply(w *World, r *opReader, code byte, lenient bool) error {
	switch code {
	case opCreateSingle, opCreateSingleSelect:
		e, err := w.CreateEntity()
		if err != nil {
			return err
		}
		op.created = append(op.created, e)
		if code == opCreateSingleSelect {
			op.selection = append(op.selection[:0], e)
		}

	case opCreateMany, opCreateManySelect:
		n := r.u32()
		if code == opCreateManySelect {
			op.selection = op.selection[:0]
		}
		for i := uint32(0); i < n; i++ {
			e, err := w.CreateEntity()
			if err != nil {
				return err
			}
			op.created = append(op.created, e)
			if code == opCreateManySelect {
				op.selection = append(op.selection, e)
			}
		}

	case opSetSelectedEntity:
		op.selection = append(op.selection[:0], EntityID(r.u32()))

	case opAppendEntityToSelection:
		op.selection = append(op.selection, EntityID(r.u32()))

	case opAppendMultiple:
		n := r.u32()
		for i := uint32(0); i < n; i++ {
			op.selection = append(op.selection, EntityID(r.u32()))
		}

	case opSelectPreviouslyCreated:
		e, err := op.previouslyCreated(r.u32(), code)
		if err != nil {
			return err
		}
		op.selection = append(op.selection[:0], e)

	case opClearSelection:
		op.selection = op.selection[:0]

	case opSetParent:
		p := EntityID(r.u32())
		return op.applySelected(w, code, lenient, func(e EntityID) error {
			return w.SetParent(e, p)
		})

	case opSetParentToPreviouslyCreated:
		p, err := op.previouslyCreated(r.u32(), code)
		if err != nil {
			return err
		}
		return op.applySelected(w, code, lenient, func(e EntityID) error {
			return w.SetParent(e, p)
		})

	case opEnableSelected:
		return op.applySelected(w, code, lenient, func(e EntityID) error {
			return w.SetEnabled(e, true)
		})

	case opDisableSelected:
		return op.applySelected(w, code, lenient, func(e EntityID) error {
			return w.SetEnabled(e, false)
		})

	case opAddComponentType, opTryAddComponentType, opRemoveComponentType:
		ct, err := w.schema.ComponentAt(r.u32())
		if err != nil {
			return err
		}
		return op.applySelected(w, code, lenient, func(e EntityID) error {
			switch code {
			case opAddComponentType:
				return w.AddComponent(e, ct, nil)
			case opTryAddComponentType:
				return w.TryAddComponent(e, ct, nil)
			default:
				return w.RemoveComponent(e, ct)
			}
		})

	case opAddComponent, opSetComponent, opAddOrSetComponent:
		ct, err := w.schema.ComponentAt(r.u32())
		if err != nil {
			return err
		}
		size := r.u32()
		if int(size) != ct.Size() {
			r.corrupt = true
			return nil
		}
		data := r.bytes(int(size))
		if r.corrupt {
			return nil
		}
		return op.applySelected(w, code, lenient, func(e EntityID) error {
			switch code {
			case opAddComponent:
				return w.addComponentBytes(e, ct, data)
			case opSetComponent:
				return w.setComponentBytes(e, ct, data)
			default:
				return w.addOrSetComponentBytes(e, ct, data)
			}
		})

	case opCreateArray, opResizeArray:
		at, err := w.schema.ArrayAt(r.u32())
		if err != nil {
			return err
		}
		n := int(r.u32())
		return op.applySelected(w, code, lenient, func(e EntityID) error {
			if code == opCreateArray {
				return w.CreateArray(e, at, n)
			}
			return w.ResizeArray(e, at, n)
		})

	case opCreateAndInitializeArray, opSetArray, opCreateOrSetArray:
		at, err := w.schema.ArrayAt(r.u32())
		if err != nil {
			return err
		}
		stride := r.u32()
		n := r.u32()
		if int(stride) != at.ElemSize() {
			r.corrupt = true
			return nil
		}
		data := r.bytes(int(stride * n))
		if r.corrupt {
			return nil
		}
		return op.applySelected(w, code, lenient, func(e EntityID) error {
			switch code {
			case opCreateAndInitializeArray:
				if err := w.CreateArray(e, at, int(n)); err != nil {
					return err
				}
				return w.setArrayElementsBytes(e, at, 0, int(n), data)
			case opSetArray:
				return w.setArrayBytes(e, at, int(n), data)
			default:
				return w.createOrSetArrayBytes(e, at, int(n), data)
			}
		})

	case opSetArrayElement:
		at, err := w.schema.ArrayAt(r.u32())
		if err != nil {
			return err
		}
		stride := r.u32()
		index := r.u32()
		if int(stride) != at.ElemSize() {
			r.corrupt = true
			return nil
		}
		data := r.bytes(int(stride))
		if r.corrupt {
			return nil
		}
		return op.applySelected(w, code, lenient, func(e EntityID) error {
			return w.setArrayElementsBytes(e, at, int(index), 1, data)
		})

	case opSetArrayElements:
		at, err := w.schema.ArrayAt(r.u32())
		if err != nil {
			return err
		}
		stride := r.u32()
		index := r.u32()
		n := r.u32()
		if int(stride) != at.ElemSize() {
			r.corrupt = true
			return nil
		}
		data := r.bytes(int(stride * n))
		if r.corrupt {
			return nil
		}
		return op.applySelected(w, code, lenient, func(e EntityID) error {
			return w.setArrayElementsBytes(e, at, int(index), int(n), data)
		})

	case opAddTag, opRemoveTag:
		tt, err := w.schema.TagAt(r.u32())
		if err != nil {
			return err
		}
		return op.applySelected(w, code, lenient, func(e EntityID) error {
			if code == opAddTag {
				return w.AddTag(e, tt)
			}
			return w.RemoveTag(e, tt)
		})

	case opRemoveReference:
		rint := int(r.u32())
		return op.applySelected(w, code, lenient, func(e EntityID) error {
			return w.RemoveReference(e, rint)
		})

	case opAddReferenceToPreviouslyCreated:
		target, err := op.previouslyCreated(r.u32(), code)
		if err != nil {
			return err
		}
		return op.applySelected(w, code, lenient, func(e EntityID) error {
			_, err := w.AddReference(e, target)
			return err
		})

	case opDestroySelected:
		err := op.applySelected(w, code, lenient, func(e EntityID) error {
			return w.DestroyEntity(e)
		})
		op.selection = op.selection[:0]
		return err

	default:
		r.corrupt = true
	}
	return nil
}

// applySelected runs fn over the current selection in order. An empty
// selection is an error for every selection-consuming opcode.
func (op *Operation) applySelected(w *World, code byte, lenient bool, fn func(EntityID) error) error {
	if len(op.selection) == 0 {
		return NoSelectionError{Opcode: code}
	}
	for _, e := range op.selection {
		if lenient && !w.IsAlive(e) {
			continue
		}
		if err := fn(e); err != nil {
			if lenient && skippable(err) {
				continue
			}
			return err
		}
	}
	return nil
}

func skippable(err error) bool {
	switch err.(type) {
	case EntityNotFoundError, TypeMissingError, TypeAlreadyPresentError:
		return true
	}
	return false
}

func (op *Operation) previouslyCreated(k uint32, code byte) (EntityID, error) {
	if int(k) >= len(op.created) {
		return None, OutOfRangeError{Index: int(k), Length: len(op.created)}
	}
	return op.created[len(op.created)-1-int(k)], nil
}

// --- stream encoding ---

func (op *Operation) writeOp(code byte) {
	op.growTo(len(op.stream) + 1)
	op.stream = append(op.stream, code)
}

func (op *Operation) writeU32(v uint32) {
	op.growTo(len(op.stream) + 4)
	op.stream = binary.LittleEndian.AppendUint32(op.stream, v)
}

func (op *Operation) writeBytes(b []byte) {
	op.growTo(len(op.stream) + len(b))
	op.stream = append(op.stream, b...)
}

func (op *Operation) writeComponentOp(code byte, ct ComponentType, data []byte) {
	op.writeOp(code)
	op.writeU32(ct.index)
	op.writeU32(uint32(ct.Size()))
	op.writeBytes(data)
}

// growTo resizes the stream's backing array to the next power of two that
// fits n bytes.
func (op *Operation) growTo(n int) {
	if cap(op.stream) >= n {
		return
	}
	newCap := cap(op.stream)
	if newCap == 0 {
		newCap = 64
	}
	for newCap < n {
		newCap *= 2
	}
	grown := make([]byte, len(op.stream), newCap)
	copy(grown, op.stream)
	op.stream = grown
}

// --- stream decoding ---

type opReader struct {
	data    []byte
	off     int
	corrupt bool
}

func (r *opReader) done() bool { return r.corrupt || r.off >= len(r.data) }

func (r *opReader) opcode() byte {
	if r.off >= len(r.data) {
		r.corrupt = true
		return 0
	}
	code := r.data[r.off]
	r.off++
	return code
}

func (r *opReader) u32() uint32 {
	if r.off+4 > len(r.data) {
		r.corrupt = true
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *opReader) bytes(n int) []byte {
	if n < 0 || r.off+n > len(r.data) {
		r.corrupt = true
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

// skipPayload advances past the payload of code without interpreting it.
// Returns false for unknown opcodes.
func (r *opReader) skipPayload(code byte) bool {
	switch code {
	case opCreateSingle, opCreateSingleSelect, opClearSelection,
		opEnableSelected, opDisableSelected, opDestroySelected:
	case opCreateMany, opCreateManySelect, opSetSelectedEntity,
		opAppendEntityToSelection, opSelectPreviouslyCreated, opSetParent,
		opSetParentToPreviouslyCreated, opAddComponentType,
		opTryAddComponentType, opRemoveComponentType, opAddTag, opRemoveTag,
		opRemoveReference, opAddReferenceToPreviouslyCreated:
		r.u32()
	case opAppendMultiple:
		n := r.u32()
		for i := uint32(0); i < n && !r.corrupt; i++ {
			r.u32()
		}
	case opAddComponent, opSetComponent, opAddOrSetComponent:
		r.u32()
		size := r.u32()
		r.bytes(int(size))
	case opCreateArray, opResizeArray:
		r.u32()
		r.u32()
	case opCreateAndInitializeArray, opSetArray, opCreateOrSetArray:
		r.u32()
		stride := r.u32()
		n := r.u32()
		r.bytes(int(stride * n))
	case opSetArrayElement:
		r.u32()
		stride := r.u32()
		r.u32()
		r.bytes(int(stride))
	case opSetArrayElements:
		r.u32()
		stride := r.u32()
		r.u32()
		n := r.u32()
		r.bytes(int(stride * n))
	default:
		return false
	}
	return true
}
