package depot

import "fmt"

type EntityNotFoundError struct {
	Entity EntityID
}

func (e EntityNotFoundError) Error() string {
	return fmt.Sprintf("entity %d does not exist", e.Entity)
}

type TypeMissingError struct {
	Entity EntityID
	Index  uint32
	Kind   string
}

func (e TypeMissingError) Error() string {
	return fmt.Sprintf("%s type %d is not present on entity %d", e.Kind, e.Index, e.Entity)
}

type TypeAlreadyPresentError struct {
	Entity EntityID
	Index  uint32
	Kind   string
}

func (e TypeAlreadyPresentError) Error() string {
	return fmt.Sprintf("%s type %d already exists on entity %d", e.Kind, e.Index, e.Entity)
}

type SchemaFullError struct {
	Kind string
}

func (e SchemaFullError) Error() string {
	return fmt.Sprintf("schema cannot register more %s types (capacity %d)", e.Kind, MaskCapacity)
}

type CycleDetectedError struct {
	Child, Parent EntityID
}

func (e CycleDetectedError) Error() string {
	return fmt.Sprintf("parenting entity %d to %d would create a cycle", e.Child, e.Parent)
}

type NoSelectionError struct {
	Opcode byte
}

func (e NoSelectionError) Error() string {
	return fmt.Sprintf("operation opcode %d requires a non-empty selection", e.Opcode)
}

type CorruptedStreamError struct {
	Offset int
	Opcode byte
}

func (e CorruptedStreamError) Error() string {
	return fmt.Sprintf("corrupted operation stream at offset %d (opcode %d)", e.Offset, e.Opcode)
}

type OutOfRangeError struct {
	Index, Length int
}

func (e OutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range (length %d)", e.Index, e.Length)
}

type LockedWorldError struct{}

func (e LockedWorldError) Error() string {
	return "world is currently locked"
}
