package depot

const defaultSlotCapacity = 64

// WorldConfig holds construction options for a World.
type WorldConfig struct {
	// Schema is the shared type registry. Required.
	Schema *Schema

	// InitialSlotCapacity pre-sizes the slot table. Defaults to 64.
	InitialSlotCapacity int

	// OnComponentAdded fires after a component add is committed; the
	// callback observes the post-mutation world.
	OnComponentAdded func(entity EntityID, componentIndex uint32)

	// OnComponentRemoved fires after a component removal (including
	// destruction) is committed.
	OnComponentRemoved func(entity EntityID, componentIndex uint32)

	// EnableCreationTrace captures a stack trace at every entity creation,
	// retrievable via World.CreationTrace. Only honored in builds with the
	// "debug" tag; elsewhere the capture is compiled out and traces are nil.
	EnableCreationTrace bool
}
