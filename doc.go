/*
Package depot provides an archetype-based Entity-Component-System (ECS) world
for games and simulations.

Depot groups entities by their component signature into chunks: row-major
columnar stores that keep entities with identical component sets together for
cache-friendly iteration. Entities are plain 32-bit handles; components are
fixed-size value records laid out at schema-assigned byte offsets; arrays are
variable-length side buffers; tags are zero-size presence bits.

Core Concepts:

  - Entity: a 32-bit id referring to a bundle of components, arrays, and tags.
  - Schema: an append-only registry assigning stable indices, sizes, and byte
    offsets to component, array, and tag types.
  - Definition: the (components, arrays, tags) bitmask triple naming an
    archetype signature.
  - Chunk: the columnar store for all entities sharing one Definition.
  - Query: a (required, excluded) signature predicate iterated with a Cursor.
  - Operation: a recorded, replayable instruction stream for batched edits.

Basic Usage:

	// Register a schema
	schema := depot.Factory.NewSchema()
	position, _ := depot.RegisterComponent[Position](schema)
	velocity, _ := depot.RegisterComponent[Velocity](schema)

	// Create a world
	world, _ := depot.Factory.NewWorld(depot.WorldConfig{Schema: schema})

	// Create entities
	e, _ := world.CreateEntity()
	position.Add(world, e, Position{X: 10, Y: 20})
	velocity.Add(world, e, Velocity{X: 1, Y: 2})

	// Query entities and process them
	query := depot.Factory.NewQuery().With(position, velocity)
	cursor := depot.Factory.NewCursor(query, world)

	for cursor.Next() {
		pos := position.GetFromCursor(cursor)
		vel := velocity.GetFromCursor(cursor)
		pos.X += vel.X
		pos.Y += vel.Y
	}

Entities also carry parent/child relations with enable/disable propagation and
cross-entity reference slots. All mutation is single-threaded; cursors take a
world lock for the duration of iteration, and structural mutations issued
while locked must go through the Enqueue methods or an Operation.

Depot is the underlying ECS world for the Bappa Framework but also works as a
standalone library.
*/
package depot
