package depot

import (
	"testing"
)

func worldFixture(t *testing.T) (*World, AccessibleComponent[PosU32], AccessibleComponent[VelI32]) {
	t.Helper()
	schema := Factory.NewSchema()
	pos, err := RegisterComponent[PosU32](schema)
	if err != nil {
		t.Fatalf("failed to register component: %v", err)
	}
	vel, err := RegisterComponent[VelI32](schema)
	if err != nil {
		t.Fatalf("failed to register component: %v", err)
	}
	world, err := Factory.NewWorld(WorldConfig{Schema: schema})
	if err != nil {
		t.Fatalf("failed to create world: %v", err)
	}
	return world, pos, vel
}

// checkInvariants verifies the slot/chunk bijection after a mutation.
func checkInvariants(t *testing.T, w *World) {
	t.Helper()
	total := 0
	for _, chunk := range w.ChunkIndex().Chunks() {
		total += chunk.Count()
		for row := 1; row <= chunk.Count(); row++ {
			e := chunk.EntityAt(row)
			s := &w.slots[e]
			if s.state == SlotFree {
				t.Fatalf("free entity %d found in a chunk", e)
			}
			if s.chunk != chunk || s.row != row {
				t.Fatalf("entity %d slot points at (%p, %d), chunk says (%p, %d)",
					e, s.chunk, s.row, chunk, row)
			}
		}
	}
	if total != w.EntityCount() {
		t.Fatalf("chunk rows sum to %d, world holds %d live entities", total, w.EntityCount())
	}
}

func TestCreateComponentRoundTrip(t *testing.T) {
	world, pos, vel := worldFixture(t)

	e, err := world.CreateEntity()
	if err != nil {
		t.Fatalf("failed to create entity: %v", err)
	}
	if err := pos.Add(world, e, PosU32{X: 7, Y: 9}); err != nil {
		t.Fatalf("failed to add component: %v", err)
	}
	if err := vel.Add(world, e, VelI32{VX: -3}); err != nil {
		t.Fatalf("failed to add component: %v", err)
	}
	checkInvariants(t, world)

	def := world.slots[e].chunk.Definition()
	if !def.HasComponent(pos.Index()) || !def.HasComponent(vel.Index()) {
		t.Errorf("entity definition = %v, want components {0, 1}", def.ComponentIndices(nil))
	}

	gotPos, err := pos.GetFromEntity(world, e)
	if err != nil || *gotPos != (PosU32{X: 7, Y: 9}) {
		t.Errorf("pos = %+v (err %v), want {7 9}", gotPos, err)
	}
	gotVel, err := vel.GetFromEntity(world, e)
	if err != nil || *gotVel != (VelI32{VX: -3}) {
		t.Errorf("vel = %+v (err %v), want {-3}", gotVel, err)
	}

	empty, _ := world.ChunkIndex().Lookup(Definition{})
	if empty.Count() != 0 {
		t.Errorf("empty-definition chunk holds %d entities, want 0", empty.Count())
	}
}

func TestMigrationPreservesValues(t *testing.T) {
	world, pos, vel := worldFixture(t)

	e, _ := world.CreateEntity()
	pos.Add(world, e, PosU32{X: 7, Y: 9})
	vel.Add(world, e, VelI32{VX: -3})

	if err := vel.Remove(world, e); err != nil {
		t.Fatalf("failed to remove component: %v", err)
	}
	checkInvariants(t, world)

	def := world.slots[e].chunk.Definition()
	want := Definition{}.WithComponent(pos.Index())
	if def != want {
		t.Errorf("definition after removal = %v, want components {0}", def.ComponentIndices(nil))
	}

	gotPos, err := pos.GetFromEntity(world, e)
	if err != nil || *gotPos != (PosU32{X: 7, Y: 9}) {
		t.Errorf("pos after migration = %+v (err %v), want {7 9} unchanged", gotPos, err)
	}

	cursor := Factory.NewCursor(Factory.NewQuery().With(vel), world)
	if n := cursor.TotalMatched(); n != 0 {
		t.Errorf("query on removed component matched %d entities, want 0", n)
	}
}

func TestSwapRemoveConsistency(t *testing.T) {
	world, pos, _ := worldFixture(t)

	ids := make([]EntityID, 3)
	for i := range ids {
		e, _ := world.CreateEntity()
		pos.Add(world, e, PosU32{X: uint32(i)})
		ids[i] = e
	}
	a, b, c := ids[0], ids[1], ids[2]

	if err := world.DestroyEntity(b); err != nil {
		t.Fatalf("failed to destroy entity: %v", err)
	}
	checkInvariants(t, world)

	chunk := world.slots[a].chunk
	if chunk.Count() != 2 {
		t.Errorf("chunk count = %d, want 2", chunk.Count())
	}
	if chunk.EntityAt(1) != a || chunk.EntityAt(2) != c {
		t.Errorf("rows = [%d, %d], want [%d, %d]", chunk.EntityAt(1), chunk.EntityAt(2), a, c)
	}
	if world.slots[c].row != 2 {
		t.Errorf("slot[c].row = %d, want 2", world.slots[c].row)
	}
	if world.State(b) != SlotFree {
		t.Errorf("slot[b].state = %v, want Free", world.State(b))
	}
}

func TestIDRecycling(t *testing.T) {
	world, pos, _ := worldFixture(t)

	e, _ := world.CreateEntity()
	pos.Add(world, e, PosU32{X: 1})
	world.SetEnabled(e, false)
	if err := world.DestroyEntity(e); err != nil {
		t.Fatalf("failed to destroy entity: %v", err)
	}
	if world.IsAlive(e) {
		t.Fatal("destroyed entity reported alive")
	}

	recycled, _ := world.CreateEntity()
	if recycled != e {
		t.Fatalf("expected id %d to be recycled, got %d", e, recycled)
	}
	if world.State(recycled) != SlotEnabled {
		t.Errorf("recycled entity state = %v, want Enabled", world.State(recycled))
	}
	if pos.Check(world, recycled) {
		t.Error("recycled entity retained a stale component")
	}
	if n, _ := world.ReferenceCount(recycled); n != 0 {
		t.Error("recycled entity retained stale references")
	}
	checkInvariants(t, world)
}

func TestOperationsOnDeadEntities(t *testing.T) {
	world, pos, _ := worldFixture(t)
	e, _ := world.CreateEntity()
	world.DestroyEntity(e)

	tests := []struct {
		name string
		call func() error
	}{
		{"AddComponent", func() error { return pos.Add(world, e, PosU32{}) }},
		{"SetComponent", func() error { return pos.Set(world, e, PosU32{}) }},
		{"RemoveComponent", func() error { return pos.Remove(world, e) }},
		{"Destroy", func() error { return world.DestroyEntity(e) }},
		{"SetParent", func() error { return world.SetParent(e, None) }},
		{"SetEnabled", func() error { return world.SetEnabled(e, false) }},
		{"ZeroID", func() error { return world.DestroyEntity(None) }},
		{"OutOfRangeID", func() error { return world.DestroyEntity(9999) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if _, ok := err.(EntityNotFoundError); !ok {
				t.Errorf("error = %v, want EntityNotFoundError", err)
			}
		})
	}
}

func TestStrictAddAndMissingType(t *testing.T) {
	world, pos, vel := worldFixture(t)
	e, _ := world.CreateEntity()
	pos.Add(world, e, PosU32{X: 1})

	if err := pos.Add(world, e, PosU32{X: 2}); err == nil {
		t.Error("strict add of a present component should fail")
	} else if _, ok := err.(TypeAlreadyPresentError); !ok {
		t.Errorf("error = %v, want TypeAlreadyPresentError", err)
	}
	// The failed add must not clobber the value.
	got, _ := pos.GetFromEntity(world, e)
	if got.X != 1 {
		t.Errorf("value after failed strict add = %d, want 1", got.X)
	}

	if err := pos.TryAdd(world, e, PosU32{X: 3}); err != nil {
		t.Errorf("TryAdd on a present component should overwrite, got %v", err)
	}
	got, _ = pos.GetFromEntity(world, e)
	if got.X != 3 {
		t.Errorf("value after TryAdd = %d, want 3", got.X)
	}

	if err := vel.Set(world, e, VelI32{}); err == nil {
		t.Error("set of a missing component should fail")
	} else if _, ok := err.(TypeMissingError); !ok {
		t.Errorf("error = %v, want TypeMissingError", err)
	}
	if err := vel.Remove(world, e); err == nil {
		t.Error("remove of a missing component should fail")
	}
	checkInvariants(t, world)
}

func TestComponentEventCallbacks(t *testing.T) {
	schema := Factory.NewSchema()
	pos, _ := RegisterComponent[PosU32](schema)
	vel, _ := RegisterComponent[VelI32](schema)

	type event struct {
		entity EntityID
		index  uint32
	}
	var added, removed []event
	world, _ := Factory.NewWorld(WorldConfig{
		Schema: schema,
		OnComponentAdded: func(e EntityID, idx uint32) {
			added = append(added, event{e, idx})
		},
		OnComponentRemoved: func(e EntityID, idx uint32) {
			removed = append(removed, event{e, idx})
		},
	})

	e, _ := world.CreateEntity()
	if len(added) != 0 {
		t.Error("entity creation must not emit component events")
	}

	pos.Add(world, e, PosU32{})
	vel.Add(world, e, VelI32{})
	if len(added) != 2 || added[1] != (event{e, vel.Index()}) {
		t.Errorf("added events = %v, want adds for both components", added)
	}

	vel.Remove(world, e)
	if len(removed) != 1 || removed[0] != (event{e, vel.Index()}) {
		t.Errorf("removed events = %v, want one removal", removed)
	}

	// Destruction emits a removal for every held component.
	world.DestroyEntity(e)
	if len(removed) != 2 || removed[1] != (event{e, pos.Index()}) {
		t.Errorf("removed events after destroy = %v, want pos removal", removed)
	}
}

func TestLockedWorldRejectsMutations(t *testing.T) {
	world, pos, _ := worldFixture(t)
	e, _ := world.CreateEntity()
	pos.Add(world, e, PosU32{})

	world.AddLock(1)
	if !world.Locked() {
		t.Fatal("world should report locked")
	}

	if _, err := world.CreateEntity(); err == nil {
		t.Error("create on a locked world should fail")
	}
	if err := pos.Remove(world, e); err == nil {
		t.Error("remove on a locked world should fail")
	} else if _, ok := err.(LockedWorldError); !ok {
		t.Errorf("error = %v, want LockedWorldError", err)
	}

	world.RemoveLock(1)
	if world.Locked() {
		t.Fatal("world should be unlocked again")
	}
	if err := pos.Remove(world, e); err != nil {
		t.Errorf("remove after unlock failed: %v", err)
	}
}

func TestEnqueueDrainsOnUnlock(t *testing.T) {
	world, pos, _ := worldFixture(t)
	e, _ := world.CreateEntity()

	world.AddLock(1)
	world.AddLock(2)

	if err := world.EnqueueAddComponent(e, pos.ComponentType, valueBytes(&PosU32{X: 5, Y: 6})); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if err := world.EnqueueCreateEntities(2); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	world.RemoveLock(1)
	if pos.Check(world, e) {
		t.Fatal("queued operations must not apply while a lock remains")
	}

	world.RemoveLock(2)
	got, err := pos.GetFromEntity(world, e)
	if err != nil || *got != (PosU32{X: 5, Y: 6}) {
		t.Errorf("queued add did not apply: %+v (err %v)", got, err)
	}
	if world.EntityCount() != 3 {
		t.Errorf("EntityCount = %d, want 3 after queued creates", world.EntityCount())
	}
	checkInvariants(t, world)
}

func TestEnqueueSkipsEntitiesDestroyedBeforeDrain(t *testing.T) {
	world, pos, _ := worldFixture(t)
	e, _ := world.CreateEntity()
	survivor, _ := world.CreateEntity()

	world.AddLock(1)
	world.EnqueueAddComponent(e, pos.ComponentType, nil)
	world.EnqueueAddComponent(survivor, pos.ComponentType, nil)
	world.RemoveLock(1)

	// Lock again and queue a removal against e; it drains at unlock, then e
	// is destroyed, so the next batch queues against a dead entity.
	world.AddLock(1)
	world.EnqueueRemoveComponent(e, pos.ComponentType)
	world.RemoveLock(1)
	world.DestroyEntity(e)

	world.AddLock(1)
	world.EnqueueRemoveComponent(e, pos.ComponentType)
	world.EnqueueRemoveComponent(survivor, pos.ComponentType)
	world.RemoveLock(1)

	if pos.Check(world, survivor) {
		t.Error("queued removal on the survivor should have applied")
	}
	checkInvariants(t, world)
}

func TestPeekIDsPredictsAllocation(t *testing.T) {
	world, _, _ := worldFixture(t)

	a, _ := world.CreateEntity()
	b, _ := world.CreateEntity()
	world.DestroyEntity(a)
	world.DestroyEntity(b)

	predicted := world.PeekIDs(nil, 3)
	var got []EntityID
	for i := 0; i < 3; i++ {
		e, _ := world.CreateEntity()
		got = append(got, e)
	}
	for i := range predicted {
		if predicted[i] != got[i] {
			t.Fatalf("PeekIDs = %v, allocation produced %v", predicted, got)
		}
	}
}

func TestCreationTrace(t *testing.T) {
	schema := Factory.NewSchema()
	RegisterComponent[PosU32](schema)

	traced, _ := Factory.NewWorld(WorldConfig{Schema: schema, EnableCreationTrace: true})
	e, _ := traced.CreateEntity()
	if creationTraceAvailable {
		if len(traced.CreationTrace(e)) == 0 {
			t.Error("debug build with tracing enabled should capture a creation stack")
		}
	} else if traced.CreationTrace(e) != nil {
		t.Error("release build must not capture creation stacks")
	}

	plain, _ := Factory.NewWorld(WorldConfig{Schema: schema})
	e2, _ := plain.CreateEntity()
	if plain.CreationTrace(e2) != nil {
		t.Error("non-tracing world should not capture stacks")
	}
}
