package depot

import (
	"reflect"
	"testing"
)

// Test component types shared across the suite.
type Position struct {
	X, Y float64
}

type Velocity struct {
	X, Y float64
}

type Health struct {
	Current, Max int32
}

// Exact-layout types for offset assertions.
type PosU32 struct {
	X, Y uint32
}

type VelI32 struct {
	VX int32
}

type Frozen struct{}

type Waypoint struct {
	X, Y int32
}

func TestSchemaComponentLayout(t *testing.T) {
	schema := Factory.NewSchema()

	pos, err := RegisterComponent[PosU32](schema)
	if err != nil {
		t.Fatalf("failed to register component: %v", err)
	}
	vel, err := RegisterComponent[VelI32](schema)
	if err != nil {
		t.Fatalf("failed to register component: %v", err)
	}

	if pos.Index() != 0 || pos.Size() != 8 || pos.Offset() != 0 {
		t.Errorf("PosU32 = (index %d, size %d, offset %d), want (0, 8, 0)",
			pos.Index(), pos.Size(), pos.Offset())
	}
	if vel.Index() != 1 || vel.Size() != 4 || vel.Offset() != 8 {
		t.Errorf("VelI32 = (index %d, size %d, offset %d), want (1, 4, 8)",
			vel.Index(), vel.Size(), vel.Offset())
	}
	if schema.RowSize() != 12 {
		t.Errorf("RowSize() = %d, want 12", schema.RowSize())
	}
}

func TestSchemaRegistrationIdempotent(t *testing.T) {
	schema := Factory.NewSchema()

	first, err := RegisterComponent[Position](schema)
	if err != nil {
		t.Fatalf("failed to register component: %v", err)
	}
	second, err := RegisterComponent[Position](schema)
	if err != nil {
		t.Fatalf("re-registration errored: %v", err)
	}
	if first.Index() != second.Index() || first.Offset() != second.Offset() {
		t.Errorf("re-registration returned a different handle: %v vs %v", first, second)
	}
	if schema.ComponentCount() != 1 {
		t.Errorf("ComponentCount() = %d, want 1", schema.ComponentCount())
	}

	arr1, _ := RegisterArray[Waypoint](schema)
	arr2, _ := RegisterArray[Waypoint](schema)
	if arr1.Index() != arr2.Index() {
		t.Error("array re-registration returned a different index")
	}

	tag1, _ := RegisterTag[Frozen](schema)
	tag2, _ := RegisterTag[Frozen](schema)
	if tag1.Index() != tag2.Index() {
		t.Error("tag re-registration returned a different index")
	}
}

func TestSchemaNamespacesAreDisjoint(t *testing.T) {
	schema := Factory.NewSchema()

	comp, _ := RegisterComponent[Position](schema)
	arr, _ := RegisterArray[Position](schema)
	tag, _ := RegisterTag[Position](schema)

	// The same native type can occupy index 0 of all three namespaces.
	if comp.Index() != 0 || arr.Index() != 0 || tag.Index() != 0 {
		t.Errorf("expected index 0 in every namespace, got %d/%d/%d",
			comp.Index(), arr.Index(), tag.Index())
	}
	if schema.RowSize() != 16 {
		t.Errorf("arrays and tags must not contribute to the row: RowSize() = %d, want 16", schema.RowSize())
	}
}

func TestSchemaCapacityOverflow(t *testing.T) {
	schema := Factory.NewSchema()

	// Distinct types via distinct array lengths.
	for i := 0; i < MaskCapacity; i++ {
		typ := reflect.StructOf([]reflect.StructField{{
			Name: "F",
			Type: reflect.ArrayOf(i+1, reflect.TypeFor[byte]()),
		}})
		if _, err := schema.RegisterComponentOf(typ); err != nil {
			t.Fatalf("registration %d failed early: %v", i, err)
		}
	}

	overflow := reflect.StructOf([]reflect.StructField{{
		Name: "F",
		Type: reflect.ArrayOf(MaskCapacity+1, reflect.TypeFor[byte]()),
	}})
	_, err := schema.RegisterComponentOf(overflow)
	if _, ok := err.(SchemaFullError); !ok {
		t.Fatalf("registration past capacity: error = %v, want SchemaFullError", err)
	}
	if schema.ComponentCount() != MaskCapacity {
		t.Errorf("failed registration must not grow the schema: count = %d", schema.ComponentCount())
	}
}

func TestSchemaLookups(t *testing.T) {
	schema := Factory.NewSchema()
	pos, _ := RegisterComponent[Position](schema)

	byType, ok := schema.LookupComponent(reflect.TypeFor[Position]())
	if !ok || byType.Index() != pos.Index() {
		t.Errorf("LookupComponent = (%v, %v), want the registered handle", byType, ok)
	}
	if _, ok := schema.LookupComponent(reflect.TypeFor[Velocity]()); ok {
		t.Error("LookupComponent found an unregistered type")
	}

	byIdx, err := schema.ComponentAt(pos.Index())
	if err != nil || byIdx.Offset() != pos.Offset() {
		t.Errorf("ComponentAt = (%v, %v), want the registered handle", byIdx, err)
	}
	if _, err := schema.ComponentAt(42); err == nil {
		t.Error("ComponentAt out of range should error")
	}

	name := reflect.TypeFor[Position]().String()
	named, ok := schema.ComponentNamed(name)
	if !ok || named.Index() != pos.Index() {
		t.Errorf("ComponentNamed(%q) = (%v, %v), want the registered handle", name, named, ok)
	}
}
