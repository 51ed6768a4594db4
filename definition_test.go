package depot

import "testing"

func TestDefinitionValueSemantics(t *testing.T) {
	var d Definition
	withPos := d.WithComponent(0)
	if d.HasComponent(0) {
		t.Error("WithComponent mutated the receiver")
	}
	if !withPos.HasComponent(0) {
		t.Error("WithComponent lost the added index")
	}

	roundTrip := withPos.WithComponent(1).WithoutComponent(1)
	if roundTrip != withPos {
		t.Error("add then remove should restore the original Definition")
	}
}

func TestDefinitionNamespaces(t *testing.T) {
	var d Definition
	d = d.WithComponent(2).WithArray(2).WithTag(2)

	if !d.HasComponent(2) || !d.HasArray(2) || !d.HasTag(2) {
		t.Error("index 2 should be present in all three namespaces")
	}

	noTag := d.WithoutTag(2)
	if !noTag.HasComponent(2) || !noTag.HasArray(2) || noTag.HasTag(2) {
		t.Error("removing a tag must not disturb the other namespaces")
	}

	indices := d.ComponentIndices(nil)
	if len(indices) != 1 || indices[0] != 2 {
		t.Errorf("ComponentIndices = %v, want [2]", indices)
	}

	var many BitMask
	many.Set(4)
	many.Set(9)
	bulk := d.WithComponents(many)
	if !bulk.HasComponent(4) || !bulk.HasComponent(9) || !bulk.HasComponent(2) {
		t.Errorf("WithComponents missed bits: %v", bulk.ComponentIndices(nil))
	}
}

func TestDefinitionEqualityAndHash(t *testing.T) {
	a := Definition{}.WithComponent(1).WithComponent(7).WithTag(3)
	b := Definition{}.WithComponent(7).WithComponent(1).WithTag(3)
	c := a.WithArray(0)

	if a != b {
		t.Error("definitions built in different order should compare equal")
	}
	if a.Hash() != b.Hash() {
		t.Error("equal definitions must hash equally")
	}
	if a == c {
		t.Error("different definitions should not compare equal")
	}
	if a.Hash() == c.Hash() {
		t.Error("adding an array bit should change the hash")
	}

	if !c.ContainsAll(a) {
		t.Error("superset should contain subset across namespaces")
	}
	if a.ContainsAll(c) {
		t.Error("subset should not contain superset")
	}
}
