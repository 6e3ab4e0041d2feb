package entitydataspace

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var sortAttrNodes = cmpopts.SortSlices(func(a, b AttrNode) bool { return a.Name < b.Name })

func findChild(t *testing.T, tree *EntityTree, name string) *AttrNode {
	t.Helper()
	for i := range tree.Children {
		if tree.Children[i].Name == name {
			return &tree.Children[i]
		}
	}
	t.Fatalf("no child named %q in %+v", name, tree)
	return nil
}

// Projection round-trip: the flattened (name,value) multiset
// of get_entity's output matches what was inserted, for an acyclic entity.
func TestGetEntityProjectionRoundTrip(t *testing.T) {
	ds := openTest(t, StoreOnly)
	mustInsertEntity(t, ds, "a")
	mustInsertAttr(t, ds, "a", "x", Literal("1"))
	mustInsertAttr(t, ds, "a", "y", Literal("2"))

	tree, err := ds.GetEntity("a")
	if err != nil {
		t.Fatalf("GetEntity: %v", err)
	}
	if tree.ID != "a" {
		t.Fatalf("tree.ID = %q, want a", tree.ID)
	}
	if len(tree.Children) != 2 {
		t.Fatalf("len(Children) = %d, want 2", len(tree.Children))
	}
	x := findChild(t, tree, "x")
	if x.Value.raw() != `"1"` || !x.Value.IsLiteral() {
		t.Fatalf("child x = %+v, want literal 1", x)
	}
}

// Scenario 3: self-loop breaks the cycle on second occurrence.
func TestGetEntitySelfLoopBreaksCycle(t *testing.T) {
	ds := openTest(t, StoreOnly)
	mustInsertEntity(t, ds, "X")
	mustInsertAttr(t, ds, "X", "k", Ref("X"))

	tree, err := ds.GetEntity("X")
	if err != nil {
		t.Fatalf("GetEntity: %v", err)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("len(Children) = %d, want 1", len(tree.Children))
	}
	child := tree.Children[0]
	if child.Value.raw() != "X" || !child.Value.IsRef() {
		t.Fatalf("child value = %+v, want ref X", child.Value)
	}
	if child.Target != nil {
		t.Fatalf("child.Target = %+v, want nil (cycle break, id-only)", child.Target)
	}
}

func TestGetEntityExpandsReferenceFirstOccurrence(t *testing.T) {
	ds := openTest(t, StoreOnly)
	mustInsertEntity(t, ds, "a")
	mustInsertEntity(t, ds, "b")
	mustInsertAttr(t, ds, "a", "ref", Ref("b"))
	mustInsertAttr(t, ds, "b", "tag", Literal("x"))

	tree, err := ds.GetEntity("a")
	if err != nil {
		t.Fatalf("GetEntity: %v", err)
	}
	ref := findChild(t, tree, "ref")
	if ref.Target == nil {
		t.Fatalf("ref.Target = nil, want expanded tree for b")
	}
	if ref.Target.ID != "b" {
		t.Fatalf("ref.Target.ID = %q, want b", ref.Target.ID)
	}
	tag := findChild(t, ref.Target, "tag")
	if tag.Value.raw() != `"x"` {
		t.Fatalf("tag value = %q, want \"x\"", tag.Value.raw())
	}
}

func TestGetEntityDiamondVisitsEachIdOnce(t *testing.T) {
	ds := openTest(t, StoreOnly)
	mustInsertEntity(t, ds, "a")
	mustInsertEntity(t, ds, "b")
	mustInsertEntity(t, ds, "c")
	mustInsertEntity(t, ds, "d")
	mustInsertAttr(t, ds, "a", "left", Ref("b"))
	mustInsertAttr(t, ds, "a", "right", Ref("c"))
	mustInsertAttr(t, ds, "b", "next", Ref("d"))
	mustInsertAttr(t, ds, "c", "next", Ref("d"))
	mustInsertAttr(t, ds, "d", "val", Literal("leaf"))

	tree, err := ds.GetEntity("a")
	if err != nil {
		t.Fatalf("GetEntity: %v", err)
	}
	left := findChild(t, tree, "left")
	right := findChild(t, tree, "right")
	if left.Target == nil {
		t.Fatalf("left.Target = nil, want expanded")
	}
	// Whichever of b/c's "next" is reached second sees d already visited.
	leftNext := findChild(t, left.Target, "next")
	rightNext := findChild(t, right.Target, "next")
	expandedCount := 0
	if leftNext.Target != nil {
		expandedCount++
	}
	if rightNext.Target != nil {
		expandedCount++
	}
	if expandedCount != 1 {
		t.Fatalf("expected exactly one expansion of shared node d, got %d", expandedCount)
	}
}

func TestGetEntityTreeShape(t *testing.T) {
	ds := openTest(t, StoreOnly)
	mustInsertEntity(t, ds, "a")
	mustInsertEntity(t, ds, "b")
	mustInsertAttr(t, ds, "a", "ref", Ref("b"))
	mustInsertAttr(t, ds, "a", "tag", Literal("x"))
	mustInsertAttr(t, ds, "b", "tag", Literal("y"))

	got, err := ds.GetEntity("a")
	if err != nil {
		t.Fatalf("GetEntity: %v", err)
	}

	want := &EntityTree{
		ID: "a",
		Children: []AttrNode{
			{Name: "tag", Value: Literal("x")},
			{Name: "ref", Value: Ref("b"), Target: &EntityTree{
				ID: "b",
				Children: []AttrNode{
					{Name: "tag", Value: Literal("y")},
				},
			}},
		},
	}

	if diff := cmp.Diff(want, got, sortAttrNodes); diff != "" {
		t.Fatalf("GetEntity tree mismatch (-want +got):\n%s", diff)
	}
}

func TestGetEntityNoEntity(t *testing.T) {
	ds := openTest(t, StoreOnly)
	_, err := ds.GetEntity("missing")
	if !IsNoEntity(err) {
		t.Fatalf("GetEntity on missing id: err = %v, want NoEntity", err)
	}
}
