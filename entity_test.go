package entitydataspace

import (
	"testing"

	"github.com/antiraum/EntityDataSpace/internal/codec"
)

func TestInsertEntityRejectsDuplicate(t *testing.T) {
	ds := openTest(t, StoreOnly)
	mustInsertEntity(t, ds, "a")
	if err := ds.InsertEntity("a"); !IsEntityExists(err) {
		t.Fatalf("InsertEntity duplicate: got %v, want EntityExists", err)
	}
}

func TestDeleteEntityRejectsMissing(t *testing.T) {
	ds := openTest(t, StoreOnly)
	if err := ds.DeleteEntity("ghost"); !IsNoEntity(err) {
		t.Fatalf("DeleteEntity missing: got %v, want NoEntity", err)
	}
}

// insert_entity; delete_entity restores the store (spec.md §8 round-trip).
func TestInsertDeleteEntityRoundTrip(t *testing.T) {
	ds := openTest(t, StoreOnly)
	mustInsertEntity(t, ds, "a")
	before, err := ds.Search(NewRoot(Wild), SearchOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if err := ds.DeleteEntity("a"); err != nil {
		t.Fatalf("DeleteEntity: %v", err)
	}
	after, err := ds.Search(NewRoot(Wild), SearchOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(before) != 1 || len(after) != 0 {
		t.Fatalf("round trip: before=%v after=%v", before, after)
	}
}

// Cascade: deleting an entity removes every attribute anywhere that
// referenced it, restoring referential closure (I1).
func TestDeleteEntityCascadesIncomingReferences(t *testing.T) {
	ds := openTest(t, StoreOnly)
	mustInsertEntity(t, ds, "a")
	mustInsertEntity(t, ds, "b")
	mustInsertAttr(t, ds, "a", "friend", Ref("b"))

	if err := ds.DeleteEntity("b"); err != nil {
		t.Fatalf("DeleteEntity: %v", err)
	}

	tree, err := ds.GetEntity("a")
	if err != nil {
		t.Fatalf("GetEntity: %v", err)
	}
	if len(tree.Children) != 0 {
		t.Fatalf("expected dangling reference to be cascaded away, got %+v", tree.Children)
	}
}

// Cascade: deleting an entity removes every mapping scoped to it.
func TestDeleteEntityCascadesScopedMappings(t *testing.T) {
	ds := openTest(t, StoreOnly)
	mustInsertEntity(t, ds, "e")
	mustInsertAttr(t, ds, "e", "k1", Literal("s1"))

	original := AttrSet{{Name: "k1", Value: Literal("s1")}}
	synonyms := AttrSet{{Name: "k2", Value: Literal("s2")}}
	if err := ds.InsertMapping(EntityScope("e"), original, synonyms); err != nil {
		t.Fatalf("InsertMapping: %v", err)
	}

	if err := ds.DeleteEntity("e"); err != nil {
		t.Fatalf("DeleteEntity: %v", err)
	}

	mustInsertEntity(t, ds, "e")
	mustInsertAttr(t, ds, "e", "k1", Literal("s1"))
	// If the old mapping had survived the cascade, this insert would fail
	// with MappingExists instead of succeeding.
	if err := ds.InsertMapping(EntityScope("e"), original, synonyms); err != nil {
		t.Fatalf("InsertMapping after recreate: %v (mapping should have been cascaded away)", err)
	}
}

func TestInsertEntityRejectsInvalidToken(t *testing.T) {
	ds := openTest(t, StoreOnly)
	bad := "prefix" + codec.Invalid + "suffix"
	if err := ds.InsertEntity(bad); !IsInvalidInput(err) {
		t.Fatalf("InsertEntity(invalid token): got %v, want InvalidInput", err)
	}
	// the store must remain unchanged
	got, err := ds.Search(NewRoot(Wild), SearchOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("store changed after rejected insert: %v", got)
	}
}
