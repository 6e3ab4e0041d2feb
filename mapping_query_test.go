package entitydataspace

import "testing"

// Scenario 5: a specific-scope mapping lets a query matched
// against a synonym succeed only when use_mappings is on.
func TestSearchMappingAwareSubstitution(t *testing.T) {
	ds := openTest(t, StoreOnly)
	mustInsertEntity(t, ds, "E")
	mustInsertAttr(t, ds, "E", "k1", Literal("s1"))
	mustInsertAttr(t, ds, "E", "k2", Literal("s2"))

	original := AttrSet{{Name: "k1", Value: Literal("s1")}}
	synonyms := AttrSet{{Name: "k3", Value: Literal("s2")}}
	if err := ds.InsertMapping(EntityScope("E"), original, synonyms); err != nil {
		t.Fatalf("InsertMapping: %v", err)
	}

	root := NewRoot(C("E"), NewLeaf(C("k3"), C(`"s2"`)))

	got, err := ds.Search(root, SearchOptions{UseMappings: false})
	if err != nil {
		t.Fatalf("Search (mappings off): %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Search with mappings off = %v, want []", got)
	}

	got, err = ds.Search(root, SearchOptions{UseMappings: true})
	if err != nil {
		t.Fatalf("Search (mappings on): %v", err)
	}
	if !eqStrings(got, []string{"E"}) {
		t.Fatalf("Search with mappings on = %v, want [E]", got)
	}
}

func TestSearchMappingGenericScope(t *testing.T) {
	ds := openTest(t, StoreOnly)
	mustInsertEntity(t, ds, "scope")
	mustInsertEntity(t, ds, "E")
	mustInsertAttr(t, ds, "scope", "k1", Literal("s1"))
	mustInsertAttr(t, ds, "E", "k1", Literal("s1"))

	original := AttrSet{{Name: "k1", Value: Literal("s1")}}
	synonyms := AttrSet{{Name: "k9", Value: Literal("s9")}}
	if err := ds.InsertMapping(GenericScope(), original, synonyms); err != nil {
		t.Fatalf("InsertMapping: %v", err)
	}

	root := NewRoot(C("E"), NewLeaf(C("k9"), C(`"s9"`)))
	got, err := ds.Search(root, SearchOptions{UseMappings: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !eqStrings(got, []string{"E"}) {
		t.Fatalf("Search via generic mapping = %v, want [E]", got)
	}
}

// A mapping cascade must drop a synonym once the attribute it
// depends on is removed, so the substituted query stops matching.
func TestSearchMappingCascadeOnAttributeRemoval(t *testing.T) {
	ds := openTest(t, StoreOnly)
	mustInsertEntity(t, ds, "E")
	mustInsertAttr(t, ds, "E", "k1", Literal("s1"))

	original := AttrSet{{Name: "k1", Value: Literal("s1")}}
	synonyms := AttrSet{{Name: "k3", Value: Literal("s2")}}
	if err := ds.InsertMapping(EntityScope("E"), original, synonyms); err != nil {
		t.Fatalf("InsertMapping: %v", err)
	}

	if err := ds.DeleteAttribute("E", "k1", `"s1"`); err != nil {
		t.Fatalf("DeleteAttribute: %v", err)
	}

	root := NewRoot(C("E"), NewLeaf(C("k3"), C(`"s2"`)))
	got, err := ds.Search(root, SearchOptions{UseMappings: true})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Search after cascade = %v, want [] (mapping should have been pruned)", got)
	}
}

func TestEnumeratePartitionsCounts(t *testing.T) {
	one := NewLeaf(C("a"), C(`"1"`))
	two := NewLeaf(C("b"), C(`"2"`))
	three := NewLeaf(C("c"), C(`"3"`))

	// Bell(1)=1, Bell(2)=2, Bell(3)=5.
	if n := len(enumeratePartitions([]*Condition{one})); n != 1 {
		t.Fatalf("Bell(1) = %d, want 1", n)
	}
	if n := len(enumeratePartitions([]*Condition{one, two})); n != 2 {
		t.Fatalf("Bell(2) = %d, want 2", n)
	}
	if n := len(enumeratePartitions([]*Condition{one, two, three})); n != 5 {
		t.Fatalf("Bell(3) = %d, want 5", n)
	}
}
