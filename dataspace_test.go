package entitydataspace

import "testing"

func TestOpenInMemoryDefaultsToDiscardLogger(t *testing.T) {
	ds, err := Open("", StoreOnly)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ds.Close()
	if ds.log == nil {
		t.Fatalf("expected a default (discard) logger, got nil")
	}
}

func TestClearResetsStore(t *testing.T) {
	ds := openTest(t, All)
	mustInsertEntity(t, ds, "a")
	mustInsertAttr(t, ds, "a", "k", Literal("v"))

	if err := ds.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	got, err := ds.Search(NewRoot(Wild), SearchOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Search after Clear = %v, want []", got)
	}

	// The store must be fully usable again (no orphaned index state).
	mustInsertEntity(t, ds, "a")
	mustInsertAttr(t, ds, "a", "k", Literal("v"))
}

func TestSearchRejectsNonRootCondition(t *testing.T) {
	ds := openTest(t, StoreOnly)
	leaf := NewLeaf(C("k"), C("v"))
	if _, err := ds.Search(leaf, SearchOptions{}); !IsInvalidInput(err) {
		t.Fatalf("Search(non-root): got %v, want InvalidInput", err)
	}
}
