package schema

import (
	"reflect"
	"sort"
	"testing"
)

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	pairs := []Pair{
		{Name: "k2", Value: `"v2"`},
		{Name: "k1", Value: `"v1"`},
		{Name: "k1", Value: `"v0"`},
	}
	s := Serialize(pairs)
	got := Deserialize(s)

	want := append([]Pair(nil), pairs...)
	sort.Slice(want, func(i, j int) bool {
		if want[i].Name != want[j].Name {
			return want[i].Name < want[j].Name
		}
		return want[i].Value < want[j].Value
	})

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Deserialize(Serialize(p)) = %v, want %v", got, want)
	}
}

func TestSerializeOrderIndependent(t *testing.T) {
	a := []Pair{{Name: "x", Value: "1"}, {Name: "y", Value: "2"}}
	b := []Pair{{Name: "y", Value: "2"}, {Name: "x", Value: "1"}}
	if Serialize(a) != Serialize(b) {
		t.Fatalf("Serialize should be order-independent: %q != %q", Serialize(a), Serialize(b))
	}
}

func TestSerializeHandlesEmbeddedSeparator(t *testing.T) {
	pairs := []Pair{{Name: "a/b", Value: "has///sep"}}
	s := Serialize(pairs)
	got := Deserialize(s)
	if !reflect.DeepEqual(got, pairs) {
		t.Fatalf("round trip with embedded separator: got %v, want %v", got, pairs)
	}
}

func TestEncodeSynonymRoundTrip(t *testing.T) {
	pairs := []Pair{{Name: "k", Value: `"v"`}}
	s := Serialize(pairs)
	tok := EncodeSynonym(s)
	if got := DecodeSynonym(tok); got != s {
		t.Fatalf("EncodeSynonym round trip: got %q, want %q", got, s)
	}
}

func TestMapsKeyRoundTripsSerializedComponent(t *testing.T) {
	original := Serialize([]Pair{{Name: "k1", Value: `"s1"`}})
	scopeToken := "E"

	key := MapsKey(scopeToken, original)
	got := MapsSerializedFromKey(key, scopeToken)
	if got != original {
		t.Fatalf("MapsSerializedFromKey = %q, want %q", got, original)
	}
}

func TestKeyBuildersDoNotOverlapAcrossTables(t *testing.T) {
	keys := [][]byte{
		StoreEntityKey("a"),
		StoreAttrKey("a", "n"),
		MapsKey("a", "s"),
		Idx1Key("v", "n"),
		Idx2Key("a", "v"),
		KIdxKey("n"),
		VIdxKey("v"),
		IDIdxKey("a"),
	}
	seen := map[string]bool{}
	for _, k := range keys {
		if seen[string(k)] {
			t.Fatalf("duplicate key across tables: %q", k)
		}
		seen[string(k)] = true
	}
}

func TestProfileFlags(t *testing.T) {
	if StoreOnly.HasInverted() || StoreOnly.HasAll() {
		t.Fatalf("StoreOnly should have neither inverted nor all indexes")
	}
	if !Inverted.HasInverted() || Inverted.HasAll() {
		t.Fatalf("Inverted should have inverted but not all indexes")
	}
	if !All.HasInverted() || !All.HasAll() {
		t.Fatalf("All should have both inverted and all indexes")
	}
}
