// Package schema defines the physical layout of the data space's seven
// logical tables as a single flat keyspace: each table is given a
// one-byte tag prefix, so that seven logically distinct tables can share one
// ordered keyspace instead of seven separate KV namespaces. Every other
// component reads and writes exclusively through the key builders here.
package schema

import (
	"sort"

	"github.com/antiraum/EntityDataSpace/internal/codec"
)

// Table tags. A single byte is prepended to every composite key so that the
// seven logical tables can coexist in one ordered keyspace without their key
// ranges overlapping.
const (
	tagStore byte = iota + 1
	tagMaps
	tagIdx1
	tagIdx2
	tagKIdx
	tagVIdx
	tagIDIdx
)

// Profile selects which auxiliary index tables a data space instance
// maintains. STORE and MAPS are always present; Query and mutation
// behavior must be identical across profiles, indexes are pure
// accelerants.
type Profile int

const (
	// StoreOnly maintains only STORE and MAPS.
	StoreOnly Profile = iota
	// Inverted additionally maintains IDX1 and IDX2.
	Inverted
	// All additionally maintains K_IDX, V_IDX, and ID_IDX.
	All
)

// HasInverted reports whether profile p maintains IDX1/IDX2.
func (p Profile) HasInverted() bool { return p == Inverted || p == All }

// HasAll reports whether profile p maintains K_IDX/V_IDX/ID_IDX.
func (p Profile) HasAll() bool { return p == All }

// enc is for the call sites (MapsKey/MapsKeyPrefix's scopeToken, MapsKey's
// serialized set, Serialize's per-field Name/Value, and EncodeSynonym) that
// receive strings which have not already passed through the Key Codec as a
// whole anywhere else in the engine. Every
// other builder below takes components the caller has already encoded via
// codec.Encode (entity.go/attribute.go/index.go/attrs.go/query.go all pass
// encID/encName/encValue), so it joins them as-is instead of re-encoding —
// re-encoding an already-encoded string containing a real "///" would hit
// the Invalid sentinel a second time and panic.
func enc(s string) string {
	out, err := codec.Encode(s)
	if err != nil {
		panic(err)
	}
	return out
}

func prefixed(tag byte, rest string) []byte {
	out := make([]byte, 0, len(rest)+1)
	out = append(out, tag)
	out = append(out, rest...)
	return out
}

// StoreTag returns the one-byte table tag used for STORE keys, exported so
// callers can distinguish STORE rows during a full unfiltered scan (used
// by delete_entity's fallback cascade and the root-condition enumerator
// when no profile index is available).
func StoreTag() byte { return tagStore }

// StoreEntityKey returns the STORE key for an entity row. encID must
// already be Key-Codec-encoded.
func StoreEntityKey(encID string) []byte {
	return prefixed(tagStore, encID)
}

// StoreAttrKey returns the STORE key for an attribute row (all values of
// (id, name)). encID, encName must already be Key-Codec-encoded.
func StoreAttrKey(encID, encName string) []byte {
	return prefixed(tagStore, codec.Join(encID, encName))
}

// StoreAttrKeyPrefix returns the STORE key prefix covering every attribute
// row owned by encID (used for a prefix scan when ID_IDX is unavailable).
// encID must already be Key-Codec-encoded.
func StoreAttrKeyPrefix(encID string) []byte {
	return prefixed(tagStore, codec.Join(encID, ""))
}

// EntityRowValue is the sentinel value stored at an entity row.
const EntityRowValue = "1"

// ScopeToken returns a mapping scope's raw (not yet Key-Codec-encoded)
// token: either a specific entity id, or the generic wildcard.
func ScopeToken(id string, generic bool) string {
	if generic {
		return codec.Any
	}
	return id
}

// MapsKey returns the MAPS key for a (scope, original-set) pair. Unlike the
// other builders here, scopeToken and serialized are raw: scopeToken is a
// bare entity id or the wildcard token, never pre-encoded elsewhere, and
// serialized is Serialize's output, which already contains a real field
// separator as its *internal* delimiter between pairs. Both are escaped
// here before being joined into the outer key, so that neither a raw "///"
// inside scopeToken nor Serialize's internal delimiters leak into the
// outer key's own field boundaries.
func MapsKey(scopeToken, serialized string) []byte {
	return prefixed(tagMaps, codec.Join(enc(scopeToken), enc(serialized)))
}

// MapsKeyPrefix returns the MAPS key prefix covering every mapping scoped
// to scopeToken, used by the mapping cascade on attribute removal.
// scopeToken is raw, as in MapsKey.
func MapsKeyPrefix(scopeToken string) []byte {
	return prefixed(tagMaps, codec.Join(enc(scopeToken), ""))
}

// MapsSerializedFromKey extracts and decodes the serialized original-set
// component from a full MAPS key previously built by MapsKey, given the
// known scopeToken prefix length (len(MapsKeyPrefix(scopeToken))).
func MapsSerializedFromKey(key []byte, scopeToken string) string {
	prefix := MapsKeyPrefix(scopeToken)
	return codec.Decode(string(key[len(prefix):]))
}

// Idx1Key returns the IDX1 key (inverted by value -> name). encValue,
// encName must already be Key-Codec-encoded.
func Idx1Key(encValue, encName string) []byte {
	return prefixed(tagIdx1, codec.Join(encValue, encName))
}

// Idx1KeyPrefix returns the IDX1 prefix for all names indexed under
// encValue, which must already be Key-Codec-encoded.
func Idx1KeyPrefix(encValue string) []byte {
	return prefixed(tagIdx1, codec.Join(encValue, ""))
}

// Idx2Key returns the IDX2 key (inverted by id,value -> name). encID,
// encValue must already be Key-Codec-encoded.
func Idx2Key(encID, encValue string) []byte {
	return prefixed(tagIdx2, codec.Join(encID, encValue))
}

// Idx2KeyPrefix returns the IDX2 prefix for all values owned by encID,
// which must already be Key-Codec-encoded.
func Idx2KeyPrefix(encID string) []byte {
	return prefixed(tagIdx2, codec.Join(encID, ""))
}

// KIdxKey returns the K_IDX key for a name. encName must already be
// Key-Codec-encoded.
func KIdxKey(encName string) []byte {
	return prefixed(tagKIdx, encName)
}

// VIdxKey returns the V_IDX key for a value. encValue must already be
// Key-Codec-encoded.
func VIdxKey(encValue string) []byte {
	return prefixed(tagVIdx, encValue)
}

// IDIdxKey returns the ID_IDX key for an id. encID must already be
// Key-Codec-encoded.
func IDIdxKey(encID string) []byte {
	return prefixed(tagIDIdx, encID)
}

// Pair is a (name, value) attribute pair as it appears in an AttrSet, using
// raw (unencoded) strings.
type Pair struct {
	Name  string
	Value string
}

// Serialize produces a deterministic, reversible encoding of an AttrSet (an
// unordered set of Pairs): pairs are sorted by (name, value) and their
// per-field-escaped components are joined with the field separator. Two
// AttrSets with the same members serialize identically regardless of
// insertion order.
//
// The result may itself contain the (real) field separator as an internal
// delimiter between pairs — that is fine as long as Serialize's output is
// always itself escaped (via enc, see MapsKey and EncodeSynonym) before
// being combined into a further composite key or multi-valued cell, the
// same way any other string component is.
func Serialize(pairs []Pair) string {
	sorted := append([]Pair(nil), pairs...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].Value < sorted[j].Value
	})

	tokens := make([]string, 0, len(sorted)*2)
	for _, p := range sorted {
		tokens = append(tokens, enc(p.Name), enc(p.Value))
	}
	return codec.Join(tokens...)
}

// Deserialize reverses Serialize, recovering the AttrSet as a slice of
// Pairs in canonical (sorted) order.
func Deserialize(serialized string) []Pair {
	tokens := codec.Split(serialized)
	pairs := make([]Pair, 0, len(tokens)/2)
	for i := 0; i+1 < len(tokens); i += 2 {
		pairs = append(pairs, Pair{
			Name:  codec.Decode(tokens[i]),
			Value: codec.Decode(tokens[i+1]),
		})
	}
	return pairs
}

// EncodeSynonym escapes a Serialize output so it can be used as one token
// in the MAPS value cell (a separator-joined list of synonym sets).
func EncodeSynonym(serialized string) string {
	return enc(serialized)
}

// DecodeSynonym reverses EncodeSynonym.
func DecodeSynonym(token string) string {
	return codec.Decode(token)
}
