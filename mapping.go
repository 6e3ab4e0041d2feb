package entitydataspace

import (
	"github.com/antiraum/EntityDataSpace/internal/codec"
	"github.com/antiraum/EntityDataSpace/internal/kvstore"
	"github.com/antiraum/EntityDataSpace/internal/schema"
)

// Scope identifies what a mapping applies to: either one specific entity,
// or the generic wildcard scope consulted for every entity.
type Scope struct {
	Generic  bool
	EntityID string
}

// GenericScope is the mapping scope consulted regardless of which entity
// is being matched.
func GenericScope() Scope { return Scope{Generic: true} }

// EntityScope is a mapping scope tied to one specific entity.
func EntityScope(id string) Scope { return Scope{EntityID: id} }

func (s Scope) token() string { return schema.ScopeToken(s.EntityID, s.Generic) }

func toSchemaPairs(set AttrSet) []schema.Pair {
	out := make([]schema.Pair, 0, len(set))
	for _, p := range set {
		out = append(out, schema.Pair{Name: p.Name, Value: p.Value.raw()})
	}
	return out
}

func containsPair(pairs []schema.Pair, p schema.Pair) bool {
	for _, q := range pairs {
		if q == p {
			return true
		}
	}
	return false
}

func removePair(pairs []schema.Pair, p schema.Pair) []schema.Pair {
	out := make([]schema.Pair, 0, len(pairs))
	removed := false
	for _, q := range pairs {
		if !removed && q == p {
			removed = true
			continue
		}
		out = append(out, q)
	}
	return out
}

// isSubset reports whether every pair in a also appears in b.
func isSubset(a, b []schema.Pair) bool {
	for _, p := range a {
		if !containsPair(b, p) {
			return false
		}
	}
	return true
}

// InsertMapping declares that synonyms may be substituted for original
// when scope applies. It validates that original and synonyms are
// non-empty and that neither is a subset of the other, that for a
// specific scope every pair of original currently exists as an attribute
// of the scope entity, and fails MappingExists if this exact synonym
// is already recorded for (scope, original).
func (ds *DataSpace) InsertMapping(scope Scope, original, synonyms AttrSet) error {
	if len(original) == 0 || len(synonyms) == 0 {
		return newErr(InvalidInput, "mapping original and synonyms must be non-empty attribute sets")
	}

	originalPairs := toSchemaPairs(original)
	synonymPairs := toSchemaPairs(synonyms)

	if isSubset(originalPairs, synonymPairs) || isSubset(synonymPairs, originalPairs) {
		return newErr(InvalidInput, "mapping original and synonym sets may not be subsets of one another")
	}

	if !scope.Generic {
		encScopeID, err := encOrInvalid(scope.EntityID)
		if err != nil {
			return err
		}
		exists, err := ds.entityExists(encScopeID)
		if err != nil {
			return err
		}
		if !exists {
			return newErr(NoEntity, "mapping scope entity %q does not exist", scope.EntityID)
		}
		for _, p := range originalPairs {
			encName, err := encOrInvalid(p.Name)
			if err != nil {
				return err
			}
			encValue, err := encOrInvalid(p.Value)
			if err != nil {
				return err
			}
			has, err := kvstore.ValueContains(ds.store, schema.StoreAttrKey(encScopeID, encName), encValue)
			if err != nil {
				return err
			}
			if !has {
				return newErr(NoAttribute, "scope entity %q has no attribute (%q, %q)", scope.EntityID, p.Name, p.Value)
			}
		}
	}

	serializedOriginal := schema.Serialize(originalPairs)
	serializedSynonym := schema.Serialize(synonymPairs)
	key := schema.MapsKey(scope.token(), serializedOriginal)
	token := schema.EncodeSynonym(serializedSynonym)

	already, err := kvstore.ValueContains(ds.store, key, token)
	if err != nil {
		return err
	}
	if already {
		return newErr(MappingExists, "mapping synonym already recorded for this (scope, original)")
	}

	return kvstore.AddToValue(ds.store, key, token)
}

// DeleteMapping removes mapping data for scope. original == nil means
// "every original scoped to this scope"; synonyms == nil means "every
// synonym of the given original". Passing both nil deletes every mapping
// recorded under scope.
func (ds *DataSpace) DeleteMapping(scope Scope, original, synonyms AttrSet) error {
	switch {
	case original == nil && synonyms == nil:
		return ds.deleteMappingsForScope(scope)
	case original != nil && synonyms == nil:
		return ds.deleteMappingOriginal(scope, original)
	case original != nil && synonyms != nil:
		return ds.deleteMappingSynonym(scope, original, synonyms)
	default:
		return newErr(InvalidInput, "delete_mapping: synonyms may not be given without original")
	}
}

func (ds *DataSpace) deleteMappingsForScope(scope Scope) error {
	prefix := schema.MapsKeyPrefix(scope.token())
	var keys [][]byte
	if err := kvstore.ScanPrefix(ds.store, prefix, func(k, _ []byte) (bool, error) {
		keys = append(keys, append([]byte(nil), k...))
		return true, nil
	}); err != nil {
		return err
	}
	if len(keys) == 0 {
		return newErr(NoMapping, "no mappings scoped to this entity")
	}
	for _, k := range keys {
		if err := ds.store.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func (ds *DataSpace) deleteMappingOriginal(scope Scope, original AttrSet) error {
	key := schema.MapsKey(scope.token(), schema.Serialize(toSchemaPairs(original)))
	_, ok, err := ds.store.Get(key)
	if err != nil {
		return err
	}
	if !ok {
		return newErr(NoMapping, "no mapping recorded for this original")
	}
	return ds.store.Delete(key)
}

func (ds *DataSpace) deleteMappingSynonym(scope Scope, original, synonyms AttrSet) error {
	key := schema.MapsKey(scope.token(), schema.Serialize(toSchemaPairs(original)))
	token := schema.EncodeSynonym(schema.Serialize(toSchemaPairs(synonyms)))
	changed, err := kvstore.RemoveFromValue(ds.store, key, token)
	if err != nil {
		return err
	}
	if !changed {
		return newErr(NoMapping, "no such synonym recorded for this original")
	}
	return nil
}

// cascadeMappingsOnRemoval implements the mapping cascade on attribute
// removal: for the pair (name, value) just removed from entity id,
// every specific-scope mapping keyed by id is pruned of that pair,
// wherever it appears in the original set or in any synonym set, dropping
// rows/synonyms that become empty and dropping synonyms that would
// become a superset violation once the original set shrinks.
func (ds *DataSpace) cascadeMappingsOnRemoval(id, name string, value AttrValue) error {
	prefix := schema.MapsKeyPrefix(id)

	type row struct{ key, value []byte }
	var rows []row
	if err := kvstore.ScanPrefix(ds.store, prefix, func(k, v []byte) (bool, error) {
		rows = append(rows, row{append([]byte(nil), k...), append([]byte(nil), v...)})
		return true, nil
	}); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	target := schema.Pair{Name: name, Value: value.raw()}

	for _, r := range rows {
		if err := ds.cascadeOneMappingRow(id, r.key, r.value, target); err != nil {
			return err
		}
	}
	return nil
}

func (ds *DataSpace) cascadeOneMappingRow(id string, key, value []byte, target schema.Pair) error {
	originalPairs := schema.Deserialize(schema.MapsSerializedFromKey(key, id))
	newOriginal := originalPairs
	originalPruned := false
	if containsPair(originalPairs, target) {
		newOriginal = removePair(originalPairs, target)
		originalPruned = true
	}

	if originalPruned && len(newOriginal) == 0 {
		return ds.store.Delete(key)
	}

	synTokens := codec.Split(string(value))
	var survivors []string
	for _, tok := range synTokens {
		synPairs := schema.Deserialize(schema.DecodeSynonym(tok))
		if containsPair(synPairs, target) {
			synPairs = removePair(synPairs, target)
			if len(synPairs) == 0 {
				continue // synonym set became empty: drop it
			}
		}
		if isSubset(newOriginal, synPairs) {
			continue // original (post-prune) must not be a subset of a surviving synonym
		}
		survivors = append(survivors, schema.EncodeSynonym(schema.Serialize(synPairs)))
	}

	if !originalPruned {
		if len(survivors) == len(synTokens) {
			return nil // nothing changed
		}
		if len(survivors) == 0 {
			return ds.store.Delete(key)
		}
		return ds.store.Put(key, []byte(codec.Join(survivors...)))
	}

	// Original shrank: the row must be re-keyed under the new original.
	if err := ds.store.Delete(key); err != nil {
		return err
	}
	if len(survivors) == 0 {
		return nil
	}
	newKey := schema.MapsKey(schema.ScopeToken(id, false), schema.Serialize(newOriginal))
	return ds.store.Put(newKey, []byte(codec.Join(survivors...)))
}
