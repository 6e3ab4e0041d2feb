package entitydataspace

import (
	"github.com/antiraum/EntityDataSpace/internal/codec"
	"github.com/antiraum/EntityDataSpace/internal/kvstore"
	"github.com/antiraum/EntityDataSpace/internal/schema"
)

// compliesWithMappings is the mapping-aware evaluator: it enumerates
// every partitioning of conds into non-empty blocks, and succeeds as soon
// as one partitioning's blocks can all be satisfied — each block either by
// its own conditions as stated, or by any synonym set recorded for it.
func (ds *DataSpace) compliesWithMappings(id string, conds []*Condition, bindings Bindings) (bool, error) {
	if len(conds) == 0 {
		return true, nil
	}
	for _, partition := range enumeratePartitions(conds) {
		ok, err := ds.partitionComplies(id, partition, bindings)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// partitionComplies checks that every block of partition can be satisfied
// in sequence, threading bindings from one block's successful alternative
// into the next block's attempt.
func (ds *DataSpace) partitionComplies(id string, partition [][]*Condition, bindings Bindings) (bool, error) {
	if len(partition) == 0 {
		return true, nil
	}
	head, rest := partition[0], partition[1:]
	return ds.blockComplies(id, head, bindings, func(b Bindings) (bool, error) {
		return ds.partitionComplies(id, rest, b)
	})
}

// blockComplies tries block's conditions as originally stated, and, failing
// that, every synonym alternative recorded for block (specific scope first,
// then generic, per the Open Question resolution in DESIGN.md), invoking
// cont after whichever alternative succeeds. Every alternative is evaluated
// mapping-aware, so a reference child's own nested conditions are again
// eligible for substitution.
func (ds *DataSpace) blockComplies(id string, block []*Condition, bindings Bindings, cont func(Bindings) (bool, error)) (bool, error) {
	ok, err := ds.compliesPlainCont(id, block, bindings, true, cont)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	alternatives, err := ds.lookupSynonymAlternatives(id, block, bindings)
	if err != nil {
		return false, err
	}
	for _, alt := range alternatives {
		ok, err := ds.compliesPlainCont(id, alt, bindings, true, cont)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// lookupSynonymAlternatives resolves block to a concrete AttrSet (failing,
// silently, if any condition in it is not fully concrete under bindings —
// a mapping's stored sets are always concrete, so a block with a free
// wildcard or unbound variable simply has no substitution to look up).
// Mappings store `MAPS[scope ‖ serialize(original)] = {serialize(synonym),
// ...}`, i.e. keyed by the *original* attribute set an entity actually
// holds; block names what the query asks for, which is the *synonym* side
// when substitution is needed (the entity holds original, the query names
// a declared alternative for it). So this looks for MAPS rows, scoped to
// id then generically, whose recorded synonym set equals block, and
// returns that row's original set as the alternative to try against the
// entity's real attributes — the reverse of how the row is keyed.
func (ds *DataSpace) lookupSynonymAlternatives(id string, block []*Condition, bindings Bindings) ([][]*Condition, error) {
	pairs, ok := resolvePairsForBlock(block, bindings)
	if !ok {
		return nil, nil
	}
	target := schema.EncodeSynonym(schema.Serialize(pairs))

	var alternatives [][]*Condition
	for _, scopeToken := range []string{id, codec.Any} {
		prefix := schema.MapsKeyPrefix(scopeToken)
		err := kvstore.ScanPrefix(ds.store, prefix, func(key, value []byte) (bool, error) {
			for _, tok := range codec.Split(string(value)) {
				if tok != target {
					continue
				}
				originalPairs := schema.Deserialize(schema.MapsSerializedFromKey(key, scopeToken))
				alternatives = append(alternatives, reconstitute(originalPairs))
				break
			}
			return true, nil
		})
		if err != nil {
			return nil, err
		}
	}
	return alternatives, nil
}

// reconstitute turns a mapping's stored (name,value) pairs (the original
// set, as lookupSynonymAlternatives uses it) into a flat list of leaf
// conditions: constants throughout, no further children, since a mapping's
// attribute sets are just pairs, not a nested tree.
func reconstitute(pairs []schema.Pair) []*Condition {
	conds := make([]*Condition, 0, len(pairs))
	for _, p := range pairs {
		conds = append(conds, NewLeaf(C(p.Name), C(p.Value)))
	}
	return conds
}

// resolvePairsForBlock reports the concrete (name,value) AttrSet block
// names, if every condition in it is a Leaf whose name and value are
// either constants or already-bound variables.
func resolvePairsForBlock(block []*Condition, bindings Bindings) ([]schema.Pair, bool) {
	pairs := make([]schema.Pair, 0, len(block))
	for _, cond := range block {
		if cond.Kind != Leaf {
			return nil, false
		}
		name, ok := concreteText(cond.Name, bindings)
		if !ok {
			return nil, false
		}
		value, ok := concreteText(cond.Value, bindings)
		if !ok {
			return nil, false
		}
		pairs = append(pairs, schema.Pair{Name: name, Value: value})
	}
	return pairs, true
}

// concreteText reports the fully-resolved text of t: the constant itself,
// or the value an already-bound variable holds. A wildcard, or a variable
// with no binding yet, is not concrete.
func concreteText(t Term, bindings Bindings) (string, bool) {
	switch {
	case t.IsConst():
		return t.Text, true
	case t.IsVar():
		return bindings.resolve(t.Text)
	default:
		return "", false
	}
}

// enumeratePartitions returns every way to partition items into non-empty,
// order-preserving-within-block subsets (set partitions; there are Bell(n)
// of them). Built by the standard recursive construction: every partition
// of the first n-1 items extends to a partition of all n items either by
// adding a new singleton block for the last item, or by adding the last
// item to one of the existing blocks.
func enumeratePartitions(items []*Condition) [][][]*Condition {
	if len(items) == 0 {
		return nil
	}
	if len(items) == 1 {
		return [][][]*Condition{{{items[0]}}}
	}

	last := items[len(items)-1]
	subPartitions := enumeratePartitions(items[:len(items)-1])

	result := make([][][]*Condition, 0, len(subPartitions)*2)
	for _, p := range subPartitions {
		withNewBlock := make([][]*Condition, len(p)+1)
		copy(withNewBlock, p)
		withNewBlock[len(p)] = []*Condition{last}
		result = append(result, withNewBlock)

		for i := range p {
			variant := make([][]*Condition, len(p))
			copy(variant, p)
			extended := make([]*Condition, len(p[i])+1)
			copy(extended, p[i])
			extended[len(p[i])] = last
			variant[i] = extended
			result = append(result, variant)
		}
	}
	return result
}
