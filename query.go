package entitydataspace

import (
	"github.com/antiraum/EntityDataSpace/internal/codec"
	"github.com/antiraum/EntityDataSpace/internal/kvstore"
	"github.com/antiraum/EntityDataSpace/internal/schema"
)

// SearchOptions configures Search. UseMappings opts into the
// mapping-aware evaluator; otherwise conditions are matched
// literally against the stored attributes.
type SearchOptions struct {
	UseMappings bool
}

// Search answers which entity ids satisfy the query tree rooted at root.
// A root whose value is the wildcard or a variable considers
// every entity; a root with a constant value considers only that single
// id, and only if it currently exists.
func (ds *DataSpace) Search(root *Condition, opts SearchOptions) ([]string, error) {
	if root == nil || root.Kind != Root {
		return nil, newErr(InvalidInput, "search root must be a Root condition")
	}

	var results []string
	check := func(id string) error {
		bindings := Bindings{}
		if root.Value.IsVar() {
			bindings = bindings.bind(root.Value.Text, id)
		}
		ok, err := ds.complies(id, root.Children, bindings, opts.UseMappings)
		if err != nil {
			return err
		}
		if ok {
			results = append(results, id)
		}
		return nil
	}

	switch {
	case root.Value.IsConst():
		encID, err := encOrInvalid(root.Value.Text)
		if err != nil {
			return nil, err
		}
		exists, err := ds.entityExists(encID)
		if err != nil {
			return nil, err
		}
		if exists {
			if err := check(root.Value.Text); err != nil {
				return nil, err
			}
		}
	default: // Any or Var: consider every entity
		var iterErr error
		err := ds.forEachEntity(func(encID string) (bool, error) {
			id := codec.Decode(encID)
			if err := check(id); err != nil {
				iterErr = err
				return false, err
			}
			return true, nil
		})
		if err != nil {
			return nil, err
		}
		if iterErr != nil {
			return nil, iterErr
		}
	}

	return results, nil
}

// complies is the query evaluator's top-level dispatcher for a list of
// sibling conditions: it runs the plain evaluator, or the mapping-aware
// one when mappingsOn, and is what every recursive "evaluate this
// entity's children" call goes back through, so nested reference
// conditions inherit the caller's mapping-awareness.
func (ds *DataSpace) complies(id string, conds []*Condition, bindings Bindings, mappingsOn bool) (bool, error) {
	if mappingsOn {
		return ds.compliesWithMappings(id, conds, bindings)
	}
	return ds.compliesPlain(id, conds, bindings, mappingsOn)
}

// compliesPlain is the base matcher: a sequential, backtracking
// conjunction over conds. It is used directly when mappings are off; the
// mapping-aware evaluator uses its continuation form, compliesPlainCont, to
// check one partition block's conditions — either as originally stated or
// as a substituted alternative (see mapping_query.go).
func (ds *DataSpace) compliesPlain(id string, conds []*Condition, bindings Bindings, mappingsOn bool) (bool, error) {
	return ds.compliesPlainCont(id, conds, bindings, mappingsOn, func(Bindings) (bool, error) {
		return true, nil
	})
}

// compliesPlainCont is compliesPlain generalized to continuation-passing
// style: once every condition in conds is satisfied, cont is invoked with
// the accumulated bindings instead of simply returning true, so the
// mapping-aware evaluator can chain one block's successful match into the
// next block's attempt without losing the bindings threaded so far.
func (ds *DataSpace) compliesPlainCont(id string, conds []*Condition, bindings Bindings, mappingsOn bool, cont func(Bindings) (bool, error)) (bool, error) {
	if len(conds) == 0 {
		return cont(bindings)
	}
	head, rest := conds[0], conds[1:]
	return ds.matchCondition(id, head, bindings, mappingsOn, func(b Bindings) (bool, error) {
		return ds.compliesPlainCont(id, rest, b, mappingsOn, cont)
	})
}

// matchCondition implements the four-case dispatch for a single
// Leaf condition against id, trying each eligible (name,value) candidate
// and, for each, invoking cont with the candidate's bindings to continue
// matching the rest of the sibling list. It returns true on the first
// candidate for which cont succeeds (cont itself encodes recursion into
// cond's children before moving on to later siblings, see
// recurseIntoChildrenThen).
func (ds *DataSpace) matchCondition(id string, cond *Condition, bindings Bindings, mappingsOn bool, cont func(Bindings) (bool, error)) (bool, error) {
	encID, err := encOrInvalid(id)
	if err != nil {
		return false, err
	}

	keyBoundVar, keyIsBoundVar := resolvedVar(cond.Name, bindings)
	valBoundVar, valIsBoundVar := resolvedVar(cond.Value, bindings)

	keyFree := cond.Name.IsAny() || (cond.Name.IsVar() && !keyIsBoundVar)
	valueFree := cond.Value.IsAny() || (cond.Value.IsVar() && !valIsBoundVar)

	switch {
	case keyFree && valueFree:
		return ds.matchBothFree(id, encID, cond, bindings, mappingsOn, cont)
	case keyFree && !valueFree:
		fixedValue := fixedText(cond.Value, valBoundVar)
		return ds.matchKeyFree(id, encID, cond, fixedValue, bindings, mappingsOn, cont)
	case !keyFree && valueFree:
		fixedKey := fixedText(cond.Name, keyBoundVar)
		return ds.matchValueFree(id, encID, cond, fixedKey, bindings, mappingsOn, cont)
	default:
		fixedKey := fixedText(cond.Name, keyBoundVar)
		fixedValue := fixedText(cond.Value, valBoundVar)
		return ds.matchBothFixed(id, encID, cond, fixedKey, fixedValue, bindings, mappingsOn, cont)
	}
}

// resolvedVar reports the bound value of t when t is a variable already
// present in bindings.
func resolvedVar(t Term, bindings Bindings) (string, bool) {
	if !t.IsVar() {
		return "", false
	}
	return bindings.resolve(t.Text)
}

// fixedText returns the concrete string a non-free term resolves to: the
// constant text itself, or the bound value of an already-bound variable.
func fixedText(t Term, boundVar string) string {
	if t.IsVar() {
		return boundVar
	}
	return t.Text
}

// case 1: both key and value are free (ANY or unbound variable).
func (ds *DataSpace) matchBothFree(id, encID string, cond *Condition, bindings Bindings, mappingsOn bool, cont func(Bindings) (bool, error)) (bool, error) {
	var result bool
	var outerErr error

	err := ds.forEachOutgoingAttr(encID, func(encName, encValue string) (bool, error) {
		name := codec.Decode(encName)
		valueRaw := codec.Decode(encValue)

		attempt := bindings
		if cond.Name.IsVar() {
			if attempt.hasValue(name) {
				return true, nil
			}
			attempt = attempt.bind(cond.Name.Text, name)
		}
		if cond.Value.IsVar() {
			if attempt.hasValue(valueRaw) {
				return true, nil
			}
			attempt = attempt.bind(cond.Value.Text, valueRaw)
		}

		ok, err := ds.recurseIntoChildrenThen(cond, valueRaw, attempt, mappingsOn, cont)
		if err != nil {
			outerErr = err
			return false, err
		}
		if ok {
			result = true
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return false, err
	}
	if outerErr != nil {
		return false, outerErr
	}
	return result, nil
}

// case 2: key free, value fixed.
func (ds *DataSpace) matchKeyFree(id, encID string, cond *Condition, fixedValue string, bindings Bindings, mappingsOn bool, cont func(Bindings) (bool, error)) (bool, error) {
	encValue, err := encOrInvalid(fixedValue)
	if err != nil {
		return false, err
	}

	var result bool
	var outerErr error
	err = ds.outgoingNamesForValue(encID, encValue, func(encName string) (bool, error) {
		name := codec.Decode(encName)

		attempt := bindings
		if cond.Name.IsVar() {
			if attempt.hasValue(name) {
				return true, nil
			}
			attempt = attempt.bind(cond.Name.Text, name)
		}

		ok, err := ds.recurseIntoChildrenThen(cond, fixedValue, attempt, mappingsOn, cont)
		if err != nil {
			outerErr = err
			return false, err
		}
		if ok {
			result = true
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return false, err
	}
	if outerErr != nil {
		return false, outerErr
	}
	return result, nil
}

// case 3: key fixed, value free.
func (ds *DataSpace) matchValueFree(id, encID string, cond *Condition, fixedKey string, bindings Bindings, mappingsOn bool, cont func(Bindings) (bool, error)) (bool, error) {
	encName, err := encOrInvalid(fixedKey)
	if err != nil {
		return false, err
	}
	encValues, err := kvstore.Tokens(ds.store, schema.StoreAttrKey(encID, encName))
	if err != nil {
		return false, err
	}

	for _, encValue := range encValues {
		valueRaw := codec.Decode(encValue)

		attempt := bindings
		if cond.Value.IsVar() {
			if attempt.hasValue(valueRaw) {
				continue
			}
			attempt = attempt.bind(cond.Value.Text, valueRaw)
		}

		ok, err := ds.recurseIntoChildrenThen(cond, valueRaw, attempt, mappingsOn, cont)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// case 4: both key and value fixed.
func (ds *DataSpace) matchBothFixed(id, encID string, cond *Condition, fixedKey, fixedValue string, bindings Bindings, mappingsOn bool, cont func(Bindings) (bool, error)) (bool, error) {
	encName, err := encOrInvalid(fixedKey)
	if err != nil {
		return false, err
	}
	encValue, err := encOrInvalid(fixedValue)
	if err != nil {
		return false, err
	}
	present, err := kvstore.ValueContains(ds.store, schema.StoreAttrKey(encID, encName), encValue)
	if err != nil {
		return false, err
	}
	if !present {
		return false, nil
	}
	return ds.recurseIntoChildrenThen(cond, fixedValue, bindings, mappingsOn, cont)
}

// recurseIntoChildrenThen checks that cond's children comply (recursing
// into the referenced entity, unless valueRaw is a literal, in which case
// children are never examined since a literal has no attributes of its
// own), then continues with cont — the remaining sibling conditions at the
// current level.
func (ds *DataSpace) recurseIntoChildrenThen(cond *Condition, valueRaw string, bindings Bindings, mappingsOn bool, cont func(Bindings) (bool, error)) (bool, error) {
	av := parseAttrValue(valueRaw)
	if av.IsLiteral() || len(cond.Children) == 0 {
		return cont(bindings)
	}
	ok, err := ds.complies(av.Text, cond.Children, bindings, mappingsOn)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return cont(bindings)
}
