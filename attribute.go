package entitydataspace

import (
	"github.com/antiraum/EntityDataSpace/internal/codec"
	"github.com/antiraum/EntityDataSpace/internal/kvstore"
	"github.com/antiraum/EntityDataSpace/internal/schema"
)

// InsertAttribute adds the attribute (id, name, value). It fails NoEntity
// if id is absent, NoEntity if value is a reference to a missing entity,
// and AttributeExists if the exact triple is already present. All
// preconditions are checked before any write.
func (ds *DataSpace) InsertAttribute(id, name string, value AttrValue) error {
	encID, err := encOrInvalid(id)
	if err != nil {
		return err
	}
	encName, err := encOrInvalid(name)
	if err != nil {
		return err
	}
	encValue, err := encOrInvalid(value.raw())
	if err != nil {
		return err
	}

	exists, err := ds.entityExists(encID)
	if err != nil {
		return err
	}
	if !exists {
		return newErr(NoEntity, "entity %q does not exist", id)
	}

	if value.IsRef() {
		targetExists, err := ds.entityExists(encValue)
		if err != nil {
			return err
		}
		if !targetExists {
			return newErr(NoEntity, "referenced entity %q does not exist", value.Text)
		}
	}

	already, err := kvstore.ValueContains(ds.store, schema.StoreAttrKey(encID, encName), encValue)
	if err != nil {
		return err
	}
	if already {
		return newErr(AttributeExists, "attribute (%q, %q, %q) already exists", id, name, value.raw())
	}

	return ds.addAttributeIndexes(encID, encName, encValue)
}

// deleteOneTriple removes exactly one (encID, encName, encValue) triple:
// updates every index and purges the pair from any mapping it
// participates in.
func (ds *DataSpace) deleteOneTriple(id, encID, name, encName string, value AttrValue, encValue string) error {
	if err := ds.removeAttributeIndexes(encID, encName, encValue); err != nil {
		return err
	}
	return ds.cascadeMappingsOnRemoval(id, name, value)
}

// DeleteAttribute removes attribute(s) of id matching name and value,
// where either may be the wildcard token ("*") to erase across that
// dimension. It fails NoEntity if id is absent, and NoAttribute if
// nothing matched.
func (ds *DataSpace) DeleteAttribute(id, name, value string) error {
	encID, err := encOrInvalid(id)
	if err != nil {
		return err
	}
	exists, err := ds.entityExists(encID)
	if err != nil {
		return err
	}
	if !exists {
		return newErr(NoEntity, "entity %q does not exist", id)
	}

	nameAny := codec.IsAny(name)
	valueAny := codec.IsAny(value)

	switch {
	case nameAny && valueAny:
		return ds.deleteAllAttributesOf(id, encID)
	case nameAny && !valueAny:
		return ds.deleteAttributesByValue(id, encID, value)
	case !nameAny && valueAny:
		return ds.deleteAttributesByName(id, encID, name)
	default:
		return ds.deleteExactTriple(id, encID, name, value)
	}
}

func (ds *DataSpace) deleteAllAttributesOf(id, encID string) error {
	type pair struct{ encName, encValue string }
	var pairs []pair
	if err := ds.forEachOutgoingAttr(encID, func(encName, encValue string) (bool, error) {
		pairs = append(pairs, pair{encName, encValue})
		return true, nil
	}); err != nil {
		return err
	}
	if len(pairs) == 0 {
		return newErr(NoAttribute, "entity %q has no attributes", id)
	}
	for _, p := range pairs {
		name := codec.Decode(p.encName)
		value := parseAttrValue(codec.Decode(p.encValue))
		if err := ds.deleteOneTriple(id, encID, name, p.encName, value, p.encValue); err != nil {
			return err
		}
	}
	return nil
}

func (ds *DataSpace) deleteAttributesByValue(id, encID, value string) error {
	encValue, err := encOrInvalid(value)
	if err != nil {
		return err
	}
	var encNames []string
	if err := ds.outgoingNamesForValue(encID, encValue, func(encName string) (bool, error) {
		encNames = append(encNames, encName)
		return true, nil
	}); err != nil {
		return err
	}
	if len(encNames) == 0 {
		return newErr(NoAttribute, "entity %q has no attribute with value %q", id, value)
	}
	attrValue := parseAttrValue(value)
	for _, encName := range encNames {
		name := codec.Decode(encName)
		if err := ds.deleteOneTriple(id, encID, name, encName, attrValue, encValue); err != nil {
			return err
		}
	}
	return nil
}

func (ds *DataSpace) deleteAttributesByName(id, encID, name string) error {
	encName, err := encOrInvalid(name)
	if err != nil {
		return err
	}
	encValues, err := kvstore.Tokens(ds.store, schema.StoreAttrKey(encID, encName))
	if err != nil {
		return err
	}
	if len(encValues) == 0 {
		return newErr(NoAttribute, "entity %q has no attribute named %q", id, name)
	}
	for _, encValue := range encValues {
		value := parseAttrValue(codec.Decode(encValue))
		if err := ds.deleteOneTriple(id, encID, name, encName, value, encValue); err != nil {
			return err
		}
	}
	return nil
}

func (ds *DataSpace) deleteExactTriple(id, encID, name, value string) error {
	encName, err := encOrInvalid(name)
	if err != nil {
		return err
	}
	encValue, err := encOrInvalid(value)
	if err != nil {
		return err
	}
	present, err := kvstore.ValueContains(ds.store, schema.StoreAttrKey(encID, encName), encValue)
	if err != nil {
		return err
	}
	if !present {
		return newErr(NoAttribute, "attribute (%q, %q, %q) does not exist", id, name, value)
	}
	return ds.deleteOneTriple(id, encID, name, encName, parseAttrValue(value), encValue)
}
