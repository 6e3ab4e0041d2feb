package entitydataspace

import (
	"github.com/antiraum/EntityDataSpace/internal/codec"
	"github.com/antiraum/EntityDataSpace/internal/schema"
)

// encOrInvalid validates and Key-Codec-encodes a user-supplied string,
// surfacing a rejected invalid-token sentinel as an InvalidInput error
// rather than the codec's own error type.
func encOrInvalid(s string) (string, error) {
	enc, err := codec.Encode(s)
	if err != nil {
		return "", newErr(InvalidInput, "%v", err)
	}
	return enc, nil
}

func (ds *DataSpace) entityExists(encID string) (bool, error) {
	_, ok, err := ds.store.Get(schema.StoreEntityKey(encID))
	return ok, err
}

// InsertEntity creates a new entity with no attributes. It fails with
// EntityExists if id is already present.
func (ds *DataSpace) InsertEntity(id string) error {
	encID, err := encOrInvalid(id)
	if err != nil {
		return err
	}
	exists, err := ds.entityExists(encID)
	if err != nil {
		return err
	}
	if exists {
		return newErr(EntityExists, "entity %q already exists", id)
	}
	return ds.store.Put(schema.StoreEntityKey(encID), []byte(schema.EntityRowValue))
}

// DeleteEntity removes id and cascades: every attribute it owns, every
// attribute anywhere whose value references it, and every mapping scoped
// to it are also removed.
func (ds *DataSpace) DeleteEntity(id string) error {
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

	if err := ds.store.Delete(schema.StoreEntityKey(encID)); err != nil {
		return err
	}

	ds.log.Infof("deleting entity %q: removing outgoing attributes", id)
	if err := ds.removeAllOutgoingAttributes(id, encID); err != nil {
		return err
	}

	ds.log.Infof("deleting entity %q: removing incoming references", id)
	if err := ds.removeAllIncomingReferences(id, encID); err != nil {
		return err
	}

	ds.log.Infof("deleting entity %q: removing scoped mappings", id)
	if err := ds.deleteMappingsForScope(Scope{EntityID: id}); err != nil && !IsNoMapping(err) {
		return err
	}
	return nil
}

// removeAllOutgoingAttributes deletes every attribute id owns, maintaining
// all indexes and cascading into the mapping cleanup for each removed
// pair.
func (ds *DataSpace) removeAllOutgoingAttributes(id, encID string) error {
	type pair struct{ encName, encValue string }
	var pairs []pair
	if err := ds.forEachOutgoingAttr(encID, func(encName, encValue string) (bool, error) {
		pairs = append(pairs, pair{encName, encValue})
		return true, nil
	}); err != nil {
		return err
	}

	for _, p := range pairs {
		if err := ds.removeAttributeIndexes(encID, p.encName, p.encValue); err != nil {
			return err
		}
		name := codec.Decode(p.encName)
		value := parseAttrValue(codec.Decode(p.encValue))
		if err := ds.cascadeMappingsOnRemoval(id, name, value); err != nil {
			return err
		}
	}
	return nil
}

// removeAllIncomingReferences deletes every attribute anywhere whose
// value is a reference to id, restoring referential closure.
func (ds *DataSpace) removeAllIncomingReferences(id, encID string) error {
	type pair struct{ ownerEncID, encName string }
	var pairs []pair
	if err := ds.forEachIncomingRef(encID, func(ownerEncID, encName string) (bool, error) {
		pairs = append(pairs, pair{ownerEncID, encName})
		return true, nil
	}); err != nil {
		return err
	}

	for _, p := range pairs {
		if err := ds.removeAttributeIndexes(p.ownerEncID, p.encName, encID); err != nil {
			return err
		}
		ownerID := codec.Decode(p.ownerEncID)
		name := codec.Decode(p.encName)
		if err := ds.cascadeMappingsOnRemoval(ownerID, name, Ref(id)); err != nil {
			return err
		}
	}
	return nil
}
