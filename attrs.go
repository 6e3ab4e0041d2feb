package entitydataspace

import (
	"bytes"

	"github.com/antiraum/EntityDataSpace/internal/codec"
	"github.com/antiraum/EntityDataSpace/internal/kvstore"
	"github.com/antiraum/EntityDataSpace/internal/schema"
)

// forEachEntity calls fn once per entity id currently stored, in key
// order. Entity rows are distinguished from attribute rows by having no
// field-separator suffix after the tag, so this needs no index and works
// identically in every profile.
func (ds *DataSpace) forEachEntity(fn func(encID string) (bool, error)) error {
	return ds.store.Scan(func(key, _ []byte) (bool, error) {
		rest, ok := stripStoreTag(key)
		if !ok {
			return true, nil
		}
		if bytes.Contains(rest, []byte(codec.Sep)) {
			return true, nil // attribute row, not an entity row
		}
		return fn(string(rest))
	})
}

// forEachOutgoingAttr calls fn once per (encName, encValue) pair owned by
// encID, using ID_IDX when the profile maintains it and falling back to a
// STORE prefix scan otherwise.
func (ds *DataSpace) forEachOutgoingAttr(encID string, fn func(encName, encValue string) (bool, error)) error {
	if ds.profile.HasAll() {
		names, err := kvstore.Tokens(ds.store, schema.IDIdxKey(encID))
		if err != nil {
			return err
		}
		for _, encName := range names {
			values, err := kvstore.Tokens(ds.store, schema.StoreAttrKey(encID, encName))
			if err != nil {
				return err
			}
			for _, encValue := range values {
				cont, err := fn(encName, encValue)
				if err != nil {
					return err
				}
				if !cont {
					return nil
				}
			}
		}
		return nil
	}

	prefix := schema.StoreAttrKeyPrefix(encID)
	return kvstore.ScanPrefix(ds.store, prefix, func(key, value []byte) (bool, error) {
		encName := string(key[len(prefix):])
		for _, encValue := range codec.Split(string(value)) {
			cont, err := fn(encName, encValue)
			if err != nil {
				return false, err
			}
			if !cont {
				return false, nil
			}
		}
		return true, nil
	})
}

// outgoingNamesForValue calls fn once per encName such that (encID, name,
// value) is a stored attribute, using IDX2 when available and falling
// back to a STORE prefix scan otherwise.
func (ds *DataSpace) outgoingNamesForValue(encID, encValue string, fn func(encName string) (bool, error)) error {
	if ds.profile.HasInverted() {
		names, err := kvstore.Tokens(ds.store, schema.Idx2Key(encID, encValue))
		if err != nil {
			return err
		}
		for _, encName := range names {
			cont, err := fn(encName)
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
		}
		return nil
	}

	prefix := schema.StoreAttrKeyPrefix(encID)
	return kvstore.ScanPrefix(ds.store, prefix, func(key, value []byte) (bool, error) {
		encName := string(key[len(prefix):])
		for _, v := range codec.Split(string(value)) {
			if v != encValue {
				continue
			}
			cont, err := fn(encName)
			if err != nil {
				return false, err
			}
			if !cont {
				return false, nil
			}
			break
		}
		return true, nil
	})
}

// forEachIncomingRef calls fn once per (ownerEncID, encName) pair whose
// stored value is a reference to encID, using V_IDX+IDX2 when available,
// else IDX1, else a full STORE scan.
func (ds *DataSpace) forEachIncomingRef(encID string, fn func(ownerEncID, encName string) (bool, error)) error {
	if ds.profile.HasAll() {
		owners, err := kvstore.Tokens(ds.store, schema.VIdxKey(encID))
		if err != nil {
			return err
		}
		for _, ownerEncID := range owners {
			names, err := kvstore.Tokens(ds.store, schema.Idx2Key(ownerEncID, encID))
			if err != nil {
				return err
			}
			for _, encName := range names {
				cont, err := fn(ownerEncID, encName)
				if err != nil {
					return err
				}
				if !cont {
					return nil
				}
			}
		}
		return nil
	}

	if ds.profile.HasInverted() {
		prefix := schema.Idx1KeyPrefix(encID)
		return kvstore.ScanPrefix(ds.store, prefix, func(key, value []byte) (bool, error) {
			encName := string(key[len(prefix):])
			for _, ownerEncID := range codec.Split(string(value)) {
				cont, err := fn(ownerEncID, encName)
				if err != nil {
					return false, err
				}
				if !cont {
					return false, nil
				}
			}
			return true, nil
		})
	}

	return ds.store.Scan(func(key, value []byte) (bool, error) {
		rest, ok := stripStoreTag(key)
		if !ok {
			return true, nil
		}
		parts := splitStoreAttrKey(rest)
		if parts == nil {
			return true, nil // entity row
		}
		ownerEncID, encName := parts[0], parts[1]
		for _, encValue := range codec.Split(string(value)) {
			if encValue != encID {
				continue
			}
			cont, err := fn(ownerEncID, encName)
			if err != nil {
				return false, err
			}
			if !cont {
				return false, nil
			}
			break
		}
		return true, nil
	})
}

// stripStoreTag reports whether key belongs to the STORE table and, if so,
// returns the remainder after the table tag.
func stripStoreTag(key []byte) ([]byte, bool) {
	if len(key) == 0 || key[0] != schema.StoreTag() {
		return nil, false
	}
	return key[1:], true
}

// splitStoreAttrKey splits the post-tag remainder of a STORE key into
// (encID, encName) if it is an attribute row, or returns nil if it is an
// entity row (no separator present).
func splitStoreAttrKey(rest []byte) []string {
	parts := codec.Split(string(rest))
	if len(parts) != 2 {
		return nil
	}
	return parts
}
