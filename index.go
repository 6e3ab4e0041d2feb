package entitydataspace

import (
	"github.com/antiraum/EntityDataSpace/internal/kvstore"
	"github.com/antiraum/EntityDataSpace/internal/schema"
)

// addAttributeIndexes mirrors a newly inserted (id, name, value) triple
// into STORE and every auxiliary index the configured profile maintains.
// encID, encName, encValue are already Key-Codec-encoded.
func (ds *DataSpace) addAttributeIndexes(encID, encName, encValue string) error {
	if err := kvstore.AddToValue(ds.store, schema.StoreAttrKey(encID, encName), encValue); err != nil {
		return err
	}

	if ds.profile.HasInverted() {
		if err := kvstore.AddToValue(ds.store, schema.Idx1Key(encValue, encName), encID); err != nil {
			return err
		}
		if err := kvstore.AddToValue(ds.store, schema.Idx2Key(encID, encValue), encName); err != nil {
			return err
		}
	}

	if ds.profile.HasAll() {
		if err := kvstore.AddToValue(ds.store, schema.KIdxKey(encName), encID); err != nil {
			return err
		}
		if err := kvstore.AddToValue(ds.store, schema.VIdxKey(encValue), encID); err != nil {
			return err
		}
		if err := kvstore.AddToValue(ds.store, schema.IDIdxKey(encID), encName); err != nil {
			return err
		}
	}
	return nil
}

// removeAttributeIndexes undoes addAttributeIndexes for a (id, name,
// value) triple being removed, keeping every auxiliary index consistent
// with STORE: a K_IDX/ID_IDX entry for name is dropped only once id has no
// remaining attribute under name at all, and a V_IDX entry for value is
// dropped only once id has no remaining attribute (under any name) with
// that value.
func (ds *DataSpace) removeAttributeIndexes(encID, encName, encValue string) error {
	storeKey := schema.StoreAttrKey(encID, encName)
	if _, err := kvstore.RemoveFromValue(ds.store, storeKey, encValue); err != nil {
		return err
	}
	_, nameStillUsed, err := ds.store.Get(storeKey)
	if err != nil {
		return err
	}

	if ds.profile.HasInverted() {
		if _, err := kvstore.RemoveFromValue(ds.store, schema.Idx1Key(encValue, encName), encID); err != nil {
			return err
		}
		idx2Key := schema.Idx2Key(encID, encValue)
		if _, err := kvstore.RemoveFromValue(ds.store, idx2Key, encName); err != nil {
			return err
		}
		if ds.profile.HasAll() {
			_, valueStillUsedByID, err := ds.store.Get(idx2Key)
			if err != nil {
				return err
			}
			if !valueStillUsedByID {
				if _, err := kvstore.RemoveFromValue(ds.store, schema.VIdxKey(encValue), encID); err != nil {
					return err
				}
			}
		}
	}

	if ds.profile.HasAll() {
		if !nameStillUsed {
			if _, err := kvstore.RemoveFromValue(ds.store, schema.KIdxKey(encName), encID); err != nil {
				return err
			}
			if _, err := kvstore.RemoveFromValue(ds.store, schema.IDIdxKey(encID), encName); err != nil {
				return err
			}
		}
	}
	return nil
}
