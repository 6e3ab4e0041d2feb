package kvstore

import (
	"errors"

	badger "github.com/dgraph-io/badger/v4"
)

// badgerStore is a disk-backed Store implementation, one badger transaction
// per operation. The data space's own concurrency contract (single
// operation at a time) means we never need to span multiple logical
// operations in one badger transaction; each Store method commits its own.
type badgerStore struct {
	db *badger.DB
}

// OpenBadger opens (creating if necessary) a badger database rooted at dir
// and returns it as a Store.
func OpenBadger(dir string) (Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &badgerStore{db: db}, nil
}

func (b *badgerStore) Get(key []byte) ([]byte, bool, error) {
	var out []byte
	var found bool
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return out, found, nil
}

func (b *badgerStore) Put(key, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(append([]byte(nil), key...), append([]byte(nil), value...))
	})
}

func (b *badgerStore) Delete(key []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (b *badgerStore) Truncate() error {
	return b.db.DropAll()
}

func (b *badgerStore) Scan(fn func(key, value []byte) (bool, error)) error {
	return b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			cont, err := fn(key, value)
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
		}
		return nil
	})
}

func (b *badgerStore) Close() error {
	return b.db.Close()
}
