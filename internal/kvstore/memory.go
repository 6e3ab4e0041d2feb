package kvstore

import (
	"bytes"
	"sort"
	"sync"
)

// memEntry is one key/value pair held by the in-memory store.
type memEntry struct {
	key   []byte
	value []byte
}

// memStore is a dependency-free ordered store backed by a sorted slice. It
// is the default store when no on-disk directory is configured, and it
// doubles as the fixture the test suite uses to check index-profile
// equivalence cheaply.
//
// The data space itself expects single-threaded, non-reentrant use; the
// mutex here only guards against accidental concurrent access from callers
// that violate that contract, it does not provide multi-writer semantics.
type memStore struct {
	mu      sync.Mutex
	entries []memEntry // kept sorted by key
}

// NewMemory returns a new, empty in-memory Store.
func NewMemory() Store {
	return &memStore{}
}

func (m *memStore) find(key []byte) (int, bool) {
	i := sort.Search(len(m.entries), func(i int) bool {
		return bytes.Compare(m.entries[i].key, key) >= 0
	})
	if i < len(m.entries) && bytes.Equal(m.entries[i].key, key) {
		return i, true
	}
	return i, false
}

func (m *memStore) Get(key []byte) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.find(key)
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(m.entries[i].value))
	copy(out, m.entries[i].value)
	return out, true, nil
}

func (m *memStore) Put(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := append([]byte(nil), key...)
	v := append([]byte(nil), value...)

	i, ok := m.find(key)
	if ok {
		m.entries[i].value = v
		return nil
	}
	m.entries = append(m.entries, memEntry{})
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = memEntry{key: k, value: v}
	return nil
}

func (m *memStore) Delete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.find(key)
	if !ok {
		return nil
	}
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	return nil
}

func (m *memStore) Truncate() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = nil
	return nil
}

func (m *memStore) Scan(fn func(key, value []byte) (bool, error)) error {
	m.mu.Lock()
	snapshot := make([]memEntry, len(m.entries))
	copy(snapshot, m.entries)
	m.mu.Unlock()

	for _, e := range snapshot {
		cont, err := fn(e.key, e.value)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	return nil
}

func (m *memStore) Close() error {
	return nil
}
