// Package kvstore defines the ordered key-value store abstraction the data
// space is built on, plus the multi-value cell helpers layered on top of
// it. Two implementations are provided: an in-memory one used by tests and
// callers with no durability requirement, and a badger-backed one for
// on-disk persistence.
package kvstore

import (
	"bytes"

	"github.com/antiraum/EntityDataSpace/internal/codec"
)

// Store is the ordered, byte-keyed key-value store the core is built on:
// point get, point put, point delete, truncate, and a full forward scan.
// Implementations need not support range seeks; prefix scans are built on
// top of Scan by filtering.
type Store interface {
	// Get returns the value stored at key, or ok=false if absent.
	Get(key []byte) (value []byte, ok bool, err error)

	// Put stores value at key, overwriting any existing value.
	Put(key, value []byte) error

	// Delete removes key. It is not an error for key to be absent.
	Delete(key []byte) error

	// Truncate removes every key in every table the store manages.
	Truncate() error

	// Scan performs a full forward scan in key order, invoking fn for
	// each entry. fn returns false to stop iteration early, or an error
	// to abort the scan.
	Scan(fn func(key, value []byte) (bool, error)) error

	// Close releases any resources (file handles, etc.) held by the
	// store.
	Close() error
}

// ScanPrefix performs a full forward scan filtered to keys with the given
// prefix. The core requires no native range-seek support, so this is
// implemented as a linear filter over Scan.
func ScanPrefix(s Store, prefix []byte, fn func(key, value []byte) (bool, error)) error {
	return s.Scan(func(key, value []byte) (bool, error) {
		if !bytes.HasPrefix(key, prefix) {
			return true, nil
		}
		return fn(key, value)
	})
}

// ValueContains reports whether token appears in the separator-delimited
// cell at key, either as the entire cell or as one of its bounded tokens.
func ValueContains(s Store, key []byte, token string) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	for _, t := range codec.Split(string(raw)) {
		if t == token {
			return true, nil
		}
	}
	return false, nil
}

// Tokens returns the parsed list of tokens stored at key, or nil if key is
// absent.
func Tokens(s Store, key []byte) ([]string, error) {
	raw, ok, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return codec.Split(string(raw)), nil
}

// AddToValue appends token to the cell at key, joined by the field
// separator, unless it is already present.
func AddToValue(s Store, key []byte, token string) error {
	raw, ok, err := s.Get(key)
	if err != nil {
		return err
	}
	if !ok {
		return s.Put(key, []byte(token))
	}
	tokens := codec.Split(string(raw))
	for _, t := range tokens {
		if t == token {
			return nil
		}
	}
	tokens = append(tokens, token)
	return s.Put(key, []byte(codec.Join(tokens...)))
}

// RemoveFromValue removes token from the cell at key. If token is the
// entire cell, the key is deleted; if token is one of several tokens, the
// cell is rewritten without it. It reports whether anything changed.
func RemoveFromValue(s Store, key []byte, token string) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	tokens := codec.Split(string(raw))
	out := tokens[:0:0]
	removed := false
	for _, t := range tokens {
		if t == token {
			removed = true
			continue
		}
		out = append(out, t)
	}
	if !removed {
		return false, nil
	}
	if len(out) == 0 {
		return true, s.Delete(key)
	}
	return true, s.Put(key, []byte(codec.Join(out...)))
}
