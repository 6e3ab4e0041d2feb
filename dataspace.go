package entitydataspace

import (
	"github.com/antiraum/EntityDataSpace/internal/kvstore"
	"github.com/antiraum/EntityDataSpace/internal/logx"
	"github.com/antiraum/EntityDataSpace/internal/schema"
)

// Profile selects which auxiliary index tables a DataSpace instance
// maintains. Query and mutation behavior is identical across
// profiles; the choice only affects how fast candidates are found.
type Profile = schema.Profile

const (
	// StoreOnly maintains only the primary store and the mappings table.
	StoreOnly = schema.StoreOnly
	// Inverted additionally maintains the two compound inverted indexes.
	Inverted = schema.Inverted
	// All additionally maintains the three scalar indexes.
	All = schema.All
)

// Options configures Open. Dir, when non-empty, selects an on-disk badger
// store rooted at that directory; when empty, a dependency-free in-memory
// store is used instead (the default for embedding and for tests).
type Options struct {
	Dir     string
	Profile Profile
	Logger  logx.Logger
}

// DataSpace is the embedded entity/attribute data space: the mutation
// engine, query evaluator, and result projector all hang off this handle,
// sharing one underlying ordered key-value store.
type DataSpace struct {
	store   kvstore.Store
	profile Profile
	log     logx.Logger
}

// Open opens (creating if necessary) a data space at path with the given
// index profile. An empty path opens an in-memory data space.
func Open(path string, profile Profile) (*DataSpace, error) {
	return OpenWithOptions(Options{Dir: path, Profile: profile})
}

// OpenWithOptions is like Open but takes an Options value, which also
// allows injecting a Logger.
func OpenWithOptions(opts Options) (*DataSpace, error) {
	var (
		store kvstore.Store
		err   error
	)
	if opts.Dir == "" {
		store = kvstore.NewMemory()
	} else {
		store, err = kvstore.OpenBadger(opts.Dir)
		if err != nil {
			return nil, newErr(StoreOpen, "opening store at %q: %v", opts.Dir, err)
		}
	}

	log := opts.Logger
	if log == nil {
		log = logx.Discard()
	}

	return &DataSpace{
		store:   store,
		profile: opts.Profile,
		log:     log,
	}, nil
}

// Close releases the underlying store's resources. The DataSpace must not
// be used afterwards.
func (ds *DataSpace) Close() error {
	return ds.store.Close()
}

// Clear removes every entity, attribute, mapping, and index row, resetting
// the data space to empty. Because this implementation keeps all seven
// logical tables in one keyspace, truncating the whole store truncates
// every table at once.
func (ds *DataSpace) Clear() error {
	ds.log.Infof("clearing data space")
	return ds.store.Truncate()
}
