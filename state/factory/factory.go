// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package factory

import (
	"bytes"
	"context"
	"sync"

	"github.com/cosmos/iavl"
	idb "github.com/cosmos/iavl/db"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dbpunk-labs/db3/pkg/lifecycle"
	"github.com/dbpunk-labs/db3/pkg/log"
)

var (
	// ErrStore indicates a failure of the authenticated store
	ErrStore = errors.New("store failure")
	// ErrUnsortedBatch indicates a batch whose keys are not strictly ascending
	ErrUnsortedBatch = errors.New("batch keys are not sorted and unique")
)

// Op is the kind of a batch entry
type Op uint8

const (
	// OpPut sets the value of the key
	OpPut Op = iota
	// OpDelete removes the key
	OpDelete
)

type (
	// Entry is one write of a batch
	Entry struct {
		Key   []byte
		Op    Op
		Value []byte
	}

	// StateReader reads the committed state
	StateReader interface {
		Get([]byte) ([]byte, error)
		RootHash() hash.Hash256
		Version() int64
	}

	// StateWriter applies batches to the working state
	StateWriter interface {
		StateReader
		// ApplyBatch applies entries whose keys are strictly ascending
		ApplyBatch([]Entry) error
	}

	// Factory owns the authenticated store. Readers share the store, a writer holds it
	// exclusively from the first batch until the new version is saved.
	Factory interface {
		lifecycle.StartStopper
		// View runs fn under the shared read guard
		View(fn func(StateReader) error) error
		// Update runs fn under the exclusive write guard, then saves a new version and returns
		// its root. If fn fails nothing it applied is kept.
		Update(fn func(StateWriter) error) (hash.Hash256, error)
		RootHash() hash.Hash256
		Version() int64
		// Get returns the value of key, nil if absent
		Get([]byte) ([]byte, error)
		// Proof returns the marshaled ics23 commitment proof of key against RootHash
		Proof([]byte) ([]byte, error)
		// Rewind discards every version above version
		Rewind(int64) error
	}

	// Config is the config of the store
	Config struct {
		// DBPath is the leveldb directory, empty for an in-memory store
		DBPath    string `yaml:"dbPath"`
		CacheSize int    `yaml:"cacheSize"`
	}

	iavlFactory struct {
		lifecycle.Readiness
		mu   sync.RWMutex
		cfg  Config
		db   idb.DB
		tree *iavl.MutableTree
	}

	treeAccess struct {
		tree *iavl.MutableTree
	}
)

// DefaultConfig is the default config of the store
var DefaultConfig = Config{
	CacheSize: 10000,
}

// Put returns a put entry
func Put(key, value []byte) Entry {
	return Entry{Key: key, Op: OpPut, Value: value}
}

// Delete returns a delete entry
func Delete(key []byte) Entry {
	return Entry{Key: key, Op: OpDelete}
}

// NewFactory returns a store over cosmos iavl, the tree is loaded on Start
func NewFactory(cfg Config) Factory {
	return &iavlFactory{cfg: cfg}
}

func storeError(err error, msg string) error {
	return errors.Wrapf(ErrStore, "%s: %v", msg, err)
}

func (f *iavlFactory) Start(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cfg.DBPath == "" {
		f.db = idb.NewMemDB()
	} else {
		db, err := idb.NewGoLevelDB("state", f.cfg.DBPath)
		if err != nil {
			return storeError(err, "failed to open leveldb")
		}
		f.db = db
	}
	f.tree = iavl.NewMutableTree(f.db, f.cfg.CacheSize, false, iavl.NewNopLogger())
	version, err := f.tree.Load()
	if err != nil {
		return storeError(err, "failed to load tree")
	}
	log.L().Info("Loaded state tree.",
		zap.Int64("version", version),
		log.Hex("root", f.tree.WorkingHash()))
	return f.TurnOn()
}

func (f *iavlFactory) Stop(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.TurnOff(); err != nil {
		return err
	}
	if err := f.db.Close(); err != nil {
		return storeError(err, "failed to close db")
	}
	return nil
}

func (f *iavlFactory) View(fn func(StateReader) error) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.IsReady() {
		return errors.Wrap(ErrStore, "store is not started")
	}
	return fn(&treeAccess{tree: f.tree})
}

func (f *iavlFactory) Update(fn func(StateWriter) error) (hash.Hash256, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.IsReady() {
		return hash.ZeroHash256, errors.Wrap(ErrStore, "store is not started")
	}
	if err := fn(&treeAccess{tree: f.tree}); err != nil {
		f.tree.Rollback()
		return hash.ZeroHash256, err
	}
	root, version, err := f.tree.SaveVersion()
	if err != nil {
		f.tree.Rollback()
		return hash.ZeroHash256, storeError(err, "failed to save version")
	}
	log.L().Debug("Saved state tree.", zap.Int64("version", version), log.Hex("root", root))
	return hash.BytesToHash256(root), nil
}

func (f *iavlFactory) RootHash() hash.Hash256 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.tree == nil {
		return hash.ZeroHash256
	}
	return hash.BytesToHash256(f.tree.WorkingHash())
}

func (f *iavlFactory) Version() int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.tree == nil {
		return 0
	}
	return f.tree.Version()
}

func (f *iavlFactory) Get(key []byte) ([]byte, error) {
	var v []byte
	err := f.View(func(sr StateReader) error {
		var err error
		v, err = sr.Get(key)
		return err
	})
	return v, err
}

func (f *iavlFactory) Proof(key []byte) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.IsReady() {
		return nil, errors.Wrap(ErrStore, "store is not started")
	}
	proof, err := f.tree.GetProof(key)
	if err != nil {
		return nil, storeError(err, "failed to get proof")
	}
	b, err := proof.Marshal()
	if err != nil {
		return nil, storeError(err, "failed to marshal proof")
	}
	return b, nil
}

func (f *iavlFactory) Rewind(version int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.IsReady() {
		return errors.Wrap(ErrStore, "store is not started")
	}
	if err := f.tree.LoadVersionForOverwriting(version); err != nil {
		return storeError(err, "failed to rewind")
	}
	log.L().Warn("Rewound state tree.", zap.Int64("version", version))
	return nil
}

func (ta *treeAccess) Get(key []byte) ([]byte, error) {
	v, err := ta.tree.Get(key)
	if err != nil {
		return nil, storeError(err, "failed to get")
	}
	return v, nil
}

func (ta *treeAccess) RootHash() hash.Hash256 {
	return hash.BytesToHash256(ta.tree.WorkingHash())
}

func (ta *treeAccess) Version() int64 {
	return ta.tree.Version()
}

func (ta *treeAccess) ApplyBatch(entries []Entry) error {
	for i := 1; i < len(entries); i++ {
		if bytes.Compare(entries[i-1].Key, entries[i].Key) >= 0 {
			return errors.Wrapf(ErrUnsortedBatch, "key %x at %d", entries[i].Key, i)
		}
	}
	for _, e := range entries {
		switch e.Op {
		case OpPut:
			value := e.Value
			if value == nil {
				value = []byte{}
			}
			if _, err := ta.tree.Set(e.Key, value); err != nil {
				return storeError(err, "failed to set")
			}
		case OpDelete:
			if _, _, err := ta.tree.Remove(e.Key); err != nil {
				return storeError(err, "failed to remove")
			}
		default:
			return errors.Wrapf(ErrStore, "unknown op %d", e.Op)
		}
	}
	return nil
}
