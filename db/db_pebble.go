// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package db

import (
	"bytes"
	"context"

	"github.com/cockroachdb/pebble"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"

	"github.com/dbpunk-labs/db3/db/batch"
	"github.com/dbpunk-labs/db3/pkg/lifecycle"
)

const prefixLength = 8

// PebbleDB is KVStore implementation based on pebble DB
type PebbleDB struct {
	lifecycle.Readiness
	db     *pebble.DB
	path   string
	config Config
}

// NewPebbleDB creates a new PebbleDB instance
func NewPebbleDB(cfg Config) *PebbleDB {
	return &PebbleDB{
		path:   cfg.DbPath,
		config: cfg,
	}
}

// Start opens the DB (creates new file if not existing yet)
func (b *PebbleDB) Start(_ context.Context) error {
	db, err := pebble.Open(b.path, &pebble.Options{ReadOnly: b.config.ReadOnly})
	if err != nil {
		return errors.Wrap(ErrIO, err.Error())
	}
	b.db = db
	return b.TurnOn()
}

// Stop closes the DB
func (b *PebbleDB) Stop(_ context.Context) error {
	if err := b.TurnOff(); err != nil {
		return err
	}
	if err := b.db.Close(); err != nil {
		return errors.Wrap(ErrIO, err.Error())
	}
	return nil
}

// Get retrieves a record
func (b *PebbleDB) Get(ns string, key []byte) ([]byte, error) {
	if !b.IsReady() {
		return nil, ErrDBNotStarted
	}
	v, closer, err := b.db.Get(nsKey(ns, key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, errors.Wrapf(ErrNotExist, "ns %s key = %x doesn't exist", ns, key)
		}
		return nil, errors.Wrap(ErrIO, err.Error())
	}
	// v is only valid until closer is closed
	val := bytes.Clone(v)
	return val, closer.Close()
}

// Put inserts a <key, value> record
func (b *PebbleDB) Put(ns string, key, value []byte) error {
	if !b.IsReady() {
		return ErrDBNotStarted
	}
	if err := b.db.Set(nsKey(ns, key), value, pebble.Sync); err != nil {
		return errors.Wrap(ErrIO, err.Error())
	}
	return nil
}

// Delete deletes a record
func (b *PebbleDB) Delete(ns string, key []byte) error {
	if !b.IsReady() {
		return ErrDBNotStarted
	}
	if key == nil {
		return errors.Wrap(ErrInvalid, "delete whole ns not supported by PebbleDB")
	}
	if err := b.db.Delete(nsKey(ns, key), pebble.Sync); err != nil {
		return errors.Wrap(ErrIO, err.Error())
	}
	return nil
}

// WriteBatch commits a batch atomically, nothing is written when any staged write fails
func (b *PebbleDB) WriteBatch(kvsb batch.KVStoreBatch) error {
	if !b.IsReady() {
		return ErrDBNotStarted
	}
	pb, err := b.toPebbleBatch(kvsb)
	if err != nil {
		return err
	}
	defer pb.Close()
	if err := pb.Commit(pebble.Sync); err != nil {
		return errors.Wrap(ErrIO, err.Error())
	}
	return nil
}

func (b *PebbleDB) toPebbleBatch(kvsb batch.KVStoreBatch) (*pebble.Batch, error) {
	kvsb.Lock()
	defer kvsb.Unlock()

	pb := b.db.NewBatch()
	for i := 0; i < kvsb.Size(); i++ {
		write, err := kvsb.Entry(i)
		if err == nil {
			err = applyWrite(pb, write)
		}
		if err != nil {
			pb.Close()
			return nil, err
		}
	}
	return pb, nil
}

func applyWrite(pb *pebble.Batch, write *batch.WriteInfo) error {
	var err error
	switch write.WriteType() {
	case batch.Put:
		err = pb.Set(nsKey(write.Namespace(), write.Key()), write.Value(), nil)
	case batch.Delete:
		err = pb.Delete(nsKey(write.Namespace(), write.Key()), nil)
	default:
		err = errors.Wrapf(ErrInvalid, "unknown write type %d", write.WriteType())
	}
	if err != nil {
		return errors.Wrap(err, write.Error())
	}
	return nil
}

// nsKey prefixes key with the first bytes of the namespace hash, pebble has no buckets
func nsKey(ns string, key []byte) []byte {
	h := hash.Hash160b([]byte(ns))
	nk := make([]byte, prefixLength, prefixLength+len(key))
	copy(nk, h[:prefixLength])
	return append(nk, key...)
}
