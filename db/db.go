// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package db

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/dbpunk-labs/db3/db/batch"
	"github.com/dbpunk-labs/db3/pkg/lifecycle"
)

var (
	// ErrNotExist indicates certain item does not exist in database
	ErrNotExist = errors.New("not exist in DB")
	// ErrIO indicates the generic error of DB I/O operation
	ErrIO = errors.New("DB I/O operation error")
	// ErrDBNotStarted indicates the DB is not started
	ErrDBNotStarted = errors.New("DB is not started")
	// ErrInvalid indicates an invalid input
	ErrInvalid = errors.New("invalid input")
)

// KVStore is the interface of KV store.
type KVStore interface {
	lifecycle.StartStopper

	// Put insert or update a record identified by (namespace, key)
	Put(string, []byte, []byte) error
	// Get gets a record by (namespace, key)
	Get(string, []byte) ([]byte, error)
	// Delete deletes a record by (namespace, key)
	Delete(string, []byte) error
	// WriteBatch commits a batch atomically
	WriteBatch(batch.KVStoreBatch) error
}

const keyDelimiter = "."

// memKVStore is the in-memory implementation of KVStore for testing purpose
type memKVStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	bucket map[string]struct{}
}

// NewMemKVStore instantiates an in-memory KV store
func NewMemKVStore() KVStore {
	return &memKVStore{
		data:   make(map[string][]byte),
		bucket: make(map[string]struct{}),
	}
}

func (m *memKVStore) Start(_ context.Context) error { return nil }

func (m *memKVStore) Stop(_ context.Context) error { return nil }

// Put inserts a <key, value> record
func (m *memKVStore) Put(namespace string, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(namespace, key, value)
	return nil
}

func (m *memKVStore) put(namespace string, key, value []byte) {
	m.bucket[namespace] = struct{}{}
	m.data[namespace+keyDelimiter+string(key)] = append([]byte(nil), value...)
}

// Get retrieves a record
func (m *memKVStore) Get(namespace string, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.bucket[namespace]; !ok {
		return nil, errors.Wrapf(ErrNotExist, "namespace = %s doesn't exist", namespace)
	}
	value, ok := m.data[namespace+keyDelimiter+string(key)]
	if !ok {
		return nil, errors.Wrapf(ErrNotExist, "key = %x doesn't exist", key)
	}
	return append([]byte(nil), value...), nil
}

// Delete deletes a record
func (m *memKVStore) Delete(namespace string, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, namespace+keyDelimiter+string(key))
	return nil
}

// WriteBatch commits a batch
func (m *memKVStore) WriteBatch(b batch.KVStoreBatch) error {
	b.Lock()
	defer b.Unlock()
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := 0; i < b.Size(); i++ {
		write, err := b.Entry(i)
		if err != nil {
			return err
		}
		switch write.WriteType() {
		case batch.Put:
			m.put(write.Namespace(), write.Key(), write.Value())
		case batch.Delete:
			delete(m.data, write.Namespace()+keyDelimiter+string(write.Key()))
		}
	}
	return nil
}
