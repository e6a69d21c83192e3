// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package db

import "github.com/pkg/errors"

// ErrEmptyDBPath is returned when an on-disk store has no path
var ErrEmptyDBPath = errors.New("empty db path")

// CreateKVStore returns the store selected by cfg.DBType, not yet started. The memory store
// ignores dbPath.
func CreateKVStore(cfg Config, dbPath string) (KVStore, error) {
	switch cfg.DBType {
	case DBMemory:
		return NewMemKVStore(), nil
	case DBBolt, DBPebble:
	default:
		return nil, errors.Wrapf(ErrInvalid, "unsupported db type %q", cfg.DBType)
	}
	if dbPath == "" {
		return nil, errors.Wrapf(ErrEmptyDBPath, "%s store", cfg.DBType)
	}
	cfg.DbPath = dbPath
	if cfg.DBType == DBPebble {
		return NewPebbleDB(cfg), nil
	}
	return NewBoltDB(cfg), nil
}
