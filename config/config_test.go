// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/dbpunk-labs/db3/db"
	"github.com/dbpunk-labs/db3/mutation"
	"github.com/dbpunk-labs/db3/pkg/unit"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	r := require.New(t)
	cfg, err := New([]string{})
	r.NoError(err)
	r.Equal(Default.Chain, cfg.Chain)
	r.Equal(Default.DB, cfg.DB)
	r.Equal(mutation.DevNet, cfg.Chain.NetworkID())
	r.Equal(unit.NewTai(1), cfg.Chain.GasPrice())
}

func TestNewConfigWithOverride(t *testing.T) {
	r := require.New(t)
	t.Setenv("DB3_META_PATH", "/tmp/db3/meta.db")
	path := writeConfig(t, `
chain:
  id: db3-testnet
  network: testnet
  defaultGasPrice: 5
  retainBlocks: 100
  limits:
    maxOps: 16
db:
  metaDBPath: ${DB3_META_PATH}
  meta:
    dbType: pebbledb
abci:
  address: unix:///tmp/db3.sock
system:
  heartbeatInterval: 1m
`)
	cfg, err := New([]string{path})
	r.NoError(err)
	r.Equal("db3-testnet", cfg.Chain.ID)
	r.Equal(mutation.TestNet, cfg.Chain.NetworkID())
	r.Equal(unit.NewTai(5), cfg.Chain.GasPrice())
	r.EqualValues(100, cfg.Chain.RetainBlocks)
	r.EqualValues(16, cfg.Chain.Limits.MaxOps)
	// unset fields keep their defaults
	r.Equal(mutation.DefaultLimits.MaxTxBytes, cfg.Chain.Limits.MaxTxBytes)
	r.Equal("/tmp/db3/meta.db", cfg.DB.MetaDBPath)
	r.Equal(db.DBPebble, cfg.DB.Meta.DBType)
	r.Equal("unix:///tmp/db3.sock", cfg.ABCI.Address)
	r.Equal("socket", cfg.ABCI.Transport)
	r.Equal(time.Minute, cfg.System.HeartbeatInterval)
}

func TestNewConfigWithWrongPath(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
}

func TestNewConfigInvalid(t *testing.T) {
	path := writeConfig(t, "chain:\n  network: moon\n")
	_, err := New([]string{path})
	require.Equal(t, ErrInvalidCfg, errors.Cause(err))

	cfg, err := New([]string{path}, DoNotValidate)
	require.NoError(t, err)
	require.Equal(t, "moon", cfg.Chain.Network)
	require.Panics(t, func() { cfg.Chain.NetworkID() })
}

func TestValidateLimits(t *testing.T) {
	for _, tc := range []struct {
		name   string
		modify func(*mutation.Limits)
		ok     bool
	}{
		{"default", func(*mutation.Limits) {}, true},
		{"zero tx bytes", func(l *mutation.Limits) { l.MaxTxBytes = 0 }, false},
		{"zero ops", func(l *mutation.Limits) { l.MaxOps = 0 }, false},
		{"value over tx", func(l *mutation.Limits) { l.MaxValueBytes = l.MaxTxBytes + 1 }, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default
			tc.modify(&cfg.Chain.Limits)
			err := ValidateLimits(cfg)
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.Equal(t, ErrInvalidCfg, errors.Cause(err))
			}
		})
	}
}

func TestValidateDB(t *testing.T) {
	r := require.New(t)
	cfg := Default
	r.NoError(ValidateDB(cfg))

	cfg.DB.MetaDBPath = ""
	r.Equal(ErrInvalidCfg, errors.Cause(ValidateDB(cfg)))
	cfg.DB.Meta.DBType = db.DBMemory
	r.NoError(ValidateDB(cfg))

	cfg.DB.Meta.DBType = "rocksdb"
	r.Equal(ErrInvalidCfg, errors.Cause(ValidateDB(cfg)))

	cfg = Default
	cfg.DB.State.CacheSize = -1
	r.Equal(ErrInvalidCfg, errors.Cause(ValidateDB(cfg)))
}

func TestValidateChain(t *testing.T) {
	r := require.New(t)
	r.NoError(ValidateChain(Default))
	cfg := Default
	cfg.Chain.Network = ""
	r.Equal(ErrInvalidCfg, errors.Cause(ValidateChain(cfg)))
}
