// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package factory

import (
	"context"
	"testing"

	ics23 "github.com/cosmos/ics23/go"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/dbpunk-labs/db3/testutil"
)

func startFactory(t *testing.T, cfg Config) Factory {
	f := NewFactory(cfg)
	require.NoError(t, f.Start(context.Background()))
	return f
}

func TestFactoryUpdate(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()
	f := startFactory(t, DefaultConfig)
	defer func() {
		r.NoError(f.Stop(ctx))
	}()

	empty := f.RootHash()
	root, err := f.Update(func(sw StateWriter) error { return nil })
	r.NoError(err)
	r.Equal(empty, root)
	r.Equal(int64(1), f.Version())

	ka, kb := DataKey([]byte("t"), []byte("a")), DataKey([]byte("t"), []byte("b"))
	root, err = f.Update(func(sw StateWriter) error {
		return sw.ApplyBatch([]Entry{Put(ka, []byte("1")), Put(kb, []byte("2"))})
	})
	r.NoError(err)
	r.NotEqual(empty, root)
	r.Equal(root, f.RootHash())
	r.Equal(int64(2), f.Version())

	v, err := f.Get(ka)
	r.NoError(err)
	r.Equal([]byte("1"), v)
	v, err = f.Get(DataKey([]byte("t"), []byte("c")))
	r.NoError(err)
	r.Nil(v)

	r.NoError(f.View(func(sr StateReader) error {
		r.Equal(root, sr.RootHash())
		v, err := sr.Get(kb)
		r.NoError(err)
		r.Equal([]byte("2"), v)
		return nil
	}))

	// unsorted batch fails and the batch applied before it in the same update is discarded
	kc := DataKey([]byte("t"), []byte("c"))
	_, err = f.Update(func(sw StateWriter) error {
		if err := sw.ApplyBatch([]Entry{Put(kc, []byte("3"))}); err != nil {
			return err
		}
		return sw.ApplyBatch([]Entry{Put(kb, nil), Put(ka, nil)})
	})
	r.True(errors.Is(err, ErrUnsortedBatch))
	r.Equal(root, f.RootHash())
	r.Equal(int64(2), f.Version())
	v, err = f.Get(kc)
	r.NoError(err)
	r.Nil(v)

	_, err = f.Update(func(sw StateWriter) error {
		return sw.ApplyBatch([]Entry{Put(ka, nil), Put(ka, nil)})
	})
	r.True(errors.Is(err, ErrUnsortedBatch))

	_, err = f.Update(func(sw StateWriter) error {
		return sw.ApplyBatch([]Entry{Delete(ka), Put(kb, nil)})
	})
	r.NoError(err)
	v, err = f.Get(ka)
	r.NoError(err)
	r.Nil(v)
	v, err = f.Get(kb)
	r.NoError(err)
	r.Equal([]byte{}, v)

	r.NoError(f.Rewind(2))
	r.Equal(int64(2), f.Version())
	r.Equal(root, f.RootHash())
	v, err = f.Get(ka)
	r.NoError(err)
	r.Equal([]byte("1"), v)
}

func TestFactoryBatchOrder(t *testing.T) {
	r := require.New(t)
	ka, kb := DataKey([]byte("t"), []byte("a")), DataKey([]byte("t"), []byte("b"))

	one := startFactory(t, DefaultConfig)
	rootOne, err := one.Update(func(sw StateWriter) error {
		return sw.ApplyBatch([]Entry{Put(ka, []byte("1")), Put(kb, []byte("2"))})
	})
	r.NoError(err)

	two := startFactory(t, DefaultConfig)
	rootTwo, err := two.Update(func(sw StateWriter) error {
		if err := sw.ApplyBatch([]Entry{Put(kb, []byte("2"))}); err != nil {
			return err
		}
		return sw.ApplyBatch([]Entry{Put(ka, []byte("1"))})
	})
	r.NoError(err)
	r.Equal(rootOne, rootTwo)
}

func TestFactoryProof(t *testing.T) {
	r := require.New(t)
	f := startFactory(t, DefaultConfig)
	key := DataKey([]byte("t"), []byte("k1"))
	root, err := f.Update(func(sw StateWriter) error {
		return sw.ApplyBatch([]Entry{Put(key, []byte("v1"))})
	})
	r.NoError(err)

	b, err := f.Proof(key)
	r.NoError(err)
	proof := &ics23.CommitmentProof{}
	r.NoError(proof.Unmarshal(b))
	r.True(ics23.VerifyMembership(ics23.IavlSpec, root[:], proof, key, []byte("v1")))
	r.False(ics23.VerifyMembership(ics23.IavlSpec, root[:], proof, key, []byte("v2")))
}

func TestFactoryPersistence(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()
	cfg := DefaultConfig
	cfg.DBPath = testutil.PathOfTempFile(t, "state")
	f := startFactory(t, cfg)
	key := AccountKey(hash.Hash160b([]byte("alice")))
	root, err := f.Update(func(sw StateWriter) error {
		return sw.ApplyBatch([]Entry{Put(key, []byte{0x08, 0x01})})
	})
	r.NoError(err)
	r.NoError(f.Stop(ctx))

	f = startFactory(t, cfg)
	defer func() {
		r.NoError(f.Stop(ctx))
	}()
	r.Equal(root, f.RootHash())
	r.Equal(int64(1), f.Version())
	v, err := f.Get(key)
	r.NoError(err)
	r.Equal([]byte{0x08, 0x01}, v)
}

func TestFactoryNotStarted(t *testing.T) {
	r := require.New(t)
	f := NewFactory(DefaultConfig)
	_, err := f.Get([]byte("k"))
	r.Equal(ErrStore, errors.Cause(err))
	_, err = f.Update(func(StateWriter) error { return nil })
	r.Equal(ErrStore, errors.Cause(err))
	r.Equal(hash.ZeroHash256, f.RootHash())
}

func TestKeys(t *testing.T) {
	r := require.New(t)
	r.Equal([]byte{DataPrefix, 1, 't', 'k'}, DataKey([]byte("t"), []byte("k")))
	// the length prefix separates ("ab", "c") from ("a", "bc")
	r.NotEqual(DataKey([]byte("ab"), []byte("c")), DataKey([]byte("a"), []byte("bc")))
	r.Equal(byte(BillPrefix), BillKey(1, 2)[0])
	r.Len(BillKey(1, 2), 17)
	r.Len(AccountKey(hash.Hash160{}), 21)
}
