// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package pending

import (
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/dbpunk-labs/db3/crypto"
	"github.com/dbpunk-labs/db3/mutation"
)

func entry(t *testing.T, signer crypto.AccountID, nonce uint64) Entry {
	m := mutation.NewBuilder([]byte("t")).Insert([]byte("k"), []byte("v")).SetNonce(nonce).Build()
	return Entry{Signer: signer, Mutation: m, MutationID: m.ID(), Size: m.PayloadSize()}
}

func TestBuffer(t *testing.T) {
	r := require.New(t)
	alice, err := crypto.GenerateKey(crypto.Secp256k1)
	r.NoError(err)
	bob, err := crypto.GenerateKey(crypto.Ed25519)
	r.NoError(err)

	b := NewBuffer()
	r.Empty(b.Drain())
	r.NoError(b.Push(entry(t, alice.Account(), 1)))
	r.NoError(b.Push(entry(t, bob.Account(), 1)))
	r.NoError(b.Push(entry(t, alice.Account(), 3)))
	r.Equal(ErrNonce, errors.Cause(b.Push(entry(t, alice.Account(), 3))))
	r.Equal(ErrNonce, errors.Cause(b.Push(entry(t, alice.Account(), 2))))
	r.Equal(3, b.Len())

	n, ok := b.PendingNonce(alice.Account().Address)
	r.True(ok)
	r.Equal(uint64(3), n)

	entries := b.Drain()
	r.Len(entries, 3)
	r.Equal(alice.Account(), entries[0].Signer)
	r.Equal(bob.Account(), entries[1].Signer)
	r.Equal(uint64(3), entries[2].Mutation.Nonce)

	r.Zero(b.Len())
	r.Empty(b.Drain())
	_, ok = b.PendingNonce(alice.Account().Address)
	r.False(ok)
	// nonce index is reset with the entries
	r.NoError(b.Push(entry(t, alice.Account(), 1)))
}

func TestBufferConcurrentPush(t *testing.T) {
	r := require.New(t)
	b := NewBuffer()

	var wg sync.WaitGroup
	accounts := make([]crypto.AccountID, 8)
	for i := range accounts {
		sk, err := crypto.GenerateKey(crypto.Ed25519)
		r.NoError(err)
		accounts[i] = sk.Account()
	}
	for _, acct := range accounts {
		wg.Add(1)
		go func(acct crypto.AccountID) {
			defer wg.Done()
			for nonce := uint64(1); nonce <= 50; nonce++ {
				if err := b.Push(entry(t, acct, nonce)); err != nil {
					t.Error(err)
				}
			}
		}(acct)
	}
	wg.Wait()

	entries := b.Drain()
	r.Len(entries, len(accounts)*50)
	last := make(map[string]uint64)
	for _, e := range entries {
		key := e.Signer.String()
		r.Greater(e.Mutation.Nonce, last[key])
		last[key] = e.Mutation.Nonce
	}
}
