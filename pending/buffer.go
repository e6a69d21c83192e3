// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package pending

import (
	"sync"

	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dbpunk-labs/db3/crypto"
	"github.com/dbpunk-labs/db3/mutation"
	"github.com/dbpunk-labs/db3/state"
)

var (
	_pendingMtc = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "db3_pending_buffer_size",
		Help: "Number of mutations waiting for the block to commit.",
	})

	// ErrNonce indicates a nonce not above the highest pending nonce of the signer
	ErrNonce = errors.New("invalid nonce")
)

func init() {
	prometheus.MustRegister(_pendingMtc)
}

// Entry is a verified mutation waiting for its block to commit
type Entry struct {
	Signer     crypto.AccountID
	Mutation   *mutation.Mutation
	MutationID hash.Hash256
	Bill       *state.Bill
	// Size is the number of payload bytes the mutation writes
	Size uint64
}

// Buffer holds the entries delivered in the open block, in delivery order
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	nonces  map[hash.Hash160]uint64
}

// NewBuffer returns an empty buffer
func NewBuffer() *Buffer {
	return &Buffer{nonces: make(map[hash.Hash160]uint64)}
}

// Push appends an entry. The entry's nonce must be above every pending nonce of its signer.
func (b *Buffer) Push(e Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	addr := e.Signer.Address
	if last, ok := b.nonces[addr]; ok && e.Mutation.Nonce <= last {
		return errors.Wrapf(ErrNonce, "nonce %d, pending %d", e.Mutation.Nonce, last)
	}
	b.nonces[addr] = e.Mutation.Nonce
	b.entries = append(b.entries, e)
	_pendingMtc.Set(float64(len(b.entries)))
	return nil
}

// Drain removes and returns every entry in push order
func (b *Buffer) Drain() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.entries
	b.entries = nil
	b.nonces = make(map[hash.Hash160]uint64)
	_pendingMtc.Set(0)
	return entries
}

// Len returns the number of pending entries
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// PendingNonce returns the highest pending nonce of addr
func (b *Buffer) PendingNonce(addr hash.Hash160) (uint64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nonces[addr]
	return n, ok
}
