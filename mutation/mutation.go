// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package mutation

import (
	"bytes"
	"sort"

	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"

	"github.com/dbpunk-labs/db3/pkg/unit"
)

// Action is the kind of a key-value operation
type Action uint8

const (
	// Insert puts the value under the key
	Insert Action = 0
	// Delete removes the key
	Delete Action = 1
)

// ChainID identifies the network a mutation is meant for
type ChainID uint8

const (
	// MainNet is the production network
	MainNet ChainID = 0
	// TestNet is the public test network
	TestNet ChainID = 1
	// DevNet is the local development network
	DevNet ChainID = 2
)

// ChainRole identifies the kind of chain a mutation is meant for
type ChainRole uint8

const (
	// StorageShardChain stores namespaced key-value data
	StorageShardChain ChainRole = 0
	// SettlementChain settles bills
	SettlementChain ChainRole = 10
	// DVMComputingChain runs computation
	DVMComputingChain ChainRole = 20
)

var (
	// ErrDecode indicates bytes that do not parse as the wire schema
	ErrDecode = errors.New("failed to decode")
	// ErrDuplicateKey indicates two ops on the same key in one mutation
	ErrDuplicateKey = errors.New("duplicate key in mutation")
	// ErrEmptyMutation indicates a mutation without ops
	ErrEmptyMutation = errors.New("mutation has no ops")
	// ErrChainID indicates a mutation for another chain
	ErrChainID = errors.New("chain id mismatch")
)

type (
	// KvOp is one operation of a mutation
	KvOp struct {
		Key    []byte
		Value  []byte
		Action Action
	}

	// Mutation is a set of ops on one namespace, signed as a whole by its owner
	Mutation struct {
		Namespace []byte
		Ops       []KvOp
		Nonce     uint64
		ChainID   ChainID
		ChainRole ChainRole
		GasPrice  *unit.Unit
		GasLimit  uint64
	}
)

// Valid reports whether the action is known
func (a Action) Valid() bool { return a == Insert || a == Delete }

// Valid reports whether the chain id is known
func (c ChainID) Valid() bool { return c <= DevNet }

func (c ChainID) String() string {
	switch c {
	case MainNet:
		return "mainnet"
	case TestNet:
		return "testnet"
	case DevNet:
		return "devnet"
	default:
		return "unknown"
	}
}

// ParseChainID returns the chain id of its name
func ParseChainID(s string) (ChainID, error) {
	for _, c := range []ChainID{MainNet, TestNet, DevNet} {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, errors.Wrapf(ErrChainID, "unknown chain %s", s)
}

// Valid reports whether the chain role is known
func (r ChainRole) Valid() bool {
	return r == StorageShardChain || r == SettlementChain || r == DVMComputingChain
}

// SortedOps returns a copy of the ops ordered by key
func (m *Mutation) SortedOps() []KvOp {
	ops := make([]KvOp, len(m.Ops))
	copy(ops, m.Ops)
	sort.SliceStable(ops, func(i, j int) bool {
		return bytes.Compare(ops[i].Key, ops[j].Key) < 0
	})
	return ops
}

// Validate checks the semantic rules a decoded mutation must satisfy on chainID
func (m *Mutation) Validate(chainID ChainID) error {
	if m.ChainID != chainID {
		return errors.Wrapf(ErrChainID, "mutation for %s on %s", m.ChainID, chainID)
	}
	if len(m.Ops) == 0 {
		return ErrEmptyMutation
	}
	ops := m.SortedOps()
	for i := 1; i < len(ops); i++ {
		if bytes.Equal(ops[i-1].Key, ops[i].Key) {
			return errors.Wrapf(ErrDuplicateKey, "key %x", ops[i].Key)
		}
	}
	return nil
}

// ID returns the mutation id. Ops are hashed in key order, so permuting the ops of a
// mutation does not change its id.
func (m *Mutation) ID() hash.Hash256 {
	canonical := *m
	canonical.Ops = m.SortedOps()
	return hash.Hash256b(canonical.Serialize())
}

// PayloadSize is the number of bytes the mutation writes into the store
func (m *Mutation) PayloadSize() uint64 {
	size := uint64(len(m.Namespace))
	for _, op := range m.Ops {
		size += uint64(len(op.Key)) + uint64(len(op.Value))
	}
	return size
}
