// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package mutation

import (
	"github.com/pkg/errors"

	"github.com/dbpunk-labs/db3/crypto"
	"github.com/dbpunk-labs/db3/pkg/unit"
)

// Builder is used to build a mutation.
type Builder struct {
	m Mutation
}

// NewBuilder returns a builder for a mutation on namespace ns
func NewBuilder(ns []byte) *Builder {
	return &Builder{m: Mutation{Namespace: append([]byte(nil), ns...)}}
}

// Insert appends an insert op.
func (b *Builder) Insert(key, value []byte) *Builder {
	b.m.Ops = append(b.m.Ops, KvOp{Key: key, Value: value, Action: Insert})
	return b
}

// Delete appends a delete op.
func (b *Builder) Delete(key []byte) *Builder {
	b.m.Ops = append(b.m.Ops, KvOp{Key: key, Action: Delete})
	return b
}

// SetNonce sets mutation's nonce.
func (b *Builder) SetNonce(n uint64) *Builder {
	b.m.Nonce = n
	return b
}

// SetChain sets mutation's chain id and role.
func (b *Builder) SetChain(id ChainID, role ChainRole) *Builder {
	b.m.ChainID = id
	b.m.ChainRole = role
	return b
}

// SetGasPrice sets mutation's gas price.
func (b *Builder) SetGasPrice(p unit.Unit) *Builder {
	b.m.GasPrice = &p
	return b
}

// SetGasLimit sets mutation's gas limit.
func (b *Builder) SetGasLimit(l uint64) *Builder {
	b.m.GasLimit = l
	return b
}

// Build builds a new mutation.
func (b *Builder) Build() *Mutation {
	m := b.m
	m.Ops = append([]KvOp(nil), b.m.Ops...)
	return &m
}

// Sign serializes m and signs the serialized bytes with sk
func Sign(m *Mutation, sk crypto.PrivateKey) (*SignedEnvelope, error) {
	payload := m.Serialize()
	sig, err := sk.Sign(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign mutation")
	}
	return &SignedEnvelope{
		Signature:     sig,
		MutationBytes: payload,
		PublicKey:     crypto.EncodePublicKey(sk.Scheme(), sk.PublicKey()),
	}, nil
}

// Signer returns the account that signed the envelope
func (env *SignedEnvelope) Signer() (crypto.AccountID, error) {
	return crypto.RecoverSignerWithKey(env.MutationBytes, env.Signature, env.PublicKey)
}
