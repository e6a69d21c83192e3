// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package state

import (
	"encoding/binary"

	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dbpunk-labs/db3/crypto"
	"github.com/dbpunk-labs/db3/pkg/unit"
)

// BillType is the kind of service a bill charges for
type BillType uint8

const (
	// BillForMutation charges a committed mutation
	BillForMutation BillType = 0
	// BillForQuery charges a query session
	BillForQuery BillType = 1
)

const (
	_billGasFeeType   protowire.Number = 1
	_billGasFeeAmount protowire.Number = 2
	_billBlockHeight  protowire.Number = 3
	_billID           protowire.Number = 4
	_billType         protowire.Number = 5
	_billTime         protowire.Number = 6
	_billTargetID     protowire.Number = 7
	_billOwner        protowire.Number = 8
)

// Bill records the fee charged for one verified mutation. It is written once when its block commits.
type Bill struct {
	GasFee      unit.Unit
	BlockHeight uint64
	BillID      uint64
	BillType    BillType
	Time        uint64
	TargetID    hash.Hash256
	Owner       crypto.AccountID
}

// BillKey returns height || id in big endian, so bills iterate in block then delivery order
func BillKey(height, id uint64) []byte {
	key := make([]byte, 16)
	binary.BigEndian.PutUint64(key, height)
	binary.BigEndian.PutUint64(key[8:], id)
	return key
}

// Key returns the key of the bill
func (b *Bill) Key() []byte {
	return BillKey(b.BlockHeight, b.BillID)
}

// Serialize returns the deterministic encoding of the bill
func (b *Bill) Serialize() []byte {
	var out []byte
	out = appendVarint(out, _billGasFeeType, uint64(b.GasFee.Kind))
	out = appendVarint(out, _billGasFeeAmount, b.GasFee.Amount)
	out = appendVarint(out, _billBlockHeight, b.BlockHeight)
	out = appendVarint(out, _billID, b.BillID)
	out = appendVarint(out, _billType, uint64(b.BillType))
	out = appendVarint(out, _billTime, b.Time)
	out = appendBytes(out, _billTargetID, b.TargetID[:])
	return appendBytes(out, _billOwner, crypto.EncodePublicKey(b.Owner.Scheme, b.Owner.PublicKey))
}

// Deserialize decodes a bill, the owner is derived again from its public key
func (b *Bill) Deserialize(buf []byte) error {
	*b = Bill{}
	r := &fieldReader{b: buf}
	for num, typ, ok := r.next(); ok; num, typ, ok = r.next() {
		switch num {
		case _billGasFeeType:
			b.GasFee.Kind = unit.Kind(r.varint(typ))
		case _billGasFeeAmount:
			b.GasFee.Amount = r.varint(typ)
		case _billBlockHeight:
			b.BlockHeight = r.varint(typ)
		case _billID:
			b.BillID = r.varint(typ)
		case _billType:
			b.BillType = BillType(r.varint(typ))
		case _billTime:
			b.Time = r.varint(typ)
		case _billTargetID:
			v := r.bytes(typ)
			if r.err == nil && len(v) != len(b.TargetID) {
				r.err = errors.Wrapf(ErrFailedToUnmarshalState, "target id of length %d", len(v))
			}
			b.TargetID = hash.BytesToHash256(v)
		case _billOwner:
			v := r.bytes(typ)
			if r.err == nil && len(v) > 0 {
				b.Owner = crypto.NewAccountID(crypto.Scheme(v[0]), v[1:])
			}
		default:
			r.skip(num, typ)
		}
	}
	return r.err
}
