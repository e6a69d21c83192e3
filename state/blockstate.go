// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package state

import (
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	_blockHeight       protowire.Number = 1
	_blockAppHash      protowire.Number = 2
	_blockBillCounter  protowire.Number = 3
	_blockTime         protowire.Number = 4
	_blockStoreVersion protowire.Number = 5
)

// BlockState is the state of one block. StoreVersion is the store version its AppHash was read at.
type BlockState struct {
	Height        int64
	AppHash       hash.Hash256
	BillIDCounter uint64
	BlockTime     uint64
	StoreVersion  int64
}

// Serialize serializes block state into bytes
func (bs *BlockState) Serialize() []byte {
	var b []byte
	b = appendVarint(b, _blockHeight, uint64(bs.Height))
	b = appendBytes(b, _blockAppHash, bs.AppHash[:])
	b = appendVarint(b, _blockBillCounter, bs.BillIDCounter)
	b = appendVarint(b, _blockTime, bs.BlockTime)
	return appendVarint(b, _blockStoreVersion, uint64(bs.StoreVersion))
}

// Deserialize deserializes bytes into block state
func (bs *BlockState) Deserialize(buf []byte) error {
	*bs = BlockState{}
	r := &fieldReader{b: buf}
	for num, typ, ok := r.next(); ok; num, typ, ok = r.next() {
		switch num {
		case _blockHeight:
			bs.Height = int64(r.varint(typ))
		case _blockAppHash:
			v := r.bytes(typ)
			if r.err == nil && len(v) != len(bs.AppHash) {
				r.err = errors.Wrapf(ErrFailedToUnmarshalState, "app hash of length %d", len(v))
			}
			bs.AppHash = hash.BytesToHash256(v)
		case _blockBillCounter:
			bs.BillIDCounter = r.varint(typ)
		case _blockTime:
			bs.BlockTime = r.varint(typ)
		case _blockStoreVersion:
			bs.StoreVersion = int64(r.varint(typ))
		default:
			r.skip(num, typ)
		}
	}
	return r.err
}
