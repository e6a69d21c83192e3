// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package factory

import (
	"encoding/binary"

	"github.com/iotexproject/go-pkgs/hash"

	"github.com/dbpunk-labs/db3/state"
)

// key prefixes of the authenticated store
const (
	DataPrefix    byte = 0x01
	BillPrefix    byte = 0x02
	AccountPrefix byte = 0x03
)

// DataKey returns the store key of key in namespace ns. The namespace is length prefixed, so
// no (ns, key) pair shares a store key with another one.
func DataKey(ns, key []byte) []byte {
	b := make([]byte, 0, 1+binary.MaxVarintLen64+len(ns)+len(key))
	b = append(b, DataPrefix)
	b = binary.AppendUvarint(b, uint64(len(ns)))
	b = append(b, ns...)
	return append(b, key...)
}

// BillKey returns the store key of a bill
func BillKey(height, id uint64) []byte {
	return append([]byte{BillPrefix}, state.BillKey(height, id)...)
}

// AccountKey returns the store key of an account
func AccountKey(addr hash.Hash160) []byte {
	return append([]byte{AccountPrefix}, addr[:]...)
}
