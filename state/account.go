// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package state

import (
	"google.golang.org/protobuf/encoding/protowire"
)

const _accountNonce protowire.Number = 1

// Account is the canonical representation of an account.
type Account struct {
	// Nonce is the nonce of the last committed mutation, 0 before the first one
	Nonce uint64
}

// Serialize serializes account state into bytes
func (st *Account) Serialize() []byte {
	return appendVarint(nil, _accountNonce, st.Nonce)
}

// Deserialize deserializes bytes into account state
func (st *Account) Deserialize(buf []byte) error {
	*st = Account{}
	r := &fieldReader{b: buf}
	for num, typ, ok := r.next(); ok; num, typ, ok = r.next() {
		if num == _accountNonce {
			st.Nonce = r.varint(typ)
			continue
		}
		r.skip(num, typ)
	}
	return r.err
}
