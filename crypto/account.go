// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package crypto

import (
	"encoding/hex"

	"github.com/iotexproject/go-pkgs/hash"
)

// AccountID identifies the signer of a mutation
type AccountID struct {
	Address   hash.Hash160
	Scheme    Scheme
	PublicKey []byte
}

// NewAccountID derives the account of a public key. The address is the truncated blake2b-256
// of tag || public key.
func NewAccountID(scheme Scheme, pk []byte) AccountID {
	return AccountID{
		Address:   hash.Hash160b(EncodePublicKey(scheme, pk)),
		Scheme:    scheme,
		PublicKey: append([]byte(nil), pk...),
	}
}

// EncodePublicKey returns tag || public key
func EncodePublicKey(scheme Scheme, pk []byte) []byte {
	b := make([]byte, 0, len(pk)+1)
	b = append(b, byte(scheme))
	return append(b, pk...)
}

// String returns the 0x prefixed hex address
func (a AccountID) String() string {
	return "0x" + hex.EncodeToString(a.Address[:])
}
