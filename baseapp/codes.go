// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package baseapp

import (
	"github.com/pkg/errors"

	"github.com/dbpunk-labs/db3/crypto"
	"github.com/dbpunk-labs/db3/mutation"
	"github.com/dbpunk-labs/db3/pending"
	"github.com/dbpunk-labs/db3/pkg/unit"
)

// response codes of CheckTx, DeliverTx and Query
const (
	CodeOK uint32 = iota
	// CodeBadTx rejects bytes that do not decode or do not verify
	CodeBadTx
	CodeInvalidNonce
	// CodeInvalidMutation rejects duplicate keys, empty ops and foreign chain ids
	CodeInvalidMutation
	CodeOutOfGas
	// CodeWrongState rejects a DeliverTx outside of a block
	CodeWrongState
	CodeInternal
	CodeBadQuery
)

var (
	// ErrHeightMismatch indicates a block that does not follow the last committed one
	ErrHeightMismatch = errors.New("block height mismatch")
	// ErrWrongState indicates a consensus call the block state does not allow
	ErrWrongState = errors.New("wrong block state")
	// ErrChainMismatch indicates a genesis for another chain
	ErrChainMismatch = errors.New("chain id mismatch")
	// ErrHalted indicates a call after a fatal error
	ErrHalted = errors.New("application halted")
	// ErrInvalidNonce indicates a nonce not above the committed nonce of the signer
	ErrInvalidNonce = errors.New("invalid nonce")
)

// codeOf maps a rejection to its response code
func codeOf(err error) uint32 {
	switch cause := errors.Cause(err); cause {
	case nil:
		return CodeOK
	case mutation.ErrDecode, crypto.ErrBadEncoding, crypto.ErrUnsupportedScheme, crypto.ErrSignatureMismatch:
		return CodeBadTx
	case ErrInvalidNonce, pending.ErrNonce:
		return CodeInvalidNonce
	case mutation.ErrDuplicateKey, mutation.ErrEmptyMutation, mutation.ErrChainID:
		return CodeInvalidMutation
	case mutation.ErrOutOfGas, unit.ErrOverflow:
		return CodeOutOfGas
	case ErrWrongState:
		return CodeWrongState
	default:
		return CodeInternal
	}
}
