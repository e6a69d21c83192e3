// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package baseapp

import (
	"strings"

	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtcrypto "github.com/cometbft/cometbft/proto/tendermint/crypto"
	"github.com/iotexproject/go-pkgs/hash"

	"github.com/dbpunk-labs/db3/state/factory"
)

// query paths
const (
	// QueryKV reads the key in data from the namespace following the prefix
	QueryKV = "/kv/"
	// QueryAccount reads the account of the 20-byte address in data
	QueryAccount = "/account"
	// QueryBill reads the bill of the height and id in data, 8 bytes each in big endian
	QueryBill = "/bill"
	// QueryNodeState reads the cumulative node state
	QueryNodeState = "/nodestate"

	// ProofOpIAVL is the proof op type of an ics23 iavl commitment proof
	ProofOpIAVL = "ics23:iavl"
)

// Query reads the state of the last committed block
func (app *Application) Query(req abcitypes.RequestQuery) abcitypes.ResponseQuery {
	app.stateMu.Lock()
	defer app.stateMu.Unlock()

	height := app.last.Height
	if req.Height != 0 && req.Height != height {
		return badQuery("only the last committed height is served")
	}
	var key []byte
	switch {
	case strings.HasPrefix(req.Path, QueryKV):
		ns := req.Path[len(QueryKV):]
		if ns == "" {
			return badQuery("empty namespace")
		}
		key = factory.DataKey([]byte(ns), req.Data)
	case req.Path == QueryAccount:
		if len(req.Data) != len(hash.Hash160{}) {
			return badQuery("address should be 20 bytes")
		}
		key = factory.AccountKey(hash.BytesToHash160(req.Data))
	case req.Path == QueryBill:
		if len(req.Data) != 16 {
			return badQuery("bill key should be 16 bytes")
		}
		key = append([]byte{factory.BillPrefix}, req.Data...)
	case req.Path == QueryNodeState:
		return abcitypes.ResponseQuery{
			Code:   CodeOK,
			Value:  app.nodeState.Serialize(),
			Height: height,
		}
	default:
		return badQuery("unknown path " + req.Path)
	}

	value, err := app.sf.Get(key)
	if err != nil {
		return abcitypes.ResponseQuery{Code: CodeInternal, Log: reason(err)}
	}
	resp := abcitypes.ResponseQuery{
		Code:   CodeOK,
		Key:    req.Data,
		Value:  value,
		Height: height,
	}
	if value == nil {
		resp.Log = "does not exist"
	}
	if req.Prove {
		proof, err := app.sf.Proof(key)
		if err != nil {
			return abcitypes.ResponseQuery{Code: CodeInternal, Log: reason(err)}
		}
		resp.ProofOps = &cmtcrypto.ProofOps{
			Ops: []cmtcrypto.ProofOp{{Type: ProofOpIAVL, Key: key, Data: proof}},
		}
	}
	return resp
}

func badQuery(log string) abcitypes.ResponseQuery {
	return abcitypes.ResponseQuery{Code: CodeBadQuery, Log: log}
}
