// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package baseapp

import (
	"encoding/hex"
	"math"
	"strconv"

	abcitypes "github.com/cometbft/cometbft/abci/types"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dbpunk-labs/db3/crypto"
	"github.com/dbpunk-labs/db3/mutation"
	"github.com/dbpunk-labs/db3/pending"
	"github.com/dbpunk-labs/db3/pkg/log"
	"github.com/dbpunk-labs/db3/pkg/unit"
	"github.com/dbpunk-labs/db3/state"
	"github.com/dbpunk-labs/db3/state/factory"
)

const (
	runTxModeCheck   runTxMode = iota // Check a transaction
	runTxModeReCheck                  // Recheck a (pending) transaction after a commit
	runTxModeDeliver                  // Deliver a transaction
)

type (
	// Enum mode for app.runTx
	runTxMode uint8

	// verifiedTx is a transaction that passed every check of its mode
	verifiedTx struct {
		mutation *mutation.Mutation
		id       hash.Hash256
		signer   crypto.AccountID
		gas      uint64
		fee      unit.Unit
	}
)

func (m runTxMode) String() string {
	switch m {
	case runTxModeCheck:
		return "CheckTx"
	case runTxModeReCheck:
		return "ReCheckTx"
	default:
		return "DeliverTx"
	}
}

// CheckTx validates a transaction for the mempool. It reads the committed state only.
func (app *Application) CheckTx(req abcitypes.RequestCheckTx) abcitypes.ResponseCheckTx {
	mode := runTxModeCheck
	if req.Type == abcitypes.CheckTxType_Recheck {
		mode = runTxModeReCheck
	}
	vtx, err := app.runTx(mode, req.Tx)
	code := codeOf(err)
	observeTx(mode.String(), code)
	if err != nil {
		return abcitypes.ResponseCheckTx{Code: code, Log: reason(err)}
	}
	return abcitypes.ResponseCheckTx{
		Code:      CodeOK,
		GasWanted: toInt64(vtx.gas),
		Sender:    vtx.signer.String(),
		Events:    []abcitypes.Event{mutationEvent(vtx, nil)},
	}
}

// DeliverTx verifies a transaction of the open block and buffers it until Commit
func (app *Application) DeliverTx(req abcitypes.RequestDeliverTx) (resp abcitypes.ResponseDeliverTx) {
	defer func() {
		if r := recover(); r != nil {
			log.L().Error("Recovered from a DeliverTx panic.", zap.Any("panic", r))
			resp = abcitypes.ResponseDeliverTx{Code: CodeInternal, Log: "internal error"}
		}
		observeTx(runTxModeDeliver.String(), resp.Code)
	}()

	app.stateMu.Lock()
	defer app.stateMu.Unlock()

	if app.halted {
		return abcitypes.ResponseDeliverTx{Code: CodeWrongState, Log: ErrHalted.Error()}
	}
	if !app.open {
		return abcitypes.ResponseDeliverTx{Code: CodeWrongState, Log: "no open block"}
	}
	vtx, err := app.runTx(runTxModeDeliver, req.Tx)
	if errors.Cause(err) == factory.ErrStore {
		app.fail(errors.Wrap(err, "failed to read the signer nonce"))
		return abcitypes.ResponseDeliverTx{Code: CodeInternal, Log: reason(err)}
	}
	if err != nil {
		return abcitypes.ResponseDeliverTx{Code: codeOf(err), Log: reason(err)}
	}
	// the counter only moves once the entry is buffered
	bill := &state.Bill{
		GasFee:      vtx.fee,
		BlockHeight: uint64(app.current.Height),
		BillID:      app.current.BillIDCounter + 1,
		BillType:    state.BillForMutation,
		Time:        app.current.BlockTime,
		TargetID:    vtx.id,
		Owner:       vtx.signer,
	}
	if err := app.buffer.Push(pending.Entry{
		Signer:     vtx.signer,
		Mutation:   vtx.mutation,
		MutationID: vtx.id,
		Bill:       bill,
		Size:       vtx.mutation.PayloadSize(),
	}); err != nil {
		return abcitypes.ResponseDeliverTx{Code: codeOf(err), Log: reason(err)}
	}
	app.current.BillIDCounter = bill.BillID
	gas := toInt64(vtx.gas)
	return abcitypes.ResponseDeliverTx{
		Code:      CodeOK,
		GasWanted: gas,
		GasUsed:   gas,
		Events:    []abcitypes.Event{mutationEvent(vtx, bill)},
	}
}

// runTx decodes, verifies and prices a transaction, then checks its nonce. The committed nonce
// is read under the store read guard. Deliver also checks the nonces pending in the open block.
func (app *Application) runTx(mode runTxMode, tx []byte) (*verifiedTx, error) {
	env, err := mutation.DecodeTx(tx, app.limits)
	if err != nil {
		return nil, err
	}
	m, err := mutation.DecodeMutation(env.MutationBytes, app.limits)
	if err != nil {
		return nil, err
	}
	signer, err := env.Signer()
	if err != nil {
		return nil, err
	}
	if err := m.Validate(app.network); err != nil {
		return nil, err
	}
	gas, err := mutation.CheckGasLimit(m)
	if err != nil {
		return nil, err
	}
	fee, err := mutation.Fee(m, app.defaultGasPrice)
	if err != nil {
		return nil, err
	}
	committed, err := app.committedNonce(signer.Address)
	if err != nil {
		return nil, err
	}
	if m.Nonce <= committed {
		return nil, errors.Wrapf(ErrInvalidNonce, "nonce %d, committed %d", m.Nonce, committed)
	}
	if mode == runTxModeDeliver {
		if last, ok := app.buffer.PendingNonce(signer.Address); ok && m.Nonce <= last {
			return nil, errors.Wrapf(pending.ErrNonce, "nonce %d, pending %d", m.Nonce, last)
		}
	}
	return &verifiedTx{
		mutation: m,
		id:       m.ID(),
		signer:   signer,
		gas:      gas,
		fee:      fee,
	}, nil
}

func (app *Application) committedNonce(addr hash.Hash160) (uint64, error) {
	var account state.Account
	err := app.sf.View(func(sr factory.StateReader) error {
		b, err := sr.Get(factory.AccountKey(addr))
		if err != nil || b == nil {
			return err
		}
		return account.Deserialize(b)
	})
	return account.Nonce, err
}

// mutationEvent describes a verified mutation. bill is nil before the mutation is delivered.
func mutationEvent(vtx *verifiedTx, bill *state.Bill) abcitypes.Event {
	attrs := []abcitypes.EventAttribute{
		{Key: "id", Value: hex.EncodeToString(vtx.id[:]), Index: true},
		{Key: "signer", Value: vtx.signer.String(), Index: true},
		{Key: "namespace", Value: hex.EncodeToString(vtx.mutation.Namespace)},
		{Key: "nonce", Value: strconv.FormatUint(vtx.mutation.Nonce, 10)},
	}
	if bill != nil {
		attrs = append(attrs, abcitypes.EventAttribute{Key: "bill_id", Value: strconv.FormatUint(bill.BillID, 10)})
	}
	attrs = append(attrs, abcitypes.EventAttribute{Key: "fee", Value: vtx.fee.String()})
	return abcitypes.Event{Type: "mutation", Attributes: attrs}
}

// reason is the short log of a rejection
func reason(err error) string {
	return errors.Cause(err).Error()
}

func toInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
