// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package baseapp

import (
	"context"
	"time"

	abcitypes "github.com/cometbft/cometbft/abci/types"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/dbpunk-labs/db3/mutation"
	"github.com/dbpunk-labs/db3/pending"
	"github.com/dbpunk-labs/db3/pkg/log"
	"github.com/dbpunk-labs/db3/pkg/tracer"
	"github.com/dbpunk-labs/db3/state"
	"github.com/dbpunk-labs/db3/state/factory"
)

// BeginBlock opens the block following the last committed one
func (app *Application) BeginBlock(req abcitypes.RequestBeginBlock) abcitypes.ResponseBeginBlock {
	height := req.Header.Height
	_, span := tracer.NewSpan(context.Background(), "Application.BeginBlock")
	defer span.End()
	span.SetAttributes(attribute.Int64("height", height))

	app.stateMu.Lock()
	defer app.stateMu.Unlock()

	if app.halted {
		return abcitypes.ResponseBeginBlock{}
	}
	if app.open {
		app.fail(errors.Wrapf(ErrWrongState, "begin block %d while block %d is open", height, app.current.Height))
		return abcitypes.ResponseBeginBlock{}
	}
	if height != app.last.Height+1 {
		app.fail(errors.Wrapf(ErrHeightMismatch, "begin block %d after block %d", height, app.last.Height))
		return abcitypes.ResponseBeginBlock{}
	}
	app.current = state.BlockState{
		Height:    height,
		BlockTime: blockTime(req.Header.Time),
	}
	app.open = true
	return abcitypes.ResponseBeginBlock{}
}

// Commit applies the mutations of the open block to the state store and returns the new app hash.
// Either every mutation of the block is applied or none is.
func (app *Application) Commit() abcitypes.ResponseCommit {
	start := time.Now()
	_, span := tracer.NewSpan(context.Background(), "Application.Commit")
	defer span.End()

	app.stateMu.Lock()
	defer app.stateMu.Unlock()

	if app.halted {
		return abcitypes.ResponseCommit{}
	}
	if !app.open {
		app.fail(errors.Wrapf(ErrWrongState, "commit without an open block after block %d", app.last.Height))
		return abcitypes.ResponseCommit{}
	}
	span.SetAttributes(attribute.Int64("height", app.current.Height))

	entries := app.buffer.Drain()
	current := app.current
	current.AppHash = app.last.AppHash
	current.StoreVersion = app.last.StoreVersion
	var delta state.NodeState
	if len(entries) > 0 {
		root, err := app.sf.Update(func(sw factory.StateWriter) error {
			for i := range entries {
				if err := applyEntry(sw, &entries[i]); err != nil {
					return errors.Wrapf(err, "failed to apply mutation %x", entries[i].MutationID)
				}
			}
			return nil
		})
		if err != nil {
			app.fail(errors.Wrapf(err, "failed to commit block %d", current.Height))
			return abcitypes.ResponseCommit{}
		}
		current.AppHash = root
		current.StoreVersion = app.sf.Version()
		for i := range entries {
			delta.TotalStorageBytes += entries[i].Size
			delta.TotalMutations++
		}
	}
	nodeState := app.nodeState.Add(delta)
	if err := app.persistMeta(&current, &nodeState); err != nil {
		app.fail(errors.Wrapf(err, "failed to persist block %d", current.Height))
		return abcitypes.ResponseCommit{}
	}

	app.last = current
	app.current = state.BlockState{}
	app.open = false
	app.nodeState = nodeState
	observeCommit(current.Height, nodeState)
	_commitMtc.Observe(time.Since(start).Seconds())
	log.L().Debug("Committed block.",
		zap.Int64("height", current.Height),
		zap.Int("mutations", len(entries)),
		log.Hex("appHash", current.AppHash[:]))

	return abcitypes.ResponseCommit{
		Data:         append([]byte(nil), current.AppHash[:]...),
		RetainHeight: app.retainHeight(current.Height),
	}
}

// applyEntry writes the ops of a mutation, its bill and the signer's nonce, each as one batch
func applyEntry(sw factory.StateWriter, e *pending.Entry) error {
	ops := e.Mutation.SortedOps()
	writes := make([]factory.Entry, 0, len(ops))
	for _, op := range ops {
		key := factory.DataKey(e.Mutation.Namespace, op.Key)
		if op.Action == mutation.Delete {
			writes = append(writes, factory.Delete(key))
		} else {
			writes = append(writes, factory.Put(key, op.Value))
		}
	}
	if err := sw.ApplyBatch(writes); err != nil {
		return err
	}
	if err := sw.ApplyBatch([]factory.Entry{
		factory.Put(factory.BillKey(e.Bill.BlockHeight, e.Bill.BillID), e.Bill.Serialize()),
	}); err != nil {
		return err
	}
	account := state.Account{Nonce: e.Mutation.Nonce}
	return sw.ApplyBatch([]factory.Entry{
		factory.Put(factory.AccountKey(e.Signer.Address), account.Serialize()),
	})
}

func (app *Application) retainHeight(height int64) int64 {
	if app.retainBlocks == 0 || uint64(height) <= app.retainBlocks {
		return 0
	}
	return height - int64(app.retainBlocks) + 1
}

func blockTime(t time.Time) uint64 {
	if t.IsZero() || t.Unix() < 0 {
		return 0
	}
	return uint64(t.Unix())
}
