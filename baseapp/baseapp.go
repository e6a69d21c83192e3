// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package baseapp

import (
	"context"
	"sync"

	abcitypes "github.com/cometbft/cometbft/abci/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dbpunk-labs/db3/config"
	"github.com/dbpunk-labs/db3/db"
	"github.com/dbpunk-labs/db3/db/batch"
	"github.com/dbpunk-labs/db3/mutation"
	"github.com/dbpunk-labs/db3/pending"
	"github.com/dbpunk-labs/db3/pkg/log"
	"github.com/dbpunk-labs/db3/pkg/unit"
	"github.com/dbpunk-labs/db3/state"
	"github.com/dbpunk-labs/db3/state/factory"
)

const (
	// ProtocolVersion is the app version reported to the consensus engine
	ProtocolVersion uint64 = 1

	_appName = "db3"
	_metaNS  = "BlockState"
)

var (
	// Version is the software version, set at build time
	Version = "dev"

	_lastKey  = []byte("last")
	_stateKey = []byte("nodestate")
)

type (
	// Option sets an application option
	Option func(*Application)

	// Application is the ABCI application of a db3 storage node. Blocks move it from idle to
	// open on BeginBlock and back to idle on Commit.
	Application struct {
		abcitypes.BaseApplication

		chainID         string
		network         mutation.ChainID
		limits          mutation.Limits
		defaultGasPrice unit.Unit
		retainBlocks    uint64
		fatal           func(error)

		sf     factory.Factory
		dao    db.KVStore
		buffer *pending.Buffer

		// stateMu guards the block state. It is taken before any store guard.
		stateMu   sync.Mutex
		open      bool
		halted    bool
		last      state.BlockState
		current   state.BlockState
		nodeState state.NodeState
	}
)

// WithFatalHandler sets the handler of consensus failures. The default logs and exits.
func WithFatalHandler(fn func(error)) Option {
	return func(app *Application) {
		app.fatal = fn
	}
}

// WithDefaultGasPrice sets the price of mutations without a gas price
func WithDefaultGasPrice(price unit.Unit) Option {
	return func(app *Application) {
		app.defaultGasPrice = price
	}
}

// WithRetainBlocks sets the number of recent blocks the consensus engine keeps, 0 keeps all
func WithRetainBlocks(n uint64) Option {
	return func(app *Application) {
		app.retainBlocks = n
	}
}

// New creates an application over the state store sf and the meta store dao. Both must be
// started before the application.
func New(cfg config.Chain, sf factory.Factory, dao db.KVStore, opts ...Option) *Application {
	app := &Application{
		chainID:         cfg.ID,
		network:         cfg.NetworkID(),
		limits:          cfg.Limits,
		defaultGasPrice: cfg.GasPrice(),
		retainBlocks:    cfg.RetainBlocks,
		fatal: func(err error) {
			log.L().Fatal("Consensus failure.", zap.Error(err))
		},
		sf:     sf,
		dao:    dao,
		buffer: pending.NewBuffer(),
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Start loads the last committed block and brings the state store back to it
func (app *Application) Start(_ context.Context) error {
	app.stateMu.Lock()
	defer app.stateMu.Unlock()

	last, nodeState, err := app.loadMeta()
	switch errors.Cause(err) {
	case nil:
	case db.ErrNotExist:
		last = state.BlockState{
			AppHash:      app.sf.RootHash(),
			StoreVersion: app.sf.Version(),
		}
		log.L().Info("Starting a new chain.", log.Hex("appHash", last.AppHash[:]))
	default:
		return err
	}
	if v := app.sf.Version(); v > last.StoreVersion {
		log.L().Warn("State store is ahead of the last committed block.",
			zap.Int64("storeVersion", v),
			zap.Int64("committedVersion", last.StoreVersion))
		if err := app.sf.Rewind(last.StoreVersion); err != nil {
			return err
		}
	} else if v < last.StoreVersion {
		return errors.Wrapf(factory.ErrStore, "store version %d is behind committed version %d", v, last.StoreVersion)
	}
	if root := app.sf.RootHash(); root != last.AppHash {
		return errors.Wrapf(factory.ErrStore, "store root %x differs from committed app hash %x", root, last.AppHash)
	}
	app.last = last
	app.nodeState = nodeState
	app.current = state.BlockState{}
	app.open = false
	observeCommit(last.Height, nodeState)
	log.L().Info("Loaded last block.",
		zap.Int64("height", last.Height),
		zap.Uint64("mutations", nodeState.TotalMutations))
	return nil
}

// Stop stops the application
func (app *Application) Stop(_ context.Context) error { return nil }

// Info returns the last committed block
func (app *Application) Info(_ abcitypes.RequestInfo) abcitypes.ResponseInfo {
	app.stateMu.Lock()
	last := app.last
	app.stateMu.Unlock()

	resp := abcitypes.ResponseInfo{
		Data:            _appName,
		Version:         Version,
		AppVersion:      ProtocolVersion,
		LastBlockHeight: last.Height,
	}
	if last.Height > 0 {
		resp.LastBlockAppHash = append([]byte(nil), last.AppHash[:]...)
	}
	return resp
}

// InitChain checks the genesis chain id and adopts its initial height
func (app *Application) InitChain(req abcitypes.RequestInitChain) abcitypes.ResponseInitChain {
	app.stateMu.Lock()
	defer app.stateMu.Unlock()

	if app.halted {
		return abcitypes.ResponseInitChain{}
	}
	if app.chainID != "" && req.ChainId != app.chainID {
		app.fail(errors.Wrapf(ErrChainMismatch, "genesis chain %s, configured %s", req.ChainId, app.chainID))
		return abcitypes.ResponseInitChain{}
	}
	if app.open {
		app.fail(errors.Wrap(ErrWrongState, "init chain with an open block"))
		return abcitypes.ResponseInitChain{}
	}
	if app.last.Height == 0 && req.InitialHeight > 1 {
		app.last.Height = req.InitialHeight - 1
	}
	return abcitypes.ResponseInitChain{
		AppHash: append([]byte(nil), app.last.AppHash[:]...),
	}
}

// NodeState returns a snapshot of the cumulative node state
func (app *Application) NodeState() state.NodeState {
	app.stateMu.Lock()
	defer app.stateMu.Unlock()
	return app.nodeState
}

// LastBlock returns the last committed block state
func (app *Application) LastBlock() state.BlockState {
	app.stateMu.Lock()
	defer app.stateMu.Unlock()
	return app.last
}

// PendingMutations returns the number of mutations delivered in the open block
func (app *Application) PendingMutations() int { return app.buffer.Len() }

// Err returns ErrHalted once a consensus failure was reported
func (app *Application) Err() error {
	app.stateMu.Lock()
	defer app.stateMu.Unlock()
	if app.halted {
		return ErrHalted
	}
	return nil
}

// fail halts the application and reports err. stateMu must be held.
func (app *Application) fail(err error) {
	app.halted = true
	log.L().Error("Application halted.", zap.Error(err))
	app.fatal(err)
}

func (app *Application) loadMeta() (state.BlockState, state.NodeState, error) {
	var (
		last      state.BlockState
		nodeState state.NodeState
	)
	b, err := app.dao.Get(_metaNS, _lastKey)
	if err != nil {
		return last, nodeState, err
	}
	if err := last.Deserialize(b); err != nil {
		return last, nodeState, err
	}
	// the node state of an idle chain serializes to nothing
	b, err = app.dao.Get(_metaNS, _stateKey)
	if errors.Cause(err) == db.ErrNotExist {
		return last, nodeState, nil
	}
	if err != nil {
		return last, nodeState, err
	}
	if err := nodeState.Deserialize(b); err != nil {
		return last, nodeState, err
	}
	return last, nodeState, nil
}

func (app *Application) persistMeta(last *state.BlockState, nodeState *state.NodeState) error {
	b := batch.NewBatch()
	b.Put(_metaNS, _lastKey, last.Serialize(), "failed to put block state at %d", last.Height)
	b.Put(_metaNS, _stateKey, nodeState.Serialize(), "failed to put node state at %d", last.Height)
	return app.dao.WriteBatch(b)
}
