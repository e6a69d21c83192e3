// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package baseapp

import (
	"context"
	"path/filepath"
	"testing"

	abcitypes "github.com/cometbft/cometbft/abci/types"
	ics23 "github.com/cosmos/ics23/go"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"

	"github.com/dbpunk-labs/db3/config"
	"github.com/dbpunk-labs/db3/db"
	"github.com/dbpunk-labs/db3/pkg/unit"
	"github.com/dbpunk-labs/db3/state"
	"github.com/dbpunk-labs/db3/state/factory"
	"github.com/dbpunk-labs/db3/test/mock/mock_factory"
)

func TestQuery(t *testing.T) {
	r := require.New(t)
	app := newTestApp(t, WithDefaultGasPrice(unit.NewTai(3)))
	sk := newKey(t)
	appHash := app.block(t, 1, insertTx(t, sk, 7, "k1", "v1"))

	t.Run("kv with proof", func(t *testing.T) {
		resp := app.Query(abcitypes.RequestQuery{Path: QueryKV + "t", Data: []byte("k1"), Prove: true})
		r.Equal(CodeOK, resp.Code)
		r.Equal([]byte("v1"), resp.Value)
		r.EqualValues(1, resp.Height)
		r.Len(resp.ProofOps.Ops, 1)
		op := resp.ProofOps.Ops[0]
		r.Equal(ProofOpIAVL, op.Type)
		proof := &ics23.CommitmentProof{}
		r.NoError(proof.Unmarshal(op.Data))
		r.True(ics23.VerifyMembership(ics23.IavlSpec, appHash, proof, op.Key, []byte("v1")))
	})
	t.Run("absent kv", func(t *testing.T) {
		resp := app.Query(abcitypes.RequestQuery{Path: QueryKV + "other", Data: []byte("k1")})
		r.Equal(CodeOK, resp.Code)
		r.Nil(resp.Value)
		r.Nil(resp.ProofOps)
	})
	t.Run("account", func(t *testing.T) {
		addr := sk.Account().Address
		resp := app.Query(abcitypes.RequestQuery{Path: QueryAccount, Data: addr[:]})
		r.Equal(CodeOK, resp.Code)
		var account state.Account
		r.NoError(account.Deserialize(resp.Value))
		r.EqualValues(7, account.Nonce)
	})
	t.Run("bill", func(t *testing.T) {
		resp := app.Query(abcitypes.RequestQuery{Path: QueryBill, Data: state.BillKey(1, 1)})
		r.Equal(CodeOK, resp.Code)
		var bill state.Bill
		r.NoError(bill.Deserialize(resp.Value))
		r.Equal(unit.NewTai(3450), bill.GasFee)
		r.EqualValues(1, bill.BlockHeight)
		r.EqualValues(1, bill.BillID)
		r.Equal(state.BillForMutation, bill.BillType)
		r.EqualValues(_blockTime.Unix(), bill.Time)
		r.Equal(sk.Account().Address, bill.Owner.Address)
	})
	t.Run("node state", func(t *testing.T) {
		resp := app.Query(abcitypes.RequestQuery{Path: QueryNodeState})
		r.Equal(CodeOK, resp.Code)
		var ns state.NodeState
		r.NoError(ns.Deserialize(resp.Value))
		r.Equal(app.NodeState(), ns)
	})
	t.Run("bad queries", func(t *testing.T) {
		for _, req := range []abcitypes.RequestQuery{
			{Path: "/unknown"},
			{Path: QueryKV},
			{Path: QueryAccount, Data: []byte{1, 2}},
			{Path: QueryBill, Data: []byte{1}},
			{Path: QueryKV + "t", Data: []byte("k1"), Height: 5},
		} {
			r.Equal(CodeBadQuery, app.Query(req).Code, req.Path)
		}
	})
}

func TestRestart(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()
	dir := t.TempDir()
	open := func() (factory.Factory, db.KVStore) {
		sf := factory.NewFactory(factory.Config{DBPath: filepath.Join(dir, "state"), CacheSize: 100})
		r.NoError(sf.Start(ctx))
		cfg := db.DefaultConfig
		cfg.DbPath = filepath.Join(dir, "meta.db")
		dao := db.NewBoltDB(cfg)
		r.NoError(dao.Start(ctx))
		return sf, dao
	}
	closeAll := func(sf factory.Factory, dao db.KVStore) {
		r.NoError(sf.Stop(ctx))
		r.NoError(dao.Stop(ctx))
	}

	sf, dao := open()
	app := startTestApp(t, sf, dao)
	sk := newKey(t)
	app.block(t, 1, insertTx(t, sk, 1, "k1", "v1"))
	appHash := app.block(t, 2, insertTx(t, sk, 2, "k2", "v2"))
	app.block(t, 3)
	last := app.LastBlock()
	nodeState := app.NodeState()
	closeAll(sf, dao)

	sf, dao = open()
	app = startTestApp(t, sf, dao)
	r.Equal(last, app.LastBlock())
	r.Equal(nodeState, app.NodeState())
	info := app.Info(abcitypes.RequestInfo{})
	r.EqualValues(3, info.LastBlockHeight)
	r.Equal(appHash, info.LastBlockAppHash)
	r.Equal(CodeInvalidNonce, app.check(insertTx(t, sk, 2, "k", "v")).Code)

	// a version saved without its block is discarded
	_, err := sf.Update(func(sw factory.StateWriter) error {
		return sw.ApplyBatch([]factory.Entry{factory.Put(factory.DataKey([]byte("t"), []byte("k3")), []byte("v3"))})
	})
	r.NoError(err)
	closeAll(sf, dao)

	sf, dao = open()
	app = startTestApp(t, sf, dao)
	r.Equal(last.AppHash, sf.RootHash())
	r.Nil(app.get(t, "t", "k3"))
	r.Equal(appHash, app.block(t, 4))
	closeAll(sf, dao)
}

func TestStoreFailureIsFatal(t *testing.T) {
	r := require.New(t)
	ctrl := gomock.NewController(t)
	sf := mock_factory.NewMockFactory(ctrl)
	root := hash.Hash256b([]byte("root"))
	sf.EXPECT().RootHash().Return(root).AnyTimes()
	sf.EXPECT().Version().Return(int64(0)).AnyTimes()
	sf.EXPECT().View(gomock.Any()).Return(nil).AnyTimes()
	sf.EXPECT().Update(gomock.Any()).Return(hash.ZeroHash256, errors.Wrap(factory.ErrStore, "disk full")).Times(1)

	dao := db.NewMemKVStore()
	app := startTestApp(t, sf, dao)
	app.beginBlock(1)
	r.Equal(CodeOK, app.deliver(insertTx(t, newKey(t), 1, "k", "v")).Code)
	r.Nil(app.Commit().Data)
	r.Len(app.fatals, 1)
	r.Equal(factory.ErrStore, errors.Cause(app.fatals[0]))

	// nothing of the block is kept
	r.Zero(app.LastBlock().Height)
	r.Equal(root, app.LastBlock().AppHash)
	r.Zero(app.NodeState().TotalMutations)
	_, err := dao.Get(_metaNS, _lastKey)
	r.Equal(db.ErrNotExist, errors.Cause(err))
	app.beginBlock(2)
	r.Len(app.fatals, 1)
}

func TestStoreReadFailure(t *testing.T) {
	r := require.New(t)
	ctrl := gomock.NewController(t)
	sf := mock_factory.NewMockFactory(ctrl)
	sf.EXPECT().RootHash().Return(hash.ZeroHash256).AnyTimes()
	sf.EXPECT().Version().Return(int64(0)).AnyTimes()
	sf.EXPECT().View(gomock.Any()).Return(errors.Wrap(factory.ErrStore, "io")).AnyTimes()

	app := startTestApp(t, sf, db.NewMemKVStore())
	tx := insertTx(t, newKey(t), 1, "k", "v")
	r.Equal(CodeInternal, app.check(tx).Code)
	r.Empty(app.fatals)
	app.beginBlock(1)
	r.Equal(CodeInternal, app.deliver(tx).Code)
	r.Len(app.fatals, 1)
}

func TestStartRejectsStoreBehindMeta(t *testing.T) {
	r := require.New(t)
	app := newTestApp(t)
	app.block(t, 1, insertTx(t, newKey(t), 1, "k", "v"))

	ctrl := gomock.NewController(t)
	sf := mock_factory.NewMockFactory(ctrl)
	sf.EXPECT().RootHash().Return(hash.ZeroHash256).AnyTimes()
	sf.EXPECT().Version().Return(int64(0)).AnyTimes()
	restarted := New(config.Default.Chain, sf, app.dao)
	err := restarted.Start(context.Background())
	r.Equal(factory.ErrStore, errors.Cause(err))
}

func TestCheckTxDuringCommit(t *testing.T) {
	r := require.New(t)
	app := newTestApp(t)
	sk := newKey(t)
	txs := make([][]byte, 20)
	for i := range txs {
		txs[i] = insertTx(t, sk, uint64(i+1), "k", string(rune('a'+i)))
	}

	var (
		g    errgroup.Group
		stop = make(chan struct{})
	)
	for i := 0; i < 4; i++ {
		g.Go(func() error {
			for {
				select {
				case <-stop:
					return nil
				default:
				}
				for _, tx := range txs {
					if code := app.check(tx).Code; code != CodeOK && code != CodeInvalidNonce {
						return errors.Errorf("unexpected code %d", code)
					}
				}
			}
		})
	}
	for h := range txs {
		app.block(t, int64(h+1), txs[h])
	}
	close(stop)
	r.NoError(g.Wait())

	r.EqualValues(len(txs), app.LastBlock().Height)
	r.Equal([]byte{byte('a' + len(txs) - 1)}, app.get(t, "t", "k"))
	for _, tx := range txs {
		r.Equal(CodeInvalidNonce, app.check(tx).Code)
	}
}
