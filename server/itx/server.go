// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package itx

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"runtime"

	abciserver "github.com/cometbft/cometbft/abci/server"
	"github.com/cometbft/cometbft/libs/service"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/dbpunk-labs/db3/baseapp"
	"github.com/dbpunk-labs/db3/config"
	"github.com/dbpunk-labs/db3/db"
	"github.com/dbpunk-labs/db3/pkg/lifecycle"
	"github.com/dbpunk-labs/db3/pkg/log"
	"github.com/dbpunk-labs/db3/pkg/probe"
	"github.com/dbpunk-labs/db3/pkg/routine"
	"github.com/dbpunk-labs/db3/pkg/util/httputil"
	"github.com/dbpunk-labs/db3/state/factory"
)

// Server is the db3 node instance containing all components.
type Server struct {
	cfg     config.Config
	dao     db.KVStore
	sf      factory.Factory
	app     *baseapp.Application
	abciSvr service.Service
	lc      lifecycle.Lifecycle
}

// NewServer creates a new server
func NewServer(cfg config.Config, opts ...baseapp.Option) (*Server, error) {
	dao, err := db.CreateKVStore(cfg.DB.Meta, cfg.DB.MetaDBPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create meta db")
	}
	sf := factory.NewFactory(cfg.DB.State)
	app := baseapp.New(cfg.Chain, sf, dao, opts...)
	abciSvr, err := abciserver.NewServer(cfg.ABCI.Address, cfg.ABCI.Transport, app)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create abci server")
	}
	abciSvr.SetLogger(NewCometLogger(log.Logger("abci")))

	svr := &Server{
		cfg:     cfg,
		dao:     dao,
		sf:      sf,
		app:     app,
		abciSvr: abciSvr,
	}
	// the app loads its state from both stores
	svr.lc.AddModels(dao, sf, app)
	return svr, nil
}

// Start starts the stores and the application, then serves ABCI
func (s *Server) Start(ctx context.Context) error {
	if err := s.lc.OnStart(ctx); err != nil {
		return errors.Wrap(err, "error when starting application")
	}
	if err := s.abciSvr.Start(); err != nil {
		return errors.Wrap(err, "error when starting abci server")
	}
	log.L().Info("Serving ABCI.",
		zap.String("address", s.cfg.ABCI.Address),
		zap.String("transport", s.cfg.ABCI.Transport))
	return nil
}

// Stop stops serving ABCI, then the application and the stores
func (s *Server) Stop(ctx context.Context) error {
	if s.abciSvr.IsRunning() {
		if err := s.abciSvr.Stop(); err != nil {
			return errors.Wrap(err, "error when stopping abci server")
		}
	}
	if err := s.lc.OnStop(ctx); err != nil {
		return errors.Wrap(err, "error when stopping application")
	}
	return nil
}

// App returns the ABCI application
func (s *Server) App() *baseapp.Application {
	return s.app
}

// StartServer starts a node server and blocks until ctx is done
func StartServer(ctx context.Context, svr *Server, probeSvr *probe.Server, cfg config.Config) {
	if err := svr.Start(ctx); err != nil {
		log.L().Fatal("Failed to start server.", zap.Error(err))
		return
	}
	probeSvr.Ready()

	if cfg.System.HeartbeatInterval > 0 {
		task := routine.NewRecurringTask(NewHeartbeatHandler(svr).Log, cfg.System.HeartbeatInterval)
		if err := task.Start(ctx); err != nil {
			log.L().Panic("Failed to start heartbeat routine.", zap.Error(err))
		}
		defer func() {
			if err := task.Stop(ctx); err != nil {
				log.L().Panic("Failed to stop heartbeat routine.", zap.Error(err))
			}
		}()
	}

	var adminserv *http.Server
	if cfg.System.HTTPAdminPort > 0 {
		mux := http.NewServeMux()
		log.RegisterLevelConfigMux(mux)
		mux.Handle("/debug/pprof/", http.HandlerFunc(pprof.Index))
		mux.Handle("/debug/pprof/cmdline", http.HandlerFunc(pprof.Cmdline))
		mux.Handle("/debug/pprof/profile", http.HandlerFunc(pprof.Profile))
		mux.Handle("/debug/pprof/symbol", http.HandlerFunc(pprof.Symbol))
		mux.Handle("/debug/pprof/trace", http.HandlerFunc(pprof.Trace))

		port := fmt.Sprintf(":%d", cfg.System.HTTPAdminPort)
		adminserv = httputil.NewServer(port, otelhttp.NewHandler(mux, "admin"))
		go func() {
			runtime.SetMutexProfileFraction(1)
			runtime.SetBlockProfileRate(1)
			ln, err := httputil.LimitListener(adminserv.Addr)
			if err != nil {
				log.L().Error("Error when listen to admin port.", zap.Error(err))
				return
			}
			if err := adminserv.Serve(ln); err != nil && err != http.ErrServerClosed {
				log.L().Error("Error when serving admin requests.", zap.Error(err))
			}
		}()
	}

	<-ctx.Done()
	probeSvr.NotReady()
	// ctx is done, the shutdowns get their own
	stopCtx := context.Background()
	if adminserv != nil {
		if err := adminserv.Shutdown(stopCtx); err != nil {
			log.L().Error("Error when stopping admin server.", zap.Error(err))
		}
	}
	if err := svr.Stop(stopCtx); err != nil {
		log.L().Panic("Failed to stop server.", zap.Error(err))
	}
}
