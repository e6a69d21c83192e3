// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dbpunk-labs/db3/config"
	"github.com/dbpunk-labs/db3/pkg/log"
	"github.com/dbpunk-labs/db3/pkg/probe"
	"github.com/dbpunk-labs/db3/pkg/tracer"
	"github.com/dbpunk-labs/db3/server/itx"
)

func newStartCmd() *cobra.Command {
	var configPaths []string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the node and serve ABCI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return start(cmd.Context(), configPaths)
		},
	}
	cmd.Flags().StringSliceVar(&configPaths, "config-path", nil, "config files, later files override earlier ones")
	return cmd
}

func start(ctx context.Context, configPaths []string) error {
	cfg, err := config.New(configPaths)
	if err != nil {
		return err
	}
	if err := log.InitLoggers(cfg.Log, cfg.SubLogs); err != nil {
		return errors.Wrap(err, "failed to init loggers")
	}
	defer log.Sync()

	tp, err := tracer.NewProviderFromConfig(cfg.Tracer)
	if err != nil {
		return errors.Wrap(err, "failed to init tracer")
	}
	if tp != nil {
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.L().Warn("Failed to shutdown tracer.", zap.Error(err))
			}
		}()
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svr, err := itx.NewServer(cfg)
	if err != nil {
		return err
	}
	probeSvr := probe.New(cfg.System.HTTPStatsPort, probe.WithReadinessCheck(svr.App().Err))
	if err := probeSvr.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start probe server")
	}
	defer func() {
		if err := probeSvr.Stop(context.Background()); err != nil {
			log.L().Warn("Failed to stop probe server.", zap.Error(err))
		}
	}()

	log.L().Info("Starting db3 node.",
		zap.String("chainID", cfg.Chain.ID),
		zap.String("network", cfg.Chain.Network))
	itx.StartServer(ctx, svr, probeSvr, cfg)
	return nil
}
