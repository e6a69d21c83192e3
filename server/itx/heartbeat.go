// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package itx

import (
	"github.com/mackerelio/go-osstat/memory"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/dbpunk-labs/db3/pkg/log"
)

var heartbeatMtc = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "db3_heartbeat_status",
		Help: "Node heartbeat status.",
	},
	[]string{"status_type"},
)

func init() {
	prometheus.MustRegister(heartbeatMtc)
}

// HeartbeatHandler is the handler to periodically log the system key metrics
type HeartbeatHandler struct {
	s *Server
}

// NewHeartbeatHandler instantiates a HeartbeatHandler instance
func NewHeartbeatHandler(s *Server) *HeartbeatHandler {
	return &HeartbeatHandler{s: s}
}

// Log executes the logging logic
func (h *HeartbeatHandler) Log() {
	app := h.s.App()
	last := app.LastBlock()
	nodeState := app.NodeState()
	pending := app.PendingMutations()
	halted := app.Err() != nil

	log.L().Info("Node status.",
		zap.Int64("blockHeight", last.Height),
		log.Hex("appHash", last.AppHash[:]),
		zap.Int("pendingMutations", pending),
		zap.Uint64("totalMutations", nodeState.TotalMutations),
		zap.Uint64("totalStorageBytes", nodeState.TotalStorageBytes),
		zap.Bool("halted", halted))

	heartbeatMtc.WithLabelValues("blockHeight").Set(float64(last.Height))
	heartbeatMtc.WithLabelValues("pendingMutations").Set(float64(pending))
	heartbeatMtc.WithLabelValues("storeVersion").Set(float64(last.StoreVersion))
	if halted {
		heartbeatMtc.WithLabelValues("halted").Set(1)
	} else {
		heartbeatMtc.WithLabelValues("halted").Set(0)
	}

	mem, err := memory.Get()
	if err != nil {
		log.L().Debug("Failed to read memory stats.", zap.Error(err))
		return
	}
	heartbeatMtc.WithLabelValues("memoryUsed").Set(float64(mem.Used))
	heartbeatMtc.WithLabelValues("memoryTotal").Set(float64(mem.Total))
}
