// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package baseapp

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dbpunk-labs/db3/state"
)

var (
	_txMtc = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db3_abci_tx_metrics",
			Help: "ABCI transaction results.",
		},
		[]string{"method", "result"},
	)
	_heightMtc = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "db3_block_height",
		Help: "Height of the last committed block.",
	})
	_nodeStateMtc = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db3_node_state",
			Help: "Cumulative node state.",
		},
		[]string{"type"},
	)
	_commitMtc = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "db3_commit_duration_seconds",
		Help:    "Duration of block commits.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	})
)

func init() {
	prometheus.MustRegister(_txMtc)
	prometheus.MustRegister(_heightMtc)
	prometheus.MustRegister(_nodeStateMtc)
	prometheus.MustRegister(_commitMtc)
}

func observeTx(method string, code uint32) {
	result := "ok"
	if code != CodeOK {
		result = codeName(code)
	}
	_txMtc.WithLabelValues(method, result).Inc()
}

func observeCommit(height int64, ns state.NodeState) {
	_heightMtc.Set(float64(height))
	_nodeStateMtc.WithLabelValues("storage_bytes").Set(float64(ns.TotalStorageBytes))
	_nodeStateMtc.WithLabelValues("mutations").Set(float64(ns.TotalMutations))
}

func codeName(code uint32) string {
	switch code {
	case CodeBadTx:
		return "bad_tx"
	case CodeInvalidNonce:
		return "invalid_nonce"
	case CodeInvalidMutation:
		return "invalid_mutation"
	case CodeOutOfGas:
		return "out_of_gas"
	case CodeWrongState:
		return "wrong_state"
	default:
		return "internal"
	}
}
