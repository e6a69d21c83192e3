// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package state

import (
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	_nodeStorageBytes protowire.Number = 1
	_nodeMutations    protowire.Number = 2
)

// NodeState holds counters of everything committed by the node
type NodeState struct {
	TotalStorageBytes uint64
	TotalMutations    uint64
}

// Add returns the sum of two node states
func (ns NodeState) Add(delta NodeState) NodeState {
	return NodeState{
		TotalStorageBytes: ns.TotalStorageBytes + delta.TotalStorageBytes,
		TotalMutations:    ns.TotalMutations + delta.TotalMutations,
	}
}

// Serialize serializes node state into bytes
func (ns *NodeState) Serialize() []byte {
	var b []byte
	b = appendVarint(b, _nodeStorageBytes, ns.TotalStorageBytes)
	return appendVarint(b, _nodeMutations, ns.TotalMutations)
}

// Deserialize deserializes bytes into node state
func (ns *NodeState) Deserialize(buf []byte) error {
	*ns = NodeState{}
	r := &fieldReader{b: buf}
	for num, typ, ok := r.next(); ok; num, typ, ok = r.next() {
		switch num {
		case _nodeStorageBytes:
			ns.TotalStorageBytes = r.varint(typ)
		case _nodeMutations:
			ns.TotalMutations = r.varint(typ)
		default:
			r.skip(num, typ)
		}
	}
	return r.err
}
