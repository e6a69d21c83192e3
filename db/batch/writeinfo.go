// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package batch

import (
	"bytes"
	"fmt"
)

// WriteType is the kind of a staged write
type WriteType uint8

const (
	// Put writes a value under a key
	Put WriteType = iota
	// Delete removes a key
	Delete
)

func (t WriteType) String() string {
	switch t {
	case Put:
		return "put"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

// WriteInfo is one staged write. Key and value are copied when staged, so callers may reuse
// their buffers afterwards.
type WriteInfo struct {
	writeType WriteType
	namespace string
	key       []byte
	value     []byte
	errMsg    string
}

func newWriteInfo(t WriteType, namespace string, key, value []byte, errorFormat string, errorArgs []interface{}) *WriteInfo {
	wi := &WriteInfo{
		writeType: t,
		namespace: namespace,
		key:       bytes.Clone(key),
		value:     bytes.Clone(value),
	}
	if errorFormat != "" {
		wi.errMsg = fmt.Sprintf(errorFormat, errorArgs...)
	} else {
		wi.errMsg = fmt.Sprintf("failed to %s %s/%x", t, namespace, key)
	}
	return wi
}

// Namespace returns the namespace of the write
func (wi *WriteInfo) Namespace() string { return wi.namespace }

// WriteType returns the kind of the write
func (wi *WriteInfo) WriteType() WriteType { return wi.writeType }

// Key returns the staged key, it must not be modified
func (wi *WriteInfo) Key() []byte { return wi.key }

// Value returns the staged value, nil for a delete
func (wi *WriteInfo) Value() []byte { return wi.value }

// Error returns the message a failed write is wrapped with
func (wi *WriteInfo) Error() string { return wi.errMsg }
