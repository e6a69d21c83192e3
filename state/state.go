// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package state

import (
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

var (
	// ErrFailedToMarshalState is the error that the state marshaling is failed
	ErrFailedToMarshalState = errors.New("failed to marshal state")
	// ErrFailedToUnmarshalState is the error that the state unmarshaling is failed
	ErrFailedToUnmarshalState = errors.New("failed to unmarshal state")
)

// fieldReader walks the top level fields of a protobuf encoded message
type fieldReader struct {
	b   []byte
	err error
}

// next returns the next field number and wire type, false at the end or on error
func (r *fieldReader) next() (protowire.Number, protowire.Type, bool) {
	if r.err != nil || len(r.b) == 0 {
		return 0, 0, false
	}
	num, typ, n := protowire.ConsumeTag(r.b)
	if n < 0 {
		r.fail(n)
		return 0, 0, false
	}
	r.b = r.b[n:]
	return num, typ, true
}

func (r *fieldReader) varint(typ protowire.Type) uint64 {
	if typ != protowire.VarintType {
		r.err = errors.Wrapf(ErrFailedToUnmarshalState, "wire type %d, expecting varint", typ)
		return 0
	}
	v, n := protowire.ConsumeVarint(r.b)
	if n < 0 {
		r.fail(n)
		return 0
	}
	r.b = r.b[n:]
	return v
}

func (r *fieldReader) bytes(typ protowire.Type) []byte {
	if typ != protowire.BytesType {
		r.err = errors.Wrapf(ErrFailedToUnmarshalState, "wire type %d, expecting bytes", typ)
		return nil
	}
	v, n := protowire.ConsumeBytes(r.b)
	if n < 0 {
		r.fail(n)
		return nil
	}
	r.b = r.b[n:]
	return v
}

func (r *fieldReader) skip(num protowire.Number, typ protowire.Type) {
	n := protowire.ConsumeFieldValue(num, typ, r.b)
	if n < 0 {
		r.fail(n)
		return
	}
	r.b = r.b[n:]
}

func (r *fieldReader) fail(n int) {
	r.err = errors.Wrap(ErrFailedToUnmarshalState, protowire.ParseError(n).Error())
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}
