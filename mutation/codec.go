// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package mutation

import (
	"encoding/hex"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dbpunk-labs/db3/pkg/unit"
)

// field numbers of the wire schema
const (
	_envelopeSignature protowire.Number = 1
	_envelopePayload   protowire.Number = 2
	_envelopePublicKey protowire.Number = 3

	_mutationNamespace protowire.Number = 1
	_mutationKvPairs   protowire.Number = 2
	_mutationNonce     protowire.Number = 3
	_mutationChainID   protowire.Number = 4
	_mutationChainRole protowire.Number = 5
	_mutationGasPrice  protowire.Number = 6
	_mutationGas       protowire.Number = 7

	_kvKey    protowire.Number = 1
	_kvValue  protowire.Number = 2
	_kvAction protowire.Number = 3

	_unitType   protowire.Number = 1
	_unitAmount protowire.Number = 2
)

// Limits bounds the sizes accepted by the decoder. A zero field means no bound.
type Limits struct {
	MaxTxBytes        uint64 `yaml:"maxTxBytes"`
	MaxNamespaceBytes uint64 `yaml:"maxNamespaceBytes"`
	MaxKeyBytes       uint64 `yaml:"maxKeyBytes"`
	MaxValueBytes     uint64 `yaml:"maxValueBytes"`
	MaxOps            uint64 `yaml:"maxOps"`
}

// DefaultLimits are the decoder bounds of a node without configuration
var DefaultLimits = Limits{
	MaxTxBytes:        4 << 20,
	MaxNamespaceBytes: 128,
	MaxKeyBytes:       1 << 10,
	MaxValueBytes:     1 << 20,
	MaxOps:            1 << 10,
}

func exceeds(n int, limit uint64) bool {
	return limit > 0 && uint64(n) > limit
}

// SignedEnvelope is the unit received from clients, MutationBytes is exactly the signed message
type SignedEnvelope struct {
	Signature     []byte
	MutationBytes []byte
	PublicKey     []byte
}

// DecodeTx decodes a hex encoded envelope as carried by ABCI transactions
func DecodeTx(tx []byte, limits Limits) (*SignedEnvelope, error) {
	if exceeds(len(tx), limits.MaxTxBytes) {
		return nil, errors.Wrapf(ErrDecode, "tx of %d bytes exceeds %d", len(tx), limits.MaxTxBytes)
	}
	raw := make([]byte, hex.DecodedLen(len(tx)))
	if _, err := hex.Decode(raw, tx); err != nil {
		return nil, errors.Wrap(ErrDecode, err.Error())
	}
	return DecodeEnvelope(raw)
}

// DecodeEnvelope decodes a serialized envelope
func DecodeEnvelope(b []byte) (*SignedEnvelope, error) {
	env := &SignedEnvelope{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, wireError("envelope tag", n)
		}
		b = b[n:]
		switch num {
		case _envelopeSignature, _envelopePayload, _envelopePublicKey:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return nil, errors.Wrapf(err, "envelope field %d", num)
			}
			b = b[n:]
			switch num {
			case _envelopeSignature:
				env.Signature = v
			case _envelopePayload:
				env.MutationBytes = v
			default:
				env.PublicKey = v
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, wireError("envelope unknown field", n)
			}
			b = b[n:]
		}
	}
	if len(env.Signature) == 0 || len(env.MutationBytes) == 0 {
		return nil, errors.Wrap(ErrDecode, "envelope without signature or mutation")
	}
	return env, nil
}

// DecodeMutation decodes a serialized mutation, enforcing limits before each append
func DecodeMutation(b []byte, limits Limits) (*Mutation, error) {
	m := &Mutation{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, wireError("mutation tag", n)
		}
		b = b[n:]
		switch num {
		case _mutationNamespace:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return nil, errors.Wrap(err, "namespace")
			}
			if exceeds(len(v), limits.MaxNamespaceBytes) {
				return nil, errors.Wrapf(ErrDecode, "namespace of %d bytes", len(v))
			}
			m.Namespace = v
			b = b[n:]
		case _mutationKvPairs:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return nil, errors.Wrap(err, "kv pair")
			}
			if exceeds(len(m.Ops)+1, limits.MaxOps) {
				return nil, errors.Wrapf(ErrDecode, "more than %d ops", limits.MaxOps)
			}
			op, err := decodeKvOp(v, limits)
			if err != nil {
				return nil, err
			}
			m.Ops = append(m.Ops, op)
			b = b[n:]
		case _mutationNonce, _mutationChainID, _mutationChainRole, _mutationGas:
			v, n, err := consumeVarint(typ, b)
			if err != nil {
				return nil, errors.Wrapf(err, "mutation field %d", num)
			}
			b = b[n:]
			switch num {
			case _mutationNonce:
				m.Nonce = v
			case _mutationChainID:
				if v > uint64(DevNet) {
					return nil, errors.Wrapf(ErrDecode, "unknown chain id %d", v)
				}
				m.ChainID = ChainID(v)
			case _mutationChainRole:
				if v > uint64(DVMComputingChain) || !ChainRole(v).Valid() {
					return nil, errors.Wrapf(ErrDecode, "unknown chain role %d", v)
				}
				m.ChainRole = ChainRole(v)
			default:
				m.GasLimit = v
			}
		case _mutationGasPrice:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return nil, errors.Wrap(err, "gas price")
			}
			if m.GasPrice == nil {
				m.GasPrice = &unit.Unit{}
			}
			if err := decodeUnit(v, m.GasPrice); err != nil {
				return nil, err
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, wireError("mutation unknown field", n)
			}
			b = b[n:]
		}
	}
	return m, nil
}

func decodeKvOp(b []byte, limits Limits) (KvOp, error) {
	op := KvOp{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return KvOp{}, wireError("kv pair tag", n)
		}
		b = b[n:]
		switch num {
		case _kvKey:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return KvOp{}, errors.Wrap(err, "key")
			}
			if exceeds(len(v), limits.MaxKeyBytes) {
				return KvOp{}, errors.Wrapf(ErrDecode, "key of %d bytes", len(v))
			}
			op.Key = v
			b = b[n:]
		case _kvValue:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return KvOp{}, errors.Wrap(err, "value")
			}
			if exceeds(len(v), limits.MaxValueBytes) {
				return KvOp{}, errors.Wrapf(ErrDecode, "value of %d bytes", len(v))
			}
			op.Value = v
			b = b[n:]
		case _kvAction:
			v, n, err := consumeVarint(typ, b)
			if err != nil {
				return KvOp{}, errors.Wrap(err, "action")
			}
			if v > uint64(Delete) {
				return KvOp{}, errors.Wrapf(ErrDecode, "unknown action %d", v)
			}
			op.Action = Action(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return KvOp{}, wireError("kv pair unknown field", n)
			}
			b = b[n:]
		}
	}
	return op, nil
}

func decodeUnit(b []byte, u *unit.Unit) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return wireError("unit tag", n)
		}
		b = b[n:]
		switch num {
		case _unitType, _unitAmount:
			v, n, err := consumeVarint(typ, b)
			if err != nil {
				return errors.Wrapf(err, "unit field %d", num)
			}
			b = b[n:]
			if num == _unitAmount {
				u.Amount = v
				continue
			}
			if v > uint64(unit.Db3) {
				return errors.Wrapf(ErrDecode, "unknown unit type %d", v)
			}
			u.Kind = unit.Kind(v)
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return wireError("unit unknown field", n)
			}
			b = b[n:]
		}
	}
	return nil
}

func consumeBytes(typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, errors.Wrapf(ErrDecode, "wire type %d, expecting bytes", typ)
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, wireError("bytes", n)
	}
	return v, n, nil
}

func consumeVarint(typ protowire.Type, b []byte) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, errors.Wrapf(ErrDecode, "wire type %d, expecting varint", typ)
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, wireError("varint", n)
	}
	return v, n, nil
}

func wireError(what string, n int) error {
	return errors.Wrapf(ErrDecode, "%s: %v", what, protowire.ParseError(n))
}

// Serialize returns the canonical encoding of the envelope
func (env *SignedEnvelope) Serialize() []byte {
	var b []byte
	b = appendBytes(b, _envelopeSignature, env.Signature)
	b = appendBytes(b, _envelopePayload, env.MutationBytes)
	return appendBytes(b, _envelopePublicKey, env.PublicKey)
}

// EncodeTx returns the hex encoded envelope as submitted to the node
func (env *SignedEnvelope) EncodeTx() []byte {
	raw := env.Serialize()
	tx := make([]byte, hex.EncodedLen(len(raw)))
	hex.Encode(tx, raw)
	return tx
}

// Serialize returns the canonical encoding of the mutation, ops kept in their order
func (m *Mutation) Serialize() []byte {
	var b []byte
	b = appendBytes(b, _mutationNamespace, m.Namespace)
	for _, op := range m.Ops {
		var kv []byte
		kv = appendBytes(kv, _kvKey, op.Key)
		kv = appendBytes(kv, _kvValue, op.Value)
		kv = appendVarint(kv, _kvAction, uint64(op.Action))
		b = protowire.AppendTag(b, _mutationKvPairs, protowire.BytesType)
		b = protowire.AppendBytes(b, kv)
	}
	b = appendVarint(b, _mutationNonce, m.Nonce)
	b = appendVarint(b, _mutationChainID, uint64(m.ChainID))
	b = appendVarint(b, _mutationChainRole, uint64(m.ChainRole))
	if m.GasPrice != nil {
		var u []byte
		u = appendVarint(u, _unitType, uint64(m.GasPrice.Kind))
		u = appendVarint(u, _unitAmount, m.GasPrice.Amount)
		b = protowire.AppendTag(b, _mutationGasPrice, protowire.BytesType)
		b = protowire.AppendBytes(b, u)
	}
	return appendVarint(b, _mutationGas, m.GasLimit)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}
