// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package mutation

import (
	"math"

	"github.com/pkg/errors"

	"github.com/dbpunk-labs/db3/pkg/unit"
)

const (
	// BaseGas is charged once per mutation
	BaseGas = uint64(1000)
	// InsertOpGas is charged per insert op
	InsertOpGas = uint64(100)
	// DeleteOpGas is charged per delete op
	DeleteOpGas = uint64(50)
	// StorageGasPerByte is charged per byte of namespace, key and value
	StorageGasPerByte = uint64(10)
)

// ErrOutOfGas indicates a mutation costing more than its gas limit
var ErrOutOfGas = errors.New("out of gas")

// EstimateGas returns the gas of a mutation. It depends only on the op counts and the payload
// size, saturating at math.MaxUint64.
func EstimateGas(m *Mutation) uint64 {
	var inserts, deletes uint64
	for _, op := range m.Ops {
		if op.Action == Delete {
			deletes++
		} else {
			inserts++
		}
	}
	gas := BaseGas
	for _, part := range [][2]uint64{
		{inserts, InsertOpGas},
		{deletes, DeleteOpGas},
		{m.PayloadSize(), StorageGasPerByte},
	} {
		if part[0] > 0 && part[1] > (math.MaxUint64-gas)/part[0] {
			return math.MaxUint64
		}
		gas += part[0] * part[1]
	}
	return gas
}

// CheckGasLimit returns the gas of m, or ErrOutOfGas if it exceeds a non-zero limit
func CheckGasLimit(m *Mutation) (uint64, error) {
	gas := EstimateGas(m)
	if m.GasLimit > 0 && gas > m.GasLimit {
		return gas, errors.Wrapf(ErrOutOfGas, "gas %d exceeds limit %d", gas, m.GasLimit)
	}
	return gas, nil
}

// Fee returns the fee of m in Tai, priced at the mutation's gas price or defaultPrice
func Fee(m *Mutation, defaultPrice unit.Unit) (unit.Unit, error) {
	price := defaultPrice
	if m.GasPrice != nil {
		price = *m.GasPrice
	}
	return unit.MulGas(price, EstimateGas(m))
}
