// Copyright (c) 2025 dbpunk-labs
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package unit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// TaiPerDb3 is the number of Tai in one Db3
const TaiPerDb3 = 1_000_000

// Kind is the denomination of a Unit
type Kind uint8

const (
	// Tai is the smallest denomination
	Tai Kind = iota
	// Db3 equals TaiPerDb3 Tai
	Db3
)

var (
	// ErrOverflow is returned when unit arithmetic exceeds uint64
	ErrOverflow = errors.New("unit arithmetic overflow")
	// ErrInvalidKind is returned for an unknown denomination
	ErrInvalidKind = errors.New("invalid unit kind")

	_taiPerDb3 = uint256.NewInt(TaiPerDb3)
)

// Unit is a fixed-point amount in one denomination
type Unit struct {
	Kind   Kind
	Amount uint64
}

// NewTai returns an amount of Tai
func NewTai(amount uint64) Unit { return Unit{Kind: Tai, Amount: amount} }

// NewDb3 returns an amount of Db3
func NewDb3(amount uint64) Unit { return Unit{Kind: Db3, Amount: amount} }

// Valid reports whether the kind is known
func (k Kind) Valid() bool { return k == Tai || k == Db3 }

func (k Kind) String() string {
	switch k {
	case Tai:
		return "tai"
	case Db3:
		return "db3"
	default:
		return "unknown"
	}
}

// ToTai normalizes the amount into Tai
func (u Unit) ToTai() (uint64, error) {
	switch u.Kind {
	case Tai:
		return u.Amount, nil
	case Db3:
		v, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(u.Amount), _taiPerDb3)
		if overflow || !v.IsUint64() {
			return 0, errors.Wrapf(ErrOverflow, "%d db3 in tai", u.Amount)
		}
		return v.Uint64(), nil
	default:
		return 0, errors.Wrapf(ErrInvalidKind, "kind %d", u.Kind)
	}
}

// Add sums two units. Units of the same kind stay in that kind, mixed kinds are normalized to Tai.
func Add(a, b Unit) (Unit, error) {
	if a.Kind == b.Kind {
		if !a.Kind.Valid() {
			return Unit{}, errors.Wrapf(ErrInvalidKind, "kind %d", a.Kind)
		}
		v, overflow := new(uint256.Int).AddOverflow(uint256.NewInt(a.Amount), uint256.NewInt(b.Amount))
		if overflow || !v.IsUint64() {
			return Unit{}, errors.Wrap(ErrOverflow, "add")
		}
		return Unit{Kind: a.Kind, Amount: v.Uint64()}, nil
	}
	ta, err := a.ToTai()
	if err != nil {
		return Unit{}, err
	}
	tb, err := b.ToTai()
	if err != nil {
		return Unit{}, err
	}
	return Add(NewTai(ta), NewTai(tb))
}

// MulGas returns price * gas in Tai
func MulGas(price Unit, gas uint64) (Unit, error) {
	tai, err := price.ToTai()
	if err != nil {
		return Unit{}, err
	}
	v, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(tai), uint256.NewInt(gas))
	if overflow || !v.IsUint64() {
		return Unit{}, errors.Wrapf(ErrOverflow, "%s * %d gas", price, gas)
	}
	return NewTai(v.Uint64()), nil
}

// String renders the unit for billing display, e.g. "12 tai" or "1.5 db3"
func (u Unit) String() string {
	if u.Kind == Tai && u.Amount >= TaiPerDb3 {
		return formatDb3(u.Amount)
	}
	return fmt.Sprintf("%d %s", u.Amount, u.Kind)
}

func formatDb3(tai uint64) string {
	whole := strconv.FormatUint(tai/TaiPerDb3, 10)
	frac := strings.TrimRight(fmt.Sprintf("%06d", tai%TaiPerDb3), "0")
	if frac == "" {
		return whole + " db3"
	}
	return whole + "." + frac + " db3"
}
