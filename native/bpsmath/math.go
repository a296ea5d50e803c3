package bpsmath

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

// Denominator is the fixed basis-point scale: 10_000 equals 100%.
const Denominator = 10_000

var (
	// ErrArithmeticOverflow indicates an intermediate product left the 256-bit
	// range. Reaching it is always a bug in the caller's inputs; the math
	// helpers refuse to wrap silently.
	ErrArithmeticOverflow = errors.New("bpsmath: arithmetic overflow")
	// ErrDivisionByZero indicates a zero basis-point divisor.
	ErrDivisionByZero = errors.New("bpsmath: division by zero")
	// ErrNegativeValue indicates a negative input where only unsigned token
	// quantities are meaningful.
	ErrNegativeValue = errors.New("bpsmath: negative value")
)

func toUint256(value *big.Int) (*uint256.Int, error) {
	if value == nil {
		return uint256.NewInt(0), nil
	}
	if value.Sign() < 0 {
		return nil, ErrNegativeValue
	}
	out, overflow := uint256.FromBig(value)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return out, nil
}

// MulBps computes value*bps/Denominator with the division performed last.
// The intermediate product is checked against the 256-bit bound.
func MulBps(value *big.Int, bps uint64) (*big.Int, error) {
	v, err := toUint256(value)
	if err != nil {
		return nil, err
	}
	product, overflow := new(uint256.Int).MulOverflow(v, uint256.NewInt(bps))
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	product.Div(product, uint256.NewInt(Denominator))
	return product.ToBig(), nil
}

// DivBps computes value*Denominator/bps. A zero bps divisor fails rather than
// returning an unbounded quantity.
func DivBps(value *big.Int, bps uint64) (*big.Int, error) {
	if bps == 0 {
		return nil, ErrDivisionByZero
	}
	v, err := toUint256(value)
	if err != nil {
		return nil, err
	}
	product, overflow := new(uint256.Int).MulOverflow(v, uint256.NewInt(Denominator))
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	product.Div(product, uint256.NewInt(bps))
	return product.ToBig(), nil
}

// Min returns a defensive copy of the smaller operand. Nil operands are
// treated as zero.
func Min(a, b *big.Int) *big.Int {
	a = normalize(a)
	b = normalize(b)
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

// Max returns a defensive copy of the larger operand.
func Max(a, b *big.Int) *big.Int {
	a = normalize(a)
	b = normalize(b)
	if a.Cmp(b) >= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

// Clamp bounds value to the inclusive [lo, hi] range.
func Clamp(value, lo, hi *big.Int) *big.Int {
	value = normalize(value)
	lo = normalize(lo)
	hi = normalize(hi)
	if value.Cmp(lo) < 0 {
		return new(big.Int).Set(lo)
	}
	if value.Cmp(hi) > 0 {
		return new(big.Int).Set(hi)
	}
	return new(big.Int).Set(value)
}

// SubClamp returns max(a-b, 0), the saturating subtraction used wherever a
// remaining-allowance quantity must not go negative.
func SubClamp(a, b *big.Int) *big.Int {
	a = normalize(a)
	b = normalize(b)
	diff := new(big.Int).Sub(a, b)
	if diff.Sign() < 0 {
		return big.NewInt(0)
	}
	return diff
}

// ClampUint64 bounds a scalar basis-point value to the inclusive [lo, hi]
// range. Multiplier stacks are small enough to stay in native integers.
func ClampUint64(value, lo, hi uint64) uint64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

func normalize(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}
