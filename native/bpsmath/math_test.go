package bpsmath

import (
	"errors"
	"math/big"
	"testing"
)

func TestMulBpsExact(t *testing.T) {
	got, err := MulBps(big.NewInt(1000), 300)
	if err != nil {
		t.Fatalf("mul bps: %v", err)
	}
	if got.Cmp(big.NewInt(30)) != 0 {
		t.Fatalf("expected 30, got %s", got)
	}
}

func TestMulBpsTruncatesTowardZero(t *testing.T) {
	got, err := MulBps(big.NewInt(333), 100)
	if err != nil {
		t.Fatalf("mul bps: %v", err)
	}
	if got.Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("expected 3, got %s", got)
	}
}

func TestMulBpsOverflow(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 255)
	if _, err := MulBps(huge, Denominator); !errors.Is(err, ErrArithmeticOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestMulBpsRejectsNegative(t *testing.T) {
	if _, err := MulBps(big.NewInt(-1), 100); !errors.Is(err, ErrNegativeValue) {
		t.Fatalf("expected negative value error, got %v", err)
	}
}

func TestDivBps(t *testing.T) {
	got, err := DivBps(big.NewInt(30), 300)
	if err != nil {
		t.Fatalf("div bps: %v", err)
	}
	if got.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("expected 1000, got %s", got)
	}
	if _, err := DivBps(big.NewInt(1), 0); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("expected division by zero, got %v", err)
	}
}

func TestClamp(t *testing.T) {
	lo, hi := big.NewInt(10), big.NewInt(20)
	if got := Clamp(big.NewInt(5), lo, hi); got.Cmp(lo) != 0 {
		t.Fatalf("expected clamp to lo, got %s", got)
	}
	if got := Clamp(big.NewInt(25), lo, hi); got.Cmp(hi) != 0 {
		t.Fatalf("expected clamp to hi, got %s", got)
	}
	if got := Clamp(big.NewInt(15), lo, hi); got.Cmp(big.NewInt(15)) != 0 {
		t.Fatalf("expected passthrough, got %s", got)
	}
}

func TestSubClamp(t *testing.T) {
	if got := SubClamp(big.NewInt(5), big.NewInt(8)); got.Sign() != 0 {
		t.Fatalf("expected saturation to zero, got %s", got)
	}
	if got := SubClamp(big.NewInt(8), big.NewInt(5)); got.Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("expected 3, got %s", got)
	}
}

func TestClampUint64(t *testing.T) {
	if got := ClampUint64(60000, 0, 50000); got != 50000 {
		t.Fatalf("expected cap at 50000, got %d", got)
	}
	if got := ClampUint64(5, 10, 50000); got != 10 {
		t.Fatalf("expected floor at 10, got %d", got)
	}
}

func TestMinMaxCopySemantics(t *testing.T) {
	a := big.NewInt(7)
	out := Min(a, big.NewInt(9))
	out.SetInt64(99)
	if a.Int64() != 7 {
		t.Fatalf("expected defensive copy, input mutated to %s", a)
	}
	if got := Max(big.NewInt(2), big.NewInt(3)); got.Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("expected 3, got %s", got)
	}
}
