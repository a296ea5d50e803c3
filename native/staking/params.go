package staking

import "fmt"

// Params bounds the lock durations accepted by the ledger. Durations are
// seconds.
type Params struct {
	MinLockSeconds uint64
	MaxLockSeconds uint64
}

// DefaultParams returns the canonical 7-day to 365-day lock range.
func DefaultParams() Params {
	return Params{
		MinLockSeconds: 7 * 24 * 60 * 60,
		MaxLockSeconds: 365 * 24 * 60 * 60,
	}
}

// Validate ensures the lock bounds are usable.
func (p Params) Validate() error {
	if p.MinLockSeconds == 0 {
		return fmt.Errorf("min lock must be positive")
	}
	if p.MaxLockSeconds < p.MinLockSeconds {
		return fmt.Errorf("max lock must be >= min lock")
	}
	return nil
}
