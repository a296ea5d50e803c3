package staking

import "errors"

var (
	ErrInvalidAmount     = errors.New("staking: invalid amount")
	ErrLockOutOfRange    = errors.New("staking: lock duration out of range")
	ErrStakeLocked       = errors.New("staking: stake still locked")
	ErrInsufficientStake = errors.New("staking: insufficient stake")
	ErrPositionNotFound  = errors.New("staking: position not found")
	ErrMergeTooFew       = errors.New("staking: merge requires at least two positions")
	ErrNilAccount        = errors.New("staking: nil account")
)
