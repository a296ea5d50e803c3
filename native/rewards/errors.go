package rewards

import "errors"

var (
	ErrInvalidAmount            = errors.New("rewards: invalid amount")
	ErrUnknownActivity          = errors.New("rewards: unknown activity kind")
	ErrNilAccount               = errors.New("rewards: nil account")
	ErrClaimTooSoon             = errors.New("rewards: claim cooldown active")
	ErrNothingToClaim           = errors.New("rewards: nothing to claim")
	ErrSelfReferral             = errors.New("rewards: self referral")
	ErrReferrerAlreadySet       = errors.New("rewards: referrer already set")
	ErrMaxReferralRewardReached = errors.New("rewards: lifetime referral cap reached")
)
