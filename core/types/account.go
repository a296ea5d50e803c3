package types

import "math/big"

// Address identifies an account with an opaque 20-byte key, matching the
// EVM-style addressing of the host chain.
type Address [20]byte

// Account carries the per-user economic state tracked by the core. All
// monetary fields are token base units; all bps fields use the 10_000
// denominator; all timestamps are unix seconds.
type Account struct {
	StakedAmount      *big.Int `json:"stakedAmount"`
	StakeStartTime    uint64   `json:"stakeStartTime,omitempty"`
	LockExpiryTime    uint64   `json:"lockExpiryTime,omitempty"`
	FirstActivityTime uint64   `json:"firstActivityTime,omitempty"`

	// Combo state is transient and only trustworthy relative to
	// LastActionTime: a dormant account keeps its stale multiplier until the
	// next qualifying trade re-evaluates it.
	ComboMultiplierBps uint64 `json:"comboMultiplierBps,omitempty"`
	LastActionTime     uint64 `json:"lastActionTime,omitempty"`

	PendingRewards *big.Int `json:"pendingRewards"`
	ClaimedRewards *big.Int `json:"claimedRewards"`
	LastClaimTime  uint64   `json:"lastClaimTime,omitempty"`

	// Referrer is set at most once and never cleared.
	Referrer           *Address `json:"referrer,omitempty"`
	ReferralEarned     *big.Int `json:"referralEarned"`
	LastReferralCredit uint64   `json:"lastReferralCredit,omitempty"`

	// Rolling referral credit counter, bucketed by the configured window.
	ReferralWindowID     uint64 `json:"referralWindowId,omitempty"`
	ReferralWindowEvents uint32 `json:"referralWindowEvents,omitempty"`
}

// Normalize ensures all pointer fields are non-nil for ease of use. The
// method returns the receiver to allow chaining.
func (a *Account) Normalize() *Account {
	if a == nil {
		return nil
	}
	if a.StakedAmount == nil {
		a.StakedAmount = big.NewInt(0)
	}
	if a.PendingRewards == nil {
		a.PendingRewards = big.NewInt(0)
	}
	if a.ClaimedRewards == nil {
		a.ClaimedRewards = big.NewInt(0)
	}
	if a.ReferralEarned == nil {
		a.ReferralEarned = big.NewInt(0)
	}
	return a
}

// Clone produces a deep copy of the account to protect internal references.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	clone := &Account{
		StakeStartTime:       a.StakeStartTime,
		LockExpiryTime:       a.LockExpiryTime,
		FirstActivityTime:    a.FirstActivityTime,
		ComboMultiplierBps:   a.ComboMultiplierBps,
		LastActionTime:       a.LastActionTime,
		LastClaimTime:        a.LastClaimTime,
		LastReferralCredit:   a.LastReferralCredit,
		ReferralWindowID:     a.ReferralWindowID,
		ReferralWindowEvents: a.ReferralWindowEvents,
	}
	clone.StakedAmount = copyBigInt(a.StakedAmount)
	clone.PendingRewards = copyBigInt(a.PendingRewards)
	clone.ClaimedRewards = copyBigInt(a.ClaimedRewards)
	clone.ReferralEarned = copyBigInt(a.ReferralEarned)
	if a.Referrer != nil {
		ref := *a.Referrer
		clone.Referrer = &ref
	}
	return clone
}

func copyBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
