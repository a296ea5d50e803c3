package rewards

import (
	"errors"
	"math/big"

	"ikigai/core/types"
	"ikigai/native/bpsmath"
	"ikigai/native/common"
)

// Referral skip reasons recorded in events. A skipped credit never aborts
// the primary activity; the defense only starves the referrer side channel.
const (
	ReferralSkipCooldown   = "cooldown"
	ReferralSkipWindowFull = "window_full"
	ReferralSkipZeroCredit = "zero_credit"
)

// ReferralOutcome reports the credited amount, or the reason the credit was
// skipped when Credit is nil.
type ReferralOutcome struct {
	Credit     *big.Int
	SkipReason string
}

// CreditReferrer pays the referrer side of an activity. The credit is capped
// by the referrer's lifetime allowance and rate-limited both by a per-credit
// cooldown and a windowed credit counter, the named Sybil micro-transaction
// defense. All checks run before any mutation.
func (e *Engine) CreditReferrer(referrer *types.Account, activityAmount *big.Int, nowUnix uint64) (*ReferralOutcome, error) {
	if referrer == nil {
		return nil, ErrNilAccount
	}
	if activityAmount == nil || activityAmount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	referrer.Normalize()

	if referrer.LastReferralCredit > 0 && nowUnix-referrer.LastReferralCredit < e.cfg.ReferralCooldownSeconds {
		return &ReferralOutcome{SkipReason: ReferralSkipCooldown}, nil
	}

	window := common.Window{
		MaxEvents:     e.cfg.MaxReferralCreditsPerWindow,
		LengthSeconds: e.cfg.ReferralWindowSeconds,
	}
	usage := common.WindowUsage{
		Events:   referrer.ReferralWindowEvents,
		WindowID: referrer.ReferralWindowID,
	}
	nextUsage, err := common.CheckWindow(window, window.WindowID(nowUnix), usage, 1)
	if err != nil {
		if errors.Is(err, common.ErrWindowEventsExceeded) {
			return &ReferralOutcome{SkipReason: ReferralSkipWindowFull}, nil
		}
		return nil, err
	}

	credit, err := bpsmath.MulBps(activityAmount, e.cfg.ReferralCreditRateBps)
	if err != nil {
		return nil, err
	}
	if credit.Sign() == 0 {
		return &ReferralOutcome{SkipReason: ReferralSkipZeroCredit}, nil
	}

	if e.cfg.MaxReferralReward.Sign() > 0 {
		remaining := bpsmath.SubClamp(e.cfg.MaxReferralReward, referrer.ReferralEarned)
		if remaining.Sign() == 0 {
			return nil, ErrMaxReferralRewardReached
		}
		credit = bpsmath.Min(credit, remaining)
	}

	referrer.PendingRewards.Add(referrer.PendingRewards, credit)
	referrer.ReferralEarned.Add(referrer.ReferralEarned, credit)
	referrer.LastReferralCredit = nowUnix
	referrer.ReferralWindowID = nextUsage.WindowID
	referrer.ReferralWindowEvents = nextUsage.Events

	return &ReferralOutcome{Credit: credit}, nil
}

// BindReferrer sets the account's referrer once. Self-referral and
// rebinding are rejected; cycle checks beyond length one belong to the host,
// which owns the full account graph.
func BindReferrer(acc *types.Account, self, referrer types.Address) error {
	if acc == nil {
		return ErrNilAccount
	}
	if self == referrer {
		return ErrSelfReferral
	}
	if acc.Referrer != nil {
		return ErrReferrerAlreadySet
	}
	ref := referrer
	acc.Referrer = &ref
	return nil
}
