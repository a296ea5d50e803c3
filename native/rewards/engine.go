package rewards

import (
	"fmt"
	"math/big"

	"ikigai/core/types"
	"ikigai/native/bpsmath"
)

// ActivityKind distinguishes the reward treatment of an event. Only trading
// advances (and consumes) the combo streak; the asymmetry is deliberate.
type ActivityKind uint8

const (
	ActivityTrading ActivityKind = iota + 1
	ActivityStaking
	ActivityReferral
)

// String renders the activity kind for event attributes.
func (k ActivityKind) String() string {
	switch k {
	case ActivityTrading:
		return "trading"
	case ActivityStaking:
		return "staking"
	case ActivityReferral:
		return "referral"
	default:
		return "unknown"
	}
}

// Engine composes the tier table, combo tracker and loyalty ledger into the
// capped final multiplier and the resulting payout.
type Engine struct {
	cfg Config
}

// NewEngine validates the configuration and returns a ready engine.
func NewEngine(cfg Config) (*Engine, error) {
	cfg = cfg.Clone()
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("rewards: %w", err)
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns a deep copy of the engine parameters.
func (e *Engine) Config() Config {
	return e.cfg.Clone()
}

// Outcome reports the full breakdown of a computed reward so hosts can emit
// it verbatim into events.
type Outcome struct {
	Kind               ActivityKind
	BaseReward         *big.Int
	TierBonusBps       uint64
	ComboBonusBps      uint64
	LoyaltyBonusBps    uint64
	TotalMultiplierBps uint64
	Reward             *big.Int
}

// ComputeReward evaluates the reward for an activity and credits it to the
// account's pending balance. All checks run before any mutation; a returned
// error leaves the account untouched.
func (e *Engine) ComputeReward(acc *types.Account, kind ActivityKind, amount *big.Int, nowUnix uint64) (*Outcome, error) {
	if acc == nil {
		return nil, ErrNilAccount
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	var baseRate uint64
	switch kind {
	case ActivityTrading:
		baseRate = e.cfg.TradingRateBps
	case ActivityStaking:
		baseRate = e.cfg.StakingRateBps
	case ActivityReferral:
		baseRate = e.cfg.ReferralRateBps
	default:
		return nil, ErrUnknownActivity
	}

	acc.Normalize()

	baseReward, err := bpsmath.MulBps(amount, baseRate)
	if err != nil {
		return nil, err
	}

	tierBonus := e.cfg.Tiers.Lookup(acc.StakedAmount)
	comboBonus := uint64(0)
	if kind == ActivityTrading {
		comboBonus = e.CurrentComboBps(acc, nowUnix)
	}
	loyaltyBonus := e.LoyaltyBonusBps(acc, nowUnix)

	// The ceiling is the invariant that keeps stacked bonuses bounded no
	// matter how extreme the individual inputs are.
	total := bpsmath.ClampUint64(
		BaseMultiplierBps+tierBonus+comboBonus+loyaltyBonus,
		0, e.cfg.MaxTotalMultiplierBps,
	)

	reward, err := bpsmath.MulBps(baseReward, total)
	if err != nil {
		return nil, err
	}

	acc.PendingRewards.Add(acc.PendingRewards, reward)
	touchFirstActivity(acc, nowUnix)
	if kind == ActivityTrading {
		e.advanceCombo(acc, nowUnix)
	}

	return &Outcome{
		Kind:               kind,
		BaseReward:         baseReward,
		TierBonusBps:       tierBonus,
		ComboBonusBps:      comboBonus,
		LoyaltyBonusBps:    loyaltyBonus,
		TotalMultiplierBps: total,
		Reward:             reward,
	}, nil
}

// Claim moves the pending balance to the claimed accumulator. The cooldown
// is checked before the empty-balance case so back-to-back claims surface
// the timing error first.
func (e *Engine) Claim(acc *types.Account, nowUnix uint64) (*big.Int, error) {
	if acc == nil {
		return nil, ErrNilAccount
	}
	acc.Normalize()
	if acc.LastClaimTime > 0 && nowUnix-acc.LastClaimTime < e.cfg.ClaimCooldownSeconds {
		return nil, ErrClaimTooSoon
	}
	if acc.PendingRewards.Sign() == 0 {
		return nil, ErrNothingToClaim
	}
	claimed := new(big.Int).Set(acc.PendingRewards)
	acc.ClaimedRewards.Add(acc.ClaimedRewards, claimed)
	acc.PendingRewards.SetInt64(0)
	acc.LastClaimTime = nowUnix
	return claimed, nil
}
