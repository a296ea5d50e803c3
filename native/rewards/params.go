package rewards

import (
	"fmt"
	"math/big"

	"ikigai/native/bpsmath"
)

// BaseMultiplierBps is the neutral 1x multiplier.
const BaseMultiplierBps = 10_000

// SecondsPerYear uses the flat 365-day year of the original emission
// schedule. Partial years deliberately contribute nothing to loyalty.
const SecondsPerYear = 365 * 24 * 60 * 60

// Config controls the behaviour of the reward engine. All rates are basis
// points; all durations are seconds; all amounts are token base units.
type Config struct {
	TradingRateBps  uint64
	StakingRateBps  uint64
	ReferralRateBps uint64

	Tiers TierTable

	MaxTotalMultiplierBps uint64

	ComboWindowSeconds    uint64
	ComboStepBps          uint64
	MaxComboMultiplierBps uint64

	LoyaltyBonusPerYearBps uint64
	MaxLoyaltyBps          uint64

	ClaimCooldownSeconds uint64

	ReferralCreditRateBps   uint64
	MaxReferralReward       *big.Int
	ReferralCooldownSeconds uint64
	// MaxReferralCreditsPerWindow bounds how many referral credits a single
	// referrer may receive within ReferralWindowSeconds, independent of the
	// per-credit cooldown. Zero disables the counter.
	MaxReferralCreditsPerWindow uint32
	ReferralWindowSeconds       uint64
}

// DefaultConfig returns the canonical production parameter set.
func DefaultConfig() Config {
	return Config{
		TradingRateBps:  300,
		StakingRateBps:  200,
		ReferralRateBps: 100,
		Tiers: TierTable{
			{MinStake: big.NewInt(1_000), BonusBps: 500},
			{MinStake: big.NewInt(5_000), BonusBps: 1_500},
			{MinStake: big.NewInt(15_000), BonusBps: 2_500},
			{MinStake: big.NewInt(50_000), BonusBps: 4_000},
		},
		MaxTotalMultiplierBps:       50_000,
		ComboWindowSeconds:          24 * 60 * 60,
		ComboStepBps:                5_000,
		MaxComboMultiplierBps:       20_000,
		LoyaltyBonusPerYearBps:      500,
		MaxLoyaltyBps:               2_000,
		ClaimCooldownSeconds:        24 * 60 * 60,
		ReferralCreditRateBps:       100,
		MaxReferralReward:           big.NewInt(100_000),
		ReferralCooldownSeconds:     60 * 60,
		MaxReferralCreditsPerWindow: 10,
		ReferralWindowSeconds:       24 * 60 * 60,
	}
}

// Clone produces a deep copy of the configuration.
func (c Config) Clone() Config {
	clone := c
	clone.Tiers = c.Tiers.Clone()
	if c.MaxReferralReward != nil {
		clone.MaxReferralReward = new(big.Int).Set(c.MaxReferralReward)
	}
	return clone
}

// Normalize ensures pointer fields are non-nil. Returns the receiver to
// allow chaining.
func (c *Config) Normalize() *Config {
	if c == nil {
		return nil
	}
	if c.MaxReferralReward == nil {
		c.MaxReferralReward = big.NewInt(0)
	}
	return c
}

// Validate performs static validation of the configuration.
func (c Config) Validate() error {
	if c.TradingRateBps > bpsmath.Denominator || c.StakingRateBps > bpsmath.Denominator || c.ReferralRateBps > bpsmath.Denominator {
		return fmt.Errorf("activity base rates must not exceed %d bps", bpsmath.Denominator)
	}
	if c.MaxTotalMultiplierBps < BaseMultiplierBps {
		return fmt.Errorf("max total multiplier must be at least %d bps", BaseMultiplierBps)
	}
	if err := c.Tiers.Validate(c.MaxTotalMultiplierBps); err != nil {
		return fmt.Errorf("tiers: %w", err)
	}
	if c.ComboWindowSeconds == 0 {
		return fmt.Errorf("combo window must be positive")
	}
	if c.ComboStepBps == 0 {
		return fmt.Errorf("combo step must be positive")
	}
	if c.MaxComboMultiplierBps < BaseMultiplierBps {
		return fmt.Errorf("max combo multiplier must be at least %d bps", BaseMultiplierBps)
	}
	if c.MaxLoyaltyBps > 0 && c.LoyaltyBonusPerYearBps > c.MaxLoyaltyBps {
		return fmt.Errorf("loyalty per-year bonus must not exceed the loyalty cap")
	}
	if c.ReferralCreditRateBps > bpsmath.Denominator {
		return fmt.Errorf("referral credit rate must not exceed %d bps", bpsmath.Denominator)
	}
	if c.MaxReferralReward != nil && c.MaxReferralReward.Sign() < 0 {
		return fmt.Errorf("max referral reward must not be negative")
	}
	if c.MaxReferralCreditsPerWindow > 0 && c.ReferralWindowSeconds == 0 {
		return fmt.Errorf("referral window must be positive when the credit counter is enabled")
	}
	return nil
}
