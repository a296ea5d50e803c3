package config

import (
	"fmt"
	"math/big"

	"ikigai/core"
	"ikigai/core/types"
	"ikigai/native/buyback"
	"ikigai/native/emission"
	"ikigai/native/rewards"
	"ikigai/native/staking"
)

// Core converts the file surface into the runtime parameter sets. Every
// amount string is parsed here, once, so the engines only ever see big
// integers.
func (c *Config) Core() (core.Config, error) {
	out := core.Config{
		Staking: staking.Params{
			MinLockSeconds: c.Staking.MinLockSeconds,
			MaxLockSeconds: c.Staking.MaxLockSeconds,
		},
		BuybackBurnBps:          c.Service.BuybackBurnBps,
		VolatilityWindowSeconds: c.Service.VolatilityWindowSeconds,
		GenesisUnix:             c.Service.GenesisUnix,
	}

	treasury, err := types.ParseAddress(c.Service.Treasury)
	if err != nil {
		return out, fmt.Errorf("config: service.Treasury: %w", err)
	}
	rewardsPool, err := types.ParseAddress(c.Service.RewardsPool)
	if err != nil {
		return out, fmt.Errorf("config: service.RewardsPool: %w", err)
	}
	out.Treasury = treasury
	out.RewardsPool = rewardsPool

	rc, err := c.rewardsConfig()
	if err != nil {
		return out, err
	}
	out.Rewards = rc

	ec, err := c.emissionParams()
	if err != nil {
		return out, err
	}
	out.Emission = ec

	bc, err := c.buybackParams()
	if err != nil {
		return out, err
	}
	out.Buyback = bc

	return out, nil
}

func (c *Config) rewardsConfig() (rewards.Config, error) {
	out := rewards.Config{
		TradingRateBps:              c.Rewards.TradingRateBps,
		StakingRateBps:              c.Rewards.StakingRateBps,
		ReferralRateBps:             c.Rewards.ReferralRateBps,
		MaxTotalMultiplierBps:       c.Rewards.MaxTotalMultiplierBps,
		ComboWindowSeconds:          c.Rewards.ComboWindowSeconds,
		ComboStepBps:                c.Rewards.ComboStepBps,
		MaxComboMultiplierBps:       c.Rewards.MaxComboMultiplierBps,
		LoyaltyBonusPerYearBps:      c.Rewards.LoyaltyBonusPerYearBps,
		MaxLoyaltyBps:               c.Rewards.MaxLoyaltyBps,
		ClaimCooldownSeconds:        c.Rewards.ClaimCooldownSeconds,
		ReferralCreditRateBps:       c.Rewards.ReferralCreditRateBps,
		ReferralCooldownSeconds:     c.Rewards.ReferralCooldownSeconds,
		MaxReferralCreditsPerWindow: c.Rewards.MaxReferralCreditsPerWindow,
		ReferralWindowSeconds:       c.Rewards.ReferralWindowSeconds,
	}
	for i, tier := range c.Rewards.Tiers {
		minStake, err := parseAmount(fmt.Sprintf("rewards.Tiers[%d].MinStake", i), tier.MinStake)
		if err != nil {
			return out, err
		}
		out.Tiers = append(out.Tiers, rewards.Tier{MinStake: minStake, BonusBps: tier.BonusBps})
	}
	maxReferral, err := parseAmount("rewards.MaxReferralReward", c.Rewards.MaxReferralReward)
	if err != nil {
		return out, err
	}
	out.MaxReferralReward = maxReferral
	return out, nil
}

func (c *Config) emissionParams() (emission.Params, error) {
	out := emission.Params{
		HighVolatilityBps:     c.Emission.HighVolatilityBps,
		LowVolatilityBps:      c.Emission.LowVolatilityBps,
		AdjustIntervalSeconds: c.Emission.AdjustIntervalSeconds,
	}
	fields := []struct {
		name  string
		value string
		out   **big.Int
	}{
		{"emission.DailyLimit", c.Emission.DailyLimit, &out.DailyLimit},
		{"emission.WeeklyLimit", c.Emission.WeeklyLimit, &out.WeeklyLimit},
		{"emission.MonthlyLimit", c.Emission.MonthlyLimit, &out.MonthlyLimit},
		{"emission.MaxSupply", c.Emission.MaxSupply, &out.MaxSupply},
		{"emission.InitialRatePerDay", c.Emission.InitialRatePerDay, &out.InitialRatePerDay},
		{"emission.MinRatePerDay", c.Emission.MinRatePerDay, &out.MinRatePerDay},
		{"emission.MaxRatePerDay", c.Emission.MaxRatePerDay, &out.MaxRatePerDay},
	}
	for _, field := range fields {
		amount, err := parseAmount(field.name, field.value)
		if err != nil {
			return out, err
		}
		*field.out = amount
	}
	return out, nil
}

func (c *Config) buybackParams() (buyback.Params, error) {
	minBuyback, err := parseAmount("buyback.MinBuybackAmount", c.Buyback.MinBuybackAmount)
	if err != nil {
		return buyback.Params{}, err
	}
	return buyback.Params{
		MinBuybackAmount:          minBuyback,
		ShortWindowSeconds:        c.Buyback.ShortWindowSeconds,
		LongWindowSeconds:         c.Buyback.LongWindowSeconds,
		MinSamples:                c.Buyback.MinSamples,
		PauseThresholdBps:         c.Buyback.PauseThresholdBps,
		UptrendCapBps:             c.Buyback.UptrendCapBps,
		DowntrendCapBps:           c.Buyback.DowntrendCapBps,
		LowBandRatioBps:           c.Buyback.LowBandRatioBps,
		HighBandRatioBps:          c.Buyback.HighBandRatioBps,
		LowBandAllocationBps:      c.Buyback.LowBandAllocationBps,
		DefaultAllocationBps:      c.Buyback.DefaultAllocationBps,
		HighBandAllocationBps:     c.Buyback.HighBandAllocationBps,
		AllocationCooldownSeconds: c.Buyback.AllocationCooldownSeconds,
	}, nil
}
