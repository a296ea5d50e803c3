package config

const day = 24 * 60 * 60

// Default returns the production parameter file. Addresses are left empty;
// hosts must fill them before converting to runtime parameters.
func Default() *Config {
	return &Config{
		Service: Service{
			Name:                    "ikigai",
			Env:                     "dev",
			LogLevel:                "info",
			DataDir:                 "./data",
			BuybackBurnBps:          5_000,
			VolatilityWindowSeconds: 7 * day,
		},
		Rewards: Rewards{
			TradingRateBps:  300,
			StakingRateBps:  200,
			ReferralRateBps: 100,
			Tiers: []Tier{
				{MinStake: "1000", BonusBps: 500},
				{MinStake: "5000", BonusBps: 1500},
				{MinStake: "15000", BonusBps: 2500},
				{MinStake: "50000", BonusBps: 4000},
			},
			MaxTotalMultiplierBps:       50_000,
			ComboWindowSeconds:          day,
			ComboStepBps:                5_000,
			MaxComboMultiplierBps:       20_000,
			LoyaltyBonusPerYearBps:      500,
			MaxLoyaltyBps:               2_000,
			ClaimCooldownSeconds:        day,
			ReferralCreditRateBps:       100,
			MaxReferralReward:           "100000",
			ReferralCooldownSeconds:     3_600,
			MaxReferralCreditsPerWindow: 10,
			ReferralWindowSeconds:       day,
		},
		Staking: Staking{
			MinLockSeconds: 7 * day,
			MaxLockSeconds: 365 * day,
		},
		Emission: Emission{
			DailyLimit:            "685000",
			WeeklyLimit:           "4795000",
			MonthlyLimit:          "20550000",
			MaxSupply:             "1000000000",
			InitialRatePerDay:     "685000",
			MinRatePerDay:         "100000",
			MaxRatePerDay:         "1000000",
			HighVolatilityBps:     3_000,
			LowVolatilityBps:      1_000,
			AdjustIntervalSeconds: day,
		},
		Buyback: Buyback{
			MinBuybackAmount:          "10000",
			ShortWindowSeconds:        30 * day,
			LongWindowSeconds:         90 * day,
			MinSamples:                3,
			PauseThresholdBps:         12_000,
			UptrendCapBps:             2_000,
			DowntrendCapBps:           4_000,
			LowBandRatioBps:           9_000,
			HighBandRatioBps:          11_000,
			LowBandAllocationBps:      4_000,
			DefaultAllocationBps:      2_000,
			HighBandAllocationBps:     1_000,
			AllocationCooldownSeconds: 7 * day,
		},
	}
}
