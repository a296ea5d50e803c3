package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the on-disk TOML surface. Token amounts are decimal strings so
// operators never lose precision to TOML integer limits.
type Config struct {
	Service  Service  `toml:"service"`
	Rewards  Rewards  `toml:"rewards"`
	Staking  Staking  `toml:"staking"`
	Emission Emission `toml:"emission"`
	Buyback  Buyback  `toml:"buyback"`
	Pauses   Pauses   `toml:"pauses"`
}

type Service struct {
	Name                    string `toml:"Name"`
	Env                     string `toml:"Env"`
	LogLevel                string `toml:"LogLevel"`
	DataDir                 string `toml:"DataDir"`
	Treasury                string `toml:"Treasury"`
	RewardsPool             string `toml:"RewardsPool"`
	GenesisUnix             uint64 `toml:"GenesisUnix"`
	BuybackBurnBps          uint64 `toml:"BuybackBurnBps"`
	VolatilityWindowSeconds uint64 `toml:"VolatilityWindowSeconds"`
}

type Tier struct {
	MinStake string `toml:"MinStake"`
	BonusBps uint64 `toml:"BonusBps"`
}

type Rewards struct {
	TradingRateBps  uint64 `toml:"TradingRateBps"`
	StakingRateBps  uint64 `toml:"StakingRateBps"`
	ReferralRateBps uint64 `toml:"ReferralRateBps"`

	Tiers []Tier `toml:"Tiers"`

	MaxTotalMultiplierBps uint64 `toml:"MaxTotalMultiplierBps"`

	ComboWindowSeconds    uint64 `toml:"ComboWindowSeconds"`
	ComboStepBps          uint64 `toml:"ComboStepBps"`
	MaxComboMultiplierBps uint64 `toml:"MaxComboMultiplierBps"`

	LoyaltyBonusPerYearBps uint64 `toml:"LoyaltyBonusPerYearBps"`
	MaxLoyaltyBps          uint64 `toml:"MaxLoyaltyBps"`

	ClaimCooldownSeconds uint64 `toml:"ClaimCooldownSeconds"`

	ReferralCreditRateBps       uint64 `toml:"ReferralCreditRateBps"`
	MaxReferralReward           string `toml:"MaxReferralReward"`
	ReferralCooldownSeconds     uint64 `toml:"ReferralCooldownSeconds"`
	MaxReferralCreditsPerWindow uint32 `toml:"MaxReferralCreditsPerWindow"`
	ReferralWindowSeconds       uint64 `toml:"ReferralWindowSeconds"`
}

type Staking struct {
	MinLockSeconds uint64 `toml:"MinLockSeconds"`
	MaxLockSeconds uint64 `toml:"MaxLockSeconds"`
}

type Emission struct {
	DailyLimit   string `toml:"DailyLimit"`
	WeeklyLimit  string `toml:"WeeklyLimit"`
	MonthlyLimit string `toml:"MonthlyLimit"`
	MaxSupply    string `toml:"MaxSupply"`

	InitialRatePerDay string `toml:"InitialRatePerDay"`
	MinRatePerDay     string `toml:"MinRatePerDay"`
	MaxRatePerDay     string `toml:"MaxRatePerDay"`

	HighVolatilityBps     uint64 `toml:"HighVolatilityBps"`
	LowVolatilityBps      uint64 `toml:"LowVolatilityBps"`
	AdjustIntervalSeconds uint64 `toml:"AdjustIntervalSeconds"`
}

type Buyback struct {
	MinBuybackAmount string `toml:"MinBuybackAmount"`

	ShortWindowSeconds uint64 `toml:"ShortWindowSeconds"`
	LongWindowSeconds  uint64 `toml:"LongWindowSeconds"`
	MinSamples         int    `toml:"MinSamples"`

	PauseThresholdBps uint64 `toml:"PauseThresholdBps"`
	UptrendCapBps     uint64 `toml:"UptrendCapBps"`
	DowntrendCapBps   uint64 `toml:"DowntrendCapBps"`

	LowBandRatioBps  uint64 `toml:"LowBandRatioBps"`
	HighBandRatioBps uint64 `toml:"HighBandRatioBps"`

	LowBandAllocationBps  uint64 `toml:"LowBandAllocationBps"`
	DefaultAllocationBps  uint64 `toml:"DefaultAllocationBps"`
	HighBandAllocationBps uint64 `toml:"HighBandAllocationBps"`

	AllocationCooldownSeconds uint64 `toml:"AllocationCooldownSeconds"`
}

// Pauses suspends mutations per module. It satisfies the core's pause view.
type Pauses struct {
	Rewards  bool `toml:"Rewards"`
	Staking  bool `toml:"Staking"`
	Emission bool `toml:"Emission"`
	Buyback  bool `toml:"Buyback"`
}

// IsPaused reports whether the named module is suspended.
func (p Pauses) IsPaused(module string) bool {
	switch module {
	case "rewards":
		return p.Rewards
	case "staking":
		return p.Staking
	case "emission":
		return p.Emission
	case "buyback":
		return p.Buyback
	}
	return false
}

// Load reads the configuration at path, creating a default file first if
// none exists. Decoded values overlay the defaults, so a sparse file only
// needs the fields it changes.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path, cfg)
	}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config: unknown key %q in %s", undecoded[0].String(), path)
	}
	if strings.TrimSpace(cfg.Service.Name) == "" {
		cfg.Service.Name = "ikigai"
	}
	return cfg, nil
}

func createDefault(path string, cfg *Config) (*Config, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return nil, fmt.Errorf("config: write default %s: %w", path, err)
	}
	return cfg, nil
}

func parseAmount(field, value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, fmt.Errorf("config: %s must be set", field)
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("config: invalid %s %q", field, value)
	}
	return amount, nil
}
