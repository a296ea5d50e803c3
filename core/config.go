package core

import (
	"fmt"

	"ikigai/core/types"
	"ikigai/native/buyback"
	"ikigai/native/emission"
	"ikigai/native/rewards"
	"ikigai/native/staking"
)

// Config aggregates the engine parameter sets plus the processor's own
// wiring: the treasury and reward pool addresses the buyback moves tokens
// between and the share of bought-back tokens that is burned.
type Config struct {
	Rewards  rewards.Config
	Staking  staking.Params
	Emission emission.Params
	Buyback  buyback.Params

	Treasury    types.Address
	RewardsPool types.Address

	BuybackBurnBps uint64

	// VolatilityWindowSeconds sizes the realized-volatility lookback feeding
	// emission adjustments.
	VolatilityWindowSeconds uint64

	GenesisUnix uint64
}

// DefaultConfig returns the production parameter sets anchored at the given
// genesis timestamp.
func DefaultConfig(genesisUnix uint64) Config {
	return Config{
		Rewards:                 rewards.DefaultConfig(),
		Staking:                 staking.DefaultParams(),
		Emission:                emission.DefaultParams(),
		Buyback:                 buyback.DefaultParams(),
		BuybackBurnBps:          5_000,
		VolatilityWindowSeconds: 7 * emission.DaySeconds,
		GenesisUnix:             genesisUnix,
	}
}

// Clone produces a deep copy of the configuration.
func (c Config) Clone() Config {
	clone := c
	clone.Rewards = c.Rewards.Clone()
	clone.Emission = c.Emission.Clone()
	clone.Buyback = c.Buyback.Clone()
	return clone
}

// Validate checks the processor-level wiring; the engine constructors
// validate their own parameter sets.
func (c Config) Validate() error {
	if c.BuybackBurnBps > 10_000 {
		return fmt.Errorf("core: buyback burn split must not exceed 10000 bps")
	}
	if c.VolatilityWindowSeconds == 0 {
		return fmt.Errorf("core: volatility window must be positive")
	}
	if c.Treasury == c.RewardsPool {
		return fmt.Errorf("core: treasury and rewards pool must differ")
	}
	return nil
}
