package rewards

import (
	"fmt"
	"math/big"
)

// Tier couples a minimum staked balance with the bonus it unlocks.
type Tier struct {
	MinStake *big.Int
	BonusBps uint64
}

// TierTable is the ordered discount ladder, ascending by MinStake. The table
// is static at runtime; reconfiguration happens through the host's config
// surface, never mid-operation.
type TierTable []Tier

// Validate ensures thresholds are positive, strictly ascending and that the
// bonuses stay below the total multiplier ceiling supplied by the caller.
func (t TierTable) Validate(maxBonusBps uint64) error {
	var prev *big.Int
	for i, tier := range t {
		if tier.MinStake == nil || tier.MinStake.Sign() <= 0 {
			return fmt.Errorf("tier %d: min stake must be positive", i)
		}
		if prev != nil && tier.MinStake.Cmp(prev) <= 0 {
			return fmt.Errorf("tier %d: thresholds must be strictly ascending", i)
		}
		if maxBonusBps > 0 && tier.BonusBps > maxBonusBps {
			return fmt.Errorf("tier %d: bonus %d exceeds ceiling %d", i, tier.BonusBps, maxBonusBps)
		}
		prev = tier.MinStake
	}
	return nil
}

// Lookup returns the bonus of the highest threshold the stake meets or
// exceeds. Stakes below every threshold earn the base tier, zero bps.
func (t TierTable) Lookup(stake *big.Int) uint64 {
	if stake == nil || stake.Sign() <= 0 {
		return 0
	}
	bonus := uint64(0)
	for _, tier := range t {
		if stake.Cmp(tier.MinStake) >= 0 {
			bonus = tier.BonusBps
			continue
		}
		break
	}
	return bonus
}

// Clone produces a deep copy of the table.
func (t TierTable) Clone() TierTable {
	if t == nil {
		return nil
	}
	out := make(TierTable, len(t))
	for i, tier := range t {
		out[i] = Tier{BonusBps: tier.BonusBps}
		if tier.MinStake != nil {
			out[i].MinStake = new(big.Int).Set(tier.MinStake)
		}
	}
	return out
}
