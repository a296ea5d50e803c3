package buyback

import (
	"fmt"
	"math/big"
)

const (
	DaySeconds = 24 * 60 * 60

	// Deviation scaling: a long-term uptrend doubles the short-term discount,
	// a downtrend quadruples it. Each branch carries its own cap.
	UptrendDeviationFactor   = 2
	DowntrendDeviationFactor = 4
)

// Params configures the price-deviation response and the allocation bands.
type Params struct {
	MinBuybackAmount *big.Int

	ShortWindowSeconds uint64
	LongWindowSeconds  uint64
	MinSamples         int

	PauseThresholdBps uint64
	UptrendCapBps     uint64
	DowntrendCapBps   uint64

	LowBandRatioBps  uint64
	HighBandRatioBps uint64

	LowBandAllocationBps  uint64
	DefaultAllocationBps  uint64
	HighBandAllocationBps uint64

	AllocationCooldownSeconds uint64
}

// DefaultParams returns the canonical production response curve.
func DefaultParams() Params {
	return Params{
		MinBuybackAmount:          big.NewInt(10_000),
		ShortWindowSeconds:        30 * DaySeconds,
		LongWindowSeconds:         90 * DaySeconds,
		MinSamples:                3,
		PauseThresholdBps:         12_000,
		UptrendCapBps:             2_000,
		DowntrendCapBps:           4_000,
		LowBandRatioBps:           9_000,
		HighBandRatioBps:          11_000,
		LowBandAllocationBps:      4_000,
		DefaultAllocationBps:      2_000,
		HighBandAllocationBps:     1_000,
		AllocationCooldownSeconds: 7 * DaySeconds,
	}
}

// Clone produces a deep copy of the parameters.
func (p Params) Clone() Params {
	clone := p
	if p.MinBuybackAmount != nil {
		clone.MinBuybackAmount = new(big.Int).Set(p.MinBuybackAmount)
	}
	return clone
}

// Validate ensures the response curve is self-consistent.
func (p Params) Validate() error {
	if p.MinBuybackAmount == nil || p.MinBuybackAmount.Sign() <= 0 {
		return fmt.Errorf("min buyback amount must be positive")
	}
	if p.ShortWindowSeconds == 0 || p.LongWindowSeconds <= p.ShortWindowSeconds {
		return fmt.Errorf("long window must exceed the short window")
	}
	if p.MinSamples <= 0 {
		return fmt.Errorf("min samples must be positive")
	}
	if p.PauseThresholdBps <= 10_000 {
		return fmt.Errorf("pause threshold must exceed parity")
	}
	if p.UptrendCapBps == 0 || p.DowntrendCapBps == 0 {
		return fmt.Errorf("deviation caps must be positive")
	}
	if p.LowBandRatioBps == 0 || p.HighBandRatioBps <= p.LowBandRatioBps {
		return fmt.Errorf("allocation bands must be ordered")
	}
	for name, bps := range map[string]uint64{
		"low band allocation":  p.LowBandAllocationBps,
		"default allocation":   p.DefaultAllocationBps,
		"high band allocation": p.HighBandAllocationBps,
	} {
		if bps == 0 || bps > 10_000 {
			return fmt.Errorf("%s must lie in (0, 10000]", name)
		}
	}
	if p.AllocationCooldownSeconds == 0 {
		return fmt.Errorf("allocation cooldown must be positive")
	}
	return nil
}
