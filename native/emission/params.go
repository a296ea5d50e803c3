package emission

import (
	"fmt"
	"math/big"
)

// Window lengths used by the mint budget counters.
const (
	DaySeconds   = 24 * 60 * 60
	WeekSeconds  = 7 * DaySeconds
	MonthSeconds = 30 * DaySeconds
)

// Rate adjustment constants: the high-volatility response scales with the
// excess above the threshold up to a 20% cut; the low-volatility response is
// a fixed 2% step up.
const (
	MaxRateCutBps = 2_000
	RateStepUpBps = 200
)

// Params configures the mint budgets and the volatility response.
type Params struct {
	DailyLimit   *big.Int
	WeeklyLimit  *big.Int
	MonthlyLimit *big.Int
	MaxSupply    *big.Int

	InitialRatePerDay *big.Int
	MinRatePerDay     *big.Int
	MaxRatePerDay     *big.Int

	HighVolatilityBps uint64
	LowVolatilityBps  uint64

	AdjustIntervalSeconds uint64
}

// DefaultParams returns the canonical production budget.
func DefaultParams() Params {
	return Params{
		DailyLimit:            big.NewInt(685_000),
		WeeklyLimit:           big.NewInt(4_795_000),
		MonthlyLimit:          big.NewInt(20_550_000),
		MaxSupply:             big.NewInt(1_000_000_000),
		InitialRatePerDay:     big.NewInt(685_000),
		MinRatePerDay:         big.NewInt(100_000),
		MaxRatePerDay:         big.NewInt(1_000_000),
		HighVolatilityBps:     3_000,
		LowVolatilityBps:      1_000,
		AdjustIntervalSeconds: DaySeconds,
	}
}

// Clone produces a deep copy of the parameters.
func (p Params) Clone() Params {
	clone := p
	clone.DailyLimit = copyBigInt(p.DailyLimit)
	clone.WeeklyLimit = copyBigInt(p.WeeklyLimit)
	clone.MonthlyLimit = copyBigInt(p.MonthlyLimit)
	clone.MaxSupply = copyBigInt(p.MaxSupply)
	clone.InitialRatePerDay = copyBigInt(p.InitialRatePerDay)
	clone.MinRatePerDay = copyBigInt(p.MinRatePerDay)
	clone.MaxRatePerDay = copyBigInt(p.MaxRatePerDay)
	return clone
}

// Validate ensures the budget parameters are self-consistent.
func (p Params) Validate() error {
	for name, limit := range map[string]*big.Int{
		"daily limit":   p.DailyLimit,
		"weekly limit":  p.WeeklyLimit,
		"monthly limit": p.MonthlyLimit,
		"max supply":    p.MaxSupply,
	} {
		if limit == nil || limit.Sign() <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if p.WeeklyLimit.Cmp(p.DailyLimit) < 0 {
		return fmt.Errorf("weekly limit must be >= daily limit")
	}
	if p.MonthlyLimit.Cmp(p.WeeklyLimit) < 0 {
		return fmt.Errorf("monthly limit must be >= weekly limit")
	}
	if p.MinRatePerDay == nil || p.MinRatePerDay.Sign() <= 0 {
		return fmt.Errorf("min rate must be positive")
	}
	if p.MaxRatePerDay == nil || p.MaxRatePerDay.Cmp(p.MinRatePerDay) < 0 {
		return fmt.Errorf("max rate must be >= min rate")
	}
	if p.InitialRatePerDay == nil ||
		p.InitialRatePerDay.Cmp(p.MinRatePerDay) < 0 ||
		p.InitialRatePerDay.Cmp(p.MaxRatePerDay) > 0 {
		return fmt.Errorf("initial rate must lie within min/max bounds")
	}
	if p.HighVolatilityBps <= p.LowVolatilityBps {
		return fmt.Errorf("high volatility threshold must exceed the low threshold")
	}
	if p.AdjustIntervalSeconds == 0 {
		return fmt.Errorf("adjust interval must be positive")
	}
	return nil
}

func copyBigInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
