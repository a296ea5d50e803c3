package emission

import (
	"fmt"
	"math/big"
	"sync"

	"ikigai/native/bpsmath"
)

// State is the snapshot of a controller's counters. Reads always receive a
// deep copy; the live counters never leak.
type State struct {
	BaseRatePerDay *big.Int `json:"baseRatePerDay"`
	TotalSupply    *big.Int `json:"totalSupply"`

	DailyMinted   *big.Int `json:"dailyMinted"`
	WeeklyMinted  *big.Int `json:"weeklyMinted"`
	MonthlyMinted *big.Int `json:"monthlyMinted"`

	DayStart   uint64 `json:"dayStart"`
	WeekStart  uint64 `json:"weekStart"`
	MonthStart uint64 `json:"monthStart"`

	LastAdjustTime uint64 `json:"lastAdjustTime,omitempty"`
}

// Clone produces a deep copy of the state.
func (s State) Clone() State {
	clone := s
	clone.BaseRatePerDay = copyBigInt(s.BaseRatePerDay)
	clone.TotalSupply = copyBigInt(s.TotalSupply)
	clone.DailyMinted = copyBigInt(s.DailyMinted)
	clone.WeeklyMinted = copyBigInt(s.WeeklyMinted)
	clone.MonthlyMinted = copyBigInt(s.MonthlyMinted)
	return clone
}

// Controller enforces the time-windowed mint budget and adapts the base
// emission rate to realized volatility. It is an explicit context object,
// one per token, never a package global, so parallel test instances stay
// independent. A single writer lock guards the counters.
type Controller struct {
	params Params

	mu    sync.Mutex
	state State
}

// NewController initialises the genesis state at the provided timestamp.
func NewController(params Params, genesisUnix uint64) (*Controller, error) {
	params = params.Clone()
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("emission: %w", err)
	}
	return &Controller{
		params: params,
		state: State{
			BaseRatePerDay: new(big.Int).Set(params.InitialRatePerDay),
			TotalSupply:    big.NewInt(0),
			DailyMinted:    big.NewInt(0),
			WeeklyMinted:   big.NewInt(0),
			MonthlyMinted:  big.NewInt(0),
			DayStart:       genesisUnix,
			WeekStart:      genesisUnix,
			MonthStart:     genesisUnix,
		},
	}, nil
}

// Params returns a deep copy of the configured budget.
func (c *Controller) Params() Params {
	return c.params.Clone()
}

// Snapshot returns a consistent copy of the counters.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Restore replaces the counters wholesale, used when rehydrating from a
// persisted snapshot.
func (c *Controller) Restore(state State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state.Clone()
	if c.state.BaseRatePerDay == nil {
		c.state.BaseRatePerDay = new(big.Int).Set(c.params.InitialRatePerDay)
	}
}

// materializeWindows rolls every counter whose window has elapsed. Windows
// stay aligned to their genesis phase: crossing N boundaries at once resets
// once and advances the start by the whole multiple.
func (s *State) materializeWindows(nowUnix uint64) {
	if elapsed := nowUnix - s.DayStart; nowUnix > s.DayStart && elapsed >= DaySeconds {
		s.DailyMinted.SetInt64(0)
		s.DayStart += (elapsed / DaySeconds) * DaySeconds
	}
	if elapsed := nowUnix - s.WeekStart; nowUnix > s.WeekStart && elapsed >= WeekSeconds {
		s.WeeklyMinted.SetInt64(0)
		s.WeekStart += (elapsed / WeekSeconds) * WeekSeconds
	}
	if elapsed := nowUnix - s.MonthStart; nowUnix > s.MonthStart && elapsed >= MonthSeconds {
		s.MonthlyMinted.SetInt64(0)
		s.MonthStart += (elapsed / MonthSeconds) * MonthSeconds
	}
}

// Reserve validates the mint against every window budget and the supply
// ceiling, then commits the counters. Callers that subsequently fail to
// apply the mint externally must call Release to roll the counters back.
func (c *Controller) Reserve(amount *big.Int, nowUnix uint64) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.materializeWindows(nowUnix)

	projected := new(big.Int).Add(c.state.DailyMinted, amount)
	if projected.Cmp(c.params.DailyLimit) > 0 {
		return fmt.Errorf("%w: daily budget %s", ErrExceedsEmissionCap, c.params.DailyLimit)
	}
	projected.Add(c.state.WeeklyMinted, amount)
	if projected.Cmp(c.params.WeeklyLimit) > 0 {
		return fmt.Errorf("%w: weekly budget %s", ErrExceedsEmissionCap, c.params.WeeklyLimit)
	}
	projected.Add(c.state.MonthlyMinted, amount)
	if projected.Cmp(c.params.MonthlyLimit) > 0 {
		return fmt.Errorf("%w: monthly budget %s", ErrExceedsEmissionCap, c.params.MonthlyLimit)
	}
	projected.Add(c.state.TotalSupply, amount)
	if projected.Cmp(c.params.MaxSupply) > 0 {
		return ErrExceedsMaxSupply
	}

	c.state.DailyMinted.Add(c.state.DailyMinted, amount)
	c.state.WeeklyMinted.Add(c.state.WeeklyMinted, amount)
	c.state.MonthlyMinted.Add(c.state.MonthlyMinted, amount)
	c.state.TotalSupply.Add(c.state.TotalSupply, amount)
	return nil
}

// Release rolls back a previous Reserve after an external mint failure.
func (c *Controller) Release(amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.DailyMinted = bpsmath.SubClamp(c.state.DailyMinted, amount)
	c.state.WeeklyMinted = bpsmath.SubClamp(c.state.WeeklyMinted, amount)
	c.state.MonthlyMinted = bpsmath.SubClamp(c.state.MonthlyMinted, amount)
	c.state.TotalSupply = bpsmath.SubClamp(c.state.TotalSupply, amount)
}

// TryMint is Reserve for callers with no external apply step.
func (c *Controller) TryMint(amount *big.Int, nowUnix uint64) error {
	return c.Reserve(amount, nowUnix)
}

// AdjustRate adapts the base emission rate to the realized 7-day
// volatility. High volatility cuts the rate proportionally to the excess
// above the threshold, capped at 20%; low volatility steps it up 2%. The
// result clamps to the configured rate bounds. Calls inside the adjustment
// interval fail with ErrAdjustmentTooSoon rather than silently no-opping, so
// hosts can distinguish a skipped tick from a neutral one.
func (c *Controller) AdjustRate(volatilityBps uint64, nowUnix uint64) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.LastAdjustTime > 0 && nowUnix-c.state.LastAdjustTime < c.params.AdjustIntervalSeconds {
		return nil, ErrAdjustmentTooSoon
	}

	rate := new(big.Int).Set(c.state.BaseRatePerDay)
	switch {
	case volatilityBps > c.params.HighVolatilityBps:
		cut := volatilityBps - c.params.HighVolatilityBps
		if cut > MaxRateCutBps {
			cut = MaxRateCutBps
		}
		delta, err := bpsmath.MulBps(rate, cut)
		if err != nil {
			return nil, err
		}
		rate.Sub(rate, delta)
	case volatilityBps < c.params.LowVolatilityBps:
		delta, err := bpsmath.MulBps(rate, RateStepUpBps)
		if err != nil {
			return nil, err
		}
		rate.Add(rate, delta)
	}

	rate = bpsmath.Clamp(rate, c.params.MinRatePerDay, c.params.MaxRatePerDay)
	c.state.BaseRatePerDay = rate
	c.state.LastAdjustTime = nowUnix
	return new(big.Int).Set(rate), nil
}
