package buyback

import (
	"fmt"
	"math/big"
	"sync"

	"ikigai/native/bpsmath"
)

// PriceSample is one oracle observation.
type PriceSample struct {
	Price     *big.Int `json:"price"`
	Timestamp uint64   `json:"timestamp"`
}

// State is the snapshot of an engine's price history and allocation split.
type State struct {
	Samples            []PriceSample `json:"samples"`
	AllocationBps      uint64        `json:"allocationBps"`
	LastAllocationTime uint64        `json:"lastAllocationTime,omitempty"`
}

// Clone produces a deep copy of the state.
func (s State) Clone() State {
	clone := s
	clone.Samples = make([]PriceSample, len(s.Samples))
	for i, sample := range s.Samples {
		clone.Samples[i] = PriceSample{
			Price:     new(big.Int).Set(sample.Price),
			Timestamp: sample.Timestamp,
		}
	}
	return clone
}

// Quote is the full breakdown of one buyback computation, kept for event
// attributes and operator tooling.
type Quote struct {
	Avg30         *big.Int
	Avg90         *big.Int
	DeviationBps  uint64
	MultiplierBps uint64
	Paused        bool
	Amount        *big.Int
}

// Engine sizes treasury buybacks from trailing price deviation. It is an
// explicit context object owned by the host, one per token. A single writer
// lock guards the sample series and the allocation split.
type Engine struct {
	params Params

	mu    sync.Mutex
	state State
}

// NewEngine validates the parameters and starts with an empty history and
// the default allocation split.
func NewEngine(params Params) (*Engine, error) {
	params = params.Clone()
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("buyback: %w", err)
	}
	return &Engine{
		params: params,
		state:  State{AllocationBps: params.DefaultAllocationBps},
	}, nil
}

// Params returns a deep copy of the configured response curve.
func (e *Engine) Params() Params {
	return e.params.Clone()
}

// Snapshot returns a consistent copy of the engine state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Restore replaces the state wholesale when rehydrating from a persisted
// snapshot.
func (e *Engine) Restore(state State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = state.Clone()
	if e.state.AllocationBps == 0 {
		e.state.AllocationBps = e.params.DefaultAllocationBps
	}
}

// AllocationBps reports the current buyback share of deployed proceeds.
func (e *Engine) AllocationBps() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.AllocationBps
}

// ObservePrice appends a validated oracle sample and evicts everything older
// than the long trailing window.
func (e *Engine) ObservePrice(price *big.Int, nowUnix uint64) error {
	if price == nil || price.Sign() <= 0 {
		return ErrInvalidPrice
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.Samples = append(e.state.Samples, PriceSample{
		Price:     new(big.Int).Set(price),
		Timestamp: nowUnix,
	})
	e.prune(nowUnix)
	return nil
}

// prune drops samples that left the long window. Samples arrive in time
// order, so the series stays sorted and eviction walks from the front.
func (e *Engine) prune(nowUnix uint64) {
	cutoff := uint64(0)
	if nowUnix > e.params.LongWindowSeconds {
		cutoff = nowUnix - e.params.LongWindowSeconds
	}
	keep := 0
	for keep < len(e.state.Samples) && e.state.Samples[keep].Timestamp < cutoff {
		keep++
	}
	if keep > 0 {
		e.state.Samples = append([]PriceSample(nil), e.state.Samples[keep:]...)
	}
}

// trailingAverage computes the arithmetic mean over samples inside the
// window, with the division performed last.
func (e *Engine) trailingAverage(windowSeconds, nowUnix uint64) (*big.Int, int) {
	cutoff := uint64(0)
	if nowUnix > windowSeconds {
		cutoff = nowUnix - windowSeconds
	}
	sum := new(big.Int)
	count := 0
	for _, sample := range e.state.Samples {
		if sample.Timestamp < cutoff || sample.Timestamp > nowUnix {
			continue
		}
		sum.Add(sum, sample.Price)
		count++
	}
	if count == 0 {
		return nil, 0
	}
	return sum.Quo(sum, big.NewInt(int64(count))), count
}

// ComputeBuybackAmount sizes the next buyback from the current price against
// the 30- and 90-day trailing averages. A price more than the pause threshold
// above the long average returns a zero amount: the treasury sits out
// euphoric markets. Sparse history fails closed rather than assuming a
// baseline.
func (e *Engine) ComputeBuybackAmount(currentPrice *big.Int, nowUnix uint64) (Quote, error) {
	if currentPrice == nil || currentPrice.Sign() <= 0 {
		return Quote{}, ErrInvalidPrice
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	avg30, n30 := e.trailingAverage(e.params.ShortWindowSeconds, nowUnix)
	avg90, n90 := e.trailingAverage(e.params.LongWindowSeconds, nowUnix)
	if n30 < e.params.MinSamples || n90 < e.params.MinSamples {
		return Quote{}, fmt.Errorf("%w: have %d/%d samples, need %d",
			ErrInsufficientPriceHistory, n30, n90, e.params.MinSamples)
	}

	quote := Quote{Avg30: avg30, Avg90: avg90}

	// currentPrice > avg90 * threshold/10000, compared multiplication-only to
	// avoid a truncating division.
	scaledCurrent := new(big.Int).Mul(currentPrice, big.NewInt(bpsmath.Denominator))
	scaledPause := new(big.Int).Mul(avg90, new(big.Int).SetUint64(e.params.PauseThresholdBps))
	if scaledCurrent.Cmp(scaledPause) > 0 {
		quote.Paused = true
		quote.Amount = big.NewInt(0)
		return quote, nil
	}

	if currentPrice.Cmp(avg30) < 0 {
		gap := new(big.Int).Sub(avg30, currentPrice)
		gap.Mul(gap, big.NewInt(bpsmath.Denominator))
		gap.Quo(gap, avg30)
		quote.DeviationBps = gap.Uint64()
	}

	scaled := quote.DeviationBps * DowntrendDeviationFactor
	limit := e.params.DowntrendCapBps
	if avg90.Cmp(avg30) < 0 {
		scaled = quote.DeviationBps * UptrendDeviationFactor
		limit = e.params.UptrendCapBps
	}
	if scaled > limit {
		scaled = limit
	}
	quote.MultiplierBps = bpsmath.Denominator + scaled

	amount, err := bpsmath.MulBps(e.params.MinBuybackAmount, quote.MultiplierBps)
	if err != nil {
		return Quote{}, err
	}
	quote.Amount = amount
	return quote, nil
}

// UpdateAllocation re-buckets the buyback share of deployed proceeds by the
// current price's position against the long trailing average. Adjustments
// are rate-limited by the allocation cooldown.
func (e *Engine) UpdateAllocation(currentPrice *big.Int, nowUnix uint64) (uint64, error) {
	if currentPrice == nil || currentPrice.Sign() <= 0 {
		return 0, ErrInvalidPrice
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.LastAllocationTime > 0 &&
		nowUnix-e.state.LastAllocationTime < e.params.AllocationCooldownSeconds {
		return 0, ErrAllocationTooSoon
	}

	avg90, n90 := e.trailingAverage(e.params.LongWindowSeconds, nowUnix)
	if n90 < e.params.MinSamples {
		return 0, fmt.Errorf("%w: have %d samples, need %d",
			ErrInsufficientPriceHistory, n90, e.params.MinSamples)
	}

	ratio := new(big.Int).Mul(currentPrice, big.NewInt(bpsmath.Denominator))
	ratio.Quo(ratio, avg90)
	ratioBps := ratio.Uint64()

	allocation := e.params.DefaultAllocationBps
	switch {
	case ratioBps < e.params.LowBandRatioBps:
		allocation = e.params.LowBandAllocationBps
	case ratioBps > e.params.HighBandRatioBps:
		allocation = e.params.HighBandAllocationBps
	}
	e.state.AllocationBps = allocation
	e.state.LastAllocationTime = nowUnix
	return allocation, nil
}

// Volatility reports the realized price spread over the window as basis
// points of the window's minimum, the signal the emission controller consumes.
func (e *Engine) Volatility(windowSeconds, nowUnix uint64) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := uint64(0)
	if nowUnix > windowSeconds {
		cutoff = nowUnix - windowSeconds
	}
	var lo, hi *big.Int
	count := 0
	for _, sample := range e.state.Samples {
		if sample.Timestamp < cutoff || sample.Timestamp > nowUnix {
			continue
		}
		if lo == nil || sample.Price.Cmp(lo) < 0 {
			lo = sample.Price
		}
		if hi == nil || sample.Price.Cmp(hi) > 0 {
			hi = sample.Price
		}
		count++
	}
	if count < e.params.MinSamples {
		return 0, fmt.Errorf("%w: have %d samples, need %d",
			ErrInsufficientPriceHistory, count, e.params.MinSamples)
	}
	spread := new(big.Int).Sub(hi, lo)
	spread.Mul(spread, big.NewInt(bpsmath.Denominator))
	spread.Quo(spread, lo)
	return spread.Uint64(), nil
}
