package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// EconomyMetrics exposes the counters and gauges for the reward, emission and
// buyback pipelines. All methods are nil-safe so callers never need to guard.
type EconomyMetrics struct {
	rewardsAccrued  *prometheus.CounterVec
	rewardsClaimed  prometheus.Counter
	referralSkipped *prometheus.CounterVec
	mintRejected    *prometheus.CounterVec
	buybackExecuted prometheus.Counter
	allocationBps   prometheus.Gauge
	emissionRate    prometheus.Gauge
}

var (
	economyOnce     sync.Once
	economyRegistry *EconomyMetrics
)

// Economy returns the process-wide metrics handle, registering the collectors
// on first use.
func Economy() *EconomyMetrics {
	economyOnce.Do(func() {
		economyRegistry = &EconomyMetrics{
			rewardsAccrued: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "economy_rewards_accrued_total",
				Help: "Count of reward accruals by activity kind.",
			}, []string{"activity"}),
			rewardsClaimed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "economy_rewards_claimed_total",
				Help: "Count of successful reward claims.",
			}),
			referralSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "economy_referral_skipped_total",
				Help: "Count of referral credits skipped by reason.",
			}, []string{"reason"}),
			mintRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "economy_mint_rejected_total",
				Help: "Count of mint attempts rejected by reason.",
			}, []string{"reason"}),
			buybackExecuted: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "economy_buyback_executed_total",
				Help: "Count of executed buyback rounds.",
			}),
			allocationBps: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "economy_buyback_allocation_bps",
				Help: "Current buyback share of deployed proceeds in basis points.",
			}),
			emissionRate: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "economy_emission_rate_per_day",
				Help: "Current base emission rate in token units per day.",
			}),
		}
		prometheus.MustRegister(
			economyRegistry.rewardsAccrued,
			economyRegistry.rewardsClaimed,
			economyRegistry.referralSkipped,
			economyRegistry.mintRejected,
			economyRegistry.buybackExecuted,
			economyRegistry.allocationBps,
			economyRegistry.emissionRate,
		)
	})
	return economyRegistry
}

func (m *EconomyMetrics) ObserveRewardAccrued(activity string) {
	if m == nil {
		return
	}
	if activity == "" {
		activity = "unknown"
	}
	m.rewardsAccrued.WithLabelValues(activity).Inc()
}

func (m *EconomyMetrics) ObserveRewardClaimed() {
	if m == nil {
		return
	}
	m.rewardsClaimed.Inc()
}

func (m *EconomyMetrics) ObserveReferralSkipped(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	m.referralSkipped.WithLabelValues(reason).Inc()
}

func (m *EconomyMetrics) ObserveMintRejected(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	m.mintRejected.WithLabelValues(reason).Inc()
}

func (m *EconomyMetrics) ObserveBuybackExecuted() {
	if m == nil {
		return
	}
	m.buybackExecuted.Inc()
}

func (m *EconomyMetrics) SetAllocationBps(bps uint64) {
	if m == nil {
		return
	}
	m.allocationBps.Set(float64(bps))
}

func (m *EconomyMetrics) SetEmissionRate(rate float64) {
	if m == nil {
		return
	}
	m.emissionRate.Set(rate)
}
