package rewards

import "ikigai/core/types"

// LoyaltyBonusBps derives the time-in-protocol bonus on demand. Whole years
// only: the integer division means an account one day short of an
// anniversary earns the previous year's bonus. That truncation is inherited
// behaviour and must not be smoothed over.
func (e *Engine) LoyaltyBonusBps(acc *types.Account, nowUnix uint64) uint64 {
	if acc == nil || acc.FirstActivityTime == 0 || nowUnix <= acc.FirstActivityTime {
		return 0
	}
	years := (nowUnix - acc.FirstActivityTime) / SecondsPerYear
	bonus := years * e.cfg.LoyaltyBonusPerYearBps
	if e.cfg.MaxLoyaltyBps > 0 && bonus > e.cfg.MaxLoyaltyBps {
		bonus = e.cfg.MaxLoyaltyBps
	}
	return bonus
}

// touchFirstActivity records the loyalty anchor exactly once.
func touchFirstActivity(acc *types.Account, nowUnix uint64) {
	if acc.FirstActivityTime == 0 {
		acc.FirstActivityTime = nowUnix
	}
}
