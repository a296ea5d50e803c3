package rewards

import "ikigai/core/types"

// Combo state machine: Cold accounts carry the neutral multiplier, Warm
// accounts a boosted one. Decay is lazy: a dormant account keeps its stale
// stored multiplier and only drops back to Cold when the next qualifying
// trade re-evaluates the window. Nothing here runs on a timer.

// CurrentComboBps materialises the combo multiplier as of now. The stored
// value is honoured only while the window since the last qualifying action
// has not elapsed.
func (e *Engine) CurrentComboBps(acc *types.Account, nowUnix uint64) uint64 {
	if acc == nil || acc.LastActionTime == 0 {
		return BaseMultiplierBps
	}
	if nowUnix < acc.LastActionTime || nowUnix-acc.LastActionTime > e.cfg.ComboWindowSeconds {
		return BaseMultiplierBps
	}
	if acc.ComboMultiplierBps < BaseMultiplierBps {
		return BaseMultiplierBps
	}
	return acc.ComboMultiplierBps
}

// advanceCombo registers a qualifying trade: the effective multiplier grows
// by one step, capped, and the action timestamp moves forward. The effective
// value is the materialised one, so an expired streak restarts from base.
func (e *Engine) advanceCombo(acc *types.Account, nowUnix uint64) {
	effective := e.CurrentComboBps(acc, nowUnix)
	next := effective + e.cfg.ComboStepBps
	if next > e.cfg.MaxComboMultiplierBps {
		next = e.cfg.MaxComboMultiplierBps
	}
	acc.ComboMultiplierBps = next
	acc.LastActionTime = nowUnix
}
