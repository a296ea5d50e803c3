package common

import "errors"

// ErrModulePaused is returned when a host has suspended mutations for a
// module. Reads are never gated.
var ErrModulePaused = errors.New("module paused")

// Module identifiers accepted by the pause guard.
const (
	ModuleRewards  = "rewards"
	ModuleStaking  = "staking"
	ModuleEmission = "emission"
	ModuleBuyback  = "buyback"
)

// PauseView reports whether a module is currently paused. The host owns the
// authorization layer; the core only consults the resulting toggle.
type PauseView interface {
	IsPaused(module string) bool
}

// Guard rejects the operation when the named module is paused. A nil view or
// empty module name disables the check.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}
