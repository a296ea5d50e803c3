package core

import (
	"errors"
	"fmt"
	"sync"

	"ikigai/core/types"
	"ikigai/native/buyback"
	"ikigai/native/emission"
	"ikigai/native/staking"
	"ikigai/storage"
)

// snapshotKey is where the full economy snapshot lives in the backing store.
var snapshotKey = []byte("economy/snapshot")

// Snapshot is the serializable image of the whole economy: every account,
// every open position and the process-wide engine states. Account maps are
// keyed by hex address for a stable JSON shape.
type Snapshot struct {
	Accounts  map[string]*types.Account        `json:"accounts"`
	Positions map[string]*staking.PositionList `json:"positions"`
	Emission  emission.State                   `json:"emission"`
	Buyback   buyback.State                    `json:"buyback"`
}

// Snapshot captures a consistent image of the processor state. Per-account
// locks are taken through the global map lock, so the image is atomic with
// respect to in-flight operations.
func (p *Processor) Snapshot() Snapshot {
	p.mu.Lock()
	snap := Snapshot{
		Accounts:  make(map[string]*types.Account, len(p.accounts)),
		Positions: make(map[string]*staking.PositionList, len(p.positions)),
	}
	for addr, acc := range p.accounts {
		snap.Accounts[addr.String()] = acc.Clone()
	}
	for addr, list := range p.positions {
		snap.Positions[addr.String()] = list.Clone()
	}
	p.mu.Unlock()

	snap.Emission = p.emission.Snapshot()
	snap.Buyback = p.buyback.Snapshot()
	return snap
}

// Restore replaces the processor state wholesale from a snapshot.
func (p *Processor) Restore(snap Snapshot) error {
	accounts := make(map[types.Address]*types.Account, len(snap.Accounts))
	for key, acc := range snap.Accounts {
		addr, err := types.ParseAddress(key)
		if err != nil {
			return fmt.Errorf("core: restore accounts: %w", err)
		}
		accounts[addr] = acc.Clone().Normalize()
	}
	positions := make(map[types.Address]*staking.PositionList, len(snap.Positions))
	for key, list := range snap.Positions {
		addr, err := types.ParseAddress(key)
		if err != nil {
			return fmt.Errorf("core: restore positions: %w", err)
		}
		positions[addr] = list.Clone()
	}

	p.mu.Lock()
	p.accounts = accounts
	p.positions = positions
	p.locks = make(map[types.Address]*sync.Mutex)
	p.mu.Unlock()

	p.emission.Restore(snap.Emission)
	p.buyback.Restore(snap.Buyback)
	return nil
}

// Save persists the current snapshot to the backing store.
func (p *Processor) Save(db storage.Database) error {
	return storage.SaveJSON(db, snapshotKey, p.Snapshot())
}

// Load rehydrates the processor from the backing store. A missing snapshot
// leaves the genesis state untouched and reports false.
func (p *Processor) Load(db storage.Database) (bool, error) {
	var snap Snapshot
	if err := storage.LoadJSON(db, snapshotKey, &snap); err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := p.Restore(snap); err != nil {
		return false, err
	}
	return true, nil
}
