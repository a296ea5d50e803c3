package staking

import (
	"fmt"
	"math/big"

	"ikigai/core/types"
)

// Position is a single locked stake. An account exclusively owns its
// positions; merges consume their inputs and mint a fresh one.
type Position struct {
	ID         uint64   `json:"id"`
	Amount     *big.Int `json:"amount"`
	CreatedAt  uint64   `json:"createdAt"`
	LockExpiry uint64   `json:"lockExpiry"`
}

// RemainingLock reports the lock seconds left as of now, zero once expired.
func (p Position) RemainingLock(nowUnix uint64) uint64 {
	if nowUnix >= p.LockExpiry {
		return 0
	}
	return p.LockExpiry - nowUnix
}

// Clone returns a deep copy of the position.
func (p Position) Clone() Position {
	clone := p
	if p.Amount != nil {
		clone.Amount = new(big.Int).Set(p.Amount)
	}
	return clone
}

// PositionList holds an account's open positions and the id counter.
type PositionList struct {
	NextID uint64     `json:"nextId"`
	Items  []Position `json:"items,omitempty"`
}

// Clone returns a deep copy of the list.
func (pl *PositionList) Clone() *PositionList {
	if pl == nil {
		return nil
	}
	clone := &PositionList{NextID: pl.NextID}
	for _, p := range pl.Items {
		clone.Items = append(clone.Items, p.Clone())
	}
	return clone
}

// Ledger applies stake lifecycle transitions to an account and its position
// list. It owns no state of its own; the host stores accounts and lists.
type Ledger struct {
	params Params
}

// NewLedger validates the parameters and returns a ready ledger.
func NewLedger(params Params) (*Ledger, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("staking: %w", err)
	}
	return &Ledger{params: params}, nil
}

// Params returns the configured lock bounds.
func (l *Ledger) Params() Params {
	return l.params
}

// Stake opens a new position. The account's aggregate stake grows and its
// lock horizon extends to the furthest open position.
func (l *Ledger) Stake(acc *types.Account, positions *PositionList, amount *big.Int, lockSeconds, nowUnix uint64) (*Position, error) {
	if acc == nil || positions == nil {
		return nil, ErrNilAccount
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if lockSeconds < l.params.MinLockSeconds || lockSeconds > l.params.MaxLockSeconds {
		return nil, ErrLockOutOfRange
	}
	acc.Normalize()

	positions.NextID++
	position := Position{
		ID:         positions.NextID,
		Amount:     new(big.Int).Set(amount),
		CreatedAt:  nowUnix,
		LockExpiry: nowUnix + lockSeconds,
	}
	positions.Items = append(positions.Items, position)

	acc.StakedAmount.Add(acc.StakedAmount, amount)
	if acc.StakeStartTime == 0 {
		acc.StakeStartTime = nowUnix
	}
	if position.LockExpiry > acc.LockExpiryTime {
		acc.LockExpiryTime = position.LockExpiry
	}
	out := position.Clone()
	return &out, nil
}

// Unstake releases tokens once every lock has expired. Positions drain
// oldest-first; fully drained positions are removed.
func (l *Ledger) Unstake(acc *types.Account, positions *PositionList, amount *big.Int, nowUnix uint64) error {
	if acc == nil || positions == nil {
		return ErrNilAccount
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	acc.Normalize()
	if nowUnix < acc.LockExpiryTime {
		return ErrStakeLocked
	}
	if amount.Cmp(acc.StakedAmount) > 0 {
		return ErrInsufficientStake
	}

	remaining := new(big.Int).Set(amount)
	kept := positions.Items[:0]
	for _, position := range positions.Items {
		if remaining.Sign() == 0 {
			kept = append(kept, position)
			continue
		}
		if position.Amount.Cmp(remaining) <= 0 {
			remaining.Sub(remaining, position.Amount)
			continue
		}
		position.Amount = new(big.Int).Sub(position.Amount, remaining)
		remaining.SetInt64(0)
		kept = append(kept, position)
	}
	positions.Items = kept

	acc.StakedAmount.Sub(acc.StakedAmount, amount)
	if acc.StakedAmount.Sign() == 0 {
		acc.StakeStartTime = 0
		acc.LockExpiryTime = 0
	}
	return nil
}

// TotalStaked sums the open positions, a cross-check against the account's
// aggregate field.
func (pl *PositionList) TotalStaked() *big.Int {
	total := big.NewInt(0)
	if pl == nil {
		return total
	}
	for _, p := range pl.Items {
		if p.Amount != nil {
			total.Add(total, p.Amount)
		}
	}
	return total
}
