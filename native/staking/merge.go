package staking

import (
	"math/big"

	"ikigai/core/types"
)

// Merge combines the named positions into one. The amounts add exactly; the
// remaining lock becomes the amount-weighted average of the inputs:
//
//	weightedLock = sum(amount_i * remainingLock_i) / totalAmount
//
// The formula is a known manipulation vector: pairing a dust amount with a
// long lock against a large amount with a short lock drags the average
// toward the short lock. It is preserved as-is for behavioural
// compatibility with the deployed economy; callers wanting stricter
// semantics must gate merges at the host layer.
func (l *Ledger) Merge(acc *types.Account, positions *PositionList, ids []uint64, nowUnix uint64) (*Position, error) {
	if acc == nil || positions == nil {
		return nil, ErrNilAccount
	}
	if len(ids) < 2 {
		return nil, ErrMergeTooFew
	}

	selected := make([]Position, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, ErrPositionNotFound
		}
		seen[id] = struct{}{}
		found := false
		for _, p := range positions.Items {
			if p.ID == id {
				selected = append(selected, p)
				found = true
				break
			}
		}
		if !found {
			return nil, ErrPositionNotFound
		}
	}

	totalAmount := big.NewInt(0)
	weighted := big.NewInt(0)
	earliestCreated := selected[0].CreatedAt
	for _, p := range selected {
		totalAmount.Add(totalAmount, p.Amount)
		term := new(big.Int).Mul(p.Amount, new(big.Int).SetUint64(p.RemainingLock(nowUnix)))
		weighted.Add(weighted, term)
		if p.CreatedAt < earliestCreated {
			earliestCreated = p.CreatedAt
		}
	}
	if totalAmount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	// Division last; the quotient always lands inside
	// [min(remaining), max(remaining)] of the inputs.
	weightedLock := new(big.Int).Quo(weighted, totalAmount).Uint64()
	if weightedLock > l.params.MaxLockSeconds {
		weightedLock = l.params.MaxLockSeconds
	}

	kept := positions.Items[:0]
	for _, p := range positions.Items {
		if _, consumed := seen[p.ID]; !consumed {
			kept = append(kept, p)
		}
	}
	positions.Items = kept

	positions.NextID++
	merged := Position{
		ID:         positions.NextID,
		Amount:     totalAmount,
		CreatedAt:  earliestCreated,
		LockExpiry: nowUnix + weightedLock,
	}
	positions.Items = append(positions.Items, merged)

	// The aggregate stake is unchanged; only the lock horizon may move.
	refreshLockExpiry(acc, positions)

	out := merged.Clone()
	return &out, nil
}

func refreshLockExpiry(acc *types.Account, positions *PositionList) {
	var max uint64
	for _, p := range positions.Items {
		if p.LockExpiry > max {
			max = p.LockExpiry
		}
	}
	acc.LockExpiryTime = max
}
