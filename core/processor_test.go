package core

import (
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ikigai/core/types"
	"ikigai/native/bpsmath"
	"ikigai/native/common"
	"ikigai/native/emission"
	"ikigai/native/rewards"
	"ikigai/storage"
)

const day = uint64(24 * 60 * 60)

type ledgerCall struct {
	op     string
	from   types.Address
	to     types.Address
	amount *big.Int
}

type fakeLedger struct {
	calls    []ledgerCall
	failMint bool
}

func (l *fakeLedger) Mint(to types.Address, amount *big.Int) error {
	if l.failMint {
		return fmt.Errorf("rpc timeout")
	}
	l.calls = append(l.calls, ledgerCall{op: "mint", to: to, amount: new(big.Int).Set(amount)})
	return nil
}

func (l *fakeLedger) Burn(from types.Address, amount *big.Int) error {
	l.calls = append(l.calls, ledgerCall{op: "burn", from: from, amount: new(big.Int).Set(amount)})
	return nil
}

func (l *fakeLedger) Transfer(from, to types.Address, amount *big.Int) error {
	l.calls = append(l.calls, ledgerCall{op: "transfer", from: from, to: to, amount: new(big.Int).Set(amount)})
	return nil
}

func (l *fakeLedger) BalanceOf(types.Address) (*big.Int, error) {
	return big.NewInt(0), nil
}

type fakeOracle struct {
	price *big.Int
	fresh bool
	err   error
}

func (o *fakeOracle) CurrentPrice() (*big.Int, bool, error) {
	return o.price, o.fresh, o.err
}

type pauseSet map[string]bool

func (p pauseSet) IsPaused(module string) bool { return p[module] }

type harness struct {
	processor *Processor
	ledger    *fakeLedger
	oracle    *fakeOracle
	now       uint64
}

func (h *harness) setNow(now uint64) { h.now = now }

func addr(b byte) types.Address {
	var a types.Address
	a[19] = b
	return a
}

func newHarness(t *testing.T, genesis uint64) *harness {
	t.Helper()
	cfg := DefaultConfig(genesis)
	cfg.Treasury = addr(0xfe)
	cfg.RewardsPool = addr(0xff)

	h := &harness{
		ledger: &fakeLedger{},
		oracle: &fakeOracle{fresh: true},
		now:    genesis,
	}
	processor, err := NewProcessor(cfg, h.ledger, h.oracle)
	require.NoError(t, err)
	processor.SetClock(func() time.Time { return time.Unix(int64(h.now), 0) })
	h.processor = processor
	return h
}

// seedPrices walks the clock forward feeding the oracle so both trailing
// windows and the volatility lookback are populated at genesis+89d.
func (h *harness) seedPrices(t *testing.T, genesis uint64, prices []int64) {
	t.Helper()
	offsets := []uint64{0, 29 * day, 49 * day, 83 * day, 85 * day, 87 * day}
	require.Len(t, prices, len(offsets))
	for i, offset := range offsets {
		h.setNow(genesis + offset)
		h.oracle.price = big.NewInt(prices[i])
		require.NoError(t, h.processor.ObservePrice())
	}
	h.setNow(genesis + 89*day)
}

func TestRecordTradeCreditsReferrer(t *testing.T) {
	genesis := uint64(1_700_000_000)
	h := newHarness(t, genesis)
	trader, referrer := addr(1), addr(2)

	require.NoError(t, h.processor.BindReferrer(trader, referrer))

	outcome, err := h.processor.RecordTrade(trader, big.NewInt(10_000))
	require.NoError(t, err)
	// base 300 at 20000 bps: a cold trade still carries the 10000 bps combo
	// contribution on top of the 10000 bps base.
	require.Equal(t, "600", outcome.Reward.String())

	refAcc := h.processor.Account(referrer)
	require.Equal(t, "100", refAcc.PendingRewards.String())

	// Inside the referral cooldown the trade still lands, the credit skips.
	h.setNow(genesis + 60)
	_, err = h.processor.RecordTrade(trader, big.NewInt(10_000))
	require.NoError(t, err)
	require.Equal(t, "100", h.processor.Account(referrer).PendingRewards.String())

	var skipSeen bool
	for _, evt := range h.processor.DrainEvents() {
		if evt.Type == rewards.EventReferralSkipped {
			skipSeen = true
			require.Equal(t, rewards.ReferralSkipCooldown, evt.Attributes["reason"])
		}
	}
	require.True(t, skipSeen, "expected a referral skip event")
}

func TestBindReferrerRejectsSelfAndRebind(t *testing.T) {
	h := newHarness(t, 1_700_000_000)
	a, b, c := addr(1), addr(2), addr(3)

	require.ErrorIs(t, h.processor.BindReferrer(a, a), rewards.ErrSelfReferral)
	require.NoError(t, h.processor.BindReferrer(a, b))
	require.ErrorIs(t, h.processor.BindReferrer(a, c), rewards.ErrReferrerAlreadySet)
}

func TestClaimRollsBackOnLedgerFailure(t *testing.T) {
	genesis := uint64(1_700_000_000)
	h := newHarness(t, genesis)
	trader := addr(1)

	_, err := h.processor.RecordTrade(trader, big.NewInt(10_000))
	require.NoError(t, err)
	require.Equal(t, "600", h.processor.Account(trader).PendingRewards.String())

	h.ledger.failMint = true
	_, err = h.processor.Claim(trader)
	require.ErrorIs(t, err, ErrLedgerCallFailed)

	acc := h.processor.Account(trader)
	require.Equal(t, "600", acc.PendingRewards.String(), "pending must be restored")
	require.Zero(t, acc.LastClaimTime)

	h.ledger.failMint = false
	claimed, err := h.processor.Claim(trader)
	require.NoError(t, err)
	require.Equal(t, "600", claimed.String())

	acc = h.processor.Account(trader)
	require.Zero(t, acc.PendingRewards.Sign())
	require.Equal(t, "600", acc.ClaimedRewards.String())
	require.Len(t, h.ledger.calls, 1)
	require.Equal(t, "mint", h.ledger.calls[0].op)
}

func TestClaimHonorsEmissionBudget(t *testing.T) {
	genesis := uint64(1_700_000_000)
	cfg := DefaultConfig(genesis)
	cfg.Treasury = addr(0xfe)
	cfg.RewardsPool = addr(0xff)
	cfg.Emission.DailyLimit = big.NewInt(100)
	cfg.Emission.WeeklyLimit = big.NewInt(1_000)
	cfg.Emission.MonthlyLimit = big.NewInt(10_000)

	ledger := &fakeLedger{}
	processor, err := NewProcessor(cfg, ledger, nil)
	require.NoError(t, err)
	now := genesis
	processor.SetClock(func() time.Time { return time.Unix(int64(now), 0) })

	trader := addr(1)
	_, err = processor.RecordTrade(trader, big.NewInt(10_000))
	require.NoError(t, err)

	// Pending 600 exceeds the 100/day budget.
	_, err = processor.Claim(trader)
	require.ErrorIs(t, err, emission.ErrExceedsEmissionCap)
	require.Equal(t, "600", processor.Account(trader).PendingRewards.String())
	require.Empty(t, ledger.calls)
}

func TestPauseGuardBlocksMutations(t *testing.T) {
	h := newHarness(t, 1_700_000_000)
	h.processor.SetPauses(pauseSet{common.ModuleStaking: true})

	_, err := h.processor.Stake(addr(1), big.NewInt(100), 30*day)
	require.ErrorIs(t, err, common.ErrModulePaused)

	// Other modules stay live.
	_, err = h.processor.RecordTrade(addr(1), big.NewInt(100))
	require.NoError(t, err)
}

func TestStakeAccruesStakingReward(t *testing.T) {
	h := newHarness(t, 1_700_000_000)
	staker := addr(1)

	position, err := h.processor.Stake(staker, big.NewInt(5_000), 30*day)
	require.NoError(t, err)
	require.EqualValues(t, 1, position.ID)

	acc := h.processor.Account(staker)
	require.Equal(t, "5000", acc.StakedAmount.String())
	// base 100 at 200bps, tier +1500bps, no combo for staking activity.
	require.Equal(t, "115", acc.PendingRewards.String())
}

func TestStakeRollsBackWhenRewardOverflows(t *testing.T) {
	h := newHarness(t, 1_700_000_000)
	staker := addr(1)

	// Large enough that the reward multiplication exceeds 256 bits.
	huge := new(big.Int).Lsh(big.NewInt(1), 255)
	_, err := h.processor.Stake(staker, huge, 30*day)
	require.ErrorIs(t, err, bpsmath.ErrArithmeticOverflow)

	acc := h.processor.Account(staker)
	require.Zero(t, acc.StakedAmount.Sign(), "stake must be rolled back")
	require.Zero(t, acc.LockExpiryTime)
	require.Empty(t, h.processor.Positions(staker).Items)
	require.Empty(t, h.processor.DrainEvents(), "a failed stake must emit nothing")

	// The position id counter rewinds too, so the next stake starts at 1.
	position, err := h.processor.Stake(staker, big.NewInt(5_000), 30*day)
	require.NoError(t, err)
	require.EqualValues(t, 1, position.ID)
}

func TestObservePriceFailsClosed(t *testing.T) {
	h := newHarness(t, 1_700_000_000)

	h.oracle.price = big.NewInt(100)
	h.oracle.fresh = false
	require.ErrorIs(t, h.processor.ObservePrice(), ErrPriceUnavailable)

	h.oracle.fresh = true
	h.oracle.err = errors.New("feed down")
	require.ErrorIs(t, h.processor.ObservePrice(), ErrPriceUnavailable)

	_, err := h.processor.RunBuyback()
	require.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestRunBuybackSplitsBurnAndPool(t *testing.T) {
	genesis := uint64(1_700_000_000)
	h := newHarness(t, genesis)
	h.seedPrices(t, genesis, []int64{100, 100, 100, 100, 100, 100})

	// 10% below the short average in a flat market: multiplier caps at 14000.
	h.oracle.price = big.NewInt(90)
	quote, err := h.processor.RunBuyback()
	require.NoError(t, err)
	require.EqualValues(t, 14_000, quote.MultiplierBps)
	require.Equal(t, "14000", quote.Amount.String())

	require.Len(t, h.ledger.calls, 2)
	require.Equal(t, "transfer", h.ledger.calls[0].op)
	require.Equal(t, "7000", h.ledger.calls[0].amount.String())
	require.Equal(t, "burn", h.ledger.calls[1].op)
	require.Equal(t, "7000", h.ledger.calls[1].amount.String())
}

func TestRunBuybackPausesAboveLongAverage(t *testing.T) {
	genesis := uint64(1_700_000_000)
	h := newHarness(t, genesis)
	h.seedPrices(t, genesis, []int64{100, 100, 100, 100, 100, 100})

	h.oracle.price = big.NewInt(121)
	quote, err := h.processor.RunBuyback()
	require.NoError(t, err)
	require.True(t, quote.Paused)
	require.Zero(t, quote.Amount.Sign())
	require.Empty(t, h.ledger.calls, "a paused round must not touch the ledger")
}

func TestAdjustEmissionFromRealizedVolatility(t *testing.T) {
	genesis := uint64(1_700_000_000)
	h := newHarness(t, genesis)
	h.seedPrices(t, genesis, []int64{100, 100, 100, 100, 100, 100})

	// Flat prices: zero volatility steps the rate up 2%.
	rate, err := h.processor.AdjustEmission()
	require.NoError(t, err)
	require.Equal(t, "698700", rate.String())
}

func TestAdjustEmissionRequiresHistory(t *testing.T) {
	h := newHarness(t, 1_700_000_000)
	_, err := h.processor.AdjustEmission()
	require.Error(t, err)
}

func TestSnapshotRoundTrip(t *testing.T) {
	genesis := uint64(1_700_000_000)
	h := newHarness(t, genesis)
	trader := addr(1)

	_, err := h.processor.RecordTrade(trader, big.NewInt(10_000))
	require.NoError(t, err)
	_, err = h.processor.Stake(trader, big.NewInt(5_000), 30*day)
	require.NoError(t, err)

	db := storage.NewMemDB()
	defer db.Close()
	require.NoError(t, h.processor.Save(db))

	restored := newHarness(t, genesis)
	loaded, err := restored.processor.Load(db)
	require.NoError(t, err)
	require.True(t, loaded)

	want := h.processor.Account(trader)
	got := restored.processor.Account(trader)
	require.Equal(t, want.PendingRewards.String(), got.PendingRewards.String())
	require.Equal(t, want.StakedAmount.String(), got.StakedAmount.String())
	require.Equal(t, want.ComboMultiplierBps, got.ComboMultiplierBps)

	positions := restored.processor.Positions(trader)
	require.Len(t, positions.Items, 1)
	require.Equal(t, "5000", positions.Items[0].Amount.String())

	// A fresh database reports no snapshot and leaves genesis state alone.
	empty := storage.NewMemDB()
	defer empty.Close()
	third := newHarness(t, genesis)
	loaded, err = third.processor.Load(empty)
	require.NoError(t, err)
	require.False(t, loaded)
}
