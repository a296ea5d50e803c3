package core

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sort"
	"sync"
	"time"

	"ikigai/core/types"
	"ikigai/native/bpsmath"
	"ikigai/native/buyback"
	"ikigai/native/common"
	"ikigai/native/emission"
	"ikigai/native/rewards"
	"ikigai/native/staking"
	"ikigai/observability/metrics"
)

// TokenLedger is the host's token surface. The processor calls it only after
// its own invariant checks pass and never assumes success.
type TokenLedger interface {
	Mint(to types.Address, amount *big.Int) error
	Burn(from types.Address, amount *big.Int) error
	Transfer(from, to types.Address, amount *big.Int) error
	BalanceOf(addr types.Address) (*big.Int, error)
}

// PriceOracle supplies the current token price. The fresh flag attests that
// the value is current; a stale or failed read makes price-dependent
// operations fail closed.
type PriceOracle interface {
	CurrentPrice() (price *big.Int, fresh bool, err error)
}

// Processor orchestrates the reward, staking, emission and buyback engines
// over the account store. Operations touching the same account serialize on
// a per-account lock, acquired in address order when more than one account
// is involved; disjoint accounts proceed in parallel. The process-wide
// engines carry their own writer locks.
type Processor struct {
	cfg Config

	rewards  *rewards.Engine
	staking  *staking.Ledger
	emission *emission.Controller
	buyback  *buyback.Engine

	ledger TokenLedger
	oracle PriceOracle
	pauses common.PauseView
	clock  func() time.Time
	logger *slog.Logger

	mu        sync.Mutex
	accounts  map[types.Address]*types.Account
	positions map[types.Address]*staking.PositionList
	locks     map[types.Address]*sync.Mutex

	evMu   sync.Mutex
	events []types.Event
}

// NewProcessor validates the configuration and wires the engines. The token
// ledger is required; the oracle may be nil, in which case price-dependent
// operations fail with ErrPriceUnavailable.
func NewProcessor(cfg Config, ledger TokenLedger, oracle PriceOracle) (*Processor, error) {
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, fmt.Errorf("%w: token ledger", ErrNilCollaborator)
	}
	rewardEngine, err := rewards.NewEngine(cfg.Rewards)
	if err != nil {
		return nil, err
	}
	stakingLedger, err := staking.NewLedger(cfg.Staking)
	if err != nil {
		return nil, err
	}
	emissionController, err := emission.NewController(cfg.Emission, cfg.GenesisUnix)
	if err != nil {
		return nil, err
	}
	buybackEngine, err := buyback.NewEngine(cfg.Buyback)
	if err != nil {
		return nil, err
	}
	return &Processor{
		cfg:       cfg,
		rewards:   rewardEngine,
		staking:   stakingLedger,
		emission:  emissionController,
		buyback:   buybackEngine,
		ledger:    ledger,
		oracle:    oracle,
		clock:     time.Now,
		logger:    slog.Default(),
		accounts:  make(map[types.Address]*types.Account),
		positions: make(map[types.Address]*staking.PositionList),
		locks:     make(map[types.Address]*sync.Mutex),
	}, nil
}

// SetClock overrides the time source for deterministic tests.
func (p *Processor) SetClock(clock func() time.Time) {
	if clock != nil {
		p.clock = clock
	}
}

// SetPauses installs the host's pause switchboard.
func (p *Processor) SetPauses(pauses common.PauseView) {
	p.pauses = pauses
}

// SetLogger overrides the structured logger.
func (p *Processor) SetLogger(logger *slog.Logger) {
	if logger != nil {
		p.logger = logger
	}
}

func (p *Processor) now() uint64 {
	return uint64(p.clock().Unix())
}

// account returns the live account record, creating it on first touch.
// Callers must hold the account's lock.
func (p *Processor) account(addr types.Address) *types.Account {
	p.mu.Lock()
	defer p.mu.Unlock()
	acc, ok := p.accounts[addr]
	if !ok {
		acc = (&types.Account{}).Normalize()
		p.accounts[addr] = acc
	}
	return acc
}

func (p *Processor) positionList(addr types.Address) *staking.PositionList {
	p.mu.Lock()
	defer p.mu.Unlock()
	list, ok := p.positions[addr]
	if !ok {
		list = &staking.PositionList{}
		p.positions[addr] = list
	}
	return list
}

// lockAccounts serializes on the named accounts. Locks are acquired in
// address order so overlapping multi-account operations cannot deadlock.
func (p *Processor) lockAccounts(addrs ...types.Address) func() {
	unique := make([]types.Address, 0, len(addrs))
	seen := make(map[types.Address]struct{}, len(addrs))
	for _, addr := range addrs {
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}
		unique = append(unique, addr)
	}
	sort.Slice(unique, func(i, j int) bool {
		return bytes.Compare(unique[i][:], unique[j][:]) < 0
	})

	held := make([]*sync.Mutex, 0, len(unique))
	for _, addr := range unique {
		p.mu.Lock()
		lock, ok := p.locks[addr]
		if !ok {
			lock = &sync.Mutex{}
			p.locks[addr] = lock
		}
		p.mu.Unlock()
		lock.Lock()
		held = append(held, lock)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func (p *Processor) emit(evt types.Event) {
	p.evMu.Lock()
	p.events = append(p.events, evt)
	p.evMu.Unlock()
}

// DrainEvents returns the events accumulated since the last drain.
func (p *Processor) DrainEvents() []types.Event {
	p.evMu.Lock()
	defer p.evMu.Unlock()
	out := p.events
	p.events = nil
	return out
}

// Account returns a detached copy of the account state.
func (p *Processor) Account(addr types.Address) *types.Account {
	unlock := p.lockAccounts(addr)
	defer unlock()
	return p.account(addr).Clone()
}

// Positions returns a detached copy of the account's open positions.
func (p *Processor) Positions(addr types.Address) *staking.PositionList {
	unlock := p.lockAccounts(addr)
	defer unlock()
	return p.positionList(addr).Clone()
}

// referrerOf reads the immutable referral binding without the account lock;
// bindings are write-once so a racing read sees either nothing or the final
// value.
func (p *Processor) referrerOf(addr types.Address) *types.Address {
	p.mu.Lock()
	defer p.mu.Unlock()
	acc, ok := p.accounts[addr]
	if !ok || acc.Referrer == nil {
		return nil
	}
	ref := *acc.Referrer
	return &ref
}

// BindReferrer records the account's referrer. The binding is permanent.
func (p *Processor) BindReferrer(addr, referrer types.Address) error {
	if err := common.Guard(p.pauses, common.ModuleRewards); err != nil {
		return err
	}
	unlock := p.lockAccounts(addr)
	defer unlock()

	if err := rewards.BindReferrer(p.account(addr), addr, referrer); err != nil {
		return err
	}
	p.emit(types.Event{Type: rewards.EventReferrerBound, Attributes: map[string]string{
		"account":  addr.String(),
		"referrer": referrer.String(),
	}})
	return nil
}

// RecordTrade accrues the trading reward for the account and, when a
// referrer is bound, pays the referral side channel. Referral skips never
// abort the trade; only arithmetic failures propagate.
func (p *Processor) RecordTrade(trader types.Address, amount *big.Int) (*rewards.Outcome, error) {
	if err := common.Guard(p.pauses, common.ModuleRewards); err != nil {
		return nil, err
	}
	now := p.now()

	referrer := p.referrerOf(trader)
	locked := []types.Address{trader}
	if referrer != nil {
		locked = append(locked, *referrer)
	}
	unlock := p.lockAccounts(locked...)
	defer unlock()

	outcome, err := p.rewards.ComputeReward(p.account(trader), rewards.ActivityTrading, amount, now)
	if err != nil {
		return nil, err
	}
	p.emitAccrued(trader, outcome)

	if referrer != nil {
		if err := p.creditReferrer(*referrer, trader, amount, now); err != nil {
			return nil, err
		}
	}
	return outcome, nil
}

// RecordActivity accrues a non-trading reward, for host-driven staking or
// referral campaigns.
func (p *Processor) RecordActivity(addr types.Address, kind rewards.ActivityKind, amount *big.Int) (*rewards.Outcome, error) {
	if err := common.Guard(p.pauses, common.ModuleRewards); err != nil {
		return nil, err
	}
	unlock := p.lockAccounts(addr)
	defer unlock()

	outcome, err := p.rewards.ComputeReward(p.account(addr), kind, amount, p.now())
	if err != nil {
		return nil, err
	}
	p.emitAccrued(addr, outcome)
	return outcome, nil
}

func (p *Processor) emitAccrued(addr types.Address, outcome *rewards.Outcome) {
	metrics.Economy().ObserveRewardAccrued(outcome.Kind.String())
	p.emit(types.Event{Type: rewards.EventAccrued, Attributes: map[string]string{
		"account":       addr.String(),
		"activity":      outcome.Kind.String(),
		"reward":        outcome.Reward.String(),
		"multiplierBps": fmt.Sprintf("%d", outcome.TotalMultiplierBps),
	}})
}

// creditReferrer pays the referral credit. Rate-limit skips and an exhausted
// lifetime allowance are demoted to skip events; the referred activity has
// already committed and a starved side channel must not unwind it.
func (p *Processor) creditReferrer(referrer, trader types.Address, amount *big.Int, now uint64) error {
	outcome, err := p.rewards.CreditReferrer(p.account(referrer), amount, now)
	if err != nil {
		if errors.Is(err, rewards.ErrMaxReferralRewardReached) {
			p.emitReferralSkip(referrer, trader, "max_reached")
			return nil
		}
		return err
	}
	if outcome.SkipReason != "" {
		p.emitReferralSkip(referrer, trader, outcome.SkipReason)
		return nil
	}
	p.emit(types.Event{Type: rewards.EventReferralCredited, Attributes: map[string]string{
		"referrer": referrer.String(),
		"trader":   trader.String(),
		"credit":   outcome.Credit.String(),
	}})
	return nil
}

func (p *Processor) emitReferralSkip(referrer, trader types.Address, reason string) {
	metrics.Economy().ObserveReferralSkipped(reason)
	p.logger.Debug("referral credit skipped",
		"referrer", referrer.String(), "trader", trader.String(), "reason", reason)
	p.emit(types.Event{Type: rewards.EventReferralSkipped, Attributes: map[string]string{
		"referrer": referrer.String(),
		"trader":   trader.String(),
		"reason":   reason,
	}})
}

// Stake opens a locked position and accrues the staking-activity reward.
// The reward uses the post-stake balance for its tier lookup, so the stake
// commits first; a reward failure then restores both the account and the
// position list before returning, keeping the operation all-or-nothing.
func (p *Processor) Stake(addr types.Address, amount *big.Int, lockSeconds uint64) (*staking.Position, error) {
	if err := common.Guard(p.pauses, common.ModuleStaking); err != nil {
		return nil, err
	}
	now := p.now()
	unlock := p.lockAccounts(addr)
	defer unlock()

	acc := p.account(addr)
	positions := p.positionList(addr)
	priorAcc := acc.Clone()
	priorPositions := positions.Clone()

	position, err := p.staking.Stake(acc, positions, amount, lockSeconds, now)
	if err != nil {
		return nil, err
	}
	outcome, err := p.rewards.ComputeReward(acc, rewards.ActivityStaking, amount, now)
	if err != nil {
		*acc = *priorAcc
		*positions = *priorPositions
		return nil, err
	}

	p.emit(types.Event{Type: staking.EventStaked, Attributes: map[string]string{
		"account":    addr.String(),
		"amount":     amount.String(),
		"positionId": fmt.Sprintf("%d", position.ID),
		"lockExpiry": fmt.Sprintf("%d", position.LockExpiry),
	}})
	p.emitAccrued(addr, outcome)
	return position, nil
}

// Unstake releases unlocked tokens.
func (p *Processor) Unstake(addr types.Address, amount *big.Int) error {
	if err := common.Guard(p.pauses, common.ModuleStaking); err != nil {
		return err
	}
	unlock := p.lockAccounts(addr)
	defer unlock()

	if err := p.staking.Unstake(p.account(addr), p.positionList(addr), amount, p.now()); err != nil {
		return err
	}
	p.emit(types.Event{Type: staking.EventUnstaked, Attributes: map[string]string{
		"account": addr.String(),
		"amount":  amount.String(),
	}})
	return nil
}

// MergeStakes combines the named positions into one.
func (p *Processor) MergeStakes(addr types.Address, ids []uint64) (*staking.Position, error) {
	if err := common.Guard(p.pauses, common.ModuleStaking); err != nil {
		return nil, err
	}
	unlock := p.lockAccounts(addr)
	defer unlock()

	merged, err := p.staking.Merge(p.account(addr), p.positionList(addr), ids, p.now())
	if err != nil {
		return nil, err
	}
	p.emit(types.Event{Type: staking.EventMerged, Attributes: map[string]string{
		"account":    addr.String(),
		"positionId": fmt.Sprintf("%d", merged.ID),
		"amount":     merged.Amount.String(),
		"lockExpiry": fmt.Sprintf("%d", merged.LockExpiry),
	}})
	return merged, nil
}

// Claim pays out the account's pending rewards. The mint is budgeted through
// the emission controller first and the ledger call comes last; a ledger
// failure releases the budget and restores the account, so the operation is
// all-or-nothing.
func (p *Processor) Claim(addr types.Address) (*big.Int, error) {
	if err := common.Guard(p.pauses, common.ModuleRewards); err != nil {
		return nil, err
	}
	now := p.now()
	unlock := p.lockAccounts(addr)
	defer unlock()

	acc := p.account(addr)
	prior := acc.Clone()

	claimed, err := p.rewards.Claim(acc, now)
	if err != nil {
		return nil, err
	}
	if err := p.emission.Reserve(claimed, now); err != nil {
		*acc = *prior
		metrics.Economy().ObserveMintRejected(rejectReason(err))
		return nil, err
	}
	if err := p.ledger.Mint(addr, claimed); err != nil {
		p.emission.Release(claimed)
		*acc = *prior
		metrics.Economy().ObserveMintRejected("ledger")
		p.logger.Error("reward mint failed", "account", addr.String(), "err", err)
		return nil, fmt.Errorf("%w: mint: %v", ErrLedgerCallFailed, err)
	}

	metrics.Economy().ObserveRewardClaimed()
	p.emit(types.Event{Type: rewards.EventClaimed, Attributes: map[string]string{
		"account": addr.String(),
		"amount":  claimed.String(),
	}})
	return claimed, nil
}

func rejectReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, emission.ErrExceedsEmissionCap):
		return "emission_cap"
	case errors.Is(err, emission.ErrExceedsMaxSupply):
		return "max_supply"
	default:
		return "invalid"
	}
}

// currentPrice reads the oracle, failing closed on staleness.
func (p *Processor) currentPrice() (*big.Int, error) {
	if p.oracle == nil {
		return nil, ErrPriceUnavailable
	}
	price, fresh, err := p.oracle.CurrentPrice()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPriceUnavailable, err)
	}
	if !fresh || price == nil || price.Sign() <= 0 {
		return nil, ErrPriceUnavailable
	}
	return price, nil
}

// ObservePrice feeds the oracle's current price into the buyback history.
func (p *Processor) ObservePrice() error {
	if err := common.Guard(p.pauses, common.ModuleBuyback); err != nil {
		return err
	}
	price, err := p.currentPrice()
	if err != nil {
		return err
	}
	return p.buyback.ObservePrice(price, p.now())
}

// RunBuyback sizes and executes one buyback round. The bought-back tokens
// split between a burn and a transfer to the rewards pool per the configured
// burn share. A paused market returns a zero-amount quote without touching
// the ledger.
func (p *Processor) RunBuyback() (buyback.Quote, error) {
	if err := common.Guard(p.pauses, common.ModuleBuyback); err != nil {
		return buyback.Quote{}, err
	}
	now := p.now()
	price, err := p.currentPrice()
	if err != nil {
		return buyback.Quote{}, err
	}
	quote, err := p.buyback.ComputeBuybackAmount(price, now)
	if err != nil {
		return buyback.Quote{}, err
	}
	if quote.Paused || quote.Amount.Sign() == 0 {
		p.emit(types.Event{Type: buyback.EventSkipped, Attributes: map[string]string{
			"price":  price.String(),
			"paused": fmt.Sprintf("%t", quote.Paused),
		}})
		return quote, nil
	}

	burnAmount, err := bpsmath.MulBps(quote.Amount, p.cfg.BuybackBurnBps)
	if err != nil {
		return buyback.Quote{}, err
	}
	poolAmount := new(big.Int).Sub(quote.Amount, burnAmount)

	if poolAmount.Sign() > 0 {
		if err := p.ledger.Transfer(p.cfg.Treasury, p.cfg.RewardsPool, poolAmount); err != nil {
			return buyback.Quote{}, fmt.Errorf("%w: transfer: %v", ErrLedgerCallFailed, err)
		}
	}
	if burnAmount.Sign() > 0 {
		if err := p.ledger.Burn(p.cfg.Treasury, burnAmount); err != nil {
			return buyback.Quote{}, fmt.Errorf("%w: burn: %v", ErrLedgerCallFailed, err)
		}
	}

	metrics.Economy().ObserveBuybackExecuted()
	p.emit(types.Event{Type: buyback.EventExecuted, Attributes: map[string]string{
		"price":         price.String(),
		"amount":        quote.Amount.String(),
		"burned":        burnAmount.String(),
		"toRewardsPool": poolAmount.String(),
		"multiplierBps": fmt.Sprintf("%d", quote.MultiplierBps),
	}})
	return quote, nil
}

// UpdateBuybackAllocation re-buckets the buyback share of treasury proceeds.
func (p *Processor) UpdateBuybackAllocation() (uint64, error) {
	if err := common.Guard(p.pauses, common.ModuleBuyback); err != nil {
		return 0, err
	}
	price, err := p.currentPrice()
	if err != nil {
		return 0, err
	}
	allocation, err := p.buyback.UpdateAllocation(price, p.now())
	if err != nil {
		return 0, err
	}
	metrics.Economy().SetAllocationBps(allocation)
	p.emit(types.Event{Type: buyback.EventAllocation, Attributes: map[string]string{
		"allocationBps": fmt.Sprintf("%d", allocation),
	}})
	return allocation, nil
}

// AdjustEmission feeds realized price volatility into the emission rate.
func (p *Processor) AdjustEmission() (*big.Int, error) {
	if err := common.Guard(p.pauses, common.ModuleEmission); err != nil {
		return nil, err
	}
	now := p.now()
	volatility, err := p.buyback.Volatility(p.cfg.VolatilityWindowSeconds, now)
	if err != nil {
		return nil, err
	}
	rate, err := p.emission.AdjustRate(volatility, now)
	if err != nil {
		return nil, err
	}
	metrics.Economy().SetEmissionRate(float64(rate.Int64()))
	p.emit(types.Event{Type: emission.EventRateAdjusted, Attributes: map[string]string{
		"volatilityBps": fmt.Sprintf("%d", volatility),
		"ratePerDay":    rate.String(),
	}})
	return rate, nil
}
