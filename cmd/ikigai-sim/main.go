package main

import (
	"errors"
	"flag"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ikigai/config"
	"ikigai/core"
	"ikigai/core/types"
	"ikigai/native/buyback"
	"ikigai/native/emission"
	"ikigai/observability/logging"
	"ikigai/storage"
)

// simLedger is an in-process token ledger for simulation runs.
type simLedger struct {
	balances map[types.Address]*big.Int
	supply   *big.Int
}

func newSimLedger() *simLedger {
	return &simLedger{balances: make(map[types.Address]*big.Int), supply: big.NewInt(0)}
}

func (l *simLedger) balance(addr types.Address) *big.Int {
	bal, ok := l.balances[addr]
	if !ok {
		bal = big.NewInt(0)
		l.balances[addr] = bal
	}
	return bal
}

func (l *simLedger) Mint(to types.Address, amount *big.Int) error {
	l.balance(to).Add(l.balance(to), amount)
	l.supply.Add(l.supply, amount)
	return nil
}

func (l *simLedger) Burn(from types.Address, amount *big.Int) error {
	bal := l.balance(from)
	if bal.Cmp(amount) < 0 {
		return fmt.Errorf("insufficient balance")
	}
	bal.Sub(bal, amount)
	l.supply.Sub(l.supply, amount)
	return nil
}

func (l *simLedger) Transfer(from, to types.Address, amount *big.Int) error {
	bal := l.balance(from)
	if bal.Cmp(amount) < 0 {
		return fmt.Errorf("insufficient balance")
	}
	bal.Sub(bal, amount)
	l.balance(to).Add(l.balance(to), amount)
	return nil
}

func (l *simLedger) BalanceOf(addr types.Address) (*big.Int, error) {
	return new(big.Int).Set(l.balance(addr)), nil
}

// simOracle replays a scripted price.
type simOracle struct {
	price *big.Int
}

func (o *simOracle) CurrentPrice() (*big.Int, bool, error) {
	return new(big.Int).Set(o.price), true, nil
}

// pricePath is a deterministic wave: a slow climb with a sharp drawdown, so
// one run exercises the discount branches, the euphoria pause and both
// volatility responses.
func pricePath(dayIndex int) int64 {
	base := int64(100)
	switch {
	case dayIndex < 60:
		return base + int64(dayIndex)/6
	case dayIndex < 75:
		return base + 10 - 2*int64(dayIndex-60)
	default:
		return base - 20 + int64(dayIndex-75)
	}
}

func run() error {
	var cfgPath string
	var days int
	var useMem bool
	var metricsAddr string
	flag.StringVar(&cfgPath, "config", "economy.toml", "path to economy configuration")
	flag.IntVar(&days, "days", 120, "number of simulated days")
	flag.BoolVar(&useMem, "mem", false, "use an in-memory store instead of LevelDB")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "optional listen address for /metrics")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Service.Treasury) == "" {
		cfg.Service.Treasury = "0x00000000000000000000000000000000000000fe"
	}
	if strings.TrimSpace(cfg.Service.RewardsPool) == "" {
		cfg.Service.RewardsPool = "0x00000000000000000000000000000000000000ff"
	}
	if cfg.Service.GenesisUnix == 0 {
		cfg.Service.GenesisUnix = uint64(time.Now().Unix())
	}

	logger := logging.Setup(cfg.Service.Name, cfg.Service.Env, cfg.Service.LogLevel)

	coreCfg, err := cfg.Core()
	if err != nil {
		return err
	}

	var db storage.Database
	if useMem {
		db = storage.NewMemDB()
	} else {
		db, err = storage.NewLevelDB(filepath.Join(cfg.Service.DataDir, "economy"))
		if err != nil {
			return err
		}
	}
	defer db.Close()

	ledger := newSimLedger()
	oracle := &simOracle{price: big.NewInt(pricePath(0))}
	processor, err := core.NewProcessor(coreCfg, ledger, oracle)
	if err != nil {
		return err
	}
	processor.SetPauses(cfg.Pauses)
	processor.SetLogger(logger)

	// Fund the treasury so buyback rounds have something to deploy.
	treasury, _ := types.ParseAddress(cfg.Service.Treasury)
	if err := ledger.Mint(treasury, big.NewInt(10_000_000)); err != nil {
		return err
	}

	loaded, err := processor.Load(db)
	if err != nil {
		return err
	}
	logger.Info("simulator starting", "days", days, "resumed", loaded)

	if metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logger.Error("metrics listener failed", "err", err)
			}
		}()
	}

	genesis := cfg.Service.GenesisUnix
	clock := genesis
	processor.SetClock(func() time.Time { return time.Unix(int64(clock), 0) })

	trader, _ := types.ParseAddress("0x0000000000000000000000000000000000000001")
	referrer, _ := types.ParseAddress("0x0000000000000000000000000000000000000002")
	if err := processor.BindReferrer(trader, referrer); err != nil {
		logger.Warn("referrer binding skipped", "err", err)
	}

	for dayIndex := 0; dayIndex < days; dayIndex++ {
		clock = genesis + uint64(dayIndex)*emission.DaySeconds
		oracle.price = big.NewInt(pricePath(dayIndex))

		if err := processor.ObservePrice(); err != nil {
			return err
		}
		if _, err := processor.RecordTrade(trader, big.NewInt(1_000)); err != nil {
			return err
		}
		if dayIndex == 3 {
			if _, err := processor.Stake(trader, big.NewInt(15_000), 90*emission.DaySeconds); err != nil {
				return err
			}
		}
		if dayIndex > 0 && dayIndex%7 == 0 {
			if claimed, err := processor.Claim(trader); err != nil {
				logger.Warn("claim rejected", "day", dayIndex, "err", err)
			} else {
				logger.Info("claimed", "day", dayIndex, "amount", claimed.String())
			}
			if _, err := processor.AdjustEmission(); err != nil {
				logger.Warn("emission adjustment skipped", "day", dayIndex, "err", err)
			}
		}
		if dayIndex%30 == 0 && dayIndex > 0 {
			quote, err := processor.RunBuyback()
			switch {
			case errors.Is(err, buyback.ErrInsufficientPriceHistory):
				logger.Warn("buyback skipped", "day", dayIndex, "err", err)
			case err != nil:
				return err
			default:
				logger.Info("buyback round", "day", dayIndex,
					"amount", quote.Amount.String(), "paused", quote.Paused)
			}
			if _, err := processor.UpdateBuybackAllocation(); err != nil {
				logger.Warn("allocation update skipped", "day", dayIndex, "err", err)
			}
		}
	}

	if err := processor.Save(db); err != nil {
		return err
	}

	events := processor.DrainEvents()
	traderBalance, _ := ledger.BalanceOf(trader)
	logger.Info("simulation finished",
		"events", len(events),
		"traderBalance", traderBalance.String(),
		"supply", ledger.supply.String(),
	)
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ikigai-sim: %v\n", err)
		os.Exit(1)
	}
}
