package rewards

import (
	"errors"
	"math/big"
	"testing"

	"ikigai/core/types"
)

func TestCreditReferrerHappyPath(t *testing.T) {
	engine := newTestEngine(t, nil)
	referrer := (&types.Account{}).Normalize()
	now := uint64(1_700_000_000)

	outcome, err := engine.CreditReferrer(referrer, big.NewInt(10_000), now)
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if outcome.Credit == nil || outcome.Credit.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("expected credit 100, got %+v", outcome)
	}
	if referrer.PendingRewards.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("pending not credited: %s", referrer.PendingRewards)
	}
	if referrer.ReferralEarned.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("lifetime counter not advanced: %s", referrer.ReferralEarned)
	}
}

func TestCreditReferrerCooldownSkips(t *testing.T) {
	engine := newTestEngine(t, nil)
	referrer := (&types.Account{}).Normalize()
	now := uint64(1_700_000_000)

	if _, err := engine.CreditReferrer(referrer, big.NewInt(10_000), now); err != nil {
		t.Fatalf("first credit: %v", err)
	}
	outcome, err := engine.CreditReferrer(referrer, big.NewInt(10_000), now+1)
	if err != nil {
		t.Fatalf("second credit: %v", err)
	}
	if outcome.Credit != nil || outcome.SkipReason != ReferralSkipCooldown {
		t.Fatalf("expected cooldown skip, got %+v", outcome)
	}
	if referrer.PendingRewards.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("skipped credit must not mutate balances")
	}
}

func TestCreditReferrerWindowCounter(t *testing.T) {
	engine := newTestEngine(t, func(cfg *Config) {
		cfg.ReferralCooldownSeconds = 1
		cfg.MaxReferralCreditsPerWindow = 2
		cfg.ReferralWindowSeconds = 86_400
	})
	referrer := (&types.Account{}).Normalize()
	base := uint64(1_700_006_400) // aligned inside one day bucket

	for i := uint64(0); i < 2; i++ {
		outcome, err := engine.CreditReferrer(referrer, big.NewInt(10_000), base+i*10)
		if err != nil || outcome.Credit == nil {
			t.Fatalf("credit %d: %v %+v", i, err, outcome)
		}
	}
	outcome, err := engine.CreditReferrer(referrer, big.NewInt(10_000), base+30)
	if err != nil {
		t.Fatalf("third credit: %v", err)
	}
	if outcome.SkipReason != ReferralSkipWindowFull {
		t.Fatalf("expected window_full skip, got %+v", outcome)
	}
}

func TestCreditReferrerLifetimeCap(t *testing.T) {
	engine := newTestEngine(t, func(cfg *Config) {
		cfg.ReferralCooldownSeconds = 1
		cfg.MaxReferralCreditsPerWindow = 0
		cfg.MaxReferralReward = big.NewInt(150)
	})
	referrer := (&types.Account{}).Normalize()
	now := uint64(1_700_000_000)

	if _, err := engine.CreditReferrer(referrer, big.NewInt(10_000), now); err != nil {
		t.Fatalf("first credit: %v", err)
	}
	// Remaining allowance is 50; the 100 credit truncates.
	outcome, err := engine.CreditReferrer(referrer, big.NewInt(10_000), now+10)
	if err != nil {
		t.Fatalf("second credit: %v", err)
	}
	if outcome.Credit == nil || outcome.Credit.Cmp(big.NewInt(50)) != 0 {
		t.Fatalf("expected truncated credit 50, got %+v", outcome)
	}
	if _, err := engine.CreditReferrer(referrer, big.NewInt(10_000), now+20); !errors.Is(err, ErrMaxReferralRewardReached) {
		t.Fatalf("expected lifetime cap error, got %v", err)
	}
	if referrer.ReferralEarned.Cmp(big.NewInt(150)) != 0 {
		t.Fatalf("lifetime counter must stop at the cap: %s", referrer.ReferralEarned)
	}
}

func TestBindReferrer(t *testing.T) {
	var self, other types.Address
	self[19] = 1
	other[19] = 2

	acc := (&types.Account{}).Normalize()
	if err := BindReferrer(acc, self, self); !errors.Is(err, ErrSelfReferral) {
		t.Fatalf("expected self referral error, got %v", err)
	}
	if err := BindReferrer(acc, self, other); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if acc.Referrer == nil || *acc.Referrer != other {
		t.Fatalf("referrer not recorded")
	}
	if err := BindReferrer(acc, self, other); !errors.Is(err, ErrReferrerAlreadySet) {
		t.Fatalf("expected already-set error, got %v", err)
	}
}
