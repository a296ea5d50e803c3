package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ikigai/native/common"
)

const testAddrA = "0x00000000000000000000000000000000000000aa"
const testAddrB = "0x00000000000000000000000000000000000000bb"

func TestLoadCreatesDefaultFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "economy.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "ikigai", cfg.Service.Name)
	require.FileExists(t, path)

	// The generated file round-trips to the same configuration.
	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, reloaded)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "economy.toml")
	contents := `[service]
Name = "ikigai-test"
Treasury = "` + testAddrA + `"
RewardsPool = "` + testAddrB + `"
GenesisUnix = 1700000000

[rewards]
TradingRateBps = 450
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "ikigai-test", cfg.Service.Name)
	require.EqualValues(t, 450, cfg.Rewards.TradingRateBps)
	// Untouched fields keep their defaults.
	require.EqualValues(t, 200, cfg.Rewards.StakingRateBps)
	require.Equal(t, "685000", cfg.Emission.DailyLimit)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "economy.toml")
	contents := `[service]
Name = "ikigai"
LegacyField = true
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown key")
}

func TestCoreConversion(t *testing.T) {
	cfg := Default()
	cfg.Service.Treasury = testAddrA
	cfg.Service.RewardsPool = testAddrB
	cfg.Service.GenesisUnix = 1_700_000_000

	coreCfg, err := cfg.Core()
	require.NoError(t, err)
	require.NoError(t, coreCfg.Validate())

	require.Equal(t, "685000", coreCfg.Emission.DailyLimit.String())
	require.Equal(t, "10000", coreCfg.Buyback.MinBuybackAmount.String())
	require.Len(t, coreCfg.Rewards.Tiers, 4)
	require.Equal(t, "15000", coreCfg.Rewards.Tiers[2].MinStake.String())
	require.EqualValues(t, 2500, coreCfg.Rewards.Tiers[2].BonusBps)
	require.Equal(t, testAddrA, coreCfg.Treasury.String())
}

func TestCoreConversionRequiresAddresses(t *testing.T) {
	cfg := Default()
	_, err := cfg.Core()
	require.Error(t, err)
	require.Contains(t, err.Error(), "Treasury")
}

func TestCoreConversionRejectsBadAmount(t *testing.T) {
	cfg := Default()
	cfg.Service.Treasury = testAddrA
	cfg.Service.RewardsPool = testAddrB
	cfg.Emission.DailyLimit = "6.85e5"

	_, err := cfg.Core()
	require.Error(t, err)
	require.Contains(t, err.Error(), "DailyLimit")
}

func TestPausesImplementPauseView(t *testing.T) {
	pauses := Pauses{Staking: true}
	require.True(t, pauses.IsPaused(common.ModuleStaking))
	require.False(t, pauses.IsPaused(common.ModuleRewards))
	require.False(t, pauses.IsPaused("unknown"))
}
