package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ethereum/go-ethereum/log"

	"github.com/mantlenetworkio/testnet-faucet/op-faucet/config"
	"github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend/claims"
	"github.com/mantlenetworkio/testnet-faucet/op-service/cliapp"
	"github.com/mantlenetworkio/testnet-faucet/op-service/eth"
	"github.com/mantlenetworkio/testnet-faucet/op-service/testlog"
)

const testKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

type fakeLifecycle struct {
	started, stopped bool
}

func (f *fakeLifecycle) Start(ctx context.Context) error {
	f.started = true
	return nil
}

func (f *fakeLifecycle) Stop(ctx context.Context) error {
	f.stopped = true
	return nil
}

func (f *fakeLifecycle) Stopped() bool {
	return f.stopped
}

func runWithArgs(t *testing.T, args ...string) (*config.Config, string, error) {
	var cfg *config.Config
	var out, errOut bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err := run(ctx, &out, &errOut, append([]string{"faucet"}, args...),
		func(ctx context.Context, c *config.Config, logger log.Logger) (cliapp.Lifecycle, error) {
			cfg = c
			// stop the app right after it started
			cancel()
			return &fakeLifecycle{}, nil
		})
	return cfg, out.String(), err
}

func TestRunConfig(t *testing.T) {
	cfg, _, err := runWithArgs(t,
		"--rpc-url=http://localhost:8545",
		"--chain-id=5003",
		"--private-key="+testKey,
		"--amount-wei=1000000000000000000",
		"--state-backend=pebble",
	)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Equal(t, eth.ChainIDFromUInt64(5003), cfg.ChainID)
	require.Equal(t, claims.BackendPebble, cfg.State.Backend)
}

func TestRunInvalidConfig(t *testing.T) {
	cfg, _, err := runWithArgs(t, "--chain-id=5003")
	require.ErrorIs(t, err, config.ErrMissingRPCURL)
	require.Nil(t, cfg)
}

func TestDocMetrics(t *testing.T) {
	_, out, err := runWithArgs(t, "doc", "metrics", "--format=json")
	require.NoError(t, err)
	var docs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	require.NotEmpty(t, docs)
}

func TestClaimsCommands(t *testing.T) {
	dir := t.TempDir()
	store, err := claims.Open(testlog.Logger(t, log.LevelInfo), claims.Config{Backend: claims.BackendLevelDB, Path: dir})
	require.NoError(t, err)
	ctx := context.Background()
	before := time.Now().Truncate(time.Second)
	require.NoError(t, store.Mark(ctx, claims.AddressKey("0x1111111111111111111111111111111111111111")))
	require.NoError(t, store.Mark(ctx, claims.IdentityKey(42)))
	require.NoError(t, store.Close())

	_, out, err := runWithArgs(t, "claims", "check", "--state-path="+dir, "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	prefix := "addr:0x1111111111111111111111111111111111111111: claimed at "
	require.True(t, strings.HasPrefix(out, prefix), out)
	claimedAt, err := time.Parse(time.RFC3339, strings.TrimSpace(strings.TrimPrefix(out, prefix)))
	require.NoError(t, err)
	require.False(t, claimedAt.Before(before))

	_, out, err = runWithArgs(t, "claims", "check", "--state-path="+dir, "42")
	require.NoError(t, err)
	require.Contains(t, out, "tg:42: claimed at")

	_, out, err = runWithArgs(t, "claims", "check", "--state-path="+dir, "0x2222222222222222222222222222222222222222")
	require.NoError(t, err)
	require.Contains(t, out, "not claimed")

	_, _, err = runWithArgs(t, "claims", "check", "--state-path="+dir, "not-an-address")
	require.Error(t, err)

	_, out, err = runWithArgs(t, "claims", "list", "--state-path="+dir)
	require.NoError(t, err)
	require.Contains(t, out, "addr:0x1111111111111111111111111111111111111111")
	require.Contains(t, out, "tg:42")
	require.Contains(t, out, "2 claims")

	_, out, err = runWithArgs(t, "claims", "list", "--state-path="+dir, "--kind=telegram")
	require.NoError(t, err)
	require.NotContains(t, out, "addr:")
	require.Contains(t, out, "1 claims")

	_, _, err = runWithArgs(t, "claims", "list", "--state-path="+dir, "--kind=bogus")
	require.Error(t, err)
}
