package backend

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"

	"github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend/chain"
	"github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend/claims"
	"github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend/txsign"
	ftypes "github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend/types"
	"github.com/mantlenetworkio/testnet-faucet/op-faucet/metrics"
	"github.com/mantlenetworkio/testnet-faucet/op-service/eth"
	opmetrics "github.com/mantlenetworkio/testnet-faucet/op-service/metrics"
	"github.com/mantlenetworkio/testnet-faucet/op-service/testlog"
)

const testKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var (
	testChainID = eth.ChainIDFromUInt64(5003)
	faucetAddr  = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	targetAddr  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	gasPrice    = big.NewInt(20_000_000_000)
)

type mockChain struct {
	mock.Mock
}

var _ ChainClient = (*mockChain)(nil)

func (m *mockChain) TransactionCount(ctx context.Context, addr common.Address) (uint64, error) {
	args := m.Called(ctx, addr)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockChain) GasPrice(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	price, _ := args.Get(0).(*big.Int)
	return price, args.Error(1)
}

func (m *mockChain) EstimateGas(ctx context.Context, from, to common.Address, value eth.ETH) uint64 {
	args := m.Called(ctx, from, to, value)
	return args.Get(0).(uint64)
}

func (m *mockChain) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	args := m.Called(ctx, raw)
	return args.Get(0).(common.Hash), args.Error(1)
}

func (m *mockChain) Balance(ctx context.Context, addr common.Address) (eth.ETH, error) {
	args := m.Called(ctx, addr)
	return args.Get(0).(eth.ETH), args.Error(1)
}

type testSetup struct {
	faucet *Faucet
	chain  *mockChain
	store  *claims.Store
	signer *txsign.Signer
}

func newTestFaucet(t *testing.T, m metrics.Metricer, cfg Config) *testSetup {
	logger := testlog.Logger(t, log.LevelDebug)
	store, err := claims.Open(logger, claims.Config{Backend: claims.BackendLevelDB, Path: claims.MemoryPath, CacheSize: 16})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	signer, err := txsign.NewSigner(testKey, testChainID)
	require.NoError(t, err)
	ch := &mockChain{}
	t.Cleanup(func() { ch.AssertExpectations(t) })
	if cfg.Amount.IsZero() {
		cfg.Amount = eth.OneEther
	}
	return &testSetup{
		faucet: NewFaucet(logger, m, cfg, ch, store, signer),
		chain:  ch,
		store:  store,
		signer: signer,
	}
}

func httpRequest(addr string) *ftypes.FaucetRequest {
	return &ftypes.FaucetRequest{Channel: ftypes.ChannelHTTP, Address: addr, Origin: "127.0.0.1"}
}

// expectSend primes the mock for one successful send, checking the signed tx on the way.
func (s *testSetup) expectSend(t *testing.T, nonce uint64, gas uint64) {
	s.chain.On("TransactionCount", mock.Anything, faucetAddr).Return(nonce, nil).Once()
	s.chain.On("GasPrice", mock.Anything).Return(new(big.Int).Set(gasPrice), nil).Once()
	s.chain.On("EstimateGas", mock.Anything, faucetAddr, targetAddr, eth.OneEther).Return(gas).Once()
	s.chain.On("SendRawTransaction", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			var tx types.Transaction
			require.NoError(t, tx.UnmarshalBinary(args.Get(1).([]byte)))
			require.Equal(t, nonce, tx.Nonce())
			require.Zero(t, gasPrice.Cmp(tx.GasPrice()))
			require.Equal(t, gas, tx.Gas())
			require.Equal(t, targetAddr, *tx.To())
			require.Zero(t, eth.OneEther.ToBig().Cmp(tx.Value()))
			from, err := types.Sender(types.NewEIP155Signer(testChainID.ToBig()), &tx)
			require.NoError(t, err)
			require.Equal(t, faucetAddr, from)
		}).
		Return(common.Hash{}, nil).Once()
}

func TestRequestFundsScenario(t *testing.T) {
	s := newTestFaucet(t, metrics.NoopMetrics{}, Config{})
	ctx := context.Background()

	s.chain.On("TransactionCount", mock.Anything, faucetAddr).Return(uint64(5), nil).Once()
	s.chain.On("GasPrice", mock.Anything).Return(big.NewInt(20_000_000_000), nil).Once()
	s.chain.On("EstimateGas", mock.Anything, faucetAddr, targetAddr, eth.OneEther).Return(uint64(21000)).Once()
	var sentHash common.Hash
	s.chain.On("SendRawTransaction", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			raw := args.Get(1).([]byte)
			signed, err := s.signer.Sign(txsign.TxParams{
				To: targetAddr, Value: eth.OneEther, Nonce: 5, GasPrice: big.NewInt(20_000_000_000), GasLimit: 21000,
			})
			require.NoError(t, err)
			require.Equal(t, signed.Raw, raw)
			sentHash = signed.Hash
		}).
		Return(common.HexToHash("0x5e5e"), nil).Once()

	hash, err := s.faucet.RequestFunds(ctx, httpRequest("0x1111111111111111111111111111111111111111"))
	require.NoError(t, err)
	require.Equal(t, common.HexToHash("0x5e5e"), hash, "hash reported by the node is returned")
	require.NotEqual(t, common.Hash{}, sentHash)

	ok, err := s.store.Has(ctx, claims.AddressKey("0x1111111111111111111111111111111111111111"))
	require.NoError(t, err)
	require.True(t, ok)

	// second request: rejected before any RPC, mock would fail on unexpected calls
	_, err = s.faucet.RequestFunds(ctx, httpRequest("0x1111111111111111111111111111111111111111"))
	require.ErrorIs(t, err, ErrAlreadyClaimed)
	stage, ok := StageOf(err)
	require.True(t, ok)
	require.Equal(t, StageCheckingClaim, stage)
}

func TestRequestFundsCaseInsensitive(t *testing.T) {
	s := newTestFaucet(t, metrics.NoopMetrics{}, Config{})
	s.expectSend(t, 0, 21000)
	_, err := s.faucet.RequestFunds(context.Background(), httpRequest("0x1111111111111111111111111111111111111111"))
	require.NoError(t, err)

	addr := "0x1111111111111111111111111111111111111111"
	for _, variant := range []string{addr, "  " + addr + "\n", "1111111111111111111111111111111111111111"} {
		_, err = s.faucet.RequestFunds(context.Background(), httpRequest(variant))
		require.ErrorIs(t, err, ErrAlreadyClaimed, variant)
	}
	s.chain.AssertNumberOfCalls(t, "SendRawTransaction", 1)
}

func TestRequestFundsMixedCaseClaim(t *testing.T) {
	s := newTestFaucet(t, metrics.NoopMetrics{}, Config{})
	require.NoError(t, s.store.Mark(context.Background(), claims.AddressKey("0xAbCdEf0000000000000000000000000000000001")))
	_, err := s.faucet.RequestFunds(context.Background(), httpRequest("0xABCDEF0000000000000000000000000000000001"))
	require.ErrorIs(t, err, ErrAlreadyClaimed)
}

func TestRequestFundsInvalidAddress(t *testing.T) {
	s := newTestFaucet(t, metrics.NoopMetrics{}, Config{})
	for _, input := range []string{"", "   ", "0x123", "0xZZ11111111111111111111111111111111111111", "hello", "0x11111111111111111111111111111111111111111"} {
		_, err := s.faucet.RequestFunds(context.Background(), httpRequest(input))
		require.ErrorIs(t, err, ErrInvalidAddress, input)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, input, verr.Input)
		stage, _ := StageOf(err)
		require.Equal(t, StageValidating, stage)
	}
}

func TestRequestFundsEstimateFallback(t *testing.T) {
	s := newTestFaucet(t, metrics.NoopMetrics{}, Config{})
	s.expectSend(t, 1, chain.DefaultGasLimit)
	_, err := s.faucet.RequestFunds(context.Background(), httpRequest(targetAddr.Hex()))
	require.NoError(t, err)
}

func TestRequestFundsParamErrors(t *testing.T) {
	t.Run("nonce", func(t *testing.T) {
		s := newTestFaucet(t, metrics.NoopMetrics{}, Config{})
		transportErr := &chain.TransportError{Method: "eth_getTransactionCount", Err: errors.New("connection refused")}
		s.chain.On("TransactionCount", mock.Anything, faucetAddr).Return(uint64(0), transportErr).Once()
		_, err := s.faucet.RequestFunds(context.Background(), httpRequest(targetAddr.Hex()))
		var te *chain.TransportError
		require.ErrorAs(t, err, &te)
		stage, _ := StageOf(err)
		require.Equal(t, StageFetchingParams, stage)

		ok, err := s.store.Has(context.Background(), claims.AddressKey(targetAddr.Hex()))
		require.NoError(t, err)
		require.False(t, ok, "no claim on failure")
	})
	t.Run("gas price", func(t *testing.T) {
		s := newTestFaucet(t, metrics.NoopMetrics{}, Config{})
		rpcErr := &chain.RPCError{Method: "eth_gasPrice", Code: -32601, Message: "method not found"}
		s.chain.On("TransactionCount", mock.Anything, faucetAddr).Return(uint64(0), nil).Once()
		s.chain.On("GasPrice", mock.Anything).Return(nil, rpcErr).Once()
		_, err := s.faucet.RequestFunds(context.Background(), httpRequest(targetAddr.Hex()))
		var re *chain.RPCError
		require.ErrorAs(t, err, &re)
		require.Equal(t, -32601, re.Code)
	})
}

func TestRequestFundsBroadcastFailureAllowsRetry(t *testing.T) {
	s := newTestFaucet(t, metrics.NoopMetrics{}, Config{})
	s.chain.On("TransactionCount", mock.Anything, faucetAddr).Return(uint64(3), nil).Once()
	s.chain.On("GasPrice", mock.Anything).Return(gasPrice, nil).Once()
	s.chain.On("EstimateGas", mock.Anything, faucetAddr, targetAddr, eth.OneEther).Return(uint64(21000)).Once()
	s.chain.On("SendRawTransaction", mock.Anything, mock.Anything).
		Return(common.Hash{}, &chain.RPCError{Method: "eth_sendRawTransaction", Code: -32000, Message: "nonce too low"}).Once()
	_, err := s.faucet.RequestFunds(context.Background(), httpRequest(targetAddr.Hex()))
	stage, _ := StageOf(err)
	require.Equal(t, StageBroadcasting, stage)

	// nothing recorded, nothing reserved: the same address may retry
	s.expectSend(t, 3, 21000)
	_, err = s.faucet.RequestFunds(context.Background(), httpRequest(targetAddr.Hex()))
	require.NoError(t, err)
}

func TestRequestFundsBroadcastNotCancelled(t *testing.T) {
	s := newTestFaucet(t, metrics.NoopMetrics{}, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	s.chain.On("TransactionCount", mock.Anything, faucetAddr).Return(uint64(0), nil).Once()
	s.chain.On("GasPrice", mock.Anything).Return(gasPrice, nil).Once()
	s.chain.On("EstimateGas", mock.Anything, faucetAddr, targetAddr, eth.OneEther).Return(uint64(21000)).Once()
	s.chain.On("SendRawTransaction", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			// the caller gives up mid-broadcast
			cancel()
			require.NoError(t, args.Get(0).(context.Context).Err())
		}).
		Return(common.HexToHash("0x01"), nil).Once()
	hash, err := s.faucet.RequestFunds(ctx, httpRequest(targetAddr.Hex()))
	require.NoError(t, err)
	require.Equal(t, common.HexToHash("0x01"), hash)
	ok, err := s.store.Has(context.Background(), claims.AddressKey(targetAddr.Hex()))
	require.NoError(t, err)
	require.True(t, ok, "claim recorded although the caller cancelled")
}

type failingMarkStore struct {
	ClaimStore
}

func (failingMarkStore) Mark(context.Context, claims.Key) error {
	return &claims.StoreError{Op: "mark", Err: errors.New("disk full")}
}

func TestRequestFundsClaimWriteFailure(t *testing.T) {
	m := metrics.NewMetrics("test")
	s := newTestFaucet(t, m, Config{})
	logger, logs := testlog.CaptureLogger(log.LevelInfo)
	f := NewFaucet(logger, m, Config{Amount: eth.OneEther}, s.chain, failingMarkStore{ClaimStore: s.store}, s.signer)

	s.expectSend(t, 0, 21000)
	hash, err := f.RequestFunds(context.Background(), httpRequest(targetAddr.Hex()))
	require.NoError(t, err, "the broadcast succeeded, the caller gets the hash")
	require.Equal(t, common.Hash{}, hash)

	rec := logs.FindLog(log.LevelError, "transaction broadcast but claim not recorded")
	require.NotNil(t, rec)
	require.Equal(t, StageRecordingClaim, rec.Attrs["stage"])

	c := opmetrics.NewMetricChecker(t, m.Registry())
	require.Equal(t, 1.0, c.FindByName("faucet_test_claim_write_failures_total").FindByLabels(nil).Counter.GetValue())
}

func TestRequestFundsStoreErrorAborts(t *testing.T) {
	s := newTestFaucet(t, metrics.NoopMetrics{}, Config{})
	f := NewFaucet(testlog.Logger(t, log.LevelInfo), metrics.NoopMetrics{}, Config{Amount: eth.OneEther}, s.chain, brokenStore{}, s.signer)
	_, err := f.RequestFunds(context.Background(), httpRequest(targetAddr.Hex()))
	var storeErr *claims.StoreError
	require.ErrorAs(t, err, &storeErr)
	stage, _ := StageOf(err)
	require.Equal(t, StageCheckingClaim, stage)
}

type brokenStore struct{}

func (brokenStore) Has(context.Context, claims.Key) (bool, error) {
	return false, &claims.StoreError{Op: "has", Err: errors.New("corrupted")}
}

func (brokenStore) Mark(context.Context, claims.Key) error {
	return &claims.StoreError{Op: "mark", Err: errors.New("corrupted")}
}

func TestRequestFundsDisabled(t *testing.T) {
	s := newTestFaucet(t, metrics.NoopMetrics{}, Config{})
	require.True(t, s.faucet.Enabled())
	s.faucet.Disable()
	require.False(t, s.faucet.Enabled())
	_, err := s.faucet.RequestFunds(context.Background(), httpRequest(targetAddr.Hex()))
	require.ErrorIs(t, err, ErrFaucetDisabled)
	s.faucet.Enable()
	s.expectSend(t, 0, 21000)
	_, err = s.faucet.RequestFunds(context.Background(), httpRequest(targetAddr.Hex()))
	require.NoError(t, err)
	s.faucet.Close()
	require.False(t, s.faucet.Enabled())
}

func TestRequestFundsBalanceCheck(t *testing.T) {
	t.Run("insufficient", func(t *testing.T) {
		s := newTestFaucet(t, metrics.NoopMetrics{}, Config{CheckBalance: true})
		s.chain.On("TransactionCount", mock.Anything, faucetAddr).Return(uint64(0), nil).Once()
		s.chain.On("GasPrice", mock.Anything).Return(gasPrice, nil).Once()
		s.chain.On("EstimateGas", mock.Anything, faucetAddr, targetAddr, eth.OneEther).Return(uint64(21000)).Once()
		// exactly the value, but not the fee
		s.chain.On("Balance", mock.Anything, faucetAddr).Return(eth.OneEther, nil).Once()
		_, err := s.faucet.RequestFunds(context.Background(), httpRequest(targetAddr.Hex()))
		require.ErrorIs(t, err, ErrInsufficientFunds)
		require.Equal(t, "insufficient_funds", Outcome(err))
	})
	t.Run("balance lookup fails", func(t *testing.T) {
		s := newTestFaucet(t, metrics.NoopMetrics{}, Config{CheckBalance: true})
		s.expectSend(t, 0, 21000)
		s.chain.On("Balance", mock.Anything, faucetAddr).Return(eth.ETH{}, errors.New("timeout")).Once()
		_, err := s.faucet.RequestFunds(context.Background(), httpRequest(targetAddr.Hex()))
		require.NoError(t, err)
	})
	t.Run("sufficient", func(t *testing.T) {
		s := newTestFaucet(t, metrics.NoopMetrics{}, Config{CheckBalance: true})
		s.expectSend(t, 0, 21000)
		s.chain.On("Balance", mock.Anything, faucetAddr).Return(eth.TenEther, nil).Once()
		_, err := s.faucet.RequestFunds(context.Background(), httpRequest(targetAddr.Hex()))
		require.NoError(t, err)
	})
}

func TestReserve(t *testing.T) {
	s := newTestFaucet(t, metrics.NoopMetrics{}, Config{})
	key := claims.IdentityKey(42)
	release, ok := s.faucet.Reserve(key)
	require.True(t, ok)
	_, ok = s.faucet.Reserve(key)
	require.False(t, ok)
	_, ok = s.faucet.Reserve(claims.IdentityKey(43))
	require.True(t, ok, "keys are independent")
	release()
	release()
	release2, ok := s.faucet.Reserve(key)
	require.True(t, ok)
	release2()
}

func TestRequestFundsInProgress(t *testing.T) {
	s := newTestFaucet(t, metrics.NoopMetrics{}, Config{})
	entered := make(chan struct{})
	proceed := make(chan struct{})
	s.chain.On("TransactionCount", mock.Anything, faucetAddr).Return(uint64(0), nil).Once()
	s.chain.On("GasPrice", mock.Anything).Return(gasPrice, nil).Once()
	s.chain.On("EstimateGas", mock.Anything, faucetAddr, targetAddr, eth.OneEther).Return(uint64(21000)).Once()
	s.chain.On("SendRawTransaction", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			close(entered)
			<-proceed
		}).
		Return(common.HexToHash("0x01"), nil).Once()

	var g errgroup.Group
	g.Go(func() error {
		_, err := s.faucet.RequestFunds(context.Background(), httpRequest(targetAddr.Hex()))
		return err
	})
	<-entered
	_, err := s.faucet.RequestFunds(context.Background(), httpRequest(targetAddr.Hex()))
	require.ErrorIs(t, err, ErrClaimInProgress)
	close(proceed)
	require.NoError(t, g.Wait())

	_, err = s.faucet.RequestFunds(context.Background(), httpRequest(targetAddr.Hex()))
	require.ErrorIs(t, err, ErrAlreadyClaimed)
}

func TestGateHonorsContext(t *testing.T) {
	s := newTestFaucet(t, metrics.NoopMetrics{}, Config{})
	require.NoError(t, s.faucet.gate.Acquire(context.Background(), 1))
	defer s.faucet.gate.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := s.faucet.RequestFunds(ctx, httpRequest(targetAddr.Hex()))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	stage, _ := StageOf(err)
	require.Equal(t, StageAwaitingGate, stage)

	_, ok := s.faucet.Reserve(claims.AddressKey(targetAddr.Hex()))
	require.True(t, ok, "reservation released after giving up")
}

// serialChain is a node stub that tracks overlap of nonce-sensitive sections.
type serialChain struct {
	mu      sync.Mutex
	nonce   uint64
	active  atomic.Int32
	overlap atomic.Bool
	nonces  []uint64
}

func (c *serialChain) enter() {
	if c.active.Add(1) > 1 {
		c.overlap.Store(true)
	}
}

func (c *serialChain) exit() {
	c.active.Add(-1)
}

func (c *serialChain) TransactionCount(ctx context.Context, addr common.Address) (uint64, error) {
	c.enter()
	defer c.exit()
	time.Sleep(time.Millisecond)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nonce, nil
}

func (c *serialChain) GasPrice(ctx context.Context) (*big.Int, error) {
	c.enter()
	defer c.exit()
	return new(big.Int).Set(gasPrice), nil
}

func (c *serialChain) EstimateGas(ctx context.Context, from, to common.Address, value eth.ETH) uint64 {
	return 21000
}

func (c *serialChain) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	c.enter()
	defer c.exit()
	var tx types.Transaction
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if tx.Nonce() != c.nonce {
		return common.Hash{}, &chain.RPCError{Method: "eth_sendRawTransaction", Code: -32000, Message: "nonce too low"}
	}
	c.nonces = append(c.nonces, tx.Nonce())
	c.nonce++
	return tx.Hash(), nil
}

func (c *serialChain) Balance(ctx context.Context, addr common.Address) (eth.ETH, error) {
	return eth.TenEther, nil
}

func TestSendGateSerializes(t *testing.T) {
	logger := testlog.Logger(t, log.LevelInfo)
	store, err := claims.Open(logger, claims.Config{Backend: claims.BackendPebble, Path: t.TempDir()})
	require.NoError(t, err)
	defer store.Close()
	signer, err := txsign.NewSigner(testKey, testChainID)
	require.NoError(t, err)
	node := &serialChain{nonce: 10}
	f := NewFaucet(logger, metrics.NoopMetrics{}, Config{Amount: eth.OneEther}, node, store, signer)

	const n = 16
	var g errgroup.Group
	hashes := make([]common.Hash, n)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			addr := common.BigToAddress(big.NewInt(int64(1000 + i)))
			h, err := f.RequestFunds(context.Background(), httpRequest(addr.Hex()))
			hashes[i] = h
			return err
		})
	}
	require.NoError(t, g.Wait())
	require.False(t, node.overlap.Load(), "nonce-sensitive sections must not overlap")

	node.mu.Lock()
	defer node.mu.Unlock()
	require.Len(t, node.nonces, n)
	for i, nonce := range node.nonces {
		require.Equal(t, uint64(10+i), nonce, "nonces are consecutive and unique")
	}
	seen := make(map[common.Hash]bool)
	for _, h := range hashes {
		require.False(t, seen[h])
		seen[h] = true
	}
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("  0x1111111111111111111111111111111111111111 ")
	require.NoError(t, err)
	require.Equal(t, targetAddr, addr)

	_, err = ParseAddress("0x11")
	require.ErrorIs(t, err, ErrInvalidAddress)
	require.Contains(t, err.Error(), "0x11")
}

func TestOutcome(t *testing.T) {
	require.Equal(t, "success", Outcome(nil))
	require.Equal(t, "disabled", Outcome(abort(StageValidating, ErrFaucetDisabled)))
	require.Equal(t, "invalid_address", Outcome(abort(StageValidating, &ValidationError{Input: "x", Reason: "bad"})))
	require.Equal(t, "already_claimed", Outcome(abort(StageCheckingClaim, ErrAlreadyClaimed)))
	require.Equal(t, "in_progress", Outcome(abort(StageCheckingClaim, ErrClaimInProgress)))
	require.Equal(t, "failed", Outcome(abort(StageBroadcasting, errors.New("boom"))))
	require.Equal(t, "broadcasting: boom", abort(StageBroadcasting, errors.New("boom")).Error())
}
