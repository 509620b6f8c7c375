package backend

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend/claims"
	"github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend/txsign"
	ftypes "github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend/types"
	"github.com/mantlenetworkio/testnet-faucet/op-faucet/metrics"
	"github.com/mantlenetworkio/testnet-faucet/op-service/eth"
	"github.com/mantlenetworkio/testnet-faucet/op-service/locks"
)

// ChainClient is the node access the faucet needs.
type ChainClient interface {
	TransactionCount(ctx context.Context, addr common.Address) (uint64, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	// EstimateGas never fails, it falls back to a default gas limit instead.
	EstimateGas(ctx context.Context, from, to common.Address, value eth.ETH) uint64
	SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error)
	Balance(ctx context.Context, addr common.Address) (eth.ETH, error)
}

type ClaimStore interface {
	Has(ctx context.Context, key claims.Key) (bool, error)
	Mark(ctx context.Context, key claims.Key) error
}

type TxSigner interface {
	Address() common.Address
	ChainID() eth.ChainID
	Sign(p txsign.TxParams) (*txsign.SignedTx, error)
}

type Config struct {
	Amount eth.ETH
	// CheckBalance rejects requests the funding account cannot pay for, before signing.
	CheckBalance bool
}

// Faucet sends the fixed amount to each address at most once.
//
// All sends go through a single FIFO gate, from nonce lookup until the broadcast
// returns, so concurrent requests never reuse a nonce. Keys being served are
// reserved until their claim is recorded, so the same address or chat identity
// is never served twice concurrently.
type Faucet struct {
	mu sync.RWMutex

	log log.Logger
	m   metrics.Metricer

	chain  ChainClient
	store  ClaimStore
	signer TxSigner

	amount       eth.ETH
	checkBalance bool

	gate     *semaphore.Weighted
	inflight locks.RWMap[claims.Key, struct{}]

	// true when the faucet may not serve any new requests
	disabled bool
}

func NewFaucet(logger log.Logger, m metrics.Metricer, cfg Config, chain ChainClient, store ClaimStore, signer TxSigner) *Faucet {
	return &Faucet{
		log:          logger.New("faucet", signer.Address(), "chain", signer.ChainID()),
		m:            m,
		chain:        chain,
		store:        store,
		signer:       signer,
		amount:       cfg.Amount,
		checkBalance: cfg.CheckBalance,
		gate:         semaphore.NewWeighted(1),
	}
}

func (f *Faucet) Enable() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log.Info("Enabling faucet")
	f.disabled = false
}

func (f *Faucet) Disable() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log.Info("Disabling faucet")
	f.disabled = true
}

func (f *Faucet) Enabled() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return !f.disabled
}

func (f *Faucet) Close() {
	f.log.Info("Closing faucet")
	f.Disable()
}

func (f *Faucet) Address() common.Address {
	return f.signer.Address()
}

func (f *Faucet) ChainID() eth.ChainID {
	return f.signer.ChainID()
}

func (f *Faucet) Amount() eth.ETH {
	return f.amount
}

func (f *Faucet) Balance(ctx context.Context) (eth.ETH, error) {
	bal, err := f.chain.Balance(ctx, f.signer.Address())
	if err != nil {
		return eth.ETH{}, err
	}
	f.m.RecordBalance(bal)
	return bal, nil
}

// Claimed reports whether the key was already served.
func (f *Faucet) Claimed(ctx context.Context, key claims.Key) (bool, error) {
	return f.store.Has(ctx, key)
}

// RecordClaim durably marks the key as served.
func (f *Faucet) RecordClaim(ctx context.Context, key claims.Key) error {
	return f.store.Mark(ctx, key)
}

// Reserve marks the key as being served. It returns ok=false if the key is
// already reserved. The release func must be called exactly once.
func (f *Faucet) Reserve(key claims.Key) (release func(), ok bool) {
	if !f.inflight.CreateIfMissing(key, func() struct{} { return struct{}{} }) {
		return nil, false
	}
	var once sync.Once
	return func() {
		once.Do(func() { f.inflight.Delete(key) })
	}, true
}

// ParseAddress validates a destination: surrounding whitespace is ignored,
// and the rest must be 40 hex characters, optionally 0x-prefixed.
func ParseAddress(input string) (common.Address, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return common.Address{}, &ValidationError{Input: input, Reason: "empty address"}
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, &ValidationError{Input: input, Reason: "expected 20 bytes of hex, optionally 0x-prefixed"}
	}
	return common.HexToAddress(s), nil
}

// RequestFunds sends the faucet amount to the requested address, if it was never served before.
// It returns the hash of the broadcast transaction.
func (f *Faucet) RequestFunds(ctx context.Context, req *ftypes.FaucetRequest) (hash common.Hash, err error) {
	onDone := f.m.RecordFundAction(req.Channel, f.amount)
	defer func() { onDone(Outcome(err)) }()

	logger := f.log.New("channel", req.Channel, "origin", req.Origin)
	if !f.Enabled() {
		logger.Info("Cannot serve request, faucet is disabled")
		return common.Hash{}, abort(StageValidating, ErrFaucetDisabled)
	}
	to, err := ParseAddress(req.Address)
	if err != nil {
		logger.Debug("Rejected invalid address", "address", req.Address)
		return common.Hash{}, abort(StageValidating, err)
	}
	logger = logger.New("to", to)
	key := claims.AddressKey(to.Hex())

	if err := f.checkUnclaimed(ctx, key); err != nil {
		logger.Info("Not serving request", "reason", err)
		return common.Hash{}, err
	}
	release, ok := f.Reserve(key)
	if !ok {
		logger.Info("Claim already in progress")
		return common.Hash{}, abort(StageCheckingClaim, ErrClaimInProgress)
	}
	defer release()
	// a concurrent request may have recorded its claim between our check and our reservation
	if err := f.checkUnclaimed(ctx, key); err != nil {
		logger.Info("Not serving request", "reason", err)
		return common.Hash{}, err
	}

	tx, err := f.send(ctx, logger, to)
	if err != nil {
		return common.Hash{}, err
	}

	// the transaction is out, the claim must be recorded even if the caller gave up
	if err := f.store.Mark(context.WithoutCancel(ctx), key); err != nil {
		logger.Error("CRITICAL: transaction broadcast but claim not recorded, address may be funded again",
			"tx", tx, "stage", StageRecordingClaim, "err", err)
		f.m.RecordClaimWriteFailure()
	}
	return tx, nil
}

func (f *Faucet) checkUnclaimed(ctx context.Context, key claims.Key) error {
	claimed, err := f.store.Has(ctx, key)
	if err != nil {
		return abort(StageCheckingClaim, err)
	}
	if claimed {
		return abort(StageCheckingClaim, ErrAlreadyClaimed)
	}
	return nil
}

// send runs the nonce-sensitive part of a request while holding the send gate,
// and releases the gate as soon as the broadcast returns.
func (f *Faucet) send(ctx context.Context, logger log.Logger, to common.Address) (common.Hash, error) {
	start := time.Now()
	if err := f.gate.Acquire(ctx, 1); err != nil {
		logger.Info("Gave up waiting for send gate", "err", err)
		return common.Hash{}, abort(StageAwaitingGate, err)
	}
	defer f.gate.Release(1)
	f.m.RecordGateWait(time.Since(start))

	from := f.signer.Address()
	nonce, err := f.chain.TransactionCount(ctx, from)
	if err != nil {
		logger.Error("Failed to fetch nonce", "err", err)
		return common.Hash{}, abort(StageFetchingParams, fmt.Errorf("failed to get transaction count: %w", err))
	}
	gasPrice, err := f.chain.GasPrice(ctx)
	if err != nil {
		logger.Error("Failed to fetch gas price", "err", err)
		return common.Hash{}, abort(StageFetchingParams, fmt.Errorf("failed to get gas price: %w", err))
	}
	gasLimit := f.chain.EstimateGas(ctx, from, to, f.amount)
	f.m.RecordNonce(nonce)
	f.m.RecordGasPrice(gasPrice)

	if f.checkBalance {
		if err := f.ensureFunds(ctx, logger, gasPrice, gasLimit); err != nil {
			return common.Hash{}, abort(StageFetchingParams, err)
		}
	}

	logger.Info("Building transaction", "nonce", nonce, "gas_price", gasPrice, "gas_limit", gasLimit)
	signed, err := f.signer.Sign(txsign.TxParams{
		To:       to,
		Value:    f.amount,
		Nonce:    nonce,
		GasPrice: gasPrice,
		GasLimit: gasLimit,
	})
	if err != nil {
		logger.Error("Failed to sign transaction", "err", err)
		return common.Hash{}, abort(StageSigning, err)
	}

	// once submitted, a transaction cannot be taken back, so caller cancellation no longer applies
	hash, err := f.chain.SendRawTransaction(context.WithoutCancel(ctx), signed.Raw)
	if err != nil {
		logger.Error("Failed to send transaction", "nonce", nonce, "err", err)
		return common.Hash{}, abort(StageBroadcasting, fmt.Errorf("failed to send transaction: %w", err))
	}
	if hash != signed.Hash {
		logger.Warn("Node reported a different transaction hash", "node", hash, "local", signed.Hash)
	}
	logger.Info("Transaction sent", "tx", hash, "nonce", nonce)
	return hash, nil
}

// ensureFunds checks the funding account covers value plus the maximum fee.
// A failed balance lookup is logged and the request proceeds.
func (f *Faucet) ensureFunds(ctx context.Context, logger log.Logger, gasPrice *big.Int, gasLimit uint64) error {
	bal, err := f.Balance(ctx)
	if err != nil {
		logger.Warn("Failed to get balance, optimistically continuing the request", "err", err)
		return nil
	}
	need := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(gasLimit))
	need.Add(need, f.amount.ToBig())
	if bal.ToBig().Cmp(need) < 0 {
		logger.Error("Insufficient balance", "balance", bal, "need", need)
		return fmt.Errorf("%w: have %s, need %s wei", ErrInsufficientFunds, bal.Decimal(), need)
	}
	return nil
}

