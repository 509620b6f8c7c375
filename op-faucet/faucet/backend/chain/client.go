package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/params"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/mantlenetworkio/testnet-faucet/op-service/eth"
	opmetrics "github.com/mantlenetworkio/testnet-faucet/op-service/metrics"
)

// DefaultGasLimit is used whenever gas estimation fails: the cost of a plain value transfer.
const DefaultGasLimit = params.TxGas

const DefaultCallTimeout = 30 * time.Second

// Client is a JSON-RPC client of the node the faucet sends through.
// It never retries; every call is bounded by the call timeout.
type Client struct {
	log     log.Logger
	m       opmetrics.RPCClientMetricer
	rpc     *rpc.Client
	timeout time.Duration
}

// Dial connects to the node. No request is made until the first call.
func Dial(ctx context.Context, logger log.Logger, m opmetrics.RPCClientMetricer, url string, timeout time.Duration) (*Client, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %q: %w", url, err)
	}
	return NewClient(logger, m, c, timeout), nil
}

func NewClient(logger log.Logger, m opmetrics.RPCClientMetricer, c *rpc.Client, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &Client{log: logger, m: m, rpc: c, timeout: timeout}
}

func (c *Client) call(ctx context.Context, result any, method string, args ...any) (err error) {
	done := c.m.RecordRPCClientRequest(method)
	defer func() { done(err) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.rpc.CallContext(ctx, result, method, args...); err != nil {
		return classify(method, err)
	}
	return nil
}

func classify(method string, err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return &RPCError{Method: method, Code: rpcErr.ErrorCode(), Message: rpcErr.Error()}
	}
	return &TransportError{Method: method, Err: err}
}

// TransactionCount returns the pending nonce of the account.
func (c *Client) TransactionCount(ctx context.Context, addr common.Address) (uint64, error) {
	var nonce hexutil.Uint64
	if err := c.call(ctx, &nonce, "eth_getTransactionCount", addr, "pending"); err != nil {
		return 0, err
	}
	return uint64(nonce), nil
}

func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	var price hexutil.Big
	if err := c.call(ctx, &price, "eth_gasPrice"); err != nil {
		return nil, err
	}
	return (*big.Int)(&price), nil
}

type callMsg struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to"`
	Value *hexutil.Big    `json:"value"`
}

// EstimateGas estimates the gas of a plain value transfer.
// It falls back to DefaultGasLimit on any failure, and so never returns an error.
func (c *Client) EstimateGas(ctx context.Context, from, to common.Address, value eth.ETH) uint64 {
	msg := callMsg{From: from, To: &to, Value: (*hexutil.Big)(value.ToBig())}
	var gas hexutil.Uint64
	if err := c.call(ctx, &gas, "eth_estimateGas", msg); err != nil {
		c.log.Warn("Gas estimation failed, using default gas limit", "to", to, "gas", DefaultGasLimit, "err", err)
		return DefaultGasLimit
	}
	return uint64(gas)
}

// SendRawTransaction submits a signed transaction and returns the hash reported by the node.
func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	var hash common.Hash
	if err := c.call(ctx, &hash, "eth_sendRawTransaction", hexutil.Bytes(raw)); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

func (c *Client) Balance(ctx context.Context, addr common.Address) (eth.ETH, error) {
	var bal hexutil.Big
	if err := c.call(ctx, &bal, "eth_getBalance", addr, "latest"); err != nil {
		return eth.ETH{}, err
	}
	return eth.WeiBig((*big.Int)(&bal)), nil
}

func (c *Client) ChainID(ctx context.Context) (eth.ChainID, error) {
	var id hexutil.Big
	if err := c.call(ctx, &id, "eth_chainId"); err != nil {
		return eth.ChainID{}, err
	}
	return eth.ChainIDFromBig((*big.Int)(&id)), nil
}

func (c *Client) Close() {
	c.rpc.Close()
}
