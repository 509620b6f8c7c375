package metrics

import (
	"math/big"
	"time"

	ftypes "github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend/types"
	"github.com/mantlenetworkio/testnet-faucet/op-service/eth"
	opmetrics "github.com/mantlenetworkio/testnet-faucet/op-service/metrics"
)

type Metricer interface {
	RecordInfo(version string)
	RecordUp()

	// RecordFundAction starts timing a request; onDone labels it with its outcome.
	RecordFundAction(channel ftypes.Channel, amount eth.ETH) (onDone func(outcome string))
	RecordGateWait(d time.Duration)
	RecordNonce(nonce uint64)
	RecordGasPrice(wei *big.Int)
	RecordBalance(balance eth.ETH)
	RecordClaimWriteFailure()
	RecordRateLimited(channel ftypes.Channel)

	opmetrics.RPCClientMetricer
}
