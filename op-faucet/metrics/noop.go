package metrics

import (
	"math/big"
	"time"

	ftypes "github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend/types"
	"github.com/mantlenetworkio/testnet-faucet/op-service/eth"
	opmetrics "github.com/mantlenetworkio/testnet-faucet/op-service/metrics"
)

type NoopMetrics struct {
	opmetrics.NoopRPCClientMetrics
}

func (n NoopMetrics) RecordInfo(version string) {}

func (n NoopMetrics) RecordUp() {}

func (n NoopMetrics) RecordFundAction(channel ftypes.Channel, amount eth.ETH) (onDone func(outcome string)) {
	return func(outcome string) {}
}

func (n NoopMetrics) RecordGateWait(d time.Duration) {}

func (n NoopMetrics) RecordNonce(nonce uint64) {}

func (n NoopMetrics) RecordGasPrice(wei *big.Int) {}

func (n NoopMetrics) RecordBalance(balance eth.ETH) {}

func (n NoopMetrics) RecordClaimWriteFailure() {}

func (n NoopMetrics) RecordRateLimited(channel ftypes.Channel) {}

var _ Metricer = NoopMetrics{}
