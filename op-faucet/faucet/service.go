package faucet

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/mantlenetworkio/testnet-faucet/op-faucet/config"
	"github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend"
	"github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend/chain"
	"github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend/claims"
	"github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend/txsign"
	"github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/frontend"
	"github.com/mantlenetworkio/testnet-faucet/op-faucet/metrics"
	"github.com/mantlenetworkio/testnet-faucet/op-service/cliapp"
	"github.com/mantlenetworkio/testnet-faucet/op-service/eth"
	"github.com/mantlenetworkio/testnet-faucet/op-service/httputil"
	opmetrics "github.com/mantlenetworkio/testnet-faucet/op-service/metrics"
)

var ErrChainIDMismatch = errors.New("chain id mismatch")

// writeTimeoutSlack covers the claim write and response encoding after a broadcast.
const writeTimeoutSlack = 5 * time.Second

type Service struct {
	closing atomic.Bool

	log log.Logger

	metrics    metrics.Metricer
	metricsSrv *httputil.HTTPServer

	store  *claims.Store
	chain  *chain.Client
	faucet *backend.Faucet

	httpServer *httputil.HTTPServer
	bot        *frontend.TelegramBot
}

var _ cliapp.Lifecycle = (*Service)(nil)

func FromConfig(ctx context.Context, cfg *config.Config, logger log.Logger) (*Service, error) {
	su := &Service{log: logger}
	if err := su.initFromCLIConfig(ctx, cfg); err != nil {
		return nil, errors.Join(err, su.Stop(ctx)) // try to clean up our failed initialization attempt
	}
	return su, nil
}

func (s *Service) initFromCLIConfig(ctx context.Context, cfg *config.Config) error {
	s.initMetrics(cfg)
	if err := s.initMetricsServer(cfg); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}
	if err := s.initStore(cfg); err != nil {
		return fmt.Errorf("failed to open claim store: %w", err)
	}
	if err := s.initChain(ctx, cfg); err != nil {
		return fmt.Errorf("failed to connect to chain: %w", err)
	}
	if err := s.initFaucet(cfg); err != nil {
		return fmt.Errorf("failed to setup faucet: %w", err)
	}
	s.initHTTPServer(cfg)
	s.initTelegram(cfg)
	return nil
}

func (s *Service) initMetrics(cfg *config.Config) {
	if cfg.MetricsConfig.Enabled {
		procName := "default"
		s.metrics = metrics.NewMetrics(procName)
		s.metrics.RecordInfo(cfg.Version)
	} else {
		s.metrics = metrics.NoopMetrics{}
	}
}

func (s *Service) initMetricsServer(cfg *config.Config) error {
	if !cfg.MetricsConfig.Enabled {
		s.log.Info("Metrics disabled")
		return nil
	}
	m, ok := s.metrics.(opmetrics.RegistryMetricer)
	if !ok {
		return fmt.Errorf("metrics were enabled, but metricer %T does not expose registry for metrics-server", s.metrics)
	}
	s.log.Debug("Starting metrics server", "addr", cfg.MetricsConfig.ListenAddr, "port", cfg.MetricsConfig.ListenPort)
	metricsSrv, err := opmetrics.StartServer(m.Registry(), cfg.MetricsConfig.ListenAddr, cfg.MetricsConfig.ListenPort)
	if err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}
	s.log.Info("Started metrics server", "addr", metricsSrv.Addr())
	s.metricsSrv = metricsSrv
	return nil
}

func (s *Service) initStore(cfg *config.Config) error {
	store, err := claims.Open(s.log.New("module", "claims"), cfg.State)
	if err != nil {
		return err
	}
	s.store = store
	return nil
}

// initChain dials the node and refuses to run against a chain other than the configured one,
// since signatures would be invalid there.
func (s *Service) initChain(ctx context.Context, cfg *config.Config) error {
	c, err := chain.Dial(ctx, s.log.New("module", "chain"), s.metrics, cfg.RPCURL, cfg.RPCTimeout)
	if err != nil {
		return err
	}
	s.chain = c
	remote, err := c.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch chain id: %w", err)
	}
	if remote != cfg.ChainID {
		return fmt.Errorf("%w: configured %s, node reports %s", ErrChainIDMismatch, cfg.ChainID, remote)
	}
	return nil
}

func (s *Service) initFaucet(cfg *config.Config) error {
	signer, err := txsign.NewSigner(cfg.PrivateKey, cfg.ChainID)
	if err != nil {
		return err
	}
	s.faucet = backend.NewFaucet(s.log, s.metrics, backend.Config{
		Amount:       cfg.Amount,
		CheckBalance: cfg.CheckBalance,
	}, s.chain, s.store, signer)
	s.log.Info("Configured faucet", "address", signer.Address(), "chain", cfg.ChainID, "amount", cfg.Amount)
	return nil
}

func (s *Service) initHTTPServer(cfg *config.Config) {
	var admin *frontend.AdminFrontend
	if cfg.AdminToken != "" {
		s.log.Info("Admin endpoints enabled")
		admin = frontend.NewAdminFrontend(s.log.New("module", "admin"), s.faucet, cfg.AdminToken)
	}
	h := frontend.NewHTTPFrontend(s.log.New("module", "http"), s.metrics, s.faucet, admin, frontend.HTTPConfig{
		WebDir:         cfg.WebDir,
		RateLimit:      cfg.RateLimit,
		RateLimitBurst: cfg.RateLimitBurst,
		RequestTimeout: cfg.RequestTimeout,
	})
	s.httpServer = httputil.NewHTTPServer(cfg.BindAddr, httputil.WithRequestLogging(s.log.New("module", "http"), h.Handler()),
		httputil.WithHTTPOptions(httputil.WithWriteTimeout(httpWriteTimeout(cfg))))
}

// httpWriteTimeout leaves room for a funding request to run out its request
// timeout, then broadcast and record the claim, and still write the tx hash.
func httpWriteTimeout(cfg *config.Config) time.Duration {
	return cfg.RequestTimeout + cfg.RPCTimeout + writeTimeoutSlack
}

func (s *Service) initTelegram(cfg *config.Config) {
	if !cfg.Telegram.Enabled() {
		s.log.Info("Telegram bot disabled")
		return
	}
	pollTimeout := cfg.Telegram.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = frontend.DefaultPollTimeout
	}
	api := frontend.NewBotAPI(cfg.Telegram.APIURL, cfg.Telegram.BotToken, pollTimeout+10*time.Second)
	s.bot = frontend.NewTelegramBot(s.log.New("module", "telegram"), api, s.faucet, pollTimeout)
}

func (s *Service) Start(ctx context.Context) error {
	s.log.Info("Starting HTTP server")
	if err := s.httpServer.Start(); err != nil {
		return fmt.Errorf("unable to start HTTP server: %w", err)
	}
	s.log.Info("HTTP server started", "endpoint", s.httpServer.HTTPEndpoint())
	if s.bot != nil {
		if err := s.bot.Start(ctx); err != nil {
			return fmt.Errorf("unable to start telegram bot: %w", err)
		}
	}
	if bal, err := s.faucet.Balance(ctx); err != nil {
		s.log.Warn("Failed to fetch faucet balance", "err", err)
	} else {
		s.log.Info("Faucet balance", "balance", bal, "requests_left", requestsLeft(bal, s.faucet.Amount()))
	}
	s.metrics.RecordUp()
	return nil
}

func (s *Service) Stop(ctx context.Context) error {
	if !s.closing.CompareAndSwap(false, true) {
		s.log.Warn("Already closing")
		return nil // already closing
	}
	s.log.Info("Stopping faucet service")
	var result error
	if s.httpServer != nil {
		if err := s.httpServer.Stop(ctx); err != nil {
			result = errors.Join(result, fmt.Errorf("failed to stop HTTP server: %w", err))
		}
	}
	if s.bot != nil {
		if err := s.bot.Stop(ctx); err != nil {
			result = errors.Join(result, fmt.Errorf("failed to stop telegram bot: %w", err))
		}
	}
	if s.faucet != nil {
		s.faucet.Close()
	}
	if s.chain != nil {
		s.chain.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			result = errors.Join(result, fmt.Errorf("failed to close claim store: %w", err))
		}
	}
	if s.metricsSrv != nil {
		if err := s.metricsSrv.Stop(ctx); err != nil {
			result = errors.Join(result, fmt.Errorf("failed to stop metrics server: %w", err))
		}
	}
	s.log.Info("Faucet service stopped")
	return result
}

func (s *Service) Stopped() bool {
	return s.closing.Load()
}

func (s *Service) HTTPEndpoint() string {
	return s.httpServer.HTTPEndpoint()
}

func (s *Service) MetricsEndpoint() string {
	if s.metricsSrv == nil {
		return ""
	}
	return s.metricsSrv.HTTPEndpoint()
}

func (s *Service) Faucet() *backend.Faucet {
	return s.faucet
}

// requestsLeft is how many more requests the balance covers, ignoring fees.
func requestsLeft(balance eth.ETH, amount eth.ETH) uint64 {
	if amount.IsZero() {
		return 0
	}
	return balance.ToU256().Div(balance.ToU256(), amount.ToU256()).Uint64()
}
