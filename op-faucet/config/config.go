package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend/claims"
	"github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend/txsign"
	"github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/frontend"
	"github.com/mantlenetworkio/testnet-faucet/op-service/eth"
	oplog "github.com/mantlenetworkio/testnet-faucet/op-service/log"
	opmetrics "github.com/mantlenetworkio/testnet-faucet/op-service/metrics"
)

const (
	DefaultBindAddr       = "0.0.0.0:8080"
	DefaultStatePath      = "./state"
	DefaultWebDir         = "web"
	DefaultRPCTimeout     = 30 * time.Second
	DefaultRequestTimeout = 60 * time.Second
	DefaultClaimCacheSize = 4096
)

var (
	ErrMissingRPCURL     = errors.New("missing rpc url")
	ErrMissingChainID    = errors.New("missing chain id")
	ErrMissingPrivateKey = errors.New("missing private key")
	ErrZeroAmount        = errors.New("faucet amount must be positive")
)

type TelegramConfig struct {
	// BotToken enables the bot when set.
	BotToken    string        `yaml:"bot_token"`
	APIURL      string        `yaml:"api_url"`
	PollTimeout time.Duration `yaml:"poll_timeout"`
}

func (c TelegramConfig) Enabled() bool {
	return c.BotToken != ""
}

type Config struct {
	Version string `yaml:"-"`

	RPCURL       string        `yaml:"rpc_url"`
	RPCTimeout   time.Duration `yaml:"rpc_timeout"`
	ChainID      eth.ChainID   `yaml:"chain_id"`
	PrivateKey   string        `yaml:"private_key"`
	Amount       eth.ETH       `yaml:"amount_wei"`
	CheckBalance bool          `yaml:"check_balance"`

	BindAddr       string        `yaml:"bind_addr"`
	WebDir         string        `yaml:"web_dir"`
	RateLimit      float64       `yaml:"rate_limit"`
	RateLimitBurst int           `yaml:"rate_limit_burst"`
	AdminToken     string        `yaml:"admin_token"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	State    claims.Config  `yaml:"state"`
	Telegram TelegramConfig `yaml:"telegram"`

	LogConfig     oplog.CLIConfig     `yaml:"-"`
	MetricsConfig opmetrics.CLIConfig `yaml:"-"`
}

func (c *Config) Check() error {
	var result error
	if c.RPCURL == "" {
		result = errors.Join(result, ErrMissingRPCURL)
	}
	if c.RPCTimeout <= 0 {
		result = errors.Join(result, fmt.Errorf("rpc timeout must be positive, got %s", c.RPCTimeout))
	}
	if c.RequestTimeout <= 0 {
		result = errors.Join(result, fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout))
	}
	if c.ChainID.IsZero() {
		result = errors.Join(result, ErrMissingChainID)
	}
	if c.PrivateKey == "" {
		result = errors.Join(result, ErrMissingPrivateKey)
	} else if _, err := txsign.NewSigner(c.PrivateKey, eth.ChainIDFromUInt64(1)); err != nil {
		result = errors.Join(result, err)
	}
	if c.Amount.IsZero() {
		result = errors.Join(result, ErrZeroAmount)
	}
	if _, _, err := net.SplitHostPort(c.BindAddr); err != nil {
		result = errors.Join(result, fmt.Errorf("invalid bind address %q: %w", c.BindAddr, err))
	}
	if c.RateLimit < 0 {
		result = errors.Join(result, fmt.Errorf("negative rate limit %v", c.RateLimit))
	}
	if c.RateLimitBurst < 0 {
		result = errors.Join(result, fmt.Errorf("negative rate limit burst %d", c.RateLimitBurst))
	}
	if c.Telegram.Enabled() && !strings.Contains(c.Telegram.BotToken, ":") {
		result = errors.Join(result, errors.New("telegram bot token must look like <id>:<secret>"))
	}
	if c.Telegram.PollTimeout < 0 {
		result = errors.Join(result, fmt.Errorf("negative telegram poll timeout %s", c.Telegram.PollTimeout))
	}
	result = errors.Join(result, c.State.Check())
	result = errors.Join(result, c.MetricsConfig.Check())
	return result
}

func DefaultCLIConfig() *Config {
	return &Config{
		Version:        "dev",
		RPCTimeout:     DefaultRPCTimeout,
		RequestTimeout: DefaultRequestTimeout,
		BindAddr:       DefaultBindAddr,
		WebDir:         DefaultWebDir,
		RateLimitBurst: 1,
		State: claims.Config{
			Backend:   claims.BackendLevelDB,
			Path:      DefaultStatePath,
			CacheSize: DefaultClaimCacheSize,
		},
		Telegram: TelegramConfig{
			APIURL:      frontend.DefaultTelegramAPIURL,
			PollTimeout: frontend.DefaultPollTimeout,
		},
		LogConfig:     oplog.DefaultCLIConfig(),
		MetricsConfig: opmetrics.DefaultCLIConfig(),
	}
}
