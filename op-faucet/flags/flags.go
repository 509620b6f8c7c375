package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/mantlenetworkio/testnet-faucet/op-faucet/config"
	"github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend/claims"
	opservice "github.com/mantlenetworkio/testnet-faucet/op-service"
	"github.com/mantlenetworkio/testnet-faucet/op-service/eth"
	oplog "github.com/mantlenetworkio/testnet-faucet/op-service/log"
	opmetrics "github.com/mantlenetworkio/testnet-faucet/op-service/metrics"
)

const EnvVarPrefix = "FAUCET"

func prefixEnvVars(name string, legacy ...string) []string {
	return opservice.PrefixEnvVarWithLegacy(EnvVarPrefix, name, legacy...)
}

var (
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Usage:   "Optional YAML configuration file. Flags that are set explicitly take precedence.",
		EnvVars: prefixEnvVars("CONFIG"),
	}
	RPCURLFlag = &cli.StringFlag{
		Name:    "rpc-url",
		Usage:   "JSON-RPC endpoint of the chain to fund accounts on",
		EnvVars: prefixEnvVars("RPC_URL", "RPC_URL"),
	}
	RPCTimeoutFlag = &cli.DurationFlag{
		Name:    "rpc-timeout",
		Usage:   "Timeout of a single JSON-RPC call",
		Value:   config.DefaultRPCTimeout,
		EnvVars: prefixEnvVars("RPC_TIMEOUT"),
	}
	ChainIDFlag = &cli.Uint64Flag{
		Name:    "chain-id",
		Usage:   "Chain ID used for EIP-155 signing, verified against the node at startup",
		EnvVars: prefixEnvVars("CHAIN_ID", "CHAIN_ID"),
	}
	PrivateKeyFlag = &cli.StringFlag{
		Name:    "private-key",
		Usage:   "Hex private key of the funding account",
		EnvVars: prefixEnvVars("PRIVATE_KEY"),
	}
	AmountWeiFlag = &cli.StringFlag{
		Name:    "amount-wei",
		Usage:   "Amount sent per request, in wei (decimal)",
		EnvVars: prefixEnvVars("AMOUNT_WEI"),
	}
	CheckBalanceFlag = &cli.BoolFlag{
		Name:    "check-balance",
		Usage:   "Reject requests the funding account cannot pay for before signing",
		EnvVars: prefixEnvVars("CHECK_BALANCE"),
	}
	BindAddrFlag = &cli.StringFlag{
		Name:    "bind-addr",
		Usage:   "Listen address of the HTTP server",
		Value:   config.DefaultBindAddr,
		EnvVars: prefixEnvVars("BIND_ADDR", "BIND_ADDR"),
	}
	WebDirFlag = &cli.StringFlag{
		Name:    "web-dir",
		Usage:   "Directory of the static web UI",
		Value:   config.DefaultWebDir,
		EnvVars: prefixEnvVars("WEB_DIR"),
	}
	RateLimitFlag = &cli.Float64Flag{
		Name:    "rate-limit",
		Usage:   "Funding requests allowed per client IP per minute. 0 disables rate limiting.",
		EnvVars: prefixEnvVars("RATE_LIMIT"),
	}
	RateLimitBurstFlag = &cli.IntFlag{
		Name:    "rate-limit-burst",
		Usage:   "Funding requests a client IP may make in a burst",
		Value:   1,
		EnvVars: prefixEnvVars("RATE_LIMIT_BURST"),
	}
	RequestTimeoutFlag = &cli.DurationFlag{
		Name:    "request-timeout",
		Usage:   "How long an HTTP funding request may wait for the send slot and chain parameters before giving up",
		Value:   config.DefaultRequestTimeout,
		EnvVars: prefixEnvVars("REQUEST_TIMEOUT"),
	}
	AdminTokenFlag = &cli.StringFlag{
		Name:    "admin-token",
		Usage:   "Bearer token for the /admin endpoints. Admin endpoints are disabled when empty.",
		EnvVars: prefixEnvVars("ADMIN_TOKEN"),
	}
	StatePathFlag = &cli.StringFlag{
		Name:    "state-path",
		Usage:   "Directory of the claim store, or \"memory\" for a volatile store",
		Value:   config.DefaultStatePath,
		EnvVars: prefixEnvVars("STATE_PATH", "STATE_PATH"),
	}
	StateBackendFlag = &cli.StringFlag{
		Name:    "state-backend",
		Usage:   fmt.Sprintf("Claim store engine: %s or %s", claims.BackendLevelDB, claims.BackendPebble),
		Value:   claims.BackendLevelDB,
		EnvVars: prefixEnvVars("STATE_BACKEND"),
	}
	ClaimCacheSizeFlag = &cli.IntFlag{
		Name:    "claim-cache-size",
		Usage:   "Number of claimed keys cached in memory",
		Value:   config.DefaultClaimCacheSize,
		EnvVars: prefixEnvVars("CLAIM_CACHE_SIZE"),
	}
	TelegramBotTokenFlag = &cli.StringFlag{
		Name:    "telegram-bot-token",
		Usage:   "Telegram bot token. The bot is disabled when empty.",
		EnvVars: prefixEnvVars("TELEGRAM_BOT_TOKEN", "TELEGRAM_BOT_TOKEN"),
	}
	TelegramAPIURLFlag = &cli.StringFlag{
		Name:    "telegram-api-url",
		Usage:   "Base URL of the Telegram Bot API",
		Value:   config.DefaultCLIConfig().Telegram.APIURL,
		EnvVars: prefixEnvVars("TELEGRAM_API_URL"),
	}
	TelegramPollTimeoutFlag = &cli.DurationFlag{
		Name:    "telegram-poll-timeout",
		Usage:   "Long-polling timeout of Telegram update requests",
		Value:   config.DefaultCLIConfig().Telegram.PollTimeout,
		EnvVars: prefixEnvVars("TELEGRAM_POLL_TIMEOUT"),
	}
)

// requiredFlags may also be provided by the config file, so they are checked after loading it.
var requiredFlags = []cli.Flag{
	RPCURLFlag,
	ChainIDFlag,
	PrivateKeyFlag,
	AmountWeiFlag,
}

var optionalFlags = []cli.Flag{
	ConfigFlag,
	RPCTimeoutFlag,
	CheckBalanceFlag,
	BindAddrFlag,
	WebDirFlag,
	RateLimitFlag,
	RateLimitBurstFlag,
	RequestTimeoutFlag,
	AdminTokenFlag,
	StatePathFlag,
	StateBackendFlag,
	ClaimCacheSizeFlag,
	TelegramBotTokenFlag,
	TelegramAPIURLFlag,
	TelegramPollTimeoutFlag,
}

func init() {
	optionalFlags = append(optionalFlags, oplog.CLIFlags(EnvVarPrefix)...)
	optionalFlags = append(optionalFlags, opmetrics.CLIFlags(EnvVarPrefix)...)

	Flags = append(Flags, requiredFlags...)
	Flags = append(Flags, optionalFlags...)
}

// Flags contains the list of configuration options available to the binary.
var Flags []cli.Flag

// ConfigFromCLI builds the config from defaults, then the config file if any,
// then every flag that was set on the command line or through the environment.
func ConfigFromCLI(ctx *cli.Context, version string) (*config.Config, error) {
	cfg := config.DefaultCLIConfig()
	cfg.Version = version
	if path := ctx.String(ConfigFlag.Name); path != "" {
		if err := (&config.YamlLoader{Path: path}).Load(cfg); err != nil {
			return nil, err
		}
	}

	if ctx.IsSet(RPCURLFlag.Name) {
		cfg.RPCURL = ctx.String(RPCURLFlag.Name)
	}
	if ctx.IsSet(RPCTimeoutFlag.Name) {
		cfg.RPCTimeout = ctx.Duration(RPCTimeoutFlag.Name)
	}
	if ctx.IsSet(ChainIDFlag.Name) {
		cfg.ChainID = eth.ChainIDFromUInt64(ctx.Uint64(ChainIDFlag.Name))
	}
	if ctx.IsSet(PrivateKeyFlag.Name) {
		cfg.PrivateKey = ctx.String(PrivateKeyFlag.Name)
	}
	if ctx.IsSet(AmountWeiFlag.Name) {
		amount, err := eth.ParseWei(ctx.String(AmountWeiFlag.Name))
		if err != nil {
			return nil, fmt.Errorf("invalid --%s: %w", AmountWeiFlag.Name, err)
		}
		cfg.Amount = amount
	}
	if ctx.IsSet(CheckBalanceFlag.Name) {
		cfg.CheckBalance = ctx.Bool(CheckBalanceFlag.Name)
	}
	if ctx.IsSet(BindAddrFlag.Name) {
		cfg.BindAddr = ctx.String(BindAddrFlag.Name)
	}
	if ctx.IsSet(WebDirFlag.Name) {
		cfg.WebDir = ctx.String(WebDirFlag.Name)
	}
	if ctx.IsSet(RateLimitFlag.Name) {
		cfg.RateLimit = ctx.Float64(RateLimitFlag.Name)
	}
	if ctx.IsSet(RateLimitBurstFlag.Name) {
		cfg.RateLimitBurst = ctx.Int(RateLimitBurstFlag.Name)
	}
	if ctx.IsSet(RequestTimeoutFlag.Name) {
		cfg.RequestTimeout = ctx.Duration(RequestTimeoutFlag.Name)
	}
	if ctx.IsSet(AdminTokenFlag.Name) {
		cfg.AdminToken = ctx.String(AdminTokenFlag.Name)
	}
	if ctx.IsSet(StatePathFlag.Name) {
		cfg.State.Path = ctx.String(StatePathFlag.Name)
	}
	if ctx.IsSet(StateBackendFlag.Name) {
		cfg.State.Backend = ctx.String(StateBackendFlag.Name)
	}
	if ctx.IsSet(ClaimCacheSizeFlag.Name) {
		cfg.State.CacheSize = ctx.Int(ClaimCacheSizeFlag.Name)
	}
	if ctx.IsSet(TelegramBotTokenFlag.Name) {
		cfg.Telegram.BotToken = ctx.String(TelegramBotTokenFlag.Name)
	}
	if ctx.IsSet(TelegramAPIURLFlag.Name) {
		cfg.Telegram.APIURL = ctx.String(TelegramAPIURLFlag.Name)
	}
	if ctx.IsSet(TelegramPollTimeoutFlag.Name) {
		cfg.Telegram.PollTimeout = ctx.Duration(TelegramPollTimeoutFlag.Name)
	}

	cfg.LogConfig = oplog.ReadCLIConfig(ctx)
	cfg.MetricsConfig = opmetrics.ReadCLIConfig(ctx)
	return cfg, nil
}
