package main

import (
	"context"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ethereum/go-ethereum/log"

	"github.com/mantlenetworkio/testnet-faucet/op-faucet/config"
	"github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet"
	"github.com/mantlenetworkio/testnet-faucet/op-faucet/flags"
	"github.com/mantlenetworkio/testnet-faucet/op-faucet/metrics"
	opservice "github.com/mantlenetworkio/testnet-faucet/op-service"
	"github.com/mantlenetworkio/testnet-faucet/op-service/cliapp"
	"github.com/mantlenetworkio/testnet-faucet/op-service/ctxinterrupt"
	oplog "github.com/mantlenetworkio/testnet-faucet/op-service/log"
	"github.com/mantlenetworkio/testnet-faucet/op-service/metrics/doc"
)

var (
	Version   = "v0.0.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	ctx := ctxinterrupt.WithSignalWaiterMain(context.Background())
	err := run(ctx, os.Stdout, os.Stderr, os.Args, fromConfig)
	if err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func run(ctx context.Context, w io.Writer, ew io.Writer, args []string, fn faucet.MainFn) error {
	oplog.SetupDefaults()

	app := cli.NewApp()
	app.Writer = w
	app.ErrWriter = ew
	app.Flags = cliapp.ProtectFlags(flags.Flags)
	app.Version = opservice.FormatVersion(Version, GitCommit, GitDate, "")
	app.Name = "faucet"
	app.Usage = "Testnet faucet that sends a fixed amount of native tokens to each address once."
	app.Description = "Faucet service for testnets.\n" +
		" Request funds with POST /faucet {\"address\": \"0x...\"}, or through the Telegram bot when configured."
	app.Action = cliapp.LifecycleCmd(faucet.Main(app.Version, fn))
	app.Commands = []*cli.Command{
		{
			Name:        "doc",
			Subcommands: doc.NewSubcommands(metrics.NewMetrics("default")),
		},
		claimsCommand(),
	}
	return app.RunContext(ctx, args)
}

func fromConfig(ctx context.Context, cfg *config.Config, logger log.Logger) (cliapp.Lifecycle, error) {
	return faucet.FromConfig(ctx, cfg, logger)
}
