package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/mantlenetworkio/testnet-faucet/op-faucet/config"
	"github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend"
	"github.com/mantlenetworkio/testnet-faucet/op-faucet/faucet/backend/claims"
	"github.com/mantlenetworkio/testnet-faucet/op-faucet/flags"
	oplog "github.com/mantlenetworkio/testnet-faucet/op-service/log"
)

var (
	kindFlag = &cli.StringFlag{
		Name:  "kind",
		Usage: "Only list claims of this kind: address, telegram or all",
		Value: "all",
	}
)

// claimsCommand inspects the claim store of a stopped faucet.
func claimsCommand() *cli.Command {
	storeFlags := []cli.Flag{
		cloneString(flags.StatePathFlag),
		cloneString(flags.StateBackendFlag),
	}
	return &cli.Command{
		Name:  "claims",
		Usage: "Inspect the claim store",
		Subcommands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "Show whether an address or Telegram user id was funded",
				ArgsUsage: "<address|telegram-user-id>",
				Flags:     storeFlags,
				Action:    checkClaim,
			},
			{
				Name:   "list",
				Usage:  "List all recorded claims",
				Flags:  append(append([]cli.Flag{}, storeFlags...), kindFlag),
				Action: listClaims,
			},
		},
	}
}

func cloneString(f *cli.StringFlag) *cli.StringFlag {
	v := *f
	return &v
}

func openStore(ctx *cli.Context) (*claims.Store, error) {
	cfg := claims.Config{
		Backend: ctx.String(flags.StateBackendFlag.Name),
		Path:    ctx.String(flags.StatePathFlag.Name),
	}
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	logger := oplog.NewLogger(ctx.App.ErrWriter, config.DefaultCLIConfig().LogConfig)
	return claims.Open(logger, cfg)
}

// parseClaimKey accepts an address or a numeric Telegram user id.
func parseClaimKey(arg string) (claims.Key, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return claims.IdentityKey(id), nil
	}
	addr, err := backend.ParseAddress(arg)
	if err != nil {
		return "", err
	}
	return claims.AddressKey(addr.Hex()), nil
}

func checkClaim(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("expected exactly one address or telegram user id")
	}
	key, err := parseClaimKey(ctx.Args().First())
	if err != nil {
		return err
	}
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	at, ok, err := store.ClaimedAt(ctx.Context, key)
	if err != nil {
		return err
	}
	if !ok {
		_, err = fmt.Fprintf(ctx.App.Writer, "%s: not claimed\n", key)
		return err
	}
	_, err = fmt.Fprintf(ctx.App.Writer, "%s: claimed at %s\n", key, at.UTC().Format(time.RFC3339))
	return err
}

func listClaims(ctx *cli.Context) error {
	var prefix string
	switch kind := ctx.String(kindFlag.Name); kind {
	case "all":
	case "address":
		prefix = claims.AddressPrefix
	case "telegram":
		prefix = claims.IdentityPrefix
	default:
		return fmt.Errorf("unknown claim kind %q", kind)
	}
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetHeader([]string{"Key", "Claimed at"})
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	count := 0
	err = store.Range(ctx.Context, prefix, func(key claims.Key, at time.Time) error {
		table.Append([]string{key.String(), at.UTC().Format(time.RFC3339)})
		count++
		return nil
	})
	if err != nil {
		return err
	}
	table.Render()
	_, err = fmt.Fprintf(ctx.App.Writer, "%d claims\n", count)
	return err
}
