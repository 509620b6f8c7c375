package cliapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mantlenetworkio/testnet-faucet/op-service/ctxinterrupt"
)

type Lifecycle interface {
	// Start starts a service. A service only fully starts once. Subsequent starts may return an error.
	// A context is provided to end the service during setup.
	// The caller should call Stop to clean up after failing to start.
	Start(ctx context.Context) error
	// Stop stops a service gracefully.
	// The provided ctx can force an accelerated shutdown,
	// but the node still has to completely stop.
	Stop(ctx context.Context) error
	// Stopped determines if the service was stopped with Stop.
	Stopped() bool
}

// LifecycleAction instantiates a Lifecycle based on a CLI context.
// The close function may be called by the service to end itself, as if it was interrupted.
type LifecycleAction func(ctx *cli.Context, close context.CancelCauseFunc) (Lifecycle, error)

var interruptErr = errors.New("interrupt signal")

// StopTimeout bounds the graceful shutdown. A second interrupt forces it.
var StopTimeout = 10 * time.Second

// LifecycleCmd turns a LifecycleAction into a CLI action: it sets up and starts the
// service, waits for an interrupt or for the service to close itself, then stops it.
func LifecycleCmd(fn LifecycleAction) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		hostCtx := ctx.Context
		appCtx, appCancel := context.WithCancelCause(hostCtx)
		defer appCancel(nil)
		ctx.Context = appCtx

		go func() {
			if err := ctxinterrupt.Wait(appCtx); err == nil {
				appCancel(interruptErr)
			}
		}()

		appLifecycle, err := fn(ctx, appCancel)
		if err != nil {
			return errors.Join(
				fmt.Errorf("failed to setup: %w", err),
				ignoreInterrupt(context.Cause(appCtx)),
			)
		}

		if err := appLifecycle.Start(appCtx); err != nil {
			return errors.Join(
				fmt.Errorf("failed to start: %w", err),
				ignoreInterrupt(context.Cause(appCtx)),
				appLifecycle.Stop(hostCtx),
			)
		}

		<-appCtx.Done()

		stopCtx, stopCancel := context.WithTimeout(hostCtx, StopTimeout)
		defer stopCancel()
		// a second interrupt accelerates the shutdown
		stopCtx = ctxinterrupt.WithCancelOnInterrupt(stopCtx)
		if err := appLifecycle.Stop(stopCtx); err != nil {
			return errors.Join(
				fmt.Errorf("failed to stop: %w", err),
				ignoreInterrupt(context.Cause(appCtx)),
			)
		}
		return ignoreInterrupt(context.Cause(appCtx))
	}
}

func ignoreInterrupt(err error) error {
	if errors.Is(err, interruptErr) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
