// Package ctxinterrupt carries an OS interrupt signal through a context.
package ctxinterrupt

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// DefaultInterruptSignals is the set of signals that interrupt the process.
var DefaultInterruptSignals = []os.Signal{
	os.Interrupt,
	os.Kill,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

type waiterKey struct{}

// waiter closes its channel once, on the first interrupt.
type waiter struct {
	ch <-chan struct{}
}

// WithSignalWaiterMain installs an OS signal listener for the lifetime of the process,
// and attaches it to the returned context. Only call this from main.
func WithSignalWaiterMain(ctx context.Context) context.Context {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, DefaultInterruptSignals...)
	done := make(chan struct{})
	go func() {
		<-sigCh
		close(done)
	}()
	return WithWaiter(ctx, done)
}

// WithWaiter attaches an interrupt channel to the context. Closing the channel
// counts as an interrupt. Tests use this to interrupt without OS signals.
func WithWaiter(ctx context.Context, interrupt <-chan struct{}) context.Context {
	return context.WithValue(ctx, waiterKey{}, waiter{ch: interrupt})
}

func contextWaiter(ctx context.Context) <-chan struct{} {
	w, ok := ctx.Value(waiterKey{}).(waiter)
	if !ok {
		return nil
	}
	return w.ch
}

// Wait blocks until an interrupt is received or the context is done.
// It returns the context error if the context ended first.
func Wait(ctx context.Context) error {
	select {
	case <-contextWaiter(ctx):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WithCancelOnInterrupt returns a context that is cancelled on interrupt.
func WithCancelOnInterrupt(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		_ = Wait(ctx)
		cancel()
	}()
	return ctx
}
