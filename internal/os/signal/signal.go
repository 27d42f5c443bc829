// Package signal provides helpers for intercepting interrupt signals without cancelling in-flight work.
package signal

import (
	"os"
	"os/signal"
	"sync"
)

// NotifyInterrupt calls fn once for every interrupt signal received until the returned stop function is called.
// fn is called from a separate goroutine, so it must only touch state that is safe to share.
func NotifyInterrupt(fn func(sig os.Signal)) (stop func()) {
	return Notify(fn, InterruptSignals...)
}

// Notify calls fn for every received signal of the given kinds until the returned stop function is called.
func Notify(fn func(sig os.Signal), sigs ...os.Signal) (stop func()) {
	if len(sigs) == 0 {
		return func() {}
	}

	sigCh := make(chan os.Signal, 1)
	done := make(chan struct{})

	signal.Notify(sigCh, sigs...)

	go func() {
		for {
			select {
			case sig := <-sigCh:
				fn(sig)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once

	return func() {
		once.Do(func() {
			signal.Stop(sigCh)
			close(done)
		})
	}
}
