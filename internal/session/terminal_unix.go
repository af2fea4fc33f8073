//go:build !windows

package session

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

func enableVT() {}

// watchResize forwards SIGWINCH to out without blocking.
func watchResize(out chan<- struct{}) func() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, unix.SIGWINCH)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-sig:
				select {
				case out <- struct{}{}:
				default:
				}
			case <-done:
				return
			}
		}
	}()
	return func() {
		signal.Stop(sig)
		close(done)
	}
}
