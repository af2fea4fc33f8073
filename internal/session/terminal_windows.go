//go:build windows

package session

import (
	"os"
	"time"

	"golang.org/x/sys/windows"
	"golang.org/x/term"
)

// enableVT enables virtual terminal input/output so that ANSI escape sequences
// are delivered to the program and interpreted by the console.
func enableVT() {
	hIn := windows.Handle(os.Stdin.Fd())
	var inMode uint32
	if windows.GetConsoleMode(hIn, &inMode) == nil {
		_ = windows.SetConsoleMode(hIn, inMode|windows.ENABLE_VIRTUAL_TERMINAL_INPUT)
	}

	hOut := windows.Handle(os.Stdout.Fd())
	var outMode uint32
	if windows.GetConsoleMode(hOut, &outMode) == nil {
		_ = windows.SetConsoleMode(hOut, outMode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING)
	}
}

// watchResize polls the console size; Windows has no SIGWINCH.
func watchResize(out chan<- struct{}) func() {
	fd := int(os.Stdout.Fd())
	w, h, _ := term.GetSize(fd)
	done := make(chan struct{})
	go func() {
		tick := time.NewTicker(250 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-tick.C:
				nw, nh, err := term.GetSize(fd)
				if err != nil || (nw == w && nh == h) {
					continue
				}
				w, h = nw, nh
				select {
				case out <- struct{}{}:
				default:
				}
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}
