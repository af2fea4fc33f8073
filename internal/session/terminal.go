package session

import (
	"os"
	"runtime"

	"github.com/rotisserie/eris"
	"golang.org/x/term"

	"github.com/sells-group/healthplot/internal/viewport"
)

// Terminal is the controlling terminal switched to raw mode.
type Terminal struct {
	fd       int
	outFd    int
	oldState *term.State
	resize   chan struct{}
	stop     func()
}

// OpenTerminal puts stdin into raw mode and starts watching for resizes.
// Close restores the previous mode.
func OpenTerminal() (*Terminal, error) {
	if runtime.GOOS == "windows" {
		enableVT()
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, eris.New("session: stdin is not a terminal")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, eris.Wrap(err, "session: enter raw mode")
	}

	t := &Terminal{
		fd:       fd,
		outFd:    int(os.Stdout.Fd()),
		oldState: oldState,
		resize:   make(chan struct{}, 1),
	}
	t.stop = watchResize(t.resize)
	return t, nil
}

// Size measures stdout, the surface the chart is drawn on.
func (t *Terminal) Size(m viewport.Margin) SizeFunc {
	return func() (viewport.Viewport, error) {
		return viewport.FromTerminal(t.outFd, m)
	}
}

// Resize fires, coalesced, whenever the terminal changes size.
func (t *Terminal) Resize() <-chan struct{} {
	return t.resize
}

// Close stops resize watching and restores the terminal mode.
func (t *Terminal) Close() error {
	t.stop()
	if err := term.Restore(t.fd, t.oldState); err != nil {
		return eris.Wrap(err, "session: restore terminal")
	}
	return nil
}
