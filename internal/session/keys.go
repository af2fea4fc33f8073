package session

import (
	"bufio"

	"github.com/sells-group/healthplot/internal/model"
)

// KeyCode classifies one key press read from a raw-mode terminal.
type KeyCode int

const (
	KeyUnknown KeyCode = iota
	KeyRune
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyEsc
	KeyCtrlC
)

// Key is a decoded key press. Rune is set for KeyRune.
type Key struct {
	Code KeyCode
	Rune rune
}

// ReadKey decodes the next key press, understanding ANSI CSI arrow
// sequences and the Windows console 0/224 prefix.
func ReadKey(r *bufio.Reader) (Key, error) {
	b1, err := r.ReadByte()
	if err != nil {
		return Key{}, err
	}

	// Windows console arrows
	if b1 == 0 || b1 == 224 {
		b2, err := r.ReadByte()
		if err != nil {
			return Key{}, err
		}
		switch b2 {
		case 72:
			return Key{Code: KeyUp}, nil
		case 80:
			return Key{Code: KeyDown}, nil
		case 75:
			return Key{Code: KeyLeft}, nil
		case 77:
			return Key{Code: KeyRight}, nil
		}
		return Key{Code: KeyUnknown}, nil
	}

	switch b1 {
	case 27:
		if r.Buffered() == 0 {
			return Key{Code: KeyEsc}, nil
		}
		b2, _ := r.ReadByte()
		if b2 != '[' && b2 != 'O' {
			return Key{Code: KeyUnknown}, nil
		}
		if r.Buffered() == 0 {
			return Key{Code: KeyUnknown}, nil
		}
		b3, _ := r.ReadByte()
		switch b3 {
		case 'A':
			return Key{Code: KeyUp}, nil
		case 'B':
			return Key{Code: KeyDown}, nil
		case 'C':
			return Key{Code: KeyRight}, nil
		case 'D':
			return Key{Code: KeyLeft}, nil
		}
		return Key{Code: KeyUnknown}, nil
	case '\r', '\n':
		return Key{Code: KeyEnter}, nil
	case 3:
		return Key{Code: KeyCtrlC}, nil
	}

	if b1 >= 0x20 && b1 < 0x7f {
		return Key{Code: KeyRune, Rune: rune(b1)}, nil
	}
	return Key{Code: KeyUnknown}, nil
}

// Binding is the selector label a digit key clicks.
type Binding struct {
	Axis  model.Axis
	Field model.FieldKey
}

// Bindings numbers the X options from 1 and the Y options after them, in
// catalog order, matching the numbers the terminal chart prints.
func Bindings(c *model.Catalog) map[rune]Binding {
	out := make(map[rune]Binding)
	n := 1
	for _, a := range model.Axes {
		for _, f := range c.ForAxis(a) {
			if n > 9 {
				return out
			}
			out[rune('0'+n)] = Binding{Axis: a, Field: f.Key}
			n++
		}
	}
	return out
}

// hoverDelta returns how far a key moves the hover focus.
func hoverDelta(k Key) int {
	switch {
	case k.Code == KeyLeft, k.Code == KeyUp, k.Code == KeyRune && (k.Rune == 'h' || k.Rune == 'k'):
		return -1
	case k.Code == KeyRight, k.Code == KeyDown, k.Code == KeyRune && (k.Rune == 'l' || k.Rune == 'j'):
		return 1
	}
	return 0
}

func isQuit(k Key) bool {
	return k.Code == KeyEsc || k.Code == KeyCtrlC || (k.Code == KeyRune && (k.Rune == 'q' || k.Rune == 'Q'))
}
