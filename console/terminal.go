package console

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/jroimartin/gocui"
)

// viewWriter appends text to a gocui view from any goroutine.
//
// gocui.Update runs its functions in no particular order, so text is
// queued here and every update drains the whole queue.
type viewWriter struct {
	g    *gocui.Gui
	name string

	mu      sync.Mutex
	pending bytes.Buffer
	clear   bool
}

func (w *viewWriter) write(p []byte, clear bool) {
	w.mu.Lock()
	if clear {
		w.pending.Reset()
		w.clear = true
	}
	w.pending.Write(p)
	w.mu.Unlock()

	w.g.Update(w.flush)
}

func (w *viewWriter) flush(g *gocui.Gui) error {
	v, err := g.View(w.name)
	if err != nil {
		// not laid out yet, the next update picks it up
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.clear {
		v.Clear()
		v.SetOrigin(0, 0)
		w.clear = false
	}
	if w.pending.Len() > 0 {
		fmt.Fprint(v, w.pending.String())
		w.pending.Reset()
	}
	return nil
}

// escFilter strips control sequences from teleprinter output. The only
// one acted upon is erase-display (ESC [ 2 J).
type escFilter struct {
	state  int
	params []byte
}

const (
	escNone = iota
	escStart
	escCSI
)

// filter returns the printable part of p. clear is true if p erased the
// display, in which case out only holds what came after the erase.
func (f *escFilter) filter(p []byte) (out []byte, clear bool) {
	for _, c := range p {
		switch f.state {
		case escNone:
			switch c {
			case 0x1b:
				f.state = escStart
			case '\r', 0x00:
				// gocui moves to column 0 on '\n' already
			default:
				out = append(out, c)
			}
		case escStart:
			if c == '[' {
				f.state = escCSI
				f.params = f.params[:0]
			} else {
				f.state = escNone
			}
		case escCSI:
			if c >= 0x40 && c <= 0x7e {
				if c == 'J' && string(f.params) == "2" {
					clear = true
					out = out[:0]
				}
				f.state = escNone
				continue
			}
			f.params = append(f.params, c)
		}
	}
	return out, clear
}

// keyByte maps a gocui key event to the byte a teleprinter keyboard
// would send. Special keys without an ASCII code are dropped.
func keyByte(key gocui.Key, ch rune, mod gocui.Modifier) (byte, bool) {
	if ch != 0 {
		if ch > 0x7f || mod != gocui.ModNone {
			return 0, false
		}
		return byte(ch), true
	}
	if key <= 0x7f {
		return byte(key), true
	}
	return 0, false
}
