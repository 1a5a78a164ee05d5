package console

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jroimartin/gocui"

	"altair/platform"
)

// view names
const (
	terminalView = "terminal"
	panelView    = "panel"
	statusView   = "status"
)

// Panel is the front panel: a gocui screen with the teleprinter, the
// switch and LEDs, and the status console.
//
// It is the platform (switch, LEDs, watchdog), the byte transport (the
// teleprinter view) and the Console (the status view) at once.
type Panel struct {
	*platform.Headless

	g   *gocui.Gui
	log *log.Logger

	terminal *viewWriter
	status   *viewWriter
	esc      escFilter

	keys chan byte
	done chan struct{}
	quit sync.Once
}

// NewPanel takes over the terminal. The switch starts at pos.
func NewPanel(pos platform.Position, log *log.Logger) (*Panel, error) {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, fmt.Errorf("couldn't create gui: %w", err)
	}
	p := &Panel{
		Headless: platform.NewHeadless(pos, log),
		g:        g,
		log:      log,
		terminal: &viewWriter{g: g, name: terminalView},
		status:   &viewWriter{g: g, name: statusView},
		keys:     make(chan byte, 256),
		done:     make(chan struct{}),
	}
	g.SetManagerFunc(p.layout)

	if err := p.bindKeys(); err != nil {
		g.Close()
		return nil, err
	}
	return p, nil
}

func (p *Panel) bindKeys() error {
	switches := []struct {
		key gocui.Key
		pos platform.Position
	}{
		{gocui.KeyF1, platform.Default},
		{gocui.KeyF2, platform.Custom},
		{gocui.KeyF3, platform.USB},
	}
	for _, s := range switches {
		pos := s.pos
		if err := p.g.SetKeybinding("", s.key, gocui.ModNone, func(g *gocui.Gui, v *gocui.View) error {
			p.SetSwitch(pos)
			p.log.Printf("switch moved to %v", pos)
			p.drawPanel(g)
			return nil
		}); err != nil {
			return err
		}
	}
	return p.g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, p.onQuit)
}

// MainLoop runs the gui until the user quits or ctx ends. It must be
// called from the main goroutine.
func (p *Panel) MainLoop(ctx context.Context) error {
	go p.refresh(ctx)
	go func() {
		select {
		case <-ctx.Done():
			p.g.Update(func(g *gocui.Gui) error { return gocui.ErrQuit })
		case <-p.done:
		}
	}()

	err := p.g.MainLoop()
	p.finish()
	if err != nil && err != gocui.ErrQuit {
		return err
	}
	return nil
}

// Close gives the terminal back.
func (p *Panel) Close() error {
	p.finish()
	p.g.Close()
	return nil
}

// Done is closed when the user quits.
func (p *Panel) Done() <-chan struct{} {
	return p.done
}

func (p *Panel) onQuit(g *gocui.Gui, v *gocui.View) error {
	p.finish()
	return gocui.ErrQuit
}

func (p *Panel) finish() {
	p.quit.Do(func() { close(p.done) })
}

// refresh redraws the panel periodically so the watchdog count moves.
func (p *Panel) refresh(ctx context.Context) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.done:
			return
		case <-ticker.C:
			p.g.Update(func(g *gocui.Gui) error {
				p.drawPanel(g)
				return nil
			})
		}
	}
}

// gocui layout
func (p *Panel) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// up -> teleprinter
	if v, err := g.SetView(terminalView, 0, 0, maxX-1, maxY-12); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Teleprinter"
		v.Autoscroll = true
		v.Wrap = true
		v.Editable = true
		v.Editor = gocui.EditorFunc(p.edit)
		if _, err := g.SetCurrentView(terminalView); err != nil {
			return err
		}
	}

	// middle -> switch and LEDs
	if v, err := g.SetView(panelView, 0, maxY-11, maxX-1, maxY-7); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Front panel  [F1 default  F2 custom  F3 usb/off  ^C quit]"
		p.drawPanel(g)
	}

	// down -> status
	if v, err := g.SetView(statusView, 0, maxY-6, maxX-1, maxY-1); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Status"
		v.Autoscroll = true
	}
	return nil
}

func (p *Panel) drawPanel(g *gocui.Gui) {
	v, err := g.View(panelView)
	if err != nil {
		return
	}
	v.Clear()

	current := p.SwitchPosition()
	var sw []string
	for _, pos := range []platform.Position{platform.USB, platform.Custom, platform.Default} {
		name := strings.ToUpper(pos.String())
		if pos == current {
			name = "[" + name + "]"
		} else {
			name = " " + name + " "
		}
		sw = append(sw, name)
	}
	fmt.Fprintf(v, " Switch:   %s\n", strings.Join(sw, "  "))
	fmt.Fprintf(v, " LEDs:     %s  %s\n", lamp(p.LED(platform.Green), 32, "green"), lamp(p.LED(platform.Red), 31, "red"))
	fmt.Fprintf(v, " Watchdog: %d feeds\n", p.Feeds())
}

// lamp renders an LED with an ANSI color when lit.
func lamp(on bool, color int, name string) string {
	if on {
		return fmt.Sprintf("\x1b[0;%dm(*) %s\x1b[0m", color, name)
	}
	return "( ) " + name
}

// SetLED implements platform.Platform.
func (p *Panel) SetLED(c platform.Color, on bool) {
	p.Headless.SetLED(c, on)
	p.g.Update(func(g *gocui.Gui) error {
		p.drawPanel(g)
		return nil
	})
}

// SetBothLEDs implements platform.Platform.
func (p *Panel) SetBothLEDs(on bool) {
	p.Headless.SetBothLEDs(on)
	p.g.Update(func(g *gocui.Gui) error {
		p.drawPanel(g)
		return nil
	})
}

// edit sends keystrokes in the teleprinter view to the host side.
func (p *Panel) edit(v *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) {
	c, ok := keyByte(key, ch, mod)
	if !ok {
		return
	}
	select {
	case p.keys <- c:
	default:
		p.log.Printf("keyboard buffer full, dropped %#02x", c)
	}
}

// Read returns keystrokes typed into the teleprinter view.
func (p *Panel) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	select {
	case c := <-p.keys:
		b[0] = c
	case <-p.done:
		return 0, io.EOF
	}
	n := 1
	for n < len(b) {
		select {
		case c := <-p.keys:
			b[n] = c
			n++
		default:
			return n, nil
		}
	}
	return n, nil
}

// Write prints teleprinter output.
func (p *Panel) Write(b []byte) (int, error) {
	out, clear := p.esc.filter(b)
	p.terminal.write(out, clear)
	return len(b), nil
}

// WriteConsole implements Console.
func (p *Panel) WriteConsole(msg string) error {
	for _, line := range strings.Split(msg, "\n") {
		if line != "" {
			p.status.write([]byte(line+"\n"), false)
		}
	}
	return nil
}
