package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"altair/console"
	"altair/cpu"
	"altair/link"
	"altair/logger"
	"altair/platform"
	"altair/system"
	"altair/teletype"
)

// Firmware identity reported by -version.
const (
	firmwareDescription = "AudioMoth-Altair-8800"
	firmwareVersion     = "1.0.0"
)

// exitWatchdog is the exit status after a missed watchdog feed, so a
// supervisor can restart the process like the hardware would.
const exitWatchdog = 3

var (
	transportFlag = flag.String("transport", "panel", "host transport: panel, stdio or serial")
	ttyFlag       = flag.String("tty", "/dev/ttyACM0", "serial device for -transport serial")
	baudFlag      = flag.Uint("baud", link.DefaultBaud, "serial baud rate")
	imageFlag     = flag.String("image", "", "program image loaded at address 0 (default: echo monitor)")
	switchFlag    = flag.String("switch", "default", "initial switch position: default, custom or usb")
	profileFlag   = flag.String("profile", "8k", "teleprinter status layout: 8k or 4k")
	logFlag       = flag.String("log", "", "log file (default: stderr, altair.log for the panel)")
	watchdogFlag  = flag.Duration("watchdog", platform.DefaultWatchdogTimeout, "watchdog timeout, 0 disables it")
	versionFlag   = flag.Bool("version", false, "print the firmware version and exit")
)

// host is what each transport choice provides.
type host struct {
	rw       io.ReadWriter
	platform platform.Platform
	console  console.Console
	watchdog *platform.Watchdog
	done     <-chan struct{}
	close    func() error

	// panel needs the main goroutine for its gui loop
	panel *console.Panel
}

func openHost(ctx context.Context, pos platform.Position, lg *log.Logger) (*host, error) {
	switch *transportFlag {
	case "panel":
		p, err := console.NewPanel(pos, lg)
		if err != nil {
			return nil, err
		}
		return &host{
			rw:       p,
			platform: p,
			console:  p,
			watchdog: &p.Watchdog,
			done:     p.Done(),
			close:    p.Close,
			panel:    p,
		}, nil

	case "stdio":
		s, err := link.OpenStdio()
		if err != nil {
			return nil, err
		}
		h := platform.NewHeadless(pos, lg)
		h.CycleOnSignal(ctx)
		return &host{
			rw:       s,
			platform: h,
			console:  console.NewSimple(os.Stderr),
			watchdog: &h.Watchdog,
			done:     s.Done(),
			close:    s.Close,
		}, nil

	case "serial":
		port, err := link.OpenSerial(link.SerialConfig{Port: *ttyFlag, Baud: *baudFlag})
		if err != nil {
			return nil, err
		}
		h := platform.NewHeadless(pos, lg)
		h.CycleOnSignal(ctx)
		return &host{
			rw:       port,
			platform: h,
			console:  console.NewSimple(os.Stderr),
			watchdog: &h.Watchdog,
			close:    port.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown transport %q", *transportFlag)
}

func loadImage() ([]byte, error) {
	if *imageFlag == "" {
		return cpu.EchoImage(), nil
	}
	f, err := os.Open(*imageFlag)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return cpu.LoadImage(f)
}

func altair() int {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("%s %s\n", firmwareDescription, firmwareVersion)
		return 0
	}

	logPath := *logFlag
	if logPath == "" && *transportFlag == "panel" {
		logPath = "altair.log"
	}
	lg, err := logger.New(logPath)
	if err != nil {
		log.Println(err)
		return 1
	}

	pos, err := platform.ParsePosition(*switchFlag)
	if err != nil {
		log.Println(err)
		return 1
	}
	profile, err := teletype.ParseProfile(*profileFlag)
	if err != nil {
		log.Println(err)
		return 1
	}
	image, err := loadImage()
	if err != nil {
		log.Println(err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	h, err := openHost(ctx, pos, lg)
	if err != nil {
		log.Println(err)
		return 1
	}
	defer h.close()

	l := link.New(h.rw, lg)
	tty := teletype.New(l, profile, lg)
	machine, err := cpu.New(image, tty)
	if err != nil {
		log.Println(err)
		return 1
	}
	dev := system.New(system.DefaultConfig(), h.platform, machine, l, h.console, lg)

	lg.Printf("%s %s: transport %s, switch %v, profile %v, %d byte image",
		firmwareDescription, firmwareVersion, *transportFlag, pos, profile, len(image))

	l.Establish(ctx)

	if *watchdogFlag > 0 {
		go h.watchdog.Supervise(ctx, *watchdogFlag, lg, func() {
			h.close()
			fmt.Fprintln(os.Stderr, "watchdog reset")
			os.Exit(exitWatchdog)
		})
	}

	if h.done != nil {
		go func() {
			select {
			case <-h.done:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	if h.panel == nil {
		dev.Run(ctx)
		lg.Printf("stopped after %+v", dev.Stats())
		return 0
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		dev.Run(ctx)
	}()
	err = h.panel.MainLoop(ctx)
	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		lg.Printf("run-loop did not stop in time")
	}
	if err != nil {
		lg.Println(err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(altair())
}
