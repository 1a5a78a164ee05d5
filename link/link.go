// Package link moves bytes between the host transport and the emulated
// teleprinter.
//
// The receive goroutine plays the role of the transfer-complete interrupt:
// it is the only writer of the inbound write index. The run-loop is the
// only reader. Outbound transmissions go through a one-slot queue so at
// most one is ever in flight.
package link

import (
	"context"
	"errors"
	"io"
	"log"
	"sync/atomic"
)

// ChunkSize is the largest inbound chunk read in one go, matching the
// full-speed bulk endpoint of the original CDC interface.
const ChunkSize = 64

var (
	// ErrBusy is returned by SendOutbound while a previous send is pending.
	ErrBusy = errors.New("link: transmission in flight")

	// ErrEmpty is returned by SendOutbound for a zero-length send.
	ErrEmpty = errors.New("link: nothing to send")
)

// Link is the byte transport shared by the teleprinter bridge and the
// device run-loop.
type Link struct {
	in  InboundBuffer
	out OutboundCell

	rw    io.ReadWriter
	queue chan []byte
	log   *log.Logger

	established atomic.Bool
	sent        atomic.Uint64
	received    atomic.Uint64
}

// New returns a link over rw. Nothing is read or written until Establish.
func New(rw io.ReadWriter, log *log.Logger) *Link {
	return &Link{
		rw:    rw,
		queue: make(chan []byte, 1),
		log:   log,
	}
}

// Establish arms the standing inbound read and starts the transmitter.
// Calls after the first are ignored.
func (l *Link) Establish(ctx context.Context) {
	if !l.established.CompareAndSwap(false, true) {
		return
	}
	l.log.Printf("link established")
	go l.receive(ctx)
	go l.transmit(ctx)
}

// receive keeps one read outstanding at all times.
func (l *Link) receive(ctx context.Context) {
	chunk := make([]byte, ChunkSize)
	for {
		n, err := l.rw.Read(chunk)
		if n > 0 {
			l.DeliverInbound(chunk[:n])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				l.log.Printf("link receive stopped: %v", err)
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (l *Link) transmit(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-l.queue:
			if _, err := l.rw.Write(msg); err != nil {
				l.log.Printf("link write of %d bytes failed: %v", len(msg), err)
			}
			l.OnOutboundComplete()
		}
	}
}

// DeliverInbound appends p to the inbound ring. There is no backpressure;
// bytes beyond the free space overwrite unread ones.
func (l *Link) DeliverInbound(p []byte) {
	for _, c := range p {
		l.in.Put(c)
	}
	l.received.Add(uint64(len(p)))
}

// SendOutbound queues p for transmission. At most Capacity bytes are
// sent. It returns ErrBusy if the previous send has not completed.
func (l *Link) SendOutbound(p []byte) error {
	if len(p) == 0 {
		return ErrEmpty
	}
	msg, ok := l.out.claim(p)
	if !ok {
		return ErrBusy
	}
	select {
	case l.queue <- msg:
	default:
		// Only reachable when Reset dropped the busy flag while a message
		// was still queued.
		l.out.release()
		return ErrBusy
	}
	l.sent.Add(1)
	return nil
}

// OnOutboundComplete clears the in-flight flag.
func (l *Link) OnOutboundComplete() {
	l.out.release()
}

// Reset empties the inbound ring and clears the in-flight flag.
func (l *Link) Reset() {
	l.in.Reset()
	l.out.release()
}

// Available reports whether an inbound byte is waiting.
func (l *Link) Available() bool {
	return !l.in.Empty()
}

// Next pops the oldest inbound byte.
func (l *Link) Next() (byte, bool) {
	return l.in.Get()
}

// Sending reports whether a transmission is in flight.
func (l *Link) Sending() bool {
	return l.out.sending.Load()
}

// Sent returns the number of transmissions accepted so far.
func (l *Link) Sent() uint64 {
	return l.sent.Load()
}

// Received returns the number of inbound bytes delivered so far.
func (l *Link) Received() uint64 {
	return l.received.Load()
}
