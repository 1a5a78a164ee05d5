package link

import "sync/atomic"

// Capacity is the size of the inbound ring.
const Capacity = 128

// InboundBuffer is the ring the transport fills and the data port drains.
//
// write is only advanced by the delivery path, read only by the consumer.
// read == write means empty. There is no full flag: a writer that laps
// the reader silently overwrites bytes that were never read.
type InboundBuffer struct {
	read  atomic.Uint32
	write atomic.Uint32
	data  [Capacity]byte
}

// Put appends c at the write index.
func (b *InboundBuffer) Put(c byte) {
	w := b.write.Load()
	b.data[w] = c
	b.write.Store((w + 1) % Capacity)
}

// Get pops the oldest byte. ok is false, and nothing moves, when empty.
func (b *InboundBuffer) Get() (c byte, ok bool) {
	r := b.read.Load()
	if r == b.write.Load() {
		return 0, false
	}
	c = b.data[r]
	b.read.Store((r + 1) % Capacity)
	return c, true
}

// Empty reports whether read has caught up with write.
func (b *InboundBuffer) Empty() bool {
	return b.read.Load() == b.write.Load()
}

// Len returns the number of unread bytes as seen from the indices.
func (b *InboundBuffer) Len() int {
	r, w := b.read.Load(), b.write.Load()
	return int((w + Capacity - r) % Capacity)
}

// Reset empties the ring.
func (b *InboundBuffer) Reset() {
	b.read.Store(0)
	b.write.Store(0)
}

// OutboundCell tracks the single transmission that may be in flight.
type OutboundCell struct {
	buf     [Capacity]byte
	length  int
	sending atomic.Bool
}

// claim marks the cell busy and stores p. It fails if a send is pending.
func (o *OutboundCell) claim(p []byte) ([]byte, bool) {
	if !o.sending.CompareAndSwap(false, true) {
		return nil, false
	}
	o.length = copy(o.buf[:], p)
	msg := make([]byte, o.length)
	copy(msg, o.buf[:o.length])
	return msg, true
}

func (o *OutboundCell) release() {
	o.sending.Store(false)
}
