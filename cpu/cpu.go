// Package cpu hosts the emulated 8080.
//
// Instruction semantics come from github.com/koron-go/z80; the Z80 runs
// the 8080 instruction set. This package owns the memory image, the
// register reset and the port hooks.
package cpu

import (
	"errors"
	"fmt"
	"io"

	"github.com/koron-go/z80"
)

// MemorySize is the amount of RAM fitted to the machine.
const MemorySize = 8 * 1024

// openBus is what a read from an unfitted address returns.
const openBus = 0xFF

// ErrImageTooLarge is returned for program images that do not fit in RAM.
var ErrImageTooLarge = errors.New("cpu: program image larger than memory")

// Ports receives IN and OUT instructions.
type Ports interface {
	ReadPort(port uint8) uint8
	WritePort(port uint8, value uint8)
}

// Memory is the machine's RAM. Addresses past the end read as open bus
// and ignore writes.
type Memory [MemorySize]uint8

// Get implements z80.Memory.
func (m *Memory) Get(addr uint16) uint8 {
	if int(addr) >= MemorySize {
		return openBus
	}
	return m[addr]
}

// Set implements z80.Memory.
func (m *Memory) Set(addr uint16, value uint8) {
	if int(addr) < MemorySize {
		m[addr] = value
	}
}

// Host owns the processor state and the program image.
type Host struct {
	CPU    z80.CPU
	Memory Memory

	image []byte
	ports Ports

	// executed instructions since the last Reset
	steps uint64
}

// New returns a host that will load image at address 0 on every Reset.
func New(image []byte, ports Ports) (*Host, error) {
	if len(image) > MemorySize {
		return nil, fmt.Errorf("%w: %d bytes", ErrImageTooLarge, len(image))
	}
	h := &Host{
		image: append([]byte(nil), image...),
		ports: ports,
	}
	h.Reset()
	return h, nil
}

// LoadImage reads a raw binary image, as dumped from ROM or paper tape.
func LoadImage(r io.Reader) ([]byte, error) {
	image, err := io.ReadAll(io.LimitReader(r, MemorySize+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(image) > MemorySize {
		return nil, ErrImageTooLarge
	}
	return image, nil
}

// Reset clears memory, copies the image in and puts the registers in
// their power-on state.
func (h *Host) Reset() {
	h.Memory = Memory{}
	copy(h.Memory[:], h.image)
	h.CPU = z80.CPU{
		States: z80.States{SPR: z80.SPR{PC: 0}},
		Memory: &h.Memory,
		IO:     h,
	}
	h.steps = 0
}

// Step executes one instruction. A halted processor stays halted.
func (h *Host) Step() {
	if h.CPU.HALT {
		return
	}
	h.CPU.Step()
	h.steps++
}

// Steps returns the number of instructions executed since Reset.
func (h *Host) Steps() uint64 {
	return h.steps
}

// Halted reports whether the program executed HLT.
func (h *Host) Halted() bool {
	return h.CPU.HALT
}

// PC returns the program counter.
func (h *Host) PC() uint16 {
	return h.CPU.PC
}

// In implements z80.IO.
func (h *Host) In(addr uint8) uint8 {
	if h.ports == nil {
		return 0
	}
	return h.ports.ReadPort(addr)
}

// Out implements z80.IO.
func (h *Host) Out(addr uint8, value uint8) {
	if h.ports != nil {
		h.ports.WritePort(addr, value)
	}
}
