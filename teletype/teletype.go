package teletype

import (
	"fmt"
	"log"
	"strings"
)

// I/O ports of the serial card.
const (
	StatusPort uint8 = 0x00
	DataPort   uint8 = 0x01
)

// Profile selects the status register layout the loaded BASIC expects.
type Profile int

const (
	// Profile8K status bits:
	// 7: XMT BUSY, 0: RCV EMPTY
	Profile8K Profile = iota

	// Profile4K status bits:
	// 5: RCV READY, 1: XMT IDLE
	Profile4K
)

const (
	busy8K  uint8 = 1 << 7
	empty8K uint8 = 1 << 0
	ready4K uint8 = 1 << 5
	idle4K  uint8 = 1 << 1
)

// ParseProfile maps "8k" / "4k" to a profile.
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(s) {
	case "8k", "":
		return Profile8K, nil
	case "4k":
		return Profile4K, nil
	default:
		return 0, fmt.Errorf("unknown status profile %q", s)
	}
}

func (p Profile) String() string {
	if p == Profile4K {
		return "4k"
	}
	return "8k"
}

// Status encodes the two conditions into the status register.
func (p Profile) Status(sending, available bool) uint8 {
	var s uint8
	switch p {
	case Profile4K:
		if !sending {
			s |= idle4K
		}
		if available {
			s |= ready4K
		}
	default:
		if sending {
			s |= busy8K
		}
		if !available {
			s |= empty8K
		}
	}
	return s
}

// TransmitterBusy decodes a status value.
func (p Profile) TransmitterBusy(status uint8) bool {
	if p == Profile4K {
		return status&idle4K == 0
	}
	return status&busy8K != 0
}

// ReceiverReady decodes a status value.
func (p Profile) ReceiverReady(status uint8) bool {
	if p == Profile4K {
		return status&ready4K != 0
	}
	return status&empty8K == 0
}

// Link is the part of the byte transport the teletype needs.
type Link interface {
	Available() bool
	Next() (byte, bool)
	Sending() bool
	SendOutbound(p []byte) error
}

// Teletype maps the status and data ports onto a byte link.
type Teletype struct {
	link    Link
	profile Profile
	log     *log.Logger

	// output bytes refused by the link
	dropped uint64
}

// New returns a teletype over link.
func New(link Link, profile Profile, log *log.Logger) *Teletype {
	return &Teletype{link: link, profile: profile, log: log}
}

// ReadPort serves an IN instruction. Unknown ports read as 0.
func (t *Teletype) ReadPort(port uint8) uint8 {
	switch port {
	case StatusPort:
		return t.profile.Status(t.link.Sending(), t.link.Available())
	case DataPort:
		return t.getChar()
	default:
		return 0
	}
}

// WritePort serves an OUT instruction. Only the data port does anything.
func (t *Teletype) WritePort(port uint8, value uint8) {
	if port != DataPort {
		return
	}
	if err := t.link.SendOutbound([]byte{value & 0x7F}); err != nil {
		t.dropped++
		t.log.Printf("teletype: dropped output %#02x: %v", value&0x7F, err)
	}
}

// Dropped returns how many output bytes the link refused.
func (t *Teletype) Dropped() uint64 {
	return t.dropped
}

// getChar pops the next input byte, folding lower case to upper case.
func (t *Teletype) getChar() uint8 {
	c, ok := t.link.Next()
	if !ok {
		return 0
	}
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	return c
}
