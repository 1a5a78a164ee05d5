package teletype

import (
	"testing"

	"altair/link"
	"altair/logger"
)

func newTeletype(p Profile) (*Teletype, *link.Link) {
	l := link.New(nil, logger.Discard())
	return New(l, p, logger.Discard()), l
}

func TestReadDataFIFO(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"mixed case", "Hi!", "HI!"},
		{"all lower", "print 2+2\r", "PRINT 2+2\r"},
		{"edges", "`az{AZ@", "`AZ{AZ@"},
		{"control and high bytes", "\x00\x1b\xe1", "\x00\x1b\xe1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tty, l := newTeletype(Profile8K)
			l.DeliverInbound([]byte(tt.input))

			for i := 0; i < len(tt.want); i++ {
				if got := tty.ReadPort(DataPort); got != tt.want[i] {
					t.Errorf("ReadPort(1) #%d = %#02x, want %#02x", i, got, tt.want[i])
				}
			}
			if got := tty.ReadPort(DataPort); got != 0 {
				t.Errorf("ReadPort(1) after drain = %#02x, want 0", got)
			}
		})
	}
}

func TestReadDataLongRun(t *testing.T) {
	tty, l := newTeletype(Profile8K)
	input := make([]byte, link.Capacity-1)
	for i := range input {
		input[i] = 'a' + byte(i%26)
	}
	l.DeliverInbound(input)

	for i := range input {
		want := 'A' + byte(i%26)
		if got := tty.ReadPort(DataPort); got != want {
			t.Fatalf("ReadPort(1) #%d = %q, want %q", i, got, want)
		}
	}
}

func TestReadDataEmptyIsIdempotent(t *testing.T) {
	tty, l := newTeletype(Profile8K)
	for i := 0; i < 10; i++ {
		if got := tty.ReadPort(DataPort); got != 0 {
			t.Fatalf("ReadPort(1) on empty = %#02x, want 0", got)
		}
	}
	l.DeliverInbound([]byte("x"))
	if got := tty.ReadPort(DataPort); got != 'X' {
		t.Errorf("ReadPort(1) = %q, want 'X'", got)
	}
}

func TestStatusPort(t *testing.T) {
	for _, p := range []Profile{Profile8K, Profile4K} {
		t.Run(p.String(), func(t *testing.T) {
			tty, l := newTeletype(p)

			s := tty.ReadPort(StatusPort)
			if p.ReceiverReady(s) || p.TransmitterBusy(s) {
				t.Errorf("idle status %#02x: ready %v busy %v", s, p.ReceiverReady(s), p.TransmitterBusy(s))
			}

			l.DeliverInbound([]byte("ab"))
			if s := tty.ReadPort(StatusPort); !p.ReceiverReady(s) {
				t.Errorf("status %#02x after delivery: receiver not ready", s)
			}
			tty.ReadPort(DataPort)
			if s := tty.ReadPort(StatusPort); !p.ReceiverReady(s) {
				t.Errorf("status %#02x with one byte left: receiver not ready", s)
			}
			tty.ReadPort(DataPort)
			if s := tty.ReadPort(StatusPort); p.ReceiverReady(s) {
				t.Errorf("status %#02x after drain: receiver ready", s)
			}

			tty.WritePort(DataPort, 'A')
			if s := tty.ReadPort(StatusPort); !p.TransmitterBusy(s) {
				t.Errorf("status %#02x after write: transmitter idle", s)
			}
			l.OnOutboundComplete()
			if s := tty.ReadPort(StatusPort); p.TransmitterBusy(s) {
				t.Errorf("status %#02x after completion: transmitter busy", s)
			}
		})
	}
}

func TestStatusBits(t *testing.T) {
	tests := []struct {
		profile   Profile
		sending   bool
		available bool
		want      uint8
	}{
		{Profile8K, false, false, 0x01},
		{Profile8K, false, true, 0x00},
		{Profile8K, true, false, 0x81},
		{Profile8K, true, true, 0x80},
		{Profile4K, false, false, 0x02},
		{Profile4K, false, true, 0x22},
		{Profile4K, true, false, 0x00},
		{Profile4K, true, true, 0x20},
	}

	for _, tt := range tests {
		if got := tt.profile.Status(tt.sending, tt.available); got != tt.want {
			t.Errorf("%v.Status(%v, %v) = %#02x, want %#02x",
				tt.profile, tt.sending, tt.available, got, tt.want)
		}
	}
}

func TestWriteDataMasksTopBit(t *testing.T) {
	tty, l := newTeletype(Profile8K)
	tty.WritePort(DataPort, 0xC1)
	if !l.Sending() {
		t.Fatal("Sending() = false after WritePort(1)")
	}
	if l.Sent() != 1 {
		t.Errorf("Sent() = %d, want 1", l.Sent())
	}

	// a second write before completion is refused by the link
	tty.WritePort(DataPort, 'B')
	if tty.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", tty.Dropped())
	}
}

func TestUnknownPorts(t *testing.T) {
	tty, l := newTeletype(Profile8K)
	l.DeliverInbound([]byte("z"))

	for _, port := range []uint8{2, 0x10, 0xFF} {
		if got := tty.ReadPort(port); got != 0 {
			t.Errorf("ReadPort(%#02x) = %#02x, want 0", port, got)
		}
		tty.WritePort(port, 'Q')
	}
	tty.WritePort(StatusPort, 'Q')

	if l.Sending() || l.Sent() != 0 {
		t.Error("write to a non-data port reached the link")
	}
	if !l.Available() {
		t.Error("read from an unknown port consumed input")
	}
}

func TestParseProfile(t *testing.T) {
	tests := []struct {
		in      string
		want    Profile
		wantErr bool
	}{
		{"8k", Profile8K, false},
		{"", Profile8K, false},
		{"4K", Profile4K, false},
		{"16k", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseProfile(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseProfile(%q) = %v, %v, want %v, err %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}
