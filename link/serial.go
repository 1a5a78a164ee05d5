package link

import (
	"fmt"
	"io"

	"github.com/jacobsa/go-serial/serial"
)

// SerialConfig describes a host serial port. The defaults match the line
// coding the device reports over CDC: 9600 baud, 8N1.
type SerialConfig struct {
	Port string
	Baud uint
}

// DefaultBaud is the CDC line coding rate.
const DefaultBaud = 9600

// OpenSerial opens the port in 8N1 mode with single-byte reads.
func OpenSerial(cfg SerialConfig) (io.ReadWriteCloser, error) {
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}
	options := serial.OpenOptions{
		PortName:        cfg.Port,
		BaudRate:        cfg.Baud,
		DataBits:        8,
		StopBits:        1,
		ParityMode:      serial.PARITY_NONE,
		MinimumReadSize: 1,
	}
	port, err := serial.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", cfg.Port, err)
	}
	return port, nil
}
