package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Prefix is written in front of every log line.
const Prefix = "ALTAIR "

// New returns a logger writing to path, or to stderr when path is empty.
// stdout is never used: it may be carrying the teleprinter session.
func New(path string) (*log.Logger, error) {
	if len(path) == 0 {
		return log.New(os.Stderr, Prefix, log.Ldate|log.Ltime|log.Lshortfile), nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", path, err)
	}
	l := log.New(f, Prefix, log.Ldate|log.Ltime|log.Lshortfile)
	l.Printf("Initializing %s", path)
	return l, nil
}

// Discard returns a logger that drops everything. Handy for tests.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}
