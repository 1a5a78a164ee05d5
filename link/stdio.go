package link

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// Escape ends a stdio session. Ctrl-C is passed to the machine in raw mode.
const Escape = 0x1d // Ctrl-]

// Stdio is a transport over the process's own terminal.
type Stdio struct {
	in    *os.File
	out   *os.File
	fd    int
	state *term.State

	done chan struct{}
	once sync.Once
}

// OpenStdio puts stdin into raw mode when it is a terminal. Piped input
// is used as is.
func OpenStdio() (*Stdio, error) {
	s := &Stdio{
		in:   os.Stdin,
		out:  os.Stdout,
		fd:   int(os.Stdin.Fd()),
		done: make(chan struct{}),
	}
	if !term.IsTerminal(s.fd) {
		return s, nil
	}
	state, err := term.MakeRaw(s.fd)
	if err != nil {
		return nil, fmt.Errorf("raw mode: %w", err)
	}
	s.state = state
	return s, nil
}

// Read returns host keystrokes. Seeing Escape ends the session.
func (s *Stdio) Read(p []byte) (int, error) {
	n, err := s.in.Read(p)
	for i := 0; i < n; i++ {
		if p[i] == Escape {
			s.finish()
			return i, io.EOF
		}
	}
	if err == io.EOF {
		s.finish()
	}
	return n, err
}

func (s *Stdio) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

// Done is closed once the user escapes or stdin ends.
func (s *Stdio) Done() <-chan struct{} {
	return s.done
}

func (s *Stdio) finish() {
	s.once.Do(func() { close(s.done) })
}

// Close restores the terminal.
func (s *Stdio) Close() error {
	s.finish()
	if s.state == nil {
		return nil
	}
	err := term.Restore(s.fd, s.state)
	s.state = nil
	return err
}
