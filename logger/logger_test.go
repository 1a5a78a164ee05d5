package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "altair.log")

	l, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	l.Printf("session started")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Initializing " + path, "session started", Prefix} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log file = %q, want it to contain %q", data, want)
		}
	}
}

func TestNewBadPath(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing", "altair.log")); err == nil {
		t.Error("New() with a missing directory returned no error")
	}
}
