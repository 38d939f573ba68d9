package port

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPumpForwardsEverything(t *testing.T) {
	data := []byte{0x82, 0x18, 0x92, 0x00, 0x64}
	out := make(chan []byte, 8)

	if err := Pump(context.Background(), bytes.NewReader(data), out); err != nil {
		t.Fatalf("Pump: %v", err)
	}
	close(out)

	var got []byte
	for chunk := range out {
		got = append(got, chunk...)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("got % X, want % X", got, data)
	}
}

func TestPumpStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := make(chan []byte)
	if err := Pump(ctx, bytes.NewReader([]byte{1, 2, 3}), out); err != nil {
		t.Fatalf("Pump: %v", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("unplugged")
}

func TestPumpReturnsReadErrors(t *testing.T) {
	err := Pump(context.Background(), failingReader{}, make(chan []byte, 1))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"tty0", "ttyACM0"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	if got := Find(dir); got != filepath.Join(dir, "ttyACM0") {
		t.Errorf("Find = %q", got)
	}
	if got := Find(filepath.Join(dir, "missing")); got != "" {
		t.Errorf("Find on missing dir = %q", got)
	}
}
