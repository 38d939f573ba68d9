// Package port carries the command stream over a serial line.
package port

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tarm/serial"

	"notegate/debug"
)

// DefaultBaud is the MIDI DIN rate the firmware listens at
const DefaultBaud = 31250

// readTimeout keeps Read from blocking forever so Pump can notice cancellation
const readTimeout = 100 * time.Millisecond

// Serial is an open serial line
type Serial struct {
	name string
	port *serial.Port
}

// OpenSerial opens name at baud (DefaultBaud when zero). An empty name
// picks the first device that looks like a USB serial adapter.
func OpenSerial(name string, baud int) (*Serial, error) {
	if name == "" {
		name = Find("/dev")
		if name == "" {
			return nil, errors.New("no serial device found")
		}
	}
	if baud == 0 {
		baud = DefaultBaud
	}

	p, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud, ReadTimeout: readTimeout})
	if err != nil {
		return nil, errors.Wrapf(err, "open serial %s", name)
	}
	debug.Log("serial", "opened %s at %d baud", name, baud)
	return &Serial{name: name, port: p}, nil
}

func (s *Serial) Name() string {
	return s.name
}

func (s *Serial) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *Serial) Close() error {
	return s.port.Close()
}

// Pump copies bytes from the line into out until ctx is done. Read
// timeouts are not errors.
func (s *Serial) Pump(ctx context.Context, out chan<- []byte) error {
	return pump(ctx, s.port, out, false)
}

// Pump copies bytes from r into out until r is exhausted or ctx is done
func Pump(ctx context.Context, r io.Reader, out chan<- []byte) error {
	return pump(ctx, r, out, true)
}

func pump(ctx context.Context, r io.Reader, out chan<- []byte, stopOnEOF bool) error {
	buf := make([]byte, 64)
	for {
		if ctx.Err() != nil {
			return nil
		}

		n, err := r.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			select {
			case out <- chunk:
			case <-ctx.Done():
				return nil
			}
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			if stopOnEOF {
				return nil
			}
		default:
			return errors.Wrap(err, "serial read")
		}
	}
}

// Find returns the first entry in dir that looks like an Arduino or USB
// serial adapter, or "" if there is none
func Find(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		name := e.Name()
		if strings.Contains(name, "tty.usbserial") ||
			strings.Contains(name, "tty.usbmodem") ||
			strings.Contains(name, "ttyUSB") ||
			strings.Contains(name, "ttyACM") {
			return filepath.Join(dir, name)
		}
	}
	return ""
}
