package midi

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// ScanTimeout bounds port enumeration (CoreMIDI can hang)
const ScanTimeout = 3 * time.Second

// ErrScanTimeout is returned when the MIDI backend does not answer
var ErrScanTimeout = errors.New("midi port scan timed out")

// Ports lists the current input and output ports
func Ports() ([]drivers.In, []drivers.Out, error) {
	type portsResult struct {
		ins  []drivers.In
		outs []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		ch <- portsResult{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		return r.ins, r.outs, nil
	case <-time.After(ScanTimeout):
		// User needs to run: sudo killall coreaudiod midiserver
		return nil, nil, ErrScanTimeout
	}
}

// FindIn returns the first input port whose name contains name (case-insensitive)
func FindIn(name string) (drivers.In, error) {
	ins, _, err := Ports()
	if err != nil {
		return nil, err
	}
	for _, p := range ins {
		if matches(p.String(), name) {
			return p, nil
		}
	}
	return nil, errors.Errorf("no MIDI input matching %q", name)
}

// FindOut returns the first output port whose name contains name (case-insensitive)
func FindOut(name string) (drivers.Out, error) {
	_, outs, err := Ports()
	if err != nil {
		return nil, err
	}
	for _, p := range outs {
		if matches(p.String(), name) {
			return p, nil
		}
	}
	return nil, errors.Errorf("no MIDI output matching %q", name)
}

func matches(portName, name string) bool {
	return strings.Contains(strings.ToLower(portName), strings.ToLower(name))
}
