package midi

import (
	"context"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2/drivers"

	"notegate/debug"
)

// DeviceEvent is emitted when the watched input connects or disconnects
type DeviceEvent struct {
	Type DeviceEventType
	ID   string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager keeps an Input open on the first port matching a name,
// reopening it when the device is unplugged and plugged back in.
type DeviceManager struct {
	name     string
	out      chan<- []byte
	pollRate time.Duration

	mu     sync.RWMutex
	input  *Input
	events chan DeviceEvent

	// swapped in tests
	listIns func() ([]drivers.In, error)
	open    func(drivers.In, chan<- []byte) (*Input, error)
}

// NewDeviceManager watches for an input named name and forwards its bytes to out
func NewDeviceManager(name string, out chan<- []byte) *DeviceManager {
	return &DeviceManager{
		name:     name,
		out:      out,
		pollRate: time.Second,
		events:   make(chan DeviceEvent, 16),
		listIns: func() ([]drivers.In, error) {
			ins, _, err := Ports()
			return ins, err
		},
		open: OpenInput,
	}
}

// Events returns connect/disconnect notifications
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Connected returns the id of the open input, or "" if none
func (dm *DeviceManager) Connected() string {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	if dm.input == nil {
		return ""
	}
	return dm.input.ID()
}

// Run polls for the device until ctx is done (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeInput()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) scan() {
	ins, err := dm.listIns()
	if err != nil {
		debug.Log("midi-in", "scan: %v", err)
		return
	}

	var found drivers.In
	for _, p := range ins {
		if matches(p.String(), dm.name) {
			found = p
			break
		}
	}

	current := dm.Connected()

	switch {
	case found == nil && current != "":
		dm.closeInput()
		dm.emit(DeviceEvent{Type: DeviceDisconnected, ID: current})
	case found != nil && current == "":
		in, err := dm.open(found, dm.out)
		if err != nil {
			debug.Log("midi-in", "open %s: %v", found.String(), err)
			return
		}
		dm.mu.Lock()
		dm.input = in
		dm.mu.Unlock()
		dm.emit(DeviceEvent{Type: DeviceConnected, ID: in.ID()})
	}
}

func (dm *DeviceManager) emit(e DeviceEvent) {
	select {
	case dm.events <- e:
	default:
	}
}

func (dm *DeviceManager) closeInput() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if dm.input != nil {
		dm.input.Close()
		dm.input = nil
	}
}
