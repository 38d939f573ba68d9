package midi

import (
	"errors"
	"testing"

	"gitlab.com/gomidi/midi/v2/drivers"
)

type fakeIn struct {
	name string
}

func (f *fakeIn) Open() error             { return nil }
func (f *fakeIn) Close() error            { return nil }
func (f *fakeIn) IsOpen() bool            { return true }
func (f *fakeIn) Number() int             { return 0 }
func (f *fakeIn) String() string          { return f.name }
func (f *fakeIn) Underlying() interface{} { return nil }
func (f *fakeIn) Listen(func([]byte, int32), drivers.ListenConfig) (func(), error) {
	return func() {}, nil
}

func newTestManager(ports *[]drivers.In) (*DeviceManager, *int) {
	opened := 0
	dm := NewDeviceManager("arduino", make(chan []byte, 1))
	dm.listIns = func() ([]drivers.In, error) {
		return *ports, nil
	}
	dm.open = func(in drivers.In, out chan<- []byte) (*Input, error) {
		opened++
		return &Input{id: in.String(), stopFunc: func() {}}, nil
	}
	return dm, &opened
}

func TestDeviceManagerHotPlug(t *testing.T) {
	ports := []drivers.In{&fakeIn{name: "IAC Bus 1"}}
	dm, opened := newTestManager(&ports)

	dm.scan()
	if dm.Connected() != "" || *opened != 0 {
		t.Fatalf("connected to %q without a match", dm.Connected())
	}

	ports = append(ports, &fakeIn{name: "Arduino Leonardo MIDI 1"})
	dm.scan()
	dm.scan()
	if dm.Connected() != "Arduino Leonardo MIDI 1" || *opened != 1 {
		t.Fatalf("connected=%q opened=%d", dm.Connected(), *opened)
	}
	if e := <-dm.Events(); e.Type != DeviceConnected {
		t.Errorf("event = %+v", e)
	}

	ports = ports[:1]
	dm.scan()
	if dm.Connected() != "" {
		t.Fatalf("still connected to %q", dm.Connected())
	}
	if e := <-dm.Events(); e.Type != DeviceDisconnected || e.ID != "Arduino Leonardo MIDI 1" {
		t.Errorf("event = %+v", e)
	}
}

func TestDeviceManagerScanError(t *testing.T) {
	var ports []drivers.In
	dm, opened := newTestManager(&ports)
	dm.listIns = func() ([]drivers.In, error) {
		return nil, errors.New("backend gone")
	}

	dm.scan()
	if *opened != 0 || dm.Connected() != "" {
		t.Fatal("scan error should leave the manager idle")
	}
}

func TestMatchesIgnoresCase(t *testing.T) {
	if !matches("Arduino Leonardo MIDI 1", "ARDUINO") {
		t.Error("expected case-insensitive match")
	}
	if matches("IAC Bus 1", "arduino") {
		t.Error("unexpected match")
	}
}
