package midi

import (
	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"notegate/debug"
)

// Input forwards the raw bytes of every message received on a MIDI port.
// Framing is left to the protocol listener; the driver only guarantees
// that each message arrives as one chunk.
type Input struct {
	id       string
	stopFunc func()
}

// OpenInput starts listening on inPort. Chunks are dropped when out is full.
func OpenInput(inPort drivers.In, out chan<- []byte) (*Input, error) {
	in := &Input{id: inPort.String()}

	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		if len(msg) == 0 {
			return
		}
		chunk := append([]byte(nil), msg.Bytes()...)
		select {
		case out <- chunk:
		default:
			debug.Log("midi-in", "%s: loop busy, dropped % X", in.id, chunk)
		}
	})
	if err != nil {
		return nil, errors.Wrapf(err, "listen to %s", in.id)
	}
	in.stopFunc = stop

	debug.Log("midi-in", "listening on %s", in.id)
	return in, nil
}

func (in *Input) ID() string {
	return in.id
}

func (in *Input) Close() error {
	if in.stopFunc != nil {
		in.stopFunc()
		in.stopFunc = nil
	}
	return nil
}
