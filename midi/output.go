package midi

import (
	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"notegate/debug"
)

// Output drives channel routes over a MIDI port instead of pins and
// registers: gates become note on/off, duty cycles become control changes.
type Output struct {
	id   string
	send func(msg gomidi.Message) error
}

// OpenOutput opens outPort for sending
func OpenOutput(outPort drivers.Out) (*Output, error) {
	send, err := gomidi.SendTo(outPort)
	if err != nil {
		return nil, errors.Wrapf(err, "open output %s", outPort.String())
	}
	return NewOutput(outPort.String(), send), nil
}

// NewOutput wraps an existing send function
func NewOutput(id string, send func(msg gomidi.Message) error) *Output {
	return &Output{id: id, send: send}
}

func (o *Output) ID() string {
	return o.id
}

// SendFrame writes a protocol frame as a MIDI message. Two-byte frames
// are padded with a zero data byte so they form a valid three-byte
// message; the listener discards the extra byte.
func (o *Output) SendFrame(frame []byte) error {
	msg := append([]byte(nil), frame...)
	if len(msg) == 2 {
		msg = append(msg, 0)
	}
	return o.write(gomidi.Message(msg))
}

// Gate returns a pin that plays key on channel (0-15) while high
func (o *Output) Gate(channel, key uint8) *GatePin {
	return &GatePin{out: o, channel: channel & 0x0F, key: key & 0x7F}
}

// Duty returns a register that reports writes as control change cc on channel
func (o *Output) Duty(channel, cc uint8) *DutyCC {
	return &DutyCC{out: o, channel: channel & 0x0F, cc: cc & 0x7F}
}

func (o *Output) write(msg gomidi.Message) error {
	if err := o.send(msg); err != nil {
		debug.Log("midi-out", "%s: %v", o.id, err)
		return err
	}
	return nil
}

// GatePin is a gate route backed by note on/off
type GatePin struct {
	out     *Output
	channel uint8
	key     uint8
}

func (p *GatePin) High() {
	p.out.write(gomidi.NoteOn(p.channel, p.key, 127))
}

func (p *GatePin) Low() {
	p.out.write(gomidi.NoteOff(p.channel, p.key))
}

// DutyCC is a PWM route backed by a control change. The 8-bit duty is
// halved to fit the 7-bit controller range.
type DutyCC struct {
	out     *Output
	channel uint8
	cc      uint8
}

func (d *DutyCC) Set(duty uint8) {
	d.out.write(gomidi.ControlChange(d.channel, d.cc, duty>>1))
}
