package midi

import (
	"bytes"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
)

type sent struct {
	msgs [][]byte
}

func (s *sent) send(msg gomidi.Message) error {
	s.msgs = append(s.msgs, append([]byte(nil), msg.Bytes()...))
	return nil
}

func TestSendFramePadsNote(t *testing.T) {
	s := &sent{}
	o := NewOutput("test", s.send)

	o.SendFrame([]byte{0x82, 0x18})
	o.SendFrame([]byte{0x92, 0x00, 0x64})

	if len(s.msgs) != 2 {
		t.Fatalf("sent %d messages, want 2", len(s.msgs))
	}
	if !bytes.Equal(s.msgs[0], []byte{0x82, 0x18, 0x00}) {
		t.Errorf("note frame = % X", s.msgs[0])
	}
	if !bytes.Equal(s.msgs[1], []byte{0x92, 0x00, 0x64}) {
		t.Errorf("gate frame = % X", s.msgs[1])
	}
}

func TestGatePinSendsNotes(t *testing.T) {
	s := &sent{}
	pin := NewOutput("test", s.send).Gate(1, 60)

	pin.High()
	pin.Low()

	if len(s.msgs) != 2 {
		t.Fatalf("sent %d messages, want 2", len(s.msgs))
	}
	var ch, key, vel uint8
	if !gomidi.Message(s.msgs[0]).GetNoteOn(&ch, &key, &vel) || ch != 1 || key != 60 || vel != 127 {
		t.Errorf("high sent % X", s.msgs[0])
	}
	if !gomidi.Message(s.msgs[1]).GetNoteOff(&ch, &key, &vel) || ch != 1 || key != 60 {
		t.Errorf("low sent % X", s.msgs[1])
	}
}

func TestDutyCCHalvesDuty(t *testing.T) {
	s := &sent{}
	d := NewOutput("test", s.send).Duty(0, 1)

	d.Set(197)

	var ch, cc, val uint8
	if len(s.msgs) != 1 || !gomidi.Message(s.msgs[0]).GetControlChange(&ch, &cc, &val) {
		t.Fatalf("sent %v", s.msgs)
	}
	if cc != 1 || val != 98 {
		t.Errorf("cc=%d val=%d, want 1/98", cc, val)
	}
}
