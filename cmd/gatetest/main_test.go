package main

import (
	"math/rand"
	"testing"

	"notegate/protocol"
)

type captured struct {
	notes []uint8
	gates []uint16
}

func (c *captured) SetNoteEvent(_ uint8, note uint8) {
	c.notes = append(c.notes, note)
}

func (c *captured) SetGateEvent(_ uint8, duration uint16) {
	c.gates = append(c.gates, duration)
}

func TestGeneratedFramesParse(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	c := &captured{}
	l := protocol.NewListener([]uint8{2}, c)

	for i := 0; i < 50; i++ {
		l.Feed(nextFrames(r, 2, 1000))
	}

	if len(c.notes) != 50 || len(c.gates) != 50 {
		t.Fatalf("parsed %d notes and %d gates, want 50 each", len(c.notes), len(c.gates))
	}
	for _, g := range c.gates {
		if g < 125 || g >= 500 {
			t.Errorf("gate %d outside [125, 500)", g)
		}
	}
	for _, n := range c.notes {
		found := false
		for _, s := range scale {
			found = found || s == n
		}
		if !found {
			t.Errorf("note %d not in scale", n)
		}
	}
}

func TestParseUint(t *testing.T) {
	if v, err := parseUint("15", 15); err != nil || v != 15 {
		t.Errorf("parseUint(15) = %d, %v", v, err)
	}
	for _, s := range []string{"16", "-1", "x"} {
		if _, err := parseUint(s, 15); err == nil {
			t.Errorf("parseUint(%q) accepted", s)
		}
	}
}
