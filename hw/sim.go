// Package hw provides in-memory routes for running without hardware.
package hw

import "notegate/debug"

// SimPin records the level of a digital output
type SimPin struct {
	Pin    uint8
	Level  bool
	Writes int
}

func NewSimPin(pin uint8) *SimPin {
	return &SimPin{Pin: pin}
}

func (p *SimPin) High() {
	p.Level = true
	p.Writes++
	debug.Log("pin", "pin=%d high", p.Pin)
}

func (p *SimPin) Low() {
	p.Level = false
	p.Writes++
	debug.Log("pin", "pin=%d low", p.Pin)
}

// SimPWM records the last duty written to a register
type SimPWM struct {
	Register string
	Duty     uint8
	Writes   int
}

func NewSimPWM(register string) *SimPWM {
	return &SimPWM{Register: register}
}

func (r *SimPWM) Set(duty uint8) {
	r.Duty = duty
	r.Writes++
	debug.Log("pwm", "%s=%d", r.Register, duty)
}
