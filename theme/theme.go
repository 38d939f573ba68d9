package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"notegate/scheduler"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	GateHigh rune // ● pin driven high
	GateLow  rune // ○ pin low
	Armed    rune // ◌ waiting for start
	Cursor   rune // ▶ selected channel
	BarFull  rune // █
	BarEmpty rune // ░
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = Plasma()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			GateHigh: '●',
			GateLow:  '○',
			Armed:    '◌',
			Cursor:   '▶',
			BarFull:  '█',
			BarEmpty: '░',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleMuted   = 0.15
	RoleFG      = 0.45
	RoleAccent  = 0.55
	RoleArmed   = 0.75
	RoleRunning = 1.0
)

func (t *Theme) FG() lipgloss.Color {
	return t.Color(RoleFG)
}

func (t *Theme) Accent() lipgloss.Color {
	return t.Color(RoleAccent)
}

func (t *Theme) Muted() lipgloss.Color {
	return t.Color(RoleMuted)
}

// State returns the color used for a gate state
func (t *Theme) State(s scheduler.EventState) lipgloss.Color {
	switch s {
	case scheduler.Running:
		return t.Color(RoleRunning)
	case scheduler.NotStarted:
		return t.Color(RoleArmed)
	}
	return t.Muted()
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return ToLipgloss(t.Palette.Lookup(norm))
}

// RGB returns raw RGB for any normalized value
func (t *Theme) RGB(norm float64) RGB {
	return t.Palette.Lookup(norm)
}

func ToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
