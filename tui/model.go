package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"notegate/config"
	"notegate/driver"
	"notegate/midi"
	"notegate/protocol"
	"notegate/scheduler"
	"notegate/theme"
	"notegate/widgets"
)

const (
	gateStep    = 50
	defaultGate = 250
	barWidth    = 16
)

type Model struct {
	Loop      *driver.Loop
	DeviceMgr *midi.DeviceManager // nil unless input is MIDI
	Theme     *theme.Theme
	Config    *config.Config
	InputName string

	duty     func(note uint8) uint8
	cursor   int
	gate     int
	device   string
	quitting bool
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

func NewModel(loop *driver.Loop, manager *scheduler.Manager, deviceMgr *midi.DeviceManager, cfg *config.Config, th *theme.Theme, inputName string) Model {
	return Model{
		Loop:      loop,
		DeviceMgr: deviceMgr,
		Theme:     th,
		Config:    cfg,
		InputName: inputName,
		duty:      manager.Duty,
		gate:      defaultGate,
	}
}

func ListenForUpdates(loop *driver.Loop) tea.Cmd {
	return func() tea.Msg {
		<-loop.Updates()
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.Loop)}
	if m.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		events := m.Loop.Snapshot().Events
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "j", "down":
			if m.cursor < len(events)-1 {
				m.cursor++
			}

		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}

		case "n", "N":
			if m.cursor < len(events) {
				e := events[m.cursor]
				note := e.Note + 1
				if msg.String() == "N" {
					note = e.Note - 1
				}
				m.Loop.Inject(protocol.EncodeNote(e.Channel, note))
			}

		case "g", " ":
			if m.cursor < len(events) {
				m.Loop.Inject(protocol.EncodeGate(events[m.cursor].Channel, uint16(m.gate)))
			}

		case "+", "=":
			m.gate = min(m.gate+gateStep, protocol.MaxGateLength)

		case "-", "_":
			m.gate = max(m.gate-gateStep, 0)
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Loop)

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		if event.Type == midi.DeviceConnected {
			m.device = event.ID
		} else if event.Type == midi.DeviceDisconnected {
			m.device = ""
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.Loop.Snapshot()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	fgStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())

	input := m.InputName
	if m.DeviceMgr != nil {
		input = "waiting for " + m.InputName
		if m.device != "" {
			input = m.device
		}
	}

	header := headerStyle.Render(fmt.Sprintf("notegate  in:%s  bytes:%d notes:%d gates:%d  t=%dms",
		input, snap.Stats.Bytes, snap.Stats.Notes, snap.Stats.Gates, snap.Now))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")

	for i, e := range snap.Events {
		out.WriteString(m.renderChannel(e, snap.Now, i == m.cursor, fgStyle))
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(dimStyle.Render(fmt.Sprintf("j/k:channel  n/N:note  g:gate %dms  +/-:length  q:quit", m.gate)))
	return out.String()
}

func (m Model) renderChannel(e scheduler.NoteEvent, now uint32, selected bool, style lipgloss.Style) string {
	sym := m.Theme.Symbols

	cursor := " "
	if selected {
		cursor = string(sym.Cursor)
	}

	pin, register := "-", "-"
	if ch := m.Config.FindChannel(e.Channel); ch != nil {
		pin = fmt.Sprint(ch.GatePin)
		if ch.PWM != "" {
			register = ch.PWM
		}
	}

	duty := m.duty(e.Note)
	bar := widgets.RenderBar(int(duty), 256, barWidth, sym.BarFull, sym.BarEmpty, m.Theme.Color(float64(duty)/255))

	led := sym.GateLow
	detail := ""
	switch e.State {
	case scheduler.Running:
		led = sym.GateHigh
		detail = fmt.Sprintf("%dms left", int32(e.End-now))
	case scheduler.NotStarted:
		led = sym.Armed
	}

	line := style.Render(fmt.Sprintf("%s ch %2d  pin %-3s %-6s note %3d  duty %3d ",
		cursor, e.Channel, pin, register, e.Note, duty))
	state := lipgloss.NewStyle().Foreground(m.Theme.State(e.State)).Render(fmt.Sprintf("%-8s", e.State))

	return line + bar + "  " + widgets.RenderLED(led, m.Theme.State(e.State)) + " " + state + " " + detail
}
