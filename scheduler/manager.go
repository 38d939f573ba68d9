package scheduler

// MaxChannels is the number of protocol addresses
const MaxChannels = 16

// EventState is the gate timing state of one channel
type EventState uint8

const (
	NotStarted EventState = iota
	Running
	Finished
)

func (s EventState) String() string {
	switch s {
	case NotStarted:
		return "armed"
	case Running:
		return "running"
	case Finished:
		return "idle"
	}
	return "?"
}

// PWM is a duty-cycle register
type PWM interface {
	Set(duty uint8)
}

// Pin is a digital output
type Pin interface {
	High()
	Low()
}

// Route is the hardware a channel drives. Either side may be nil.
type Route struct {
	PWM  PWM
	Gate Pin
}

// Channel binds a protocol address to its hardware route
type Channel struct {
	ID    uint8
	Route Route
}

// NoteEvent is the state record of one channel
type NoteEvent struct {
	Channel uint8
	Route   Route
	Note    uint8
	Start   uint32 // ms
	End     uint32 // ms
	State   EventState
}

// Manager owns one NoteEvent per configured channel and turns note and
// gate commands into writes on the channel routes. Commands for channels
// that are not configured are ignored.
//
// Manager is not safe for concurrent use; all calls must come from the
// loop that feeds it.
type Manager struct {
	events    []NoteEvent
	slots     [MaxChannels]int // channel -> index into events, plus one
	noteTable []uint8
	clock     Clock
}

// NewManager allocates the channel records. Channels with an id above 15
// or an id already taken are skipped. Records start Finished so nothing
// is driven until the first gate command arrives.
func NewManager(channels []Channel, noteTable []uint8, clock Clock) *Manager {
	m := &Manager{
		noteTable: append([]uint8(nil), noteTable...),
		clock:     clock,
	}

	m.events = make([]NoteEvent, 0, len(channels))
	for _, ch := range channels {
		if int(ch.ID) >= MaxChannels || m.slots[ch.ID] != 0 {
			continue
		}
		m.events = append(m.events, NoteEvent{
			Channel: ch.ID,
			Route:   ch.Route,
			State:   Finished,
		})
		m.slots[ch.ID] = len(m.events)
	}
	return m
}

// SetNoteEvent stores note and writes its duty cycle to the channel's PWM.
// The note table index wraps, so every note value maps to some duty.
func (m *Manager) SetNoteEvent(channel uint8, note uint8) {
	e := m.find(channel)
	if e == nil {
		return
	}
	e.Note = note
	if e.Route.PWM != nil && len(m.noteTable) > 0 {
		e.Route.PWM.Set(m.Duty(note))
	}
}

// SetGateEvent arms a gate of the given length starting now, replacing
// any pulse in progress on the channel.
func (m *Manager) SetGateEvent(channel uint8, duration uint16) {
	e := m.find(channel)
	if e == nil {
		return
	}
	e.Start = m.clock()
	e.End = e.Start + uint32(duration)
	e.State = NotStarted
}

// Update advances every channel by at most one state against now
func (m *Manager) Update(now uint32) {
	for i := range m.events {
		e := &m.events[i]
		switch e.State {
		case NotStarted:
			if reached(now, e.Start) {
				m.startEvent(e)
				e.State = Running
			}
		case Running:
			if reached(now, e.End) {
				m.stopEvent(e)
				e.State = Finished
			}
		case Finished:
		}
	}
}

// Duty returns the duty cycle the note table assigns to note
func (m *Manager) Duty(note uint8) uint8 {
	if len(m.noteTable) == 0 {
		return 0
	}
	return m.noteTable[int(note)%len(m.noteTable)]
}

// Events returns a copy of all channel records in configuration order
func (m *Manager) Events() []NoteEvent {
	return append([]NoteEvent(nil), m.events...)
}

// Event returns a copy of the record for channel
func (m *Manager) Event(channel uint8) (NoteEvent, bool) {
	e := m.find(channel)
	if e == nil {
		return NoteEvent{}, false
	}
	return *e, true
}

// States returns the state of each record in configuration order
func (m *Manager) States() [MaxChannels]EventState {
	var s [MaxChannels]EventState
	for i := range m.events {
		s[i] = m.events[i].State
	}
	return s
}

// Channels returns the configured ids in configuration order
func (m *Manager) Channels() []uint8 {
	ids := make([]uint8, len(m.events))
	for i, e := range m.events {
		ids[i] = e.Channel
	}
	return ids
}

func (m *Manager) startEvent(e *NoteEvent) {
	if e.Route.Gate != nil {
		e.Route.Gate.High()
	}
}

func (m *Manager) stopEvent(e *NoteEvent) {
	if e.Route.Gate != nil {
		e.Route.Gate.Low()
	}
}

func (m *Manager) find(channel uint8) *NoteEvent {
	if int(channel) >= MaxChannels {
		return nil
	}
	i := m.slots[channel]
	if i == 0 {
		return nil
	}
	return &m.events[i-1]
}

// reached reports whether now is at or past t, tolerating the
// millisecond counter wrapping around.
func reached(now, t uint32) bool {
	return int32(now-t) >= 0
}
