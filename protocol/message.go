package protocol

// Kind is the top nibble of a message byte
type Kind uint8

const (
	KindData    Kind = 0x7 // any nibble up to and including this one is payload
	NoteCommand Kind = 0x8
	GateCommand Kind = 0x9
)

func (k Kind) String() string {
	switch {
	case k == NoteCommand:
		return "note"
	case k == GateCommand:
		return "gate"
	case k <= KindData:
		return "data"
	}
	return "unknown"
}

// Message is one byte of a frame tagged with the kind it was read as
type Message struct {
	Kind Kind
	Data byte
}

// EventManager receives decoded commands. The scheduler implements it;
// tests use a recording double.
type EventManager interface {
	SetNoteEvent(channel uint8, note uint8)
	SetGateEvent(channel uint8, duration uint16)
}

// Command describes one status-byte command kind.
// Length counts the status byte plus its data bytes.
type Command struct {
	Kind     Kind
	Length   int
	Decode   func(data []Message) uint16
	Dispatch func(m EventManager, channel uint8, value uint16)
}

// DefaultCommands is the command table understood by the firmware
var DefaultCommands = []Command{
	{
		Kind:   NoteCommand,
		Length: 2,
		Decode: func(data []Message) uint16 {
			return uint16(data[0].Data)
		},
		Dispatch: func(m EventManager, channel uint8, value uint16) {
			m.SetNoteEvent(channel, uint8(value))
		},
	},
	{
		Kind:   GateCommand,
		Length: 3,
		Decode: func(data []Message) uint16 {
			return Decode14(data[0].Data, data[1].Data)
		},
		Dispatch: func(m EventManager, channel uint8, value uint16) {
			m.SetGateEvent(channel, value)
		},
	},
}

// Decode14 joins two 7-bit data bytes, most significant first
func Decode14(hi, lo byte) uint16 {
	return uint16(hi&0x7F)<<7 | uint16(lo&0x7F)
}
