package protocol

// MaxGateLength is the longest gate a single frame can carry, in milliseconds
const MaxGateLength = 1<<14 - 1

// Status builds a status byte for the given kind and channel
func Status(kind Kind, channel uint8) byte {
	return byte(kind)<<4 | channel&0x0F
}

// EncodeNote returns a note frame. Only the low 7 bits of note are sent
// so the value can never be mistaken for a status byte.
func EncodeNote(channel, note uint8) []byte {
	return []byte{Status(NoteCommand, channel), note & 0x7F}
}

// EncodeGate returns a gate frame; durations above MaxGateLength are clamped
func EncodeGate(channel uint8, millis uint16) []byte {
	if millis > MaxGateLength {
		millis = MaxGateLength
	}
	return []byte{
		Status(GateCommand, channel),
		byte(millis>>7) & 0x7F,
		byte(millis) & 0x7F,
	}
}
