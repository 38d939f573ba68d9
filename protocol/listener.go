package protocol

// MaxChannels is the number of addresses a status byte can name
const MaxChannels = 16

// channelBuffer assembles one frame for one channel.
// writeIndex 0 means no frame is open.
type channelBuffer struct {
	channel    uint8
	messages   []Message
	writeIndex int
}

// Listener splits a byte stream into per-channel frames and hands each
// complete frame to an EventManager. Malformed input is dropped without
// a trace; the stream resynchronizes on the next status byte.
//
// A Listener is not safe for concurrent use.
type Listener struct {
	buffers  []channelBuffer
	slots    [MaxChannels]int // channel -> index into buffers, plus one
	commands [16]*Command     // indexed by status nibble
	current  uint8            // channel named by the last status byte
	manager  EventManager
}

// NewListener creates a listener for the given channel ids using DefaultCommands
func NewListener(channels []uint8, manager EventManager) *Listener {
	return NewListenerWithCommands(channels, manager, DefaultCommands)
}

// NewListenerWithCommands creates a listener with a custom command table.
// Entries whose kind is not a status nibble (0x8-0xF) or whose length is
// below one are ignored. Channel ids above 15 can never be addressed and
// are skipped; for duplicate ids the first one wins.
func NewListenerWithCommands(channels []uint8, manager EventManager, commands []Command) *Listener {
	l := &Listener{manager: manager}

	longest := 1
	for i := range commands {
		c := &commands[i]
		if c.Kind <= KindData || c.Kind > 0xF || c.Length < 1 {
			continue
		}
		l.commands[c.Kind] = c
		if c.Length > longest {
			longest = c.Length
		}
	}

	// One spare slot so the wrapping write index cannot reach zero
	// before the longest frame has been checked.
	size := longest + 1

	ids := make([]uint8, 0, len(channels))
	for _, ch := range channels {
		if int(ch) >= MaxChannels || l.slots[ch] != 0 {
			continue
		}
		ids = append(ids, ch)
		l.slots[ch] = len(ids)
	}

	arena := make([]Message, len(ids)*size)
	l.buffers = make([]channelBuffer, len(ids))
	for i, ch := range ids {
		l.buffers[i] = channelBuffer{
			channel:  ch,
			messages: arena[i*size : (i+1)*size : (i+1)*size],
		}
	}
	return l
}

// Feed parses every byte in p in order
func (l *Listener) Feed(p []byte) {
	for _, b := range p {
		l.ParseByte(b)
	}
}

// Write implements io.Writer. It always consumes all of p.
func (l *Listener) Write(p []byte) (int, error) {
	l.Feed(p)
	return len(p), nil
}

// ParseByte advances the parser by one byte
func (l *Listener) ParseByte(b byte) {
	kind := Kind(b >> 4)
	cmd := l.commands[kind]
	if cmd != nil {
		l.current = b & 0x0F
	}

	buf := l.buffer(l.current)
	if buf == nil {
		return
	}

	switch {
	case cmd != nil:
		buf.messages[0] = Message{Kind: kind, Data: b}
		buf.writeIndex = 1
	case kind <= KindData && buf.writeIndex > 0:
		buf.messages[buf.writeIndex] = Message{Kind: KindData, Data: b}
		buf.writeIndex = (buf.writeIndex + 1) % len(buf.messages)
	default:
		return
	}

	if l.send(buf) {
		buf.writeIndex = 0
	}
}

// send dispatches the frame in buf if it is complete
func (l *Listener) send(buf *channelBuffer) bool {
	if buf.writeIndex == 0 {
		return false
	}
	cmd := l.commands[buf.messages[0].Kind]
	if cmd == nil || buf.writeIndex != cmd.Length {
		return false
	}
	value := cmd.Decode(buf.messages[1:buf.writeIndex])
	cmd.Dispatch(l.manager, buf.channel, value)
	return true
}

// Pending returns how many bytes of an unfinished frame are held for channel
func (l *Listener) Pending(channel uint8) int {
	buf := l.buffer(channel)
	if buf == nil {
		return 0
	}
	return buf.writeIndex
}

func (l *Listener) buffer(channel uint8) *channelBuffer {
	if int(channel) >= MaxChannels {
		return nil
	}
	i := l.slots[channel]
	if i == 0 {
		return nil
	}
	return &l.buffers[i-1]
}
