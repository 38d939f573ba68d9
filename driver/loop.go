package driver

import (
	"context"
	"sync"
	"time"

	"notegate/debug"
	"notegate/protocol"
	"notegate/scheduler"
)

// DefaultTick is how often gate states are sampled
const DefaultTick = time.Millisecond

// Stats counts traffic through the loop
type Stats struct {
	Bytes uint64
	Notes uint64
	Gates uint64
}

// Snapshot is a consistent copy of loop state for display
type Snapshot struct {
	Now    uint32
	Events []scheduler.NoteEvent
	Stats  Stats
}

// Loop is the single goroutine that owns the parser and the scheduler.
// Transports hand byte chunks to it over Input; nothing else touches
// the core.
type Loop struct {
	listener *protocol.Listener
	manager  *scheduler.Manager
	clock    scheduler.Clock
	tick     time.Duration

	input   chan []byte
	updates chan struct{}

	stats Stats
	dirty bool

	mu       sync.RWMutex
	snapshot Snapshot
}

// New creates a loop around manager. A tick of zero uses DefaultTick.
func New(manager *scheduler.Manager, clock scheduler.Clock, tick time.Duration) *Loop {
	if tick <= 0 {
		tick = DefaultTick
	}
	l := &Loop{
		manager: manager,
		clock:   clock,
		tick:    tick,
		input:   make(chan []byte, 64),
		updates: make(chan struct{}, 1),
	}
	l.listener = protocol.NewListener(manager.Channels(), &countingManager{loop: l, next: manager})
	l.publish(clock())
	return l
}

// Input is where transports deliver raw bytes
func (l *Loop) Input() chan<- []byte {
	return l.input
}

// Inject queues p for parsing, dropping it if the loop is backed up
func (l *Loop) Inject(p []byte) bool {
	chunk := append([]byte(nil), p...)
	select {
	case l.input <- chunk:
		return true
	default:
		debug.Log("loop", "input full, dropped %d bytes", len(p))
		return false
	}
}

// Updates signals whenever the published snapshot changes
func (l *Loop) Updates() <-chan struct{} {
	return l.updates
}

// Snapshot returns the most recently published state
func (l *Loop) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s := l.snapshot
	s.Events = append([]scheduler.NoteEvent(nil), s.Events...)
	return s
}

// Run processes input and ticks until ctx is done (blocking - run in goroutine)
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case chunk := <-l.input:
			l.feed(chunk)
		case <-ticker.C:
			l.step(l.clock())
		}
	}
}

func (l *Loop) feed(chunk []byte) {
	l.stats.Bytes += uint64(len(chunk))
	l.listener.Feed(chunk)
	l.dirty = true
}

// step samples every channel once and publishes if anything moved
func (l *Loop) step(now uint32) {
	before := l.manager.States()
	l.manager.Update(now)
	if !l.dirty && before == l.manager.States() {
		return
	}
	l.dirty = false
	l.publish(now)
}

func (l *Loop) publish(now uint32) {
	l.mu.Lock()
	l.snapshot = Snapshot{
		Now:    now,
		Events: l.manager.Events(),
		Stats:  l.stats,
	}
	l.mu.Unlock()

	select {
	case l.updates <- struct{}{}:
	default:
	}
}

// countingManager counts dispatched commands on their way to the scheduler
type countingManager struct {
	loop *Loop
	next protocol.EventManager
}

func (c *countingManager) SetNoteEvent(channel uint8, note uint8) {
	c.loop.stats.Notes++
	debug.Log("note", "channel=%d note=%d", channel, note)
	c.next.SetNoteEvent(channel, note)
}

func (c *countingManager) SetGateEvent(channel uint8, duration uint16) {
	c.loop.stats.Gates++
	debug.Log("gate", "channel=%d duration=%dms", channel, duration)
	c.next.SetGateEvent(channel, duration)
}
