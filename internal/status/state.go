// Package status tracks the lifecycle of one chat thread during a harvest.
package status

import (
	"fmt"
	"slices"
	"sync"

	"github.com/matheus3301/waharvest/internal/bus"
)

// State is the phase a chat thread is in.
type State string

const (
	Closed     State = "CLOSED"
	Opening    State = "OPENING"
	Loaded     State = "LOADED"
	Extracting State = "EXTRACTING"
	Done       State = "DONE"
	Failed     State = "FAILED"
)

// validTransitions defines allowed state transitions. Done and Failed are terminal.
var validTransitions = map[State][]State{
	Closed:     {Opening},
	Opening:    {Loaded, Failed},
	Loaded:     {Extracting},
	Extracting: {Done},
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == Done || s == Failed
}

// Machine tracks and enforces the state of one chat thread.
type Machine struct {
	mu      sync.RWMutex
	chat    string
	index   int
	current State
	bus     *bus.Bus
}

// NewMachine creates a machine for the chat at row index, starting Closed.
func NewMachine(chat string, index int, b *bus.Bus) *Machine {
	return &Machine{
		chat:    chat,
		index:   index,
		current: Closed,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition moves to a new state and publishes the change.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.Terminal() {
		return fmt.Errorf("chat %q: already finished as %s", m.chat, m.current)
	}
	if !slices.Contains(validTransitions[m.current], to) {
		return fmt.Errorf("chat %q: invalid transition from %s to %s", m.chat, m.current, to)
	}
	from := m.current
	m.current = to
	m.bus.Emit(bus.KindChatState, Change{
		Chat:  m.chat,
		Index: m.index,
		From:  from,
		To:    to,
	})
	return nil
}

// Change is the payload of a chat state event.
type Change struct {
	Chat  string
	Index int
	From  State
	To    State
}
