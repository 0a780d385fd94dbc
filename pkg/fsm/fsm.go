package fsm

import "github.com/cuemby/rtef/pkg/frame"

// Action runs as part of a transition or as a state's entry/exit hook.
type Action func(f *FSM)

// Handler is a state's fallback event processor, invoked with the event
// that triggered it — whether or not a transition occurred.
type Handler func(f *FSM, ev frame.Frame)

// Transition fires when the current state's Handle sees a matching signal.
type Transition struct {
	Signal uint32
	Next   *State
	Action Action
}

// State is one node of the transition table.
type State struct {
	Name        string
	Handler     Handler
	OnEntry     Action
	OnExit      Action
	Transitions []Transition
}

// T builds a Transition, mirroring the original's TRANSITION() table macro.
func T(signal uint32, next *State, action Action) Transition {
	return Transition{Signal: signal, Next: next, Action: action}
}

// FSM is a table-driven state machine generic over an owner supplied at
// construction; actions and handlers reach owner state through Owner.
type FSM struct {
	Current *State
	Owner   any
}

// New creates an uninitialized FSM; call Init before Handle.
func New(owner any) *FSM {
	return &FSM{Owner: owner}
}

// Init sets the current state and runs its entry action, if any.
func (m *FSM) Init(initial *State) {
	m.Current = initial
	if m.Current != nil && m.Current.OnEntry != nil {
		m.Current.OnEntry(m)
	}
}

// Handle dispatches one event: the first matching transition wins; on
// match, exit(old) -> action(trans) -> entry(new), then the (possibly new)
// current state's handler always runs with the event; on no match, only
// the current handler runs.
func (m *FSM) Handle(ev frame.Frame) {
	if m.Current == nil {
		return
	}

	for _, tr := range m.Current.Transitions {
		if tr.Signal != ev.Signal {
			continue
		}

		old := m.Current
		if old.OnExit != nil {
			old.OnExit(m)
		}
		if tr.Action != nil {
			tr.Action(m)
		}
		m.Current = tr.Next
		if m.Current != nil && m.Current.OnEntry != nil {
			m.Current.OnEntry(m)
		}
		break
	}

	if m.Current != nil && m.Current.Handler != nil {
		m.Current.Handler(m, ev)
	}
}
