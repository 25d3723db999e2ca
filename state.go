package musik

import (
	"errors"
)

// ErrInvalidState is returned if pipe method cannot be executed at this moment.
var ErrInvalidState = errors.New("invalid state")

// State identifies one of the possible states pipe can be in.
type State int

// Pipe states. Transitions only go forward: a pipe runs once.
const (
	// Ready means that pipe is bound and can be started.
	Ready State = iota
	// Running means that pipe is executing at the moment.
	Running
	// Terminated means that pipe is done, successfully or not.
	Terminated
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}

// State returns current state of the pipe.
func (p *Pipe) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// transition moves pipe from one state to the next one.
func (p *Pipe) transition(from, to State) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != from {
		return ErrInvalidState
	}
	p.log.Debug(p.String() + " is " + to.String())
	p.state = to
	return nil
}
