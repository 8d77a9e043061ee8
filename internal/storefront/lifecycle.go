package storefront

import (
	"errors"
	"fmt"
)

var (
	ErrRequestInFlight   = errors.New("a personalization request is already in flight")
	ErrInvalidTransition = errors.New("invalid request lifecycle transition")
)

// RequestState is the lifecycle of the single outstanding personalization
// request a session may have.
type RequestState int

const (
	Idle RequestState = iota
	InFlight
	Succeeded
	Failed
)

func (s RequestState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case InFlight:
		return "InFlight"
	case Succeeded:
		return "Succeeded"
	case Failed:
		return "Failed"
	default:
		return fmt.Sprintf("RequestState(%d)", int(s))
	}
}

func (s RequestState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Event int

const (
	EventBegin Event = iota
	EventSucceed
	EventFail
)

func (e Event) String() string {
	switch e {
	case EventBegin:
		return "Begin"
	case EventSucceed:
		return "Succeed"
	case EventFail:
		return "Fail"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// Next is the transition table. Begin is legal from every state except
// InFlight; Succeed and Fail only from InFlight.
func Next(state RequestState, event Event) (RequestState, error) {
	switch event {
	case EventBegin:
		switch state {
		case Idle, Succeeded, Failed:
			return InFlight, nil
		case InFlight:
			return state, ErrRequestInFlight
		}
	case EventSucceed:
		if state == InFlight {
			return Succeeded, nil
		}
	case EventFail:
		if state == InFlight {
			return Failed, nil
		}
	}
	return state, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, event, state)
}

// ControlEnabled reports whether the personalize control accepts input.
func (s RequestState) ControlEnabled() bool {
	return s == Idle || s == Succeeded || s == Failed
}

func (s RequestState) Loading() bool {
	return s == InFlight
}

// Lifecycle is a mutable holder around Next. It is not safe for concurrent
// use; Session guards it with its mutex.
type Lifecycle struct {
	state RequestState
	prev  RequestState
}

func (l *Lifecycle) State() RequestState { return l.state }

func (l *Lifecycle) Begin() error {
	prev := l.state
	if err := l.apply(EventBegin); err != nil {
		return err
	}
	l.prev = prev
	return nil
}

func (l *Lifecycle) Succeed() error { return l.apply(EventSucceed) }
func (l *Lifecycle) Fail() error    { return l.apply(EventFail) }

// Abort releases a Begin whose request was never sent and restores the
// state held before it.
func (l *Lifecycle) Abort() error {
	if l.state != InFlight {
		return fmt.Errorf("%w: abort from %s", ErrInvalidTransition, l.state)
	}
	l.state = l.prev
	return nil
}

func (l *Lifecycle) apply(event Event) error {
	next, err := Next(l.state, event)
	if err != nil {
		return err
	}
	l.state = next
	return nil
}
