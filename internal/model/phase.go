package model

import "fmt"

type Phase string

const (
	PhaseWaiting   Phase = "WAITING"
	PhaseRevealing Phase = "REVEALING"
	// PhaseRevealed only ever exists on a client.
	PhaseRevealed Phase = "REVEALED"
)

type Event string

const (
	EventStartDraw     Event = "start_draw"
	EventMediaConsumed Event = "media_consumed"
	EventReset         Event = "reset"
)

var transitions = map[Phase]map[Event]Phase{
	PhaseWaiting: {
		EventStartDraw: PhaseRevealing,
		EventReset:     PhaseWaiting,
	},
	PhaseRevealing: {
		EventMediaConsumed: PhaseRevealed,
		EventReset:         PhaseWaiting,
	},
	PhaseRevealed: {
		EventReset: PhaseWaiting,
	},
}

func Transition(from Phase, ev Event) (Phase, error) {
	next, ok := transitions[from][ev]
	if !ok {
		return from, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, from)
	}
	return next, nil
}
