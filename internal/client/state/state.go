package client_state

import (
	"slices"
	"sync"

	"github.com/humanbelnik/penaltydraw/internal/model"
)

// State is what one client believes about its room.
type State struct {
	RoomID       model.RoomID
	Participants []string
	IsStarted    bool
	Loser        string
	MemeURLs     []string
	VideoURL     string

	// IsRevealShown is local only and never persisted.
	IsRevealShown bool
	IsHost        bool
	NotFound      bool
}

func (s State) Phase() model.Phase {
	switch {
	case s.IsStarted && s.IsRevealShown:
		return model.PhaseRevealed
	case s.IsStarted:
		return model.PhaseRevealing
	default:
		return model.PhaseWaiting
	}
}

func (s State) clone() State {
	s.Participants = slices.Clone(s.Participants)
	s.MemeURLs = slices.Clone(s.MemeURLs)
	return s
}

type ActionType string

const (
	ActionSetRoom         ActionType = "SET_ROOM"
	ActionSetHost         ActionType = "SET_HOST"
	ActionStartDraw       ActionType = "START_DRAW"
	ActionUpdateStatus    ActionType = "UPDATE_STATUS"
	ActionShowReveal      ActionType = "SHOW_REVEAL"
	ActionResetRoom       ActionType = "RESET_ROOM"
	ActionSetParticipants ActionType = "SET_PARTICIPANTS"
	ActionNotFound        ActionType = "NOT_FOUND"
)

// Action carries the payload fields its type needs; the rest are ignored.
type Action struct {
	Type         ActionType
	RoomID       model.RoomID
	Participants []string
	IsHost       bool
	IsStarted    bool
	Loser        string
	MemeURLs     []string
	VideoURL     string
}

type reducer func(State, Action) State

var reducers = map[ActionType]reducer{
	ActionSetRoom: func(s State, a Action) State {
		return State{
			RoomID:       a.RoomID,
			Participants: a.Participants,
			IsHost:       a.IsHost,
		}
	},
	ActionSetHost: func(s State, a Action) State {
		s.IsHost = a.IsHost
		return s
	},
	ActionStartDraw: func(s State, a Action) State {
		s.IsStarted = true
		s.Loser = a.Loser
		s.MemeURLs = a.MemeURLs
		s.VideoURL = a.VideoURL
		s.IsRevealShown = false
		return s
	},
	ActionUpdateStatus: func(s State, a Action) State {
		s.IsStarted = a.IsStarted
		s.Loser = a.Loser
		s.MemeURLs = a.MemeURLs
		s.VideoURL = a.VideoURL
		return s
	},
	ActionShowReveal: func(s State, a Action) State {
		if _, err := model.Transition(s.Phase(), model.EventMediaConsumed); err != nil {
			return s
		}
		s.IsRevealShown = true
		return s
	},
	ActionResetRoom: func(s State, a Action) State {
		s.IsStarted = false
		s.Loser = ""
		s.MemeURLs = nil
		s.VideoURL = ""
		s.IsRevealShown = false
		return s
	},
	ActionSetParticipants: func(s State, a Action) State {
		s.Participants = a.Participants
		return s
	},
	ActionNotFound: func(s State, a Action) State {
		s.NotFound = true
		return s
	},
}

// Store serializes every mutation of one client's State.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners []func(prev, next State)
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Dispatch applies a and returns the new state. Unknown actions are no-ops,
// and once the room is gone only SET_ROOM is accepted.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	prev := s.state
	reduce, ok := reducers[a.Type]
	if !ok || (prev.NotFound && a.Type != ActionSetRoom) {
		s.mu.Unlock()
		return prev.clone()
	}

	a.Participants = slices.Clone(a.Participants)
	a.MemeURLs = slices.Clone(a.MemeURLs)
	next := reduce(prev, a)
	s.state = next
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(prev.clone(), next.clone())
	}
	return next.clone()
}

// OnChange registers fn to be called after every applied action.
func (s *Store) OnChange(fn func(prev, next State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
