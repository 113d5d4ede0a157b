package client_state

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/humanbelnik/penaltydraw/internal/model"
)

func TestReducers(t *testing.T) {
	revealed := State{
		RoomID:        "K3X9QZ",
		Participants:  []string{"Alice", "Bob"},
		IsStarted:     true,
		Loser:         "Bob",
		MemeURLs:      []string{"/1.svg"},
		IsRevealShown: true,
		IsHost:        true,
	}

	cases := []struct {
		name   string
		start  State
		action Action
		want   State
	}{
		{
			name:   "set room clears the outcome",
			start:  revealed,
			action: Action{Type: ActionSetRoom, RoomID: "K3X9QZ", Participants: []string{"Alice", "Bob"}, IsHost: true},
			want:   State{RoomID: "K3X9QZ", Participants: []string{"Alice", "Bob"}, IsHost: true},
		},
		{
			name:   "set host only flips the host flag",
			start:  State{RoomID: "K3X9QZ", Participants: []string{"Alice", "Bob"}, IsStarted: true, Loser: "Bob"},
			action: Action{Type: ActionSetHost, IsHost: true, Loser: "ignored"},
			want:   State{RoomID: "K3X9QZ", Participants: []string{"Alice", "Bob"}, IsStarted: true, Loser: "Bob", IsHost: true},
		},
		{
			name:   "start draw enters revealing",
			start:  State{RoomID: "K3X9QZ"},
			action: Action{Type: ActionStartDraw, Loser: "Bob", VideoURL: "https://cdn.example/v.mp4"},
			want:   State{RoomID: "K3X9QZ", IsStarted: true, Loser: "Bob", VideoURL: "https://cdn.example/v.mp4"},
		},
		{
			name:   "show reveal from revealing",
			start:  State{IsStarted: true, Loser: "Bob"},
			action: Action{Type: ActionShowReveal},
			want:   State{IsStarted: true, Loser: "Bob", IsRevealShown: true},
		},
		{
			name:   "show reveal is ignored while waiting",
			start:  State{RoomID: "K3X9QZ"},
			action: Action{Type: ActionShowReveal},
			want:   State{RoomID: "K3X9QZ"},
		},
		{
			name:   "reset keeps roster and host flag",
			start:  revealed,
			action: Action{Type: ActionResetRoom},
			want:   State{RoomID: "K3X9QZ", Participants: []string{"Alice", "Bob"}, IsHost: true},
		},
		{
			name:   "participants are replaced without touching host flag",
			start:  State{Participants: []string{"Alice"}, IsHost: true},
			action: Action{Type: ActionSetParticipants, Participants: []string{"Alice", "Bob"}},
			want:   State{Participants: []string{"Alice", "Bob"}, IsHost: true},
		},
		{
			name:   "not found is terminal",
			start:  State{RoomID: "K3X9QZ", NotFound: true},
			action: Action{Type: ActionStartDraw, Loser: "Bob"},
			want:   State{RoomID: "K3X9QZ", NotFound: true},
		},
		{
			name:   "unknown actions are ignored",
			start:  State{RoomID: "K3X9QZ"},
			action: Action{Type: "LEAVE"},
			want:   State{RoomID: "K3X9QZ"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &Store{state: tc.start}

			got := store.Dispatch(tc.action)

			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("state mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(got, store.State()); diff != "" {
				t.Errorf("stored state differs from returned one (-returned +stored):\n%s", diff)
			}
		})
	}
}

func TestPhase(t *testing.T) {
	cases := []struct {
		state State
		want  model.Phase
	}{
		{State{}, model.PhaseWaiting},
		{State{IsStarted: true}, model.PhaseRevealing},
		{State{IsStarted: true, IsRevealShown: true}, model.PhaseRevealed},
	}
	for _, tc := range cases {
		if got := tc.state.Phase(); got != tc.want {
			t.Errorf("Phase(%+v) = %s, want %s", tc.state, got, tc.want)
		}
	}
}

func TestStateIsACopy(t *testing.T) {
	store := NewStore()
	store.Dispatch(Action{Type: ActionSetRoom, RoomID: "K3X9QZ", Participants: []string{"Alice", "Bob"}})

	snapshot := store.State()
	snapshot.Participants[0] = "Mallory"

	if diff := cmp.Diff([]string{"Alice", "Bob"}, store.State().Participants); diff != "" {
		t.Errorf("store leaked its slice (-want +got):\n%s", diff)
	}
}

func TestOnChange(t *testing.T) {
	store := NewStore()

	var phases []model.Phase
	store.OnChange(func(prev, next State) {
		if prev.Phase() != next.Phase() {
			phases = append(phases, next.Phase())
		}
	})

	store.Dispatch(Action{Type: ActionSetRoom, RoomID: "K3X9QZ", Participants: []string{"Alice", "Bob"}})
	store.Dispatch(Action{Type: ActionStartDraw, Loser: "Bob", MemeURLs: model.PlaceholderMemeURLs()})
	store.Dispatch(Action{Type: ActionShowReveal})
	store.Dispatch(Action{Type: ActionResetRoom})

	want := []model.Phase{model.PhaseRevealing, model.PhaseRevealed, model.PhaseWaiting}
	if diff := cmp.Diff(want, phases); diff != "" {
		t.Errorf("phase sequence mismatch (-want +got):\n%s", diff)
	}
}
