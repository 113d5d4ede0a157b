package model

import (
	"time"

	"github.com/google/uuid"
)

type RoomID string

const EmptyRoomID RoomID = ""

type DrawKind string

const (
	DrawImage DrawKind = "image"
	DrawVideo DrawKind = "video"
)

func (k DrawKind) Valid() bool {
	return k == DrawImage || k == DrawVideo
}

type MediaKind string

const (
	MediaNone   MediaKind = "none"
	MediaImages MediaKind = "image-set"
	MediaVideo  MediaKind = "video"
)

type Participant struct {
	ID        uuid.UUID
	RoomID    RoomID
	Name      string
	IsHost    bool
	CreatedAt time.Time
}

// Room is the persisted row. Empty VideoURL and nil MemeURLs stand for NULL.
type Room struct {
	ID        RoomID
	IsStarted bool
	LoserID   uuid.NullUUID
	MemeURLs  []string
	VideoURL  string
	CreatedAt time.Time
}

func (r Room) MediaKind() MediaKind {
	switch {
	case r.VideoURL != "":
		return MediaVideo
	case r.MemeURLs != nil:
		return MediaImages
	default:
		return MediaNone
	}
}

func (r Room) Phase() Phase {
	if r.IsStarted {
		return PhaseRevealing
	}
	return PhaseWaiting
}

// RoomUpdate carries every outcome column; both draw and reset rewrite all of them
// so a row can never hold a loser without media or media without a loser.
type RoomUpdate struct {
	IsStarted bool
	LoserID   uuid.NullUUID
	MemeURLs  []string
	VideoURL  string

	// OnlyIfWaiting makes the write conditional on is_started = false.
	OnlyIfWaiting bool
}

func StartedUpdate(loserID uuid.UUID, media Media) RoomUpdate {
	return RoomUpdate{
		IsStarted:     true,
		LoserID:       uuid.NullUUID{UUID: loserID, Valid: true},
		MemeURLs:      media.MemeURLs,
		VideoURL:      media.VideoURL,
		OnlyIfWaiting: true,
	}
}

func ResetUpdate() RoomUpdate {
	return RoomUpdate{}
}

// Media holds exactly one populated field after a successful draw.
type Media struct {
	MemeURLs []string
	VideoURL string
}

type DrawResult struct {
	Loser    string
	MemeURLs []string
	VideoURL string
}

// RoomStatus is what every poller reads back.
type RoomStatus struct {
	RoomID       RoomID
	IsStarted    bool
	Loser        string
	MemeURLs     []string
	VideoURL     string
	Participants []string
}

func (s RoomStatus) Phase() Phase {
	if s.IsStarted {
		return PhaseRevealing
	}
	return PhaseWaiting
}
