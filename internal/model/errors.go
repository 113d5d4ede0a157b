package model

import "errors"

var (
	ErrRoomNotFound          = errors.New("room not found")
	ErrNoParticipants        = errors.New("no participants")
	ErrMediaTimeout          = errors.New("media generation timed out")
	ErrMediaGenerationFailed = errors.New("media generation failed")
	ErrPartialCreate         = errors.New("participants were not registered")
	ErrStoreUnavailable      = errors.New("store unavailable")
	ErrInvalidRoster         = errors.New("invalid roster")
	ErrInvalidDrawKind       = errors.New("invalid draw kind")
	ErrNotHost               = errors.New("only the host may do this")
	ErrAlreadyStarted        = errors.New("draw already started")
	ErrDrawInProgress        = errors.New("draw already in progress")
	ErrCodeConflict          = errors.New("code conflict")
	ErrRoomsUnavailable      = errors.New("no available room codes")
	ErrInvalidTransition     = errors.New("invalid transition")
)
