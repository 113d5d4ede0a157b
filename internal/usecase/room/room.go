package usecase_room

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"github.com/humanbelnik/penaltydraw/internal/model"
)

//go:generate mockery --name=RoomRepository --output=./mocks/room/repository --filename=repository.go
type RoomRepository interface {
	CreateRoom(ctx context.Context, roomID model.RoomID) error
	CreateParticipants(ctx context.Context, roomID model.RoomID, participants []model.Participant) ([]uuid.UUID, error)
	GetRoom(ctx context.Context, roomID model.RoomID) (model.Room, error)
	GetParticipants(ctx context.Context, roomID model.RoomID) ([]model.Participant, error)
	UpdateRoom(ctx context.Context, roomID model.RoomID, upd model.RoomUpdate) error
	DeleteRoom(ctx context.Context, roomID model.RoomID) error
}

//go:generate mockery --name=StatusCache --output=./mocks/room/cache --filename=cache.go
type StatusCache interface {
	Get(ctx context.Context, roomID model.RoomID) (model.RoomStatus, bool, error)
	Version(ctx context.Context, roomID model.RoomID) (int64, error)
	Set(ctx context.Context, status model.RoomStatus, version int64) error
	Invalidate(ctx context.Context, roomID model.RoomID) error
}

const (
	codeLen      = 6
	codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeRetries  = 3
)

type Usecase struct {
	RoomRepository RoomRepository
	StatusCache    StatusCache

	logger   *slog.Logger
	codeFunc func() model.RoomID
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

// WithStatusCache puts a snapshot cache in front of Status.
func WithStatusCache(cache StatusCache) Option {
	return func(u *Usecase) {
		u.StatusCache = cache
	}
}

func WithCodeFunc(f func() model.RoomID) Option {
	return func(u *Usecase) {
		u.codeFunc = f
	}
}

func New(
	roomRepository RoomRepository,
	opts ...Option,
) *Usecase {
	u := &Usecase{
		RoomRepository: roomRepository,
		logger:         slog.Default(),
		codeFunc:       buildRoomCode,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Create registers a room with its roster. Index 0 becomes the host.
// Either the room and every participant exist afterwards or nothing does.
func (u *Usecase) Create(ctx context.Context, names []string) (model.RoomID, []string, error) {
	roster, err := model.NewRoster(names)
	if err != nil {
		return model.EmptyRoomID, nil, err
	}

	roomID, err := u.createRoom(ctx)
	if err != nil {
		return model.EmptyRoomID, nil, err
	}

	participants := make([]model.Participant, 0, len(roster))
	for i, name := range roster {
		participants = append(participants, model.Participant{
			RoomID: roomID,
			Name:   name,
			IsHost: i == 0,
		})
	}

	if _, err := u.RoomRepository.CreateParticipants(ctx, roomID, participants); err != nil {
		if delErr := u.RoomRepository.DeleteRoom(context.WithoutCancel(ctx), roomID); delErr != nil {
			u.logger.Error("failed to delete room after participant insert failure",
				slog.String("room_id", string(roomID)),
				slog.String("error", delErr.Error()),
			)
			return model.EmptyRoomID, nil, errors.Join(model.ErrPartialCreate, err, delErr)
		}
		return model.EmptyRoomID, nil, errors.Join(model.ErrPartialCreate, err)
	}

	u.logger.Info("room created",
		slog.String("room_id", string(roomID)),
		slog.Int("participants", len(roster)),
	)
	return roomID, roster, nil
}

// Codes can collide. Retrying...
func (u *Usecase) createRoom(ctx context.Context) (model.RoomID, error) {
	for range codeRetries {
		roomID := u.codeFunc()
		err := u.RoomRepository.CreateRoom(ctx, roomID)
		if err == nil {
			return roomID, nil
		}
		if !errors.Is(err, model.ErrCodeConflict) {
			return model.EmptyRoomID, err
		}
	}
	return model.EmptyRoomID, model.ErrRoomsUnavailable
}

// Status is the full snapshot every poller folds into its local state.
func (u *Usecase) Status(ctx context.Context, roomID model.RoomID) (model.RoomStatus, error) {
	var (
		version   int64
		cacheable bool
	)
	if u.StatusCache != nil {
		status, ok, err := u.StatusCache.Get(ctx, roomID)
		switch {
		case err != nil:
			u.logger.Warn("status cache read failed",
				slog.String("room_id", string(roomID)),
				slog.String("error", err.Error()),
			)
		case ok:
			return status, nil
		default:
			version, cacheable = u.cachedVersion(ctx, roomID)
		}
	}

	room, err := u.RoomRepository.GetRoom(ctx, roomID)
	if err != nil {
		return model.RoomStatus{}, err
	}
	participants, err := u.RoomRepository.GetParticipants(ctx, roomID)
	if err != nil {
		return model.RoomStatus{}, err
	}

	status := model.RoomStatus{
		RoomID:       room.ID,
		IsStarted:    room.IsStarted,
		MemeURLs:     room.MemeURLs,
		VideoURL:     room.VideoURL,
		Participants: make([]string, 0, len(participants)),
	}
	for _, p := range participants {
		status.Participants = append(status.Participants, p.Name)
		if room.LoserID.Valid && p.ID == room.LoserID.UUID {
			status.Loser = p.Name
		}
	}

	if cacheable {
		if err := u.StatusCache.Set(ctx, status, version); err != nil {
			u.logger.Warn("status cache write failed",
				slog.String("room_id", string(roomID)),
				slog.String("error", err.Error()),
			)
		}
	}
	return status, nil
}

// cachedVersion reads the room's cache version before the store is touched,
// so a snapshot taken from a row older than a later invalidation is dropped.
func (u *Usecase) cachedVersion(ctx context.Context, roomID model.RoomID) (int64, bool) {
	version, err := u.StatusCache.Version(ctx, roomID)
	if err != nil {
		u.logger.Warn("status cache version read failed",
			slog.String("room_id", string(roomID)),
			slog.String("error", err.Error()),
		)
		return 0, false
	}
	return version, true
}

// IsHost reports false for names that are not in the room.
func (u *Usecase) IsHost(ctx context.Context, roomID model.RoomID, name string) (bool, error) {
	participants, err := u.RoomRepository.GetParticipants(ctx, roomID)
	if err != nil {
		return false, err
	}
	return hostIn(participants, name), nil
}

// Authorize rejects callers that are not the stored host of the room.
// A room without participants is treated as missing.
func (u *Usecase) Authorize(ctx context.Context, roomID model.RoomID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.ErrNotHost
	}

	participants, err := u.RoomRepository.GetParticipants(ctx, roomID)
	if err != nil {
		return err
	}
	if len(participants) == 0 {
		return model.ErrRoomNotFound
	}
	if !hostIn(participants, name) {
		return model.ErrNotHost
	}
	return nil
}

// Reset brings the room back to WAITING and clears the outcome.
func (u *Usecase) Reset(ctx context.Context, roomID model.RoomID) error {
	room, err := u.RoomRepository.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if _, err := model.Transition(room.Phase(), model.EventReset); err != nil {
		return err
	}

	if err := u.RoomRepository.UpdateRoom(ctx, roomID, model.ResetUpdate()); err != nil {
		return err
	}
	u.invalidate(ctx, roomID)

	u.logger.Info("room reset", slog.String("room_id", string(roomID)))
	return nil
}

func (u *Usecase) invalidate(ctx context.Context, roomID model.RoomID) {
	if u.StatusCache == nil {
		return
	}
	if err := u.StatusCache.Invalidate(ctx, roomID); err != nil {
		u.logger.Warn("status cache invalidation failed",
			slog.String("room_id", string(roomID)),
			slog.String("error", err.Error()),
		)
	}
}

func hostIn(participants []model.Participant, name string) bool {
	for _, p := range participants {
		if p.Name == name {
			return p.IsHost
		}
	}
	return false
}

func buildRoomCode() model.RoomID {
	var builder strings.Builder
	builder.Grow(codeLen)

	for range codeLen {
		builder.WriteByte(codeAlphabet[rand.IntN(len(codeAlphabet))])
	}
	return model.RoomID(builder.String())
}
