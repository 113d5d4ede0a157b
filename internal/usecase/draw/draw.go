package usecase_draw

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/humanbelnik/penaltydraw/internal/model"
)

//go:generate mockery --name=RoomRepository --output=./mocks/draw/repository --filename=repository.go
type RoomRepository interface {
	GetRoom(ctx context.Context, roomID model.RoomID) (model.Room, error)
	GetParticipants(ctx context.Context, roomID model.RoomID) ([]model.Participant, error)
	UpdateRoom(ctx context.Context, roomID model.RoomID, upd model.RoomUpdate) error
}

//go:generate mockery --name=MediaGenerator --output=./mocks/draw/media --filename=media.go
type MediaGenerator interface {
	Generate(ctx context.Context, req model.MediaRequest) (string, error)
}

//go:generate mockery --name=DrawLock --output=./mocks/draw/lock --filename=lock.go
type DrawLock interface {
	Acquire(ctx context.Context, roomID model.RoomID) (bool, error)
	Release(ctx context.Context, roomID model.RoomID) error
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context, roomID model.RoomID) error
}

const DefaultTimeout = 5 * time.Minute

type Usecase struct {
	RoomRepository RoomRepository
	Media          MediaGenerator
	Lock           DrawLock
	Cache          CacheInvalidator

	timeout   time.Duration
	baseVideo string
	intn      func(n int) int
	logger    *slog.Logger
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

// WithTimeout bounds the media call of a video draw.
func WithTimeout(d time.Duration) Option {
	return func(u *Usecase) {
		u.timeout = d
	}
}

func WithBaseVideo(selector string) Option {
	return func(u *Usecase) {
		u.baseVideo = selector
	}
}

func WithCache(cache CacheInvalidator) Option {
	return func(u *Usecase) {
		u.Cache = cache
	}
}

// WithIntn replaces the random source. f(n) must return a value in [0, n).
func WithIntn(f func(n int) int) Option {
	return func(u *Usecase) {
		u.intn = f
	}
}

func New(
	roomRepository RoomRepository,
	media MediaGenerator,
	lock DrawLock,
	opts ...Option,
) *Usecase {
	u := &Usecase{
		RoomRepository: roomRepository,
		Media:          media,
		Lock:           lock,
		timeout:        DefaultTimeout,
		baseVideo:      model.BaseVideoDefault,
		intn:           rand.IntN,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Start draws the loser of a waiting room and persists the outcome.
// Nothing is written unless media was produced.
func (u *Usecase) Start(ctx context.Context, roomID model.RoomID, kind model.DrawKind) (model.DrawResult, error) {
	if !kind.Valid() {
		return model.DrawResult{}, fmt.Errorf("%w: %q", model.ErrInvalidDrawKind, kind)
	}

	room, err := u.RoomRepository.GetRoom(ctx, roomID)
	if err != nil {
		return model.DrawResult{}, err
	}
	if _, err := model.Transition(room.Phase(), model.EventStartDraw); err != nil {
		return model.DrawResult{}, errors.Join(model.ErrAlreadyStarted, err)
	}

	acquired, err := u.Lock.Acquire(ctx, roomID)
	if err != nil {
		return model.DrawResult{}, fmt.Errorf("%w: draw lock: %w", model.ErrStoreUnavailable, err)
	}
	if !acquired {
		return model.DrawResult{}, model.ErrDrawInProgress
	}
	defer func() {
		if err := u.Lock.Release(context.WithoutCancel(ctx), roomID); err != nil {
			u.logger.Warn("failed to release draw lock",
				slog.String("room_id", string(roomID)),
				slog.String("error", err.Error()),
			)
		}
	}()

	participants, err := u.RoomRepository.GetParticipants(ctx, roomID)
	if err != nil {
		return model.DrawResult{}, err
	}
	if len(participants) == 0 {
		return model.DrawResult{}, model.ErrNoParticipants
	}

	loser := participants[u.intn(len(participants))]

	media, err := u.media(ctx, roomID, kind, loser, participants)
	if err != nil {
		u.logger.Error("media generation failed",
			slog.String("room_id", string(roomID)),
			slog.String("error", err.Error()),
		)
		return model.DrawResult{}, err
	}

	if err := u.RoomRepository.UpdateRoom(ctx, roomID, model.StartedUpdate(loser.ID, media)); err != nil {
		return model.DrawResult{}, err
	}
	if u.Cache != nil {
		if err := u.Cache.Invalidate(ctx, roomID); err != nil {
			u.logger.Warn("status cache invalidation failed",
				slog.String("room_id", string(roomID)),
				slog.String("error", err.Error()),
			)
		}
	}

	u.logger.Info("draw finished",
		slog.String("room_id", string(roomID)),
		slog.String("kind", string(kind)),
		slog.String("loser", loser.Name),
	)
	return model.DrawResult{
		Loser:    loser.Name,
		MemeURLs: media.MemeURLs,
		VideoURL: media.VideoURL,
	}, nil
}

func (u *Usecase) media(
	ctx context.Context,
	roomID model.RoomID,
	kind model.DrawKind,
	loser model.Participant,
	participants []model.Participant,
) (model.Media, error) {
	if kind == model.DrawImage {
		return model.Media{MemeURLs: model.PlaceholderMemeURLs()}, nil
	}

	others := make([]string, 0, len(participants)-1)
	for _, p := range participants {
		if p.ID != loser.ID {
			others = append(others, p.Name)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	videoURL, err := u.Media.Generate(ctx, model.MediaRequest{
		RoomID:    roomID,
		Winner:    loser.Name,
		Others:    others,
		BaseVideo: u.baseVideo,
	})
	if err != nil {
		if errors.Is(err, model.ErrMediaTimeout) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return model.Media{}, model.ErrMediaTimeout
		}
		if errors.Is(err, model.ErrMediaGenerationFailed) {
			return model.Media{}, err
		}
		return model.Media{}, fmt.Errorf("%w: %w", model.ErrMediaGenerationFailed, err)
	}
	return model.Media{VideoURL: videoURL}, nil
}
