package client_reconciler

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	client_state "github.com/humanbelnik/penaltydraw/internal/client/state"
	"github.com/humanbelnik/penaltydraw/internal/model"
)

const DefaultInterval = 2 * time.Second

type API interface {
	Status(ctx context.Context, roomID model.RoomID) (model.RoomStatus, error)
	CheckIsHost(ctx context.Context, roomID model.RoomID, name string) (bool, error)
	StartDraw(ctx context.Context, roomID model.RoomID, kind model.DrawKind) (model.DrawResult, error)
	Reset(ctx context.Context, roomID model.RoomID) error
}

// Reconciler folds the server's view of one room into a client Store.
// Every tick is a full refresh, so a missed or failed tick heals on the next.
type Reconciler struct {
	api      API
	store    *client_state.Store
	roomID   model.RoomID
	hostName string
	interval time.Duration
	logger   *slog.Logger

	// folds and local actions never interleave
	mu sync.Mutex
}

type Option func(*Reconciler)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

func WithInterval(d time.Duration) Option {
	return func(r *Reconciler) {
		r.interval = d
	}
}

// WithHostName makes Join ask the server whether name is the host.
func WithHostName(name string) Option {
	return func(r *Reconciler) {
		r.hostName = name
	}
}

func New(
	api API,
	store *client_state.Store,
	roomID model.RoomID,
	opts ...Option,
) *Reconciler {
	r := &Reconciler{
		api:      api,
		store:    store,
		roomID:   roomID,
		interval: DefaultInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Join performs the first fetch. A room without participants counts as missing.
func (r *Reconciler) Join(ctx context.Context) error {
	status, err := r.api.Status(ctx, r.roomID)
	if err == nil && len(status.Participants) == 0 {
		err = model.ErrRoomNotFound
	}
	if err != nil {
		r.logger.Info("room not available", slog.String("room_id", string(r.roomID)), slog.String("error", err.Error()))
		r.store.Dispatch(client_state.Action{Type: client_state.ActionNotFound})
		return errors.Join(model.ErrRoomNotFound, err)
	}

	isHost := false
	if r.hostName != "" {
		isHost, err = r.api.CheckIsHost(ctx, r.roomID, r.hostName)
		if err != nil {
			r.logger.Warn("host check failed", slog.String("room_id", string(r.roomID)), slog.String("error", err.Error()))
			isHost = false
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.store.Dispatch(client_state.Action{
		Type:         client_state.ActionSetRoom,
		RoomID:       r.roomID,
		Participants: status.Participants,
	})
	if r.hostName != "" {
		r.store.Dispatch(client_state.Action{Type: client_state.ActionSetHost, IsHost: isHost})
	}
	if status.IsStarted {
		r.store.Dispatch(client_state.Action{
			Type:     client_state.ActionStartDraw,
			Loser:    status.Loser,
			MemeURLs: status.MemeURLs,
			VideoURL: status.VideoURL,
		})
	}
	return nil
}

// Tick runs one poll. On failure other than a missing room the state is left as is.
func (r *Reconciler) Tick(ctx context.Context) error {
	status, err := r.api.Status(ctx, r.roomID)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			r.store.Dispatch(client_state.Action{Type: client_state.ActionNotFound})
		}
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.store.State()
	if prev.NotFound {
		return model.ErrRoomNotFound
	}

	r.store.Dispatch(client_state.Action{
		Type:      client_state.ActionUpdateStatus,
		IsStarted: status.IsStarted,
		Loser:     status.Loser,
		MemeURLs:  status.MemeURLs,
		VideoURL:  status.VideoURL,
	})

	if !status.IsStarted && (prev.IsStarted || prev.IsRevealShown) {
		r.store.Dispatch(client_state.Action{Type: client_state.ActionResetRoom})
	}

	if !slices.Equal(prev.Participants, status.Participants) {
		r.store.Dispatch(client_state.Action{
			Type:         client_state.ActionSetParticipants,
			Participants: status.Participants,
		})
	}
	return nil
}

// Run polls until ctx is done or the room disappears.
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			err := r.Tick(ctx)
			if err == nil {
				continue
			}
			if errors.Is(err, model.ErrRoomNotFound) {
				r.logger.Info("room is gone, polling stopped", slog.String("room_id", string(r.roomID)))
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Warn("poll failed", slog.String("room_id", string(r.roomID)), slog.String("error", err.Error()))
		}
	}
}

// StartDraw asks the server to draw and shows the result locally right away.
func (r *Reconciler) StartDraw(ctx context.Context, kind model.DrawKind) (model.DrawResult, error) {
	if !r.store.State().IsHost {
		return model.DrawResult{}, model.ErrNotHost
	}

	result, err := r.api.StartDraw(ctx, r.roomID, kind)
	if err != nil {
		return model.DrawResult{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.store.Dispatch(client_state.Action{
		Type:     client_state.ActionStartDraw,
		Loser:    result.Loser,
		MemeURLs: result.MemeURLs,
		VideoURL: result.VideoURL,
	})
	return result, nil
}

// MediaConsumed marks the reveal as fully shown on this client.
func (r *Reconciler) MediaConsumed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store.Dispatch(client_state.Action{Type: client_state.ActionShowReveal})
}

// Retry resets the room and re-seeds local state from a fresh fetch.
func (r *Reconciler) Retry(ctx context.Context) error {
	prev := r.store.State()
	if !prev.IsHost {
		return model.ErrNotHost
	}

	if err := r.api.Reset(ctx, r.roomID); err != nil {
		return err
	}

	status, err := r.api.Status(ctx, r.roomID)
	if err != nil {
		r.store.Dispatch(client_state.Action{Type: client_state.ActionNotFound})
		return errors.Join(model.ErrRoomNotFound, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.store.Dispatch(client_state.Action{
		Type:         client_state.ActionSetRoom,
		RoomID:       r.roomID,
		Participants: status.Participants,
		IsHost:       prev.IsHost,
	})
	return nil
}
