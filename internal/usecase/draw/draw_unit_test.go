package usecase_draw

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	infra_local_drawlock "github.com/humanbelnik/penaltydraw/internal/infra/local/drawlock"
	"github.com/humanbelnik/penaltydraw/internal/model"
	lock_mocks "github.com/humanbelnik/penaltydraw/internal/usecase/draw/mocks/draw/lock"
	media_mocks "github.com/humanbelnik/penaltydraw/internal/usecase/draw/mocks/draw/media"
	repo_mocks "github.com/humanbelnik/penaltydraw/internal/usecase/draw/mocks/draw/repository"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type UsecaseDrawUnitSuite struct {
	suite.Suite
}

type resources struct {
	usecase  *Usecase
	roomRepo *repo_mocks.RoomRepository
	media    *media_mocks.MediaGenerator
	lock     *lock_mocks.DrawLock
	ctx      context.Context
}

func initResources(t provider.T, opts ...Option) *resources {
	roomRepo := repo_mocks.NewRoomRepository(t)
	media := media_mocks.NewMediaGenerator(t)
	lock := lock_mocks.NewDrawLock(t)

	// index 1 is always drawn unless a test overrides it
	opts = append([]Option{WithIntn(func(int) int { return 1 })}, opts...)

	return &resources{
		usecase:  New(roomRepo, media, lock, opts...),
		roomRepo: roomRepo,
		media:    media,
		lock:     lock,
		ctx:      context.Background(),
	}
}

func validRoomID() model.RoomID {
	return model.RoomID("K3X9QZ")
}

var (
	aliceID = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	bobID   = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	carolID = uuid.MustParse("00000000-0000-0000-0000-00000000000c")
)

func roster() []model.Participant {
	return []model.Participant{
		{ID: aliceID, RoomID: validRoomID(), Name: "Alice", IsHost: true},
		{ID: bobID, RoomID: validRoomID(), Name: "Bob"},
		{ID: carolID, RoomID: validRoomID(), Name: "Carol"},
	}
}

func waitingRoom() model.Room {
	return model.Room{ID: validRoomID()}
}

func expectLocked(r *resources) {
	r.lock.On("Acquire", r.ctx, validRoomID()).Return(true, nil).Once()
	r.lock.On("Release", mock.Anything, validRoomID()).Return(nil).Once()
}

func (suite *UsecaseDrawUnitSuite) TestStart(t provider.T) {
	t.Parallel()

	videoURL := "https://cdn.example/v/K3X9QZ.mp4"

	testCases := []struct {
		name          string
		kind          model.DrawKind
		setupMocks    func(r *resources)
		expected      model.DrawResult
		expectedError error
	}{
		{
			name: "Should draw with four placeholder slides and no video",
			kind: model.DrawImage,
			setupMocks: func(r *resources) {
				r.roomRepo.On("GetRoom", r.ctx, validRoomID()).Return(waitingRoom(), nil).Once()
				expectLocked(r)
				r.roomRepo.On("GetParticipants", r.ctx, validRoomID()).Return(roster(), nil).Once()
				r.roomRepo.On("UpdateRoom", r.ctx, validRoomID(),
					model.StartedUpdate(bobID, model.Media{MemeURLs: model.PlaceholderMemeURLs()}),
				).Return(nil).Once()
			},
			expected: model.DrawResult{Loser: "Bob", MemeURLs: model.PlaceholderMemeURLs()},
		},
		{
			name: "Should draw with a generated video",
			kind: model.DrawVideo,
			setupMocks: func(r *resources) {
				r.roomRepo.On("GetRoom", r.ctx, validRoomID()).Return(waitingRoom(), nil).Once()
				expectLocked(r)
				r.roomRepo.On("GetParticipants", r.ctx, validRoomID()).Return(roster(), nil).Once()
				r.media.On("Generate", mock.Anything, model.MediaRequest{
					RoomID:    validRoomID(),
					Winner:    "Bob",
					Others:    []string{"Alice", "Carol"},
					BaseVideo: "1",
				}).Return(videoURL, nil).Once()
				r.roomRepo.On("UpdateRoom", r.ctx, validRoomID(),
					model.StartedUpdate(bobID, model.Media{VideoURL: videoURL}),
				).Return(nil).Once()
			},
			expected: model.DrawResult{Loser: "Bob", VideoURL: videoURL},
		},
		{
			name: "Should leave the room untouched when media times out",
			kind: model.DrawVideo,
			setupMocks: func(r *resources) {
				r.roomRepo.On("GetRoom", r.ctx, validRoomID()).Return(waitingRoom(), nil).Once()
				expectLocked(r)
				r.roomRepo.On("GetParticipants", r.ctx, validRoomID()).Return(roster(), nil).Once()
				r.media.On("Generate", mock.Anything, mock.Anything).Return("", model.ErrMediaTimeout).Once()
			},
			expectedError: model.ErrMediaTimeout,
		},
		{
			name: "Should leave the room untouched when media fails",
			kind: model.DrawVideo,
			setupMocks: func(r *resources) {
				r.roomRepo.On("GetRoom", r.ctx, validRoomID()).Return(waitingRoom(), nil).Once()
				expectLocked(r)
				r.roomRepo.On("GetParticipants", r.ctx, validRoomID()).Return(roster(), nil).Once()
				r.media.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("upstream 502")).Once()
			},
			expectedError: model.ErrMediaGenerationFailed,
		},
		{
			name: "Should reject an already started room",
			kind: model.DrawImage,
			setupMocks: func(r *resources) {
				r.roomRepo.On("GetRoom", r.ctx, validRoomID()).Return(model.Room{ID: validRoomID(), IsStarted: true}, nil).Once()
			},
			expectedError: model.ErrAlreadyStarted,
		},
		{
			name: "Should reject a concurrent draw",
			kind: model.DrawImage,
			setupMocks: func(r *resources) {
				r.roomRepo.On("GetRoom", r.ctx, validRoomID()).Return(waitingRoom(), nil).Once()
				r.lock.On("Acquire", r.ctx, validRoomID()).Return(false, nil).Once()
			},
			expectedError: model.ErrDrawInProgress,
		},
		{
			name: "Should report an empty room",
			kind: model.DrawImage,
			setupMocks: func(r *resources) {
				r.roomRepo.On("GetRoom", r.ctx, validRoomID()).Return(waitingRoom(), nil).Once()
				expectLocked(r)
				r.roomRepo.On("GetParticipants", r.ctx, validRoomID()).Return([]model.Participant{}, nil).Once()
			},
			expectedError: model.ErrNoParticipants,
		},
		{
			name: "Should lose the race on the conditional update",
			kind: model.DrawImage,
			setupMocks: func(r *resources) {
				r.roomRepo.On("GetRoom", r.ctx, validRoomID()).Return(waitingRoom(), nil).Once()
				expectLocked(r)
				r.roomRepo.On("GetParticipants", r.ctx, validRoomID()).Return(roster(), nil).Once()
				r.roomRepo.On("UpdateRoom", r.ctx, validRoomID(), mock.Anything).Return(model.ErrAlreadyStarted).Once()
			},
			expectedError: model.ErrAlreadyStarted,
		},
		{
			name: "Should report a missing room",
			kind: model.DrawImage,
			setupMocks: func(r *resources) {
				r.roomRepo.On("GetRoom", r.ctx, validRoomID()).Return(model.Room{}, model.ErrRoomNotFound).Once()
			},
			expectedError: model.ErrRoomNotFound,
		},
		{
			name:          "Should reject an unknown kind",
			kind:          model.DrawKind("gif"),
			setupMocks:    func(r *resources) {},
			expectedError: model.ErrInvalidDrawKind,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			tc.setupMocks(r)

			result, err := r.usecase.Start(r.ctx, validRoomID(), tc.kind)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				assert.Equal(t, model.DrawResult{}, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, result)
			}
			r.roomRepo.AssertExpectations(t)
			r.lock.AssertExpectations(t)
		})
	}
}

func (suite *UsecaseDrawUnitSuite) TestStartEnforcesTimeout(t provider.T) {
	t.Parallel()
	r := initResources(t, WithTimeout(20*time.Millisecond))

	r.roomRepo.On("GetRoom", r.ctx, validRoomID()).Return(waitingRoom(), nil).Once()
	expectLocked(r)
	r.roomRepo.On("GetParticipants", r.ctx, validRoomID()).Return(roster(), nil).Once()
	r.media.On("Generate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return("", context.DeadlineExceeded).Once()

	_, err := r.usecase.Start(r.ctx, validRoomID(), model.DrawVideo)

	assert.ErrorIs(t, err, model.ErrMediaTimeout)
	r.roomRepo.AssertNotCalled(t, "UpdateRoom", mock.Anything, mock.Anything, mock.Anything)
}

// memRepo is a single-room store with the same conditional update rule as the drivers.
type memRepo struct {
	mu           sync.Mutex
	room         model.Room
	participants []model.Participant
	updates      int
}

func (m *memRepo) GetRoom(_ context.Context, _ model.RoomID) (model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.room, nil
}

func (m *memRepo) GetParticipants(_ context.Context, _ model.RoomID) ([]model.Participant, error) {
	return m.participants, nil
}

func (m *memRepo) UpdateRoom(_ context.Context, _ model.RoomID, upd model.RoomUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if upd.OnlyIfWaiting && m.room.IsStarted {
		return model.ErrAlreadyStarted
	}
	m.room.IsStarted = upd.IsStarted
	m.room.LoserID = upd.LoserID
	m.room.MemeURLs = upd.MemeURLs
	m.room.VideoURL = upd.VideoURL
	m.updates++
	return nil
}

func (suite *UsecaseDrawUnitSuite) TestStartIsExclusive(t provider.T) {
	t.Parallel()

	repo := &memRepo{room: waitingRoom(), participants: roster()}
	uc := New(repo, nil, infra_local_drawlock.New())

	const callers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Start(context.Background(), validRoomID(), model.DrawImage)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			if !errors.Is(err, model.ErrDrawInProgress) && !errors.Is(err, model.ErrAlreadyStarted) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, repo.updates)
}

func (suite *UsecaseDrawUnitSuite) TestStartIsUniform(t provider.T) {
	t.Parallel()

	const draws = 9000
	counts := make(map[string]int)
	for range draws {
		repo := &memRepo{room: waitingRoom(), participants: roster()}
		uc := New(repo, nil, infra_local_drawlock.New())

		result, err := uc.Start(context.Background(), validRoomID(), model.DrawImage)
		if err != nil {
			t.Fatalf("draw failed: %v", err)
		}
		counts[result.Loser]++
	}

	// sigma is about 45 per bucket
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		assert.InDelta(t, draws/3, counts[name], 300, name)
	}
}

func TestUsecaseDrawUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseDrawUnitSuite))
}
