package infra_postgres_room

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/penaltydraw/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

type Driver struct {
	db *sqlx.DB
}

func New(
	db *sqlx.DB,
) *Driver {
	return &Driver{db: db}
}

type roomDTO struct {
	RoomID    string         `db:"room_id"`
	IsStarted bool           `db:"is_started"`
	LoserID   uuid.NullUUID  `db:"loser_id"`
	MemeURLs  pq.StringArray `db:"meme_urls"`
	VideoURL  sql.NullString `db:"video_url"`
	CreatedAt time.Time      `db:"created_at"`
}

func (r roomDTO) toModel() model.Room {
	return model.Room{
		ID:        model.RoomID(r.RoomID),
		IsStarted: r.IsStarted,
		LoserID:   r.LoserID,
		MemeURLs:  []string(r.MemeURLs),
		VideoURL:  r.VideoURL.String,
		CreatedAt: r.CreatedAt,
	}
}

type participantDTO struct {
	ID        uuid.UUID `db:"id"`
	RoomID    string    `db:"room_id"`
	Name      string    `db:"name"`
	IsHost    bool      `db:"is_host"`
	Position  int       `db:"position"`
	CreatedAt time.Time `db:"created_at"`
}

func (d *Driver) CreateRoom(ctx context.Context, roomID model.RoomID) error {
	const (
		q = `INSERT INTO rooms (room_id, is_started) VALUES ($1, FALSE)`
	)

	_, err := d.db.ExecContext(ctx, q, string(roomID))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return model.ErrCodeConflict
		}
		return storeErr(err)
	}
	return nil
}

// CreateParticipants inserts the whole roster with one statement, so either
// every participant is stored or none is.
func (d *Driver) CreateParticipants(ctx context.Context, roomID model.RoomID, participants []model.Participant) ([]uuid.UUID, error) {
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: empty participant list", model.ErrInvalidRoster)
	}

	const (
		q = `INSERT INTO participants (id, room_id, name, is_host, position)
		VALUES (:id, :room_id, :name, :is_host, :position)`
	)

	rows := make([]participantDTO, 0, len(participants))
	ids := make([]uuid.UUID, 0, len(participants))
	for i, p := range participants {
		id := p.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		rows = append(rows, participantDTO{
			ID:       id,
			RoomID:   string(roomID),
			Name:     p.Name,
			IsHost:   p.IsHost,
			Position: i,
		})
		ids = append(ids, id)
	}

	if _, err := d.db.NamedExecContext(ctx, q, rows); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case pqForeignKeyViolation:
				return nil, model.ErrRoomNotFound
			case pqUniqueViolation:
				return nil, fmt.Errorf("%w: %s", model.ErrInvalidRoster, pqErr.Message)
			}
		}
		return nil, storeErr(err)
	}

	return ids, nil
}

func (d *Driver) GetRoom(ctx context.Context, roomID model.RoomID) (model.Room, error) {
	const (
		q = `
		SELECT room_id, is_started, loser_id, meme_urls, video_url, created_at
		FROM rooms
		WHERE room_id = $1
		`
	)

	var row roomDTO
	if err := d.db.GetContext(ctx, &row, q, string(roomID)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Room{}, model.ErrRoomNotFound
		}
		return model.Room{}, storeErr(err)
	}

	return row.toModel(), nil
}

func (d *Driver) GetParticipants(ctx context.Context, roomID model.RoomID) ([]model.Participant, error) {
	const (
		q = `
		SELECT id, room_id, name, is_host, position, created_at
		FROM participants
		WHERE room_id = $1
		ORDER BY created_at ASC, position ASC
		`
	)

	var rows []participantDTO
	if err := d.db.SelectContext(ctx, &rows, q, string(roomID)); err != nil {
		return nil, storeErr(err)
	}

	participants := make([]model.Participant, 0, len(rows))
	for _, row := range rows {
		participants = append(participants, model.Participant{
			ID:        row.ID,
			RoomID:    model.RoomID(row.RoomID),
			Name:      row.Name,
			IsHost:    row.IsHost,
			CreatedAt: row.CreatedAt,
		})
	}

	return participants, nil
}

func (d *Driver) UpdateRoom(ctx context.Context, roomID model.RoomID, upd model.RoomUpdate) error {
	q := `
	UPDATE rooms
	SET
		is_started = $2,
		loser_id = $3,
		meme_urls = $4,
		video_url = $5
	WHERE room_id = $1`
	if upd.OnlyIfWaiting {
		q += ` AND is_started = FALSE`
	}

	result, err := d.db.ExecContext(ctx, q,
		string(roomID),
		upd.IsStarted,
		upd.LoserID,
		pq.StringArray(upd.MemeURLs),
		sql.NullString{String: upd.VideoURL, Valid: upd.VideoURL != ""},
	)
	if err != nil {
		return storeErr(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeErr(err)
	}
	if rowsAffected > 0 {
		return nil
	}

	if !upd.OnlyIfWaiting {
		return model.ErrRoomNotFound
	}
	exists, err := d.exists(ctx, roomID)
	if err != nil {
		return err
	}
	if exists {
		return model.ErrAlreadyStarted
	}
	return model.ErrRoomNotFound
}

func (d *Driver) DeleteRoom(ctx context.Context, roomID model.RoomID) error {
	const (
		q = `DELETE FROM rooms WHERE room_id = $1`
	)

	result, err := d.db.ExecContext(ctx, q, string(roomID))
	if err != nil {
		return storeErr(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeErr(err)
	}
	if rowsAffected == 0 {
		return model.ErrRoomNotFound
	}

	return nil
}

func (d *Driver) exists(ctx context.Context, roomID model.RoomID) (bool, error) {
	const (
		q = `SELECT EXISTS(SELECT 1 FROM rooms WHERE room_id = $1)`
	)

	var exists bool
	if err := d.db.QueryRowContext(ctx, q, string(roomID)).Scan(&exists); err != nil {
		return false, storeErr(err)
	}
	return exists, nil
}

func storeErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
}
