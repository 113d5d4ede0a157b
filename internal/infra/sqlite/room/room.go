package infra_sqlite_room

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/penaltydraw/internal/model"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Driver is the single-file store used for local play and tests.
type Driver struct {
	db  *sqlx.DB
	now func() time.Time
}

func New(
	db *sqlx.DB,
) *Driver {
	return &Driver{db: db, now: time.Now}
}

type roomDTO struct {
	RoomID    string         `db:"room_id"`
	IsStarted bool           `db:"is_started"`
	LoserID   uuid.NullUUID  `db:"loser_id"`
	MemeURLs  sql.NullString `db:"meme_urls"`
	VideoURL  sql.NullString `db:"video_url"`
	CreatedAt int64          `db:"created_at"`
}

func (r roomDTO) toModel() (model.Room, error) {
	room := model.Room{
		ID:        model.RoomID(r.RoomID),
		IsStarted: r.IsStarted,
		LoserID:   r.LoserID,
		VideoURL:  r.VideoURL.String,
		CreatedAt: time.UnixMilli(r.CreatedAt).UTC(),
	}
	if r.MemeURLs.Valid {
		urls := []string{}
		if err := json.Unmarshal([]byte(r.MemeURLs.String), &urls); err != nil {
			return model.Room{}, fmt.Errorf("%w: decode meme_urls: %w", model.ErrStoreUnavailable, err)
		}
		room.MemeURLs = urls
	}
	return room, nil
}

type participantDTO struct {
	ID        uuid.UUID `db:"id"`
	RoomID    string    `db:"room_id"`
	Name      string    `db:"name"`
	IsHost    bool      `db:"is_host"`
	Position  int       `db:"position"`
	CreatedAt int64     `db:"created_at"`
}

func (d *Driver) CreateRoom(ctx context.Context, roomID model.RoomID) error {
	const (
		q = `INSERT INTO rooms (room_id, is_started, created_at) VALUES (?, 0, ?)`
	)

	_, err := d.db.ExecContext(ctx, q, string(roomID), d.now().UnixMilli())
	if err != nil {
		switch constraint(err) {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return model.ErrCodeConflict
		}
		return storeErr(err)
	}
	return nil
}

func (d *Driver) CreateParticipants(ctx context.Context, roomID model.RoomID, participants []model.Participant) ([]uuid.UUID, error) {
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: empty participant list", model.ErrInvalidRoster)
	}

	const (
		q = `INSERT INTO participants (id, room_id, name, is_host, position, created_at)
		VALUES (:id, :room_id, :name, :is_host, :position, :created_at)`
	)

	createdAt := d.now().UnixMilli()
	rows := make([]participantDTO, 0, len(participants))
	ids := make([]uuid.UUID, 0, len(participants))
	for i, p := range participants {
		id := p.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		rows = append(rows, participantDTO{
			ID:        id,
			RoomID:    string(roomID),
			Name:      p.Name,
			IsHost:    p.IsHost,
			Position:  i,
			CreatedAt: createdAt,
		})
		ids = append(ids, id)
	}

	if _, err := d.db.NamedExecContext(ctx, q, rows); err != nil {
		switch constraint(err) {
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return nil, model.ErrRoomNotFound
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return nil, fmt.Errorf("%w: %s", model.ErrInvalidRoster, err.Error())
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
		WHERE room_id = ?
		`
	)

	var row roomDTO
	if err := d.db.GetContext(ctx, &row, q, string(roomID)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Room{}, model.ErrRoomNotFound
		}
		return model.Room{}, storeErr(err)
	}

	return row.toModel()
}

func (d *Driver) GetParticipants(ctx context.Context, roomID model.RoomID) ([]model.Participant, error) {
	const (
		q = `
		SELECT id, room_id, name, is_host, position, created_at
		FROM participants
		WHERE room_id = ?
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
			CreatedAt: time.UnixMilli(row.CreatedAt).UTC(),
		})
	}

	return participants, nil
}

func (d *Driver) UpdateRoom(ctx context.Context, roomID model.RoomID, upd model.RoomUpdate) error {
	q := `
	UPDATE rooms
	SET
		is_started = ?,
		loser_id = ?,
		meme_urls = ?,
		video_url = ?
	WHERE room_id = ?`
	if upd.OnlyIfWaiting {
		q += ` AND is_started = 0`
	}

	memes := sql.NullString{}
	if upd.MemeURLs != nil {
		raw, err := json.Marshal(upd.MemeURLs)
		if err != nil {
			return fmt.Errorf("%w: encode meme_urls: %w", model.ErrStoreUnavailable, err)
		}
		memes = sql.NullString{String: string(raw), Valid: true}
	}

	result, err := d.db.ExecContext(ctx, q,
		upd.IsStarted,
		upd.LoserID,
		memes,
		sql.NullString{String: upd.VideoURL, Valid: upd.VideoURL != ""},
		string(roomID),
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
		q = `DELETE FROM rooms WHERE room_id = ?`
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
		q = `SELECT EXISTS(SELECT 1 FROM rooms WHERE room_id = ?)`
	)

	var exists bool
	if err := d.db.QueryRowContext(ctx, q, string(roomID)).Scan(&exists); err != nil {
		return false, storeErr(err)
	}
	return exists, nil
}

// constraint returns the extended constraint code of err, or 0.
func constraint(err error) int {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return 0
	}
	code := sqliteErr.Code()
	if code&0xff != sqlite3.SQLITE_CONSTRAINT {
		return 0
	}
	if code != sqlite3.SQLITE_CONSTRAINT {
		return code
	}

	msg := sqliteErr.Error()
	switch {
	case strings.Contains(msg, "FOREIGN KEY"):
		return sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
	case strings.Contains(msg, "UNIQUE"):
		return sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return code
}

func storeErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
}
