package model

import (
	"context"
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"

	"holdem-server/pkg/db"
)

const roomColumns = `
rooms.id,
rooms.name,
rooms.small_blind,
rooms.big_blind,
rooms.max_players,
rooms.status,
rooms.created_by,
rooms.created,
rooms.updated`

const roomPlayerColumns = `
room_players.id,
room_players.room_id,
room_players.user_id,
room_players.chips,
room_players.active,
room_players.created,
room_players.updated`

const sessionColumns = `
game_sessions.id,
game_sessions.room_id,
game_sessions.status,
game_sessions.state,
game_sessions.created,
game_sessions.updated,
game_sessions.ended`

const actionColumns = `
actions.id,
actions.session_id,
actions.sequence,
actions.user_id,
actions.action_type,
actions.amount,
actions.round,
actions.created`

// Postgres stores records with database/sql and lib/pq
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a store backed by the database handle
func NewPostgres(instance *sql.DB) *Postgres {
	return &Postgres{db: instance}
}

// CreateRoom inserts the room and fills in its timestamps
func (p *Postgres) CreateRoom(ctx context.Context, room *Room) error {
	const query = `
INSERT INTO rooms (id, name, small_blind, big_blind, max_players, created_by)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING status, created, updated`

	row := p.db.QueryRowContext(ctx, query, room.ID, room.Name, room.SmallBlind, room.BigBlind, room.MaxPlayers, room.CreatedBy)
	return translate(row.Scan(&room.Status, &room.Created, &room.Updated))
}

func getRoomByRow(row db.Scanner) (*Room, error) {
	var r Room
	if err := row.Scan(&r.ID, &r.Name, &r.SmallBlind, &r.BigBlind, &r.MaxPlayers, &r.Status, &r.CreatedBy, &r.Created, &r.Updated); err != nil {
		return nil, translate(err)
	}

	return &r, nil
}

// GetRoom returns a room by its ID
func (p *Postgres) GetRoom(ctx context.Context, id string) (*Room, error) {
	const query = `
SELECT ` + roomColumns + `
FROM rooms
WHERE id = $1`

	return getRoomByRow(p.db.QueryRowContext(ctx, query, id))
}

// ListRooms returns a page of rooms, newest first
// An empty status returns rooms in any status
func (p *Postgres) ListRooms(ctx context.Context, status RoomStatus, start, rows int) ([]*Room, error) {
	const query = `
SELECT ` + roomColumns + `
FROM rooms
WHERE ($1 = '' OR status = $1)
ORDER BY created DESC, id
LIMIT $2 OFFSET $3`

	res, err := p.db.QueryContext(ctx, query, string(status), rows, start)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	records := make([]*Room, 0)
	for res.Next() {
		r, err := getRoomByRow(res)
		if err != nil {
			return nil, err
		}

		records = append(records, r)
	}

	return records, res.Err()
}

func getRoomPlayerByRow(row db.Scanner) (*RoomPlayer, error) {
	var rp RoomPlayer
	if err := row.Scan(&rp.ID, &rp.RoomID, &rp.UserID, &rp.Chips, &rp.Active, &rp.Created, &rp.Updated); err != nil {
		return nil, translate(err)
	}

	return &rp, nil
}

// SeatPlayer adds the user to the room with a starting bankroll
// A returning player is reactivated and keeps their chips
func (p *Postgres) SeatPlayer(ctx context.Context, roomID string, userID int64, chips int) (*RoomPlayer, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	room, err := getRoomByRow(tx.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1 FOR UPDATE`, roomID))
	if err != nil {
		rollback(tx)
		return nil, err
	}

	var seated int
	const countQuery = `
SELECT COUNT(*)
FROM room_players
WHERE room_id = $1
  AND active
  AND user_id <> $2`
	if err := tx.QueryRowContext(ctx, countQuery, roomID, userID).Scan(&seated); err != nil {
		rollback(tx)
		return nil, err
	}

	if seated >= room.MaxPlayers {
		rollback(tx)
		return nil, ErrRoomFull
	}

	const query = `
INSERT INTO room_players (room_id, user_id, chips)
VALUES ($1, $2, $3)
ON CONFLICT (room_id, user_id) DO UPDATE
SET active = true, updated = (NOW() AT TIME ZONE 'utc')
RETURNING ` + roomPlayerColumns

	rp, err := getRoomPlayerByRow(tx.QueryRowContext(ctx, query, roomID, userID, chips))
	if err != nil {
		rollback(tx)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return rp, nil
}

// SetPlayerActive toggles whether the user is dealt into the next hand
func (p *Postgres) SetPlayerActive(ctx context.Context, roomID string, userID int64, active bool) error {
	const query = `
UPDATE room_players
SET active = $1, updated = (NOW() AT TIME ZONE 'utc')
WHERE room_id = $2
  AND user_id = $3`

	res, err := p.db.ExecContext(ctx, query, active, roomID, userID)
	if err != nil {
		return err
	}

	return expectRows(res)
}

// GetActivePlayers returns the active players in seating order
func (p *Postgres) GetActivePlayers(ctx context.Context, roomID string) ([]*RoomPlayer, error) {
	const query = `
SELECT ` + roomPlayerColumns + `
FROM room_players
WHERE room_id = $1
  AND active
ORDER BY room_players.id`

	rows, err := p.db.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*RoomPlayer, 0)
	for rows.Next() {
		rp, err := getRoomPlayerByRow(rows)
		if err != nil {
			return nil, err
		}

		records = append(records, rp)
	}

	return records, rows.Err()
}

// CreateSession inserts a new session with its seats and opening actions
// ErrSessionInProgress is returned if the room already has a running hand
func (p *Postgres) CreateSession(ctx context.Context, progress *Progress) error {
	return p.inTx(ctx, func(tx *sql.Tx) error {
		s := progress.Session
		const query = `
INSERT INTO game_sessions (id, room_id, status, state)
VALUES ($1, $2, $3, $4)
RETURNING created, updated`

		row := tx.QueryRowContext(ctx, query, s.ID, s.RoomID, s.Status, []byte(s.State))
		if err := row.Scan(&s.Created, &s.Updated); err != nil {
			return translate(err)
		}

		if err := setRoomStatus(ctx, tx, s.RoomID, roomStatusFor(s.Status)); err != nil {
			return err
		}

		return writeProgress(ctx, tx, progress)
	})
}

// SaveProgress updates the session, its seats, appends actions and applies chip deltas
func (p *Postgres) SaveProgress(ctx context.Context, progress *Progress) error {
	return p.inTx(ctx, func(tx *sql.Tx) error {
		s := progress.Session
		var ended interface{}
		if s.Status != SessionInProgress {
			ended = time.Now().UTC()
		}

		const query = `
UPDATE game_sessions
SET status = $1, state = $2, ended = $3, updated = (NOW() AT TIME ZONE 'utc')
WHERE id = $4
RETURNING updated, ended`

		var endedAt sql.NullTime
		row := tx.QueryRowContext(ctx, query, s.Status, []byte(s.State), ended, s.ID)
		if err := row.Scan(&s.Updated, &endedAt); err != nil {
			return translate(err)
		}

		if endedAt.Valid {
			s.Ended = &endedAt.Time
			if err := setRoomStatus(ctx, tx, s.RoomID, RoomWaiting); err != nil {
				return err
			}
		}

		return writeProgress(ctx, tx, progress)
	})
}

func setRoomStatus(ctx context.Context, tx *sql.Tx, roomID string, status RoomStatus) error {
	const query = `
UPDATE rooms
SET status = $1, updated = (NOW() AT TIME ZONE 'utc')
WHERE id = $2`

	res, err := tx.ExecContext(ctx, query, status, roomID)
	if err != nil {
		return err
	}

	return expectRows(res)
}

func writeProgress(ctx context.Context, tx *sql.Tx, progress *Progress) error {
	const seatQuery = `
INSERT INTO session_seats (session_id, user_id, seat_index, hole_cards, starting_chips, chips_in_pot, chips_remaining, status, position, winnings)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (session_id, user_id) DO UPDATE
SET chips_in_pot = EXCLUDED.chips_in_pot,
    chips_remaining = EXCLUDED.chips_remaining,
    status = EXCLUDED.status,
    winnings = EXCLUDED.winnings`

	for _, seat := range progress.Seats {
		if _, err := tx.ExecContext(ctx, seatQuery, progress.Session.ID, seat.UserID, seat.SeatIndex, seat.HoleCards,
			seat.StartingChips, seat.ChipsInPot, seat.ChipsRemaining, seat.Status, seat.Position, seat.Winnings); err != nil {
			return err
		}
	}

	const actionQuery = `
INSERT INTO actions (id, session_id, sequence, user_id, action_type, amount, round)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created`

	for _, a := range progress.Actions {
		if err := tx.QueryRowContext(ctx, actionQuery, a.ID, progress.Session.ID, a.Sequence, a.UserID, a.Type, a.Amount, a.Round).Scan(&a.Created); err != nil {
			return err
		}
	}

	const chipQuery = `
UPDATE room_players
SET chips = chips + $1, updated = (NOW() AT TIME ZONE 'utc')
WHERE room_id = $2
  AND user_id = $3`

	for userID, delta := range progress.ChipDeltas {
		res, err := tx.ExecContext(ctx, chipQuery, delta, progress.Session.RoomID, userID)
		if err != nil {
			return err
		}

		if err := expectRows(res); err != nil {
			return err
		}
	}

	return nil
}

func getSessionByRow(row db.Scanner) (*Session, error) {
	var s Session
	var state []byte
	var ended sql.NullTime
	if err := row.Scan(&s.ID, &s.RoomID, &s.Status, &state, &s.Created, &s.Updated, &ended); err != nil {
		return nil, translate(err)
	}

	s.State = state
	if ended.Valid {
		s.Ended = &ended.Time
	}

	return &s, nil
}

// GetSession returns a session by its ID
func (p *Postgres) GetSession(ctx context.Context, id string) (*Session, error) {
	const query = `
SELECT ` + sessionColumns + `
FROM game_sessions
WHERE id = $1`

	return getSessionByRow(p.db.QueryRowContext(ctx, query, id))
}

// GetActiveSession returns the running session for the room
func (p *Postgres) GetActiveSession(ctx context.Context, roomID string) (*Session, error) {
	const query = `
SELECT ` + sessionColumns + `
FROM game_sessions
WHERE room_id = $1
  AND status = 'in_progress'`

	return getSessionByRow(p.db.QueryRowContext(ctx, query, roomID))
}

// GetActions returns the session's action log in order
func (p *Postgres) GetActions(ctx context.Context, sessionID string) ([]*Action, error) {
	if _, err := p.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	const query = `
SELECT ` + actionColumns + `
FROM actions
WHERE session_id = $1
ORDER BY sequence`

	rows, err := p.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*Action, 0)
	for rows.Next() {
		var a Action
		if err := rows.Scan(&a.ID, &a.SessionID, &a.Sequence, &a.UserID, &a.Type, &a.Amount, &a.Round, &a.Created); err != nil {
			return nil, err
		}

		records = append(records, &a)
	}

	return records, rows.Err()
}

// GetPlayerStats aggregates the user's finished hands
func (p *Postgres) GetPlayerStats(ctx context.Context, userID int64) (*PlayerStats, error) {
	const query = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE session_seats.chips_remaining > session_seats.starting_chips),
       COALESCE(SUM(session_seats.chips_remaining - session_seats.starting_chips), 0)
FROM session_seats
INNER JOIN game_sessions ON game_sessions.id = session_seats.session_id
WHERE session_seats.user_id = $1
  AND game_sessions.status = 'finished'`

	stats := PlayerStats{UserID: userID}
	if err := p.db.QueryRowContext(ctx, query, userID).Scan(&stats.GamesPlayed, &stats.GamesWon, &stats.NetChips); err != nil {
		return nil, err
	}

	return &stats, nil
}

func (p *Postgres) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		rollback(tx)
		return err
	}

	return tx.Commit()
}

func expectRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		logrus.WithError(err).Error("could not rollback transaction")
	}
}
