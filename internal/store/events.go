// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/backmon-go/internal/model"
)

// DBTX is the subset of database/sql used by Queries, satisfied by both
// *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the prepared event queries.
type Queries struct {
	db DBTX
}

// New creates a Queries instance backed by db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries instance that runs against tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// InsertEventParams holds the normalized fields for a new event row.
type InsertEventParams struct {
	Client    string
	Database  string
	State     string
	Message   string
	Cycle     string
	Size      string
	CreatedAt time.Time
}

const insertEvent = `
INSERT INTO events (client, db_name, state, message, cycle, size, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id, client, db_name, state, message, cycle, size, created_at
`

// InsertEvent inserts a single event row and returns the stored event with
// its assigned id.
func (q *Queries) InsertEvent(ctx context.Context, arg InsertEventParams) (model.Event, error) {
	row := q.db.QueryRowContext(ctx, insertEvent,
		arg.Client, arg.Database, arg.State, arg.Message, arg.Cycle, arg.Size, arg.CreatedAt)
	return scanEvent(row)
}

const trimClientEvents = `
DELETE FROM events
WHERE client = ?1
  AND id NOT IN (
    SELECT id FROM events WHERE client = ?1 ORDER BY id DESC LIMIT ?2
  )
`

// TrimClientEvents deletes all but the keep most recent rows (by id) for a
// client. Returns the number of rows deleted.
func (q *Queries) TrimClientEvents(ctx context.Context, client string, keep int) (int64, error) {
	res, err := q.db.ExecContext(ctx, trimClientEvents, client, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const latestPerClient = `
SELECT e.id, e.client, e.db_name, e.state, e.message, e.cycle, e.size, e.created_at
FROM events e
INNER JOIN (
    SELECT client, MAX(id) AS max_id FROM events GROUP BY client
) latest ON e.id = latest.max_id
ORDER BY e.created_at DESC, e.id DESC
`

// LatestPerClient returns the most recent event for each distinct client,
// most recently updated client first.
func (q *Queries) LatestPerClient(ctx context.Context) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx, latestPerClient)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

const recentEvents = `
SELECT id, client, db_name, state, message, cycle, size, created_at
FROM events
ORDER BY id DESC
LIMIT ?
`

// RecentEvents returns the limit most recent events across all clients,
// newest first.
func (q *Queries) RecentEvents(ctx context.Context, limit int) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx, recentEvents, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

const countClientEvents = `
SELECT COUNT(*) FROM events WHERE client = ?
`

// CountClientEvents returns the number of retained events for a client.
func (q *Queries) CountClientEvents(ctx context.Context, client string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countClientEvents, client).Scan(&n)
	return n, err
}

const listCappedClients = `
SELECT client FROM events GROUP BY client HAVING COUNT(*) > ?
`

// ListCappedClients returns clients holding more than keep rows. Used by the
// retention sweep; under normal operation the result is empty because the
// cap is enforced on every insert.
func (q *Queries) ListCappedClients(ctx context.Context, keep int) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listCappedClients, keep)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

const deleteEventsBefore = `
DELETE FROM events WHERE created_at < ?
`

// DeleteEventsBefore removes events older than cutoff. Returns the number of
// rows deleted.
func (q *Queries) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteEventsBefore, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Client, &e.Database, &e.State, &e.Message, &e.Cycle, &e.Size, &e.CreatedAt)
	return e, err
}

func scanEvents(rows *sql.Rows) ([]model.Event, error) {
	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
